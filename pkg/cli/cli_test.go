package cli_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/mediakb/pkg/cli"
	"github.com/secmon-lab/mediakb/pkg/domain/model"
	"github.com/secmon-lab/mediakb/pkg/domain/types"
	"github.com/secmon-lab/mediakb/pkg/repository/firestore"
)

func TestIndexConfig(t *testing.T) {
	cfg := cli.GetIndexConfig()
	gt.Array(t, cfg.Collections).Length(1).Required()
	gt.Value(t, cfg.Collections[0].Name).Equal(firestore.TasksCollection)
	gt.Array(t, cfg.Collections[0].Indexes).Length(1).Required()

	fields := cfg.Collections[0].Indexes[0].Fields
	gt.Array(t, fields).Length(2).Required()
	gt.Value(t, fields[0].Path).Equal("Status")
	gt.Value(t, fields[1].Path).Equal("UpdatedAt")
	gt.Value(t, fields[0].Order).Equal(fireconf.OrderAscending)
	gt.Value(t, fields[1].Order).Equal(fireconf.OrderDescending)
	gt.NoError(t, cfg.Validate())
}

func TestPrintTask(t *testing.T) {
	var buf bytes.Buffer
	cli.PrintTask(&buf, &model.Task{
		ID:        model.TaskID("0b6f4c1e-3c1b-4d5a-9f7e-2a1b3c4d5e6f"),
		Status:    types.TaskStatusFailed,
		Topic:     "science",
		SourceURL: "https://example.com/talk",
		Error:     "job failed",
		UpdatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	})

	out := buf.String()
	gt.String(t, out).Contains("0b6f4c1e-3c1b-4d5a-9f7e-2a1b3c4d5e6f")
	gt.String(t, out).Contains("FAILED")
	gt.String(t, out).Contains("science")
	gt.String(t, out).Contains("job failed")
	gt.String(t, out).Contains("2026-01-02T03:04:05Z")
	gt.String(t, out).NotContains("ingestion")
}

func TestTaskRequiresRepository(t *testing.T) {
	err := cli.Run(context.Background(), []string{
		"mediakb", "--log-output", "stderr",
		"task", "--repository-backend", "none", "list",
	}, "test")
	gt.Error(t, err)
}
