package config_test

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/mediakb/pkg/cli/config"
	"github.com/secmon-lab/mediakb/pkg/utils/logging"
)

func TestLoggerConfigure(t *testing.T) {
	orig := logging.Default()
	t.Cleanup(func() { logging.SetDefault(orig) })

	t.Run("writes json to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		closer, err := config.NewLoggerForTest("debug", "json", path).Configure()
		gt.NoError(t, err).Required()

		logging.Default().Info("hello", "task_id", "abc")
		closer()

		raw, err := os.ReadFile(path)
		gt.NoError(t, err).Required()
		gt.String(t, string(raw)).Contains(`"msg":"hello"`)
		gt.String(t, string(raw)).Contains(`"task_id":"abc"`)
	})

	t.Run("console format", func(t *testing.T) {
		closer, err := config.NewLoggerForTest("info", "console", "stderr").Configure()
		gt.NoError(t, err).Required()
		closer()
	})

	t.Run("invalid level", func(t *testing.T) {
		_, err := config.NewLoggerForTest("verbose", "json", "stdout").Configure()
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})

	t.Run("invalid format", func(t *testing.T) {
		_, err := config.NewLoggerForTest("info", "xml", "stdout").Configure()
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})
}

func TestRedactor(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		ReplaceAttr: config.NewRedactor(),
	}))

	url := "https://bucket.s3.amazonaws.com/media-uploads/x?X-Amz-Signature=deadbeef"
	logger.Info("issued", "url", url)

	gt.String(t, buf.String()).NotContains("deadbeef")
}

func TestRepositoryConfigure(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		repo, err := config.NewRepositoryForTest("memory", "", "").Configure(ctx)
		gt.NoError(t, err).Required()
		gt.Bool(t, repo != nil).True()
		gt.NoError(t, repo.Close())
	})

	t.Run("none disables records", func(t *testing.T) {
		repo, err := config.NewRepositoryForTest("none", "", "").Configure(ctx)
		gt.NoError(t, err).Required()
		gt.Bool(t, repo == nil).True()
	})

	t.Run("firestore without project", func(t *testing.T) {
		_, err := config.NewRepositoryForTest("firestore", "", "").Configure(ctx)
		gt.Error(t, err).Is(config.ErrMissingSetting)
	})

	t.Run("invalid backend", func(t *testing.T) {
		_, err := config.NewRepositoryForTest("mysql", "", "").Configure(ctx)
		gt.Error(t, err).Is(config.ErrInvalidConfig)
		gt.Value(t, goerr.Unwrap(err).Values()[config.BackendKey]).Equal(any("mysql"))
	})
}

func TestSlackConfigure(t *testing.T) {
	t.Run("no token disables notifier", func(t *testing.T) {
		svc, err := config.NewSlackForTest("", "").Configure()
		gt.NoError(t, err).Required()
		gt.Bool(t, svc == nil).True()
	})

	t.Run("token without channel", func(t *testing.T) {
		_, err := config.NewSlackForTest("xoxb-test", "").Configure()
		gt.Error(t, err).Is(config.ErrMissingSetting)
	})

	t.Run("configured", func(t *testing.T) {
		svc, err := config.NewSlackForTest("xoxb-test", "C0123").Configure()
		gt.NoError(t, err).Required()
		gt.Bool(t, svc != nil).True()
	})

	t.Run("log value hides token", func(t *testing.T) {
		var buf bytes.Buffer
		slog.New(slog.NewJSONHandler(&buf, nil)).Info("cfg", "slack", *config.NewSlackForTest("xoxb-secret", "C0123"))
		gt.String(t, buf.String()).NotContains("xoxb-secret")
		gt.String(t, buf.String()).Contains("C0123")
	})
}

func TestPipeline(t *testing.T) {
	t.Run("buckets", func(t *testing.T) {
		p := config.NewPipelineForTest("media", "kb", "", 5*time.Minute)
		gt.NoError(t, p.Validate())
		gt.Value(t, p.Buckets().Media).Equal("media")
		gt.Value(t, p.Buckets().Knowledge).Equal("kb")
		gt.Value(t, p.UploadExpiry()).Equal(5 * time.Minute)
	})

	t.Run("missing media bucket", func(t *testing.T) {
		err := config.NewPipelineForTest("", "kb", "", time.Minute).Validate()
		gt.Error(t, err).Is(config.ErrMissingSetting)
	})

	t.Run("missing knowledge bucket", func(t *testing.T) {
		err := config.NewPipelineForTest("media", "", "", time.Minute).Validate()
		gt.Error(t, err).Is(config.ErrMissingSetting)
	})

	t.Run("knowledge base disabled without id", func(t *testing.T) {
		kb, err := config.NewPipelineForTest("media", "kb", "", time.Minute).KnowledgeBase(aws.Config{})
		gt.NoError(t, err).Required()
		gt.Bool(t, kb == nil).True()
	})

	t.Run("knowledge base with id", func(t *testing.T) {
		kb, err := config.NewPipelineForTest("media", "kb", "KB123", time.Minute).KnowledgeBase(aws.Config{Region: "us-east-1"})
		gt.NoError(t, err).Required()
		gt.Bool(t, kb != nil).True()
	})
}

func TestStorageConfigure(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		svc, err := config.NewStorageForTest("memory").Configure(aws.Config{})
		gt.NoError(t, err).Required()
		gt.Bool(t, svc != nil).True()
	})

	t.Run("s3", func(t *testing.T) {
		svc, err := config.NewStorageForTest("s3").Configure(aws.Config{Region: "us-east-1"})
		gt.NoError(t, err).Required()
		gt.Value(t, svc.URI("media", "media-uploads/x")).Equal("s3://media/media-uploads/x")
	})

	t.Run("gcs is not readable by transcription", func(t *testing.T) {
		svc, err := config.NewStorageForTest("gcs").Configure(aws.Config{})
		gt.Error(t, err).Is(config.ErrInvalidConfig)
		gt.Bool(t, svc == nil).True()
	})

	t.Run("invalid backend", func(t *testing.T) {
		_, err := config.NewStorageForTest("ftp").Configure(aws.Config{})
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})
}
