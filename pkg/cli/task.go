package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mediakb/pkg/cli/config"
	"github.com/secmon-lab/mediakb/pkg/domain/model"
	"github.com/secmon-lab/mediakb/pkg/domain/types"
	"github.com/secmon-lab/mediakb/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdTask() *cli.Command {
	var repoCfg config.Repository

	// configure opens the task repository only; status lookups need no AWS access
	configure := func(ctx context.Context) (*usecase.TaskUseCase, func(), error) {
		repo, err := repoCfg.Configure(ctx)
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to initialize repository")
		}
		if repo == nil {
			return nil, nil, goerr.Wrap(usecase.ErrNotConfigured, "task status records are disabled")
		}
		return usecase.NewTaskUseCase(repo), closeRepository(repo), nil
	}

	var status string
	var limit int

	return &cli.Command{
		Name:  "task",
		Usage: "Inspect pipeline task status records",
		Flags: repoCfg.Flags(),
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "Show a task",
				ArgsUsage: "<task_id>",
				Action: func(ctx context.Context, c *cli.Command) error {
					if c.Args().Len() != 1 {
						return goerr.Wrap(usecase.ErrInvalidRequest, "exactly one task ID is required")
					}

					tasks, closer, err := configure(ctx)
					if err != nil {
						return err
					}
					defer closer()

					task, err := tasks.Get(ctx, model.TaskID(c.Args().First()))
					if err != nil {
						return err
					}
					printTask(color.Output, task)
					return nil
				},
			},
			{
				Name:  "list",
				Usage: "List tasks in a status, most recently updated first",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "status",
						Usage:       "Task status [STAGED|TRANSCRIBING|INDEXING|FAILED]",
						Value:       types.TaskStatusFailed.String(),
						Destination: &status,
					},
					&cli.IntFlag{
						Name:        "limit",
						Usage:       "Maximum number of tasks",
						Value:       usecase.DefaultTaskListLimit,
						Destination: &limit,
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					st := types.TaskStatus(status)
					if !st.IsValid() {
						return goerr.Wrap(usecase.ErrInvalidRequest, "invalid task status", goerr.V("status", status))
					}

					tasks, closer, err := configure(ctx)
					if err != nil {
						return err
					}
					defer closer()

					list, err := tasks.ListByStatus(ctx, st, limit)
					if err != nil {
						return err
					}
					for _, task := range list {
						printTask(color.Output, task)
					}
					return nil
				},
			},
		},
	}
}

func statusColor(st types.TaskStatus) func(format string, a ...any) string {
	switch st {
	case types.TaskStatusFailed:
		return color.RedString
	case types.TaskStatusIndexing:
		return color.GreenString
	case types.TaskStatusTranscribing:
		return color.YellowString
	default:
		return color.CyanString
	}
}

func printTask(w io.Writer, task *model.Task) {
	fmt.Fprintf(w, "%s  %s\n", task.ID, statusColor(task.Status)("%s", task.Status))
	fmt.Fprintf(w, "  topic:      %s\n", task.Topic)
	fmt.Fprintf(w, "  source_url: %s\n", task.SourceURL)
	if task.MediaURI != "" {
		fmt.Fprintf(w, "  media_uri:  %s\n", task.MediaURI)
	}
	if task.IngestionJobID != "" {
		fmt.Fprintf(w, "  ingestion:  %s\n", task.IngestionJobID)
	}
	if task.Error != "" {
		fmt.Fprintf(w, "  error:      %s\n", color.RedString("%s", task.Error))
	}
	fmt.Fprintf(w, "  updated_at: %s\n", task.UpdatedAt.Format(time.RFC3339))
}
