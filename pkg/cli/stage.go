package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mediakb/pkg/domain/model"
	"github.com/secmon-lab/mediakb/pkg/usecase"
	"github.com/secmon-lab/mediakb/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdDispatch() *cli.Command {
	var bucket string
	var keys []string
	var cfg pipelineConfig

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "bucket",
			Usage:       "Bucket of the uploaded media (defaults to --media-bucket)",
			Destination: &bucket,
		},
		&cli.StringSliceFlag{
			Name:        "key",
			Aliases:     []string{"k"},
			Usage:       "Object key of an uploaded media file (media-uploads/<task_id>), repeatable",
			Required:    true,
			Destination: &keys,
		},
	}
	flags = append(flags, cfg.Flags()...)

	return &cli.Command{
		Name:  "dispatch",
		Usage: "Start transcription jobs for uploaded media, as a storage event would",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, cleanup, err := cfg.Configure(ctx, usecase.WithSyncNotify())
			if err != nil {
				return err
			}
			defer cleanup()

			if bucket == "" {
				bucket = cfg.pipeline.Buckets().Media
			}
			records := make([]model.UploadRecord, 0, len(keys))
			for _, key := range keys {
				records = append(records, model.UploadRecord{Bucket: bucket, Key: key})
			}

			result, err := uc.Transcription.Dispatch(ctx, records)
			if result == nil {
				return err
			}
			for _, id := range result.Started {
				fmt.Fprintf(color.Output, "%s %s\n", color.GreenString("started"), id)
			}
			for _, f := range result.Failures {
				fmt.Fprintf(color.Output, "%s %s/%s: %v\n", color.RedString("failed"), f.Bucket, f.Key, f.Err)
			}
			return err
		},
	}
}

func cmdComplete() *cli.Command {
	var jobName string
	var cfg pipelineConfig

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "job",
			Aliases:     []string{"j"},
			Usage:       "Name of a completed transcription job (equals the task ID)",
			Required:    true,
			Destination: &jobName,
		},
	}
	flags = append(flags, cfg.Flags()...)

	return &cli.Command{
		Name:  "complete",
		Usage: "Publish the transcript of a completed job to the knowledge base",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, cleanup, err := cfg.Configure(ctx, usecase.WithSyncNotify())
			if err != nil {
				return err
			}
			defer cleanup()

			if err := uc.Transcription.Complete(ctx, jobName); err != nil {
				return goerr.Wrap(err, "failed to complete transcription", goerr.V(model.JobNameKey, jobName))
			}
			logging.Default().Info("Transcript published", "job_name", jobName)
			return nil
		},
	}
}

func cmdSync() *cli.Command {
	var cfg pipelineConfig

	return &cli.Command{
		Name:  "sync",
		Usage: "Start an ingestion job of the knowledge base data source",
		Flags: cfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, cleanup, err := cfg.Configure(ctx, usecase.WithSyncNotify())
			if err != nil {
				return err
			}
			defer cleanup()

			jobID, err := uc.Knowledge.Sync(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(color.Output, jobID)
			return nil
		},
	}
}
