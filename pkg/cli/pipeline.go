package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mediakb/pkg/cli/config"
	"github.com/secmon-lab/mediakb/pkg/domain/interfaces"
	"github.com/secmon-lab/mediakb/pkg/usecase"
	"github.com/secmon-lab/mediakb/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// pipelineConfig bundles the config groups every pipeline command needs
type pipelineConfig struct {
	aws      config.AWS
	storage  config.Storage
	pipeline config.Pipeline
	repo     config.Repository
	slack    config.Slack
}

func (x *pipelineConfig) Flags() []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, x.aws.Flags()...)
	flags = append(flags, x.storage.Flags()...)
	flags = append(flags, x.pipeline.Flags()...)
	flags = append(flags, x.repo.Flags()...)
	flags = append(flags, x.slack.Flags()...)
	return flags
}

// Configure builds the use cases with extra appended to the configured
// options. The returned function releases every client opened on the way and
// must be called when the command ends.
func (x *pipelineConfig) Configure(ctx context.Context, extra ...usecase.Option) (*usecase.UseCases, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if err := x.pipeline.Validate(); err != nil {
		return nil, nil, err
	}

	awsCfg, err := x.aws.Configure(ctx)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to configure AWS")
	}

	st, err := x.storage.Configure(awsCfg)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to configure storage")
	}

	kb, err := x.pipeline.KnowledgeBase(awsCfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	if kb == nil {
		logging.Default().Warn("Knowledge base not configured, query and sync are disabled")
	}

	notifier, err := x.slack.Configure()
	if err != nil {
		cleanup()
		return nil, nil, goerr.Wrap(err, "failed to configure Slack")
	}

	repo, err := x.repo.Configure(ctx)
	if err != nil {
		cleanup()
		return nil, nil, goerr.Wrap(err, "failed to initialize repository")
	}
	if repo != nil {
		closers = append(closers, closeRepository(repo))
	}

	opts := []usecase.Option{
		usecase.WithStorage(st),
		usecase.WithTranscribe(x.pipeline.Transcribe(awsCfg)),
		usecase.WithBuckets(x.pipeline.Buckets()),
		usecase.WithUploadLinkExpiry(x.pipeline.UploadExpiry()),
	}
	if kb != nil {
		opts = append(opts, usecase.WithKnowledgeBase(kb))
	}
	if notifier != nil {
		opts = append(opts, usecase.WithNotifier(notifier))
		logging.Default().Info("Slack notifications enabled")
	}

	opts = append(opts, extra...)

	logging.Default().Info("Pipeline configured",
		"aws", x.aws,
		"storage", x.storage,
		"pipeline", x.pipeline,
		"repository", x.repo,
		"slack", x.slack,
	)

	return usecase.New(repo, opts...), cleanup, nil
}

func closeRepository(repo interfaces.Repository) func() {
	return func() {
		if err := repo.Close(); err != nil {
			logging.Default().Error("failed to close repository", "error", err.Error())
		}
	}
}
