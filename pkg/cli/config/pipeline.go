package config

import (
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagent"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	awstranscribe "github.com/aws/aws-sdk-go-v2/service/transcribe"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mediakb/pkg/service/bedrock"
	"github.com/secmon-lab/mediakb/pkg/service/transcribe"
	"github.com/secmon-lab/mediakb/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// Pipeline holds CLI flags naming the buckets and knowledge base resources.
// Each flag also reads the short environment variable used by existing
// deployments.
type Pipeline struct {
	mediaBucket     string
	knowledgeBucket string
	knowledgeBaseID string
	dataSourceID    string
	modelARN        string
	uploadExpiry    time.Duration
}

func (x *Pipeline) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "media-bucket",
			Usage:       "Bucket for staged metadata and uploaded media",
			Category:    "Pipeline",
			Sources:     cli.EnvVars("MEDIAKB_MEDIA_BUCKET", "MEDIA_BUCKET"),
			Destination: &x.mediaBucket,
		},
		&cli.StringFlag{
			Name:        "kb-bucket",
			Usage:       "Bucket for knowledge base documents",
			Category:    "Pipeline",
			Sources:     cli.EnvVars("MEDIAKB_KB_BUCKET", "KB_BUCKET"),
			Destination: &x.knowledgeBucket,
		},
		&cli.StringFlag{
			Name:        "kb-id",
			Usage:       "Bedrock knowledge base ID",
			Category:    "Pipeline",
			Sources:     cli.EnvVars("MEDIAKB_KB_ID", "KB_ID"),
			Destination: &x.knowledgeBaseID,
		},
		&cli.StringFlag{
			Name:        "data-source-id",
			Usage:       "Bedrock knowledge base data source ID to ingest",
			Category:    "Pipeline",
			Sources:     cli.EnvVars("MEDIAKB_DATA_SOURCE_ID", "DATA_SOURCE_ID"),
			Destination: &x.dataSourceID,
		},
		&cli.StringFlag{
			Name:        "model-arn",
			Usage:       "Model ARN used to generate answers",
			Category:    "Pipeline",
			Sources:     cli.EnvVars("MEDIAKB_MODEL_ARN", "MODEL_ARN"),
			Destination: &x.modelARN,
		},
		&cli.DurationFlag{
			Name:        "upload-link-expiry",
			Usage:       "Validity of issued upload URLs",
			Category:    "Pipeline",
			Value:       usecase.DefaultUploadLinkExpiry,
			Sources:     cli.EnvVars("MEDIAKB_UPLOAD_LINK_EXPIRY"),
			Destination: &x.uploadExpiry,
		},
	}
}

func (x Pipeline) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("media_bucket", x.mediaBucket),
		slog.String("kb_bucket", x.knowledgeBucket),
		slog.String("kb_id", x.knowledgeBaseID),
		slog.String("data_source_id", x.dataSourceID),
		slog.String("model_arn", x.modelARN),
		slog.Duration("upload_link_expiry", x.uploadExpiry),
	)
}

func (x *Pipeline) Buckets() usecase.Buckets {
	return usecase.Buckets{
		Media:     x.mediaBucket,
		Knowledge: x.knowledgeBucket,
	}
}

func (x *Pipeline) UploadExpiry() time.Duration {
	return x.uploadExpiry
}

// Validate checks that the buckets are set
func (x *Pipeline) Validate() error {
	if x.mediaBucket == "" {
		return goerr.Wrap(ErrMissingSetting, "media bucket is required", goerr.V(FlagKey, "media-bucket"))
	}
	if x.knowledgeBucket == "" {
		return goerr.Wrap(ErrMissingSetting, "knowledge base bucket is required", goerr.V(FlagKey, "kb-bucket"))
	}
	return nil
}

// Transcribe creates the transcription service
func (x *Pipeline) Transcribe(cfg aws.Config) transcribe.Service {
	return transcribe.New(awstranscribe.NewFromConfig(cfg))
}

// KnowledgeBase creates the Bedrock knowledge base service. It returns nil
// when no knowledge base is configured.
func (x *Pipeline) KnowledgeBase(cfg aws.Config) (bedrock.Service, error) {
	if x.knowledgeBaseID == "" {
		return nil, nil
	}

	svc, err := bedrock.New(
		bedrockagent.NewFromConfig(cfg),
		bedrockagentruntime.NewFromConfig(cfg),
		bedrock.Config{
			KnowledgeBaseID: x.knowledgeBaseID,
			DataSourceID:    x.dataSourceID,
			ModelARN:        x.modelARN,
		},
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create knowledge base service")
	}
	return svc, nil
}
