package config

import (
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mediakb/pkg/service/storage"
	"github.com/secmon-lab/mediakb/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Storage holds CLI flags for the object storage backend
type Storage struct {
	backend   string
	pathStyle bool
}

func (x *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "storage-backend",
			Usage:       "Object storage backend [s3|memory]",
			Category:    "Storage",
			Value:       "s3",
			Sources:     cli.EnvVars("MEDIAKB_STORAGE_BACKEND"),
			Destination: &x.backend,
		},
		&cli.BoolFlag{
			Name:        "s3-path-style",
			Usage:       "Use path style S3 addressing (for S3 compatible emulators)",
			Category:    "Storage",
			Sources:     cli.EnvVars("MEDIAKB_S3_PATH_STYLE"),
			Destination: &x.pathStyle,
		},
	}
}

func (x Storage) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", x.backend),
		slog.Bool("s3_path_style", x.pathStyle),
	)
}

// Backend returns the configured backend type
func (x *Storage) Backend() string {
	return x.backend
}

// Configure creates the storage service. Only S3 compatible storage can be
// read by Transcribe and indexed by the knowledge base data source, so any
// other backend is rejected.
func (x *Storage) Configure(awsCfg aws.Config) (storage.Service, error) {
	switch x.backend {
	case "s3":
		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.UsePathStyle = x.pathStyle
		})
		logging.Default().Info("Using S3 storage", "region", awsCfg.Region)
		return storage.NewS3(client), nil

	case "memory":
		logging.Default().Info("Using in-memory storage (development mode)")
		return storage.NewMemory(), nil

	default:
		return nil, goerr.Wrap(ErrInvalidConfig, "unsupported storage backend", goerr.V(BackendKey, x.backend))
	}
}
