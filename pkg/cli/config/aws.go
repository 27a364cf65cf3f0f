package config

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// AWS holds CLI flags for the AWS SDK
type AWS struct {
	region   string
	profile  string
	endpoint string
}

func (x *AWS) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "aws-region",
			Usage:       "AWS region (defaults to the SDK resolution chain)",
			Category:    "AWS",
			Sources:     cli.EnvVars("MEDIAKB_AWS_REGION"),
			Destination: &x.region,
		},
		&cli.StringFlag{
			Name:        "aws-profile",
			Usage:       "AWS shared config profile",
			Category:    "AWS",
			Sources:     cli.EnvVars("MEDIAKB_AWS_PROFILE"),
			Destination: &x.profile,
		},
		&cli.StringFlag{
			Name:        "aws-endpoint",
			Usage:       "Override AWS service endpoint (e.g. a local emulator)",
			Category:    "AWS",
			Sources:     cli.EnvVars("MEDIAKB_AWS_ENDPOINT"),
			Destination: &x.endpoint,
		},
	}
}

func (x AWS) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("region", x.region),
		slog.String("profile", x.profile),
		slog.String("endpoint", x.endpoint),
	)
}

// Configure loads the AWS SDK configuration
func (x *AWS) Configure(ctx context.Context) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if x.region != "" {
		opts = append(opts, awsconfig.WithRegion(x.region))
	}
	if x.profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(x.profile))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, goerr.Wrap(err, "failed to load AWS config", goerr.V("region", x.region), goerr.V("profile", x.profile))
	}
	if x.endpoint != "" {
		cfg.BaseEndpoint = aws.String(x.endpoint)
	}

	return cfg, nil
}
