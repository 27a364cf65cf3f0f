package cli

import (
	"context"
	"strings"

	"github.com/aws/aws-lambda-go/lambdacontext"
	lambdactrl "github.com/secmon-lab/mediakb/pkg/controller/lambda"
	"github.com/secmon-lab/mediakb/pkg/usecase"
	"github.com/secmon-lab/mediakb/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdLambda() *cli.Command {
	var function string
	var cfg pipelineConfig

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "function",
			Aliases:     []string{"f"},
			Usage:       "Function to serve [" + strings.Join(lambdactrl.Functions, "|") + "]",
			Required:    true,
			Sources:     cli.EnvVars("MEDIAKB_LAMBDA_FUNCTION"),
			Destination: &function,
		},
	}
	flags = append(flags, cfg.Flags()...)

	return &cli.Command{
		Name:  "lambda",
		Usage: "Serve a pipeline stage in the AWS Lambda runtime",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			// The execution environment is frozen once a handler returns
			uc, cleanup, err := cfg.Configure(ctx, usecase.WithSyncNotify())
			if err != nil {
				return err
			}
			defer cleanup()

			logging.Default().Info("Starting lambda function",
				"function", function,
				"lambda_function_name", lambdacontext.FunctionName,
			)
			return lambdactrl.New(uc).Start(function)
		},
	}
}
