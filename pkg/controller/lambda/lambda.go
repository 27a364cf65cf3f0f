package lambda

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	awslambda "github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mediakb/pkg/controller/api"
	"github.com/secmon-lab/mediakb/pkg/domain/model"
	"github.com/secmon-lab/mediakb/pkg/usecase"
	"github.com/secmon-lab/mediakb/pkg/utils/errutil"
	"github.com/secmon-lab/mediakb/pkg/utils/logging"
)

// Function names accepted by Handler
const (
	FunctionUploadLink = "upload-link"
	FunctionDispatch   = "dispatch"
	FunctionComplete   = "complete"
	FunctionQuery      = "query"
)

// Functions lists every function name
var Functions = []string{
	FunctionUploadLink,
	FunctionDispatch,
	FunctionComplete,
	FunctionQuery,
}

// ErrUnknownFunction is returned for a function name not in Functions
var ErrUnknownFunction = goerr.New("unknown lambda function")

// Controller exposes the pipeline as AWS Lambda handlers
type Controller struct {
	uc  *usecase.UseCases
	api *api.Handler
}

func New(uc *usecase.UseCases) *Controller {
	return &Controller{
		uc:  uc,
		api: api.New(uc),
	}
}

// Handler returns the handler of the named function
func (x *Controller) Handler(function string) (any, error) {
	switch function {
	case FunctionUploadLink:
		return x.UploadLink, nil
	case FunctionDispatch:
		return x.Dispatch, nil
	case FunctionComplete:
		return x.Complete, nil
	case FunctionQuery:
		return x.Query, nil
	default:
		return nil, goerr.Wrap(ErrUnknownFunction, "no such function",
			goerr.V("function", function),
			goerr.V("available", strings.Join(Functions, ",")))
	}
}

// Start runs the named function in the Lambda runtime. It does not return
// on success.
func (x *Controller) Start(function string) error {
	h, err := x.Handler(function)
	if err != nil {
		return err
	}
	awslambda.Start(h)
	return nil
}

func withRequestLogger(ctx context.Context, function string) context.Context {
	logger := logging.From(ctx).With("function", function)
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		logger = logger.With("aws_request_id", lc.AwsRequestID)
	}
	return logging.With(ctx, logger)
}

func requestBody(req events.APIGatewayProxyRequest) ([]byte, error) {
	if !req.IsBase64Encoded {
		return []byte(req.Body), nil
	}
	body, err := base64.StdEncoding.DecodeString(req.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decode base64 request body")
	}
	return body, nil
}

func proxyResponse(resp *api.Response) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: resp.StatusCode,
		Headers:    map[string]string{"Content-Type": resp.ContentType},
		Body:       string(resp.Body),
	}
}

func badRequest(err error) events.APIGatewayProxyResponse {
	data, _ := json.Marshal(map[string]string{"error": err.Error()})
	return events.APIGatewayProxyResponse{
		StatusCode: 400,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(data),
	}
}

// UploadLink is the API Gateway handler issuing upload links
func (x *Controller) UploadLink(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	ctx = withRequestLogger(ctx, FunctionUploadLink)
	body, err := requestBody(req)
	if err != nil {
		return badRequest(err), nil
	}
	return proxyResponse(x.api.IssueUploadLink(ctx, body)), nil
}

// Query is the API Gateway handler answering queries
func (x *Controller) Query(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	ctx = withRequestLogger(ctx, FunctionQuery)
	body, err := requestBody(req)
	if err != nil {
		return badRequest(err), nil
	}
	return proxyResponse(x.api.Query(ctx, body)), nil
}

// Dispatch is the S3 event handler. A failed record fails the invocation so
// the trigger's retry policy applies.
func (x *Controller) Dispatch(ctx context.Context, ev events.S3Event) error {
	ctx = withRequestLogger(ctx, FunctionDispatch)
	if _, err := x.uc.Transcription.Dispatch(ctx, model.UploadRecordsFromS3Event(ev)); err != nil {
		return errutil.Handle(ctx, err, "failed to dispatch uploaded media")
	}
	return nil
}

// Complete is the transcription event handler
func (x *Controller) Complete(ctx context.Context, payload json.RawMessage) error {
	ctx = withRequestLogger(ctx, FunctionComplete)
	ev, err := model.ParseTranscriptionEvent(payload)
	if err != nil {
		return errutil.Handle(ctx, err, "invalid transcription event")
	}
	if err := x.uc.Transcription.HandleEvent(ctx, ev); err != nil {
		return errutil.Handle(ctx, err, "failed to complete transcription")
	}
	return nil
}
