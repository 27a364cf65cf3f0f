package transcribe

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/transcribe"
	"github.com/aws/aws-sdk-go-v2/service/transcribe/types"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mediakb/pkg/domain/model"
	"github.com/secmon-lab/mediakb/pkg/utils/safe"
)

// maxTranscriptSize caps the transcript download
const maxTranscriptSize = 64 << 20

// API is the subset of the Amazon Transcribe client used by Service
type API interface {
	StartTranscriptionJob(ctx context.Context, params *transcribe.StartTranscriptionJobInput, optFns ...func(*transcribe.Options)) (*transcribe.StartTranscriptionJobOutput, error)
	GetTranscriptionJob(ctx context.Context, params *transcribe.GetTranscriptionJobInput, optFns ...func(*transcribe.Options)) (*transcribe.GetTranscriptionJobOutput, error)
}

var _ API = (*transcribe.Client)(nil)

type client struct {
	api        API
	httpClient *http.Client
}

// Option is a functional option for client configuration
type Option func(*client)

// WithHTTPClient replaces the client used to download transcripts
func WithHTTPClient(c *http.Client) Option {
	return func(x *client) {
		x.httpClient = c
	}
}

// New creates a Service backed by Amazon Transcribe
func New(api API, opts ...Option) Service {
	c := &client{
		api:        api,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewStartJobInput builds the job request: job name and tag are the task ID,
// speaker labels are on with at most MaxSpeakerLabels speakers, and the
// language is identified automatically.
func NewStartJobInput(id model.TaskID, mediaURI string) *transcribe.StartTranscriptionJobInput {
	return &transcribe.StartTranscriptionJobInput{
		TranscriptionJobName: aws.String(string(id)),
		Media: &types.Media{
			MediaFileUri: aws.String(mediaURI),
		},
		Settings: &types.Settings{
			ShowSpeakerLabels: aws.Bool(true),
			MaxSpeakerLabels:  aws.Int32(MaxSpeakerLabels),
		},
		IdentifyLanguage: aws.Bool(true),
		Tags: []types.Tag{
			{Key: aws.String(TaskIDTag), Value: aws.String(string(id))},
		},
	}
}

func (x *client) StartJob(ctx context.Context, id model.TaskID, mediaURI string) error {
	if _, err := x.api.StartTranscriptionJob(ctx, NewStartJobInput(id, mediaURI)); err != nil {
		return goerr.Wrap(err, "failed to start transcription job",
			goerr.V(model.TaskIDKey, id),
			goerr.V("media_uri", mediaURI))
	}
	return nil
}

func (x *client) TranscriptURI(ctx context.Context, jobName string) (string, error) {
	out, err := x.api.GetTranscriptionJob(ctx, &transcribe.GetTranscriptionJobInput{
		TranscriptionJobName: aws.String(jobName),
	})
	if err != nil {
		var nf *types.NotFoundException
		if errors.As(err, &nf) {
			return "", goerr.Wrap(ErrJobNotFound, err.Error(), goerr.V(model.JobNameKey, jobName))
		}
		return "", goerr.Wrap(err, "failed to get transcription job", goerr.V(model.JobNameKey, jobName))
	}

	job := out.TranscriptionJob
	if job == nil {
		return "", goerr.Wrap(ErrJobNotFound, "response has no transcription job", goerr.V(model.JobNameKey, jobName))
	}
	if job.Transcript == nil {
		return "", goerr.Wrap(ErrTranscriptAbsent, "transcription job has no transcript",
			goerr.V(model.JobNameKey, jobName),
			goerr.V("job_status", job.TranscriptionJobStatus))
	}
	if job.Transcript.TranscriptFileUri == nil || *job.Transcript.TranscriptFileUri == "" {
		return "", goerr.Wrap(ErrTranscriptURIAbsent, "transcript has no file URI", goerr.V(model.JobNameKey, jobName))
	}

	return *job.Transcript.TranscriptFileUri, nil
}

func (x *client) FetchTranscript(ctx context.Context, uri string) (*model.TranscriptionResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build transcript request")
	}

	resp, err := x.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to download transcript")
	}
	body, err := safe.ReadAll(ctx, resp.Body, maxTranscriptSize)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read transcript")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, goerr.New("unexpected transcript download status",
			goerr.V("status", resp.StatusCode),
			goerr.V("body", truncate(string(body), 256)))
	}

	var result model.TranscriptionResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, goerr.Wrap(err, "failed to decode transcript")
	}
	return &result, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
