package transcribe

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mediakb/pkg/domain/model"
)

var (
	// ErrJobNotFound: the transcription service has no job with the name
	ErrJobNotFound = goerr.New("transcription job not found")
	// ErrTranscriptAbsent: the job has no transcript section
	ErrTranscriptAbsent = goerr.New("transcription job has no transcript")
	// ErrTranscriptURIAbsent: the transcript section has no file URI
	ErrTranscriptURIAbsent = goerr.New("transcript has no file URI")
)

const (
	// MaxSpeakerLabels is the diarization speaker limit of every job
	MaxSpeakerLabels = 5
	// TaskIDTag is the job tag carrying the task ID
	TaskIDTag = "task_id"
)

// Service starts transcription jobs and retrieves their results
type Service interface {
	// StartJob starts a job named after the task ID for the media at mediaURI
	StartJob(ctx context.Context, id model.TaskID, mediaURI string) error

	// TranscriptURI returns the transcript file location of a finished job
	TranscriptURI(ctx context.Context, jobName string) (string, error)

	// FetchTranscript downloads and decodes a transcript file
	FetchTranscript(ctx context.Context, uri string) (*model.TranscriptionResult, error)
}
