package model_test

import (
	"errors"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/mediakb/pkg/domain/model"
)

func TestParseTranscriptionEvent(t *testing.T) {
	t.Run("job name payload", func(t *testing.T) {
		ev, err := model.ParseTranscriptionEvent([]byte(`{"transcription_job":"abc123"}`))
		gt.NoError(t, err).Required()
		gt.Value(t, ev.JobName).Equal("abc123")
		gt.Bool(t, ev.Succeeded()).True()
	})

	t.Run("camel case job name payload", func(t *testing.T) {
		ev, err := model.ParseTranscriptionEvent([]byte(`{"transcriptionJob":"abc123"}`))
		gt.NoError(t, err).Required()
		gt.Value(t, ev.JobName).Equal("abc123")
	})

	t.Run("null detail is treated as absent", func(t *testing.T) {
		ev, err := model.ParseTranscriptionEvent([]byte(`{"transcription_job":"abc123","detail":null}`))
		gt.NoError(t, err).Required()
		gt.Value(t, ev.JobName).Equal("abc123")
		gt.Bool(t, ev.Succeeded()).True()
	})

	t.Run("eventbridge completed envelope", func(t *testing.T) {
		raw := `{
  "version": "0",
  "id": "event-id",
  "detail-type": "Transcribe Job State Change",
  "source": "aws.transcribe",
  "account": "123456789012",
  "time": "2024-01-15T10:00:00Z",
  "region": "us-east-1",
  "resources": [],
  "detail": {"TranscriptionJobName": "abc123", "TranscriptionJobStatus": "COMPLETED"}
}`
		ev, err := model.ParseTranscriptionEvent([]byte(raw))
		gt.NoError(t, err).Required()
		gt.Value(t, ev.JobName).Equal("abc123")
		gt.Bool(t, ev.Succeeded()).True()
	})

	t.Run("eventbridge failed envelope", func(t *testing.T) {
		raw := `{"source":"aws.transcribe","detail":{"TranscriptionJobName":"abc123","TranscriptionJobStatus":"FAILED","FailureReason":"unsupported media"}}`
		ev, err := model.ParseTranscriptionEvent([]byte(raw))
		gt.NoError(t, err).Required()
		gt.Bool(t, ev.Succeeded()).False()
		gt.Value(t, ev.Reason).Equal("unsupported media")
	})

	t.Run("invalid payloads", func(t *testing.T) {
		for _, raw := range []string{
			`not json`,
			`{}`,
			`{"transcription_job":""}`,
			`{"source":"aws.transcribe","detail":{}}`,
			`{"source":"aws.transcribe","detail":null}`,
		} {
			_, err := model.ParseTranscriptionEvent([]byte(raw))
			gt.Bool(t, errors.Is(err, model.ErrInvalidEvent)).True()
		}
	})
}

func TestUploadRecordsFromS3Event(t *testing.T) {
	ev := events.S3Event{
		Records: []events.S3EventRecord{
			{S3: events.S3Entity{
				Bucket: events.S3Bucket{Name: "media"},
				Object: events.S3Object{Key: "media-uploads/abc123"},
			}},
			{S3: events.S3Entity{
				Bucket: events.S3Bucket{Name: "media"},
				Object: events.S3Object{Key: "media-uploads/def456"},
			}},
		},
	}

	records := model.UploadRecordsFromS3Event(ev)
	gt.Array(t, records).Length(2).Required()
	gt.Value(t, records[0]).Equal(model.UploadRecord{Bucket: "media", Key: "media-uploads/abc123"})
	gt.Value(t, records[1].Key).Equal("media-uploads/def456")
}
