package model

import (
	"bytes"
	"encoding/json"

	"github.com/aws/aws-lambda-go/events"
	"github.com/m-mizutani/goerr/v2"
)

// UploadRecord is one object-created notification of a storage event batch
type UploadRecord struct {
	Bucket string
	Key    string
}

// UploadRecordsFromS3Event flattens an S3 event notification. Keys are kept
// as delivered (form encoded).
func UploadRecordsFromS3Event(ev events.S3Event) []UploadRecord {
	records := make([]UploadRecord, len(ev.Records))
	for i, r := range ev.Records {
		records[i] = UploadRecord{
			Bucket: r.S3.Bucket.Name,
			Key:    r.S3.Object.Key,
		}
	}
	return records
}

// TranscriptionJobStatusCompleted is the job status reported on success
const TranscriptionJobStatusCompleted = "COMPLETED"

// TranscriptionEvent identifies a transcription job that changed state
type TranscriptionEvent struct {
	JobName string
	Status  string
	Reason  string
}

// Succeeded reports whether the job completed successfully
func (x *TranscriptionEvent) Succeeded() bool {
	return x.Status == TranscriptionJobStatusCompleted
}

type transcriptionJobPayload struct {
	TranscriptionJob      string `json:"transcription_job"`
	TranscriptionJobCamel string `json:"transcriptionJob"`
}

type transcribeStateChangeDetail struct {
	TranscriptionJobName   string `json:"TranscriptionJobName"`
	TranscriptionJobStatus string `json:"TranscriptionJobStatus"`
	FailureReason          string `json:"FailureReason"`
}

// ParseTranscriptionEvent accepts either {"transcription_job": "<name>"}
// (also in camel case), which implies success, or a native EventBridge
// "Transcribe Job State Change" envelope.
func ParseTranscriptionEvent(data []byte) (*TranscriptionEvent, error) {
	var envelope events.CloudWatchEvent
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, goerr.Wrap(ErrInvalidEvent, err.Error())
	}

	rawDetail := bytes.TrimSpace(envelope.Detail)
	hasDetail := len(rawDetail) > 0 && !bytes.Equal(rawDetail, []byte("null"))

	if envelope.Source == "aws.transcribe" || hasDetail {
		var detail transcribeStateChangeDetail
		if err := json.Unmarshal(envelope.Detail, &detail); err != nil || !hasDetail {
			return nil, goerr.Wrap(ErrInvalidEvent, "failed to decode event detail",
				goerr.V("detail_type", envelope.DetailType))
		}
		if detail.TranscriptionJobName == "" {
			return nil, goerr.Wrap(ErrInvalidEvent, "event detail has no TranscriptionJobName",
				goerr.V("detail_type", envelope.DetailType))
		}
		return &TranscriptionEvent{
			JobName: detail.TranscriptionJobName,
			Status:  detail.TranscriptionJobStatus,
			Reason:  detail.FailureReason,
		}, nil
	}

	var payload transcriptionJobPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, goerr.Wrap(ErrInvalidEvent, err.Error())
	}
	name := payload.TranscriptionJob
	if name == "" {
		name = payload.TranscriptionJobCamel
	}
	if name == "" {
		return nil, goerr.Wrap(ErrInvalidEvent, "transcription_job is missing")
	}

	return &TranscriptionEvent{
		JobName: name,
		Status:  TranscriptionJobStatusCompleted,
	}, nil
}
