package usecase

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mediakb/pkg/domain/model"
	"github.com/secmon-lab/mediakb/pkg/domain/types"
	"github.com/secmon-lab/mediakb/pkg/service/storage"
	"github.com/secmon-lab/mediakb/pkg/service/transcribe"
	"github.com/secmon-lab/mediakb/pkg/utils/logging"
)

// TranscriptionUseCase starts transcription of uploaded media and turns
// finished transcripts into knowledge base documents
type TranscriptionUseCase struct {
	storage    storage.Service
	transcribe transcribe.Service
	knowledge  *KnowledgeUseCase
	status     *statusRecorder
	buckets    Buckets
}

func newTranscriptionUseCase(st storage.Service, tr transcribe.Service, knowledge *KnowledgeUseCase, status *statusRecorder, buckets Buckets) *TranscriptionUseCase {
	return &TranscriptionUseCase{
		storage:    st,
		transcribe: tr,
		knowledge:  knowledge,
		status:     status,
		buckets:    buckets,
	}
}

// DispatchResult reports the outcome of every record of a batch
type DispatchResult struct {
	Started  []model.TaskID
	Failures []DispatchFailure
}

// DispatchFailure is a record that could not be dispatched
type DispatchFailure struct {
	Bucket string
	Key    string
	Err    error
}

// Dispatch starts one transcription job per uploaded object. Records are
// processed in order and independently; a failed record does not stop the
// rest. When any record failed, the returned error wraps ErrDispatchFailed
// and every record error.
func (uc *TranscriptionUseCase) Dispatch(ctx context.Context, records []model.UploadRecord) (*DispatchResult, error) {
	if uc.storage == nil || uc.transcribe == nil {
		return nil, goerr.Wrap(ErrNotConfigured, "storage and transcription are required to dispatch media")
	}

	logger := logging.From(ctx)
	result := &DispatchResult{}

	for _, rec := range records {
		id, err := uc.dispatchRecord(ctx, rec)
		if err != nil {
			logger.Error("failed to dispatch uploaded media",
				"bucket", rec.Bucket,
				"key", rec.Key,
				"error", err,
			)
			result.Failures = append(result.Failures, DispatchFailure{
				Bucket: rec.Bucket,
				Key:    rec.Key,
				Err:    err,
			})
			continue
		}

		logger.Info("transcription job started", "task_id", id, "bucket", rec.Bucket)
		result.Started = append(result.Started, id)
	}

	if len(result.Failures) > 0 {
		errs := []error{ErrDispatchFailed}
		for _, f := range result.Failures {
			errs = append(errs, f.Err)
		}
		return result, goerr.Wrap(errors.Join(errs...), "some uploaded media were not dispatched",
			goerr.V("failed", len(result.Failures)),
			goerr.V("total", len(records)))
	}

	return result, nil
}

func (uc *TranscriptionUseCase) dispatchRecord(ctx context.Context, rec model.UploadRecord) (model.TaskID, error) {
	key, err := model.DecodeEventKey(rec.Key)
	if err != nil {
		return "", err
	}
	id, err := model.TaskIDFromUploadKey(key)
	if err != nil {
		return "", err
	}

	mediaURI := uc.storage.URI(rec.Bucket, key)
	if err := uc.transcribe.StartJob(ctx, id, mediaURI); err != nil {
		return "", err
	}

	uc.status.update(ctx, id, model.TaskUpdate{
		Status:   types.TaskStatusTranscribing,
		MediaURI: mediaURI,
	})

	return id, nil
}

// HandleEvent processes a transcription job state change. Failed jobs only
// mark the task as failed; completed jobs run Complete.
func (uc *TranscriptionUseCase) HandleEvent(ctx context.Context, ev *model.TranscriptionEvent) error {
	if ev.Succeeded() {
		return uc.Complete(ctx, ev.JobName)
	}

	logging.From(ctx).Warn("transcription job did not complete",
		"job_name", ev.JobName,
		"status", ev.Status,
		"reason", ev.Reason,
	)

	id := model.TaskID(ev.JobName)
	if err := id.Validate(); err != nil {
		return goerr.Wrap(err, "invalid transcription job name", goerr.V(model.JobNameKey, ev.JobName))
	}

	reason := ev.Reason
	if reason == "" {
		reason = "transcription job " + ev.Status
	}
	task := uc.status.update(ctx, id, model.TaskUpdate{
		Status: types.TaskStatusFailed,
		Error:  reason,
	})
	uc.status.notify(ctx, task)

	return nil
}

// Complete writes the transcript of a finished job and its metadata sidecar
// to the knowledge bucket, then starts ingestion. Every step depends on the
// previous one and all writes overwrite, so a retry redoes everything.
func (uc *TranscriptionUseCase) Complete(ctx context.Context, jobName string) error {
	if uc.storage == nil || uc.transcribe == nil {
		return goerr.Wrap(ErrNotConfigured, "storage and transcription are required to complete transcription")
	}

	logger := logging.From(ctx)
	id := model.TaskID(jobName)
	if err := id.Validate(); err != nil {
		return goerr.Wrap(err, "invalid transcription job name", goerr.V(model.JobNameKey, jobName))
	}

	uri, err := uc.transcribe.TranscriptURI(ctx, jobName)
	if err != nil {
		return goerr.Wrap(err, "failed to resolve transcript", goerr.V(model.TaskIDKey, id))
	}

	result, err := uc.transcribe.FetchTranscript(ctx, uri)
	if err != nil {
		logger.Error("failed to fetch transcript", "task_id", id, "error", err)
		return goerr.Wrap(err, "failed to fetch transcript", goerr.V(model.TaskIDKey, id))
	}
	text := result.Text()

	raw, err := uc.storage.Get(ctx, uc.buckets.Media, model.StagedMetadataKey(id))
	if err != nil {
		return goerr.Wrap(err, "failed to read staged metadata", goerr.V(model.TaskIDKey, id))
	}
	var meta model.MediaMetadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return goerr.Wrap(err, "failed to decode staged metadata", goerr.V(model.TaskIDKey, id))
	}

	sidecar, err := json.Marshal(model.NewMetadataSidecar(&meta))
	if err != nil {
		return goerr.Wrap(err, "failed to encode metadata sidecar", goerr.V(model.TaskIDKey, id))
	}

	if err := uc.storage.Put(ctx, &storage.PutInput{
		Bucket:      uc.buckets.Knowledge,
		Key:         model.SidecarKey(id),
		Body:        sidecar,
		ContentType: "application/json",
	}); err != nil {
		return goerr.Wrap(err, "failed to write metadata sidecar", goerr.V(model.TaskIDKey, id))
	}

	if err := uc.storage.Put(ctx, &storage.PutInput{
		Bucket:      uc.buckets.Knowledge,
		Key:         model.TranscriptKey(id),
		Body:        []byte(text),
		ContentType: "text/plain",
	}); err != nil {
		return goerr.Wrap(err, "failed to write transcript", goerr.V(model.TaskIDKey, id))
	}

	jobID, err := uc.knowledge.Sync(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to start knowledge base ingestion", goerr.V(model.TaskIDKey, id))
	}

	logger.Info("transcript indexed",
		"task_id", id,
		"ingestion_job_id", jobID,
		"transcript_bytes", len(text),
	)

	task := uc.status.update(ctx, id, model.TaskUpdate{
		Status:         types.TaskStatusIndexing,
		IngestionJobID: jobID,
	})
	if task.Topic == "" {
		task.Topic = meta.Topic
		task.SourceURL = meta.SourceURL
	}
	uc.status.notify(ctx, task)

	return nil
}
