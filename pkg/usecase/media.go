package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mediakb/pkg/domain/model"
	"github.com/secmon-lab/mediakb/pkg/service/storage"
	"github.com/secmon-lab/mediakb/pkg/utils/logging"
)

// MediaUseCase issues upload links for new media
type MediaUseCase struct {
	storage storage.Service
	status  *statusRecorder
	bucket  string
	expiry  time.Duration
}

func newMediaUseCase(svc storage.Service, status *statusRecorder, bucket string, expiry time.Duration) *MediaUseCase {
	return &MediaUseCase{
		storage: svc,
		status:  status,
		bucket:  bucket,
		expiry:  expiry,
	}
}

// IssueUploadLink validates the media metadata in body, stages body verbatim
// under a new task ID and returns a presigned URL for uploading the media.
// Decode failures wrap ErrInvalidRequest and validation failures are returned
// as *model.ValidationErrors; nothing is written in either case.
func (uc *MediaUseCase) IssueUploadLink(ctx context.Context, body []byte) (*model.UploadLink, error) {
	if uc.storage == nil {
		return nil, goerr.Wrap(ErrNotConfigured, "storage is required to issue upload links")
	}

	var meta model.MediaMetadata
	if err := json.Unmarshal(body, &meta); err != nil {
		return nil, goerr.Wrap(ErrInvalidRequest, err.Error())
	}
	if err := meta.Validate(); err != nil {
		return nil, err
	}

	id := model.NewTaskID()
	if err := uc.storage.Put(ctx, &storage.PutInput{
		Bucket:      uc.bucket,
		Key:         model.StagedMetadataKey(id),
		Body:        body,
		ContentType: "application/json",
	}); err != nil {
		return nil, goerr.Wrap(err, "failed to stage media metadata", goerr.V(model.TaskIDKey, id))
	}

	uploadURL, err := uc.storage.PresignPut(ctx, &storage.PresignInput{
		Bucket:   uc.bucket,
		Key:      model.UploadKey(id),
		Expires:  uc.expiry,
		Metadata: map[string]string{model.TaskIDKey: id.String()},
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to presign upload URL", goerr.V(model.TaskIDKey, id))
	}

	uc.status.staged(ctx, id, &meta)

	logging.From(ctx).Info("upload link issued",
		"task_id", id,
		"topic", meta.Topic,
		"expires_in", uc.expiry.String(),
	)

	return &model.UploadLink{
		UploadURL: uploadURL,
		TaskID:    id,
	}, nil
}
