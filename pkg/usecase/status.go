package usecase

import (
	"context"

	"github.com/secmon-lab/mediakb/pkg/domain/interfaces"
	"github.com/secmon-lab/mediakb/pkg/domain/model"
	"github.com/secmon-lab/mediakb/pkg/domain/types"
	"github.com/secmon-lab/mediakb/pkg/service/slack"
	"github.com/secmon-lab/mediakb/pkg/utils/async"
	"github.com/secmon-lab/mediakb/pkg/utils/errutil"
	"github.com/secmon-lab/mediakb/pkg/utils/logging"
)

// statusRecorder keeps task status records and sends notifications. Every
// failure is logged and reported, never returned: the storage objects are the
// source of truth and the pipeline must not depend on these records.
type statusRecorder struct {
	repo       interfaces.Repository
	notifier   slack.Service
	syncNotify bool
}

func newStatusRecorder(repo interfaces.Repository, notifier slack.Service, syncNotify bool) *statusRecorder {
	return &statusRecorder{
		repo:       repo,
		notifier:   notifier,
		syncNotify: syncNotify,
	}
}

func (x *statusRecorder) staged(ctx context.Context, id model.TaskID, meta *model.MediaMetadata) {
	if x.repo == nil {
		return
	}

	task := &model.Task{
		ID:        id,
		Status:    types.TaskStatusStaged,
		Topic:     meta.Topic,
		SourceURL: meta.SourceURL,
	}
	if err := x.repo.Task().Put(ctx, task); err != nil {
		_ = errutil.Handle(ctx, err, "failed to save task status")
	}
}

// update applies the transition and returns the resulting record. Without a
// repository, or when the write fails, the record is built from update alone.
func (x *statusRecorder) update(ctx context.Context, id model.TaskID, update model.TaskUpdate) *model.Task {
	fallback := &model.Task{
		ID:             id,
		Status:         update.Status,
		MediaURI:       update.MediaURI,
		IngestionJobID: update.IngestionJobID,
		Error:          update.Error,
	}
	if x.repo == nil {
		return fallback
	}

	task, err := x.repo.Task().Update(ctx, id, update)
	if err != nil {
		_ = errutil.Handle(ctx, err, "failed to update task status")
		return fallback
	}

	logging.From(ctx).Debug("task status updated", "task_id", id, "status", task.Status)
	return task
}

// notify sends the notification for the task's current status. It runs in
// the background unless syncNotify is set, in which case it returns after
// the post finished.
func (x *statusRecorder) notify(ctx context.Context, task *model.Task) {
	if x.notifier == nil {
		return
	}

	var send func(context.Context, *model.Task) error
	switch task.Status {
	case types.TaskStatusIndexing:
		send = x.notifier.NotifyIndexing
	case types.TaskStatusFailed:
		send = x.notifier.NotifyFailed
	default:
		return
	}

	copied := *task
	if x.syncNotify {
		if err := send(ctx, &copied); err != nil {
			_ = errutil.Handle(ctx, err, "failed to send task notification")
		}
		return
	}
	async.Dispatch(ctx, func(ctx context.Context) error {
		return send(ctx, &copied)
	})
}
