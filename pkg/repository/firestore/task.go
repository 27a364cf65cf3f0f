package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mediakb/pkg/domain/model"
	"github.com/secmon-lab/mediakb/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// taskDoc is the Firestore document representation of model.Task
type taskDoc struct {
	ID             string    `firestore:"ID"`
	Status         string    `firestore:"Status"`
	Topic          string    `firestore:"Topic"`
	SourceURL      string    `firestore:"SourceURL"`
	MediaURI       string    `firestore:"MediaURI"`
	IngestionJobID string    `firestore:"IngestionJobID"`
	Error          string    `firestore:"Error"`
	CreatedAt      time.Time `firestore:"CreatedAt"`
	UpdatedAt      time.Time `firestore:"UpdatedAt"`
}

func toTaskDoc(t *model.Task) *taskDoc {
	return &taskDoc{
		ID:             string(t.ID),
		Status:         string(t.Status),
		Topic:          t.Topic,
		SourceURL:      t.SourceURL,
		MediaURI:       t.MediaURI,
		IngestionJobID: t.IngestionJobID,
		Error:          t.Error,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

func fromTaskDoc(d *taskDoc) *model.Task {
	return &model.Task{
		ID:             model.TaskID(d.ID),
		Status:         types.TaskStatus(d.Status),
		Topic:          d.Topic,
		SourceURL:      d.SourceURL,
		MediaURI:       d.MediaURI,
		IngestionJobID: d.IngestionJobID,
		Error:          d.Error,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

func (d *taskDoc) apply(update model.TaskUpdate) {
	if update.Status != "" {
		d.Status = string(update.Status)
	}
	if update.MediaURI != "" {
		d.MediaURI = update.MediaURI
	}
	if update.IngestionJobID != "" {
		d.IngestionJobID = update.IngestionJobID
	}
	if update.Error != "" {
		d.Error = update.Error
	} else if update.Status != "" && update.Status != types.TaskStatusFailed {
		d.Error = ""
	}
}

type taskRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newTaskRepository(client *firestore.Client) *taskRepository {
	return &taskRepository{
		client: client,
	}
}

func (r *taskRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + TasksCollection)
}

func (r *taskRepository) Put(ctx context.Context, task *model.Task) error {
	ref := r.collection().Doc(string(task.ID))
	now := time.Now().UTC()

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc := toTaskDoc(task)
		doc.UpdatedAt = now
		if doc.CreatedAt.IsZero() {
			doc.CreatedAt = now
		}

		snap, err := tx.Get(ref)
		switch {
		case err == nil:
			var existing taskDoc
			if err := snap.DataTo(&existing); err != nil {
				return goerr.Wrap(err, "failed to unmarshal task")
			}
			doc.CreatedAt = existing.CreatedAt
		case status.Code(err) != codes.NotFound:
			return goerr.Wrap(err, "failed to get task")
		}

		return tx.Set(ref, doc)
	})
	if err != nil {
		return goerr.Wrap(err, "failed to put task", goerr.V(model.TaskIDKey, task.ID))
	}
	return nil
}

func (r *taskRepository) Get(ctx context.Context, id model.TaskID) (*model.Task, error) {
	snap, err := r.collection().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "task not found", goerr.V(model.TaskIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get task", goerr.V(model.TaskIDKey, id))
	}

	var d taskDoc
	if err := snap.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal task", goerr.V(model.TaskIDKey, id))
	}
	return fromTaskDoc(&d), nil
}

func (r *taskRepository) Update(ctx context.Context, id model.TaskID, update model.TaskUpdate) (*model.Task, error) {
	ref := r.collection().Doc(string(id))
	now := time.Now().UTC()

	var updated taskDoc
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		d := taskDoc{ID: string(id), CreatedAt: now}
		switch {
		case err == nil:
			if err := snap.DataTo(&d); err != nil {
				return goerr.Wrap(err, "failed to unmarshal task")
			}
		case status.Code(err) != codes.NotFound:
			return goerr.Wrap(err, "failed to get task")
		}

		d.apply(update)
		d.UpdatedAt = now
		updated = d
		return tx.Set(ref, &d)
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update task",
			goerr.V(model.TaskIDKey, id),
			goerr.V("status", update.Status))
	}

	return fromTaskDoc(&updated), nil
}

func (r *taskRepository) ListByStatus(ctx context.Context, st types.TaskStatus, limit int) ([]*model.Task, error) {
	query := r.collection().
		Where("Status", "==", string(st)).
		OrderBy("UpdatedAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	tasks := make([]*model.Task, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate tasks", goerr.V("status", st))
		}

		var d taskDoc
		if err := snap.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal task")
		}
		tasks = append(tasks, fromTaskDoc(&d))
	}

	return tasks, nil
}
