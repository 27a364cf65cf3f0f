package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mediakb/pkg/domain/model"
	"github.com/secmon-lab/mediakb/pkg/domain/types"
)

type taskRepository struct {
	mu    sync.RWMutex
	tasks map[model.TaskID]*model.Task
}

func newTaskRepository() *taskRepository {
	return &taskRepository{
		tasks: make(map[model.TaskID]*model.Task),
	}
}

func copyTask(t *model.Task) *model.Task {
	copied := *t
	return &copied
}

func (r *taskRepository) Put(ctx context.Context, task *model.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	stored := copyTask(task)
	if existing, ok := r.tasks[task.ID]; ok {
		stored.CreatedAt = existing.CreatedAt
	} else if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	r.tasks[stored.ID] = stored
	return nil
}

func (r *taskRepository) Get(ctx context.Context, id model.TaskID) (*model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, ok := r.tasks[id]
	if !ok {
		return nil, goerr.Wrap(ErrNotFound, "task not found", goerr.V(model.TaskIDKey, id))
	}
	return copyTask(task), nil
}

func (r *taskRepository) Update(ctx context.Context, id model.TaskID, update model.TaskUpdate) (*model.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	task, ok := r.tasks[id]
	if !ok {
		task = &model.Task{ID: id, CreatedAt: now}
		r.tasks[id] = task
	}

	applyUpdate(task, update)
	task.UpdatedAt = now

	return copyTask(task), nil
}

func (r *taskRepository) ListByStatus(ctx context.Context, status types.TaskStatus, limit int) ([]*model.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.Task
	for _, t := range r.tasks {
		if t.Status == status {
			result = append(result, copyTask(t))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func applyUpdate(task *model.Task, update model.TaskUpdate) {
	if update.Status != "" {
		task.Status = update.Status
	}
	if update.MediaURI != "" {
		task.MediaURI = update.MediaURI
	}
	if update.IngestionJobID != "" {
		task.IngestionJobID = update.IngestionJobID
	}
	if update.Error != "" {
		task.Error = update.Error
	} else if update.Status != "" && update.Status != types.TaskStatusFailed {
		task.Error = ""
	}
}
