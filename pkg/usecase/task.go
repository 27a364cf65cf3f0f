package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mediakb/pkg/domain/interfaces"
	"github.com/secmon-lab/mediakb/pkg/domain/model"
	"github.com/secmon-lab/mediakb/pkg/domain/types"
)

// DefaultTaskListLimit bounds ListByStatus when no limit is given
const DefaultTaskListLimit = 100

type TaskUseCase struct {
	repo interfaces.Repository
}

func NewTaskUseCase(repo interfaces.Repository) *TaskUseCase {
	return &TaskUseCase{
		repo: repo,
	}
}

func (uc *TaskUseCase) Get(ctx context.Context, id model.TaskID) (*model.Task, error) {
	if uc.repo == nil {
		return nil, goerr.Wrap(ErrNotConfigured, "repository is required to read task status")
	}
	if err := id.Validate(); err != nil {
		return nil, goerr.Wrap(ErrTaskNotFound, err.Error(), goerr.V(model.TaskIDKey, id))
	}

	task, err := uc.repo.Task().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrTaskNotFound, "no status record for task", goerr.V(model.TaskIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get task", goerr.V(model.TaskIDKey, id))
	}
	return task, nil
}

func (uc *TaskUseCase) ListByStatus(ctx context.Context, status types.TaskStatus, limit int) ([]*model.Task, error) {
	if uc.repo == nil {
		return nil, goerr.Wrap(ErrNotConfigured, "repository is required to list tasks")
	}
	if !status.IsValid() {
		return nil, goerr.New("invalid task status", goerr.V("status", status))
	}
	if limit <= 0 {
		limit = DefaultTaskListLimit
	}

	tasks, err := uc.repo.Task().ListByStatus(ctx, status, limit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list tasks", goerr.V("status", status))
	}
	return tasks, nil
}
