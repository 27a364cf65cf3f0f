package interfaces

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/mediakb/pkg/domain/model"
	"github.com/secmon-lab/mediakb/pkg/domain/types"
)

// ErrNotFound is wrapped by every backend when a record does not exist
var ErrNotFound = goerr.New("not found")

// Repository defines the interface for data persistence
type Repository interface {
	Task() TaskRepository
	Close() error
}

// TaskRepository persists observational task status records
type TaskRepository interface {
	// Put creates or overwrites a task record
	Put(ctx context.Context, task *model.Task) error

	// Get retrieves a task by ID
	Get(ctx context.Context, id model.TaskID) (*model.Task, error)

	// Update applies a stage transition. A missing record is created so that
	// a lost earlier write does not hide later stages.
	Update(ctx context.Context, id model.TaskID, update model.TaskUpdate) (*model.Task, error)

	// ListByStatus returns tasks in the given status, most recently updated first
	ListByStatus(ctx context.Context, status types.TaskStatus, limit int) ([]*model.Task, error)
}
