package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/mediakb/pkg/domain/model"
	"github.com/secmon-lab/mediakb/pkg/domain/types"
	"github.com/secmon-lab/mediakb/pkg/repository/memory"
	"github.com/secmon-lab/mediakb/pkg/usecase"
)

func TestTaskUseCase(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	gt.NoError(t, repo.Task().Put(ctx, &model.Task{ID: "abc123", Status: types.TaskStatusStaged, Topic: "science"})).Required()
	uc := usecase.NewTaskUseCase(repo)

	t.Run("get", func(t *testing.T) {
		task, err := uc.Get(ctx, "abc123")
		gt.NoError(t, err).Required()
		gt.Value(t, task.Topic).Equal("science")
	})

	t.Run("get missing", func(t *testing.T) {
		_, err := uc.Get(ctx, "missing")
		gt.Error(t, err).Is(usecase.ErrTaskNotFound)
	})

	t.Run("get invalid id", func(t *testing.T) {
		_, err := uc.Get(ctx, "a/b")
		gt.Error(t, err).Is(usecase.ErrTaskNotFound)
	})

	t.Run("list by status", func(t *testing.T) {
		tasks, err := uc.ListByStatus(ctx, types.TaskStatusStaged, 0)
		gt.NoError(t, err).Required()
		gt.Array(t, tasks).Length(1)

		_, err = uc.ListByStatus(ctx, types.TaskStatus("DONE"), 0)
		gt.Value(t, err).NotNil()
	})

	t.Run("without repository", func(t *testing.T) {
		_, err := usecase.NewTaskUseCase(nil).Get(ctx, "abc123")
		gt.Error(t, err).Is(usecase.ErrNotConfigured)
	})
}
