package slack

import (
	"context"

	"github.com/secmon-lab/mediakb/pkg/domain/model"
)

// Service posts task lifecycle notifications to a Slack channel
type Service interface {
	// NotifyIndexing reports that a task's transcript was handed to the
	// knowledge base for ingestion
	NotifyIndexing(ctx context.Context, task *model.Task) error

	// NotifyFailed reports that a task's transcription job failed
	NotifyFailed(ctx context.Context, task *model.Task) error
}
