package model

import (
	"time"

	"github.com/secmon-lab/mediakb/pkg/domain/types"
)

// Task is an observational record of where an upload is in the pipeline.
// The pipeline never reads it to make decisions; the storage objects keyed
// by ID remain the source of truth.
type Task struct {
	ID             TaskID
	Status         types.TaskStatus
	Topic          string
	SourceURL      string
	MediaURI       string
	IngestionJobID string
	Error          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TaskUpdate carries the fields changed by a stage transition. Empty strings
// leave the stored value untouched, except that a transition to any status
// other than FAILED clears a stored Error.
type TaskUpdate struct {
	Status         types.TaskStatus
	MediaURI       string
	IngestionJobID string
	Error          string
}
