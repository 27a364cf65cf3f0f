package model

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrMalformedUploadKey is returned when an uploaded object key does not
	// follow the media-uploads/<task_id> layout.
	ErrMalformedUploadKey = goerr.New("malformed upload object key")

	// ErrInvalidTaskID is returned for empty or non URL-safe task identifiers.
	ErrInvalidTaskID = goerr.New("invalid task ID")

	// ErrInvalidEvent is returned when an event payload cannot be interpreted.
	ErrInvalidEvent = goerr.New("invalid event payload")
)

// Context keys for error values
const (
	TaskIDKey    = "task_id"
	ObjectKeyKey = "object_key"
	BucketKey    = "bucket"
	JobNameKey   = "job_name"
)
