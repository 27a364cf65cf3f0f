package usecase

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for use case layer
var (
	// ErrInvalidRequest is returned when a request body cannot be decoded
	ErrInvalidRequest = goerr.New("invalid request body")

	// ErrNotConfigured is returned when an operation needs a service that was
	// not wired
	ErrNotConfigured = goerr.New("service is not configured")

	// ErrTaskNotFound is returned when no status record exists for a task
	ErrTaskNotFound = goerr.New("task not found")

	// ErrDispatchFailed is returned when at least one record of a storage
	// event batch could not be dispatched
	ErrDispatchFailed = goerr.New("failed to dispatch uploaded media")
)

var (
	// ErrNoAnswer is returned when the knowledge base generated no output
	ErrNoAnswer = goerr.New("not found")
)
