package model

import (
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// TaskID correlates one upload through every pipeline stage. It names the
// transcription job and every storage object written for the upload.
type TaskID string

// NewTaskID mints a random, URL-safe task ID
func NewTaskID() TaskID {
	return TaskID(uuid.NewString())
}

func (x TaskID) String() string {
	return string(x)
}

// Validate checks that the ID is non-empty and made only of URL-safe
// unreserved characters, so it can be used verbatim as a key segment and a
// transcription job name.
func (x TaskID) Validate() error {
	if x == "" {
		return goerr.Wrap(ErrInvalidTaskID, "task ID is empty")
	}
	for _, c := range string(x) {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '.':
		default:
			return goerr.Wrap(ErrInvalidTaskID, "task ID contains unsupported character",
				goerr.V(TaskIDKey, string(x)),
				goerr.V("char", string(c)))
		}
	}
	return nil
}
