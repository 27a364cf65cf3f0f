package types

import "fmt"

// TaskStatus is the observed lifecycle stage of an upload task
type TaskStatus string

const (
	// TaskStatusStaged: metadata staged, upload link issued
	TaskStatusStaged TaskStatus = "STAGED"
	// TaskStatusTranscribing: media uploaded, transcription job started
	TaskStatusTranscribing TaskStatus = "TRANSCRIBING"
	// TaskStatusIndexing: knowledge base documents written, ingestion started
	TaskStatusIndexing TaskStatus = "INDEXING"
	// TaskStatusFailed: the transcription job reported failure
	TaskStatusFailed TaskStatus = "FAILED"
)

// AllTaskStatuses returns all valid task statuses in lifecycle order
func AllTaskStatuses() []TaskStatus {
	return []TaskStatus{
		TaskStatusStaged,
		TaskStatusTranscribing,
		TaskStatusIndexing,
		TaskStatusFailed,
	}
}

// IsValid checks if the task status is valid
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusStaged,
		TaskStatusTranscribing,
		TaskStatusIndexing,
		TaskStatusFailed:
		return true
	default:
		return false
	}
}

func (s TaskStatus) String() string {
	return string(s)
}

// ParseTaskStatus parses a string into a TaskStatus
func ParseTaskStatus(s string) (TaskStatus, error) {
	status := TaskStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid task status: %s", s)
	}
	return status, nil
}
