package config

import "time"

func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}

func NewRepositoryForTest(backend, projectID, databaseID string) *Repository {
	return &Repository{backend: backend, projectID: projectID, databaseID: databaseID}
}

func NewSlackForTest(botToken, channelID string) *Slack {
	return &Slack{botToken: botToken, channelID: channelID}
}

func NewPipelineForTest(mediaBucket, knowledgeBucket, knowledgeBaseID string, expiry time.Duration) *Pipeline {
	return &Pipeline{
		mediaBucket:     mediaBucket,
		knowledgeBucket: knowledgeBucket,
		knowledgeBaseID: knowledgeBaseID,
		uploadExpiry:    expiry,
	}
}

func NewStorageForTest(backend string) *Storage {
	return &Storage{backend: backend}
}

var NewRedactor = newRedactor
