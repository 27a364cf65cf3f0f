package usecase_test

import (
	"context"
	"sync"

	"github.com/secmon-lab/mediakb/pkg/domain/model"
	"github.com/secmon-lab/mediakb/pkg/service/storage"
)

type startedJob struct {
	ID       model.TaskID
	MediaURI string
}

type mockTranscribe struct {
	mu      sync.Mutex
	started []startedJob

	startErr   func(id model.TaskID) error
	uriFn      func(jobName string) (string, error)
	transcript func(uri string) (*model.TranscriptionResult, error)
}

func (m *mockTranscribe) StartJob(ctx context.Context, id model.TaskID, mediaURI string) error {
	if m.startErr != nil {
		if err := m.startErr(id); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = append(m.started, startedJob{ID: id, MediaURI: mediaURI})
	return nil
}

func (m *mockTranscribe) TranscriptURI(ctx context.Context, jobName string) (string, error) {
	if m.uriFn != nil {
		return m.uriFn(jobName)
	}
	return "https://transcripts.test/" + jobName + ".json", nil
}

func (m *mockTranscribe) FetchTranscript(ctx context.Context, uri string) (*model.TranscriptionResult, error) {
	return m.transcript(uri)
}

func (m *mockTranscribe) Started() []startedJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]startedJob(nil), m.started...)
}

func transcriptOf(texts ...string) func(string) (*model.TranscriptionResult, error) {
	return func(string) (*model.TranscriptionResult, error) {
		result := &model.TranscriptionResult{Status: "COMPLETED"}
		for _, s := range texts {
			result.Results.Transcripts = append(result.Results.Transcripts, model.Transcript{Transcript: s})
		}
		return result, nil
	}
}

type mockKnowledgeBase struct {
	mu         sync.Mutex
	ingestions int
	queries    []model.Query

	ingestErr error
	answer    func(q *model.Query) (*model.RetrievalResult, error)
}

func (m *mockKnowledgeBase) StartIngestion(ctx context.Context) (string, error) {
	if m.ingestErr != nil {
		return "", m.ingestErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ingestions++
	return "ingestion-job", nil
}

func (m *mockKnowledgeBase) RetrieveAndGenerate(ctx context.Context, q *model.Query) (*model.RetrievalResult, error) {
	m.mu.Lock()
	m.queries = append(m.queries, *q)
	m.mu.Unlock()
	return m.answer(q)
}

func (m *mockKnowledgeBase) Ingestions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ingestions
}

type mockNotifier struct {
	indexing chan *model.Task
	failed   chan *model.Task
	err      error
}

func newMockNotifier() *mockNotifier {
	return &mockNotifier{
		indexing: make(chan *model.Task, 8),
		failed:   make(chan *model.Task, 8),
	}
}

func (m *mockNotifier) NotifyIndexing(ctx context.Context, task *model.Task) error {
	m.indexing <- task
	return m.err
}

func (m *mockNotifier) NotifyFailed(ctx context.Context, task *model.Task) error {
	m.failed <- task
	return m.err
}

// failingStorage fails every Put after the first n
type failingStorage struct {
	*storage.Memory
	allowed int
	err     error
}

func (x *failingStorage) Put(ctx context.Context, input *storage.PutInput) error {
	if x.PutCount() >= x.allowed {
		return x.err
	}
	return x.Memory.Put(ctx, input)
}
