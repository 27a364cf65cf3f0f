package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	httpctrl "github.com/secmon-lab/mediakb/pkg/controller/http"
	"github.com/secmon-lab/mediakb/pkg/domain/model"
	"github.com/secmon-lab/mediakb/pkg/repository/memory"
	"github.com/secmon-lab/mediakb/pkg/service/storage"
	"github.com/secmon-lab/mediakb/pkg/usecase"
)

type mockTranscribe struct {
	started []model.TaskID
}

func (m *mockTranscribe) StartJob(ctx context.Context, id model.TaskID, mediaURI string) error {
	m.started = append(m.started, id)
	return nil
}

func (m *mockTranscribe) TranscriptURI(ctx context.Context, jobName string) (string, error) {
	return "https://transcripts.test/" + jobName, nil
}

func (m *mockTranscribe) FetchTranscript(ctx context.Context, uri string) (*model.TranscriptionResult, error) {
	result := &model.TranscriptionResult{}
	result.Results.Transcripts = []model.Transcript{{Transcript: "hello "}, {Transcript: "world"}}
	return result, nil
}

type mockKnowledgeBase struct{}

func (m *mockKnowledgeBase) StartIngestion(ctx context.Context) (string, error) {
	return "ingestion-job", nil
}

func (m *mockKnowledgeBase) RetrieveAndGenerate(ctx context.Context, q *model.Query) (*model.RetrievalResult, error) {
	return &model.RetrievalResult{Output: "answer to " + q.Input, Sources: []string{}}, nil
}

type fixture struct {
	server     *httpctrl.Server
	storage    *storage.Memory
	transcribe *mockTranscribe
}

func newFixture(t *testing.T, opts ...httpctrl.Options) *fixture {
	t.Helper()
	st := storage.NewMemory()
	tr := &mockTranscribe{}
	uc := usecase.New(memory.New(),
		usecase.WithStorage(st),
		usecase.WithTranscribe(tr),
		usecase.WithKnowledgeBase(&mockKnowledgeBase{}),
		usecase.WithBuckets(usecase.Buckets{Media: "media", Knowledge: "kb"}),
	)
	return &fixture{
		server:     httpctrl.New(uc, opts...),
		storage:    st,
		transcribe: tr,
	}
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func TestUploadLinkEndpoint(t *testing.T) {
	f := newFixture(t)

	t.Run("issues link", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/api/media/upload-link", `{"topic":"space travel","source_url":"https://x.test/a","date":"2024-01-15"}`)
		gt.Number(t, rec.Code).Equal(http.StatusOK)
		gt.Value(t, rec.Header().Get("Content-Type")).Equal("application/json")

		var body map[string]string
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body)).Required()
		gt.String(t, body["task_id"]).NotEqual("")
		gt.String(t, body["upload_url"]).Contains(body["task_id"])
	})

	t.Run("rejects invalid metadata", func(t *testing.T) {
		before := f.storage.PutCount()
		rec := f.do(http.MethodPost, "/api/media/upload-link", `{"topic":"space travel","source_url":"https://x.test/a","date":"2024/01/15"}`)
		gt.Number(t, rec.Code).Equal(http.StatusBadRequest)
		gt.String(t, rec.Body.String()).Contains(`"field":"date"`)
		gt.Number(t, f.storage.PutCount()).Equal(before)
	})

	t.Run("rejects oversized body", func(t *testing.T) {
		small := newFixture(t, httpctrl.WithMaxBodySize(16))
		rec := small.do(http.MethodPost, "/api/media/upload-link", `{"topic":"space travel","source_url":"https://x.test/a","date":"2024-01-15"}`)
		gt.Number(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("method not allowed", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/api/media/upload-link", "")
		gt.Number(t, rec.Code).Equal(http.StatusMethodNotAllowed)
	})
}

func TestQueryEndpoint(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/query", `{"input":"what is gravity?","topic":"science"}`)
	gt.Number(t, rec.Code).Equal(http.StatusOK)
	gt.Value(t, rec.Body.String()).Equal(`{"output":"answer to what is gravity?","sources":[]}`)

	rec = f.do(http.MethodPost, "/api/query", `{"input":"what is gravity?"}`)
	gt.Number(t, rec.Code).Equal(http.StatusBadRequest)
}

func TestHooks(t *testing.T) {
	f := newFixture(t)
	gt.NoError(t, f.storage.Put(context.Background(), &storage.PutInput{
		Bucket: "media",
		Key:    model.StagedMetadataKey("abc123"),
		Body:   []byte(`{"topic":"space travel","source_url":"https://x.test/a","date":"2024-01-15"}`),
	})).Required()

	t.Run("storage event", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/hooks/storage", `{"Records":[{"s3":{"bucket":{"name":"media"},"object":{"key":"media-uploads/abc123"}}}]}`)
		gt.Number(t, rec.Code).Equal(http.StatusOK)
		gt.Value(t, f.transcribe.started).Equal([]model.TaskID{"abc123"})
	})

	t.Run("malformed storage event", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/hooks/storage", `{"Records":`)
		gt.Number(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("transcription event", func(t *testing.T) {
		rec := f.do(http.MethodPost, "/hooks/transcription", `{"transcription_job":"abc123"}`)
		gt.Number(t, rec.Code).Equal(http.StatusOK)

		obj, ok := f.storage.Object("kb", "transcripts/abc123")
		gt.Bool(t, ok).True().Required()
		gt.Value(t, string(obj.Body)).Equal("hello  world")
	})

	t.Run("task status", func(t *testing.T) {
		rec := f.do(http.MethodGet, "/api/tasks/abc123", "")
		gt.Number(t, rec.Code).Equal(http.StatusOK)
		gt.String(t, rec.Body.String()).Contains(`"status":"INDEXING"`)

		rec = f.do(http.MethodGet, "/api/tasks/nothing", "")
		gt.Number(t, rec.Code).Equal(http.StatusNotFound)
	})

	t.Run("hooks disabled", func(t *testing.T) {
		off := newFixture(t, httpctrl.WithHooks(false))
		rec := off.do(http.MethodPost, "/hooks/transcription", `{"transcription_job":"abc123"}`)
		gt.Number(t, rec.Code).Equal(http.StatusNotFound)
	})
}

func TestSyncEndpoint(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodPost, "/api/knowledge/sync", "")
	gt.Number(t, rec.Code).Equal(http.StatusOK)
	gt.Value(t, rec.Body.String()).Equal(`{"ingestion_job_id":"ingestion-job"}`)
}
