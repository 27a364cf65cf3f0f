package slack_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/mediakb/pkg/domain/model"
	"github.com/secmon-lab/mediakb/pkg/domain/types"
	"github.com/secmon-lab/mediakb/pkg/service/slack"
)

func TestNew(t *testing.T) {
	t.Run("returns error when token is empty", func(t *testing.T) {
		_, err := slack.New("", "C123")
		gt.Value(t, err).NotNil()
	})

	t.Run("returns error when channel is empty", func(t *testing.T) {
		_, err := slack.New("test-token", "")
		gt.Value(t, err).NotNil()
	})

	t.Run("creates service when token and channel are provided", func(t *testing.T) {
		svc, err := slack.New("test-token", "C123")
		gt.NoError(t, err).Required()
		gt.Value(t, svc).NotNil()
	})
}

func newFakeSlack(t *testing.T) (*httptest.Server, func() []map[string][]string) {
	t.Helper()
	var mu sync.Mutex
	var posted []map[string][]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.NoError(t, r.ParseForm())
		mu.Lock()
		posted = append(posted, r.PostForm)
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"channel":"C123","ts":"1700000000.000100"}`))
	}))
	t.Cleanup(srv.Close)

	return srv, func() []map[string][]string {
		mu.Lock()
		defer mu.Unlock()
		return posted
	}
}

func TestNotify(t *testing.T) {
	task := &model.Task{
		ID:             "abc123",
		Status:         types.TaskStatusIndexing,
		Topic:          "science",
		SourceURL:      "https://example.com/talk",
		IngestionJobID: "job-1",
	}

	t.Run("indexing", func(t *testing.T) {
		srv, posted := newFakeSlack(t)
		svc, err := slack.New("test-token", "C123", slack.WithAPIURL(srv.URL+"/"))
		gt.NoError(t, err).Required()

		gt.NoError(t, svc.NotifyIndexing(context.Background(), task)).Required()

		forms := posted()
		gt.Array(t, forms).Length(1).Required()
		gt.Value(t, forms[0]["channel"][0]).Equal("C123")
		gt.String(t, forms[0]["text"][0]).Contains("abc123")
		gt.String(t, forms[0]["blocks"][0]).Contains("job-1")
	})

	t.Run("failed", func(t *testing.T) {
		srv, posted := newFakeSlack(t)
		svc, err := slack.New("test-token", "C123", slack.WithAPIURL(srv.URL+"/"))
		gt.NoError(t, err).Required()

		failed := *task
		failed.Status = types.TaskStatusFailed
		failed.Error = "unsupported media format"
		gt.NoError(t, svc.NotifyFailed(context.Background(), &failed)).Required()

		forms := posted()
		gt.Array(t, forms).Length(1).Required()
		gt.String(t, forms[0]["text"][0]).Contains("failed")
		gt.String(t, forms[0]["blocks"][0]).Contains("unsupported media format")
	})

	t.Run("api error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"ok":false,"error":"channel_not_found"}`))
		}))
		defer srv.Close()

		svc, err := slack.New("test-token", "C999", slack.WithAPIURL(srv.URL+"/"))
		gt.NoError(t, err).Required()
		gt.Value(t, svc.NotifyIndexing(context.Background(), task)).NotNil()
	})
}

func TestBuildBlocks(t *testing.T) {
	blocks := slack.BuildBlocks("title", &model.Task{ID: "abc123"})
	gt.Array(t, blocks).Length(1)

	blocks = slack.BuildBlocks("title", &model.Task{ID: "abc123", Topic: "science", Error: "boom"})
	gt.Array(t, blocks).Length(3)
}

func TestTruncateToMaxBytes(t *testing.T) {
	gt.Value(t, slack.TruncateToMaxBytes("hello", 10)).Equal("hello")
	gt.Value(t, slack.TruncateToMaxBytes("hello", 3)).Equal("hel")
	// "日" is three bytes
	gt.Value(t, slack.TruncateToMaxBytes("日本", 4)).Equal("日")
}

func TestIntegration(t *testing.T) {
	token := os.Getenv("TEST_SLACK_BOT_TOKEN")
	channel := os.Getenv("TEST_SLACK_CHANNEL_ID")
	if token == "" || channel == "" {
		t.Skip("TEST_SLACK_BOT_TOKEN or TEST_SLACK_CHANNEL_ID is not set")
	}

	svc, err := slack.New(token, channel)
	gt.NoError(t, err).Required()
	gt.NoError(t, svc.NotifyIndexing(context.Background(), &model.Task{
		ID:    model.NewTaskID(),
		Topic: "integration-test",
	}))
}
