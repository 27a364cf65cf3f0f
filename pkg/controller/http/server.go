package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mediakb/pkg/controller/api"
	"github.com/secmon-lab/mediakb/pkg/domain/model"
	"github.com/secmon-lab/mediakb/pkg/usecase"
	"github.com/secmon-lab/mediakb/pkg/utils/errutil"
	"github.com/secmon-lab/mediakb/pkg/utils/logging"
	"github.com/secmon-lab/mediakb/pkg/utils/safe"
)

// DefaultMaxBodySize caps request bodies. Every accepted body is a small JSON
// document.
const DefaultMaxBodySize = 1 << 20

type Server struct {
	router      *chi.Mux
	api         *api.Handler
	maxBodySize int64
	enableHooks bool
}

type Options func(*Server)

func WithMaxBodySize(n int64) Options {
	return func(s *Server) {
		s.maxBodySize = n
	}
}

// WithHooks enables the /hooks endpoints that accept storage and
// transcription events over HTTP
func WithHooks(enabled bool) Options {
	return func(s *Server) {
		s.enableHooks = enabled
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:      r,
		api:         api.New(uc),
		maxBodySize: DefaultMaxBodySize,
		enableHooks: true,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/media/upload-link", s.bodyHandler(s.api.IssueUploadLink))
		r.Post("/query", s.bodyHandler(s.api.Query))
		r.Post("/knowledge/sync", func(w http.ResponseWriter, r *http.Request) {
			writeResponse(w, r, s.api.Sync(r.Context()))
		})
		r.Get("/tasks/{task_id}", func(w http.ResponseWriter, r *http.Request) {
			writeResponse(w, r, s.api.GetTask(r.Context(), chi.URLParam(r, "task_id")))
		})
	})

	if s.enableHooks {
		r.Route("/hooks", func(r chi.Router) {
			r.Post("/storage", s.storageHook)
			r.Post("/transcription", s.bodyHandler(s.api.Complete))
		})
	}

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := safe.ReadAll(r.Context(), r.Body, s.maxBodySize)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
		return nil, false
	}
	return body, true
}

func (s *Server) bodyHandler(fn func(ctx context.Context, body []byte) *api.Response) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := s.readBody(w, r)
		if !ok {
			return
		}
		writeResponse(w, r, fn(r.Context(), body))
	}
}

// storageHook accepts an S3 event notification document
func (s *Server) storageHook(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	var ev events.S3Event
	if err := json.Unmarshal(body, &ev); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid storage event"), http.StatusBadRequest)
		return
	}

	writeResponse(w, r, s.api.Dispatch(r.Context(), model.UploadRecordsFromS3Event(ev)))
}

func writeResponse(w http.ResponseWriter, r *http.Request, resp *api.Response) {
	w.Header().Set("Content-Type", resp.ContentType)
	w.WriteHeader(resp.StatusCode)
	if _, err := w.Write(resp.Body); err != nil {
		logging.From(r.Context()).Warn("failed to write response", "error", err)
	}
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		logger := logging.Default().With("request_id", middleware.GetReqID(r.Context()))
		ctx := logging.With(r.Context(), logger)

		defer func() {
			logger.Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r.WithContext(ctx))
	})
}
