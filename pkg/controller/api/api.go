package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mediakb/pkg/domain/model"
	"github.com/secmon-lab/mediakb/pkg/usecase"
	"github.com/secmon-lab/mediakb/pkg/utils/errutil"
	"github.com/secmon-lab/mediakb/pkg/utils/logging"
)

const (
	contentTypeJSON = "application/json"
	contentTypeText = "text/plain; charset=utf-8"
)

// Response is a transport neutral HTTP style response
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Handler adapts request bodies to use cases and maps results and errors to
// responses. It is shared by the HTTP server and the Lambda functions.
type Handler struct {
	uc *usecase.UseCases
}

func New(uc *usecase.UseCases) *Handler {
	return &Handler{uc: uc}
}

// IssueUploadLink handles a JSON media metadata body
func (x *Handler) IssueUploadLink(ctx context.Context, body []byte) *Response {
	link, err := x.uc.Media.IssueUploadLink(ctx, body)
	if err != nil {
		return errorResponse(ctx, err)
	}
	return jsonResponse(ctx, http.StatusOK, link)
}

// Query handles a JSON query body
func (x *Handler) Query(ctx context.Context, body []byte) *Response {
	result, err := x.uc.Knowledge.Query(ctx, body)
	if err != nil {
		return errorResponse(ctx, err)
	}
	return jsonResponse(ctx, http.StatusOK, result)
}

type syncResponse struct {
	IngestionJobID string `json:"ingestion_job_id"`
}

// Sync starts a knowledge base ingestion job
func (x *Handler) Sync(ctx context.Context) *Response {
	jobID, err := x.uc.Knowledge.Sync(ctx)
	if err != nil {
		return errorResponse(ctx, err)
	}
	return jsonResponse(ctx, http.StatusOK, syncResponse{IngestionJobID: jobID})
}

type taskResponse struct {
	TaskID         string    `json:"task_id"`
	Status         string    `json:"status"`
	Topic          string    `json:"topic,omitempty"`
	SourceURL      string    `json:"source_url,omitempty"`
	MediaURI       string    `json:"media_uri,omitempty"`
	IngestionJobID string    `json:"ingestion_job_id,omitempty"`
	Error          string    `json:"error,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func newTaskResponse(t *model.Task) taskResponse {
	return taskResponse{
		TaskID:         t.ID.String(),
		Status:         t.Status.String(),
		Topic:          t.Topic,
		SourceURL:      t.SourceURL,
		MediaURI:       t.MediaURI,
		IngestionJobID: t.IngestionJobID,
		Error:          t.Error,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

// GetTask returns the status record of a task
func (x *Handler) GetTask(ctx context.Context, id string) *Response {
	task, err := x.uc.Task.Get(ctx, model.TaskID(id))
	if err != nil {
		return errorResponse(ctx, err)
	}
	return jsonResponse(ctx, http.StatusOK, newTaskResponse(task))
}

type dispatchFailure struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	Error  string `json:"error"`
}

type dispatchResponse struct {
	Started []model.TaskID    `json:"started"`
	Failed  []dispatchFailure `json:"failed"`
}

// Dispatch handles a batch of uploaded object records. Any failed record
// makes the response a 500 so the sender retries.
func (x *Handler) Dispatch(ctx context.Context, records []model.UploadRecord) *Response {
	result, err := x.uc.Transcription.Dispatch(ctx, records)
	if result == nil {
		return errorResponse(ctx, err)
	}

	resp := dispatchResponse{
		Started: result.Started,
		Failed:  make([]dispatchFailure, len(result.Failures)),
	}
	if resp.Started == nil {
		resp.Started = []model.TaskID{}
	}
	for i, f := range result.Failures {
		resp.Failed[i] = dispatchFailure{Bucket: f.Bucket, Key: f.Key, Error: f.Err.Error()}
	}

	status := http.StatusOK
	if err != nil {
		_ = errutil.Handle(ctx, err, "failed to dispatch some uploaded media")
		status = http.StatusInternalServerError
	}
	return jsonResponse(ctx, status, resp)
}

type completeResponse struct {
	JobName string `json:"job_name"`
	Status  string `json:"status"`
}

// Complete handles a transcription job state change payload
func (x *Handler) Complete(ctx context.Context, body []byte) *Response {
	ev, err := model.ParseTranscriptionEvent(body)
	if err != nil {
		return errorResponse(ctx, goerr.Wrap(usecase.ErrInvalidRequest, err.Error()))
	}

	if err := x.uc.Transcription.HandleEvent(ctx, ev); err != nil {
		return errorResponse(ctx, err)
	}
	return jsonResponse(ctx, http.StatusOK, completeResponse{JobName: ev.JobName, Status: ev.Status})
}

func jsonResponse(ctx context.Context, status int, v any) *Response {
	data, err := json.Marshal(v)
	if err != nil {
		return errorResponse(ctx, goerr.Wrap(err, "failed to marshal response"))
	}
	return &Response{
		StatusCode:  status,
		ContentType: contentTypeJSON,
		Body:        data,
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// errorResponse maps client errors to 4xx and everything else to an opaque 500
func errorResponse(ctx context.Context, err error) *Response {
	logger := logging.From(ctx)

	var verrs *model.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		logger.Info("request validation failed", "error", err.Error())
		return jsonResponse(ctx, http.StatusBadRequest, verrs)

	case errors.Is(err, usecase.ErrInvalidRequest):
		logger.Info("invalid request body", "error", err.Error())
		return jsonResponse(ctx, http.StatusBadRequest, errorBody{Error: err.Error()})

	case errors.Is(err, usecase.ErrNoAnswer):
		return &Response{
			StatusCode:  http.StatusNotFound,
			ContentType: contentTypeText,
			Body:        []byte("Not found"),
		}

	case errors.Is(err, usecase.ErrTaskNotFound):
		return jsonResponse(ctx, http.StatusNotFound, errorBody{Error: "task not found"})
	}

	_ = errutil.Handle(ctx, err, "request failed")
	data, _ := json.Marshal(errorBody{Error: http.StatusText(http.StatusInternalServerError)})
	return &Response{
		StatusCode:  http.StatusInternalServerError,
		ContentType: contentTypeJSON,
		Body:        data,
	}
}
