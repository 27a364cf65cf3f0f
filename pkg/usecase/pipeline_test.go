package usecase_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/mediakb/pkg/domain/model"
	"github.com/secmon-lab/mediakb/pkg/domain/types"
	"github.com/secmon-lab/mediakb/pkg/repository/memory"
	"github.com/secmon-lab/mediakb/pkg/service/storage"
	"github.com/secmon-lab/mediakb/pkg/usecase"
)

func TestPipeline(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemory()
	repo := memory.New()
	tr := &mockTranscribe{transcript: transcriptOf("it was great")}
	kb := &mockKnowledgeBase{}
	uc := usecase.New(repo,
		usecase.WithStorage(st),
		usecase.WithTranscribe(tr),
		usecase.WithKnowledgeBase(kb),
		usecase.WithBuckets(testBuckets),
	)

	link, err := uc.Media.IssueUploadLink(ctx, []byte(`{"topic":"space travel","source_url":"https://x.test/a","date":"2024-01-15"}`))
	gt.NoError(t, err).Required()
	gt.String(t, link.UploadURL).NotEqual("")

	// upload through the presigned URL
	gt.NoError(t, st.Put(ctx, &storage.PutInput{
		Bucket:   testBuckets.Media,
		Key:      model.UploadKey(link.TaskID),
		Body:     []byte("media"),
		Metadata: map[string]string{model.TaskIDKey: link.TaskID.String()},
	})).Required()

	var ev events.S3Event
	ev.Records = append(ev.Records, events.S3EventRecord{
		S3: events.S3Entity{
			Bucket: events.S3Bucket{Name: testBuckets.Media},
			Object: events.S3Object{Key: model.UploadKey(link.TaskID)},
		},
	})
	_, err = uc.Transcription.Dispatch(ctx, model.UploadRecordsFromS3Event(ev))
	gt.NoError(t, err).Required()
	gt.Array(t, tr.Started()).Length(1).Required()
	gt.Value(t, tr.Started()[0].ID).Equal(link.TaskID)

	payload, err := json.Marshal(map[string]string{"transcription_job": link.TaskID.String()})
	gt.NoError(t, err).Required()
	tev, err := model.ParseTranscriptionEvent(payload)
	gt.NoError(t, err).Required()
	gt.NoError(t, uc.Transcription.HandleEvent(ctx, tev)).Required()

	sidecar, ok := st.Object(testBuckets.Knowledge, model.SidecarKey(link.TaskID))
	gt.Bool(t, ok).True().Required()
	gt.Value(t, string(sidecar.Body)).Equal(`{"metadataAttributes":{"topic":"space travel","source_url":"https://x.test/a"}}`)

	transcript, ok := st.Object(testBuckets.Knowledge, model.TranscriptKey(link.TaskID))
	gt.Bool(t, ok).True().Required()
	gt.Value(t, string(transcript.Body)).Equal("it was great")
	gt.Number(t, kb.Ingestions()).Equal(1)

	task, err := uc.Task.Get(ctx, link.TaskID)
	gt.NoError(t, err).Required()
	gt.Value(t, task.Status).Equal(types.TaskStatusIndexing)
	gt.Value(t, task.Topic).Equal("space travel")
	gt.Value(t, task.MediaURI).Equal("memory://media-bucket/" + model.UploadKey(link.TaskID))
}
