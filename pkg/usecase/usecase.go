package usecase

import (
	"time"

	"github.com/secmon-lab/mediakb/pkg/domain/interfaces"
	"github.com/secmon-lab/mediakb/pkg/service/bedrock"
	"github.com/secmon-lab/mediakb/pkg/service/slack"
	"github.com/secmon-lab/mediakb/pkg/service/storage"
	"github.com/secmon-lab/mediakb/pkg/service/transcribe"
)

// DefaultUploadLinkExpiry is the validity of an issued upload URL
const DefaultUploadLinkExpiry = 15 * time.Minute

// Buckets names the two storage areas of the pipeline
type Buckets struct {
	// Media holds staged metadata and uploaded media
	Media string
	// Knowledge holds the documents indexed by the knowledge base
	Knowledge string
}

type UseCases struct {
	repo       interfaces.Repository
	storage    storage.Service
	transcribe transcribe.Service
	knowledge  bedrock.Service
	notifier   slack.Service
	buckets    Buckets
	expiry     time.Duration
	syncNotify bool

	Media         *MediaUseCase
	Transcription *TranscriptionUseCase
	Knowledge     *KnowledgeUseCase
	Task          *TaskUseCase
}

type Option func(*UseCases)

func WithStorage(svc storage.Service) Option {
	return func(uc *UseCases) {
		uc.storage = svc
	}
}

func WithTranscribe(svc transcribe.Service) Option {
	return func(uc *UseCases) {
		uc.transcribe = svc
	}
}

func WithKnowledgeBase(svc bedrock.Service) Option {
	return func(uc *UseCases) {
		uc.knowledge = svc
	}
}

// WithNotifier enables Slack notifications of task lifecycle events
func WithNotifier(svc slack.Service) Option {
	return func(uc *UseCases) {
		uc.notifier = svc
	}
}

// WithSyncNotify makes notifications complete before the use case returns.
// Processes that are frozen or exit right after a handler returns, such as
// Lambda functions and one-shot commands, need it.
func WithSyncNotify() Option {
	return func(uc *UseCases) {
		uc.syncNotify = true
	}
}

func WithBuckets(b Buckets) Option {
	return func(uc *UseCases) {
		uc.buckets = b
	}
}

func WithUploadLinkExpiry(d time.Duration) Option {
	return func(uc *UseCases) {
		uc.expiry = d
	}
}

// New wires the pipeline use cases. repo may be nil, in which case task
// status records are not kept.
func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:   repo,
		expiry: DefaultUploadLinkExpiry,
	}

	for _, opt := range opts {
		opt(uc)
	}

	status := newStatusRecorder(repo, uc.notifier, uc.syncNotify)
	uc.Knowledge = NewKnowledgeUseCase(uc.knowledge)
	uc.Media = newMediaUseCase(uc.storage, status, uc.buckets.Media, uc.expiry)
	uc.Transcription = newTranscriptionUseCase(uc.storage, uc.transcribe, uc.Knowledge, status, uc.buckets)
	uc.Task = NewTaskUseCase(repo)

	return uc
}
