package bedrock

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mediakb/pkg/domain/model"
)

var (
	// ErrNoOutput is returned when retrieve-and-generate produced no output
	ErrNoOutput = goerr.New("knowledge base returned no output")
)

const (
	// TopicAttribute is the metadata attribute used for topic filtering
	TopicAttribute = "topic"
	// SourceURLAttribute is the metadata attribute collected as query sources
	SourceURLAttribute = "source_url"
)

// Service provides access to a Bedrock knowledge base
type Service interface {
	// StartIngestion starts an ingestion job of the configured data source and
	// returns the job ID
	StartIngestion(ctx context.Context) (string, error)

	// RetrieveAndGenerate answers the query with documents whose topic
	// attribute equals query.Topic
	RetrieveAndGenerate(ctx context.Context, q *model.Query) (*model.RetrievalResult, error)
}
