package usecase

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mediakb/pkg/domain/model"
	"github.com/secmon-lab/mediakb/pkg/service/bedrock"
	"github.com/secmon-lab/mediakb/pkg/utils/logging"
)

// KnowledgeUseCase answers topic scoped questions from the knowledge base and
// keeps its index in sync
type KnowledgeUseCase struct {
	kb bedrock.Service
}

func NewKnowledgeUseCase(kb bedrock.Service) *KnowledgeUseCase {
	return &KnowledgeUseCase{
		kb: kb,
	}
}

// Query decodes and validates the query in body and answers it. Decode
// failures wrap ErrInvalidRequest, validation failures are returned as
// *model.ValidationErrors and an empty answer wraps ErrNoAnswer.
func (uc *KnowledgeUseCase) Query(ctx context.Context, body []byte) (*model.RetrievalResult, error) {
	if uc.kb == nil {
		return nil, goerr.Wrap(ErrNotConfigured, "knowledge base is required to answer queries")
	}

	var q model.Query
	if err := json.Unmarshal(body, &q); err != nil {
		return nil, goerr.Wrap(ErrInvalidRequest, err.Error())
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	result, err := uc.kb.RetrieveAndGenerate(ctx, &q)
	if err != nil {
		if errors.Is(err, bedrock.ErrNoOutput) {
			return nil, goerr.Wrap(ErrNoAnswer, "knowledge base has no answer", goerr.V("topic", q.Topic))
		}
		return nil, goerr.Wrap(err, "failed to query knowledge base", goerr.V("topic", q.Topic))
	}

	logging.From(ctx).Info("query answered", "topic", q.Topic, "sources", len(result.Sources))
	return result, nil
}

// Sync starts an ingestion job of the knowledge base data source and returns
// its ID. It is safe to call repeatedly.
func (uc *KnowledgeUseCase) Sync(ctx context.Context) (string, error) {
	if uc.kb == nil {
		return "", goerr.Wrap(ErrNotConfigured, "knowledge base is required to start ingestion")
	}

	jobID, err := uc.kb.StartIngestion(ctx)
	if err != nil {
		return "", goerr.Wrap(err, "failed to sync knowledge base")
	}

	logging.From(ctx).Info("ingestion job started", "ingestion_job_id", jobID)
	return jobID, nil
}
