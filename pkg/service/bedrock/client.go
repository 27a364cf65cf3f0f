package bedrock

import (
	"context"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagent"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/document"
	rtypes "github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/types"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/mediakb/pkg/domain/model"
)

// AgentAPI is the subset of the Bedrock agent client used for ingestion
type AgentAPI interface {
	StartIngestionJob(ctx context.Context, params *bedrockagent.StartIngestionJobInput, optFns ...func(*bedrockagent.Options)) (*bedrockagent.StartIngestionJobOutput, error)
}

// RuntimeAPI is the subset of the Bedrock agent runtime client used for queries
type RuntimeAPI interface {
	RetrieveAndGenerate(ctx context.Context, params *bedrockagentruntime.RetrieveAndGenerateInput, optFns ...func(*bedrockagentruntime.Options)) (*bedrockagentruntime.RetrieveAndGenerateOutput, error)
}

var (
	_ AgentAPI   = (*bedrockagent.Client)(nil)
	_ RuntimeAPI = (*bedrockagentruntime.Client)(nil)
)

// Config identifies the knowledge base resources
type Config struct {
	KnowledgeBaseID string
	DataSourceID    string
	ModelARN        string
}

type client struct {
	agent   AgentAPI
	runtime RuntimeAPI
	cfg     Config
}

// New creates a Service for the knowledge base described by cfg
func New(agent AgentAPI, runtime RuntimeAPI, cfg Config) (Service, error) {
	if agent == nil || runtime == nil {
		return nil, goerr.New("bedrock agent and runtime clients are required")
	}
	if cfg.KnowledgeBaseID == "" {
		return nil, goerr.New("knowledge base ID is required")
	}

	return &client{
		agent:   agent,
		runtime: runtime,
		cfg:     cfg,
	}, nil
}

func (x *client) StartIngestion(ctx context.Context) (string, error) {
	out, err := x.agent.StartIngestionJob(ctx, &bedrockagent.StartIngestionJobInput{
		KnowledgeBaseId: aws.String(x.cfg.KnowledgeBaseID),
		DataSourceId:    aws.String(x.cfg.DataSourceID),
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to start ingestion job",
			goerr.V("knowledge_base_id", x.cfg.KnowledgeBaseID),
			goerr.V("data_source_id", x.cfg.DataSourceID))
	}

	if out.IngestionJob == nil {
		return "", nil
	}
	return aws.ToString(out.IngestionJob.IngestionJobId), nil
}

// NewRetrieveAndGenerateInput builds a knowledge base request restricted to
// documents whose topic attribute equals q.Topic.
func NewRetrieveAndGenerateInput(kbID, modelARN string, q *model.Query) *bedrockagentruntime.RetrieveAndGenerateInput {
	return &bedrockagentruntime.RetrieveAndGenerateInput{
		Input: &rtypes.RetrieveAndGenerateInput{
			Text: aws.String(q.Input),
		},
		RetrieveAndGenerateConfiguration: &rtypes.RetrieveAndGenerateConfiguration{
			Type: rtypes.RetrieveAndGenerateTypeKnowledgeBase,
			KnowledgeBaseConfiguration: &rtypes.KnowledgeBaseRetrieveAndGenerateConfiguration{
				KnowledgeBaseId: aws.String(kbID),
				ModelArn:        aws.String(modelARN),
				RetrievalConfiguration: &rtypes.KnowledgeBaseRetrievalConfiguration{
					VectorSearchConfiguration: &rtypes.KnowledgeBaseVectorSearchConfiguration{
						Filter: &rtypes.RetrievalFilterMemberEquals{
							Value: rtypes.FilterAttribute{
								Key:   aws.String(TopicAttribute),
								Value: document.NewLazyDocument(q.Topic),
							},
						},
					},
				},
			},
		},
	}
}

func (x *client) RetrieveAndGenerate(ctx context.Context, q *model.Query) (*model.RetrievalResult, error) {
	out, err := x.runtime.RetrieveAndGenerate(ctx, NewRetrieveAndGenerateInput(x.cfg.KnowledgeBaseID, x.cfg.ModelARN, q))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to retrieve and generate",
			goerr.V("knowledge_base_id", x.cfg.KnowledgeBaseID),
			goerr.V("topic", q.Topic))
	}

	if out.Output == nil || out.Output.Text == nil {
		return nil, goerr.Wrap(ErrNoOutput, "empty retrieve and generate response", goerr.V("topic", q.Topic))
	}

	return &model.RetrievalResult{
		Output:  aws.ToString(out.Output.Text),
		Sources: ExtractSources(out.Citations),
	}, nil
}

// ExtractSources collects the distinct string source_url attributes of every
// retrieved reference, sorted.
func ExtractSources(citations []rtypes.Citation) []string {
	seen := make(map[string]struct{})
	for _, c := range citations {
		for _, ref := range c.RetrievedReferences {
			doc, ok := ref.Metadata[SourceURLAttribute]
			if !ok || doc == nil {
				continue
			}
			var url string
			if err := doc.UnmarshalSmithyDocument(&url); err != nil {
				continue
			}
			seen[url] = struct{}{}
		}
	}

	sources := make([]string, 0, len(seen))
	for url := range seen {
		sources = append(sources, url)
	}
	sort.Strings(sources)
	return sources
}
