// Package knowledge retrieves dermatology reference snippets from a Pinecone
// index. The responder prepends them to prompts when configured.
package knowledge

import (
	"context"

	"github.com/pinecone-io/go-pinecone/v4/pinecone"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/skinai/go-skinai/internal/services"
)

// Embedder turns a query into the vector the index is searched with.
type Embedder interface {
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)
}

type Retriever struct {
	config   *Config
	index    *pinecone.IndexConnection
	embedder Embedder
	retry    *RetryService
	logger   services.Logger
}

func NewRetriever(config *Config, embedder Embedder, logger services.Logger) (*Retriever, error) {
	if err := config.Validate(); err != nil {
		return nil, NewConfigError(err.Error())
	}
	if embedder == nil {
		return nil, NewConfigError("embedder is required")
	}
	if logger == nil {
		logger = &services.NoOpLogger{}
	}

	client, err := pinecone.NewClient(pinecone.NewClientParams{ApiKey: config.APIKey})
	if err != nil {
		return nil, NewConnectionError("client", "failed to create Pinecone client", err)
	}

	index, err := client.Index(pinecone.NewIndexConnParams{
		Host:      config.IndexHost,
		Namespace: config.Namespace,
	})
	if err != nil {
		return nil, NewConnectionError("index", "failed to connect to index", err)
	}

	logger.Info("knowledge index connected", "host", config.IndexHost, "namespace", config.Namespace)

	return &Retriever{
		config:   config,
		index:    index,
		embedder: embedder,
		retry:    NewRetryService(config, logger),
		logger:   logger,
	}, nil
}

// Retrieve embeds the query and returns the text snippets of the TopK most
// similar records.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]string, error) {
	embedding, err := r.embedder.CreateEmbedding(ctx, query)
	if err != nil {
		return nil, NewQueryError("embed", "failed to embed query", err)
	}

	var matches []*pinecone.ScoredVector
	err = r.retry.RetryWithTimeout(ctx, func(ctx context.Context) error {
		resp, queryErr := r.index.QueryByVectorValues(ctx, &pinecone.QueryByVectorValuesRequest{
			Vector:          embedding,
			TopK:            uint32(r.config.TopK),
			IncludeMetadata: true,
		})
		if queryErr != nil {
			return queryErr
		}
		matches = resp.Matches
		return nil
	})
	if err != nil {
		return nil, err
	}

	snippets := make([]string, 0, len(matches))
	for _, match := range matches {
		if match == nil || match.Vector == nil {
			continue
		}
		if text := snippetFromMetadata(match.Vector.Metadata); text != "" {
			snippets = append(snippets, text)
		}
	}

	r.logger.Debug("knowledge snippets retrieved", "count", len(snippets))
	return snippets, nil
}

// snippetFromMetadata pulls the "text" field out of a record's metadata.
func snippetFromMetadata(metadata *structpb.Struct) string {
	if metadata == nil {
		return ""
	}
	return metadata.GetFields()["text"].GetStringValue()
}
