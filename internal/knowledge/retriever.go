package knowledge

import (
	"context"
	"fmt"
	"log/slog"
)

// Retriever answers questions against the owner's knowledge base by
// cosine similarity. An empty result set is a normal outcome, not an
// error; the agent falls back to general knowledge.
//
// Safe for concurrent use.
type Retriever struct {
	querier  Querier
	embedder *Embedder
	logger   *slog.Logger
}

// NewRetriever creates a Retriever.
func NewRetriever(querier Querier, embedder *Embedder, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{
		querier:  querier,
		embedder: embedder,
		logger:   logger,
	}
}

// Retrieve embeds the query and returns the owner's most similar chunks,
// descending by similarity with insertion order as the tie-break.
// Chunks below the similarity floor are dropped.
//
// Example:
//
//	results, err := retriever.Retrieve(ctx, ownerID, "favorite color",
//	    knowledge.WithTopK(8), knowledge.WithMinSimilarity(0.3))
func (r *Retriever) Retrieve(ctx context.Context, ownerID, query string, opts ...RetrieveOption) ([]Result, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner ID is empty", ErrValidation)
	}

	cfg := buildRetrieveConfig(opts)

	embedding, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	candidates, err := r.querier.SimilarChunks(ctx, ownerID, embedding, cfg.topK)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	// The database orders and limits; the floor is applied here so the
	// SQL stays a pure nearest-neighbor scan.
	results := candidates[:0]
	for _, c := range candidates {
		if c.Similarity >= cfg.minSimilarity {
			results = append(results, c)
		}
	}

	r.logger.Debug("retrieval completed",
		"owner_id", ownerID,
		"candidates", len(candidates),
		"results", len(results))
	return results, nil
}
