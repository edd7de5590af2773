package knowledge

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/firebase/genkit/go/ai"
	"google.golang.org/genai"
)

// Embedder wraps a genkit embedder and enforces the contract the store
// relies on: one vector per input, each with the configured dimension.
//
// Safe for concurrent use.
type Embedder struct {
	embedder  ai.Embedder
	model     string
	dimension int
	logger    *slog.Logger
}

// NewEmbedder creates an Embedder. dimension <= 0 selects VectorDimension.
func NewEmbedder(embedder ai.Embedder, model string, dimension int, logger *slog.Logger) *Embedder {
	if dimension <= 0 {
		dimension = VectorDimension
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Embedder{
		embedder:  embedder,
		model:     model,
		dimension: dimension,
		logger:    logger,
	}
}

// EmbedTexts embeds texts in one batch, preserving order and length.
// An empty input returns (nil, nil). Provider failures, count mismatches,
// and dimension mismatches all surface as *EmbedError so callers never
// persist partial batches.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	docs := make([]*ai.Document, len(texts))
	for i, t := range texts {
		docs[i] = &ai.Document{Content: []*ai.Part{ai.NewTextPart(t)}}
	}

	// gemini-embedding-001 emits 3072 dimensions unless asked to
	// truncate; the schema's vector column is fixed at e.dimension.
	dim := int32(e.dimension)
	resp, err := e.embedder.Embed(ctx, &ai.EmbedRequest{
		Input:   docs,
		Options: &genai.EmbedContentConfig{OutputDimensionality: &dim},
	})
	if err != nil {
		return nil, &EmbedError{Model: e.model, Err: err}
	}

	if len(resp.Embeddings) != len(texts) {
		return nil, &EmbedError{
			Model: e.model,
			Err:   fmt.Errorf("got %d embeddings for %d inputs", len(resp.Embeddings), len(texts)),
		}
	}

	vectors := make([][]float32, len(texts))
	for i, emb := range resp.Embeddings {
		if len(emb.Embedding) != e.dimension {
			return nil, &EmbedError{
				Model: e.model,
				Err:   fmt.Errorf("embedding %d has dimension %d, want %d", i, len(emb.Embedding), e.dimension),
			}
		}
		vectors[i] = emb.Embedding
	}

	e.logger.Debug("embedded batch", "count", len(texts), "model", e.model)
	return vectors, nil
}

// EmbedQuery embeds a single query string.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}
