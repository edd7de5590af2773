package knowledge

import (
	"time"

	"github.com/google/uuid"
)

// VectorDimension is the embedding width the schema declares. The Gemini
// embedder is configured to truncate its output to this size.
const VectorDimension = 768

// MaxContentSize caps resource content at ingestion.
const MaxContentSize = 64 * 1024

// Resource is a unit of user-provided knowledge. Immutable once stored;
// deleting it cascades to its chunks.
type Resource struct {
	ID        uuid.UUID
	OwnerID   string
	Title     string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Chunk is one embedded slice of a resource. Chunks are never mutated;
// re-ingestion creates a new resource.
type Chunk struct {
	ID         uuid.UUID
	ResourceID uuid.UUID
	OwnerID    string
	Seq        int
	Content    string
	Embedding  []float32
}

// Result is a retrieved chunk with its cosine similarity to the query.
type Result struct {
	ChunkID    uuid.UUID
	ResourceID uuid.UUID
	Content    string
	Similarity float64
}

// RetrieveOption configures retrieval using the functional options
// pattern.
type RetrieveOption func(*retrieveConfig)

type retrieveConfig struct {
	topK          int
	minSimilarity float64
}

// WithTopK sets the maximum number of results to return. Default 4.
func WithTopK(k int) RetrieveOption {
	return func(c *retrieveConfig) {
		c.topK = k
	}
}

// WithMinSimilarity sets the similarity floor below which chunks are
// dropped. Default 0.5.
func WithMinSimilarity(min float64) RetrieveOption {
	return func(c *retrieveConfig) {
		c.minSimilarity = min
	}
}

func buildRetrieveConfig(opts []RetrieveOption) *retrieveConfig {
	cfg := &retrieveConfig{
		topK:          4,
		minSimilarity: 0.5,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
