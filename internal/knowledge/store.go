package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Querier defines the database operations the store and retriever need.
// Interfaces are defined by the consumer; the pgx implementation lives
// in postgres.go and tests use a mock.
type Querier interface {
	// InsertResourceWithChunks persists a resource and all of its chunks
	// in a single transaction.
	InsertResourceWithChunks(ctx context.Context, res Resource, chunks []Chunk) error

	// GetResource returns an owner's resource by ID.
	GetResource(ctx context.Context, ownerID string, id uuid.UUID) (Resource, error)

	// ListResources returns an owner's resources, newest first.
	ListResources(ctx context.Context, ownerID string) ([]Resource, error)

	// DeleteResource removes an owner's resource, cascading to chunks.
	// Returns the number of rows deleted.
	DeleteResource(ctx context.Context, ownerID string, id uuid.UUID) (int64, error)

	// SimilarChunks returns the owner's chunks nearest to the embedding,
	// most similar first, ties broken by insertion order.
	SimilarChunks(ctx context.Context, ownerID string, embedding []float32, limit int) ([]Result, error)
}

// Store ingests resources into the knowledge base: validate, chunk,
// embed, persist. Nothing is committed when any step fails.
//
// Safe for concurrent use.
type Store struct {
	querier  Querier
	chunker  *Chunker
	embedder *Embedder
	logger   *slog.Logger
}

// NewStore creates a Store.
func NewStore(querier Querier, chunker *Chunker, embedder *Embedder, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		querier:  querier,
		chunker:  chunker,
		embedder: embedder,
		logger:   logger,
	}
}

// CreateResource validates, chunks, embeds, and persists a resource for
// the owner. The resource and every chunk are inserted in one
// transaction; an embedding failure leaves the database untouched.
func (s *Store) CreateResource(ctx context.Context, ownerID, title, content string) (Resource, error) {
	if ownerID == "" {
		return Resource{}, fmt.Errorf("%w: owner ID is empty", ErrValidation)
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return Resource{}, fmt.Errorf("%w: content is empty", ErrValidation)
	}
	if len(content) > MaxContentSize {
		return Resource{}, fmt.Errorf("%w: content exceeds %d bytes", ErrValidation, MaxContentSize)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return Resource{}, fmt.Errorf("%w: title is empty", ErrValidation)
	}

	pieces := s.chunker.Chunk(content)
	vectors, err := s.embedder.EmbedTexts(ctx, pieces)
	if err != nil {
		return Resource{}, fmt.Errorf("embedding resource content: %w", err)
	}

	now := time.Now().UTC()
	res := Resource{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	chunks := make([]Chunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = Chunk{
			ID:         uuid.New(),
			ResourceID: res.ID,
			OwnerID:    ownerID,
			Seq:        i,
			Content:    piece,
			Embedding:  vectors[i],
		}
	}

	if err := s.querier.InsertResourceWithChunks(ctx, res, chunks); err != nil {
		return Resource{}, fmt.Errorf("persisting resource: %w", err)
	}

	s.logger.Info("resource created",
		"resource_id", res.ID,
		"owner_id", ownerID,
		"chunks", len(chunks))
	return res, nil
}

// GetResource returns an owner's resource by ID.
func (s *Store) GetResource(ctx context.Context, ownerID string, id uuid.UUID) (Resource, error) {
	res, err := s.querier.GetResource(ctx, ownerID, id)
	if err != nil {
		return Resource{}, fmt.Errorf("getting resource %s: %w", id, err)
	}
	return res, nil
}

// ListByOwner returns the owner's resources, newest first.
func (s *Store) ListByOwner(ctx context.Context, ownerID string) ([]Resource, error) {
	resources, err := s.querier.ListResources(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing resources: %w", err)
	}
	return resources, nil
}

// DeleteResource removes an owner's resource; chunks cascade at the
// schema level so deleted knowledge stops matching immediately.
func (s *Store) DeleteResource(ctx context.Context, ownerID string, id uuid.UUID) error {
	deleted, err := s.querier.DeleteResource(ctx, ownerID, id)
	if err != nil {
		return fmt.Errorf("deleting resource %s: %w", id, err)
	}
	if deleted == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	s.logger.Info("resource deleted", "resource_id", id, "owner_id", ownerID)
	return nil
}
