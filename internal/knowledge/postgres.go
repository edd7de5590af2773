package knowledge

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// PG implements Querier against PostgreSQL with pgvector.
type PG struct {
	pool *pgxpool.Pool
}

// NewPG creates the PostgreSQL querier.
func NewPG(pool *pgxpool.Pool) *PG {
	return &PG{pool: pool}
}

// InsertResourceWithChunks inserts the resource and all chunks in one
// transaction. A failure at any point rolls everything back.
func (p *PG) InsertResourceWithChunks(ctx context.Context, res Resource, chunks []Chunk) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO resources (id, owner_id, title, content, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		res.ID, res.OwnerID, res.Title, res.Content, res.CreatedAt, res.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting resource: %w", err)
	}

	batch := &pgx.Batch{}
	for _, c := range chunks {
		batch.Queue(
			`INSERT INTO embedding_chunks (id, resource_id, owner_id, seq, content, embedding)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			c.ID, c.ResourceID, c.OwnerID, c.Seq, c.Content, pgvector.NewVector(c.Embedding))
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("inserting chunks: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetResource returns an owner's resource by ID.
func (p *PG) GetResource(ctx context.Context, ownerID string, id uuid.UUID) (Resource, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT id, owner_id, title, content, created_at, updated_at
		 FROM resources WHERE owner_id = $1 AND id = $2`,
		ownerID, id)

	var res Resource
	err := row.Scan(&res.ID, &res.OwnerID, &res.Title, &res.Content, &res.CreatedAt, &res.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Resource{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Resource{}, fmt.Errorf("scanning resource: %w", err)
	}
	return res, nil
}

// ListResources returns an owner's resources, newest first.
func (p *PG) ListResources(ctx context.Context, ownerID string) ([]Resource, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, owner_id, title, content, created_at, updated_at
		 FROM resources WHERE owner_id = $1 ORDER BY created_at DESC, id`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying resources: %w", err)
	}
	defer rows.Close()

	var resources []Resource
	for rows.Next() {
		var res Resource
		if err := rows.Scan(&res.ID, &res.OwnerID, &res.Title, &res.Content, &res.CreatedAt, &res.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning resource: %w", err)
		}
		resources = append(resources, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating resources: %w", err)
	}
	return resources, nil
}

// DeleteResource removes an owner's resource; embedding_chunks rows go
// with it via ON DELETE CASCADE.
func (p *PG) DeleteResource(ctx context.Context, ownerID string, id uuid.UUID) (int64, error) {
	tag, err := p.pool.Exec(ctx,
		`DELETE FROM resources WHERE owner_id = $1 AND id = $2`,
		ownerID, id)
	if err != nil {
		return 0, fmt.Errorf("deleting resource: %w", err)
	}
	return tag.RowsAffected(), nil
}

// SimilarChunks runs the owner-scoped nearest-neighbor scan. The <=>
// operator is cosine distance, so similarity is 1 - distance; pos breaks
// ties by global insertion order for deterministic results.
func (p *PG) SimilarChunks(ctx context.Context, ownerID string, embedding []float32, limit int) ([]Result, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, resource_id, content, 1 - (embedding <=> $2) AS similarity
		 FROM embedding_chunks
		 WHERE owner_id = $1
		 ORDER BY embedding <=> $2, pos
		 LIMIT $3`,
		ownerID, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("querying similar chunks: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.ChunkID, &r.ResourceID, &r.Content, &r.Similarity); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return results, nil
}
