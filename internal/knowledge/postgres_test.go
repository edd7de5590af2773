package knowledge_test

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/remembra/remembra/internal/knowledge"
	"github.com/remembra/remembra/internal/testutil"
)

func testVector(first float32) []float32 {
	vec := make([]float32, knowledge.VectorDimension)
	vec[0] = first
	vec[1] = 1 - first
	return vec
}

func insertTestResource(t *testing.T, pg *knowledge.PG, owner, title string, vecs ...[]float32) knowledge.Resource {
	t.Helper()

	res := knowledge.Resource{
		ID:      uuid.New(),
		OwnerID: owner,
		Title:   title,
		Content: "content for " + title,
	}
	chunks := make([]knowledge.Chunk, len(vecs))
	for i, v := range vecs {
		chunks[i] = knowledge.Chunk{
			ID:         uuid.New(),
			ResourceID: res.ID,
			OwnerID:    owner,
			Seq:        i,
			Content:    "chunk",
			Embedding:  v,
		}
	}
	if err := pg.InsertResourceWithChunks(context.Background(), res, chunks); err != nil {
		t.Fatalf("InsertResourceWithChunks() error = %v", err)
	}
	return res
}

func TestPGResourceLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	tdb, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	pg := knowledge.NewPG(tdb.Pool)

	res := insertTestResource(t, pg, "alice", "colors", testVector(1))

	got, err := pg.GetResource(ctx, "alice", res.ID)
	if err != nil {
		t.Fatalf("GetResource() error = %v", err)
	}
	if got.Title != "colors" {
		t.Errorf("Title = %q", got.Title)
	}

	// Other owners cannot see it.
	if _, err := pg.GetResource(ctx, "bob", res.ID); err == nil {
		t.Error("cross-owner GetResource succeeded")
	}

	list, err := pg.ListResources(ctx, "alice")
	if err != nil {
		t.Fatalf("ListResources() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d resources", len(list))
	}

	deleted, err := pg.DeleteResource(ctx, "alice", res.ID)
	if err != nil {
		t.Fatalf("DeleteResource() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted %d rows", deleted)
	}

	// Cascade removed the chunks.
	var count int
	if err := tdb.Pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM embedding_chunks WHERE resource_id = $1", res.ID).Scan(&count); err != nil {
		t.Fatalf("counting chunks: %v", err)
	}
	if count != 0 {
		t.Errorf("chunks survived resource delete: %d", count)
	}
}

func TestPGSimilarChunksOrderingAndScope(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	tdb, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	pg := knowledge.NewPG(tdb.Pool)

	// alice: one near chunk, one far; bob: an identical near chunk.
	insertTestResource(t, pg, "alice", "near-and-far", testVector(1), testVector(0))
	insertTestResource(t, pg, "bob", "bob-near", testVector(1))

	results, err := pg.SimilarChunks(ctx, "alice", testVector(1), 10)
	if err != nil {
		t.Fatalf("SimilarChunks() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2 (alice only)", len(results))
	}
	if results[0].Similarity < results[1].Similarity {
		t.Errorf("results not in descending similarity: %v then %v",
			results[0].Similarity, results[1].Similarity)
	}
	if results[0].Similarity < 0.99 {
		t.Errorf("nearest chunk similarity = %v, want ~1", results[0].Similarity)
	}
}
