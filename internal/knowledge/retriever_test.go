package knowledge

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestRetrieveFiltersBelowFloor(t *testing.T) {
	q := &mockQuerier{similar: []Result{
		{ChunkID: uuid.New(), Content: "strong match", Similarity: 0.92},
		{ChunkID: uuid.New(), Content: "weak match", Similarity: 0.41},
	}}
	r := NewRetriever(q, NewEmbedder(&mockEmbedder{}, "mock", 0, nil), nil)

	results, err := r.Retrieve(context.Background(), "user-1", "query")
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1: %v", len(results), results)
	}
	if results[0].Content != "strong match" {
		t.Errorf("wrong result kept: %+v", results[0])
	}
}

func TestRetrieveCustomOptions(t *testing.T) {
	q := &mockQuerier{similar: []Result{
		{Content: "a", Similarity: 0.9},
		{Content: "b", Similarity: 0.8},
		{Content: "c", Similarity: 0.2},
	}}
	r := NewRetriever(q, NewEmbedder(&mockEmbedder{}, "mock", 0, nil), nil)

	results, err := r.Retrieve(context.Background(), "user-1", "query",
		WithTopK(2), WithMinSimilarity(0.1))
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2 (topK)", len(results))
	}
}

func TestRetrieveEmptyIsNotError(t *testing.T) {
	q := &mockQuerier{}
	r := NewRetriever(q, NewEmbedder(&mockEmbedder{}, "mock", 0, nil), nil)

	results, err := r.Retrieve(context.Background(), "user-1", "anything")
	if err != nil {
		t.Fatalf("Retrieve() on empty base error = %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %v, want empty", results)
	}
}

func TestRetrieveOrderingPreserved(t *testing.T) {
	// The querier returns descending similarity; Retrieve must not
	// reorder.
	q := &mockQuerier{similar: []Result{
		{Content: "first", Similarity: 0.95},
		{Content: "second", Similarity: 0.80},
		{Content: "third", Similarity: 0.65},
	}}
	r := NewRetriever(q, NewEmbedder(&mockEmbedder{}, "mock", 0, nil), nil)

	results, err := r.Retrieve(context.Background(), "user-1", "query")
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	want := []string{"first", "second", "third"}
	if len(results) != len(want) {
		t.Fatalf("got %d results", len(results))
	}
	for i, w := range want {
		if results[i].Content != w {
			t.Errorf("result %d = %q, want %q", i, results[i].Content, w)
		}
	}
}

func TestRetrieveEmbeddingError(t *testing.T) {
	q := &mockQuerier{}
	r := NewRetriever(q, NewEmbedder(&mockEmbedder{embedErr: errors.New("down")}, "mock", 0, nil), nil)

	if _, err := r.Retrieve(context.Background(), "user-1", "query"); !errors.Is(err, ErrEmbedding) {
		t.Fatalf("error = %v, want ErrEmbedding", err)
	}
}

func TestRetrieveRequiresOwner(t *testing.T) {
	r := NewRetriever(&mockQuerier{}, NewEmbedder(&mockEmbedder{}, "mock", 0, nil), nil)

	if _, err := r.Retrieve(context.Background(), "", "query"); !errors.Is(err, ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
}
