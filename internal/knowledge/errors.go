package knowledge

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation indicates rejected input (empty content, oversized
	// payload, missing title).
	ErrValidation = errors.New("knowledge: validation failed")

	// ErrEmbedding indicates the embedding provider failed or returned
	// malformed vectors. Matches *EmbedError via errors.Is.
	ErrEmbedding = errors.New("knowledge: embedding failed")

	// ErrNotFound indicates the requested resource does not exist or is
	// not visible to the caller.
	ErrNotFound = errors.New("knowledge: resource not found")
)

// EmbedError carries provider detail for an embedding failure.
type EmbedError struct {
	Model string
	Err   error
}

func (e *EmbedError) Error() string {
	return fmt.Sprintf("embedding with %s: %v", e.Model, e.Err)
}

func (e *EmbedError) Unwrap() error { return e.Err }

// Is reports ErrEmbedding so callers can match the category without
// knowing the concrete type.
func (e *EmbedError) Is(target error) bool { return target == ErrEmbedding }
