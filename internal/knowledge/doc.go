// Package knowledge implements the personal knowledge base: resources
// are chunked, embedded, and stored in PostgreSQL with pgvector, then
// retrieved by cosine similarity scoped to their owner.
package knowledge
