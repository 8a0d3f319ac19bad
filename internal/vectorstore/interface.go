// Package vectorstore persists policy chunks with their embeddings and
// serves similarity queries over them.
//
// Two backends implement the Store interface: an embedded chromem-go store
// (default, no external services) and a Qdrant store over gRPC. Both are
// configured with cosine distance; results report distance in [0,2] where
// lower means more similar.
package vectorstore

import (
	"context"
	"errors"
)

// Sentinel errors for vector store operations.
var (
	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConnectionFailed indicates the store backend could not be reached.
	ErrConnectionFailed = errors.New("failed to connect to vector store")

	// ErrEmbeddingFailed indicates embedding generation failure.
	ErrEmbeddingFailed = errors.New("failed to generate embeddings")
)

// Embedder generates vector embeddings from text.
//
// One Embedder handle is shared by the write path (Add) and the read path
// (Search) so every vector lives in the same embedding space. Changing the
// embedding model requires reindexing the collection.
type Embedder interface {
	// EmbedDocuments generates embeddings for multiple texts, one per input.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery generates an embedding for a single query.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Store is the interface for the policy chunk index.
//
// A Store manages a single named collection fixed at construction time.
// Implementations must be safe for serialized use; concurrent Add and
// Search against the same collection rely on the backend's own
// concurrency control.
type Store interface {
	// Add embeds and persists the given documents.
	//
	// An empty input is a no-op. Embeddings are computed in one batch
	// before any write, so an embedding failure commits nothing. Documents
	// without an ID get a deterministic content-derived one, making
	// repeated ingestion of identical content an upsert rather than a
	// collision.
	//
	// Returns the IDs of the added documents.
	Add(ctx context.Context, docs []Document) ([]string, error)

	// Search returns up to k documents most similar to the query, ordered
	// by ascending cosine distance (best match first). An empty collection
	// yields an empty result, not an error.
	Search(ctx context.Context, query string, k int) ([]SearchResult, error)

	// Clear irrecoverably drops all entries and recreates the collection
	// empty with the same cosine distance configuration.
	Clear(ctx context.Context) error

	// Count returns the number of persisted entries.
	Count(ctx context.Context) (int, error)

	// Close releases backend resources.
	Close() error
}
