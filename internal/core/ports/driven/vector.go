package driven

import (
	"context"
	"time"

	"github.com/manwithbarba/rag-ets/internal/core/domain"
)

// VectorIndex is a loaded, read-only index of fragments and their embeddings.
type VectorIndex interface {
	// Search returns the k entries most similar to query, by descending
	// cosine similarity with ties in insertion order. If the index holds
	// fewer than k entries, all of them are returned.
	Search(ctx context.Context, query []float32, k int) (domain.RetrievalResult, error)

	// Len returns the number of entries.
	Len() int

	// Dimensions returns the embedding size shared by all entries.
	Dimensions() int

	// Close releases resources.
	Close() error
}

// VectorIndexStore persists indexes in a directory.
type VectorIndexStore interface {
	// Build creates or replaces the index in dir. Readers never observe a
	// partially written index.
	Build(ctx context.Context, dir string, entries []domain.IndexEntry, meta IndexMeta) error

	// Load opens the index in dir. It fails with domain.ErrIndexNotFound if the
	// index is absent or corrupt.
	Load(ctx context.Context, dir string) (VectorIndex, error)
}

// IndexMeta describes how an index was built.
type IndexMeta struct {
	// EmbeddingModel is the model that produced the vectors.
	EmbeddingModel string

	// Dimensions is the vector size.
	Dimensions int

	// ChunkSize and ChunkOverlap are the chunker parameters.
	ChunkSize    int
	ChunkOverlap int

	// Entries is the number of stored entries.
	Entries int

	// BuiltAt is when the build completed.
	BuiltAt time.Time
}

// MetaProvider is implemented by indexes that expose their build metadata.
type MetaProvider interface {
	Meta() IndexMeta
}
