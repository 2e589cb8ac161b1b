package driven

import (
	"context"

	"github.com/manwithbarba/rag-ets/internal/core/domain"
)

// DocumentLoader reads the files of a document directory.
type DocumentLoader interface {
	// Load reads every supported file under root. Files that cannot be read
	// are reported in the result and do not fail the call; only an unusable
	// root does.
	Load(ctx context.Context, root string) (*LoadResult, error)
}

// LoadResult is the outcome of loading a directory.
type LoadResult struct {
	// Documents are the files that were read, in lexical path order.
	Documents []*domain.RawDocument

	// Skipped are the files that could not be read.
	Skipped []domain.SkippedDocument
}
