package driving

import (
	"context"

	"github.com/manwithbarba/rag-ets/internal/core/domain"
)

// IngestService builds the vector index from a document directory.
type IngestService interface {
	// Ingest loads, splits and embeds every supported document under root and
	// replaces the index. Per-document failures are reported, not fatal.
	Ingest(ctx context.Context, root string) (*domain.IngestReport, error)
}
