package driven

import (
	"context"

	"github.com/manwithbarba/rag-ets/internal/core/domain"
)

// PostProcessor processes document content to produce fragments.
// PostProcessors are chained in a pipeline.
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes a document and returns fragments.
	// If the processor modifies fragments, it receives and returns them.
	// If the processor creates fragments (e.g., chunker), it receives nil and returns new ones.
	Process(ctx context.Context, doc *domain.Document, fragments []domain.Fragment) ([]domain.Fragment, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the document through all processors in order.
	// Returns the final fragments after all processing.
	Process(ctx context.Context, doc *domain.Document) ([]domain.Fragment, error)
}
