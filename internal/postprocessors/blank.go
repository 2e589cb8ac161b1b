package postprocessors

import (
	"context"
	"strings"

	"github.com/manwithbarba/rag-ets/internal/core/domain"
	"github.com/manwithbarba/rag-ets/internal/core/ports/driven"
)

// Ensure DropBlank implements the interface.
var _ driven.PostProcessor = DropBlank{}

// DropBlank removes fragments that contain only whitespace. Such fragments
// carry nothing retrievable and cannot be embedded.
type DropBlank struct{}

// Name returns the processor name.
func (DropBlank) Name() string {
	return "drop_blank"
}

// Process filters the fragments; positions are left as assigned by the chunker.
func (DropBlank) Process(_ context.Context, _ *domain.Document, fragments []domain.Fragment) ([]domain.Fragment, error) {
	var kept []domain.Fragment
	for _, f := range fragments {
		if strings.TrimSpace(f.Text) != "" {
			kept = append(kept, f)
		}
	}
	if len(kept) == 0 {
		return nil, nil
	}
	return kept, nil
}
