package driven

import (
	"context"

	"github.com/manwithbarba/rag-ets/internal/core/domain"
)

// EvalSetReader reads a golden question set.
type EvalSetReader interface {
	Read(ctx context.Context, path string) ([]domain.EvalCase, error)
}

// EvalReportWriter writes the outcome of an evaluation run for an external
// judge to score.
type EvalReportWriter interface {
	Write(ctx context.Context, path string, results []domain.EvalResult, summary domain.EvalSummary) error
}
