package driving

import (
	"context"

	"github.com/manwithbarba/rag-ets/internal/core/domain"
)

// EvaluationService runs a golden question set through the pipeline.
type EvaluationService interface {
	// Run answers every case with k fragments. A failing case is recorded in
	// its result and does not stop the run.
	Run(ctx context.Context, cases []domain.EvalCase, k int) ([]domain.EvalResult, error)
}
