package services

import (
	"context"

	"github.com/manwithbarba/rag-ets/internal/core/domain"
	"github.com/manwithbarba/rag-ets/internal/core/ports/driving"
	"github.com/manwithbarba/rag-ets/internal/logger"
)

// Ensure EvaluationService implements the interface.
var _ driving.EvaluationService = (*EvaluationService)(nil)

// EvaluationService runs a golden question set through the answer pipeline
// and collects what an external judge needs to score it.
type EvaluationService struct {
	answers driving.AnswerService
}

// NewEvaluationService creates an evaluation service.
func NewEvaluationService(answers driving.AnswerService) *EvaluationService {
	return &EvaluationService{answers: answers}
}

// Run answers every case in order. A case that fails keeps its error in the
// result; only cancellation stops the run.
func (s *EvaluationService) Run(ctx context.Context, cases []domain.EvalCase, k int) ([]domain.EvalResult, error) {
	if k == 0 {
		k = domain.DefaultRetrievalK
	}
	logger.Section("Evaluation")

	results := make([]domain.EvalResult, 0, len(cases))
	for i, c := range cases {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		logger.Info("Case %d/%d: %s", i+1, len(cases), c.Question)
		res := domain.EvalResult{Case: c}

		answer, err := s.answers.AnswerQuestion(ctx, c.Question, k)
		if err != nil {
			if ctx.Err() != nil {
				return results, ctx.Err()
			}
			logger.Warn("Case %d failed: %v", i+1, err)
			res.Err = err
			results = append(results, res)
			continue
		}

		res.Answer = answer.Text
		res.Contexts = answer.Contexts()
		res.Citations = answer.Context.Citations
		res.Checks = CheckFormat(answer.Text, answer.Context.Citations)
		results = append(results, res)
	}
	return results, nil
}
