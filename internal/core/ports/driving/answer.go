package driving

import (
	"context"

	"github.com/manwithbarba/rag-ets/internal/core/domain"
)

// AnswerService answers questions from the indexed documents with inline
// citations.
type AnswerService interface {
	RetrievalService

	// AnswerQuestion retrieves k fragments, formats them as a numbered
	// context and asks the model for a cited answer. Any failing step aborts
	// the call with its specific error kind.
	AnswerQuestion(ctx context.Context, question string, k int) (*domain.Answer, error)
}
