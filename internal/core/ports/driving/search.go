package driving

import (
	"context"

	"github.com/manwithbarba/rag-ets/internal/core/domain"
)

// RetrievalService returns the fragments most relevant to a question.
type RetrievalService interface {
	// Retrieve embeds the question and returns up to k fragments by
	// descending similarity. k is clamped to [1, 10]; an empty question or
	// k < 1 fails with domain.ErrInvalidQuery.
	Retrieve(ctx context.Context, question string, k int) (domain.RetrievalResult, error)
}
