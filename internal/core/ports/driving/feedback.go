package driving

import (
	"context"

	"github.com/manwithbarba/rag-ets/internal/core/domain"
)

// FeedbackService records user ratings of answers.
type FeedbackService interface {
	// Record appends the answer and its rating to the feedback log.
	Record(ctx context.Context, answer *domain.Answer, rating domain.Rating) error

	// Recent returns up to limit of the latest entries.
	Recent(ctx context.Context, limit int) ([]domain.FeedbackEntry, error)
}
