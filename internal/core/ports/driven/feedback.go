package driven

import (
	"context"

	"github.com/manwithbarba/rag-ets/internal/core/domain"
)

// FeedbackStore is an append-only log of answer ratings.
type FeedbackStore interface {
	// Append writes one entry.
	Append(ctx context.Context, entry domain.FeedbackEntry) error

	// List returns the most recent entries, newest last. A limit of 0
	// returns all entries.
	List(ctx context.Context, limit int) ([]domain.FeedbackEntry, error)
}
