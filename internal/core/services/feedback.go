package services

import (
	"context"
	"fmt"

	"github.com/manwithbarba/rag-ets/internal/core/domain"
	"github.com/manwithbarba/rag-ets/internal/core/ports/driven"
	"github.com/manwithbarba/rag-ets/internal/core/ports/driving"
	"github.com/manwithbarba/rag-ets/internal/logger"
)

// Ensure FeedbackService implements the interface.
var _ driving.FeedbackService = (*FeedbackService)(nil)

// FeedbackService records user ratings of answers.
type FeedbackService struct {
	store driven.FeedbackStore
}

// NewFeedbackService creates a feedback service.
func NewFeedbackService(store driven.FeedbackStore) *FeedbackService {
	return &FeedbackService{store: store}
}

// Record appends the answer and its rating to the feedback log.
func (s *FeedbackService) Record(ctx context.Context, answer *domain.Answer, rating domain.Rating) error {
	if answer == nil {
		return fmt.Errorf("%w: no answer to rate", domain.ErrInvalidInput)
	}
	if !rating.IsValid() {
		return fmt.Errorf("%w: unknown rating %q", domain.ErrInvalidInput, rating)
	}

	rec := answer.Record()
	entry := domain.FeedbackEntry{
		Timestamp: answer.Timestamp,
		Question:  rec["question"],
		Answer:    rec["answer"],
		Context:   rec["context"],
		Rating:    rating.Label(),
	}
	if err := s.store.Append(ctx, entry); err != nil {
		return fmt.Errorf("recording feedback: %w", err)
	}

	logger.Debug("Recorded %s feedback", rating)
	return nil
}

// Recent returns up to limit of the latest entries, oldest first.
func (s *FeedbackService) Recent(ctx context.Context, limit int) ([]domain.FeedbackEntry, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", domain.ErrInvalidInput)
	}
	return s.store.List(ctx, limit)
}
