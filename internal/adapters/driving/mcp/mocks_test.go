package mcp

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/manwithbarba/rag-ets/internal/core/domain"
)

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	answer  *domain.Answer
	results domain.RetrievalResult
	err     error

	lastQuestion string
	lastK        int

	// inFlight and maxInFlight track concurrent calls.
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	delay       time.Duration
}

func (m *mockAnswerService) enter() {
	n := m.inFlight.Add(1)
	for {
		peak := m.maxInFlight.Load()
		if n <= peak || m.maxInFlight.CompareAndSwap(peak, n) {
			break
		}
	}
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
}

func (m *mockAnswerService) AnswerQuestion(_ context.Context, question string, k int) (*domain.Answer, error) {
	m.enter()
	defer m.inFlight.Add(-1)

	m.lastQuestion, m.lastK = question, k
	return m.answer, m.err
}

func (m *mockAnswerService) Retrieve(_ context.Context, question string, k int) (domain.RetrievalResult, error) {
	m.enter()
	defer m.inFlight.Add(-1)

	m.lastQuestion, m.lastK = question, k
	return m.results, m.err
}

// mockFeedbackService is a mock implementation of driving.FeedbackService.
type mockFeedbackService struct {
	entries   []domain.FeedbackEntry
	err       error
	lastLimit int
}

func (m *mockFeedbackService) Record(_ context.Context, _ *domain.Answer, _ domain.Rating) error {
	return m.err
}

func (m *mockFeedbackService) Recent(_ context.Context, limit int) ([]domain.FeedbackEntry, error) {
	m.lastLimit = limit
	if m.err != nil {
		return nil, m.err
	}
	if limit < len(m.entries) {
		return m.entries[len(m.entries)-limit:], nil
	}
	return m.entries, nil
}
