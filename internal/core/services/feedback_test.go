package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manwithbarba/rag-ets/internal/core/domain"
)

func TestFeedbackService_Record(t *testing.T) {
	store := &mockFeedbackStore{}
	svc := NewFeedbackService(store)
	answer := &domain.Answer{
		Question:  "¿Pacientes?",
		Text:      "De Chile [1].",
		Context:   domain.FormattedContext{Text: "### Fuente [1]\n"},
		Timestamp: time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC),
	}

	require.NoError(t, svc.Record(context.Background(), answer, domain.RatingGood))
	require.NoError(t, svc.Record(context.Background(), answer, domain.RatingBad))

	require.Len(t, store.entries, 2)
	assert.Equal(t, domain.FeedbackEntry{
		Timestamp: answer.Timestamp,
		Question:  "¿Pacientes?",
		Answer:    "De Chile [1].",
		Context:   "### Fuente [1]\n",
		Rating:    "👍 Buena respuesta",
	}, store.entries[0])
	assert.Equal(t, "👎 Mala respuesta", store.entries[1].Rating)
}

func TestFeedbackService_Record_Invalid(t *testing.T) {
	store := &mockFeedbackStore{}
	svc := NewFeedbackService(store)

	assert.ErrorIs(t, svc.Record(context.Background(), nil, domain.RatingGood), domain.ErrInvalidInput)
	assert.ErrorIs(t, svc.Record(context.Background(), &domain.Answer{}, domain.Rating("meh")), domain.ErrInvalidInput)
	assert.Empty(t, store.entries)
}

func TestFeedbackService_Record_StoreError(t *testing.T) {
	svc := NewFeedbackService(&mockFeedbackStore{appendErr: errBackend})

	err := svc.Record(context.Background(), &domain.Answer{}, domain.RatingGood)
	assert.ErrorIs(t, err, errBackend)
}

func TestFeedbackService_Recent(t *testing.T) {
	store := &mockFeedbackStore{entries: []domain.FeedbackEntry{{Question: "1"}, {Question: "2"}, {Question: "3"}}}
	svc := NewFeedbackService(store)

	recent, err := svc.Recent(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []domain.FeedbackEntry{{Question: "2"}, {Question: "3"}}, recent)

	all, err := svc.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = svc.Recent(context.Background(), -1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
