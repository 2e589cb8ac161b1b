package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manwithbarba/rag-ets/internal/core/domain"
)

func TestFeedbackListCmd_Empty(t *testing.T) {
	rt, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("feedback", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "No feedback recorded.")
	assert.Equal(t, 10, rt.feedback.limit)
}

func TestFeedbackListCmd_PrintsEntries(t *testing.T) {
	rt, cleanup := setupTestServices()
	defer cleanup()
	rt.feedback.entries = []domain.FeedbackEntry{
		{
			Timestamp: time.Date(2026, 10, 15, 9, 30, 0, 0, time.Local),
			Question:  "¿Qué países?",
			Answer:    "Argentina [1].",
			Rating:    domain.RatingGood.Label(),
		},
	}

	out, err := executeCommand("feedback", "list", "--limit", "5")

	require.NoError(t, err)
	assert.Contains(t, out, "2026-10-15 09:30:00  "+domain.RatingGood.Label())
	assert.Contains(t, out, "Q: ¿Qué países?")
	assert.Contains(t, out, "A: Argentina [1].")
	assert.Equal(t, 5, rt.feedback.limit)
}

func TestFeedbackListCmd_Error(t *testing.T) {
	rt, cleanup := setupTestServices()
	defer cleanup()
	rt.feedback.err = domain.ErrInvalidInput

	_, err := executeCommand("feedback", "list", "--limit=-1")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
