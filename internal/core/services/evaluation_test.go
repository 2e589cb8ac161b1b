package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manwithbarba/rag-ets/internal/core/domain"
)

func TestEvaluationService_Run(t *testing.T) {
	p, _ := newTestPipeline(t, citingLLM())
	svc := NewEvaluationService(p)

	cases := []domain.EvalCase{
		{Question: "¿Pacientes de Argentina?", GroundTruthAnswer: "Argentina"},
		{Question: "   "},
		{Question: "¿Pacientes de Chile?", GroundTruthAnswer: "Chile"},
	}

	results, err := svc.Run(context.Background(), cases, 2)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	assert.Equal(t, cases[0], results[0].Case)
	assert.Equal(t, "Respuesta [1] [2].", results[0].Answer)
	assert.Len(t, results[0].Contexts, 2)
	assert.Len(t, results[0].Citations, 2)
	assert.True(t, results[0].Checks.HasCitation)
	assert.True(t, results[0].Checks.Grounded())

	assert.ErrorIs(t, results[1].Err, domain.ErrInvalidQuery)
	assert.NoError(t, results[2].Err)

	summary := domain.Summarise(results)
	assert.Equal(t, 3, summary.Cases)
	assert.Equal(t, 1, summary.Failures)
	assert.InDelta(t, 1.0, summary.CitationRate, 1e-9)
	assert.InDelta(t, 0.0, summary.FallbackRate, 1e-9)
}

func TestEvaluationService_DefaultK(t *testing.T) {
	var gotK []int
	answers := &mockAnswerService{answer: func(string) (*domain.Answer, error) {
		return &domain.Answer{Text: domain.FallbackAnswer}, nil
	}}
	svc := NewEvaluationService(kRecorder{answers, &gotK})

	results, err := svc.Run(context.Background(), []domain.EvalCase{{Question: "q"}}, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{domain.DefaultRetrievalK}, gotK)
	assert.True(t, results[0].Checks.IsFallback)
}

func TestEvaluationService_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	answers := &mockAnswerService{answer: func(string) (*domain.Answer, error) {
		calls++
		cancel()
		return &domain.Answer{Text: "x [1]."}, nil
	}}

	results, err := NewEvaluationService(answers).Run(ctx, []domain.EvalCase{{Question: "a"}, {Question: "b"}}, 3)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, results, 1)
	assert.Equal(t, 1, calls)
}

// kRecorder records the k each question is answered with.
type kRecorder struct {
	*mockAnswerService
	ks *[]int
}

func (r kRecorder) AnswerQuestion(ctx context.Context, question string, k int) (*domain.Answer, error) {
	*r.ks = append(*r.ks, k)
	return r.mockAnswerService.AnswerQuestion(ctx, question, k)
}
