package services

import (
	"context"
	"time"

	"github.com/manwithbarba/rag-ets/internal/core/domain"
	"github.com/manwithbarba/rag-ets/internal/core/ports/driving"
	"github.com/manwithbarba/rag-ets/internal/logger"
)

// Ensure Pipeline implements the interface.
var _ driving.AnswerService = (*Pipeline)(nil)

// Pipeline answers a question by retrieving fragments, formatting them as
// numbered sources and generating a cited answer. Any failing step aborts
// the call with its own error kind. Nothing is retried.
type Pipeline struct {
	retriever driving.RetrievalService
	formatter *ContextFormatter
	generator *AnswerGenerator
	now       func() time.Time
}

// NewPipeline creates a question answering pipeline.
func NewPipeline(retriever driving.RetrievalService, formatter *ContextFormatter, generator *AnswerGenerator) *Pipeline {
	if formatter == nil {
		formatter = NewContextFormatter()
	}
	return &Pipeline{
		retriever: retriever,
		formatter: formatter,
		generator: generator,
		now:       time.Now,
	}
}

// Retrieve returns the fragments for question without generating an answer.
func (p *Pipeline) Retrieve(ctx context.Context, question string, k int) (domain.RetrievalResult, error) {
	return p.retriever.Retrieve(ctx, question, k)
}

// AnswerQuestion returns a cited answer built from the k nearest fragments.
func (p *Pipeline) AnswerQuestion(ctx context.Context, question string, k int) (*domain.Answer, error) {
	logger.Section("Answer")
	logger.Debug("Question: %q (k=%d)", question, k)

	fragments, err := p.retriever.Retrieve(ctx, question, k)
	if err != nil {
		return nil, err
	}

	formatted := p.formatter.Format(fragments)

	text, err := p.generator.Generate(ctx, formatted, question)
	if err != nil {
		return nil, err
	}

	return &domain.Answer{
		Question:  question,
		Text:      text,
		Context:   formatted,
		Fragments: fragments,
		Timestamp: p.now(),
	}, nil
}
