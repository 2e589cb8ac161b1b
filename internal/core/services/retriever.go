package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/manwithbarba/rag-ets/internal/core/domain"
	"github.com/manwithbarba/rag-ets/internal/core/ports/driven"
	"github.com/manwithbarba/rag-ets/internal/core/ports/driving"
	"github.com/manwithbarba/rag-ets/internal/logger"
)

// Ensure Retriever implements the interface.
var _ driving.RetrievalService = (*Retriever)(nil)

// Retriever embeds a question and returns the nearest fragments from the
// loaded index.
type Retriever struct {
	embedder driven.EmbeddingService
	index    driven.VectorIndex
}

// NewRetriever creates a retriever over a loaded index.
func NewRetriever(embedder driven.EmbeddingService, index driven.VectorIndex) *Retriever {
	return &Retriever{
		embedder: embedder,
		index:    index,
	}
}

// ClampK validates k and caps it at domain.MaxRetrievalK.
func ClampK(k int) (int, error) {
	if k < domain.MinRetrievalK {
		return 0, fmt.Errorf("%w: k must be at least %d, got %d", domain.ErrInvalidQuery, domain.MinRetrievalK, k)
	}
	if k > domain.MaxRetrievalK {
		logger.Debug("Clamping k from %d to %d", k, domain.MaxRetrievalK)
		return domain.MaxRetrievalK, nil
	}
	return k, nil
}

// Retrieve returns up to k fragments by descending similarity to question.
func (r *Retriever) Retrieve(ctx context.Context, question string, k int) (domain.RetrievalResult, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: question is empty", domain.ErrInvalidQuery)
	}
	k, err := ClampK(k)
	if err != nil {
		return nil, err
	}
	if r.index == nil {
		return nil, fmt.Errorf("%w: no index loaded", domain.ErrIndexNotFound)
	}

	logger.Debug("Retrieving %d fragments for %q", k, question)

	vec, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", err)
	}

	result, err := r.index.Search(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}

	logger.Debug("Retrieved %d of %d indexed fragments", len(result), r.index.Len())
	return result, nil
}
