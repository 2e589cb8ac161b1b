// Package ai creates the embedding and language model adapters from settings
// and bundles them, with the loaded index, into the Resources every command
// works from.
package ai

import (
	"context"
	"fmt"
	"time"

	hugotembed "github.com/manwithbarba/rag-ets/internal/adapters/driven/embedding/hugot"
	ollamaembed "github.com/manwithbarba/rag-ets/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/manwithbarba/rag-ets/internal/adapters/driven/embedding/openai"
	ollamallm "github.com/manwithbarba/rag-ets/internal/adapters/driven/llm/ollama"
	openaillm "github.com/manwithbarba/rag-ets/internal/adapters/driven/llm/openai"
	"github.com/manwithbarba/rag-ets/internal/core/domain"
	"github.com/manwithbarba/rag-ets/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateAndValidateEmbeddingService creates an embedding service and checks
// the model answers. Failures are domain.ErrModelUnavailable.
func CreateAndValidateEmbeddingService(ctx context.Context, settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, err
	}
	if err := ping(ctx, svc.Ping); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: embedding model %s: %w", domain.ErrModelUnavailable, svc.ModelName(), err)
	}
	return svc, nil
}

// CreateAndValidateLLMService creates an LLM service and checks the backend
// is reachable and has the model. Failures are domain.ErrModelUnavailable.
func CreateAndValidateLLMService(ctx context.Context, settings domain.LLMSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, err
	}
	if err := ping(ctx, svc.Ping); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: language model %s: %w", domain.ErrModelUnavailable, svc.ModelName(), err)
	}
	return svc, nil
}

func ping(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return fn(ctx)
}

// CreateEmbeddingService creates the embedding service for the configured
// provider.
func CreateEmbeddingService(settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	switch settings.Provider {
	case domain.AIProviderHugot:
		return createHugotEmbedding(settings)

	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:            settings.APIKey,
			BaseURL:           settings.BaseURL,
			Model:             settings.Model,
			Dimensions:        settings.Dimensions,
			RequestsPerSecond: settings.RequestsPerSecond,
		}), nil

	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider: %s", domain.ErrInvalidInput, settings.Provider)
	}
}

// createHugotEmbedding starts the in-process embedder.
func createHugotEmbedding(settings domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := hugotembed.NewEmbeddingService(hugotembed.Config{
		Model:      settings.Model,
		ModelDir:   settings.ModelDir,
		Dimensions: settings.Dimensions,
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// CreateLLMService creates the language model service for the configured
// provider.
func CreateLLMService(settings domain.LLMSettings) (driven.LLMService, error) {
	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		}), nil

	case domain.AIProviderOpenAI:
		svc, err := openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:    settings.APIKey,
			BaseURL:   settings.BaseURL,
			Model:     settings.Model,
			ModelPath: settings.ModelPath,
			Timeout:   settings.Timeout,
		})
		if err != nil {
			return nil, err
		}
		return svc, nil

	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider: %s", domain.ErrInvalidInput, settings.Provider)
	}
}
