// Package openai provides an LLM service adapter for OpenAI-compatible
// completion servers, typically a local llama.cpp llama-server serving a
// GGUF model file.
package openai

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/manwithbarba/rag-ets/internal/core/domain"
	"github.com/manwithbarba/rag-ets/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "http://localhost:8080/v1"
	DefaultLLMModel   = "local-model"
	DefaultLLMTimeout = 5 * time.Minute
)

// LLMConfig holds configuration for the OpenAI-compatible LLM service.
type LLMConfig struct {
	// APIKey is sent as a bearer token. Local servers usually ignore it.
	APIKey string

	// BaseURL is the API base URL including the /v1 suffix.
	BaseURL string

	// Model is the model name sent with each request.
	Model string

	// ModelPath is the GGUF file the server was started with. When set it
	// must exist; the server itself decides context size and GPU offload.
	ModelPath string

	// Timeout is the request timeout (default: 5m).
	Timeout time.Duration
}

// LLMService completes raw prompts through the /completions endpoint.
type LLMService struct {
	client *goopenai.Client
	model  string
}

// NewLLMService creates a new OpenAI-compatible LLM service.
// A configured ModelPath that does not exist fails with
// domain.ErrModelUnavailable.
func NewLLMService(cfg LLMConfig) (*LLMService, error) {
	if cfg.ModelPath != "" {
		if _, err := os.Stat(cfg.ModelPath); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: model file %s not found", domain.ErrModelUnavailable, cfg.ModelPath)
			}
			return nil, fmt.Errorf("%w: %w", domain.ErrModelUnavailable, err)
		}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultLLMModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}

	config := goopenai.DefaultConfig(cfg.APIKey)
	config.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	config.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &LLMService{
		client: goopenai.NewClientWithConfig(config),
		model:  cfg.Model,
	}, nil
}

// Generate produces a completion for a fully rendered prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	req := goopenai.CompletionRequest{
		Model:       s.model,
		Prompt:      prompt,
		MaxTokens:   opts.MaxTokens,
		Temperature: float32(opts.Temperature),
		Stop:        opts.StopWords,
		Seed:        opts.Seed,
	}

	resp, err := s.client.CreateCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: no completion returned")
	}
	return resp.Choices[0].Text, nil
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the server is reachable by listing its models.
func (s *LLMService) Ping(ctx context.Context) error {
	if _, err := s.client.ListModels(ctx); err != nil {
		return fmt.Errorf("%w: openai: %w", domain.ErrModelUnavailable, err)
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
