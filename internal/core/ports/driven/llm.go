package driven

import "context"

// LLMService is a causal language model that completes a fully rendered prompt.
// Generation is blocking and implementations make no concurrency guarantees.
//
// Implementations may include:
//   - Ollama (local models)
//   - llama.cpp llama-server and other OpenAI-compatible servers
type LLMService interface {
	// Generate produces a single completion for the prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the backend is reachable and the model is present.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate. Zero means the
	// backend default.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// ContextLength is the context window requested from the backend.
	ContextLength int

	// GPULayers is the number of layers to offload; -1 means all available.
	GPULayers int

	// Seed fixes the sampler seed when non-nil.
	Seed *int

	// StopWords are sequences that stop generation when encountered.
	StopWords []string
}
