package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies a backend for embeddings or generation.
type AIProvider string

// Available AI providers.
const (
	// AIProviderHugot runs an ONNX sentence-transformer in process.
	AIProviderHugot AIProvider = "hugot"

	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is any OpenAI-compatible server, such as llama.cpp's
	// llama-server.
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderHugot, AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderHugot:
		return "Hugot (in-process ONNX)"
	case AIProviderOllama:
		return "Ollama (local server)"
	case AIProviderOpenAI:
		return "OpenAI-compatible server"
	default:
		return unknownDescription
	}
}

// Chunking defaults.
const (
	DefaultChunkSize    = 500
	DefaultChunkOverlap = 50
)

// ChunkingSettings controls how documents are split into fragments.
type ChunkingSettings struct {
	// Size is the maximum fragment length in characters.
	Size int

	// Overlap is the number of characters shared by adjacent fragments.
	Overlap int
}

// Validate checks 0 <= Overlap < Size.
func (c ChunkingSettings) Validate() error {
	if c.Size <= 0 || c.Overlap < 0 || c.Overlap >= c.Size {
		return ErrInvalidInput
	}
	return nil
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding backend.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (Ollama, OpenAI-compatible).
	BaseURL string

	// APIKey is sent as a bearer token when set.
	APIKey string

	// Dimensions overrides the known dimension for Model.
	Dimensions int

	// ModelDir is where in-process models are downloaded.
	ModelDir string

	// RequestsPerSecond limits remote embedding calls. Zero disables limiting.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	return e.Provider.IsValid() && e.Model != ""
}

// LLMSettings holds language model configuration.
type LLMSettings struct {
	// Provider is the generation backend.
	Provider AIProvider

	// Model is the model name as known to the backend.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is sent as a bearer token when set.
	APIKey string

	// ModelPath is the weights file served by a llama.cpp server. When set it
	// must exist before any question is accepted.
	ModelPath string

	// ContextLength is the model context window in tokens.
	ContextLength int

	// Temperature is the sampling temperature.
	Temperature float64

	// GPULayers is the number of layers offloaded to the GPU; -1 means all.
	GPULayers int

	// MaxTokens caps the completion length; 0 leaves it to the backend.
	MaxTokens int

	// Seed makes sampling reproducible when non-nil.
	Seed *int

	// Timeout bounds a single generation call.
	Timeout time.Duration
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	return (l.Provider == AIProviderOllama || l.Provider == AIProviderOpenAI) && l.Model != ""
}

// Settings holds all application settings.
type Settings struct {
	// DocumentsPath is the default ingestion root.
	DocumentsPath string

	// IndexPath is the directory holding the persisted index.
	IndexPath string

	// Chunking controls fragment size and overlap.
	Chunking ChunkingSettings

	// Embedding configures the embedder.
	Embedding EmbeddingSettings

	// LLM configures the answer generator's model.
	LLM LLMSettings

	// RetrievalK is the default number of fragments retrieved per question.
	RetrievalK int

	// FeedbackPath is the CSV feedback log.
	FeedbackPath string

	// MCPPort is the default HTTP port for the MCP server; 0 means stdio.
	MCPPort int
}

// DefaultSettings returns settings that work out of the box with a local
// Ollama server and the in-process embedder.
func DefaultSettings() Settings {
	return Settings{
		DocumentsPath: "documentos",
		IndexPath:     "vector_store",
		Chunking: ChunkingSettings{
			Size:    DefaultChunkSize,
			Overlap: DefaultChunkOverlap,
		},
		Embedding: EmbeddingSettings{
			Provider: AIProviderHugot,
			Model:    DefaultEmbeddingModels()[AIProviderHugot],
		},
		LLM: LLMSettings{
			Provider:      AIProviderOllama,
			Model:         DefaultLLMModels()[AIProviderOllama],
			ContextLength: 4096,
			Temperature:   0.1,
			GPULayers:     -1,
			Timeout:       5 * time.Minute,
		},
		RetrievalK:   DefaultRetrievalK,
		FeedbackPath: "feedback.csv",
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderHugot:  "sentence-transformers/all-MiniLM-L6-v2",
		AIProviderOllama: "all-minilm",
		AIProviderOpenAI: "all-MiniLM-L6-v2",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "llama3.2",
		AIProviderOpenAI: "local-model",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		"sentence-transformers/all-MiniLM-L6-v2": 384,
		"all-MiniLM-L6-v2":                       384,
		"all-minilm":                             384,
		"nomic-embed-text":                       768,
		"mxbai-embed-large":                      1024,
		"text-embedding-3-small":                 1536,
	}
}
