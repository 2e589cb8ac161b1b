package file

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manwithbarba/rag-ets/internal/adapters/driven/storage/memory"
	"github.com/manwithbarba/rag-ets/internal/core/domain"
)

func TestLoadSettings_Defaults(t *testing.T) {
	s, err := LoadSettings(nil)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), s)
}

func TestLoadSettings_FromStore(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{
		KeyChunkSize:         int64(800),
		KeyChunkOverlap:      int64(80),
		KeyEmbeddingProvider: "ollama",
		KeyLLMProvider:       "openai",
		KeyLLMBaseURL:        "http://localhost:8080/v1",
		KeyLLMModelPath:      "/models/mistral.gguf",
		KeyLLMTemperature:    0.3,
		KeyLLMSeed:           int64(42),
		KeyLLMTimeout:        "90s",
		KeyRetrievalK:        int64(5),
	})

	s, err := LoadSettings(store)
	require.NoError(t, err)

	assert.Equal(t, 800, s.Chunking.Size)
	assert.Equal(t, 80, s.Chunking.Overlap)
	assert.Equal(t, domain.AIProviderOllama, s.Embedding.Provider)
	assert.Equal(t, "all-minilm", s.Embedding.Model, "provider switch picks that provider's default model")
	assert.Equal(t, domain.AIProviderOpenAI, s.LLM.Provider)
	assert.Equal(t, "local-model", s.LLM.Model)
	assert.Equal(t, "http://localhost:8080/v1", s.LLM.BaseURL)
	assert.Equal(t, "/models/mistral.gguf", s.LLM.ModelPath)
	assert.InDelta(t, 0.3, s.LLM.Temperature, 1e-9)
	require.NotNil(t, s.LLM.Seed)
	assert.Equal(t, 42, *s.LLM.Seed)
	assert.Equal(t, 90*time.Second, s.LLM.Timeout)
	assert.Equal(t, 5, s.RetrievalK)
}

func TestLoadSettings_TimeoutInSeconds(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{KeyLLMTimeout: int64(30)})

	s, err := LoadSettings(store)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, s.LLM.Timeout)
}

func TestLoadSettings_EnvironmentOverridesStore(t *testing.T) {
	t.Setenv("RAGETS_LLM_MODEL", "mistral")
	t.Setenv("RAGETS_RETRIEVAL_K", "7")
	t.Setenv("RAGETS_LLM_TIMEOUT", "2m")
	t.Setenv("RAGETS_EMBEDDING_PROVIDER", "openai")

	store := memory.NewConfigStore(map[string]any{
		KeyLLMModel:   "llama3.2",
		KeyRetrievalK: int64(2),
		KeyChunkSize:  int64(400),
	})

	s, err := LoadSettings(store)
	require.NoError(t, err)

	assert.Equal(t, "mistral", s.LLM.Model)
	assert.Equal(t, 7, s.RetrievalK)
	assert.Equal(t, 2*time.Minute, s.LLM.Timeout)
	assert.Equal(t, 400, s.Chunking.Size)
	assert.Equal(t, domain.AIProviderOpenAI, s.Embedding.Provider)
	assert.Equal(t, "all-MiniLM-L6-v2", s.Embedding.Model)
}

func TestLoadSettings_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]any
	}{
		{"overlap not below size", map[string]any{KeyChunkSize: int64(100), KeyChunkOverlap: int64(100)}},
		{"negative overlap", map[string]any{KeyChunkOverlap: int64(-1)}},
		{"unknown embedding provider", map[string]any{KeyEmbeddingProvider: "magic"}},
		{"hugot cannot generate", map[string]any{KeyLLMProvider: "hugot"}},
		{"k too large", map[string]any{KeyRetrievalK: int64(11)}},
		{"k zero", map[string]any{KeyRetrievalK: int64(0)}},
		{"bad timeout", map[string]any{KeyLLMTimeout: "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSettings(memory.NewConfigStore(tt.values))
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestLoadSettings_InvalidEnvironment(t *testing.T) {
	t.Setenv("RAGETS_CHUNK_SIZE", "big")

	_, err := LoadSettings(nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestParseValue(t *testing.T) {
	v, err := ParseValue(KeyRetrievalK, "4")
	require.NoError(t, err)
	assert.Equal(t, int64(4), v)

	v, err = ParseValue(KeyLLMTemperature, "0.7")
	require.NoError(t, err)
	assert.InDelta(t, 0.7, v, 1e-9)

	v, err = ParseValue(KeyLLMTimeout, "45s")
	require.NoError(t, err)
	assert.Equal(t, "45s", v)

	v, err = ParseValue(KeyLLMModel, "mistral")
	require.NoError(t, err)
	assert.Equal(t, "mistral", v)

	_, err = ParseValue(KeyRetrievalK, "four")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = ParseValue(KeyLLMTimeout, "later")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = ParseValue("llm.colour", "blue")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestKnownKeys(t *testing.T) {
	keys := KnownKeys()
	assert.Contains(t, keys, KeyRetrievalK)
	assert.IsIncreasing(t, keys)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("RAGETS_TEST_DOTENV=from-file\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("RAGETS_TEST_DOTENV") })

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env"), path))
	assert.Equal(t, "from-file", os.Getenv("RAGETS_TEST_DOTENV"))
}
