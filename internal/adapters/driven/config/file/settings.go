package file

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/manwithbarba/rag-ets/internal/core/domain"
	"github.com/manwithbarba/rag-ets/internal/core/ports/driven"
)

// EnvPrefix is the prefix of environment overrides, e.g. RAGETS_LLM_MODEL.
const EnvPrefix = "RAGETS"

// Config keys.
const (
	KeyDocumentsPath     = "documents.path"
	KeyIndexPath         = "index.path"
	KeyChunkSize         = "chunking.size"
	KeyChunkOverlap      = "chunking.overlap"
	KeyEmbeddingProvider = "embedding.provider"
	KeyEmbeddingModel    = "embedding.model"
	KeyEmbeddingBaseURL  = "embedding.base_url"
	KeyEmbeddingAPIKey   = "embedding.api_key"
	KeyEmbeddingDims     = "embedding.dimensions"
	KeyEmbeddingModelDir = "embedding.model_dir"
	KeyEmbeddingRPS      = "embedding.requests_per_second"
	KeyLLMProvider       = "llm.provider"
	KeyLLMModel          = "llm.model"
	KeyLLMBaseURL        = "llm.base_url"
	KeyLLMAPIKey         = "llm.api_key"
	KeyLLMModelPath      = "llm.model_path"
	KeyLLMContextLength  = "llm.context_length"
	KeyLLMTemperature    = "llm.temperature"
	KeyLLMGPULayers      = "llm.gpu_layers"
	KeyLLMMaxTokens      = "llm.max_tokens"
	KeyLLMSeed           = "llm.seed"
	KeyLLMTimeout        = "llm.timeout"
	KeyRetrievalK        = "retrieval.k"
	KeyFeedbackPath      = "feedback.path"
	KeyMCPPort           = "mcp.port"
)

type kind string

const (
	valueKindString   kind = "string"
	valueKindInt      kind = "int"
	valueKindFloat    kind = "float"
	valueKindDuration kind = "duration"
)

// keyKinds lists every recognised key with the type of its value.
var keyKinds = map[string]kind{
	KeyDocumentsPath:     valueKindString,
	KeyIndexPath:         valueKindString,
	KeyChunkSize:         valueKindInt,
	KeyChunkOverlap:      valueKindInt,
	KeyEmbeddingProvider: valueKindString,
	KeyEmbeddingModel:    valueKindString,
	KeyEmbeddingBaseURL:  valueKindString,
	KeyEmbeddingAPIKey:   valueKindString,
	KeyEmbeddingDims:     valueKindInt,
	KeyEmbeddingModelDir: valueKindString,
	KeyEmbeddingRPS:      valueKindFloat,
	KeyLLMProvider:       valueKindString,
	KeyLLMModel:          valueKindString,
	KeyLLMBaseURL:        valueKindString,
	KeyLLMAPIKey:         valueKindString,
	KeyLLMModelPath:      valueKindString,
	KeyLLMContextLength:  valueKindInt,
	KeyLLMTemperature:    valueKindFloat,
	KeyLLMGPULayers:      valueKindInt,
	KeyLLMMaxTokens:      valueKindInt,
	KeyLLMSeed:           valueKindInt,
	KeyLLMTimeout:        valueKindDuration,
	KeyRetrievalK:        valueKindInt,
	KeyFeedbackPath:      valueKindString,
	KeyMCPPort:           valueKindInt,
}

// KnownKeys returns the recognised config keys, sorted.
func KnownKeys() []string {
	keys := make([]string, 0, len(keyKinds))
	for k := range keyKinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ParseValue converts a command-line value to the type stored for key.
func ParseValue(key, raw string) (any, error) {
	k, ok := keyKinds[key]
	if !ok {
		return nil, fmt.Errorf("%w: unknown config key %q", domain.ErrInvalidInput, key)
	}

	switch k {
	case valueKindInt:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, key)
		}
		return int64(n), nil
	case valueKindFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be a number", domain.ErrInvalidInput, key)
		}
		return f, nil
	case valueKindDuration:
		if _, err := time.ParseDuration(raw); err != nil {
			return nil, fmt.Errorf("%w: %s must be a duration such as 5m", domain.ErrInvalidInput, key)
		}
		return raw, nil
	default:
		return raw, nil
	}
}

// envOverrides mirrors the config keys as RAGETS_* variables. Nil fields
// were not set in the environment.
type envOverrides struct {
	DocumentsPath     *string        `envconfig:"DOCUMENTS_PATH"`
	IndexPath         *string        `envconfig:"INDEX_PATH"`
	ChunkSize         *int           `envconfig:"CHUNK_SIZE"`
	ChunkOverlap      *int           `envconfig:"CHUNK_OVERLAP"`
	EmbeddingProvider *string        `envconfig:"EMBEDDING_PROVIDER"`
	EmbeddingModel    *string        `envconfig:"EMBEDDING_MODEL"`
	EmbeddingBaseURL  *string        `envconfig:"EMBEDDING_BASE_URL"`
	EmbeddingAPIKey   *string        `envconfig:"EMBEDDING_API_KEY"`
	EmbeddingDims     *int           `envconfig:"EMBEDDING_DIMENSIONS"`
	EmbeddingModelDir *string        `envconfig:"EMBEDDING_MODEL_DIR"`
	EmbeddingRPS      *float64       `envconfig:"EMBEDDING_REQUESTS_PER_SECOND"`
	LLMProvider       *string        `envconfig:"LLM_PROVIDER"`
	LLMModel          *string        `envconfig:"LLM_MODEL"`
	LLMBaseURL        *string        `envconfig:"LLM_BASE_URL"`
	LLMAPIKey         *string        `envconfig:"LLM_API_KEY"`
	LLMModelPath      *string        `envconfig:"LLM_MODEL_PATH"`
	LLMContextLength  *int           `envconfig:"LLM_CONTEXT_LENGTH"`
	LLMTemperature    *float64       `envconfig:"LLM_TEMPERATURE"`
	LLMGPULayers      *int           `envconfig:"LLM_GPU_LAYERS"`
	LLMMaxTokens      *int           `envconfig:"LLM_MAX_TOKENS"`
	LLMSeed           *int           `envconfig:"LLM_SEED"`
	LLMTimeout        *time.Duration `envconfig:"LLM_TIMEOUT"`
	RetrievalK        *int           `envconfig:"RETRIEVAL_K"`
	FeedbackPath      *string        `envconfig:"FEEDBACK_PATH"`
	MCPPort           *int           `envconfig:"MCP_PORT"`
}

// LoadDotEnv loads variables from the given .env files into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", path, err)
		}
	}
	return nil
}

// LoadSettings merges defaults, then values from store, then RAGETS_*
// environment variables, and validates the result.
func LoadSettings(store driven.ConfigStore) (domain.Settings, error) {
	s := domain.DefaultSettings()

	if store != nil {
		if err := applyStore(&s, store); err != nil {
			return domain.Settings{}, err
		}
	}

	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return domain.Settings{}, fmt.Errorf("%w: environment: %w", domain.ErrInvalidInput, err)
	}
	applyEnv(&s, env)

	if err := ValidateSettings(s); err != nil {
		return domain.Settings{}, err
	}
	return s, nil
}

// ValidateSettings checks ranges and provider names.
func ValidateSettings(s domain.Settings) error {
	if err := s.Chunking.Validate(); err != nil {
		return fmt.Errorf("%w: chunking size %d with overlap %d", domain.ErrInvalidInput, s.Chunking.Size, s.Chunking.Overlap)
	}
	if !s.Embedding.Provider.IsValid() {
		return fmt.Errorf("%w: unknown embedding provider %q", domain.ErrInvalidInput, s.Embedding.Provider)
	}
	if s.LLM.Provider != domain.AIProviderOllama && s.LLM.Provider != domain.AIProviderOpenAI {
		return fmt.Errorf("%w: unknown llm provider %q", domain.ErrInvalidInput, s.LLM.Provider)
	}
	if s.RetrievalK < domain.MinRetrievalK || s.RetrievalK > domain.MaxRetrievalK {
		return fmt.Errorf("%w: retrieval.k must be between %d and %d", domain.ErrInvalidInput, domain.MinRetrievalK, domain.MaxRetrievalK)
	}
	if s.LLM.Timeout < 0 {
		return fmt.Errorf("%w: llm.timeout must not be negative", domain.ErrInvalidInput)
	}
	return nil
}

func applyStore(s *domain.Settings, store driven.ConfigStore) error {
	has := func(key string) bool {
		_, ok := store.Get(key)
		return ok
	}
	str := func(key string, dst *string) {
		if has(key) {
			*dst = store.GetString(key)
		}
	}
	num := func(key string, dst *int) {
		if has(key) {
			*dst = store.GetInt(key)
		}
	}
	flt := func(key string, dst *float64) {
		if has(key) {
			*dst = store.GetFloat(key)
		}
	}

	str(KeyDocumentsPath, &s.DocumentsPath)
	str(KeyIndexPath, &s.IndexPath)
	num(KeyChunkSize, &s.Chunking.Size)
	num(KeyChunkOverlap, &s.Chunking.Overlap)

	if has(KeyEmbeddingProvider) {
		s.Embedding.Provider = domain.AIProvider(store.GetString(KeyEmbeddingProvider))
		if !has(KeyEmbeddingModel) {
			s.Embedding.Model = domain.DefaultEmbeddingModels()[s.Embedding.Provider]
		}
	}
	str(KeyEmbeddingModel, &s.Embedding.Model)
	str(KeyEmbeddingBaseURL, &s.Embedding.BaseURL)
	str(KeyEmbeddingAPIKey, &s.Embedding.APIKey)
	num(KeyEmbeddingDims, &s.Embedding.Dimensions)
	str(KeyEmbeddingModelDir, &s.Embedding.ModelDir)
	flt(KeyEmbeddingRPS, &s.Embedding.RequestsPerSecond)

	if has(KeyLLMProvider) {
		s.LLM.Provider = domain.AIProvider(store.GetString(KeyLLMProvider))
		if !has(KeyLLMModel) {
			s.LLM.Model = domain.DefaultLLMModels()[s.LLM.Provider]
		}
	}
	str(KeyLLMModel, &s.LLM.Model)
	str(KeyLLMBaseURL, &s.LLM.BaseURL)
	str(KeyLLMAPIKey, &s.LLM.APIKey)
	str(KeyLLMModelPath, &s.LLM.ModelPath)
	num(KeyLLMContextLength, &s.LLM.ContextLength)
	flt(KeyLLMTemperature, &s.LLM.Temperature)
	num(KeyLLMGPULayers, &s.LLM.GPULayers)
	num(KeyLLMMaxTokens, &s.LLM.MaxTokens)
	if has(KeyLLMSeed) {
		seed := store.GetInt(KeyLLMSeed)
		s.LLM.Seed = &seed
	}
	if has(KeyLLMTimeout) {
		d, err := parseDuration(store, KeyLLMTimeout)
		if err != nil {
			return err
		}
		s.LLM.Timeout = d
	}

	num(KeyRetrievalK, &s.RetrievalK)
	str(KeyFeedbackPath, &s.FeedbackPath)
	num(KeyMCPPort, &s.MCPPort)
	return nil
}

// parseDuration accepts "5m"-style strings or a number of seconds.
func parseDuration(store driven.ConfigStore, key string) (time.Duration, error) {
	if raw := store.GetString(key); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
		}
		return d, nil
	}
	return time.Duration(store.GetFloat(key) * float64(time.Second)), nil
}

func applyEnv(s *domain.Settings, env envOverrides) {
	setStr := func(src *string, dst *string) {
		if src != nil {
			*dst = *src
		}
	}
	setInt := func(src *int, dst *int) {
		if src != nil {
			*dst = *src
		}
	}
	setFloat := func(src *float64, dst *float64) {
		if src != nil {
			*dst = *src
		}
	}

	setStr(env.DocumentsPath, &s.DocumentsPath)
	setStr(env.IndexPath, &s.IndexPath)
	setInt(env.ChunkSize, &s.Chunking.Size)
	setInt(env.ChunkOverlap, &s.Chunking.Overlap)

	if env.EmbeddingProvider != nil {
		s.Embedding.Provider = domain.AIProvider(*env.EmbeddingProvider)
		if env.EmbeddingModel == nil {
			s.Embedding.Model = domain.DefaultEmbeddingModels()[s.Embedding.Provider]
		}
	}
	setStr(env.EmbeddingModel, &s.Embedding.Model)
	setStr(env.EmbeddingBaseURL, &s.Embedding.BaseURL)
	setStr(env.EmbeddingAPIKey, &s.Embedding.APIKey)
	setInt(env.EmbeddingDims, &s.Embedding.Dimensions)
	setStr(env.EmbeddingModelDir, &s.Embedding.ModelDir)
	setFloat(env.EmbeddingRPS, &s.Embedding.RequestsPerSecond)

	if env.LLMProvider != nil {
		s.LLM.Provider = domain.AIProvider(*env.LLMProvider)
		if env.LLMModel == nil {
			s.LLM.Model = domain.DefaultLLMModels()[s.LLM.Provider]
		}
	}
	setStr(env.LLMModel, &s.LLM.Model)
	setStr(env.LLMBaseURL, &s.LLM.BaseURL)
	setStr(env.LLMAPIKey, &s.LLM.APIKey)
	setStr(env.LLMModelPath, &s.LLM.ModelPath)
	setInt(env.LLMContextLength, &s.LLM.ContextLength)
	setFloat(env.LLMTemperature, &s.LLM.Temperature)
	setInt(env.LLMGPULayers, &s.LLM.GPULayers)
	setInt(env.LLMMaxTokens, &s.LLM.MaxTokens)
	if env.LLMSeed != nil {
		seed := *env.LLMSeed
		s.LLM.Seed = &seed
	}
	if env.LLMTimeout != nil {
		s.LLM.Timeout = *env.LLMTimeout
	}

	setInt(env.RetrievalK, &s.RetrievalK)
	setStr(env.FeedbackPath, &s.FeedbackPath)
	setInt(env.MCPPort, &s.MCPPort)
}
