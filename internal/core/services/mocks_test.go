package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/manwithbarba/rag-ets/internal/core/domain"
	"github.com/manwithbarba/rag-ets/internal/core/ports/driven"
)

// keywordEmbedder maps text to a vector with one dimension per keyword, set
// to 1 when the keyword occurs, plus a constant dimension so no vector is
// zero. It is deterministic.
type keywordEmbedder struct {
	keywords []string
	err      error

	mu    sync.Mutex
	calls int
}

func (m *keywordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmbedding
	}
	vec := make([]float32, len(m.keywords)+1)
	vec[len(m.keywords)] = 1
	lower := strings.ToLower(text)
	for i, kw := range m.keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			vec[i] = 1
		}
	}
	return vec, nil
}

func (m *keywordEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (m *keywordEmbedder) Dimensions() int { return len(m.keywords) + 1 }
func (m *keywordEmbedder) ModelName() string { return "keyword-stub" }
func (m *keywordEmbedder) Ping(context.Context) error { return nil }
func (m *keywordEmbedder) Close() error { return nil }

func (m *keywordEmbedder) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockLLM records prompts and answers with reply.
type mockLLM struct {
	reply func(prompt string) (string, error)

	mu      sync.Mutex
	prompts []string
	opts    []driven.GenerateOptions
}

func (m *mockLLM) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.opts = append(m.opts, opts)
	m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.reply == nil {
		return domain.FallbackAnswer, nil
	}
	return m.reply(prompt)
}

func (m *mockLLM) ModelName() string { return "mock-llm" }
func (m *mockLLM) Ping(context.Context) error { return nil }
func (m *mockLLM) Close() error { return nil }

func (m *mockLLM) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// slowLLM blocks until the context ends.
type slowLLM struct{ mockLLM }

func (m *slowLLM) Generate(ctx context.Context, _ string, _ driven.GenerateOptions) (string, error) {
	<-ctx.Done()
	return "partial", ctx.Err()
}

// mockPromptStore returns a fixed template.
type mockPromptStore struct {
	template string
	err      error
}

func (m *mockPromptStore) Load(string) (string, error) { return m.template, m.err }
func (m *mockPromptStore) Reload() {}

// mockRetriever returns a fixed result.
type mockRetriever struct {
	result domain.RetrievalResult
	err    error
	calls  int
}

func (m *mockRetriever) Retrieve(_ context.Context, _ string, _ int) (domain.RetrievalResult, error) {
	m.calls++
	return m.result, m.err
}

// mockAnswerService answers from a function.
type mockAnswerService struct {
	mockRetriever
	answer func(question string) (*domain.Answer, error)
}

func (m *mockAnswerService) AnswerQuestion(_ context.Context, question string, _ int) (*domain.Answer, error) {
	return m.answer(question)
}

// mockLoader returns fixed documents.
type mockLoader struct {
	result *driven.LoadResult
	err    error
}

func (m *mockLoader) Load(context.Context, string) (*driven.LoadResult, error) {
	return m.result, m.err
}

// mockNormalisers turns raw bytes into a plain document, failing for paths
// listed in fail.
type mockNormalisers struct {
	fail map[string]error
}

func (m *mockNormalisers) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if err := m.fail[raw.Path]; err != nil {
		return nil, err
	}
	return &driven.NormaliseResult{Document: domain.Document{
		ID:      raw.Path,
		Source:  raw.Path,
		Content: string(raw.Content),
		Format:  domain.FormatPlain,
	}}, nil
}

func (m *mockNormalisers) Register(driven.Normaliser) {}
func (m *mockNormalisers) SupportedMIMETypes() []string { return []string{"text/plain"} }

// mockIndexStore records the last build.
type mockIndexStore struct {
	buildErr error
	built    []domain.IndexEntry
	meta     driven.IndexMeta
	builds   int
}

func (m *mockIndexStore) Build(_ context.Context, _ string, entries []domain.IndexEntry, meta driven.IndexMeta) error {
	if m.buildErr != nil {
		return m.buildErr
	}
	m.builds++
	m.built = entries
	m.meta = meta
	return nil
}

func (m *mockIndexStore) Load(context.Context, string) (driven.VectorIndex, error) {
	return nil, domain.ErrIndexNotFound
}

// mockFeedbackStore keeps entries in memory.
type mockFeedbackStore struct {
	entries   []domain.FeedbackEntry
	appendErr error
}

func (m *mockFeedbackStore) Append(_ context.Context, e domain.FeedbackEntry) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.entries = append(m.entries, e)
	return nil
}

func (m *mockFeedbackStore) List(_ context.Context, limit int) ([]domain.FeedbackEntry, error) {
	if limit == 0 || limit >= len(m.entries) {
		return m.entries, nil
	}
	return m.entries[len(m.entries)-limit:], nil
}

var errBackend = errors.New("backend down")
