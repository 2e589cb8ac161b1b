// Package hugot provides an in-process embedding service that runs
// sentence-transformer ONNX models with the pure Go hugot backend.
package hugot

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/knights-analytics/hugot"

	"github.com/manwithbarba/rag-ets/internal/core/domain"
	"github.com/manwithbarba/rag-ets/internal/core/ports/driven"
	"github.com/manwithbarba/rag-ets/internal/logger"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultModel      = "sentence-transformers/all-MiniLM-L6-v2"
	DefaultDimensions = 384
	onnxFilePath      = "onnx/model.onnx"
)

// Config holds configuration for the hugot embedding service.
type Config struct {
	// Model is the Hugging Face model name.
	Model string

	// ModelDir is where models are downloaded and cached.
	ModelDir string

	// Dimensions is the embedding vector size (default: known size of Model).
	Dimensions int

	// Offline fails instead of downloading a missing model.
	Offline bool
}

// runFunc runs the feature extraction pipeline over a batch of texts.
type runFunc func(texts []string) ([][]float32, error)

// EmbeddingService generates embeddings in-process.
type EmbeddingService struct {
	model      string
	dimensions int

	mu      sync.Mutex
	run     runFunc
	destroy func() error
}

// NewEmbeddingService prepares the model, downloading it into ModelDir when
// missing, and starts a hugot session. A model that cannot be prepared fails
// with domain.ErrModelUnavailable.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = domain.EmbeddingDimensions()[cfg.Model]
	}
	if cfg.Dimensions == 0 {
		return nil, fmt.Errorf("%w: unknown dimensions for model %s", domain.ErrInvalidInput, cfg.Model)
	}

	modelPath, err := PrepareModel(cfg.Model, cfg.ModelDir, cfg.Offline)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrModelUnavailable, err)
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create hugot session: %w", domain.ErrModelUnavailable, err)
	}

	pipeline, err := hugot.NewPipeline(session, hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "ragets-embedder",
	})
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			logger.Warn("hugot session cleanup: %v", destroyErr)
		}
		return nil, fmt.Errorf("%w: failed to create embedding pipeline: %w", domain.ErrModelUnavailable, err)
	}

	run := func(texts []string) ([][]float32, error) {
		result, err := pipeline.RunPipeline(texts)
		if err != nil {
			return nil, err
		}
		return result.Embeddings, nil
	}

	return newWithRunner(cfg.Model, cfg.Dimensions, run, session.Destroy), nil
}

func newWithRunner(model string, dims int, run runFunc, destroy func() error) *EmbeddingService {
	return &EmbeddingService{
		model:      model,
		dimensions: dims,
		run:        run,
		destroy:    destroy,
	}
}

// PrepareModel returns the local path of model under dir, downloading it
// when it is not present. An empty dir uses ./models.
func PrepareModel(model, dir string, offline bool) (string, error) {
	if dir == "" {
		dir = "models"
	}
	modelPath := filepath.Join(dir, strings.ReplaceAll(model, "/", "_"))

	if _, err := os.Stat(modelPath); err == nil {
		return modelPath, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("checking model %s: %w", modelPath, err)
	}

	if offline {
		return "", fmt.Errorf("model %s not found in %s", model, dir)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create model directory: %w", err)
	}

	logger.Info("downloading embedding model %s to %s", model, dir)
	options := hugot.NewDownloadOptions()
	options.OnnxFilePath = onnxFilePath
	downloaded, err := hugot.DownloadModel(model, dir, options)
	if err != nil {
		return "", fmt.Errorf("failed to download model %s: %w", model, err)
	}
	return downloaded, nil
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch generates embeddings for texts in input order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("%w: text %d is empty", domain.ErrEmbedding, i)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.run == nil {
		return nil, fmt.Errorf("%w: service closed", domain.ErrEmbedding)
	}

	embeddings, err := s.run(texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbedding, err)
	}
	if len(embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d texts", domain.ErrEmbedding, len(embeddings), len(texts))
	}
	for i, vec := range embeddings {
		if len(vec) != s.dimensions {
			return nil, fmt.Errorf("%w: text %d has %d dimensions, expected %d", domain.ErrEmbedding, i, len(vec), s.dimensions)
		}
	}
	return embeddings, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping runs a one-word embedding to confirm the pipeline works.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if _, err := s.Embed(ctx, "ping"); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrModelUnavailable, err)
	}
	return nil
}

// Close destroys the hugot session.
func (s *EmbeddingService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.run = nil
	if s.destroy == nil {
		return nil
	}
	err := s.destroy()
	s.destroy = nil
	return err
}
