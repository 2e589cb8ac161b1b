package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/manwithbarba/rag-ets/internal/adapters/driven/ai"
	"github.com/manwithbarba/rag-ets/internal/adapters/driven/config/file"
	"github.com/manwithbarba/rag-ets/internal/adapters/driven/evalset"
	"github.com/manwithbarba/rag-ets/internal/adapters/driven/feedback"
	"github.com/manwithbarba/rag-ets/internal/adapters/driven/storage/sqlite"
	"github.com/manwithbarba/rag-ets/internal/connectors/filesystem"
	"github.com/manwithbarba/rag-ets/internal/core/domain"
	"github.com/manwithbarba/rag-ets/internal/core/ports/driven"
	"github.com/manwithbarba/rag-ets/internal/core/ports/driving"
	"github.com/manwithbarba/rag-ets/internal/core/services"
	"github.com/manwithbarba/rag-ets/internal/normalisers"
	"github.com/manwithbarba/rag-ets/internal/postprocessors"
)

// Runtime supplies services to commands. Resources are opened on first use so
// each command only pays for the models it needs.
type Runtime interface {
	// Settings returns the effective settings.
	Settings() domain.Settings

	// ConfigStore returns the persistent configuration.
	ConfigStore() driven.ConfigStore

	// IngestService returns an ingestion service for the given settings.
	IngestService(ctx context.Context, settings domain.Settings) (driving.IngestService, error)

	// RetrievalService returns a retriever over the persisted index.
	RetrievalService(ctx context.Context) (driving.RetrievalService, error)

	// AnswerService returns the full answering pipeline.
	AnswerService(ctx context.Context) (driving.AnswerService, error)

	// EvaluationService returns a runner over the answering pipeline.
	EvaluationService(ctx context.Context) (driving.EvaluationService, error)

	// FeedbackService returns the feedback log service.
	FeedbackService() driving.FeedbackService

	// EvalSet returns the golden set reader and report writer.
	EvalSet() (driven.EvalSetReader, driven.EvalReportWriter)

	// Close releases every opened resource.
	Close() error
}

// fileRuntime is the Runtime backed by the config directory.
type fileRuntime struct {
	store    *file.ConfigStore
	prompts  *file.PromptStore
	settings domain.Settings
	indexes  *sqlite.IndexStore

	res *ai.Resources
}

// NewRuntime loads .env files, config.toml and the environment from
// configDir (resolved with file.ConfigDir).
func NewRuntime(configDir string) (Runtime, error) {
	dir, err := file.ConfigDir(configDir)
	if err != nil {
		return nil, err
	}
	if err := file.LoadDotEnv(".env", filepath.Join(dir, ".env")); err != nil {
		return nil, err
	}

	store, err := file.NewConfigStore(dir)
	if err != nil {
		return nil, err
	}
	settings, err := file.LoadSettings(store)
	if err != nil {
		return nil, fmt.Errorf("loading settings from %s: %w", store.Path(), err)
	}
	prompts, err := file.NewPromptStore(dir)
	if err != nil {
		return nil, err
	}

	return &fileRuntime{
		store:    store,
		prompts:  prompts,
		settings: settings,
		indexes:  sqlite.NewIndexStore(),
	}, nil
}

func (r *fileRuntime) Settings() domain.Settings {
	return r.settings
}

func (r *fileRuntime) ConfigStore() driven.ConfigStore {
	return r.store
}

// open returns resources with at least the requested handles, reopening when
// the current set lacks the index or the language model.
func (r *fileRuntime) open(ctx context.Context, settings domain.Settings, loadIndex, withLLM bool) (*ai.Resources, error) {
	if r.res != nil {
		if (!loadIndex || r.res.Index != nil) && (!withLLM || r.res.LLM != nil) {
			return r.res, nil
		}
		if err := r.res.Close(); err != nil {
			return nil, err
		}
		r.res = nil
	}

	res, err := ai.Open(ctx, settings, ai.Options{
		IndexStore: r.indexes,
		Prompts:    r.prompts,
		LoadIndex:  loadIndex,
		WithLLM:    withLLM,
	})
	if err != nil {
		return nil, err
	}
	r.res = res
	return res, nil
}

func (r *fileRuntime) IngestService(ctx context.Context, settings domain.Settings) (driving.IngestService, error) {
	splitter, err := postprocessors.NewIngestPipeline(settings.Chunking)
	if err != nil {
		return nil, fmt.Errorf("%w: chunk size %d with overlap %d",
			domain.ErrInvalidInput, settings.Chunking.Size, settings.Chunking.Overlap)
	}

	res, err := r.open(ctx, settings, false, false)
	if err != nil {
		return nil, err
	}

	return services.NewIngestService(
		filesystem.NewLoader(),
		normalisers.NewDefaultRegistry(),
		splitter,
		res.Embedder,
		r.indexes,
		services.IngestConfig{
			IndexPath: settings.IndexPath,
			Chunking:  settings.Chunking,
		},
	), nil
}

func (r *fileRuntime) RetrievalService(ctx context.Context) (driving.RetrievalService, error) {
	res, err := r.open(ctx, r.settings, true, false)
	if err != nil {
		return nil, err
	}
	return services.NewRetriever(res.Embedder, res.Index), nil
}

func (r *fileRuntime) AnswerService(ctx context.Context) (driving.AnswerService, error) {
	res, err := r.open(ctx, r.settings, true, true)
	if err != nil {
		return nil, err
	}

	return services.NewPipeline(
		services.NewRetriever(res.Embedder, res.Index),
		services.NewContextFormatter(),
		services.NewAnswerGenerator(res.LLM, res.Prompts, services.GeneratorConfigFromSettings(r.settings.LLM)),
	), nil
}

func (r *fileRuntime) EvaluationService(ctx context.Context) (driving.EvaluationService, error) {
	answers, err := r.AnswerService(ctx)
	if err != nil {
		return nil, err
	}
	return services.NewEvaluationService(answers), nil
}

func (r *fileRuntime) FeedbackService() driving.FeedbackService {
	return services.NewFeedbackService(feedback.NewCSVStore(r.settings.FeedbackPath))
}

func (r *fileRuntime) EvalSet() (driven.EvalSetReader, driven.EvalReportWriter) {
	return evalset.NewCSVReader(), evalset.NewJSONWriter()
}

func (r *fileRuntime) Close() error {
	if r.res == nil {
		return nil
	}
	err := r.res.Close()
	r.res = nil
	return err
}
