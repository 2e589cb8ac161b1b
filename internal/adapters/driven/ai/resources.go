package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/manwithbarba/rag-ets/internal/core/domain"
	"github.com/manwithbarba/rag-ets/internal/core/ports/driven"
	"github.com/manwithbarba/rag-ets/internal/logger"
)

// Options selects what Open prepares.
type Options struct {
	// IndexStore loads the persisted index. Required when LoadIndex is set.
	IndexStore driven.VectorIndexStore

	// Prompts supplies the answer template. Nil uses the built-in template.
	Prompts driven.PromptStore

	// LoadIndex loads the index from settings.IndexPath.
	LoadIndex bool

	// WithLLM creates and validates the language model.
	WithLLM bool

	// NewEmbedder and NewLLM replace the default factories.
	NewEmbedder func(context.Context, domain.EmbeddingSettings) (driven.EmbeddingService, error)
	NewLLM      func(context.Context, domain.LLMSettings) (driven.LLMService, error)
}

// Resources holds the long-lived handles a command works from. It is built
// once by Open and released by Close.
type Resources struct {
	Settings domain.Settings
	Embedder driven.EmbeddingService
	Index    driven.VectorIndex
	LLM      driven.LLMService
	Prompts  driven.PromptStore
}

// Open creates the embedder, loads the index, creates the language model and
// checks the answer template, in that order. A missing or unreachable model
// fails with domain.ErrModelUnavailable before any question is accepted. On
// error everything already opened is released.
func Open(ctx context.Context, settings domain.Settings, opts Options) (_ *Resources, err error) {
	if opts.NewEmbedder == nil {
		opts.NewEmbedder = CreateAndValidateEmbeddingService
	}
	if opts.NewLLM == nil {
		opts.NewLLM = CreateAndValidateLLMService
	}

	r := &Resources{Settings: settings, Prompts: opts.Prompts}
	defer func() {
		if err != nil {
			if closeErr := r.Close(); closeErr != nil {
				logger.Warn("releasing resources: %v", closeErr)
			}
		}
	}()

	logger.Debug("Opening embedder %s (%s)", settings.Embedding.Model, settings.Embedding.Provider)
	r.Embedder, err = opts.NewEmbedder(ctx, settings.Embedding)
	if err != nil {
		return nil, err
	}

	if opts.LoadIndex {
		if opts.IndexStore == nil {
			return nil, fmt.Errorf("%w: no index store", domain.ErrInvalidInput)
		}
		r.Index, err = opts.IndexStore.Load(ctx, settings.IndexPath)
		if err != nil {
			return nil, err
		}
		if err = checkIndex(r.Index, r.Embedder); err != nil {
			return nil, err
		}
		logger.Debug("Loaded index %s with %d fragments", settings.IndexPath, r.Index.Len())
	}

	if opts.WithLLM {
		logger.Debug("Opening language model %s (%s)", settings.LLM.Model, settings.LLM.Provider)
		r.LLM, err = opts.NewLLM(ctx, settings.LLM)
		if err != nil {
			return nil, err
		}

		if r.Prompts != nil {
			var template string
			template, err = r.Prompts.Load(driven.PromptAnswer)
			if err != nil {
				return nil, err
			}
			if err = domain.ValidatePromptTemplate(template); err != nil {
				return nil, err
			}
		}
	}

	return r, nil
}

// checkIndex rejects an index whose vectors the embedder cannot match.
func checkIndex(index driven.VectorIndex, embedder driven.EmbeddingService) error {
	if dims := embedder.Dimensions(); dims > 0 && dims != index.Dimensions() {
		return fmt.Errorf("%w: index has %d dimensions but %s produces %d; run ingest again",
			domain.ErrInvalidInput, index.Dimensions(), embedder.ModelName(), dims)
	}
	if mp, ok := index.(driven.MetaProvider); ok {
		if built := mp.Meta().EmbeddingModel; built != "" && built != embedder.ModelName() {
			logger.Warn("index was built with %s, querying with %s", built, embedder.ModelName())
		}
	}
	return nil
}

// Close releases the handles in reverse order of Open. It is safe to call on
// partially opened resources.
func (r *Resources) Close() error {
	var errs []error
	if r.LLM != nil {
		errs = append(errs, r.LLM.Close())
		r.LLM = nil
	}
	if r.Index != nil {
		errs = append(errs, r.Index.Close())
		r.Index = nil
	}
	if r.Embedder != nil {
		errs = append(errs, r.Embedder.Close())
		r.Embedder = nil
	}
	return errors.Join(errs...)
}
