package services

import (
	"context"
	"fmt"
	"time"

	"github.com/manwithbarba/rag-ets/internal/core/domain"
	"github.com/manwithbarba/rag-ets/internal/core/ports/driven"
	"github.com/manwithbarba/rag-ets/internal/core/ports/driving"
	"github.com/manwithbarba/rag-ets/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestConfig configures an ingestion run.
type IngestConfig struct {
	// IndexPath is the directory the index is built in.
	IndexPath string

	// Chunking records the splitter parameters in the index metadata.
	Chunking domain.ChunkingSettings
}

// IngestService builds the vector index from a document directory.
type IngestService struct {
	loader      driven.DocumentLoader
	normalisers driven.NormaliserRegistry
	splitter    driven.PostProcessorPipeline
	embedder    driven.EmbeddingService
	store       driven.VectorIndexStore
	cfg         IngestConfig
	now         func() time.Time
}

// NewIngestService creates an ingestion service.
func NewIngestService(
	loader driven.DocumentLoader,
	normalisers driven.NormaliserRegistry,
	splitter driven.PostProcessorPipeline,
	embedder driven.EmbeddingService,
	store driven.VectorIndexStore,
	cfg IngestConfig,
) *IngestService {
	return &IngestService{
		loader:      loader,
		normalisers: normalisers,
		splitter:    splitter,
		embedder:    embedder,
		store:       store,
		cfg:         cfg,
		now:         time.Now,
	}
}

// Ingest replaces the index with the fragments of every usable document
// under root. Documents that fail are skipped and reported. When nothing
// can be indexed the previous index is left in place.
func (s *IngestService) Ingest(ctx context.Context, root string) (*domain.IngestReport, error) {
	logger.Section("Ingest")
	start := s.now()

	loaded, err := s.loader.Load(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", root, err)
	}

	report := &domain.IngestReport{
		Root:      root,
		IndexPath: s.cfg.IndexPath,
		Skipped:   append([]domain.SkippedDocument(nil), loaded.Skipped...),
	}
	for _, sk := range loaded.Skipped {
		logger.Warn("Skipping %s: %v", sk.Path, sk.Reason)
	}

	var entries []domain.IndexEntry
	for _, raw := range loaded.Documents {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		docEntries, err := s.ingestDocument(ctx, raw)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("Skipping %s: %v", raw.Path, err)
			report.Skipped = append(report.Skipped, domain.SkippedDocument{Path: raw.Path, Reason: err})
			continue
		}

		logger.Info("Indexed %s (%d fragments)", raw.Path, len(docEntries))
		report.Documents++
		entries = append(entries, docEntries...)
	}

	if len(entries) == 0 {
		return report, fmt.Errorf("%w: nothing to index under %s", domain.ErrInvalidInput, root)
	}

	meta := driven.IndexMeta{
		EmbeddingModel: s.embedder.ModelName(),
		Dimensions:     len(entries[0].Embedding),
		ChunkSize:      s.cfg.Chunking.Size,
		ChunkOverlap:   s.cfg.Chunking.Overlap,
		Entries:        len(entries),
		BuiltAt:        s.now().UTC(),
	}
	if err := s.store.Build(ctx, s.cfg.IndexPath, entries, meta); err != nil {
		return nil, fmt.Errorf("building index: %w", err)
	}

	report.Fragments = len(entries)
	report.Duration = s.now().Sub(start)
	logger.Info("Indexed %d fragments from %d documents in %s", report.Fragments, report.Documents, report.Duration.Round(time.Millisecond))
	return report, nil
}

// ingestDocument normalises, splits and embeds one document.
func (s *IngestService) ingestDocument(ctx context.Context, raw *domain.RawDocument) ([]domain.IndexEntry, error) {
	result, err := s.normalisers.Normalise(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("normalising: %w", err)
	}

	fragments, err := s.splitter.Process(ctx, &result.Document)
	if err != nil {
		return nil, fmt.Errorf("splitting: %w", err)
	}
	if len(fragments) == 0 {
		return nil, fmt.Errorf("%w: no text extracted", domain.ErrInvalidInput)
	}

	texts := make([]string, len(fragments))
	for i := range fragments {
		texts[i] = fragments[i].Text
	}
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding: %w", err)
	}
	if len(vectors) != len(fragments) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d fragments", domain.ErrEmbedding, len(vectors), len(fragments))
	}

	entries := make([]domain.IndexEntry, len(fragments))
	for i := range fragments {
		entries[i] = domain.IndexEntry{Fragment: fragments[i], Embedding: vectors[i]}
	}
	return entries, nil
}
