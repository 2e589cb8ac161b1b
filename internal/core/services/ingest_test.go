package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manwithbarba/rag-ets/internal/adapters/driven/storage/sqlite"
	"github.com/manwithbarba/rag-ets/internal/connectors/filesystem"
	"github.com/manwithbarba/rag-ets/internal/core/domain"
	"github.com/manwithbarba/rag-ets/internal/core/ports/driven"
	"github.com/manwithbarba/rag-ets/internal/normalisers"
	"github.com/manwithbarba/rag-ets/internal/postprocessors"
)

func rawDocs(texts map[string]string) *driven.LoadResult {
	result := &driven.LoadResult{}
	for _, path := range []string{"a.txt", "b.txt", "c.txt", "d.txt"} {
		if text, ok := texts[path]; ok {
			result.Documents = append(result.Documents, &domain.RawDocument{
				Path:     path,
				MIMEType: "text/plain",
				Content:  []byte(text),
			})
		}
	}
	return result
}

func newSplitter(t *testing.T) driven.PostProcessorPipeline {
	t.Helper()
	p, err := postprocessors.NewIngestPipeline(domain.ChunkingSettings{Size: 500, Overlap: 50})
	require.NoError(t, err)
	return p
}

func TestIngestService_Ingest(t *testing.T) {
	store := &mockIndexStore{}
	loader := &mockLoader{result: rawDocs(map[string]string{
		"a.txt": "Pacientes de Argentina.",
		"b.txt": "Pacientes de Chile.",
	})}
	embedder := &keywordEmbedder{keywords: []string{"argentina", "chile"}}
	cfg := IngestConfig{IndexPath: "vector_store", Chunking: domain.ChunkingSettings{Size: 500, Overlap: 50}}

	svc := NewIngestService(loader, &mockNormalisers{}, newSplitter(t), embedder, store, cfg)

	report, err := svc.Ingest(context.Background(), "documentos")
	require.NoError(t, err)

	assert.Equal(t, 2, report.Documents)
	assert.Equal(t, 2, report.Fragments)
	assert.Empty(t, report.Skipped)
	assert.Equal(t, "vector_store", report.IndexPath)

	require.Equal(t, 1, store.builds)
	require.Len(t, store.built, 2)
	assert.Equal(t, "a.txt", store.built[0].Fragment.Source)
	assert.Equal(t, "keyword-stub", store.meta.EmbeddingModel)
	assert.Equal(t, 3, store.meta.Dimensions)
	assert.Equal(t, 500, store.meta.ChunkSize)
	assert.Equal(t, 50, store.meta.ChunkOverlap)
	assert.Equal(t, 2, store.meta.Entries)
}

func TestIngestService_SkipsFailingDocuments(t *testing.T) {
	store := &mockIndexStore{}
	loaded := rawDocs(map[string]string{
		"a.txt": "Pacientes de Argentina.",
		"b.txt": "roto",
		"c.txt": "   \n\t ",
	})
	loaded.Skipped = []domain.SkippedDocument{{Path: "huge.pdf", Reason: errors.New("too large")}}

	svc := NewIngestService(
		&mockLoader{result: loaded},
		&mockNormalisers{fail: map[string]error{"b.txt": domain.ErrUnsupportedType}},
		newSplitter(t),
		&keywordEmbedder{keywords: []string{"argentina"}},
		store,
		IngestConfig{IndexPath: "idx"},
	)

	report, err := svc.Ingest(context.Background(), "docs")
	require.NoError(t, err)

	assert.Equal(t, 1, report.Documents)
	assert.Equal(t, 1, report.Fragments)
	require.Len(t, report.Skipped, 3)
	paths := []string{report.Skipped[0].Path, report.Skipped[1].Path, report.Skipped[2].Path}
	assert.Equal(t, []string{"huge.pdf", "b.txt", "c.txt"}, paths)
	assert.ErrorIs(t, report.Skipped[1].Reason, domain.ErrUnsupportedType)
}

func TestIngestService_NothingToIndex(t *testing.T) {
	store := &mockIndexStore{}
	svc := NewIngestService(
		&mockLoader{result: &driven.LoadResult{}},
		&mockNormalisers{},
		newSplitter(t),
		&keywordEmbedder{},
		store,
		IngestConfig{IndexPath: "idx"},
	)

	_, err := svc.Ingest(context.Background(), "empty")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, store.builds)
}

func TestIngestService_EmbeddingFailureSkipsDocument(t *testing.T) {
	store := &mockIndexStore{}
	embedder := &keywordEmbedder{err: errors.New("embedding failed")}
	svc := NewIngestService(
		&mockLoader{result: rawDocs(map[string]string{"a.txt": "texto"})},
		&mockNormalisers{},
		newSplitter(t),
		embedder,
		store,
		IngestConfig{},
	)

	report, err := svc.Ingest(context.Background(), "docs")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	require.NotNil(t, report)
	assert.Len(t, report.Skipped, 1)
	assert.Zero(t, store.builds)
}

func TestIngestService_LoaderAndBuildErrors(t *testing.T) {
	t.Run("unusable root", func(t *testing.T) {
		svc := NewIngestService(&mockLoader{err: domain.ErrNotFound}, &mockNormalisers{}, newSplitter(t),
			&keywordEmbedder{}, &mockIndexStore{}, IngestConfig{})
		_, err := svc.Ingest(context.Background(), "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("build failure", func(t *testing.T) {
		svc := NewIngestService(&mockLoader{result: rawDocs(map[string]string{"a.txt": "texto"})},
			&mockNormalisers{}, newSplitter(t), &keywordEmbedder{}, &mockIndexStore{buildErr: errBackend}, IngestConfig{})
		_, err := svc.Ingest(context.Background(), "docs")
		assert.ErrorIs(t, err, errBackend)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		svc := NewIngestService(&mockLoader{result: rawDocs(map[string]string{"a.txt": "texto"})},
			&mockNormalisers{}, newSplitter(t), &keywordEmbedder{}, &mockIndexStore{}, IngestConfig{})
		_, err := svc.Ingest(ctx, "docs")
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestIngestService_EndToEnd(t *testing.T) {
	docs := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(docs, "informes"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(docs, "informes", "argentina.txt"),
		[]byte("El estudio incluyó pacientes de Argentina."), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(docs, "chile.md"),
		[]byte("# Chile\n\nEl estudio incluyó pacientes de Chile."), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(docs, "notas.csv"), []byte("ignored"), 0o600))

	indexDir := filepath.Join(t.TempDir(), "vector_store")
	embedder := &keywordEmbedder{keywords: []string{"argentina", "chile"}}
	store := sqlite.NewIndexStore()
	chunking := domain.ChunkingSettings{Size: 500, Overlap: 50}

	svc := NewIngestService(filesystem.NewLoader(), normalisers.NewDefaultRegistry(), newSplitter(t),
		embedder, store, IngestConfig{IndexPath: indexDir, Chunking: chunking})
	svc.now = func() time.Time { return time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC) }

	report, err := svc.Ingest(context.Background(), docs)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Documents)

	idx, err := store.Load(context.Background(), indexDir)
	require.NoError(t, err)
	defer idx.Close()
	assert.Equal(t, report.Fragments, idx.Len())

	result, err := NewRetriever(embedder, idx).Retrieve(context.Background(), "Argentina", 1)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "informes/argentina.txt", result[0].Fragment.Source)
}
