package postprocessors

import (
	"github.com/manwithbarba/rag-ets/internal/core/domain"
	"github.com/manwithbarba/rag-ets/internal/core/ports/driven"
	"github.com/manwithbarba/rag-ets/internal/postprocessors/chunker"
)

// DefaultProcessors is the ingestion pipeline order.
var DefaultProcessors = []string{"chunker", "drop_blank"}

// RegisterDefaults registers all built-in processors with the registry.
func RegisterDefaults(r *Registry) {
	r.Register("chunker", buildChunker)
	r.Register("drop_blank", func(map[string]any) (driven.PostProcessor, error) {
		return DropBlank{}, nil
	})
}

// NewIngestPipeline builds the default pipeline for the given chunking settings.
func NewIngestPipeline(c domain.ChunkingSettings) (*Pipeline, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	r := NewRegistry()
	RegisterDefaults(r)

	return r.BuildPipeline(DefaultProcessors, map[string]map[string]any{
		"chunker": {
			"chunk_size": c.Size,
			"overlap":    c.Overlap,
		},
	})
}

// buildChunker creates a chunker processor from generic config.
// Supported config keys:
//   - chunk_size (int): Characters per fragment (default: 500)
//   - overlap (int): Overlapping characters between fragments (default: 50)
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option

	if size, ok := getIntFromConfig(cfg, "chunk_size"); ok {
		opts = append(opts, chunker.WithChunkSize(size))
	}
	if overlap, ok := getIntFromConfig(cfg, "overlap"); ok {
		opts = append(opts, chunker.WithOverlap(overlap))
	}

	return chunker.New(opts...)
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) (int, bool) {
	val, ok := cfg[key]
	if !ok {
		return 0, false
	}

	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
