package memory

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/manwithbarba/rag-ets/internal/core/domain"
	"github.com/manwithbarba/rag-ets/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interfaces.
var (
	_ driven.VectorIndex  = (*VectorIndex)(nil)
	_ driven.MetaProvider = (*VectorIndex)(nil)
)

// VectorIndex is an exact cosine-similarity index held in memory.
// It is immutable after construction and safe for concurrent readers.
type VectorIndex struct {
	entries []domain.IndexEntry
	norms   []float64
	dims    int
	meta    driven.IndexMeta
}

// NewVectorIndex builds an index over entries, which must share one
// non-zero dimension. Entries keep their order for tie breaking.
func NewVectorIndex(entries []domain.IndexEntry, meta driven.IndexMeta) (*VectorIndex, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no index entries", domain.ErrInvalidInput)
	}

	dims := len(entries[0].Embedding)
	if dims == 0 {
		return nil, fmt.Errorf("%w: empty embedding for fragment %s", domain.ErrInvalidInput, entries[0].Fragment.ID)
	}

	norms := make([]float64, len(entries))
	for i, e := range entries {
		if len(e.Embedding) != dims {
			return nil, fmt.Errorf("%w: fragment %s has %d dimensions, expected %d",
				domain.ErrInvalidInput, e.Fragment.ID, len(e.Embedding), dims)
		}
		norms[i] = norm(e.Embedding)
	}

	meta.Dimensions = dims
	meta.Entries = len(entries)

	return &VectorIndex{
		entries: entries,
		norms:   norms,
		dims:    dims,
		meta:    meta,
	}, nil
}

// Search returns the k most similar entries to query.
func (v *VectorIndex) Search(ctx context.Context, query []float32, k int) (domain.RetrievalResult, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: k must be at least 1, got %d", domain.ErrInvalidQuery, k)
	}
	if len(query) != v.dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d", domain.ErrEmbedding, len(query), v.dims)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	qnorm := norm(query)
	scores := make([]float64, len(v.entries))
	order := make([]int, len(v.entries))
	for i := range v.entries {
		scores[i] = cosine(query, qnorm, v.entries[i].Embedding, v.norms[i])
		order[i] = i
	}

	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if k > len(order) {
		k = len(order)
	}

	result := make(domain.RetrievalResult, k)
	for rank, idx := range order[:k] {
		result[rank] = domain.RetrievedFragment{
			Fragment: v.entries[idx].Fragment,
			Score:    scores[idx],
			Rank:     rank + 1,
		}
	}
	return result, nil
}

// Len returns the number of entries.
func (v *VectorIndex) Len() int {
	return len(v.entries)
}

// Dimensions returns the embedding size.
func (v *VectorIndex) Dimensions() int {
	return v.dims
}

// Meta returns the build metadata.
func (v *VectorIndex) Meta() driven.IndexMeta {
	return v.meta
}

// Close is a no-op; the index holds no external resources.
func (v *VectorIndex) Close() error {
	return nil
}

func norm(vec []float32) float64 {
	var sum float64
	for _, x := range vec {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// cosine returns 0 when either vector has zero length.
func cosine(a []float32, anorm float64, b []float32, bnorm float64) float64 {
	if anorm == 0 || bnorm == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (anorm * bnorm)
}
