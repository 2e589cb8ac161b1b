// Package chunker provides a recursive, boundary-aware text chunking processor.
package chunker

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/manwithbarba/rag-ets/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per fragment.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// DefaultSeparators are tried in order: paragraphs, lines, words, characters.
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

// fragmentNamespace scopes fragment IDs so they never collide with other
// name-based UUIDs.
var fragmentNamespace = uuid.MustParse("9b1d3f5e-6c1a-4d8e-a3b4-1f2e0c7d9a55")

// Processor splits document content into overlapping fragments.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize  int
	overlap    int
	separators []string
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the maximum fragment size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between fragments in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithSeparators replaces the separator hierarchy. The empty separator is
// always appended if missing so oversized units can be hard cut.
func WithSeparators(separators ...string) Option {
	return func(p *Processor) {
		if len(separators) == 0 {
			return
		}
		seps := append([]string(nil), separators...)
		if seps[len(seps)-1] != "" {
			seps = append(seps, "")
		}
		p.separators = seps
	}
}

// New creates a new chunker processor with the given options.
// It fails with domain.ErrInvalidInput unless overlap < chunk size.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		chunkSize:  DefaultChunkSize,
		overlap:    DefaultChunkOverlap,
		separators: DefaultSeparators,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.overlap >= p.chunkSize {
		return nil, fmt.Errorf("%w: chunk overlap %d must be smaller than chunk size %d",
			domain.ErrInvalidInput, p.overlap, p.chunkSize)
	}

	return p, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured maximum fragment size.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the configured overlap.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Process splits the document content into fragments.
// Input fragments are ignored; this processor creates new fragments from document content.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, _ []domain.Fragment) ([]domain.Fragment, error) {
	if doc == nil {
		return nil, domain.ErrInvalidInput
	}
	if doc.Content == "" {
		// Empty content produces no fragments
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	spans := p.merge(doc.Content, p.split(doc.Content, 0, len(doc.Content), p.separators))

	fragments := make([]domain.Fragment, 0, len(spans))
	for i, s := range spans {
		fragments = append(fragments, domain.Fragment{
			ID:       FragmentID(doc.Source, i, s.start, s.end),
			Source:   doc.Source,
			Text:     doc.Content[s.start:s.end],
			Position: i,
			Start:    s.start,
			End:      s.end,
		})
	}

	return fragments, nil
}

// FragmentID derives the stable identifier of a fragment.
func FragmentID(source string, position, start, end int) string {
	name := fmt.Sprintf("%s#%d:%d-%d", source, position, start, end)
	return uuid.NewSHA1(fragmentNamespace, []byte(name)).String()
}

// SplitDocuments splits every document with the given parameters. It is the
// standalone form of the processor for callers outside a pipeline.
func SplitDocuments(ctx context.Context, docs []*domain.Document, chunkSize, overlap int) ([]domain.Fragment, error) {
	if chunkSize <= 0 || overlap < 0 {
		return nil, fmt.Errorf("%w: chunk size %d, overlap %d", domain.ErrInvalidInput, chunkSize, overlap)
	}
	p, err := New(WithChunkSize(chunkSize), WithOverlap(overlap))
	if err != nil {
		return nil, err
	}

	var all []domain.Fragment
	for _, doc := range docs {
		fragments, err := p.Process(ctx, doc, nil)
		if err != nil {
			return nil, fmt.Errorf("split %s: %w", doc.Source, err)
		}
		all = append(all, fragments...)
	}
	return all, nil
}
