package normalisers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manwithbarba/rag-ets/internal/core/domain"
	"github.com/manwithbarba/rag-ets/internal/core/ports/driven"
)

type stubNormaliser struct {
	name     string
	mimes    []string
	priority int
}

func (s *stubNormaliser) SupportedMIMETypes() []string { return s.mimes }
func (s *stubNormaliser) Priority() int                { return s.priority }
func (s *stubNormaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	return &driven.NormaliseResult{Document: domain.Document{Source: raw.Path, Content: s.name}}, nil
}

func TestRegistry_PicksHighestPriority(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubNormaliser{name: "fallback", mimes: []string{"text/plain"}, priority: 5})
	r.Register(&stubNormaliser{name: "special", mimes: []string{"text/plain"}, priority: 60})

	result, err := r.Normalise(context.Background(), &domain.RawDocument{Path: "a.txt", MIMEType: "text/plain; charset=utf-8"})
	require.NoError(t, err)
	assert.Equal(t, "special", result.Document.Content)
}

func TestRegistry_UnsupportedType(t *testing.T) {
	r := NewRegistry()
	_, err := r.Normalise(context.Background(), &domain.RawDocument{Path: "a.bin", MIMEType: "application/octet-stream"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)

	_, err = r.Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestNewDefaultRegistry(t *testing.T) {
	r := NewDefaultRegistry()
	types := r.SupportedMIMETypes()

	assert.Contains(t, types, "application/pdf")
	assert.Contains(t, types, "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
	assert.Contains(t, types, "text/plain")
	assert.Contains(t, types, "text/markdown")

	result, err := r.Normalise(context.Background(), &domain.RawDocument{
		Path:     "nota.txt",
		MIMEType: "text/plain",
		Content:  []byte("hola"),
	})
	require.NoError(t, err)
	assert.Equal(t, "hola", result.Document.Content)
}
