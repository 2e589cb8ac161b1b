package pdf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/manwithbarba/rag-ets/internal/core/domain"
)

func TestNormaliser_Metadata(t *testing.T) {
	n := New()
	assert.Equal(t, []string{"application/pdf"}, n.SupportedMIMETypes())
	assert.Equal(t, 50, n.Priority())
}

func TestNormaliser_Normalise_Errors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		content []byte
	}{
		{"not a pdf", []byte("this is plain text")},
		{"truncated header", []byte("%PDF-1.4\n")},
		{"empty", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := &domain.RawDocument{Path: "roto.pdf", MIMEType: MIMEType, Content: tt.content}
			_, err := New().Normalise(ctx, raw)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Contains(t, err.Error(), "roto.pdf")
		})
	}

	t.Run("nil document", func(t *testing.T) {
		_, err := New().Normalise(ctx, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}
