// Package pdf extracts text from PDF documents.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"

	"github.com/manwithbarba/rag-ets/internal/core/domain"
	"github.com/manwithbarba/rag-ets/internal/core/ports/driven"
	"github.com/manwithbarba/rag-ets/internal/normalisers/textutil"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// MIMEType is the PDF content type.
const MIMEType = "application/pdf"

// Normaliser handles PDF documents.
type Normaliser struct{}

// New creates a new PDF normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{MIMEType}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Format-specific normaliser
}

// Normalise extracts the plain text of every page. Scanned PDFs without a
// text layer fail with domain.ErrInvalidInput.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	text, title, err := extract(raw.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, raw.Path, err)
	}

	content := textutil.Clean(text)
	if content == "" {
		return nil, fmt.Errorf("%w: %s has no extractable text", domain.ErrInvalidInput, raw.Path)
	}

	doc := textutil.NewDocument(raw, domain.FormatPDF, title, content)

	return &driven.NormaliseResult{
		Document: doc,
	}, nil
}

// extract reads the text layer and the Info title. The parser panics on some
// malformed files, so panics are turned into errors.
func extract(content []byte) (text, title string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", "", fmt.Errorf("open pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", "", fmt.Errorf("read text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", "", fmt.Errorf("read text: %w", err)
	}

	title = reader.Trailer().Key("Info").Key("Title").Text()

	return buf.String(), title, nil
}
