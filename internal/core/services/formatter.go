package services

import (
	"fmt"
	"strings"

	"github.com/manwithbarba/rag-ets/internal/core/domain"
)

// ContextFormatter renders retrieved fragments as the numbered context block
// the answer prompt cites from.
type ContextFormatter struct{}

// NewContextFormatter creates a context formatter.
func NewContextFormatter() *ContextFormatter {
	return &ContextFormatter{}
}

// Format numbers fragments from 1 in result order. Fragment i is written as
//
//	### Fuente [i]
//	Documento: <source>
//	Contenido: <text>
//
// followed by a blank line. The citation table maps each number to its source.
func (f *ContextFormatter) Format(result domain.RetrievalResult) domain.FormattedContext {
	var b strings.Builder
	citations := make(domain.CitationTable, 0, len(result))

	for i, rf := range result {
		n := i + 1
		fmt.Fprintf(&b, "### Fuente [%d]\nDocumento: %s\nContenido: %s\n\n", n, rf.Fragment.Source, rf.Fragment.Text)
		citations = append(citations, domain.Citation{Number: n, Source: rf.Fragment.Source})
	}

	return domain.FormattedContext{
		Text:      b.String(),
		Citations: citations,
	}
}
