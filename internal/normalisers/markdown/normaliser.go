package markdown

import (
	"context"
	"regexp"
	"strings"

	"github.com/manwithbarba/rag-ets/internal/core/domain"
	"github.com/manwithbarba/rag-ets/internal/core/ports/driven"
	"github.com/manwithbarba/rag-ets/internal/normalisers/textutil"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles Markdown documents.
type Normaliser struct{}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Format-specific, higher than plaintext
}

// Normalise converts a markdown document to plain text, keeping paragraph
// breaks so the chunker can split on them.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	source := textutil.Clean(string(raw.Content))
	doc := textutil.NewDocument(raw, domain.FormatMarkdown, firstHeading(source), stripMarkdown(source))

	return &driven.NormaliseResult{
		Document: doc,
	}, nil
}

var (
	fencePattern      = regexp.MustCompile("(?m)^[ \\t]*(```|~~~).*$")
	inlineCodePattern = regexp.MustCompile("`([^`]+)`")
	imagePattern      = regexp.MustCompile(`!\[([^\]]*)\]\([^)]+\)`)
	linkPattern       = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headingPattern    = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	emphasisPattern   = regexp.MustCompile(`(\*\*|__|\*|_)([^*_\n]+)(\*\*|__|\*|_)`)
	quotePattern      = regexp.MustCompile(`(?m)^[ \t]*>[ \t]?`)
	rulePattern       = regexp.MustCompile(`(?m)^[ \t]*([-*_][ \t]*){3,}$`)
	bulletPattern     = regexp.MustCompile(`(?m)^[ \t]*[-*+][ \t]+`)
	numberedPattern   = regexp.MustCompile(`(?m)^[ \t]*\d+[.)][ \t]+`)
	blankRunPattern   = regexp.MustCompile(`\n{3,}`)
)

// firstHeading returns the text of the first level-one heading.
func firstHeading(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(line[2:])
		}
	}
	return ""
}

// stripMarkdown removes markup and keeps the readable text. Code block
// contents are kept; only their fences are dropped.
func stripMarkdown(content string) string {
	content = fencePattern.ReplaceAllString(content, "")
	content = inlineCodePattern.ReplaceAllString(content, "$1")
	content = imagePattern.ReplaceAllString(content, "$1")
	content = linkPattern.ReplaceAllString(content, "$1")
	content = rulePattern.ReplaceAllString(content, "")
	content = headingPattern.ReplaceAllString(content, "")
	content = emphasisPattern.ReplaceAllString(content, "$2")
	content = quotePattern.ReplaceAllString(content, "")
	content = bulletPattern.ReplaceAllString(content, "")
	content = numberedPattern.ReplaceAllString(content, "")
	content = blankRunPattern.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}
