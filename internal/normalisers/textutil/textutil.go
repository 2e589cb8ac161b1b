// Package textutil holds helpers shared by the normalisers.
package textutil

import (
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/manwithbarba/rag-ets/internal/core/domain"
)

// NewDocument builds a normalised document for raw. The ID is derived from the
// relative path so it is stable across ingestion runs.
func NewDocument(raw *domain.RawDocument, format domain.DocumentFormat, title, content string) domain.Document {
	if title == "" {
		title = TitleFromPath(raw.Path)
	}

	metadata := make(map[string]any, len(raw.Metadata)+2)
	for k, v := range raw.Metadata {
		metadata[k] = v
	}
	metadata["mime_type"] = raw.MIMEType
	metadata["format"] = format.String()

	return domain.Document{
		ID:       DocumentID(raw.Path),
		Source:   raw.Path,
		Title:    title,
		Content:  content,
		Format:   format,
		Metadata: metadata,
	}
}

// DocumentID returns the stable ID for the document at a relative path.
func DocumentID(relPath string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("file:///"+relPath)).String()
}

// TitleFromPath turns "informes/ets_2023-final.pdf" into "ets 2023 final".
func TitleFromPath(p string) string {
	name := path.Base(p)
	name = strings.TrimSuffix(name, path.Ext(name))
	return strings.NewReplacer("_", " ", "-", " ").Replace(name)
}

// Clean normalises line endings and strips characters that carry no text.
func Clean(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.ReplaceAll(s, "\x00", "")
	s = strings.TrimPrefix(s, "\ufeff")
	return strings.TrimSpace(s)
}
