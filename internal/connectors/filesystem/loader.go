// Package filesystem reads document directories from the local disk and
// watches them for changes.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/manwithbarba/rag-ets/internal/core/domain"
	"github.com/manwithbarba/rag-ets/internal/core/ports/driven"
	"github.com/manwithbarba/rag-ets/internal/logger"
)

// Ensure Loader implements the interface.
var _ driven.DocumentLoader = (*Loader)(nil)

// mimeByExt maps the extensions that ingestion reads to MIME types.
var mimeByExt = map[string]string{
	".pdf":      "application/pdf",
	".docx":     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".txt":      "text/plain",
	".md":       "text/markdown",
	".markdown": "text/markdown",
}

// Loader walks a directory and reads every supported file.
type Loader struct {
	maxFileSize int64
}

// Option configures a Loader.
type Option func(*Loader)

// WithMaxFileSize skips files larger than n bytes. Zero disables the limit.
func WithMaxFileSize(n int64) Option {
	return func(l *Loader) { l.maxFileSize = n }
}

// NewLoader creates a filesystem loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads every supported, non-hidden file under root in lexical order.
func (l *Loader) Load(ctx context.Context, root string) (*driven.LoadResult, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", root, err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: documents directory %s", domain.ErrNotFound, root)
		}
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, root)
	}

	var paths []string
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			// Unreadable subtrees are left out; the root itself was checked above.
			logger.Warn("skipping %s: %v", path, walkErr)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path != absRoot && isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if DetectMIMEType(path) == "" {
			logger.Debug("ignoring unsupported file %s", path)
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &driven.LoadResult{}
	for _, path := range paths {
		rel, err := RelativePath(absRoot, path)
		if err != nil {
			return nil, err
		}

		doc, err := l.read(path, rel)
		if err != nil {
			result.Skipped = append(result.Skipped, domain.SkippedDocument{Path: rel, Reason: err})
			continue
		}
		result.Documents = append(result.Documents, doc)
	}

	sort.Slice(result.Documents, func(i, j int) bool {
		return result.Documents[i].Path < result.Documents[j].Path
	})

	return result, nil
}

func (l *Loader) read(path, rel string) (*domain.RawDocument, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if l.maxFileSize > 0 && info.Size() > l.maxFileSize {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", domain.ErrInvalidInput, rel, l.maxFileSize)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return &domain.RawDocument{
		Path:     rel,
		AbsPath:  path,
		MIMEType: DetectMIMEType(path),
		Content:  content,
		Metadata: map[string]any{
			"size":     info.Size(),
			"modified": info.ModTime(),
		},
	}, nil
}

// DetectMIMEType returns the MIME type for a supported file, or "" when
// ingestion does not read files with that extension.
func DetectMIMEType(path string) string {
	return mimeByExt[strings.ToLower(filepath.Ext(path))]
}

// RelativePath returns path relative to root, slash-separated.
func RelativePath(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", fmt.Errorf("relative path of %s: %w", path, err)
	}
	return filepath.ToSlash(rel), nil
}

// isHidden reports whether a path element is a dotfile or dot directory.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
