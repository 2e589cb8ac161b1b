// Package feedback stores answer ratings in an append-only CSV log.
package feedback

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/manwithbarba/rag-ets/internal/core/domain"
	"github.com/manwithbarba/rag-ets/internal/core/ports/driven"
)

// Ensure CSVStore implements the interface.
var _ driven.FeedbackStore = (*CSVStore)(nil)

// Header is the first row of a new log.
var Header = []string{"timestamp", "question", "answer", "context", "rating"}

// CSVStore appends feedback rows to a CSV file. The header is written only
// when the file is created.
type CSVStore struct {
	mu   sync.Mutex
	path string
}

// NewCSVStore creates a store for the log at path. Nothing is written until
// the first Append.
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

// Path returns the log file path.
func (s *CSVStore) Path() string {
	return s.path
}

// Append writes one entry.
func (s *CSVStore) Append(ctx context.Context, entry domain.FeedbackEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating feedback directory: %w", err)
		}
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening feedback log: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat feedback log: %w", err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(Header); err != nil {
			return fmt.Errorf("writing feedback header: %w", err)
		}
	}
	if err := w.Write([]string{
		entry.Timestamp.Format(domain.TimestampLayout),
		entry.Question,
		entry.Answer,
		entry.Context,
		entry.Rating,
	}); err != nil {
		return fmt.Errorf("writing feedback: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("writing feedback: %w", err)
	}
	return f.Close()
}

// List returns the latest limit entries, oldest first. A limit of 0 returns
// all entries; a missing log is empty.
func (s *CSVStore) List(ctx context.Context, limit int) ([]domain.FeedbackEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening feedback log: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(Header)

	var entries []domain.FeedbackEntry
	for line := 0; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: feedback log: %w", domain.ErrInvalidInput, err)
		}
		if line == 0 && rec[0] == Header[0] {
			continue
		}

		ts, err := time.ParseInLocation(domain.TimestampLayout, rec[0], time.Local)
		if err != nil {
			return nil, fmt.Errorf("%w: feedback log line %d: %w", domain.ErrInvalidInput, line+1, err)
		}
		entries = append(entries, domain.FeedbackEntry{
			Timestamp: ts,
			Question:  rec[1],
			Answer:    rec[2],
			Context:   rec[3],
			Rating:    rec[4],
		})
	}

	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries, nil
}
