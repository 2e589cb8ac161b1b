package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/manwithbarba/rag-ets/internal/adapters/driven/storage/memory"
	"github.com/manwithbarba/rag-ets/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/manwithbarba/rag-ets/internal/core/domain"
	"github.com/manwithbarba/rag-ets/internal/core/ports/driven"
	"github.com/manwithbarba/rag-ets/internal/logger"
)

// IndexFileName is the name of the index database inside an index directory.
const IndexFileName = "index.db"

// Metadata keys stored in index_meta.
const (
	metaEmbeddingModel = "embedding_model"
	metaDimensions     = "dimensions"
	metaChunkSize      = "chunk_size"
	metaChunkOverlap   = "chunk_overlap"
	metaEntries        = "entries"
	metaBuiltAt        = "built_at"
)

// Ensure IndexStore implements the interface.
var _ driven.VectorIndexStore = (*IndexStore)(nil)

// IndexStore builds and loads vector indexes stored as SQLite files.
type IndexStore struct {
	now func() time.Time
}

// NewIndexStore creates an index store.
func NewIndexStore() *IndexStore {
	return &IndexStore{now: time.Now}
}

// IndexPath returns the index database path inside dir.
func IndexPath(dir string) string {
	return filepath.Join(dir, IndexFileName)
}

// Build writes entries to a fresh database and atomically replaces
// dir/index.db with it. On failure the previous index is left untouched.
func (s *IndexStore) Build(ctx context.Context, dir string, entries []domain.IndexEntry, meta driven.IndexMeta) error {
	dims, err := validateEntries(entries)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".index-*.db")
	if err != nil {
		return fmt.Errorf("creating temporary index: %w", err)
	}
	tmpPath := tmp.Name()
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("creating temporary index: %w", err)
	}

	meta.Dimensions = dims
	meta.Entries = len(entries)
	if meta.BuiltAt.IsZero() {
		meta.BuiltAt = s.now()
	}

	if err := writeIndex(ctx, tmpPath, entries, meta); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, IndexPath(dir)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing index: %w", err)
	}

	logger.Debug("index written to %s (%d entries, %d dims)", IndexPath(dir), len(entries), dims)
	return nil
}

// Load reads dir/index.db into an in-memory index.
func (s *IndexStore) Load(ctx context.Context, dir string) (driven.VectorIndex, error) {
	path := IndexPath(dir)

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrIndexNotFound, path)
		}
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrIndexNotFound, path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", domain.ErrIndexNotFound, path)
	}

	db, err := openDB(path, true)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexNotFound, err)
	}
	defer db.Close()

	meta, err := readMeta(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrIndexNotFound, path, err)
	}

	entries, err := readEntries(ctx, db, meta.Dimensions)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrIndexNotFound, path, err)
	}
	if len(entries) != meta.Entries {
		return nil, fmt.Errorf("%w: %s: expected %d entries, found %d",
			domain.ErrIndexNotFound, path, meta.Entries, len(entries))
	}

	idx, err := memory.NewVectorIndex(entries, meta)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrIndexNotFound, path, err)
	}
	return idx, nil
}

func validateEntries(entries []domain.IndexEntry) (int, error) {
	if len(entries) == 0 {
		return 0, fmt.Errorf("%w: no index entries", domain.ErrInvalidInput)
	}
	dims := len(entries[0].Embedding)
	if dims == 0 {
		return 0, fmt.Errorf("%w: empty embedding", domain.ErrInvalidInput)
	}
	for _, e := range entries {
		if len(e.Embedding) != dims {
			return 0, fmt.Errorf("%w: fragment %s has %d dimensions, expected %d",
				domain.ErrInvalidInput, e.Fragment.ID, len(e.Embedding), dims)
		}
	}
	return dims, nil
}

func openDB(path string, readOnly bool) (*sql.DB, error) {
	dsn := path + "?_pragma=journal_mode(DELETE)&_pragma=busy_timeout(5000)"
	if readOnly {
		dsn = path + "?_pragma=query_only(1)&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

func writeIndex(ctx context.Context, path string, entries []domain.IndexEntry, meta driven.IndexMeta) error {
	db, err := openDB(path, false)
	if err != nil {
		return err
	}

	if err := migrate(ctx, db, migrations.FS); err != nil {
		db.Close()
		return fmt.Errorf("running migrations: %w", err)
	}

	if err := insertAll(ctx, db, entries, meta); err != nil {
		db.Close()
		return err
	}

	if err := db.Close(); err != nil {
		return fmt.Errorf("closing index: %w", err)
	}
	return nil
}

func insertAll(ctx context.Context, db *sql.DB, entries []domain.IndexEntry, meta driven.IndexMeta) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	metaStmt, err := tx.PrepareContext(ctx, `INSERT INTO index_meta (key, value) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing metadata insert: %w", err)
	}
	defer metaStmt.Close()

	for key, value := range encodeMeta(meta) {
		if _, err := metaStmt.ExecContext(ctx, key, value); err != nil {
			return fmt.Errorf("writing metadata %s: %w", key, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO fragments (seq, id, source, position, start_offset, end_offset, text, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing fragment insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range entries {
		f := e.Fragment
		if _, err := stmt.ExecContext(ctx, i, f.ID, f.Source, f.Position, f.Start, f.End, f.Text,
			float32SliceToBytes(e.Embedding)); err != nil {
			return fmt.Errorf("writing fragment %s: %w", f.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing index: %w", err)
	}
	return nil
}

func encodeMeta(meta driven.IndexMeta) map[string]string {
	return map[string]string{
		metaEmbeddingModel: meta.EmbeddingModel,
		metaDimensions:     strconv.Itoa(meta.Dimensions),
		metaChunkSize:      strconv.Itoa(meta.ChunkSize),
		metaChunkOverlap:   strconv.Itoa(meta.ChunkOverlap),
		metaEntries:        strconv.Itoa(meta.Entries),
		metaBuiltAt:        meta.BuiltAt.UTC().Format(time.RFC3339Nano),
	}
}

func readMeta(ctx context.Context, db *sql.DB) (driven.IndexMeta, error) {
	rows, err := db.QueryContext(ctx, `SELECT key, value FROM index_meta`)
	if err != nil {
		return driven.IndexMeta{}, fmt.Errorf("reading metadata: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return driven.IndexMeta{}, fmt.Errorf("reading metadata: %w", err)
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return driven.IndexMeta{}, fmt.Errorf("reading metadata: %w", err)
	}

	var meta driven.IndexMeta
	meta.EmbeddingModel = values[metaEmbeddingModel]

	ints := map[string]*int{
		metaDimensions:   &meta.Dimensions,
		metaChunkSize:    &meta.ChunkSize,
		metaChunkOverlap: &meta.ChunkOverlap,
		metaEntries:      &meta.Entries,
	}
	for key, dst := range ints {
		raw, ok := values[key]
		if !ok {
			return driven.IndexMeta{}, fmt.Errorf("missing metadata %q", key)
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return driven.IndexMeta{}, fmt.Errorf("metadata %q: %w", key, err)
		}
		*dst = n
	}
	if meta.Dimensions <= 0 {
		return driven.IndexMeta{}, fmt.Errorf("invalid dimensions %d", meta.Dimensions)
	}

	if raw, ok := values[metaBuiltAt]; ok {
		if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			meta.BuiltAt = t
		}
	}

	return meta, nil
}

func readEntries(ctx context.Context, db *sql.DB, dims int) ([]domain.IndexEntry, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, source, position, start_offset, end_offset, text, embedding
		FROM fragments ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("reading fragments: %w", err)
	}
	defer rows.Close()

	var entries []domain.IndexEntry
	for rows.Next() {
		var (
			f    domain.Fragment
			blob []byte
		)
		if err := rows.Scan(&f.ID, &f.Source, &f.Position, &f.Start, &f.End, &f.Text, &blob); err != nil {
			return nil, fmt.Errorf("reading fragment: %w", err)
		}
		if len(blob) != dims*4 {
			return nil, fmt.Errorf("fragment %s: embedding has %d bytes, expected %d", f.ID, len(blob), dims*4)
		}
		entries = append(entries, domain.IndexEntry{Fragment: f, Embedding: bytesToFloat32Slice(blob)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading fragments: %w", err)
	}
	return entries, nil
}

// migrate runs all pending migrations.
func migrate(ctx context.Context, db *sql.DB, fsys fs.FS) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_index.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := db.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// float32SliceToBytes converts a []float32 to a little-endian byte slice.
func float32SliceToBytes(floats []float32) []byte {
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
