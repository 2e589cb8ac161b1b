// Package sqlite persists vector indexes as single-file SQLite databases.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, enabling easy cross-compilation.
//
// # Schema
//
// The schema is managed through versioned migrations stored in the
// migrations/ directory. An index file holds the fragments table, one row
// per fragment with its embedding as a little-endian float32 blob, and the
// index_meta key/value table describing how the index was built.
//
// # Atomic Replacement
//
// Build writes a complete database to a temporary file next to index.db and
// renames it into place, so a reader opens either the previous index or the
// new one. The rollback journal is used instead of WAL so that the whole
// index lives in one file.
//
// # Thread Safety
//
// Load reads every entry into an in-memory index and closes the database;
// the returned index is read-only and safe for concurrent use.
package sqlite
