// Package sqlstore provides SQLite-backed persistence for translation
// caches, approval records and field approvals.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"
)

// Schema is the SQLite schema. The cache tables carry no
// unique constraint on (source_text, target_language): concurrent writers
// may both insert and the newest row is read back.
const Schema = `
CREATE TABLE IF NOT EXISTS translation_cache (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    source_text      TEXT NOT NULL,
    target_language  TEXT NOT NULL,
    translated_text  TEXT NOT NULL,
    created_at       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS numeral_cache (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    source_text      TEXT NOT NULL,
    target_language  TEXT NOT NULL,
    translated_text  TEXT NOT NULL,
    created_at       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS approval_records (
    content_hash     TEXT PRIMARY KEY,
    original_text    TEXT NOT NULL,
    translated_text  TEXT NOT NULL,
    source_language  TEXT NOT NULL,
    target_language  TEXT NOT NULL,
    status           TEXT NOT NULL,
    reviewed_by      TEXT NOT NULL DEFAULT '',
    reviewed_at      TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS approval_document_refs (
    content_hash     TEXT NOT NULL,
    document_id      TEXT NOT NULL,
    PRIMARY KEY (content_hash, document_id)
);

CREATE TABLE IF NOT EXISTS documents (
    id               TEXT PRIMARY KEY,
    created_at       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS field_approvals (
    document_id      TEXT NOT NULL,
    language         TEXT NOT NULL,
    field_path       TEXT NOT NULL,
    status           TEXT NOT NULL,
    reviewed_by      TEXT NOT NULL DEFAULT '',
    reviewed_at      TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (document_id, language, field_path)
);

CREATE INDEX IF NOT EXISTS idx_translation_cache_lookup ON translation_cache(source_text, target_language);
CREATE INDEX IF NOT EXISTS idx_numeral_cache_lookup ON numeral_cache(source_text, target_language);
`

// Store provides SQLite persistence.
type Store struct {
	db *sql.DB
	sq sq.StatementBuilderType
}

// Open opens (or creates) the database at path and applies the schema.
// ":memory:" yields a private in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if path == ":memory:" {
		// Every connection would get its own empty database.
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db, sq: sq.StatementBuilder}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// TranslationCache returns the cache backed by the translation_cache table.
func (s *Store) TranslationCache() *TableCache {
	return &TableCache{store: s, table: "translation_cache"}
}

// NumeralCache returns the cache backed by the numeral_cache table.
func (s *Store) NumeralCache() *TableCache {
	return &TableCache{store: s, table: "numeral_cache"}
}

// Transaction runs fn inside a transaction, committing on success.
func (s *Store) Transaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
