// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package knowledge persists chunk embeddings in a SQLite-backed index and
// answers cosine-distance nearest-neighbour queries over it.
//
// An index lives in its own directory (dir/index.db). It is written once by
// Build and afterwards opened read-only; it is never updated in place.
package knowledge

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/rag-engine/pkg/types"
)

const (
	dbFile        = "index.db"
	schemaVersion = 1
)

// ErrOpen marks a persisted index that exists but cannot be used: missing
// database file, unreadable format, schema or embedding fingerprint
// mismatch. Provisioning treats it as a rebuild trigger.
var ErrOpen = errors.New("cannot open index")

// Entry is one chunk together with its embedding.
type Entry struct {
	Chunk     types.Chunk
	Embedding []float32
}

// Info describes an opened index.
type Info struct {
	Dir         string    `json:"dir" yaml:"dir"`
	Fingerprint string    `json:"fingerprint" yaml:"fingerprint"`
	Dimensions  int       `json:"dimensions" yaml:"dimensions"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
}

// Index is an open embedding index.
type Index struct {
	db   *sql.DB
	info Info
}

// DBPath returns the database file of the index stored in dir.
func DBPath(dir string) string {
	return filepath.Join(dir, dbFile)
}

func dsn(path string, readOnly bool) string {
	q := url.Values{}
	q.Set("_sync", "FULL")
	q.Set("_busy_timeout", "5000")
	if readOnly {
		q.Set("mode", "ro")
	}
	return "file:" + path + "?" + q.Encode()
}

// Build writes entries as a new index in dir, records the embedding
// fingerprint and dimension, and closes the database so everything is on
// stable storage when it returns. dir must not already hold an index.
// Every embedding must have length dims.
func Build(ctx context.Context, dir, fingerprint string, dims int, entries []Entry) error {
	if dims <= 0 {
		return fmt.Errorf("building index: dimension %d: %w", dims, types.ErrInvalidParameter)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}
	path := DBPath(dir)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("index already exists at %s", path)
	}

	db, err := sql.Open("sqlite3", dsn(path, false))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := createSchema(ctx, db); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	if err := insertAll(ctx, db, fingerprint, dims, entries); err != nil {
		return err
	}
	return db.Close()
}

func createSchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE TABLE chunks (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			source TEXT NOT NULL,
			chunk_index INTEGER NOT NULL,
			char_offset INTEGER NOT NULL,
			content TEXT NOT NULL,
			embedding BLOB NOT NULL
		)`,
		`CREATE INDEX idx_chunks_source ON chunks(source, chunk_index)`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// insertAll writes the metadata and every entry in one transaction.
func insertAll(ctx context.Context, db *sql.DB, fingerprint string, dims int, entries []Entry) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	meta := map[string]string{
		"schema_version": strconv.Itoa(schemaVersion),
		"fingerprint":    fingerprint,
		"dimensions":     strconv.Itoa(dims),
		"created_at":     time.Now().UTC().Format(time.RFC3339Nano),
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx, `INSERT INTO meta (key, value) VALUES (?, ?)`, k, v); err != nil {
			return fmt.Errorf("writing meta %s: %w", k, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chunks (id, source, chunk_index, char_offset, content, embedding)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if len(e.Embedding) != dims {
			return fmt.Errorf("entry %s: embedding dimension %d, want %d", e.Chunk.ID, len(e.Embedding), dims)
		}
		c := e.Chunk
		if _, err := stmt.ExecContext(ctx,
			c.ID, c.Source, c.Index, c.Offset, c.Text, EncodeEmbedding(e.Embedding),
		); err != nil {
			return fmt.Errorf("inserting chunk %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing index: %w", err)
	}
	return nil
}

// Open opens the index in dir read-only and verifies that it was built by
// the embedding function identified by fingerprint. Every failure wraps
// ErrOpen.
func Open(ctx context.Context, dir, fingerprint string) (*Index, error) {
	path := DBPath(dir)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrOpen, path, err)
	}

	db, err := sql.Open("sqlite3", dsn(path, true))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrOpen, path, err)
	}

	info, err := readMeta(ctx, db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrOpen, path, err)
	}
	if info.Fingerprint != fingerprint {
		db.Close()
		return nil, fmt.Errorf("%w: %s: built with embedding %q, configured %q",
			ErrOpen, path, info.Fingerprint, fingerprint)
	}
	info.Dir = dir

	return &Index{db: db, info: info}, nil
}

func readMeta(ctx context.Context, db *sql.DB) (Info, error) {
	rows, err := db.QueryContext(ctx, `SELECT key, value FROM meta`)
	if err != nil {
		return Info{}, fmt.Errorf("reading meta: %w", err)
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return Info{}, fmt.Errorf("scanning meta: %w", err)
		}
		meta[k] = v
	}
	if err := rows.Err(); err != nil {
		return Info{}, fmt.Errorf("reading meta: %w", err)
	}

	if v := meta["schema_version"]; v != strconv.Itoa(schemaVersion) {
		return Info{}, fmt.Errorf("schema version %q, want %d", v, schemaVersion)
	}
	dims, err := strconv.Atoi(meta["dimensions"])
	if err != nil || dims <= 0 {
		return Info{}, fmt.Errorf("invalid dimensions %q", meta["dimensions"])
	}

	info := Info{Fingerprint: meta["fingerprint"], Dimensions: dims}
	if ts, err := time.Parse(time.RFC3339Nano, meta["created_at"]); err == nil {
		info.CreatedAt = ts
	}
	return info, nil
}

// Close releases the database connection.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// Info returns the index metadata.
func (ix *Index) Info() Info {
	return ix.info
}

// Count returns the number of stored chunks.
func (ix *Index) Count(ctx context.Context) (int, error) {
	var n int
	if err := ix.db.QueryRowContext(ctx, `SELECT count(*) FROM chunks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return n, nil
}

// HasEntries reports whether dir looks like it holds a persisted index: the
// directory exists and contains a non-empty database file. It does not open
// the database; a true result may still fail Open. Anything other than a
// directory at dir counts as present so that Open reports it as unusable.
func HasEntries(dir string) (bool, error) {
	dirInfo, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("checking index %s: %w", dir, err)
	}
	if !dirInfo.IsDir() {
		return true, nil
	}

	info, err := os.Stat(DBPath(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("checking index %s: %w", dir, err)
	}
	return info.Mode().IsRegular() && info.Size() > 0, nil
}
