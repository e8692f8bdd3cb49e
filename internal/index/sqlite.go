package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// SQLite persists catalog entries as JSON payloads keyed by file path in
// a single table, hydrating an in-memory catalog on open.
type SQLite struct {
	*Memory
	db   *sql.DB
	path string
}

// NewSQLite opens (creating if needed) a SQLite-backed catalog at path.
func NewSQLite(path string) (*SQLite, error) {
	if path == "" {
		path = "benchcore-index.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS result_index (
		path TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create index table: %w", err)
	}
	s := &SQLite{Memory: NewMemory(), db: db, path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLite) load() error {
	rows, err := s.db.Query(`SELECT payload FROM result_index`)
	if err != nil {
		return fmt.Errorf("select index: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var entries []Entry
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		var entry Entry
		if err := json.Unmarshal(payload, &entry); err != nil {
			return fmt.Errorf("decode entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("select index: %w", err)
	}
	s.restore(entries)
	return nil
}

func (s *SQLite) Put(ctx context.Context, entry Entry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO result_index(path,payload) VALUES(?,?) ON CONFLICT(path) DO UPDATE SET payload=excluded.payload`,
		entry.Path, payload); err != nil {
		return fmt.Errorf("upsert %s: %w", entry.Path, err)
	}
	return s.Memory.Put(ctx, entry)
}

func (s *SQLite) Delete(ctx context.Context, path string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM result_index WHERE path = ?`, path)
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", path, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	_, _ = s.Memory.Delete(ctx, path)
	return affected > 0, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *SQLite) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *SQLite) Path() string { return s.path }
