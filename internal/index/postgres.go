package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

const (
	postgresDriver = "pgx"
	// Default DSN targets a local instance; override via BENCHCORE_INDEX_POSTGRES_DSN.
	postgresDefaultDSN = "postgres://localhost/benchcore?sslmode=disable"
)

var sqlOpen = sql.Open

// Postgres persists catalog entries in a shared database so multiple
// acquisition hosts can publish into one catalog.
type Postgres struct {
	*Memory
	db *sql.DB
}

// NewPostgres opens a Postgres-backed catalog using the provided DSN
// (falls back to a local default), ensures the index table exists, and
// hydrates the in-memory catalog from existing rows.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	if dsn == "" {
		dsn = postgresDefaultDSN
	}
	db, err := sqlOpen(postgresDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS benchcore_result_index (
		path TEXT PRIMARY KEY,
		payload JSONB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create index table: %w", err)
	}
	s := &Postgres{Memory: NewMemory(), db: db}
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Postgres) load(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM benchcore_result_index`)
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

func (s *Postgres) Put(ctx context.Context, entry Entry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO benchcore_result_index(path,payload) VALUES($1,$2) ON CONFLICT(path) DO UPDATE SET payload=excluded.payload`,
		entry.Path, payload); err != nil {
		return fmt.Errorf("upsert %s: %w", entry.Path, err)
	}
	return s.Memory.Put(ctx, entry)
}

func (s *Postgres) Delete(ctx context.Context, path string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM benchcore_result_index WHERE path = $1`, path)
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

func (s *Postgres) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Postgres) DB() *sql.DB { return s.db }
