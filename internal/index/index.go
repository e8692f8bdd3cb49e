// Package index maintains a catalog of result files so runs can be
// located by procedure, parameters, and row counts without re-reading
// every file header on disk.
package index

import (
	"context"
	"fmt"
	"os"
	"time"
)

// Driver enumerates the supported catalog backends.
type Driver string

const (
	DriverMemory   Driver = "memory"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Environment variables consulted by Open.
const (
	EnvDriver      = "BENCHCORE_INDEX_DRIVER"
	EnvSQLitePath  = "BENCHCORE_INDEX_SQLITE_PATH"
	EnvPostgresDSN = "BENCHCORE_INDEX_POSTGRES_DSN"
)

// Entry describes one indexed result file. Parameters hold the raw
// header values so the catalog stays useful even for procedures no
// longer registered.
type Entry struct {
	Path       string            `json:"path"`
	Procedure  string            `json:"procedure"`
	Parameters map[string]string `json:"parameters,omitempty"`
	Columns    []string          `json:"columns,omitempty"`
	Rows       int               `json:"rows"`
	SizeBytes  int64             `json:"size_bytes"`
	ModTime    time.Time         `json:"mod_time"`
	Status     string            `json:"status"`
	IndexedAt  time.Time         `json:"indexed_at"`
}

// Store is the catalog contract. Put upserts by path; Get reports
// existence alongside the entry; List returns entries sorted by path.
type Store interface {
	Put(ctx context.Context, entry Entry) error
	Get(ctx context.Context, path string) (Entry, bool, error)
	List(ctx context.Context) ([]Entry, error)
	Delete(ctx context.Context, path string) (bool, error)
	Close() error
}

// Open selects a Store implementation using environment variables.
//
//	BENCHCORE_INDEX_DRIVER: memory|sqlite|postgres (default sqlite)
//	BENCHCORE_INDEX_SQLITE_PATH: database path when driver=sqlite
//	BENCHCORE_INDEX_POSTGRES_DSN: connection string when driver=postgres
func Open(ctx context.Context) (Store, error) {
	driver := os.Getenv(EnvDriver)
	if driver == "" {
		driver = string(DriverSQLite)
	}
	switch Driver(driver) {
	case DriverMemory:
		return NewMemory(), nil
	case DriverSQLite:
		return NewSQLite(os.Getenv(EnvSQLitePath))
	case DriverPostgres:
		return NewPostgres(ctx, os.Getenv(EnvPostgresDSN))
	default:
		return nil, fmt.Errorf("unknown index driver %s", driver)
	}
}
