// Package blob stores archived result files. The contract mirrors a
// minimal subset of S3 so the filesystem and in-memory backends emulate
// the same create-only, prefix-listed object semantics.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// Driver identifies a concrete archive backend.
type Driver string

const (
	DriverFilesystem Driver = "fs"     // local directory (default, dev)
	DriverS3         Driver = "s3"     // S3 / MinIO compatible
	DriverMemory     Driver = "memory" // in-memory (tests)
)

// PutOptions carries optional attributes for a stored archive object.
type PutOptions struct {
	ContentType string
	Metadata    map[string]string // flat key-value, e.g. procedure identity
}

// Info describes a stored archive object.
type Info struct {
	Key          string            `json:"key"`
	Size         int64             `json:"size_bytes"`
	ContentType  string            `json:"content_type,omitempty"`
	ETag         string            `json:"etag,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	LastModified time.Time         `json:"last_modified"`
}

// Store is the archive backend contract.
type Store interface {
	// Put stores a new object at key and fails if the key already exists:
	// archived result files are immutable.
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error)
	// Get retrieves object contents and metadata.
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	// Head returns metadata only.
	Head(ctx context.Context, key string) (Info, error)
	// Delete removes an object, reporting (false, nil) when absent.
	Delete(ctx context.Context, key string) (bool, error)
	// List returns objects under prefix ordered by key ascending.
	List(ctx context.Context, prefix string) ([]Info, error)
	// Driver reports the configured backend.
	Driver() Driver
}

// ErrExists is returned by Put when the key is already occupied.
var ErrExists = errors.New("blob: key already exists")

// Environment variables consulted by Open.
const (
	EnvDriver = "BENCHCORE_BLOB_DRIVER"
	EnvFSRoot = "BENCHCORE_BLOB_FS_ROOT"
)

// Open selects a Store implementation using environment variables.
//
//	BENCHCORE_BLOB_DRIVER: fs|s3|memory (default fs)
//	BENCHCORE_BLOB_FS_ROOT: directory root when driver=fs (default ./archive)
//	(S3 specific variables documented in s3.go)
func Open(ctx context.Context) (Store, error) {
	driver := os.Getenv(EnvDriver)
	if driver == "" {
		driver = string(DriverFilesystem)
	}
	switch Driver(driver) {
	case DriverFilesystem:
		return NewFilesystem(os.Getenv(EnvFSRoot))
	case DriverS3:
		return OpenS3FromEnv(ctx)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}
