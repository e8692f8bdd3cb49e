package results

import (
	"os"
	"path/filepath"
	"strings"
)

// Format identifies a result-file encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// EnvFormat overrides extension-based format detection when set to a valid
// Format value.
const EnvFormat = "BENCHCORE_RESULTS_FORMAT"

// DetectFormat picks the encoding for a path: the BENCHCORE_RESULTS_FORMAT
// environment variable wins, then the file extension. Unknown extensions
// default to CSV.
func DetectFormat(path string) Format {
	switch strings.ToLower(os.Getenv(EnvFormat)) {
	case string(FormatCSV):
		return FormatCSV
	case string(FormatJSON):
		return FormatJSON
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatCSV
}

// RecordHandler is the live-writing collaborator: the facade formats
// records, the handler owns the write call and any buffering.
type RecordHandler interface {
	Emit(record map[string]any) error
	Close() error
}

// Store is one result file: a fixed header plus tabular data.
type Store interface {
	Path() string
	Format() Format
	Exists() bool
	// Create writes a fresh file holding the encoded header and no rows.
	Create(headerText string) error
	// Reload re-parses the whole file, replacing the in-memory table.
	Reload() error
	// Sync picks up rows appended since the last reload. A transient read
	// problem leaves the in-memory table untouched.
	Sync() error
	Data() *Table
	NewHandler() (RecordHandler, error)
}
