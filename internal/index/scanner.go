package index

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"benchcore/internal/results"
)

// Scanner walks a directory tree of result files and publishes one
// catalog entry per readable header. Unreadable files are reported to
// the diagnostics sink and skipped rather than aborting the walk.
type Scanner struct {
	store Store
	diag  results.Diagnostics
}

// NewScanner binds a scanner to a catalog. diag may be nil.
func NewScanner(store Store, diag results.Diagnostics) *Scanner {
	if diag == nil {
		diag = results.NopDiagnostics{}
	}
	return &Scanner{store: store, diag: diag}
}

// StatusFinished marks entries produced by a completed run; the scanner
// only ever sees complete files, so it stamps every entry with it.
const StatusFinished = "finished"

// Scan indexes every .csv and .json result file under root and returns
// the number of entries published.
func (s *Scanner) Scan(ctx context.Context, root string) (int, error) {
	indexed := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".csv", ".json":
		default:
			return nil
		}
		entry, ok := s.examine(path, d)
		if !ok {
			return nil
		}
		if err := s.store.Put(ctx, entry); err != nil {
			return err
		}
		indexed++
		return nil
	})
	return indexed, err
}

// examine builds the entry for one candidate file, reporting and
// skipping files whose header or data cannot be read.
func (s *Scanner) examine(path string, d fs.DirEntry) (Entry, bool) {
	header, _, err := results.DecodeHeaderFile(path)
	if err != nil {
		s.diag.Warn("skipping unreadable result file", "path", path, "error", err.Error())
		return Entry{}, false
	}
	rows, err := results.CountRows(path)
	if err != nil {
		s.diag.Warn("skipping uncountable result file", "path", path, "error", err.Error())
		return Entry{}, false
	}
	columns, err := results.ReadColumns(path)
	if err != nil {
		s.diag.Warn("skipping columnless result file", "path", path, "error", err.Error())
		return Entry{}, false
	}
	params := make(map[string]string, len(header.Params))
	for _, p := range header.Params {
		params[p.Name] = p.Value
	}
	info, err := d.Info()
	if err != nil {
		s.diag.Warn("skipping unstattable result file", "path", path, "error", err.Error())
		return Entry{}, false
	}
	return Entry{
		Path:       path,
		Procedure:  header.Identity.String(),
		Parameters: params,
		Columns:    columns,
		Rows:       rows,
		SizeBytes:  info.Size(),
		ModTime:    info.ModTime(),
		Status:     StatusFinished,
		IndexedAt:  time.Now().UTC(),
	}, true
}
