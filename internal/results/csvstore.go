package results

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// CSVStore persists rows as comma-delimited lines after a comment-prefixed
// header block and a column-name line. Appends never rewrite prior content,
// which is what keeps concurrent reader polling safe.
type CSVStore struct {
	path      string
	formatter *Formatter
	diag      Diagnostics
	metrics   MetricsRecorder

	table       *Table
	headerLines int // comment lines preceding the column line; -1 until known
}

// NewCSVStore binds a CSV store to path. diag and metrics may be nil.
func NewCSVStore(path string, formatter *Formatter, diag Diagnostics, metrics MetricsRecorder) *CSVStore {
	if diag == nil {
		diag = NopDiagnostics{}
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &CSVStore{path: path, formatter: formatter, diag: diag, metrics: metrics, headerLines: -1}
}

func (s *CSVStore) Path() string   { return s.path }
func (s *CSVStore) Format() Format { return FormatCSV }

func (s *CSVStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Create writes the header block and the column line. The file must not
// already hold data worth keeping; an existing file is truncated.
func (s *CSVStore) Create(headerText string) error {
	if err := os.WriteFile(s.path, []byte(headerText+s.formatter.Labels()), 0o644); err != nil {
		return fmt.Errorf("results: create %s: %w", s.path, err)
	}
	s.headerLines = strings.Count(headerText, lineBreak)
	s.table = NewTable(s.formatter.Columns())
	return nil
}

// splitDataLines returns the file's lines with an unterminated tail line
// dropped: a row is only real once its newline has been flushed.
func splitDataLines(data []byte) []string {
	text := string(data)
	lines := strings.Split(text, lineBreak)
	// Split leaves a trailing "" for a newline-terminated file; otherwise
	// the final element is a partial row.
	return lines[:len(lines)-1]
}

// Reload re-parses the entire file. The column line found in the file
// replaces the declared columns so old files reload faithfully.
func (s *CSVStore) Reload() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("results: reload %s: %w", s.path, err)
	}
	lines := splitDataLines(data)
	comments := 0
	for comments < len(lines) && strings.HasPrefix(lines[comments], commentPrefix) {
		comments++
	}
	if comments == len(lines) {
		return fmt.Errorf("results: %s has no column line", s.path)
	}
	columns := strings.Split(lines[comments], delimiter)
	table := NewTable(columns)
	for _, line := range lines[comments+1:] {
		if line == "" {
			continue
		}
		fields := strings.Split(line, delimiter)
		if err := table.Append(fields); err != nil {
			return fmt.Errorf("results: reload %s: %w", s.path, err)
		}
	}
	s.table = table
	s.headerLines = comments
	return nil
}

// Sync appends rows written since the table was last materialized, skipping
// the known prefix by row count. Read trouble, including a row that is not
// fully flushed yet, leaves the in-memory state unchanged.
func (s *CSVStore) Sync() error {
	if s.table == nil || s.headerLines < 0 {
		return s.Reload()
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		s.diag.Debug("incremental reload skipped", "path", s.path, "error", err.Error())
		return nil
	}
	lines := splitDataLines(data)
	skip := s.headerLines + 1 + s.table.Len()
	if skip >= len(lines) {
		return nil
	}
	width := len(s.table.Columns())
	for _, line := range lines[skip:] {
		if line == "" {
			continue
		}
		fields := strings.Split(line, delimiter)
		if len(fields) != width {
			// Mid-write row; the next sync will pick it up whole.
			return nil
		}
		if err := s.table.Append(fields); err != nil {
			return nil
		}
	}
	return nil
}

// Data returns the in-memory table, or an empty table shaped by the
// declared columns when nothing has been loaded.
func (s *CSVStore) Data() *Table {
	if s.table == nil {
		return NewTable(s.formatter.Columns())
	}
	return s.table
}

// NewHandler opens an append-only line handler for live writing.
func (s *CSVStore) NewHandler() (RecordHandler, error) {
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("results: open %s for append: %w", s.path, err)
	}
	return &csvHandler{
		file:      f,
		w:         bufio.NewWriter(f),
		formatter: s.formatter,
		metrics:   s.metrics,
	}, nil
}

// csvHandler appends one formatted line per record and flushes after every
// emit so a polling reader sees whole rows promptly.
type csvHandler struct {
	mu        sync.Mutex
	file      *os.File
	w         *bufio.Writer
	formatter *Formatter
	metrics   MetricsRecorder
}

func (h *csvHandler) Emit(record map[string]any) error {
	start := time.Now()
	line := h.formatter.Format(record)
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.WriteString(line + lineBreak)
	if err == nil {
		err = h.w.Flush()
	}
	h.metrics.ObserveAppend(FormatCSV, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("results: append row: %w", err)
	}
	return nil
}

func (h *csvHandler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.w.Flush(); err != nil {
		_ = h.file.Close()
		return err
	}
	return h.file.Close()
}
