package results

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"benchcore/pkg/quantity"
)

// JSONStore persists data as a single JSON object whose one key is the
// encoded header and whose value maps column name to an array of values.
// Every append reads and rewrites the whole file; this variant exists for
// completeness and is the inferior choice under live acquisition. Unlike
// the CSV store its column set may grow: a key not seen before becomes a
// new column, and prior rows are not back-filled.
type JSONStore struct {
	path      string
	formatter *Formatter
	diag      Diagnostics
	metrics   MetricsRecorder

	table *Table
}

// NewJSONStore binds a JSON store to path. diag and metrics may be nil.
func NewJSONStore(path string, formatter *Formatter, diag Diagnostics, metrics MetricsRecorder) *JSONStore {
	if diag == nil {
		diag = NopDiagnostics{}
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &JSONStore{path: path, formatter: formatter, diag: diag, metrics: metrics}
}

func (s *JSONStore) Path() string   { return s.path }
func (s *JSONStore) Format() Format { return FormatJSON }

func (s *JSONStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Create writes {headerText: {}}.
func (s *JSONStore) Create(headerText string) error {
	payload, err := json.Marshal(map[string]map[string][]any{headerText: {}})
	if err != nil {
		return fmt.Errorf("results: create %s: %w", s.path, err)
	}
	if err := os.WriteFile(s.path, payload, 0o644); err != nil {
		return fmt.Errorf("results: create %s: %w", s.path, err)
	}
	s.table = NewTable(s.formatter.Columns())
	return nil
}

// readEnvelope returns the header key and the column-oriented data object.
func readJSONEnvelope(path string) (string, map[string][]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", nil, err
	}
	var envelope map[string]map[string][]any
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return "", nil, err
	}
	if len(envelope) != 1 {
		return "", nil, fmt.Errorf("results: %s must hold exactly one header object", path)
	}
	for header, data := range envelope {
		if data == nil {
			data = map[string][]any{}
		}
		return header, data, nil
	}
	return "", nil, nil // unreachable
}

// columnsOf orders the stored columns: declared columns first, then
// late-added ones sorted by name (JSON objects carry no order).
func (s *JSONStore) columnsOf(data map[string][]any) []string {
	declared := s.formatter.Columns()
	seen := make(map[string]bool, len(declared))
	var columns []string
	for _, col := range declared {
		if _, ok := data[col]; ok {
			columns = append(columns, col)
			seen[col] = true
		}
	}
	var extra []string
	for col := range data {
		if !seen[col] {
			extra = append(extra, col)
		}
	}
	sort.Strings(extra)
	columns = append(columns, extra...)
	if len(columns) == 0 {
		return declared
	}
	return columns
}

// Reload re-reads the whole file. Columns added after creation surface as
// shorter arrays; absent positions materialize as "nan" without shifting,
// preserving the no-back-fill behavior of the format.
func (s *JSONStore) Reload() error {
	_, data, err := readJSONEnvelope(s.path)
	if err != nil {
		return fmt.Errorf("results: reload %s: %w", s.path, err)
	}
	columns := s.columnsOf(data)
	table := NewTable(columns)
	rows := 0
	for _, values := range data {
		if len(values) > rows {
			rows = len(values)
		}
	}
	for i := 0; i < rows; i++ {
		fields := make([]string, len(columns))
		for j, col := range columns {
			values := data[col]
			if i < len(values) {
				fields[j] = formatValue(values[i])
			} else {
				fields[j] = "nan"
			}
		}
		if err := table.Append(fields); err != nil {
			return fmt.Errorf("results: reload %s: %w", s.path, err)
		}
	}
	s.table = table
	return nil
}

// Sync is a full re-read: the JSON encoding offers no cheaper option.
func (s *JSONStore) Sync() error {
	if err := s.Reload(); err != nil {
		s.diag.Debug("json reload skipped", "path", s.path, "error", err.Error())
	}
	return nil
}

// Data returns the in-memory table, or an empty table shaped by the
// declared columns when nothing has been loaded.
func (s *JSONStore) Data() *Table {
	if s.table == nil {
		return NewTable(s.formatter.Columns())
	}
	return s.table
}

// NewHandler returns the rewrite-the-world append handler.
func (s *JSONStore) NewHandler() (RecordHandler, error) {
	return &jsonHandler{store: s}, nil
}

// jsonHandler merges each record into the column-oriented object and
// rewrites the file.
type jsonHandler struct {
	store *JSONStore
}

func (h *jsonHandler) Emit(record map[string]any) error {
	start := time.Now()
	err := h.emit(record)
	h.store.metrics.ObserveAppend(FormatJSON, time.Since(start), err)
	return err
}

func (h *jsonHandler) emit(record map[string]any) error {
	header, data, err := readJSONEnvelope(h.store.path)
	if err != nil {
		return fmt.Errorf("results: merge row into %s: %w", h.store.path, err)
	}
	for key, value := range record {
		appended, err := jsonCell(value)
		if err != nil {
			return fmt.Errorf("results: column %s: %w", key, err)
		}
		if _, ok := data[key]; ok {
			data[key] = append(data[key], appended...)
		} else {
			// New column; prior rows stay un-back-filled.
			data[key] = appended
		}
	}
	payload, err := json.Marshal(map[string]map[string][]any{header: data})
	if err != nil {
		return fmt.Errorf("results: merge row into %s: %w", h.store.path, err)
	}
	if err := os.WriteFile(h.store.path, payload, 0o644); err != nil {
		return fmt.Errorf("results: merge row into %s: %w", h.store.path, err)
	}
	return nil
}

func (h *jsonHandler) Close() error { return nil }

// jsonCell normalizes one record value into the elements it contributes to
// a column array. Slices contribute all their elements.
func jsonCell(value any) ([]any, error) {
	switch v := value.(type) {
	case float64, float32, int, int64, uint64, string, bool:
		return []any{v}, nil
	case quantity.Quantity:
		return []any{v.Base().Value}, nil
	case []any:
		return v, nil
	case []float64:
		out := make([]any, len(v))
		for i, x := range v {
			out[i] = x
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unexpected value type %T", value)
	}
}
