// Package results implements the persistence layer pairing a procedure's
// serialized parameter header with append-friendly tabular measurement
// data, in CSV and JSON encodings.
package results

import (
	"fmt"

	"go.uber.org/multierr"

	"benchcore/pkg/procedure"
)

// settings collects the facade's optional collaborators.
type settings struct {
	diag    Diagnostics
	metrics MetricsRecorder
	format  Format // forces an encoding for every path when non-empty
}

// Option configures a Results facade.
type Option func(*settings)

// WithDiagnostics routes codec and store diagnostics to sink.
func WithDiagnostics(sink Diagnostics) Option {
	return func(s *settings) { s.diag = sink }
}

// WithMetrics routes operation metrics to rec.
func WithMetrics(rec MetricsRecorder) Option {
	return func(s *settings) { s.metrics = rec }
}

// WithFormat forces the encoding instead of per-path detection.
func WithFormat(format Format) Option {
	return func(s *settings) { s.format = format }
}

func newSettings(opts []Option) settings {
	s := settings{diag: NopDiagnostics{}, metrics: NopMetrics{}}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Results binds a procedure to one or more result files. Constructing it
// against an existing primary file treats the run as complete; against a
// fresh path it writes the header so acquisition can start appending.
type Results struct {
	proc      procedure.Procedure
	known     bool
	formatter *Formatter
	stores    []Store
	handlers  []RecordHandler
	cfg       settings
}

// New binds proc to the given file paths. The first path is the primary
// resource used for reads; secondary paths receive the same header and
// rows.
func New(proc procedure.Procedure, paths []string, opts ...Option) (*Results, error) {
	if proc == nil {
		return nil, fmt.Errorf("results: procedure required")
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("results: at least one file path required")
	}
	cfg := newSettings(opts)
	_, unknown := proc.(*procedure.Unknown)
	r := &Results{
		proc:      proc,
		known:     !unknown,
		formatter: NewFormatter(proc.DataColumns(), cfg.diag, cfg.metrics),
		cfg:       cfg,
	}
	for _, path := range paths {
		format := cfg.format
		if format == "" {
			format = DetectFormat(path)
		}
		switch format {
		case FormatJSON:
			r.stores = append(r.stores, NewJSONStore(path, r.formatter, cfg.diag, cfg.metrics))
		default:
			r.stores = append(r.stores, NewCSVStore(path, r.formatter, cfg.diag, cfg.metrics))
		}
	}

	if r.primary().Exists() {
		// Header already written; the run that produced the file is done.
		proc.SetStatus(procedure.StatusFinished)
		return r, nil
	}
	if err := r.createResources(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Results) primary() Store { return r.stores[0] }

// createResources writes the header (and column line, for CSV) to every
// bound path.
func (r *Results) createResources() error {
	ident := procedure.IdentityOf(r.proc)
	header := NewHeader(ident, r.proc.Parameters())
	var errs error
	for _, store := range r.stores {
		var text string
		var err error
		if store.Format() == FormatJSON {
			text, err = EncodeJSONHeader(ident, r.proc.Parameters())
		} else {
			text = header.EncodeCSV()
		}
		if err == nil {
			err = store.Create(text)
		}
		errs = multierr.Append(errs, err)
	}
	return errs
}

// Procedure returns the bound procedure instance.
func (r *Results) Procedure() procedure.Procedure { return r.proc }

// Known reports whether the procedure is a real registered implementation
// rather than the opaque placeholder.
func (r *Results) Known() bool { return r.known }

// Path returns the primary file path.
func (r *Results) Path() string { return r.primary().Path() }

// Paths returns every bound file path.
func (r *Results) Paths() []string {
	out := make([]string, len(r.stores))
	for i, store := range r.stores {
		out[i] = store.Path()
	}
	return out
}

// Data materializes the accumulated rows. An empty or never-loaded table
// triggers a full reload; otherwise rows appended since the last call are
// picked up incrementally. Read failures surface as an empty table shaped
// by the declared columns, never as an error.
func (r *Results) Data() *Table {
	store := r.primary()
	if store.Data().Len() == 0 {
		err := store.Reload()
		r.cfg.metrics.ObserveReload(store.Format(), "full", err)
		if err != nil {
			r.cfg.diag.Warn("full reload failed", "path", store.Path(), "error", err.Error())
			return NewTable(r.formatter.Columns())
		}
	} else {
		err := store.Sync()
		r.cfg.metrics.ObserveReload(store.Format(), "incremental", err)
	}
	return store.Data()
}

// Labels returns the column header line, newline-terminated.
func (r *Results) Labels() string { return r.formatter.Labels() }

// Format renders one record as a data line, without trailing newline.
func (r *Results) Format(record map[string]any) string {
	return r.formatter.Format(record)
}

// Parse splits a data line back into a column-keyed map of raw strings.
func (r *Results) Parse(line string) map[string]string {
	return r.formatter.Parse(line)
}

// Handlers returns one live-writing handler per bound path, opening them
// on first use.
func (r *Results) Handlers() ([]RecordHandler, error) {
	if r.handlers != nil {
		return r.handlers, nil
	}
	handlers := make([]RecordHandler, 0, len(r.stores))
	for _, store := range r.stores {
		h, err := store.NewHandler()
		if err != nil {
			var errs error = err
			for _, open := range handlers {
				errs = multierr.Append(errs, open.Close())
			}
			return nil, errs
		}
		handlers = append(handlers, h)
	}
	r.handlers = handlers
	return handlers, nil
}

// Append writes one measurement record to every bound path.
func (r *Results) Append(record map[string]any) error {
	handlers, err := r.Handlers()
	if err != nil {
		return err
	}
	var errs error
	for _, h := range handlers {
		errs = multierr.Append(errs, h.Emit(record))
	}
	return errs
}

// Close releases the live-writing handlers.
func (r *Results) Close() error {
	var errs error
	for _, h := range r.handlers {
		errs = multierr.Append(errs, h.Close())
	}
	r.handlers = nil
	return errs
}

// Load opens an existing result file: it parses the header, rehydrates the
// procedure through the registry (falling back to the opaque placeholder
// when unregistered), and returns a facade bound to the file with the run
// marked finished.
func Load(path string, reg *procedure.Registry, opts ...Option) (*Results, error) {
	cfg := newSettings(opts)
	header, format, err := DecodeHeaderFile(path)
	if err != nil {
		return nil, err
	}
	rehydrated, err := Rehydrate(reg, header, cfg.diag)
	if err != nil {
		return nil, err
	}
	return New(rehydrated.Procedure, []string{path}, append(opts, WithFormat(format))...)
}
