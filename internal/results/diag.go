package results

import "sync"

// Diagnostics is the sink codec and store components report through. It is
// passed in explicitly; the package keeps no global logger state. Arguments
// follow the alternating key/value convention.
type Diagnostics interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// NopDiagnostics discards everything. It is the default sink.
type NopDiagnostics struct{}

func (NopDiagnostics) Debug(string, ...any) {}
func (NopDiagnostics) Info(string, ...any)  {}
func (NopDiagnostics) Warn(string, ...any)  {}
func (NopDiagnostics) Error(string, ...any) {}

// DiagnosticEntry is one captured diagnostic message.
type DiagnosticEntry struct {
	Level string
	Msg   string
	Args  []any
}

// MemoryDiagnostics captures diagnostics in memory for assertions.
type MemoryDiagnostics struct {
	mu      sync.Mutex
	entries []DiagnosticEntry
}

func (d *MemoryDiagnostics) record(level, msg string, args []any) {
	d.mu.Lock()
	d.entries = append(d.entries, DiagnosticEntry{Level: level, Msg: msg, Args: args})
	d.mu.Unlock()
}

func (d *MemoryDiagnostics) Debug(msg string, args ...any) { d.record("debug", msg, args) }
func (d *MemoryDiagnostics) Info(msg string, args ...any)  { d.record("info", msg, args) }
func (d *MemoryDiagnostics) Warn(msg string, args ...any)  { d.record("warn", msg, args) }
func (d *MemoryDiagnostics) Error(msg string, args ...any) { d.record("error", msg, args) }

// Entries returns a copy of the captured entries.
func (d *MemoryDiagnostics) Entries() []DiagnosticEntry {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]DiagnosticEntry, len(d.entries))
	copy(out, d.entries)
	return out
}

// Count returns how many entries were captured at the given level.
func (d *MemoryDiagnostics) Count(level string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, e := range d.entries {
		if e.Level == level {
			n++
		}
	}
	return n
}
