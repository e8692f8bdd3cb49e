// Package procedure defines the experiment-procedure contract used by the
// results persistence layer: typed, ordered parameters, declared data
// columns, and an explicit registry mapping stable identifiers to
// procedure factories.
package procedure

import (
	"fmt"
	"strings"
)

// Status tracks a procedure through its execution lifecycle.
type Status int

const (
	StatusQueued Status = iota
	StatusRunning
	StatusFinished
	StatusFailed
	StatusAborted
)

var statusStrings = map[Status]string{
	StatusQueued:   "Queued",
	StatusRunning:  "Running",
	StatusFinished: "Finished",
	StatusFailed:   "Failed",
	StatusAborted:  "Aborted",
}

func (s Status) String() string {
	if v, ok := statusStrings[s]; ok {
		return v
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Procedure describes an experiment: an ordered parameter set, a fixed list
// of data-column names shaping its measurement output, and a lifecycle
// status. Implementations must be constructible by a zero-argument Factory
// and must tolerate Refresh being called after parameters change.
type Procedure interface {
	// Parameters returns the procedure's ordered parameter set. Callers may
	// apply values through it; the procedure observes changes on Refresh.
	Parameters() *ParameterSet
	// DataColumns returns the declared column names, fixed at file-creation
	// time. A column name may embed a unit in parentheses, e.g. "Voltage (V)".
	DataColumns() []string
	// Refresh recomputes derived metadata after parameter values change.
	Refresh() error
	Status() Status
	SetStatus(Status)
}

// Identity names a procedure implementation by module path and class name,
// matching the "<module.Class>" form stored in result-file headers.
type Identity struct {
	Module string
	Class  string
}

// ParseIdentity splits a dotted identifier at its last dot. An undotted
// identifier has an empty module.
func ParseIdentity(id string) Identity {
	if i := strings.LastIndex(id, "."); i >= 0 {
		return Identity{Module: id[:i], Class: id[i+1:]}
	}
	return Identity{Class: id}
}

// String returns the canonical dotted identifier.
func (id Identity) String() string {
	if id.Module == "" {
		return id.Class
	}
	return id.Module + "." + id.Class
}

// Base supplies the parameter-set and status plumbing shared by concrete
// procedures. Embed it and declare parameters in the constructor.
type Base struct {
	params *ParameterSet
	status Status
}

// NewBase constructs a Base with an empty parameter set and Queued status.
func NewBase() Base {
	return Base{params: NewParameterSet()}
}

// Parameters returns the underlying parameter set, creating it when the
// zero value of Base is embedded directly.
func (b *Base) Parameters() *ParameterSet {
	if b.params == nil {
		b.params = NewParameterSet()
	}
	return b.params
}

func (b *Base) Status() Status     { return b.status }
func (b *Base) SetStatus(s Status) { b.status = s }

// Refresh is a no-op; procedures with derived metadata override it.
func (b *Base) Refresh() error { return nil }
