package results

import (
	"errors"
	"fmt"

	"benchcore/pkg/procedure"
)

// ErrParameterMismatch marks a stored header whose parameter names do not
// exactly match the reconstructed procedure's declared set. The file is
// considered incompatible rather than silently dropping metadata.
var ErrParameterMismatch = errors.New("results: header parameters do not match procedure")

// Rehydrated is the tagged outcome of reconstructing a procedure from a
// header: either the registered implementation (Known) or an opaque
// placeholder preserving the raw values.
type Rehydrated struct {
	Procedure procedure.Procedure
	Known     bool
}

// Rehydrate reconstructs a runnable procedure from a parsed header. The
// identity is resolved through the registry; on a miss a placeholder is
// returned with Known=false and a warning is emitted, never an error.
// With a resolved class, every header parameter must exist on the declared
// set and every declared parameter must appear in the header; a mismatch
// is fatal. After applying values the procedure refreshes its derived
// metadata.
func Rehydrate(reg *procedure.Registry, h Header, diag Diagnostics) (Rehydrated, error) {
	if diag == nil {
		diag = NopDiagnostics{}
	}
	factory, ok := reg.Resolve(h.Identity.String())
	if !ok {
		diag.Warn("procedure not registered, using placeholder", "identity", h.Identity.String())
		values := make(map[string]string, len(h.Params))
		for _, p := range h.Params {
			values[p.Name] = p.Value
		}
		return Rehydrated{Procedure: procedure.NewUnknown(h.Identity, h.Names(), values)}, nil
	}

	proc := factory()
	declared := proc.Parameters()
	for _, p := range h.Params {
		if _, found := declared.Get(p.Name); !found {
			return Rehydrated{}, fmt.Errorf("%w: header parameter %q not declared by %s",
				ErrParameterMismatch, p.Name, h.Identity)
		}
	}
	for _, name := range declared.Names() {
		if _, found := h.Lookup(name); !found {
			return Rehydrated{}, fmt.Errorf("%w: declared parameter %q missing from header of %s",
				ErrParameterMismatch, name, h.Identity)
		}
	}
	for _, p := range h.Params {
		if err := declared.Apply(p.Name, p.Value); err != nil {
			return Rehydrated{}, fmt.Errorf("results: apply parameter %q: %w", p.Name, err)
		}
	}
	if err := proc.Refresh(); err != nil {
		return Rehydrated{}, fmt.Errorf("results: refresh %s: %w", h.Identity, err)
	}
	return Rehydrated{Procedure: proc, Known: true}, nil
}
