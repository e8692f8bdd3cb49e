package procedure

// Unknown is the placeholder procedure used when a stored file references
// an identifier missing from the registry. It holds the raw parameter
// values opaquely (as string parameters) and declares no data columns, so
// stored data stays viewable even when the defining code is unavailable.
type Unknown struct {
	ident  Identity
	params *ParameterSet
	status Status
}

// NewUnknown constructs a placeholder for the given identity. Parameter
// order follows names; values stay raw text.
func NewUnknown(ident Identity, names []string, values map[string]string) *Unknown {
	params := NewParameterSet()
	for _, name := range names {
		params.MustAdd(NewString(name, values[name]))
	}
	return &Unknown{ident: ident, params: params}
}

// Identity returns the unresolved identifier the stored file referenced.
func (u *Unknown) Identity() Identity { return u.ident }

func (u *Unknown) Parameters() *ParameterSet { return u.params }

// DataColumns returns nil: a placeholder declares no fixed columns.
func (u *Unknown) DataColumns() []string { return nil }

func (u *Unknown) Refresh() error     { return nil }
func (u *Unknown) Status() Status     { return u.status }
func (u *Unknown) SetStatus(s Status) { u.status = s }
