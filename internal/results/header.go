package results

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"benchcore/pkg/procedure"
)

const (
	commentPrefix = "#"
	lineBreak     = "\n"
	delimiter     = ","
)

// ErrMalformedHeader marks a header block that cannot be parsed; the file
// is treated as unreadable.
var ErrMalformedHeader = errors.New("results: malformed header")

// HeaderParam is one serialized parameter line: display name plus the raw
// value text exactly as stored.
type HeaderParam struct {
	Name  string
	Value string
}

// Header captures a procedure's identity and parameter values as stored in
// a result file. It is written once at file creation and never mutated.
type Header struct {
	Identity procedure.Identity
	Params   []HeaderParam
}

// NewHeader snapshots a procedure's identity and current parameter values.
func NewHeader(ident procedure.Identity, params *procedure.ParameterSet) Header {
	h := Header{Identity: ident}
	params.Each(func(p procedure.Parameter) {
		h.Params = append(h.Params, HeaderParam{Name: p.Name(), Value: p.String()})
	})
	return h
}

// Lookup returns the raw value stored under name.
func (h Header) Lookup(name string) (string, bool) {
	for _, p := range h.Params {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// Names returns the stored parameter names in header order.
func (h Header) Names() []string {
	out := make([]string, len(h.Params))
	for i, p := range h.Params {
		out[i] = p.Name
	}
	return out
}

// escapeValue protects embedded control characters so multi-line parameter
// values survive the line-oriented header format.
func escapeValue(s string) string {
	r := strings.NewReplacer("\\", `\\`, "\n", `\n`, "\r", `\r`, "\t", `\t`)
	return r.Replace(s)
}

func unescapeValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case '\\':
			b.WriteByte('\\')
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// EncodeCSV renders the comment-prefixed header block:
//
//	#Procedure: <module.Class>
//	#Parameters:
//	#	Name: value
//	#Data:
func (h Header) EncodeCSV() string {
	lines := make([]string, 0, len(h.Params)+3)
	lines = append(lines, fmt.Sprintf("Procedure: <%s>", h.Identity))
	lines = append(lines, "Parameters:")
	for _, p := range h.Params {
		lines = append(lines, fmt.Sprintf("\t%s: %s", p.Name, escapeValue(p.Value)))
	}
	lines = append(lines, "Data:")
	for i, line := range lines {
		lines[i] = commentPrefix + line
	}
	return strings.Join(lines, lineBreak) + lineBreak
}

// LineCount returns the number of lines EncodeCSV produces, used for
// row-count based skipping on incremental reloads.
func (h Header) LineCount() int {
	return len(h.Params) + 3
}

var identityPattern = regexp.MustCompile(`<(?:(?P<module>[^>]+)\.)?(?P<class>[^.>]+)>`)

func parseIdentityTag(s string) (procedure.Identity, bool) {
	m := identityPattern.FindStringSubmatch(s)
	if m == nil {
		return procedure.Identity{}, false
	}
	return procedure.Identity{Module: m[1], Class: m[2]}, true
}

// DecodeCSVHeader parses a comment block produced by EncodeCSV. Every
// non-blank line must be commented; an uncommented line is a fatal
// ErrMalformedHeader. Parameter values stay raw text.
func DecodeCSVHeader(text string) (Header, error) {
	var h Header
	sawIdentity := false
	for _, line := range strings.Split(text, lineBreak) {
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, commentPrefix) {
			return Header{}, fmt.Errorf("%w: uncommented line %q", ErrMalformedHeader, line)
		}
		line = strings.TrimPrefix(line, commentPrefix)
		switch {
		case strings.HasPrefix(line, "Procedure"):
			ident, ok := parseIdentityTag(line)
			if !ok {
				return Header{}, fmt.Errorf("%w: unparseable procedure line %q", ErrMalformedHeader, line)
			}
			h.Identity = ident
			sawIdentity = true
		case strings.HasPrefix(line, "\t"):
			name, value, found := strings.Cut(line[1:], ": ")
			if !found {
				return Header{}, fmt.Errorf("%w: unpartitionable parameter line %q", ErrMalformedHeader, line)
			}
			h.Params = append(h.Params, HeaderParam{Name: name, Value: unescapeValue(value)})
		}
	}
	if !sawIdentity {
		return Header{}, fmt.Errorf("%w: missing procedure identity", ErrMalformedHeader)
	}
	return h, nil
}
