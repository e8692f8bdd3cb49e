package results

import (
	"encoding/json"
	"fmt"
	"sort"

	"benchcore/pkg/procedure"
)

// procedureKey is the pseudo-parameter carrying the identity tag inside the
// JSON header object.
const procedureKey = "Procedure"

// EncodeJSONHeader renders the header as a JSON object of parameter
// name to native value pairs, with the identity stored under "Procedure"
// as "<module.Class>". The returned string is the key of the data file's
// single top-level object.
func EncodeJSONHeader(ident procedure.Identity, params *procedure.ParameterSet) (string, error) {
	obj := map[string]any{procedureKey: fmt.Sprintf("<%s>", ident)}
	params.Each(func(p procedure.Parameter) {
		obj[p.Name()] = p.Value()
	})
	payload, err := json.Marshal(obj)
	if err != nil {
		return "", fmt.Errorf("results: encode json header: %w", err)
	}
	return string(payload), nil
}

// DecodeJSONHeader parses a header produced by EncodeJSONHeader. The
// identity tag is separated out; remaining values become raw-text
// parameters sorted by name, since JSON objects carry no order.
func DecodeJSONHeader(header string) (Header, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(header), &obj); err != nil {
		return Header{}, fmt.Errorf("%w: %v", ErrMalformedHeader, err)
	}
	tag, ok := obj[procedureKey].(string)
	if !ok {
		return Header{}, fmt.Errorf("%w: missing procedure identity", ErrMalformedHeader)
	}
	ident, ok := parseIdentityTag(tag)
	if !ok {
		return Header{}, fmt.Errorf("%w: unparseable procedure tag %q", ErrMalformedHeader, tag)
	}
	h := Header{Identity: ident}
	names := make([]string, 0, len(obj))
	for name := range obj {
		if name != procedureKey {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		h.Params = append(h.Params, HeaderParam{Name: name, Value: jsonValueText(obj[name])})
	}
	return h, nil
}

// jsonValueText renders a decoded JSON value the way parameters serialize
// themselves, so Set round-trips.
func jsonValueText(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		if x {
			return "true"
		}
		return "false"
	case float64:
		return formatFloatValue(x)
	case nil:
		return ""
	default:
		payload, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprintf("%v", x)
		}
		return string(payload)
	}
}
