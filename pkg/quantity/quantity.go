// Package quantity implements physical quantities with SI units: parsing of
// textual forms such as "1000 mV", dimensional analysis, and conversion
// between compatible units. It backs the unit normalization applied when
// measurement values are written to unit-tagged result columns.
package quantity

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Dimension is an exponent vector over the seven SI base dimensions, in the
// order length (m), mass (kg), time (s), current (A), temperature (K),
// amount (mol), luminous intensity (cd).
type Dimension [7]int

// IsZero reports whether the dimension is dimensionless.
func (d Dimension) IsZero() bool {
	for _, e := range d {
		if e != 0 {
			return false
		}
	}
	return true
}

var baseSymbols = [7]string{"m", "kg", "s", "A", "K", "mol", "cd"}

// String renders the dimension as a product of base symbols, e.g. "m.s^-2".
func (d Dimension) String() string {
	if d.IsZero() {
		return "1"
	}
	parts := make([]string, 0, len(d))
	for i, e := range d {
		switch {
		case e == 0:
		case e == 1:
			parts = append(parts, baseSymbols[i])
		default:
			parts = append(parts, fmt.Sprintf("%s^%d", baseSymbols[i], e))
		}
	}
	return strings.Join(parts, ".")
}

func (d Dimension) add(o Dimension) Dimension {
	var out Dimension
	for i := range d {
		out[i] = d[i] + o[i]
	}
	return out
}

func (d Dimension) scale(n int) Dimension {
	var out Dimension
	for i := range d {
		out[i] = d[i] * n
	}
	return out
}

// Unit is a named scale factor with a dimension. Factor converts a value in
// the unit to SI base units.
type Unit struct {
	Symbol string
	Factor float64
	Dim    Dimension
}

// Dimensionless is the unit of bare numbers.
var Dimensionless = Unit{Factor: 1}

// Quantity pairs a numeric value with its unit.
type Quantity struct {
	Value float64
	Unit  Unit
}

// UnknownUnitError reports a unit token that is not in the unit table.
type UnknownUnitError struct {
	Symbol string
}

func (e *UnknownUnitError) Error() string {
	return fmt.Sprintf("quantity: unknown unit %q", e.Symbol)
}

// DimensionError reports a conversion between incompatible dimensions.
type DimensionError struct {
	From, To Unit
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("quantity: cannot convert %s (%s) to %s (%s)",
		e.From.Symbol, e.From.Dim, e.To.Symbol, e.To.Dim)
}

func dim(m, kg, s, a, k, mol, cd int) Dimension {
	return Dimension{m, kg, s, a, k, mol, cd}
}

// namedUnits maps unit symbols to their definition. Whole-symbol lookup wins
// over prefix splitting, so "mol" is mole rather than milli-ol and "T" is
// tesla rather than the tera prefix.
var namedUnits = map[string]Unit{
	"m":   {Symbol: "m", Factor: 1, Dim: dim(1, 0, 0, 0, 0, 0, 0)},
	"g":   {Symbol: "g", Factor: 1e-3, Dim: dim(0, 1, 0, 0, 0, 0, 0)},
	"s":   {Symbol: "s", Factor: 1, Dim: dim(0, 0, 1, 0, 0, 0, 0)},
	"A":   {Symbol: "A", Factor: 1, Dim: dim(0, 0, 0, 1, 0, 0, 0)},
	"K":   {Symbol: "K", Factor: 1, Dim: dim(0, 0, 0, 0, 1, 0, 0)},
	"mol": {Symbol: "mol", Factor: 1, Dim: dim(0, 0, 0, 0, 0, 1, 0)},
	"cd":  {Symbol: "cd", Factor: 1, Dim: dim(0, 0, 0, 0, 0, 0, 1)},

	"Hz":  {Symbol: "Hz", Factor: 1, Dim: dim(0, 0, -1, 0, 0, 0, 0)},
	"N":   {Symbol: "N", Factor: 1, Dim: dim(1, 1, -2, 0, 0, 0, 0)},
	"Pa":  {Symbol: "Pa", Factor: 1, Dim: dim(-1, 1, -2, 0, 0, 0, 0)},
	"J":   {Symbol: "J", Factor: 1, Dim: dim(2, 1, -2, 0, 0, 0, 0)},
	"W":   {Symbol: "W", Factor: 1, Dim: dim(2, 1, -3, 0, 0, 0, 0)},
	"C":   {Symbol: "C", Factor: 1, Dim: dim(0, 0, 1, 1, 0, 0, 0)},
	"V":   {Symbol: "V", Factor: 1, Dim: dim(2, 1, -3, -1, 0, 0, 0)},
	"F":   {Symbol: "F", Factor: 1, Dim: dim(-2, -1, 4, 2, 0, 0, 0)},
	"ohm": {Symbol: "ohm", Factor: 1, Dim: dim(2, 1, -3, -2, 0, 0, 0)},
	"S":   {Symbol: "S", Factor: 1, Dim: dim(-2, -1, 3, 2, 0, 0, 0)},
	"Wb":  {Symbol: "Wb", Factor: 1, Dim: dim(2, 1, -2, -1, 0, 0, 0)},
	"T":   {Symbol: "T", Factor: 1, Dim: dim(0, 1, -2, -1, 0, 0, 0)},
	"H":   {Symbol: "H", Factor: 1, Dim: dim(2, 1, -2, -2, 0, 0, 0)},

	"min": {Symbol: "min", Factor: 60, Dim: dim(0, 0, 1, 0, 0, 0, 0)},
	"h":   {Symbol: "h", Factor: 3600, Dim: dim(0, 0, 1, 0, 0, 0, 0)},
	"L":   {Symbol: "L", Factor: 1e-3, Dim: dim(3, 0, 0, 0, 0, 0, 0)},
	"%":   {Symbol: "%", Factor: 1e-2, Dim: Dimension{}},
}

// unitAliases maps spelled-out unit names, as they appear in hand-written
// headers, to table symbols.
var unitAliases = map[string]string{
	"meter": "m", "meters": "m", "metre": "m", "metres": "m",
	"gram": "g", "grams": "g",
	"sec": "s", "second": "s", "seconds": "s",
	"minute": "min", "minutes": "min",
	"hour": "h", "hours": "h",
	"amp": "A", "amps": "A", "ampere": "A", "amperes": "A",
	"kelvin": "K",
	"hertz":  "Hz",
	"newton": "N", "newtons": "N",
	"pascal": "Pa", "pascals": "Pa",
	"joule": "J", "joules": "J",
	"watt": "W", "watts": "W",
	"coulomb": "C", "coulombs": "C",
	"volt": "V", "volts": "V",
	"farad": "F", "farads": "F",
	"Ohm": "ohm", "ohms": "ohm", "Ω": "ohm",
	"siemens": "S",
	"tesla":   "T",
	"henry":   "H",
	"liter":   "L", "liters": "L", "litre": "L", "litres": "L",
	"percent": "%",
}

// Prefixes that collide with unit symbols ("T", "h", "m") are resolved by
// trying the whole symbol first; they act as prefixes only when no named
// unit matches the full token.
var siPrefixes = map[string]float64{
	"y": 1e-24, "z": 1e-21, "a": 1e-18, "f": 1e-15, "p": 1e-12,
	"n": 1e-9, "u": 1e-6, "µ": 1e-6, "m": 1e-3, "c": 1e-2, "d": 1e-1,
	"da": 1e1, "h": 1e2, "k": 1e3, "M": 1e6, "G": 1e9, "T": 1e12,
	"P": 1e15, "E": 1e18, "Z": 1e21, "Y": 1e24,
}

func lookupSymbol(token string) (Unit, bool) {
	if u, ok := namedUnits[token]; ok {
		return u, true
	}
	if sym, ok := unitAliases[token]; ok {
		return namedUnits[sym], true
	}
	if sym, ok := unitAliases[strings.ToLower(token)]; ok {
		return namedUnits[sym], true
	}
	return Unit{}, false
}

// parseToken resolves a single unit token (no operators), trying the whole
// symbol first and an SI prefix split second.
func parseToken(token string) (Unit, error) {
	if u, ok := lookupSymbol(token); ok {
		return u, nil
	}
	for _, n := range []int{2, 1} {
		if len(token) <= n {
			continue
		}
		factor, ok := siPrefixes[token[:n]]
		if !ok {
			continue
		}
		if u, found := lookupSymbol(token[n:]); found {
			u.Symbol = token
			u.Factor *= factor
			return u, nil
		}
	}
	return Unit{}, &UnknownUnitError{Symbol: token}
}

// splitExponent separates a trailing integer exponent, accepting "m2", "m^2"
// and "s^-1" forms.
func splitExponent(token string) (string, int) {
	body := token
	if i := strings.IndexByte(body, '^'); i >= 0 {
		if n, err := strconv.Atoi(body[i+1:]); err == nil {
			return body[:i], n
		}
		return token, 1
	}
	j := len(body)
	for j > 0 && body[j-1] >= '0' && body[j-1] <= '9' {
		j--
	}
	if j == len(body) || j == 0 {
		return token, 1
	}
	n, err := strconv.Atoi(body[j:])
	if err != nil {
		return token, 1
	}
	return body[:j], n
}

// ParseUnit parses a unit expression: single tokens ("mV"), products
// ("V*s") and quotients ("m/s"), with optional integer exponents ("m/s2").
func ParseUnit(s string) (Unit, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Dimensionless, nil
	}
	result := Unit{Symbol: s, Factor: 1}
	sign := 1
	start := 0
	apply := func(token string, sgn int) error {
		token = strings.TrimSpace(token)
		if token == "" {
			return &UnknownUnitError{Symbol: s}
		}
		body, exp := splitExponent(token)
		u, err := parseToken(body)
		if err != nil {
			return err
		}
		exp *= sgn
		result.Factor *= math.Pow(u.Factor, float64(exp))
		result.Dim = result.Dim.add(u.Dim.scale(exp))
		return nil
	}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '*', '.':
			if err := apply(s[start:i], sign); err != nil {
				return Unit{}, err
			}
			sign = 1
			start = i + 1
		case '/':
			if err := apply(s[start:i], sign); err != nil {
				return Unit{}, err
			}
			sign = -1
			start = i + 1
		}
	}
	if err := apply(s[start:], sign); err != nil {
		return Unit{}, err
	}
	return result, nil
}

// Parse parses a textual quantity such as "1000 mV", "2.5" or "4.2e-6 A".
// A bare number yields a dimensionless quantity.
func Parse(s string) (Quantity, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Quantity{}, fmt.Errorf("quantity: empty input")
	}
	end := numericPrefixLen(s)
	if end == 0 {
		return Quantity{}, fmt.Errorf("quantity: no leading number in %q", s)
	}
	value, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return Quantity{}, fmt.Errorf("quantity: parse number %q: %w", s[:end], err)
	}
	unit, err := ParseUnit(s[end:])
	if err != nil {
		return Quantity{}, err
	}
	return Quantity{Value: value, Unit: unit}, nil
}

// numericPrefixLen returns the length of the longest leading substring that
// parses as a float.
func numericPrefixLen(s string) int {
	best := 0
	for i := 1; i <= len(s); i++ {
		if _, err := strconv.ParseFloat(s[:i], 64); err == nil {
			best = i
		}
	}
	return best
}

// ConvertTo converts the quantity's value into the target unit. Incompatible
// dimensions yield a *DimensionError.
func (q Quantity) ConvertTo(target Unit) (float64, error) {
	if q.Unit.Dim != target.Dim {
		return 0, &DimensionError{From: q.Unit, To: target}
	}
	return q.Value * q.Unit.Factor / target.Factor, nil
}

// Dimensionless reports whether the quantity carries no dimension.
func (q Quantity) Dimensionless() bool {
	return q.Unit.Dim.IsZero()
}

// Base returns the quantity expressed in SI base units.
func (q Quantity) Base() Quantity {
	return Quantity{
		Value: q.Value * q.Unit.Factor,
		Unit:  Unit{Symbol: q.Unit.Dim.String(), Factor: 1, Dim: q.Unit.Dim},
	}
}

// String renders the quantity in its own unit, e.g. "2.5 V".
func (q Quantity) String() string {
	if q.Unit.Symbol == "" {
		return FormatFloat(q.Value)
	}
	return FormatFloat(q.Value) + " " + q.Unit.Symbol
}

// FormatFloat renders a float the way result files store numbers: shortest
// representation that round-trips, with a ".0" kept on integral values so
// "1" and "1.0" stay distinguishable from integer columns.
func FormatFloat(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	if math.IsInf(v, 1) {
		return "inf"
	}
	if math.IsInf(v, -1) {
		return "-inf"
	}
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
