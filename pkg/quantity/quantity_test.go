package quantity

import (
	"errors"
	"math"
	"testing"
)

func TestParseUnitPrefixes(t *testing.T) {
	cases := []struct {
		in     string
		factor float64
	}{
		{"mV", 1e-3},
		{"kV", 1e3},
		{"uA", 1e-6},
		{"µA", 1e-6},
		{"GHz", 1e9},
		{"ms", 1e-3},
		{"das", 1e1},
	}
	for _, tc := range cases {
		u, err := ParseUnit(tc.in)
		if err != nil {
			t.Fatalf("ParseUnit(%q): %v", tc.in, err)
		}
		if math.Abs(u.Factor-tc.factor)/tc.factor > 1e-12 {
			t.Fatalf("ParseUnit(%q) factor = %g, want %g", tc.in, u.Factor, tc.factor)
		}
	}
}

func TestParseUnitWholeSymbolBeatsPrefix(t *testing.T) {
	// "T" is tesla, not the tera prefix; "h" is hour, not hecto; "mol" is
	// mole, not milli-anything.
	for _, sym := range []string{"T", "h", "mol", "min", "Pa", "cd"} {
		u, err := ParseUnit(sym)
		if err != nil {
			t.Fatalf("ParseUnit(%q): %v", sym, err)
		}
		if u.Symbol != sym {
			t.Fatalf("ParseUnit(%q) resolved to %q", sym, u.Symbol)
		}
	}
}

func TestParseUnitCompound(t *testing.T) {
	ms, err := ParseUnit("m/s")
	if err != nil {
		t.Fatalf("ParseUnit(m/s): %v", err)
	}
	want := Dimension{1, 0, -1, 0, 0, 0, 0}
	if ms.Dim != want {
		t.Fatalf("m/s dim = %v, want %v", ms.Dim, want)
	}
	accel, err := ParseUnit("m/s2")
	if err != nil {
		t.Fatalf("ParseUnit(m/s2): %v", err)
	}
	if accel.Dim != (Dimension{1, 0, -2, 0, 0, 0, 0}) {
		t.Fatalf("m/s2 dim = %v", accel.Dim)
	}
	vs, err := ParseUnit("V*s")
	if err != nil {
		t.Fatalf("ParseUnit(V*s): %v", err)
	}
	wb := namedUnits["Wb"]
	if vs.Dim != wb.Dim {
		t.Fatalf("V*s dim = %v, want weber %v", vs.Dim, wb.Dim)
	}
	if _, err := ParseUnit("s^-1"); err != nil {
		t.Fatalf("ParseUnit(s^-1): %v", err)
	}
}

func TestParseUnitAliases(t *testing.T) {
	for in, symbol := range map[string]string{
		"seconds": "s",
		"volts":   "V",
		"Ohm":     "ohm",
		"Ω":       "ohm",
		"percent": "%",
	} {
		u, err := ParseUnit(in)
		if err != nil {
			t.Fatalf("ParseUnit(%q): %v", in, err)
		}
		if u.Dim != namedUnits[symbol].Dim {
			t.Fatalf("ParseUnit(%q) dim = %v, want %v", in, u.Dim, namedUnits[symbol].Dim)
		}
	}
}

func TestParseUnitUnknown(t *testing.T) {
	_, err := ParseUnit("flux")
	var unknown *UnknownUnitError
	if !errors.As(err, &unknown) {
		t.Fatalf("ParseUnit(flux) error = %v, want UnknownUnitError", err)
	}
}

func TestParseQuantity(t *testing.T) {
	q, err := Parse("1000 mV")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	volts, _ := ParseUnit("V")
	v, err := q.ConvertTo(volts)
	if err != nil {
		t.Fatalf("ConvertTo: %v", err)
	}
	if v != 1.0 {
		t.Fatalf("1000 mV = %g V, want 1", v)
	}

	bare, err := Parse("2.5")
	if err != nil {
		t.Fatalf("Parse(2.5): %v", err)
	}
	if !bare.Dimensionless() || bare.Value != 2.5 {
		t.Fatalf("Parse(2.5) = %+v", bare)
	}

	sci, err := Parse("4.2e-6 A")
	if err != nil {
		t.Fatalf("Parse(4.2e-6 A): %v", err)
	}
	if sci.Value != 4.2e-6 {
		t.Fatalf("Parse(4.2e-6 A) value = %g", sci.Value)
	}

	if _, err := Parse("volts"); err == nil {
		t.Fatal("Parse(volts) should fail without a leading number")
	}
}

func TestConvertToDimensionError(t *testing.T) {
	q, err := Parse("5 s")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	volts, _ := ParseUnit("V")
	_, err = q.ConvertTo(volts)
	var dimErr *DimensionError
	if !errors.As(err, &dimErr) {
		t.Fatalf("ConvertTo error = %v, want DimensionError", err)
	}
}

func TestBase(t *testing.T) {
	q, err := Parse("2 min")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	base := q.Base()
	if base.Value != 120 {
		t.Fatalf("2 min base value = %g, want 120", base.Value)
	}
	if base.Unit.Factor != 1 {
		t.Fatalf("base unit factor = %g", base.Unit.Factor)
	}
}

func TestFormatFloat(t *testing.T) {
	cases := map[float64]string{
		1:    "1.0",
		2.5:  "2.5",
		-3:   "-3.0",
		0:    "0.0",
		1e-9: "1e-09",
	}
	for in, want := range cases {
		if got := FormatFloat(in); got != want {
			t.Fatalf("FormatFloat(%v) = %q, want %q", in, got, want)
		}
	}
	if got := FormatFloat(math.NaN()); got != "nan" {
		t.Fatalf("FormatFloat(NaN) = %q", got)
	}
	if got := FormatFloat(math.Inf(1)); got != "inf" {
		t.Fatalf("FormatFloat(+Inf) = %q", got)
	}
	if got := FormatFloat(math.Inf(-1)); got != "-inf" {
		t.Fatalf("FormatFloat(-Inf) = %q", got)
	}
}
