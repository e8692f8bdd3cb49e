package results

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"benchcore/pkg/quantity"
)

// unitsPattern extracts a unit expression embedded in a column label, e.g.
// "Voltage (V)" or "Speed (m/s)".
var unitsPattern = regexp.MustCompile(`\((?P<units>[\w/*.^%µΩ-]+)\)$`)

// Formatter turns measurement records into delimited data lines and back.
// Columns whose labels embed a unit have their values normalized to that
// unit at format time; a value that cannot be expressed in the column's
// unit is written as "nan" with a warning, never an error.
type Formatter struct {
	columns []string
	units   map[string]quantity.Unit
	diag    Diagnostics
	metrics MetricsRecorder
}

// NewFormatter builds a formatter for the declared columns, parsing unit
// tags out of the labels. diag and metrics may be nil.
func NewFormatter(columns []string, diag Diagnostics, metrics MetricsRecorder) *Formatter {
	if diag == nil {
		diag = NopDiagnostics{}
	}
	if metrics == nil {
		metrics = NopMetrics{}
	}
	f := &Formatter{
		columns: append([]string(nil), columns...),
		units:   make(map[string]quantity.Unit),
		diag:    diag,
		metrics: metrics,
	}
	for _, column := range f.columns {
		m := unitsPattern.FindStringSubmatch(column)
		if m == nil {
			continue
		}
		unit, err := quantity.ParseUnit(m[1])
		if err != nil {
			diag.Debug("column label tag is not a unit", "column", column, "tag", m[1])
			continue
		}
		f.units[column] = unit
	}
	return f
}

// Columns returns the column names in order.
func (f *Formatter) Columns() []string {
	return append([]string(nil), f.columns...)
}

// Labels returns the column-name line written after the header block.
func (f *Formatter) Labels() string {
	return strings.Join(f.columns, delimiter) + lineBreak
}

// Format renders one record as a delimited line (without trailing newline).
// Missing columns are written as "nan".
func (f *Formatter) Format(record map[string]any) string {
	fields := make([]string, len(f.columns))
	for i, column := range f.columns {
		value, ok := record[column]
		if !ok {
			fields[i] = "nan"
			continue
		}
		if unit, tagged := f.units[column]; tagged {
			fields[i] = f.formatTagged(column, unit, value)
		} else {
			fields[i] = f.formatUntagged(column, value)
		}
	}
	return strings.Join(fields, delimiter)
}

// formatTagged normalizes a value into the column's declared unit.
func (f *Formatter) formatTagged(column string, unit quantity.Unit, value any) string {
	switch v := value.(type) {
	case quantity.Quantity:
		converted, err := v.ConvertTo(unit)
		if err != nil {
			f.warnUnit(column, "value does not have the column unit", "value", v.String())
			return "nan"
		}
		return quantity.FormatFloat(converted)
	case string:
		q, err := quantity.Parse(v)
		if err != nil {
			f.warnUnit(column, "value cannot be parsed as a quantity", "value", v)
			return "nan"
		}
		if q.Dimensionless() {
			// A bare number is taken as already expressed in the column unit.
			return quantity.FormatFloat(q.Value)
		}
		converted, err := q.ConvertTo(unit)
		if err != nil {
			f.warnUnit(column, "value does not have the column unit", "value", v)
			return "nan"
		}
		return quantity.FormatFloat(converted)
	case bool:
		f.warnUnit(column, "boolean written to a unit column", "value", strconv.FormatBool(v))
		return "nan"
	case float64:
		return quantity.FormatFloat(v)
	case float32:
		return quantity.FormatFloat(float64(v))
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		f.warnUnit(column, "value type unsupported for a unit column", "value", fmt.Sprintf("%v", v))
		return "nan"
	}
}

// formatUntagged renders a value for a unit-less column. A unit-bearing
// quantity fixes the column's unit to its base form from then on.
func (f *Formatter) formatUntagged(column string, value any) string {
	if q, ok := value.(quantity.Quantity); ok {
		if q.Dimensionless() {
			return quantity.FormatFloat(q.Value)
		}
		base := q.Base()
		f.units[column] = base.Unit
		f.diag.Info("column unit fixed from first value", "column", column, "unit", base.Unit.Symbol)
		return quantity.FormatFloat(base.Value)
	}
	return formatValue(value)
}

func (f *Formatter) warnUnit(column, msg string, args ...any) {
	f.diag.Warn(msg, append([]any{"column", column}, args...)...)
	f.metrics.IncUnitWarning(column)
}

// Parse splits one data line into a column-name keyed map of raw strings.
func (f *Formatter) Parse(line string) map[string]string {
	items := strings.Split(strings.TrimSuffix(line, lineBreak), delimiter)
	record := make(map[string]string, len(f.columns))
	for i, column := range f.columns {
		if i < len(items) {
			record[column] = items[i]
		} else {
			record[column] = "nan"
		}
	}
	return record
}

// formatValue renders an arbitrary scalar the way data files store it.
func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "nan"
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return quantity.FormatFloat(v)
	case float32:
		return quantity.FormatFloat(float64(v))
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// formatFloatValue renders a float for JSON header text: integral values
// drop the trailing ".0" to match native JSON number encoding.
func formatFloatValue(v float64) string {
	if v == math.Trunc(v) && !math.IsInf(v, 0) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return quantity.FormatFloat(v)
}
