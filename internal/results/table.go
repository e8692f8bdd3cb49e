package results

import "fmt"

// Table is the in-memory form of a result file's data section: an ordered
// column list plus row-major string values. Values stay raw text; type
// coercion is the caller's concern.
type Table struct {
	columns []string
	rows    [][]string
}

// NewTable constructs an empty table shaped by the given columns.
func NewTable(columns []string) *Table {
	return &Table{columns: append([]string(nil), columns...)}
}

// Columns returns the column names in declared order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Append adds one row; the value count must match the column count.
func (t *Table) Append(values []string) error {
	if len(values) != len(t.columns) {
		return fmt.Errorf("results: row has %d values, table has %d columns", len(values), len(t.columns))
	}
	t.rows = append(t.rows, append([]string(nil), values...))
	return nil
}

// Row returns row i as a column-name keyed map.
func (t *Table) Row(i int) map[string]string {
	out := make(map[string]string, len(t.columns))
	for j, col := range t.columns {
		out[col] = t.rows[i][j]
	}
	return out
}

// Records returns all rows as column-name keyed maps, in append order.
func (t *Table) Records() []map[string]string {
	out := make([]map[string]string, 0, len(t.rows))
	for i := range t.rows {
		out = append(out, t.Row(i))
	}
	return out
}

// Values returns the raw values of row i in column order.
func (t *Table) Values(i int) []string {
	return append([]string(nil), t.rows[i]...)
}
