// pkg/model/record.go
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SourceRecord is one spreadsheet row keyed by raw header text
type SourceRecord struct {
	Line  int            // 1-based line in the source file, header is line 1
	Cells map[string]any // raw header -> cell value
}

// CanonicalRecord is a SourceRecord after header resolution.
// Fields holds every canonical field of the schema, nil when the source lacks it.
type CanonicalRecord struct {
	Line   int
	Fields map[string]any
	Extras map[string]any // unrecognized headers, passed through for audit
}

// TypedRecord is a CanonicalRecord after coercion
type TypedRecord struct {
	Line   int
	Fields map[string]any
	Extras map[string]any
}

// Value returns the typed value of a field, nil when null
func (r TypedRecord) Value(name string) any {
	return r.Fields[name]
}

// String returns a string field and whether it is non-null
func (r TypedRecord) String(name string) (string, bool) {
	s, ok := r.Fields[name].(string)
	return s, ok
}

// Int returns an integer field and whether it is non-null
func (r TypedRecord) Int(name string) (int64, bool) {
	i, ok := r.Fields[name].(int64)
	return i, ok
}

// Decimal returns a decimal field and whether it is non-null
func (r TypedRecord) Decimal(name string) (decimal.Decimal, bool) {
	d, ok := r.Fields[name].(decimal.Decimal)
	return d, ok
}

// DecimalOrZero returns a decimal field, substituting zero for null
func (r TypedRecord) DecimalOrZero(name string) decimal.Decimal {
	d, ok := r.Decimal(name)
	if !ok {
		return decimal.Zero
	}
	return d
}

// Date returns a date field and whether it is non-null
func (r TypedRecord) Date(name string) (time.Time, bool) {
	t, ok := r.Fields[name].(time.Time)
	return t, ok
}

// Bool returns a boolean field and whether it is non-null
func (r TypedRecord) Bool(name string) (bool, bool) {
	b, ok := r.Fields[name].(bool)
	return b, ok
}

// Row is a flat mapping of destination column -> typed value
type Row map[string]any

// Clone returns a shallow copy of the row
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// RowSet is a fixed-shape batch of rows bound for one destination table
type RowSet struct {
	Table   string
	Columns []string
	Rows    []Row
}

// Len returns the number of rows
func (s RowSet) Len() int {
	return len(s.Rows)
}

// Values returns the rows as positional value slices in column order
func (s RowSet) Values() [][]any {
	out := make([][]any, len(s.Rows))
	for i, row := range s.Rows {
		vals := make([]any, len(s.Columns))
		for j, col := range s.Columns {
			vals[j] = row[col]
		}
		out[i] = vals
	}
	return out
}
