package repository

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Params maps placeholder names to values.
type Params map[string]any

// Row is one result record. Columns keep the order reported by the engine.
type Row struct {
	columns []string
	values  []any
}

// NewRow pairs columns with values. Extra values are dropped and missing
// values are nil.
func NewRow(columns []string, values []any) Row {
	row := Row{
		columns: append([]string(nil), columns...),
		values:  make([]any, len(columns)),
	}
	copy(row.values, values)
	return row
}

// Len returns the number of columns.
func (r Row) Len() int { return len(r.columns) }

// Columns returns the column names in order.
func (r Row) Columns() []string {
	return append([]string(nil), r.columns...)
}

// Values returns the values in column order.
func (r Row) Values() []any {
	return append([]any(nil), r.values...)
}

// Get returns the value of the first column named column.
func (r Row) Get(column string) (any, bool) {
	for i, c := range r.columns {
		if c == column {
			return r.values[i], true
		}
	}
	return nil, false
}

// Int64 returns column as an integer. Engines report integers as int64 but
// numeric strings and whole floats are accepted too.
func (r Row) Int64(column string) (int64, bool) {
	value, ok := r.Get(column)
	if !ok {
		return 0, false
	}

	switch v := value.(type) {
	case int64:
		return v, true
	case int32:
		return int64(v), true
	case int:
		return int64(v), true
	case float64:
		if v == float64(int64(v)) {
			return int64(v), true
		}
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

// Float64 returns column as a float.
func (r Row) Float64(column string) (float64, bool) {
	value, ok := r.Get(column)
	if !ok {
		return 0, false
	}

	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// String renders column for display. NULL becomes the empty string.
func (r Row) String(column string) string {
	value, ok := r.Get(column)
	if !ok || value == nil {
		return ""
	}
	return fmt.Sprint(value)
}

// Map returns the row as a map. When a column name repeats, the first value
// wins, as with Get.
func (r Row) Map() map[string]any {
	m := make(map[string]any, len(r.columns))
	for i, c := range r.columns {
		if _, dup := m[c]; !dup {
			m[c] = r.values[i]
		}
	}
	return m
}

// MarshalJSON encodes the row as an object with keys in column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	seen := make(map[string]struct{}, len(r.columns))
	first := true
	for i, c := range r.columns {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}

		key, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(r.values[i])
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", c, err)
		}

		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ResultSet is the ordered list of rows a lookup produced. It is empty both
// when nothing matched and when the lookup failed.
type ResultSet []Row

// Empty reports whether the set has no rows.
func (rs ResultSet) Empty() bool { return len(rs) == 0 }

// Columns returns the column names of the first row, or nil.
func (rs ResultSet) Columns() []string {
	if len(rs) == 0 {
		return nil
	}
	return rs[0].Columns()
}

// normalizeValue converts driver values to plain Go values. Text columns
// can arrive as []byte and are turned into strings.
func normalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
