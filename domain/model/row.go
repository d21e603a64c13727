package model

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Schema is the ordered column list shared by all rows of a table or result.
type Schema struct {
	columns []string
	exact   map[string]int
	folded  map[string]int
}

// NewSchema creates a schema. When a name repeats, the first occurrence wins.
func NewSchema(columns []string) *Schema {
	s := &Schema{
		columns: make([]string, 0, len(columns)),
		exact:   make(map[string]int, len(columns)),
		folded:  make(map[string]int, len(columns)),
	}
	for _, c := range columns {
		s.add(c)
	}
	return s
}

func (s *Schema) add(name string) int {
	if i, ok := s.exact[name]; ok {
		return i
	}
	i := len(s.columns)
	s.columns = append(s.columns, name)
	s.exact[name] = i
	if _, ok := s.folded[strings.ToLower(name)]; !ok {
		s.folded[strings.ToLower(name)] = i
	}
	return i
}

// Columns returns the ordered column names
func (s *Schema) Columns() []string {
	return s.columns
}

// Len returns the number of columns
func (s *Schema) Len() int {
	return len(s.columns)
}

// Position returns the position of a column by exact name
func (s *Schema) Position(name string) (int, bool) {
	i, ok := s.exact[name]
	return i, ok
}

// Index returns the position of a column, matching case-insensitively
// with exact-match priority.
func (s *Schema) Index(name string) (int, bool) {
	if i, ok := s.exact[name]; ok {
		return i, true
	}
	i, ok := s.folded[strings.ToLower(name)]
	return i, ok
}

// NewRow creates a row on this schema. Missing trailing values are Null.
func (s *Schema) NewRow(values []Value) Row {
	vs := make([]Value, len(s.columns))
	copy(vs, values)
	return Row{schema: s, values: vs}
}

// Row is an ordered mapping from column name to Value.
type Row struct {
	schema *Schema
	values []Value
}

// Schema returns the row schema
func (r Row) Schema() *Schema {
	return r.schema
}

// Columns returns the ordered column names
func (r Row) Columns() []string {
	if r.schema == nil {
		return nil
	}
	return r.schema.columns
}

// Values returns the ordered values
func (r Row) Values() []Value {
	return r.values
}

// Get returns the value of a column by exact name
func (r Row) Get(name string) (Value, bool) {
	if r.schema == nil {
		return Null(), false
	}
	i, ok := r.schema.exact[name]
	if !ok {
		return Null(), false
	}
	return r.values[i], true
}

// Lookup returns the value of a column, matching case-insensitively with
// exact-match priority.
func (r Row) Lookup(name string) (Value, bool) {
	if r.schema == nil {
		return Null(), false
	}
	i, ok := r.schema.Index(name)
	if !ok {
		return Null(), false
	}
	return r.values[i], true
}

// At returns the value at position i
func (r Row) At(i int) Value {
	if i < 0 || i >= len(r.values) {
		return Null()
	}
	return r.values[i]
}

// Map returns the row as a map of plain Go values
func (r Row) Map() map[string]any {
	m := make(map[string]any, len(r.values))
	for i, c := range r.Columns() {
		m[c] = r.values[i].Interface()
	}
	return m
}

// Equal compares columns and values
func (r Row) Equal(r2 Row) bool {
	c1, c2 := r.Columns(), r2.Columns()
	if len(c1) != len(c2) {
		return false
	}
	for i := range c1 {
		if c1[i] != c2[i] || !r.values[i].Equal(r2.values[i]) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the row as a JSON object preserving column order
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r.Columns() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := r.values[i].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
