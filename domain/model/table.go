package model

import (
	"path/filepath"
	"strings"
)

// Table represents file contents as an ordered, typed table.
type Table struct {
	// name is table name derived from the source location.
	name string
	// header is table header.
	header Header
	// columnInfo contains inferred type information for each column
	columnInfo []ColumnInfo
	schema     *Schema
	rows       []Row
}

// NewTable creates a new Table, inferring column types from the records and
// typing every cell accordingly.
func NewTable(
	name string,
	header Header,
	records []Record,
) *Table {
	columnInfo := InferColumnsInfo(header, records)
	schema := NewSchema(header)

	rows := make([]Row, 0, len(records))
	for _, record := range records {
		values := make([]Value, len(header))
		for i := range header {
			if i < len(record) {
				values[i] = TypedValue(record[i], columnInfo[i].Type)
			}
		}
		rows = append(rows, schema.NewRow(values))
	}

	return &Table{
		name:       name,
		header:     header,
		columnInfo: columnInfo,
		schema:     schema,
		rows:       rows,
	}
}

// Name return table name.
func (t *Table) Name() string {
	return t.name
}

// Header return table header.
func (t *Table) Header() Header {
	return t.header
}

// ColumnInfo returns column information with inferred types
func (t *Table) ColumnInfo() []ColumnInfo {
	return t.columnInfo
}

// Schema returns the schema shared by all rows
func (t *Table) Schema() *Schema {
	return t.schema
}

// Rows returns the typed rows in source order
func (t *Table) Rows() []Row {
	return t.rows
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.rows)
}

// Prefix returns at most n rows from the start of the table
func (t *Table) Prefix(n int) []Row {
	if n < 0 {
		n = 0
	}
	if n > len(t.rows) {
		n = len(t.rows)
	}
	return t.rows[:n]
}

// Equal compare Table.
func (t *Table) Equal(t2 *Table) bool {
	if t.Name() != t2.Name() {
		return false
	}
	if !t.header.Equal(t2.header) {
		return false
	}
	if len(t.rows) != len(t2.rows) {
		return false
	}
	for i, row := range t.rows {
		if !row.Equal(t2.rows[i]) {
			return false
		}
	}
	return true
}

// TableFromFilePath creates table name from file path.
// "sales-2024.csv.gz" becomes "sales_2024".
func TableFromFilePath(filePath string) string {
	fileName := filepath.Base(filePath)
	// Remove compression extensions first
	for _, ext := range []string{ExtGZ, ExtBZ2, ExtXZ, ExtZSTD} {
		if strings.HasSuffix(strings.ToLower(fileName), ext) {
			fileName = fileName[:len(fileName)-len(ext)]
			break
		}
	}
	// Then remove the file type extension
	name := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	return SanitizeTableName(name)
}

// SanitizeTableName replaces characters that cannot appear in an unquoted table name
func SanitizeTableName(name string) string {
	name = strings.TrimSpace(name)
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		case r == '-', r == ' ', r == '.':
			b.WriteRune('_')
		}
	}
	result := b.String()
	if result == "" {
		return "table"
	}
	if result[0] >= '0' && result[0] <= '9' {
		result = "table_" + result
	}
	return result
}
