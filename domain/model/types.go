// Package model provides domain model for filequery
package model

// Header is file header.
type Header []string

// NewHeader create new Header.
func NewHeader(h []string) Header {
	return Header(h)
}

// Equal compare Header.
func (h Header) Equal(h2 Header) bool {
	if len(h) != len(h2) {
		return false
	}
	for i, v := range h {
		if v != h2[i] {
			return false
		}
	}
	return true
}

// Record is one raw, untyped source record.
type Record []string

// NewRecord create new Record.
func NewRecord(r []string) Record {
	return Record(r)
}

// Equal compare Record.
func (r Record) Equal(r2 Record) bool {
	if len(r) != len(r2) {
		return false
	}
	for i, v := range r {
		if v != r2[i] {
			return false
		}
	}
	return true
}

// ColumnType represents the inferred column type
type ColumnType int

const (
	// ColumnTypeText represents TEXT column type
	ColumnTypeText ColumnType = iota
	// ColumnTypeInteger represents INT column type
	ColumnTypeInteger
	// ColumnTypeDecimal represents DECIMAL column type
	ColumnTypeDecimal
	// ColumnTypeDate represents DATE column type
	ColumnTypeDate
)

const (
	typeNameText    = "TEXT"
	typeNameInteger = "INT"
	typeNameDecimal = "DECIMAL"
	typeNameDate    = "DATE"
)

// String returns the column type name used in schema metadata
func (ct ColumnType) String() string {
	switch ct {
	case ColumnTypeInteger:
		return typeNameInteger
	case ColumnTypeDecimal:
		return typeNameDecimal
	case ColumnTypeDate:
		return typeNameDate
	default:
		return typeNameText
	}
}

// IsNumeric reports whether values of the column are typed as numbers
func (ct ColumnType) IsNumeric() bool {
	return ct == ColumnTypeInteger || ct == ColumnTypeDecimal
}

// ColumnInfo represents column information with name and inferred type
type ColumnInfo struct {
	Name string
	Type ColumnType
}
