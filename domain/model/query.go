package model

import "strings"

// DateFunction is a calendar decomposition function
type DateFunction int

const (
	// DateFuncNone means no function is applied
	DateFuncNone DateFunction = iota
	// DateFuncYear extracts the four-digit year
	DateFuncYear
	// DateFuncMonth extracts the month (1-12)
	DateFuncMonth
	// DateFuncDay extracts the day of month (1-31)
	DateFuncDay
	// DateFuncDate extracts the ISO-8601 date
	DateFuncDate
)

// String returns the SQL name of the function
func (f DateFunction) String() string {
	switch f {
	case DateFuncYear:
		return "YEAR"
	case DateFuncMonth:
		return "MONTH"
	case DateFuncDay:
		return "DAY"
	case DateFuncDate:
		return "DATE"
	default:
		return ""
	}
}

// ParseDateFunction parses YEAR, MONTH, DAY or DATE case-insensitively
func ParseDateFunction(name string) (DateFunction, bool) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "YEAR":
		return DateFuncYear, true
	case "MONTH":
		return DateFuncMonth, true
	case "DAY":
		return DateFuncDay, true
	case "DATE":
		return DateFuncDate, true
	default:
		return DateFuncNone, false
	}
}

// AggregateFunction is one of the supported aggregate functions
type AggregateFunction int

const (
	// AggNone means the field is not an aggregate
	AggNone AggregateFunction = iota
	// AggCount counts rows or non-null values
	AggCount
	// AggSum sums numeric values
	AggSum
	// AggAvg averages numeric values
	AggAvg
	// AggMin finds the minimum
	AggMin
	// AggMax finds the maximum
	AggMax
)

// String returns the SQL name of the function
func (f AggregateFunction) String() string {
	switch f {
	case AggCount:
		return "COUNT"
	case AggSum:
		return "SUM"
	case AggAvg:
		return "AVG"
	case AggMin:
		return "MIN"
	case AggMax:
		return "MAX"
	default:
		return ""
	}
}

// ParseAggregateFunction parses COUNT, SUM, AVG, MIN or MAX case-insensitively
func ParseAggregateFunction(name string) (AggregateFunction, bool) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "COUNT":
		return AggCount, true
	case "SUM":
		return AggSum, true
	case "AVG":
		return AggAvg, true
	case "MIN":
		return AggMin, true
	case "MAX":
		return AggMax, true
	default:
		return AggNone, false
	}
}

// FieldKind distinguishes the FieldSpec variants
type FieldKind int

const (
	// FieldColumn is a bare column reference
	FieldColumn FieldKind = iota
	// FieldAliasedColumn is "column AS alias"
	FieldAliasedColumn
	// FieldDateFunction is "FUNC(column) [AS alias]"
	FieldDateFunction
	// FieldAggregate is "AGG(column|*) [AS alias]"
	FieldAggregate
)

// FieldSpec is one SELECT list item
type FieldSpec struct {
	Kind      FieldKind
	Column    string
	Alias     string
	DateFunc  DateFunction
	Aggregate AggregateFunction
	// Star is set for COUNT(*)
	Star bool
	// Distinct is set for COUNT(DISTINCT column)
	Distinct bool
	// Expr is the raw expression text without the alias
	Expr string
}

// ColumnField creates a bare column FieldSpec
func ColumnField(name string) FieldSpec {
	return FieldSpec{Kind: FieldColumn, Column: name, Expr: name}
}

// AliasedColumnField creates a "column AS alias" FieldSpec
func AliasedColumnField(name, alias string) FieldSpec {
	return FieldSpec{Kind: FieldAliasedColumn, Column: name, Alias: alias, Expr: name}
}

// DateFunctionField creates a "FUNC(column) AS alias" FieldSpec
func DateFunctionField(fn DateFunction, column, alias string) FieldSpec {
	return FieldSpec{
		Kind:     FieldDateFunction,
		Column:   column,
		Alias:    alias,
		DateFunc: fn,
		Expr:     fn.String() + "(" + column + ")",
	}
}

// AggregateField creates an aggregate FieldSpec. An empty column or "*" means COUNT(*).
func AggregateField(fn AggregateFunction, column, alias string) FieldSpec {
	f := FieldSpec{Kind: FieldAggregate, Aggregate: fn, Column: column, Alias: alias}
	if column == "" || column == "*" {
		f.Star = true
		f.Column = ""
		f.Expr = fn.String() + "(*)"
	} else {
		f.Expr = fn.String() + "(" + column + ")"
	}
	return f
}

// IsAggregate reports whether the field is an aggregate function
func (f FieldSpec) IsAggregate() bool {
	return f.Kind == FieldAggregate
}

// DefaultName returns the output name used when no alias is declared:
// the column for plain columns, "count" for COUNT(*), and "<func>_<column>"
// in lowercase for functions.
func (f FieldSpec) DefaultName() string {
	switch f.Kind {
	case FieldDateFunction:
		return strings.ToLower(f.DateFunc.String() + "_" + f.Column)
	case FieldAggregate:
		if f.Star {
			return strings.ToLower(f.Aggregate.String())
		}
		return strings.ToLower(f.Aggregate.String() + "_" + f.Column)
	default:
		return f.Column
	}
}

// OutputName returns the alias when declared, otherwise DefaultName
func (f FieldSpec) OutputName() string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.DefaultName()
}

// GroupFieldSpec is one GROUP BY item
type GroupFieldSpec struct {
	Function DateFunction
	Column   string
}

// DefaultName returns "<func>_<column>" in lowercase, or the column for plain items
func (g GroupFieldSpec) DefaultName() string {
	if g.Function == DateFuncNone {
		return g.Column
	}
	return strings.ToLower(g.Function.String() + "_" + g.Column)
}

// Matches reports whether a SELECT field denotes the same expression as this group item
func (g GroupFieldSpec) Matches(f FieldSpec) bool {
	if !strings.EqualFold(g.Column, f.Column) {
		return false
	}
	switch f.Kind {
	case FieldColumn, FieldAliasedColumn:
		return g.Function == DateFuncNone
	case FieldDateFunction:
		return g.Function == f.DateFunc
	default:
		return false
	}
}

// SortDirection is ASC or DESC
type SortDirection int

const (
	// Ascending sorts smallest first
	Ascending SortDirection = iota
	// Descending sorts largest first
	Descending
)

// String returns ASC or DESC
func (d SortDirection) String() string {
	if d == Descending {
		return "DESC"
	}
	return "ASC"
}

// OrderBy is the single ORDER BY item
type OrderBy struct {
	Field     string
	Direction SortDirection
}

// ParsedQuery is the typed form of a query text
type ParsedQuery struct {
	// Wildcard is set for SELECT *
	Wildcard     bool
	SelectFields []FieldSpec
	// Where is the raw predicate text, empty when absent
	Where   string
	GroupBy []GroupFieldSpec
	OrderBy *OrderBy
	// Limit is the effective row cap, already clamped to the engine maximum
	Limit int
	// RequestedLimit is the LIMIT as written, -1 when absent
	RequestedLimit int
	// LimitClamped is set when RequestedLimit exceeded the engine maximum
	LimitClamped bool
	// Table is the FROM target as written, empty when absent
	Table string
}

// HasAggregate reports whether any SELECT field is an aggregate function
func (q *ParsedQuery) HasAggregate() bool {
	for _, f := range q.SelectFields {
		if f.IsAggregate() {
			return true
		}
	}
	return false
}

// IsAggregation reports whether the query takes the aggregation path
func (q *ParsedQuery) IsAggregation() bool {
	return len(q.GroupBy) > 0 || q.HasAggregate()
}
