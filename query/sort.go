package query

import (
	"cmp"
	"slices"
	"strings"

	"github.com/nao1215/filequery/domain/model"
)

// compareValues orders two non-null values: numbers numerically, dates
// chronologically, everything else case-insensitively.
func compareValues(a, b model.Value) int {
	if x, ok := a.Number(); ok {
		if y, ok := b.Number(); ok {
			return cmp.Compare(x, y)
		}
	}
	if x, ok := a.Date(); ok {
		if y, ok := b.Date(); ok {
			return x.Compare(y)
		}
	}
	return strings.Compare(strings.ToLower(a.String()), strings.ToLower(b.String()))
}

// sortBy stable sorts items by key. Nulls sort last in either direction.
func sortBy[T any](items []T, key func(T) model.Value, dir model.SortDirection) {
	slices.SortStableFunc(items, func(x, y T) int {
		a, b := key(x), key(y)
		switch {
		case a.IsNull() && b.IsNull():
			return 0
		case a.IsNull():
			return 1
		case b.IsNull():
			return -1
		}
		c := compareValues(a, b)
		if dir == model.Descending {
			return -c
		}
		return c
	})
}

// compact lowercases an expression and drops whitespace so that
// "SUM( amount )" and "sum(amount)" compare equal.
func compact(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

// Resolution strategies reported in order-by-resolved events
const (
	resolvedExact        = "exact"
	resolvedExpression   = "expression"
	resolvedPartial      = "partial"
	resolvedFirstNumeric = "first-numeric"
	resolvedFirstColumn  = "first-column"
	resolvedSource       = "source"
	resolvedUnresolved   = "unresolved"
)

// expressionName maps an ORDER BY expression to the output name of the
// SELECT field or GROUP BY item it denotes.
func expressionName(field string, q *model.ParsedQuery) (string, bool) {
	key := compact(field)
	for _, f := range q.SelectFields {
		if compact(f.Expr) == key {
			return f.OutputName(), true
		}
	}
	for _, g := range q.GroupBy {
		if g.Function != model.DateFuncNone && compact(g.Function.String()+"("+g.Column+")") == key {
			for _, f := range q.SelectFields {
				if g.Matches(f) {
					return f.OutputName(), true
				}
			}
			return g.DefaultName(), true
		}
	}
	return "", false
}

// partialIndex returns the first column whose name contains field or is
// contained in it, case-insensitively.
func partialIndex(field string, columns []string) (int, bool) {
	needle := strings.ToLower(field)
	if needle == "" {
		return 0, false
	}
	for i, c := range columns {
		name := strings.ToLower(c)
		if name == "" {
			continue
		}
		if strings.Contains(name, needle) || strings.Contains(needle, name) {
			return i, true
		}
	}
	return 0, false
}

// resolveAggregateOrder resolves ORDER BY against aggregation output: exact
// case-insensitive match, SELECT expression text, partial match, the first
// numeric-valued column, then the first column.
func resolveAggregateOrder(field string, out *model.Schema, rows []model.Row, q *model.ParsedQuery) (int, string) {
	if i, ok := out.Index(field); ok {
		return i, resolvedExact
	}
	if name, ok := expressionName(field, q); ok {
		if i, ok := out.Index(name); ok {
			return i, resolvedExpression
		}
	}
	if i, ok := partialIndex(field, out.Columns()); ok {
		return i, resolvedPartial
	}
	if len(rows) > 0 {
		for i, v := range rows[0].Values() {
			if v.Kind() == model.KindNumber {
				return i, resolvedFirstNumeric
			}
		}
	}
	if out.Len() > 0 {
		return 0, resolvedFirstColumn
	}
	return -1, resolvedUnresolved
}

// projectedOrder resolves ORDER BY for a non-aggregate query and returns the
// sort key over row positions. Exact matches against output columns, SELECT
// expressions, source columns and date functions of source columns come
// first, then partial matches against output and source columns.
func projectedOrder(
	field string,
	source *model.Schema,
	sourceRows []model.Row,
	out *model.Schema,
	outRows []model.Row,
	q *model.ParsedQuery,
) (func(int) model.Value, string, string) {
	fromOutput := func(i int) func(int) model.Value {
		return func(n int) model.Value { return outRows[n].At(i) }
	}
	fromSource := func(i int) func(int) model.Value {
		return func(n int) model.Value { return sourceRows[n].At(i) }
	}

	if i, ok := out.Index(field); ok {
		return fromOutput(i), out.Columns()[i], resolvedExact
	}
	if name, ok := expressionName(field, q); ok {
		if i, ok := out.Index(name); ok {
			return fromOutput(i), name, resolvedExpression
		}
	}
	if i, ok := source.Index(field); ok {
		return fromSource(i), source.Columns()[i], resolvedSource
	}
	if m := callPattern.FindStringSubmatch(field); m != nil {
		if fn, ok := model.ParseDateFunction(m[1]); ok {
			if i, ok := source.Index(normalizeIdent(m[2])); ok {
				return func(n int) model.Value {
					return applyDateFunction(fn, sourceRows[n].At(i))
				}, field, resolvedSource
			}
		}
	}
	if i, ok := partialIndex(field, out.Columns()); ok {
		return fromOutput(i), out.Columns()[i], resolvedPartial
	}
	if i, ok := partialIndex(field, source.Columns()); ok {
		return fromSource(i), source.Columns()[i], resolvedPartial
	}
	return nil, "", resolvedUnresolved
}
