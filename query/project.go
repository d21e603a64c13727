package query

import (
	"github.com/nao1215/filequery/domain/model"
)

// outputColumn is one output column of a projection
type outputColumn struct {
	name  string
	value func(model.Row) model.Value
}

// Project resolves the SELECT list of a non-aggregate query. Wildcard rows
// pass through unchanged; other fields are copied, aliased or decomposed by
// a date function. Unknown columns project Null. Output rows correspond
// one-to-one to the input rows.
func Project(schema *model.Schema, rows []model.Row, q *model.ParsedQuery) (*model.Schema, []model.Row) {
	if q.Wildcard && len(q.SelectFields) == 0 {
		return schema, rows
	}

	columns := projection(schema, q)
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.name
	}
	out := model.NewSchema(names)

	projected := make([]model.Row, len(rows))
	for i, row := range rows {
		values := make([]model.Value, len(columns))
		for j, c := range columns {
			values[j] = c.value(row)
		}
		projected[i] = out.NewRow(values)
	}
	return out, projected
}

// projection plans the output columns. When two fields share an output name
// the first one wins.
func projection(schema *model.Schema, q *model.ParsedQuery) []outputColumn {
	var columns []outputColumn
	seen := make(map[string]struct{})
	add := func(c outputColumn) {
		if _, dup := seen[c.name]; dup {
			return
		}
		seen[c.name] = struct{}{}
		columns = append(columns, c)
	}

	if q.Wildcard {
		for i, name := range schema.Columns() {
			add(outputColumn{name: name, value: valueAt(i)})
		}
	}
	for _, f := range q.SelectFields {
		add(outputColumn{name: f.OutputName(), value: fieldValue(schema, f)})
	}
	return columns
}

// fieldValue returns the accessor of a non-aggregate field
func fieldValue(schema *model.Schema, f model.FieldSpec) func(model.Row) model.Value {
	i, ok := schema.Index(f.Column)
	if !ok || f.IsAggregate() {
		return func(model.Row) model.Value { return model.Null() }
	}
	if f.Kind == model.FieldDateFunction {
		return func(row model.Row) model.Value {
			return applyDateFunction(f.DateFunc, row.At(i))
		}
	}
	return valueAt(i)
}

func valueAt(i int) func(model.Row) model.Value {
	return func(row model.Row) model.Value { return row.At(i) }
}
