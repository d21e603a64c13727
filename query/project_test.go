package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nao1215/filequery/domain/model"
)

func project(t *testing.T, table *model.Table, text string) *model.Result {
	t.Helper()

	q, err := Parse(text, 0)
	require.NoError(t, err)
	require.False(t, q.IsAggregation())
	out, rows := Project(table.Schema(), table.Rows(), q)
	return model.NewResult(out, rows)
}

func TestProject(t *testing.T) {
	t.Parallel()

	t.Run("wildcard passes rows through", func(t *testing.T) {
		t.Parallel()
		table := peopleTable(t)
		res := project(t, table, "SELECT * FROM t")
		assert.Same(t, table.Schema(), res.Rows[0].Schema())
		assert.Equal(t, []string(table.Header()), res.Columns)
	})

	t.Run("aliases and date functions", func(t *testing.T) {
		t.Parallel()
		res := project(t, peopleTable(t), "SELECT name AS who, MONTH(joined) m, DAY(joined) FROM t")
		assert.Equal(t, []string{"who", "m", "day_joined"}, res.Columns)
		assert.Equal(t, []any{"Alice", "Bob", "Carol", "Dave"}, column(res, "who"))
		assert.Equal(t, []any{4.0, 1.0, 1.0, nil}, column(res, "m"))
		assert.Equal(t, []any{1.0, 15.0, 20.0, nil}, column(res, "day_joined"))
	})

	t.Run("unknown columns project null", func(t *testing.T) {
		t.Parallel()
		res := project(t, peopleTable(t), "SELECT name, YEAR(nothing) FROM t")
		assert.Equal(t, []any{nil, nil, nil, nil}, column(res, "year_nothing"))
	})

	t.Run("duplicate output names keep the first field", func(t *testing.T) {
		t.Parallel()
		res := project(t, peopleTable(t), "SELECT name, city AS name FROM t")
		assert.Equal(t, []string{"name"}, res.Columns)
		assert.Equal(t, []any{"Alice", "Bob", "Carol", "Dave"}, column(res, "name"))
	})

	t.Run("case-insensitive column lookup", func(t *testing.T) {
		t.Parallel()
		res := project(t, peopleTable(t), "SELECT NAME FROM t")
		assert.Equal(t, []string{"NAME"}, res.Columns)
		assert.Equal(t, []any{"Alice", "Bob", "Carol", "Dave"}, column(res, "NAME"))
	})
}
