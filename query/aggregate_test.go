package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nao1215/filequery/diag"
	"github.com/nao1215/filequery/domain/model"
)

func aggregate(t *testing.T, table *model.Table, text string, policy GroupByPolicy, sink diag.Sink) *model.Result {
	t.Helper()

	q, err := Parse(text, 0)
	require.NoError(t, err)
	require.True(t, q.IsAggregation())

	out, rows, err := Aggregate(table.Schema(), table.Rows(), q, policy, sink)
	require.NoError(t, err)
	return model.NewResult(out, rows)
}

func TestAggregate_Scalar(t *testing.T) {
	t.Parallel()

	t.Run("count star", func(t *testing.T) {
		t.Parallel()
		res := aggregate(t, salesTable(t), "SELECT COUNT(*) FROM t", FirstWins, nil)
		assert.Equal(t, []string{"count"}, res.Columns)
		assert.Equal(t, []any{4.0}, column(res, "count"))
	})

	t.Run("average is rounded to two decimals", func(t *testing.T) {
		t.Parallel()
		res := aggregate(t, newTable(t, "score", "80", "90", "70"), "SELECT AVG(score) FROM t", FirstWins, nil)
		assert.Equal(t, []any{80.0}, column(res, "avg_score"))

		res = aggregate(t, newTable(t, "score", "1", "2", "2"), "SELECT AVG(score) AS a FROM t", FirstWins, nil)
		assert.Equal(t, []any{1.67}, column(res, "a"))
	})

	t.Run("decimal sums are exact", func(t *testing.T) {
		t.Parallel()
		res := aggregate(t, newTable(t, "x", "0.1", "0.2"), "SELECT SUM(x) FROM t", FirstWins, nil)
		assert.Equal(t, []any{0.3}, column(res, "sum_x"))
	})

	t.Run("no rows yields zeros", func(t *testing.T) {
		t.Parallel()
		res := aggregate(t, newTable(t, "amount"),
			"SELECT COUNT(*), SUM(amount), AVG(amount), MIN(amount), MAX(amount), COUNT(amount) FROM t",
			FirstWins, nil)
		require.Equal(t, 1, res.RowCount)
		assert.Equal(t, map[string]any{
			"count":        0.0,
			"sum_amount":   0.0,
			"avg_amount":   0.0,
			"min_amount":   0.0,
			"max_amount":   0.0,
			"count_amount": 0.0,
		}, res.Maps()[0])
	})

	t.Run("count skips nulls and supports distinct", func(t *testing.T) {
		t.Parallel()
		table := newTable(t, "city,score", "Tokyo,1", "Osaka,", "Tokyo,3", ",4")
		res := aggregate(t, table,
			"SELECT COUNT(city), COUNT(DISTINCT city) AS cities, COUNT(score), SUM(score) FROM t",
			FirstWins, nil)
		assert.Equal(t, map[string]any{
			"count_city":  3.0,
			"cities":      2.0,
			"count_score": 3.0,
			"sum_score":   8.0,
		}, res.Maps()[0])
	})

	t.Run("min and max over numbers and dates", func(t *testing.T) {
		t.Parallel()
		res := aggregate(t, salesTable(t),
			"SELECT MIN(amount), MAX(amount), MIN(date), MAX(date) FROM t", FirstWins, nil)
		assert.Equal(t, map[string]any{
			"min_amount": 5.0,
			"max_amount": 20.0,
			"min_date":   "2024-01-05",
			"max_date":   "2024-02-15",
		}, res.Maps()[0])
	})

	t.Run("unparseable values are skipped", func(t *testing.T) {
		t.Parallel()
		res := aggregate(t, newTable(t, "x", "10", "n/a", "20"), "SELECT AVG(x), COUNT(x) FROM t", FirstWins, nil)
		assert.Equal(t, []any{15.0}, column(res, "avg_x"))
		assert.Equal(t, []any{3.0}, column(res, "count_x"))
	})

	t.Run("unknown column", func(t *testing.T) {
		t.Parallel()
		res := aggregate(t, salesTable(t), "SELECT SUM(price), COUNT(price) FROM t", FirstWins, nil)
		assert.Equal(t, []any{0.0}, column(res, "sum_price"))
		assert.Equal(t, []any{0.0}, column(res, "count_price"))
	})
}

func TestAggregate_GroupBy(t *testing.T) {
	t.Parallel()

	t.Run("plain column buckets literally", func(t *testing.T) {
		t.Parallel()
		res := aggregate(t, salesTable(t),
			"SELECT category, COUNT(*) AS n, SUM(amount) AS total FROM t GROUP BY category", FirstWins, nil)
		assert.Equal(t, []string{"category", "n", "total"}, res.Columns)
		assert.Equal(t, []any{"A", "B"}, column(res, "category"))
		assert.Equal(t, []any{3.0, 1.0}, column(res, "n"))
		assert.Equal(t, []any{30.0, 20.0}, column(res, "total"))
	})

	t.Run("per-group counts add up to the row count", func(t *testing.T) {
		t.Parallel()
		table := newTable(t, "k,v", "b,1", "a,2", "c,3", "a,4", "b,5", ",6")
		res := aggregate(t, table, "SELECT k, COUNT(*) AS n FROM t GROUP BY k", FirstWins, nil)

		total := 0.0
		for _, n := range column(res, "n") {
			total += n.(float64)
		}
		assert.InDelta(t, float64(table.Len()), total, 0)
		assert.Equal(t, []any{"a", "b", "c", nil}, column(res, "k"))
	})

	t.Run("year and month order is chronological", func(t *testing.T) {
		t.Parallel()
		table := newTable(t, "d,x",
			"2024-03-01,1",
			"2023-12-05,1",
			"2024-01-10,1",
			"2023-11-01,1",
			"2024-01-20,1",
		)
		res := aggregate(t, table,
			"SELECT YEAR(d) AS y, MONTH(d) AS m, COUNT(*) AS n FROM t GROUP BY MONTH(d), YEAR(d)", FirstWins, nil)
		assert.Equal(t, []string{"m", "y", "n"}, res.Columns)
		assert.Equal(t, []any{11.0, 12.0, 1.0, 3.0}, column(res, "m"))
		assert.Equal(t, []any{2023.0, 2023.0, 2024.0, 2024.0}, column(res, "y"))
		assert.Equal(t, []any{1.0, 1.0, 2.0, 1.0}, column(res, "n"))
	})

	t.Run("day and date buckets", func(t *testing.T) {
		t.Parallel()
		table := newTable(t, "d", "2024-01-10", "2024-01-02", "2023-05-10")
		res := aggregate(t, table, "SELECT DAY(d), COUNT(*) FROM t GROUP BY DAY(d)", FirstWins, nil)
		assert.Equal(t, []any{2.0, 10.0}, column(res, "day_d"))
		assert.Equal(t, []any{1.0, 2.0}, column(res, "count"))

		res = aggregate(t, table, "SELECT DATE(d) AS day, COUNT(*) FROM t GROUP BY DATE(d)", FirstWins, nil)
		assert.Equal(t, []any{"2023-05-10", "2024-01-02", "2024-01-10"}, column(res, "day"))
	})

	t.Run("plain date column rolls up by year and month", func(t *testing.T) {
		t.Parallel()
		res := aggregate(t, salesTable(t),
			"SELECT date, SUM(amount) AS total FROM t GROUP BY date", FirstWins, nil)
		assert.Equal(t, []any{"2024-01", "2024-02"}, column(res, "date"))
		assert.Equal(t, []any{30.0, 20.0}, column(res, "total"))
	})

	t.Run("null buckets sort last", func(t *testing.T) {
		t.Parallel()
		table := newTable(t, "d,x", "2024-02-01,1", ",2", "2024-01-01,3")
		res := aggregate(t, table, "SELECT MONTH(d) AS m, SUM(x) AS s FROM t GROUP BY MONTH(d)", FirstWins, nil)
		assert.Equal(t, []any{1.0, 2.0, nil}, column(res, "m"))
		assert.Equal(t, []any{3.0, 1.0, 2.0}, column(res, "s"))
	})

	t.Run("group field without select alias uses the default name", func(t *testing.T) {
		t.Parallel()
		res := aggregate(t, salesTable(t), "SELECT SUM(amount) FROM t GROUP BY MONTH(date)", FirstWins, nil)
		assert.Equal(t, []string{"month_date", "sum_amount"}, res.Columns)
		assert.Equal(t, []any{1.0, 2.0}, column(res, "month_date"))
	})

	t.Run("bare fields take the first member value", func(t *testing.T) {
		t.Parallel()
		res := aggregate(t, salesTable(t),
			"SELECT category, amount, COUNT(*) FROM t GROUP BY category", FirstWins, nil)
		assert.Equal(t, []string{"category", "amount", "count"}, res.Columns)
		assert.Equal(t, []any{10.0, 20.0}, column(res, "amount"))
	})

	t.Run("wildcard emits the group fields", func(t *testing.T) {
		t.Parallel()
		res := aggregate(t, salesTable(t), "SELECT * FROM t GROUP BY category", FirstWins, nil)
		assert.Equal(t, []string{"category"}, res.Columns)
		assert.Equal(t, []any{"A", "B"}, column(res, "category"))
	})

	t.Run("column lookup is case-insensitive", func(t *testing.T) {
		t.Parallel()
		res := aggregate(t, salesTable(t),
			"SELECT Category, COUNT(*) AS n FROM t GROUP BY CATEGORY", FirstWins, nil)
		assert.Equal(t, []string{"Category", "n"}, res.Columns)
		assert.Equal(t, []any{"A", "B"}, column(res, "Category"))
	})

	t.Run("unknown group column forms a single null group", func(t *testing.T) {
		t.Parallel()
		res := aggregate(t, salesTable(t), "SELECT region, COUNT(*) AS n FROM t GROUP BY region", FirstWins, nil)
		assert.Equal(t, []any{nil}, column(res, "region"))
		assert.Equal(t, []any{4.0}, column(res, "n"))
	})
}

func TestAggregate_StrictPolicy(t *testing.T) {
	t.Parallel()

	table := salesTable(t)

	q, err := Parse("SELECT category, amount, COUNT(*) FROM t GROUP BY category", 0)
	require.NoError(t, err)
	_, _, err = Aggregate(table.Schema(), table.Rows(), q, Strict, nil)
	assert.ErrorIs(t, err, model.ErrStrictGroupBy)

	q, err = Parse("SELECT category AS c, MONTH(date) AS m, COUNT(*) FROM t GROUP BY category, MONTH(date)", 0)
	require.NoError(t, err)
	_, rows, err := Aggregate(table.Schema(), table.Rows(), q, Strict, nil)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestAggregate_Diagnostics(t *testing.T) {
	t.Parallel()

	t.Run("single date bucket", func(t *testing.T) {
		t.Parallel()
		rec := diag.NewRecorder()
		aggregate(t, salesTable(t), "SELECT YEAR(date) AS y, COUNT(*) FROM t GROUP BY YEAR(date)", FirstWins, rec)
		assert.True(t, rec.Has(diag.KindGroupCount))
		assert.True(t, rec.Has(diag.KindDegenerateTimeSeries))
	})

	t.Run("only null date buckets", func(t *testing.T) {
		t.Parallel()
		rec := diag.NewRecorder()
		aggregate(t, salesTable(t), "SELECT MONTH(category), COUNT(*) FROM t GROUP BY MONTH(category)", FirstWins, rec)
		assert.True(t, rec.Has(diag.KindDegenerateTimeSeries))
	})

	t.Run("healthy time series", func(t *testing.T) {
		t.Parallel()
		rec := diag.NewRecorder()
		aggregate(t, salesTable(t), "SELECT MONTH(date), COUNT(*) FROM t GROUP BY MONTH(date)", FirstWins, rec)
		assert.Equal(t, []diag.Kind{diag.KindGroupCount}, rec.Kinds())
	})
}

func TestParseGroupByPolicy(t *testing.T) {
	t.Parallel()

	p, err := ParseGroupByPolicy("STRICT")
	require.NoError(t, err)
	assert.Equal(t, Strict, p)

	p, err = ParseGroupByPolicy("")
	require.NoError(t, err)
	assert.Equal(t, FirstWins, p)

	_, err = ParseGroupByPolicy("loose")
	assert.Error(t, err)

	var policy GroupByPolicy
	require.NoError(t, policy.UnmarshalText([]byte("strict")))
	assert.Equal(t, "strict", policy.String())
}
