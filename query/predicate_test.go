package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nao1215/filequery/diag"
	"github.com/nao1215/filequery/domain/model"
)

func peopleTable(t *testing.T) *model.Table {
	t.Helper()

	return newTable(t,
		"name,age,city,joined,note",
		"Alice,30,Tokyo,2023-04-01,vip",
		"Bob,25,osaka,2024-01-15,",
		"Carol,35,TOKYO,1/20/2024,new",
		"Dave,,Nagoya,,",
	)
}

func matchingNames(t *testing.T, table *model.Table, where string, sink diag.Sink) []string {
	t.Helper()

	pred := CompilePredicate(where, table.Schema(), sink)
	var names []string
	for _, row := range table.Rows() {
		if pred(row) {
			v, _ := row.Get("name")
			names = append(names, v.String())
		}
	}
	return names
}

func TestCompilePredicate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		where string
		want  []string
	}{
		{name: "numeric greater than", where: "age > 28", want: []string{"Alice", "Carol"}},
		{name: "numeric equality with decimal literal", where: "age = 30.0", want: []string{"Alice"}},
		{name: "numeric less or equal", where: "age <= 30", want: []string{"Alice", "Bob"}},
		{name: "string equality is case-insensitive", where: "city = 'tokyo'", want: []string{"Alice", "Carol"}},
		{name: "double quoted literal", where: `city = "Osaka"`, want: []string{"Bob"}},
		{name: "not equal", where: "city != 'Tokyo'", want: []string{"Bob", "Dave"}},
		{name: "angle not equal", where: "city <> 'Tokyo'", want: []string{"Bob", "Dave"}},
		{name: "ordering on strings never matches", where: "city > 'A'", want: nil},
		{name: "and", where: "age >= 25 AND city = 'tokyo'", want: []string{"Alice", "Carol"}},
		{name: "or", where: "name = 'Bob' OR name = 'Dave'", want: []string{"Bob", "Dave"}},
		{name: "or of and branches", where: "age > 32 AND city = 'tokyo' OR name = 'Bob'", want: []string{"Bob", "Carol"}},
		{name: "is null", where: "age IS NULL", want: []string{"Dave"}},
		{name: "is not null", where: "note is not null", want: []string{"Alice", "Carol"}},
		{name: "equals null reads as is null", where: "joined = NULL", want: []string{"Dave"}},
		{name: "date comparison", where: "joined >= '2024-01-01'", want: []string{"Bob", "Carol"}},
		{name: "date comparison across formats", where: "joined < '01/16/2024'", want: []string{"Alice", "Bob"}},
		{name: "date function", where: "YEAR(joined) = 2024", want: []string{"Bob", "Carol"}},
		{name: "month function", where: "MONTH(joined) = 4", want: []string{"Alice"}},
		{name: "case-insensitive column", where: "AGE < 30", want: []string{"Bob"}},
		{name: "qualified column", where: "t.name = 'Alice'", want: []string{"Alice"}},
		{name: "keyword inside literal", where: "note = 'a OR b'", want: nil},
		{name: "null never matches comparisons", where: "age != 99", want: []string{"Alice", "Bob", "Carol"}},
	}

	table := peopleTable(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, matchingNames(t, table, tt.where, nil))
		})
	}
}

func TestCompilePredicate_FailOpen(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		where string
		want  []string
	}{
		{name: "unknown operator", where: "name LIKE 'A%'", want: []string{"Alice", "Bob", "Carol", "Dave"}},
		{name: "unknown column", where: "salary > 10", want: []string{"Alice", "Bob", "Carol", "Dave"}},
		{name: "parenthesized group", where: "(age > 30 OR age < 26)", want: []string{"Alice", "Bob", "Carol", "Dave"}},
		{name: "failing leaf inside and keeps other leaves", where: "city = 'tokyo' AND foo ~ bar", want: []string{"Alice", "Carol"}},
		{name: "missing right side", where: "age >", want: []string{"Alice", "Bob", "Carol", "Dave"}},
		{name: "unknown function", where: "WEEK(joined) = 3", want: []string{"Alice", "Bob", "Carol", "Dave"}},
	}

	table := peopleTable(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := diag.NewRecorder()
			assert.Equal(t, tt.want, matchingNames(t, table, tt.where, rec))
			assert.True(t, rec.Has(diag.KindPredicateFailOpen))
		})
	}
}

func TestCompilePredicate_Tautology(t *testing.T) {
	t.Parallel()

	table := peopleTable(t)
	for _, where := range []string{"", "1 = 1", "name IS NOT NULL OR name IS NULL", "age > 0 OR age IS NULL"} {
		got := matchingNames(t, table, where, nil)
		require.Equal(t, []string{"Alice", "Bob", "Carol", "Dave"}, got, where)
	}
}
