package query

import (
	"strings"
	"testing"

	"github.com/nao1215/filequery/domain/model"
)

// newTable builds a table from comma-separated lines; the first line is the header
func newTable(t *testing.T, lines ...string) *model.Table {
	t.Helper()

	header := model.NewHeader(strings.Split(lines[0], ","))
	records := make([]model.Record, 0, len(lines)-1)
	for _, line := range lines[1:] {
		records = append(records, model.NewRecord(strings.Split(line, ",")))
	}
	return model.NewTable("t", header, records)
}

// salesTable is the table used by the end-to-end examples
func salesTable(t *testing.T) *model.Table {
	t.Helper()

	return newTable(t,
		"date,category,amount",
		"2024-01-05,A,10",
		"2024-01-20,B,20",
		"2024-02-10,A,5",
		"2024-02-15,A,15",
	)
}

// column extracts one column of a result as plain values
func column(res *model.Result, name string) []any {
	out := make([]any, 0, len(res.Rows))
	for _, row := range res.Rows {
		v, _ := row.Get(name)
		out = append(out, v.Interface())
	}
	return out
}
