package model

import (
	"testing"
)

func TestNewTable(t *testing.T) {
	t.Parallel()

	header := NewHeader([]string{"id", "name", "joined", "score"})
	records := []Record{
		NewRecord([]string{"1", "Alice", "2024-01-05", "9.5"}),
		NewRecord([]string{"2", "Bob", "2024-02-10", ""}),
	}

	table := NewTable("test", header, records)

	if table.Name() != "test" {
		t.Errorf("expected name 'test', got %s", table.Name())
	}
	if !table.Header().Equal(header) {
		t.Errorf("expected header %v, got %v", header, table.Header())
	}
	if table.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", table.Len())
	}

	wantTypes := []ColumnType{ColumnTypeInteger, ColumnTypeText, ColumnTypeDate, ColumnTypeDecimal}
	for i, info := range table.ColumnInfo() {
		if info.Type != wantTypes[i] {
			t.Errorf("column %s: expected %v, got %v", info.Name, wantTypes[i], info.Type)
		}
	}

	row := table.Rows()[0]
	if v, _ := row.Get("joined"); v.Kind() != KindDate {
		t.Errorf("expected joined to be a date, got %v", v.Kind())
	}
	if v, _ := row.Get("id"); v.Kind() != KindNumber {
		t.Errorf("expected id to be a number, got %v", v.Kind())
	}
	if v, _ := table.Rows()[1].Get("score"); !v.IsNull() {
		t.Errorf("expected empty score to be null, got %v", v)
	}
}

func TestNewTable_ShortAndLongRecords(t *testing.T) {
	t.Parallel()

	header := NewHeader([]string{"a", "b"})
	records := []Record{
		NewRecord([]string{"1"}),
		NewRecord([]string{"2", "3", "4"}),
	}
	table := NewTable("t", header, records)

	if got := len(table.Rows()[0].Values()); got != 2 {
		t.Fatalf("expected padded row of 2 values, got %d", got)
	}
	if v, _ := table.Rows()[0].Get("b"); !v.IsNull() {
		t.Errorf("expected padded value to be null, got %v", v)
	}
	if got := len(table.Rows()[1].Values()); got != 2 {
		t.Errorf("expected truncated row of 2 values, got %d", got)
	}
}

func TestTable_Prefix(t *testing.T) {
	t.Parallel()

	header := NewHeader([]string{"n"})
	var records []Record
	for _, v := range []string{"1", "2", "3"} {
		records = append(records, NewRecord([]string{v}))
	}
	table := NewTable("t", header, records)

	if got := len(table.Prefix(2)); got != 2 {
		t.Errorf("expected 2 rows, got %d", got)
	}
	if got := len(table.Prefix(10)); got != 3 {
		t.Errorf("expected 3 rows, got %d", got)
	}
	if got := len(table.Prefix(-1)); got != 0 {
		t.Errorf("expected 0 rows, got %d", got)
	}
}

func TestTable_Equal(t *testing.T) {
	t.Parallel()

	header := NewHeader([]string{"col1", "col2"})
	records := []Record{
		NewRecord([]string{"val1", "val2"}),
		NewRecord([]string{"val3", "val4"}),
	}

	table1 := NewTable("test", header, records)
	table2 := NewTable("test", header, records)
	table3 := NewTable("different", header, records)

	if !table1.Equal(table2) {
		t.Error("expected tables to be equal")
	}
	if table1.Equal(table3) {
		t.Error("expected tables with different names to be not equal")
	}

	differentHeader := NewHeader([]string{"col1", "col3"})
	table4 := NewTable("test", differentHeader, records)
	if table1.Equal(table4) {
		t.Error("expected tables with different headers to be not equal")
	}
}

func TestTableFromFilePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path     string
		expected string
	}{
		{path: "users.csv", expected: "users"},
		{path: "/path/to/data.tsv.gz", expected: "data"},
		{path: "sales-2024.csv.zst", expected: "sales_2024"},
		{path: "my report.xlsx", expected: "my_report"},
		{path: "2024.csv", expected: "table_2024"},
		{path: "logs.ltsv.BZ2", expected: "logs"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			if got := TableFromFilePath(tt.path); got != tt.expected {
				t.Errorf("TableFromFilePath(%q) = %q, want %q", tt.path, got, tt.expected)
			}
		})
	}
}
