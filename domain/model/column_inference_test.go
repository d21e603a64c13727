package model

import (
	"testing"
	"time"
)

func TestInferColumnType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		sample   string
		expected ColumnType
	}{
		{name: "integer", sample: "123", expected: ColumnTypeInteger},
		{name: "negative integer", sample: "-123", expected: ColumnTypeInteger},
		{name: "decimal", sample: "45.6", expected: ColumnTypeDecimal},
		{name: "scientific notation", sample: "2.5e-3", expected: ColumnTypeDecimal},
		{name: "text", sample: "hello", expected: ColumnTypeText},
		{name: "empty", sample: "", expected: ColumnTypeText},
		{name: "ISO8601 date", sample: "2023-01-15", expected: ColumnTypeDate},
		{name: "ISO8601 datetime", sample: "2023-01-15T10:30:00", expected: ColumnTypeDate},
		{name: "datetime with space", sample: "2023-01-15 10:30", expected: ColumnTypeDate},
		{name: "US date", sample: "1/15/2023", expected: ColumnTypeDate},
		{name: "US datetime", sample: "01/15/2023 10:30:00", expected: ColumnTypeDate},
		{name: "date-like but invalid month", sample: "2023-13-45", expected: ColumnTypeText},
		{name: "surrounding spaces", sample: "  42  ", expected: ColumnTypeInteger},
		{name: "name spelled like NaN", sample: "Nan", expected: ColumnTypeText},
		{name: "infinity word", sample: "Infinity", expected: ColumnTypeText},
		{name: "short infinity", sample: "-Inf", expected: ColumnTypeText},
		{name: "hex float", sample: "0x1p-2", expected: ColumnTypeText},
		{name: "out of range", sample: "1e999", expected: ColumnTypeText},
		{name: "leading dot", sample: ".5", expected: ColumnTypeDecimal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := InferColumnType(tt.sample); got != tt.expected {
				t.Errorf("InferColumnType(%q) = %v, want %v", tt.sample, got, tt.expected)
			}
		})
	}
}

func TestInferColumnsInfo(t *testing.T) {
	t.Parallel()

	header := NewHeader([]string{"id", "note", "price", "day"})
	records := []Record{
		NewRecord([]string{"1", "", "1.5", "2024-01-01"}),
		NewRecord([]string{"x", "12", "abc", "nope"}),
	}

	got := InferColumnsInfo(header, records)
	want := []ColumnInfo{
		{Name: "id", Type: ColumnTypeInteger},
		{Name: "note", Type: ColumnTypeInteger},
		{Name: "price", Type: ColumnTypeDecimal},
		{Name: "day", Type: ColumnTypeDate},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d columns, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("column %d: got %+v, want %+v", i, got[i], want[i])
		}
	}

	if InferColumnsInfo(NewHeader(nil), records) != nil {
		t.Error("expected nil for empty header")
	}
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  time.Time
		ok    bool
	}{
		{input: "2024-03-15", want: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), ok: true},
		{input: "3/5/2024", want: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), ok: true},
		{input: "2024-03-15 08:09:10", want: time.Date(2024, 3, 15, 8, 9, 10, 0, time.UTC), ok: true},
		{input: "15.03.2024", ok: false},
		{input: "March 15", ok: false},
		{input: "", ok: false},
	}

	for _, tt := range tests {
		got, ok := ParseDate(tt.input)
		if ok != tt.ok {
			t.Errorf("ParseDate(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			continue
		}
		if ok && !got.Equal(tt.want) {
			t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseNumber(t *testing.T) {
	t.Parallel()

	if f, ok := ParseNumber(" 12.5 "); !ok || f != 12.5 {
		t.Errorf("ParseNumber returned %v, %v", f, ok)
	}
	if _, ok := ParseNumber("12a"); ok {
		t.Error("expected 12a to be rejected")
	}
	if _, ok := ParseNumber(""); ok {
		t.Error("expected empty string to be rejected")
	}
	for _, s := range []string{"NaN", "Nan", "inf", "+Inf", "Infinity", "1e400", "0x10", "1_000"} {
		if f, ok := ParseNumber(s); ok {
			t.Errorf("ParseNumber(%q) = %v, want rejected", s, f)
		}
	}
	if f, ok := ParseNumber("-2.5E2"); !ok || f != -250 {
		t.Errorf("ParseNumber(-2.5E2) returned %v, %v", f, ok)
	}
}

func TestInferColumnsInfo_NonFiniteWords(t *testing.T) {
	t.Parallel()

	got := InferColumnsInfo(NewHeader([]string{"name", "score"}), []Record{
		NewRecord([]string{"Nan", "5"}),
		NewRecord([]string{"Bob", "7"}),
	})
	want := []ColumnInfo{{Name: "name", Type: ColumnTypeText}, {Name: "score", Type: ColumnTypeInteger}}
	if len(got) != len(want) {
		t.Fatalf("InferColumnsInfo returned %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("column %d = %v, want %v", i, got[i], want[i])
		}
	}
}
