package model

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTypedValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		raw      string
		ct       ColumnType
		wantKind ValueKind
		wantAny  any
	}{
		{name: "empty is null", raw: "", ct: ColumnTypeInteger, wantKind: KindNull, wantAny: nil},
		{name: "integer", raw: "42", ct: ColumnTypeInteger, wantKind: KindNumber, wantAny: 42.0},
		{name: "decimal", raw: "4.25", ct: ColumnTypeDecimal, wantKind: KindNumber, wantAny: 4.25},
		{name: "unparseable number stays text", raw: "n/a", ct: ColumnTypeInteger, wantKind: KindString, wantAny: "n/a"},
		{name: "date", raw: "1/2/2024", ct: ColumnTypeDate, wantKind: KindDate, wantAny: "2024-01-02"},
		{name: "date with time", raw: "2024-01-02 10:11:12", ct: ColumnTypeDate, wantKind: KindDate, wantAny: "2024-01-02T10:11:12"},
		{name: "text keeps numeric looking text", raw: "007", ct: ColumnTypeText, wantKind: KindString, wantAny: "007"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v := TypedValue(tt.raw, tt.ct)
			assert.Equal(t, tt.wantKind, v.Kind())
			assert.Equal(t, tt.wantAny, v.Interface())
			assert.Equal(t, tt.raw, v.String())
		})
	}
}

func TestValue_Conversions(t *testing.T) {
	t.Parallel()

	t.Run("string parses as number", func(t *testing.T) {
		t.Parallel()
		f, ok := String("3.5").Number()
		assert.True(t, ok)
		assert.InDelta(t, 3.5, f, 1e-9)
	})

	t.Run("string parses as date", func(t *testing.T) {
		t.Parallel()
		d, ok := String("2024-05-06").Date()
		assert.True(t, ok)
		assert.Equal(t, time.May, d.Month())
	})

	t.Run("null converts to nothing", func(t *testing.T) {
		t.Parallel()
		_, ok := Null().Number()
		assert.False(t, ok)
		_, ok = Null().Date()
		assert.False(t, ok)
		assert.True(t, Null().IsNull())
	})

	t.Run("number formats without trailing zeros", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "80", Number(80).String())
		assert.Equal(t, "2.5", Number(2.5).String())
	})
}

func TestValue_Equal(t *testing.T) {
	t.Parallel()

	assert.True(t, Number(1).Equal(TypedValue("1.0", ColumnTypeDecimal)))
	assert.False(t, Number(1).Equal(String("1")))
	assert.True(t, Null().Equal(Value{}))
	d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, Date(d, "2024-01-01").Equal(Date(d, "1/1/2024")))
}

func TestValue_MarshalJSON(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		v    Value
		want string
	}{
		{v: Null(), want: "null"},
		{v: Number(12), want: "12"},
		{v: String("a\"b"), want: `"a\"b"`},
		{v: Date(time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC), ""), want: `"2024-02-03"`},
		{v: Number(math.NaN()), want: "null"},
		{v: Number(math.Inf(-1)), want: "null"},
	} {
		b, err := tt.v.MarshalJSON()
		assert.NoError(t, err)
		assert.JSONEq(t, tt.want, string(b))
	}
}
