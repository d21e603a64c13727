package model

import (
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// ValueKind tags the variant held by a Value
type ValueKind int

const (
	// KindNull represents a missing or empty value
	KindNull ValueKind = iota
	// KindString represents a text value
	KindString
	// KindNumber represents an integer or decimal value
	KindNumber
	// KindDate represents a calendar date, optionally with a time of day
	KindDate
)

// String returns the name of the kind
func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindDate:
		return "date"
	default:
		return "null"
	}
}

// Value is a tagged cell value. The zero Value is Null.
type Value struct {
	kind ValueKind
	raw  string
	num  float64
	date time.Time
}

// Null returns the Null value
func Null() Value {
	return Value{}
}

// String returns a text value
func String(s string) Value {
	return Value{kind: KindString, raw: s}
}

// Number returns a numeric value
func Number(f float64) Value {
	return Value{kind: KindNumber, num: f, raw: strconv.FormatFloat(f, 'f', -1, 64)}
}

// Date returns a date value. raw is the source text; when empty the ISO form is used.
func Date(t time.Time, raw string) Value {
	v := Value{kind: KindDate, date: t, raw: raw}
	if v.raw == "" {
		v.raw = isoDate(t)
	}
	return v
}

// TypedValue converts raw source text into a Value according to the column type.
// Empty text becomes Null; text that does not parse as the column type stays a String.
func TypedValue(raw string, ct ColumnType) Value {
	if raw == "" {
		return Null()
	}
	switch ct {
	case ColumnTypeDate:
		if t, ok := ParseDate(raw); ok {
			return Date(t, raw)
		}
	case ColumnTypeInteger, ColumnTypeDecimal:
		if f, ok := ParseNumber(raw); ok {
			return Value{kind: KindNumber, num: f, raw: raw}
		}
	}
	return String(raw)
}

// Kind returns the variant tag
func (v Value) Kind() ValueKind {
	return v.kind
}

// IsNull reports whether the value is Null
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// String returns the source text of the value. Null renders as the empty string.
func (v Value) String() string {
	return v.raw
}

// Number returns the value as a number. String values are parsed.
func (v Value) Number() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindString:
		return ParseNumber(v.raw)
	default:
		return 0, false
	}
}

// Date returns the value as a date. String values are parsed.
func (v Value) Date() (time.Time, bool) {
	switch v.kind {
	case KindDate:
		return v.date, true
	case KindString:
		return ParseDate(v.raw)
	default:
		return time.Time{}, false
	}
}

// Interface returns the value as nil, string or float64.
// Dates are rendered as ISO-8601 strings; NaN and infinities as nil.
func (v Value) Interface() any {
	switch v.kind {
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return nil
		}
		return v.num
	case KindString:
		return v.raw
	case KindDate:
		return isoDate(v.date)
	default:
		return nil
	}
}

// Equal compares kind and content
func (v Value) Equal(v2 Value) bool {
	if v.kind != v2.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindNumber:
		return v.num == v2.num
	case KindDate:
		return v.date.Equal(v2.date)
	default:
		return v.raw == v2.raw
	}
}

// MarshalJSON encodes the value as null, a number or a string
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// isoDate formats a date, keeping the time component only when present
func isoDate(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02T15:04:05")
}
