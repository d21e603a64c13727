package model

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// numberPattern accepts plain integer and decimal literals with an optional exponent
var numberPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// Calendar date patterns recognized at load time and by the date functions.
// Only YYYY-MM-DD (optionally followed by a time) and MM/DD/YYYY shapes count.
var datePatterns = []struct {
	pattern *regexp.Regexp
	formats []string // Multiple formats for the same pattern
}{
	// ISO8601 formats with timezone
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})$`),
		[]string{time.RFC3339, time.RFC3339Nano},
	},
	// ISO8601 formats without timezone
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}(:\d{2}(\.\d+)?)?$`),
		[]string{"2006-01-02T15:04:05", "2006-01-02T15:04:05.999999999", "2006-01-02T15:04"},
	},
	// ISO8601 date and time with space
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}(:\d{2}(\.\d+)?)?$`),
		[]string{"2006-01-02 15:04:05", "2006-01-02 15:04:05.999999999", "2006-01-02 15:04"},
	},
	// ISO8601 date only
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),
		[]string{"2006-01-02"},
	},
	// US formats
	{
		regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4} \d{1,2}:\d{2}:\d{2}( (AM|PM))?$`),
		[]string{"1/2/2006 15:04:05", "1/2/2006 3:04:05 PM"},
	},
	{
		regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`),
		[]string{"1/2/2006"},
	},
}

// ParseDate parses a calendar date in one of the supported layouts.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	for _, dp := range datePatterns {
		if !dp.pattern.MatchString(value) {
			continue
		}
		for _, format := range dp.formats {
			if t, err := time.Parse(format, value); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// ParseNumber parses an integer or decimal literal.
func ParseNumber(value string) (float64, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if !numberPattern.MatchString(value) {
		return 0, false
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// InferColumnType infers the column type from a single sample value.
// Precedence: DATE > INT > DECIMAL > TEXT.
func InferColumnType(sample string) ColumnType {
	sample = strings.TrimSpace(sample)
	if sample == "" {
		return ColumnTypeText
	}

	// Check if it's a date first (before checking numbers)
	if _, ok := ParseDate(sample); ok {
		return ColumnTypeDate
	}
	if _, err := strconv.ParseInt(sample, 10, 64); err == nil {
		return ColumnTypeInteger
	}
	if _, ok := ParseNumber(sample); ok {
		return ColumnTypeDecimal
	}
	return ColumnTypeText
}

// InferColumnsInfo infers column information from header and data records.
// Each column is sampled from the first data record; when that cell is empty
// the first non-empty cell further down the column is used instead.
func InferColumnsInfo(header Header, records []Record) []ColumnInfo {
	columnCount := len(header)
	if columnCount == 0 {
		return nil
	}

	columns := make([]ColumnInfo, columnCount)
	for i, name := range header {
		columns[i] = ColumnInfo{
			Name: name,
			Type: InferColumnType(sampleColumn(records, i)),
		}
	}
	return columns
}

// sampleColumn returns the first non-empty value of column i
func sampleColumn(records []Record, i int) string {
	for _, record := range records {
		if i < len(record) {
			if v := strings.TrimSpace(record[i]); v != "" {
				return v
			}
		}
	}
	return ""
}
