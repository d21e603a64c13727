package query

import (
	"strings"
	"unicode"
)

// FromTable returns the FROM target of text without quotes or qualifier,
// or "" when there is no FROM clause.
func FromTable(text string) string {
	from, ok := scanClauses(text)[clauseFrom]
	if !ok {
		return ""
	}
	return parseTable(from)
}

// ReplaceTable points the query at table. The first FROM target is replaced;
// when the query has no FROM clause, "FROM table" is inserted after the
// SELECT list. Text without a SELECT clause is returned unchanged.
func ReplaceTable(text, table string) string {
	markers := findMarkers(text)

	selectAt := -1
	for i, m := range markers {
		switch m.clause {
		case clauseFrom:
			start, end := targetSpan(text, m.body)
			if start == end {
				return text[:m.body] + " " + table + text[m.body:]
			}
			return text[:start] + table + text[end:]
		case clauseSelect:
			if selectAt < 0 {
				selectAt = i
			}
		}
	}
	if selectAt < 0 {
		return text
	}

	pos := len(strings.TrimRight(text, "; \t\r\n"))
	for _, m := range markers[selectAt+1:] {
		if m.clause != clauseSelect {
			pos = m.start
			break
		}
	}
	head := strings.TrimRightFunc(text[:pos], unicode.IsSpace)
	if pos < len(text) && !strings.ContainsAny(text[pos:pos+1], "; \t\r\n") {
		return head + " FROM " + table + " " + text[pos:]
	}
	return head + " FROM " + table + text[pos:]
}

// targetSpan returns the span of the table reference that starts at or
// after i, skipping leading whitespace. Quoted references keep their quotes
// inside the span.
func targetSpan(text string, i int) (int, int) {
	for i < len(text) && unicode.IsSpace(rune(text[i])) {
		i++
	}
	start := i
	if i < len(text) {
		if closing, ok := closingQuote(text[i]); ok {
			if end := strings.IndexByte(text[i+1:], closing); end >= 0 {
				return start, i + 1 + end + 1
			}
		}
	}
	for i < len(text) && !unicode.IsSpace(rune(text[i])) && !strings.ContainsRune(",;()", rune(text[i])) {
		i++
	}
	return start, i
}

func closingQuote(b byte) (byte, bool) {
	switch b {
	case '"', '`', '\'':
		return b, true
	case '[':
		return ']', true
	default:
		return 0, false
	}
}
