package query

import (
	"strings"
	"unicode"
)

// clause identifies a top-level clause of the query text
type clause int

const (
	clauseSelect clause = iota
	clauseFrom
	clauseWhere
	clauseGroupBy
	clauseHaving
	clauseOrderBy
	clauseLimit
	clauseOffset
)

// keywords recognized as clause boundaries. Multi-word keywords allow any
// run of whitespace between the words.
var keywords = []struct {
	clause clause
	words  []string
}{
	{clauseSelect, []string{"SELECT"}},
	{clauseFrom, []string{"FROM"}},
	{clauseWhere, []string{"WHERE"}},
	{clauseGroupBy, []string{"GROUP", "BY"}},
	{clauseHaving, []string{"HAVING"}},
	{clauseOrderBy, []string{"ORDER", "BY"}},
	{clauseLimit, []string{"LIMIT"}},
	{clauseOffset, []string{"OFFSET"}},
}

// marker is one keyword occurrence
type marker struct {
	clause clause
	start  int // position of the keyword
	body   int // position right after the keyword
}

// clauses maps each clause to its body text. Only the first occurrence of a
// clause counts; later occurrences still end the preceding clause.
type clauses map[clause]string

// scanClauses locates clause keywords outside quotes and parentheses.
func scanClauses(text string) clauses {
	markers := findMarkers(text)
	out := make(clauses, len(markers))
	for i, m := range markers {
		end := len(text)
		if i+1 < len(markers) {
			end = markers[i+1].start
		}
		if _, seen := out[m.clause]; seen {
			continue
		}
		out[m.clause] = strings.TrimSpace(text[m.body:end])
	}
	return out
}

func findMarkers(text string) []marker {
	var markers []marker
	walkTopLevel(text, func(i int) {
		for _, kw := range keywords {
			if end, ok := matchWords(text, i, kw.words); ok {
				markers = append(markers, marker{clause: kw.clause, start: i, body: end})
				return
			}
		}
	})
	return markers
}

// walkTopLevel calls visit at every word start outside quotes and parentheses
func walkTopLevel(s string, visit func(i int)) {
	var (
		quote rune
		depth int
	)
	for i, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
			continue
		case r == '\'' || r == '"' || r == '`':
			quote = r
			continue
		case r == '[':
			quote = ']'
			continue
		case r == '(':
			depth++
			continue
		case r == ')':
			if depth > 0 {
				depth--
			}
			continue
		}
		if depth == 0 && isWordStart(s, i) {
			visit(i)
		}
	}
}

// wordPositions returns every top-level occurrence of a keyword in s
func wordPositions(s, word string) []marker {
	var out []marker
	walkTopLevel(s, func(i int) {
		if end, ok := matchWords(s, i, []string{word}); ok {
			out = append(out, marker{start: i, body: end})
		}
	})
	return out
}

// matchWords matches the keyword words at position i, case-insensitively and
// on word boundaries. It returns the position after the last word.
func matchWords(text string, i int, words []string) (int, bool) {
	pos := i
	for n, w := range words {
		if n > 0 {
			ws := pos
			for ws < len(text) && unicode.IsSpace(rune(text[ws])) {
				ws++
			}
			if ws == pos {
				return 0, false
			}
			pos = ws
		}
		if len(text)-pos < len(w) || !strings.EqualFold(text[pos:pos+len(w)], w) {
			return 0, false
		}
		pos += len(w)
		if pos < len(text) && isIdentByte(text[pos]) {
			return 0, false
		}
	}
	return pos, true
}

func isWordStart(text string, i int) bool {
	return i == 0 || !isIdentByte(text[i-1])
}

func isIdentByte(b byte) bool {
	return b == '_' || b == '.' || b >= 0x80 ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// splitTopLevel splits s on sep where sep is outside quotes and parentheses.
func splitTopLevel(s string, sep rune) []string {
	var (
		parts []string
		quote rune
		depth int
		last  int
	)
	for i, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"' || r == '`':
			quote = r
		case r == '[':
			quote = ']'
		case r == '(':
			depth++
		case r == ')':
			if depth > 0 {
				depth--
			}
		case r == sep && depth == 0:
			parts = append(parts, s[last:i])
			last = i + len(string(sep))
		}
	}
	return append(parts, s[last:])
}

// lastWord finds the last top-level occurrence of a keyword in s, returning
// its start and end, or -1.
func lastWord(s, word string) (int, int) {
	ms := wordPositions(s, word)
	if len(ms) == 0 {
		return -1, -1
	}
	return ms[len(ms)-1].start, ms[len(ms)-1].body
}

// firstWord finds the first top-level occurrence of a keyword in s
func firstWord(s, word string) (int, int) {
	ms := wordPositions(s, word)
	if len(ms) == 0 {
		return -1, -1
	}
	return ms[0].start, ms[0].body
}

// unquote removes one layer of identifier or literal quoting
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s
	}
	first, last := s[0], s[len(s)-1]
	switch {
	case first == '"' && last == '"', first == '\'' && last == '\'',
		first == '`' && last == '`', first == '[' && last == ']':
		return s[1 : len(s)-1]
	}
	return s
}

// normalizeIdent unquotes an identifier and drops a single table qualifier.
// "t.col", `"t"."col"` and "[col]" all become "col".
func normalizeIdent(s string) string {
	s = strings.TrimSpace(s)
	parts := splitTopLevel(s, '.')
	if len(parts) == 2 && isQualifier(parts[0]) {
		s = parts[1]
	}
	return unquote(s)
}

// isQualifier reports whether s looks like a table name rather than a number
func isQualifier(s string) bool {
	s = unquote(s)
	if s == "" {
		return false
	}
	for _, r := range s {
		if !(r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return false
		}
	}
	return !unicode.IsDigit(rune(s[0]))
}
