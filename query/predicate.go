package query

import (
	"cmp"
	"regexp"
	"strings"

	"github.com/nao1215/filequery/diag"
	"github.com/nao1215/filequery/domain/model"
)

// Predicate reports whether a row satisfies a WHERE clause
type Predicate func(model.Row) bool

// Always accepts every row
func Always(model.Row) bool { return true }

var (
	isNotNullPattern = regexp.MustCompile(`(?is)^(.+?)\s+IS\s+NOT\s+NULL$`)
	isNullPattern    = regexp.MustCompile(`(?is)^(.+?)\s+IS\s+NULL$`)
)

// comparison operators in match priority order
var operators = []string{"!=", "<>", ">=", "<=", "=", ">", "<"}

// CompilePredicate compiles a WHERE clause against schema. The clause is split
// on OR, then each branch on AND; a row passes when every leaf of any branch
// matches. Leaves that cannot be parsed, or that name unknown columns, always
// match and are reported to sink as predicate-fail-open events.
func CompilePredicate(where string, schema *model.Schema, sink diag.Sink) Predicate {
	where = strings.TrimSpace(where)
	if where == "" {
		return Always
	}
	if sink == nil {
		sink = diag.Nop
	}

	var branches [][]Predicate
	for _, branch := range splitKeyword(where, "OR") {
		var leaves []Predicate
		for _, leaf := range splitKeyword(branch, "AND") {
			leaves = append(leaves, compileLeaf(strings.TrimSpace(leaf), schema, sink))
		}
		branches = append(branches, leaves)
	}

	return func(row model.Row) bool {
		for _, leaves := range branches {
			matched := true
			for _, leaf := range leaves {
				if !leaf(row) {
					matched = false
					break
				}
			}
			if matched {
				return true
			}
		}
		return false
	}
}

// splitKeyword splits s on a top-level keyword outside quotes and parentheses
func splitKeyword(s, word string) []string {
	var parts []string
	for {
		start, end := firstWord(s, word)
		if start < 0 {
			return append(parts, s)
		}
		parts = append(parts, s[:start])
		s = s[end:]
	}
}

// operand is the left side of a leaf: a column, optionally wrapped in a date function
type operand struct {
	index int
	fn    model.DateFunction
}

func (o operand) value(row model.Row) model.Value {
	v := row.At(o.index)
	if o.fn != model.DateFuncNone {
		return applyDateFunction(o.fn, v)
	}
	return v
}

func compileLeaf(leaf string, schema *model.Schema, sink diag.Sink) Predicate {
	failOpen := func(reason string) Predicate {
		sink.Emit(diag.NewEvent(diag.KindPredicateFailOpen, "treating WHERE condition as satisfied",
			"condition", leaf, "reason", reason))
		return Always
	}

	if leaf == "" {
		return failOpen("empty condition")
	}
	if strings.HasPrefix(leaf, "(") {
		return failOpen("parenthesized conditions are not supported")
	}

	if m := isNotNullPattern.FindStringSubmatch(leaf); m != nil {
		op, ok := resolveOperand(m[1], schema)
		if !ok {
			return failOpen("unknown column")
		}
		return func(row model.Row) bool { return !op.value(row).IsNull() }
	}
	if m := isNullPattern.FindStringSubmatch(leaf); m != nil {
		op, ok := resolveOperand(m[1], schema)
		if !ok {
			return failOpen("unknown column")
		}
		return func(row model.Row) bool { return op.value(row).IsNull() }
	}

	operator, left, right, ok := splitComparison(leaf)
	if !ok {
		return failOpen("no supported operator")
	}
	op, ok := resolveOperand(left, schema)
	if !ok {
		return failOpen("unknown column")
	}

	// "= NULL" is read as IS NULL
	if strings.EqualFold(right, "NULL") {
		switch operator {
		case "=":
			return func(row model.Row) bool { return op.value(row).IsNull() }
		case "!=", "<>":
			return func(row model.Row) bool { return !op.value(row).IsNull() }
		}
	}

	literal := unquote(right)
	return func(row model.Row) bool {
		return compareLiteral(op.value(row), operator, literal)
	}
}

// splitComparison finds the highest priority operator outside quotes
func splitComparison(leaf string) (string, string, string, bool) {
	for _, operator := range operators {
		i := indexOutsideQuotes(leaf, operator)
		if i < 0 {
			continue
		}
		left := strings.TrimSpace(leaf[:i])
		right := strings.TrimSpace(leaf[i+len(operator):])
		if left == "" || right == "" {
			return "", "", "", false
		}
		return operator, left, right, true
	}
	return "", "", "", false
}

func indexOutsideQuotes(s, sub string) int {
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"' || c == '`':
			quote = c
		case strings.HasPrefix(s[i:], sub):
			return i
		}
	}
	return -1
}

// resolveOperand resolves a column reference or FUNC(column) against schema
func resolveOperand(text string, schema *model.Schema) (operand, bool) {
	text = strings.TrimSpace(text)
	fn := model.DateFuncNone
	if m := callPattern.FindStringSubmatch(text); m != nil {
		f, ok := model.ParseDateFunction(m[1])
		if !ok {
			return operand{}, false
		}
		fn, text = f, m[2]
	}
	if schema == nil {
		return operand{}, false
	}
	i, ok := schema.Index(normalizeIdent(text))
	if !ok {
		return operand{}, false
	}
	return operand{index: i, fn: fn}, true
}

// compareLiteral compares a value with a literal. Numbers compare numerically,
// dates chronologically, everything else by case-insensitive equality. Null
// matches no comparison.
func compareLiteral(v model.Value, operator, literal string) bool {
	if v.IsNull() {
		return false
	}

	if a, ok := v.Number(); ok {
		if b, ok := model.ParseNumber(literal); ok {
			return compareOrdered(cmp.Compare(a, b), operator)
		}
	}
	if a, ok := v.Date(); ok {
		if b, ok := model.ParseDate(literal); ok {
			return compareOrdered(a.Compare(b), operator)
		}
	}

	equal := strings.EqualFold(strings.TrimSpace(v.String()), literal)
	switch operator {
	case "=":
		return equal
	case "!=", "<>":
		return !equal
	default:
		return false
	}
}

func compareOrdered(c int, operator string) bool {
	switch operator {
	case "=":
		return c == 0
	case "!=", "<>":
		return c != 0
	case ">=":
		return c >= 0
	case "<=":
		return c <= 0
	case ">":
		return c > 0
	case "<":
		return c < 0
	default:
		return false
	}
}
