package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/nao1215/filequery/domain/model"
)

// DefaultMaxResultRows is the row ceiling applied when none is configured
const DefaultMaxResultRows = 10000

var (
	// callPattern matches "NAME(argument)"
	callPattern = regexp.MustCompile(`(?is)^([a-z_]+)\s*\((.*)\)$`)
	// distinctPattern matches a leading DISTINCT keyword
	distinctPattern = regexp.MustCompile(`(?i)^distinct\s+`)
	// limitPattern matches the leading integer of a LIMIT clause
	limitPattern = regexp.MustCompile(`^(\d+)`)
	// spaces collapses runs of whitespace
	spaces = regexp.MustCompile(`\s+`)
)

// Parse extracts the clauses of a query into a ParsedQuery. maxRows is the
// row ceiling used for absent or oversized LIMIT values; values <= 0 select
// DefaultMaxResultRows. A query without a SELECT clause fails with
// model.ErrParseAmbiguity.
func Parse(text string, maxRows int) (*model.ParsedQuery, error) {
	if maxRows <= 0 {
		maxRows = DefaultMaxResultRows
	}

	text = strings.TrimSpace(strings.TrimRight(text, "; \t\r\n"))

	cl := scanClauses(text)
	selectText, ok := cl[clauseSelect]
	if !ok {
		return nil, fmt.Errorf("%w: no SELECT clause", model.ErrParseAmbiguity)
	}
	selectText = distinctPattern.ReplaceAllString(selectText, "")
	if selectText == "" {
		return nil, fmt.Errorf("%w: empty SELECT clause", model.ErrParseAmbiguity)
	}

	q := &model.ParsedQuery{
		Where:          cl[clauseWhere],
		RequestedLimit: -1,
		Limit:          maxRows,
	}

	if isWildcard(selectText) {
		q.Wildcard = true
	} else {
		for _, item := range splitTopLevel(selectText, ',') {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}
			if isWildcard(item) {
				q.Wildcard = true
				continue
			}
			q.SelectFields = append(q.SelectFields, parseField(item))
		}
		if len(q.SelectFields) == 0 && !q.Wildcard {
			return nil, fmt.Errorf("%w: no SELECT fields", model.ErrParseAmbiguity)
		}
	}

	if from, ok := cl[clauseFrom]; ok {
		q.Table = parseTable(from)
	}
	if group, ok := cl[clauseGroupBy]; ok {
		q.GroupBy = parseGroupBy(group, q.SelectFields)
	}
	if order, ok := cl[clauseOrderBy]; ok {
		q.OrderBy = parseOrderBy(order, q.SelectFields)
	}
	if limit, ok := cl[clauseLimit]; ok {
		if m := limitPattern.FindStringSubmatch(limit); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				q.RequestedLimit = n
				q.Limit = n
			} else {
				// overflow
				q.RequestedLimit = maxRows + 1
			}
			if q.RequestedLimit > maxRows {
				q.Limit = maxRows
				q.LimitClamped = true
			}
		}
	}
	return q, nil
}

// isWildcard reports whether s is "*" or "table.*"
func isWildcard(s string) bool {
	s = strings.TrimSpace(s)
	return s == "*" || (strings.HasSuffix(s, ".*") && isQualifier(strings.TrimSuffix(s, ".*")))
}

// parseField parses one SELECT item. Unrecognized expressions become column
// fields named after the expression text, which project as Null.
func parseField(item string) model.FieldSpec {
	expr, alias := splitAlias(item)

	if m := callPattern.FindStringSubmatch(expr); m != nil {
		name, arg := m[1], strings.TrimSpace(m[2])
		if fn, ok := model.ParseDateFunction(name); ok {
			return model.DateFunctionField(fn, normalizeIdent(arg), alias)
		}
		if fn, ok := model.ParseAggregateFunction(name); ok {
			distinct := false
			if loc := distinctPattern.FindStringIndex(arg); loc != nil {
				distinct = true
				arg = arg[loc[1]:]
			}
			column := normalizeIdent(arg)
			if isWildcard(arg) {
				column = "*"
			}
			f := model.AggregateField(fn, column, alias)
			f.Distinct = distinct && !f.Star
			if f.Distinct {
				f.Expr = fn.String() + "(DISTINCT " + f.Column + ")"
			}
			return f
		}
	}

	column := normalizeIdent(expr)
	if alias != "" {
		return model.AliasedColumnField(column, alias)
	}
	return model.ColumnField(column)
}

// splitAlias separates "expr AS alias" and "expr alias"
func splitAlias(item string) (string, string) {
	if start, end := lastWord(item, "AS"); start > 0 {
		expr := strings.TrimSpace(item[:start])
		alias := normalizeIdent(item[end:])
		if expr != "" && alias != "" {
			return collapse(expr), alias
		}
	}

	parts := splitTopLevel(collapse(item), ' ')
	if len(parts) == 2 {
		expr, alias := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		if expr != "" && isQualifier(alias) {
			return collapse(expr), unquote(alias)
		}
	}
	return collapse(item), ""
}

// collapse normalizes whitespace outside of the expression's parentheses
func collapse(s string) string {
	return spaces.ReplaceAllString(strings.TrimSpace(s), " ")
}

// parseTable returns the first table reference of the FROM clause
func parseTable(from string) string {
	start, end := targetSpan(from, 0)
	return normalizeIdent(from[start:end])
}

// parseGroupBy parses the GROUP BY list. Ordinals ("GROUP BY 1") and SELECT
// aliases resolve to the SELECT expression they name.
func parseGroupBy(text string, fields []model.FieldSpec) []model.GroupFieldSpec {
	var out []model.GroupFieldSpec
	for _, item := range splitTopLevel(text, ',') {
		item = collapse(item)
		if item == "" {
			continue
		}
		if m := callPattern.FindStringSubmatch(item); m != nil {
			if fn, ok := model.ParseDateFunction(m[1]); ok {
				out = append(out, model.GroupFieldSpec{Function: fn, Column: normalizeIdent(m[2])})
				continue
			}
		}
		if f, ok := selectFieldByRef(item, fields); ok {
			switch f.Kind {
			case model.FieldDateFunction:
				out = append(out, model.GroupFieldSpec{Function: f.DateFunc, Column: f.Column})
				continue
			case model.FieldColumn, model.FieldAliasedColumn:
				out = append(out, model.GroupFieldSpec{Column: f.Column})
				continue
			}
		}
		out = append(out, model.GroupFieldSpec{Column: normalizeIdent(item)})
	}
	return out
}

// selectFieldByRef resolves a 1-based ordinal or an alias that differs from
// the field's own column.
func selectFieldByRef(ref string, fields []model.FieldSpec) (model.FieldSpec, bool) {
	if n, err := strconv.Atoi(ref); err == nil {
		if n >= 1 && n <= len(fields) {
			return fields[n-1], true
		}
		return model.FieldSpec{}, false
	}
	name := normalizeIdent(ref)
	for _, f := range fields {
		if f.Alias != "" && strings.EqualFold(f.Alias, name) && !strings.EqualFold(f.Alias, f.Column) {
			return f, true
		}
	}
	return model.FieldSpec{}, false
}

// parseOrderBy parses the first ORDER BY item; further items are ignored
func parseOrderBy(text string, fields []model.FieldSpec) *model.OrderBy {
	item := collapse(splitTopLevel(text, ',')[0])
	if item == "" {
		return nil
	}

	direction := model.Ascending
	if i := strings.LastIndexByte(item, ' '); i > 0 {
		switch strings.ToUpper(item[i+1:]) {
		case "DESC":
			direction = model.Descending
			item = strings.TrimSpace(item[:i])
		case "ASC":
			item = strings.TrimSpace(item[:i])
		}
	}

	field := item
	if n, err := strconv.Atoi(item); err == nil && n >= 1 && n <= len(fields) {
		field = fields[n-1].OutputName()
	} else if !strings.Contains(item, "(") {
		field = normalizeIdent(item)
	}
	return &model.OrderBy{Field: field, Direction: direction}
}
