package query

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/nao1215/filequery/diag"
	"github.com/nao1215/filequery/domain/model"
)

// groupKeySeparator joins bucket fragments into a GroupKey
const groupKeySeparator = "\x1f"

// GroupByPolicy decides how SELECT fields that are neither grouped nor
// aggregated are handled.
type GroupByPolicy int

const (
	// FirstWins takes the value of the first member row of each group
	FirstWins GroupByPolicy = iota
	// Strict rejects queries with such fields
	Strict
)

// String returns the configuration name of the policy
func (p GroupByPolicy) String() string {
	if p == Strict {
		return "strict"
	}
	return "first_wins"
}

// MarshalText implements encoding.TextMarshaler
func (p GroupByPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (p *GroupByPolicy) UnmarshalText(text []byte) error {
	policy, err := ParseGroupByPolicy(string(text))
	if err != nil {
		return err
	}
	*p = policy
	return nil
}

// ParseGroupByPolicy parses "first_wins" or "strict"
func ParseGroupByPolicy(s string) (GroupByPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "first_wins", "first-wins", "firstwins":
		return FirstWins, nil
	case "strict":
		return Strict, nil
	default:
		return FirstWins, fmt.Errorf("unknown group by policy %q", s)
	}
}

// group is one aggregation bucket
type group struct {
	fragments []string
	members   []model.Row
}

func (g *group) first() (model.Row, bool) {
	if len(g.members) == 0 {
		return model.Row{}, false
	}
	return g.members[0], true
}

// groupField is a resolved GROUP BY item
type groupField struct {
	spec  model.GroupFieldSpec
	index int
	found bool
	name  string
	// field is the SELECT field naming this group item, -1 when none
	field int
	// sawDate is set when a plain item bucketed a date value
	sawDate bool
}

// Aggregate groups rows and evaluates the SELECT list per group. Without
// GROUP BY exactly one row is produced. Group-identifying fields come first,
// followed by the remaining SELECT fields in order. Groups are ordered
// chronologically for YEAR and MONTH buckets, then by the remaining items.
func Aggregate(
	schema *model.Schema,
	rows []model.Row,
	q *model.ParsedQuery,
	policy GroupByPolicy,
	sink diag.Sink,
) (*model.Schema, []model.Row, error) {
	if sink == nil {
		sink = diag.Nop
	}

	fields := resolveGroupFields(schema, q)
	consumed := make(map[int]bool, len(fields))
	for _, gf := range fields {
		if gf.field >= 0 {
			consumed[gf.field] = true
		}
	}

	if policy == Strict {
		for i, f := range q.SelectFields {
			if !f.IsAggregate() && !consumed[i] && !matchesGroup(f, fields) {
				return nil, nil, fmt.Errorf("%w: %s", model.ErrStrictGroupBy, f.Expr)
			}
		}
	}

	groups := buildGroups(rows, fields)
	if len(fields) > 0 {
		sortGroups(groups, fields)
	}

	var (
		names    []string
		builders []func(*group) model.Value
		seen     = make(map[string]struct{})
	)
	add := func(name string, build func(*group) model.Value) {
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		names = append(names, name)
		builders = append(builders, build)
	}

	for i := range fields {
		gf := &fields[i]
		pos := i
		add(gf.name, func(g *group) model.Value {
			first := model.Null()
			if row, ok := g.first(); ok && gf.found {
				first = row.At(gf.index)
			}
			return bucketValue(gf.spec.Function, g.fragments[pos], first)
		})
	}
	for i, f := range q.SelectFields {
		if consumed[i] {
			continue
		}
		add(f.OutputName(), selectValue(schema, f))
	}

	out := model.NewSchema(names)
	result := make([]model.Row, len(groups))
	for i, g := range groups {
		values := make([]model.Value, len(builders))
		for j, build := range builders {
			values[j] = build(g)
		}
		result[i] = out.NewRow(values)
	}

	emitGroupDiagnostics(sink, groups, fields)
	return out, result, nil
}

// resolveGroupFields locates each GROUP BY column and names it after the
// first SELECT field denoting the same expression.
func resolveGroupFields(schema *model.Schema, q *model.ParsedQuery) []groupField {
	fields := make([]groupField, len(q.GroupBy))
	claimed := make(map[int]bool)
	for i, spec := range q.GroupBy {
		gf := groupField{spec: spec, field: -1, name: spec.DefaultName()}
		gf.index, gf.found = schema.Index(spec.Column)
		for j, f := range q.SelectFields {
			if !claimed[j] && spec.Matches(f) {
				gf.field = j
				gf.name = f.OutputName()
				claimed[j] = true
				break
			}
		}
		fields[i] = gf
	}
	return fields
}

func matchesGroup(f model.FieldSpec, fields []groupField) bool {
	for _, gf := range fields {
		if gf.spec.Matches(f) {
			return true
		}
	}
	return false
}

// buildGroups assigns rows to buckets in first-seen order. Without group
// fields every row joins a single group, which exists even for zero rows.
func buildGroups(rows []model.Row, fields []groupField) []*group {
	if len(fields) == 0 {
		return []*group{{members: rows}}
	}

	var (
		groups []*group
		byKey  = make(map[string]*group)
	)
	for _, row := range rows {
		fragments := make([]string, len(fields))
		for i := range fields {
			v := model.Null()
			if fields[i].found {
				v = row.At(fields[i].index)
			}
			if fields[i].spec.Function == model.DateFuncNone && v.Kind() == model.KindDate {
				fields[i].sawDate = true
			}
			fragments[i] = bucket(fields[i].spec.Function, v)
		}

		key := strings.Join(fragments, groupKeySeparator)
		g, ok := byKey[key]
		if !ok {
			g = &group{fragments: fragments}
			byKey[key] = g
			groups = append(groups, g)
		}
		g.members = append(g.members, row)
	}
	return groups
}

// sortGroups orders groups by YEAR fragments, then MONTH fragments, then the
// remaining items in GROUP BY order.
func sortGroups(groups []*group, fields []groupField) {
	var order []int
	for _, fn := range []model.DateFunction{model.DateFuncYear, model.DateFuncMonth} {
		for i, gf := range fields {
			if gf.spec.Function == fn {
				order = append(order, i)
			}
		}
	}
	for i, gf := range fields {
		if gf.spec.Function != model.DateFuncYear && gf.spec.Function != model.DateFuncMonth {
			order = append(order, i)
		}
	}

	slices.SortStableFunc(groups, func(a, b *group) int {
		for _, i := range order {
			if c := compareFragments(fields[i].spec.Function, a.fragments[i], b.fragments[i]); c != 0 {
				return c
			}
		}
		return 0
	})
}

// compareFragments compares bucket fragments. NULL sorts last.
func compareFragments(fn model.DateFunction, a, b string) int {
	switch {
	case a == b:
		return 0
	case a == nullBucket:
		return 1
	case b == nullBucket:
		return -1
	}

	switch fn {
	case model.DateFuncYear, model.DateFuncMonth, model.DateFuncDay:
		x, errA := strconv.Atoi(a)
		y, errB := strconv.Atoi(b)
		if errA == nil && errB == nil {
			return cmp.Compare(x, y)
		}
	case model.DateFuncDate:
		x, okA := model.ParseDate(a)
		y, okB := model.ParseDate(b)
		if okA && okB {
			return x.Compare(y)
		}
	}
	return strings.Compare(a, b)
}

// selectValue returns the per-group evaluator of a SELECT field that does
// not identify the group.
func selectValue(schema *model.Schema, f model.FieldSpec) func(*group) model.Value {
	index, found := schema.Index(f.Column)
	if f.IsAggregate() {
		return func(g *group) model.Value {
			return evaluateAggregate(f, index, found, g.members)
		}
	}
	return func(g *group) model.Value {
		row, ok := g.first()
		if !ok || !found {
			return model.Null()
		}
		if f.Kind == model.FieldDateFunction {
			return applyDateFunction(f.DateFunc, row.At(index))
		}
		return row.At(index)
	}
}

// evaluateAggregate computes one aggregate over the member rows. SUM and AVG
// use decimal arithmetic; AVG is rounded to two places. Without parseable
// values every function yields 0.
func evaluateAggregate(f model.FieldSpec, index int, found bool, members []model.Row) model.Value {
	if f.Aggregate == model.AggCount && f.Star {
		return model.Number(float64(len(members)))
	}
	if !found {
		return model.Number(0)
	}

	switch f.Aggregate {
	case model.AggCount:
		return evaluateCount(index, f.Distinct, members)
	case model.AggSum, model.AggAvg:
		sum, n := sumNumbers(index, members)
		if n == 0 {
			return model.Number(0)
		}
		if f.Aggregate == model.AggAvg {
			sum = sum.Div(decimal.NewFromInt(int64(n))).Round(2)
		}
		return model.Number(sum.InexactFloat64())
	case model.AggMin:
		return evaluateExtreme(index, members, -1)
	case model.AggMax:
		return evaluateExtreme(index, members, 1)
	default:
		return model.Null()
	}
}

func evaluateCount(index int, distinct bool, members []model.Row) model.Value {
	count := 0
	seen := make(map[string]struct{})
	for _, row := range members {
		v := row.At(index)
		if v.IsNull() {
			continue
		}
		if distinct {
			key := fmt.Sprint(v.Interface())
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
		}
		count++
	}
	return model.Number(float64(count))
}

func sumNumbers(index int, members []model.Row) (decimal.Decimal, int) {
	sum := decimal.Zero
	n := 0
	for _, row := range members {
		f, ok := row.At(index).Number()
		if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		sum = sum.Add(decimal.NewFromFloat(f))
		n++
	}
	return sum, n
}

// evaluateExtreme finds the minimum (sign -1) or maximum (sign 1). Numbers
// take precedence; a column without numbers but with dates yields a date.
func evaluateExtreme(index int, members []model.Row, sign int) model.Value {
	var (
		best  float64
		found bool
	)
	for _, row := range members {
		f, ok := row.At(index).Number()
		if !ok {
			continue
		}
		if !found || cmp.Compare(f, best) == sign {
			best, found = f, true
		}
	}
	if found {
		return model.Number(best)
	}

	var bestDate model.Value
	for _, row := range members {
		v := row.At(index)
		d, ok := v.Date()
		if !ok {
			continue
		}
		if bd, ok := bestDate.Date(); !ok || d.Compare(bd) == sign {
			bestDate = model.Date(d, "")
		}
	}
	if !bestDate.IsNull() {
		return bestDate
	}
	return model.Number(0)
}

// emitGroupDiagnostics reports the group count and warns about date bucketing
// that collapsed into a single bucket or only NULL buckets.
func emitGroupDiagnostics(sink diag.Sink, groups []*group, fields []groupField) {
	sink.Emit(diag.NewEvent(diag.KindGroupCount, "aggregation finished", "groups", len(groups)))
	if len(fields) == 0 || len(groups) == 0 {
		return
	}

	var dateFields []int
	for i, gf := range fields {
		if gf.spec.Function != model.DateFuncNone || gf.sawDate {
			dateFields = append(dateFields, i)
		}
	}
	if len(dateFields) == 0 {
		return
	}

	allNull := true
	for _, g := range groups {
		for _, i := range dateFields {
			if g.fragments[i] != nullBucket {
				allNull = false
			}
		}
	}
	switch {
	case allNull:
		sink.Emit(diag.NewEvent(diag.KindDegenerateTimeSeries, "date buckets are all NULL",
			"groups", len(groups)))
	case len(groups) == 1:
		sink.Emit(diag.NewEvent(diag.KindDegenerateTimeSeries, "date bucketing produced a single group",
			"bucket", strings.Join(groups[0].fragments, groupKeySeparator)))
	}
}
