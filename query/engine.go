package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/nao1215/filequery/diag"
	"github.com/nao1215/filequery/domain/model"
)

// DefaultFallbackRows is the size of the raw table prefix returned on fallback
const DefaultFallbackRows = 10

// checkEvery is how many rows are filtered between context checks
const checkEvery = 1024

// Options configures an Engine
type Options struct {
	// MaxResultRows is the hard ceiling on returned rows
	MaxResultRows int
	// FallbackRows is the number of raw rows returned when a query cannot be executed
	FallbackRows int
	// GroupByPolicy handles bare fields under aggregation
	GroupByPolicy GroupByPolicy
	// Diagnostics receives diagnostic events, may be nil
	Diagnostics diag.Sink
}

// Engine runs queries against tables. It holds no per-query state and is
// safe for concurrent use.
type Engine struct {
	opts Options
}

// NewEngine creates an Engine, filling unset options with defaults
func NewEngine(opts Options) *Engine {
	if opts.MaxResultRows <= 0 {
		opts.MaxResultRows = DefaultMaxResultRows
	}
	if opts.FallbackRows <= 0 {
		opts.FallbackRows = DefaultFallbackRows
	}
	if opts.Diagnostics == nil {
		opts.Diagnostics = diag.Nop
	}
	return &Engine{opts: opts}
}

// Options returns the effective options
func (e *Engine) Options() Options {
	return e.opts
}

// Execute parses text and runs it against table. It always returns a result:
// when the query cannot be parsed or executed, the first FallbackRows raw
// rows are returned with Fallback set.
func (e *Engine) Execute(ctx context.Context, table *model.Table, text string) *model.Result {
	q, err := Parse(text, e.opts.MaxResultRows)
	if err != nil {
		e.emit(diag.KindParseAmbiguity, "query could not be parsed", "query", text, "err", err)
		return e.fallback(table, err)
	}
	return e.ExecuteParsed(ctx, table, q)
}

// ExecuteParsed runs a parsed query: Filter, then Aggregate or Project, then
// Sort, then Limit.
func (e *Engine) ExecuteParsed(ctx context.Context, table *model.Table, q *model.ParsedQuery) *model.Result {
	if q.LimitClamped {
		e.emit(diag.KindLimitClamped, "requested LIMIT exceeds the row ceiling",
			"requested", q.RequestedLimit, "max", e.opts.MaxResultRows)
	}

	res, err := e.run(ctx, table, q)
	if err != nil {
		if errors.Is(err, model.ErrStrictGroupBy) {
			e.emit(diag.KindStrictGroupByRejected, "query rejected by strict GROUP BY policy", "err", err)
		}
		return e.fallback(table, err)
	}
	return res
}

func (e *Engine) run(ctx context.Context, table *model.Table, q *model.ParsedQuery) (res *model.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", model.ErrEvaluation, r)
		}
	}()
	if table == nil {
		return nil, fmt.Errorf("%w: no table", model.ErrEvaluation)
	}

	schema := table.Schema()
	filtered, err := e.filter(ctx, table, CompilePredicate(q.Where, schema, e.opts.Diagnostics))
	if err != nil {
		return nil, err
	}

	var (
		out  *model.Schema
		rows []model.Row
	)
	if q.IsAggregation() {
		out, rows, err = Aggregate(schema, filtered, q, e.opts.GroupByPolicy, e.opts.Diagnostics)
		if err != nil {
			return nil, err
		}
		if q.OrderBy != nil && len(rows) > 0 {
			i, strategy := resolveAggregateOrder(q.OrderBy.Field, out, rows, q)
			e.emit(diag.KindOrderByResolved, "ORDER BY resolved",
				"requested", q.OrderBy.Field, "column", out.Columns()[i], "strategy", strategy)
			sortBy(rows, func(r model.Row) model.Value { return r.At(i) }, q.OrderBy.Direction)
		}
	} else {
		out, rows = Project(schema, filtered, q)
		if q.OrderBy != nil {
			rows = e.orderProjected(schema, filtered, out, rows, q)
		}
	}

	return model.NewResult(out, e.limit(q, rows)), nil
}

// filter applies the predicate, checking ctx periodically
func (e *Engine) filter(ctx context.Context, table *model.Table, pred Predicate) ([]model.Row, error) {
	filtered := make([]model.Row, 0, table.Len())
	for i, row := range table.Rows() {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if pred(row) {
			filtered = append(filtered, row)
		}
	}
	return filtered, nil
}

// orderProjected sorts projected rows, resolving the key against output and
// source columns. Unresolved fields keep source order.
func (e *Engine) orderProjected(
	source *model.Schema,
	sourceRows []model.Row,
	out *model.Schema,
	outRows []model.Row,
	q *model.ParsedQuery,
) []model.Row {
	key, column, strategy := projectedOrder(q.OrderBy.Field, source, sourceRows, out, outRows, q)
	e.emit(diag.KindOrderByResolved, "ORDER BY resolved",
		"requested", q.OrderBy.Field, "column", column, "strategy", strategy)
	if key == nil {
		return outRows
	}

	perm := make([]int, len(outRows))
	for i := range perm {
		perm[i] = i
	}
	sortBy(perm, key, q.OrderBy.Direction)

	sorted := make([]model.Row, len(perm))
	for i, n := range perm {
		sorted[i] = outRows[n]
	}
	return sorted
}

// limit applies LIMIT and the row ceiling
func (e *Engine) limit(q *model.ParsedQuery, rows []model.Row) []model.Row {
	n := q.Limit
	if n < 0 || n > e.opts.MaxResultRows {
		n = e.opts.MaxResultRows
	}
	if q.RequestedLimit < 0 && len(rows) > e.opts.MaxResultRows {
		e.emit(diag.KindLimitClamped, "result truncated to the row ceiling",
			"rows", len(rows), "max", e.opts.MaxResultRows)
	}
	if len(rows) > n {
		rows = rows[:n]
	}
	return rows
}

// fallback returns the first FallbackRows raw rows of table
func (e *Engine) fallback(table *model.Table, cause error) *model.Result {
	if table == nil {
		res := model.NewResult(nil, nil)
		res.Fallback = true
		res.FallbackReason = cause.Error()
		return res
	}

	rows := table.Prefix(e.opts.FallbackRows)
	e.emit(diag.KindFallbackPrefix, "returning raw table prefix",
		"rows", len(rows), "reason", cause.Error())

	res := model.NewResult(table.Schema(), rows)
	res.Fallback = true
	res.FallbackReason = cause.Error()
	return res
}

func (e *Engine) emit(kind diag.Kind, msg string, keyvals ...any) {
	e.opts.Diagnostics.Emit(diag.NewEvent(kind, msg, keyvals...))
}
