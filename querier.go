package filequery

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/grafana/dskit/backoff"

	"github.com/nao1215/filequery/diag"
	"github.com/nao1215/filequery/domain/model"
	"github.com/nao1215/filequery/loader"
	"github.com/nao1215/filequery/query"
	"github.com/nao1215/filequery/source"
)

// readAttempts is the primary read plus one fallback read
const readAttempts = 2

// tableSource is one queryable file registration
type tableSource struct {
	name     string
	location string
	// fallback is read when the primary read fails, empty means location again
	fallback string
	fileType model.FileType
	// reader serves this source only, nil uses the Querier's router
	reader source.Reader
}

// newTableSource derives the table name and file type from location
func newTableSource(location string, reader source.Reader) *tableSource {
	return &tableSource{
		name:     model.TableFromFilePath(stripURL(location)),
		location: location,
		fileType: model.DetectFileType(location),
		reader:   reader,
	}
}

// stripURL drops the query string and fragment of a remote location
func stripURL(location string) string {
	if source.DetectScheme(location) == source.SchemeLocal {
		return location
	}
	if i := strings.IndexAny(location, "?#"); i >= 0 {
		return location[:i]
	}
	return location
}

// Querier answers queries over registered file tables and SQL databases.
// Every call reads its source afresh; the Querier itself holds only
// immutable configuration and is safe for concurrent use.
type Querier struct {
	cfg     Config
	engine  *query.Engine
	router  *source.Router
	logger  log.Logger
	metrics *diag.Metrics
	sink    diag.Sink

	tables map[string]*tableSource
	dbs    map[string]*sql.DB
	// names keeps registration order for Tables
	names []string
}

func newQuerier(cfg Config, router *source.Router, logger log.Logger, metrics *diag.Metrics, extra diag.Sink) *Querier {
	sink := diag.Multi(diag.NewLogSink(logger), metrics, extra)
	opts := cfg.engineOptions()
	opts.Diagnostics = sink
	return &Querier{
		cfg:     cfg,
		engine:  query.NewEngine(opts),
		router:  router,
		logger:  logger,
		metrics: metrics,
		sink:    sink,
		tables:  make(map[string]*tableSource),
		dbs:     make(map[string]*sql.DB),
	}
}

// addTables registers file sources, rejecting duplicate names
func (q *Querier) addTables(sources ...*tableSource) error {
	for _, src := range sources {
		key := strings.ToLower(src.name)
		if _, ok := q.tables[key]; ok {
			return fmt.Errorf("%w: %s (from %s)", model.ErrDuplicateTableName, src.name, src.location)
		}
		q.tables[key] = src
		q.names = append(q.names, src.name)
	}
	return nil
}

// addDatabase registers an opened database
func (q *Querier) addDatabase(name string, db *sql.DB) error {
	key := strings.ToLower(name)
	if _, ok := q.dbs[key]; ok {
		return fmt.Errorf("%w: database %s", model.ErrDuplicateTableName, name)
	}
	q.dbs[key] = db
	return nil
}

// Tables returns the registered file table names in registration order
func (q *Querier) Tables() []string {
	out := make([]string, len(q.names))
	copy(out, q.names)
	return out
}

// Query runs text against the file table named in its FROM clause. When the
// FROM clause is missing or names an unknown table and exactly one table is
// registered, that table is used.
//
// The returned error is non-nil only when the table cannot be found or both
// the primary and the fallback read fail. Query problems never fail: the
// result then holds a raw table prefix with Fallback set.
func (q *Querier) Query(ctx context.Context, text string) (*model.Result, error) {
	start := time.Now()
	defer func() {
		q.metrics.QueryDuration.Observe(time.Since(start).Seconds())
	}()

	src, err := q.route(query.FromTable(text))
	if err != nil {
		return nil, err
	}
	table, err := q.read(ctx, src)
	if err != nil {
		return nil, err
	}

	res := q.engine.Execute(ctx, table, NormalizeTableName(text, src.name))
	path := "file"
	if res.Fallback {
		path = "fallback"
	}
	q.metrics.QueriesTotal.WithLabelValues(path).Inc()
	return res, nil
}

// Load reads and types the table without running a query
func (q *Querier) Load(ctx context.Context, table string) (*model.Table, error) {
	src, err := q.route(table)
	if err != nil {
		return nil, err
	}
	return q.read(ctx, src)
}

// route resolves a table name to its source
func (q *Querier) route(name string) (*tableSource, error) {
	if src, ok := q.tables[strings.ToLower(name)]; ok {
		return src, nil
	}
	if len(q.tables) == 1 {
		return q.tables[strings.ToLower(q.names[0])], nil
	}
	return nil, fmt.Errorf("%w: %q", model.ErrTableNotFound, name)
}

// read fetches and loads src. A failed primary read is followed by one
// fallback read after the configured backoff; when both fail the errors are
// returned together under ErrCatastrophic.
func (q *Querier) read(ctx context.Context, src *tableSource) (*model.Table, error) {
	b := backoff.New(ctx, backoff.Config{
		MinBackoff: q.cfg.ReadRetryBackoff,
		MaxBackoff: q.cfg.ReadRetryBackoff,
		MaxRetries: readAttempts,
	})

	var errs []error
	for b.Ongoing() {
		attempt := b.NumRetries()
		location := src.location
		if attempt > 0 && src.fallback != "" {
			location = src.fallback
		}

		table, err := q.readOnce(ctx, src, location)
		if err == nil {
			return table, nil
		}
		errs = append(errs, err)
		q.metrics.ReadFailures.WithLabelValues(strconv.Itoa(attempt + 1)).Inc()
		if attempt == 0 {
			q.sink.Emit(diag.NewEvent(diag.KindReadRetry, "primary read failed, trying fallback",
				"table", src.name, "location", location, "err", err))
		}
		b.Wait()
	}

	if len(errs) < readAttempts {
		errs = append(errs, b.Err())
		return nil, model.NewErrorContext("read", src.location).WithTable(src.name).Error(errors.Join(errs...))
	}
	level.Error(q.logger).Log("msg", "primary and fallback reads failed", "table", src.name, "location", src.location)
	return nil, fmt.Errorf("%w: %w", model.ErrCatastrophic, errors.Join(errs...))
}

// readOnce fetches location and loads it as a table
func (q *Querier) readOnce(ctx context.Context, src *tableSource, location string) (*model.Table, error) {
	r := src.reader
	if r == nil {
		r = q.router
	}
	data, err := r.Read(ctx, location)
	if err != nil {
		return nil, err
	}

	fileType := src.fileType
	if ft := model.DetectFileType(location); ft != model.FileTypeUnsupported {
		fileType = ft
	}
	return loader.LoadContext(ctx, src.name, fileType, data)
}

// Close closes every registered database
func (q *Querier) Close() error {
	var errs []error
	for name, db := range q.dbs {
		if err := db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
