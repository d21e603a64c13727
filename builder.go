package filequery

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nao1215/filequery/diag"
	"github.com/nao1215/filequery/domain/model"
	"github.com/nao1215/filequery/source"
)

// Builder configures the sources of a Querier.
// Use NewBuilder to create a new instance, then chain method calls to configure it.
//
// The typical usage pattern is:
//
//	q, err := filequery.NewBuilder().
//		AddPath("sales.csv").
//		AddPath("s3://bucket/orders.tsv.gz").
//		Build(ctx)
//	if err != nil {
//		return err
//	}
//	defer q.Close()
//	res, err := q.Query(ctx, "SELECT region, SUM(amount) FROM sales GROUP BY region")
type Builder struct {
	// paths contains local paths, directories and remote URLs
	paths []string
	// filesystems contains fs.FS instances
	filesystems []fs.FS
	// readers contains in-memory inputs
	readers []readerInput
	// databases contains SQL database registrations
	databases []databaseInput
	// fallbacks maps a table name to its fallback location
	fallbacks map[string]string
	// handlers override the reader used for a location scheme
	handlers map[source.Scheme]source.Reader

	cfg         Config
	logger      log.Logger
	registerer  prometheus.Registerer
	diagnostics diag.Sink
}

// readerInput represents a reader input source
type readerInput struct {
	reader    io.Reader
	tableName string
	fileType  model.FileType
}

// databaseInput represents a SQL database registration
type databaseInput struct {
	name       string
	driverName string
	dsn        string
}

// NewBuilder creates a new builder with the default configuration
func NewBuilder() *Builder {
	return &Builder{
		fallbacks: make(map[string]string),
		handlers:  make(map[source.Scheme]source.Reader),
		cfg:       DefaultConfig(),
		logger:    log.NewNopLogger(),
	}
}

// AddPath adds a file, a directory or a remote location to the builder.
// The location can be:
//   - A single file with a supported extension (.csv, .tsv, .ltsv, .xlsx, .parquet)
//   - A directory path (all supported files will be registered recursively)
//   - An s3://bucket/key or http(s):// URL, fetched at query time
//
// Supported compression: .gz, .bz2, .xz, .zst
func (b *Builder) AddPath(path string) *Builder {
	b.paths = append(b.paths, path)
	return b
}

// AddPaths adds multiple locations, following the same rules as AddPath.
func (b *Builder) AddPaths(paths ...string) *Builder {
	b.paths = append(b.paths, paths...)
	return b
}

// AddFS adds all supported files from an fs.FS filesystem to the builder.
// This is useful for embedded filesystems using go:embed.
func (b *Builder) AddFS(filesystem fs.FS) *Builder {
	b.filesystems = append(b.filesystems, filesystem)
	return b
}

// AddReader adds uncompressed content from an io.Reader as the table tableName.
// The reader is drained during Build.
func (b *Builder) AddReader(reader io.Reader, tableName string, fileType model.FileType) *Builder {
	b.readers = append(b.readers, readerInput{
		reader:    reader,
		tableName: tableName,
		fileType:  fileType,
	})
	return b
}

// AddDatabase registers a SQL database queried through database/sql with
// Querier.QueryDatabase. The "sqlite" driver is always available.
func (b *Builder) AddDatabase(name, driverName, dsn string) *Builder {
	b.databases = append(b.databases, databaseInput{
		name:       name,
		driverName: driverName,
		dsn:        dsn,
	})
	return b
}

// WithFallback sets the location read when the primary read of table fails.
// Without a fallback location the primary location is read again.
func (b *Builder) WithFallback(table, location string) *Builder {
	b.fallbacks[table] = location
	return b
}

// WithReader replaces the reader used for locations of the given scheme
func (b *Builder) WithReader(scheme source.Scheme, r source.Reader) *Builder {
	b.handlers[scheme] = r
	return b
}

// WithConfig replaces the configuration
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.cfg = cfg
	return b
}

// WithLogger sets the logger diagnostics are written to
func (b *Builder) WithLogger(logger log.Logger) *Builder {
	b.logger = logger
	return b
}

// WithRegisterer registers the query metrics with reg
func (b *Builder) WithRegisterer(reg prometheus.Registerer) *Builder {
	b.registerer = reg
	return b
}

// WithDiagnostics sends every diagnostic event to sink in addition to the logger
func (b *Builder) WithDiagnostics(sink diag.Sink) *Builder {
	b.diagnostics = sink
	return b
}

// Build validates all configured inputs and returns a Querier.
// It performs the following operations:
//
// 1. Validates the configuration and that at least one input source is configured
// 2. Checks existence and format of local paths, expanding directories
// 3. Drains reader inputs so every query reads them afresh
// 4. Opens and pings every registered database
//
// Table names are derived from file names without extensions:
// "sales-2024.csv.gz" becomes table "sales_2024".
func (b *Builder) Build(ctx context.Context) (*Querier, error) {
	if len(b.paths) == 0 && len(b.filesystems) == 0 && len(b.readers) == 0 && len(b.databases) == 0 {
		return nil, errors.New("at least one source must be provided")
	}
	if err := b.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := b.logger
	if logger == nil {
		logger = log.NewNopLogger()
	}
	router := source.NewRouter(b.cfg.sourceOptions())
	for scheme, r := range b.handlers {
		router.Handle(scheme, r)
	}
	q := newQuerier(b.cfg, router, logger, diag.NewMetrics(b.registerer), b.diagnostics)

	v := newValidator()
	for _, path := range b.paths {
		sources, err := v.collectPath(path)
		if err != nil {
			return nil, err
		}
		if err := q.addTables(sources...); err != nil {
			return nil, err
		}
	}
	for _, filesystem := range b.filesystems {
		sources, err := v.collectFS(filesystem)
		if err != nil {
			return nil, fmt.Errorf("failed to process FS input: %w", err)
		}
		if err := q.addTables(sources...); err != nil {
			return nil, err
		}
	}
	for _, in := range b.readers {
		src, err := v.collectReader(in)
		if err != nil {
			return nil, err
		}
		if err := q.addTables(src); err != nil {
			return nil, err
		}
	}
	for table, location := range b.fallbacks {
		src, ok := q.tables[strings.ToLower(table)]
		if !ok {
			return nil, fmt.Errorf("%w: fallback for %q", model.ErrTableNotFound, table)
		}
		src.fallback = location
	}

	for _, in := range b.databases {
		if err := b.openDatabase(ctx, q, v, in); err != nil {
			return nil, errors.Join(err, q.Close())
		}
	}
	return q, nil
}

// openDatabase opens, pings and registers one database
func (b *Builder) openDatabase(ctx context.Context, q *Querier, v *validator, in databaseInput) error {
	if err := v.validateDatabase(in); err != nil {
		return err
	}

	db, err := sql.Open(in.driverName, in.dsn)
	if err != nil {
		return fmt.Errorf("failed to open database %s: %w", in.name, err)
	}
	if err := db.PingContext(ctx); err != nil {
		var allErrors []error
		allErrors = append(allErrors, fmt.Errorf("failed to ping database %s: %w", in.name, err))
		if closeErr := db.Close(); closeErr != nil {
			allErrors = append(allErrors, fmt.Errorf("failed to close database: %w", closeErr))
		}
		return errors.Join(allErrors...)
	}
	if err := q.addDatabase(in.name, db); err != nil {
		return errors.Join(err, db.Close())
	}
	return nil
}
