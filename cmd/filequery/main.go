// Command filequery runs a query against flat files and prints the result.
//
//	filequery -q "SELECT region, SUM(amount) AS total FROM sales GROUP BY region" sales.csv.gz
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/nao1215/filequery"
	"github.com/nao1215/filequery/domain/model"
	"github.com/nao1215/filequery/output"
)

const (
	databaseName = "db"
	// stdinLocation reads a table from standard input
	stdinLocation = "-"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	if err == nil || errors.Is(err, flag.ErrHelp) {
		return
	}
	fmt.Fprintln(os.Stderr, "filequery:", err)
	stop()
	os.Exit(1)
}

// options holds the command line flags that are not part of the config
type options struct {
	configFile string
	query      string
	format     output.Format
	outPath    string
	describe   bool
	exportPath string
	database   string
	logLevel   string
	stdinType  string
	stdinTable string
}

func (o *options) registerFlags(f *flag.FlagSet) {
	o.format = output.FormatJSON
	f.StringVar(&o.configFile, "config.file", "", "YAML config file. Flags override its values.")
	f.StringVar(&o.query, "q", "", "Query to run.")
	f.Var(&o.format, "f", "Output format: json, jsonl, csv, tsv, ltsv, table or xlsx.")
	f.StringVar(&o.outPath, "o", "", "Write the result to this file. Format and compression follow its extension.")
	f.BoolVar(&o.describe, "describe", false, "Print the schema of every table instead of running a query.")
	f.StringVar(&o.exportPath, "sqlite.export", "", "Copy every table into this SQLite database file instead of running a query.")
	f.StringVar(&o.database, "db", "", "Query a SQL database given as driver:dsn, e.g. sqlite:warehouse.db.")
	f.StringVar(&o.logLevel, "log.level", "warn", "Only log messages with the given severity or above: debug, info, warn or error.")
	f.StringVar(&o.stdinType, "stdin.type", "csv", "File type of the table read from standard input when a location is -.")
	f.StringVar(&o.stdinTable, "stdin.table", "stdin", "Table name of the table read from standard input.")
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var (
		cfg  filequery.Config
		opts options
	)
	fs := flag.NewFlagSet("filequery", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: filequery [flags] <location>...")
		fmt.Fprintln(fs.Output(), "A location of - reads the table from standard input.")
		fs.PrintDefaults()
	}
	cfg.RegisterFlags(fs)
	opts.registerFlags(fs)

	if path := configFileArg(args); path != "" {
		loaded, err := filequery.LoadConfig(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if opts.query == "" && !opts.describe && opts.exportPath == "" {
		return errors.New("-q is required")
	}

	logger, err := newLogger(stderr, opts.logLevel)
	if err != nil {
		return err
	}

	builder := filequery.NewBuilder().
		WithConfig(cfg).
		WithLogger(logger)
	for _, location := range fs.Args() {
		if location != stdinLocation {
			builder.AddPath(location)
			continue
		}
		fileType := model.ParseFileType(opts.stdinType)
		if fileType == model.FileTypeUnsupported {
			return fmt.Errorf("%w: -stdin.type %q", filequery.ErrUnsupportedFormat, opts.stdinType)
		}
		builder.AddReader(stdin, opts.stdinTable, fileType)
	}
	if opts.database != "" {
		driverName, dsn, ok := strings.Cut(opts.database, ":")
		if !ok {
			return fmt.Errorf("-db must be driver:dsn, got %q", opts.database)
		}
		builder.AddDatabase(databaseName, driverName, dsn)
	}

	q, err := builder.Build(ctx)
	if err != nil {
		return err
	}
	defer q.Close()

	switch {
	case opts.exportPath != "":
		return export(ctx, q, opts.exportPath, stdout)
	case opts.describe:
		return describe(ctx, q, stdout)
	}

	var res *filequery.Result
	if opts.database != "" {
		res, err = q.QueryDatabase(ctx, databaseName, opts.query)
	} else {
		res, err = q.Query(ctx, opts.query)
	}
	if err != nil {
		return err
	}
	if res.Fallback {
		level.Warn(logger).Log("msg", "query could not be executed, showing the first rows", "reason", res.FallbackReason)
	}

	if opts.outPath != "" {
		return output.Dump(res, opts.outPath, output.OptionsForPath(opts.outPath))
	}
	return output.Write(stdout, res, opts.format)
}

// configFileArg finds the value of -config.file before the flags are parsed
func configFileArg(args []string) string {
	for i, arg := range args {
		name := strings.TrimLeft(arg, "-")
		if name == arg {
			continue
		}
		if v, ok := strings.CutPrefix(name, "config.file="); ok {
			return v
		}
		if name == "config.file" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func newLogger(w io.Writer, lvl string) (log.Logger, error) {
	var allow level.Option
	switch strings.ToLower(lvl) {
	case "debug":
		allow = level.AllowDebug()
	case "info":
		allow = level.AllowInfo()
	case "warn":
		allow = level.AllowWarn()
	case "error":
		allow = level.AllowError()
	default:
		return nil, fmt.Errorf("unknown log level %q", lvl)
	}

	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = level.NewFilter(logger, allow)
	return log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller), nil
}

func describe(ctx context.Context, q *filequery.Querier, w io.Writer) error {
	descriptions := make([]*filequery.TableDescription, 0, len(q.Tables()))
	for _, name := range q.Tables() {
		desc, err := q.Describe(ctx, name)
		if err != nil {
			return err
		}
		descriptions = append(descriptions, desc)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(descriptions)
}

func export(ctx context.Context, q *filequery.Querier, path string, w io.Writer) (err error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()

	for _, name := range q.Tables() {
		table, err := q.Load(ctx, name)
		if err != nil {
			return err
		}
		if err := filequery.CopyToDatabase(ctx, db, table); err != nil {
			return err
		}
		fmt.Fprintf(w, "%s: %d rows\n", name, table.Len())
	}
	return nil
}
