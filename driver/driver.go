package driver

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"

	"github.com/nao1215/filequery"
	"github.com/nao1215/filequery/domain/model"
)

// DriverName is the name the driver is registered under
const DriverName = "filequery"

func init() {
	sql.Register(DriverName, NewDriver())
}

// Driver implements database/sql/driver.Driver interface for file queries.
type Driver struct{}

// Connector implements database/sql/driver.Connector interface.
// The dsn field contains locations separated by semicolons.
type Connector struct {
	driver *Driver
	dsn    string
}

// Connection implements database/sql/driver.Conn interface over a Querier.
type Connection struct {
	querier *filequery.Querier
}

// Statement implements database/sql/driver.Stmt interface.
type Statement struct {
	conn  *Connection
	query string
}

// Rows implements database/sql/driver.Rows interface over a query result.
type Rows struct {
	columns []string
	rows    []model.Row
	pos     int
}

// NewDriver creates a new file query driver
func NewDriver() *Driver {
	return &Driver{}
}

// Open implements driver.Driver interface
func (d *Driver) Open(dsn string) (driver.Conn, error) {
	connector, err := d.OpenConnector(dsn)
	if err != nil {
		return nil, err
	}
	return connector.Connect(context.Background())
}

// OpenConnector implements driver.DriverContext interface
func (d *Driver) OpenConnector(dsn string) (driver.Connector, error) {
	locations := splitDSN(dsn)
	if len(locations) == 0 {
		return nil, ErrNoPathsProvided
	}
	for _, location := range locations {
		if err := ValidatePath(location); err != nil {
			return nil, fmt.Errorf("%w: %q", err, location)
		}
	}
	return &Connector{driver: d, dsn: dsn}, nil
}

// Connect implements driver.Connector interface
func (c *Connector) Connect(ctx context.Context) (driver.Conn, error) {
	q, err := filequery.NewBuilder().AddPaths(splitDSN(c.dsn)...).Build(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to register sources: %w", err)
	}
	return &Connection{querier: q}, nil
}

// Driver implements driver.Connector interface
func (c *Connector) Driver() driver.Driver {
	return c.driver
}

// Prepare implements driver.Conn interface
func (conn *Connection) Prepare(query string) (driver.Stmt, error) {
	return conn.PrepareContext(context.Background(), query)
}

// PrepareContext implements driver.ConnPrepareContext interface
func (conn *Connection) PrepareContext(_ context.Context, query string) (driver.Stmt, error) {
	return &Statement{conn: conn, query: query}, nil
}

// QueryContext implements driver.QueryerContext interface
func (conn *Connection) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	if len(args) > 0 {
		return nil, ErrArgsNotSupported
	}
	res, err := conn.querier.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return &Rows{columns: res.Columns, rows: res.Rows}, nil
}

// Begin implements driver.Conn interface. Transactions are not supported.
func (conn *Connection) Begin() (driver.Tx, error) {
	return nil, ErrReadOnly
}

// Close implements driver.Conn interface
func (conn *Connection) Close() error {
	return conn.querier.Close()
}

// Close implements driver.Stmt interface
func (s *Statement) Close() error {
	return nil
}

// NumInput implements driver.Stmt interface. The count is not checked.
func (s *Statement) NumInput() int {
	return -1
}

// Exec implements driver.Stmt interface. The driver is read-only.
func (s *Statement) Exec(_ []driver.Value) (driver.Result, error) {
	return nil, ErrReadOnly
}

// Query implements driver.Stmt interface
func (s *Statement) Query(args []driver.Value) (driver.Rows, error) {
	named := make([]driver.NamedValue, len(args))
	for i, arg := range args {
		named[i] = driver.NamedValue{Ordinal: i + 1, Value: arg}
	}
	return s.QueryContext(context.Background(), named)
}

// QueryContext implements driver.StmtQueryContext interface
func (s *Statement) QueryContext(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	return s.conn.QueryContext(ctx, s.query, args)
}

// Columns implements driver.Rows interface
func (r *Rows) Columns() []string {
	return r.columns
}

// Close implements driver.Rows interface
func (r *Rows) Close() error {
	r.pos = len(r.rows)
	return nil
}

// Next implements driver.Rows interface. Numbers are float64, dates are
// ISO-8601 strings and nulls are nil.
func (r *Rows) Next(dest []driver.Value) error {
	if r.pos >= len(r.rows) {
		return io.EOF
	}
	for i, v := range r.rows[r.pos].Values() {
		if i < len(dest) {
			dest[i] = v.Interface()
		}
	}
	r.pos++
	return nil
}
