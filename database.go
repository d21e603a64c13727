package filequery

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	// sqlite is the built-in driver for AddDatabase and CopyToDatabase
	_ "modernc.org/sqlite"

	"github.com/nao1215/filequery/diag"
	"github.com/nao1215/filequery/domain/model"
	"github.com/nao1215/filequery/query"
)

// QueryDatabase runs a read-only SELECT against the database registered as
// name. The text must pass the read-only validation; the result is capped at
// the configured row ceiling.
func (q *Querier) QueryDatabase(ctx context.Context, name, text string) (*model.Result, error) {
	start := time.Now()
	defer func() {
		q.metrics.QueryDuration.Observe(time.Since(start).Seconds())
	}()

	db, ok := q.dbs[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: database %q", model.ErrTableNotFound, name)
	}
	if err := query.ValidateReadOnly(text); err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, text)
	if err != nil {
		return nil, model.NewErrorContext("query", name).Error(err)
	}
	defer rows.Close()

	res, err := q.scanRows(rows)
	if err != nil {
		return nil, model.NewErrorContext("query", name).Error(err)
	}
	q.metrics.QueriesTotal.WithLabelValues("database").Inc()
	return res, nil
}

// scanRows converts sql rows into a Result, stopping at the row ceiling
func (q *Querier) scanRows(rows *sql.Rows) (*model.Result, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	schema := model.NewSchema(columns)

	raw := make([]any, len(columns))
	dest := make([]any, len(columns))
	for i := range raw {
		dest[i] = &raw[i]
	}

	var out []model.Row
	for rows.Next() {
		if len(out) == q.cfg.MaxResultRows {
			q.sink.Emit(diag.NewEvent(diag.KindLimitClamped, "result truncated to the row ceiling",
				"max", q.cfg.MaxResultRows))
			break
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		values := make([]model.Value, len(raw))
		for i, v := range raw {
			values[i] = databaseValue(v)
		}
		out = append(out, schema.NewRow(values))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return model.NewResult(schema, out), nil
}

// databaseValue converts a value scanned by database/sql
func databaseValue(v any) model.Value {
	switch x := v.(type) {
	case nil:
		return model.Null()
	case int64:
		return model.Number(float64(x))
	case float64:
		return model.Number(x)
	case []byte:
		return model.String(string(x))
	case string:
		return model.String(x)
	case time.Time:
		return model.Date(x, "")
	case bool:
		return model.String(strconv.FormatBool(x))
	default:
		return model.String(fmt.Sprint(x))
	}
}

// CopyToDatabase creates table.Name() in db and inserts every row inside one
// transaction. Column types follow the inferred types: INT as INTEGER,
// DECIMAL as REAL, everything else as TEXT with dates in ISO-8601 form.
func CopyToDatabase(ctx context.Context, db *sql.DB, table *model.Table) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, buildCreateTableQuery(table)); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table.Name(), err)
	}

	stmt, err := tx.PrepareContext(ctx, buildInsertQuery(table))
	if err != nil {
		return fmt.Errorf("failed to prepare insert for table %s: %w", table.Name(), err)
	}
	defer stmt.Close()

	args := make([]any, table.Schema().Len())
	for _, row := range table.Rows() {
		for i, v := range row.Values() {
			args[i] = v.Interface()
		}
		if _, err = stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert into table %s: %w", table.Name(), err)
		}
	}
	return tx.Commit()
}

// buildCreateTableQuery constructs a CREATE TABLE query for the given table
func buildCreateTableQuery(table *model.Table) string {
	columns := make([]string, 0, len(table.ColumnInfo()))
	for _, col := range table.ColumnInfo() {
		columns = append(columns, fmt.Sprintf(`[%s] %s`, col.Name, sqliteType(col.Type)))
	}
	return fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS [%s] (%s)`,
		table.Name(),
		strings.Join(columns, ", "),
	)
}

// buildInsertQuery constructs an INSERT query for the given table
func buildInsertQuery(table *model.Table) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", table.Schema().Len()), ", ")
	return fmt.Sprintf(`INSERT INTO [%s] VALUES (%s)`, table.Name(), placeholders)
}

// sqliteType maps an inferred column type to a SQLite column affinity
func sqliteType(ct model.ColumnType) string {
	switch ct {
	case model.ColumnTypeInteger:
		return "INTEGER"
	case model.ColumnTypeDecimal:
		return "REAL"
	default:
		return "TEXT"
	}
}
