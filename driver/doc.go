// Package driver registers filequery as a database/sql driver.
//
// Every query runs through the tolerant filequery engine, so a malformed
// statement yields the first rows of the table instead of an error. The
// driver is read-only: Exec and transactions are rejected.
//
// Usage:
//
//	import _ "github.com/nao1215/filequery/driver"
//
//	db, err := sql.Open("filequery", "sales.csv;s3://bucket/orders.tsv.gz")
//	rows, err := db.QueryContext(ctx, "SELECT region, SUM(amount) FROM sales GROUP BY region")
package driver
