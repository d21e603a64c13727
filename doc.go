// Package filequery runs a tolerant SQL dialect over tables read from flat
// files: CSV, TSV, LTSV, Parquet and Excel (XLSX), optionally compressed,
// stored locally, in an fs.FS, on S3 or behind HTTP.
//
// The dialect covers a single SELECT list with aliases, the YEAR, MONTH, DAY
// and DATE functions, COUNT, SUM, AVG, MIN and MAX, a WHERE predicate with
// AND/OR, GROUP BY, one ORDER BY key and LIMIT. Queries are generated by
// other programs and are often slightly wrong, so the engine prefers a
// degraded answer over an error:
//   - a WHERE condition that cannot be evaluated is treated as satisfied
//   - a query that cannot be parsed returns the first rows of the table
//   - an ORDER BY key that names no column is resolved to the closest one
//
// Every such decision is reported as a diagnostic event, logged through
// go-kit/log and counted in prometheus metrics.
//
// # Basic Usage
//
//	res, err := filequery.Query(ctx, "sales.csv.gz",
//	    "SELECT MONTH(date) AS m, SUM(amount) AS total FROM sales GROUP BY MONTH(date) ORDER BY m")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out, _ := json.Marshal(res) // {"success":true,"results":[...],"row_count":2}
//
// # Advanced Usage
//
// For several sources, use the Builder:
//
//	q, err := filequery.NewBuilder().
//	    AddPath("data/").
//	    AddPath("s3://bucket/orders.tsv.gz").
//	    WithFallback("orders", "s3://replica/orders.tsv.gz").
//	    AddDatabase("warehouse", "sqlite", "warehouse.db").
//	    WithConfig(cfg).
//	    WithLogger(logger).
//	    Build(ctx)
//
// Query routes by the table named in FROM. Each call reads its source
// afresh; when the read fails, the fallback location (or the same location)
// is read once more, and only when both reads fail is ErrCatastrophic
// returned. Registered SQL databases are queried with QueryDatabase after a
// read-only check.
//
// # Table Naming
//
// Table names are derived from file paths:
//   - "users.csv" becomes table "users"
//   - "sales-2024.tsv.gz" becomes table "sales_2024"
//   - "s3://bucket/logs/access.ltsv" becomes table "access"
package filequery
