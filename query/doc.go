// Package query executes the tolerant SELECT dialect over an in-memory table.
//
// The dialect covers a single SELECT list with optional aliases, the YEAR,
// MONTH, DAY and DATE decomposition functions, the COUNT, SUM, AVG, MIN and
// MAX aggregates, an AND/OR WHERE clause without parentheses, GROUP BY,
// a single ORDER BY item and LIMIT. Malformed input degrades instead of
// failing: unparseable WHERE leaves are treated as satisfied, and a query
// whose SELECT clause cannot be found yields a prefix of the raw table.
package query
