package filequery

import "github.com/nao1215/filequery/query"

// NormalizeTableName points text at table before it is parsed. The first FROM
// target is replaced with table; a query without a FROM clause gets
// "FROM table" after its SELECT list.
//
//	NormalizeTableName("SELECT * FROM data LIMIT 5", "sales")
//	// SELECT * FROM sales LIMIT 5
func NormalizeTableName(text, table string) string {
	return query.ReplaceTable(text, table)
}
