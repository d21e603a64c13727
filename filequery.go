package filequery

import (
	"bytes"
	"context"

	"github.com/nao1215/filequery/domain/model"
)

// Query reads the file at location and runs text against it with the
// default configuration. The FROM clause of text may name anything; it is
// pointed at the file's table before parsing.
//
// Example usage:
//
//	res, err := filequery.Query(ctx, "sales.csv.gz",
//		"SELECT MONTH(date) AS m, SUM(amount) AS total FROM sales GROUP BY MONTH(date) ORDER BY m")
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, row := range res.Rows {
//		fmt.Println(row.Map())
//	}
func Query(ctx context.Context, location, text string) (*model.Result, error) {
	q, err := NewBuilder().AddPath(location).Build(ctx)
	if err != nil {
		return nil, err
	}
	defer q.Close()
	return q.Query(ctx, text)
}

// QueryContent runs text against uncompressed content of the given file type,
// registered as the table name.
func QueryContent(ctx context.Context, name string, fileType model.FileType, data []byte, text string) (*model.Result, error) {
	q, err := NewBuilder().AddReader(bytes.NewReader(data), name, fileType).Build(ctx)
	if err != nil {
		return nil, err
	}
	defer q.Close()
	return q.Query(ctx, text)
}
