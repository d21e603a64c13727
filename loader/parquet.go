package loader

import (
	"bytes"
	"context"
	"fmt"

	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	pqfile "github.com/apache/arrow/go/v18/parquet/file"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"

	"github.com/nao1215/filequery/domain/model"
)

// parseParquet reads every row group. Cells are rendered to text so that they
// go through the same typing pass as delimited content.
func parseParquet(ctx context.Context, data []byte) (model.Header, []model.Record, error) {
	if len(data) == 0 {
		return nil, nil, fmt.Errorf("%w: empty parquet file", model.ErrLoad)
	}

	pqReader, err := pqfile.NewParquetReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to create parquet reader: %w", model.ErrLoad, err)
	}
	defer pqReader.Close()

	arrowReader, err := pqarrow.NewFileReader(pqReader, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to create arrow reader: %w", model.ErrLoad, err)
	}

	table, err := arrowReader.ReadTable(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to read table: %w", model.ErrLoad, err)
	}
	defer table.Release()

	schema := table.Schema()
	header := make(model.Header, schema.NumFields())
	for i, field := range schema.Fields() {
		header[i] = field.Name
	}

	tableReader := array.NewTableReader(table, 0)
	defer tableReader.Release()

	records := make([]model.Record, 0, table.NumRows())
	for tableReader.Next() {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}

		batch := tableReader.Record()
		numRows := int(batch.NumRows())
		for i := range numRows {
			record := make(model.Record, batch.NumCols())
			for j, col := range batch.Columns() {
				if col.IsNull(i) {
					continue
				}
				record[j] = col.ValueStr(i)
			}
			records = append(records, record)
		}
	}
	if err := tableReader.Err(); err != nil {
		return nil, nil, fmt.Errorf("%w: error reading table records: %w", model.ErrLoad, err)
	}
	return header, records, nil
}
