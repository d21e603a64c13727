package loader

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/nao1215/filequery/domain/model"
)

// parseXLSX reads the first sheet. The first non-empty row is the header.
func parseXLSX(ctx context.Context, data []byte) (model.Header, []model.Record, error) {
	xlsxFile, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to open XLSX file: %w", model.ErrLoad, err)
	}
	defer func() {
		_ = xlsxFile.Close() // Ignore close error
	}()

	sheets := xlsxFile.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("%w: no sheets found in XLSX file", model.ErrLoad)
	}

	rows, err := xlsxFile.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to read sheet %s: %w", model.ErrLoad, sheets[0], err)
	}

	var (
		header  model.Header
		records []model.Record
	)
	for i, row := range rows {
		if i > 0 && i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
		}

		record := make(model.Record, len(row))
		for j, cell := range row {
			record[j] = strings.TrimSpace(cell)
		}
		if isBlank(record) {
			continue
		}
		if header == nil {
			header = padHeader(model.NewHeader(record))
			continue
		}
		records = append(records, record)
	}

	if header == nil {
		return nil, nil, fmt.Errorf("%w: sheet %s is empty", model.ErrLoad, sheets[0])
	}
	return header, records, nil
}
