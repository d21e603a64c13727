package loader

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/nao1215/filequery/domain/model"
)

// parseLTSV reads label:value pairs. The header lists labels in first-seen order.
func parseLTSV(ctx context.Context, data []byte) (model.Header, []model.Record, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var (
		header  model.Header
		index   = make(map[string]int)
		rows    []map[string]string
		scanned int
	)
	for scanner.Scan() {
		scanned++
		if scanned%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		row := make(map[string]string)
		for _, pair := range strings.Split(line, "\t") {
			key, value, ok := strings.Cut(pair, ":")
			if !ok {
				continue
			}
			key = strings.TrimSpace(key)
			if key == "" {
				continue
			}
			if _, seen := index[key]; !seen {
				index[key] = len(header)
				header = append(header, key)
			}
			row[key] = strings.TrimSpace(value)
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", model.ErrLoad, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("%w: no valid LTSV records found", model.ErrLoad)
	}

	records := make([]model.Record, 0, len(rows))
	for _, row := range rows {
		record := make(model.Record, len(header))
		for i, key := range header {
			record[i] = row[key]
		}
		records = append(records, record)
	}
	return header, records, nil
}
