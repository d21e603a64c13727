package loader

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/nao1215/filequery/domain/model"
)

// trimSet is stripped from both ends of every field
const trimSet = " \t\r\n\"'`"

// parseDelimited reads a header line followed by data lines.
// Blank lines are skipped and every field is trimmed of whitespace and quote characters.
func parseDelimited(ctx context.Context, data []byte, delimiter rune) (model.Header, []model.Record, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	// Leading space trimming would swallow empty fields of whitespace delimiters
	reader.TrimLeadingSpace = !unicode.IsSpace(delimiter)

	var (
		header  model.Header
		records []model.Record
		n       int
	)
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", model.ErrLoad, err)
		}

		n++
		if n%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
		}

		record := trimFields(fields)
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
		return nil, nil, fmt.Errorf("%w: no usable lines", model.ErrLoad)
	}
	return header, records, nil
}

func trimFields(fields []string) model.Record {
	record := make(model.Record, len(fields))
	for i, f := range fields {
		record[i] = strings.Trim(f, trimSet)
	}
	return record
}

// isBlank reports whether a record came from a whitespace-only line
func isBlank(record model.Record) bool {
	return len(record) == 0 || (len(record) == 1 && record[0] == "")
}
