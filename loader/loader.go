// Package loader turns raw source content into typed tables.
package loader

import (
	"context"
	"fmt"

	"github.com/nao1215/filequery/domain/model"
)

// checkEvery is how many records are scanned between context checks
const checkEvery = 1024

// Load parses data as the given file type into a Table named name.
func Load(name string, fileType model.FileType, data []byte) (*model.Table, error) {
	return LoadContext(context.Background(), name, fileType, data)
}

// LoadContext is Load with cancellation. The context is checked while records are scanned.
func LoadContext(ctx context.Context, name string, fileType model.FileType, data []byte) (*model.Table, error) {
	var (
		header  model.Header
		records []model.Record
		err     error
	)

	switch fileType {
	case model.FileTypeCSV:
		header, records, err = parseDelimited(ctx, data, ',')
	case model.FileTypeTSV:
		header, records, err = parseDelimited(ctx, data, '\t')
	case model.FileTypeLTSV:
		header, records, err = parseLTSV(ctx, data)
	case model.FileTypeXLSX:
		header, records, err = parseXLSX(ctx, data)
	case model.FileTypeParquet:
		header, records, err = parseParquet(ctx, data)
	default:
		return nil, model.NewErrorContext("load", name).
			WithDetails(fileType.String()).
			Error(model.ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, model.NewErrorContext("load", name).Error(err)
	}
	return newTable(name, header, records)
}

// LoadDelimited parses delimited text into a Table named name.
func LoadDelimited(name string, data []byte, delimiter rune) (*model.Table, error) {
	header, records, err := parseDelimited(context.Background(), data, delimiter)
	if err != nil {
		return nil, model.NewErrorContext("load", name).Error(err)
	}
	return newTable(name, header, records)
}

// newTable validates the header and builds the typed table
func newTable(name string, header model.Header, records []model.Record) (*model.Table, error) {
	if err := validateHeader(header); err != nil {
		return nil, model.NewErrorContext("load", name).Error(err)
	}
	return model.NewTable(name, header, records), nil
}

// validateHeader checks for duplicate column names
func validateHeader(header model.Header) error {
	seen := make(map[string]struct{}, len(header))
	for _, name := range header {
		if _, ok := seen[name]; ok {
			return fmt.Errorf("%w: %w: %s", model.ErrLoad, model.ErrDuplicateColumnName, name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// padHeader replaces empty header cells with positional names
func padHeader(header model.Header) model.Header {
	for i, name := range header {
		if name == "" {
			header[i] = fmt.Sprintf("column_%d", i+1)
		}
	}
	return header
}
