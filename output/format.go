// Package output renders query results as JSON, JSON Lines, CSV, TSV, LTSV,
// text tables and XLSX workbooks, and dumps them to optionally compressed files.
package output

import (
	"fmt"
	"strings"

	"github.com/nao1215/filequery/domain/model"
)

// Format represents the output format
type Format int

const (
	// FormatJSON writes the rows as a JSON array of objects
	FormatJSON Format = iota
	// FormatJSONL writes one JSON object per line
	FormatJSONL
	// FormatCSV writes comma-separated values with a header row
	FormatCSV
	// FormatTSV writes tab-separated values with a header row
	FormatTSV
	// FormatLTSV writes labeled tab-separated values
	FormatLTSV
	// FormatTable writes an aligned text table
	FormatTable
	// FormatXLSX writes an Excel workbook with one sheet
	FormatXLSX
)

// String returns the string representation of Format
func (f Format) String() string {
	switch f {
	case FormatJSONL:
		return "jsonl"
	case FormatCSV:
		return "csv"
	case FormatTSV:
		return "tsv"
	case FormatLTSV:
		return "ltsv"
	case FormatTable:
		return "table"
	case FormatXLSX:
		return "xlsx"
	default:
		return "json"
	}
}

// Extension returns the file extension for the format
func (f Format) Extension() string {
	switch f {
	case FormatJSONL:
		return ".jsonl"
	case FormatCSV:
		return model.ExtCSV
	case FormatTSV:
		return model.ExtTSV
	case FormatLTSV:
		return model.ExtLTSV
	case FormatTable:
		return ".txt"
	case FormatXLSX:
		return model.ExtXLSX
	default:
		return ".json"
	}
}

// ParseFormat parses a format name such as "json" or "table"
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return FormatJSON, nil
	case "jsonl", "ndjson":
		return FormatJSONL, nil
	case "csv":
		return FormatCSV, nil
	case "tsv":
		return FormatTSV, nil
	case "ltsv":
		return FormatLTSV, nil
	case "table", "text":
		return FormatTable, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	default:
		return FormatJSON, fmt.Errorf("%w: output format %q", model.ErrUnsupportedFormat, name)
	}
}

// Set implements flag.Value
func (f *Format) Set(name string) error {
	parsed, err := ParseFormat(name)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// DumpOptions configures how a result is written to a file.
//
// Example:
//
//	options := NewDumpOptions().
//		WithFormat(FormatTSV).
//		WithCompression(model.CompressionGZ)
//
//	err := Dump(result, "./out/result.tsv.gz", options)
type DumpOptions struct {
	// Format specifies the output file format
	Format Format
	// Compression specifies the compression type
	Compression model.CompressionType
}

// NewDumpOptions creates default options (CSV, no compression).
func NewDumpOptions() DumpOptions {
	return DumpOptions{
		Format:      FormatCSV,
		Compression: model.CompressionNone,
	}
}

// WithFormat sets the output file format.
func (o DumpOptions) WithFormat(format Format) DumpOptions {
	o.Format = format
	return o
}

// WithCompression adds compression to the output file.
//
// Options:
//   - CompressionNone: No compression (default)
//   - CompressionGZ: Gzip compression (.gz)
//   - CompressionXZ: XZ compression (.xz)
//   - CompressionZSTD: Zstandard compression (.zst)
//
// Bzip2 cannot be written.
func (o DumpOptions) WithCompression(compression model.CompressionType) DumpOptions {
	o.Compression = compression
	return o
}

// FileExtension returns the complete file extension including compression
func (o DumpOptions) FileExtension() string {
	return o.Format.Extension() + o.Compression.Extension()
}

// OptionsForPath derives format and compression from a file name such as
// "result.tsv.gz". Unknown extensions select CSV.
func OptionsForPath(path string) DumpOptions {
	opts := NewDumpOptions().WithCompression(model.DetectCompressionType(path))
	base := strings.ToLower(model.RemoveCompressionExtension(path))
	for _, f := range []Format{FormatJSON, FormatJSONL, FormatCSV, FormatTSV, FormatLTSV, FormatTable, FormatXLSX} {
		if strings.HasSuffix(base, f.Extension()) {
			return opts.WithFormat(f)
		}
	}
	return opts
}
