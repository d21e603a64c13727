package filequery

import "github.com/nao1215/filequery/domain/model"

// Result is the output of one query: ordered columns and rows, plus the
// fallback marker set when the rows are a raw table prefix.
type Result = model.Result

// Table is a typed table loaded from a source
type Table = model.Table

// FileType represents supported source file types
type FileType = model.FileType

// Supported file types for AddReader and QueryContent
const (
	// FileTypeCSV represents CSV file type
	FileTypeCSV = model.FileTypeCSV
	// FileTypeTSV represents TSV file type
	FileTypeTSV = model.FileTypeTSV
	// FileTypeLTSV represents LTSV file type
	FileTypeLTSV = model.FileTypeLTSV
	// FileTypeXLSX represents Excel XLSX file type
	FileTypeXLSX = model.FileTypeXLSX
	// FileTypeParquet represents Parquet file type
	FileTypeParquet = model.FileTypeParquet
)
