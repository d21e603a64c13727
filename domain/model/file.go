package model

import (
	"path"
	"strings"
)

// FileType represents supported source file types
type FileType int

const (
	// FileTypeCSV represents CSV file type
	FileTypeCSV FileType = iota
	// FileTypeTSV represents TSV file type
	FileTypeTSV
	// FileTypeLTSV represents LTSV file type
	FileTypeLTSV
	// FileTypeXLSX represents Excel XLSX file type
	FileTypeXLSX
	// FileTypeParquet represents Parquet file type
	FileTypeParquet
	// FileTypeUnsupported represents unsupported file type
	FileTypeUnsupported
)

// String returns the lowercase name of the file type
func (ft FileType) String() string {
	switch ft {
	case FileTypeCSV:
		return "csv"
	case FileTypeTSV:
		return "tsv"
	case FileTypeLTSV:
		return "ltsv"
	case FileTypeXLSX:
		return "xlsx"
	case FileTypeParquet:
		return "parquet"
	default:
		return "unsupported"
	}
}

// File extensions
const (
	// ExtCSV is the CSV file extension
	ExtCSV = ".csv"
	// ExtTSV is the TSV file extension
	ExtTSV = ".tsv"
	// ExtLTSV is the LTSV file extension
	ExtLTSV = ".ltsv"
	// ExtXLSX is the Excel XLSX file extension
	ExtXLSX = ".xlsx"
	// ExtParquet is the Parquet file extension
	ExtParquet = ".parquet"
	// ExtGZ is the gzip compression extension
	ExtGZ = ".gz"
	// ExtBZ2 is the bzip2 compression extension
	ExtBZ2 = ".bz2"
	// ExtXZ is the xz compression extension
	ExtXZ = ".xz"
	// ExtZSTD is the zstd compression extension
	ExtZSTD = ".zst"
)

// CompressionType represents the compression type
type CompressionType int

const (
	// CompressionNone represents no compression
	CompressionNone CompressionType = iota
	// CompressionGZ represents gzip compression
	CompressionGZ
	// CompressionBZ2 represents bzip2 compression
	CompressionBZ2
	// CompressionXZ represents xz compression
	CompressionXZ
	// CompressionZSTD represents zstd compression
	CompressionZSTD
)

// String returns the string representation of CompressionType
func (c CompressionType) String() string {
	switch c {
	case CompressionGZ:
		return "gz"
	case CompressionBZ2:
		return "bz2"
	case CompressionXZ:
		return "xz"
	case CompressionZSTD:
		return "zstd"
	default:
		return "none"
	}
}

// Extension returns the file extension for the compression type
func (c CompressionType) Extension() string {
	switch c {
	case CompressionGZ:
		return ExtGZ
	case CompressionBZ2:
		return ExtBZ2
	case CompressionXZ:
		return ExtXZ
	case CompressionZSTD:
		return ExtZSTD
	default:
		return ""
	}
}

// ParseCompressionType parses a compression name such as "gz" or "zstd"
func ParseCompressionType(name string) (CompressionType, bool) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), ".")) {
	case "", "none":
		return CompressionNone, true
	case "gz", "gzip":
		return CompressionGZ, true
	case "bz2", "bzip2":
		return CompressionBZ2, true
	case "xz":
		return CompressionXZ, true
	case "zst", "zstd":
		return CompressionZSTD, true
	default:
		return CompressionNone, false
	}
}

// DetectCompressionType detects the compression type from a file path
func DetectCompressionType(p string) CompressionType {
	p = strings.ToLower(p)
	switch {
	case strings.HasSuffix(p, ExtGZ):
		return CompressionGZ
	case strings.HasSuffix(p, ExtBZ2):
		return CompressionBZ2
	case strings.HasSuffix(p, ExtXZ):
		return CompressionXZ
	case strings.HasSuffix(p, ExtZSTD):
		return CompressionZSTD
	default:
		return CompressionNone
	}
}

// RemoveCompressionExtension removes the compression extension from a path if present
func RemoveCompressionExtension(p string) string {
	ext := DetectCompressionType(p).Extension()
	if ext == "" {
		return p
	}
	return p[:len(p)-len(ext)]
}

// DetectFileType detects file type from extension, considering compressed files.
// Query strings and fragments of URLs are ignored.
func DetectFileType(p string) FileType {
	if i := strings.IndexAny(p, "?#"); i >= 0 && strings.Contains(p, "://") {
		p = p[:i]
	}
	switch strings.ToLower(path.Ext(RemoveCompressionExtension(p))) {
	case ExtCSV:
		return FileTypeCSV
	case ExtTSV:
		return FileTypeTSV
	case ExtLTSV:
		return FileTypeLTSV
	case ExtXLSX:
		return FileTypeXLSX
	case ExtParquet:
		return FileTypeParquet
	default:
		return FileTypeUnsupported
	}
}

// ParseFileType parses a file type name such as "csv" or ".tsv"
func ParseFileType(name string) FileType {
	return DetectFileType("x." + strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), "."))
}

// IsSupportedFile checks if the file has a supported extension
func IsSupportedFile(fileName string) bool {
	return DetectFileType(fileName) != FileTypeUnsupported
}
