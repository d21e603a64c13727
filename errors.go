package filequery

import "github.com/nao1215/filequery/domain/model"

// Errors returned by filequery. They alias the domain sentinels so callers
// can match them with errors.Is without importing domain/model.
var (
	// ErrLoad indicates that source content is unreadable or has no usable lines
	ErrLoad = model.ErrLoad

	// ErrRead indicates that source content could not be fetched
	ErrRead = model.ErrRead

	// ErrCatastrophic indicates that both the primary and the fallback read failed
	ErrCatastrophic = model.ErrCatastrophic

	// ErrDuplicateColumnName is returned when a file contains duplicate column names
	ErrDuplicateColumnName = model.ErrDuplicateColumnName

	// ErrDuplicateTableName is returned when two sources would register the same table name
	ErrDuplicateTableName = model.ErrDuplicateTableName

	// ErrUnsupportedFormat indicates an unsupported file format
	ErrUnsupportedFormat = model.ErrUnsupportedFormat

	// ErrUnsafeQuery indicates a statement that is not a read-only SELECT
	ErrUnsafeQuery = model.ErrUnsafeQuery

	// ErrTableNotFound indicates that no source is registered under the requested table name
	ErrTableNotFound = model.ErrTableNotFound
)
