// Package model provides domain model for filequery
package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrLoad indicates that source content is unreadable or has no usable lines
	ErrLoad = errors.New("filequery: load failed")

	// ErrRead indicates that source content could not be fetched
	ErrRead = errors.New("filequery: read failed")

	// ErrParseAmbiguity indicates that the SELECT clause could not be located
	ErrParseAmbiguity = errors.New("filequery: ambiguous query")

	// ErrEvaluation indicates that a predicate or expression could not be evaluated
	ErrEvaluation = errors.New("filequery: evaluation failed")

	// ErrCatastrophic indicates that both the primary and the fallback read failed
	ErrCatastrophic = errors.New("filequery: storage access failed")

	// ErrDuplicateColumnName is returned when a file contains duplicate column names
	ErrDuplicateColumnName = errors.New("duplicate column name")

	// ErrUnsupportedFormat indicates an unsupported file format
	ErrUnsupportedFormat = errors.New("filequery: unsupported file format")

	// ErrUnsafeQuery indicates a statement that is not a read-only SELECT
	ErrUnsafeQuery = errors.New("filequery: query failed read-only validation")

	// ErrStrictGroupBy indicates a bare non-grouped field under the strict GROUP BY policy
	ErrStrictGroupBy = errors.New("filequery: field must appear in GROUP BY or an aggregate")

	// ErrDuplicateTableName is returned when two sources would register the same table name
	ErrDuplicateTableName = errors.New("filequery: duplicate table name")

	// ErrTableNotFound indicates that no source is registered under the requested table name
	ErrTableNotFound = errors.New("filequery: table not found")
)

// ErrorContext provides context for where an error occurred
type ErrorContext struct {
	Operation string
	Location  string
	TableName string
	Details   string
}

// NewErrorContext creates a new error context
func NewErrorContext(operation, location string) *ErrorContext {
	return &ErrorContext{
		Operation: operation,
		Location:  location,
	}
}

// WithTable adds table context to the error
func (ec *ErrorContext) WithTable(tableName string) *ErrorContext {
	ec.TableName = tableName
	return ec
}

// WithDetails adds details to the error context
func (ec *ErrorContext) WithDetails(details string) *ErrorContext {
	ec.Details = details
	return ec
}

// Error creates a formatted error with context
func (ec *ErrorContext) Error(baseErr error) error {
	parts := []string{fmt.Sprintf("filequery: %s failed", ec.Operation)}

	if ec.Location != "" {
		parts = append(parts, "location: "+ec.Location)
	}
	if ec.TableName != "" {
		parts = append(parts, "table: "+ec.TableName)
	}
	if ec.Details != "" {
		parts = append(parts, "details: "+ec.Details)
	}

	context := strings.Join(parts, ", ")
	if baseErr != nil {
		return fmt.Errorf("%s: %w", context, baseErr)
	}
	return fmt.Errorf("%s", context)
}
