package driver

import "errors"

// Predefined errors
var (
	// ErrNoPathsProvided is returned when the DSN names no location
	ErrNoPathsProvided = errors.New("filequery driver: no paths provided")

	// ErrReadOnly is returned for Exec and transactions
	ErrReadOnly = errors.New("filequery driver: connection is read-only")

	// ErrArgsNotSupported is returned when a query is given placeholder arguments
	ErrArgsNotSupported = errors.New("filequery driver: query arguments are not supported")

	// ErrInvalidPath is returned when a DSN location is invalid or potentially dangerous
	ErrInvalidPath = errors.New("filequery driver: invalid or dangerous path")
)
