package services

import "errors"

// Report service errors
var (
	// Workspace errors
	ErrWorkspaceNotFound = errors.New("workspace not found")

	// Upload errors
	ErrUnknownCellManager = errors.New("unknown cell manager")
	ErrNoFiles            = errors.New("no files uploaded")

	// Query errors
	ErrInvalidDateRange = errors.New("invalid date range")
	ErrUnknownTable     = errors.New("unknown export table")
	ErrNoData           = errors.New("no report data")
)
