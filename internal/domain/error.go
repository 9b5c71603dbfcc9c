package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidExecContext = errors.New("invalid database execution context")
	ErrReadDatabaseRow    = errors.New("failed to read database row")

	// Transformer errors, surfaced to the chat as user-facing messages.
	ErrInvalidInput = errors.New("no parsable numeric or text content")
	ErrFileTooLarge = errors.New("file exceeds size limit")

	ErrBatchLocked = errors.New("batch is already being processed")
)
