// Package common defines shared constants and sentinel errors used across
// the layers of TaskKeeper. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Validation errors.
	ErrorValidation      = errors.New("validation error")
	ErrorEmptyTitle      = errors.New("task title cannot be empty")
	ErrorPasswordsDiffer = errors.New("passwords do not match")

	// Attachment errors.
	ErrorMissingFile     = errors.New("no file uploaded")
	ErrorUnsupportedType = errors.New("file type not allowed")
	ErrorStorageFailure  = errors.New("storage failure")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)
