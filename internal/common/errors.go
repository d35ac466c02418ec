// Package common defines shared constants, sentinel errors and small helpers
// used by both the notesum server and its terminal client. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")
	ErrorSlugConflict  = errors.New("slug conflict")

	// Service-level errors.
	ErrorUnauthorized = errors.New("unauthorized")

	// Validation errors; wrapped with field details via ValidationErrorf.
	ErrorValidation = errors.New("validation error")

	// Optional integrations (summarizer, archive storage).
	ErrorUnavailable = errors.New("feature unavailable")
	ErrorUpstream    = errors.New("upstream error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
)
