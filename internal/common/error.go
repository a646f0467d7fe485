// Package common defines shared constants and sentinel errors used across
// client layers of streamdesk. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Storage-level errors.
	ErrorNotFound = errors.New("not found")

	// Validation errors raised before any request is issued.
	ErrValidation = errors.New("validation error")

	// Credential lifecycle errors.
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrMalformedToken   = errors.New("malformed token")
)
