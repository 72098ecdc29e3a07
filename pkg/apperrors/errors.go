// Package apperrors defines the error taxonomy shared across the engine.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a missing project, recommendation or feedback row.
	ErrNotFound = errors.New("not found")

	// ErrPermissionDenied indicates the caller does not own the resource.
	ErrPermissionDenied = errors.New("permission denied")
)

// ValidationError indicates bad caller input (oversized or unsafe prompt
// overrides, missing required project fields). It is always surfaced and
// never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
