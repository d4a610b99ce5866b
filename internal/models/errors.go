package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for the recoverable failure kinds surfaced by the core.
// Callers classify with errors.Is; everything else is internal.
var (
	// ErrNotFound indicates an unknown user, group, expense or settlement id.
	ErrNotFound = errors.New("divvy: not found")

	// ErrInvalidState indicates a lifecycle transition from a terminal state,
	// or an operation whose precondition on current state does not hold
	// (e.g. settling a debt that does not exist).
	ErrInvalidState = errors.New("divvy: invalid state")
)

// ValidationError reports malformed input: non-positive amounts, split sums
// that do not reconcile, empty participant sets, and the like.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("divvy: validation failed: %s", e.Message)
	}
	return fmt.Sprintf("divvy: validation failed for %s: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
