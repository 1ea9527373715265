// Package services implements the entity repositories: one service per
// entity family, each wrapping store operations with partition-key
// construction, retry/backoff, and optimistic-concurrency handling.
package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an update target does not exist. Point
	// reads translate the condition into a nil result instead.
	ErrNotFound = errors.New("entity not found")

	// ErrAlreadyExists is returned when attempting to create a duplicate
	// entity.
	ErrAlreadyExists = errors.New("entity already exists")

	// ErrConcurrentModification is returned when an optimistic-concurrency
	// check fails; the caller must re-read and retry.
	ErrConcurrentModification = errors.New("concurrent modification detected")
)

// ValidationError wraps field-specific validation errors.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) error {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// IsValidationError checks if an error is a validation error.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
