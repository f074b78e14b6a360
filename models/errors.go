package models

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested document does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates missing credentials or an author mismatch.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrConflict indicates a unique field (email, username) is already taken.
	ErrConflict = errors.New("already exists")

	// ErrServiceUnavailable indicates the database or image host could not be reached.
	ErrServiceUnavailable = errors.New("service unavailable")
)

// ValidationError reports malformed input for a single field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsValidation reports whether err wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
