package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDocumentNotFound signals a lookup for a document name that is not configured.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrInvalidArgument signals malformed tool arguments.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrToolNotFound signals a call to an unknown tool name.
	ErrToolNotFound = errors.New("tool not found")
	// ErrUpstream signals a failure talking to a document API.
	ErrUpstream = errors.New("upstream error")
)

// ValidationError wraps ErrInvalidArgument with the violated field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidArgument.Error(), e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidArgument }

// NewValidationError creates a validation error for a single argument field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
