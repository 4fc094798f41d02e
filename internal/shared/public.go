package shared

import "strings"

// PublicError pairs an error kind with the message a client may see.
type PublicError struct {
	Kind    error
	Message string
}

// NewPublicError constructs a PublicError.
func NewPublicError(kind error, message string) *PublicError {
	return &PublicError{Kind: kind, Message: message}
}

func (e *PublicError) Error() string { return e.Message }

// Unwrap exposes the kind to errors.Is.
func (e *PublicError) Unwrap() error { return e.Kind }

// ValidationError lists every failed input rule in request field order.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// Unwrap exposes ErrValidation to errors.Is.
func (e *ValidationError) Unwrap() error { return ErrValidation }
