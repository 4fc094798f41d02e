package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials indicates a register or login failure. It is the
	// only error the caller sees for duplicate emails, unknown emails and
	// wrong passwords.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrConflict indicates a unique constraint violation in the store.
	ErrConflict = errors.New("conflict")
	// ErrValidation indicates malformed or missing input fields.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthorized indicates a missing, malformed, invalid or expired bearer token.
	ErrUnauthorized = errors.New("unauthorized")
)

// InvalidCredentialsMessage is the user-facing text for ErrInvalidCredentials.
const InvalidCredentialsMessage = "Invalid credentials!"
