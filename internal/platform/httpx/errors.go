// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"

	"github.com/odyssey-erp/odyssey-auth/internal/shared"
)

// InternalErrorMessage is returned for any error without a client-safe mapping.
const InternalErrorMessage = "Internal server error"

// RespondError maps domain errors to HTTP responses. Only messages the
// domain marked as public reach the client.
func RespondError(w http.ResponseWriter, err error) {
	var validationErr *shared.ValidationError
	var publicErr *shared.PublicError
	switch {
	case errors.Is(err, shared.ErrInvalidCredentials):
		Fail(w, http.StatusBadRequest, shared.InvalidCredentialsMessage)
	case errors.As(err, &validationErr):
		Fail(w, http.StatusBadRequest, validationErr.Messages)
	case errors.Is(err, shared.ErrValidation):
		Fail(w, http.StatusBadRequest, publicMessage(err, "Bad Request"))
	case errors.Is(err, shared.ErrUnauthorized):
		if errors.As(err, &publicErr) {
			Fail(w, http.StatusUnauthorized, publicErr.Message)
			return
		}
		Fail(w, http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
	case errors.Is(err, shared.ErrNotFound):
		Fail(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))
	case errors.Is(err, shared.ErrConflict):
		Fail(w, http.StatusConflict, http.StatusText(http.StatusConflict))
	default:
		Fail(w, http.StatusInternalServerError, InternalErrorMessage)
	}
}

func publicMessage(err error, fallback string) string {
	var publicErr *shared.PublicError
	if errors.As(err, &publicErr) {
		return publicErr.Message
	}
	return fallback
}
