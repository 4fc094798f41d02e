package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/odyssey-erp/odyssey-auth/internal/shared"
)

// maxBodyBytes caps request bodies accepted by DecodeJSON.
const maxBodyBytes = 1 << 20

// ErrorBody is the JSON shape of every error response. Message is either a
// string or a list of validation messages.
type ErrorBody struct {
	StatusCode int    `json:"statusCode"`
	Message    any    `json:"message"`
	Error      string `json:"error"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Fail sends an ErrorBody for status.
func Fail(w http.ResponseWriter, status int, message any) {
	JSON(w, status, ErrorBody{
		StatusCode: status,
		Message:    message,
		Error:      http.StatusText(status),
	})
}

// DecodeJSON decodes the request body into target. An empty body leaves
// target untouched. Unknown properties and trailing data are rejected.
// Failures are returned as *shared.ValidationError.
func DecodeJSON(r *http.Request, target any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return decodeError(err)
	}
	if dec.More() {
		return &shared.ValidationError{Messages: []string{"request body must be a single JSON object"}}
	}
	return nil
}

func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return &shared.ValidationError{Messages: []string{fmt.Sprintf("%s has an invalid type", typeErr.Field)}}
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		return &shared.ValidationError{Messages: []string{fmt.Sprintf("property %s should not exist", field)}}
	default:
		return &shared.ValidationError{Messages: []string{"request body must be valid JSON"}}
	}
}
