package auth

import (
	"errors"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/odyssey-auth/internal/shared"
)

// Password policy messages, kept verbatim for existing clients.
const (
	MessagePasswordTooShort   = "Password must be at least 8 characters long"
	MessagePasswordNoLetter   = "Password must contain at least 1 letter"
	MessagePasswordNoNumber   = "Password must contain at least 1 number"
	MessagePasswordNoSpecial  = "Password must contain at least 1 special character"
	passwordMinLength         = 8
	passwordSpecialCharacters = `!@#$%^&*(),.?":{}|<>`
)

// PasswordPolicyViolations lists every policy rule password breaks, in
// rule order. An empty result means the password is acceptable.
func PasswordPolicyViolations(password string) []string {
	var violations []string
	if utf8.RuneCountInString(password) < passwordMinLength {
		violations = append(violations, MessagePasswordTooShort)
	}
	if !strings.ContainsFunc(password, isASCIILetter) {
		violations = append(violations, MessagePasswordNoLetter)
	}
	if !strings.ContainsFunc(password, isASCIIDigit) {
		violations = append(violations, MessagePasswordNoNumber)
	}
	if !strings.ContainsAny(password, passwordSpecialCharacters) {
		violations = append(violations, MessagePasswordNoSpecial)
	}
	return violations
}

func isASCIILetter(r rune) bool { return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') }

func isASCIIDigit(r rune) bool { return r >= '0' && r <= '9' }

// RequestValidator checks request DTOs and renders failures as client messages.
type RequestValidator struct {
	validate *validator.Validate
}

// NewRequestValidator registers the password policy and JSON field names.
func NewRequestValidator() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	_ = v.RegisterValidation("password_policy", func(fl validator.FieldLevel) bool {
		return len(PasswordPolicyViolations(fl.Field().String())) == 0
	})
	return &RequestValidator{validate: v}
}

// Struct validates s, returning *shared.ValidationError on rule failures.
func (v *RequestValidator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, fieldMessages(fe)...)
	}
	return &shared.ValidationError{Messages: messages}
}

func fieldMessages(fe validator.FieldError) []string {
	switch fe.Tag() {
	case "email":
		return []string{fe.Field() + " must be an email"}
	case "password_policy":
		return PasswordPolicyViolations(stringValue(fe.Value()))
	case "required":
		if fe.Field() == "email" {
			return []string{"email must be an email"}
		}
		return []string{fe.Field() + " must be a string"}
	default:
		return []string{fe.Field() + " is invalid"}
	}
}

func stringValue(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case *string:
		if s != nil {
			return *s
		}
	}
	return ""
}
