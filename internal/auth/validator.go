package auth

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// Local format (leading zero) or international format
	phoneRegex = regexp.MustCompile(`^(\+[0-9]{9,14}|0[0-9]{8,10})$`)

	minPasswordLength = 6
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateSignInRequest validates a phone/password sign-in request
func ValidateSignInRequest(req *SignInRequest) error {
	errs := make([]ValidationError, 0)

	if req.Phone == "" {
		errs = append(errs, ValidationError{
			Field:   "phone",
			Message: "Phone number is required",
		})
	} else if !IsValidPhone(req.Phone) {
		errs = append(errs, ValidationError{
			Field:   "phone",
			Message: "Phone number format is invalid",
		})
	}

	if req.Password == "" {
		errs = append(errs, ValidationError{
			Field:   "password",
			Message: "Password is required",
		})
	} else if len(req.Password) < minPasswordLength {
		errs = append(errs, ValidationError{
			Field:   "password",
			Message: fmt.Sprintf("Password must be at least %d characters", minPasswordLength),
		})
	}

	if len(errs) > 0 {
		return &validationErrors{Errors: errs}
	}

	return nil
}

type validationErrors struct {
	Errors []ValidationError
}

func (e *validationErrors) Error() string {
	messages := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		messages[i] = err.Error()
	}
	return strings.Join(messages, "; ")
}

// IsValidPhone checks if a phone number is plausibly formatted
func IsValidPhone(phone string) bool {
	return phoneRegex.MatchString(SanitizePhone(phone))
}

// SanitizePhone strips whitespace and separator characters
func SanitizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	phone = strings.ReplaceAll(phone, " ", "")
	phone = strings.ReplaceAll(phone, "-", "")
	phone = strings.ReplaceAll(phone, ".", "")
	return phone
}
