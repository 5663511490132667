package errors

import "fmt"

// AppError represents a custom application error
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Common error codes
const (
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeInvalidToken       = "INVALID_TOKEN"
	ErrCodeTokenExpired       = "TOKEN_EXPIRED"
	ErrCodeSigningFailed      = "SIGNING_FAILED"
	ErrCodeNoActiveSession    = "NO_ACTIVE_SESSION"
	ErrCodeInvalidSession     = "INVALID_SESSION"
	ErrCodeNothingToRevoke    = "NOTHING_TO_REVOKE"
	ErrCodeCodeExpired        = "CODE_EXPIRED"
	ErrCodeCodeMismatch       = "CODE_MISMATCH"
	ErrCodeDeliveryFailed     = "DELIVERY_FAILED"
	ErrCodeRateLimitExceeded  = "RATE_LIMIT_EXCEEDED"
	ErrCodeValidationFailed   = "VALIDATION_FAILED"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeNotFound           = "NOT_FOUND"
)

// NewAppError creates a new application error
func NewAppError(code, message string, status int) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
	}
}

// Common errors
var (
	ErrInvalidCredentials = NewAppError(ErrCodeInvalidCredentials, "Invalid phone number or password", 401)
	ErrInvalidToken       = NewAppError(ErrCodeInvalidToken, "Invalid token", 401)
	ErrTokenExpired       = NewAppError(ErrCodeTokenExpired, "Token expired", 401)
	ErrSigningFailed      = NewAppError(ErrCodeSigningFailed, "Token signing misconfigured", 500)
	ErrNoActiveSession    = NewAppError(ErrCodeNoActiveSession, "Invalid refresh token", 400)
	ErrInvalidSession     = NewAppError(ErrCodeInvalidSession, "Session is no longer valid", 403)
	ErrNothingToRevoke    = NewAppError(ErrCodeNothingToRevoke, "Failed to revoke token", 400)
	ErrCodeGone           = NewAppError(ErrCodeCodeExpired, "Code is expired", 410)
	ErrCodeIncorrect      = NewAppError(ErrCodeCodeMismatch, "Incorrect verify code", 400)
	ErrDeliveryFailed     = NewAppError(ErrCodeDeliveryFailed, "Failed to send SMS", 502)
	ErrRateLimitExceeded  = NewAppError(ErrCodeRateLimitExceeded, "Too many attempts", 429)
	ErrUnauthorized       = NewAppError(ErrCodeUnauthorized, "Unauthorized", 401)
	ErrUserNotFound       = NewAppError(ErrCodeNotFound, "User not found", 404)
)
