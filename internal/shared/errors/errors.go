package errors

import (
	"errors"
	"fmt"
)

// AppError is an error carrying an explicit kind code for callers and the
// HTTP layer. Err keeps the underlying cause (often a domain sentinel).
type AppError struct {
	Code    string // Error code for client
	Message string // Human-readable message
	Err     error  // Underlying error
	Details map[string]string
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail attaches a key/value detail and returns e.
func (e *AppError) WithDetail(key, value string) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// Error codes
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeMalformedRequest   = "MALFORMED_REQUEST"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeBadCredentials     = "BAD_CREDENTIALS"
	ErrCodeInternal           = "INTERNAL_ERROR"
	ErrCodePriceFetch         = "PRICE_FETCH_ERROR"
	ErrCodeAssetNotFound      = "ASSET_NOT_FOUND"
	ErrCodeAssetAlreadyExists = "ASSET_ALREADY_EXISTS"
	ErrCodeUserAlreadyExists  = "USER_ALREADY_EXISTS"
	ErrCodeRateLimited        = "RATE_LIMITED"
)

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Validation creates a validation error
func Validation(message string) *AppError {
	return New(ErrCodeValidation, message)
}

// InvalidInput reports a violated precondition on a caller-supplied argument.
func InvalidInput(message string) *AppError {
	return New(ErrCodeInvalidInput, message)
}

// MalformedRequest reports an undecodable request body.
func MalformedRequest(err error) *AppError {
	return Wrap(err, ErrCodeMalformedRequest, "malformed request body")
}

// NotFound creates a not found error
func NotFound(resource string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource))
}

// Unauthorized creates an unauthorized error
func Unauthorized(message string) *AppError {
	return New(ErrCodeUnauthorized, message)
}

// BadCredentials creates a failed-login error.
func BadCredentials() *AppError {
	return New(ErrCodeBadCredentials, "invalid email or password")
}

// Internal creates an internal error
func Internal(message string, err error) *AppError {
	return Wrap(err, ErrCodeInternal, message)
}

// PriceFetch reports a failure to obtain or parse a price from the provider.
func PriceFetch(message string, err error) *AppError {
	return Wrap(err, ErrCodePriceFetch, message)
}

// AssetNotFound names the symbol that has no persisted asset or holding.
func AssetNotFound(symbol string, err error) *AppError {
	return Wrap(err, ErrCodeAssetNotFound, fmt.Sprintf("asset %s not found", symbol)).
		WithDetail("symbol", symbol)
}

// AssetAlreadyExists reports a duplicate holding.
func AssetAlreadyExists(symbol string, err error) *AppError {
	return Wrap(err, ErrCodeAssetAlreadyExists, fmt.Sprintf("asset %s already exists in wallet", symbol)).
		WithDetail("symbol", symbol)
}

// UserAlreadyExists reports a duplicate registration.
func UserAlreadyExists(err error) *AppError {
	return Wrap(err, ErrCodeUserAlreadyExists, "user with this email already exists")
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError extracts an AppError from an error
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// CodeOf returns the code of the outermost AppError in err's chain, or
// ErrCodeInternal when there is none.
func CodeOf(err error) string {
	if appErr := GetAppError(err); appErr != nil {
		return appErr.Code
	}
	return ErrCodeInternal
}

// HasCode reports whether err carries the given kind code.
func HasCode(err error, code string) bool {
	return err != nil && CodeOf(err) == code
}
