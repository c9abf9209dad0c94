package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrUnauthorized indicates a missing, malformed, tampered or expired session token.
var ErrUnauthorized = errors.New("unauthorized")

// ErrInvalidCredentials covers both an unknown email and a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrStorageUnavailable indicates the user store could not be read or written.
var ErrStorageUnavailable = errors.New("storage unavailable")

// ErrUpstreamFetch indicates a rate source could not be reached or parsed.
var ErrUpstreamFetch = errors.New("upstream fetch failed")

// ErrRateNotReady is returned for a rate source that never fetched successfully.
var ErrRateNotReady = errors.New("rate not ready")

// ErrRateStale is returned when the cached value is older than the configured max staleness.
var ErrRateStale = errors.New("rate is stale")

// AppError carries an HTTP-ish status code alongside the wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}
