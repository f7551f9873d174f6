package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnavailable  = errors.New("upstream unavailable")
)

type AppError struct {
	Err     error  // sentinel cause
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource string, id any) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %v", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
	}
}

func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// Unavailable marks a transport, timeout, or credential failure against an
// upstream dependency. Feed assembly swallows these and serves whatever is
// cached; only direct single-entity lookups surface them to the caller.
func Unavailable(upstream string) *AppError {
	return &AppError{
		Err:     ErrUnavailable,
		Message: fmt.Sprintf("%s is unavailable", upstream),
	}
}
