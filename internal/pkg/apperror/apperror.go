package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an AppError so callers can react to it without matching messages.
type Kind string

const (
	KindValidation       Kind = "validation"
	KindNotFound         Kind = "not_found"
	KindCapacityExceeded Kind = "capacity_exceeded"
	KindDuplicateBooking Kind = "duplicate_booking"
	KindConflict         Kind = "conflict"
	KindForbidden        Kind = "forbidden"
	KindUnauthorized     Kind = "unauthorized"
	KindInternal         Kind = "internal"
)

// AppError is a custom error type that includes a kind, an HTTP status code and an optional underlying error.
type AppError struct {
	Kind    Kind   // Error category (e.g., not_found, conflict)
	Code    int    // HTTP Status Code (e.g., 400, 404)
	Message string // User-facing error message
	Err     error  // The underlying error, if any (not exposed to user)
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError of the given kind.
func New(kind Kind, message string) *AppError {
	return &AppError{
		Kind:    kind,
		Code:    StatusFor(kind),
		Message: message,
	}
}

// Wrap creates a new AppError wrapping an existing error.
// The wrapped error may itself be an AppError, so errors.Is keeps matching the original sentinel.
func Wrap(err error, kind Kind, message string) *AppError {
	return &AppError{
		Kind:    kind,
		Code:    StatusFor(kind),
		Message: message,
		Err:     err,
	}
}

// KindOf returns the kind of the first AppError in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err carries an AppError of the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// StatusFor maps a kind to the HTTP status used by the API layer.
func StatusFor(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindCapacityExceeded, KindDuplicateBooking, KindConflict:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
