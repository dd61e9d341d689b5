// Package errors provides coded application errors with an HTTP status
// mapping, shared by services and handlers.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrCode classifies an error for transport mapping and logging.
type ErrCode string

const (
	ErrCodeInvalidInput ErrCode = "INVALID_INPUT"
	ErrCodeNotFound     ErrCode = "NOT_FOUND"
	ErrCodeConflict     ErrCode = "CONFLICT"
	ErrCodeUnauthorized ErrCode = "UNAUTHORIZED"
	ErrCodeUnavailable  ErrCode = "UNAVAILABLE"
	ErrCodeInternal     ErrCode = "INTERNAL"
)

// Error is a coded application error, optionally wrapping a cause.
type Error struct {
	Code    ErrCode
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a coded error with no cause.
func New(code ErrCode, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code ErrCode, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: err}
}

// NotFound reports a missing resource.
func NotFound(resource, id string) error {
	return &Error{Code: ErrCodeNotFound, Message: fmt.Sprintf("%s %q not found", resource, id)}
}

// InvalidInput reports a request field that failed validation.
func InvalidInput(field, message string) error {
	return &Error{Code: ErrCodeInvalidInput, Message: fmt.Sprintf("%s: %s", field, message)}
}

// Code extracts the ErrCode from an error chain, defaulting to internal.
// A nil error has no code.
func Code(err error) ErrCode {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrCodeInternal
}

// HTTPStatus maps an error to the status code handlers should return.
func HTTPStatus(err error) int {
	switch Code(err) {
	case ErrCodeInvalidInput:
		return http.StatusBadRequest
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Is and As re-export the stdlib helpers so callers need a single import.
func Is(err, target error) bool     { return errors.Is(err, target) }
func As(err error, target any) bool { return errors.As(err, target) }
