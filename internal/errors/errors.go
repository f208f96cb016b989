// Package errors provides standardized domain errors with codes for the
// ReelMates sync core.
//
// Usage:
//
//	// In services - return typed errors
//	if movie == nil {
//	    return errors.NotFoundf("movie %s not found", id)
//	}
//
//	// In handlers - check with errors.Is
//	if errors.Is(err, errors.ErrMissingCredential) {
//	    response.Unauthorized(w, err.Error(), logger)
//	    return
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	CodeNotFound          Code = "NOT_FOUND"
	CodeValidation        Code = "VALIDATION"
	CodeConflict          Code = "CONFLICT"
	CodeInternal          Code = "INTERNAL"
	CodeMissingCredential Code = "MISSING_CREDENTIAL"
	CodeRemote            Code = "REMOTE_UNAVAILABLE"
)

// HTTPStatus returns the appropriate HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeValidation:
		return http.StatusBadRequest
	case CodeConflict:
		return http.StatusConflict
	case CodeMissingCredential:
		return http.StatusUnauthorized
	case CodeRemote:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error  // unexported, for wrapping
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrNotFound          = &Error{Code: CodeNotFound, Message: "not found"}
	ErrValidation        = &Error{Code: CodeValidation, Message: "validation error"}
	ErrConflict          = &Error{Code: CodeConflict, Message: "conflict"}
	ErrInternal          = &Error{Code: CodeInternal, Message: "internal error"}
	ErrMissingCredential = &Error{Code: CodeMissingCredential, Message: "missing credential"}
	ErrRemote            = &Error{Code: CodeRemote, Message: "remote store unavailable"}
)

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// ValidationWithDetails creates a validation error with details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// Conflict creates a conflict error.
func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Internalf creates an internal error with formatted message.
func Internalf(format string, args ...any) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(format, args...)}
}

// MissingCredential creates a missing credential error. The metadata
// service uses this to distinguish "configure an API key" from a
// generic lookup failure.
func MissingCredential(msg string) *Error {
	return &Error{Code: CodeMissingCredential, Message: msg}
}

// Remote creates a remote store failure error.
func Remote(msg string) *Error {
	return &Error{Code: CodeRemote, Message: msg}
}

// Remotef creates a remote store failure error with formatted message.
func Remotef(format string, args ...any) *Error {
	return &Error{Code: CodeRemote, Message: fmt.Sprintf(format, args...)}
}
