// Package errors provides the structured error type used across the SDK.
//
// Every error the SDK produces is a *Error carrying a Kind discriminator so
// callers can branch on the failure class (argument validation, delivery,
// configuration, io) with errors.As instead of string matching.
package errors

import (
	"errors"
	"fmt"
)

// Kind represents different categories of SDK errors.
type Kind string

const (
	KindValidation Kind = "validation"
	KindDelivery   Kind = "delivery"
	KindConfig     Kind = "config"
	KindIO         Kind = "io"
)

// Error is a structured error with a kind discriminator and stable code.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Cause   error

	// StatusCode holds the HTTP status for delivery errors, 0 otherwise
	// (transport-level failures have no status).
	StatusCode int
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("[%s] %s", e.Code, msg)
	}
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors by kind and code. A target with an empty code matches
// any error of the same kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind && (t.Code == "" || e.Code == t.Code)
	}
	return false
}

// WithCause attaches an underlying error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// NewValidationError creates an argument/shape error. These are always
// returned before any I/O is attempted.
func NewValidationError(code, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    KindValidation,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewDeliveryError creates an error for a failed dispatch. statusCode is the
// HTTP status for non-2xx responses and 0 for transport failures.
func NewDeliveryError(statusCode int, format string, args ...interface{}) *Error {
	return &Error{
		Kind:       KindDelivery,
		Code:       "delivery_failed",
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    KindConfig,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewIOError creates an error for filesystem failures (spool files etc).
func NewIOError(code, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    KindIO,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsKind reports whether err is (or wraps) an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// StatusCode extracts the HTTP status from a delivery error, 0 if none.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode
	}
	return 0
}
