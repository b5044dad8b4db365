// Package errors provides coded domain errors for the matching core and its API.
//
// Services return typed errors and handlers translate them into HTTP
// responses through Code.HTTPStatus:
//
//	if pending {
//	    return errors.DuplicatePending("an invitation is already pending between you")
//	}
//
//	// Callers match by code, not by identity.
//	if errors.Is(err, errors.ErrNotMatched) {
//	    ...
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

// Matching core error codes.
const (
	CodeInvalidTarget    Code = "INVALID_TARGET"
	CodeDuplicatePending Code = "DUPLICATE_PENDING"
	CodeNotAuthorized    Code = "NOT_AUTHORIZED"
	CodeAlreadyResolved  Code = "ALREADY_RESOLVED"
	CodeNotMatched       Code = "NOT_MATCHED"
)

// General error codes.
const (
	CodeNotFound     Code = "NOT_FOUND"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"
	CodeValidation   Code = "VALIDATION"
	CodeConflict     Code = "CONFLICT"
	CodeRateLimited  Code = "RATE_LIMITED"
	CodeInternal     Code = "INTERNAL"
)

// HTTPStatus returns the HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeInvalidTarget, CodeValidation:
		return http.StatusBadRequest
	case CodeDuplicatePending, CodeAlreadyResolved, CodeConflict:
		return http.StatusConflict
	case CodeNotAuthorized, CodeNotMatched, CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
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

// Is reports whether target is an *Error with the same Code.
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

// WithDetails returns a copy of the error carrying details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: details, cause: e.cause}
}

// WithCause returns a copy of the error wrapping err.
func (e *Error) WithCause(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: e.Details, cause: err}
}

// Sentinel errors for use with errors.Is().
var (
	ErrInvalidTarget    = &Error{Code: CodeInvalidTarget, Message: "invalid target"}
	ErrDuplicatePending = &Error{Code: CodeDuplicatePending, Message: "invitation already pending"}
	ErrNotAuthorized    = &Error{Code: CodeNotAuthorized, Message: "not authorized"}
	ErrAlreadyResolved  = &Error{Code: CodeAlreadyResolved, Message: "invitation already resolved"}
	ErrNotMatched       = &Error{Code: CodeNotMatched, Message: "users are not matched"}

	ErrNotFound     = &Error{Code: CodeNotFound, Message: "not found"}
	ErrUnauthorized = &Error{Code: CodeUnauthorized, Message: "unauthorized"}
	ErrForbidden    = &Error{Code: CodeForbidden, Message: "forbidden"}
	ErrValidation   = &Error{Code: CodeValidation, Message: "validation error"}
	ErrConflict     = &Error{Code: CodeConflict, Message: "conflict"}
	ErrRateLimited  = &Error{Code: CodeRateLimited, Message: "too many requests"}
	ErrInternal     = &Error{Code: CodeInternal, Message: "internal error"}
)

// InvalidTarget creates an invalid target error.
func InvalidTarget(msg string) *Error {
	return &Error{Code: CodeInvalidTarget, Message: msg}
}

// DuplicatePending creates a duplicate pending invitation error.
func DuplicatePending(msg string) *Error {
	return &Error{Code: CodeDuplicatePending, Message: msg}
}

// NotAuthorized creates an error for an actor attempting a transition it does not own.
func NotAuthorized(msg string) *Error {
	return &Error{Code: CodeNotAuthorized, Message: msg}
}

// AlreadyResolved creates an already resolved error.
func AlreadyResolved(msg string) *Error {
	return &Error{Code: CodeAlreadyResolved, Message: msg}
}

// NotMatched creates a not matched error.
func NotMatched(msg string) *Error {
	return &Error{Code: CodeNotMatched, Message: msg}
}

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Unauthorized creates an unauthorized error.
func Unauthorized(msg string) *Error {
	return &Error{Code: CodeUnauthorized, Message: msg}
}

// Forbidden creates a forbidden error.
func Forbidden(msg string) *Error {
	return &Error{Code: CodeForbidden, Message: msg}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidationWithDetails creates a validation error with details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// Conflict creates a conflict error.
func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

// RateLimited creates a rate limited error.
func RateLimited(msg string) *Error {
	return &Error{Code: CodeRateLimited, Message: msg}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}
