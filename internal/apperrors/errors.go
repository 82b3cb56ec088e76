// Package apperrors defines the error taxonomy shared by all services.
// Every precondition failure in the service layer is returned as an
// *Error so handlers can map it onto an HTTP status and a structured
// error body without inspecting error strings.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeNotFound         = "NOT_FOUND"
	CodeForbidden        = "FORBIDDEN"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeInvalidState     = "INVALID_STATE"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeGone             = "GONE"
	CodeUnsupportedType  = "UNSUPPORTED_CONTENT_TYPE"
	CodeUpstreamFailure  = "UPSTREAM_FAILURE"
)

type Error struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`

	// cause is logged but never serialized to the caller.
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// WithDetails attaches detail lines to the error body.
func (e *Error) WithDetails(details ...string) *Error {
	e.Details = append(e.Details, details...)
	return e
}

// Status returns the HTTP status the error maps to.
func (e *Error) Status() int {
	switch e.Code {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeForbidden:
		return http.StatusForbidden
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeInvalidState, CodeValidationFailed, CodeUnsupportedType:
		return http.StatusBadRequest
	case CodeGone:
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Code: CodeForbidden, Message: msg}
}

func Unauthorized(msg string) *Error {
	return &Error{Code: CodeUnauthorized, Message: msg}
}

func InvalidState(msg string) *Error {
	return &Error{Code: CodeInvalidState, Message: msg}
}

func ValidationFailed(msg string, details ...string) *Error {
	return &Error{Code: CodeValidationFailed, Message: msg, Details: details}
}

func Gone(msg string) *Error {
	return &Error{Code: CodeGone, Message: msg}
}

func UnsupportedContentType(msg string) *Error {
	return &Error{Code: CodeUnsupportedType, Message: msg}
}

// Upstream wraps a datastore or blob-sink failure. The cause stays
// internal; callers only see the sanitized message.
func Upstream(msg string, cause error) *Error {
	return &Error{Code: CodeUpstreamFailure, Message: msg, cause: cause}
}

// As extracts an *Error from err, wrapping unknown errors as an
// upstream failure so handlers always have a typed error to render.
func As(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Upstream("internal server error", err)
}

// Is reports whether err is an *Error with the given code.
func Is(err error, code string) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Code == code
}
