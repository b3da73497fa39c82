// Package apperrors defines coded domain errors shared across services and
// transport. Services wrap store sentinels into these; handlers translate the
// code into an HTTP status via httputil.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies an error class independent of transport.
type Code string

const (
	CodeBadRequest          Code = "bad_request"
	CodeUnauthorized        Code = "unauthorized"
	CodeForbidden           Code = "forbidden"
	CodeCaseNotFound        Code = "case_not_found"
	CodeUnknownField        Code = "unknown_field"
	CodeCaseClosed          Code = "case_closed"
	CodeConflict            Code = "conflict"
	CodeCollaboratorFailure Code = "collaborator_failure"
	CodeInternal            Code = "internal_error"
)

// Error carries a code plus a human-readable description. The description is
// safe to return to callers except for internal errors, which are redacted at
// the transport layer.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// CodeOf extracts the code from err, defaulting to CodeInternal for errors
// that did not originate in this package.
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// HTTPStatus maps an error code to its HTTP status.
func HTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest, CodeUnknownField:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeCaseNotFound:
		return http.StatusNotFound
	case CodeCaseClosed, CodeConflict:
		return http.StatusConflict
	case CodeCollaboratorFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
