// Package apierror defines the tagged error taxonomy surfaced at the HTTP
// boundary: each error carries a numeric status class and a client-safe
// message. Untagged errors are treated as internal and never leak detail.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a tagged, terminal error for the current request
type Error struct {
	Status  int    // HTTP status class (400, 401, 404, 409, 422, ...)
	Message string // client-safe message
	Err     error  // optional underlying cause, never sent to clients
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the underlying cause for errors.Is/As
func (e *Error) Unwrap() error {
	return e.Err
}

// Unauthorized tags a missing or invalid identity
func Unauthorized(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: message}
}

// InvalidArgument tags a missing or malformed required field
func InvalidArgument(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message}
}

// UnprocessableEntity tags a well-formed request that fails field validation
func UnprocessableEntity(message string) *Error {
	return &Error{Status: http.StatusUnprocessableEntity, Message: message}
}

// NotFound tags a referenced entity that does not exist for the caller
func NotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Message: message}
}

// Conflict tags a uniqueness violation
func Conflict(message string) *Error {
	return &Error{Status: http.StatusConflict, Message: message}
}

// Wrap attaches an underlying cause to a tagged error
func Wrap(e *Error, err error) *Error {
	return &Error{Status: e.Status, Message: e.Message, Err: err}
}

// StatusOf returns the HTTP status for err: the tagged status when err is an
// *Error, 500 otherwise.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return http.StatusInternalServerError
}

// MessageOf returns the client-safe message for err. Untagged errors map to
// a generic message so internal detail is never exposed.
func MessageOf(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return "Internal server error."
}
