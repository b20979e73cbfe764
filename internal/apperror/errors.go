package apperror

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error classification. HTTP mapping lives in the
// response package; UI clients branch on the code (e.g. redirect-to-rebook on
// EXPIRED) and display the message otherwise.
type Code string

const (
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"
	CodeNotFound     Code = "NOT_FOUND"
	CodeUnavailable  Code = "UNAVAILABLE"
	CodeConflict     Code = "CONFLICT"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeInvalidState Code = "INVALID_STATE"
	CodeExpired      Code = "EXPIRED"
	CodeInternal     Code = "INTERNAL"
)

// Error carries a classification code and a human-readable message.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause, if any.
func (e *Error) Unwrap() error { return e.Err }

// Is matches two *Error values by code so errors.Is works on sentinels.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Code == other.Code
}

// New creates an Error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Unauthorized indicates the actor could not be resolved.
func Unauthorized(message string) *Error {
	return &Error{Code: CodeUnauthorized, Message: message}
}

// Forbidden indicates the resolved actor lacks permission for the target.
func Forbidden(message string) *Error {
	return &Error{Code: CodeForbidden, Message: message}
}

// NotFound indicates the referenced entity does not exist or is soft-deleted.
func NotFound(entity, id string) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("%s %s not found", entity, id)}
}

// Unavailable indicates the room's operational status prevents booking.
func Unavailable(message string) *Error {
	return &Error{Code: CodeUnavailable, Message: message}
}

// Conflict indicates an overlapping active booking for the requested range.
func Conflict(message string) *Error {
	return &Error{Code: CodeConflict, Message: message}
}

// InvalidInput indicates malformed or out-of-policy input.
func InvalidInput(message string) *Error {
	return &Error{Code: CodeInvalidInput, Message: message}
}

// InvalidState indicates the requested transition or action is not legal from
// the booking's current status.
func InvalidState(current, requested string) *Error {
	return &Error{
		Code:    CodeInvalidState,
		Message: fmt.Sprintf("cannot transition booking from %s to %s", current, requested),
	}
}

// InvalidStateAction reports a non-transition action disallowed for the
// current status (e.g. cancelling a checked-out booking).
func InvalidStateAction(message string) *Error {
	return &Error{Code: CodeInvalidState, Message: message}
}

// Expired indicates a hold lapsed before confirmation.
func Expired(message string) *Error {
	return &Error{Code: CodeExpired, Message: message}
}

// Internal wraps an unexpected failure.
func Internal(message string, err error) *Error {
	return &Error{Code: CodeInternal, Message: message, Err: err}
}

// CodeOf extracts the classification code from any error, defaulting to
// INTERNAL for errors that did not originate in this package.
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}
