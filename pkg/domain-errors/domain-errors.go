// Package domainerrors carries stable error codes across layers, so stores
// and services can classify failures without knowing how they will be
// reported.
package domainerrors

import "errors"

// Code categorizes a failure in business terms, not HTTP terms. The
// transport layer maps codes onto status codes at the edge.
type Code string

const (
	// Request shape.
	CodeBadRequest   Code = "bad_request"
	CodeInvalidInput Code = "invalid_input"
	CodeValidation   Code = "validation_failed"

	// Authorization.
	CodeUnauthorized   Code = "unauthorized"
	CodeForbidden      Code = "forbidden"
	CodeMissingConsent Code = "missing_consent"

	// Domain state.
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeInvariantViolation Code = "invariant_violation"

	// Infrastructure.
	CodeInternal    Code = "internal_error"
	CodeTimeout     Code = "timeout"
	CodeUnavailable Code = "unavailable"
)

// Error pairs a failure with its code. The zero Message falls back to the
// code itself.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors by code, so errors.Is(err, New(CodeNotFound, "")) works
// across wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a domain error with the given code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and message to err. When err already carries a
// domain code, that code survives: classification happens once, nearest to
// the failure.
func Wrap(err error, code Code, msg string) error {
	var existing *Error
	if errors.As(err, &existing) {
		return &Error{Code: existing.Code, Message: msg, Err: err}
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode reports whether err is a domain error with the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
