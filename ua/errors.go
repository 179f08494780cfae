package ua

import (
	"errors"
	"strings"
)

// StatusError is a failure carrying a protocol status code.
// It is the only error type returned from blocking proxy operations.
type StatusError struct {
	// Code is the protocol status.
	Code StatusCode
	// Diagnostic is an optional human readable detail.
	Diagnostic string

	cause error
}

// NewStatusError returns a status error without a cause.
func NewStatusError(code StatusCode, diagnostic string) *StatusError {
	return &StatusError{Code: code, Diagnostic: diagnostic}
}

// WrapStatus returns a status error that chains cause.
func WrapStatus(code StatusCode, cause error) *StatusError {
	return &StatusError{Code: code, cause: cause}
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	var b strings.Builder
	b.WriteString(e.Code.String())
	if e.Diagnostic != "" {
		b.WriteString(": ")
		b.WriteString(e.Diagnostic)
	}
	if e.cause != nil {
		b.WriteString(": ")
		b.WriteString(e.cause.Error())
	}
	return b.String()
}

// Unwrap returns the chained cause, if any.
func (e *StatusError) Unwrap() error {
	return e.cause
}

// Is matches a StatusCode target with the same code, or another *StatusError
// with the same code.
func (e *StatusError) Is(target error) bool {
	switch t := target.(type) {
	case StatusCode:
		return e.Code == t
	case *StatusError:
		return t != nil && e.Code == t.Code
	}
	return false
}

// Translate converts any error into a *StatusError.
//
// A *StatusError found anywhere in the chain is returned unchanged. A bare
// StatusCode in the chain is lifted into a StatusError with that code.
// Everything else, including context cancellation, becomes
// Bad_UnexpectedError with err as its cause. Translate(nil) returns nil.
func Translate(err error) *StatusError {
	if err == nil {
		return nil
	}

	var se *StatusError
	if errors.As(err, &se) {
		return se
	}

	var code StatusCode
	if errors.As(err, &code) {
		if _, bare := err.(StatusCode); bare {
			return NewStatusError(code, "")
		}
		return &StatusError{Code: code, cause: err}
	}

	return WrapStatus(StatusBadUnexpectedError, err)
}

// Code extracts the status code of err: Good for nil, the translated code
// otherwise.
func Code(err error) StatusCode {
	if err == nil {
		return StatusGood
	}
	return Translate(err).Code
}
