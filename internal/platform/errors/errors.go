// Package errors carries the coded error type shared by every service.
// Call sites import it as perr to stay clear of the stdlib errors package
package errors

import (
	stderrs "errors"
	"fmt"
)

// ErrorCode classifies errors for retry and reporting decisions
// Values are stable once assigned; add new codes at the end
type ErrorCode uint16

const (
	// ErrorCodeUnknown is for unclassified errors
	ErrorCodeUnknown ErrorCode = iota

	// ErrorCodePanic is for recovered panics
	ErrorCodePanic

	// ErrorCodeUnavailable is for transient errors where retry may succeed
	ErrorCodeUnavailable

	// ErrorCodeTooManyRequests is for provider rate limiting
	ErrorCodeTooManyRequests

	// ErrorCodeUnauthorized is for provider auth failures (bad or missing key)
	ErrorCodeUnauthorized

	// ErrorCodeInvalidArgument is for bad input parameters
	ErrorCodeInvalidArgument

	// ErrorCodeValidation is for validation failures (input data)
	ErrorCodeValidation

	// ErrorCodeJSON is for JSON parsing/validation errors
	ErrorCodeJSON

	// ErrorCodeNotFound is for missing resources
	ErrorCodeNotFound

	// ErrorCodeMalformedResponse is for empty or unusable provider replies
	ErrorCodeMalformedResponse

	// ErrorCodeCorruptCache is for unreadable run cache records
	ErrorCodeCorruptCache

	// ErrorCodeRunAborted is for classification passes that failed after retries
	ErrorCodeRunAborted
)

// ErrNotFound is the bare not-found sentinel for errors.Is checks
var ErrNotFound = New(ErrorCodeNotFound, "not found")

// Error pairs a machine-facing code with a human-facing message
// field names an offending input where that helps; orig holds the
// wrapped cause
type Error struct {
	orig  error
	msg   string
	code  ErrorCode
	field string
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.orig != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.orig)
	}
	return e.msg
}

// Unwrap exposes the cause to the errors.Is and errors.As chains
func (e *Error) Unwrap() error { return e.orig }

// Code returns the classification code
func (e *Error) Code() ErrorCode { return e.code }

// Field returns the offending input name, when one was attached
func (e *Error) Field() string { return e.field }

// Root walks to the deepest wrapped cause
func Root(err error) error {
	for err != nil {
		u := stderrs.Unwrap(err)
		if u == nil {
			return err
		}
		err = u
	}
	return nil
}

// CodeOf reads the code off any error; foreign errors count as Unknown
func CodeOf(err error) ErrorCode {
	if e, ok := As(err); ok {
		return e.code
	}
	return ErrorCodeUnknown
}

// IsCode reports whether err carries code anywhere in its chain
func IsCode(err error, code ErrorCode) bool { return CodeOf(err) == code }

// As finds the first *Error in err's chain
func As(err error) (*Error, bool) {
	var e *Error
	if stderrs.As(err, &e) {
		return e, true
	}
	return nil, false
}

// WithField attaches a field name, copying first so shared errors stay
// immutable; foreign errors pass through untouched
func WithField(err error, field string) error {
	if e, ok := As(err); ok {
		c := *e
		c.field = field
		return &c
	}
	return err
}

// New returns a coded error with a fixed message
func New(code ErrorCode, msg string) error { return &Error{code: code, msg: msg} }

// Newf returns a coded error with a formatted message
func Newf(code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...)}
}

// Wrap returns a coded error holding orig as its cause
func Wrap(orig error, code ErrorCode, msg string) error {
	return &Error{code: code, msg: msg, orig: orig}
}

// Wrapf is Wrap with a formatted message
func Wrapf(orig error, code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...), orig: orig}
}

// WrapIf wraps only a non-nil err, for single-line returns
func WrapIf(err error, code ErrorCode, msg string) error {
	if err == nil {
		return nil
	}
	return Wrap(err, code, msg)
}

// Per-code constructors

// NotFoundf returns a not found error
func NotFoundf(format string, a ...any) error { return Newf(ErrorCodeNotFound, format, a...) }

// InvalidArgf returns an invalid argument error
func InvalidArgf(format string, a ...any) error { return Newf(ErrorCodeInvalidArgument, format, a...) }

// Validationf returns a validation error
func Validationf(format string, a ...any) error { return Newf(ErrorCodeValidation, format, a...) }

// PanicErrf returns a panic error
func PanicErrf(format string, a ...any) error { return Newf(ErrorCodePanic, format, a...) }

// Unavailablef returns an unavailable error
func Unavailablef(format string, a ...any) error { return Newf(ErrorCodeUnavailable, format, a...) }

// TooManyRequestsf returns a rate limit error
func TooManyRequestsf(format string, a ...any) error {
	return Newf(ErrorCodeTooManyRequests, format, a...)
}

// MalformedResponsef returns a malformed provider response error
func MalformedResponsef(format string, a ...any) error {
	return Newf(ErrorCodeMalformedResponse, format, a...)
}

// CorruptCachef returns a corrupt cache record error
func CorruptCachef(format string, a ...any) error { return Newf(ErrorCodeCorruptCache, format, a...) }

// Internalf returns a generic internal error
func Internalf(format string, a ...any) error { return Newf(ErrorCodeUnknown, format, a...) }
