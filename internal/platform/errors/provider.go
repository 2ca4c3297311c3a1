package errors

// Provider-specific helpers for mapping LLM gateway failures to project ErrorCode and retry semantics

import (
	"context"
	stderrs "errors"
	"fmt"
	"net/http"
	"strings"
)

// ProviderErrorCode maps an HTTP status from the provider to an ErrorCode with an ok flag
// !ok means the status is a success and no error should be raised
func ProviderErrorCode(status int) (ErrorCode, bool) {
	switch {
	case status >= 200 && status < 300:
		return ErrorCodeUnknown, false

	case status == http.StatusTooManyRequests:
		return ErrorCodeTooManyRequests, true

	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return ErrorCodeUnauthorized, true

	case status == http.StatusBadRequest,
		status == http.StatusNotFound,
		status == http.StatusUnprocessableEntity:
		// Bad model name, malformed request body, unknown endpoint
		return ErrorCodeInvalidArgument, true

	case status >= 500:
		// Transient upstream trouble
		return ErrorCodeUnavailable, true
	}

	return ErrorCodeUnknown, true
}

// FromProvider wraps err with the ErrorCode mapped from the provider HTTP status.
// If err is nil, returns nil
func FromProvider(status int, err error, msg string) error {
	if err == nil {
		return nil
	}
	code, ok := ProviderErrorCode(status)
	if !ok {
		code = ErrorCodeUnknown
	}
	return Wrap(err, code, msg)
}

// FromProviderf is the formatted variant of FromProvider
func FromProviderf(status int, err error, format string, a ...any) error {
	if err == nil {
		return nil
	}
	return FromProvider(status, err, fmt.Sprintf(format, a...))
}

// IsRetryable reports whether a gateway error represents a transient condition
// worth retrying. It handles coded errors (rate limit, unavailable, malformed
// reply) and the raw transport text seen on dropped connections
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Do not retry local cancellations/timeouts; let the caller decide higher-level retries
	if stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return false
	}

	switch CodeOf(err) {
	case ErrorCodeTooManyRequests, ErrorCodeUnavailable, ErrorCodeMalformedResponse:
		return true
	case ErrorCodeUnauthorized, ErrorCodeInvalidArgument:
		return false
	}

	// Fallback: text patterns emitted by net/http on dropped or half-open connections
	s := strings.ToLower(Root(err).Error())
	switch {
	case strings.Contains(s, "connection reset by peer"),
		strings.Contains(s, "connection refused"),
		strings.Contains(s, "broken pipe"),
		strings.Contains(s, "unexpected eof"),
		strings.Contains(s, "i/o timeout"),
		strings.Contains(s, "tls handshake timeout"),
		strings.Contains(s, "server closed idle connection"):
		return true
	default:
		return false
	}
}
