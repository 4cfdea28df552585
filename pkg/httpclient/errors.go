package httpclient

import (
	"errors"
	"fmt"
)

// ErrClientClosed is returned by Execute and Send after Close has been called.
// Closing a client is terminal; build a new one instead of reusing it.
var ErrClientClosed = errors.New("httpclient: client is closed")

// AuthFetchError is returned when the token endpoint is unreachable, answers
// with a non-2xx status, or the response body lacks an access token.
type AuthFetchError struct {
	TokenURL   string
	StatusCode int
	Body       []byte
	Err        error
}

func (e *AuthFetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("token fetch from %s failed: %v", e.TokenURL, e.Err)
	}
	return fmt.Sprintf("token fetch from %s failed with status %d: %s", e.TokenURL, e.StatusCode, e.Body)
}

func (e *AuthFetchError) Unwrap() error { return e.Err }

// ConflictingPayloadError is returned when a request supplies both a typed
// request model and a raw JSON payload. This is a programmer error and fails
// before any network I/O happens.
type ConflictingPayloadError struct{}

func (e *ConflictingPayloadError) Error() string {
	return "request model and raw JSON payload are mutually exclusive"
}

// RetryExhaustedError is returned by the provided retry policies once all
// attempts are spent. It wraps the last observed response and/or error so
// callers can inspect what the final attempt saw.
type RetryExhaustedError struct {
	Attempts     int
	LastResponse *Response
	Err          error
}

func (e *RetryExhaustedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("retries exhausted after %d attempts: %v", e.Attempts, e.Err)
	}
	if e.LastResponse != nil {
		return fmt.Sprintf("retries exhausted after %d attempts, last status %d", e.Attempts, e.LastResponse.StatusCode)
	}
	return fmt.Sprintf("retries exhausted after %d attempts", e.Attempts)
}

func (e *RetryExhaustedError) Unwrap() error { return e.Err }

// UnexpectedStatusError is returned when the response status does not match
// the caller's expectation. It carries the raw body for diagnostics.
type UnexpectedStatusError struct {
	Expected int
	Actual   int
	Body     []byte
}

func (e *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("unexpected status: expected %d, got %d: %s", e.Expected, e.Actual, e.Body)
}

// ResponseValidationError is returned when the response body cannot be parsed
// or fails structural validation against the caller's response model. It is
// distinct from transport and status errors; use errors.As to tell them apart.
type ResponseValidationError struct {
	Body []byte
	Err  error
}

func (e *ResponseValidationError) Error() string {
	return fmt.Sprintf("response validation failed: %v", e.Err)
}

func (e *ResponseValidationError) Unwrap() error { return e.Err }
