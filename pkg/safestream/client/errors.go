package client

import (
	"fmt"
	"time"
)

// ErrValidation is returned when the input of an operation is rejected before any request is sent.
type ErrValidation struct {
	error
}

func NewErrValidation(format string, args ...any) *ErrValidation {
	return &ErrValidation{fmt.Errorf("invalid request: "+format, args...)}
}

func (e *ErrValidation) Unwrap() error { return e.error }

// ErrAuth is returned when the bearer token could not be acquired from the token endpoint.
type ErrAuth struct {
	error
}

func NewErrAuth(cause error) *ErrAuth {
	return &ErrAuth{fmt.Errorf("failed to acquire auth token: %w", cause)}
}

func (e *ErrAuth) Unwrap() error { return e.error }

// ErrTransport wraps connection, timeout and stream failures.
type ErrTransport struct {
	error
}

func NewErrTransport(method, url string, cause error) *ErrTransport {
	return &ErrTransport{fmt.Errorf("%s %s failed: %w", method, url, cause)}
}

func (e *ErrTransport) Unwrap() error { return e.error }

// ErrHTTP is returned for every response with a status code >= 400.
// Body holds the response body verbatim.
type ErrHTTP struct {
	StatusCode int
	Body       string
}

func NewErrHTTP(statusCode int, body string) *ErrHTTP {
	return &ErrHTTP{StatusCode: statusCode, Body: body}
}

func (e *ErrHTTP) Error() string {
	return fmt.Sprintf("received %d response: %s", e.StatusCode, e.Body)
}

// ErrEmptyBody is returned when decoding a response that has no body.
type ErrEmptyBody struct {
	error
}

func NewErrEmptyBody(target string) *ErrEmptyBody {
	return &ErrEmptyBody{fmt.Errorf("no response body exists, cannot decode to %s", target)}
}

// ErrDecode is returned when a non-empty body cannot be decoded into the requested shape.
// It signals a contract mismatch between caller and server rather than a transient condition.
type ErrDecode struct {
	error
}

func NewErrDecode(target string, cause error) *ErrDecode {
	return &ErrDecode{fmt.Errorf("failed to decode response to %s: %w", target, cause)}
}

func (e *ErrDecode) Unwrap() error { return e.error }

// ErrTimeout is returned when polling ran out of time before the resource reached a terminal state.
type ErrTimeout struct {
	error
	Timeout time.Duration
}

func NewErrTimeout(resource string, timeout time.Duration) *ErrTimeout {
	return &ErrTimeout{
		error:   fmt.Errorf("timeout reached after %s waiting for %s", timeout, resource),
		Timeout: timeout,
	}
}

// ErrInterrupted is returned when the wait between two polls was cancelled.
type ErrInterrupted struct {
	error
}

func NewErrInterrupted(resource string, cause error) *ErrInterrupted {
	return &ErrInterrupted{fmt.Errorf("interrupted while waiting for %s: %w", resource, cause)}
}

func (e *ErrInterrupted) Unwrap() error { return e.error }
