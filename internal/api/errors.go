package api

import (
	"context"
	"errors"
	"fmt"
)

// ErrMalformedResponse is wrapped by errors returned when a 2xx response
// body cannot be decoded or lacks required fields.
var ErrMalformedResponse = errors.New("malformed response")

// AuthError indicates the backend rejected the request's credentials
// (HTTP 401 or 403). The client never refreshes or retries.
type AuthError struct {
	Service    string
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("auth error (%s): status %d", e.Service, e.StatusCode)
	}
	return fmt.Sprintf("auth error (%s): status %d: %s", e.Service, e.StatusCode, e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// StatusError is any other non-2xx response.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d on %s %s: %s", e.StatusCode, e.Method, e.Path, e.Message)
}

// NetworkError wraps a transport failure: unreachable host, timeout,
// connection reset.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("executing request %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Describe turns an error from this package into a short message fit for
// a status bar.
func Describe(err error) string {
	var (
		authErr   *AuthError
		statusErr *StatusError
		netErr    *NetworkError
	)

	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled):
		return "request cancelled"
	case errors.As(err, &authErr):
		return "not authorized"
	case errors.As(err, &netErr):
		return "cannot reach server"
	case errors.Is(err, ErrMalformedResponse):
		return "unexpected response from server"
	case errors.As(err, &statusErr):
		if statusErr.Message != "" {
			return fmt.Sprintf("server error (%d): %s", statusErr.StatusCode, statusErr.Message)
		}
		return fmt.Sprintf("server error (%d)", statusErr.StatusCode)
	default:
		return err.Error()
	}
}
