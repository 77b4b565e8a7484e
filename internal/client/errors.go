// ABOUTME: Error types returned by the library API client
// ABOUTME: Separates backend-reported failures from transport failures

package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	errRequestCanceled = errors.New("request canceled")
	errRequestTimedOut = errors.New("request timed out")
)

// APIError is a non-2xx response from the backend
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend error: %s", e.Message)
	}
	return fmt.Sprintf("backend returned status %d", e.StatusCode)
}

// IsClientError reports whether the backend rejected the request itself (4xx)
func (e *APIError) IsClientError() bool {
	return e.StatusCode >= http.StatusBadRequest && e.StatusCode < http.StatusInternalServerError
}

// NetworkError means the backend was unreachable or its response unparseable
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsRejected reports whether err is a 4xx APIError
func IsRejected(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.IsClientError()
}
