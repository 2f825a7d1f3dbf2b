package gateway

import (
	"errors"
	"fmt"
)

var ErrAllBackendsUnavailable = errors.New("all backends unavailable")

// TransportError means the request never completed: DNS, refused connection, reset.
type TransportError struct {
	Endpoint Endpoint
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIError is a completed request with a non-ok status.
type APIError struct {
	StatusCode int
	Body       map[string]any
}

func (e *APIError) Error() string {
	if len(e.Body) == 0 {
		return fmt.Sprintf("API error: %d", e.StatusCode)
	}

	return fmt.Sprintf("API error: %d %v", e.StatusCode, e.Body)
}
