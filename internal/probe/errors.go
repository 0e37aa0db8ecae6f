package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// TimeoutError reports a probe that exceeded its deadline.
type TimeoutError struct {
	Endpoint string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("probe timed out: %s", e.Endpoint)
}

// ConnectionError reports a transport-level failure (connection refused,
// DNS, TLS).
type ConnectionError struct {
	Endpoint string
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection failed: %s: %v", e.Endpoint, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	Endpoint   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.Endpoint)
}

// ShapeError reports a decoded response missing required top-level keys.
type ShapeError struct {
	Endpoint    string
	MissingKeys []string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("response from %s missing required keys: %s",
		e.Endpoint, strings.Join(e.MissingKeys, ", "))
}

// classify converts a transport error into the probe error taxonomy.
func classify(endpoint string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Endpoint: endpoint}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TimeoutError{Endpoint: endpoint}
	}
	return &ConnectionError{Endpoint: endpoint, Err: err}
}
