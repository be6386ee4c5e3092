package transport

import (
	"errors"
	"fmt"
)

// DeliveryError reports one failed attempt.
//
// StatusCode is set when the bus answered with a non-success status, and
// Body then carries the full response text. Err is set for transport
// failures (connection refused, timeout, unreadable body).
type DeliveryError struct {
	Endpoint   string
	StatusCode int
	Body       string
	Err        error
}

func (e *DeliveryError) Error() string {
	if e.Err != nil {
		if e.StatusCode != 0 {
			return fmt.Sprintf("POST %s -> %d: %v", e.Endpoint, e.StatusCode, e.Err)
		}
		return fmt.Sprintf("POST %s: %v", e.Endpoint, e.Err)
	}
	return fmt.Sprintf("POST %s -> %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// Rejected reports whether the bus answered with a non-success status.
func (e *DeliveryError) Rejected() bool {
	return e.Err == nil && e.StatusCode != 0
}

// IsDeliveryError reports whether err wraps a *DeliveryError.
func IsDeliveryError(err error) bool {
	var de *DeliveryError
	return errors.As(err, &de)
}
