package delivery

import (
	"errors"
	"fmt"

	"github.com/roach88/olp/internal/transport"
)

// ExhaustedError reports that every attempt, across every shape, failed.
//
// Last is the final underlying failure. Interrupted is set when the context
// ended the retry loop early.
type ExhaustedError struct {
	Endpoint    string
	Attempts    int
	Last        error
	Interrupted error
}

func (e *ExhaustedError) Error() string {
	msg := fmt.Sprintf("frame not delivered to %s after %d attempt(s)", e.Endpoint, e.Attempts)
	if e.Interrupted != nil {
		msg += fmt.Sprintf(" (interrupted: %v)", e.Interrupted)
	}
	if e.Last != nil {
		msg += fmt.Sprintf(": last error: %v", e.Last)
	}
	return msg
}

// Unwrap exposes both the last failure and the interruption cause.
func (e *ExhaustedError) Unwrap() []error {
	var errs []error
	if e.Last != nil {
		errs = append(errs, e.Last)
	}
	if e.Interrupted != nil {
		errs = append(errs, e.Interrupted)
	}
	return errs
}

// LastDelivery returns the last failure as a *transport.DeliveryError, if it is one.
func (e *ExhaustedError) LastDelivery() (*transport.DeliveryError, bool) {
	var de *transport.DeliveryError
	if errors.As(e.Last, &de) {
		return de, true
	}
	return nil, false
}

// IsExhausted reports whether err wraps an *ExhaustedError.
func IsExhausted(err error) bool {
	var ee *ExhaustedError
	return errors.As(err, &ee)
}
