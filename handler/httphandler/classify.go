package httphandler

import (
	"fmt"
	"net/http"
)

// Outcome is the delivery classification of one request.
type Outcome int

const (
	// Success means the endpoint accepted the record
	Success Outcome = iota
	// Retryable failures delay the next attempt
	Retryable
	// Permanent failures drop the record without delay
	Permanent
)

// String returns the string representation of the outcome
func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case Retryable:
		return "retryable"
	case Permanent:
		return "permanent"
	default:
		return "unknown"
	}
}

// Classify maps a response status code to an Outcome.
func Classify(status int) Outcome {
	switch {
	case status >= 200 && status < 300:
		return Success
	case status == http.StatusTooManyRequests, status >= 500 && status < 600:
		return Retryable
	default:
		return Permanent
	}
}

// StatusError reports a non-2xx response.
type StatusError struct {
	Code    int
	Outcome Outcome
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("httphandler: %s response %d %s", e.Outcome, e.Code, http.StatusText(e.Code))
}

// retryable reports whether err warrants another attempt. Transport
// errors are retryable.
func retryable(err error) bool {
	if se, ok := err.(*StatusError); ok {
		return se.Outcome == Retryable
	}
	return err != nil
}
