package descarteslabs

import (
	"errors"
	"fmt"
)

// ErrorKind identifies the failure class of an APIError.
type ErrorKind string

const (
	// KindBadRequest corresponds to HTTP 400 responses.
	KindBadRequest ErrorKind = "BadRequest"
	// KindNotFound corresponds to HTTP 404 responses.
	KindNotFound ErrorKind = "NotFound"
	// KindRateLimited corresponds to HTTP 429 responses that survived retry.
	KindRateLimited ErrorKind = "RateLimited"
	// KindGatewayTimeout corresponds to HTTP 504 responses.
	KindGatewayTimeout ErrorKind = "GatewayTimeout"
	// KindServerError corresponds to any other terminal non-2xx response.
	KindServerError ErrorKind = "ServerError"
	// KindTransport marks connection-level failures exhausted by retry.
	KindTransport ErrorKind = "Transport"
)

// APIError is the error returned for every failed request. It carries the raw
// response body as diagnostic text together with request context.
type APIError struct {
	Kind        ErrorKind
	StatusCode  int
	Method      string
	URL         string
	Body        string
	Attempt     int
	MaxAttempts int
	Cause       error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := string(e.Kind)
	if e.StatusCode > 0 {
		msg = fmt.Sprintf("%s: %d %s %s", msg, e.StatusCode, e.Method, e.URL)
	} else if e.Method != "" {
		msg = fmt.Sprintf("%s: %s %s", msg, e.Method, e.URL)
	}
	if e.Body != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Body)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s (%v)", msg, e.Cause)
	}
	if e.Attempt > 1 {
		msg = fmt.Sprintf("%s (attempt %d/%d)", msg, e.Attempt, e.MaxAttempts)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *APIError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is compares error kinds for errors.Is.
func (e *APIError) Is(target error) bool {
	if e == nil {
		return false
	}
	if targetErr, ok := target.(*APIError); ok {
		return e.Kind == targetErr.Kind
	}
	return false
}

// Classify maps a terminal non-2xx HTTP status to its error kind. It is pure
// and total over status codes and never inspects the body to choose the kind;
// the body is carried only as diagnostic text.
func Classify(status int, body []byte) *APIError {
	var kind ErrorKind
	switch status {
	case 400:
		kind = KindBadRequest
	case 404:
		kind = KindNotFound
	case 429:
		kind = KindRateLimited
	case 504:
		kind = KindGatewayTimeout
	default:
		kind = KindServerError
	}
	return &APIError{
		Kind:       kind,
		StatusCode: status,
		Body:       string(body),
	}
}

// IsTransient reports whether err represents a failure that might succeed on
// retry. RateLimited and GatewayTimeout are hints to reduce request rate or
// complexity, not indications of a bug.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Kind {
		case KindRateLimited, KindGatewayTimeout, KindServerError, KindTransport:
			return true
		}
	}
	return false
}
