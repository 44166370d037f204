package classifier

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions.
var (
	// ErrUnavailable is returned when the classifier service cannot be
	// reached or reports itself not ready. Callers translate it to a
	// "service not ready" response, never to an inference failure.
	ErrUnavailable = errors.New("classifier: service unavailable")

	// ErrEmptyBatch is returned when Classify is called with no images.
	ErrEmptyBatch = errors.New("classifier: empty image batch")

	// ErrBadResponse is returned when the service answered 200 with a
	// payload that does not match the contract.
	ErrBadResponse = errors.New("classifier: malformed response")
)

// APIError represents an error response from the classifier API.
type APIError struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Message is the error message from the service.
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("classifier: API error %d: %s", e.StatusCode, e.Message)
}

// IsUnavailable reports whether the service was unreachable or not
// ready (HTTP 503).
func (e *APIError) IsUnavailable() bool {
	return e.StatusCode == 503
}

// IsServerError returns true for server-side errors (HTTP 5xx).
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// Unavailable reports whether err indicates the classifier cannot serve
// requests right now, unwrapping as needed.
func Unavailable(err error) bool {
	if errors.Is(err, ErrUnavailable) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.IsUnavailable()
}
