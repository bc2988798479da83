package api

import (
	"errors"
	"fmt"
)

// ErrNotAuthenticated is returned when a call requiring a bearer token
// is made before login or after logout.
var ErrNotAuthenticated = errors.New("leadmate: not authenticated")

// ErrUnexpectedShape is returned by the response normalizer when a body
// decodes but matches none of the shapes the backend is known to send.
// Callers treat it as a partial-data condition: log and fall back to an
// empty collection.
var ErrUnexpectedShape = errors.New("leadmate: unexpected response shape")

// APIError wraps a non-2xx response. Message carries the backend's
// structured error message when one was present and is surfaced to the
// user verbatim; Body keeps the raw payload for diagnostics.
type APIError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("leadmate: api error: status=%d message=%s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("leadmate: api error: status=%d body=%s", e.StatusCode, e.Body)
}

// UserMessage returns the text to show the user: the backend's message
// where available, else a generic fallback.
func (e *APIError) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return "The request was rejected by the server."
}

// IsRejection reports whether err is a structured server rejection as
// opposed to a transport failure.
func IsRejection(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// UserMessage maps any error to the text shown in banners and chat
// error bubbles: rejections surface the server's message, everything
// else collapses to a generic network error.
func UserMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.UserMessage()
	}
	return "Network error. Please check your connection and try again."
}
