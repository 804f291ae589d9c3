package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError is a structured failure returned by the identity backend.
// Payload preserves the backend's verbatim JSON body so callers can
// re-serialize it unmodified.
type APIError struct {
	StatusCode int             `json:"-"`
	Code       string          `json:"error,omitempty"`
	Message    string          `json:"error_description,omitempty"`
	Payload    json.RawMessage `json:"-"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("identity backend: %s (%s)", e.Message, e.Code)
	}
	if e.Code != "" {
		return fmt.Sprintf("identity backend: %s", e.Code)
	}
	return fmt.Sprintf("identity backend: status %d", e.StatusCode)
}

// Unauthorized reports whether the backend rejected the service credential
func (e *APIError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// Body returns the backend's raw JSON payload, falling back to a
// synthesized error object when the backend sent no parseable body.
func (e *APIError) Body() json.RawMessage {
	if len(e.Payload) > 0 {
		return e.Payload
	}
	b, _ := json.Marshal(map[string]string{"error": e.Error()})
	return b
}

// AsAPIError unwraps err into an *APIError if it is one
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// ErrNoCredential is returned when no service credential has been acquired
// yet; calls keep failing with it until a refresh succeeds (degraded mode).
var ErrNoCredential = errors.New("no service credential available")
