// Package httputil provides HTTP handler utilities for consistent envelope
// rendering, request parsing, and middleware.
package httputil

import (
	"encoding/json"
	"net/http"
)

// The orchestration surface answers 200 OK for every outcome, success or
// failure; callers distinguish them by body shape. The status-aware writers
// below exist for the health listener only.

// WriteEnvelope writes a 200 JSON response with the given payload
func WriteEnvelope(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(payload)
}

// WriteErrorEnvelope writes a 200 response carrying the error envelope
func WriteErrorEnvelope(w http.ResponseWriter, message string) {
	WriteEnvelope(w, map[string]string{"error": message})
}

// WriteRawJSON writes a 200 response with a pre-serialized JSON body,
// used to pass backend payloads through verbatim.
func WriteRawJSON(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteServiceUnavailable writes a service unavailable error (503)
func WriteServiceUnavailable(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"error": message})
}
