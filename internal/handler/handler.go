// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Handler holds shared helpers for router-level responses.
type Handler struct{}

// New creates a new Handler instance.
func New() *Handler {
	return &Handler{}
}

// NotFound handles 404 responses for unmatched routes.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusNotFound, "Not found.")
}

// MethodNotAllowed returns a 405 handler for a route that supports exactly
// the given methods. The Allow header lists them, and the body names the
// rejected method.
func (h *Handler) MethodNotAllowed(allow ...string) http.HandlerFunc {
	allowed := strings.Join(allow, ", ")
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", allowed)
		writeMessage(w, http.StatusMethodNotAllowed,
			fmt.Sprintf("HTTP method %s is not supported.", r.Method))
	}
}

// messageResponse is the envelope for status and error messages.
type messageResponse struct {
	Message string `json:"message"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; an encode failure has nowhere to go.
	_ = json.NewEncoder(w).Encode(data)
}

// writeMessage writes a `{"message": ...}` JSON response.
func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Message: message})
}

// writeInternalError writes the generic 500 response. The underlying error
// is never exposed to clients; callers log it.
func writeInternalError(w http.ResponseWriter) {
	writeMessage(w, http.StatusInternalServerError, "Something went wrong.")
}
