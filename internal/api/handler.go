// Package api provides HTTP helpers and handlers for the taskboard server.
package api

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
)

// Failure is the body written when a request could not be served. Message is
// a fixed summary; Error carries the underlying cause.
type Failure struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// JSON writes v as a JSON response with the given status code. v is encoded
// before the header is sent so an encoding failure still yields a clean 500.
func JSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"failed to encode response"}` + "\n"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// Fail writes a Failure envelope.
func Fail(w http.ResponseWriter, status int, message string, err error) {
	f := Failure{Message: message}
	if err != nil {
		f.Error = err.Error()
	}
	JSON(w, status, f)
}
