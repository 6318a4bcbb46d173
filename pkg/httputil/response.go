// Package httputil provides shared HTTP response helpers.
package httputil

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

// WriteJSON writes a JSON response with the given status code.
// It sets the Content-Type header to application/json.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// WriteError writes a JSON error response with an error code and a
// human-readable message.
func WriteError(w http.ResponseWriter, status int, errCode, message string) {
	WriteJSON(w, status, map[string]string{
		"error":   errCode,
		"message": message,
	})
}

// WriteNotFound writes a 404 for a request no endpoint matches.
func WriteNotFound(w http.ResponseWriter, method, path string) {
	WriteError(w, http.StatusNotFound, "not_found", "no operation declared for "+method+" "+path)
}

// WriteMethodNotAllowed writes a 405 listing the declared methods in Allow.
func WriteMethodNotAllowed(w http.ResponseWriter, method string, allowed []string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "method "+method+" is not declared for this path")
}

// WriteRaw writes a pre-encoded body. Content-Length is set from body and
// an empty contentType leaves the header unset.
func WriteRaw(w http.ResponseWriter, status int, contentType string, body []byte) {
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	if len(body) > 0 && bodyAllowed(status) {
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	}
	w.WriteHeader(status)
	if len(body) > 0 && bodyAllowed(status) {
		_, _ = w.Write(body)
	}
}

// bodyAllowed reports whether status permits a response body.
func bodyAllowed(status int) bool {
	return !(status >= 100 && status < 200) && status != http.StatusNoContent && status != http.StatusNotModified
}
