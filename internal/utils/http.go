package utils

import (
	"encoding/json"
	"net/http"
)

// WriteJSON serializes v to JSON and writes it to w with the given HTTP
// status code. Encoding failures after the header has been written are
// silently dropped: the status line is already on the wire.
func WriteJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteJSONError writes a uniform {"error": msg} body with the given status.
func WriteJSONError(w http.ResponseWriter, msg string, status int) {
	WriteJSON(w, map[string]string{"error": msg}, status)
}
