package server

import (
	"encoding/json"
	"errors"
	"net/http"
)

// errURLRequired reports a missing url field in the request body.
// Its text is the client-visible message.
var errURLRequired = errors.New("URL is required")

// errorResponse is the JSON envelope shared by all failure responses.
type errorResponse struct {
	Error string `json:"error"`
	// Status is set only by the top-level panic handler.
	Status string `json:"status,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
