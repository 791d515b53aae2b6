package httputil

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the envelope every API error uses, so the player pages and
// admin UI can read err.error without caring which handler failed.
type ErrorBody struct {
	Error string `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorBody{Error: message})
}
