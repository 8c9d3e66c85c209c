package httpapi

import (
	"encoding/json"
	"net/http"
)

// envelope is the response body shape every endpoint uses: a success flag
// plus endpoint-specific fields.
type envelope map[string]any

func respond(w http.ResponseWriter, status int, fields envelope) {
	body := envelope{"success": true}
	for k, v := range fields {
		body[k] = v
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{
		"success": false,
		"message": message,
	})
}
