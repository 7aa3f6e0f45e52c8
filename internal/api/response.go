// internal/api/response.go
package api

import (
	"encoding/json"
	"net/http"
)

// respondWithJSON writes a JSON payload with the given status code.
func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

// respondWithError writes a JSON error payload with the given status code.
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
