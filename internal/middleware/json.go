package middleware

import (
	"encoding/json"
	"net/http"

	"school-admin/internal/model"
)

// writeErrorEnvelope answers with the same {success:false, error} body the
// handlers produce, for requests rejected before they reach a handler.
func writeErrorEnvelope(w http.ResponseWriter, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error:   &model.APIError{Code: code, Message: message},
	})
}
