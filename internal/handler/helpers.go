package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"orderdesk/internal/backend"
)

// respondWithError sends the {success:false, error} envelope the UI expects.
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]any{"success": false, "error": message})
}

// respondWithJSON sends a JSON response.
func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("handler: failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"error":"failed to marshal response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("handler: failed to write JSON response")
	}
}

// respondBackendError maps a backend call failure onto the response. An
// application error keeps the server's message verbatim; a transport error
// becomes a generic bad-gateway answer.
func respondBackendError(w http.ResponseWriter, err error) {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.StatusCode
		if code < http.StatusBadRequest {
			code = http.StatusBadGateway
		}
		respondWithError(w, code, apiErr.Message)
		return
	}
	respondWithError(w, http.StatusBadGateway, "backend request failed")
}
