package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wardstone/wardstone/internal/models"
	"github.com/wardstone/wardstone/internal/registry"
)

// writeSnapshot streams an export snapshot without the standard envelope so
// the download is importable as-is.
func writeSnapshot(w http.ResponseWriter, snapshot models.Snapshot) {
	if err := json.NewEncoder(w).Encode(snapshot); err != nil {
		log.Error().Err(err).Msg("Failed to encode snapshot")
	}
}

// writeJSON sends a JSON body with the response timestamp every endpoint carries.
func writeJSON(w http.ResponseWriter, status int, body map[string]any) {
	body["timestamp"] = time.Now().UTC().Format(time.RFC3339)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// writeError sends the error envelope; extra carries optional hints such as
// the list of valid values for a rejected field.
func writeError(w http.ResponseWriter, status int, msg string, extra map[string]any) {
	body := map[string]any{"error": msg}
	for k, v := range extra {
		body[k] = v
	}

	writeJSON(w, status, body)
}

// writeDomainError maps registry errors to HTTP statuses: validation to 400,
// unknown ids to 404, anything unexpected to a generic 500.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, registry.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, registry.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error(), nil)
	default:
		log.Error().Err(err).Msg("Unexpected error")
		writeError(w, http.StatusInternalServerError, "internal server error", nil)
	}
}

// decodeBody decodes a JSON request body with the configured size cap.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body", nil)
		return false
	}

	return true
}
