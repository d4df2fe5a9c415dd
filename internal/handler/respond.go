package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/lumina-pos/api/internal/engine"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

// writeEngineError maps the engine's error taxonomy onto HTTP statuses:
// validation 400, permission 403, guard 409, shortfall 409 with the
// shortage list, not-found sentinels 404. Anything else is a 500.
func writeEngineError(w http.ResponseWriter, op string, err error) {
	var ve *engine.ValidationError
	var ge *engine.GuardError
	var pe *engine.PermissionError
	var se *engine.ShortfallError

	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": ve.Error()})
	case errors.As(err, &se):
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"error":     se.Error(),
			"shortages": se.Shortages,
		})
	case errors.As(err, &ge):
		writeJSON(w, http.StatusConflict, map[string]string{"error": ge.Error()})
	case errors.As(err, &pe):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": pe.Error()})
	case errors.Is(err, engine.ErrOrderNotFound),
		errors.Is(err, engine.ErrIngredientNotFound),
		errors.Is(err, engine.ErrRecipeNotFound),
		errors.Is(err, engine.ErrRequestNotFound),
		errors.Is(err, engine.ErrTicketNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		log.Printf("ERROR: %s: %v", op, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
