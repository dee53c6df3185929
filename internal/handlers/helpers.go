package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"cookie-corner/internal/models"
)

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError writes a structured error response
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps a service error onto the HTTP status the caller
// (or the payment provider's retry loop) should see
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case models.IsValidationError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrInvalidPrice), errors.Is(err, models.ErrProductNotFound):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrEventNotFound):
		writeError(w, http.StatusNotFound, "Event not found")
	case errors.Is(err, models.ErrOrderNotFound):
		writeError(w, http.StatusNotFound, "Order not found")
	case errors.Is(err, models.ErrRegistrationNotFound):
		writeError(w, http.StatusNotFound, "Registration not found")
	case errors.Is(err, models.ErrCapacityExceeded):
		writeError(w, http.StatusConflict, "Not enough spots left for this event")
	case errors.Is(err, models.ErrInvalidSignature):
		writeError(w, http.StatusBadRequest, "Webhook signature verification failed")
	default:
		writeError(w, http.StatusInternalServerError, "Something went wrong, please try again")
	}
}
