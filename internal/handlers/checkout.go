package handlers

import (
	"encoding/json"
	"net/http"

	"cookie-corner/internal/models"
	"cookie-corner/internal/services"
)

// CheckoutHandler handles cart and event ticket checkout requests
type CheckoutHandler struct {
	checkoutService *services.CheckoutService
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService *services.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutService: checkoutService}
}

// Checkout handles POST /api/checkout. On success the client is handed the
// hosted payment redirect URL; on failure the client keeps its cart.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req models.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	redirectURL, err := h.checkoutService.Checkout(&req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": redirectURL})
}

// EventCheckout handles POST /api/event-checkout
func (h *CheckoutHandler) EventCheckout(w http.ResponseWriter, r *http.Request) {
	var req models.EventCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	redirectURL, err := h.checkoutService.EventCheckout(&req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": redirectURL})
}
