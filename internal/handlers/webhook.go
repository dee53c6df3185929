package handlers

import (
	"io"
	"net/http"

	"cookie-corner/internal/services"
)

// Cap webhook bodies; Stripe events are small.
const maxWebhookBody = 1 << 20

// WebhookHandler receives payment provider webhook deliveries
type WebhookHandler struct {
	reconciler *services.ReconcilerService
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(reconciler *services.ReconcilerService) *WebhookHandler {
	return &WebhookHandler{reconciler: reconciler}
}

// HandleStripeWebhook handles POST /api/stripe/webhook. The body is read
// raw before any parsing so signature verification covers the exact bytes
// the provider signed. A non-2xx response makes the provider redeliver,
// which is safe because reconciliation is idempotent.
func (h *WebhookHandler) HandleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	sigHeader := r.Header.Get("Stripe-Signature")

	if err := h.reconciler.HandleProviderEvent(payload, sigHeader); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}
