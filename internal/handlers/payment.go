package handlers

import (
	"net/http"

	"github.com/gorilla/sessions"
)

// PaymentReturnHandler handles the browser coming back from the hosted
// payment page. Cancellation is non-blocking: the customer lands back on
// checkout with a notice and their cart untouched (the cart lives
// client-side and is never cleared by the server).
type PaymentReturnHandler struct {
	store sessions.Store
}

// NewPaymentReturnHandler creates a new payment return handler
func NewPaymentReturnHandler(store sessions.Store) *PaymentReturnHandler {
	return &PaymentReturnHandler{store: store}
}

// PaymentCancel handles GET /payment/cancel
func (h *PaymentReturnHandler) PaymentCancel(w http.ResponseWriter, r *http.Request) {
	session, err := h.store.Get(r, "session")
	if err == nil {
		session.AddFlash("Payment canceled. Your cart is still here when you're ready.")
		_ = session.Save(r, w)
	}

	http.Redirect(w, r, "/checkout?canceled=1", http.StatusSeeOther)
}

// PaymentSuccess handles GET /payment/success
func (h *PaymentReturnHandler) PaymentSuccess(w http.ResponseWriter, r *http.Request) {
	orderID := r.URL.Query().Get("orderId")
	if orderID == "" {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, "/order-success?orderId="+orderID, http.StatusSeeOther)
}
