package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"cookie-corner/internal/models"
	"cookie-corner/internal/services"
)

// OrderHandler serves order and registration status lookups for the
// success pages
type OrderHandler struct {
	orders        services.OrderStore
	registrations services.RegistrationStore
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders services.OrderStore, registrations services.RegistrationStore) *OrderHandler {
	return &OrderHandler{orders: orders, registrations: registrations}
}

// orderSummary is the sanitized view exposed to the success page
type orderSummary struct {
	ID          string             `json:"id"`
	Status      models.OrderStatus `json:"status"`
	TotalAmount int                `json:"total_amount"`
	Lines       []models.OrderLine `json:"product_orders"`
	CreatedAt   time.Time          `json:"created_at"`
}

// GetOrder handles GET /api/orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.GetByID(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, orderSummary{
		ID:          order.ID,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		Lines:       order.Lines,
		CreatedAt:   order.CreatedAt,
	})
}

// registrationSummary is the sanitized view exposed to the success page
type registrationSummary struct {
	ID          string             `json:"id"`
	EventID     string             `json:"event_id"`
	Status      models.OrderStatus `json:"status"`
	Quantity    int                `json:"quantity"`
	TotalAmount int                `json:"total_amount"`
	CreatedAt   time.Time          `json:"created_at"`
}

// GetRegistration handles GET /api/registrations/{id}
func (h *OrderHandler) GetRegistration(w http.ResponseWriter, r *http.Request) {
	reg, err := h.registrations.GetByID(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, registrationSummary{
		ID:          reg.ID,
		EventID:     reg.EventID,
		Status:      reg.Status,
		Quantity:    reg.Quantity,
		TotalAmount: reg.TotalAmount,
		CreatedAt:   reg.CreatedAt,
	})
}
