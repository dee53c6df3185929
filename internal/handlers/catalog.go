package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"cookie-corner/internal/services"
)

// CatalogHandler serves the read-only product and event catalog consumed by
// the storefront pages
type CatalogHandler struct {
	products services.ProductCatalog
	events   services.EventCatalog
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(products services.ProductCatalog, events services.EventCatalog) *CatalogHandler {
	return &CatalogHandler{products: products, events: events}
}

// ListProducts handles GET /api/products
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListActive()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// GetProduct handles GET /api/products/{id}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.products.GetByID(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// ListEvents handles GET /api/events
func (h *CatalogHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.ListActive()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// GetEvent handles GET /api/events/{id}
func (h *CatalogHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.events.GetByID(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}
