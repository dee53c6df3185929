package services

import (
	"time"

	"cookie-corner/internal/models"
)

// ProductCatalog is the read-only product store consumed at intake time
type ProductCatalog interface {
	GetByIDs(ids []string) ([]*models.Product, error)
	GetByID(id string) (*models.Product, error)
	ListActive() ([]*models.Product, error)
}

// EventCatalog is the read-only event store
type EventCatalog interface {
	GetByID(id string) (*models.Event, error)
	ListActive() ([]*models.Event, error)
}

// OrderStore is the persistent order table, the single source of truth for
// order state. SetPaymentSession and MarkConfirmationSent may report
// models.ErrMissingColumn on a schema that has not been migrated yet;
// callers tolerate that only for these optional reconciliation fields.
type OrderStore interface {
	Create(order *models.Order) error
	GetByID(id string) (*models.Order, error)
	UpdateStatus(id string, status models.OrderStatus) error
	SetPaymentSession(id, sessionID string) error
	MarkConfirmationSent(id string, at time.Time) (bool, error)
}

// RegistrationStore is the persistent event registration table
type RegistrationStore interface {
	Create(reg *models.EventRegistration) error
	GetByID(id string) (*models.EventRegistration, error)
	CapacityUsed(eventID string) (int, error)
	UpdateStatus(id string, status models.OrderStatus) error
	SetPaymentSession(id, sessionID string) error
	MarkConfirmationSent(id string, at time.Time) (bool, error)
}

// PaymentService is the hosted payment checkout provider
type PaymentService interface {
	CreateCheckoutSession(params CheckoutSessionParams) (*CheckoutSession, error)
	ConstructEvent(payload []byte, sigHeader string) (*WebhookEvent, error)
}

// EmailService sends transactional confirmation emails
type EmailService interface {
	SendOrderConfirmation(order *models.Order) error
	SendRegistrationConfirmation(reg *models.EventRegistration, event *models.Event) error
}
