package models

import (
	"errors"
	"time"
)

// Event represents a capacity-bound ticketed offering in the catalog
type Event struct {
	ID            string     `json:"id" db:"id"`
	Title         string     `json:"title" db:"title"`
	Description   string     `json:"description" db:"description"`
	Location      string     `json:"location" db:"location"`
	StartsAt      *time.Time `json:"starts_at" db:"starts_at"`
	PricePerEntry int        `json:"price_per_entry" db:"price_per_entry"` // cents
	Capacity      *int       `json:"capacity" db:"capacity"`               // nil = unlimited
	ImageURL      string     `json:"image_url" db:"image_url"`
	Active        bool       `json:"is_active" db:"is_active"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// EventRegistration represents one checkout attempt for event tickets.
// Structurally analogous to Order but bound to the parent event's capacity.
type EventRegistration struct {
	ID                 string      `json:"id" db:"id"`
	EventID            string      `json:"event_id" db:"event_id"`
	CustomerName       string      `json:"customer_name" db:"customer_name"`
	CustomerEmail      string      `json:"customer_email" db:"customer_email"`
	CustomerPhone      string      `json:"customer_phone" db:"customer_phone"`
	Quantity           int         `json:"quantity" db:"quantity"`
	TotalAmount        int         `json:"total_amount" db:"total_amount"` // cents
	Status             OrderStatus `json:"status" db:"status"`
	PaymentSessionID   string      `json:"payment_session_id" db:"stripe_session_id"`
	ConfirmationSentAt *time.Time  `json:"confirmation_sent_at" db:"confirmation_sent_at"`
	CreatedAt          time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at" db:"updated_at"`
}

// Validate validates the registration data before persistence
func (r *EventRegistration) Validate() error {
	if r.EventID == "" {
		return errors.New("event id is required")
	}

	if err := validateCustomerContact(r.CustomerName, r.CustomerEmail, r.CustomerPhone); err != nil {
		return err
	}

	if r.Quantity < 1 || r.Quantity > 99 {
		return errors.New("quantity must be between 1 and 99")
	}

	if r.TotalAmount <= 0 {
		return errors.New("total amount must be positive")
	}

	return validateOrderStatus(r.Status)
}

// IsConfirmed returns true if payment was reconciled for the registration
func (r *EventRegistration) IsConfirmed() bool {
	return r.Status == OrderConfirmed
}

// ConfirmationSent returns true if the confirmation email already went out
func (r *EventRegistration) ConfirmationSent() bool {
	return r.ConfirmationSentAt != nil
}

// TotalInCurrency returns the total in the main currency unit
func (r *EventRegistration) TotalInCurrency() float64 {
	return float64(r.TotalAmount) / 100.0
}
