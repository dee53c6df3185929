package models

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// OrderStatus represents the lifecycle status of an order
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
)

// DeliveryType represents how an order is fulfilled
type DeliveryType string

const (
	DeliveryPickup   DeliveryType = "pickup"
	DeliveryDelivery DeliveryType = "delivery"
)

// Order represents one checkout attempt for goods. Orders are created as
// pending and only ever move forward to confirmed; a cancelled or failed
// payment leaves the order pending for manual review.
type Order struct {
	ID                 string       `json:"id" db:"id"`
	CustomerName       string       `json:"customer_name" db:"customer_name"`
	CustomerEmail      string       `json:"customer_email" db:"customer_email"`
	CustomerPhone      string       `json:"customer_phone" db:"customer_phone"`
	DeliveryType       DeliveryType `json:"delivery_type" db:"delivery_type"`
	DeliveryAddress    *string      `json:"delivery_address" db:"delivery_address"`
	PickupDeliveryTime string       `json:"pickup_delivery_time" db:"pickup_delivery_time"`
	Notes              string       `json:"notes" db:"notes"`
	Lines              []OrderLine  `json:"product_orders" db:"product_orders"`
	TotalAmount        int          `json:"total_amount" db:"total_amount"` // cents
	Status             OrderStatus  `json:"status" db:"status"`
	PaymentSessionID   string       `json:"payment_session_id" db:"stripe_session_id"`
	ConfirmationSentAt *time.Time   `json:"confirmation_sent_at" db:"confirmation_sent_at"`
	CreatedAt          time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at" db:"updated_at"`
}

// OrderLine is one priced cart line. The unit price is always the
// server-resolved catalog price, never anything the client sent.
type OrderLine struct {
	ProductID      string   `json:"product_id"`
	ProductName    string   `json:"product_name"`
	Size           string   `json:"size,omitempty"`
	UnitPrice      int      `json:"unit_price"` // cents
	Quantity       int      `json:"quantity"`
	Customizations []string `json:"customizations,omitempty"`
}

var orderEmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Validate validates the order data before persistence
func (o *Order) Validate() error {
	if err := validateCustomerContact(o.CustomerName, o.CustomerEmail, o.CustomerPhone); err != nil {
		return err
	}

	if err := validateOrderStatus(o.Status); err != nil {
		return err
	}

	if o.TotalAmount <= 0 {
		return errors.New("total amount must be positive")
	}

	// Maximum order amount of $100,000 (10,000,000 cents)
	if o.TotalAmount > 10000000 {
		return errors.New("total amount cannot exceed $100,000")
	}

	if len(o.Lines) == 0 {
		return errors.New("order must contain at least one line")
	}

	sum := 0
	for _, line := range o.Lines {
		if line.UnitPrice <= 0 {
			return errors.New("line unit price must be positive")
		}
		if line.Quantity < 1 || line.Quantity > 99 {
			return errors.New("line quantity must be between 1 and 99")
		}
		sum += line.UnitPrice * line.Quantity
	}
	if sum != o.TotalAmount {
		return errors.New("total amount does not match line items")
	}

	if o.DeliveryType == DeliveryDelivery {
		if o.DeliveryAddress == nil || strings.TrimSpace(*o.DeliveryAddress) == "" {
			return errors.New("delivery address is required for delivery orders")
		}
	}

	return nil
}

// validateOrderStatus validates an order status
func validateOrderStatus(status OrderStatus) error {
	switch status {
	case OrderPending, OrderConfirmed:
		return nil
	default:
		return errors.New("invalid order status")
	}
}

// validateCustomerContact validates the customer contact fields shared by
// orders and event registrations
func validateCustomerContact(name, email, phone string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("customer name is required")
	}

	if email == "" {
		return errors.New("customer email is required")
	}

	if len(email) > 255 {
		return errors.New("customer email must be less than 255 characters")
	}

	if !orderEmailRegex.MatchString(email) {
		return errors.New("customer email format is invalid")
	}

	if strings.TrimSpace(phone) == "" {
		return errors.New("customer phone is required")
	}

	return nil
}

// IsPending returns true if the order is awaiting payment
func (o *Order) IsPending() bool {
	return o.Status == OrderPending
}

// IsConfirmed returns true if payment was reconciled for the order
func (o *Order) IsConfirmed() bool {
	return o.Status == OrderConfirmed
}

// ConfirmationSent returns true if the confirmation email already went out
func (o *Order) ConfirmationSent() bool {
	return o.ConfirmationSentAt != nil
}

// TotalInCurrency returns the total in the main currency unit
func (o *Order) TotalInCurrency() float64 {
	return float64(o.TotalAmount) / 100.0
}

// GetStatusDisplayName returns a human-readable status name
func (o *Order) GetStatusDisplayName() string {
	switch o.Status {
	case OrderPending:
		return "Pending Payment"
	case OrderConfirmed:
		return "Confirmed"
	default:
		return string(o.Status)
	}
}
