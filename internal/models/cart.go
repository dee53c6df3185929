package models

import "strings"

// CartItem is one line of the client's cart. The client never supplies a
// price; prices are resolved against the catalog at intake time.
type CartItem struct {
	ProductID      string       `json:"id"`
	Quantity       int          `json:"quantity"`
	Size           SizeSelector `json:"size"`
	Customizations []string     `json:"customizations,omitempty"`
}

// CheckoutRequest is the complete cart aggregate posted on each checkout
// attempt. The server keeps no cart state between requests.
type CheckoutRequest struct {
	CustomerName       string       `json:"customerName"`
	CustomerEmail      string       `json:"customerEmail"`
	CustomerPhone      string       `json:"customerPhone"`
	DeliveryType       DeliveryType `json:"deliveryType"`
	PickupDeliveryTime string       `json:"pickupDeliveryTime"`
	DeliveryAddress    string       `json:"deliveryAddress,omitempty"`
	Notes              string       `json:"notes,omitempty"`
	Cart               []CartItem   `json:"cart"`
}

// Validate validates the checkout request
func (req *CheckoutRequest) Validate() error {
	if err := validateCustomerContact(req.CustomerName, req.CustomerEmail, req.CustomerPhone); err != nil {
		return NewValidationError(err.Error())
	}

	switch req.DeliveryType {
	case DeliveryPickup, DeliveryDelivery:
	default:
		return NewValidationError("delivery type must be pickup or delivery")
	}

	if req.DeliveryType == DeliveryDelivery && strings.TrimSpace(req.DeliveryAddress) == "" {
		return NewValidationError("delivery address is required for delivery orders")
	}

	if strings.TrimSpace(req.PickupDeliveryTime) == "" {
		return NewValidationError("pickup or delivery time is required")
	}

	if len(req.Cart) == 0 {
		return NewValidationError("cart is empty")
	}

	for _, item := range req.Cart {
		if item.ProductID == "" {
			return NewValidationError("cart item is missing a product id")
		}
		if item.Quantity < 1 || item.Quantity > 99 {
			return NewValidationError("cart item quantity must be between 1 and 99")
		}
	}

	return nil
}

// EventCheckoutRequest is the body of an event ticket checkout attempt
type EventCheckoutRequest struct {
	EventID       string `json:"eventId"`
	Quantity      int    `json:"quantity"`
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	CustomerPhone string `json:"customerPhone"`
}

// Validate validates the event checkout request
func (req *EventCheckoutRequest) Validate() error {
	if req.EventID == "" {
		return NewValidationError("event id is required")
	}

	if req.Quantity < 1 || req.Quantity > 99 {
		return NewValidationError("quantity must be between 1 and 99")
	}

	if err := validateCustomerContact(req.CustomerName, req.CustomerEmail, req.CustomerPhone); err != nil {
		return NewValidationError(err.Error())
	}

	return nil
}
