package services

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"cookie-corner/internal/models"
)

// CheckoutService turns a validated cart into a pending order and a hosted
// payment redirect. The order row is always persisted before the payment
// session is created, so a webhook arriving early always has an order to
// reconcile against.
type CheckoutService struct {
	products      ProductCatalog
	events        EventCatalog
	orders        OrderStore
	registrations RegistrationStore
	payments      PaymentService
	baseURL       string
	currency      string
	logger        zerolog.Logger
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(
	products ProductCatalog,
	events EventCatalog,
	orders OrderStore,
	registrations RegistrationStore,
	payments PaymentService,
	baseURL string,
	currency string,
	logger zerolog.Logger,
) *CheckoutService {
	return &CheckoutService{
		products:      products,
		events:        events,
		orders:        orders,
		registrations: registrations,
		payments:      payments,
		baseURL:       baseURL,
		currency:      currency,
		logger:        logger,
	}
}

// Checkout validates the cart, prices it against the catalog, persists a
// pending order and returns the hosted payment redirect URL.
func (s *CheckoutService) Checkout(req *models.CheckoutRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	order, err := s.intakeOrder(req)
	if err != nil {
		return "", err
	}

	redirectURL, err := s.startOrderPayment(order)
	if err != nil {
		// The pending order stays behind for manual review; no session was
		// recorded so there is nothing for the webhook to confirm.
		return "", err
	}

	s.logger.Info().
		Str("order_id", order.ID).
		Int("total_amount", order.TotalAmount).
		Int("lines", len(order.Lines)).
		Msg("checkout session created")

	return redirectURL, nil
}

// intakeOrder prices the cart server-side and persists the order as pending.
// All-or-nothing: a single unknown product or unresolvable price fails the
// whole request before anything is written.
func (s *CheckoutService) intakeOrder(req *models.CheckoutRequest) (*models.Order, error) {
	ids := dedupeIDs(req.Cart)

	products, err := s.products.GetByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	productByID := make(map[string]*models.Product, len(products))
	for _, p := range products {
		productByID[p.ID] = p
	}

	var lines []models.OrderLine
	total := 0
	for _, item := range req.Cart {
		product, ok := productByID[item.ProductID]
		if !ok {
			return nil, fmt.Errorf("product %s: %w", item.ProductID, models.ErrProductNotFound)
		}

		quote, err := ResolvePrice(product, item.Size)
		if err != nil {
			return nil, err
		}

		lines = append(lines, models.OrderLine{
			ProductID:      product.ID,
			ProductName:    product.Name,
			Size:           quote.Label,
			UnitPrice:      quote.UnitPrice,
			Quantity:       item.Quantity,
			Customizations: item.Customizations,
		})
		total += quote.UnitPrice * item.Quantity
	}

	order := &models.Order{
		ID:                 uuid.NewString(),
		CustomerName:       req.CustomerName,
		CustomerEmail:      req.CustomerEmail,
		CustomerPhone:      req.CustomerPhone,
		DeliveryType:       req.DeliveryType,
		PickupDeliveryTime: req.PickupDeliveryTime,
		Notes:              req.Notes,
		Lines:              lines,
		TotalAmount:        total,
		Status:             models.OrderPending,
	}
	if req.DeliveryType == models.DeliveryDelivery {
		addr := req.DeliveryAddress
		order.DeliveryAddress = &addr
	}

	if err := s.orders.Create(order); err != nil {
		return nil, fmt.Errorf("failed to persist order: %w", err)
	}

	return order, nil
}

// startOrderPayment creates the hosted payment session for a persisted
// pending order and best-effort records the session handle on it.
func (s *CheckoutService) startOrderPayment(order *models.Order) (string, error) {
	lineItems := make([]SessionLineItem, 0, len(order.Lines))
	for _, line := range order.Lines {
		name := line.ProductName
		if line.Size != "" {
			name = fmt.Sprintf("%s (%s)", line.ProductName, line.Size)
		}
		lineItems = append(lineItems, SessionLineItem{
			Name:       name,
			UnitAmount: line.UnitPrice,
			Quantity:   line.Quantity,
		})
	}

	successURL := fmt.Sprintf("%s/order-success?orderId=%s", s.baseURL, url.QueryEscape(order.ID))
	cancelURL := s.baseURL + "/checkout?canceled=1"

	session, err := s.payments.CreateCheckoutSession(CheckoutSessionParams{
		CustomerEmail: order.CustomerEmail,
		SuccessURL:    successURL,
		CancelURL:     cancelURL,
		LineItems:     lineItems,
		Metadata: map[string]string{
			"orderId":  order.ID,
			"currency": s.currency,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create payment session: %w", err)
	}

	// Optional reconciliation aid: tolerate the column not existing yet,
	// never let it block checkout. Any other persistence failure is fatal.
	if err := s.orders.SetPaymentSession(order.ID, session.ID); err != nil {
		if !errors.Is(err, models.ErrMissingColumn) {
			return "", err
		}
		s.logger.Warn().
			Str("order_id", order.ID).
			Msg("orders table missing stripe_session_id column, continuing without it")
	}

	return session.URL, nil
}

// EventCheckout validates a ticket request, enforces the event capacity
// best-effort, persists a pending registration and returns the payment
// redirect URL.
func (s *CheckoutService) EventCheckout(req *models.EventCheckoutRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	event, err := s.events.GetByID(req.EventID)
	if err != nil {
		return "", err
	}
	if !event.Active {
		return "", models.ErrEventNotFound
	}

	if event.PricePerEntry <= 0 {
		return "", fmt.Errorf("event %s: %w", event.ID, models.ErrInvalidPrice)
	}

	// Capacity check: read current usage, then insert. The window between
	// the two is an accepted race; see the event capacity note in DESIGN.md.
	if event.Capacity != nil {
		used, err := s.registrations.CapacityUsed(event.ID)
		if err != nil {
			return "", err
		}
		if used+req.Quantity > *event.Capacity {
			return "", models.ErrCapacityExceeded
		}
	}

	reg := &models.EventRegistration{
		ID:            uuid.NewString(),
		EventID:       event.ID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		Quantity:      req.Quantity,
		TotalAmount:   event.PricePerEntry * req.Quantity,
		Status:        models.OrderPending,
	}

	if err := s.registrations.Create(reg); err != nil {
		return "", fmt.Errorf("failed to persist registration: %w", err)
	}

	successURL := fmt.Sprintf("%s/event-success?registrationId=%s", s.baseURL, url.QueryEscape(reg.ID))
	cancelURL := fmt.Sprintf("%s/events/%s?canceled=1", s.baseURL, url.PathEscape(event.ID))

	session, err := s.payments.CreateCheckoutSession(CheckoutSessionParams{
		CustomerEmail: reg.CustomerEmail,
		SuccessURL:    successURL,
		CancelURL:     cancelURL,
		LineItems: []SessionLineItem{
			{
				Name:       fmt.Sprintf("%s - Event ticket", event.Title),
				UnitAmount: event.PricePerEntry,
				Quantity:   reg.Quantity,
			},
		},
		Metadata: map[string]string{
			"type":                "event",
			"eventRegistrationId": reg.ID,
			"eventId":             event.ID,
			"currency":            s.currency,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create payment session: %w", err)
	}

	if err := s.registrations.SetPaymentSession(reg.ID, session.ID); err != nil {
		if !errors.Is(err, models.ErrMissingColumn) {
			return "", err
		}
		s.logger.Warn().
			Str("registration_id", reg.ID).
			Msg("event_registrations table missing stripe_session_id column, continuing without it")
	}

	s.logger.Info().
		Str("registration_id", reg.ID).
		Str("event_id", event.ID).
		Int("quantity", reg.Quantity).
		Msg("event checkout session created")

	return session.URL, nil
}

// dedupeIDs returns the unique product ids of a cart in first-seen order
func dedupeIDs(cart []models.CartItem) []string {
	seen := make(map[string]bool, len(cart))
	var ids []string
	for _, item := range cart {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}
	return ids
}
