package services

import (
	"errors"
	"fmt"
	"time"

	"cookie-corner/internal/models"
)

// mockProductCatalog is a map-backed product store for tests
type mockProductCatalog struct {
	products map[string]*models.Product
	fetchErr error
}

func newMockProductCatalog(products ...*models.Product) *mockProductCatalog {
	m := &mockProductCatalog{products: make(map[string]*models.Product)}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func (m *mockProductCatalog) GetByIDs(ids []string) ([]*models.Product, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	var result []*models.Product
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			result = append(result, p)
		}
	}
	return result, nil
}

func (m *mockProductCatalog) GetByID(id string) (*models.Product, error) {
	if p, ok := m.products[id]; ok {
		return p, nil
	}
	return nil, models.ErrProductNotFound
}

func (m *mockProductCatalog) ListActive() ([]*models.Product, error) {
	var result []*models.Product
	for _, p := range m.products {
		if p.Active {
			result = append(result, p)
		}
	}
	return result, nil
}

// mockEventCatalog is a map-backed event store for tests
type mockEventCatalog struct {
	events map[string]*models.Event
}

func newMockEventCatalog(events ...*models.Event) *mockEventCatalog {
	m := &mockEventCatalog{events: make(map[string]*models.Event)}
	for _, e := range events {
		m.events[e.ID] = e
	}
	return m
}

func (m *mockEventCatalog) GetByID(id string) (*models.Event, error) {
	if e, ok := m.events[id]; ok {
		return e, nil
	}
	return nil, models.ErrEventNotFound
}

func (m *mockEventCatalog) ListActive() ([]*models.Event, error) {
	var result []*models.Event
	for _, e := range m.events {
		if e.Active {
			result = append(result, e)
		}
	}
	return result, nil
}

// mockOrderStore is a map-backed order store for tests. Error fields let
// individual tests inject failures per operation.
type mockOrderStore struct {
	orders         map[string]*models.Order
	createErr      error
	statusErr      error
	sessionErr     error
	markErr        error
	createCalls    int
	sessionCalls   int
	markSentCalls  int
	statusUpdates  []models.OrderStatus
	lastSessionSet string
}

func newMockOrderStore() *mockOrderStore {
	return &mockOrderStore{orders: make(map[string]*models.Order)}
}

func (m *mockOrderStore) Create(order *models.Order) error {
	m.createCalls++
	if m.createErr != nil {
		return m.createErr
	}
	if err := order.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	clone := *order
	m.orders[order.ID] = &clone
	return nil
}

func (m *mockOrderStore) GetByID(id string) (*models.Order, error) {
	if order, ok := m.orders[id]; ok {
		clone := *order
		return &clone, nil
	}
	return nil, models.ErrOrderNotFound
}

func (m *mockOrderStore) UpdateStatus(id string, status models.OrderStatus) error {
	if m.statusErr != nil {
		return m.statusErr
	}
	order, ok := m.orders[id]
	if !ok {
		return models.ErrOrderNotFound
	}
	order.Status = status
	m.statusUpdates = append(m.statusUpdates, status)
	return nil
}

func (m *mockOrderStore) SetPaymentSession(id, sessionID string) error {
	m.sessionCalls++
	if m.sessionErr != nil {
		return m.sessionErr
	}
	order, ok := m.orders[id]
	if !ok {
		return models.ErrOrderNotFound
	}
	order.PaymentSessionID = sessionID
	m.lastSessionSet = sessionID
	return nil
}

func (m *mockOrderStore) MarkConfirmationSent(id string, at time.Time) (bool, error) {
	m.markSentCalls++
	if m.markErr != nil {
		return false, m.markErr
	}
	order, ok := m.orders[id]
	if !ok {
		return false, models.ErrOrderNotFound
	}
	if order.ConfirmationSentAt != nil {
		return false, nil
	}
	order.ConfirmationSentAt = &at
	return true, nil
}

// mockRegistrationStore is a map-backed registration store for tests
type mockRegistrationStore struct {
	registrations map[string]*models.EventRegistration
	used          map[string]int
	createErr     error
	capacityErr   error
	sessionErr    error
	createCalls   int
}

func newMockRegistrationStore() *mockRegistrationStore {
	return &mockRegistrationStore{
		registrations: make(map[string]*models.EventRegistration),
		used:          make(map[string]int),
	}
}

func (m *mockRegistrationStore) Create(reg *models.EventRegistration) error {
	m.createCalls++
	if m.createErr != nil {
		return m.createErr
	}
	if err := reg.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	clone := *reg
	m.registrations[reg.ID] = &clone
	m.used[reg.EventID] += reg.Quantity
	return nil
}

func (m *mockRegistrationStore) GetByID(id string) (*models.EventRegistration, error) {
	if reg, ok := m.registrations[id]; ok {
		clone := *reg
		return &clone, nil
	}
	return nil, models.ErrRegistrationNotFound
}

func (m *mockRegistrationStore) CapacityUsed(eventID string) (int, error) {
	if m.capacityErr != nil {
		return 0, m.capacityErr
	}
	return m.used[eventID], nil
}

func (m *mockRegistrationStore) UpdateStatus(id string, status models.OrderStatus) error {
	reg, ok := m.registrations[id]
	if !ok {
		return models.ErrRegistrationNotFound
	}
	reg.Status = status
	return nil
}

func (m *mockRegistrationStore) SetPaymentSession(id, sessionID string) error {
	if m.sessionErr != nil {
		return m.sessionErr
	}
	reg, ok := m.registrations[id]
	if !ok {
		return models.ErrRegistrationNotFound
	}
	reg.PaymentSessionID = sessionID
	return nil
}

func (m *mockRegistrationStore) MarkConfirmationSent(id string, at time.Time) (bool, error) {
	reg, ok := m.registrations[id]
	if !ok {
		return false, models.ErrRegistrationNotFound
	}
	if reg.ConfirmationSentAt != nil {
		return false, nil
	}
	reg.ConfirmationSentAt = &at
	return true, nil
}

// mockPaymentProvider fakes the hosted checkout provider for intake tests
type mockPaymentProvider struct {
	session     *CheckoutSession
	createErr   error
	createCalls int
	lastParams  CheckoutSessionParams
}

func (m *mockPaymentProvider) CreateCheckoutSession(params CheckoutSessionParams) (*CheckoutSession, error) {
	m.createCalls++
	m.lastParams = params
	if m.createErr != nil {
		return nil, m.createErr
	}
	if m.session != nil {
		return m.session, nil
	}
	return &CheckoutSession{ID: "cs_test_123", URL: "https://checkout.stripe.test/pay/cs_test_123"}, nil
}

func (m *mockPaymentProvider) ConstructEvent(payload []byte, sigHeader string) (*WebhookEvent, error) {
	return nil, errors.New("not implemented in mock")
}

// mockEmailSender counts confirmation sends for tests
type mockEmailSender struct {
	orderSends int
	regSends   int
	sendErr    error
}

func (m *mockEmailSender) SendOrderConfirmation(order *models.Order) error {
	m.orderSends++
	return m.sendErr
}

func (m *mockEmailSender) SendRegistrationConfirmation(reg *models.EventRegistration, event *models.Event) error {
	m.regSends++
	return m.sendErr
}

func intPtr(v int) *int {
	return &v
}
