package handlers

import (
	"time"

	"cookie-corner/internal/models"
)

// Map-backed stores implementing the services interfaces, enough to drive
// the handlers through real service wiring.

type stubProductCatalog struct {
	products map[string]*models.Product
}

func newStubProductCatalog(products ...*models.Product) *stubProductCatalog {
	m := &stubProductCatalog{products: make(map[string]*models.Product)}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func (m *stubProductCatalog) GetByIDs(ids []string) ([]*models.Product, error) {
	var result []*models.Product
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			result = append(result, p)
		}
	}
	return result, nil
}

func (m *stubProductCatalog) GetByID(id string) (*models.Product, error) {
	if p, ok := m.products[id]; ok {
		return p, nil
	}
	return nil, models.ErrProductNotFound
}

func (m *stubProductCatalog) ListActive() ([]*models.Product, error) {
	var result []*models.Product
	for _, p := range m.products {
		if p.Active {
			result = append(result, p)
		}
	}
	return result, nil
}

type stubEventCatalog struct {
	events map[string]*models.Event
}

func newStubEventCatalog(events ...*models.Event) *stubEventCatalog {
	m := &stubEventCatalog{events: make(map[string]*models.Event)}
	for _, e := range events {
		m.events[e.ID] = e
	}
	return m
}

func (m *stubEventCatalog) GetByID(id string) (*models.Event, error) {
	if e, ok := m.events[id]; ok {
		return e, nil
	}
	return nil, models.ErrEventNotFound
}

func (m *stubEventCatalog) ListActive() ([]*models.Event, error) {
	var result []*models.Event
	for _, e := range m.events {
		if e.Active {
			result = append(result, e)
		}
	}
	return result, nil
}

type stubOrderStore struct {
	orders map[string]*models.Order
}

func newStubOrderStore(orders ...*models.Order) *stubOrderStore {
	m := &stubOrderStore{orders: make(map[string]*models.Order)}
	for _, o := range orders {
		m.orders[o.ID] = o
	}
	return m
}

func (m *stubOrderStore) Create(order *models.Order) error {
	clone := *order
	m.orders[order.ID] = &clone
	return nil
}

func (m *stubOrderStore) GetByID(id string) (*models.Order, error) {
	if o, ok := m.orders[id]; ok {
		return o, nil
	}
	return nil, models.ErrOrderNotFound
}

func (m *stubOrderStore) UpdateStatus(id string, status models.OrderStatus) error {
	o, ok := m.orders[id]
	if !ok {
		return models.ErrOrderNotFound
	}
	o.Status = status
	return nil
}

func (m *stubOrderStore) SetPaymentSession(id, sessionID string) error {
	o, ok := m.orders[id]
	if !ok {
		return models.ErrOrderNotFound
	}
	o.PaymentSessionID = sessionID
	return nil
}

func (m *stubOrderStore) MarkConfirmationSent(id string, at time.Time) (bool, error) {
	o, ok := m.orders[id]
	if !ok {
		return false, models.ErrOrderNotFound
	}
	if o.ConfirmationSentAt != nil {
		return false, nil
	}
	o.ConfirmationSentAt = &at
	return true, nil
}

type stubRegistrationStore struct {
	registrations map[string]*models.EventRegistration
	used          map[string]int
}

func newStubRegistrationStore(regs ...*models.EventRegistration) *stubRegistrationStore {
	m := &stubRegistrationStore{
		registrations: make(map[string]*models.EventRegistration),
		used:          make(map[string]int),
	}
	for _, r := range regs {
		m.registrations[r.ID] = r
		m.used[r.EventID] += r.Quantity
	}
	return m
}

func (m *stubRegistrationStore) Create(reg *models.EventRegistration) error {
	clone := *reg
	m.registrations[reg.ID] = &clone
	m.used[reg.EventID] += reg.Quantity
	return nil
}

func (m *stubRegistrationStore) GetByID(id string) (*models.EventRegistration, error) {
	if r, ok := m.registrations[id]; ok {
		return r, nil
	}
	return nil, models.ErrRegistrationNotFound
}

func (m *stubRegistrationStore) CapacityUsed(eventID string) (int, error) {
	return m.used[eventID], nil
}

func (m *stubRegistrationStore) UpdateStatus(id string, status models.OrderStatus) error {
	r, ok := m.registrations[id]
	if !ok {
		return models.ErrRegistrationNotFound
	}
	r.Status = status
	return nil
}

func (m *stubRegistrationStore) SetPaymentSession(id, sessionID string) error {
	r, ok := m.registrations[id]
	if !ok {
		return models.ErrRegistrationNotFound
	}
	r.PaymentSessionID = sessionID
	return nil
}

func (m *stubRegistrationStore) MarkConfirmationSent(id string, at time.Time) (bool, error) {
	r, ok := m.registrations[id]
	if !ok {
		return false, models.ErrRegistrationNotFound
	}
	if r.ConfirmationSentAt != nil {
		return false, nil
	}
	r.ConfirmationSentAt = &at
	return true, nil
}

type stubEmailSender struct {
	orderSends int
	regSends   int
}

func (m *stubEmailSender) SendOrderConfirmation(order *models.Order) error {
	m.orderSends++
	return nil
}

func (m *stubEmailSender) SendRegistrationConfirmation(reg *models.EventRegistration, event *models.Event) error {
	m.regSends++
	return nil
}

func intPtr(v int) *int {
	return &v
}
