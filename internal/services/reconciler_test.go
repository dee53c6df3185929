package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cookie-corner/internal/models"
)

const testWebhookSecret = "whsec_test_secret"

func signedHeader(secret string, ts time.Time, payload []byte) string {
	timestamp := fmt.Sprintf("%d", ts.Unix())
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	return fmt.Sprintf("t=%s,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
}

func orderEventPayload(eventType, sessionID, orderID, paymentStatus string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_1",
		"type": %q,
		"data": {"object": {
			"id": %q,
			"payment_status": %q,
			"metadata": {"orderId": %q, "currency": "cad"}
		}}
	}`, eventType, sessionID, paymentStatus, orderID))
}

func registrationEventPayload(eventType, sessionID, regID, paymentStatus string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": "evt_2",
		"type": %q,
		"data": {"object": {
			"id": %q,
			"payment_status": %q,
			"metadata": {"type": "event", "eventRegistrationId": %q, "eventId": "event-1", "currency": "cad"}
		}}
	}`, eventType, sessionID, paymentStatus, regID))
}

type reconcilerFixture struct {
	svc           *ReconcilerService
	orders        *mockOrderStore
	registrations *mockRegistrationStore
	events        *mockEventCatalog
	email         *mockEmailSender
	stripe        *StripeService
	now           time.Time
}

func newReconcilerFixture(t *testing.T) *reconcilerFixture {
	t.Helper()

	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	stripe := NewStripeService(StripeConfig{SecretKey: "sk_test", WebhookSecret: testWebhookSecret, Currency: "cad"})
	stripe.now = func() time.Time { return now }

	orders := newMockOrderStore()
	registrations := newMockRegistrationStore()
	events := newMockEventCatalog(eventWithCapacity(10))
	email := &mockEmailSender{}

	notifier := NewNotificationService(orders, registrations, events, email, zerolog.Nop())
	notifier.now = func() time.Time { return now }

	return &reconcilerFixture{
		svc:           NewReconcilerService(orders, registrations, stripe, notifier, zerolog.Nop()),
		orders:        orders,
		registrations: registrations,
		events:        events,
		email:         email,
		stripe:        stripe,
		now:           now,
	}
}

func (f *reconcilerFixture) deliver(t *testing.T, payload []byte) error {
	t.Helper()
	return f.svc.HandleProviderEvent(payload, signedHeader(testWebhookSecret, f.now, payload))
}

func (f *reconcilerFixture) seedPendingOrder(t *testing.T, id string) {
	t.Helper()
	order := &models.Order{
		ID:                 id,
		CustomerName:       "Jamie Baker",
		CustomerEmail:      "jamie@example.com",
		CustomerPhone:      "555-0101",
		DeliveryType:       models.DeliveryPickup,
		PickupDeliveryTime: "2026-09-05 10:00",
		Lines: []models.OrderLine{
			{ProductID: "prod-1", ProductName: "Chocolate Chip Cookies", Size: "medium", UnitPrice: 1800, Quantity: 1},
		},
		TotalAmount: 1800,
		Status:      models.OrderPending,
	}
	require.NoError(t, f.orders.Create(order))
}

func (f *reconcilerFixture) seedPendingRegistration(t *testing.T, id string) {
	t.Helper()
	reg := &models.EventRegistration{
		ID:            id,
		EventID:       "event-1",
		CustomerName:  "Jamie Baker",
		CustomerEmail: "jamie@example.com",
		CustomerPhone: "555-0101",
		Quantity:      2,
		TotalAmount:   5000,
		Status:        models.OrderPending,
	}
	require.NoError(t, f.registrations.Create(reg))
}

func TestReconcilerConfirmsPaidOrder(t *testing.T) {
	f := newReconcilerFixture(t)
	f.seedPendingOrder(t, "order-1")

	payload := orderEventPayload(EventCheckoutCompleted, "cs_1", "order-1", PaymentStatusPaid)
	require.NoError(t, f.deliver(t, payload))

	order, err := f.orders.GetByID("order-1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderConfirmed, order.Status)
	assert.Equal(t, "cs_1", order.PaymentSessionID)
	assert.NotNil(t, order.ConfirmationSentAt)
	assert.Equal(t, 1, f.email.orderSends)
}

func TestReconcilerIdempotentOnRedelivery(t *testing.T) {
	f := newReconcilerFixture(t)
	f.seedPendingOrder(t, "order-1")

	payload := orderEventPayload(EventCheckoutCompleted, "cs_1", "order-1", PaymentStatusPaid)
	require.NoError(t, f.deliver(t, payload))
	require.NoError(t, f.deliver(t, payload))
	require.NoError(t, f.deliver(t, payload))

	order, err := f.orders.GetByID("order-1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderConfirmed, order.Status)
	assert.Equal(t, 1, f.email.orderSends, "exactly one confirmation email across redeliveries")
}

func TestReconcilerAsyncPaymentSequence(t *testing.T) {
	f := newReconcilerFixture(t)
	f.seedPendingOrder(t, "order-1")

	// Completed arrives first but the asynchronous method has not settled.
	completed := orderEventPayload(EventCheckoutCompleted, "cs_1", "order-1", PaymentStatusUnpaid)
	require.NoError(t, f.deliver(t, completed))

	order, err := f.orders.GetByID("order-1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Zero(t, f.email.orderSends)

	// Settlement arrives later.
	succeeded := orderEventPayload(EventAsyncPaymentSucceeded, "cs_1", "order-1", PaymentStatusPaid)
	require.NoError(t, f.deliver(t, succeeded))

	order, err = f.orders.GetByID("order-1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderConfirmed, order.Status)
	assert.Equal(t, 1, f.email.orderSends)
}

func TestReconcilerAsyncPaymentFailedLeavesOrderPending(t *testing.T) {
	f := newReconcilerFixture(t)
	f.seedPendingOrder(t, "order-1")

	payload := orderEventPayload(EventAsyncPaymentFailed, "cs_1", "order-1", PaymentStatusUnpaid)
	require.NoError(t, f.deliver(t, payload))

	order, err := f.orders.GetByID("order-1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Zero(t, f.email.orderSends)
}

func TestReconcilerNoPaymentRequiredConfirms(t *testing.T) {
	f := newReconcilerFixture(t)
	f.seedPendingOrder(t, "order-1")

	payload := orderEventPayload(EventCheckoutCompleted, "cs_1", "order-1", PaymentStatusNoPaymentRequired)
	require.NoError(t, f.deliver(t, payload))

	order, err := f.orders.GetByID("order-1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderConfirmed, order.Status)
}

func TestReconcilerRejectsBadSignatureBeforeAnyMutation(t *testing.T) {
	f := newReconcilerFixture(t)
	f.seedPendingOrder(t, "order-1")

	payload := orderEventPayload(EventCheckoutCompleted, "cs_1", "order-1", PaymentStatusPaid)

	err := f.svc.HandleProviderEvent(payload, signedHeader("wrong-secret", f.now, payload))
	assert.ErrorIs(t, err, models.ErrInvalidSignature)

	err = f.svc.HandleProviderEvent(payload, "")
	assert.ErrorIs(t, err, models.ErrInvalidSignature)

	order, getErr := f.orders.GetByID("order-1")
	require.NoError(t, getErr)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Zero(t, f.email.orderSends)
}

func TestReconcilerRejectsStaleSignature(t *testing.T) {
	f := newReconcilerFixture(t)
	f.seedPendingOrder(t, "order-1")

	payload := orderEventPayload(EventCheckoutCompleted, "cs_1", "order-1", PaymentStatusPaid)
	stale := signedHeader(testWebhookSecret, f.now.Add(-6*time.Minute), payload)

	err := f.svc.HandleProviderEvent(payload, stale)
	assert.ErrorIs(t, err, models.ErrInvalidSignature)
}

func TestReconcilerAcknowledgesUnknownOrder(t *testing.T) {
	f := newReconcilerFixture(t)

	payload := orderEventPayload(EventCheckoutCompleted, "cs_1", "order-nope", PaymentStatusPaid)
	// Retrying this delivery can never succeed, so it is acknowledged.
	assert.NoError(t, f.deliver(t, payload))
	assert.Zero(t, f.email.orderSends)
}

func TestReconcilerIgnoresSessionWithoutMetadata(t *testing.T) {
	f := newReconcilerFixture(t)

	payload := []byte(`{"id": "evt_3", "type": "checkout.session.completed", "data": {"object": {"id": "cs_9", "payment_status": "paid", "metadata": {}}}}`)
	assert.NoError(t, f.deliver(t, payload))
}

func TestReconcilerAcknowledgesIrrelevantEventTypes(t *testing.T) {
	f := newReconcilerFixture(t)
	f.seedPendingOrder(t, "order-1")

	payload := orderEventPayload("payment_intent.created", "cs_1", "order-1", PaymentStatusPaid)
	require.NoError(t, f.deliver(t, payload))

	order, err := f.orders.GetByID("order-1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderPending, order.Status)
}

func TestReconcilerPropagatesStoreFailure(t *testing.T) {
	f := newReconcilerFixture(t)
	f.seedPendingOrder(t, "order-1")
	f.orders.statusErr = errors.New("database gone")

	payload := orderEventPayload(EventCheckoutCompleted, "cs_1", "order-1", PaymentStatusPaid)
	// A transient store failure must surface so the provider retries.
	assert.Error(t, f.deliver(t, payload))
}

func TestReconcilerFailsOnOtherSessionPersistError(t *testing.T) {
	f := newReconcilerFixture(t)
	f.seedPendingOrder(t, "order-1")
	f.orders.sessionErr = errors.New("connection reset by peer")

	payload := orderEventPayload(EventCheckoutCompleted, "cs_1", "order-1", PaymentStatusPaid)
	// Generic persistence failures surface so the provider retries;
	// confirmation is idempotent on redelivery.
	require.Error(t, f.deliver(t, payload))
	assert.Zero(t, f.email.orderSends)
}

func TestReconcilerToleratesMissingSessionColumn(t *testing.T) {
	f := newReconcilerFixture(t)
	f.seedPendingOrder(t, "order-1")
	f.orders.sessionErr = models.ErrMissingColumn

	payload := orderEventPayload(EventCheckoutCompleted, "cs_1", "order-1", PaymentStatusPaid)
	require.NoError(t, f.deliver(t, payload))

	order, err := f.orders.GetByID("order-1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderConfirmed, order.Status)
	assert.Equal(t, 1, f.email.orderSends)
}

func TestReconcilerEmailFailureDoesNotFailDelivery(t *testing.T) {
	f := newReconcilerFixture(t)
	f.seedPendingOrder(t, "order-1")
	f.email.sendErr = errors.New("resend outage")

	payload := orderEventPayload(EventCheckoutCompleted, "cs_1", "order-1", PaymentStatusPaid)
	require.NoError(t, f.deliver(t, payload))

	order, err := f.orders.GetByID("order-1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderConfirmed, order.Status)
	assert.Nil(t, order.ConfirmationSentAt, "failed send must not claim the marker")
}

func TestReconcilerConfirmsRegistration(t *testing.T) {
	f := newReconcilerFixture(t)
	f.seedPendingRegistration(t, "reg-1")

	payload := registrationEventPayload(EventCheckoutCompleted, "cs_2", "reg-1", PaymentStatusPaid)
	require.NoError(t, f.deliver(t, payload))

	reg, err := f.registrations.GetByID("reg-1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderConfirmed, reg.Status)
	assert.Equal(t, "cs_2", reg.PaymentSessionID)
	assert.NotNil(t, reg.ConfirmationSentAt)
	assert.Equal(t, 1, f.email.regSends)
	assert.Zero(t, f.email.orderSends)
}

func TestReconcilerRegistrationIdempotent(t *testing.T) {
	f := newReconcilerFixture(t)
	f.seedPendingRegistration(t, "reg-1")

	payload := registrationEventPayload(EventCheckoutCompleted, "cs_2", "reg-1", PaymentStatusPaid)
	require.NoError(t, f.deliver(t, payload))
	require.NoError(t, f.deliver(t, payload))

	assert.Equal(t, 1, f.email.regSends)
}

func TestReconcilerRegistrationAsyncFailedLeftPending(t *testing.T) {
	f := newReconcilerFixture(t)
	f.seedPendingRegistration(t, "reg-1")

	payload := registrationEventPayload(EventAsyncPaymentFailed, "cs_2", "reg-1", PaymentStatusUnpaid)
	require.NoError(t, f.deliver(t, payload))

	reg, err := f.registrations.GetByID("reg-1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderPending, reg.Status)
	assert.Zero(t, f.email.regSends)
}

func TestReconcilerRegistrationSessionPersistError(t *testing.T) {
	f := newReconcilerFixture(t)
	f.seedPendingRegistration(t, "reg-1")
	f.registrations.sessionErr = errors.New("connection reset by peer")

	payload := registrationEventPayload(EventCheckoutCompleted, "cs_2", "reg-1", PaymentStatusPaid)
	require.Error(t, f.deliver(t, payload))
	assert.Zero(t, f.email.regSends)
}

func TestReconcilerAcknowledgesUnknownRegistration(t *testing.T) {
	f := newReconcilerFixture(t)

	payload := registrationEventPayload(EventCheckoutCompleted, "cs_2", "reg-nope", PaymentStatusPaid)
	assert.NoError(t, f.deliver(t, payload))
}
