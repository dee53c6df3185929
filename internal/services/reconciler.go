package services

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"cookie-corner/internal/models"
)

// ReconcilerService applies asynchronous payment outcomes back onto orders
// and event registrations. Providers redeliver events, so every transition
// here is safe to run more than once with the same result.
type ReconcilerService struct {
	orders        OrderStore
	registrations RegistrationStore
	payments      PaymentService
	notifier      *NotificationService
	logger        zerolog.Logger
}

// NewReconcilerService creates a new payment event reconciler
func NewReconcilerService(
	orders OrderStore,
	registrations RegistrationStore,
	payments PaymentService,
	notifier *NotificationService,
	logger zerolog.Logger,
) *ReconcilerService {
	return &ReconcilerService{
		orders:        orders,
		registrations: registrations,
		payments:      payments,
		notifier:      notifier,
		logger:        logger,
	}
}

// HandleProviderEvent verifies and processes one raw webhook delivery.
// The payload must be the unparsed request body. A returned error means the
// caller should answer with a retryable status; idempotency makes the
// provider's redelivery safe.
func (s *ReconcilerService) HandleProviderEvent(payload []byte, sigHeader string) error {
	event, err := s.payments.ConstructEvent(payload, sigHeader)
	if err != nil {
		if errors.Is(err, models.ErrInvalidSignature) {
			// Potential security event: unsigned or forged delivery.
			s.logger.Warn().Err(err).Msg("webhook signature verification failed")
		}
		return err
	}

	switch event.Type {
	case EventCheckoutCompleted, EventAsyncPaymentSucceeded, EventAsyncPaymentFailed:
	default:
		// Acknowledge everything else so the provider stops redelivering.
		return nil
	}

	session := event.Data.Object

	if session.Metadata["type"] == "event" {
		return s.reconcileRegistration(event.Type, session)
	}
	return s.reconcileOrder(event.Type, session)
}

func (s *ReconcilerService) reconcileOrder(eventType string, session CheckoutSessionObject) error {
	orderID := session.Metadata["orderId"]
	if orderID == "" {
		// Not every session belongs to this flow; acknowledge and move on.
		return nil
	}

	if eventType == EventAsyncPaymentFailed {
		// Deliberate business rule: the order stays pending for manual
		// review, no automatic cancellation.
		s.logger.Info().Str("order_id", orderID).Msg("async payment failed, order left pending")
		return nil
	}

	if !session.Paid() {
		// A completed event alone does not prove payment for asynchronous
		// methods; a later async-succeeded event finishes the job.
		s.logger.Info().
			Str("order_id", orderID).
			Str("payment_status", session.PaymentStatus).
			Msg("checkout completed but not yet paid")
		return nil
	}

	if err := s.orders.UpdateStatus(orderID, models.OrderConfirmed); err != nil {
		if errors.Is(err, models.ErrOrderNotFound) {
			// Metadata is untrusted input; an unknown id is acknowledged so
			// the provider does not retry a delivery that can never succeed.
			s.logger.Warn().Str("order_id", orderID).Msg("webhook referenced unknown order")
			return nil
		}
		return fmt.Errorf("failed to confirm order %s: %w", orderID, err)
	}

	// Only the not-yet-migrated column is tolerated; any other persistence
	// failure surfaces so the provider redelivers.
	if err := s.orders.SetPaymentSession(orderID, session.ID); err != nil && !errors.Is(err, models.ErrMissingColumn) {
		return fmt.Errorf("failed to record payment session on order %s: %w", orderID, err)
	}

	// The payment is confirmed regardless of what happens to the email.
	if err := s.notifier.SendOrderConfirmation(orderID); err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID).Msg("failed to send order confirmation")
	}

	s.logger.Info().Str("order_id", orderID).Msg("order confirmed")
	return nil
}

func (s *ReconcilerService) reconcileRegistration(eventType string, session CheckoutSessionObject) error {
	regID := session.Metadata["eventRegistrationId"]
	if regID == "" {
		return nil
	}

	if eventType == EventAsyncPaymentFailed {
		s.logger.Info().Str("registration_id", regID).Msg("async payment failed, registration left pending")
		return nil
	}

	if !session.Paid() {
		s.logger.Info().
			Str("registration_id", regID).
			Str("payment_status", session.PaymentStatus).
			Msg("checkout completed but not yet paid")
		return nil
	}

	if err := s.registrations.UpdateStatus(regID, models.OrderConfirmed); err != nil {
		if errors.Is(err, models.ErrRegistrationNotFound) {
			s.logger.Warn().Str("registration_id", regID).Msg("webhook referenced unknown registration")
			return nil
		}
		return fmt.Errorf("failed to confirm registration %s: %w", regID, err)
	}

	if err := s.registrations.SetPaymentSession(regID, session.ID); err != nil && !errors.Is(err, models.ErrMissingColumn) {
		return fmt.Errorf("failed to record payment session on registration %s: %w", regID, err)
	}

	if err := s.notifier.SendRegistrationConfirmation(regID); err != nil {
		s.logger.Error().Err(err).Str("registration_id", regID).Msg("failed to send registration confirmation")
	}

	s.logger.Info().Str("registration_id", regID).Msg("registration confirmed")
	return nil
}
