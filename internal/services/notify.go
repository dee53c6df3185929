package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"cookie-corner/internal/models"
)

// NotificationService sends at most one confirmation email per confirmed
// order or registration. The persisted confirmation_sent_at timestamp is
// the guard: a set value means some run already sent, and the conditional
// write keeps two near-simultaneous reconciler runs from both claiming it.
type NotificationService struct {
	orders        OrderStore
	registrations RegistrationStore
	events        EventCatalog
	email         EmailService
	logger        zerolog.Logger
	now           func() time.Time
}

// NewNotificationService creates a new notification service
func NewNotificationService(
	orders OrderStore,
	registrations RegistrationStore,
	events EventCatalog,
	email EmailService,
	logger zerolog.Logger,
) *NotificationService {
	return &NotificationService{
		orders:        orders,
		registrations: registrations,
		events:        events,
		email:         email,
		logger:        logger,
		now:           time.Now,
	}
}

// SendOrderConfirmation sends the confirmation email for a confirmed order
// unless one already went out. Email content is rendered from the persisted
// order data; prices are never re-derived.
func (s *NotificationService) SendOrderConfirmation(orderID string) error {
	order, err := s.orders.GetByID(orderID)
	if err != nil {
		return fmt.Errorf("failed to load order for confirmation: %w", err)
	}

	if order.ConfirmationSent() {
		s.logger.Info().Str("order_id", order.ID).Msg("confirmation already sent")
		return nil
	}

	if err := s.email.SendOrderConfirmation(order); err != nil {
		return fmt.Errorf("failed to send order confirmation: %w", err)
	}

	claimed, err := s.orders.MarkConfirmationSent(order.ID, s.now())
	if err != nil {
		if errors.Is(err, models.ErrMissingColumn) {
			// Pre-migration schema cannot record the marker; the send
			// already happened, so just note it and move on.
			s.logger.Warn().Str("order_id", order.ID).Msg("orders table missing confirmation_sent_at column")
			return nil
		}
		return fmt.Errorf("failed to record confirmation marker: %w", err)
	}
	if !claimed {
		s.logger.Info().Str("order_id", order.ID).Msg("confirmation marker already claimed by concurrent run")
	}

	return nil
}

// SendRegistrationConfirmation sends the ticket confirmation email for a
// confirmed event registration unless one already went out.
func (s *NotificationService) SendRegistrationConfirmation(registrationID string) error {
	reg, err := s.registrations.GetByID(registrationID)
	if err != nil {
		return fmt.Errorf("failed to load registration for confirmation: %w", err)
	}

	if reg.ConfirmationSent() {
		s.logger.Info().Str("registration_id", reg.ID).Msg("confirmation already sent")
		return nil
	}

	// The event enriches the email; the registration alone still renders.
	event, err := s.events.GetByID(reg.EventID)
	if err != nil {
		s.logger.Warn().Err(err).Str("registration_id", reg.ID).Msg("failed to load event for confirmation email")
		event = nil
	}

	if err := s.email.SendRegistrationConfirmation(reg, event); err != nil {
		return fmt.Errorf("failed to send registration confirmation: %w", err)
	}

	claimed, err := s.registrations.MarkConfirmationSent(reg.ID, s.now())
	if err != nil {
		if errors.Is(err, models.ErrMissingColumn) {
			s.logger.Warn().Str("registration_id", reg.ID).Msg("event_registrations table missing confirmation_sent_at column")
			return nil
		}
		return fmt.Errorf("failed to record confirmation marker: %w", err)
	}
	if !claimed {
		s.logger.Info().Str("registration_id", reg.ID).Msg("confirmation marker already claimed by concurrent run")
	}

	return nil
}
