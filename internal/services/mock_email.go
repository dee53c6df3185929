package services

import (
	"github.com/rs/zerolog"

	"cookie-corner/internal/models"
)

// MockEmailService provides an email service that uses Resend when an API
// key is configured and falls back to logging in development.
type MockEmailService struct {
	resendService *ResendEmailService
	useResend     bool
	logger        zerolog.Logger
}

// NewMockEmailService creates a new mock email service
func NewMockEmailService(config ResendConfig, logger zerolog.Logger) *MockEmailService {
	service := &MockEmailService{logger: logger}

	if config.APIKey != "" {
		service.resendService = NewResendEmailService(config)
		service.useResend = true
		logger.Info().Msg("email service: using Resend API")
	} else {
		logger.Info().Msg("email service: using mock (no Resend API key provided)")
	}

	return service
}

// SendOrderConfirmation sends an order confirmation email
func (s *MockEmailService) SendOrderConfirmation(order *models.Order) error {
	if s.useResend {
		return s.resendService.SendOrderConfirmation(order)
	}

	s.logger.Info().
		Str("order_id", order.ID).
		Str("to", order.CustomerEmail).
		Msg("mock email: order confirmation")
	return nil
}

// SendRegistrationConfirmation sends an event ticket confirmation email
func (s *MockEmailService) SendRegistrationConfirmation(reg *models.EventRegistration, event *models.Event) error {
	if s.useResend {
		return s.resendService.SendRegistrationConfirmation(reg, event)
	}

	s.logger.Info().
		Str("registration_id", reg.ID).
		Str("to", reg.CustomerEmail).
		Msg("mock email: registration confirmation")
	return nil
}
