package models

import "errors"

// Common errors used throughout the application
var (
	ErrProductNotFound      = errors.New("product not found")
	ErrEventNotFound        = errors.New("event not found")
	ErrOrderNotFound        = errors.New("order not found")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrInvalidInput         = errors.New("invalid input")
	ErrInvalidPrice         = errors.New("invalid price")
	ErrCapacityExceeded     = errors.New("not enough spots left")
	ErrInvalidSignature     = errors.New("invalid webhook signature")

	// ErrMissingColumn marks store failures caused by a column (or table)
	// the current schema does not have yet. Callers tolerate it only for
	// optional reconciliation fields; any other store failure stays fatal.
	ErrMissingColumn = errors.New("column not present in schema")
)

// ValidationError carries a client-facing message for malformed input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a new validation error
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// IsValidationError reports whether err is a client input error
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
