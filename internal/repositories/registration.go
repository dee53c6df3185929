package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"cookie-corner/internal/models"
)

// RegistrationRepository handles event registration data operations
type RegistrationRepository struct {
	db *sql.DB
}

// NewRegistrationRepository creates a new registration repository
func NewRegistrationRepository(db *sql.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// Create persists a new registration in a single write
func (r *RegistrationRepository) Create(reg *models.EventRegistration) error {
	if err := reg.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO event_registrations (id, event_id, customer_name, customer_email, customer_phone, quantity, total_amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	now := time.Now()
	reg.CreatedAt = now
	reg.UpdatedAt = now

	_, err := r.db.Exec(
		query,
		reg.ID,
		reg.EventID,
		reg.CustomerName,
		reg.CustomerEmail,
		reg.CustomerPhone,
		reg.Quantity,
		reg.TotalAmount,
		reg.Status,
		now,
		now,
	)
	if err != nil {
		return schemaEvolutionError("failed to create registration", err)
	}

	return nil
}

// GetByID retrieves a registration by id
func (r *RegistrationRepository) GetByID(id string) (*models.EventRegistration, error) {
	query := `
		SELECT id, event_id, customer_name, customer_email, customer_phone, quantity, total_amount, status,
		       COALESCE(stripe_session_id, ''), confirmation_sent_at, created_at, updated_at
		FROM event_registrations
		WHERE id = $1`

	reg := &models.EventRegistration{}
	var sentAt sql.NullTime

	err := r.db.QueryRow(query, id).Scan(
		&reg.ID,
		&reg.EventID,
		&reg.CustomerName,
		&reg.CustomerEmail,
		&reg.CustomerPhone,
		&reg.Quantity,
		&reg.TotalAmount,
		&reg.Status,
		&reg.PaymentSessionID,
		&sentAt,
		&reg.CreatedAt,
		&reg.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrRegistrationNotFound
		}
		if isMissingColumn(err) {
			return r.getByIDLegacy(id)
		}
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}

	if sentAt.Valid {
		t := sentAt.Time
		reg.ConfirmationSentAt = &t
	}

	return reg, nil
}

// getByIDLegacy reads a registration from the pre-migration schema shape
func (r *RegistrationRepository) getByIDLegacy(id string) (*models.EventRegistration, error) {
	query := `
		SELECT id, event_id, customer_name, customer_email, customer_phone, quantity, total_amount, status, created_at, updated_at
		FROM event_registrations
		WHERE id = $1`

	reg := &models.EventRegistration{}
	err := r.db.QueryRow(query, id).Scan(
		&reg.ID,
		&reg.EventID,
		&reg.CustomerName,
		&reg.CustomerEmail,
		&reg.CustomerPhone,
		&reg.Quantity,
		&reg.TotalAmount,
		&reg.Status,
		&reg.CreatedAt,
		&reg.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrRegistrationNotFound
		}
		return nil, schemaEvolutionError("failed to get registration", err)
	}

	return reg, nil
}

// CapacityUsed sums ticket quantities across pending and confirmed
// registrations for an event. Best-effort capacity source: the read and the
// subsequent insert are not covered by one transaction.
func (r *RegistrationRepository) CapacityUsed(eventID string) (int, error) {
	query := `
		SELECT COALESCE(SUM(quantity), 0)
		FROM event_registrations
		WHERE event_id = $1 AND status IN ('pending', 'confirmed')`

	var used int
	if err := r.db.QueryRow(query, eventID).Scan(&used); err != nil {
		return 0, schemaEvolutionError("failed to sum event capacity usage", err)
	}

	return used, nil
}

// UpdateStatus applies an idempotent status overwrite
func (r *RegistrationRepository) UpdateStatus(id string, status models.OrderStatus) error {
	result, err := r.db.Exec("UPDATE event_registrations SET status = $2, updated_at = NOW() WHERE id = $1", id, status)
	if err != nil {
		return fmt.Errorf("failed to update registration status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check registration status update: %w", err)
	}
	if affected == 0 {
		return models.ErrRegistrationNotFound
	}

	return nil
}

// SetPaymentSession records the hosted checkout session handle.
// Returns models.ErrMissingColumn on the pre-migration schema.
func (r *RegistrationRepository) SetPaymentSession(id, sessionID string) error {
	_, err := r.db.Exec("UPDATE event_registrations SET stripe_session_id = $2, updated_at = NOW() WHERE id = $1", id, sessionID)
	if err != nil {
		return schemaEvolutionError("failed to set registration payment session", err)
	}
	return nil
}

// MarkConfirmationSent sets the confirmation timestamp only if still unset.
// Returns false when another run already claimed the send.
func (r *RegistrationRepository) MarkConfirmationSent(id string, at time.Time) (bool, error) {
	result, err := r.db.Exec(
		"UPDATE event_registrations SET confirmation_sent_at = $2, updated_at = NOW() WHERE id = $1 AND confirmation_sent_at IS NULL",
		id, at,
	)
	if err != nil {
		return false, schemaEvolutionError("failed to mark registration confirmation sent", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check confirmation update: %w", err)
	}

	return affected > 0, nil
}
