package repositories

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"cookie-corner/internal/models"
)

// OrderRepository handles order data operations
type OrderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create persists a new order in a single write. The order arrives fully
// priced; nothing here recomputes or trusts client totals.
func (r *OrderRepository) Create(order *models.Order) error {
	if err := order.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	lines, err := json.Marshal(order.Lines)
	if err != nil {
		return fmt.Errorf("failed to encode order lines: %w", err)
	}

	query := `
		INSERT INTO orders (id, customer_name, customer_email, customer_phone, delivery_type, delivery_address, pickup_delivery_time, notes, product_orders, total_amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now

	_, err = r.db.Exec(
		query,
		order.ID,
		order.CustomerName,
		order.CustomerEmail,
		order.CustomerPhone,
		order.DeliveryType,
		order.DeliveryAddress,
		order.PickupDeliveryTime,
		order.Notes,
		lines,
		order.TotalAmount,
		order.Status,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	return nil
}

// GetByID retrieves an order by id
func (r *OrderRepository) GetByID(id string) (*models.Order, error) {
	query := `
		SELECT id, customer_name, customer_email, customer_phone, delivery_type, delivery_address, pickup_delivery_time, notes, product_orders, total_amount, status,
		       COALESCE(stripe_session_id, ''), confirmation_sent_at, created_at, updated_at
		FROM orders
		WHERE id = $1`

	order := &models.Order{}
	var (
		deliveryAddress sql.NullString
		lines           []byte
		sentAt          sql.NullTime
	)

	err := r.db.QueryRow(query, id).Scan(
		&order.ID,
		&order.CustomerName,
		&order.CustomerEmail,
		&order.CustomerPhone,
		&order.DeliveryType,
		&deliveryAddress,
		&order.PickupDeliveryTime,
		&order.Notes,
		&lines,
		&order.TotalAmount,
		&order.Status,
		&order.PaymentSessionID,
		&sentAt,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrOrderNotFound
		}
		// Retry without the optional reconciliation columns on a schema
		// that has not been migrated yet.
		if isMissingColumn(err) {
			return r.getByIDLegacy(id)
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if deliveryAddress.Valid {
		addr := deliveryAddress.String
		order.DeliveryAddress = &addr
	}
	if sentAt.Valid {
		t := sentAt.Time
		order.ConfirmationSentAt = &t
	}
	if err := json.Unmarshal(lines, &order.Lines); err != nil {
		return nil, fmt.Errorf("failed to decode order lines: %w", err)
	}

	return order, nil
}

// getByIDLegacy reads an order from the pre-migration schema shape
func (r *OrderRepository) getByIDLegacy(id string) (*models.Order, error) {
	query := `
		SELECT id, customer_name, customer_email, customer_phone, delivery_type, delivery_address, pickup_delivery_time, notes, product_orders, total_amount, status, created_at, updated_at
		FROM orders
		WHERE id = $1`

	order := &models.Order{}
	var (
		deliveryAddress sql.NullString
		lines           []byte
	)

	err := r.db.QueryRow(query, id).Scan(
		&order.ID,
		&order.CustomerName,
		&order.CustomerEmail,
		&order.CustomerPhone,
		&order.DeliveryType,
		&deliveryAddress,
		&order.PickupDeliveryTime,
		&order.Notes,
		&lines,
		&order.TotalAmount,
		&order.Status,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if deliveryAddress.Valid {
		addr := deliveryAddress.String
		order.DeliveryAddress = &addr
	}
	if err := json.Unmarshal(lines, &order.Lines); err != nil {
		return nil, fmt.Errorf("failed to decode order lines: %w", err)
	}

	return order, nil
}

// UpdateStatus applies an idempotent status overwrite. Replayed webhook
// deliveries run the same update with the same outcome.
func (r *OrderRepository) UpdateStatus(id string, status models.OrderStatus) error {
	result, err := r.db.Exec("UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1", id, status)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check order status update: %w", err)
	}
	if affected == 0 {
		return models.ErrOrderNotFound
	}

	return nil
}

// SetPaymentSession records the hosted checkout session handle for
// reconciliation. Returns models.ErrMissingColumn if the schema has not
// been migrated to carry the column yet.
func (r *OrderRepository) SetPaymentSession(id, sessionID string) error {
	_, err := r.db.Exec("UPDATE orders SET stripe_session_id = $2, updated_at = NOW() WHERE id = $1", id, sessionID)
	if err != nil {
		return schemaEvolutionError("failed to set order payment session", err)
	}
	return nil
}

// MarkConfirmationSent sets the confirmation timestamp if and only if it is
// still unset, so two concurrent reconciler runs cannot both claim the send.
// Returns false when another run already claimed it.
func (r *OrderRepository) MarkConfirmationSent(id string, at time.Time) (bool, error) {
	result, err := r.db.Exec(
		"UPDATE orders SET confirmation_sent_at = $2, updated_at = NOW() WHERE id = $1 AND confirmation_sent_at IS NULL",
		id, at,
	)
	if err != nil {
		return false, schemaEvolutionError("failed to mark order confirmation sent", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check confirmation update: %w", err)
	}

	return affected > 0, nil
}
