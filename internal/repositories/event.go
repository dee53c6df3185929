package repositories

import (
	"database/sql"
	"fmt"

	"cookie-corner/internal/models"
)

// EventRepository handles event catalog reads
type EventRepository struct {
	db *sql.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `id, title, description, location, starts_at, price_per_entry, capacity, image_url, is_active, created_at, updated_at`

// GetByID retrieves an event by id
func (r *EventRepository) GetByID(id string) (*models.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events WHERE id = $1`, eventColumns)

	event, err := scanEvent(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, models.ErrEventNotFound
		}
		return nil, err
	}

	return event, nil
}

// ListActive returns all active events for the storefront pages
func (r *EventRepository) ListActive() ([]*models.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events WHERE is_active = TRUE ORDER BY starts_at ASC NULLS LAST`, eventColumns)

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	return events, rows.Err()
}

func scanEvent(row rowScanner) (*models.Event, error) {
	event := &models.Event{}
	var (
		startsAt sql.NullTime
		capacity sql.NullInt64
	)

	err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.Location,
		&startsAt,
		&event.PricePerEntry,
		&capacity,
		&event.ImageURL,
		&event.Active,
		&event.CreatedAt,
		&event.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan event: %w", err)
	}

	if startsAt.Valid {
		t := startsAt.Time
		event.StartsAt = &t
	}
	if capacity.Valid {
		c := int(capacity.Int64)
		event.Capacity = &c
	}

	return event, nil
}
