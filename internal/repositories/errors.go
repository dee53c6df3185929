package repositories

import (
	"errors"
	"fmt"

	"github.com/lib/pq"

	"cookie-corner/internal/models"
)

// Postgres error codes for schema objects the migration may not have
// created yet.
const (
	pgUndefinedColumn = "42703"
	pgUndefinedTable  = "42P01"
)

// isMissingColumn reports whether err is an undefined-column or
// undefined-table failure from Postgres.
func isMissingColumn(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pgUndefinedColumn || pqErr.Code == pgUndefinedTable
	}
	return false
}

// schemaEvolutionError translates undefined-column/undefined-table failures
// into models.ErrMissingColumn so callers can tolerate them for optional
// reconciliation fields. Any other error is returned wrapped as-is.
func schemaEvolutionError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == pgUndefinedColumn || pqErr.Code == pgUndefinedTable {
			return fmt.Errorf("%s: %w", op, models.ErrMissingColumn)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
