package repository

import (
	"context"

	"github.com/jhoicas/rack-inventory/internal/domain/entity"
)

// LedgerRepository registro append-only de deltas de capacidad.
type LedgerRepository interface {
	Append(ctx context.Context, entry *entity.LedgerEntry) error
	ListByLocation(ctx context.Context, locationID int64, limit int) ([]*entity.LedgerEntry, error)
}
