package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/rack-inventory/internal/domain/entity"
	"github.com/jhoicas/rack-inventory/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo registro append-only de deltas de capacidad (tabla capacity_ledger).
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

// Append inserta una entrada; nunca se actualizan ni borran.
func (r *LedgerRepo) Append(ctx context.Context, e *entity.LedgerEntry) error {
	query := `
		INSERT INTO capacity_ledger (id, operation_id, location_id, lot_id, direction, footprint, used_after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.OperationID, e.LocationID, e.LotID, e.Direction, e.Footprint, e.UsedAfter, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

// ListByLocation devuelve las últimas entradas de una ubicación, más recientes primero.
func (r *LedgerRepo) ListByLocation(ctx context.Context, locationID int64, limit int) ([]*entity.LedgerEntry, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, operation_id, location_id, lot_id, direction, footprint, used_after, created_at
		FROM capacity_ledger WHERE location_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2`, locationID, limit)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()
	list := []*entity.LedgerEntry{}
	for rows.Next() {
		var e entity.LedgerEntry
		if err := rows.Scan(&e.ID, &e.OperationID, &e.LocationID, &e.LotID, &e.Direction,
			&e.Footprint, &e.UsedAfter, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
