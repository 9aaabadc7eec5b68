package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/rack-inventory/internal/domain/entity"
	"github.com/jhoicas/rack-inventory/internal/domain/repository"
)

var _ repository.MasterProductRepository = (*MasterProductRepo)(nil)

// MasterProductRepo adaptador del producto maestro sobre PostgreSQL.
type MasterProductRepo struct {
	q Querier
}

// NewMasterProductRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMasterProductRepository(q Querier) *MasterProductRepo {
	return &MasterProductRepo{q: q}
}

// GetByID obtiene un producto maestro por ID. Devuelve nil, nil si no existe.
func (r *MasterProductRepo) GetByID(ctx context.Context, id int64) (*entity.MasterProduct, error) {
	query := `
		SELECT id, name, unit_footprint, category_id, storage_days, available_quantity, created_at, updated_at
		FROM master_products WHERE id = $1`
	var m entity.MasterProduct
	err := r.q.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.Name, &m.UnitFootprint, &m.CategoryID, &m.StorageDays, &m.AvailableQuantity,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get master product: %w", err)
	}
	return &m, nil
}

// AdjustAvailableQuantity suma delta a la cantidad disponible sin bajar de cero.
func (r *MasterProductRepo) AdjustAvailableQuantity(ctx context.Context, id int64, delta int64) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE master_products
		 SET available_quantity = GREATEST(available_quantity + $2, 0), updated_at = now()
		 WHERE id = $1`,
		id, delta,
	)
	if err != nil {
		return fmt.Errorf("adjust available quantity: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("adjust available quantity %d: no existe", id)
	}
	return nil
}
