package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/rack-inventory/internal/domain/entity"
	"github.com/jhoicas/rack-inventory/internal/domain/repository"
)

var _ repository.LocationRepository = (*LocationRepo)(nil)

const locationColumns = `id, code, shelf_code, position, warehouse_id, category_id,
	total_capacity, used_capacity, status, created_at, updated_at`

// LocationRepo implementación de LocationRepository sobre PostgreSQL (usable con pool o tx).
type LocationRepo struct {
	q Querier
}

// NewLocationRepository construye el adaptador de ubicaciones. Pasar pool o tx (Querier).
func NewLocationRepository(q Querier) *LocationRepo {
	return &LocationRepo{q: q}
}

func scanLocation(row pgx.Row) (*entity.Location, error) {
	var l entity.Location
	err := row.Scan(
		&l.ID, &l.Code, &l.ShelfCode, &l.Position, &l.WarehouseID, &l.CategoryID,
		&l.TotalCapacity, &l.UsedCapacity, &l.Status, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LocationRepo) get(ctx context.Context, op, query string, args ...any) (*entity.Location, error) {
	l, err := scanLocation(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return l, nil
}

// GetByID obtiene una ubicación por ID. Devuelve nil, nil si no existe.
func (r *LocationRepo) GetByID(ctx context.Context, id int64) (*entity.Location, error) {
	return r.get(ctx, "get location", `SELECT `+locationColumns+` FROM locations WHERE id = $1`, id)
}

// GetForUpdate obtiene la ubicación y bloquea la fila (SELECT FOR UPDATE).
func (r *LocationRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Location, error) {
	return r.get(ctx, "get location for update", `SELECT `+locationColumns+` FROM locations WHERE id = $1 FOR UPDATE`, id)
}

// UpdateUsage escribe la capacidad usada y el estado derivado.
func (r *LocationRepo) UpdateUsage(ctx context.Context, id int64, used int64, status string) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE locations SET used_capacity = $2, status = $3, updated_at = now() WHERE id = $1`,
		id, used, status,
	)
	if err != nil {
		return mapWriteError("update location usage", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("update location usage %d: no existe", id)
	}
	return nil
}

// FindRecommended devuelve la primera ubicación habilitada (menor id) con espacio para la huella.
// Un CategoryID nil solo coincide con ubicaciones sin categoría.
func (r *LocationRepo) FindRecommended(ctx context.Context, f repository.RecommendFilter) (*entity.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations
		WHERE warehouse_id = $1
		  AND category_id IS NOT DISTINCT FROM $2
		  AND status = $3
		  AND total_capacity - used_capacity >= $4
		  AND ($5::bigint IS NULL OR id <> $5)
		ORDER BY id
		LIMIT 1`
	return r.get(ctx, "find recommended location", query,
		f.WarehouseID, f.CategoryID, entity.LocationStatusEnable, f.RequiredFootprint, f.ExcludeLocationID,
	)
}

// ListByWarehouse lista ubicaciones de una bodega ordenadas por código con paginación.
func (r *LocationRepo) ListByWarehouse(ctx context.Context, warehouseID int64, limit, offset int) ([]*entity.Location, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+locationColumns+` FROM locations WHERE warehouse_id = $1 ORDER BY code LIMIT $2 OFFSET $3`,
		warehouseID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()
	list := []*entity.Location{}
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

// Create inserta la ubicación y completa ID, CreatedAt y UpdatedAt.
func (r *LocationRepo) Create(ctx context.Context, l *entity.Location) error {
	query := `
		INSERT INTO locations (code, shelf_code, position, warehouse_id, category_id,
			total_capacity, used_capacity, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		l.Code, l.ShelfCode, l.Position, l.WarehouseID, l.CategoryID,
		l.TotalCapacity, l.UsedCapacity, l.Status,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return mapWriteError("insert location", err)
	}
	return nil
}

// MaxPositionByShelf devuelve la mayor posición ocupada en la estantería (0 si está vacía).
func (r *LocationRepo) MaxPositionByShelf(ctx context.Context, shelfCode string) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COALESCE(MAX(position), 0) FROM locations WHERE shelf_code = $1`, shelfCode).Scan(&n); err != nil {
		return 0, fmt.Errorf("max position by shelf: %w", err)
	}
	return n, nil
}

// LockShelf serializa la numeración de racks de una estantería hasta el fin de la tx.
func (r *LocationRepo) LockShelf(ctx context.Context, shelfCode string) error {
	if _, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext('shelf:' || $1))`, shelfCode); err != nil {
		return fmt.Errorf("lock shelf: %w", err)
	}
	return nil
}

// CountActiveLots cuenta lotes no deshabilitados que referencian la ubicación.
func (r *LocationRepo) CountActiveLots(ctx context.Context, id int64) (int64, error) {
	var n int64
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM lots
		 WHERE (location_id = $1 OR reallocation_source_id = $1) AND status <> $2`,
		id, string(entity.LotStatusDisable),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count active lots: %w", err)
	}
	return n, nil
}

// Disable marca la ubicación como retirada.
func (r *LocationRepo) Disable(ctx context.Context, id int64) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE locations SET status = $2, updated_at = now() WHERE id = $1`,
		id, entity.LocationStatusDisable,
	)
	if err != nil {
		return fmt.Errorf("disable location: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("disable location %d: no existe", id)
	}
	return nil
}
