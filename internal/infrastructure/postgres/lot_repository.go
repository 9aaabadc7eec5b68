package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/rack-inventory/internal/domain/entity"
	"github.com/jhoicas/rack-inventory/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

const lotColumns = `id, code, master_product_id, unit_footprint, quantity, status, warehouse_id,
	location_id, reallocation_source_id, block_id, zone_id, receipt_id, supplier_id, package_code,
	imported_at, storage_until, lost_at, reported_at, lost_quantity, created_at, updated_at`

// LotRepo implementación de LotRepository sobre PostgreSQL (usable con pool o tx).
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

func scanLot(row pgx.Row) (*entity.Lot, error) {
	var l entity.Lot
	var status string
	err := row.Scan(
		&l.ID, &l.Code, &l.MasterProductID, &l.UnitFootprint, &l.Quantity, &status, &l.WarehouseID,
		&l.LocationID, &l.ReallocationSourceID, &l.BlockID, &l.ZoneID, &l.ReceiptID, &l.SupplierID, &l.PackageCode,
		&l.ImportedAt, &l.StorageUntil, &l.LostAt, &l.ReportedAt, &l.LostQuantity, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	l.Status = entity.LotStatus(status)
	return &l, nil
}

func (r *LotRepo) queryLots(ctx context.Context, op, query string, args ...any) ([]*entity.Lot, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	list := []*entity.Lot{}
	for rows.Next() {
		l, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

func (r *LotRepo) get(ctx context.Context, query string, id int64) (*entity.Lot, error) {
	l, err := scanLot(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lot: %w", err)
	}
	return l, nil
}

// GetByID obtiene un lote por ID. Devuelve nil, nil si no existe.
func (r *LotRepo) GetByID(ctx context.Context, id int64) (*entity.Lot, error) {
	return r.get(ctx, `SELECT `+lotColumns+` FROM lots WHERE id = $1`, id)
}

// GetForUpdate obtiene el lote y bloquea la fila (SELECT FOR UPDATE).
func (r *LotRepo) GetForUpdate(ctx context.Context, id int64) (*entity.Lot, error) {
	return r.get(ctx, `SELECT `+lotColumns+` FROM lots WHERE id = $1 FOR UPDATE`, id)
}

// FindByCodePrefix compara el prefijo de forma literal (starts_with, sin comodines de LIKE).
func (r *LotRepo) FindByCodePrefix(ctx context.Context, prefix string, excluded []entity.LotStatus) ([]*entity.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots
		WHERE starts_with(code, $1) AND NOT (status = ANY($2))
		ORDER BY id`
	return r.queryLots(ctx, "find lots by prefix", query, prefix, statusStrings(excluded))
}

// CountByCodePrefix cuenta lotes con el prefijo cuyo estado no está en excluded.
func (r *LotRepo) CountByCodePrefix(ctx context.Context, prefix string, excluded []entity.LotStatus) (int64, error) {
	var n int64
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM lots WHERE starts_with(code, $1) AND NOT (status = ANY($2))`,
		prefix, statusStrings(excluded),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count lots by prefix: %w", err)
	}
	return n, nil
}

// LockCodePrefix toma un advisory lock de transacción por prefijo base; se libera en commit/rollback.
func (r *LotRepo) LockCodePrefix(ctx context.Context, prefix string) error {
	if _, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext('lot-code:' || $1))`, prefix); err != nil {
		return fmt.Errorf("lock code prefix: %w", err)
	}
	return nil
}

// FindForScan busca lotes de la bodega en los estados dados cuyo código o código de paquete coincide.
func (r *LotRepo) FindForScan(ctx context.Context, f repository.LotFilter) ([]*entity.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots
		WHERE warehouse_id = $1 AND status = ANY($2)
		  AND (code = ANY($3) OR package_code = ANY($4))
		ORDER BY id`
	codes := f.Codes
	if codes == nil {
		codes = []string{}
	}
	packages := f.PackageCodes
	if packages == nil {
		packages = []string{}
	}
	return r.queryLots(ctx, "find lots for scan", query, f.WarehouseID, statusStrings(f.Statuses), codes, packages)
}

// FindStored lista lotes STORED de un producto en una bodega, ordenados por ubicación e id.
func (r *LotRepo) FindStored(ctx context.Context, masterProductID, warehouseID int64) ([]*entity.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots
		WHERE master_product_id = $1 AND warehouse_id = $2 AND status = $3
		ORDER BY location_id, id`
	return r.queryLots(ctx, "find stored lots", query, masterProductID, warehouseID, string(entity.LotStatusStored))
}

// Create inserta el lote y completa ID, CreatedAt y UpdatedAt.
func (r *LotRepo) Create(ctx context.Context, l *entity.Lot) error {
	query := `
		INSERT INTO lots (code, master_product_id, unit_footprint, quantity, status, warehouse_id,
			location_id, reallocation_source_id, block_id, zone_id, receipt_id, supplier_id, package_code,
			imported_at, storage_until, lost_at, reported_at, lost_quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, now(), now())
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, query,
		l.Code, l.MasterProductID, l.UnitFootprint, l.Quantity, string(l.Status), l.WarehouseID,
		l.LocationID, l.ReallocationSourceID, l.BlockID, l.ZoneID, l.ReceiptID, l.SupplierID, l.PackageCode,
		l.ImportedAt, l.StorageUntil, l.LostAt, l.ReportedAt, l.LostQuantity,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return mapWriteError("insert lot", err)
	}
	return nil
}

// Save persiste todos los campos mutables del lote.
func (r *LotRepo) Save(ctx context.Context, l *entity.Lot) error {
	query := `
		UPDATE lots SET code = $2, quantity = $3, status = $4, location_id = $5, reallocation_source_id = $6,
			storage_until = $7, lost_at = $8, reported_at = $9, lost_quantity = $10, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	err := r.q.QueryRow(ctx, query,
		l.ID, l.Code, l.Quantity, string(l.Status), l.LocationID, l.ReallocationSourceID,
		l.StorageUntil, l.LostAt, l.ReportedAt, l.LostQuantity,
	).Scan(&l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("update lot %d: no existe", l.ID)
		}
		return mapWriteError("update lot", err)
	}
	return nil
}
