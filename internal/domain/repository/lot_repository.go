package repository

import (
	"context"

	"github.com/jhoicas/rack-inventory/internal/domain/entity"
)

// LotFilter filtros para búsqueda de lotes en flujos de escaneo.
type LotFilter struct {
	WarehouseID  int64
	Codes        []string
	PackageCodes []string
	Statuses     []entity.LotStatus
}

// LotRepository define el puerto de persistencia para lotes de inventario.
// Dentro de una transacción, GetForUpdate bloquea la fila y LockCodePrefix serializa la derivación de códigos.
type LotRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Lot, error)
	GetForUpdate(ctx context.Context, id int64) (*entity.Lot, error)
	// FindByCodePrefix devuelve lotes cuyo código empieza por prefix y cuyo estado no está en excluded.
	FindByCodePrefix(ctx context.Context, prefix string, excluded []entity.LotStatus) ([]*entity.Lot, error)
	CountByCodePrefix(ctx context.Context, prefix string, excluded []entity.LotStatus) (int64, error)
	LockCodePrefix(ctx context.Context, prefix string) error
	FindForScan(ctx context.Context, filter LotFilter) ([]*entity.Lot, error)
	FindStored(ctx context.Context, masterProductID, warehouseID int64) ([]*entity.Lot, error)
	// Create inserta el lote y completa ID, CreatedAt y UpdatedAt.
	Create(ctx context.Context, lot *entity.Lot) error
	Save(ctx context.Context, lot *entity.Lot) error
}
