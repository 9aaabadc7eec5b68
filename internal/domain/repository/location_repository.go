package repository

import (
	"context"

	"github.com/jhoicas/rack-inventory/internal/domain/entity"
)

// RecommendFilter criterio de búsqueda de ubicaciones candidatas.
type RecommendFilter struct {
	CategoryID        *int64
	WarehouseID       int64
	RequiredFootprint int64
	ExcludeLocationID *int64
}

// LocationRepository define el puerto de persistencia para ubicaciones (racks).
// UpdateUsage solo lo invoca el ledger de capacidad.
type LocationRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Location, error)
	GetForUpdate(ctx context.Context, id int64) (*entity.Location, error)
	UpdateUsage(ctx context.Context, id int64, used int64, status string) error
	FindRecommended(ctx context.Context, filter RecommendFilter) (*entity.Location, error)
	ListByWarehouse(ctx context.Context, warehouseID int64, limit, offset int) ([]*entity.Location, error)
	Create(ctx context.Context, loc *entity.Location) error
	// MaxPositionByShelf mayor posición ocupada en la estantería; 0 si no tiene racks.
	MaxPositionByShelf(ctx context.Context, shelfCode string) (int, error)
	LockShelf(ctx context.Context, shelfCode string) error
	// CountActiveLots cuenta lotes no deshabilitados que referencian la ubicación.
	CountActiveLots(ctx context.Context, id int64) (int64, error)
	Disable(ctx context.Context, id int64) error
}
