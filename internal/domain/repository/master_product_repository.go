package repository

import (
	"context"

	"github.com/jhoicas/rack-inventory/internal/domain/entity"
)

// MasterProductRepository puerto del agregado externo de producto maestro.
type MasterProductRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.MasterProduct, error)
	// AdjustAvailableQuantity suma delta a la cantidad disponible sin bajar de cero.
	AdjustAvailableQuantity(ctx context.Context, id int64, delta int64) error
}
