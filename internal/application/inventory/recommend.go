package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/rack-inventory/internal/domain"
	"github.com/jhoicas/rack-inventory/internal/domain/entity"
	"github.com/jhoicas/rack-inventory/internal/domain/repository"
)

// RecommendInput categoría (nil = ubicaciones sin categoría), bodega y huella requerida.
type RecommendInput struct {
	CategoryID        *int64
	WarehouseID       int64
	RequiredFootprint int64
}

// Recommend selecciona la primera ubicación habilitada (id ascendente) de la bodega y categoría con
// capacidad libre suficiente. No reserva espacio: el llamador debe pasar por el ledger.
func (uc *LotUseCase) Recommend(ctx context.Context, in RecommendInput) (*entity.Location, error) {
	return recommendFrom(ctx, uc.locations, repository.RecommendFilter{
		CategoryID:        in.CategoryID,
		WarehouseID:       in.WarehouseID,
		RequiredFootprint: in.RequiredFootprint,
	})
}

func recommendFrom(ctx context.Context, locations repository.LocationRepository, filter repository.RecommendFilter) (*entity.Location, error) {
	if filter.WarehouseID <= 0 || filter.RequiredFootprint < 0 {
		return nil, domain.ErrInvalidInput
	}
	loc, err := locations.FindRecommended(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find recommended location: %w", err)
	}
	if loc == nil {
		return nil, domain.ErrNoSuitableLocation
	}
	return loc, nil
}
