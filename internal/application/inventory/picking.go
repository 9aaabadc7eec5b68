package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/rack-inventory/internal/domain"
	"github.com/jhoicas/rack-inventory/internal/domain/entity"
)

// PickLine lote sugerido y cantidad a tomar de él.
type PickLine struct {
	Lot  *entity.Lot
	Take int64
}

// PickingSuggestion lotes a recoger para cubrir la cantidad pedida y faltante si no alcanza.
type PickingSuggestion struct {
	Lines     []PickLine
	Covered   int64
	Shortfall int64
}

// SuggestPicking recorre los lotes STORED del producto maestro en la bodega, ordenados por ubicación,
// hasta cubrir quantity.
func (uc *LotUseCase) SuggestPicking(ctx context.Context, masterProductID, warehouseID, quantity int64) (*PickingSuggestion, error) {
	if masterProductID <= 0 || warehouseID <= 0 {
		return nil, domain.ErrInvalidInput
	}
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	lots, err := uc.lots.FindStored(ctx, masterProductID, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("find stored lots: %w", err)
	}
	out := &PickingSuggestion{Lines: []PickLine{}}
	for _, l := range lots {
		if out.Covered >= quantity {
			break
		}
		take := min(l.Quantity, quantity-out.Covered)
		if take <= 0 {
			continue
		}
		out.Lines = append(out.Lines, PickLine{Lot: l, Take: take})
		out.Covered += take
	}
	out.Shortfall = quantity - out.Covered
	return out, nil
}
