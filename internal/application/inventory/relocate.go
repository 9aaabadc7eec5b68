package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/rack-inventory/internal/domain"
	"github.com/jhoicas/rack-inventory/internal/domain/entity"
	"github.com/jhoicas/rack-inventory/internal/domain/repository"
)

// Disable deshabilita un lote y libera su huella.
func (uc *LotUseCase) Disable(ctx context.Context, lotID int64) (*entity.Lot, error) {
	res, err := uc.Transition(ctx, TransitionInput{LotID: lotID, DesiredStatus: entity.LotStatusDisable})
	if err != nil {
		return nil, err
	}
	return res.Lot, nil
}

// DisableBatch deshabilita varios lotes; cada uno en su propia transacción.
func (uc *LotUseCase) DisableBatch(ctx context.Context, lotIDs []int64) []BatchItemResult {
	inputs := make([]TransitionInput, 0, len(lotIDs))
	for _, id := range lotIDs {
		inputs = append(inputs, TransitionInput{LotID: id, DesiredStatus: entity.LotStatusDisable})
	}
	return uc.TransitionBatch(ctx, inputs)
}

// AssignLocation almacena los lotes en la ubicación indicada (estado STORED).
func (uc *LotUseCase) AssignLocation(ctx context.Context, locationID int64, lotIDs []int64) []BatchItemResult {
	inputs := make([]TransitionInput, 0, len(lotIDs))
	for _, id := range lotIDs {
		loc := locationID
		inputs = append(inputs, TransitionInput{LotID: id, DesiredStatus: entity.LotStatusStored, DesiredLocationID: &loc})
	}
	return uc.TransitionBatch(ctx, inputs)
}

// CancelReallocation devuelve lotes en REALLOCATE a STORED en su ubicación de origen.
func (uc *LotUseCase) CancelReallocation(ctx context.Context, lotIDs []int64) []BatchItemResult {
	out := make([]BatchItemResult, 0, len(lotIDs))
	for _, id := range lotIDs {
		l, err := uc.cancelReallocation(ctx, id)
		out = append(out, BatchItemResult{LotID: id, Lot: l, Err: err})
	}
	return out
}

func (uc *LotUseCase) cancelReallocation(ctx context.Context, lotID int64) (*entity.Lot, error) {
	operationID := uc.newID()
	var out *entity.Lot
	err := uc.txRunner.Run(ctx, func(repos Repos) error {
		cur, err := lockLot(ctx, repos, lotID)
		if err != nil {
			return err
		}
		if cur.Status != entity.LotStatusReallocate {
			return fmt.Errorf("lote %d en %s: %w", cur.ID, cur.Status, domain.ErrInvalidStatus)
		}
		in := TransitionInput{LotID: cur.ID, DesiredStatus: entity.LotStatusStored}
		if cur.ReallocationSourceID != nil {
			src := *cur.ReallocationSourceID
			in.DesiredLocationID = &src
		}
		res, err := uc.transitionLocked(ctx, repos, operationID, cur, in)
		if err != nil {
			return err
		}
		out = res.Lot
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.metrics.IncTransition(string(entity.LotStatusReallocate), string(entity.LotStatusStored))
	return out, nil
}

// Relocate recomienda para cada lote una ubicación de su bodega y categoría con espacio para toda su
// huella y lo pasa a MOVING hacia ella (reserva el destino y libera el origen en la misma transacción).
func (uc *LotUseCase) Relocate(ctx context.Context, lotIDs []int64) []BatchItemResult {
	out := make([]BatchItemResult, 0, len(lotIDs))
	for _, id := range lotIDs {
		l, err := uc.relocate(ctx, id)
		out = append(out, BatchItemResult{LotID: id, Lot: l, Err: err})
	}
	return out
}

func (uc *LotUseCase) relocate(ctx context.Context, lotID int64) (*entity.Lot, error) {
	operationID := uc.newID()
	var (
		out  *entity.Lot
		from entity.LotStatus
	)
	err := uc.txRunner.Run(ctx, func(repos Repos) error {
		cur, err := lockLot(ctx, repos, lotID)
		if err != nil {
			return err
		}
		if cur.Status.IsTerminal() || cur.Quantity == 0 {
			return fmt.Errorf("lote %d en %s: %w", cur.ID, cur.Status, domain.ErrInvalidStatus)
		}
		master, err := repos.MasterProducts.GetByID(ctx, cur.MasterProductID)
		if err != nil {
			return fmt.Errorf("get master product: %w", err)
		}
		if master == nil {
			return domain.ErrMasterProductNotFound
		}
		target, err := recommendFrom(ctx, repos.Locations, repository.RecommendFilter{
			CategoryID:        master.CategoryID,
			WarehouseID:       cur.WarehouseID,
			RequiredFootprint: cur.Footprint(),
			ExcludeLocationID: cur.LocationID,
		})
		if err != nil {
			return err
		}
		from = cur.Status
		id := target.ID
		res, err := uc.transitionLocked(ctx, repos, operationID, cur, TransitionInput{
			LotID:             cur.ID,
			DesiredStatus:     entity.LotStatusMoving,
			DesiredLocationID: &id,
		})
		if err != nil {
			return err
		}
		out = res.Lot
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.metrics.IncTransition(string(from), string(entity.LotStatusMoving))
	uc.log.Info().
		Str("operation_id", operationID).
		Int64("lot_id", out.ID).
		Int64("location_id", *out.LocationID).
		Msg("lote reubicado")
	return out, nil
}
