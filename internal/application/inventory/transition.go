package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/rack-inventory/internal/domain"
	"github.com/jhoicas/rack-inventory/internal/domain/entity"
)

// TransitionInput estado deseado de un lote. Los punteros nil conservan el valor actual;
// DetachLocation quita la ubicación. LostQuantity solo aplica al entrar en ERROR.
type TransitionInput struct {
	LotID             int64
	DesiredStatus     entity.LotStatus
	DesiredQuantity   *int64
	DesiredLocationID *int64
	DetachLocation    bool
	LostQuantity      *int64
}

// TransitionResult lote actualizado y, si hubo split (error o recuperación parcial), el lote creado.
type TransitionResult struct {
	Lot     *entity.Lot
	Created *entity.Lot
}

func validateTransition(in TransitionInput) error {
	if in.LotID <= 0 {
		return domain.ErrInvalidInput
	}
	if _, ok := entity.ParseLotStatus(string(in.DesiredStatus)); !ok {
		return domain.ErrInvalidStatus
	}
	if in.DesiredQuantity != nil && *in.DesiredQuantity < 0 {
		return domain.ErrInvalidQuantity
	}
	if in.LostQuantity != nil && *in.LostQuantity < 0 {
		return domain.ErrInvalidQuantity
	}
	if in.DetachLocation && in.DesiredLocationID != nil {
		return domain.ErrInvalidInput
	}
	// El error parcial solo separa lo perdido; no admite otros cambios en el mismo request.
	if isPartialError(in) && (in.DesiredQuantity != nil || in.DesiredLocationID != nil || in.DetachLocation) {
		return domain.ErrInvalidInput
	}
	return nil
}

func isPartialError(in TransitionInput) bool {
	return in.DesiredStatus == entity.LotStatusError && in.LostQuantity != nil && *in.LostQuantity > 0
}

// Transition lleva un lote al estado deseado aplicando, en la misma transacción, los deltas de
// capacidad y el ajuste de cantidad disponible del producto maestro.
func (uc *LotUseCase) Transition(ctx context.Context, in TransitionInput) (*TransitionResult, error) {
	if err := validateTransition(in); err != nil {
		return nil, err
	}
	operationID := uc.newID()
	var (
		res  *TransitionResult
		from entity.LotStatus
	)
	err := uc.txRunner.Run(ctx, func(repos Repos) error {
		cur, err := lockLot(ctx, repos, in.LotID)
		if err != nil {
			return err
		}
		from = cur.Status
		res, err = uc.transitionLocked(ctx, repos, operationID, cur, in)
		return err
	})
	if err != nil {
		uc.log.Debug().Int64("lot_id", in.LotID).Str("to", string(in.DesiredStatus)).Err(err).Msg("transición rechazada")
		return nil, err
	}
	uc.metrics.IncTransition(string(from), string(in.DesiredStatus))
	ev := uc.log.Info().
		Str("operation_id", operationID).
		Int64("lot_id", res.Lot.ID).
		Str("from", string(from)).
		Str("to", string(res.Lot.Status)).
		Int64("quantity", res.Lot.Quantity)
	if res.Created != nil {
		ev = ev.Int64("created_id", res.Created.ID).Str("created_code", res.Created.Code)
	}
	ev.Msg("transición de lote")
	return res, nil
}

// TransitionBatch aplica cada transición en su propia transacción; un fallo no afecta a los demás.
func (uc *LotUseCase) TransitionBatch(ctx context.Context, inputs []TransitionInput) []BatchItemResult {
	out := make([]BatchItemResult, 0, len(inputs))
	for _, in := range inputs {
		res, err := uc.Transition(ctx, in)
		item := BatchItemResult{LotID: in.LotID, Err: err}
		if res != nil {
			item.Lot = res.Lot
		}
		out = append(out, item)
	}
	return out
}

// transitionLocked aplica las reglas de transición sobre un lote ya bloqueado.
func (uc *LotUseCase) transitionLocked(ctx context.Context, repos Repos, operationID string, cur *entity.Lot, in TransitionInput) (*TransitionResult, error) {
	next := cur.Clone()
	switch {
	case in.DetachLocation:
		next.LocationID = nil
	case in.DesiredLocationID != nil:
		loc, err := repos.Locations.GetByID(ctx, *in.DesiredLocationID)
		if err != nil {
			return nil, fmt.Errorf("get location: %w", err)
		}
		if loc == nil {
			return nil, domain.ErrLocationNotFound
		}
		id := loc.ID
		next.LocationID = &id
	}
	if in.DesiredQuantity != nil {
		next.Quantity = *in.DesiredQuantity
	}
	desired := in.DesiredStatus
	now := uc.now()
	next.UpdatedAt = now

	switch {
	// ERROR/LOST -> ERROR/LOST: sin trabajo de capacidad ni split.
	case cur.Status.IsFault() && desired.IsFault():
		next.Status = desired
		if desired == entity.LotStatusLost && cur.Status != entity.LotStatusLost {
			next.LostAt = &now
		}
		return uc.commitSingle(ctx, repos, operationID, cur, next)

	// Error parcial: se separa lo perdido como lote ERROR; el original conserva su estado.
	case isPartialError(in):
		lost := *in.LostQuantity
		if lost >= cur.Quantity {
			return nil, domain.ErrInvalidQuantity
		}
		created, err := uc.carve(ctx, repos, cur, lost, func(l *entity.Lot) {
			l.Status = entity.LotStatusError
			l.ReallocationSourceID = nil
			l.ReportedAt = &now
			l.LostQuantity = &lost
		})
		if err != nil {
			return nil, err
		}
		remainder := cur.Clone()
		remainder.Quantity = cur.Quantity - lost
		remainder.UpdatedAt = now
		if err := repos.Lots.Save(ctx, remainder); err != nil {
			return nil, fmt.Errorf("save lot: %w", err)
		}
		if err := uc.ledger.settle(ctx, repos, operationID,
			lotChange{before: cur, after: remainder},
			lotChange{after: created},
		); err != nil {
			return nil, err
		}
		return &TransitionResult{Lot: remainder, Created: created}, nil

	// Recuperación desde ERROR/LOST hacia un estado no terminal.
	case cur.Status.IsFault() && !desired.IsTerminal():
		return uc.recoverFault(ctx, repos, operationID, cur, next, now)
	}

	if desired == entity.LotStatusReallocate && cur.Status != entity.LotStatusReallocate {
		// La huella queda retenida en la ubicación previa hasta salir de REALLOCATE.
		next.ReallocationSourceID = nil
		if cur.Status.AffectsCapacity() && cur.LocationID != nil {
			src := *cur.LocationID
			next.ReallocationSourceID = &src
		}
	}
	if cur.Status == entity.LotStatusReallocate && desired != entity.LotStatusReallocate {
		next.ReallocationSourceID = nil
	}
	switch {
	case desired == entity.LotStatusLost && cur.Status != entity.LotStatusLost:
		next.LostAt = &now
	case desired == entity.LotStatusError && cur.Status != entity.LotStatusError:
		next.ReportedAt = &now
		q := next.Quantity
		next.LostQuantity = &q
	}
	next.Status = desired
	if next.Status.AffectsCapacity() && next.LocationID == nil {
		return nil, fmt.Errorf("estado %s requiere ubicación: %w", desired, domain.ErrInvalidInput)
	}
	if next.Status.AffectsCapacity() && next.Quantity == 0 {
		return nil, domain.ErrInvalidQuantity
	}
	return uc.commitSingle(ctx, repos, operationID, cur, next)
}

// recoverFault reactiva un lote en ERROR/LOST como TEMPORARY con código derivado. Si la cantidad
// recuperada es parcial se separa en un lote nuevo y el resto queda en su estado terminal.
func (uc *LotUseCase) recoverFault(ctx context.Context, repos Repos, operationID string, cur, next *entity.Lot, now time.Time) (*TransitionResult, error) {
	recovered := next.Quantity
	if recovered <= 0 || recovered > cur.Quantity {
		return nil, domain.ErrInvalidQuantity
	}
	if next.LocationID == nil {
		return nil, fmt.Errorf("recuperación a %s requiere ubicación: %w", entity.LotStatusTemporary, domain.ErrInvalidInput)
	}
	if recovered == cur.Quantity {
		code, err := uc.deriveCode(ctx, repos, cur.Code)
		if err != nil {
			return nil, err
		}
		next.Code = code
		next.Status = entity.LotStatusTemporary
		next.LostQuantity = nil
		next.ReallocationSourceID = nil
		return uc.commitSingle(ctx, repos, operationID, cur, next)
	}

	created, err := uc.carve(ctx, repos, cur, recovered, func(l *entity.Lot) {
		l.Status = entity.LotStatusTemporary
		l.LocationID = next.LocationID
		l.ReallocationSourceID = nil
		l.LostQuantity = nil
		l.LostAt = nil
		l.ReportedAt = nil
	})
	if err != nil {
		return nil, err
	}
	remainder := cur.Clone()
	remainder.Quantity = cur.Quantity - recovered
	remainder.UpdatedAt = now
	if err := repos.Lots.Save(ctx, remainder); err != nil {
		return nil, fmt.Errorf("save lot: %w", err)
	}
	if err := uc.ledger.settle(ctx, repos, operationID,
		lotChange{before: cur, after: remainder},
		lotChange{after: created},
	); err != nil {
		return nil, err
	}
	return &TransitionResult{Lot: remainder, Created: created}, nil
}

func (uc *LotUseCase) commitSingle(ctx context.Context, repos Repos, operationID string, cur, next *entity.Lot) (*TransitionResult, error) {
	if err := repos.Lots.Save(ctx, next); err != nil {
		return nil, fmt.Errorf("save lot: %w", err)
	}
	if err := uc.ledger.settle(ctx, repos, operationID, lotChange{before: cur, after: next}); err != nil {
		return nil, err
	}
	return &TransitionResult{Lot: next}, nil
}
