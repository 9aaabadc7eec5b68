package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/rack-inventory/internal/domain"
	"github.com/jhoicas/rack-inventory/internal/domain/entity"
	"github.com/jhoicas/rack-inventory/internal/domain/lot"
)

// SplitResult lote remanente (id y código originales) y lote creado.
type SplitResult struct {
	Remainder *entity.Lot
	Created   *entity.Lot
}

// Split separa quantity unidades del lote en un lote nuevo con código derivado.
// No toca la capacidad: ambos lotes quedan en la misma ubicación y estado.
func (uc *LotUseCase) Split(ctx context.Context, lotID int64, quantity int64) (*SplitResult, error) {
	if lotID <= 0 {
		return nil, domain.ErrInvalidInput
	}
	var res SplitResult
	err := uc.txRunner.Run(ctx, func(repos Repos) error {
		src, err := lockLot(ctx, repos, lotID)
		if err != nil {
			return err
		}
		created, err := uc.carve(ctx, repos, src, quantity, nil)
		if err != nil {
			return err
		}
		src.Quantity -= quantity
		src.UpdatedAt = uc.now()
		if err := repos.Lots.Save(ctx, src); err != nil {
			return fmt.Errorf("save remainder: %w", err)
		}
		res = SplitResult{Remainder: src, Created: created}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.metrics.IncSplit()
	uc.log.Info().
		Int64("lot_id", res.Remainder.ID).
		Int64("created_id", res.Created.ID).
		Str("created_code", res.Created.Code).
		Int64("quantity", quantity).
		Msg("lote separado")
	return &res, nil
}

// carve crea el lote separado (copia de src con cantidad quantity y código derivado) sin modificar src.
// mutate ajusta el lote creado antes de insertarlo (estado, ubicación). Exige 0 < quantity < src.Quantity.
func (uc *LotUseCase) carve(ctx context.Context, repos Repos, src *entity.Lot, quantity int64, mutate func(*entity.Lot)) (*entity.Lot, error) {
	if quantity <= 0 || quantity >= src.Quantity {
		return nil, domain.ErrInvalidQuantity
	}
	code, err := uc.deriveCode(ctx, repos, src.Code)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	created := src.Clone()
	created.ID = 0
	created.Quantity = quantity
	created.Code = code
	created.CreatedAt = now
	created.UpdatedAt = now
	if mutate != nil {
		mutate(created)
	}
	if err := repos.Lots.Create(ctx, created); err != nil {
		return nil, fmt.Errorf("create split lot: %w", err)
	}
	return created, nil
}

// deriveCode reserva el siguiente sufijo temporal para el prefijo base del código. El conteo se
// serializa por prefijo con un bloqueo de la transacción.
func (uc *LotUseCase) deriveCode(ctx context.Context, repos Repos, code string) (string, error) {
	base := lot.BasePrefix(code)
	if err := repos.Lots.LockCodePrefix(ctx, base); err != nil {
		return "", fmt.Errorf("lock code prefix: %w", err)
	}
	n, err := repos.Lots.CountByCodePrefix(ctx, base, entity.TerminalLotStatuses)
	if err != nil {
		return "", fmt.Errorf("count code prefix: %w", err)
	}
	return lot.DeriveTemporaryCode(code, n), nil
}
