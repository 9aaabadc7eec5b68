package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/rack-inventory/internal/domain"
	"github.com/jhoicas/rack-inventory/internal/domain/entity"
	"github.com/jhoicas/rack-inventory/internal/domain/lot"
)

// CreateLotInput ingreso de un lote. Status admite NEW (por defecto) o STORED; STORED exige ubicación.
type CreateLotInput struct {
	MasterProductID int64
	WarehouseID     int64
	Quantity        int64
	Status          entity.LotStatus
	LocationID      *int64
	BlockID         *int64
	ZoneID          *int64
	ReceiptID       *int64
	SupplierID      *int64
	PackageCode     *string
	ImportedAt      *time.Time
}

func validateCreateLot(in *CreateLotInput) error {
	if in.MasterProductID <= 0 || in.WarehouseID <= 0 {
		return domain.ErrInvalidInput
	}
	if in.Quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	if in.Status == "" {
		in.Status = entity.LotStatusNew
	}
	if in.Status != entity.LotStatusNew && in.Status != entity.LotStatusStored {
		return domain.ErrInvalidStatus
	}
	if in.Status == entity.LotStatusStored && in.LocationID == nil {
		return domain.ErrInvalidInput
	}
	return nil
}

// CreateLot registra un lote con código PROD{id}. La huella por unidad y la fecha límite de
// almacenamiento salen del producto maestro; un ingreso STORED reserva capacidad y suma disponible.
func (uc *LotUseCase) CreateLot(ctx context.Context, in CreateLotInput) (*entity.Lot, error) {
	if err := validateCreateLot(&in); err != nil {
		return nil, err
	}
	operationID := uc.newID()
	var created *entity.Lot
	err := uc.txRunner.Run(ctx, func(repos Repos) error {
		master, err := repos.MasterProducts.GetByID(ctx, in.MasterProductID)
		if err != nil {
			return fmt.Errorf("get master product: %w", err)
		}
		if master == nil {
			return domain.ErrMasterProductNotFound
		}
		if in.LocationID != nil {
			loc, err := repos.Locations.GetByID(ctx, *in.LocationID)
			if err != nil {
				return fmt.Errorf("get location: %w", err)
			}
			if loc == nil {
				return domain.ErrLocationNotFound
			}
			if loc.WarehouseID != in.WarehouseID {
				return domain.ErrInvalidInput
			}
		}

		now := uc.now()
		imported := now
		if in.ImportedAt != nil {
			imported = *in.ImportedAt
		}
		storageUntil := imported.AddDate(0, 0, master.StorageDays)
		l := &entity.Lot{
			MasterProductID: master.ID,
			UnitFootprint:   master.UnitFootprint,
			Quantity:        in.Quantity,
			Status:          in.Status,
			WarehouseID:     in.WarehouseID,
			LocationID:      in.LocationID,
			BlockID:         in.BlockID,
			ZoneID:          in.ZoneID,
			ReceiptID:       in.ReceiptID,
			SupplierID:      in.SupplierID,
			PackageCode:     in.PackageCode,
			ImportedAt:      imported,
			StorageUntil:    &storageUntil,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := repos.Lots.Create(ctx, l); err != nil {
			return fmt.Errorf("create lot: %w", err)
		}
		l.Code = lot.IntakeCode(l.ID)
		if err := repos.Lots.Save(ctx, l); err != nil {
			return fmt.Errorf("save lot code: %w", err)
		}
		if err := uc.ledger.settle(ctx, repos, operationID, lotChange{after: l}); err != nil {
			return err
		}
		created = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("operation_id", operationID).
		Int64("lot_id", created.ID).
		Str("code", created.Code).
		Str("status", string(created.Status)).
		Int64("quantity", created.Quantity).
		Msg("lote ingresado")
	return created, nil
}
