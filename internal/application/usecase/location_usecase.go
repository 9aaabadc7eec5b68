package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/rack-inventory/internal/application/dto"
	"github.com/jhoicas/rack-inventory/internal/application/inventory"
	"github.com/jhoicas/rack-inventory/internal/domain"
	"github.com/jhoicas/rack-inventory/internal/domain/entity"
	"github.com/jhoicas/rack-inventory/internal/domain/repository"
	"github.com/jhoicas/rack-inventory/pkg/logger"
	"github.com/shopspring/decimal"
)

// MaxShelfPosition último número de rack por estantería (sufijo de dos dígitos).
const MaxShelfPosition = 99

const defaultLedgerLimit = 50

// LocationUseCase casos de uso de racks: alta, consulta, retiro e historial de capacidad.
type LocationUseCase struct {
	txRunner  inventory.TxRunner
	locations repository.LocationRepository
	ledger    repository.LedgerRepository
	log       *logger.Logger
}

// NewLocationUseCase construye el caso de uso.
func NewLocationUseCase(
	txRunner inventory.TxRunner,
	locations repository.LocationRepository,
	ledger repository.LedgerRepository,
	log *logger.Logger,
) *LocationUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &LocationUseCase{txRunner: txRunner, locations: locations, ledger: ledger, log: log.Named("locations")}
}

// LocationCode código de un rack: <estantería>_RACK<NN>.
func LocationCode(shelfCode string, position int) string {
	return fmt.Sprintf("%s_RACK%02d", shelfCode, position)
}

// Create crea un rack en la posición indicada. Una posición ya ocupada devuelve ErrConflict.
func (uc *LocationUseCase) Create(ctx context.Context, in dto.CreateLocationRequest) (*dto.LocationResponse, error) {
	shelf := strings.TrimSpace(in.ShelfCode)
	if shelf == "" || in.WarehouseID <= 0 || in.TotalCapacity <= 0 ||
		in.Position < 1 || in.Position > MaxShelfPosition {
		return nil, domain.ErrInvalidInput
	}
	loc := newLocation(shelf, in.Position, in.WarehouseID, in.CategoryID, in.TotalCapacity)
	if err := uc.locations.Create(ctx, loc); err != nil {
		return nil, err
	}
	uc.log.Info().Int64("location_id", loc.ID).Str("code", loc.Code).Msg("rack creado")
	return ToLocationResponse(loc), nil
}

// CreateBatch crea Count racks consecutivos a partir de la mayor posición ocupada de la estantería.
// La numeración se serializa por estantería dentro de la transacción.
func (uc *LocationUseCase) CreateBatch(ctx context.Context, in dto.CreateLocationBatchRequest) ([]dto.LocationResponse, error) {
	shelf := strings.TrimSpace(in.ShelfCode)
	if shelf == "" || in.WarehouseID <= 0 || in.TotalCapacity <= 0 || in.Count < 1 {
		return nil, domain.ErrInvalidInput
	}
	var created []*entity.Location
	err := uc.txRunner.Run(ctx, func(repos inventory.Repos) error {
		created = created[:0]
		if err := repos.Locations.LockShelf(ctx, shelf); err != nil {
			return err
		}
		last, err := repos.Locations.MaxPositionByShelf(ctx, shelf)
		if err != nil {
			return err
		}
		if last+in.Count > MaxShelfPosition {
			return fmt.Errorf("estantería %s ocupada hasta la posición %d, no caben %d más: %w", shelf, last, in.Count, domain.ErrInvalidInput)
		}
		for i := 1; i <= in.Count; i++ {
			loc := newLocation(shelf, last+i, in.WarehouseID, in.CategoryID, in.TotalCapacity)
			if err := repos.Locations.Create(ctx, loc); err != nil {
				return err
			}
			created = append(created, loc)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("shelf_code", shelf).Int("count", len(created)).Msg("racks creados")
	out := make([]dto.LocationResponse, 0, len(created))
	for _, loc := range created {
		out = append(out, *ToLocationResponse(loc))
	}
	return out, nil
}

// GetByID obtiene un rack por ID.
func (uc *LocationUseCase) GetByID(ctx context.Context, id int64) (*dto.LocationResponse, error) {
	loc, err := uc.locations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, domain.ErrLocationNotFound
	}
	return ToLocationResponse(loc), nil
}

// List lista racks de una bodega con paginación.
func (uc *LocationUseCase) List(ctx context.Context, warehouseID int64, limit, offset int) (*dto.LocationListResponse, error) {
	if warehouseID <= 0 {
		return nil, domain.ErrInvalidInput
	}
	list, err := uc.locations.ListByWarehouse(ctx, warehouseID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LocationResponse, 0, len(list))
	for _, l := range list {
		items = append(items, *ToLocationResponse(l))
	}
	return &dto.LocationListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Remove retira un rack (estado DISABLE). Falla con ErrLocationInUse mientras algún lote no
// deshabilitado lo referencie. Retirar un rack ya retirado no hace nada.
func (uc *LocationUseCase) Remove(ctx context.Context, id int64) error {
	err := uc.txRunner.Run(ctx, func(repos inventory.Repos) error {
		loc, err := repos.Locations.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if loc == nil {
			return domain.ErrLocationNotFound
		}
		if loc.Status == entity.LocationStatusDisable {
			return nil
		}
		n, err := repos.Locations.CountActiveLots(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("ubicación %d con %d lotes: %w", id, n, domain.ErrLocationInUse)
		}
		return repos.Locations.Disable(ctx, id)
	})
	if err != nil {
		return err
	}
	uc.log.Info().Int64("location_id", id).Msg("rack retirado")
	return nil
}

// Ledger historial de deltas de capacidad de un rack, más recientes primero.
func (uc *LocationUseCase) Ledger(ctx context.Context, id int64, limit int) ([]dto.LedgerEntryResponse, error) {
	if limit <= 0 || limit > 500 {
		limit = defaultLedgerLimit
	}
	loc, err := uc.locations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, domain.ErrLocationNotFound
	}
	entries, err := uc.ledger.ListByLocation(ctx, id, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.LedgerEntryResponse{
			ID:          e.ID,
			OperationID: e.OperationID,
			LotID:       e.LotID,
			Direction:   e.Direction,
			Footprint:   e.Footprint,
			UsedAfter:   e.UsedAfter,
			CreatedAt:   e.CreatedAt,
		})
	}
	return out, nil
}

func newLocation(shelf string, position int, warehouseID int64, categoryID *int64, total int64) *entity.Location {
	return &entity.Location{
		Code:          LocationCode(shelf, position),
		ShelfCode:     shelf,
		Position:      position,
		WarehouseID:   warehouseID,
		CategoryID:    categoryID,
		TotalCapacity: total,
		Status:        entity.LocationStatusEnable,
	}
}

// Utilization porcentaje de capacidad usada con dos decimales.
func Utilization(used, total int64) decimal.Decimal {
	if total <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(used).Mul(decimal.NewFromInt(100)).DivRound(decimal.NewFromInt(total), 2)
}

// ToLocationResponse convierte un rack a su DTO de salida con el porcentaje de utilización.
func ToLocationResponse(l *entity.Location) *dto.LocationResponse {
	if l == nil {
		return nil
	}
	return &dto.LocationResponse{
		ID:            l.ID,
		Code:          l.Code,
		ShelfCode:     l.ShelfCode,
		Position:      l.Position,
		WarehouseID:   l.WarehouseID,
		CategoryID:    l.CategoryID,
		TotalCapacity: l.TotalCapacity,
		UsedCapacity:  l.UsedCapacity,
		FreeCapacity:  l.FreeCapacity(),
		Utilization:   Utilization(l.UsedCapacity, l.TotalCapacity),
		Status:        l.Status,
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
}
