package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/rack-inventory/internal/domain"
	"github.com/jhoicas/rack-inventory/internal/domain/capacity"
	"github.com/jhoicas/rack-inventory/internal/domain/entity"
	"github.com/jhoicas/rack-inventory/pkg/logger"
	"github.com/jhoicas/rack-inventory/pkg/metrics"
)

// DeltaInput entrada del ledger: huella por unidad, cantidad y dirección sobre una ubicación.
type DeltaInput struct {
	LocationID    int64
	LotID         *int64
	UnitFootprint int64
	Quantity      int64
	Direction     string
}

// Ledger aplica deltas de capacidad. Es el único camino que escribe used_capacity.
type Ledger struct {
	log     *logger.Logger
	metrics *metrics.InventoryMetrics
	now     func() time.Time
}

// NewLedger construye el ledger; log y m pueden ser nil.
func NewLedger(log *logger.Logger, m *metrics.InventoryMetrics) *Ledger {
	if log == nil {
		log = logger.Nop()
	}
	return &Ledger{log: log.Named("ledger"), metrics: m, now: time.Now}
}

// Apply bloquea la ubicación (SELECT FOR UPDATE), valida límites, persiste la capacidad usada y el
// estado derivado, y registra la entrada de auditoría. Debe ejecutarse dentro de TxRunner.Run.
func (l *Ledger) Apply(ctx context.Context, repos Repos, operationID string, in DeltaInput) (*entity.Location, error) {
	loc, err := repos.Locations.GetForUpdate(ctx, in.LocationID)
	if err != nil {
		return nil, fmt.Errorf("lock location %d: %w", in.LocationID, err)
	}
	if loc == nil {
		return nil, domain.ErrLocationNotFound
	}

	used, err := capacity.Apply(loc, in.UnitFootprint, in.Quantity, in.Direction)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCapacityExceeded):
			l.metrics.IncCapacityRejected("exceeded")
		case errors.Is(err, domain.ErrCapacityUnderflow):
			l.metrics.IncCapacityRejected("underflow")
		}
		l.log.Warn().
			Int64("location_id", loc.ID).
			Str("direction", in.Direction).
			Int64("footprint", in.UnitFootprint*in.Quantity).
			Int64("used", loc.UsedCapacity).
			Int64("total", loc.TotalCapacity).
			Err(err).
			Msg("delta de capacidad rechazado")
		return nil, err
	}

	loc.UsedCapacity = used
	loc.Status = loc.DerivedStatus()
	loc.UpdatedAt = l.now()
	if err := repos.Locations.UpdateUsage(ctx, loc.ID, loc.UsedCapacity, loc.Status); err != nil {
		return nil, fmt.Errorf("update location usage: %w", err)
	}

	entry := &entity.LedgerEntry{
		ID:          uuid.NewString(),
		OperationID: operationID,
		LocationID:  loc.ID,
		LotID:       in.LotID,
		Direction:   in.Direction,
		Footprint:   in.UnitFootprint * in.Quantity,
		UsedAfter:   loc.UsedCapacity,
		CreatedAt:   loc.UpdatedAt,
	}
	if err := repos.Ledger.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("append ledger entry: %w", err)
	}

	l.metrics.IncCapacityDelta(in.Direction)
	l.log.Debug().
		Str("operation_id", operationID).
		Int64("location_id", loc.ID).
		Str("direction", in.Direction).
		Int64("footprint", entry.Footprint).
		Int64("used", loc.UsedCapacity).
		Msg("delta de capacidad aplicado")
	return loc, nil
}

// lotChange estado de un lote antes y después de una operación; before nil si el lote es nuevo.
type lotChange struct {
	before *entity.Lot
	after  *entity.Lot
}

// settle aplica los deltas de capacidad que implican los cambios de lote y ajusta el contador
// disponible del producto maestro. Las ubicaciones se bloquean en orden ascendente de id y los
// DECREMENT se aplican antes que los INCREMENT.
func (l *Ledger) settle(ctx context.Context, repos Repos, operationID string, changes ...lotChange) error {
	type pending struct {
		delta capacity.Delta
		lot   *entity.Lot
	}
	var deltas []pending
	available := map[int64]int64{}
	for _, ch := range changes {
		before := capacity.Claim{}
		if ch.before != nil {
			before = capacity.ClaimOf(ch.before)
		}
		for _, d := range capacity.Diff(before, capacity.ClaimOf(ch.after)) {
			deltas = append(deltas, pending{delta: d, lot: ch.after})
		}
		if diff := capacity.StoredQuantity(ch.after) - capacity.StoredQuantity(ch.before); diff != 0 {
			available[ch.after.MasterProductID] += diff
		}
	}

	ids := make([]int64, 0, len(deltas))
	seen := map[int64]bool{}
	for _, p := range deltas {
		if !seen[p.delta.LocationID] {
			seen[p.delta.LocationID] = true
			ids = append(ids, p.delta.LocationID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		loc, err := repos.Locations.GetForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("lock location %d: %w", id, err)
		}
		if loc == nil {
			return domain.ErrLocationNotFound
		}
	}

	sort.SliceStable(deltas, func(i, j int) bool {
		return deltas[i].delta.Direction == entity.DirectionDecrement && deltas[j].delta.Direction != entity.DirectionDecrement
	})
	for _, p := range deltas {
		lotID := p.lot.ID
		if _, err := l.Apply(ctx, repos, operationID, DeltaInput{
			LocationID:    p.delta.LocationID,
			LotID:         &lotID,
			UnitFootprint: p.lot.UnitFootprint,
			Quantity:      p.delta.Quantity,
			Direction:     p.delta.Direction,
		}); err != nil {
			return err
		}
	}

	masterIDs := make([]int64, 0, len(available))
	for id, d := range available {
		if d != 0 {
			masterIDs = append(masterIDs, id)
		}
	}
	sort.Slice(masterIDs, func(i, j int) bool { return masterIDs[i] < masterIDs[j] })
	for _, id := range masterIDs {
		if err := repos.MasterProducts.AdjustAvailableQuantity(ctx, id, available[id]); err != nil {
			return fmt.Errorf("adjust available quantity: %w", err)
		}
	}
	return nil
}
