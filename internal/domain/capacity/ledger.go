package capacity

import (
	"github.com/jhoicas/rack-inventory/internal/domain"
	"github.com/jhoicas/rack-inventory/internal/domain/entity"
)

// Apply calcula la nueva capacidad usada tras aplicar un delta (servicio de dominio, sin efectos).
// total = unitFootprint * quantity; INCREMENT exige used+total <= capacidad total,
// DECREMENT exige used >= total. Una ubicación en DISABLE no acepta INCREMENT.
func Apply(loc *entity.Location, unitFootprint, quantity int64, direction string) (int64, error) {
	if unitFootprint < 0 || quantity < 0 {
		return 0, domain.ErrInvalidQuantity
	}
	total := unitFootprint * quantity
	switch direction {
	case entity.DirectionIncrement:
		if total > 0 && loc.Status == entity.LocationStatusDisable {
			return 0, domain.ErrCapacityExceeded
		}
		if loc.UsedCapacity+total > loc.TotalCapacity {
			return 0, domain.ErrCapacityExceeded
		}
		return loc.UsedCapacity + total, nil
	case entity.DirectionDecrement:
		if loc.UsedCapacity < total {
			return 0, domain.ErrCapacityUnderflow
		}
		return loc.UsedCapacity - total, nil
	}
	return 0, domain.ErrInvalidInput
}

// Claim capacidad que un lote retiene: ubicación y cantidad. LocationID nil = sin reclamo.
type Claim struct {
	LocationID *int64
	Quantity   int64
}

// ClaimOf devuelve dónde cuenta la huella del lote: en su ubicación si el estado afecta capacidad,
// en la ubicación origen si está en REALLOCATE, y en ninguna otra parte en el resto de estados.
func ClaimOf(l *entity.Lot) Claim {
	switch {
	case l.Status.AffectsCapacity() && l.LocationID != nil:
		return Claim{LocationID: l.LocationID, Quantity: l.Quantity}
	case l.Status == entity.LotStatusReallocate && l.ReallocationSourceID != nil:
		return Claim{LocationID: l.ReallocationSourceID, Quantity: l.Quantity}
	}
	return Claim{}
}

// Delta movimiento de capacidad sobre una ubicación.
type Delta struct {
	LocationID int64
	Quantity   int64
	Direction  string
}

// Diff devuelve los deltas que llevan de un reclamo a otro. Si ambos reclamos están en la misma
// ubicación se aplica solo la diferencia; si no, se libera el anterior y se reserva el nuevo
// (DECREMENT primero).
func Diff(before, after Claim) []Delta {
	if before.LocationID != nil && after.LocationID != nil && *before.LocationID == *after.LocationID {
		switch d := after.Quantity - before.Quantity; {
		case d > 0:
			return []Delta{{LocationID: *after.LocationID, Quantity: d, Direction: entity.DirectionIncrement}}
		case d < 0:
			return []Delta{{LocationID: *after.LocationID, Quantity: -d, Direction: entity.DirectionDecrement}}
		}
		return nil
	}
	var out []Delta
	if before.LocationID != nil && before.Quantity > 0 {
		out = append(out, Delta{LocationID: *before.LocationID, Quantity: before.Quantity, Direction: entity.DirectionDecrement})
	}
	if after.LocationID != nil && after.Quantity > 0 {
		out = append(out, Delta{LocationID: *after.LocationID, Quantity: after.Quantity, Direction: entity.DirectionIncrement})
	}
	return out
}

// StoredQuantity cantidad que el lote aporta al contador disponible del producto maestro.
func StoredQuantity(l *entity.Lot) int64 {
	if l == nil || l.Status != entity.LotStatusStored {
		return 0
	}
	return l.Quantity
}
