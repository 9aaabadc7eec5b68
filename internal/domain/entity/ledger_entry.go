package entity

import "time"

// Direcciones de un delta de capacidad.
const (
	DirectionIncrement = "INCREMENT"
	DirectionDecrement = "DECREMENT"
)

// LedgerEntry registro de auditoría de un delta aplicado a la capacidad de una ubicación.
// Todas las entradas de una misma operación comparten OperationID.
type LedgerEntry struct {
	ID          string
	OperationID string
	LocationID  int64
	LotID       *int64
	Direction   string
	Footprint   int64
	UsedAfter   int64
	CreatedAt   time.Time
}
