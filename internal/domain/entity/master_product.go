package entity

import "time"

// MasterProduct agregado externo con la huella por unidad y el contador de cantidad disponible
// (suma de lotes en STORED).
type MasterProduct struct {
	ID                int64
	Name              string
	UnitFootprint     int64
	CategoryID        *int64
	StorageDays       int
	AvailableQuantity int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
