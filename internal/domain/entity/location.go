package entity

import "time"

// Estados de ubicación. FULL se deriva de la capacidad; DISABLE marca una ubicación retirada.
const (
	LocationStatusEnable  = "ENABLE"
	LocationStatusFull    = "FULL"
	LocationStatusDisable = "DISABLE"
)

// Location representa un rack (posición de almacenamiento) de capacidad fija.
// UsedCapacity solo lo modifica el ledger de capacidad.
type Location struct {
	ID            int64
	Code          string
	ShelfCode     string
	Position      int
	WarehouseID   int64
	CategoryID    *int64
	TotalCapacity int64
	UsedCapacity  int64
	Status        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// FreeCapacity capacidad disponible.
func (l *Location) FreeCapacity() int64 {
	return l.TotalCapacity - l.UsedCapacity
}

// DerivedStatus calcula el estado según la capacidad usada; DISABLE se conserva.
func (l *Location) DerivedStatus() string {
	if l.Status == LocationStatusDisable {
		return LocationStatusDisable
	}
	if l.UsedCapacity == l.TotalCapacity {
		return LocationStatusFull
	}
	return LocationStatusEnable
}
