package entity

import "time"

// LotStatus estado de un lote dentro del ciclo de vida de bodega.
type LotStatus string

// Estados de lote.
const (
	LotStatusNew          LotStatus = "NEW"
	LotStatusStored       LotStatus = "STORED"
	LotStatusTemporary    LotStatus = "TEMPORARY"
	LotStatusTemporaryOut LotStatus = "TEMPORARY_OUT"
	LotStatusReallocate   LotStatus = "REALLOCATE"
	LotStatusMoving       LotStatus = "MOVING"
	LotStatusPicking      LotStatus = "PICKING"
	LotStatusError        LotStatus = "ERROR"
	LotStatusLost         LotStatus = "LOST"
	LotStatusDisable      LotStatus = "DISABLE"
)

// AllLotStatuses lista todos los estados válidos en orden de ciclo de vida.
var AllLotStatuses = []LotStatus{
	LotStatusNew, LotStatusStored, LotStatusTemporary, LotStatusTemporaryOut, LotStatusReallocate,
	LotStatusMoving, LotStatusPicking, LotStatusError, LotStatusLost, LotStatusDisable,
}

// TerminalLotStatuses estados desde los que solo se sale con un paso explícito de recuperación.
var TerminalLotStatuses = []LotStatus{LotStatusError, LotStatusLost, LotStatusDisable}

// ParseLotStatus valida un estado recibido como texto.
func ParseLotStatus(s string) (LotStatus, bool) {
	for _, st := range AllLotStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// AffectsCapacity indica si un lote en este estado consume capacidad de su ubicación.
func (s LotStatus) AffectsCapacity() bool {
	return s == LotStatusStored || s == LotStatusMoving || s == LotStatusTemporary
}

// IsTerminal indica ERROR, LOST o DISABLE.
func (s LotStatus) IsTerminal() bool {
	return s == LotStatusError || s == LotStatusLost || s == LotStatusDisable
}

// IsFault indica ERROR o LOST (estados recuperables con split/re-código).
func (s LotStatus) IsFault() bool {
	return s == LotStatusError || s == LotStatusLost
}

// Lot representa una cantidad física de un producto maestro con un estado y (opcionalmente) una ubicación.
// UnitFootprint se copia del producto maestro al ingresar el lote.
type Lot struct {
	ID                   int64
	Code                 string
	MasterProductID      int64
	UnitFootprint        int64
	Quantity             int64
	Status               LotStatus
	WarehouseID          int64
	LocationID           *int64
	ReallocationSourceID *int64 // ubicación que retiene la huella mientras el lote está en REALLOCATE
	BlockID              *int64
	ZoneID               *int64
	ReceiptID            *int64
	SupplierID           *int64
	PackageCode          *string
	ImportedAt           time.Time
	StorageUntil         *time.Time
	LostAt               *time.Time
	ReportedAt           *time.Time
	LostQuantity         *int64
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Footprint capacidad total que consume el lote (UnitFootprint * Quantity).
func (l *Lot) Footprint() int64 {
	return l.UnitFootprint * l.Quantity
}

// Clone devuelve una copia independiente del lote (los punteros se duplican).
func (l *Lot) Clone() *Lot {
	c := *l
	c.LocationID = cloneInt64(l.LocationID)
	c.ReallocationSourceID = cloneInt64(l.ReallocationSourceID)
	c.BlockID = cloneInt64(l.BlockID)
	c.ZoneID = cloneInt64(l.ZoneID)
	c.ReceiptID = cloneInt64(l.ReceiptID)
	c.SupplierID = cloneInt64(l.SupplierID)
	c.LostQuantity = cloneInt64(l.LostQuantity)
	if l.PackageCode != nil {
		v := *l.PackageCode
		c.PackageCode = &v
	}
	c.StorageUntil = cloneTime(l.StorageUntil)
	c.LostAt = cloneTime(l.LostAt)
	c.ReportedAt = cloneTime(l.ReportedAt)
	return &c
}

func cloneInt64(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTime(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
