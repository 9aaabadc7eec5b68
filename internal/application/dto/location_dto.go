package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateLocationRequest entrada para crear un rack en una estantería.
type CreateLocationRequest struct {
	ShelfCode     string `json:"shelf_code" validate:"required,max=60"`
	Position      int    `json:"position" validate:"required,min=1,max=99"`
	WarehouseID   int64  `json:"warehouse_id" validate:"required,gt=0"`
	CategoryID    *int64 `json:"category_id" validate:"omitempty,gt=0"`
	TotalCapacity int64  `json:"total_capacity" validate:"required,gt=0"`
}

// CreateLocationBatchRequest entrada para crear varios racks consecutivos en una estantería.
type CreateLocationBatchRequest struct {
	ShelfCode     string `json:"shelf_code" validate:"required,max=60"`
	WarehouseID   int64  `json:"warehouse_id" validate:"required,gt=0"`
	CategoryID    *int64 `json:"category_id" validate:"omitempty,gt=0"`
	TotalCapacity int64  `json:"total_capacity" validate:"required,gt=0"`
	Count         int    `json:"count" validate:"required,min=1,max=99"`
}

// LocationResponse salida de un rack.
type LocationResponse struct {
	ID            int64           `json:"id"`
	Code          string          `json:"code"`
	ShelfCode     string          `json:"shelf_code"`
	Position      int             `json:"position"`
	WarehouseID   int64           `json:"warehouse_id"`
	CategoryID    *int64          `json:"category_id,omitempty"`
	TotalCapacity int64           `json:"total_capacity"`
	UsedCapacity  int64           `json:"used_capacity"`
	FreeCapacity  int64           `json:"free_capacity"`
	Utilization   decimal.Decimal `json:"utilization"` // porcentaje usado, 2 decimales
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// LocationListResponse lista paginada de racks.
type LocationListResponse struct {
	Items []LocationResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// LedgerEntryResponse movimiento de capacidad de un rack.
type LedgerEntryResponse struct {
	ID          string    `json:"id"`
	OperationID string    `json:"operation_id"`
	LotID       *int64    `json:"lot_id,omitempty"`
	Direction   string    `json:"direction"`
	Footprint   int64     `json:"footprint"`
	UsedAfter   int64     `json:"used_after"`
	CreatedAt   time.Time `json:"created_at"`
}
