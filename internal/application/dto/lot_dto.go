package dto

import "time"

// CreateLotRequest entrada para ingresar un lote (NEW o STORED).
type CreateLotRequest struct {
	MasterProductID int64      `json:"master_product_id" validate:"required,gt=0"`
	WarehouseID     int64      `json:"warehouse_id" validate:"required,gt=0"`
	Quantity        int64      `json:"quantity" validate:"required,gt=0"`
	Status          string     `json:"status" validate:"omitempty,oneof=NEW STORED"`
	LocationID      *int64     `json:"location_id" validate:"omitempty,gt=0"`
	BlockID         *int64     `json:"block_id" validate:"omitempty,gt=0"`
	ZoneID          *int64     `json:"zone_id" validate:"omitempty,gt=0"`
	ReceiptID       *int64     `json:"receipt_id" validate:"omitempty,gt=0"`
	SupplierID      *int64     `json:"supplier_id" validate:"omitempty,gt=0"`
	PackageCode     *string    `json:"package_code" validate:"omitempty,max=80"`
	ImportedAt      *time.Time `json:"imported_at"`
}

// TransitionRequest estado deseado de un lote.
type TransitionRequest struct {
	Status         string `json:"status" validate:"required"`
	Quantity       *int64 `json:"quantity" validate:"omitempty,gte=0"`
	LocationID     *int64 `json:"location_id" validate:"omitempty,gt=0"`
	DetachLocation bool   `json:"detach_location"`
	LostQuantity   *int64 `json:"lost_quantity" validate:"omitempty,gte=0"`
}

// BatchTransitionItem transición de un lote dentro de una petición por lotes.
type BatchTransitionItem struct {
	LotID int64 `json:"lot_id" validate:"required,gt=0"`
	TransitionRequest
}

// BatchTransitionRequest varias transiciones independientes.
type BatchTransitionRequest struct {
	Items []BatchTransitionItem `json:"items" validate:"required,min=1,max=200,dive"`
}

// SplitRequest cantidad a separar.
type SplitRequest struct {
	Quantity int64 `json:"quantity" validate:"required,gt=0"`
}

// LotIDsRequest lista de lotes para operaciones por lotes.
type LotIDsRequest struct {
	LotIDs []int64 `json:"lot_ids" validate:"required,min=1,max=200,dive,gt=0"`
}

// AssignLocationRequest lotes a almacenar en una ubicación.
type AssignLocationRequest struct {
	LocationID int64   `json:"location_id" validate:"required,gt=0"`
	LotIDs     []int64 `json:"lot_ids" validate:"required,min=1,max=200,dive,gt=0"`
}

// ScanRequest códigos escaneados dentro de un flujo.
type ScanRequest struct {
	Type         string   `json:"type"`
	Codes        []string `json:"codes" validate:"max=500"`
	PackageCodes []string `json:"package_codes" validate:"max=500"`
	WarehouseID  int64    `json:"warehouse_id"`
}

// LotResponse salida de un lote.
type LotResponse struct {
	ID                   int64      `json:"id"`
	Code                 string     `json:"code"`
	MasterProductID      int64      `json:"master_product_id"`
	UnitFootprint        int64      `json:"unit_footprint"`
	Quantity             int64      `json:"quantity"`
	Status               string     `json:"status"`
	WarehouseID          int64      `json:"warehouse_id"`
	LocationID           *int64     `json:"location_id,omitempty"`
	ReallocationSourceID *int64     `json:"reallocation_source_id,omitempty"`
	BlockID              *int64     `json:"block_id,omitempty"`
	ZoneID               *int64     `json:"zone_id,omitempty"`
	ReceiptID            *int64     `json:"receipt_id,omitempty"`
	SupplierID           *int64     `json:"supplier_id,omitempty"`
	PackageCode          *string    `json:"package_code,omitempty"`
	ImportedAt           time.Time  `json:"imported_at"`
	StorageUntil         *time.Time `json:"storage_until,omitempty"`
	LostAt               *time.Time `json:"lost_at,omitempty"`
	ReportedAt           *time.Time `json:"reported_at,omitempty"`
	LostQuantity         *int64     `json:"lost_quantity,omitempty"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// TransitionResponse lote actualizado y lote creado por split, si lo hubo.
type TransitionResponse struct {
	Lot     LotResponse  `json:"lot"`
	Created *LotResponse `json:"created,omitempty"`
}

// SplitResponse remanente y lote creado.
type SplitResponse struct {
	Remainder LotResponse `json:"remainder"`
	Created   LotResponse `json:"created"`
}

// BatchItemResponse resultado por lote.
type BatchItemResponse struct {
	LotID int64          `json:"lot_id"`
	Lot   *LotResponse   `json:"lot,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
}

// BatchResponse resultados de una operación por lotes.
type BatchResponse struct {
	Items  []BatchItemResponse `json:"items"`
	Failed int                 `json:"failed"`
}

// ScanResponse lotes que coinciden y códigos sin coincidencia.
type ScanResponse struct {
	Matched               []LotResponse `json:"matched"`
	UnmatchedCodes        []string      `json:"unmatched_codes"`
	UnmatchedPackageCodes []string      `json:"unmatched_package_codes"`
}

// PickLineResponse lote sugerido para picking.
type PickLineResponse struct {
	Lot  LotResponse `json:"lot"`
	Take int64       `json:"take"`
}

// PickingResponse sugerencia de picking.
type PickingResponse struct {
	Lines     []PickLineResponse `json:"lines"`
	Covered   int64              `json:"covered"`
	Shortfall int64              `json:"shortfall"`
}
