package http

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/rack-inventory/internal/application/dto"
	"github.com/jhoicas/rack-inventory/internal/application/inventory"
	"github.com/jhoicas/rack-inventory/internal/application/usecase"
	"github.com/jhoicas/rack-inventory/internal/domain"
	"github.com/jhoicas/rack-inventory/internal/domain/entity"
)

// LotService operaciones de lotes que expone la API (implementado por inventory.LotUseCase).
type LotService interface {
	CreateLot(ctx context.Context, in inventory.CreateLotInput) (*entity.Lot, error)
	GetLot(ctx context.Context, id int64) (*entity.Lot, error)
	Transition(ctx context.Context, in inventory.TransitionInput) (*inventory.TransitionResult, error)
	TransitionBatch(ctx context.Context, inputs []inventory.TransitionInput) []inventory.BatchItemResult
	Split(ctx context.Context, lotID int64, quantity int64) (*inventory.SplitResult, error)
	Disable(ctx context.Context, lotID int64) (*entity.Lot, error)
	DisableBatch(ctx context.Context, lotIDs []int64) []inventory.BatchItemResult
	Relocate(ctx context.Context, lotIDs []int64) []inventory.BatchItemResult
	CancelReallocation(ctx context.Context, lotIDs []int64) []inventory.BatchItemResult
	AssignLocation(ctx context.Context, locationID int64, lotIDs []int64) []inventory.BatchItemResult
	Scan(ctx context.Context, in inventory.ScanInput) (*inventory.ScanResult, error)
	SuggestPicking(ctx context.Context, masterProductID, warehouseID, quantity int64) (*inventory.PickingSuggestion, error)
	Recommend(ctx context.Context, in inventory.RecommendInput) (*entity.Location, error)
}

var _ LotService = (*inventory.LotUseCase)(nil)

// LotHandler maneja las peticiones HTTP de lotes.
type LotHandler struct {
	uc LotService
	v  *RequestValidator
}

// NewLotHandler construye el handler.
func NewLotHandler(uc LotService, v *RequestValidator) *LotHandler {
	return &LotHandler{uc: uc, v: v}
}

// Create godoc
// @Summary      Ingresar lote
// @Description  Crea un lote NEW (sin ubicación) o STORED (reserva capacidad en la ubicación).
// @Tags         lots
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string  false  "Clave de idempotencia"
// @Param        body  body  dto.CreateLotRequest  true  "Datos del lote"
// @Success      201   {object}  dto.LotResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/lots [post]
func (h *LotHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateLotRequest
	if err := h.v.bind(c, &in); err != nil {
		return writeError(c, err)
	}
	lot, err := h.uc.CreateLot(c.Context(), inventory.CreateLotInput{
		MasterProductID: in.MasterProductID,
		WarehouseID:     in.WarehouseID,
		Quantity:        in.Quantity,
		Status:          entity.LotStatus(in.Status),
		LocationID:      in.LocationID,
		BlockID:         in.BlockID,
		ZoneID:          in.ZoneID,
		ReceiptID:       in.ReceiptID,
		SupplierID:      in.SupplierID,
		PackageCode:     in.PackageCode,
		ImportedAt:      in.ImportedAt,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toLotResponse(lot))
}

// GetByID godoc
// @Summary      Obtener lote por ID
// @Tags         lots
// @Produce      json
// @Param        id   path  int  true  "ID del lote"
// @Success      200  {object}  dto.LotResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lots/{id} [get]
func (h *LotHandler) GetByID(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badRequest(c, "MISSING_ID", "id inválido")
	}
	lot, err := h.uc.GetLot(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toLotResponse(lot))
}

// Transition godoc
// @Summary      Cambiar estado de un lote
// @Description  Aplica el estado, cantidad y ubicación deseados y ajusta la capacidad en la misma transacción.
// @Description  Un ERROR con lost_quantity parcial o una recuperación parcial crean un lote nuevo (created).
// @Tags         lots
// @Accept       json
// @Produce      json
// @Param        id    path  int  true  "ID del lote"
// @Param        body  body  dto.TransitionRequest  true  "Estado deseado"
// @Success      200   {object}  dto.TransitionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/lots/{id}/transition [post]
func (h *LotHandler) Transition(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badRequest(c, "MISSING_ID", "id inválido")
	}
	var in dto.TransitionRequest
	if err := h.v.bind(c, &in); err != nil {
		return writeError(c, err)
	}
	tin, err := toTransitionInput(id, in)
	if err != nil {
		return writeError(c, err)
	}
	res, err := h.uc.Transition(c.Context(), tin)
	if err != nil {
		return writeError(c, err)
	}
	out := dto.TransitionResponse{Lot: toLotResponse(res.Lot)}
	if res.Created != nil {
		created := toLotResponse(res.Created)
		out.Created = &created
	}
	return c.JSON(out)
}

// TransitionBatch godoc
// @Summary      Cambiar estado de varios lotes
// @Description  Cada lote se confirma en su propia transacción; la respuesta lista el resultado por lote.
// @Tags         lots
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BatchTransitionRequest  true  "Transiciones"
// @Success      200   {object}  dto.BatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/lots/transitions [post]
func (h *LotHandler) TransitionBatch(c *fiber.Ctx) error {
	var in dto.BatchTransitionRequest
	if err := h.v.bind(c, &in); err != nil {
		return writeError(c, err)
	}
	inputs := make([]inventory.TransitionInput, 0, len(in.Items))
	for _, item := range in.Items {
		tin, err := toTransitionInput(item.LotID, item.TransitionRequest)
		if err != nil {
			return writeError(c, err)
		}
		inputs = append(inputs, tin)
	}
	return c.JSON(toBatchResponse(h.uc.TransitionBatch(c.Context(), inputs)))
}

// Split godoc
// @Summary      Separar un lote
// @Tags         lots
// @Accept       json
// @Produce      json
// @Param        id    path  int  true  "ID del lote"
// @Param        body  body  dto.SplitRequest  true  "Cantidad a separar"
// @Success      201   {object}  dto.SplitResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/lots/{id}/split [post]
func (h *LotHandler) Split(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badRequest(c, "MISSING_ID", "id inválido")
	}
	var in dto.SplitRequest
	if err := h.v.bind(c, &in); err != nil {
		return writeError(c, err)
	}
	res, err := h.uc.Split(c.Context(), id, in.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SplitResponse{
		Remainder: toLotResponse(res.Remainder),
		Created:   toLotResponse(res.Created),
	})
}

// Disable godoc
// @Summary      Deshabilitar lote
// @Tags         lots
// @Produce      json
// @Param        id   path  int  true  "ID del lote"
// @Success      200  {object}  dto.LotResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lots/{id} [delete]
func (h *LotHandler) Disable(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badRequest(c, "MISSING_ID", "id inválido")
	}
	lot, err := h.uc.Disable(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toLotResponse(lot))
}

// DisableBatch godoc
// @Summary      Deshabilitar varios lotes
// @Tags         lots
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LotIDsRequest  true  "Lotes"
// @Success      200   {object}  dto.BatchResponse
// @Router       /api/lots/disable [post]
func (h *LotHandler) DisableBatch(c *fiber.Ctx) error {
	return h.batch(c, h.uc.DisableBatch)
}

// Relocate godoc
// @Summary      Reubicar lotes
// @Description  Recomienda una ubicación por lote (categoría del producto, bodega y huella) y lo pasa a MOVING.
// @Tags         lots
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LotIDsRequest  true  "Lotes"
// @Success      200   {object}  dto.BatchResponse
// @Router       /api/lots/relocate [post]
func (h *LotHandler) Relocate(c *fiber.Ctx) error {
	return h.batch(c, h.uc.Relocate)
}

// CancelReallocation godoc
// @Summary      Cancelar reubicación
// @Description  Devuelve lotes REALLOCATE a STORED en su ubicación de origen.
// @Tags         lots
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LotIDsRequest  true  "Lotes"
// @Success      200   {object}  dto.BatchResponse
// @Router       /api/lots/cancel-reallocation [post]
func (h *LotHandler) CancelReallocation(c *fiber.Ctx) error {
	return h.batch(c, h.uc.CancelReallocation)
}

// AssignLocation godoc
// @Summary      Asignar ubicación
// @Description  Almacena los lotes (STORED) en la ubicación indicada.
// @Tags         lots
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AssignLocationRequest  true  "Ubicación y lotes"
// @Success      200   {object}  dto.BatchResponse
// @Router       /api/lots/assign-location [post]
func (h *LotHandler) AssignLocation(c *fiber.Ctx) error {
	var in dto.AssignLocationRequest
	if err := h.v.bind(c, &in); err != nil {
		return writeError(c, err)
	}
	return c.JSON(toBatchResponse(h.uc.AssignLocation(c.Context(), in.LocationID, in.LotIDs)))
}

// Scan godoc
// @Summary      Validar escaneo
// @Description  Filtra los lotes escaneados por los estados que admite el flujo (type) en la bodega.
// @Tags         lots
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ScanRequest  true  "Flujo y códigos"
// @Success      200   {object}  dto.ScanResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/lots/scan [post]
func (h *LotHandler) Scan(c *fiber.Ctx) error {
	var in dto.ScanRequest
	if err := h.v.bind(c, &in); err != nil {
		return writeError(c, err)
	}
	res, err := h.uc.Scan(c.Context(), inventory.ScanInput{
		Type:         in.Type,
		Codes:        in.Codes,
		PackageCodes: in.PackageCodes,
		WarehouseID:  in.WarehouseID,
	})
	if err != nil {
		return writeError(c, err)
	}
	out := dto.ScanResponse{
		Matched:               make([]dto.LotResponse, 0, len(res.Matched)),
		UnmatchedCodes:        res.UnmatchedCodes,
		UnmatchedPackageCodes: res.UnmatchedPackageCodes,
	}
	for _, l := range res.Matched {
		out.Matched = append(out.Matched, toLotResponse(l))
	}
	return c.JSON(out)
}

// Picking godoc
// @Summary      Sugerir picking
// @Tags         lots
// @Produce      json
// @Param        master_product_id  query  int  true  "Producto maestro"
// @Param        warehouse_id       query  int  true  "Bodega"
// @Param        quantity           query  int  true  "Cantidad a recoger"
// @Success      200  {object}  dto.PickingResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/lots/picking [get]
func (h *LotHandler) Picking(c *fiber.Ctx) error {
	master, ok1 := queryInt64(c, "master_product_id")
	warehouse, ok2 := queryInt64(c, "warehouse_id")
	qty, ok3 := queryInt64(c, "quantity")
	if !ok1 || !ok2 || !ok3 {
		return badRequest(c, "VALIDATION", "master_product_id, warehouse_id y quantity son requeridos")
	}
	res, err := h.uc.SuggestPicking(c.Context(), master, warehouse, qty)
	if err != nil {
		return writeError(c, err)
	}
	out := dto.PickingResponse{
		Lines:     make([]dto.PickLineResponse, 0, len(res.Lines)),
		Covered:   res.Covered,
		Shortfall: res.Shortfall,
	}
	for _, line := range res.Lines {
		out.Lines = append(out.Lines, dto.PickLineResponse{Lot: toLotResponse(line.Lot), Take: line.Take})
	}
	return c.JSON(out)
}

// Recommend godoc
// @Summary      Recomendar ubicación
// @Description  Primera ubicación habilitada de la bodega y categoría con capacidad libre >= footprint.
// @Tags         locations
// @Produce      json
// @Param        warehouse_id  query  int  true   "Bodega"
// @Param        footprint     query  int  true   "Huella requerida"
// @Param        category_id   query  int  false  "Categoría (vacío = ubicaciones sin categoría)"
// @Success      200  {object}  dto.LocationResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/locations/recommend [get]
func (h *LotHandler) Recommend(c *fiber.Ctx) error {
	warehouse, ok1 := queryInt64(c, "warehouse_id")
	footprint, ok2 := queryInt64(c, "footprint")
	if !ok1 || !ok2 {
		return badRequest(c, "VALIDATION", "warehouse_id y footprint son requeridos")
	}
	in := inventory.RecommendInput{WarehouseID: warehouse, RequiredFootprint: footprint}
	if category, ok := queryInt64(c, "category_id"); ok {
		in.CategoryID = &category
	}
	loc, err := h.uc.Recommend(c.Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(usecase.ToLocationResponse(loc))
}

func (h *LotHandler) batch(c *fiber.Ctx, run func(context.Context, []int64) []inventory.BatchItemResult) error {
	var in dto.LotIDsRequest
	if err := h.v.bind(c, &in); err != nil {
		return writeError(c, err)
	}
	return c.JSON(toBatchResponse(run(c.Context(), in.LotIDs)))
}

func toTransitionInput(lotID int64, in dto.TransitionRequest) (inventory.TransitionInput, error) {
	status, ok := entity.ParseLotStatus(in.Status)
	if !ok {
		return inventory.TransitionInput{}, domain.ErrInvalidStatus
	}
	return inventory.TransitionInput{
		LotID:             lotID,
		DesiredStatus:     status,
		DesiredQuantity:   in.Quantity,
		DesiredLocationID: in.LocationID,
		DetachLocation:    in.DetachLocation,
		LostQuantity:      in.LostQuantity,
	}, nil
}

func toBatchResponse(results []inventory.BatchItemResult) dto.BatchResponse {
	out := dto.BatchResponse{Items: make([]dto.BatchItemResponse, 0, len(results)), Failed: inventory.Failed(results)}
	for _, r := range results {
		item := dto.BatchItemResponse{LotID: r.LotID}
		if r.Err != nil {
			_, body := errorResponse(r.Err)
			item.Error = &body
		} else if r.Lot != nil {
			lot := toLotResponse(r.Lot)
			item.Lot = &lot
		}
		out.Items = append(out.Items, item)
	}
	return out
}

func toLotResponse(l *entity.Lot) dto.LotResponse {
	return dto.LotResponse{
		ID:                   l.ID,
		Code:                 l.Code,
		MasterProductID:      l.MasterProductID,
		UnitFootprint:        l.UnitFootprint,
		Quantity:             l.Quantity,
		Status:               string(l.Status),
		WarehouseID:          l.WarehouseID,
		LocationID:           l.LocationID,
		ReallocationSourceID: l.ReallocationSourceID,
		BlockID:              l.BlockID,
		ZoneID:               l.ZoneID,
		ReceiptID:            l.ReceiptID,
		SupplierID:           l.SupplierID,
		PackageCode:          l.PackageCode,
		ImportedAt:           l.ImportedAt,
		StorageUntil:         l.StorageUntil,
		LostAt:               l.LostAt,
		ReportedAt:           l.ReportedAt,
		LostQuantity:         l.LostQuantity,
		UpdatedAt:            l.UpdatedAt,
	}
}

func paramID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func queryInt64(c *fiber.Ctx, key string) (int64, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
