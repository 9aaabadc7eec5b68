package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/rack-inventory/internal/application/dto"
	"github.com/jhoicas/rack-inventory/internal/application/usecase"
)

// LocationService operaciones de racks (implementado por usecase.LocationUseCase).
type LocationService interface {
	Create(ctx context.Context, in dto.CreateLocationRequest) (*dto.LocationResponse, error)
	CreateBatch(ctx context.Context, in dto.CreateLocationBatchRequest) ([]dto.LocationResponse, error)
	GetByID(ctx context.Context, id int64) (*dto.LocationResponse, error)
	List(ctx context.Context, warehouseID int64, limit, offset int) (*dto.LocationListResponse, error)
	Remove(ctx context.Context, id int64) error
	Ledger(ctx context.Context, id int64, limit int) ([]dto.LedgerEntryResponse, error)
}

var _ LocationService = (*usecase.LocationUseCase)(nil)

// LocationHandler maneja las peticiones HTTP de racks.
type LocationHandler struct {
	uc LocationService
	v  *RequestValidator
}

// NewLocationHandler construye el handler.
func NewLocationHandler(uc LocationService, v *RequestValidator) *LocationHandler {
	return &LocationHandler{uc: uc, v: v}
}

// Create godoc
// @Summary      Crear rack
// @Tags         locations
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateLocationRequest  true  "Estantería, posición y capacidad"
// @Success      201   {object}  dto.LocationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/locations [post]
func (h *LocationHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateLocationRequest
	if err := h.v.bind(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.Create(c.Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// CreateBatch godoc
// @Summary      Crear racks de una estantería
// @Description  Crea count racks numerados a continuación de los existentes (SHELF_RACKNN).
// @Tags         locations
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateLocationBatchRequest  true  "Estantería y cantidad"
// @Success      201   {array}   dto.LocationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/locations/batch [post]
func (h *LocationHandler) CreateBatch(c *fiber.Ctx) error {
	var in dto.CreateLocationBatchRequest
	if err := h.v.bind(c, &in); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.CreateBatch(c.Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener rack por ID
// @Tags         locations
// @Produce      json
// @Param        id   path  int  true  "ID del rack"
// @Success      200  {object}  dto.LocationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/locations/{id} [get]
func (h *LocationHandler) GetByID(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badRequest(c, "MISSING_ID", "id inválido")
	}
	out, err := h.uc.GetByID(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar racks de una bodega
// @Tags         locations
// @Produce      json
// @Param        warehouse_id  query  int  true   "Bodega"
// @Param        limit         query  int  false  "Límite"  default(20)
// @Param        offset        query  int  false  "Offset"  default(0)
// @Success      200  {object}  dto.LocationListResponse
// @Router       /api/locations [get]
func (h *LocationHandler) List(c *fiber.Ctx) error {
	warehouseID, ok := queryInt64(c, "warehouse_id")
	if !ok {
		return badRequest(c, "VALIDATION", "warehouse_id es requerido")
	}
	page := dto.PageRequest{Limit: c.QueryInt("limit", 20), Offset: c.QueryInt("offset", 0)}
	page.DefaultPage()
	if page.Limit > 100 {
		page.Limit = 100
	}
	out, err := h.uc.List(c.Context(), warehouseID, page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Remove godoc
// @Summary      Retirar rack
// @Description  Marca el rack como DISABLE. Falla con 409 LOCATION_IN_USE si aún tiene lotes.
// @Tags         locations
// @Param        id   path  int  true  "ID del rack"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/locations/{id} [delete]
func (h *LocationHandler) Remove(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badRequest(c, "MISSING_ID", "id inválido")
	}
	if err := h.uc.Remove(c.Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Ledger godoc
// @Summary      Historial de capacidad de un rack
// @Tags         locations
// @Produce      json
// @Param        id     path   int  true   "ID del rack"
// @Param        limit  query  int  false  "Máximo de entradas"  default(50)
// @Success      200  {array}   dto.LedgerEntryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/locations/{id}/ledger [get]
func (h *LocationHandler) Ledger(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return badRequest(c, "MISSING_ID", "id inválido")
	}
	out, err := h.uc.Ledger(c.Context(), id, c.QueryInt("limit", 0))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
