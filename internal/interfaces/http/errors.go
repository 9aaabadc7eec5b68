package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/rack-inventory/internal/application/dto"
	"github.com/jhoicas/rack-inventory/internal/domain"
)

// localsErrorKey guarda la causa de un 500 para que la registre el logger de requests.
const localsErrorKey = "request_error"

type errorMapping struct {
	target error
	status int
	code   string
}

// El orden importa: los sentinels específicos van antes que los genéricos.
var errorMappings = []errorMapping{
	{domain.ErrLotNotFound, fiber.StatusNotFound, "LOT_NOT_FOUND"},
	{domain.ErrLocationNotFound, fiber.StatusNotFound, "LOCATION_NOT_FOUND"},
	{domain.ErrMasterProductNotFound, fiber.StatusNotFound, "MASTER_PRODUCT_NOT_FOUND"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrCapacityExceeded, fiber.StatusConflict, "CAPACITY_EXCEEDED"},
	{domain.ErrCapacityUnderflow, fiber.StatusConflict, "CAPACITY_UNDERFLOW"},
	{domain.ErrNoSuitableLocation, fiber.StatusConflict, "NO_SUITABLE_LOCATION"},
	{domain.ErrLocationInUse, fiber.StatusConflict, "LOCATION_IN_USE"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrInvalidQuantity, fiber.StatusUnprocessableEntity, "INVALID_QUANTITY"},
	{domain.ErrInvalidStatus, fiber.StatusUnprocessableEntity, "INVALID_STATUS"},
	{domain.ErrInvalidWorkflowParameters, fiber.StatusBadRequest, "INVALID_WORKFLOW_PARAMETERS"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
}

// errorResponse traduce un error de caso de uso a status HTTP y cuerpo.
// Los errores sin sentinel conocido son 500 con mensaje genérico.
func errorResponse(err error) (int, dto.ErrorResponse) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Message: verr.Error()}
	}
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, dto.ErrorResponse{Code: m.code, Message: err.Error()}
		}
	}
	return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"}
}

func writeError(c *fiber.Ctx, err error) error {
	status, body := errorResponse(err)
	if status == fiber.StatusInternalServerError {
		c.Locals(localsErrorKey, err)
	}
	return c.Status(status).JSON(body)
}

func badRequest(c *fiber.Ctx, code, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

// fiberErrorHandler responde errores de fiber (ruta inexistente, método, panic recuperado) con ErrorResponse.
func fiberErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := "HTTP_ERROR"
		switch fe.Code {
		case fiber.StatusNotFound:
			code = "ROUTE_NOT_FOUND"
		case fiber.StatusMethodNotAllowed:
			code = "METHOD_NOT_ALLOWED"
		case fiber.StatusRequestEntityTooLarge:
			code = "BODY_TOO_LARGE"
		}
		return c.Status(fe.Code).JSON(dto.ErrorResponse{Code: code, Message: fe.Message})
	}
	return writeError(c, err)
}
