package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound                  = errors.New("recurso no encontrado")
	ErrLotNotFound               = errors.New("lote no encontrado")
	ErrLocationNotFound          = errors.New("ubicación no encontrada")
	ErrMasterProductNotFound     = errors.New("producto maestro no encontrado")
	ErrCapacityExceeded          = errors.New("capacidad de la ubicación excedida")
	ErrCapacityUnderflow         = errors.New("la capacidad usada no puede ser negativa")
	ErrInvalidQuantity           = errors.New("cantidad inválida")
	ErrNoSuitableLocation        = errors.New("no hay ubicación disponible con capacidad suficiente")
	ErrInvalidWorkflowParameters = errors.New("parámetros de flujo de escaneo inválidos")
	ErrInvalidStatus             = errors.New("estado inválido")
	ErrInvalidInput              = errors.New("entrada inválida")
	ErrLocationInUse             = errors.New("la ubicación todavía tiene lotes asignados")
	ErrConflict                  = errors.New("conflicto con el estado actual")
)
