package lot

import "github.com/jhoicas/rack-inventory/internal/domain/entity"

// Tipos de flujo de escaneo.
const (
	WorkflowInboundTemporary = "inbound-temporary"
	WorkflowOutboundPicking  = "outbound-picking"
	WorkflowStoring          = "storing"
	WorkflowReallocate       = "reallocate"
	WorkflowInboundControl   = "inbound-control"
)

var workflowStatuses = map[string][]entity.LotStatus{
	WorkflowInboundTemporary: {entity.LotStatusTemporaryOut, entity.LotStatusNew},
	WorkflowOutboundPicking:  {entity.LotStatusReallocate, entity.LotStatusTemporary, entity.LotStatusStored, entity.LotStatusMoving},
	WorkflowStoring:          {entity.LotStatusReallocate, entity.LotStatusTemporary},
	WorkflowReallocate:       {entity.LotStatusReallocate, entity.LotStatusStored},
	WorkflowInboundControl:   {entity.LotStatusReallocate, entity.LotStatusMoving},
}

// AllowedStatuses devuelve los estados que acepta un flujo de escaneo (copia) y si el flujo existe.
func AllowedStatuses(workflow string) ([]entity.LotStatus, bool) {
	st, ok := workflowStatuses[workflow]
	if !ok {
		return nil, false
	}
	return append([]entity.LotStatus(nil), st...), true
}
