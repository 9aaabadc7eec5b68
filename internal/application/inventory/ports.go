package inventory

import (
	"context"

	"github.com/jhoicas/rack-inventory/internal/domain/repository"
)

// Repos repositorios atados a una misma transacción.
type Repos struct {
	Lots           repository.LotRepository
	Locations      repository.LocationRepository
	MasterProducts repository.MasterProductRepository
	Ledger         repository.LedgerRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error la transacción se revierte completa (lote y capacidad juntos).
type TxRunner interface {
	Run(ctx context.Context, fn func(repos Repos) error) error
}
