package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/rack-inventory/internal/domain"
	"github.com/jhoicas/rack-inventory/internal/domain/entity"
	"github.com/jhoicas/rack-inventory/internal/domain/repository"
	"github.com/jhoicas/rack-inventory/pkg/logger"
	"github.com/jhoicas/rack-inventory/pkg/metrics"
)

// LotUseCase motor de inventario por lotes: transiciones de estado, splits, ingreso, reubicación,
// escaneo y sugerencia de picking. Toda mutación corre en una transacción (TxRunner) junto con su
// ajuste de capacidad.
type LotUseCase struct {
	txRunner  TxRunner
	lots      repository.LotRepository
	locations repository.LocationRepository
	masters   repository.MasterProductRepository
	ledger    *Ledger
	log       *logger.Logger
	metrics   *metrics.InventoryMetrics
	now       func() time.Time
	newID     func() string
}

// NewLotUseCase construye el caso de uso. Los repositorios sin transacción se usan para lecturas
// (escaneo, recomendación, picking). log y m pueden ser nil.
func NewLotUseCase(
	txRunner TxRunner,
	lots repository.LotRepository,
	locations repository.LocationRepository,
	masters repository.MasterProductRepository,
	log *logger.Logger,
	m *metrics.InventoryMetrics,
) *LotUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &LotUseCase{
		txRunner:  txRunner,
		lots:      lots,
		locations: locations,
		masters:   masters,
		ledger:    NewLedger(log, m),
		log:       log.Named("lots"),
		metrics:   m,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// GetLot obtiene un lote por ID.
func (uc *LotUseCase) GetLot(ctx context.Context, id int64) (*entity.Lot, error) {
	lot, err := uc.lots.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get lot: %w", err)
	}
	if lot == nil {
		return nil, domain.ErrLotNotFound
	}
	return lot, nil
}

// lockLot obtiene el lote con bloqueo de fila dentro de la transacción.
func lockLot(ctx context.Context, repos Repos, id int64) (*entity.Lot, error) {
	lot, err := repos.Lots.GetForUpdate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lock lot %d: %w", id, err)
	}
	if lot == nil {
		return nil, domain.ErrLotNotFound
	}
	return lot, nil
}

// BatchItemResult resultado por lote en operaciones por lotes; cada lote se confirma por separado.
type BatchItemResult struct {
	LotID int64
	Lot   *entity.Lot
	Err   error
}

// Failed cuenta los elementos con error.
func Failed(results []BatchItemResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
