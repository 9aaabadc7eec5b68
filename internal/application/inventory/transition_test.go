package inventory_test

import (
	"context"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/rack-inventory/internal/application/inventory"
	"github.com/jhoicas/rack-inventory/internal/domain"
	"github.com/jhoicas/rack-inventory/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testWarehouse = int64(1)
	testMaster    = int64(1)
)

func newEngine(t *testing.T) (*inventory.LotUseCase, *memStore) {
	t.Helper()
	s := newMemStore()
	uc := inventory.NewLotUseCase(&memTx{s: s}, &memLots{s: s}, &memLocations{s: s}, &memMasters{s: s}, nil, nil)
	return uc, s
}

// seedRack crea una ubicación vacía de la bodega de prueba.
func seedRack(s *memStore, id, total int64) {
	s.addLocation(entity.Location{ID: id, Code: "S1_RACK0" + string(rune('0'+id)), WarehouseID: testWarehouse, TotalCapacity: total})
}

// seedStoredLot siembra un lote STORED coherente: ocupa capacidad y suma disponible.
func seedStoredLot(s *memStore, code string, qty, footprint, locationID int64) *entity.Lot {
	l := s.addLot(entity.Lot{
		Code: code, MasterProductID: testMaster, UnitFootprint: footprint, Quantity: qty,
		Status: entity.LotStatusStored, WarehouseID: testWarehouse, LocationID: ptr(locationID),
	})
	s.locations[locationID].UsedCapacity += qty * footprint
	s.masters[testMaster].AvailableQuantity += qty
	return l
}

func assertInvariant(t *testing.T, s *memStore) {
	t.Helper()
	for id := range s.locations {
		loc := s.location(id)
		assert.Equal(t, s.expectedUsed(id), loc.UsedCapacity, "capacidad usada de la ubicación %d debe coincidir con sus lotes", id)
		assert.GreaterOrEqual(t, loc.UsedCapacity, int64(0))
		assert.LessOrEqual(t, loc.UsedCapacity, loc.TotalCapacity)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenarios base
// ──────────────────────────────────────────────────────────────────────────────

func TestTransition_NewAStoredOcupaCapacidad(t *testing.T) {
	uc, s := newEngine(t)
	seedRack(s, 1, 100)
	s.addMaster(entity.MasterProduct{ID: testMaster, UnitFootprint: 10})
	l := s.addLot(entity.Lot{Code: "PROD1", MasterProductID: testMaster, UnitFootprint: 10, Quantity: 5,
		Status: entity.LotStatusNew, WarehouseID: testWarehouse, LocationID: ptr(int64(1))})

	res, err := uc.Transition(context.Background(), inventory.TransitionInput{LotID: l.ID, DesiredStatus: entity.LotStatusStored})
	require.NoError(t, err)

	assert.Equal(t, entity.LotStatusStored, res.Lot.Status)
	assert.Nil(t, res.Created)
	assert.Equal(t, int64(50), s.location(1).UsedCapacity)
	assert.Equal(t, entity.LocationStatusEnable, s.location(1).Status)
	assert.Equal(t, int64(5), s.master(testMaster).AvailableQuantity, "entrar en STORED suma disponible")
	require.Len(t, s.ledger, 1)
	assert.Equal(t, entity.DirectionIncrement, s.ledger[0].Direction)
	assert.Equal(t, int64(50), s.ledger[0].Footprint)
	assertInvariant(t, s)
}

func TestTransition_StoredADisableLiberaCapacidad(t *testing.T) {
	uc, s := newEngine(t)
	seedRack(s, 1, 100)
	s.addMaster(entity.MasterProduct{ID: testMaster, UnitFootprint: 10})
	l := seedStoredLot(s, "PROD1", 5, 10, 1)

	lot, err := uc.Disable(context.Background(), l.ID)
	require.NoError(t, err)

	assert.Equal(t, entity.LotStatusDisable, lot.Status)
	assert.Equal(t, int64(0), s.location(1).UsedCapacity)
	assert.Equal(t, int64(0), s.master(testMaster).AvailableQuantity)
	assertInvariant(t, s)
}

func TestTransition_LlenarUbicacionLaMarcaFull(t *testing.T) {
	uc, s := newEngine(t)
	seedRack(s, 1, 50)
	s.addMaster(entity.MasterProduct{ID: testMaster})
	l := s.addLot(entity.Lot{Code: "PROD1", MasterProductID: testMaster, UnitFootprint: 10, Quantity: 5,
		Status: entity.LotStatusNew, WarehouseID: testWarehouse})

	_, err := uc.Transition(context.Background(), inventory.TransitionInput{
		LotID: l.ID, DesiredStatus: entity.LotStatusMoving, DesiredLocationID: ptr(int64(1)),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(50), s.location(1).UsedCapacity)
	assert.Equal(t, entity.LocationStatusFull, s.location(1).Status)
	assert.Equal(t, int64(0), s.master(testMaster).AvailableQuantity, "MOVING no cuenta como disponible")
}

// ──────────────────────────────────────────────────────────────────────────────
// Cambio de ubicación y límites
// ──────────────────────────────────────────────────────────────────────────────

func TestTransition_CambioDeUbicacionMueveLaHuella(t *testing.T) {
	uc, s := newEngine(t)
	seedRack(s, 1, 100)
	seedRack(s, 2, 100)
	s.addMaster(entity.MasterProduct{ID: testMaster})
	l := seedStoredLot(s, "PROD1", 2, 10, 1)

	res, err := uc.Transition(context.Background(), inventory.TransitionInput{
		LotID: l.ID, DesiredStatus: entity.LotStatusStored, DesiredLocationID: ptr(int64(2)),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2), *res.Lot.LocationID)
	assert.Equal(t, int64(0), s.location(1).UsedCapacity)
	assert.Equal(t, int64(20), s.location(2).UsedCapacity)
	assert.Equal(t, int64(2), s.master(testMaster).AvailableQuantity, "STORED a STORED no cambia disponible")
	require.Len(t, s.ledger, 2)
	assert.Equal(t, entity.DirectionDecrement, s.ledger[0].Direction, "se libera antes de reservar")
	assertInvariant(t, s)
}

func TestTransition_CapacidadExcedidaRevierteTodo(t *testing.T) {
	uc, s := newEngine(t)
	seedRack(s, 1, 100)
	seedRack(s, 2, 10)
	s.addMaster(entity.MasterProduct{ID: testMaster})
	l := seedStoredLot(s, "PROD1", 2, 10, 1)

	_, err := uc.Transition(context.Background(), inventory.TransitionInput{
		LotID: l.ID, DesiredStatus: entity.LotStatusStored, DesiredLocationID: ptr(int64(2)),
	})
	require.ErrorIs(t, err, domain.ErrCapacityExceeded)

	assert.Equal(t, int64(20), s.location(1).UsedCapacity, "el DECREMENT previo se revierte")
	assert.Equal(t, int64(0), s.location(2).UsedCapacity)
	assert.Equal(t, int64(1), *s.lot(l.ID).LocationID, "el lote no cambia de ubicación")
	assert.Empty(t, s.ledger)
	assertInvariant(t, s)
}

func TestTransition_UnderflowNoModificaEstado(t *testing.T) {
	uc, s := newEngine(t)
	seedRack(s, 1, 100)
	s.addMaster(entity.MasterProduct{ID: testMaster})
	l := s.addLot(entity.Lot{Code: "PROD1", MasterProductID: testMaster, UnitFootprint: 10, Quantity: 5,
		Status: entity.LotStatusStored, WarehouseID: testWarehouse, LocationID: ptr(int64(1))})

	_, err := uc.Transition(context.Background(), inventory.TransitionInput{LotID: l.ID, DesiredStatus: entity.LotStatusPicking})
	require.ErrorIs(t, err, domain.ErrCapacityUnderflow)

	assert.Equal(t, entity.LotStatusStored, s.lot(l.ID).Status)
	assert.Equal(t, int64(0), s.location(1).UsedCapacity)
}

func TestTransition_CambioDeCantidadAplicaDiferencia(t *testing.T) {
	uc, s := newEngine(t)
	seedRack(s, 1, 100)
	s.addMaster(entity.MasterProduct{ID: testMaster})
	l := seedStoredLot(s, "PROD1", 5, 10, 1)
	ctx := context.Background()

	_, err := uc.Transition(ctx, inventory.TransitionInput{LotID: l.ID, DesiredStatus: entity.LotStatusStored, DesiredQuantity: ptr(int64(8))})
	require.NoError(t, err)
	assert.Equal(t, int64(80), s.location(1).UsedCapacity)
	assert.Equal(t, int64(8), s.master(testMaster).AvailableQuantity)

	_, err = uc.Transition(ctx, inventory.TransitionInput{LotID: l.ID, DesiredStatus: entity.LotStatusStored, DesiredQuantity: ptr(int64(3))})
	require.NoError(t, err)
	assert.Equal(t, int64(30), s.location(1).UsedCapacity)
	assert.Equal(t, int64(3), s.master(testMaster).AvailableQuantity)

	_, err = uc.Transition(ctx, inventory.TransitionInput{LotID: l.ID, DesiredStatus: entity.LotStatusStored, DesiredQuantity: ptr(int64(11))})
	require.ErrorIs(t, err, domain.ErrCapacityExceeded)
	assert.Equal(t, int64(3), s.lot(l.ID).Quantity)
	assertInvariant(t, s)
}

func TestTransition_IdempotenteSobreCapacidad(t *testing.T) {
	uc, s := newEngine(t)
	seedRack(s, 1, 100)
	s.addMaster(entity.MasterProduct{ID: testMaster})
	l := s.addLot(entity.Lot{Code: "PROD1", MasterProductID: testMaster, UnitFootprint: 10, Quantity: 5,
		Status: entity.LotStatusNew, WarehouseID: testWarehouse})
	in := inventory.TransitionInput{LotID: l.ID, DesiredStatus: entity.LotStatusStored, DesiredQuantity: ptr(int64(5)), DesiredLocationID: ptr(int64(1))}

	_, err := uc.Transition(context.Background(), in)
	require.NoError(t, err)
	entries := len(s.ledger)

	_, err = uc.Transition(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, int64(50), s.location(1).UsedCapacity, "la segunda llamada no duplica deltas")
	assert.Equal(t, int64(5), s.master(testMaster).AvailableQuantity)
	assert.Len(t, s.ledger, entries)
}

func TestTransition_AfectaCapacidadConCantidadCeroEsInvalido(t *testing.T) {
	uc, s := newEngine(t)
	seedRack(s, 1, 100)
	s.addMaster(entity.MasterProduct{ID: testMaster})
	l := s.addLot(entity.Lot{Code: "PROD1", MasterProductID: testMaster, UnitFootprint: 10, Quantity: 0,
		Status: entity.LotStatusNew, WarehouseID: testWarehouse, LocationID: ptr(int64(1))})

	_, err := uc.Transition(context.Background(), inventory.TransitionInput{LotID: l.ID, DesiredStatus: entity.LotStatusTemporary})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestTransition_ErroresDeEntrada(t *testing.T) {
	uc, s := newEngine(t)
	seedRack(s, 1, 100)
	s.addMaster(entity.MasterProduct{ID: testMaster})
	l := s.addLot(entity.Lot{Code: "PROD1", MasterProductID: testMaster, UnitFootprint: 1, Quantity: 1,
		Status: entity.LotStatusNew, WarehouseID: testWarehouse})
	ctx := context.Background()

	_, err := uc.Transition(ctx, inventory.TransitionInput{LotID: 999, DesiredStatus: entity.LotStatusStored})
	assert.ErrorIs(t, err, domain.ErrLotNotFound)

	_, err = uc.Transition(ctx, inventory.TransitionInput{LotID: l.ID, DesiredStatus: "SHIPPED"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = uc.Transition(ctx, inventory.TransitionInput{LotID: l.ID, DesiredStatus: entity.LotStatusStored, DesiredLocationID: ptr(int64(42))})
	assert.ErrorIs(t, err, domain.ErrLocationNotFound)

	_, err = uc.Transition(ctx, inventory.TransitionInput{LotID: l.ID, DesiredStatus: entity.LotStatusStored, DesiredQuantity: ptr(int64(-1))})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = uc.Transition(ctx, inventory.TransitionInput{LotID: l.ID, DesiredStatus: entity.LotStatusStored, DetachLocation: true, DesiredLocationID: ptr(int64(1))})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTransition_EstadoConCapacidadRequiereUbicacion(t *testing.T) {
	uc, s := newEngine(t)
	seedRack(s, 1, 100)
	s.addMaster(entity.MasterProduct{ID: testMaster})
	unplaced := s.addLot(entity.Lot{Code: "PROD1", MasterProductID: testMaster, UnitFootprint: 1, Quantity: 4,
		Status: entity.LotStatusNew, WarehouseID: testWarehouse})
	ctx := context.Background()

	for _, status := range []entity.LotStatus{entity.LotStatusStored, entity.LotStatusMoving, entity.LotStatusTemporary} {
		_, err := uc.Transition(ctx, inventory.TransitionInput{LotID: unplaced.ID, DesiredStatus: status})
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "%s sin ubicación", status)
	}
	assert.Equal(t, entity.LotStatusNew, s.lot(unplaced.ID).Status)
	assert.Equal(t, int64(0), s.master(testMaster).AvailableQuantity, "no se suma disponible sin ubicación")

	stored := seedStoredLot(s, "PROD2", 3, 1, 1)
	_, err := uc.Transition(ctx, inventory.TransitionInput{LotID: stored.ID, DesiredStatus: entity.LotStatusStored, DetachLocation: true})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "un lote STORED no puede quedar sin ubicación")
	assertInvariant(t, s)
}

func TestTransition_RecuperacionSinUbicacionEsInvalida(t *testing.T) {
	uc, s := newEngine(t)
	seedRack(s, 1, 100)
	s.addMaster(entity.MasterProduct{ID: testMaster})
	l := s.addLot(entity.Lot{Code: "PROD5", MasterProductID: testMaster, UnitFootprint: 1, Quantity: 2,
		Status: entity.LotStatusLost, WarehouseID: testWarehouse})

	_, err := uc.Transition(context.Background(), inventory.TransitionInput{LotID: l.ID, DesiredStatus: entity.LotStatusTemporary})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, entity.LotStatusLost, s.lot(l.ID).Status)
	assert.Equal(t, "PROD5", s.lot(l.ID).Code, "el código no cambia")
}

func TestTransition_ErrorParcialNoAdmiteOtrosCambios(t *testing.T) {
	uc, s := newEngine(t)
	seedRack(s, 1, 100)
	seedRack(s, 2, 100)
	s.addMaster(entity.MasterProduct{ID: testMaster})
	l := seedStoredLot(s, "PROD6", 10, 1, 1)
	ctx := context.Background()

	cases := map[string]inventory.TransitionInput{
		"con ubicación": {LotID: l.ID, DesiredStatus: entity.LotStatusError, LostQuantity: ptr(int64(2)), DesiredLocationID: ptr(int64(2))},
		"con cantidad":  {LotID: l.ID, DesiredStatus: entity.LotStatusError, LostQuantity: ptr(int64(2)), DesiredQuantity: ptr(int64(7))},
		"desasignando":  {LotID: l.ID, DesiredStatus: entity.LotStatusError, LostQuantity: ptr(int64(2)), DetachLocation: true},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := uc.Transition(ctx, in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
	assert.Equal(t, int64(10), s.lot(l.ID).Quantity, "el lote no se modifica")
	assert.Equal(t, int64(10), s.location(1).UsedCapacity)
	assert.Empty(t, s.lotsByCodePrefix("PROD6_T"), "no se separa ningún lote")
}

// ──────────────────────────────────────────────────────────────────────────────
// ERROR / LOST
// ──────────────────────────────────────────────────────────────────────────────

func TestTransition_ErrorParcialSeparaLoPerdido(t *testing.T) {
	uc, s := newEngine(t)
	seedRack(s, 1, 100)
	s.addMaster(entity.MasterProduct{ID: testMaster})
	l := seedStoredLot(s, "PROD1", 10, 10, 1)

	res, err := uc.Transition(context.Background(), inventory.TransitionInput{
		LotID: l.ID, DesiredStatus: entity.LotStatusError, LostQuantity: ptr(int64(5)),
	})
	require.NoError(t, err)

	assert.Equal(t, entity.LotStatusStored, res.Lot.Status, "el original conserva su estado previo")
	assert.Equal(t, int64(5), res.Lot.Quantity)
	assert.Equal(t, "PROD1", res.Lot.Code)

	require.NotNil(t, res.Created)
	assert.Equal(t, entity.LotStatusError, res.Created.Status)
	assert.Equal(t, int64(5), res.Created.Quantity)
	assert.Equal(t, "PROD1_T1", res.Created.Code)
	assert.Equal(t, int64(1), *res.Created.LocationID, "conserva la referencia de ubicación")
	assert.NotNil(t, res.Created.ReportedAt)
	assert.Equal(t, int64(5), *res.Created.LostQuantity)

	assert.Equal(t, int64(50), s.location(1).UsedCapacity, "la capacidad se reduce a la mitad")
	assert.Equal(t, int64(5), s.master(testMaster).AvailableQuantity)
	assertInvariant(t, s)
}

func TestTransition_ErrorParcialConCantidadTotalEsInvalido(t *testing.T) {
	uc, s := newEngine(t)
	seedRack(s, 1, 100)
	s.addMaster(entity.MasterProduct{ID: testMaster})
	l := seedStoredLot(s, "PROD1", 4, 10, 1)

	_, err := uc.Transition(context.Background(), inventory.TransitionInput{
		LotID: l.ID, DesiredStatus: entity.LotStatusError, LostQuantity: ptr(int64(4)),
	})
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)
	assert.Equal(t, entity.LotStatusStored, s.lot(l.ID).Status)
	assert.Len(t, s.lotsByCodePrefix("PROD1"), 1, "no se crea lote")
}

func TestTransition_ErrorTotalLiberaCapacidad(t *testing.T) {
	uc, s := newEngine(t)
	seedRack(s, 1, 100)
	s.addMaster(entity.MasterProduct{ID: testMaster})
	l := seedStoredLot(s, "PROD1", 4, 10, 1)

	res, err := uc.Transition(context.Background(), inventory.TransitionInput{LotID: l.ID, DesiredStatus: entity.LotStatusError})
	require.NoError(t, err)

	assert.Equal(t, entity.LotStatusError, res.Lot.Status)
	assert.Equal(t, int64(4), *res.Lot.LostQuantity)
	assert.NotNil(t, res.Lot.ReportedAt)
	assert.Equal(t, int64(0), s.location(1).UsedCapacity)
	assert.Equal(t, int64(0), s.master(testMaster).AvailableQuantity)
	assertInvariant(t, s)
}

func TestTransition_ErrorALostSinTrabajoDeCapacidad(t *testing.T) {
	uc, s := newEngine(t)
	seedRack(s, 1, 100)
	s.addMaster(entity.MasterProduct{ID: testMaster})
	l := s.addLot(entity.Lot{Code: "PROD1", MasterProductID: testMaster, UnitFootprint: 10, Quantity: 3,
		Status: entity.LotStatusError, WarehouseID: testWarehouse, LocationID: ptr(int64(1))})

	res, err := uc.Transition(context.Background(), inventory.TransitionInput{
		LotID: l.ID, DesiredStatus: entity.LotStatusLost, LostQuantity: ptr(int64(1)),
	})
	require.NoError(t, err)

	assert.Equal(t, entity.LotStatusLost, res.Lot.Status)
	assert.Nil(t, res.Created, "ERROR a LOST no separa")
	assert.NotNil(t, res.Lot.LostAt)
	assert.Equal(t, int64(0), s.location(1).UsedCapacity)
	assert.Empty(t, s.ledger)
}

func TestTransition_RecuperacionTotalRecodificaATemporary(t *testing.T) {
	uc, s := newEngine(t)
	seedRack(s, 1, 100)
	s.addMaster(entity.MasterProduct{ID: testMaster})
	l := s.addLot(entity.Lot{Code: "PROD3", MasterProductID: testMaster, UnitFootprint: 10, Quantity: 4,
		Status: entity.LotStatusError, WarehouseID: testWarehouse, LocationID: ptr(int64(1)), LostQuantity: ptr(int64(4))})

	res, err := uc.Transition(context.Background(), inventory.TransitionInput{LotID: l.ID, DesiredStatus: entity.LotStatusStored})
	require.NoError(t, err)

	assert.Equal(t, l.ID, res.Lot.ID)
	assert.Equal(t, entity.LotStatusTemporary, res.Lot.Status)
	assert.Equal(t, "PROD3_T0", res.Lot.Code)
	assert.Nil(t, res.Lot.LostQuantity)
	assert.Equal(t, int64(40), s.location(1).UsedCapacity)
	assert.Equal(t, int64(0), s.master(testMaster).AvailableQuantity, "TEMPORARY no suma disponible")
	assert.Contains(t, s.prefixLocks, "PROD3")
	assertInvariant(t, s)
}

func TestTransition_RecuperacionParcialSeparaLoRecuperado(t *testing.T) {
	uc, s := newEngine(t)
	seedRack(s, 1, 100)
	s.addMaster(entity.MasterProduct{ID: testMaster})
	l := s.addLot(entity.Lot{Code: "PROD4", MasterProductID: testMaster, UnitFootprint: 10, Quantity: 10,
		Status: entity.LotStatusLost, WarehouseID: testWarehouse, LocationID: ptr(int64(1))})

	res, err := uc.Transition(context.Background(), inventory.TransitionInput{
		LotID: l.ID, DesiredStatus: entity.LotStatusTemporary, DesiredQuantity: ptr(int64(3)),
	})
	require.NoError(t, err)

	assert.Equal(t, entity.LotStatusLost, res.Lot.Status, "el resto queda en su estado terminal")
	assert.Equal(t, int64(7), res.Lot.Quantity)
	require.NotNil(t, res.Created)
	assert.Equal(t, entity.LotStatusTemporary, res.Created.Status)
	assert.Equal(t, int64(3), res.Created.Quantity)
	assert.Equal(t, "PROD4_T0", res.Created.Code)
	assert.Equal(t, int64(30), s.location(1).UsedCapacity, "solo se reserva lo recuperado")
	assertInvariant(t, s)
}

func TestTransition_RecuperacionMayorALaCantidadEsInvalida(t *testing.T) {
	uc, s := newEngine(t)
	seedRack(s, 1, 100)
	s.addMaster(entity.MasterProduct{ID: testMaster})
	l := s.addLot(entity.Lot{Code: "PROD4", MasterProductID: testMaster, UnitFootprint: 10, Quantity: 2,
		Status: entity.LotStatusLost, WarehouseID: testWarehouse, LocationID: ptr(int64(1))})

	_, err := uc.Transition(context.Background(), inventory.TransitionInput{
		LotID: l.ID, DesiredStatus: entity.LotStatusStored, DesiredQuantity: ptr(int64(3)),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

// ──────────────────────────────────────────────────────────────────────────────
// REALLOCATE
// ──────────────────────────────────────────────────────────────────────────────

func TestTransition_ReallocateRetieneOrigenHastaStored(t *testing.T) {
	uc, s := newEngine(t)
	seedRack(s, 1, 100)
	seedRack(s, 2, 100)
	s.addMaster(entity.MasterProduct{ID: testMaster})
	l := seedStoredLot(s, "PROD1", 2, 10, 1)
	ctx := context.Background()

	res, err := uc.Transition(ctx, inventory.TransitionInput{
		LotID: l.ID, DesiredStatus: entity.LotStatusReallocate, DesiredLocationID: ptr(int64(2)),
	})
	require.NoError(t, err)
	require.NotNil(t, res.Lot.ReallocationSourceID)
	assert.Equal(t, int64(1), *res.Lot.ReallocationSourceID)
	assert.Equal(t, int64(20), s.location(1).UsedCapacity, "el origen retiene la huella")
	assert.Equal(t, int64(0), s.location(2).UsedCapacity)
	assert.Equal(t, int64(0), s.master(testMaster).AvailableQuantity, "salir de STORED resta disponible")
	assertInvariant(t, s)

	res, err = uc.Transition(ctx, inventory.TransitionInput{LotID: l.ID, DesiredStatus: entity.LotStatusStored})
	require.NoError(t, err)
	assert.Nil(t, res.Lot.ReallocationSourceID)
	assert.Equal(t, int64(0), s.location(1).UsedCapacity, "se libera la retención del origen")
	assert.Equal(t, int64(20), s.location(2).UsedCapacity)
	assert.Equal(t, int64(2), s.master(testMaster).AvailableQuantity)
	assertInvariant(t, s)
}

func TestCancelReallocation_VuelveAlOrigen(t *testing.T) {
	uc, s := newEngine(t)
	seedRack(s, 1, 100)
	seedRack(s, 2, 100)
	s.addMaster(entity.MasterProduct{ID: testMaster})
	l := seedStoredLot(s, "PROD1", 2, 10, 1)
	other := seedStoredLot(s, "PROD2", 1, 10, 2)
	ctx := context.Background()
	_, err := uc.Transition(ctx, inventory.TransitionInput{
		LotID: l.ID, DesiredStatus: entity.LotStatusReallocate, DesiredLocationID: ptr(int64(2)),
	})
	require.NoError(t, err)

	results := uc.CancelReallocation(ctx, []int64{l.ID, other.ID})
	require.Len(t, results, 2)
	require.NoError(t, results[0].Err)
	assert.Equal(t, entity.LotStatusStored, results[0].Lot.Status)
	assert.Equal(t, int64(1), *results[0].Lot.LocationID)
	assert.ErrorIs(t, results[1].Err, domain.ErrInvalidStatus, "solo se cancelan lotes en REALLOCATE")
	assert.Equal(t, 1, inventory.Failed(results))

	assert.Equal(t, int64(20), s.location(1).UsedCapacity)
	assert.Equal(t, int64(10), s.location(2).UsedCapacity)
	assert.Equal(t, int64(3), s.master(testMaster).AvailableQuantity)
	assertInvariant(t, s)
}

// ──────────────────────────────────────────────────────────────────────────────
// Propiedades
// ──────────────────────────────────────────────────────────────────────────────

// Secuencias pseudoaleatorias de transiciones nunca rompen el invariante de capacidad,
// tengan éxito o fallen.
func TestTransition_InvarianteDeCapacidadEnSecuencias(t *testing.T) {
	uc, s := newEngine(t)
	seedRack(s, 1, 120)
	seedRack(s, 2, 80)
	seedRack(s, 3, 200)
	s.addMaster(entity.MasterProduct{ID: testMaster})
	var ids []int64
	for i := 0; i < 6; i++ {
		l := s.addLot(entity.Lot{Code: "PROD" + string(rune('A'+i)), MasterProductID: testMaster,
			UnitFootprint: int64(i%3 + 1), Quantity: int64(5 + i), Status: entity.LotStatusNew, WarehouseID: testWarehouse})
		ids = append(ids, l.ID)
	}

	rng := rand.New(rand.NewSource(42))
	ctx := context.Background()
	for step := 0; step < 400; step++ {
		in := inventory.TransitionInput{
			LotID:         ids[rng.Intn(len(ids))],
			DesiredStatus: entity.AllLotStatuses[rng.Intn(len(entity.AllLotStatuses))],
		}
		switch rng.Intn(4) {
		case 0:
			in.DesiredLocationID = ptr(int64(rng.Intn(3) + 1))
		case 1:
			in.DesiredQuantity = ptr(int64(rng.Intn(12)))
		case 2:
			if in.DesiredStatus == entity.LotStatusError {
				in.LostQuantity = ptr(int64(rng.Intn(6)))
			}
		}
		res, _ := uc.Transition(ctx, in)
		if res != nil && res.Created != nil {
			ids = append(ids, res.Created.ID)
		}
		assertInvariant(t, s)
	}
}

func TestTransition_ConcurrenciaNoSobrepasaCapacidad(t *testing.T) {
	uc, s := newEngine(t)
	seedRack(s, 1, 100)
	s.addMaster(entity.MasterProduct{ID: testMaster})
	var ids []int64
	for i := 0; i < 20; i++ {
		l := s.addLot(entity.Lot{Code: "PROD", MasterProductID: testMaster, UnitFootprint: 10, Quantity: 1,
			Status: entity.LotStatusNew, WarehouseID: testWarehouse, LocationID: ptr(int64(1))})
		ids = append(ids, l.ID)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok       int
		exceeded int
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, err := uc.Transition(context.Background(), inventory.TransitionInput{LotID: id, DesiredStatus: entity.LotStatusStored})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if assert.ErrorIs(t, err, domain.ErrCapacityExceeded) {
				exceeded++
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 10, ok)
	assert.Equal(t, 10, exceeded)
	assert.Equal(t, int64(100), s.location(1).UsedCapacity)
	assert.Equal(t, entity.LocationStatusFull, s.location(1).Status)
	assertInvariant(t, s)
}
