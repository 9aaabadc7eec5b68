package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/rack-inventory/internal/domain"
	"github.com/jhoicas/rack-inventory/internal/domain/entity"
)

func TestSplit_DerivaCodigoYConservaCapacidad(t *testing.T) {
	uc, s := newEngine(t)
	seedRack(s, 1, 500)
	s.addMaster(entity.MasterProduct{ID: testMaster})
	l := seedStoredLot(s, "PROD7", 20, 10, 1)
	usedBefore := s.location(1).UsedCapacity

	res, err := uc.Split(context.Background(), l.ID, 8)
	require.NoError(t, err)

	assert.Equal(t, l.ID, res.Remainder.ID)
	assert.Equal(t, "PROD7", res.Remainder.Code)
	assert.Equal(t, int64(12), res.Remainder.Quantity)
	assert.NotEqual(t, l.ID, res.Created.ID)
	assert.Equal(t, "PROD7_T1", res.Created.Code)
	assert.Equal(t, int64(8), res.Created.Quantity)
	assert.Equal(t, entity.LotStatusStored, res.Created.Status)
	assert.Equal(t, int64(1), *res.Created.LocationID)

	assert.Equal(t, int64(20), res.Remainder.Quantity+res.Created.Quantity, "la suma reproduce la cantidad original")
	assert.Equal(t, usedBefore, s.location(1).UsedCapacity, "el split no toca el ledger")
	assert.Equal(t, usedBefore, res.Remainder.Footprint()+res.Created.Footprint())
	assert.Empty(t, s.ledger)
	assert.Equal(t, int64(20), s.master(testMaster).AvailableQuantity)
	assert.Equal(t, []string{"PROD7"}, s.prefixLocks, "la derivación se serializa por prefijo")
	assertInvariant(t, s)
}

func TestSplit_SplitsSucesivosNoRepitenSufijo(t *testing.T) {
	uc, s := newEngine(t)
	seedRack(s, 1, 500)
	s.addMaster(entity.MasterProduct{ID: testMaster})
	l := seedStoredLot(s, "PROD7", 20, 1, 1)
	s.addLot(entity.Lot{Code: "PROD7_T9", MasterProductID: testMaster, Quantity: 1, Status: entity.LotStatusDisable, WarehouseID: testWarehouse})
	ctx := context.Background()

	first, err := uc.Split(ctx, l.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, "PROD7_T1", first.Created.Code, "los hermanos terminales no cuentan")

	second, err := uc.Split(ctx, l.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, "PROD7_T2", second.Created.Code)

	third, err := uc.Split(ctx, first.Created.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, "PROD7_T3", third.Created.Code, "un código con marca T se reemplaza desde la marca")
	assert.Equal(t, int64(3), s.lot(first.Created.ID).Quantity)
}

func TestSplit_CantidadInvalida(t *testing.T) {
	uc, s := newEngine(t)
	seedRack(s, 1, 500)
	s.addMaster(entity.MasterProduct{ID: testMaster})
	l := seedStoredLot(s, "PROD7", 20, 1, 1)

	for _, q := range []int64{0, -1, 20, 25} {
		_, err := uc.Split(context.Background(), l.ID, q)
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity, "cantidad %d", q)
	}
	assert.Equal(t, int64(20), s.lot(l.ID).Quantity)
	assert.Len(t, s.lotsByCodePrefix("PROD7"), 1)
}

func TestSplit_LoteInexistente(t *testing.T) {
	uc, _ := newEngine(t)
	_, err := uc.Split(context.Background(), 77, 1)
	assert.ErrorIs(t, err, domain.ErrLotNotFound)
}

func TestSplit_FalloAlCrearRevierte(t *testing.T) {
	uc, s := newEngine(t)
	seedRack(s, 1, 500)
	s.addMaster(entity.MasterProduct{ID: testMaster})
	l := seedStoredLot(s, "PROD7", 20, 1, 1)
	s.failLotCreate = true

	_, err := uc.Split(context.Background(), l.ID, 4)
	require.ErrorIs(t, err, errFakeStorage)
	assert.Equal(t, int64(20), s.lot(l.ID).Quantity)
}
