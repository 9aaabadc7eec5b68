package inventory_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/jhoicas/rack-inventory/internal/application/inventory"
	"github.com/jhoicas/rack-inventory/internal/domain/entity"
	"github.com/jhoicas/rack-inventory/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Almacén en memoria con semántica de transacción (snapshot + restore en error)
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	mu            sync.Mutex
	lots          map[int64]*entity.Lot
	locations     map[int64]*entity.Location
	masters       map[int64]*entity.MasterProduct
	ledger        []*entity.LedgerEntry
	nextLotID     int64
	prefixLocks   []string
	failLotCreate bool
}

func newMemStore() *memStore {
	return &memStore{
		lots:      map[int64]*entity.Lot{},
		locations: map[int64]*entity.Location{},
		masters:   map[int64]*entity.MasterProduct{},
		nextLotID: 1,
	}
}

type snapshot struct {
	lots      map[int64]*entity.Lot
	locations map[int64]*entity.Location
	masters   map[int64]*entity.MasterProduct
	ledger    int
	nextLotID int64
}

func (s *memStore) snapshot() snapshot {
	snap := snapshot{
		lots:      make(map[int64]*entity.Lot, len(s.lots)),
		locations: make(map[int64]*entity.Location, len(s.locations)),
		masters:   make(map[int64]*entity.MasterProduct, len(s.masters)),
		ledger:    len(s.ledger),
		nextLotID: s.nextLotID,
	}
	for id, l := range s.lots {
		snap.lots[id] = l.Clone()
	}
	for id, l := range s.locations {
		c := *l
		snap.locations[id] = &c
	}
	for id, m := range s.masters {
		c := *m
		snap.masters[id] = &c
	}
	return snap
}

func (s *memStore) restore(snap snapshot) {
	s.lots = snap.lots
	s.locations = snap.locations
	s.masters = snap.masters
	s.ledger = s.ledger[:snap.ledger]
	s.nextLotID = snap.nextLotID
}

func (s *memStore) repos() inventory.Repos {
	return inventory.Repos{
		Lots:           &memLots{s: s},
		Locations:      &memLocations{s: s},
		MasterProducts: &memMasters{s: s},
		Ledger:         &memLedger{s: s},
	}
}

// memTx serializa las transacciones y revierte el almacén si fn falla.
type memTx struct{ s *memStore }

func (t *memTx) Run(ctx context.Context, fn func(repos inventory.Repos) error) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	snap := t.s.snapshot()
	if err := fn(t.s.repos()); err != nil {
		t.s.restore(snap)
		return err
	}
	return nil
}

// ── helpers de lectura para aserciones (fuera de transacción) ──

func (s *memStore) lot(id int64) *entity.Lot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.lots[id]; ok {
		return l.Clone()
	}
	return nil
}

func (s *memStore) location(id int64) *entity.Location {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *s.locations[id]
	return &c
}

func (s *memStore) master(id int64) *entity.MasterProduct {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *s.masters[id]
	return &c
}

func (s *memStore) lotsByCodePrefix(prefix string) []*entity.Lot {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.Lot
	for _, l := range s.lots {
		if strings.HasPrefix(l.Code, prefix) {
			out = append(out, l.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// expectedUsed suma la huella de los lotes que reclaman capacidad en la ubicación.
func (s *memStore) expectedUsed(locationID int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, l := range s.lots {
		switch {
		case l.Status.AffectsCapacity() && l.LocationID != nil && *l.LocationID == locationID:
			total += l.Footprint()
		case l.Status == entity.LotStatusReallocate && l.ReallocationSourceID != nil && *l.ReallocationSourceID == locationID:
			total += l.Footprint()
		}
	}
	return total
}

// ── siembra ──

func (s *memStore) addLocation(loc entity.Location) {
	if loc.Status == "" {
		loc.Status = entity.LocationStatusEnable
	}
	s.locations[loc.ID] = &loc
}

func (s *memStore) addMaster(m entity.MasterProduct) {
	s.masters[m.ID] = &m
}

func (s *memStore) addLot(l entity.Lot) *entity.Lot {
	if l.ID == 0 {
		l.ID = s.nextLotID
	}
	if l.ID >= s.nextLotID {
		s.nextLotID = l.ID + 1
	}
	s.lots[l.ID] = l.Clone()
	return l.Clone()
}

// ──────────────────────────────────────────────────────────────────────────────
// Repositorios en memoria
// ──────────────────────────────────────────────────────────────────────────────

var errFakeStorage = errors.New("fake storage failure")

type memLots struct{ s *memStore }

var _ repository.LotRepository = (*memLots)(nil)

func (r *memLots) GetByID(_ context.Context, id int64) (*entity.Lot, error) {
	if l, ok := r.s.lots[id]; ok {
		return l.Clone(), nil
	}
	return nil, nil
}

func (r *memLots) GetForUpdate(ctx context.Context, id int64) (*entity.Lot, error) {
	return r.GetByID(ctx, id)
}

func (r *memLots) FindByCodePrefix(_ context.Context, prefix string, excluded []entity.LotStatus) ([]*entity.Lot, error) {
	var out []*entity.Lot
	for _, l := range r.s.lots {
		if strings.HasPrefix(l.Code, prefix) && !statusIn(l.Status, excluded) {
			out = append(out, l.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memLots) CountByCodePrefix(ctx context.Context, prefix string, excluded []entity.LotStatus) (int64, error) {
	lots, _ := r.FindByCodePrefix(ctx, prefix, excluded)
	return int64(len(lots)), nil
}

func (r *memLots) LockCodePrefix(_ context.Context, prefix string) error {
	r.s.prefixLocks = append(r.s.prefixLocks, prefix)
	return nil
}

func (r *memLots) FindForScan(_ context.Context, f repository.LotFilter) ([]*entity.Lot, error) {
	var out []*entity.Lot
	for _, l := range r.s.lots {
		if l.WarehouseID != f.WarehouseID || !statusIn(l.Status, f.Statuses) {
			continue
		}
		byCode := contains(f.Codes, l.Code)
		byPackage := l.PackageCode != nil && contains(f.PackageCodes, *l.PackageCode)
		if byCode || byPackage {
			out = append(out, l.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memLots) FindStored(_ context.Context, masterProductID, warehouseID int64) ([]*entity.Lot, error) {
	var out []*entity.Lot
	for _, l := range r.s.lots {
		if l.Status == entity.LotStatusStored && l.MasterProductID == masterProductID && l.WarehouseID == warehouseID {
			out = append(out, l.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		li, lj := locKey(out[i]), locKey(out[j])
		if li != lj {
			return li < lj
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *memLots) Create(_ context.Context, l *entity.Lot) error {
	if r.s.failLotCreate {
		return errFakeStorage
	}
	l.ID = r.s.nextLotID
	r.s.nextLotID++
	r.s.lots[l.ID] = l.Clone()
	return nil
}

func (r *memLots) Save(_ context.Context, l *entity.Lot) error {
	if _, ok := r.s.lots[l.ID]; !ok {
		return errFakeStorage
	}
	r.s.lots[l.ID] = l.Clone()
	return nil
}

type memLocations struct{ s *memStore }

var _ repository.LocationRepository = (*memLocations)(nil)

func (r *memLocations) GetByID(_ context.Context, id int64) (*entity.Location, error) {
	if l, ok := r.s.locations[id]; ok {
		c := *l
		return &c, nil
	}
	return nil, nil
}

func (r *memLocations) GetForUpdate(ctx context.Context, id int64) (*entity.Location, error) {
	return r.GetByID(ctx, id)
}

func (r *memLocations) UpdateUsage(_ context.Context, id int64, used int64, status string) error {
	l, ok := r.s.locations[id]
	if !ok {
		return errFakeStorage
	}
	l.UsedCapacity = used
	l.Status = status
	return nil
}

func (r *memLocations) FindRecommended(_ context.Context, f repository.RecommendFilter) (*entity.Location, error) {
	ids := make([]int64, 0, len(r.s.locations))
	for id := range r.s.locations {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		l := r.s.locations[id]
		if l.Status != entity.LocationStatusEnable || l.WarehouseID != f.WarehouseID {
			continue
		}
		if f.ExcludeLocationID != nil && *f.ExcludeLocationID == l.ID {
			continue
		}
		if !sameCategory(l.CategoryID, f.CategoryID) || l.FreeCapacity() < f.RequiredFootprint {
			continue
		}
		c := *l
		return &c, nil
	}
	return nil, nil
}

func (r *memLocations) ListByWarehouse(_ context.Context, warehouseID int64, limit, offset int) ([]*entity.Location, error) {
	return nil, nil
}

func (r *memLocations) Create(_ context.Context, loc *entity.Location) error {
	r.s.locations[loc.ID] = loc
	return nil
}

func (r *memLocations) MaxPositionByShelf(_ context.Context, shelfCode string) (int, error) { return 0, nil }

func (r *memLocations) LockShelf(_ context.Context, shelfCode string) error { return nil }

func (r *memLocations) CountActiveLots(_ context.Context, id int64) (int64, error) { return 0, nil }

func (r *memLocations) Disable(_ context.Context, id int64) error { return nil }

type memMasters struct{ s *memStore }

var _ repository.MasterProductRepository = (*memMasters)(nil)

func (r *memMasters) GetByID(_ context.Context, id int64) (*entity.MasterProduct, error) {
	if m, ok := r.s.masters[id]; ok {
		c := *m
		return &c, nil
	}
	return nil, nil
}

func (r *memMasters) AdjustAvailableQuantity(_ context.Context, id int64, delta int64) error {
	m, ok := r.s.masters[id]
	if !ok {
		return errFakeStorage
	}
	m.AvailableQuantity = max(m.AvailableQuantity+delta, 0)
	return nil
}

type memLedger struct{ s *memStore }

var _ repository.LedgerRepository = (*memLedger)(nil)

func (r *memLedger) Append(_ context.Context, e *entity.LedgerEntry) error {
	c := *e
	r.s.ledger = append(r.s.ledger, &c)
	return nil
}

func (r *memLedger) ListByLocation(_ context.Context, locationID int64, limit int) ([]*entity.LedgerEntry, error) {
	var out []*entity.LedgerEntry
	for _, e := range r.s.ledger {
		if e.LocationID == locationID {
			out = append(out, e)
		}
	}
	return out, nil
}

func statusIn(st entity.LotStatus, set []entity.LotStatus) bool {
	for _, s := range set {
		if s == st {
			return true
		}
	}
	return false
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func sameCategory(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func locKey(l *entity.Lot) int64 {
	if l.LocationID == nil {
		return 1<<63 - 1
	}
	return *l.LocationID
}

func ptr[T any](v T) *T { return &v }
