package usecase

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/fekuna/omnipos-stock-service/internal/inventory"
	"github.com/fekuna/omnipos-stock-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-stock-service/internal/inventory/filter"
	"github.com/fekuna/omnipos-stock-service/internal/model"
)

// memStore is an in-memory inventory store. Transactions are serialized and
// restore a snapshot on error.
type memStore struct {
	mu        sync.Mutex
	txMu      sync.Mutex
	records   []model.InventoryRecord
	movements []model.InventoryMovement

	// beforeAdjust runs at the start of AdjustQuantity, outside the lock.
	beforeAdjust func()
	// foreign holds writes committed by another writer while a transaction
	// is open. They survive that transaction's rollback.
	foreign []func(records []model.InventoryRecord)
}

// writeOutsideTx applies fn as a separately committed write.
func (s *memStore) writeOutsideTx(fn func(records []model.InventoryRecord)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.records)
	s.foreign = append(s.foreign, fn)
}

type memRepo struct {
	s    *memStore
	inTx bool
}

func newMemRepo() *memRepo {
	return &memRepo{s: &memStore{}}
}

func (r *memRepo) indexByID(id string) int {
	return slices.IndexFunc(r.s.records, func(rec model.InventoryRecord) bool { return rec.ID == id })
}

func (r *memRepo) indexByIdentity(category string, attr float64) int {
	return slices.IndexFunc(r.s.records, func(rec model.InventoryRecord) bool {
		return rec.Category == category && rec.AttributeValue == attr
	})
}

func (r *memRepo) FindByIdentity(ctx context.Context, category string, attributeValue float64) (*model.InventoryRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if i := r.indexByIdentity(category, attributeValue); i >= 0 {
		rec := r.s.records[i]
		return &rec, nil
	}
	return nil, nil
}

func (r *memRepo) FindByID(ctx context.Context, id string) (*model.InventoryRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if i := r.indexByID(id); i >= 0 {
		rec := r.s.records[i]
		return &rec, nil
	}
	return nil, nil
}

func (r *memRepo) FindAll(ctx context.Context, predicates filter.Set) ([]model.InventoryRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.InventoryRecord{}
	for _, rec := range r.s.records {
		if predicates.Match(rec) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *memRepo) Create(ctx context.Context, rec *model.InventoryRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now().UTC()
	if i := r.indexByIdentity(rec.Category, rec.AttributeValue); i >= 0 {
		r.s.records[i].Quantity += rec.Quantity
		r.s.records[i].UpdatedAt = now
		*rec = r.s.records[i]
		return nil
	}
	rec.CreatedAt, rec.UpdatedAt = now, now
	r.s.records = append(r.s.records, *rec)
	return nil
}

func (r *memRepo) Update(ctx context.Context, rec *model.InventoryRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if j := r.indexByIdentity(rec.Category, rec.AttributeValue); j >= 0 && r.s.records[j].ID != rec.ID {
		return inventory.ErrIdentityTaken
	}
	i := r.indexByID(rec.ID)
	if i < 0 {
		return fmt.Errorf("no inventory record %s", rec.ID)
	}
	rec.UpdatedAt = time.Now().UTC()
	r.s.records[i] = *rec
	return nil
}

func (r *memRepo) AdjustQuantity(ctx context.Context, id string, delta int) (*model.InventoryRecord, error) {
	if r.s.beforeAdjust != nil {
		r.s.beforeAdjust()
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := r.indexByID(id)
	if i < 0 || r.s.records[i].Quantity+delta < 0 {
		return nil, inventory.ErrQuantityConflict
	}
	r.s.records[i].Quantity += delta
	r.s.records[i].UpdatedAt = time.Now().UTC()
	rec := r.s.records[i]
	return &rec, nil
}

func (r *memRepo) LogMovement(ctx context.Context, movement *model.InventoryMovement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.movements = append(r.s.movements, *movement)
	return nil
}

func (r *memRepo) ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.InventoryMovement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []model.InventoryMovement{}
	for _, m := range r.s.movements {
		if filters != nil && filters.RecordID != "" && m.RecordID != filters.RecordID {
			continue
		}
		if filters != nil && filters.MovementType != "" && m.MovementType != filters.MovementType {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *memRepo) RunInTx(ctx context.Context, fn func(repo inventory.Repository) error) error {
	if r.inTx {
		return fn(r)
	}

	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()

	r.s.mu.Lock()
	records := slices.Clone(r.s.records)
	movements := slices.Clone(r.s.movements)
	r.s.foreign = nil
	r.s.mu.Unlock()

	err := fn(&memRepo{s: r.s, inTx: true})

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err != nil {
		r.s.records, r.s.movements = records, movements
		for _, write := range r.s.foreign {
			write(r.s.records)
		}
	}
	r.s.foreign = nil
	return err
}

func (r *memRepo) snapshot() []model.InventoryRecord {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return slices.Clone(r.s.records)
}

// mockGuard is an in-memory IdempotencyGuard.
type mockGuard struct {
	mu       sync.Mutex
	keys     map[string]bool
	ttls     map[string]time.Duration
	released []string
}

func newMockGuard() *mockGuard {
	return &mockGuard{keys: map[string]bool{}, ttls: map[string]time.Duration{}}
}

func (g *mockGuard) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.keys[key] {
		return false, nil
	}
	g.keys[key] = true
	g.ttls[key] = ttl
	return true, nil
}

func (g *mockGuard) Release(ctx context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.keys, key)
	g.released = append(g.released, key)
	return nil
}
