package service

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rl1809/catalog/internal/cachemanager"
	"github.com/rl1809/catalog/internal/core/domain"
	"github.com/rl1809/catalog/internal/logging"
)

const DefaultRegistryName = "default"

var instances = cachemanager.NewInMemoryCacheManager[string, *Registry]("registry")

// GetInstance returns the process-wide registry for name, creating it on first
// use. An empty name selects DefaultRegistryName.
func GetInstance(name string) *Registry {
	if name == "" {
		name = DefaultRegistryName
	}
	r, created := instances.GetOrCreate(name, func() *Registry {
		return newRegistry(name)
	})
	if created {
		logging.L().Info("registry created", zap.String("registry", name))
	}
	return r
}

// ResetInstances forgets every registry so the next GetInstance starts empty.
// Registries already handed out keep working but are no longer reachable by name.
func ResetInstances() {
	instances.Flush()
}

// Registry is an insertion-ordered, concurrency-safe catalog of items that
// also tracks which items had their price changed.
type Registry struct {
	name string

	mu       sync.RWMutex
	items    map[uuid.UUID]domain.Item
	order    idSet
	changed  idSet
	versions map[uuid.UUID]uint64
	seq      uint64
}

func newRegistry(name string) *Registry {
	return &Registry{
		name:     name,
		items:    make(map[uuid.UUID]domain.Item),
		order:    newIDSet(),
		changed:  newIDSet(),
		versions: make(map[uuid.UUID]uint64),
		// Versions start at the creation time so they keep increasing across
		// restarts of the process.
		seq: uint64(time.Now().UnixNano()),
	}
}

func (r *Registry) Name() string {
	return r.name
}

// Add inserts item at the end of iteration order.
func (r *Registry) Add(item domain.Item) error {
	if domain.IsNil(item) {
		return fmt.Errorf("%w: item cannot be nil", domain.ErrInvalidArgument)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := item.ID()
	if _, ok := r.items[id]; ok {
		return fmt.Errorf("%w: item %s already exists", domain.ErrDuplicateKey, id)
	}
	r.items[id] = item
	r.order.add(id)

	r.debug("item added", zap.Stringer("item_id", id), zap.String("category", item.Category().Name()))
	return nil
}

// List returns a snapshot of all items in insertion order.
func (r *Registry) List() []domain.Item {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Item, 0, len(r.items))
	for _, id := range r.order.ids {
		out = append(out, r.items[id])
	}
	return out
}

func (r *Registry) Get(id uuid.UUID) (domain.Item, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	return item, ok
}

// UpdatePrice sets the price of an existing item and marks it as changed.
func (r *Registry) UpdatePrice(id uuid.UUID, price decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return fmt.Errorf("%w: item %s", domain.ErrNotFound, id)
	}
	old := item.Price()
	item.SetPrice(price)
	r.changed.add(id)
	r.seq++
	r.versions[id] = r.seq

	r.debug("price updated", zap.Stringer("item_id", id),
		zap.Stringer("old", old), zap.Stringer("new", price), zap.Uint64("version", r.seq))
	return nil
}

// ChangedItems returns items whose price was updated, in the order they were
// first changed.
func (r *Registry) ChangedItems() []domain.Item {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Item, 0, len(r.changed.ids))
	for _, id := range r.changed.ids {
		if item, ok := r.items[id]; ok {
			out = append(out, item)
		}
	}
	return out
}

// PriceChanges snapshots every changed item together with the version of its
// latest price update, in the same order as ChangedItems.
func (r *Registry) PriceChanges(at time.Time) []domain.PriceChange {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.PriceChange, 0, len(r.changed.ids))
	for _, id := range r.changed.ids {
		if item, ok := r.items[id]; ok {
			out = append(out, domain.NewPriceChange(item, r.versions[id], at))
		}
	}
	return out
}

// Remove deletes id from the registry. Unknown ids are ignored.
func (r *Registry) Remove(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return
	}
	delete(r.items, id)
	r.order.remove(id)
	r.changed.remove(id)
	delete(r.versions, id)

	r.debug("item removed", zap.Stringer("item_id", id))
}

func (r *Registry) IsEmpty() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items) == 0
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Clear removes every item and forgets all tracked changes.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = make(map[uuid.UUID]domain.Item)
	r.order.clear()
	r.changed.clear()
	r.versions = make(map[uuid.UUID]uint64)

	r.debug("registry cleared")
}

// GroupByCategory partitions items by category, keeping insertion order inside
// each group.
func (r *Registry) GroupByCategory() map[*domain.Category][]domain.Item {
	r.mu.RLock()
	defer r.mu.RUnlock()

	groups := make(map[*domain.Category][]domain.Item)
	for _, id := range r.order.ids {
		item := r.items[id]
		groups[item.Category()] = append(groups[item.Category()], item)
	}
	return groups
}

func (r *Registry) ShippableItems() []domain.Shippable {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Shippable
	for _, id := range r.order.ids {
		if s, ok := r.items[id].(domain.Shippable); ok {
			out = append(out, s)
		}
	}
	return out
}

// ExpiredItems returns perishable items past their expiration date as of now.
func (r *Registry) ExpiredItems() []domain.Perishable {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Perishable
	for _, id := range r.order.ids {
		if p, ok := r.items[id].(domain.Perishable); ok && p.IsExpired() {
			out = append(out, p)
		}
	}
	return out
}

func (r *Registry) debug(msg string, fields ...zap.Field) {
	if ce := logging.L().Check(zap.DebugLevel, msg); ce != nil {
		ce.Write(append(fields, zap.String("registry", r.name))...)
	}
}

// idSet is an insertion-ordered set of item ids.
type idSet struct {
	index map[uuid.UUID]struct{}
	ids   []uuid.UUID
}

func newIDSet() idSet {
	return idSet{index: make(map[uuid.UUID]struct{})}
}

func (s *idSet) add(id uuid.UUID) {
	if _, ok := s.index[id]; ok {
		return
	}
	s.index[id] = struct{}{}
	s.ids = append(s.ids, id)
}

func (s *idSet) remove(id uuid.UUID) {
	if _, ok := s.index[id]; !ok {
		return
	}
	delete(s.index, id)
	if i := slices.Index(s.ids, id); i >= 0 {
		s.ids = slices.Delete(s.ids, i, i+1)
	}
}

func (s *idSet) clear() {
	s.index = make(map[uuid.UUID]struct{})
	s.ids = nil
}
