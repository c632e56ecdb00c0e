package binding

import (
	"cmp"
	"iter"
	"maps"
	"slices"
	"sync"

	"github.com/roach88/binder/internal/model"
)

// Index maps binding identifiers to bindings for one store path.
//
// Thread-safety: all methods are safe for concurrent use.
type Index struct {
	mu       sync.RWMutex
	bindings map[model.BindingID]model.Binding
	edges    map[string]map[model.BindingID]struct{} // EdgeKey -> bindings with that edge
}

// NewIndex creates an index holding the given bindings.
func NewIndex(bindings map[model.BindingID]model.Binding) *Index {
	idx := &Index{
		bindings: make(map[model.BindingID]model.Binding, len(bindings)),
		edges:    make(map[string]map[model.BindingID]struct{}, len(bindings)),
	}
	for _, b := range bindings {
		idx.putLocked(b)
	}
	return idx
}

// Put inserts or replaces the binding stored under b.ID.
func (x *Index) Put(b model.Binding) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.putLocked(b)
}

func (x *Index) putLocked(b model.Binding) {
	if old, ok := x.bindings[b.ID]; ok {
		x.unlinkLocked(old)
	}
	x.bindings[b.ID] = b

	key := b.EdgeKey()
	ids := x.edges[key]
	if ids == nil {
		ids = make(map[model.BindingID]struct{}, 1)
		x.edges[key] = ids
	}
	ids[b.ID] = struct{}{}
}

func (x *Index) unlinkLocked(b model.Binding) {
	key := b.EdgeKey()
	delete(x.edges[key], b.ID)
	if len(x.edges[key]) == 0 {
		delete(x.edges, key)
	}
}

// PutIfAbsent inserts b unless an equal binding is already held. It
// returns the binding that ends up representing the edge and whether b was
// inserted.
func (x *Index) PutIfAbsent(b model.Binding) (model.Binding, bool) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if existing, ok := x.findLocked(b); ok {
		return existing, false
	}
	x.putLocked(b)
	return b, true
}

// Find returns a held binding equal to b, ignoring binding IDs.
func (x *Index) Find(b model.Binding) (model.Binding, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.findLocked(b)
}

func (x *Index) findLocked(b model.Binding) (model.Binding, bool) {
	ids := x.edges[b.EdgeKey()]
	for _, id := range slices.Sorted(maps.Keys(ids)) {
		if existing := x.bindings[id]; existing.Equal(b) {
			return existing, true
		}
	}
	return model.Binding{}, false
}

// Contains reports whether a binding equal to b is held.
func (x *Index) Contains(b model.Binding) bool {
	_, ok := x.Find(b)
	return ok
}

// Get returns the binding stored under id.
func (x *Index) Get(id model.BindingID) (model.Binding, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	b, ok := x.bindings[id]
	return b, ok
}

// Len returns the number of bindings held.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.bindings)
}

// Snapshot returns a copy of the identifier to binding mapping.
func (x *Index) Snapshot() map[model.BindingID]model.Binding {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return maps.Clone(x.bindings)
}

// Values returns the held bindings ordered by binding ID.
func (x *Index) Values() []model.Binding {
	x.mu.RLock()
	defer x.mu.RUnlock()
	values := slices.Collect(maps.Values(x.bindings))
	slices.SortFunc(values, func(a, b model.Binding) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return values
}

// Select yields the bindings that satisfy every predicate, in binding ID
// order. Each iteration takes a fresh snapshot of the index.
func (x *Index) Select(preds ...Predicate) iter.Seq[model.Binding] {
	return func(yield func(model.Binding) bool) {
		for _, b := range x.Values() {
			if !matchAll(b, preds) {
				continue
			}
			if !yield(b) {
				return
			}
		}
	}
}

// Resolve yields the records that the destinations of the matching
// bindings point to. Destinations that r cannot resolve are skipped.
//
// The sequence is lazy and restartable: every range over it re-reads the
// index, so bindings added in between are seen.
func (x *Index) Resolve(r model.Resolver, preds ...Predicate) iter.Seq[model.Entity] {
	return func(yield func(model.Entity) bool) {
		for b := range x.Select(preds...) {
			e, ok := b.Dest.Resolve(r)
			if !ok {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}
