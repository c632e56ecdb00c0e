package persist

import (
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/roach88/binder/internal/binding"
	"github.com/roach88/binder/internal/model"
	"github.com/roach88/binder/internal/store"
)

// bindingCollection holds one binding index per store path.
type bindingCollection struct {
	table       *store.Table[model.BindingID, model.Binding]
	defaultPath string
	logger      *slog.Logger

	mu      sync.Mutex // guards entries, never held during I/O
	entries map[string]*bindingEntry
}

// bindingEntry serializes every operation on one binding path. idx is nil
// until the path is loaded or a binding is cached into it. dirty is set
// while idx holds bindings the store has not accepted yet.
type bindingEntry struct {
	mu    sync.Mutex
	idx   *binding.Index
	dirty bool
}

func newBindingCollection(table *store.Table[model.BindingID, model.Binding], defaultPath string, logger *slog.Logger) *bindingCollection {
	return &bindingCollection{
		table:       table,
		defaultPath: defaultPath,
		logger:      logger.With("kind", string(model.KindBinding)),
		entries:     make(map[string]*bindingEntry),
	}
}

func (c *bindingCollection) resolve(path string) (string, error) {
	if path == "" {
		path = c.defaultPath
	}
	return store.ResolvePath(path)
}

func (c *bindingCollection) entryFor(resolved string, create bool) *bindingEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[resolved]
	if !ok && create {
		e = &bindingEntry{}
		c.entries[resolved] = e
	}
	return e
}

// loadLocked fills e from the store if it holds nothing yet.
// The caller holds e.mu.
func (c *bindingCollection) loadLocked(e *bindingEntry, resolved string) error {
	if e.idx != nil {
		return nil
	}
	values, err := c.table.Load(resolved)
	if err != nil {
		return err
	}
	e.idx = binding.NewIndex(values)
	c.logger.Debug("binding index populated", "path", resolved, "bindings", len(values))
	return nil
}

// getOrLoad returns the live index of path, reading it on first use.
func (c *bindingCollection) getOrLoad(path string) (*binding.Index, error) {
	resolved, err := c.resolve(path)
	if err != nil {
		return nil, err
	}
	e := c.entryFor(resolved, true)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := c.loadLocked(e, resolved); err != nil {
		return nil, err
	}
	return e.idx, nil
}

// cache puts b into the index of path without reading the store.
func (c *bindingCollection) cache(path string, b model.Binding) error {
	resolved, err := c.resolve(path)
	if err != nil {
		return err
	}
	if err := b.Validate(); err != nil {
		return err
	}
	e := c.entryFor(resolved, true)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.idx == nil {
		e.idx = binding.NewIndex(nil)
	}
	e.idx.Put(b)
	e.dirty = true
	return nil
}

// save writes the index of path to the store. Unknown paths are a no-op.
func (c *bindingCollection) save(path string) error {
	resolved, err := c.resolve(path)
	if err != nil {
		return err
	}
	e := c.entryFor(resolved, false)
	if e == nil {
		c.logger.Debug("nothing cached, save skipped", "path", resolved)
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.idx == nil {
		return nil
	}
	return c.writeLocked(e, resolved)
}

// flush saves path only when its index holds unsaved bindings.
func (c *bindingCollection) flush(resolved string) error {
	e := c.entryFor(resolved, false)
	if e == nil {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.dirty {
		return nil
	}
	return c.writeLocked(e, resolved)
}

// writeLocked writes the index of e. A failed write leaves e dirty so a
// later flush retries it. The caller holds e.mu.
func (c *bindingCollection) writeLocked(e *bindingEntry, resolved string) error {
	err := c.table.Save(resolved, e.idx.Snapshot())
	e.dirty = err != nil
	return storeFailure(c.logger, resolved, err)
}

// bind inserts candidate unless an equal binding exists, then rewrites the
// path. The whole check-insert-save sequence holds the path's mutex.
func (c *bindingCollection) bind(path string, candidate model.Binding) (model.Binding, bool, error) {
	resolved, err := c.resolve(path)
	if err != nil {
		return model.Binding{}, false, err
	}
	if err := candidate.Validate(); err != nil {
		return model.Binding{}, false, err
	}
	e := c.entryFor(resolved, true)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := c.loadLocked(e, resolved); err != nil {
		return model.Binding{}, false, err
	}

	stored, inserted := e.idx.PutIfAbsent(candidate)
	if !inserted {
		c.logger.Warn("binding already exists",
			"path", resolved,
			"src", candidate.Src.String(),
			"dest", candidate.Dest.String(),
			"existing", string(stored.ID),
		)
		return stored, false, nil
	}

	return stored, true, c.writeLocked(e, resolved)
}

// lookup finds a binding by id in the index of path.
func (c *bindingCollection) lookup(path string, id model.BindingID) (model.Binding, bool) {
	idx, err := c.getOrLoad(path)
	if err != nil {
		return model.Binding{}, false
	}
	return idx.Get(id)
}

func (c *bindingCollection) paths() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Sorted(maps.Keys(c.entries))
}

func (c *bindingCollection) size(resolved string) (int, bool) {
	e := c.entryFor(resolved, false)
	if e == nil {
		return 0, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.idx == nil {
		return 0, false
	}
	return e.idx.Len(), true
}
