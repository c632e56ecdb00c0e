package persist

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/roach88/binder/internal/model"
	"github.com/roach88/binder/internal/store"
)

// collection holds the per-path caches of one record kind.
type collection[K ~string, V model.Entity] struct {
	table       *store.Table[K, V]
	defaultPath string
	logger      *slog.Logger

	mu      sync.Mutex // guards entries, never held during I/O
	entries map[string]*entry[K, V]
}

// entry is the cache of one store path. values is nil until the path is
// loaded or a record is cached into it. dirty is set while the cache holds
// records the store has not accepted yet.
type entry[K ~string, V model.Entity] struct {
	mu     sync.Mutex
	values map[K]V
	dirty  bool
}

func newCollection[K ~string, V model.Entity](table *store.Table[K, V], defaultPath string, logger *slog.Logger) *collection[K, V] {
	return &collection[K, V]{
		table:       table,
		defaultPath: defaultPath,
		logger:      logger.With("kind", string(table.Kind())),
		entries:     make(map[string]*entry[K, V]),
	}
}

// resolve maps "" to the default path and validates the result.
func (c *collection[K, V]) resolve(path string) (string, error) {
	if path == "" {
		path = c.defaultPath
	}
	return store.ResolvePath(path)
}

// entryFor returns the entry for a resolved path, creating it when create
// is set. It returns nil for an unknown path otherwise.
func (c *collection[K, V]) entryFor(resolved string, create bool) *entry[K, V] {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[resolved]
	if !ok && create {
		e = &entry[K, V]{}
		c.entries[resolved] = e
	}
	return e
}

// loadLocked fills e from the store if it holds nothing yet.
// The caller holds e.mu.
func (c *collection[K, V]) loadLocked(e *entry[K, V], resolved string) error {
	if e.values != nil {
		return nil
	}
	values, err := c.table.Load(resolved)
	if err != nil {
		return err
	}
	e.values = values
	c.logger.Debug("cache populated", "path", resolved, "records", len(values))
	return nil
}

// getOrLoad returns a copy of the cached records at path, reading them
// from the store on first use.
func (c *collection[K, V]) getOrLoad(path string) (map[K]V, error) {
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
	return maps.Clone(e.values), nil
}

// lookup returns one record from path, loading the path on first use.
func (c *collection[K, V]) lookup(path string, id K) (V, bool) {
	var zero V
	resolved, err := c.resolve(path)
	if err != nil {
		return zero, false
	}
	e := c.entryFor(resolved, true)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := c.loadLocked(e, resolved); err != nil {
		return zero, false
	}
	v, ok := e.values[id]
	return v, ok
}

// cache puts v into the cache of path, in the form it will have after a
// reload. It never reads the store.
func (c *collection[K, V]) cache(path string, v V) error {
	resolved, err := c.resolve(path)
	if err != nil {
		return err
	}
	if err := v.Validate(); err != nil {
		return fmt.Errorf("cache %s: %w", c.table.Kind(), err)
	}
	e := c.entryFor(resolved, true)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.values == nil {
		e.values = make(map[K]V)
	}
	codec := c.table.Codec()
	e.values[codec.Key(v)] = codec.Normalized(v)
	e.dirty = true
	return nil
}

// save writes the cache of path to the store. Unknown paths are a no-op.
func (c *collection[K, V]) save(path string) error {
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
	if e.values == nil {
		return nil
	}
	return c.writeLocked(e, resolved)
}

// flush saves path only when its cache holds unsaved records.
func (c *collection[K, V]) flush(resolved string) error {
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

// writeLocked writes e to the store. A failed write leaves e dirty so a
// later flush retries it. The caller holds e.mu.
func (c *collection[K, V]) writeLocked(e *entry[K, V], resolved string) error {
	err := c.table.Save(resolved, e.values)
	e.dirty = err != nil
	return storeFailure(c.logger, resolved, err)
}

// paths returns the cached paths in order.
func (c *collection[K, V]) paths() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Sorted(maps.Keys(c.entries))
}

// size returns the number of records cached at a resolved path.
func (c *collection[K, V]) size(resolved string) (int, bool) {
	e := c.entryFor(resolved, false)
	if e == nil {
		return 0, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.values), e.values != nil
}

// storeFailure applies the save failure policy: layout and path errors are
// returned, everything else is logged and dropped.
func storeFailure(logger *slog.Logger, path string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrNotDirectory) || errors.Is(err, store.ErrInvalidPath) {
		return err
	}
	logger.Error("failed to persist collection", "path", path, "error", err)
	return nil
}
