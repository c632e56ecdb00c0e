package testutil

import (
	"fmt"
	"sync"
)

// SequenceGenerator returns predictable identifiers: prefix-1, prefix-2, ...
//
// This enables deterministic test execution and golden snapshot comparison:
// the same steps with a fresh SequenceGenerator produce byte-identical files.
//
// Thread-safety: SequenceGenerator is safe for concurrent use via internal mutex.
type SequenceGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequenceGenerator creates a generator. An empty prefix becomes "id".
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	if prefix == "" {
		prefix = "id"
	}
	return &SequenceGenerator{prefix: prefix}
}

// Generate returns the next identifier.
//
// Implements model.IDGenerator.
func (g *SequenceGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}

// FixedGenerator returns the same identifier every time. Useful to force
// two binds to carry the same binding ID.
//
// Thread-safety: FixedGenerator is stateless and safe for concurrent use.
type FixedGenerator struct {
	id string
}

// NewFixedGenerator creates a generator that always returns id.
func NewFixedGenerator(id string) FixedGenerator {
	return FixedGenerator{id: id}
}

// Generate returns the fixed identifier.
func (g FixedGenerator) Generate() string {
	return g.id
}
