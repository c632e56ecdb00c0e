package store

import (
	"log/slog"

	"github.com/roach88/binder/internal/model"
)

// Table is the data access object for one record kind. It holds no state
// besides its collaborators; every Load reads from the backend.
type Table[K ~string, V model.Entity] struct {
	backend Backend
	codec   Codec[K, V]
	logger  *slog.Logger
}

// NewTable creates a table over backend. A nil logger uses slog.Default().
func NewTable[K ~string, V model.Entity](backend Backend, codec Codec[K, V], logger *slog.Logger) *Table[K, V] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Table[K, V]{
		backend: backend,
		codec:   codec,
		logger:  logger.With("kind", string(codec.Kind)),
	}
}

// Kind returns the record kind this table stores.
func (t *Table[K, V]) Kind() model.Kind {
	return t.codec.Kind
}

// Codec returns the codec used for lines.
func (t *Table[K, V]) Codec() Codec[K, V] {
	return t.codec
}
