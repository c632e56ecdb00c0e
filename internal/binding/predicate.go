package binding

import "github.com/roach88/binder/internal/model"

// Predicate tests a single binding.
type Predicate func(model.Binding) bool

// SourceIs matches bindings whose source is id.
func SourceIs(id model.ID) Predicate {
	return func(b model.Binding) bool { return b.Src == id }
}

// SourceKindIs matches bindings whose declared source kind is k.
func SourceKindIs(k model.Kind) Predicate {
	return func(b model.Binding) bool { return b.SrcKind == k }
}

// DestIs matches bindings whose destination is id.
func DestIs(id model.ID) Predicate {
	return func(b model.Binding) bool { return b.Dest == id }
}

// DestKindIs matches bindings whose declared destination kind is k.
func DestKindIs(k model.Kind) Predicate {
	return func(b model.Binding) bool { return b.DestKind == k }
}

// And combines predicates into one that holds when all of them hold.
// An empty And matches everything.
func And(preds ...Predicate) Predicate {
	return func(b model.Binding) bool {
		return matchAll(b, preds)
	}
}

// matchAll applies preds in order and stops at the first failure.
func matchAll(b model.Binding, preds []Predicate) bool {
	for _, p := range preds {
		if !p(b) {
			return false
		}
	}
	return true
}
