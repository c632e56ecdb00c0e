package model

import (
	"encoding/json"
	"fmt"
)

// Binding is a directed edge from one identifier to another. The kinds of
// both ends are recorded next to the identifiers so the edge can be decoded
// without knowing what it connects.
//
// The binding's own ID does not take part in equality: two bindings are
// equal when they connect the same identifiers with the same kinds.
type Binding struct {
	ID       BindingID
	Src      ID
	Dest     ID
	SrcKind  Kind
	DestKind Kind
}

// NewBinding creates a binding and checks that src and dest are of the
// declared kinds. An empty id is replaced by a fresh one.
func NewBinding(id BindingID, src, dest ID, srcKind, destKind Kind) (Binding, error) {
	b := Binding{
		ID:       BindingID(newIDValue(string(id))),
		Src:      src,
		Dest:     dest,
		SrcKind:  srcKind,
		DestKind: destKind,
	}
	if err := b.Validate(); err != nil {
		return Binding{}, err
	}
	return b, nil
}

// NewBindingFromRaw creates a binding from raw identifier strings, building
// the identifier variants from the declared kinds.
func NewBindingFromRaw(id BindingID, src, dest string, srcKind, destKind Kind) (Binding, error) {
	srcID, err := srcKind.NewID(src)
	if err != nil {
		return Binding{}, fmt.Errorf("binding source: %w", err)
	}
	destID, err := destKind.NewID(dest)
	if err != nil {
		return Binding{}, fmt.Errorf("binding destination: %w", err)
	}
	return NewBinding(id, srcID, destID, srcKind, destKind)
}

func (b Binding) EntityID() ID { return b.ID }

// Validate checks the record invariants.
func (b Binding) Validate() error {
	if err := requireID(b.ID); err != nil {
		return err
	}
	if b.Src == nil || b.Dest == nil {
		return fmt.Errorf("%w: binding %s is missing an endpoint", ErrInvalidRecord, b.ID)
	}
	if err := requireID(b.Src); err != nil {
		return err
	}
	if err := requireID(b.Dest); err != nil {
		return err
	}
	if b.Src.Kind() != b.SrcKind {
		return fmt.Errorf("%w: source is %s, declared %s", ErrKindMismatch, b.Src.Kind(), b.SrcKind)
	}
	if b.Dest.Kind() != b.DestKind {
		return fmt.Errorf("%w: destination is %s, declared %s", ErrKindMismatch, b.Dest.Kind(), b.DestKind)
	}
	return nil
}

// Equal reports whether b and other connect the same identifiers with the
// same kinds. The binding IDs are ignored.
func (b Binding) Equal(other Binding) bool {
	return b.Src == other.Src &&
		b.Dest == other.Dest &&
		b.SrcKind == other.SrcKind &&
		b.DestKind == other.DestKind
}

// EdgeKey returns a content hash of the fields Equal compares. Equal
// bindings have equal keys.
func (b Binding) EdgeKey() string {
	return EdgeKey(b.Src, b.Dest, b.SrcKind, b.DestKind)
}

// bindingRecord is the on-disk shape of a Binding: identifiers are bare
// strings and the kinds say how to rebuild them.
type bindingRecord struct {
	ID       string `json:"id"`
	Src      string `json:"src"`
	Dest     string `json:"dest"`
	SrcKind  Kind   `json:"src_kind"`
	DestKind Kind   `json:"dest_kind"`
}

// MarshalJSON encodes the binding with bare string identifiers.
func (b Binding) MarshalJSON() ([]byte, error) {
	rec := bindingRecord{
		ID:       string(b.ID),
		SrcKind:  b.SrcKind,
		DestKind: b.DestKind,
	}
	if b.Src != nil {
		rec.Src = b.Src.String()
	}
	if b.Dest != nil {
		rec.Dest = b.Dest.String()
	}
	return json.Marshal(rec)
}

// UnmarshalJSON decodes a binding and validates it.
func (b *Binding) UnmarshalJSON(data []byte) error {
	var rec bindingRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("binding: %w", err)
	}
	if rec.ID == "" {
		return fmt.Errorf("%w: binding", ErrEmptyID)
	}
	decoded, err := NewBindingFromRaw(BindingID(rec.ID), rec.Src, rec.Dest, rec.SrcKind, rec.DestKind)
	if err != nil {
		return err
	}
	*b = decoded
	return nil
}
