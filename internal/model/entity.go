package model

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Entity is a persisted domain record that owns exactly one identifier of
// its own kind.
type Entity interface {
	EntityID() ID
	Validate() error
}

// requireID fails when an identifier is empty.
func requireID(id ID) error {
	if id.String() == "" {
		return fmt.Errorf("%w: %s", ErrEmptyID, id.Kind())
	}
	return nil
}

// requireName fails when a name field is blank after trimming.
func requireName(kind Kind, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%s: %w", kind, ErrBlankName)
	}
	return nil
}

// normalizeText puts display text into NFC form, so names typed on
// different systems compare equal. Identifiers, secrets and answer values
// are never normalized.
func normalizeText(s string) string {
	return norm.NFC.String(s)
}

// normalizeTime drops the monotonic reading and location so that a value
// survives a JSON round trip unchanged.
func normalizeTime(t time.Time) time.Time {
	return t.Round(0).UTC()
}
