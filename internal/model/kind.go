package model

import (
	"encoding/json"
	"fmt"
)

// Kind tags the concrete variant of an identifier or record.
type Kind string

const (
	KindAnswer   Kind = "answer"
	KindBinding  Kind = "binding"
	KindCourse   Kind = "course"
	KindQuestion Kind = "question"
	KindTicket   Kind = "ticket"
	KindUser     Kind = "user"
)

// Kinds lists every kind in a stable order.
var Kinds = []Kind{KindAnswer, KindBinding, KindCourse, KindQuestion, KindTicket, KindUser}

// ParseKind converts a kind name into a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindAnswer, KindBinding, KindCourse, KindQuestion, KindTicket, KindUser:
		return true
	}
	return false
}

func (k Kind) String() string {
	return string(k)
}

// NewID builds the identifier variant for this kind from a raw string.
func (k Kind) NewID(raw string) (ID, error) {
	switch k {
	case KindAnswer:
		return AnswerID(raw), nil
	case KindBinding:
		return BindingID(raw), nil
	case KindCourse:
		return CourseID(raw), nil
	case KindQuestion:
		return QuestionID(raw), nil
	case KindTicket:
		return TicketID(raw), nil
	case KindUser:
		return UserID(raw), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, string(k))
}

// Resolve looks up the record of this kind identified by raw.
// Returns false for unknown kinds and for ids the resolver cannot find.
func (k Kind) Resolve(r Resolver, raw string) (Entity, bool) {
	id, err := k.NewID(raw)
	if err != nil {
		return nil, false
	}
	return id.Resolve(r)
}

// UnmarshalJSON rejects kind names outside the closed set.
func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("kind: %w", err)
	}
	parsed, err := ParseKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
