package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/binder/internal/model"
)

// Codec converts records of one kind to canonical lines and back.
type Codec[K ~string, V model.Entity] struct {
	Kind model.Kind
	Key  func(V) K

	// Normalize, when set, returns a record in the form it has after a
	// save and load, so cached and reloaded values compare equal.
	Normalize func(V) V
}

// Normalized applies Normalize when the codec has one.
func (c Codec[K, V]) Normalized(v V) V {
	if c.Normalize == nil {
		return v
	}
	return c.Normalize(v)
}

// Encode returns v as a single canonical JSON line without a trailing newline.
func (c Codec[K, V]) Encode(v V) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", c.Kind, err)
	}
	line, err := Canonicalize(raw)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", c.Kind, err)
	}
	return line, nil
}

// Decode parses one line and checks the record invariants.
func (c Codec[K, V]) Decode(line []byte) (V, error) {
	var v V
	if err := json.Unmarshal(line, &v); err != nil {
		return v, fmt.Errorf("decode %s: %w", c.Kind, err)
	}
	if err := v.Validate(); err != nil {
		var zero V
		return zero, fmt.Errorf("decode %s: %w", c.Kind, err)
	}
	return v, nil
}

// Stock codecs for every persisted kind.
var (
	AnswerCodec = Codec[model.AnswerID, model.Answer]{
		Kind:      model.KindAnswer,
		Key:       func(a model.Answer) model.AnswerID { return a.ID },
		Normalize: model.Answer.Normalized,
	}
	BindingCodec = Codec[model.BindingID, model.Binding]{
		Kind: model.KindBinding,
		Key:  func(b model.Binding) model.BindingID { return b.ID },
	}
	CourseCodec = Codec[model.CourseID, model.Course]{
		Kind: model.KindCourse,
		Key:  func(c model.Course) model.CourseID { return c.ID },
	}
	QuestionCodec = Codec[model.QuestionID, model.Question]{
		Kind: model.KindQuestion,
		Key:  func(q model.Question) model.QuestionID { return q.ID },
	}
	TicketCodec = Codec[model.TicketID, model.Ticket]{
		Kind:      model.KindTicket,
		Key:       func(t model.Ticket) model.TicketID { return t.ID },
		Normalize: model.Ticket.Normalized,
	}
	UserCodec = Codec[model.UserID, model.User]{
		Kind: model.KindUser,
		Key:  func(u model.User) model.UserID { return u.ID },
	}
)
