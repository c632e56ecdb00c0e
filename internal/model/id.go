package model

import "github.com/google/uuid"

// ID is an identifier that knows its own kind.
//
// Each kind has its own string-backed type, so identifiers of different
// kinds are never equal when compared as ID values.
type ID interface {
	Kind() Kind
	String() string

	// Resolve dereferences the identifier through r.
	Resolve(r Resolver) (Entity, bool)
}

// Resolver looks records up by identifier. Implementations decide where
// the records come from; a miss returns false.
type Resolver interface {
	LookupAnswer(id AnswerID) (Answer, bool)
	LookupBinding(id BindingID) (Binding, bool)
	LookupCourse(id CourseID) (Course, bool)
	LookupQuestion(id QuestionID) (Question, bool)
	LookupTicket(id TicketID) (Ticket, bool)
	LookupUser(id UserID) (User, bool)
}

type (
	AnswerID   string
	BindingID  string
	CourseID   string
	QuestionID string
	TicketID   string
	UserID     string
)

func (AnswerID) Kind() Kind   { return KindAnswer }
func (BindingID) Kind() Kind  { return KindBinding }
func (CourseID) Kind() Kind   { return KindCourse }
func (QuestionID) Kind() Kind { return KindQuestion }
func (TicketID) Kind() Kind   { return KindTicket }
func (UserID) Kind() Kind     { return KindUser }

func (id AnswerID) String() string   { return string(id) }
func (id BindingID) String() string  { return string(id) }
func (id CourseID) String() string   { return string(id) }
func (id QuestionID) String() string { return string(id) }
func (id TicketID) String() string   { return string(id) }
func (id UserID) String() string     { return string(id) }

func (id AnswerID) Resolve(r Resolver) (Entity, bool) {
	return found[Answer](r.LookupAnswer(id))
}

func (id BindingID) Resolve(r Resolver) (Entity, bool) {
	return found[Binding](r.LookupBinding(id))
}

func (id CourseID) Resolve(r Resolver) (Entity, bool) {
	return found[Course](r.LookupCourse(id))
}

func (id QuestionID) Resolve(r Resolver) (Entity, bool) {
	return found[Question](r.LookupQuestion(id))
}

func (id TicketID) Resolve(r Resolver) (Entity, bool) {
	return found[Ticket](r.LookupTicket(id))
}

func (id UserID) Resolve(r Resolver) (Entity, bool) {
	return found[User](r.LookupUser(id))
}

// found converts a typed lookup result into an Entity without leaking a
// non-nil interface holding a zero record.
func found[E Entity](e E, ok bool) (Entity, bool) {
	if !ok {
		return nil, false
	}
	return e, true
}

// IDGenerator produces fresh identifier values.
type IDGenerator interface {
	Generate() string
}

// UUIDGenerator generates random RFC 4122 version 4 UUIDs.
//
// Thread-safety: UUIDGenerator is stateless and safe for concurrent use.
type UUIDGenerator struct{}

// Generate returns a new random UUID as a hyphenated string.
// Panics if the system random source fails.
func (UUIDGenerator) Generate() string {
	return uuid.Must(uuid.NewRandom()).String()
}

// newIDValue returns raw, or a freshly generated value when raw is empty.
func newIDValue(raw string) string {
	if raw != "" {
		return raw
	}
	return UUIDGenerator{}.Generate()
}
