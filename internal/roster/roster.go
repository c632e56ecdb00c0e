package roster

import (
	"cmp"
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"time"

	"github.com/roach88/binder/internal/binding"
	"github.com/roach88/binder/internal/model"
	"github.com/roach88/binder/internal/persist"
)

// Store is the part of the persistence coordinator the roster needs.
type Store interface {
	Paths() persist.Paths
	Bind(path, src, dest string, srcKind, destKind model.Kind) (model.Binding, bool, error)
	Resolve(path string, preds ...binding.Predicate) (iter.Seq[model.Entity], error)
	Answers(path string) (map[model.AnswerID]model.Answer, error)
	CacheAnswer(path string, a model.Answer) error
	SaveAnswers(path string) error
}

var _ Store = (*persist.Coordinator)(nil)

// Clock supplies submission times.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time { return time.Now() }

// Roster runs relationship operations against a Store.
type Roster struct {
	store  Store
	clock  Clock
	logger *slog.Logger
}

// Option configures a Roster.
type Option func(*Roster)

// WithClock sets the clock used for answer submission times.
func WithClock(c Clock) Option {
	return func(r *Roster) { r.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Roster) { r.logger = l }
}

// New creates a roster over s.
func New(s Store, opts ...Option) *Roster {
	r := &Roster{store: s, clock: SystemClock{}, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Enroll records that user takes course. Both directions are stored; an
// existing enrollment is left as it is. created reports whether anything
// new was written.
func (r *Roster) Enroll(course model.CourseID, user model.UserID) (created bool, err error) {
	paths := r.store.Paths()
	_, fwd, err := r.store.Bind(paths.BindingsFor(model.KindCourse), string(course), string(user), model.KindCourse, model.KindUser)
	if err != nil {
		return false, fmt.Errorf("enroll %s in %s: %w", user, course, err)
	}
	_, back, err := r.store.Bind(paths.BindingsFor(model.KindUser), string(user), string(course), model.KindUser, model.KindCourse)
	if err != nil {
		return fwd, fmt.Errorf("enroll %s in %s: %w", user, course, err)
	}
	if fwd || back {
		r.logger.Info("user enrolled", "course", string(course), "user", string(user))
	}
	return fwd || back, nil
}

// StudentsInCourse returns the users enrolled in course, ordered by id.
func (r *Roster) StudentsInCourse(course model.CourseID) ([]model.User, error) {
	return query[model.User](r.store, r.store.Paths().BindingsFor(model.KindCourse), course, model.KindUser)
}

// CoursesForUser returns the courses user is enrolled in, ordered by id.
func (r *Roster) CoursesForUser(user model.UserID) ([]model.Course, error) {
	return query[model.Course](r.store, r.store.Paths().BindingsFor(model.KindUser), user, model.KindCourse)
}

// AttachTicket adds ticket to course.
func (r *Roster) AttachTicket(course model.CourseID, ticket model.TicketID) (bool, error) {
	_, created, err := r.store.Bind(r.store.Paths().BindingsFor(model.KindCourse), string(course), string(ticket), model.KindCourse, model.KindTicket)
	if err != nil {
		return false, fmt.Errorf("attach ticket %s to %s: %w", ticket, course, err)
	}
	return created, nil
}

// TicketsForCourse returns the tickets of course, ordered by id.
func (r *Roster) TicketsForCourse(course model.CourseID) ([]model.Ticket, error) {
	return query[model.Ticket](r.store, r.store.Paths().BindingsFor(model.KindCourse), course, model.KindTicket)
}

// AttachQuestion adds question to ticket.
func (r *Roster) AttachQuestion(ticket model.TicketID, question model.QuestionID) (bool, error) {
	_, created, err := r.store.Bind(r.store.Paths().BindingsFor(model.KindTicket), string(ticket), string(question), model.KindTicket, model.KindQuestion)
	if err != nil {
		return false, fmt.Errorf("attach question %s to %s: %w", question, ticket, err)
	}
	return created, nil
}

// QuestionsForTicket returns the questions of ticket, ordered by id.
func (r *Roster) QuestionsForTicket(ticket model.TicketID) ([]model.Question, error) {
	return query[model.Question](r.store, r.store.Paths().BindingsFor(model.KindTicket), ticket, model.KindQuestion)
}

// Submission is one answer as handed in by a user.
type Submission struct {
	ID       model.AnswerID // optional, generated when empty
	Value    string
	Question model.QuestionID
	User     model.UserID
	Course   model.CourseID
	Ticket   model.TicketID
}

// SubmitAnswer stores the answer at the default answers path, stamped with
// the roster clock, and binds it to its question.
func (r *Roster) SubmitAnswer(s Submission) (model.Answer, error) {
	a, err := model.NewAnswer(s.ID, s.Value, r.clock.Now(), s.Question, s.User, s.Course, s.Ticket)
	if err != nil {
		return model.Answer{}, fmt.Errorf("submit answer: %w", err)
	}

	// Load before caching so earlier answers survive the save.
	if _, err := r.store.Answers(""); err != nil {
		return model.Answer{}, fmt.Errorf("submit answer: %w", err)
	}
	if err := r.store.CacheAnswer("", a); err != nil {
		return model.Answer{}, fmt.Errorf("submit answer: %w", err)
	}
	if err := r.store.SaveAnswers(""); err != nil {
		return model.Answer{}, fmt.Errorf("submit answer: %w", err)
	}

	shard := r.store.Paths().QuestionAnswers(a.Question)
	if _, _, err := r.store.Bind(shard, string(a.Question), string(a.ID), model.KindQuestion, model.KindAnswer); err != nil {
		return model.Answer{}, fmt.Errorf("submit answer: %w", err)
	}
	r.logger.Debug("answer submitted", "answer", string(a.ID), "question", string(a.Question), "shard", shard)
	return a, nil
}

// AnswersForQuestion returns the answers submitted for question, ordered
// by id.
func (r *Roster) AnswersForQuestion(question model.QuestionID) ([]model.Answer, error) {
	return query[model.Answer](r.store, r.store.Paths().QuestionAnswers(question), question, model.KindAnswer)
}

// query resolves the bindings at path leaving src towards records of kind
// dest and returns them as E, ordered by id.
func query[E model.Entity](s Store, path string, src model.ID, dest model.Kind) ([]E, error) {
	seq, err := s.Resolve(path, binding.SourceIs(src), binding.DestKindIs(dest))
	if err != nil {
		return nil, fmt.Errorf("query %s of %s: %w", dest, src, err)
	}
	var out []E
	for e := range seq {
		if v, ok := e.(E); ok {
			out = append(out, v)
		}
	}
	slices.SortFunc(out, func(a, b E) int {
		return cmp.Compare(a.EntityID().String(), b.EntityID().String())
	})
	return out, nil
}
