package persist

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"

	"github.com/roach88/binder/internal/binding"
	"github.com/roach88/binder/internal/model"
	"github.com/roach88/binder/internal/store"
)

// Options configures a Coordinator.
type Options struct {
	// Backend stores the collections. Required.
	Backend store.Backend

	// Logger receives storage diagnostics. Defaults to slog.Default().
	Logger *slog.Logger

	// IDGenerator produces binding identifiers for Bind.
	// Defaults to model.UUIDGenerator.
	IDGenerator model.IDGenerator

	// Paths overrides the default store paths. Empty entries keep the
	// standard layout.
	Paths Paths
}

// Coordinator owns the caches of every record kind and mediates all
// load, cache and save calls. Create one per base directory with New and
// pass it to whatever needs storage.
//
// Thread-safety: all methods are safe for concurrent use.
type Coordinator struct {
	logger *slog.Logger
	ids    model.IDGenerator
	paths  Paths

	answers   *collection[model.AnswerID, model.Answer]
	courses   *collection[model.CourseID, model.Course]
	questions *collection[model.QuestionID, model.Question]
	tickets   *collection[model.TicketID, model.Ticket]
	users     *collection[model.UserID, model.User]
	bindings  *bindingCollection
}

var _ model.Resolver = (*Coordinator)(nil)

// New creates a coordinator. Nothing is read until a collection is used.
func New(opts Options) (*Coordinator, error) {
	if opts.Backend == nil {
		return nil, errors.New("persist: backend is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ids := opts.IDGenerator
	if ids == nil {
		ids = model.UUIDGenerator{}
	}
	paths := opts.Paths.WithDefaults()
	if err := paths.Validate(); err != nil {
		return nil, fmt.Errorf("persist: %w", err)
	}

	b := opts.Backend
	return &Coordinator{
		logger:    logger,
		ids:       ids,
		paths:     paths,
		answers:   newCollection(store.NewTable(b, store.AnswerCodec, logger), paths.Answers, logger),
		courses:   newCollection(store.NewTable(b, store.CourseCodec, logger), paths.Courses, logger),
		questions: newCollection(store.NewTable(b, store.QuestionCodec, logger), paths.Questions, logger),
		tickets:   newCollection(store.NewTable(b, store.TicketCodec, logger), paths.Tickets, logger),
		users:     newCollection(store.NewTable(b, store.UserCodec, logger), paths.Users, logger),
		bindings:  newBindingCollection(store.NewTable(b, store.BindingCodec, logger), paths.Bindings, logger),
	}, nil
}

// Paths returns the store paths in use.
func (c *Coordinator) Paths() Paths {
	return c.paths
}

// Answers returns the answers stored at path ("" for the default path).
func (c *Coordinator) Answers(path string) (map[model.AnswerID]model.Answer, error) {
	return c.answers.getOrLoad(path)
}

// CacheAnswer puts a into the cache of path without writing it.
func (c *Coordinator) CacheAnswer(path string, a model.Answer) error {
	return c.answers.cache(path, a)
}

// SaveAnswers writes the cached answers of path.
func (c *Coordinator) SaveAnswers(path string) error {
	return c.answers.save(path)
}

// Courses returns the courses stored at path ("" for the default path).
func (c *Coordinator) Courses(path string) (map[model.CourseID]model.Course, error) {
	return c.courses.getOrLoad(path)
}

// CacheCourse puts course into the cache of path without writing it.
func (c *Coordinator) CacheCourse(path string, course model.Course) error {
	return c.courses.cache(path, course)
}

// SaveCourses writes the cached courses of path.
func (c *Coordinator) SaveCourses(path string) error {
	return c.courses.save(path)
}

// Questions returns the questions stored at path ("" for the default path).
func (c *Coordinator) Questions(path string) (map[model.QuestionID]model.Question, error) {
	return c.questions.getOrLoad(path)
}

// CacheQuestion puts q into the cache of path without writing it.
func (c *Coordinator) CacheQuestion(path string, q model.Question) error {
	return c.questions.cache(path, q)
}

// SaveQuestions writes the cached questions of path.
func (c *Coordinator) SaveQuestions(path string) error {
	return c.questions.save(path)
}

// Tickets returns the tickets stored at path ("" for the default path).
func (c *Coordinator) Tickets(path string) (map[model.TicketID]model.Ticket, error) {
	return c.tickets.getOrLoad(path)
}

// CacheTicket puts t into the cache of path without writing it.
func (c *Coordinator) CacheTicket(path string, t model.Ticket) error {
	return c.tickets.cache(path, t)
}

// SaveTickets writes the cached tickets of path.
func (c *Coordinator) SaveTickets(path string) error {
	return c.tickets.save(path)
}

// Users returns the users stored at path ("" for the default path).
func (c *Coordinator) Users(path string) (map[model.UserID]model.User, error) {
	return c.users.getOrLoad(path)
}

// CacheUser puts u into the cache of path without writing it.
func (c *Coordinator) CacheUser(path string, u model.User) error {
	return c.users.cache(path, u)
}

// SaveUsers writes the cached users of path.
func (c *Coordinator) SaveUsers(path string) error {
	return c.users.save(path)
}

// Bindings returns the live binding index of path ("" for the default
// binding path). The index is shared; later binds to the same path show up
// in it.
func (c *Coordinator) Bindings(path string) (*binding.Index, error) {
	return c.bindings.getOrLoad(path)
}

// CacheBinding puts b into the index of path without writing it.
func (c *Coordinator) CacheBinding(path string, b model.Binding) error {
	return c.bindings.cache(path, b)
}

// SaveBindings writes the binding index of path.
func (c *Coordinator) SaveBindings(path string) error {
	return c.bindings.save(path)
}

// Bind records an edge from src to dest in the binding file at path and
// persists the file. If an equal edge is already stored the call changes
// nothing and returns the stored binding with created=false.
func (c *Coordinator) Bind(path, src, dest string, srcKind, destKind model.Kind) (b model.Binding, created bool, err error) {
	candidate, err := model.NewBindingFromRaw(model.BindingID(c.ids.Generate()), src, dest, srcKind, destKind)
	if err != nil {
		return model.Binding{}, false, fmt.Errorf("bind: %w", err)
	}
	return c.BindEdge(path, candidate)
}

// BindEdge is Bind for a binding that already carries its identifier.
func (c *Coordinator) BindEdge(path string, candidate model.Binding) (b model.Binding, created bool, err error) {
	b, created, err = c.bindings.bind(path, candidate)
	if err != nil {
		return b, created, fmt.Errorf("bind: %w", err)
	}
	return b, created, nil
}

// Resolve yields the records referenced by the bindings at path that
// satisfy every predicate. Destinations are looked up at their kind's
// default path; missing ones are skipped.
func (c *Coordinator) Resolve(path string, preds ...binding.Predicate) (iter.Seq[model.Entity], error) {
	idx, err := c.bindings.getOrLoad(path)
	if err != nil {
		return nil, err
	}
	return idx.Resolve(c, preds...), nil
}

// Select yields the bindings at path that satisfy every predicate.
func (c *Coordinator) Select(path string, preds ...binding.Predicate) (iter.Seq[model.Binding], error) {
	idx, err := c.bindings.getOrLoad(path)
	if err != nil {
		return nil, err
	}
	return idx.Select(preds...), nil
}

// LookupAnswer finds an answer at the default answers path.
func (c *Coordinator) LookupAnswer(id model.AnswerID) (model.Answer, bool) {
	return c.answers.lookup("", id)
}

// LookupBinding finds a binding at the default bindings path.
func (c *Coordinator) LookupBinding(id model.BindingID) (model.Binding, bool) {
	return c.bindings.lookup("", id)
}

// LookupCourse finds a course at the default courses path.
func (c *Coordinator) LookupCourse(id model.CourseID) (model.Course, bool) {
	return c.courses.lookup("", id)
}

// LookupQuestion finds a question at the default questions path.
func (c *Coordinator) LookupQuestion(id model.QuestionID) (model.Question, bool) {
	return c.questions.lookup("", id)
}

// LookupTicket finds a ticket at the default tickets path.
func (c *Coordinator) LookupTicket(id model.TicketID) (model.Ticket, bool) {
	return c.tickets.lookup("", id)
}

// LookupUser finds a user at the default users path.
func (c *Coordinator) LookupUser(id model.UserID) (model.User, bool) {
	return c.users.lookup("", id)
}
