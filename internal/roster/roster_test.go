package roster

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/binder/internal/model"
	"github.com/roach88/binder/internal/persist"
	"github.com/roach88/binder/internal/store"
	"github.com/roach88/binder/internal/testutil"
)

var start = time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC)

type fixture struct {
	files  *store.FileBackend
	coord  *persist.Coordinator
	roster *Roster
	clock  *testutil.StepClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	files, err := store.NewFileBackend(t.TempDir())
	require.NoError(t, err)
	return newFixtureOn(t, files)
}

func newFixtureOn(t *testing.T, files *store.FileBackend) *fixture {
	t.Helper()
	coord, err := persist.New(persist.Options{
		Backend:     files,
		IDGenerator: testutil.NewSequenceGenerator("b"),
	})
	require.NoError(t, err)
	clock := testutil.NewStepClock(start, time.Minute)
	return &fixture{files: files, coord: coord, roster: New(coord, WithClock(clock)), clock: clock}
}

// seed caches and saves a small school: two students, one admin, two
// courses, a ticket and two questions.
func (f *fixture) seed(t *testing.T) {
	t.Helper()
	for _, u := range []struct {
		id, name string
		typ      model.UserType
	}{
		{"u1", "Ann", model.UserTypeStudent},
		{"u2", "Bob", model.UserTypeStudent},
		{"u3", "Cleo", model.UserTypeAdmin},
	} {
		user, err := model.NewUser(model.UserID(u.id), u.name, "pw", u.typ)
		require.NoError(t, err)
		require.NoError(t, f.coord.CacheUser("", user))
	}
	for _, c := range []struct{ id, name string }{{"c1", "Algebra"}, {"c2", "Biology"}} {
		course, err := model.NewCourse(model.CourseID(c.id), c.name, "u3", 2024)
		require.NoError(t, err)
		require.NoError(t, f.coord.CacheCourse("", course))
	}
	ticket, err := model.NewTicket("t1", "u3", start, "Midterm")
	require.NoError(t, err)
	require.NoError(t, f.coord.CacheTicket("", ticket))
	for _, id := range []model.QuestionID{"q1", "q2"} {
		q, err := model.NewQuestion(id, "pick", "a", []model.Choice{{Name: "a"}, {Name: "b"}})
		require.NoError(t, err)
		require.NoError(t, f.coord.CacheQuestion("", q))
	}
	require.NoError(t, f.coord.Flush())
}

func userIDs(users []model.User) []model.UserID {
	out := make([]model.UserID, len(users))
	for i, u := range users {
		out[i] = u.ID
	}
	return out
}

func TestEnroll_BothDirections(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	created, err := f.roster.Enroll("c1", "u2")
	require.NoError(t, err)
	assert.True(t, created)
	created, err = f.roster.Enroll("c1", "u1")
	require.NoError(t, err)
	assert.True(t, created)
	_, err = f.roster.Enroll("c2", "u1")
	require.NoError(t, err)

	students, err := f.roster.StudentsInCourse("c1")
	require.NoError(t, err)
	assert.Equal(t, []model.UserID{"u1", "u2"}, userIDs(students))

	courses, err := f.roster.CoursesForUser("u1")
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, "Algebra", courses[0].Name)
	assert.Equal(t, "Biology", courses[1].Name)

	idx, err := f.coord.Bindings("/courses.bindings")
	require.NoError(t, err)
	assert.Equal(t, 3, idx.Len())
	idx, err = f.coord.Bindings("/users.bindings")
	require.NoError(t, err)
	assert.Equal(t, 3, idx.Len())
}

func TestEnroll_Twice(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	_, err := f.roster.Enroll("c1", "u1")
	require.NoError(t, err)
	created, err := f.roster.Enroll("c1", "u1")
	require.NoError(t, err)
	assert.False(t, created)

	students, err := f.roster.StudentsInCourse("c1")
	require.NoError(t, err)
	assert.Len(t, students, 1)
}

func TestEnroll_SurvivesRestart(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	_, err := f.roster.Enroll("c1", "u1")
	require.NoError(t, err)

	fresh := newFixtureOn(t, f.files)
	students, err := fresh.roster.StudentsInCourse("c1")
	require.NoError(t, err)
	assert.Equal(t, []model.UserID{"u1"}, userIDs(students))
}

func TestStudentsInCourse_SkipsMissingUsers(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	_, err := f.roster.Enroll("c1", "u1")
	require.NoError(t, err)
	_, err = f.roster.Enroll("c1", "ghost")
	require.NoError(t, err)

	students, err := f.roster.StudentsInCourse("c1")
	require.NoError(t, err)
	assert.Equal(t, []model.UserID{"u1"}, userIDs(students))
}

func TestTicketsAndQuestions(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	_, err := f.roster.Enroll("c1", "u1")
	require.NoError(t, err)

	created, err := f.roster.AttachTicket("c1", "t1")
	require.NoError(t, err)
	assert.True(t, created)
	_, err = f.roster.AttachQuestion("t1", "q2")
	require.NoError(t, err)
	_, err = f.roster.AttachQuestion("t1", "q1")
	require.NoError(t, err)

	tickets, err := f.roster.TicketsForCourse("c1")
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, "Midterm", tickets[0].Title)

	// The enrollment shares the course binding file but is filtered out.
	students, err := f.roster.StudentsInCourse("c1")
	require.NoError(t, err)
	assert.Len(t, students, 1)

	questions, err := f.roster.QuestionsForTicket("t1")
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, model.QuestionID("q1"), questions[0].ID)
	assert.Equal(t, model.QuestionID("q2"), questions[1].ID)

	none, err := f.roster.TicketsForCourse("c2")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSubmitAnswer(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	a1, err := f.roster.SubmitAnswer(Submission{ID: "a1", Value: "a", Question: "q1", User: "u1", Course: "c1", Ticket: "t1"})
	require.NoError(t, err)
	assert.Equal(t, start, a1.Submitted)
	a2, err := f.roster.SubmitAnswer(Submission{ID: "a2", Value: "b", Question: "q1", User: "u2", Course: "c1", Ticket: "t1"})
	require.NoError(t, err)
	assert.Equal(t, start.Add(time.Minute), a2.Submitted)
	_, err = f.roster.SubmitAnswer(Submission{ID: "a3", Value: "a", Question: "q2", User: "u1", Course: "c1", Ticket: "t1"})
	require.NoError(t, err)

	answers, err := f.roster.AnswersForQuestion("q1")
	require.NoError(t, err)
	assert.Equal(t, []model.Answer{a1, a2}, answers)

	idx, err := f.coord.Bindings("/questions.bindings/qb2622263703")
	require.NoError(t, err)
	assert.Equal(t, 2, idx.Len())

	fresh := newFixtureOn(t, f.files)
	stored, err := fresh.coord.Answers("")
	require.NoError(t, err)
	assert.Len(t, stored, 3)
	again, err := fresh.roster.AnswersForQuestion("q2")
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, model.AnswerID("a3"), again[0].ID)
}

func TestSubmitAnswer_KeepsEarlierAnswersOnDisk(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	_, err := f.roster.SubmitAnswer(Submission{ID: "a1", Value: "a", Question: "q1", User: "u1"})
	require.NoError(t, err)

	fresh := newFixtureOn(t, f.files)
	_, err = fresh.roster.SubmitAnswer(Submission{ID: "a2", Value: "b", Question: "q1", User: "u2"})
	require.NoError(t, err)

	stored, err := newFixtureOn(t, f.files).coord.Answers("")
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestSubmitAnswer_GeneratesID(t *testing.T) {
	f := newFixture(t)
	a, err := f.roster.SubmitAnswer(Submission{Value: "a", Question: "q1"})
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
}

func TestSubmitAnswer_RequiresQuestion(t *testing.T) {
	f := newFixture(t)
	_, err := f.roster.SubmitAnswer(Submission{ID: "a1", Value: "a"})
	require.ErrorIs(t, err, model.ErrEmptyID)
}

func TestInvalidPathOverridesFailAtConstruction(t *testing.T) {
	files, err := store.NewFileBackend(t.TempDir())
	require.NoError(t, err)
	_, err = persist.New(persist.Options{Backend: files, Paths: persist.Paths{Courses: "courses"}})
	assert.ErrorIs(t, err, store.ErrInvalidPath)
}
