package persist

import (
	"bytes"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/binder/internal/model"
	"github.com/roach88/binder/internal/store"
	"github.com/roach88/binder/internal/testutil"
)

// countingBackend wraps a backend, counts reads per path and can be told
// to fail writes.
type countingBackend struct {
	store.Backend

	mu        sync.Mutex
	reads     map[string]int
	writes    map[string]int
	failWrite error
}

func newCountingBackend(inner store.Backend) *countingBackend {
	return &countingBackend{
		Backend: inner,
		reads:   make(map[string]int),
		writes:  make(map[string]int),
	}
}

func (b *countingBackend) ReadLines(rel string) ([][]byte, error) {
	b.mu.Lock()
	b.reads[rel]++
	b.mu.Unlock()
	return b.Backend.ReadLines(rel)
}

func (b *countingBackend) WriteLines(rel string, lines [][]byte) error {
	b.mu.Lock()
	b.writes[rel]++
	fail := b.failWrite
	b.mu.Unlock()
	if fail != nil {
		return fail
	}
	return b.Backend.WriteLines(rel, lines)
}

// failWrites makes every later write fail with err; nil restores writes.
func (b *countingBackend) failWrites(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failWrite = err
}

func (b *countingBackend) readCount(rel string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.reads[rel]
}

func (b *countingBackend) writeCount(rel string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writes[rel]
}

var errDiskFull = errors.New("disk full")

type fixture struct {
	coord   *Coordinator
	files   *store.FileBackend
	backend *countingBackend
	logs    *bytes.Buffer
}

// newFixture creates a coordinator over a fresh directory with sequential
// binding ids (b-1, b-2, ...).
func newFixture(t *testing.T) *fixture {
	t.Helper()
	files, err := store.NewFileBackend(t.TempDir())
	require.NoError(t, err)
	return newFixtureOn(t, files)
}

// newFixtureOn creates a fresh coordinator over an existing directory.
func newFixtureOn(t *testing.T, files *store.FileBackend) *fixture {
	t.Helper()
	backend := newCountingBackend(files)
	logs := &bytes.Buffer{}
	coord, err := New(Options{
		Backend:     backend,
		Logger:      slog.New(slog.NewTextHandler(&lockedWriter{w: logs}, &slog.HandlerOptions{Level: slog.LevelDebug})),
		IDGenerator: testutil.NewSequenceGenerator("b"),
	})
	require.NoError(t, err)
	return &fixture{coord: coord, files: files, backend: backend, logs: logs}
}

// lockedWriter serializes writes from concurrent log calls.
type lockedWriter struct {
	mu sync.Mutex
	w  *bytes.Buffer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

func mustUser(t *testing.T, id, name string) model.User {
	t.Helper()
	u, err := model.NewUser(model.UserID(id), name, "pw", model.UserTypeStudent)
	require.NoError(t, err)
	return u
}

func mustCourse(t *testing.T, id, name string) model.Course {
	t.Helper()
	c, err := model.NewCourse(model.CourseID(id), name, "teacher", 2024)
	require.NoError(t, err)
	return c
}
