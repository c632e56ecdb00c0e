package store

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/binder/internal/model"
)

// newTestLogger returns a logger writing text records into buf.
func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// createFileBackend creates a file backend in a fresh temp directory.
func createFileBackend(t *testing.T) *FileBackend {
	t.Helper()
	b, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)
	return b
}

// createSQLiteBackend creates a SQLite backend in a fresh temp directory.
func createSQLiteBackend(t *testing.T) *SQLiteBackend {
	t.Helper()
	b, err := OpenSQLite(t.TempDir() + "/test.db")
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	return b
}

func testUsers(t *testing.T) map[model.UserID]model.User {
	t.Helper()
	out := make(map[model.UserID]model.User)
	for _, spec := range []struct {
		id, name string
		typ      model.UserType
	}{
		{"u1", "Ann", model.UserTypeStudent},
		{"u2", "Bob", model.UserTypeAdmin},
		{"u3", "Cleo", model.UserTypeStudent},
	} {
		u, err := model.NewUser(model.UserID(spec.id), spec.name, "pw-"+spec.id, spec.typ)
		require.NoError(t, err)
		out[u.ID] = u
	}
	return out
}

func testQuestion(t *testing.T) model.Question {
	t.Helper()
	q, err := model.NewQuestion("q1", "Pick <one> & go", "b", []model.Choice{
		{Name: "a", Description: "first"},
		{Name: "b", Description: "second"},
	})
	require.NoError(t, err)
	return q
}

func testTicket(t *testing.T) model.Ticket {
	t.Helper()
	tk, err := model.NewTicket("t1", "u2", time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC), "Midterm")
	require.NoError(t, err)
	return tk
}
