package persist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/binder/internal/model"
)

func TestStats(t *testing.T) {
	f := newFixture(t)
	assert.Empty(t, f.coord.Stats())

	require.NoError(t, f.coord.CacheUser("", mustUser(t, "u1", "Ann")))
	require.NoError(t, f.coord.CacheUser("", mustUser(t, "u2", "Bob")))
	require.NoError(t, f.coord.CacheCourse("/archive", mustCourse(t, "c1", "Algebra")))
	_, _, err := f.coord.Bind("", "c1", "u1", model.KindCourse, model.KindUser)
	require.NoError(t, err)

	assert.Equal(t, []PathStats{
		{Kind: model.KindBinding, Path: "/bindings", Records: 1},
		{Kind: model.KindCourse, Path: "/archive", Records: 1},
		{Kind: model.KindUser, Path: "/users", Records: 2},
	}, f.coord.Stats())
}

func TestFlush_WritesEveryCachedPath(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.coord.CacheUser("", mustUser(t, "u1", "Ann")))
	require.NoError(t, f.coord.CacheUser("/staff", mustUser(t, "u2", "Bob")))
	require.NoError(t, f.coord.CacheCourse("", mustCourse(t, "c1", "Algebra")))

	require.NoError(t, f.coord.Flush())

	assert.Equal(t, 1, f.backend.writeCount("/users"))
	assert.Equal(t, 1, f.backend.writeCount("/staff"))
	assert.Equal(t, 1, f.backend.writeCount("/courses"))
	assert.Zero(t, f.backend.writeCount("/tickets"))
}

func TestFlush_SkipsSavedPaths(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.coord.CacheUser("", mustUser(t, "u1", "Ann")))
	require.NoError(t, f.coord.SaveUsers(""))
	_, err := f.coord.Courses("")
	require.NoError(t, err)
	_, _, err = f.coord.Bind("", "c1", "u1", model.KindCourse, model.KindUser)
	require.NoError(t, err)

	require.NoError(t, f.coord.Flush())

	assert.Equal(t, 1, f.backend.writeCount("/users"))
	assert.Equal(t, 1, f.backend.writeCount("/bindings"))
	assert.Zero(t, f.backend.writeCount("/courses"))
}

func TestFlush_RetriesSwallowedFailures(t *testing.T) {
	f := newFixture(t)
	f.backend.failWrites(errDiskFull)
	require.NoError(t, f.coord.CacheUser("", mustUser(t, "u1", "Ann")))
	require.NoError(t, f.coord.SaveUsers(""))
	_, _, err := f.coord.Bind("", "c1", "u1", model.KindCourse, model.KindUser)
	require.NoError(t, err)

	f.backend.failWrites(nil)
	require.NoError(t, f.coord.Flush())
	assert.Equal(t, 2, f.backend.writeCount("/users"))
	assert.Equal(t, 2, f.backend.writeCount("/bindings"))

	// Nothing is pending any more.
	require.NoError(t, f.coord.Flush())
	assert.Equal(t, 2, f.backend.writeCount("/users"))

	fresh := newFixtureOn(t, f.files)
	users, err := fresh.coord.Users("")
	require.NoError(t, err)
	assert.Len(t, users, 1)
	idx, err := fresh.coord.Bindings("")
	require.NoError(t, err)
	assert.Equal(t, 1, idx.Len())
}
