package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// env is a data directory plus a config file that does not exist, so every
// command runs on the defaults.
type env struct {
	dir    string
	config string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	t.Setenv("BINDER_BASE_DIR", "")
	t.Setenv("BINDER_BACKEND", "")
	dir := t.TempDir()
	return &env{dir: filepath.Join(dir, "data"), config: filepath.Join(dir, "binder.yaml")}
}

// run executes the CLI with args and returns stdout, stderr and the error.
func (e *env) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(append([]string{"--config", e.config, "--base-dir", e.dir}, args...))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func (e *env) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, errOut, err := e.run(t, args...)
	require.NoError(t, err, "stderr: %s", errOut)
	return out
}

func decodeData(t *testing.T, out string, v any) {
	t.Helper()
	var resp struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, "ok", resp.Status)
	require.NoError(t, json.Unmarshal(resp.Data, v))
}

func seedSchool(t *testing.T, e *env) {
	t.Helper()
	e.mustRun(t, "add", "user", "--id", "u1", "--name", "Ann", "--password", "pw")
	e.mustRun(t, "add", "user", "--id", "u2", "--name", "Bob", "--password", "pw")
	e.mustRun(t, "add", "user", "--id", "u3", "--name", "Cleo", "--type", "admin")
	e.mustRun(t, "add", "course", "--id", "c1", "--name", "Algebra", "--teacher", "u3", "--year", "2024")
}

func TestAddAndList(t *testing.T) {
	e := newEnv(t)
	seedSchool(t, e)

	out := e.mustRun(t, "list", "user")
	assert.Equal(t, strings.Join([]string{
		`user u1 "Ann" STUDENT`,
		`user u2 "Bob" STUDENT`,
		`user u3 "Cleo" ADMIN`,
	}, "\n")+"\n", out)

	data, err := os.ReadFile(filepath.Join(e.dir, "users"))
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(data), "\n"))
}

func TestAddQuestion_JSON(t *testing.T) {
	e := newEnv(t)
	out := e.mustRun(t, "--format", "json", "add", "question", "--id", "q1", "--text", "2+2?",
		"--answer", "b", "--choice", "a=3", "--choice", "b=4")

	var q struct {
		ID      string `json:"id"`
		Choices []struct {
			Name string `json:"name"`
		} `json:"choices"`
	}
	decodeData(t, out, &q)
	assert.Equal(t, "q1", q.ID)
	require.Len(t, q.Choices, 2)
	assert.Equal(t, "a", q.Choices[0].Name)
}

func TestAddUser_BlankNameIsCommandError(t *testing.T) {
	e := newEnv(t)
	_, _, err := e.run(t, "add", "user", "--id", "u1", "--name", "  ")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, statErr := os.Stat(filepath.Join(e.dir, "users"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestAdd_InvalidPathIsCommandError(t *testing.T) {
	e := newEnv(t)
	_, _, err := e.run(t, "add", "user", "--id", "u1", "--name", "Ann", "--path", "users")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid store path")
}

func TestBindAndResolve(t *testing.T) {
	e := newEnv(t)
	seedSchool(t, e)

	out := e.mustRun(t, "bind", "course:c1", "user:u1", "--path", "/courses.bindings")
	assert.Contains(t, out, "course:c1 -> user:u1")
	assert.NotContains(t, out, "already bound")

	out = e.mustRun(t, "bind", "course:c1", "user:u1", "--path", "/courses.bindings")
	assert.Contains(t, out, "already bound")

	e.mustRun(t, "bind", "course:c1", "user:u2", "--path", "/courses.bindings")
	e.mustRun(t, "bind", "course:c1", "user:ghost", "--path", "/courses.bindings")

	out = e.mustRun(t, "resolve", "--path", "/courses.bindings", "--src", "course:c1", "--dest-kind", "user")
	assert.Equal(t, "user u1 \"Ann\" STUDENT\nuser u2 \"Bob\" STUDENT\n", sortLines(out))

	out = e.mustRun(t, "resolve", "--path", "/courses.bindings", "--raw")
	assert.Equal(t, 3, strings.Count(out, "binding "))

	out = e.mustRun(t, "list", "binding", "--path", "/courses.bindings")
	assert.Equal(t, 3, strings.Count(out, "\n"))
}

func TestBind_JSONReportsCreated(t *testing.T) {
	e := newEnv(t)

	var first, second bindResultJSON
	decodeData(t, e.mustRun(t, "--format", "json", "bind", "ticket:t1", "question:q1"), &first)
	decodeData(t, e.mustRun(t, "--format", "json", "bind", "ticket:t1", "question:q1"), &second)

	assert.True(t, first.Created)
	assert.False(t, second.Created)
	assert.Equal(t, first.Binding.ID, second.Binding.ID)
	assert.Equal(t, "t1", first.Binding.Src)
	assert.Equal(t, "question", first.Binding.DestKind)
}

// bindResultJSON mirrors the JSON shape of BindResult.
type bindResultJSON struct {
	Created bool `json:"created"`
	Binding struct {
		ID       string `json:"id"`
		Src      string `json:"src"`
		DestKind string `json:"dest_kind"`
	} `json:"binding"`
}

func TestBind_BadReference(t *testing.T) {
	e := newEnv(t)

	_, _, err := e.run(t, "bind", "c1", "user:u1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, _, err = e.run(t, "bind", "room:r1", "user:u1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown kind")
}

func TestEnroll(t *testing.T) {
	e := newEnv(t)
	seedSchool(t, e)

	out := e.mustRun(t, "enroll", "c1", "u2")
	assert.Contains(t, out, "enrolled u2 in c1")
	out = e.mustRun(t, "enroll", "c1", "u1")
	assert.Contains(t, out, `user u1 "Ann"`)
	assert.Contains(t, out, `user u2 "Bob"`)

	out = e.mustRun(t, "enroll", "c1", "u1")
	assert.Contains(t, out, "already enrolled u1 in c1")

	_, err := os.Stat(filepath.Join(e.dir, "users.bindings"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(e.dir, "courses.bindings"))
	assert.NoError(t, err)
}

func TestAddAnswer_BindsToQuestionShard(t *testing.T) {
	e := newEnv(t)
	e.mustRun(t, "add", "question", "--id", "q1", "--text", "?", "--answer", "a", "--choice", "a=yes")
	e.mustRun(t, "add", "answer", "--id", "a1", "--question", "q1", "--user", "u1", "--value", "a")

	_, err := os.Stat(filepath.Join(e.dir, "questions.bindings", "qb2622263703"))
	require.NoError(t, err)

	out := e.mustRun(t, "resolve", "--path", "/questions.bindings/qb2622263703", "--src", "question:q1")
	assert.Contains(t, out, "answer a1 question=q1 user=u1")
}

func TestStats(t *testing.T) {
	e := newEnv(t)
	seedSchool(t, e)

	var stats []struct {
		Kind    string `json:"kind"`
		Path    string `json:"path"`
		Records int    `json:"records"`
	}
	decodeData(t, e.mustRun(t, "--format", "json", "stats"), &stats)
	require.Len(t, stats, 6)

	counts := map[string]int{}
	for _, s := range stats {
		counts[s.Path] = s.Records
	}
	assert.Equal(t, 3, counts["/users"])
	assert.Equal(t, 1, counts["/courses"])
	assert.Equal(t, 0, counts["/bindings"])

	decodeData(t, e.mustRun(t, "--format", "json", "stats", "--all"), &stats)
	assert.Len(t, stats, 11)
}

func TestSQLiteBackend(t *testing.T) {
	e := newEnv(t)
	e.mustRun(t, "--backend", "sqlite", "add", "user", "--id", "u1", "--name", "Ann")
	e.mustRun(t, "--backend", "sqlite", "bind", "course:c1", "user:u1")

	out := e.mustRun(t, "--backend", "sqlite", "list", "user")
	assert.Equal(t, "user u1 \"Ann\" STUDENT\n", out)

	_, err := os.Stat(filepath.Join(e.dir, "binder.db"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(e.dir, "users"))
	assert.True(t, os.IsNotExist(err), "sqlite backend must not write line files")

	out = e.mustRun(t, "list", "user")
	assert.Equal(t, "(none)\n", out)
}

func TestConfigFile(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, os.WriteFile(e.config, []byte("paths:\n  users: /people\n"), 0o644))

	e.mustRun(t, "add", "user", "--id", "u1", "--name", "Ann")
	_, err := os.Stat(filepath.Join(e.dir, "people"))
	assert.NoError(t, err)
}

func TestConfigFile_Invalid(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, os.WriteFile(e.config, []byte("backend: dynamo\n"), 0o644))

	_, _, err := e.run(t, "stats")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "does not match schema")
}

func TestVerboseLogsToStderr(t *testing.T) {
	e := newEnv(t)
	out, errOut, err := e.run(t, "--verbose", "--format", "json", "list", "user")
	require.NoError(t, err)
	assert.Contains(t, errOut, "level=DEBUG")

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func sortLines(s string) string {
	lines := strings.Split(strings.TrimSuffix(s, "\n"), "\n")
	slices.Sort(lines)
	return strings.Join(lines, "\n") + "\n"
}

func TestBackendFlag_Invalid(t *testing.T) {
	e := newEnv(t)

	_, _, err := e.run(t, "--backend", "dynamo", "stats")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "invalid config")
}
