package harness

import (
	"bytes"
	"maps"
	"slices"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot renders the files of a result in path order, each preceded by
// a "== <path>" header line.
func Snapshot(result *Result) []byte {
	var buf bytes.Buffer
	for _, name := range slices.Sorted(maps.Keys(result.Files)) {
		buf.WriteString("== ")
		buf.WriteString(name)
		buf.WriteByte('\n')
		buf.WriteString(result.Files[name])
	}
	return buf.Bytes()
}

// RunWithGolden executes a scenario and compares the written files against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns an error if the scenario could not run; a mismatch fails t.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := RunIn(t.TempDir(), scenario, nil)
	if err != nil {
		return nil, err
	}
	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares the files of an existing result against a golden
// file without re-running the scenario.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, Snapshot(result))
}
