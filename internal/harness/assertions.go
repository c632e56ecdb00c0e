package harness

import (
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/roach88/binder/internal/binding"
	"github.com/roach88/binder/internal/model"
	"github.com/roach88/binder/internal/persist"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// EvaluateAssertions checks every assertion against the coordinator and
// returns one message per failure.
func EvaluateAssertions(c *persist.Coordinator, assertions []Assertion) []string {
	var msgs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertResolve:
			err = assertResolve(c, a)
		case AssertBindingCount:
			err = assertBindingCount(c, a)
		case AssertRecordCount:
			err = assertRecordCount(c, a)
		case AssertRecord:
			err = assertRecord(c, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			msgs = append(msgs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return msgs
}

// assertResolve resolves the bindings at the assertion path and compares
// the destination ids with the expected ones as sets.
func assertResolve(c *persist.Coordinator, a Assertion) error {
	var preds []binding.Predicate
	if a.Src != "" {
		src, err := parseRef(a.Src)
		if err != nil {
			return err
		}
		preds = append(preds, binding.SourceIs(src))
	}
	if a.DestKind != "" {
		preds = append(preds, binding.DestKindIs(model.Kind(a.DestKind)))
	}

	seq, err := c.Resolve(a.Path, preds...)
	if err != nil {
		return err
	}
	got := []string{}
	for e := range seq {
		got = append(got, e.EntityID().String())
	}
	want := slices.Clone(a.IDs)
	if want == nil {
		want = []string{}
	}
	slices.Sort(got)
	slices.Sort(want)

	if !slices.Equal(got, want) {
		return &AssertionError{
			Type:     AssertResolve,
			Expected: fmt.Sprintf("%v from %s", want, displayPath(a.Path)),
			Actual:   fmt.Sprintf("%v", got),
		}
	}
	return nil
}

func assertBindingCount(c *persist.Coordinator, a Assertion) error {
	idx, err := c.Bindings(a.Path)
	if err != nil {
		return err
	}
	if n := idx.Len(); n != a.Count {
		return &AssertionError{
			Type:     AssertBindingCount,
			Expected: fmt.Sprintf("%d bindings at %s", a.Count, displayPath(a.Path)),
			Actual:   fmt.Sprintf("%d bindings", n),
		}
	}
	return nil
}

func assertRecordCount(c *persist.Coordinator, a Assertion) error {
	records, err := recordsOf(c, model.Kind(a.Kind), a.Path)
	if err != nil {
		return err
	}
	if len(records) != a.Count {
		return &AssertionError{
			Type:     AssertRecordCount,
			Expected: fmt.Sprintf("%d %s records at %s", a.Count, a.Kind, displayPath(a.Path)),
			Actual:   fmt.Sprintf("%d records", len(records)),
		}
	}
	return nil
}

// assertRecord compares the expected fields with the record's JSON form.
func assertRecord(c *persist.Coordinator, a Assertion) error {
	records, err := recordsOf(c, model.Kind(a.Kind), a.Path)
	if err != nil {
		return err
	}
	rec, ok := records[a.ID]
	if !ok {
		return &AssertionError{
			Type:     AssertRecord,
			Expected: fmt.Sprintf("%s %s at %s", a.Kind, a.ID, displayPath(a.Path)),
			Actual:   "record not found",
		}
	}

	actual, err := toJSONMap(rec)
	if err != nil {
		return err
	}
	expected, err := toJSONMap(a.Expect)
	if err != nil {
		return err
	}
	for key, want := range expected {
		got, exists := actual[key]
		if !exists {
			return &AssertionError{
				Type:     AssertRecord,
				Expected: fmt.Sprintf("field %q to exist", key),
				Actual:   fmt.Sprintf("field %q not present", key),
			}
		}
		if !reflect.DeepEqual(want, got) {
			return &AssertionError{
				Type:     AssertRecord,
				Expected: fmt.Sprintf("field %q = %v", key, want),
				Actual:   fmt.Sprintf("field %q = %v", key, got),
			}
		}
	}
	return nil
}

// recordsOf returns the records of kind at path keyed by id.
func recordsOf(c *persist.Coordinator, kind model.Kind, path string) (map[string]model.Entity, error) {
	switch kind {
	case model.KindAnswer:
		m, err := c.Answers(path)
		return entities(m), err
	case model.KindCourse:
		m, err := c.Courses(path)
		return entities(m), err
	case model.KindQuestion:
		m, err := c.Questions(path)
		return entities(m), err
	case model.KindTicket:
		m, err := c.Tickets(path)
		return entities(m), err
	case model.KindUser:
		m, err := c.Users(path)
		return entities(m), err
	case model.KindBinding:
		idx, err := c.Bindings(path)
		if err != nil {
			return nil, err
		}
		out := make(map[string]model.Entity)
		for id, b := range idx.Snapshot() {
			out[string(id)] = b
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %q", model.ErrUnknownKind, kind)
}

func entities[K ~string, V model.Entity](m map[K]V) map[string]model.Entity {
	out := make(map[string]model.Entity, len(m))
	for k, v := range m {
		out[string(k)] = v
	}
	return out
}

// toJSONMap normalizes v through JSON so YAML and record values compare
// with the same types.
func toJSONMap(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func displayPath(p string) string {
	if p == "" {
		return "default path"
	}
	return p
}
