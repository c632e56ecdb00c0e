package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/binder/internal/model"
)

// Scenario defines a binding scenario: records to start from, a flow of
// relationship operations and assertions on the final state.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Records are cached and saved before the flow runs.
	Records []Record `yaml:"records,omitempty"`

	// Flow contains the operations under test.
	Flow []FlowStep `yaml:"flow"`

	// Assertions validate the final state.
	Assertions []Assertion `yaml:"assertions"`
}

// Record is one stored entity, written in its JSON field names.
type Record struct {
	Kind   string         `yaml:"kind"`
	Path   string         `yaml:"path,omitempty"`
	Fields map[string]any `yaml:"fields"`
}

// FlowStep is one relationship operation. Exactly one field is set.
type FlowStep struct {
	Bind           *BindStep     `yaml:"bind,omitempty"`
	Enroll         *EnrollStep   `yaml:"enroll,omitempty"`
	AttachTicket   *AttachStep   `yaml:"attach_ticket,omitempty"`
	AttachQuestion *AttachStep   `yaml:"attach_question,omitempty"`
	Submit         *SubmitStep   `yaml:"submit,omitempty"`
	Expect         *ExpectClause `yaml:"expect,omitempty"`
}

// BindStep binds two "kind:id" references in a binding file.
type BindStep struct {
	Path string `yaml:"path,omitempty"`
	Src  string `yaml:"src"`
	Dest string `yaml:"dest"`
}

// EnrollStep enrolls a user in a course.
type EnrollStep struct {
	Course string `yaml:"course"`
	User   string `yaml:"user"`
}

// AttachStep hangs a child record off its parent: a ticket off a course
// or a question off a ticket.
type AttachStep struct {
	Parent string `yaml:"parent"`
	Child  string `yaml:"child"`
}

// SubmitStep submits an answer.
type SubmitStep struct {
	ID       string `yaml:"id,omitempty"`
	Value    string `yaml:"value"`
	Question string `yaml:"question"`
	User     string `yaml:"user,omitempty"`
	Course   string `yaml:"course,omitempty"`
	Ticket   string `yaml:"ticket,omitempty"`
}

// ExpectClause checks the outcome of a step.
type ExpectClause struct {
	// Created is the expected created flag of bind, enroll and attach steps.
	Created *bool `yaml:"created,omitempty"`

	// Error is a substring the step error must contain. A step with an
	// expected error must fail.
	Error string `yaml:"error,omitempty"`
}

// Assertion validates the final state.
type Assertion struct {
	// Type is one of resolve, binding_count, record_count, record.
	Type string `yaml:"type"`

	// Path is the store path ("" selects the kind's path).
	Path string `yaml:"path,omitempty"`

	// Src and DestKind filter the bindings of resolve.
	Src      string `yaml:"src,omitempty"`
	DestKind string `yaml:"dest_kind,omitempty"`

	// IDs are the expected destination ids of resolve, in any order.
	IDs []string `yaml:"ids,omitempty"`

	// Kind and ID select the records of record_count and record.
	Kind string `yaml:"kind,omitempty"`
	ID   string `yaml:"id,omitempty"`

	// Count is the expected number of bindings or records.
	Count int `yaml:"count,omitempty"`

	// Expect holds the expected fields of record (subset match).
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertResolve      = "resolve"
	AssertBindingCount = "binding_count"
	AssertRecordCount  = "record_count"
	AssertRecord       = "record"
)

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields are rejected so typos surface as errors.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, r := range s.Records {
		if _, err := model.ParseKind(r.Kind); err != nil {
			return fmt.Errorf("records[%d]: %w", i, err)
		}
		if r.Kind == string(model.KindBinding) {
			return fmt.Errorf("records[%d]: bindings belong in the flow", i)
		}
		if len(r.Fields) == 0 {
			return fmt.Errorf("records[%d]: fields are required", i)
		}
	}

	for i, step := range s.Flow {
		if n := step.operations(); n != 1 {
			return fmt.Errorf("flow[%d]: exactly one operation is required, got %d", i, n)
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s FlowStep) operations() int {
	n := 0
	for _, set := range []bool{s.Bind != nil, s.Enroll != nil, s.AttachTicket != nil, s.AttachQuestion != nil, s.Submit != nil} {
		if set {
			n++
		}
	}
	return n
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertResolve:
		if a.DestKind != "" {
			if _, err := model.ParseKind(a.DestKind); err != nil {
				return fmt.Errorf("assertions[%d]: %w", index, err)
			}
		}
	case AssertBindingCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertRecordCount:
		if _, err := model.ParseKind(a.Kind); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case AssertRecord:
		if _, err := model.ParseKind(a.Kind); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
		if a.ID == "" {
			return fmt.Errorf("assertions[%d]: id is required for record", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for record", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
