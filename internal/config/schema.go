package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaSource string

// ErrSchema is returned for configuration files that do not match the
// schema.
var ErrSchema = errors.New("config does not match schema")

// CheckSchema validates a YAML configuration document against the
// embedded CUE schema. An empty document is valid.
func CheckSchema(data []byte) error {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	if len(doc) == 0 {
		return nil
	}
	// JSON is a subset of CUE, so the document compiles as is.
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to convert config: %w", err)
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource).LookupPath(cue.ParsePath("#Config"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("config schema: %w", err)
	}
	value := ctx.CompileBytes(raw)
	if err := value.Err(); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := schema.Unify(value).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%w: %v", ErrSchema, err)
	}
	return nil
}
