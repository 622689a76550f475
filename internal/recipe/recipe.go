// Package recipe replays a YAML list of derivation and analysis steps
// against a session.
package recipe

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"edabench/internal/errors"

	"gopkg.in/yaml.v3"
)

// Recipe is an ordered list of steps
type Recipe struct {
	Name            string `yaml:"name"`
	ContinueOnError bool   `yaml:"continue_on_error"`
	Steps           []Step `yaml:"steps"`
}

// Step names an operation and carries its parameters undecoded until run
type Step struct {
	Op     string    `yaml:"op"`
	Params yaml.Node `yaml:"params"`
}

// Load reads a recipe file
func Load(path string) (*Recipe, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound("recipe " + path)
		}
		return nil, errors.Wrapf(err, "failed to open recipe %s", path)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a recipe and checks that every step names a known operation
func Parse(r io.Reader) (*Recipe, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var rec Recipe
	if err := dec.Decode(&rec); err != nil {
		return nil, errors.Wrap(errors.InvalidInput(err.Error()), "failed to parse recipe")
	}
	if len(rec.Steps) == 0 {
		return nil, errors.ValidationError("recipe has no steps")
	}
	for i, s := range rec.Steps {
		if _, ok := handlers[s.Op]; !ok {
			return nil, errors.ValidationError(fmt.Sprintf("step %d: unknown op %q (known: %s)", i+1, s.Op, strings.Join(Ops(), ", ")))
		}
	}
	return &rec, nil
}

// Ops lists the operation names a recipe may use
func Ops() []string {
	ops := make([]string, 0, len(handlers))
	for op := range handlers {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}
