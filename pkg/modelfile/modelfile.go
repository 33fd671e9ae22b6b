// Package modelfile reads constraint models written in YAML and builds them
// on a cp.Store.
//
// A model file declares variables, constraints over them and optional
// search settings:
//
//	name: example
//	strength: strong
//	variables:
//	  - {name: x, min: -3, max: 5}
//	  - {name: y, values: [0, 1, 2, 10]}
//	  - {name: b, bool: true}
//	constraints:
//	  - {type: abs, vars: [x, y]}
//	  - {type: greq_cte_reif, vars: [x, b], value: 5}
//	search:
//	  limit: 10
//	  heuristic: dom
//
// Parsing only checks the structure of the document; Build resolves
// variable names and constructs the constraints.
package modelfile

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/gitrdm/gokanprop/pkg/cp"
	"github.com/gitrdm/gokanprop/pkg/search"
)

// File is the decoded form of a model file.
type File struct {
	Name        string       `yaml:"name"`
	Strength    string       `yaml:"strength,omitempty"`
	Variables   []Variable   `yaml:"variables"`
	Constraints []Constraint `yaml:"constraints"`
	Search      Search       `yaml:"search,omitempty"`
}

// Variable declares a variable by range, by explicit values or as a 0/1
// variable. Exactly one of the three forms must be used.
type Variable struct {
	Name   string `yaml:"name"`
	Min    *int   `yaml:"min,omitempty"`
	Max    *int   `yaml:"max,omitempty"`
	Values []int  `yaml:"values,omitempty"`
	Bool   bool   `yaml:"bool,omitempty"`
}

// Constraint declares one constraint. Which fields are used depends on
// Type; see the package constraint table.
type Constraint struct {
	Type        string   `yaml:"type"`
	Vars        []string `yaml:"vars"`
	Value       *int     `yaml:"value,omitempty"`
	Weights     []int    `yaml:"weights,omitempty"`
	Load        string   `yaml:"load,omitempty"`
	Cardinality int      `yaml:"cardinality,omitempty"`
}

// Search holds the settings used by the solve command.
type Search struct {
	Limit     int      `yaml:"limit,omitempty"`
	Heuristic string   `yaml:"heuristic,omitempty"`
	Vars      []string `yaml:"vars,omitempty"`
}

// ParseYAML decodes and validates a model file. Unknown keys are rejected.
func ParseYAML(data []byte) (*File, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("modelfile: document is empty")
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, errors.Wrap(err, "modelfile: decode")
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// LoadReader reads a model file from r.
func LoadReader(r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "modelfile: read")
	}
	return ParseYAML(data)
}

// LoadFile reads the model file at path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "modelfile: read %s", path)
	}
	f, err := ParseYAML(data)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return f, nil
}

// Validate checks the structure of the file without building anything.
func (f *File) Validate() error {
	if _, err := cp.ParseStrength(f.Strength); err != nil {
		return errors.Wrap(err, "modelfile")
	}
	if f.Search.Heuristic != "" {
		if _, err := search.ParseHeuristic(f.Search.Heuristic); err != nil {
			return errors.Wrap(err, "modelfile: search")
		}
	}
	if f.Search.Limit < 0 {
		return errors.Errorf("modelfile: search limit %d is negative", f.Search.Limit)
	}
	seen := make(map[string]bool, len(f.Variables))
	for i, v := range f.Variables {
		if v.Name == "" {
			return errors.Errorf("modelfile: variable %d has no name", i)
		}
		if seen[v.Name] {
			return errors.Errorf("modelfile: variable %q declared twice", v.Name)
		}
		seen[v.Name] = true

		forms := 0
		if v.Min != nil || v.Max != nil {
			if v.Min == nil || v.Max == nil {
				return errors.Errorf("modelfile: variable %q needs both min and max", v.Name)
			}
			forms++
		}
		if v.Values != nil {
			forms++
		}
		if v.Bool {
			forms++
		}
		if forms != 1 {
			return errors.Errorf("modelfile: variable %q must use exactly one of min/max, values or bool", v.Name)
		}
	}
	for i, c := range f.Constraints {
		if _, ok := builders[c.Type]; !ok {
			return errors.Errorf("modelfile: constraint %d has unknown type %q", i, c.Type)
		}
	}
	return nil
}
