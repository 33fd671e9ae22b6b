package modelfile

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitrdm/gokanprop/pkg/cp"
	"github.com/gitrdm/gokanprop/pkg/search"
)

func build(t *testing.T, doc string) (*Model, error) {
	t.Helper()
	f, err := ParseYAML([]byte(doc))
	require.NoError(t, err)
	return f.Build(nil)
}

func TestLoadFile(t *testing.T) {
	f, err := LoadFile(filepath.Join("testdata", "abs.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "abs", f.Name)
	require.Len(t, f.Variables, 3)
	require.Len(t, f.Constraints, 2)
	assert.Equal(t, 4, *f.Constraints[1].Value)

	m, err := f.Build(nil)
	require.NoError(t, err)
	assert.Equal(t, cp.Suspend, m.Outcome)
	assert.Equal(t, cp.Medium, m.Strength)

	y, ok := m.Var("y")
	require.True(t, ok)
	assert.Equal(t, 5, y.Max())

	x, _ := m.Var("x")
	assert.Equal(t, []*cp.IntVar{x}, m.SearchVars())
	cfg := m.SearchConfig()
	assert.Equal(t, 3, cfg.MaxSolutions)
	assert.Equal(t, search.HeuristicDom, cfg.Heuristic)
}

func TestBuildOutcomes(t *testing.T) {
	tests := []struct {
		file    string
		outcome cp.Outcome
		store   string
	}{
		{file: "knapsack.yaml", outcome: cp.Suspend, store: "b0=0 b1=1 b2=1 load=4"},
		{file: "inconsistent.yaml", outcome: cp.Failure},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			f, err := LoadFile(filepath.Join("testdata", tt.file))
			require.NoError(t, err)
			m, err := f.Build(nil)
			require.NoError(t, err, "an inconsistent model is not an error")
			assert.Equal(t, tt.outcome, m.Outcome)
			if tt.store != "" {
				assert.Equal(t, tt.store, m.Store.String())
			}
		})
	}
}

func TestBuildEveryConstraintType(t *testing.T) {
	header := `
variables:
  - {name: x, min: -4, max: 4}
  - {name: y, min: -4, max: 4}
  - {name: z, min: -20, max: 20}
  - {name: b, bool: true}
  - {name: c, bool: true}
  - {name: d, bool: true}
  - {name: load, min: 0, max: 10}
constraints:
`
	tests := []struct {
		typ  string
		line string
	}{
		{"abs", "{type: abs, vars: [x, z]}"},
		{"greq", "{type: greq, vars: [x, y]}"},
		{"gr", "{type: gr, vars: [x, y]}"},
		{"le", "{type: le, vars: [x, y]}"},
		{"greq_cte_reif", "{type: greq_cte_reif, vars: [x, b], value: 1}"},
		{"greq_var_reif", "{type: greq_var_reif, vars: [x, y, b]}"},
		{"diff_reif", "{type: diff_reif, vars: [x, b], value: 0}"},
		{"eq_reif", "{type: eq_reif, vars: [x, b], value: 2}"},
		{"maximum", "{type: maximum, vars: [x, y, z]}"},
		{"mul_cte", "{type: mul_cte, vars: [x, z], value: 3}"},
		{"mul_cte_res", "{type: mul_cte_res, vars: [x, y], value: 6}"},
		{"at_least_nvalue", "{type: at_least_nvalue, vars: [x, y, z]}"},
		{"light_knapsack", "{type: light_knapsack, vars: [b, c, d], weights: [4, 3, 2], load: load}"},
		{"knapsack", "{type: knapsack, vars: [b, c, d], weights: [4, 3, 2], load: load, cardinality: 2}"},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			m, err := build(t, header+"  - "+tt.line+"\n")
			require.NoError(t, err)
			require.Len(t, m.Constraints, 1)
			assert.NotEqual(t, cp.Failure, m.Outcome)
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"empty", "  \n", "empty"},
		{"unknown key", "name: a\ncolour: red\n", "colour"},
		{"unknown type", "constraints:\n  - {type: alldiff, vars: [x]}\n", "alldiff"},
		{"unnamed variable", "variables:\n  - {min: 0, max: 1}\n", "no name"},
		{"duplicate variable", "variables:\n  - {name: x, bool: true}\n  - {name: x, bool: true}\n", "twice"},
		{"two forms", "variables:\n  - {name: x, bool: true, values: [1]}\n", "exactly one"},
		{"no form", "variables:\n  - {name: x}\n", "exactly one"},
		{"min without max", "variables:\n  - {name: x, min: 0}\n", "both min and max"},
		{"bad strength", "strength: extreme\n", "extreme"},
		{"bad heuristic", "search: {heuristic: random}\n", "random"},
		{"negative limit", "search: {limit: -1}\n", "negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseYAML([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestBuildErrors(t *testing.T) {
	vars := `
variables:
  - {name: x, min: 0, max: 5}
  - {name: b, bool: true}
`
	tests := []struct {
		name  string
		doc   string
		cause error
	}{
		{"empty values", "variables:\n  - {name: x, values: []}\n", cp.ErrEmptyDomain},
		{"inverted range", "variables:\n  - {name: x, min: 3, max: 1}\n", cp.ErrEmptyDomain},
		{"unknown variable", vars + "constraints:\n  - {type: abs, vars: [x, w]}\n", cp.ErrInvalidArgument},
		{"missing value", vars + "constraints:\n  - {type: diff_reif, vars: [x, b]}\n", cp.ErrInvalidArgument},
		{"arity", vars + "constraints:\n  - {type: greq, vars: [x]}\n", cp.ErrInvalidArgument},
		{"maximum arity", vars + "constraints:\n  - {type: maximum, vars: [x]}\n", cp.ErrInvalidArgument},
		{"missing load", vars + "constraints:\n  - {type: knapsack, vars: [b], weights: [1]}\n", cp.ErrInvalidArgument},
		{"unknown load", vars + "constraints:\n  - {type: knapsack, vars: [b], weights: [1], load: l}\n", cp.ErrInvalidArgument},
		{"weights", vars + "constraints:\n  - {type: light_knapsack, vars: [b], weights: [1, 2], load: x}\n", cp.ErrInvalidArgument},
		{"non boolean", vars + "constraints:\n  - {type: greq_cte_reif, vars: [b, x], value: 1}\n", cp.ErrInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := build(t, tt.doc)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.cause)
			assert.True(t, strings.HasPrefix(err.Error(), "modelfile: "), err.Error())
		})
	}

	t.Run("unknown search variable", func(t *testing.T) {
		_, err := build(t, vars+"search: {vars: [q]}\n")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"q"`)
	})
}

func TestExampleModels(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("..", "..", "examples", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)
	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			f, err := LoadFile(path)
			require.NoError(t, err)
			m, err := f.Build(nil)
			require.NoError(t, err)
			assert.NotEqual(t, cp.Failure, m.Outcome, "example models are satisfiable")
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join("testdata", "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.yaml")
}

func TestLoadReader(t *testing.T) {
	f, err := LoadReader(strings.NewReader("name: r\nvariables:\n  - {name: x, values: [3, 1]}\n"))
	require.NoError(t, err)
	m, err := f.Build(nil)
	require.NoError(t, err)
	assert.Equal(t, cp.Success, m.Outcome, "a model without constraints is trivially entailed")
	assert.Equal(t, "x{1,3}", m.Store.String())
}
