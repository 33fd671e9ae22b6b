package modelfile

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/gitrdm/gokanprop/pkg/cp"
	"github.com/gitrdm/gokanprop/pkg/cp/constraints"
	"github.com/gitrdm/gokanprop/pkg/search"
)

// Model is a model file built on a store, with every constraint posted.
type Model struct {
	Name  string
	Store *cp.Store

	// Vars holds the declared variables in declaration order.
	Vars   []*cp.IntVar
	byName map[string]*cp.IntVar

	Constraints []cp.Constraint
	Strength    cp.Strength

	// Outcome is the result of posting the constraints: Failure means the
	// model is inconsistent, which is not an error.
	Outcome cp.Outcome

	search Search
}

// Var returns the declared variable with the given name.
func (m *Model) Var(name string) (*cp.IntVar, bool) {
	x, ok := m.byName[name]
	return x, ok
}

// SearchVars returns the variables the search branches on: those listed in
// the file's search section, or every declared variable.
func (m *Model) SearchVars() []*cp.IntVar {
	if len(m.search.Vars) == 0 {
		return m.Vars
	}
	out := make([]*cp.IntVar, 0, len(m.search.Vars))
	for _, name := range m.search.Vars {
		out = append(out, m.byName[name])
	}
	return out
}

// SearchConfig returns the search configuration declared by the file.
func (m *Model) SearchConfig() *search.Config {
	cfg := search.DefaultConfig()
	cfg.MaxSolutions = m.search.Limit
	if h, err := search.ParseHeuristic(m.search.Heuristic); err == nil {
		cfg.Heuristic = h
	}
	return cfg
}

// Build creates a store from config (nil for the defaults), declares the
// variables and posts the constraints with the file's strength.
func (f *File) Build(config *cp.Config) (*Model, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	strength, _ := cp.ParseStrength(f.Strength)
	if config == nil {
		config = cp.DefaultConfig()
	}
	store := cp.NewStoreWithConfig(config)
	m := &Model{
		Name:     f.Name,
		Store:    store,
		byName:   make(map[string]*cp.IntVar, len(f.Variables)),
		Strength: strength,
		Outcome:  cp.Suspend,
		search:   f.Search,
	}
	for _, v := range f.Variables {
		x, err := declare(store, v)
		if err != nil {
			return nil, errors.Wrapf(err, "modelfile: variable %q", v.Name)
		}
		m.Vars = append(m.Vars, x)
		m.byName[v.Name] = x
	}
	for _, name := range f.Search.Vars {
		if _, ok := m.byName[name]; !ok {
			return nil, errors.Errorf("modelfile: search: unknown variable %q", name)
		}
	}

	for i, decl := range f.Constraints {
		c, err := builders[decl.Type](m, decl)
		if err != nil {
			return nil, errors.Wrapf(err, "modelfile: constraint %d (%s)", i, decl.Type)
		}
		m.Constraints = append(m.Constraints, c)
	}
	for _, c := range m.Constraints {
		if store.PostWithStrength(c, strength) == cp.Failure {
			m.Outcome = cp.Failure
			break
		}
	}
	if m.Outcome != cp.Failure && store.ActiveConstraints() == 0 {
		m.Outcome = cp.Success
	}
	store.Config().Logger.WithFields(logrus.Fields{
		"model":       f.Name,
		"variables":   len(m.Vars),
		"constraints": len(m.Constraints),
		"outcome":     m.Outcome.String(),
	}).Debug("model built")
	return m, nil
}

func declare(s *cp.Store, v Variable) (*cp.IntVar, error) {
	switch {
	case v.Bool:
		return s.NewBoolVarWithName(v.Name), nil
	case v.Values != nil:
		return s.NewIntVarFromValuesWithName(v.Name, v.Values)
	default:
		return s.NewIntVarWithName(v.Name, *v.Min, *v.Max)
	}
}

// vars resolves names, checking that there are at least min of them (and
// at most max when max > 0).
func (m *Model) vars(names []string, min, max int) ([]*cp.IntVar, error) {
	if len(names) < min || (max > 0 && len(names) > max) {
		if min == max {
			return nil, errors.Wrapf(cp.ErrInvalidArgument, "want %d variables, got %d", min, len(names))
		}
		return nil, errors.Wrapf(cp.ErrInvalidArgument, "want at least %d variables, got %d", min, len(names))
	}
	out := make([]*cp.IntVar, len(names))
	for i, name := range names {
		x, ok := m.byName[name]
		if !ok {
			return nil, errors.Wrapf(cp.ErrInvalidArgument, "unknown variable %q", name)
		}
		out[i] = x
	}
	return out, nil
}

func (c Constraint) value() (int, error) {
	if c.Value == nil {
		return 0, errors.Wrap(cp.ErrInvalidArgument, "missing value")
	}
	return *c.Value, nil
}

type builder func(m *Model, c Constraint) (cp.Constraint, error)

// builders maps each constraint type of the file format to its constructor.
var builders = map[string]builder{
	"abs":  pair(func(x, y *cp.IntVar) (cp.Constraint, error) { return constraints.NewAbs(x, y) }),
	"greq": pair(func(x, y *cp.IntVar) (cp.Constraint, error) { return constraints.NewGrEq(x, y) }),
	"gr":   pair(func(x, y *cp.IntVar) (cp.Constraint, error) { return constraints.NewGr(x, y) }),
	"le":   pair(func(x, y *cp.IntVar) (cp.Constraint, error) { return constraints.NewLe(x, y) }),
	"greq_cte_reif": withValue(func(x *cp.IntVar, v int, b *cp.IntVar) (cp.Constraint, error) {
		return constraints.NewGrEqCteReif(x, v, b)
	}),
	"diff_reif": withValue(func(x *cp.IntVar, v int, b *cp.IntVar) (cp.Constraint, error) {
		return constraints.NewDiffReif(x, v, b)
	}),
	"eq_reif": withValue(func(x *cp.IntVar, v int, b *cp.IntVar) (cp.Constraint, error) {
		return constraints.NewEqReifInterval(x, v, b)
	}),
	"mul_cte": withValue(func(x *cp.IntVar, c int, z *cp.IntVar) (cp.Constraint, error) {
		return constraints.NewMulCte(x, c, z)
	}),
	"greq_var_reif": func(m *Model, c Constraint) (cp.Constraint, error) {
		v, err := m.vars(c.Vars, 3, 3)
		if err != nil {
			return nil, err
		}
		return constraints.NewGrEqVarReif(v[0], v[1], v[2])
	},
	"mul_cte_res": func(m *Model, c Constraint) (cp.Constraint, error) {
		v, err := m.vars(c.Vars, 2, 2)
		if err != nil {
			return nil, err
		}
		k, err := c.value()
		if err != nil {
			return nil, err
		}
		return constraints.NewMulCteRes(v[0], v[1], k)
	},
	"maximum": func(m *Model, c Constraint) (cp.Constraint, error) {
		v, err := m.vars(c.Vars, 2, 0)
		if err != nil {
			return nil, err
		}
		return constraints.NewMaximum(v[:len(v)-1], v[len(v)-1])
	},
	"at_least_nvalue": func(m *Model, c Constraint) (cp.Constraint, error) {
		v, err := m.vars(c.Vars, 2, 0)
		if err != nil {
			return nil, err
		}
		return constraints.NewAtLeastNValueFWC(v[:len(v)-1], v[len(v)-1])
	},
	"light_knapsack": func(m *Model, c Constraint) (cp.Constraint, error) {
		items, load, err := m.knapsack(c)
		if err != nil {
			return nil, err
		}
		return constraints.NewLightBinaryKnapsack(items, c.Weights, load)
	},
	"knapsack": func(m *Model, c Constraint) (cp.Constraint, error) {
		items, load, err := m.knapsack(c)
		if err != nil {
			return nil, err
		}
		var opts []constraints.KnapsackOption
		if c.Cardinality > 0 {
			opts = append(opts, constraints.WithCardinality(c.Cardinality))
		}
		return constraints.NewBinaryKnapsack(items, c.Weights, load, opts...)
	},
}

func pair(mk func(x, y *cp.IntVar) (cp.Constraint, error)) builder {
	return func(m *Model, c Constraint) (cp.Constraint, error) {
		v, err := m.vars(c.Vars, 2, 2)
		if err != nil {
			return nil, err
		}
		return mk(v[0], v[1])
	}
}

func withValue(mk func(x *cp.IntVar, v int, y *cp.IntVar) (cp.Constraint, error)) builder {
	return func(m *Model, c Constraint) (cp.Constraint, error) {
		v, err := m.vars(c.Vars, 2, 2)
		if err != nil {
			return nil, err
		}
		k, err := c.value()
		if err != nil {
			return nil, err
		}
		return mk(v[0], k, v[1])
	}
}

func (m *Model) knapsack(c Constraint) ([]*cp.IntVar, *cp.IntVar, error) {
	items, err := m.vars(c.Vars, 1, 0)
	if err != nil {
		return nil, nil, err
	}
	if c.Load == "" {
		return nil, nil, errors.Wrap(cp.ErrInvalidArgument, "missing load")
	}
	load, ok := m.byName[c.Load]
	if !ok {
		return nil, nil, errors.Wrapf(cp.ErrInvalidArgument, "unknown load variable %q", c.Load)
	}
	return items, load, nil
}
