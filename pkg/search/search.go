// Package search provides a depth-first search driver for cp stores.
//
// The driver talks to the engine only through the store's search interface
// (NewLevel, Propagate, UndoTo): every decision assigns one variable to one
// of its values, propagates, and is undone when the subtree is exhausted.
// It is meant to exercise propagators, not to compete with a tuned
// branching strategy.
//
//	solver := search.NewSolver(store, []*cp.IntVar{x, y})
//	solutions, err := solver.Solve(ctx)
package search

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/gitrdm/gokanprop/pkg/cp"
)

// Heuristic selects the next variable to branch on.
type Heuristic int

const (
	// HeuristicLex branches on the first unbound variable.
	HeuristicLex Heuristic = iota
	// HeuristicDom branches on the unbound variable with the smallest
	// domain, ties broken by order.
	HeuristicDom
)

// String returns the flag spelling of the heuristic.
func (h Heuristic) String() string {
	switch h {
	case HeuristicLex:
		return "lex"
	case HeuristicDom:
		return "dom"
	default:
		return "unknown"
	}
}

// ParseHeuristic is the inverse of Heuristic.String.
func ParseHeuristic(s string) (Heuristic, error) {
	switch s {
	case "lex":
		return HeuristicLex, nil
	case "dom":
		return HeuristicDom, nil
	}
	return 0, errors.Wrapf(cp.ErrInvalidArgument, "unknown heuristic %q", s)
}

// Config holds search configuration.
type Config struct {
	Heuristic Heuristic

	// MaxSolutions stops the search after that many solutions; 0 or less
	// means all of them.
	MaxSolutions int

	// Logger receives a Debug entry per solution. Nil uses the store's
	// logger.
	Logger logrus.FieldLogger
}

// DefaultConfig returns the configuration used by NewSolver.
func DefaultConfig() *Config {
	return &Config{Heuristic: HeuristicLex}
}

// Stats holds search counters.
type Stats struct {
	Nodes      int // decisions tried
	Backtracks int // exhausted subtrees
	Solutions  int
	MaxDepth   int
	Duration   time.Duration
}

func (s Stats) String() string {
	return fmt.Sprintf("%d nodes, %d backtracks, %d solutions, max depth %d, %v",
		s.Nodes, s.Backtracks, s.Solutions, s.MaxDepth, s.Duration)
}

// Solver enumerates the assignments of a set of variables that the store
// accepts. A Solver is not safe for concurrent use, and neither is its
// store.
type Solver struct {
	store  *cp.Store
	vars   []*cp.IntVar
	config *Config
	log    logrus.FieldLogger
	stats  Stats
}

// NewSolver creates a solver branching on vars, or on every variable of the
// store when vars is empty.
func NewSolver(store *cp.Store, vars []*cp.IntVar) *Solver {
	return NewSolverWithConfig(store, vars, DefaultConfig())
}

// NewSolverWithConfig creates a solver with an explicit configuration.
func NewSolverWithConfig(store *cp.Store, vars []*cp.IntVar, config *Config) *Solver {
	if config == nil {
		config = DefaultConfig()
	}
	if len(vars) == 0 {
		vars = store.Variables()
	}
	log := config.Logger
	if log == nil {
		log = store.Config().Logger
	}
	return &Solver{
		store:  store,
		vars:   append([]*cp.IntVar(nil), vars...),
		config: config,
		log:    log,
	}
}

// Stats returns the counters of the last Solve or Each call.
func (s *Solver) Stats() Stats { return s.stats }

// Solve collects the solutions, each a slice of values in the order of the
// solver's variables. On cancellation the solutions found so far are
// returned together with an error wrapping ctx.Err().
func (s *Solver) Solve(ctx context.Context) ([][]int, error) {
	var solutions [][]int
	err := s.Each(ctx, func(sol []int) bool {
		solutions = append(solutions, sol)
		return true
	})
	return solutions, err
}

// Each calls fn for every solution until fn returns false, the configured
// limit is reached or ctx is done. The store is brought back to the trail
// level it had on entry before Each returns.
func (s *Solver) Each(ctx context.Context, fn func([]int) bool) error {
	type frame struct {
		level  int
		x      *cp.IntVar
		values []int
		next   int
	}

	s.stats = Stats{}
	start := time.Now()
	defer func() { s.stats.Duration = time.Since(start) }()

	root := s.store.CurrentTrailLevel()
	defer s.store.UndoTo(root)

	// Root propagation happens at its own level so that it is undone too.
	s.store.NewLevel()
	if s.store.Propagate() == cp.Failure {
		return nil
	}
	x := s.selectVariable()
	if x == nil {
		s.record(fn, 0)
		return nil
	}

	stack := []*frame{{level: s.store.CurrentTrailLevel(), x: x, values: x.Values()}}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, "search interrupted")
		}
		f := stack[len(stack)-1]
		s.store.UndoTo(f.level)
		if f.next >= len(f.values) {
			stack = stack[:len(stack)-1]
			s.stats.Backtracks++
			continue
		}
		v := f.values[f.next]
		f.next++

		depth := len(stack)
		s.stats.Nodes++
		if depth > s.stats.MaxDepth {
			s.stats.MaxDepth = depth
		}
		s.store.NewLevel()
		if f.x.Assign(v) == cp.Failure || s.store.Propagate() == cp.Failure {
			continue
		}
		next := s.selectVariable()
		if next == nil {
			if !s.record(fn, depth) {
				return nil
			}
			continue
		}
		stack = append(stack, &frame{level: s.store.CurrentTrailLevel(), x: next, values: next.Values()})
	}
	return nil
}

// record reports the current assignment and tells whether to go on.
func (s *Solver) record(fn func([]int) bool, depth int) bool {
	sol := make([]int, len(s.vars))
	for i, x := range s.vars {
		sol[i] = x.Value()
	}
	s.stats.Solutions++
	s.log.WithFields(logrus.Fields{
		"solution": sol,
		"depth":    depth,
		"nodes":    s.stats.Nodes,
	}).Debug("solution")
	if !fn(sol) {
		return false
	}
	return s.config.MaxSolutions <= 0 || s.stats.Solutions < s.config.MaxSolutions
}

// selectVariable returns the next variable to branch on, or nil when all
// of them are bound.
func (s *Solver) selectVariable() *cp.IntVar {
	var best *cp.IntVar
	for _, x := range s.vars {
		if x.IsBound() {
			continue
		}
		if s.config.Heuristic == HeuristicLex {
			return x
		}
		if best == nil || x.Size() < best.Size() {
			best = x
		}
	}
	return best
}
