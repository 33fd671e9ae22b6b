// Package cp is a trail-based finite-domain constraint propagation engine.
//
// A Store owns integer variables, the constraints posted on them and the
// reversible trail that records every change to their state. Constraints
// subscribe to variable events and the store drives them to a fixpoint
// through two queues:
//
//   - L1, a FIFO of fine-grained events (value bound, bounds moved, value
//     removed) delivered to the matching constraint hook;
//   - L2, a priority queue of constraints whose Propagate method must run.
//
// L1 is always drained before L2 is consulted. A search procedure drives the
// store through NewLevel, Propagate and UndoTo:
//
//	s := cp.NewStore()
//	x, _ := s.NewIntVar(-3, 5)
//	y, _ := s.NewIntVar(0, 10)
//	abs, _ := constraints.NewAbs(x, y)
//	s.Post(abs)
//	lvl := s.CurrentTrailLevel()
//	s.NewLevel()
//	if x.Assign(-2) == cp.Failure || s.Propagate() == cp.Failure {
//		s.UndoTo(lvl)
//	}
//
// Propagation is single-threaded: a Store and everything it owns must not be
// used from more than one goroutine at a time.
package cp

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/gitrdm/gokanprop/pkg/reversible"
)

// Store is the propagation engine. Create one with NewStore or
// NewStoreWithConfig.
type Store struct {
	config  *Config
	log     logrus.FieldLogger
	metrics *Metrics
	trail   *reversible.Trail

	vars        []*IntVar
	constraints []Constraint
	nPosted     reversible.Int
	nActive     reversible.Int
	failed      reversible.Bool

	l1     []event
	l1Head int
	l2     [MaxPriorityL2 + 1][]Constraint
	l2Head [MaxPriorityL2 + 1]int

	inPropagate bool
	depth       int
	running     *Base

	stats Stats
}

// NewStore creates a store with DefaultConfig.
func NewStore() *Store {
	return NewStoreWithConfig(DefaultConfig())
}

// NewStoreWithConfig creates a store with the given configuration. A nil
// config is equivalent to DefaultConfig.
func NewStoreWithConfig(cfg *Config) *Store {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg = cfg.withDefaults()
	t := reversible.NewTrail()
	return &Store{
		config:  cfg,
		log:     cfg.Logger,
		metrics: cfg.Metrics,
		trail:   t,
		nPosted: reversible.NewInt(t, 0),
		nActive: reversible.NewInt(t, 0),
		failed:  reversible.NewBool(t, false),
	}
}

// Config returns the store configuration.
func (s *Store) Config() *Config { return s.config }

// Trail returns the trail that backs every reversible cell of the store.
func (s *Store) Trail() *reversible.Trail { return s.trail }

// NewReversibleInt allocates a reversible integer on the store's trail.
func (s *Store) NewReversibleInt(v int) reversible.Int {
	return reversible.NewInt(s.trail, v)
}

// NewReversibleBool allocates a reversible boolean on the store's trail.
func (s *Store) NewReversibleBool(v bool) reversible.Bool {
	return reversible.NewBool(s.trail, v)
}

// NewIntVar creates a variable with domain [min, max].
func (s *Store) NewIntVar(min, max int) (*IntVar, error) {
	return s.NewIntVarWithName("", min, max)
}

// NewIntVarWithName creates a named variable with domain [min, max].
func (s *Store) NewIntVarWithName(name string, min, max int) (*IntVar, error) {
	if min > max {
		return nil, errorf(ErrEmptyDomain, "NewIntVar: min %d > max %d", min, max)
	}
	if min < MinValue || max > MaxValue {
		return nil, errorf(ErrInvalidArgument, "NewIntVar: bounds [%d, %d] outside [%d, %d]", min, max, MinValue, MaxValue)
	}
	sparse := max-min < s.config.SparseLimit
	return newIntVar(s, name, min, max, sparse), nil
}

// NewIntVarFromValues creates a variable whose domain is the given set of
// values. The span of the values must not exceed Config.SparseLimit.
func (s *Store) NewIntVarFromValues(values []int) (*IntVar, error) {
	return s.NewIntVarFromValuesWithName("", values)
}

// NewIntVarFromValuesWithName creates a named variable whose domain is the
// given set of values.
func (s *Store) NewIntVarFromValuesWithName(name string, values []int) (*IntVar, error) {
	if len(values) == 0 {
		return nil, errorf(ErrEmptyDomain, "NewIntVarFromValues: no values")
	}
	vals := append([]int(nil), values...)
	sort.Ints(vals)
	min, max := vals[0], vals[len(vals)-1]
	if min < MinValue || max > MaxValue {
		return nil, errorf(ErrInvalidArgument, "NewIntVarFromValues: values [%d, %d] outside [%d, %d]", min, max, MinValue, MaxValue)
	}
	if max-min >= s.config.SparseLimit {
		return nil, errorf(ErrInvalidArgument, "NewIntVarFromValues: span %d exceeds sparse limit %d", max-min+1, s.config.SparseLimit)
	}
	x := newIntVar(s, name, min, max, true)
	// Move the listed values to the front of the sparse set. The cells are
	// fresh, so the size set below is never undone past this point.
	size := 0
	for i, v := range vals {
		if i > 0 && v == vals[i-1] {
			continue
		}
		j := x.pos[v-x.offset]
		w := x.values[size]
		x.values[size], x.values[j] = v, w
		x.pos[v-x.offset], x.pos[w-x.offset] = size, j
		size++
	}
	x.size.SetValue(size)
	return x, nil
}

// NewBoolVar creates a 0/1 variable.
func (s *Store) NewBoolVar() *IntVar {
	return newIntVar(s, "", 0, 1, true)
}

// NewBoolVarWithName creates a named 0/1 variable.
func (s *Store) NewBoolVarWithName(name string) *IntVar {
	return newIntVar(s, name, 0, 1, true)
}

// Constant creates a variable bound to v.
func (s *Store) Constant(v int) (*IntVar, error) {
	return s.NewIntVarWithName(fmt.Sprintf("%d", v), v, v)
}

// Variables returns every variable created in the store.
func (s *Store) Variables() []*IntVar { return s.vars }

// Constraints returns the constraints currently posted, including entailed
// ones.
func (s *Store) Constraints() []Constraint {
	return s.constraints[:s.nPosted.Value()]
}

// ActiveConstraints returns the number of posted constraints that are not
// entailed.
func (s *Store) ActiveConstraints() int { return s.nActive.Value() }

// Post posts c with the configured default strength. See PostWithStrength.
func (s *Store) Post(c Constraint) Outcome {
	return s.PostWithStrength(c, s.config.DefaultStrength)
}

// PostWithStrength registers c, runs its Setup and, when called outside of
// a propagation pass, propagates to a fixpoint.
//
// It returns Failure if the store is (or becomes) inconsistent, otherwise
// the outcome of Setup. A constraint posted during search is unregistered
// again when the search backtracks above the level it was posted at.
//
// Posting a constraint with an empty scope, posting it twice or posting it
// to a store other than the one it was built for panics with a
// *ContractViolation.
func (s *Store) PostWithStrength(c Constraint, l Strength) Outcome {
	b := c.base()
	if len(c.Variables()) == 0 {
		panic(violation("%s posted with an empty scope", b.name))
	}
	if b.store != s {
		panic(violation("%s posted to a foreign store", b.name))
	}
	if b.posted.Value() {
		panic(violation("%s posted twice", b.name))
	}
	if s.failed.Value() {
		return Failure
	}
	s.stats.Posts++

	n := s.nPosted.Value()
	s.constraints = append(s.constraints[:n], c)
	s.nPosted.SetValue(n + 1)
	b.posted.SetValue(true)
	b.active.SetValue(true)
	s.nActive.Incr()

	if debugEnabled(s.log) {
		s.log.WithFields(logrus.Fields{
			"constraint": b.name,
			"level":      s.trail.Level(),
			"strength":   l.String(),
		}).Debug("post")
	}

	s.depth++
	prev := s.running
	s.running = b
	out := c.Setup(l)
	s.running = prev
	s.depth--
	s.observeCall(b, hookSetup)

	switch out {
	case Success:
		s.deactivate(b)
	case Failure:
		s.deactivate(b)
		if s.depth == 0 && !s.inPropagate {
			s.fail(b, hookSetup)
		}
		return Failure
	}
	if s.depth == 0 && !s.inPropagate {
		if s.Propagate() == Failure {
			return Failure
		}
	}
	return out
}

// PostAll posts each constraint in order and stops at the first Failure.
func (s *Store) PostAll(cs ...Constraint) Outcome {
	out := Suspend
	for _, c := range cs {
		if o := s.Post(c); o == Failure {
			return Failure
		}
	}
	if s.nActive.Value() == 0 {
		out = Success
	}
	return out
}

// Propagate runs the event queues to a fixpoint.
//
// It returns Failure if a constraint failed (the store stays failed until
// the search backtracks), Success if every posted constraint is entailed,
// and Suspend otherwise. A call made from inside a constraint hook returns
// Suspend immediately; the running pass picks up the queued work.
func (s *Store) Propagate() Outcome {
	if s.inPropagate {
		return Suspend
	}
	if s.failed.Value() {
		s.clearQueues()
		return Failure
	}
	s.inPropagate = true
	defer func() {
		s.inPropagate = false
		s.running = nil
	}()
	s.stats.Passes++
	if s.metrics != nil {
		s.metrics.FixpointPasses.Inc()
	}

	for {
		if s.l1Head < len(s.l1) {
			ev := s.l1[s.l1Head]
			s.l1Head++
			b := ev.sub.b
			if !b.active.Value() {
				continue
			}
			s.stats.L1Events++
			s.running = b
			out := ev.sub.call(ev.x, ev.val)
			s.running = nil
			s.observeCall(b, ev.sub.hook)
			if !s.settle(b, ev.sub.hook, out) {
				return Failure
			}
			continue
		}
		c := s.popL2()
		if c == nil {
			break
		}
		b := c.base()
		if !b.active.Value() {
			continue
		}
		s.stats.L2Propagations++
		s.running = b
		out := c.(Propagator).Propagate()
		s.running = nil
		s.observeCall(b, hookPropagate)
		if !s.settle(b, hookPropagate, out) {
			return Failure
		}
	}
	s.l1 = s.l1[:0]
	s.l1Head = 0
	if s.metrics != nil {
		s.metrics.TrailSizePeak.Set(float64(s.trail.PeakSize()))
	}
	if s.nActive.Value() == 0 {
		return Success
	}
	return Suspend
}

// settle applies a hook outcome and reports whether propagation may go on.
func (s *Store) settle(b *Base, hook string, out Outcome) bool {
	switch out {
	case Success:
		s.deactivate(b)
	case Failure:
		s.fail(b, hook)
		return false
	}
	return true
}

// CurrentTrailLevel returns the current decision level.
func (s *Store) CurrentTrailLevel() int { return s.trail.Level() }

// NewLevel opens a decision level and returns it.
func (s *Store) NewLevel() int { return s.trail.NewLevel() }

// UndoTo discards pending events and restores every reversible cell to the
// state it had at the given level. It panics with *reversible.LevelError if
// the level is invalid.
func (s *Store) UndoTo(level int) {
	s.clearQueues()
	s.trail.UndoTo(level)
}

// IsFailed reports whether the store is inconsistent at the current level.
func (s *Store) IsFailed() bool { return s.failed.Value() }

// Stats returns a snapshot of the propagation counters.
func (s *Store) Stats() Stats {
	st := s.stats
	st.PeakTrailSize = s.trail.PeakSize()
	return st
}

// String lists the variables of the store with their current domains.
func (s *Store) String() string {
	parts := make([]string, len(s.vars))
	for i, x := range s.vars {
		parts[i] = x.String()
	}
	return strings.Join(parts, " ")
}

func (s *Store) enqueueL1(sub *subscription, x *IntVar, v int) {
	if !sub.b.active.Value() || s.selfWake(sub.b) {
		return
	}
	s.l1 = append(s.l1, event{sub: sub, x: x, val: v})
}

func (s *Store) enqueueL2(sub *subscription) {
	b := sub.b
	if b.inQueue || !b.active.Value() || s.selfWake(b) {
		return
	}
	b.inQueue = true
	p := b.priorityL2
	s.l2[p] = append(s.l2[p], sub.c)
}

// selfWake reports whether b is an idempotent constraint reacting to its own
// domain changes.
func (s *Store) selfWake(b *Base) bool {
	return b.idempotent && s.running == b
}

func (s *Store) popL2() Constraint {
	for p := MaxPriorityL2; p >= 0; p-- {
		if s.l2Head[p] < len(s.l2[p]) {
			c := s.l2[p][s.l2Head[p]]
			s.l2Head[p]++
			if s.l2Head[p] == len(s.l2[p]) {
				s.l2[p] = s.l2[p][:0]
				s.l2Head[p] = 0
			}
			c.base().inQueue = false
			return c
		}
	}
	return nil
}

func (s *Store) clearQueues() {
	s.l1 = s.l1[:0]
	s.l1Head = 0
	for p := range s.l2 {
		for _, c := range s.l2[p][s.l2Head[p]:] {
			c.base().inQueue = false
		}
		s.l2[p] = s.l2[p][:0]
		s.l2Head[p] = 0
	}
}

func (s *Store) deactivate(b *Base) {
	if b.active.Value() {
		b.active.SetValue(false)
		s.nActive.Decr()
	}
}

func (s *Store) fail(b *Base, hook string) {
	s.failed.SetValue(true)
	s.clearQueues()
	s.stats.Failures++
	if s.metrics != nil {
		s.metrics.Failures.Inc()
	}
	if debugEnabled(s.log) {
		s.log.WithFields(logrus.Fields{
			"constraint": b.name,
			"hook":       hook,
			"level":      s.trail.Level(),
		}).Debug("failure")
	}
}

func (s *Store) observeCall(b *Base, hook string) {
	if s.metrics != nil {
		s.metrics.PropagatorCalls.WithLabelValues(b.name, hook).Inc()
	}
}
