package cp

import "github.com/gitrdm/gokanprop/pkg/reversible"

// Coarse (L2) priorities. Constraints with a higher priority are propagated
// first; within a priority the queue is FIFO.
const (
	MaxPriorityL2     = 7
	DefaultPriorityL2 = 4
)

// Constraint is the contract between a propagator and the Store.
//
// A constraint declares its scope with Variables and registers its event
// subscriptions in Setup, typically performing an initial round of filtering
// there as well. The hooks it wants to be woken on are expressed by
// implementing the optional listener interfaces below (Propagator,
// BindListener, ...). Subscribing a constraint to a hook it does not
// implement panics with a *ContractViolation.
//
// Lifecycle:
//
//	Unregistered --Post--> Active --Success--> Entailed (detached)
//	                          \----Failure--> Failed (store must backtrack)
//
// Implementations embed Base by value, which provides the bookkeeping the
// Store needs (activity flag, priority, queue membership):
//
//	type Abs struct {
//		cp.Base
//		x, y *cp.IntVar
//	}
type Constraint interface {
	// Variables returns the scope of the constraint. It must not be empty.
	Variables() []*IntVar

	// Setup subscribes the constraint to variable events and performs the
	// initial filtering for the given strength.
	Setup(l Strength) Outcome

	base() *Base
}

// Propagator is implemented by constraints that run a full filtering step
// when woken from the coarse (L2) queue.
type Propagator interface {
	Propagate() Outcome
}

// BindListener is woken when a subscribed variable becomes bound.
type BindListener interface {
	ValBind(x *IntVar) Outcome
}

// BindIdxListener is woken with the subscription index when a variable
// becomes bound.
type BindIdxListener interface {
	ValBindIdx(x *IntVar, idx int) Outcome
}

// BoundsListener is woken when the min or max of a subscribed variable moves.
type BoundsListener interface {
	UpdateBounds(x *IntVar) Outcome
}

// BoundsIdxListener is woken with the subscription index when the min or
// max of a variable moves.
type BoundsIdxListener interface {
	UpdateBoundsIdx(x *IntVar, idx int) Outcome
}

// RemoveListener is woken once per value removed from a subscribed variable.
type RemoveListener interface {
	ValRemove(x *IntVar, v int) Outcome
}

// RemoveIdxListener is woken once per removed value with the subscription
// index.
type RemoveIdxListener interface {
	ValRemoveIdx(x *IntVar, idx, v int) Outcome
}

// Base holds the scheduling state shared by every constraint. Embed it by
// value and initialize it with NewBase.
type Base struct {
	store      *Store
	name       string
	posted     reversible.Bool
	active     reversible.Bool
	priorityL2 int
	idempotent bool
	inQueue    bool
}

// NewBase returns the scheduling state for a constraint of the given name
// living in store s.
func NewBase(s *Store, name string) Base {
	t := s.Trail()
	return Base{
		store:      s,
		name:       name,
		posted:     reversible.NewBool(t, false),
		active:     reversible.NewBool(t, false),
		priorityL2: DefaultPriorityL2,
	}
}

func (b *Base) base() *Base { return b }

// Name returns the constraint name used in logs and metrics.
func (b *Base) Name() string { return b.name }

// Store returns the store the constraint belongs to.
func (b *Base) Store() *Store { return b.store }

// IsActive reports whether the constraint is posted and not yet entailed.
func (b *Base) IsActive() bool { return b.active.Value() }

// PriorityL2 returns the coarse queue priority.
func (b *Base) PriorityL2() int { return b.priorityL2 }

// SetPriorityL2 sets the coarse queue priority, clamped to
// [0, MaxPriorityL2].
func (b *Base) SetPriorityL2(p int) {
	switch {
	case p < 0:
		p = 0
	case p > MaxPriorityL2:
		p = MaxPriorityL2
	}
	b.priorityL2 = p
}

// Idempotent reports whether the constraint reaches its own fixpoint in one
// call, in which case it is not re-enqueued by its own domain changes.
func (b *Base) Idempotent() bool { return b.idempotent }

// SetIdempotent marks the constraint as idempotent.
func (b *Base) SetIdempotent(v bool) { b.idempotent = v }
