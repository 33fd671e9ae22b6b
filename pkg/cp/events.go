package cp

import "github.com/gitrdm/gokanprop/pkg/reversible"

// Hook names, used as metric labels.
const (
	hookSetup           = "Setup"
	hookPropagate       = "Propagate"
	hookValBind         = "ValBind"
	hookValBindIdx      = "ValBindIdx"
	hookUpdateBounds    = "UpdateBounds"
	hookUpdateBoundsIdx = "UpdateBoundsIdx"
	hookValRemove       = "ValRemove"
	hookValRemoveIdx    = "ValRemoveIdx"
)

// subscription binds a constraint to one of its hooks. Fine-grained (L1)
// subscriptions carry a call closure; coarse (L2) ones only wake the
// constraint's Propagate method.
type subscription struct {
	c    Constraint
	b    *Base
	hook string
	call func(x *IntVar, val int) Outcome
}

// event is a pending L1 hook invocation.
type event struct {
	sub *subscription
	x   *IntVar
	val int
}

// subList is an append-only list of subscriptions whose length is reversible,
// so that subscriptions made by a constraint posted during search disappear
// on backtrack.
type subList struct {
	items []*subscription
	n     reversible.Int
}

func newSubList(t *reversible.Trail) subList {
	return subList{n: reversible.NewInt(t, 0)}
}

func (l *subList) push(s *subscription) {
	n := l.n.Value()
	l.items = append(l.items[:n], s)
	l.n.SetValue(n + 1)
}

func (l *subList) live() []*subscription {
	return l.items[:l.n.Value()]
}

func (l *subList) len() int {
	return l.n.Value()
}

func l2Subscription(c Constraint) *subscription {
	if _, ok := c.(Propagator); !ok {
		panic(violation("%s subscribed to Propagate but does not implement Propagator", c.base().name))
	}
	return &subscription{c: c, b: c.base(), hook: hookPropagate}
}

// CallPropagateWhenBind wakes c's Propagate (L2) when x becomes bound.
func (x *IntVar) CallPropagateWhenBind(c Constraint) {
	x.l2Bind.push(l2Subscription(c))
}

// CallPropagateWhenBoundsChange wakes c's Propagate (L2) when the min or max
// of x moves.
func (x *IntVar) CallPropagateWhenBoundsChange(c Constraint) {
	x.l2Bounds.push(l2Subscription(c))
}

// CallPropagateWhenDomainChanges wakes c's Propagate (L2) on any removal
// from x.
func (x *IntVar) CallPropagateWhenDomainChanges(c Constraint) {
	x.l2Domain.push(l2Subscription(c))
}

// CallValBindWhenBind calls c.ValBind(x) (L1) when x becomes bound.
func (x *IntVar) CallValBindWhenBind(c Constraint) {
	l, ok := c.(BindListener)
	if !ok {
		panic(violation("%s subscribed to ValBind but does not implement BindListener", c.base().name))
	}
	x.l1Bind.push(&subscription{c: c, b: c.base(), hook: hookValBind,
		call: func(x *IntVar, _ int) Outcome { return l.ValBind(x) }})
}

// CallValBindIdxWhenBind calls c.ValBindIdx(x, idx) (L1) when x becomes
// bound.
func (x *IntVar) CallValBindIdxWhenBind(c Constraint, idx int) {
	l, ok := c.(BindIdxListener)
	if !ok {
		panic(violation("%s subscribed to ValBindIdx but does not implement BindIdxListener", c.base().name))
	}
	x.l1Bind.push(&subscription{c: c, b: c.base(), hook: hookValBindIdx,
		call: func(x *IntVar, _ int) Outcome { return l.ValBindIdx(x, idx) }})
}

// CallUpdateBoundsWhenBoundsChange calls c.UpdateBounds(x) (L1) when the min
// or max of x moves.
func (x *IntVar) CallUpdateBoundsWhenBoundsChange(c Constraint) {
	l, ok := c.(BoundsListener)
	if !ok {
		panic(violation("%s subscribed to UpdateBounds but does not implement BoundsListener", c.base().name))
	}
	x.l1Bounds.push(&subscription{c: c, b: c.base(), hook: hookUpdateBounds,
		call: func(x *IntVar, _ int) Outcome { return l.UpdateBounds(x) }})
}

// CallUpdateBoundsIdxWhenBoundsChange calls c.UpdateBoundsIdx(x, idx) (L1)
// when the min or max of x moves.
func (x *IntVar) CallUpdateBoundsIdxWhenBoundsChange(c Constraint, idx int) {
	l, ok := c.(BoundsIdxListener)
	if !ok {
		panic(violation("%s subscribed to UpdateBoundsIdx but does not implement BoundsIdxListener", c.base().name))
	}
	x.l1Bounds.push(&subscription{c: c, b: c.base(), hook: hookUpdateBoundsIdx,
		call: func(x *IntVar, _ int) Outcome { return l.UpdateBoundsIdx(x, idx) }})
}

// CallValRemoveWhenValueIsRemoved calls c.ValRemove(x, v) (L1) once for every
// value v removed from x. x must track holes (see IsSparse).
func (x *IntVar) CallValRemoveWhenValueIsRemoved(c Constraint) {
	l, ok := c.(RemoveListener)
	if !ok {
		panic(violation("%s subscribed to ValRemove but does not implement RemoveListener", c.base().name))
	}
	x.requireSparse(c)
	x.l1Remove.push(&subscription{c: c, b: c.base(), hook: hookValRemove,
		call: func(x *IntVar, v int) Outcome { return l.ValRemove(x, v) }})
}

// CallValRemoveIdxWhenValueIsRemoved calls c.ValRemoveIdx(x, idx, v) (L1)
// once for every value v removed from x. x must track holes.
func (x *IntVar) CallValRemoveIdxWhenValueIsRemoved(c Constraint, idx int) {
	l, ok := c.(RemoveIdxListener)
	if !ok {
		panic(violation("%s subscribed to ValRemoveIdx but does not implement RemoveIdxListener", c.base().name))
	}
	x.requireSparse(c)
	x.l1Remove.push(&subscription{c: c, b: c.base(), hook: hookValRemoveIdx,
		call: func(x *IntVar, v int) Outcome { return l.ValRemoveIdx(x, idx, v) }})
}

func (x *IntVar) requireSparse(c Constraint) {
	if !x.IsSparse() {
		panic(violation("%s subscribed to value removals of interval variable %s", c.base().name, x.name))
	}
}
