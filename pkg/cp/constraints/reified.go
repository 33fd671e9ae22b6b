package constraints

import (
	"fmt"

	"github.com/gitrdm/gokanprop/pkg/cp"
)

// GrEqCteReif enforces b <=> (x >= v) for a 0/1 variable b.
//
// b is forced to 1 once x.min >= v and to 0 once x.max < v. Once b is
// bound the corresponding bound of x is cut and the constraint is entailed.
type GrEqCteReif struct {
	cp.Base
	x *cp.IntVar
	v int
	b *cp.IntVar
}

// NewGrEqCteReif creates the constraint b <=> (x >= v).
func NewGrEqCteReif(x *cp.IntVar, v int, b *cp.IntVar) (*GrEqCteReif, error) {
	if err := checkVars("NewGrEqCteReif", x, b); err != nil {
		return nil, err
	}
	if err := checkBool("NewGrEqCteReif", b); err != nil {
		return nil, err
	}
	c := &GrEqCteReif{Base: cp.NewBase(x.Store(), "GrEqCteReif"), x: x, v: v, b: b}
	c.SetPriorityL2(cp.MaxPriorityL2 - 1)
	return c, nil
}

// Variables returns [x, b].
func (c *GrEqCteReif) Variables() []*cp.IntVar { return []*cp.IntVar{c.x, c.b} }

// Setup decides b from the bounds of x when possible, otherwise subscribes.
func (c *GrEqCteReif) Setup(cp.Strength) cp.Outcome {
	out := c.Propagate()
	if out != cp.Suspend {
		return out
	}
	c.b.CallValBindWhenBind(c)
	c.x.CallPropagateWhenBoundsChange(c)
	if c.b.IsBound() {
		return c.ValBind(c.b)
	}
	return cp.Suspend
}

// Propagate forces b once the bounds of x decide the comparison.
func (c *GrEqCteReif) Propagate() cp.Outcome {
	switch {
	case c.x.Min() >= c.v:
		if c.b.Assign(1) == cp.Failure {
			return cp.Failure
		}
		return cp.Success
	case c.x.Max() < c.v:
		if c.b.Assign(0) == cp.Failure {
			return cp.Failure
		}
		return cp.Success
	}
	return cp.Suspend
}

// ValBind enforces x < v or x >= v according to b.
func (c *GrEqCteReif) ValBind(*cp.IntVar) cp.Outcome {
	if c.b.IsFalse() {
		if c.x.UpdateMax(c.v-1) == cp.Failure {
			return cp.Failure
		}
	} else if c.x.UpdateMin(c.v) == cp.Failure {
		return cp.Failure
	}
	return cp.Success
}

func (c *GrEqCteReif) String() string {
	return fmt.Sprintf("%s <=> %s >= %d", c.b.Name(), c.x.Name(), c.v)
}

// GrEqVarReif enforces b <=> (x >= y) for a 0/1 variable b.
//
// b is decided by the bounds of x and y. Once b is bound, the constraint
// posts GrEq(x, y) or Le(x, y) and is entailed.
type GrEqVarReif struct {
	cp.Base
	x, y, b *cp.IntVar
}

// NewGrEqVarReif creates the constraint b <=> (x >= y).
func NewGrEqVarReif(x, y, b *cp.IntVar) (*GrEqVarReif, error) {
	if err := checkVars("NewGrEqVarReif", x, y, b); err != nil {
		return nil, err
	}
	if err := checkBool("NewGrEqVarReif", b); err != nil {
		return nil, err
	}
	return &GrEqVarReif{Base: cp.NewBase(x.Store(), "GrEqVarReif"), x: x, y: y, b: b}, nil
}

// Variables returns [x, y, b].
func (c *GrEqVarReif) Variables() []*cp.IntVar { return []*cp.IntVar{c.x, c.y, c.b} }

// Setup decides b from the bounds when possible, otherwise subscribes.
func (c *GrEqVarReif) Setup(cp.Strength) cp.Outcome {
	out := c.Propagate()
	if out != cp.Suspend {
		return out
	}
	if c.b.IsBound() {
		return c.ValBind(c.b)
	}
	c.b.CallValBindWhenBind(c)
	if !c.x.IsBound() {
		c.x.CallPropagateWhenBoundsChange(c)
	}
	if !c.y.IsBound() {
		c.y.CallPropagateWhenBoundsChange(c)
	}
	return cp.Suspend
}

// Propagate forces b once the bounds of x and y decide the comparison.
func (c *GrEqVarReif) Propagate() cp.Outcome {
	switch {
	case c.x.Min() >= c.y.Max():
		if c.b.Assign(1) == cp.Failure {
			return cp.Failure
		}
		return cp.Success
	case c.x.Max() < c.y.Min():
		if c.b.Assign(0) == cp.Failure {
			return cp.Failure
		}
		return cp.Success
	}
	return cp.Suspend
}

// ValBind posts the comparison selected by b.
func (c *GrEqVarReif) ValBind(*cp.IntVar) cp.Outcome {
	var rel cp.Constraint = newGrEq(c.x, c.y)
	if c.b.IsFalse() {
		rel = newLe(c.x, c.y)
	}
	if c.Store().Post(rel) == cp.Failure {
		return cp.Failure
	}
	return cp.Success
}

func (c *GrEqVarReif) String() string {
	return fmt.Sprintf("%s <=> %s >= %s", c.b.Name(), c.x.Name(), c.y.Name())
}

// DiffReif enforces b <=> (x != v) for a 0/1 variable b.
//
// On a variable that tracks holes the constraint listens to the removal of
// v; on an interval variable it listens to bound changes instead.
type DiffReif struct {
	cp.Base
	x *cp.IntVar
	v int
	b *cp.IntVar
}

// NewDiffReif creates the constraint b <=> (x != v).
func NewDiffReif(x *cp.IntVar, v int, b *cp.IntVar) (*DiffReif, error) {
	if err := checkVars("NewDiffReif", x, b); err != nil {
		return nil, err
	}
	if err := checkBool("NewDiffReif", b); err != nil {
		return nil, err
	}
	return &DiffReif{Base: cp.NewBase(x.Store(), "DiffReif"), x: x, v: v, b: b}, nil
}

// Variables returns [x, b].
func (c *DiffReif) Variables() []*cp.IntVar { return []*cp.IntVar{c.x, c.b} }

// Setup resolves the constraint if x or b is bound or v is already gone,
// otherwise subscribes.
func (c *DiffReif) Setup(cp.Strength) cp.Outcome {
	if !c.x.IsBound() {
		c.x.CallValBindWhenBind(c)
		if c.x.IsSparse() {
			c.x.CallValRemoveWhenValueIsRemoved(c)
		} else {
			c.x.CallUpdateBoundsWhenBoundsChange(c)
		}
	}
	if !c.b.IsBound() {
		c.b.CallValBindWhenBind(c)
	}
	if c.x.IsBound() || c.b.IsBound() {
		return c.ValBind(c.x)
	}
	if !c.x.HasValue(c.v) {
		if c.b.Assign(1) == cp.Failure {
			return cp.Failure
		}
		return cp.Success
	}
	return cp.Suspend
}

// UpdateBounds sets b once v falls outside the bounds of x, or cuts v once
// it becomes a bound while b = 1.
func (c *DiffReif) UpdateBounds(x *cp.IntVar) cp.Outcome {
	if c.b.IsTrue() {
		return c.ValBind(x)
	}
	if x.Max() < c.v || x.Min() > c.v {
		if c.b.Assign(1) == cp.Failure {
			return cp.Failure
		}
		return cp.Success
	}
	return cp.Suspend
}

// ValRemove sets b once v is removed from x.
func (c *DiffReif) ValRemove(_ *cp.IntVar, val int) cp.Outcome {
	if val == c.v {
		if c.b.Assign(1) == cp.Failure {
			return cp.Failure
		}
		return cp.Success
	}
	return cp.Suspend
}

// ValBind handles x or b becoming bound.
func (c *DiffReif) ValBind(*cp.IntVar) cp.Outcome {
	if c.b.IsBound() {
		if c.b.IsTrue() {
			if c.x.RemoveValue(c.v) == cp.Failure {
				return cp.Failure
			}
			if c.x.HasValue(c.v) {
				// Interior value of an interval variable: wait for x.
				return cp.Suspend
			}
		} else if c.x.Assign(c.v) == cp.Failure {
			return cp.Failure
		}
		return cp.Success
	}
	if c.x.IsBound() {
		b := 1
		if c.x.Value() == c.v {
			b = 0
		}
		if c.b.Assign(b) == cp.Failure {
			return cp.Failure
		}
		return cp.Success
	}
	return cp.Suspend
}

func (c *DiffReif) String() string {
	return fmt.Sprintf("%s <=> %s != %d", c.b.Name(), c.x.Name(), c.v)
}

// EqReifInterval enforces b <=> (x = v) for a 0/1 variable b using interval
// reasoning only: with b = 0, v is cut from x only when it is one of its
// bounds. The constraint is idempotent.
type EqReifInterval struct {
	cp.Base
	x *cp.IntVar
	v int
	b *cp.IntVar
}

// NewEqReifInterval creates the constraint b <=> (x = v).
func NewEqReifInterval(x *cp.IntVar, v int, b *cp.IntVar) (*EqReifInterval, error) {
	if err := checkVars("NewEqReifInterval", x, b); err != nil {
		return nil, err
	}
	if err := checkBool("NewEqReifInterval", b); err != nil {
		return nil, err
	}
	c := &EqReifInterval{Base: cp.NewBase(x.Store(), "EqReif"), x: x, v: v, b: b}
	c.SetIdempotent(true)
	return c, nil
}

// Variables returns [x, b].
func (c *EqReifInterval) Variables() []*cp.IntVar { return []*cp.IntVar{c.x, c.b} }

// Setup subscribes to b and to the bounds of x, then filters.
func (c *EqReifInterval) Setup(cp.Strength) cp.Outcome {
	c.b.CallPropagateWhenBind(c)
	c.x.CallPropagateWhenBoundsChange(c)
	return c.Propagate()
}

// Propagate channels between b and the bounds of x.
func (c *EqReifInterval) Propagate() cp.Outcome {
	x, v, b := c.x, c.v, c.b
	if b.IsFalse() {
		switch {
		case !x.HasValue(v):
			return cp.Success
		case x.Max() == v:
			if x.UpdateMax(v-1) == cp.Failure {
				return cp.Failure
			}
			return cp.Success
		case x.Min() == v:
			if x.UpdateMin(v+1) == cp.Failure {
				return cp.Failure
			}
			return cp.Success
		}
		return cp.Suspend
	}
	if b.IsTrue() {
		if x.Assign(v) == cp.Failure {
			return cp.Failure
		}
		return cp.Success
	}
	if x.Max() < v || x.Min() > v {
		if b.Assign(0) == cp.Failure {
			return cp.Failure
		}
		return cp.Success
	}
	if x.IsBound() {
		if b.Assign(1) == cp.Failure {
			return cp.Failure
		}
		return cp.Success
	}
	return cp.Suspend
}

func (c *EqReifInterval) String() string {
	return fmt.Sprintf("%s <=> %s == %d", c.b.Name(), c.x.Name(), c.v)
}
