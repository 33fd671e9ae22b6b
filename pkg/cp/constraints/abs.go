package constraints

import (
	"fmt"

	"github.com/gitrdm/gokanprop/pkg/cp"
	"github.com/gitrdm/gokanprop/pkg/intmath"
)

// Abs enforces y = |x|.
//
// Bounds are filtered by a case split on the sign of x:
//   - x >= 0: y and x share the same bounds
//   - x <= 0: y mirrors the bounds of x
//   - mixed sign: y.max = max(|x.min|, |x.max|) and x is kept in
//     [-y.max, y.max]
//
// When x is bound, y is assigned |x|. When y is bound to v, x is restricted
// to {-v, v} (on interval variables only the bounds can be cut, so the
// constraint stays active until x is bound).
//
// Example:
//
//	x, _ := s.NewIntVar(-3, 5)
//	y, _ := s.NewIntVar(0, 10)
//	c, _ := constraints.NewAbs(x, y)
//	s.Post(c) // y in [0,5]
type Abs struct {
	cp.Base
	x, y *cp.IntVar
}

// NewAbs creates the constraint y = |x|.
func NewAbs(x, y *cp.IntVar) (*Abs, error) {
	if err := checkVars("NewAbs", x, y); err != nil {
		return nil, err
	}
	return &Abs{Base: cp.NewBase(x.Store(), "Abs"), x: x, y: y}, nil
}

// Variables returns [x, y].
func (c *Abs) Variables() []*cp.IntVar { return []*cp.IntVar{c.x, c.y} }

// Setup forces y >= 0, filters bounds and subscribes to both variables.
func (c *Abs) Setup(cp.Strength) cp.Outcome {
	if c.y.UpdateMin(0) == cp.Failure {
		return cp.Failure
	}
	if c.Propagate() == cp.Failure {
		return cp.Failure
	}
	if !c.x.IsBound() {
		c.x.CallPropagateWhenBoundsChange(c)
		c.x.CallValBindWhenBind(c)
	}
	if !c.y.IsBound() {
		c.y.CallPropagateWhenBoundsChange(c)
		c.y.CallValBindWhenBind(c)
	}
	switch {
	case c.x.IsBound():
		return c.ValBind(c.x)
	case c.y.IsBound():
		return c.ValBind(c.y)
	}
	return cp.Suspend
}

// Propagate filters the bounds of x and y.
func (c *Abs) Propagate() cp.Outcome {
	x, y := c.x, c.y
	switch {
	case x.Min() >= 0:
		if y.UpdateMin(x.Min()) == cp.Failure {
			return cp.Failure
		}
		if y.UpdateMax(x.Max()) == cp.Failure {
			return cp.Failure
		}
		if x.UpdateMin(y.Min()) == cp.Failure {
			return cp.Failure
		}
		if x.UpdateMax(y.Max()) == cp.Failure {
			return cp.Failure
		}
	case x.Max() <= 0:
		if y.UpdateMin(-x.Max()) == cp.Failure {
			return cp.Failure
		}
		if y.UpdateMax(-x.Min()) == cp.Failure {
			return cp.Failure
		}
		if x.UpdateMin(-y.Max()) == cp.Failure {
			return cp.Failure
		}
		if x.UpdateMax(-y.Min()) == cp.Failure {
			return cp.Failure
		}
	default:
		m := intmath.Max(intmath.Abs(x.Min()), intmath.Abs(x.Max()))
		if y.UpdateMax(m) == cp.Failure {
			return cp.Failure
		}
		if x.UpdateMax(y.Max()) == cp.Failure {
			return cp.Failure
		}
		if x.UpdateMin(-y.Max()) == cp.Failure {
			return cp.Failure
		}
	}
	return cp.Suspend
}

// ValBind handles x or y becoming bound.
func (c *Abs) ValBind(*cp.IntVar) cp.Outcome {
	x, y := c.x, c.y
	if x.IsBound() {
		if y.Assign(intmath.Abs(x.Value())) == cp.Failure {
			return cp.Failure
		}
		return cp.Success
	}
	v := y.Value()
	switch {
	case !x.HasValue(-v):
		if x.Assign(v) == cp.Failure {
			return cp.Failure
		}
		return cp.Success
	case !x.HasValue(v):
		if x.Assign(-v) == cp.Failure {
			return cp.Failure
		}
		return cp.Success
	}
	// x can still be v or -v.
	if x.UpdateMin(-v) == cp.Failure || x.UpdateMax(v) == cp.Failure {
		return cp.Failure
	}
	if !x.IsSparse() {
		return cp.Suspend
	}
	for _, u := range x.Values() {
		if u != v && u != -v {
			if x.RemoveValue(u) == cp.Failure {
				return cp.Failure
			}
		}
	}
	return cp.Success
}

func (c *Abs) String() string {
	return fmt.Sprintf("Abs(%s, %s)", c.x.Name(), c.y.Name())
}
