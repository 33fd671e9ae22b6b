package constraints

import (
	"fmt"
	"math"

	"github.com/gitrdm/gokanprop/pkg/cp"
	"github.com/gitrdm/gokanprop/pkg/intmath"
)

// MulCte enforces x * c = z for a constant c.
//
// Bounds of z are the products of the bounds of x; bounds of x are the
// quotients of the bounds of z, rounded inward with floor/ceil division.
// With c = 0, z is assigned 0. With Strong strength and a variable z that
// tracks holes, the values of z that are not multiples of c are removed at
// setup.
type MulCte struct {
	cp.Base
	x, z *cp.IntVar
	c    int
}

// NewMulCte creates the constraint x * c = z.
func NewMulCte(x *cp.IntVar, c int, z *cp.IntVar) (*MulCte, error) {
	if err := checkVars("NewMulCte", x, z); err != nil {
		return nil, err
	}
	return &MulCte{Base: cp.NewBase(x.Store(), "MulCte"), x: x, z: z, c: c}, nil
}

// Variables returns [x, z].
func (m *MulCte) Variables() []*cp.IntVar { return []*cp.IntVar{m.x, m.z} }

// Setup filters the bounds and subscribes to both variables unless
// entailed.
func (m *MulCte) Setup(l cp.Strength) cp.Outcome {
	out := m.Propagate()
	if out != cp.Suspend {
		return out
	}
	m.x.CallPropagateWhenBoundsChange(m)
	m.z.CallPropagateWhenBoundsChange(m)
	if l == cp.Strong && m.z.IsSparse() {
		for _, v := range m.z.Values() {
			if v%m.c != 0 {
				if m.z.RemoveValue(v) == cp.Failure {
					return cp.Failure
				}
			}
		}
	}
	return cp.Suspend
}

// Propagate filters the bounds of x and z.
func (m *MulCte) Propagate() cp.Outcome {
	x, z, c := m.x, m.z, m.c
	if x.IsBound() {
		if z.Assign(intmath.SafeMul(c, x.Value())) == cp.Failure {
			return cp.Failure
		}
		return cp.Success
	}
	if c == 0 {
		if z.Assign(0) == cp.Failure {
			return cp.Failure
		}
		return cp.Success
	}
	lo, hi := intmath.SafeMul(c, x.Min()), intmath.SafeMul(c, x.Max())
	if z.UpdateMin(intmath.Min(lo, hi)) == cp.Failure {
		return cp.Failure
	}
	if z.UpdateMax(intmath.Max(lo, hi)) == cp.Failure {
		return cp.Failure
	}
	if x.UpdateMin(intmath.Min(intmath.CeilDiv(z.Min(), c), intmath.CeilDiv(z.Max(), c))) == cp.Failure {
		return cp.Failure
	}
	if x.UpdateMax(intmath.Max(intmath.FloorDiv(z.Min(), c), intmath.FloorDiv(z.Max(), c))) == cp.Failure {
		return cp.Failure
	}
	return cp.Suspend
}

func (m *MulCte) String() string {
	return fmt.Sprintf("%s * %d = %s", m.x.Name(), m.c, m.z.Name())
}

// MulCteRes enforces x * y = c for a constant c.
//
// With c != 0, 0 is removed from both variables and each bound is derived
// by dividing c by the extreme values of the other variable on each side
// of zero (found with ValueBefore/ValueAfter). With c = 0, at least one
// variable must be 0: as soon as only one of them can still be 0 it is
// assigned. When one variable is bound to k, the other is assigned c/k.
// x and y may be the same variable, in which case x*x = c.
type MulCteRes struct {
	cp.Base
	x, y *cp.IntVar
	c    int
}

// NewMulCteRes creates the constraint x * y = c.
func NewMulCteRes(x, y *cp.IntVar, c int) (*MulCteRes, error) {
	if err := checkVars("NewMulCteRes", x, y); err != nil {
		return nil, err
	}
	return &MulCteRes{Base: cp.NewBase(x.Store(), "MulCteRes"), x: x, y: y, c: c}, nil
}

// Variables returns [x, y].
func (m *MulCteRes) Variables() []*cp.IntVar { return []*cp.IntVar{m.x, m.y} }

// Setup subscribes before filtering because Propagate does not always reach
// its own fixpoint.
func (m *MulCteRes) Setup(cp.Strength) cp.Outcome {
	if m.x == m.y {
		m.x.CallPropagateWhenDomainChanges(m)
		return m.Propagate()
	}
	if m.c == 0 && m.x.HasValue(0) && m.y.HasValue(0) {
		m.x.CallPropagateWhenDomainChanges(m)
		m.y.CallPropagateWhenDomainChanges(m)
	} else {
		m.x.CallPropagateWhenBoundsChange(m)
		m.y.CallPropagateWhenBoundsChange(m)
	}
	return m.Propagate()
}

// Propagate filters x and y.
func (m *MulCteRes) Propagate() cp.Outcome {
	x, y, c := m.x, m.y, m.c
	if x == y {
		return m.propagateSquare()
	}
	if c != 0 {
		if x.RemoveValue(0) == cp.Failure {
			return cp.Failure
		}
		if y.RemoveValue(0) == cp.Failure {
			return cp.Failure
		}
	}
	switch {
	case x.IsBound():
		return m.propagateBound(x.Value(), y)
	case y.IsBound():
		return m.propagateBound(y.Value(), x)
	}
	if c == 0 {
		xZero, yZero := x.HasValue(0), y.HasValue(0)
		switch {
		case !xZero && !yZero:
			return cp.Failure
		case xZero && !yZero:
			if x.Assign(0) == cp.Failure {
				return cp.Failure
			}
			return cp.Success
		case yZero && !xZero:
			if y.Assign(0) == cp.Failure {
				return cp.Failure
			}
			return cp.Success
		}
		return cp.Suspend
	}
	if m.propagateVar(x, y) == cp.Failure {
		return cp.Failure
	}
	if m.propagateVar(y, x) == cp.Failure {
		return cp.Failure
	}
	return cp.Suspend
}

// propagateBound handles w * k = c once the other variable is bound to k.
func (m *MulCteRes) propagateBound(k int, w *cp.IntVar) cp.Outcome {
	if k == 0 {
		if m.c == 0 {
			return cp.Success
		}
		return cp.Failure
	}
	if m.c%k != 0 {
		return cp.Failure
	}
	if w.Assign(m.c/k) == cp.Failure {
		return cp.Failure
	}
	return cp.Success
}

// propagateVar bounds z by c / w, skipping 0 in w.
func (m *MulCteRes) propagateVar(w, z *cp.IntVar) cp.Outcome {
	if w.IsBound() {
		return m.propagateBound(w.Value(), z)
	}
	a, b := w.Min(), w.Max()
	// An interval variable can get 0 back as a bound from rounding.
	if a == 0 {
		a = w.ValueAfter(0)
	}
	if b == 0 {
		b = w.ValueBefore(0)
	}
	var lo, hi int
	if a > 0 || b < 0 {
		lo, hi = intmath.MinCeilDiv(m.c, a, b), intmath.MaxFloorDiv(m.c, a, b)
	} else {
		// a < 0 < b; 0 may only linger inside an interval variable.
		before, after := w.ValueBefore(0), w.ValueAfter(0)
		if before == 0 {
			before = -1
		}
		if after == 0 {
			after = 1
		}
		lo = intmath.MinCeilDiv(m.c, a, before, after, b)
		hi = intmath.MaxFloorDiv(m.c, a, before, after, b)
	}
	if z.UpdateMin(lo) == cp.Failure {
		return cp.Failure
	}
	if z.UpdateMax(hi) == cp.Failure {
		return cp.Failure
	}
	return cp.Suspend
}

// propagateSquare handles x * x = c.
func (m *MulCteRes) propagateSquare() cp.Outcome {
	x, c := m.x, m.c
	// Domain values are int32, so no square exceeds MaxValue^2.
	if c < 0 || c > cp.MaxValue*cp.MaxValue {
		return cp.Failure
	}
	r := int(math.Sqrt(float64(c)))
	for intmath.SafeMul(r, r) > c {
		r--
	}
	for intmath.SafeMul(r+1, r+1) <= c {
		r++
	}
	if intmath.SafeMul(r, r) != c {
		return cp.Failure
	}
	if x.UpdateMin(-r) == cp.Failure || x.UpdateMax(r) == cp.Failure {
		return cp.Failure
	}
	if x.IsBound() {
		if intmath.Abs(x.Value()) != r {
			return cp.Failure
		}
		return cp.Success
	}
	if !x.IsSparse() {
		return cp.Suspend
	}
	for _, v := range x.Values() {
		if v != r && v != -r {
			if x.RemoveValue(v) == cp.Failure {
				return cp.Failure
			}
		}
	}
	return cp.Success
}

func (m *MulCteRes) String() string {
	return fmt.Sprintf("%s * %s = %d", m.x.Name(), m.y.Name(), m.c)
}
