package constraints

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/gitrdm/gokanprop/pkg/cp"
	"github.com/gitrdm/gokanprop/pkg/intmath"
	"github.com/gitrdm/gokanprop/pkg/reversible"
)

// AtLeastNValueFWC links n to the number of distinct values taken by x,
// filtered by forward checking.
//
// Two reversible counters are maintained as the x[i] get bound: the number
// of bound variables and the number of distinct values they use. Then:
//   - n >= number of used values
//   - n <= used values + unbound variables
//   - when that upper bound equals n.min, every unbound variable must take
//     a fresh value, so the used values are removed from them
//
// All state lives in reversible cells, so the constraint resumes correctly
// after any backtrack.
type AtLeastNValueFWC struct {
	cp.Base
	x []*cp.IntVar
	n *cp.IntVar

	used      []reversible.Bool // indexed by value - offset
	offset    int
	nUsed     reversible.Int
	nBound    reversible.Int
	nVarCount int
}

// NewAtLeastNValueFWC creates the constraint n = |{x[i]}| with forward
// checking filtering. One flag is allocated per value of the union of the
// x ranges, so that range may not be wider than the store's SparseLimit.
func NewAtLeastNValueFWC(x []*cp.IntVar, n *cp.IntVar) (*AtLeastNValueFWC, error) {
	if len(x) == 0 {
		return nil, errors.Wrap(cp.ErrInvalidArgument, "NewAtLeastNValueFWC: x must not be empty")
	}
	if err := checkVars("NewAtLeastNValueFWC", append([]*cp.IntVar{n}, x...)...); err != nil {
		return nil, err
	}
	s := n.Store()
	lo, hi := x[0].Min(), x[0].Max()
	for _, xi := range x[1:] {
		lo, hi = intmath.Min(lo, xi.Min()), intmath.Max(hi, xi.Max())
	}
	if width := hi - lo + 1; width > s.Config().SparseLimit {
		return nil, errors.Wrapf(cp.ErrInvalidArgument,
			"NewAtLeastNValueFWC: value range [%d, %d] wider than %d", lo, hi, s.Config().SparseLimit)
	}
	used := make([]reversible.Bool, hi-lo+1)
	for i := range used {
		used[i] = s.NewReversibleBool(false)
	}
	return &AtLeastNValueFWC{
		Base:      cp.NewBase(s, "AtLeastNValueFWC"),
		x:         append([]*cp.IntVar(nil), x...),
		n:         n,
		used:      used,
		offset:    lo,
		nUsed:     s.NewReversibleInt(0),
		nBound:    s.NewReversibleInt(0),
		nVarCount: len(x),
	}, nil
}

// Variables returns x followed by n.
func (c *AtLeastNValueFWC) Variables() []*cp.IntVar {
	return append(append([]*cp.IntVar(nil), c.x...), c.n)
}

// markBound records that some x[i] got bound to v.
func (c *AtLeastNValueFWC) markBound(v int) {
	c.nBound.Incr()
	if u := c.used[v-c.offset]; !u.Value() {
		u.SetValue(true)
		c.nUsed.Incr()
	}
}

func (c *AtLeastNValueFWC) upperBound() int {
	return c.nUsed.Value() + c.nVarCount - c.nBound.Value()
}

// Setup counts the variables already bound, bounds n and subscribes.
func (c *AtLeastNValueFWC) Setup(cp.Strength) cp.Outcome {
	for _, x := range c.x {
		if x.IsBound() {
			c.markBound(x.Value())
		}
	}
	lb := c.nUsed.Value()
	if lb < 1 {
		lb = 1
	}
	if c.n.UpdateMin(lb) == cp.Failure {
		return cp.Failure
	}
	if c.n.UpdateMax(c.upperBound()) == cp.Failure {
		return cp.Failure
	}
	for i, x := range c.x {
		if !x.IsBound() {
			x.CallValBindIdxWhenBind(c, i)
		}
	}
	if !c.n.IsBound() {
		c.n.CallPropagateWhenBoundsChange(c)
	}
	if c.upperBound() <= c.n.Min() {
		return c.prune()
	}
	return cp.Suspend
}

// ValBindIdx updates the counters when x[idx] gets bound.
func (c *AtLeastNValueFWC) ValBindIdx(x *cp.IntVar, _ int) cp.Outcome {
	c.markBound(x.Value())
	ub := c.upperBound()
	if c.n.UpdateMin(c.nUsed.Value()) == cp.Failure {
		return cp.Failure
	}
	if c.n.UpdateMax(ub) == cp.Failure {
		return cp.Failure
	}
	if c.nBound.Value() == c.nVarCount {
		return cp.Success
	}
	if ub == c.n.Min() {
		return c.prune()
	}
	return cp.Suspend
}

// Propagate reacts to a change of n.
func (c *AtLeastNValueFWC) Propagate() cp.Outcome {
	if c.upperBound() == c.n.Min() {
		return c.prune()
	}
	return cp.Suspend
}

// prune removes the used values from every unbound variable.
func (c *AtLeastNValueFWC) prune() cp.Outcome {
	values := make([]int, 0, c.nVarCount)
	for _, x := range c.x {
		if x.IsBound() {
			values = append(values, x.Value())
		}
	}
	for _, x := range c.x {
		if x.IsBound() {
			continue
		}
		for _, v := range values {
			if x.RemoveValue(v) == cp.Failure {
				return cp.Failure
			}
		}
	}
	return cp.Suspend
}

func (c *AtLeastNValueFWC) String() string {
	return fmt.Sprintf("AtLeastNValueFWC(%d vars, %s)", c.nVarCount, c.n.Name())
}
