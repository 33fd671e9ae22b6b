package constraints

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"

	"github.com/gitrdm/gokanprop/pkg/cp"
	"github.com/gitrdm/gokanprop/pkg/reversible"
)

// Maximum enforces y = max(x[0], ..., x[n-1]).
//
// Filtering:
//   - y in [max of the minima, max of the maxima]
//   - every x[i] <= y.max
//   - y is assigned as soon as some x[i] is bound to the max of the maxima
//
// The indices of the variables holding the largest min and the largest max
// (the supports) are kept in reversible cells; the supports are recomputed
// only when the bounds of a supporting variable change, so most events on
// the x[i] cost O(1).
type Maximum struct {
	cp.Base
	x []*cp.IntVar
	y *cp.IntVar

	maxVal     reversible.Int
	maxSupport reversible.Int
	minVal     reversible.Int
	minSupport reversible.Int
}

// NewMaximum creates the constraint y = max(x).
func NewMaximum(x []*cp.IntVar, y *cp.IntVar) (*Maximum, error) {
	if len(x) == 0 {
		return nil, errors.Wrap(cp.ErrInvalidArgument, "NewMaximum: x must not be empty")
	}
	if err := checkVars("NewMaximum", append([]*cp.IntVar{y}, x...)...); err != nil {
		return nil, err
	}
	s := y.Store()
	return &Maximum{
		Base:       cp.NewBase(s, "Maximum"),
		x:          append([]*cp.IntVar(nil), x...),
		y:          y,
		maxVal:     s.NewReversibleInt(0),
		maxSupport: s.NewReversibleInt(0),
		minVal:     s.NewReversibleInt(0),
		minSupport: s.NewReversibleInt(0),
	}, nil
}

// Variables returns x followed by y.
func (c *Maximum) Variables() []*cp.IntVar {
	return append(append([]*cp.IntVar(nil), c.x...), c.y)
}

func (c *Maximum) updateSupport() {
	min, max := math.MinInt, math.MinInt
	for i, x := range c.x {
		if m := x.Min(); m > min {
			c.minSupport.SetValue(i)
			c.minVal.SetValue(m)
			min = m
		}
		if m := x.Max(); m > max {
			c.maxSupport.SetValue(i)
			c.maxVal.SetValue(m)
			max = m
		}
	}
}

func (c *Maximum) filterY() cp.Outcome {
	if c.y.UpdateMin(c.minVal.Value()) == cp.Failure {
		return cp.Failure
	}
	return c.y.UpdateMax(c.maxVal.Value())
}

// Setup filters every bound and subscribes to every unbound x[i]. An x[i]
// whose max equals y.min may still be the only support of y.max.
func (c *Maximum) Setup(cp.Strength) cp.Outcome {
	for _, x := range c.x {
		if x.UpdateMax(c.y.Max()) == cp.Failure {
			return cp.Failure
		}
	}
	c.updateSupport()
	if c.filterY() == cp.Failure {
		return cp.Failure
	}
	for i, x := range c.x {
		if !x.IsBound() {
			x.CallUpdateBoundsIdxWhenBoundsChange(c, i)
		}
	}
	if !c.y.IsBound() {
		c.y.CallUpdateBoundsWhenBoundsChange(c)
	}
	return cp.Suspend
}

// UpdateBoundsIdx refreshes the supports when x[idx] supported them, or
// takes over the min support when x[idx] now has the largest min.
func (c *Maximum) UpdateBoundsIdx(x *cp.IntVar, idx int) cp.Outcome {
	switch {
	case idx == c.minSupport.Value() || idx == c.maxSupport.Value():
		c.updateSupport()
		if c.filterY() == cp.Failure {
			return cp.Failure
		}
	case x.Min() > c.minVal.Value():
		c.minSupport.SetValue(idx)
		c.minVal.SetValue(x.Min())
		if c.y.UpdateMin(x.Min()) == cp.Failure {
			return cp.Failure
		}
	}
	if x.IsBound() && x.Value() == c.maxVal.Value() {
		if c.y.Assign(x.Value()) == cp.Failure {
			return cp.Failure
		}
		return cp.Success
	}
	return cp.Suspend
}

// UpdateBounds caps every x[i] by y.max.
func (c *Maximum) UpdateBounds(y *cp.IntVar) cp.Outcome {
	for _, x := range c.x {
		if x.UpdateMax(y.Max()) == cp.Failure {
			return cp.Failure
		}
	}
	return cp.Suspend
}

func (c *Maximum) String() string {
	names := make([]string, len(c.x))
	for i, x := range c.x {
		names[i] = x.Name()
	}
	return fmt.Sprintf("%s = max(%s)", c.y.Name(), strings.Join(names, ", "))
}
