package constraints

import (
	"fmt"

	"github.com/gitrdm/gokanprop/pkg/cp"
)

// GrEq enforces x >= y by bounds reasoning. It runs at the highest coarse
// priority and is entailed as soon as x.min >= y.max.
type GrEq struct {
	cp.Base
	x, y *cp.IntVar
}

// NewGrEq creates the constraint x >= y.
func NewGrEq(x, y *cp.IntVar) (*GrEq, error) {
	if err := checkVars("NewGrEq", x, y); err != nil {
		return nil, err
	}
	return newGrEq(x, y), nil
}

func newGrEq(x, y *cp.IntVar) *GrEq {
	c := &GrEq{Base: cp.NewBase(x.Store(), "GrEq"), x: x, y: y}
	c.SetPriorityL2(cp.MaxPriorityL2)
	return c
}

// Variables returns [x, y].
func (c *GrEq) Variables() []*cp.IntVar { return []*cp.IntVar{c.x, c.y} }

// Setup filters the bounds and subscribes to bound changes unless entailed.
func (c *GrEq) Setup(cp.Strength) cp.Outcome {
	out := c.Propagate()
	if out == cp.Suspend {
		if !c.y.IsBound() {
			c.y.CallPropagateWhenBoundsChange(c)
		}
		if !c.x.IsBound() {
			c.x.CallPropagateWhenBoundsChange(c)
		}
	}
	return out
}

// Propagate enforces x.min >= y.min and y.max <= x.max.
func (c *GrEq) Propagate() cp.Outcome {
	if c.x.Min() >= c.y.Max() {
		return cp.Success
	}
	if c.x.UpdateMin(c.y.Min()) == cp.Failure {
		return cp.Failure
	}
	if c.y.UpdateMax(c.x.Max()) == cp.Failure {
		return cp.Failure
	}
	if c.x.Min() >= c.y.Max() {
		return cp.Success
	}
	return cp.Suspend
}

func (c *GrEq) String() string {
	return fmt.Sprintf("%s >= %s", c.x.Name(), c.y.Name())
}

// Gr enforces x > y by bounds reasoning. It is entailed as soon as
// x.min > y.max.
type Gr struct {
	cp.Base
	x, y *cp.IntVar
}

// NewGr creates the constraint x > y.
func NewGr(x, y *cp.IntVar) (*Gr, error) {
	if err := checkVars("NewGr", x, y); err != nil {
		return nil, err
	}
	return newGr(x, y), nil
}

func newGr(x, y *cp.IntVar) *Gr {
	c := &Gr{Base: cp.NewBase(x.Store(), "Gr"), x: x, y: y}
	c.SetPriorityL2(cp.MaxPriorityL2)
	return c
}

// Variables returns [x, y].
func (c *Gr) Variables() []*cp.IntVar { return []*cp.IntVar{c.x, c.y} }

// Setup filters the bounds and subscribes to bound changes unless entailed.
func (c *Gr) Setup(cp.Strength) cp.Outcome {
	out := c.Propagate()
	if out == cp.Suspend {
		if !c.y.IsBound() {
			c.y.CallPropagateWhenBoundsChange(c)
		}
		if !c.x.IsBound() {
			c.x.CallPropagateWhenBoundsChange(c)
		}
	}
	return out
}

// Propagate enforces x.min > y.min and y.max < x.max.
func (c *Gr) Propagate() cp.Outcome {
	if c.x.Min() > c.y.Max() {
		return cp.Success
	}
	if c.x.UpdateMin(c.y.Min()+1) == cp.Failure {
		return cp.Failure
	}
	if c.y.UpdateMax(c.x.Max()-1) == cp.Failure {
		return cp.Failure
	}
	if c.x.Min() > c.y.Max() {
		return cp.Success
	}
	return cp.Suspend
}

func (c *Gr) String() string {
	return fmt.Sprintf("%s > %s", c.x.Name(), c.y.Name())
}

// Le enforces x < y. It never stays active itself: when y is bound it cuts
// x.max and is entailed, otherwise it delegates to Gr(y, x).
type Le struct {
	cp.Base
	x, y *cp.IntVar
}

// NewLe creates the constraint x < y.
func NewLe(x, y *cp.IntVar) (*Le, error) {
	if err := checkVars("NewLe", x, y); err != nil {
		return nil, err
	}
	return newLe(x, y), nil
}

func newLe(x, y *cp.IntVar) *Le {
	return &Le{Base: cp.NewBase(x.Store(), "Le"), x: x, y: y}
}

// Variables returns [x, y].
func (c *Le) Variables() []*cp.IntVar { return []*cp.IntVar{c.x, c.y} }

// Setup applies or delegates the constraint and reports Success.
func (c *Le) Setup(cp.Strength) cp.Outcome {
	if c.y.IsBound() {
		if c.x.UpdateMax(c.y.Value()-1) == cp.Failure {
			return cp.Failure
		}
		return cp.Success
	}
	if c.Store().Post(newGr(c.y, c.x)) == cp.Failure {
		return cp.Failure
	}
	return cp.Success
}

func (c *Le) String() string {
	return fmt.Sprintf("%s < %s", c.x.Name(), c.y.Name())
}
