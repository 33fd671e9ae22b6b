package constraints

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gitrdm/gokanprop/pkg/cp"
)

// decide opens a level, applies a decision and propagates.
func decide(s *cp.Store, decision func() cp.Outcome) cp.Outcome {
	s.NewLevel()
	if decision() == cp.Failure {
		return cp.Failure
	}
	return s.Propagate()
}

func TestAbsSetupMixedSign(t *testing.T) {
	s := cp.NewStore()
	x := mustVar(t, s, "x", -3, 5)
	y := mustVar(t, s, "y", 0, 10)
	c, err := NewAbs(x, y)
	require.NoError(t, err)

	assert.Equal(t, cp.Suspend, s.Post(c))
	assert.Equal(t, 0, y.Min())
	assert.Equal(t, 5, y.Max())
	assert.Equal(t, -3, x.Min())
	assert.Equal(t, 5, x.Max())
}

func TestAbsIntervalVariable(t *testing.T) {
	s := cp.NewStore()
	x := mustVar(t, s, "x", -100000, 100000)
	y := mustVar(t, s, "y", 0, 10)
	c, err := NewAbs(x, y)
	require.NoError(t, err)
	require.False(t, x.IsSparse())

	require.NotEqual(t, cp.Failure, s.Post(c))
	assert.Equal(t, -10, x.Min())
	assert.Equal(t, 10, x.Max())

	require.NotEqual(t, cp.Failure, decide(s, func() cp.Outcome { return y.Assign(4) }))
	assert.Equal(t, -4, x.Min())
	assert.Equal(t, 4, x.Max())
	assert.True(t, c.IsActive(), "x may still be 0 inside the interval")

	require.NotEqual(t, cp.Failure, decide(s, func() cp.Outcome { return x.UpdateMin(0) }))
	require.True(t, x.IsBound())
	assert.Equal(t, 4, x.Value())
}

func TestGrEqCteReif(t *testing.T) {
	t.Run("decided at setup", func(t *testing.T) {
		s := cp.NewStore()
		x := mustVar(t, s, "x", 0, 3)
		b := s.NewBoolVarWithName("b")
		c, err := NewGrEqCteReif(x, 5, b)
		require.NoError(t, err)

		assert.Equal(t, cp.Success, s.Post(c))
		assert.True(t, b.IsFalse())
		assert.False(t, c.IsActive())
	})

	t.Run("both directions", func(t *testing.T) {
		s := cp.NewStore()
		x := mustVar(t, s, "x", 0, 6)
		b := s.NewBoolVarWithName("b")
		c, err := NewGrEqCteReif(x, 3, b)
		require.NoError(t, err)
		require.Equal(t, cp.Suspend, s.Post(c))
		assert.Equal(t, cp.MaxPriorityL2-1, c.PriorityL2())

		require.NotEqual(t, cp.Failure, decide(s, func() cp.Outcome { return b.Assign(1) }))
		assert.Equal(t, 3, x.Min())
		s.UndoTo(0)

		require.NotEqual(t, cp.Failure, decide(s, func() cp.Outcome { return b.Assign(0) }))
		assert.Equal(t, 2, x.Max())
		s.UndoTo(0)

		require.NotEqual(t, cp.Failure, decide(s, func() cp.Outcome { return x.UpdateMin(3) }))
		assert.True(t, b.IsTrue())
		s.UndoTo(0)

		require.NotEqual(t, cp.Failure, decide(s, func() cp.Outcome { return x.UpdateMax(2) }))
		assert.True(t, b.IsFalse())
		s.UndoTo(0)
		assert.False(t, b.IsBound())
		assert.True(t, c.IsActive())
	})
}

func TestGrEqVarReifDelegatesAndUndoes(t *testing.T) {
	s := cp.NewStore()
	x := mustVar(t, s, "x", 0, 5)
	y := mustVar(t, s, "y", 0, 5)
	b := s.NewBoolVarWithName("b")
	c, err := NewGrEqVarReif(x, y, b)
	require.NoError(t, err)
	require.Equal(t, cp.Suspend, s.Post(c))
	require.Len(t, s.Constraints(), 1)

	// b = 0 posts Le(x, y), which itself delegates to Gr(y, x).
	require.NotEqual(t, cp.Failure, decide(s, func() cp.Outcome { return b.Assign(0) }))
	assert.Equal(t, 4, x.Max())
	assert.Equal(t, 1, y.Min())
	assert.Len(t, s.Constraints(), 3)

	require.NotEqual(t, cp.Failure, decide(s, func() cp.Outcome { return y.UpdateMax(3) }))
	assert.Equal(t, 2, x.Max())

	s.UndoTo(0)
	assert.Len(t, s.Constraints(), 1)
	assert.Equal(t, 5, x.Max())
	assert.Equal(t, 0, y.Min())

	require.NotEqual(t, cp.Failure, decide(s, func() cp.Outcome { return b.Assign(1) }))
	require.NotEqual(t, cp.Failure, decide(s, func() cp.Outcome { return x.UpdateMax(2) }))
	assert.Equal(t, 2, y.Max())
}

func TestLe(t *testing.T) {
	s := cp.NewStore()
	x := mustVar(t, s, "x", 0, 9)
	y := mustVar(t, s, "y", 0, 4)
	k, err := s.Constant(3)
	require.NoError(t, err)

	le, err := NewLe(x, k)
	require.NoError(t, err)
	assert.Equal(t, cp.Success, s.Post(le))
	assert.Equal(t, 2, x.Max())

	le, err = NewLe(y, x)
	require.NoError(t, err)
	assert.Equal(t, cp.Success, s.Post(le))
	assert.Equal(t, 1, y.Max())
	assert.Equal(t, 1, x.Min())
	assert.Equal(t, 1, s.ActiveConstraints(), "only the delegated Gr stays active")
}

func TestDiffReif(t *testing.T) {
	t.Run("value removed", func(t *testing.T) {
		s := cp.NewStore()
		x := mustVar(t, s, "x", 0, 4)
		b := s.NewBoolVarWithName("b")
		c, err := NewDiffReif(x, 2, b)
		require.NoError(t, err)
		require.Equal(t, cp.Suspend, s.Post(c))

		require.NotEqual(t, cp.Failure, decide(s, func() cp.Outcome { return x.RemoveValue(2) }))
		assert.True(t, b.IsTrue())
		s.UndoTo(0)

		require.NotEqual(t, cp.Failure, decide(s, func() cp.Outcome { return b.Assign(0) }))
		assert.True(t, x.IsBound())
		assert.Equal(t, 2, x.Value())
		s.UndoTo(0)

		require.NotEqual(t, cp.Failure, decide(s, func() cp.Outcome { return b.Assign(1) }))
		assert.False(t, x.HasValue(2))
		assert.Equal(t, 4, x.Size())
	})

	t.Run("value absent at setup", func(t *testing.T) {
		s := cp.NewStore()
		x := mustValues(t, s, "x", 1, 3)
		b := s.NewBoolVarWithName("b")
		c, err := NewDiffReif(x, 2, b)
		require.NoError(t, err)
		assert.Equal(t, cp.Success, s.Post(c))
		assert.True(t, b.IsTrue())
	})

	t.Run("interval variable", func(t *testing.T) {
		s := cp.NewStore()
		x := mustVar(t, s, "x", 0, 1<<20)
		b := s.NewBoolVarWithName("b")
		c, err := NewDiffReif(x, 5, b)
		require.NoError(t, err)
		require.Equal(t, cp.Suspend, s.Post(c))

		require.NotEqual(t, cp.Failure, decide(s, func() cp.Outcome { return b.Assign(1) }))
		assert.True(t, x.HasValue(5), "interior values of an interval variable cannot be removed")
		assert.True(t, c.IsActive())

		require.NotEqual(t, cp.Failure, decide(s, func() cp.Outcome { return x.UpdateMin(5) }))
		assert.Equal(t, 6, x.Min())
		assert.False(t, c.IsActive())
		s.UndoTo(0)

		require.NotEqual(t, cp.Failure, decide(s, func() cp.Outcome { return x.UpdateMin(6) }))
		assert.True(t, b.IsTrue())
	})
}

func TestEqReifInterval(t *testing.T) {
	s := cp.NewStore()
	x := mustVar(t, s, "x", 2, 5)
	b := s.NewBoolVarWithName("b")
	c, err := NewEqReifInterval(x, 3, b)
	require.NoError(t, err)
	assert.True(t, c.Idempotent())
	assert.Equal(t, "EqReif", c.Name())
	require.Equal(t, cp.Suspend, s.Post(c))

	require.NotEqual(t, cp.Failure, decide(s, func() cp.Outcome { return b.Assign(0) }))
	assert.True(t, x.HasValue(3), "3 is not a bound of x")
	assert.True(t, c.IsActive())

	require.NotEqual(t, cp.Failure, decide(s, func() cp.Outcome { return x.UpdateMax(3) }))
	require.True(t, x.IsBound())
	assert.Equal(t, 2, x.Value())
	s.UndoTo(0)

	require.NotEqual(t, cp.Failure, decide(s, func() cp.Outcome { return b.Assign(1) }))
	assert.Equal(t, 3, x.Value())
	s.UndoTo(0)

	require.NotEqual(t, cp.Failure, decide(s, func() cp.Outcome { return x.UpdateMin(4) }))
	assert.True(t, b.IsFalse())
}

func TestMaximum(t *testing.T) {
	s := cp.NewStore()
	x1 := mustVar(t, s, "x1", 1, 4)
	x2 := mustVar(t, s, "x2", 2, 6)
	y := mustVar(t, s, "y", 0, 10)
	c, err := NewMaximum([]*cp.IntVar{x1, x2}, y)
	require.NoError(t, err)
	require.Equal(t, cp.Suspend, s.Post(c))
	assert.Equal(t, 2, y.Min())
	assert.Equal(t, 6, y.Max())

	require.NotEqual(t, cp.Failure, decide(s, func() cp.Outcome { return x2.UpdateMax(3) }))
	assert.Equal(t, 4, y.Max(), "x1 takes over the max support")
	s.UndoTo(0)
	assert.Equal(t, 6, y.Max())

	require.NotEqual(t, cp.Failure, decide(s, func() cp.Outcome { return x1.Assign(4) }))
	assert.Equal(t, 4, y.Min(), "x1 takes over the min support")
	require.NotEqual(t, cp.Failure, decide(s, func() cp.Outcome { return x2.UpdateMax(4) }))
	require.True(t, y.IsBound())
	assert.Equal(t, 4, y.Value())
	s.UndoTo(0)

	require.NotEqual(t, cp.Failure, decide(s, func() cp.Outcome { return y.UpdateMax(3) }))
	assert.Equal(t, 3, x1.Max())
	assert.Equal(t, 3, x2.Max())
}

func TestMaximumWatchesSupportAtYMin(t *testing.T) {
	s := cp.NewStore()
	x1 := mustVar(t, s, "x1", 0, 4)
	x2 := mustVar(t, s, "x2", 0, 4)
	y := mustVar(t, s, "y", 4, 4)
	c, err := NewMaximum([]*cp.IntVar{x1, x2}, y)
	require.NoError(t, err)
	require.Equal(t, cp.Suspend, s.Post(c))

	s.NewLevel()
	require.NotEqual(t, cp.Failure, x1.Assign(0))
	require.Equal(t, cp.Suspend, s.Propagate())
	assert.True(t, c.IsActive())
	x2.Assign(3)
	assert.Equal(t, cp.Failure, s.Propagate(), "x2 was the last support of y")
	s.UndoTo(0)

	s.NewLevel()
	x1.Assign(0)
	x2.Assign(0)
	assert.Equal(t, cp.Failure, s.Propagate())
	s.UndoTo(0)

	s.NewLevel()
	x1.Assign(4)
	assert.Equal(t, cp.Success, s.Propagate())
	assert.False(t, c.IsActive())
}

func TestMulCteResIntervalVariable(t *testing.T) {
	s := cp.NewStore()
	x := mustVar(t, s, "x", -(1 << 17), 1<<17)
	y := mustVar(t, s, "y", 3, 4)
	c, err := NewMulCteRes(x, y, 12)
	require.NoError(t, err)

	require.NotEqual(t, cp.Failure, s.Post(c))
	assert.False(t, x.IsSparse())
	assert.Equal(t, 3, x.Min())
	assert.Equal(t, 4, x.Max())

	require.NotEqual(t, cp.Failure, decide(s, func() cp.Outcome { return x.Assign(3) }))
	assert.Equal(t, 4, y.Value())
}

func TestMulCteResSquare(t *testing.T) {
	s := cp.NewStore()
	x := mustVar(t, s, "x", -5, 5)
	c, err := NewMulCteRes(x, x, 9)
	require.NoError(t, err)
	assert.Equal(t, cp.Success, s.Post(c))
	assert.Equal(t, []int{-3, 3}, x.Values())

	s2 := cp.NewStore()
	z := mustVar(t, s2, "z", -5, 5)
	c, err = NewMulCteRes(z, z, 8)
	require.NoError(t, err)
	assert.Equal(t, cp.Failure, s2.Post(c))
}

func TestMulCteResSquareLargeConstant(t *testing.T) {
	tests := []struct {
		name     string
		c        int
		outcome  cp.Outcome
		min, max int
	}{
		{"max int", math.MaxInt, cp.Failure, 0, 0},
		{"beyond int32 squares", cp.MaxValue*cp.MaxValue + 1, cp.Failure, 0, 0},
		{"largest int32 square", cp.MaxValue * cp.MaxValue, cp.Suspend, -cp.MaxValue, cp.MaxValue},
		{"wide interval", 46340 * 46340, cp.Suspend, -46340, 46340},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := cp.NewStore()
			x := mustVar(t, s, "x", cp.MinValue, cp.MaxValue)
			c, err := NewMulCteRes(x, x, tt.c)
			require.NoError(t, err)
			require.Equal(t, tt.outcome, s.Post(c))
			if tt.outcome != cp.Failure {
				assert.Equal(t, tt.min, x.Min())
				assert.Equal(t, tt.max, x.Max())
			}
		})
	}
}

func TestAtLeastNValueResumesAfterUndo(t *testing.T) {
	s := cp.NewStore()
	xs := []*cp.IntVar{mustVar(t, s, "x1", 1, 3), mustVar(t, s, "x2", 1, 3), mustVar(t, s, "x3", 1, 3)}
	n := mustVar(t, s, "n", 3, 3)
	c, err := NewAtLeastNValueFWC(xs, n)
	require.NoError(t, err)
	require.Equal(t, cp.Suspend, s.Post(c))

	require.NotEqual(t, cp.Failure, decide(s, func() cp.Outcome { return xs[0].Assign(1) }))
	assert.Equal(t, []int{2, 3}, xs[1].Values())
	assert.Equal(t, []int{2, 3}, xs[2].Values())
	s.UndoTo(0)
	assert.Equal(t, []int{1, 2, 3}, xs[1].Values())

	require.NotEqual(t, cp.Failure, decide(s, func() cp.Outcome { return xs[1].Assign(1) }))
	assert.Equal(t, []int{2, 3}, xs[0].Values())
	require.NotEqual(t, cp.Failure, decide(s, func() cp.Outcome { return xs[0].Assign(2) }))
	require.True(t, xs[2].IsBound())
	assert.Equal(t, 3, xs[2].Value())
	assert.False(t, c.IsActive())
}

func TestAtLeastNValueAllocatesFlagsUpFront(t *testing.T) {
	s := cp.NewStore()
	xs := []*cp.IntVar{mustVar(t, s, "x1", 0, 4), mustVar(t, s, "x2", 2, 7), mustVar(t, s, "x3", -1, 1)}
	n := mustVar(t, s, "n", 1, 3)
	c, err := NewAtLeastNValueFWC(xs, n)
	require.NoError(t, err)
	require.Equal(t, cp.Suspend, s.Post(c))
	cells := s.Trail().CellCount()

	for _, v := range []int{-1, 0, 1} {
		require.NotEqual(t, cp.Failure, decide(s, func() cp.Outcome { return xs[2].Assign(v) }))
		require.NotEqual(t, cp.Failure, decide(s, func() cp.Outcome { return xs[0].Assign(4) }))
		require.NotEqual(t, cp.Failure, decide(s, func() cp.Outcome { return xs[1].Assign(7) }))
		s.UndoTo(0)
	}
	assert.Equal(t, cells, s.Trail().CellCount(), "search allocates no new cells")

	wide := mustVar(t, s, "wide", 0, 1<<20)
	_, err = NewAtLeastNValueFWC([]*cp.IntVar{xs[0], wide}, n)
	assert.ErrorIs(t, err, cp.ErrInvalidArgument)
}

func TestAtLeastNValueBoundsN(t *testing.T) {
	s := cp.NewStore()
	a, err := s.Constant(2)
	require.NoError(t, err)
	xs := []*cp.IntVar{a, mustVar(t, s, "x2", 2, 2), mustVar(t, s, "x3", 0, 9), mustVar(t, s, "x4", 0, 9)}
	n := mustVar(t, s, "n", 0, 10)
	c, err := NewAtLeastNValueFWC(xs, n)
	require.NoError(t, err)
	require.Equal(t, cp.Suspend, s.Post(c))
	assert.Equal(t, 1, n.Min())
	assert.Equal(t, 3, n.Max())

	require.Equal(t, cp.Failure, decide(s, func() cp.Outcome { return n.UpdateMax(0) }))
	s.UndoTo(0)
	require.NotEqual(t, cp.Failure, decide(s, func() cp.Outcome { return n.UpdateMin(3) }))
	assert.False(t, xs[2].HasValue(2))
	assert.False(t, xs[3].HasValue(2))
}

func TestBinaryKnapsack(t *testing.T) {
	t.Run("weak layer bounds the load", func(t *testing.T) {
		s := cp.NewStore()
		b := mustBools(s, 3)
		load := mustVar(t, s, "load", -5, 20)
		c, err := NewBinaryKnapsack(b, []int{5, 3, 2}, load)
		require.NoError(t, err)
		assert.Equal(t, cp.Success, s.PostWithStrength(c, cp.Weak))
		assert.Equal(t, 0, load.Min())
		assert.Equal(t, 10, load.Max())
	})

	t.Run("weak layer misses the subset-sum failure", func(t *testing.T) {
		s := cp.NewStore()
		b := mustBools(s, 3)
		load := mustVar(t, s, "load", 6, 9)
		c, err := NewBinaryKnapsack(b, []int{5, 5, 5}, load)
		require.NoError(t, err)
		assert.NotEqual(t, cp.Failure, s.PostWithStrength(c, cp.Weak))
		for _, x := range b {
			assert.False(t, x.IsBound())
		}
	})

	t.Run("weak layer excludes the heavy item", func(t *testing.T) {
		s := cp.NewStore()
		b := mustBools(s, 3)
		load := mustVar(t, s, "load", 4, 4)
		c, err := NewBinaryKnapsack(b, []int{5, 3, 2}, load)
		require.NoError(t, err)
		// Without item 0 both others are needed and 3+2 overshoots.
		assert.Equal(t, cp.Failure, s.PostWithStrength(c, cp.Weak))
		assert.True(t, b[0].IsFalse())
	})

	t.Run("strong layer detects that 4 is unreachable", func(t *testing.T) {
		s := cp.NewStore()
		b := mustBools(s, 3)
		load := mustVar(t, s, "load", 4, 4)
		c, err := NewBinaryKnapsack(b, []int{5, 3, 2}, load)
		require.NoError(t, err)
		assert.Equal(t, cp.Failure, s.PostWithStrength(c, cp.Strong))
		assert.True(t, s.IsFailed())
		assert.True(t, b[0].IsFalse())
	})

	t.Run("strong layer packs the completion", func(t *testing.T) {
		s := cp.NewStore()
		b := mustBools(s, 3)
		load := mustVar(t, s, "load", 4, 4)
		c, err := NewBinaryKnapsack(b, []int{5, 3, 1}, load)
		require.NoError(t, err)
		require.NotEqual(t, cp.Failure, s.PostWithStrength(c, cp.Strong))
		assert.True(t, b[0].IsFalse())
		assert.True(t, b[1].IsTrue())
		assert.True(t, b[2].IsTrue())
	})

	t.Run("load moves to reachable sums", func(t *testing.T) {
		s := cp.NewStore()
		b := mustBools(s, 3)
		load := mustVar(t, s, "load", 6, 12)
		c, err := NewBinaryKnapsack(b, []int{5, 5, 5}, load)
		require.NoError(t, err)
		require.NotEqual(t, cp.Failure, s.PostWithStrength(c, cp.Strong))
		assert.Equal(t, 10, load.Min())
		assert.Equal(t, 10, load.Max())
		for _, x := range b {
			assert.False(t, x.IsBound())
		}
	})

	t.Run("no reachable sum in range", func(t *testing.T) {
		s := cp.NewStore()
		b := mustBools(s, 3)
		load := mustVar(t, s, "load", 6, 9)
		c, err := NewBinaryKnapsack(b, []int{5, 5, 5}, load)
		require.NoError(t, err)
		assert.Equal(t, cp.Failure, s.PostWithStrength(c, cp.Strong))
	})

	t.Run("variables sorted by decreasing weight", func(t *testing.T) {
		s := cp.NewStore()
		b := []*cp.IntVar{s.NewBoolVarWithName("light"), s.NewBoolVarWithName("heavy"), s.NewBoolVarWithName("mid")}
		load := mustVar(t, s, "load", 0, 10)
		c, err := NewBinaryKnapsack(b, []int{1, 7, 2}, load)
		require.NoError(t, err)
		assert.Equal(t, []*cp.IntVar{b[1], b[2], b[0], load}, c.Variables())
	})
}

func TestNoSumPossible(t *testing.T) {
	s := cp.NewStore()
	b := mustBools(s, 5)
	load := mustVar(t, s, "load", 0, 20)
	c, err := NewBinaryKnapsack(b, []int{7, 5, 4, 3, 1}, load)
	require.NoError(t, err)
	require.Equal(t, cp.Suspend, s.PostWithStrength(c, cp.Strong))

	tests := []struct {
		name        string
		alpha, beta int
		skip        int
		want        bool
		below, over int
	}{
		{name: "alpha not positive", alpha: 0, beta: 5, skip: -1},
		{name: "beta reaches total", alpha: 3, beta: 20, skip: -1},
		{name: "reachable", alpha: 8, beta: 8, skip: -1},
		{name: "gap at 2", alpha: 2, beta: 2, skip: -1, want: true, below: 1, over: 3},
		{name: "reachable without 7", alpha: 8, beta: 8, skip: 0},
		{name: "gap at 2 without 3", alpha: 2, beta: 2, skip: 3, want: true, below: 1, over: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.noSumPossible(tt.alpha, tt.beta, tt.skip)
			assert.Equal(t, tt.want, got)
			if tt.want {
				assert.Equal(t, tt.below, c.alpha)
				assert.Equal(t, tt.over, c.beta)
			}
		})
	}
}

func TestBinaryKnapsackWithCardinality(t *testing.T) {
	s := cp.NewStore()
	b := mustBools(s, 4)
	load := mustVar(t, s, "load", 0, 20)
	c, err := NewBinaryKnapsackWithCardinality(b, []int{5, 4, 3, 2}, load, 2)
	require.NoError(t, err)
	require.Equal(t, cp.Suspend, s.Post(c))
	assert.Equal(t, 5, load.Min())
	assert.Equal(t, 9, load.Max())

	// Excluded items do not count as packed.
	require.NotEqual(t, cp.Failure, decide(s, func() cp.Outcome { return b[0].Assign(0) }))
	assert.Equal(t, 7, load.Max())
	require.NotEqual(t, cp.Failure, decide(s, func() cp.Outcome { return b[1].Assign(0) }))
	assert.True(t, b[2].IsTrue())
	assert.True(t, b[3].IsTrue())
	assert.Equal(t, 5, load.Min())
	s.UndoTo(0)

	require.NotEqual(t, cp.Failure, decide(s, func() cp.Outcome { return b[1].Assign(1) }))
	require.NotEqual(t, cp.Failure, decide(s, func() cp.Outcome { return b[3].Assign(1) }))
	assert.True(t, b[0].IsFalse())
	assert.True(t, b[2].IsFalse())
	assert.Equal(t, 6, load.Min())
	assert.Equal(t, 6, load.Max())
}

func TestInvalidArguments(t *testing.T) {
	s := cp.NewStore()
	other := cp.NewStore()
	x := mustVar(t, s, "x", 0, 5)
	y := mustVar(t, s, "y", 0, 5)
	foreign := mustVar(t, other, "f", 0, 5)
	b := s.NewBoolVarWithName("b")
	bs := mustBools(s, 3)

	tests := []struct {
		name string
		err  func() error
	}{
		{"nil variable", func() error { _, err := NewAbs(nil, y); return err }},
		{"foreign store", func() error { _, err := NewGrEq(x, foreign); return err }},
		{"non boolean", func() error { _, err := NewGrEqCteReif(x, 2, y); return err }},
		{"non boolean diff", func() error { _, err := NewDiffReif(x, 2, y); return err }},
		{"empty maximum", func() error { _, err := NewMaximum(nil, y); return err }},
		{"empty nvalue", func() error { _, err := NewAtLeastNValueFWC(nil, y); return err }},
		{"weights mismatch", func() error { _, err := NewLightBinaryKnapsack(bs, []int{1, 2}, y); return err }},
		{"negative weight", func() error { _, err := NewBinaryKnapsack(bs, []int{1, -2, 3}, y); return err }},
		{"non boolean item", func() error { _, err := NewBinaryKnapsack([]*cp.IntVar{b, x}, []int{1, 2}, y); return err }},
		{"cardinality zero", func() error { _, err := NewBinaryKnapsack(bs, []int{1, 2, 3}, y, WithCardinality(0)); return err }},
		{"cardinality too large", func() error {
			_, err := NewBinaryKnapsack(bs, []int{1, 2, 3}, y, WithCardinality(4))
			return err
		}},
		{"negative cardinality", func() error {
			_, err := NewBinaryKnapsackWithCardinality(bs, []int{1, 2, 3}, y, -1)
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err(), cp.ErrInvalidArgument)
		})
	}
}

func TestStringers(t *testing.T) {
	s := cp.NewStore()
	x := mustVar(t, s, "x", 0, 5)
	y := mustVar(t, s, "y", 0, 5)
	b := s.NewBoolVarWithName("b")

	abs, err := NewAbs(x, y)
	require.NoError(t, err)
	ge, err := NewGrEq(x, y)
	require.NoError(t, err)
	reif, err := NewGrEqCteReif(x, 3, b)
	require.NoError(t, err)
	mx, err := NewMaximum([]*cp.IntVar{x, y}, b)
	require.NoError(t, err)
	mul, err := NewMulCteRes(x, y, 6)
	require.NoError(t, err)

	assert.Equal(t, "Abs(x, y)", abs.String())
	assert.Equal(t, "x >= y", ge.String())
	assert.Equal(t, "b <=> x >= 3", reif.String())
	assert.Equal(t, "b = max(x, y)", mx.String())
	assert.Equal(t, "x * y = 6", mul.String())
}
