package constraints

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"

	"github.com/gitrdm/gokanprop/pkg/cp"
	"github.com/gitrdm/gokanprop/pkg/intmath"
	"github.com/gitrdm/gokanprop/pkg/reversible"
)

// validateKnapsack checks the common arguments of the knapsack constraints.
func validateKnapsack(op string, b []*cp.IntVar, weights []int, load *cp.IntVar) error {
	if len(b) == 0 {
		return errors.Wrapf(cp.ErrInvalidArgument, "%s: no items", op)
	}
	if len(b) != len(weights) {
		return errors.Wrapf(cp.ErrInvalidArgument, "%s: %d items but %d weights", op, len(b), len(weights))
	}
	if err := checkVars(op, append([]*cp.IntVar{load}, b...)...); err != nil {
		return err
	}
	for i, x := range b {
		if err := checkBool(op, x); err != nil {
			return err
		}
		if weights[i] < 0 {
			return errors.Wrapf(cp.ErrInvalidArgument, "%s: weight %d is negative", op, weights[i])
		}
	}
	return nil
}

// sortByWeight returns copies of b and weights ordered by decreasing weight.
func sortByWeight(b []*cp.IntVar, weights []int) ([]*cp.IntVar, []int) {
	perm := make([]int, len(weights))
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(i, j int) bool { return weights[perm[i]] > weights[perm[j]] })
	xs := make([]*cp.IntVar, len(b))
	ws := make([]int, len(weights))
	for i, p := range perm {
		xs[i] = b[p]
		ws[i] = weights[p]
	}
	return xs, ws
}

func knapsackVariables(x []*cp.IntVar, load *cp.IntVar) []*cp.IntVar {
	return append(append([]*cp.IntVar(nil), x...), load)
}

// LightBinaryKnapsack enforces load = sum(w[i] * x[i]) with sum bounds only.
//
// With required the weight of the items packed for sure and possible the
// weight of the items not excluded:
//   - load in [required, possible]
//   - an item heavier than load.max - required is excluded
//   - an item heavier than possible - load.min is packed
type LightBinaryKnapsack struct {
	cp.Base
	x    []*cp.IntVar
	w    []int
	load *cp.IntVar

	required reversible.Int
	possible reversible.Int
}

// NewLightBinaryKnapsack creates the constraint load = sum(w[i] * b[i]) for
// 0/1 variables b and non-negative weights.
func NewLightBinaryKnapsack(b []*cp.IntVar, weights []int, load *cp.IntVar) (*LightBinaryKnapsack, error) {
	if err := validateKnapsack("NewLightBinaryKnapsack", b, weights, load); err != nil {
		return nil, err
	}
	x, w := sortByWeight(b, weights)
	return newLightBinaryKnapsack(x, w, load), nil
}

func newLightBinaryKnapsack(x []*cp.IntVar, w []int, load *cp.IntVar) *LightBinaryKnapsack {
	s := load.Store()
	return &LightBinaryKnapsack{
		Base:     cp.NewBase(s, "LightBinaryKnapsack"),
		x:        x,
		w:        w,
		load:     load,
		required: s.NewReversibleInt(0),
		possible: s.NewReversibleInt(0),
	}
}

// Variables returns the items followed by load.
func (c *LightBinaryKnapsack) Variables() []*cp.IntVar { return knapsackVariables(c.x, c.load) }

// Setup accounts for the items already bound, subscribes and filters.
func (c *LightBinaryKnapsack) Setup(cp.Strength) cp.Outcome {
	required, possible := 0, 0
	for i, x := range c.x {
		switch {
		case x.IsTrue():
			required += c.w[i]
			possible += c.w[i]
		case x.IsFalse():
		default:
			possible += c.w[i]
			x.CallValBindIdxWhenBind(c, i)
			x.CallPropagateWhenBind(c)
		}
	}
	c.required.SetValue(required)
	c.possible.SetValue(possible)
	if !c.load.IsBound() {
		c.load.CallPropagateWhenBoundsChange(c)
	}
	return c.Propagate()
}

// ValBindIdx accounts for item idx being packed or excluded.
func (c *LightBinaryKnapsack) ValBindIdx(x *cp.IntVar, idx int) cp.Outcome {
	var out cp.Outcome
	if x.IsTrue() {
		out = c.load.UpdateMin(c.required.Add(c.w[idx]))
	} else {
		out = c.load.UpdateMax(c.possible.Add(-c.w[idx]))
	}
	if out == cp.Failure {
		return cp.Failure
	}
	return cp.Suspend
}

// Propagate filters load and the unbound items.
func (c *LightBinaryKnapsack) Propagate() cp.Outcome {
	required, possible := c.required.Value(), c.possible.Value()
	if c.load.UpdateMin(required) == cp.Failure {
		return cp.Failure
	}
	if c.load.UpdateMax(possible) == cp.Failure {
		return cp.Failure
	}
	leftover := c.load.Max() - required
	slack := possible - c.load.Min()
	for i, x := range c.x {
		if x.IsBound() {
			continue
		}
		switch {
		case c.w[i] > leftover:
			if x.Assign(0) == cp.Failure {
				return cp.Failure
			}
		case c.w[i] > slack:
			if x.Assign(1) == cp.Failure {
				return cp.Failure
			}
		}
	}
	if required == possible {
		return cp.Success
	}
	return cp.Suspend
}

func (c *LightBinaryKnapsack) String() string {
	return fmt.Sprintf("LightBinaryKnapsack(%d items, %s)", len(c.x), c.load.Name())
}

// KnapsackOption configures a BinaryKnapsack.
type KnapsackOption func(*BinaryKnapsack) error

// WithCardinality additionally requires exactly n items to be packed.
func WithCardinality(n int) KnapsackOption {
	return func(c *BinaryKnapsack) error {
		if n <= 0 || n > len(c.x) {
			return errors.Wrapf(cp.ErrInvalidArgument, "WithCardinality: n = %d outside [1, %d]", n, len(c.x))
		}
		c.n = n
		return nil
	}
}

// BinaryKnapsack enforces load = sum(w[i] * x[i]) over 0/1 variables.
//
// Setup always posts a LightBinaryKnapsack, plus a
// BinaryKnapsackWithCardinality when built WithCardinality. With Weak
// strength that is all, and the constraint itself is entailed. Otherwise it
// adds Trick's subset-sum reasoning on the unbound items:
//
//   - if no subset of the candidate items sums into [load.min - required,
//     load.max - required], the store fails
//   - an item is excluded (packed) if no completion reaches the target with
//     it (without it)
//   - load.min and load.max are moved to the closest reachable sums
//
// Items are sorted by decreasing weight once at construction.
//
// Example:
//
//	b := []*cp.IntVar{s.NewBoolVar(), s.NewBoolVar(), s.NewBoolVar()}
//	load, _ := s.NewIntVar(5, 5)
//	c, _ := constraints.NewBinaryKnapsack(b, []int{5, 3, 2}, load)
//	s.PostWithStrength(c, cp.Strong)
type BinaryKnapsack struct {
	cp.Base
	x    []*cp.IntVar
	w    []int
	load *cp.IntVar
	n    int

	candidate []reversible.Bool // item not bound yet, as seen by this constraint
	required  reversible.Int    // weight of the items packed for sure
	possible  reversible.Int    // weight of the items packed or candidate
	nbCand    reversible.Int    // number of candidates

	// Reachable sums around the target found by the last noSumPossible call.
	alpha, beta int
	scratch     []int
}

// NewBinaryKnapsack creates the constraint load = sum(w[i] * b[i]) for 0/1
// variables b and non-negative weights.
func NewBinaryKnapsack(b []*cp.IntVar, weights []int, load *cp.IntVar, opts ...KnapsackOption) (*BinaryKnapsack, error) {
	if err := validateKnapsack("NewBinaryKnapsack", b, weights, load); err != nil {
		return nil, err
	}
	x, w := sortByWeight(b, weights)
	c := &BinaryKnapsack{
		Base: cp.NewBase(load.Store(), "BinaryKnapsack"),
		x:    x,
		w:    w,
		load: load,
	}
	c.SetPriorityL2(cp.MaxPriorityL2 - 2)
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Variables returns the items, sorted by decreasing weight, followed by
// load.
func (c *BinaryKnapsack) Variables() []*cp.IntVar { return knapsackVariables(c.x, c.load) }

// Setup posts the sum-bound layers and, unless l is Weak, initializes the
// subset-sum layer.
func (c *BinaryKnapsack) Setup(l cp.Strength) cp.Outcome {
	s := c.Store()
	if c.n > 0 {
		if s.Post(newBinaryKnapsackWithCardinality(c.x, c.w, c.load, c.n)) == cp.Failure {
			return cp.Failure
		}
	}
	if s.Post(newLightBinaryKnapsack(c.x, c.w, c.load)) == cp.Failure {
		return cp.Failure
	}
	if l == cp.Weak {
		return cp.Success
	}

	total := 0
	c.candidate = make([]reversible.Bool, len(c.x))
	for i, w := range c.w {
		total += w
		c.candidate[i] = s.NewReversibleBool(true)
	}
	c.required = s.NewReversibleInt(0)
	c.possible = s.NewReversibleInt(total)
	c.nbCand = s.NewReversibleInt(len(c.x))
	c.scratch = make([]int, len(c.x))

	for i, x := range c.x {
		switch {
		case x.IsTrue():
			if c.bind(i) == cp.Failure {
				return cp.Failure
			}
		case x.IsFalse():
			if c.remove(i) == cp.Failure {
				return cp.Failure
			}
		default:
			x.CallValBindIdxWhenBind(c, i)
			x.CallPropagateWhenDomainChanges(c)
		}
	}
	if !c.load.IsBound() {
		c.load.CallPropagateWhenBoundsChange(c)
	}
	if c.Propagate() == cp.Failure {
		return cp.Failure
	}
	return cp.Suspend
}

// ValBindIdx accounts for item idx being packed or excluded.
func (c *BinaryKnapsack) ValBindIdx(x *cp.IntVar, idx int) cp.Outcome {
	if x.IsTrue() {
		return c.bind(idx)
	}
	return c.remove(idx)
}

func (c *BinaryKnapsack) bind(i int) cp.Outcome {
	required := c.required.Value() + c.w[i]
	if c.load.UpdateMin(required) == cp.Failure {
		return cp.Failure
	}
	c.required.SetValue(required)
	c.candidate[i].SetValue(false)
	c.nbCand.Decr()
	return cp.Suspend
}

func (c *BinaryKnapsack) remove(i int) cp.Outcome {
	possible := c.possible.Add(-c.w[i])
	if c.load.UpdateMax(possible) == cp.Failure {
		return cp.Failure
	}
	c.candidate[i].SetValue(false)
	c.nbCand.Decr()
	return cp.Suspend
}

// Propagate runs the subset-sum filtering.
func (c *BinaryKnapsack) Propagate() cp.Outcome {
	required := c.required.Value()
	leftover := c.load.Max() - required
	slack := c.possible.Value() - c.load.Min()
	for k := range c.x {
		if !c.candidate[k].Value() {
			continue
		}
		// One forced item at a time: the domain event brings us back.
		if c.w[k] > leftover {
			if c.x[k].RemoveValue(1) == cp.Failure {
				return cp.Failure
			}
			return cp.Suspend
		}
		if c.w[k] > slack {
			if c.x[k].Assign(1) == cp.Failure {
				return cp.Failure
			}
			return cp.Suspend
		}
	}

	if c.nbCand.Value() <= 2 {
		return cp.Suspend
	}
	lmin, lmax := c.load.Min(), c.load.Max()
	if c.noSumPossible(lmin-required, lmax-required, -1) {
		return cp.Failure
	}

	last := -1
	for k := range c.x {
		if !c.candidate[k].Value() || c.w[k] == last {
			continue
		}
		last = c.w[k]
		wk := c.w[k]
		alpha := intmath.Max(lmin, required+wk) - required - wk
		if c.noSumPossible(alpha, lmax-required-wk, k) {
			if c.x[k].RemoveValue(1) == cp.Failure {
				return cp.Failure
			}
			return cp.Suspend
		}
	}
	last = -1
	for k := range c.x {
		if !c.candidate[k].Value() || c.w[k] == last {
			continue
		}
		last = c.w[k]
		beta := intmath.Min(lmax, c.possible.Value()-c.w[k]) - required
		if c.noSumPossible(lmin-required, beta, k) {
			if c.x[k].Assign(1) == cp.Failure {
				return cp.Failure
			}
		}
	}

	if c.noSumPossible(lmin-required, lmin-required, -1) {
		if c.load.UpdateMin(required+c.beta) == cp.Failure {
			return cp.Failure
		}
	}
	if c.noSumPossible(lmax-required, lmax-required, -1) {
		if c.load.UpdateMax(required+c.alpha) == cp.Failure {
			return cp.Failure
		}
	}
	return cp.Suspend
}

// noSumPossible reports whether no subset of the candidate items other than
// skip has a weight in [alpha, beta] (alpha <= beta). When it returns true,
// c.alpha and c.beta hold the largest reachable sum below alpha and the
// smallest reachable sum above beta.
//
// The test is Trick's: X holds the candidate weights in decreasing order;
// for k = 1, 2, ... it compares the sum of the k largest items (Sa) and the
// smallest sums reaching alpha with k items (Sb, built from the Sc tail).
func (c *BinaryKnapsack) noSumPossible(alpha, beta, skip int) bool {
	if alpha <= 0 || beta >= c.possible.Value() {
		return false
	}
	X := c.scratch[:0]
	sumX := 0
	for i, w := range c.w {
		if i != skip && c.candidate[i].Value() {
			X = append(X, w)
			sumX += w
		}
	}
	if beta >= sumX {
		return false
	}
	n := len(X)
	sa, sb, sc := 0, 0, 0
	k, k2 := 0, 0
	for sc+X[n-k2-1] < alpha {
		sc += X[n-k2-1]
		k2++
	}
	sb = X[n-k2-1]
	for sa < alpha && sb <= beta {
		k++
		sa += X[k-1]
		if sa < alpha {
			k2--
			sb += X[n-k2-1]
			sc -= X[n-k2-1]
			for sa+sc >= alpha {
				k2--
				sc -= X[n-k2-1]
				sb += X[n-k2-1] - X[n-k2-k-2]
			}
		}
	}
	c.alpha = sa + sc
	c.beta = sb
	return sa < alpha
}

func (c *BinaryKnapsack) String() string {
	return fmt.Sprintf("BinaryKnapsack(%d items, %s)", len(c.x), c.load.Name())
}

// BinaryKnapsackWithCardinality enforces load = sum(w[i] * x[i]) together
// with exactly n packed items.
//
// The load is bounded by the lightest and the heaviest ways of completing
// the packed items with unbound ones up to n items. Once n items are packed
// the others are excluded, and once only n items remain possible they are
// all packed.
type BinaryKnapsackWithCardinality struct {
	cp.Base
	x    []*cp.IntVar
	w    []int
	load *cp.IntVar
	n    int

	packed  reversible.Int // weight of the packed items
	nPacked reversible.Int
}

// NewBinaryKnapsackWithCardinality creates the constraint
// load = sum(w[i] * b[i]) with sum(b[i]) = n.
func NewBinaryKnapsackWithCardinality(b []*cp.IntVar, weights []int, load *cp.IntVar, n int) (*BinaryKnapsackWithCardinality, error) {
	if err := validateKnapsack("NewBinaryKnapsackWithCardinality", b, weights, load); err != nil {
		return nil, err
	}
	if n < 0 || n > len(b) {
		return nil, errors.Wrapf(cp.ErrInvalidArgument, "NewBinaryKnapsackWithCardinality: n = %d outside [0, %d]", n, len(b))
	}
	x, w := sortByWeight(b, weights)
	return newBinaryKnapsackWithCardinality(x, w, load, n), nil
}

func newBinaryKnapsackWithCardinality(x []*cp.IntVar, w []int, load *cp.IntVar, n int) *BinaryKnapsackWithCardinality {
	s := load.Store()
	return &BinaryKnapsackWithCardinality{
		Base:    cp.NewBase(s, "BinaryKnapsackWithCardinality"),
		x:       x,
		w:       w,
		load:    load,
		n:       n,
		packed:  s.NewReversibleInt(0),
		nPacked: s.NewReversibleInt(0),
	}
}

// Variables returns the items followed by load.
func (c *BinaryKnapsackWithCardinality) Variables() []*cp.IntVar {
	return knapsackVariables(c.x, c.load)
}

// Setup counts the items already packed, subscribes and filters.
func (c *BinaryKnapsackWithCardinality) Setup(cp.Strength) cp.Outcome {
	for i, x := range c.x {
		switch {
		case x.IsTrue():
			c.packed.Add(c.w[i])
			c.nPacked.Incr()
		case !x.IsBound():
			x.CallValBindIdxWhenBind(c, i)
			x.CallPropagateWhenBind(c)
		}
	}
	return c.Propagate()
}

// ValBindIdx accounts for item idx being packed.
func (c *BinaryKnapsackWithCardinality) ValBindIdx(x *cp.IntVar, idx int) cp.Outcome {
	if x.IsTrue() {
		c.nPacked.Incr()
		c.packed.Add(c.w[idx])
	}
	return cp.Suspend
}

// Propagate bounds the load and enforces the item count.
func (c *BinaryKnapsackWithCardinality) Propagate() cp.Outcome {
	nPacked := c.nPacked.Value()
	free := 0
	for _, x := range c.x {
		if !x.IsBound() {
			free++
		}
	}
	if nPacked > c.n || nPacked+free < c.n {
		return cp.Failure
	}

	// Items are sorted by decreasing weight: the heaviest completion bounds
	// the load from above, the lightest from below.
	curN, curW := nPacked, c.packed.Value()
	for i := 0; i < len(c.x) && curN < c.n; i++ {
		if !c.x[i].IsBound() {
			curW += c.w[i]
			curN++
		}
	}
	if c.load.UpdateMax(curW) == cp.Failure {
		return cp.Failure
	}
	curN, curW = nPacked, c.packed.Value()
	for i := len(c.x) - 1; i >= 0 && curN < c.n; i-- {
		if !c.x[i].IsBound() {
			curW += c.w[i]
			curN++
		}
	}
	if c.load.UpdateMin(curW) == cp.Failure {
		return cp.Failure
	}

	switch {
	case free == 0:
		return cp.Success
	case nPacked == c.n:
		return c.assignFree(0)
	case nPacked+free == c.n:
		return c.assignFree(1)
	}
	return cp.Suspend
}

func (c *BinaryKnapsackWithCardinality) assignFree(v int) cp.Outcome {
	for _, x := range c.x {
		if !x.IsBound() && x.Assign(v) == cp.Failure {
			return cp.Failure
		}
	}
	return cp.Suspend
}

func (c *BinaryKnapsackWithCardinality) String() string {
	return fmt.Sprintf("BinaryKnapsackWithCardinality(%d items, %s, n=%d)", len(c.x), c.load.Name(), c.n)
}
