package cp

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gitrdm/gokanprop/pkg/reversible"
)

// IntVar is a finite-domain integer variable.
//
// The domain state (min, max, size) lives in reversible cells of the owning
// store's trail, so every mutation is undone when the search backtracks.
//
// Features:
//   - Sparse mode: when the initial range is at most Config.SparseLimit wide,
//     the domain is a reversible sparse set and supports interior holes.
//   - Interval mode: wider domains only track their bounds. Removing an
//     interior value is ignored, which is sound but weaker.
//   - Every mutation returns an Outcome and never empties the domain: a
//     change that would wipe it out is rejected with Failure.
//
// Variables are created through a Store and shared by pointer between all
// the constraints that mention them. An IntVar is not safe for concurrent use.
type IntVar struct {
	store *Store
	id    int
	name  string

	min  reversible.Int
	max  reversible.Int
	size reversible.Int

	// Sparse set: values[:size] are the live values. pos[v-offset] is the
	// index of v in values. Both are nil in interval mode.
	values []int
	pos    []int
	offset int

	l2Bind   subList
	l2Bounds subList
	l2Domain subList
	l1Bind   subList
	l1Bounds subList
	l1Remove subList
}

func newIntVar(s *Store, name string, min, max int, sparse bool) *IntVar {
	t := s.trail
	x := &IntVar{
		store:    s,
		id:       len(s.vars),
		name:     name,
		min:      reversible.NewInt(t, min),
		max:      reversible.NewInt(t, max),
		size:     reversible.NewInt(t, max-min+1),
		l2Bind:   newSubList(t),
		l2Bounds: newSubList(t),
		l2Domain: newSubList(t),
		l1Bind:   newSubList(t),
		l1Bounds: newSubList(t),
		l1Remove: newSubList(t),
	}
	if x.name == "" {
		x.name = fmt.Sprintf("x%d", x.id)
	}
	if sparse {
		n := max - min + 1
		x.values = make([]int, n)
		x.pos = make([]int, n)
		x.offset = min
		for i := 0; i < n; i++ {
			x.values[i] = min + i
			x.pos[i] = i
		}
	}
	s.vars = append(s.vars, x)
	return x
}

// ID returns the index of the variable in its store.
func (x *IntVar) ID() int { return x.id }

// Name returns the variable name.
func (x *IntVar) Name() string { return x.name }

// Store returns the owning store.
func (x *IntVar) Store() *Store { return x.store }

// IsSparse reports whether the domain can hold interior holes.
func (x *IntVar) IsSparse() bool { return x.values != nil }

// Min returns the smallest value in the domain.
func (x *IntVar) Min() int { return x.min.Value() }

// Max returns the largest value in the domain.
func (x *IntVar) Max() int { return x.max.Value() }

// Size returns the number of values in the domain.
func (x *IntVar) Size() int { return x.size.Value() }

// IsBound reports whether the domain is a singleton.
func (x *IntVar) IsBound() bool { return x.size.Value() == 1 }

// Value returns the value of a bound variable. It panics if x is not bound.
func (x *IntVar) Value() int {
	if !x.IsBound() {
		panic(violation("Value called on unbound variable %s", x))
	}
	return x.min.Value()
}

// IsTrue reports whether x is bound to a non-zero value.
func (x *IntVar) IsTrue() bool { return x.IsBound() && x.min.Value() != 0 }

// IsFalse reports whether x is bound to zero.
func (x *IntVar) IsFalse() bool { return x.IsBound() && x.min.Value() == 0 }

// HasValue reports whether v is in the domain.
func (x *IntVar) HasValue(v int) bool {
	if v < x.min.Value() || v > x.max.Value() {
		return false
	}
	if x.values == nil {
		return true
	}
	return x.pos[v-x.offset] < x.size.Value()
}

// ValueAfter returns the smallest domain value greater than v, or v itself
// if there is none.
func (x *IntVar) ValueAfter(v int) int {
	min, max := x.min.Value(), x.max.Value()
	if v >= max {
		return v
	}
	if v < min {
		return min
	}
	u := v + 1
	for !x.HasValue(u) {
		u++
	}
	return u
}

// ValueBefore returns the largest domain value smaller than v, or v itself
// if there is none.
func (x *IntVar) ValueBefore(v int) int {
	min, max := x.min.Value(), x.max.Value()
	if v <= min {
		return v
	}
	if v > max {
		return max
	}
	u := v - 1
	for !x.HasValue(u) {
		u--
	}
	return u
}

// Values returns the domain in increasing order. For interval variables the
// result has Size elements, so callers should check Size first.
func (x *IntVar) Values() []int {
	if x.values == nil {
		out := make([]int, 0, x.Size())
		for v := x.min.Value(); v <= x.max.Value(); v++ {
			out = append(out, v)
		}
		return out
	}
	out := make([]int, x.size.Value())
	copy(out, x.values[:x.size.Value()])
	sort.Ints(out)
	return out
}

// String formats the variable as name{values} with runs collapsed, e.g.
// x{1..3,7}.
func (x *IntVar) String() string {
	var sb strings.Builder
	sb.WriteString(x.name)
	if x.IsBound() {
		fmt.Fprintf(&sb, "=%d", x.min.Value())
		return sb.String()
	}
	if x.values == nil {
		fmt.Fprintf(&sb, "[%d..%d]", x.min.Value(), x.max.Value())
		return sb.String()
	}
	sb.WriteByte('{')
	vals := x.Values()
	for i := 0; i < len(vals); {
		j := i
		for j+1 < len(vals) && vals[j+1] == vals[j]+1 {
			j++
		}
		if i > 0 {
			sb.WriteByte(',')
		}
		switch {
		case j == i:
			fmt.Fprintf(&sb, "%d", vals[i])
		case j == i+1:
			fmt.Fprintf(&sb, "%d,%d", vals[i], vals[j])
		default:
			fmt.Fprintf(&sb, "%d..%d", vals[i], vals[j])
		}
		i = j + 1
	}
	sb.WriteByte('}')
	return sb.String()
}

// UpdateMin removes every value smaller than v.
func (x *IntVar) UpdateMin(v int) Outcome {
	min, max := x.min.Value(), x.max.Value()
	if v <= min {
		return Suspend
	}
	if v > max {
		return Failure
	}
	var removed []int
	if x.values == nil {
		x.min.SetValue(v)
		x.size.SetValue(max - v + 1)
	} else {
		collect := x.l1Remove.len() > 0
		size := x.size.Value()
		if v-min <= size {
			for u := min; u < v; u++ {
				if x.pos[u-x.offset] < size {
					size = x.swapOut(u, size)
					if collect {
						removed = append(removed, u)
					}
				}
			}
		} else {
			for i := size - 1; i >= 0; i-- {
				if u := x.values[i]; u < v {
					size = x.swapOut(u, size)
					if collect {
						removed = append(removed, u)
					}
				}
			}
		}
		x.size.SetValue(size)
		for x.pos[v-x.offset] >= size {
			v++
		}
		x.min.SetValue(v)
	}
	return x.notify(removed, true)
}

// UpdateMax removes every value greater than v.
func (x *IntVar) UpdateMax(v int) Outcome {
	min, max := x.min.Value(), x.max.Value()
	if v >= max {
		return Suspend
	}
	if v < min {
		return Failure
	}
	var removed []int
	if x.values == nil {
		x.max.SetValue(v)
		x.size.SetValue(v - min + 1)
	} else {
		collect := x.l1Remove.len() > 0
		size := x.size.Value()
		if max-v <= size {
			for u := max; u > v; u-- {
				if x.pos[u-x.offset] < size {
					size = x.swapOut(u, size)
					if collect {
						removed = append(removed, u)
					}
				}
			}
		} else {
			for i := size - 1; i >= 0; i-- {
				if u := x.values[i]; u > v {
					size = x.swapOut(u, size)
					if collect {
						removed = append(removed, u)
					}
				}
			}
		}
		x.size.SetValue(size)
		for x.pos[v-x.offset] >= size {
			v--
		}
		x.max.SetValue(v)
	}
	return x.notify(removed, true)
}

// RemoveValue removes v from the domain. On an interval variable, removing
// a value strictly between the bounds is ignored.
func (x *IntVar) RemoveValue(v int) Outcome {
	if !x.HasValue(v) {
		return Suspend
	}
	if x.size.Value() == 1 {
		return Failure
	}
	min, max := x.min.Value(), x.max.Value()
	if x.values == nil {
		switch v {
		case min:
			return x.UpdateMin(v + 1)
		case max:
			return x.UpdateMax(v - 1)
		default:
			return Suspend
		}
	}
	size := x.swapOut(v, x.size.Value())
	x.size.SetValue(size)
	boundsChanged := false
	if v == min {
		u := v + 1
		for x.pos[u-x.offset] >= size {
			u++
		}
		x.min.SetValue(u)
		boundsChanged = true
	} else if v == max {
		u := v - 1
		for x.pos[u-x.offset] >= size {
			u--
		}
		x.max.SetValue(u)
		boundsChanged = true
	}
	var removed []int
	if x.l1Remove.len() > 0 {
		removed = []int{v}
	}
	return x.notify(removed, boundsChanged)
}

// Assign binds x to v.
func (x *IntVar) Assign(v int) Outcome {
	if !x.HasValue(v) {
		return Failure
	}
	if x.IsBound() {
		return Suspend
	}
	var removed []int
	if x.values != nil {
		size := x.size.Value()
		if x.l1Remove.len() > 0 {
			removed = make([]int, 0, size-1)
			for _, u := range x.values[:size] {
				if u != v {
					removed = append(removed, u)
				}
			}
		}
		// Move v to the front of the live prefix.
		i := x.pos[v-x.offset]
		first := x.values[0]
		x.values[0], x.values[i] = v, first
		x.pos[v-x.offset], x.pos[first-x.offset] = 0, i
	}
	x.size.SetValue(1)
	x.min.SetValue(v)
	x.max.SetValue(v)
	return x.notify(removed, true)
}

// swapOut moves u past the end of the live prefix of length size and
// returns the new prefix length.
func (x *IntVar) swapOut(u, size int) int {
	i := x.pos[u-x.offset]
	last := size - 1
	w := x.values[last]
	x.values[i], x.values[last] = w, u
	x.pos[w-x.offset], x.pos[u-x.offset] = i, last
	return last
}

// notify schedules the subscribers of a domain change in the order
// removals, domain, bounds, bind and returns the mutation outcome.
func (x *IntVar) notify(removed []int, boundsChanged bool) Outcome {
	s := x.store
	for _, v := range removed {
		for _, sub := range x.l1Remove.live() {
			s.enqueueL1(sub, x, v)
		}
	}
	for _, sub := range x.l2Domain.live() {
		s.enqueueL2(sub)
	}
	if boundsChanged {
		for _, sub := range x.l1Bounds.live() {
			s.enqueueL1(sub, x, 0)
		}
		for _, sub := range x.l2Bounds.live() {
			s.enqueueL2(sub)
		}
	}
	if !x.IsBound() {
		return Suspend
	}
	v := x.min.Value()
	for _, sub := range x.l1Bind.live() {
		s.enqueueL1(sub, x, v)
	}
	for _, sub := range x.l2Bind.live() {
		s.enqueueL2(sub)
	}
	return Success
}
