package reversible

import "strconv"

// Int is a reversible integer cell.
type Int struct {
	trail *Trail
	id    CellID
}

// NewInt allocates a reversible integer with the given initial value.
func NewInt(t *Trail, v int) Int {
	return Int{trail: t, id: t.newCell(v)}
}

// ID returns the cell handle.
func (r Int) ID() CellID { return r.id }

// Value returns the current value.
func (r Int) Value() int { return r.trail.get(r.id) }

// SetValue records the previous value on the trail and overwrites it.
func (r Int) SetValue(v int) { r.trail.set(r.id, v) }

// Incr increments the value and returns the new value.
func (r Int) Incr() int {
	v := r.trail.get(r.id) + 1
	r.trail.set(r.id, v)
	return v
}

// Decr decrements the value and returns the new value.
func (r Int) Decr() int {
	v := r.trail.get(r.id) - 1
	r.trail.set(r.id, v)
	return v
}

// Add adds delta to the value and returns the new value.
func (r Int) Add(delta int) int {
	v := r.trail.get(r.id) + delta
	r.trail.set(r.id, v)
	return v
}

func (r Int) String() string { return strconv.Itoa(r.Value()) }

// Bool is a reversible boolean cell, stored as 0/1 in the trail arena.
type Bool struct {
	trail *Trail
	id    CellID
}

// NewBool allocates a reversible boolean with the given initial value.
func NewBool(t *Trail, b bool) Bool {
	return Bool{trail: t, id: t.newCell(boolToInt(b))}
}

// ID returns the cell handle.
func (r Bool) ID() CellID { return r.id }

// Value returns the current value.
func (r Bool) Value() bool { return r.trail.get(r.id) != 0 }

// SetValue records the previous value on the trail and overwrites it.
func (r Bool) SetValue(b bool) { r.trail.set(r.id, boolToInt(b)) }

func (r Bool) String() string { return strconv.FormatBool(r.Value()) }

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
