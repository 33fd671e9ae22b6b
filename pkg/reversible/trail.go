// Package reversible provides trail-based reversible state for backtracking search.
//
// A Trail owns an arena of integer cells. Cells are addressed by a CellID
// handle; the typed wrappers Int and Bool hold a handle and a pointer to the
// owning trail. Every mutation made through a cell's setter first records the
// cell's previous value on the trail (at most once per decision level), so
// that UndoTo can restore all cells to the state they had at an earlier level.
//
// The undo log works as follows:
//
//	Level 0:  x=3 y=7
//	NewLevel() -> 1
//	  x.SetValue(4)   trail: [(x,3)]
//	  x.SetValue(5)   (x already logged at this level, nothing recorded)
//	  y.SetValue(1)   trail: [(x,3) (y,7)]
//	UndoTo(0)         replays backward: y=7, x=3, trail: []
//
// Thread safety: a Trail is not safe for concurrent use. The propagation
// engine built on top of it is single-threaded by design.
package reversible

import "fmt"

// CellID is a handle to a cell in a Trail's arena.
type CellID int

// entry is a single undo record: the value a cell held before it was first
// modified at the current level.
type entry struct {
	id  CellID
	old int
}

// Trail is the undo log and value arena for reversible cells.
type Trail struct {
	values []int    // current value per cell
	stamps []uint64 // magic stamp of the last logged mutation per cell
	log    []entry  // undo records, oldest first
	marks  []int    // log length at the start of each level (marks[i] -> level i+1)
	magic  uint64   // renewed on every NewLevel and UndoTo
	peak   int      // largest log length observed
}

// NewTrail creates an empty trail positioned at level 0.
func NewTrail() *Trail {
	return &Trail{
		values: make([]int, 0, 64),
		stamps: make([]uint64, 0, 64),
		log:    make([]entry, 0, 1024),
		magic:  1,
	}
}

// LevelError reports an attempt to undo to a level the trail has never been at.
// It is raised as a panic: undoing to an invalid level is a programming error,
// not a search failure.
type LevelError struct {
	Requested int
	Current   int
}

func (e *LevelError) Error() string {
	return fmt.Sprintf("reversible: cannot undo to level %d (current level %d)", e.Requested, e.Current)
}

// Level returns the current decision level. A fresh trail is at level 0.
func (t *Trail) Level() int {
	return len(t.marks)
}

// NewLevel marks a restore point and returns the new current level.
func (t *Trail) NewLevel() int {
	t.marks = append(t.marks, len(t.log))
	t.magic++
	return len(t.marks)
}

// UndoTo restores every cell modified since the trail was at the given level,
// in reverse chronological order, and drops the corresponding records.
// Undoing to the current level is a no-op. Panics with *LevelError if level is
// negative or above the current level.
func (t *Trail) UndoTo(level int) {
	if level < 0 || level > len(t.marks) {
		panic(&LevelError{Requested: level, Current: len(t.marks)})
	}
	if level == len(t.marks) {
		return
	}
	to := t.marks[level]
	for i := len(t.log) - 1; i >= to; i-- {
		e := t.log[i]
		t.values[e.id] = e.old
	}
	t.log = t.log[:to]
	t.marks = t.marks[:level]
	t.magic++
}

// Size returns the number of undo records currently held.
func (t *Trail) Size() int {
	return len(t.log)
}

// PeakSize returns the largest number of undo records held at any time.
func (t *Trail) PeakSize() int {
	return t.peak
}

// CellCount returns the number of cells allocated in the arena.
func (t *Trail) CellCount() int {
	return len(t.values)
}

func (t *Trail) newCell(v int) CellID {
	id := CellID(len(t.values))
	t.values = append(t.values, v)
	t.stamps = append(t.stamps, 0)
	return id
}

func (t *Trail) get(id CellID) int {
	return t.values[id]
}

func (t *Trail) set(id CellID, v int) {
	if t.values[id] == v {
		return
	}
	// Changes made at level 0 can never be undone, so they are not logged.
	if len(t.marks) > 0 && t.stamps[id] != t.magic {
		t.stamps[id] = t.magic
		t.log = append(t.log, entry{id: id, old: t.values[id]})
		if len(t.log) > t.peak {
			t.peak = len(t.log)
		}
	}
	t.values[id] = v
}
