package cp_test

import (
	"fmt"

	"github.com/gitrdm/gokanprop/pkg/cp"
)

// ExampleStore shows how a search procedure brackets a decision with
// NewLevel and UndoTo.
func ExampleStore() {
	s := cp.NewStore()
	x, _ := s.NewIntVarWithName("x", 0, 5)
	y, _ := s.NewIntVarFromValuesWithName("y", []int{1, 3, 5})

	lvl := s.CurrentTrailLevel()
	s.NewLevel()
	x.UpdateMin(3)
	y.RemoveValue(3)
	fmt.Println(s)

	s.UndoTo(lvl)
	fmt.Println(s)
	// Output:
	// x{3..5} y{1,5}
	// x{0..5} y{1,3,5}
}
