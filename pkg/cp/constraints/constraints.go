// Package constraints provides propagators for the cp engine.
//
// Every constraint embeds cp.Base and is built by a constructor that
// validates its arguments and returns (*T, error); posting is a separate
// step:
//
//	c, err := constraints.NewAbs(x, y)
//	if err != nil {
//		return err
//	}
//	if s.Post(c) == cp.Failure {
//		// the model is inconsistent
//	}
//
// Constraints available:
//   - Abs: y = |x|
//   - GrEq, Gr, Le: x >= y, x > y, x < y
//   - GrEqCteReif, GrEqVarReif, DiffReif, EqReifInterval: reified
//     comparisons channelled through a 0/1 variable
//   - Maximum: y = max(x)
//   - MulCte, MulCteRes: x*c = z and x*y = c
//   - AtLeastNValueFWC: n is the number of distinct values of x, filtered
//     by forward checking
//   - LightBinaryKnapsack, BinaryKnapsack, BinaryKnapsackWithCardinality:
//     load = sum(w[i]*b[i]) over 0/1 variables
package constraints

import (
	"github.com/pkg/errors"

	"github.com/gitrdm/gokanprop/pkg/cp"
)

// checkVars verifies that every variable is non-nil and that they all live
// in the same store.
func checkVars(op string, vars ...*cp.IntVar) error {
	var s *cp.Store
	for i, v := range vars {
		if v == nil {
			return errors.Wrapf(cp.ErrInvalidArgument, "%s: variable %d is nil", op, i)
		}
		if s == nil {
			s = v.Store()
		} else if v.Store() != s {
			return errors.Wrapf(cp.ErrInvalidArgument, "%s: variables belong to different stores", op)
		}
	}
	return nil
}

// checkBool verifies that b is a 0/1 variable.
func checkBool(op string, b *cp.IntVar) error {
	if b.Min() < 0 || b.Max() > 1 {
		return errors.Wrapf(cp.ErrInvalidArgument, "%s: %s is not a 0/1 variable", op, b.Name())
	}
	return nil
}
