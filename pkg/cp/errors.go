package cp

import (
	"fmt"

	"github.com/pkg/errors"
)

// Construction errors. These are returned at the model-building boundary and
// are never produced during propagation, where inconsistency is an Outcome.
var (
	ErrEmptyDomain     = errors.New("domain is empty")
	ErrInvalidArgument = errors.New("invalid argument")
)

// errorf wraps a sentinel error with a formatted message so callers can test
// the cause with errors.Is.
func errorf(sentinel error, format string, args ...interface{}) error {
	return errors.Wrapf(sentinel, format, args...)
}

// ContractViolation is the panic value raised when the engine is used in a
// way that can never be recovered by backtracking (posting a constraint with
// an empty scope, subscribing to a hook the constraint does not implement...).
type ContractViolation struct {
	Msg string
}

func (e *ContractViolation) Error() string {
	return "cp: contract violation: " + e.Msg
}

func violation(format string, args ...interface{}) *ContractViolation {
	return &ContractViolation{Msg: fmt.Sprintf(format, args...)}
}
