package cp

// Outcome is the tri-state result of every domain mutation and every
// constraint hook.
//
// For constraint hooks:
//   - Suspend: the constraint is consistent and stays active
//   - Success: the constraint is entailed and is detached from scheduling
//   - Failure: a domain would become empty; the caller must backtrack
//
// For domain mutations (UpdateMin, UpdateMax, RemoveValue, Assign):
//   - Suspend: the domain changed, or nothing needed to change
//   - Success: the domain changed and the variable is now bound
//   - Failure: the mutation would empty the domain and was rejected
//
// Propagators only ever need to test for Failure on mutation results.
type Outcome int

const (
	Suspend Outcome = iota
	Success
	Failure
)

// String returns a human-readable representation of the outcome.
func (o Outcome) String() string {
	switch o {
	case Suspend:
		return "Suspend"
	case Success:
		return "Success"
	case Failure:
		return "Failure"
	default:
		return "Unknown"
	}
}

// Strength selects how much filtering a constraint performs when several
// consistency levels are available (for example the knapsack constraint).
type Strength int

const (
	Weak Strength = iota
	Medium
	Strong
)

// String returns a human-readable representation of the strength.
func (l Strength) String() string {
	switch l {
	case Weak:
		return "weak"
	case Medium:
		return "medium"
	case Strong:
		return "strong"
	default:
		return "unknown"
	}
}

// ParseStrength converts "weak", "medium" or "strong" to a Strength.
func ParseStrength(s string) (Strength, error) {
	switch s {
	case "weak":
		return Weak, nil
	case "medium", "":
		return Medium, nil
	case "strong":
		return Strong, nil
	default:
		return Medium, errorf(ErrInvalidArgument, "unknown propagation strength %q", s)
	}
}
