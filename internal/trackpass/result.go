package trackpass

import (
	"github.com/sirkon/trackpaths/internal/outcome"
	"github.com/sirkon/trackpaths/internal/pathtrack"
)

// Preserved tells the pass manager which analyses stay valid after a run.
type Preserved int

const (
	// PreservedAll means the module was not modified.
	PreservedAll Preserved = iota

	// PreservedNone means the module was modified.
	PreservedNone
)

func (p Preserved) String() string {
	if p == PreservedNone {
		return "none"
	}

	return "all"
}

// Result of a [Pass] run.
type Result struct {
	Preserved Preserved
	Code      outcome.Code

	// Function, Plan and Outcome describe the last function the pass
	// tried to instrument. Empty when no target block was found.
	Function string
	Plan     *pathtrack.Plan
	Outcome  pathtrack.Outcome
}

// Changed tells if the module was modified.
func (r Result) Changed() bool {
	return r.Preserved == PreservedNone
}

func unchanged(code outcome.Code) Result {
	return Result{
		Preserved: PreservedAll,
		Code:      code,
	}
}
