package scheduler

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCyclicDependency is the kind of every *CyclicDependencyError.
var ErrCyclicDependency = errors.New("cyclic build dependency")

// CyclicDependencyError reports packages that could not be placed in any
// phase because they depend on each other.
type CyclicDependencyError struct {
	// Remaining holds the sorted names of every package left unscheduled.
	Remaining []string
	// Cycle is one concrete dependency loop among Remaining, first and last
	// element equal. It may be empty if no loop could be isolated.
	Cycle []string
}

func (e *CyclicDependencyError) Error() string {
	if e == nil {
		return ""
	}
	msg := fmt.Sprintf("%s: packages remaining to build [%s] have mutual dependencies",
		ErrCyclicDependency, strings.Join(e.Remaining, ", "))
	if len(e.Cycle) > 0 {
		msg += " (" + strings.Join(e.Cycle, " -> ") + ")"
	}
	return msg
}

func (e *CyclicDependencyError) Unwrap() error { return ErrCyclicDependency }
