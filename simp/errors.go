package simp

import "github.com/xDarkicex/cnfsimp/core"

// errInterrupted is the sentinel join() raises when Pool.Interrupt() fired
// mid-phase (spec.md §5 "Cancellation and timeouts").
var errInterrupted = core.WrapSimpError("simp", "Pool.join", "interrupted", core.ErrInterrupted)

// ExitCode is the three-way result spec.md §6 says the core returns to
// the search layer.
type ExitCode int

const (
	ExitUnsolved ExitCode = iota
	ExitSat
	ExitUnsat
)

func (e ExitCode) String() string {
	switch e {
	case ExitSat:
		return "SAT"
	case ExitUnsat:
		return "UNSAT"
	default:
		return "UNSOLVED"
	}
}
