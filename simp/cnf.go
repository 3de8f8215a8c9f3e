package simp

import "github.com/sasha-s/go-deadlock"

// VState is the phase-eliminated variable state from spec.md §3.
type VState uint8

const (
	Active VState = iota
	Frozen
	Melted
)

func (s VState) String() string {
	switch s {
	case Active:
		return "ACTIVE"
	case Frozen:
		return "FROZEN"
	case Melted:
		return "MELTED"
	default:
		return "UNKNOWN"
	}
}

// CNFState is the global solved/unsolved flag (spec.md §5 "Atomicity").
// It is read and written exclusively through atomic helpers in state.go.
type CNFState int32

const (
	Unsolved CNFState = iota
	Sat
	Unsat
)

func (s CNFState) String() string {
	switch s {
	case Unsolved:
		return "UNSOLVED"
	case Sat:
		return "SAT"
	case Unsat:
		return "UNSAT"
	default:
		return "UNKNOWN"
	}
}

// Arena is SCNF: the clause database plus per-variable metadata. Clauses
// are never physically removed on deletion (Status = Deleted); shrinkSimp
// is the only operation that compacts the backing slice.
//
// MaxVar, NOrgCls and NOrgLit are set when the arena is built and not
// changed afterwards. VarState is written through SetState, with no lock,
// by BVE's per-pivot workers. Only the per-clause locks embedded in
// *Clause protect clause mutation.
type Arena struct {
	deadlock.Mutex // guards appends to Clauses/free list; not clause contents

	Clauses []*Clause
	free    []ClauseRef // reusable slots; nothing in this package adds to it, shrinkSimp empties it

	MaxVar  Var
	NOrgCls int
	NOrgLit int

	VarState []VState // indexed by Var, 1..MaxVar
}

// NewArena allocates an arena sized for maxVar variables.
func NewArena(maxVar Var) *Arena {
	return &Arena{
		Clauses:  make([]*Clause, 0, 1024),
		VarState: make([]VState, maxVar+1),
	}
}

// AddClause appends a clause to the arena and returns its reference.
// Safe to call concurrently; BVE's and hyper-binary resolution's workers
// call it in parallel.
func (a *Arena) AddClause(c *Clause) ClauseRef {
	a.Lock()
	defer a.Unlock()
	if n := len(a.free); n > 0 {
		ref := a.free[n-1]
		a.free = a.free[:n-1]
		a.Clauses[ref] = c
		return ref
	}
	a.Clauses = append(a.Clauses, c)
	return ClauseRef(len(a.Clauses) - 1)
}

// Get dereferences a ClauseRef. Returns nil for a freed slot.
func (a *Arena) Get(ref ClauseRef) *Clause {
	if ref < 0 || int(ref) >= len(a.Clauses) {
		return nil
	}
	return a.Clauses[ref]
}

// State returns the elimination state of v.
func (a *Arena) State(v Var) VState {
	if int(v) >= len(a.VarState) {
		return Active
	}
	return a.VarState[v]
}

func (a *Arena) SetState(v Var, s VState) { a.VarState[v] = s }

// shrinkSimp physically drops Deleted clauses and renumbers references in
// the occurrence index, per spec.md §4.2. Single-threaded: called at a
// sigma-driver phase boundary, never concurrently with a parallel phase.
//
// It reports MEMORY_EXCEEDED (via core.ErrMemoryExceeded through the
// caller) rather than performing the compaction if the projected size
// still exceeds the configured cap — that check lives in sigma.go's
// checkMem, not here, since this function has no Options to consult.
func (a *Arena) shrinkSimp(ot *OccurTable) {
	remap := make([]ClauseRef, len(a.Clauses))
	kept := a.Clauses[:0]
	for old, c := range a.Clauses {
		if c == nil || c.Status == Deleted {
			remap[old] = nilRef
			continue
		}
		remap[old] = ClauseRef(len(kept))
		kept = append(kept, c)
	}
	a.Clauses = kept
	a.free = a.free[:0]
	if ot != nil {
		ot.remap(remap)
	}
}
