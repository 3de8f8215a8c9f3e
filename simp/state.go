package simp

import "sync/atomic"

// atomicState wraps CNFState in an atomic per spec.md §5 "cnfstate is an
// atomic with values UNSOLVED | SAT | UNSAT".
type atomicState struct {
	v atomic.Int32
}

func newAtomicState() *atomicState { return &atomicState{} }

func (a *atomicState) get() CNFState { return CNFState(a.v.Load()) }
func (a *atomicState) set(s CNFState) { a.v.Store(int32(s)) }

// casSat sets Sat only if the state is currently Unsolved, avoiding an
// UNSAT verdict from being clobbered back to SAT by a late-finishing
// worker.
func (a *atomicState) casSat() bool {
	return a.v.CompareAndSwap(int32(Unsolved), int32(Sat))
}

// atomicCounter is the fetch_add work-distribution cursor used by BVE's
// pivot loop (plus its melted count) and by runPivots for the clause
// elimination kernels (spec.md §5 "Atomicity").
type atomicCounter struct {
	v atomic.Int64
}

func (c *atomicCounter) next() int64 { return c.v.Add(1) - 1 }
func (c *atomicCounter) load() int64 { return c.v.Load() }
func (c *atomicCounter) reset()      { c.v.Store(0) }
