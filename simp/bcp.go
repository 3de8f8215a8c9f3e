package simp

import (
	"sync"

	"github.com/sasha-s/go-deadlock"
)

// BinarySink receives clauses that shrink to size 2 during propagation, so
// IGR can fold them into the implication graph without a second pass over
// the whole arena (spec.md §4.3 "if a binary-collection sink is attached").
type BinarySink interface {
	Collect(ref ClauseRef)
}

// binaryCollector is the trivial BinarySink used by the IGR driver.
type binaryCollector struct {
	mu   deadlock.Mutex
	refs []ClauseRef
}

func (b *binaryCollector) Collect(ref ClauseRef) {
	b.mu.Lock()
	b.refs = append(b.refs, ref)
	b.mu.Unlock()
}

func (b *binaryCollector) drain() []ClauseRef {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.refs
	b.refs = nil
	return out
}

// Propagator is bounded parallel BCP (spec.md §4.3). It drains a Trail
// against an OccurTable, deleting satisfied clauses and strengthening
// falsified literals out of the rest, detecting new units and conflicts
// as it goes.
//
// This implements the "richest" of the three prop() variants the source
// carries (see SPEC_FULL.md open question #1): a binary sink, per-clause
// locking, and dual condition variables for worker wakeup/termination.
// Simpler call sites (IGR's internal re-propagation during failed-literal
// checking) pass a nil sink, which is a valid specialization of this same
// code path, not a second implementation.
type Propagator struct {
	mu      deadlock.Mutex
	working int
	hasWork *sync.Cond
	idle    *sync.Cond

	terminate bool
	state     *atomicState
}

func NewPropagator(state *atomicState) *Propagator {
	p := &Propagator{state: state}
	p.hasWork = sync.NewCond(&p.mu)
	p.idle = sync.NewCond(&p.mu)
	return p
}

// Prop drains trail starting at its current propagated watermark against
// ot/arena, using pool's workers. Returns the number of literals newly
// forced, or -1 if UNSAT was derived. sink may be nil.
func (p *Propagator) Prop(pool *Pool, arena *Arena, ot *OccurTable, trail *Trail, sink BinarySink) int {
	p.mu.Lock()
	p.terminate = false
	p.working = pool.Size()
	p.mu.Unlock()

	startLen := trail.Len()

	pool.doWork(func(workerID int) {
		for {
			trail.Lock()
			if p.state.get() == Unsat {
				trail.Unlock()
				p.workerIdle()
				return
			}
			if trail.propagated >= len(trail.lits) {
				trail.Unlock()
				if p.workerIdle() {
					return // termination declared
				}
				continue
			}
			lit := trail.lits[trail.propagated]
			trail.propagated++
			trail.Unlock()

			if !p.propagateOne(arena, ot, trail, lit, sink) {
				p.state.set(Unsat)
				p.wakeAll()
				p.workerIdle()
				return
			}
		}
	})

	if p.state.get() == Unsat {
		return -1
	}
	return trail.Len() - startLen
}

// workerIdle marks the calling worker idle and blocks until either new
// work appears or every worker (including this one) has gone idle with
// the trail fully drained, at which point termination is declared for all
// of them. Returns true iff the caller should exit its loop; false means a
// new unit was enqueued while this worker was idle and it has rejoined the
// working count to go pull it.
func (p *Propagator) workerIdle() bool {
	p.mu.Lock()
	p.working--
	p.idle.Broadcast()
	if p.working == 0 {
		p.terminate = true
		p.hasWork.Broadcast()
		p.mu.Unlock()
		return true
	}
	p.hasWork.Wait()
	if p.terminate {
		p.mu.Unlock()
		return true
	}
	// Woken by a freshly enqueued unit, not by termination: rejoin as
	// active so the trail's new entries get drained in parallel instead
	// of serializing onto whichever worker happened to enqueue them.
	p.working++
	p.mu.Unlock()
	return false
}

func (p *Propagator) wakeAll() {
	p.mu.Lock()
	p.terminate = true
	p.hasWork.Broadcast()
	p.mu.Unlock()
}

// propagateOne processes a single forced literal against OT, per spec.md
// §4.3. Returns false if a conflict (empty clause) was derived.
func (p *Propagator) propagateOne(arena *Arena, ot *OccurTable, trail *Trail, lit Lit, sink BinarySink) bool {
	// Clauses containing lit are now satisfied.
	posList := ot.Of(lit)
	posList.Lock()
	satisfied := append([]ClauseRef(nil), posList.Refs...)
	posList.Unlock()
	for _, ref := range satisfied {
		if c := arena.Get(ref); c != nil {
			c.Lock()
			c.Status = Deleted
			c.Unlock()
		}
	}

	// Clauses containing flip(lit) must be strengthened or shown satisfied
	// by another literal.
	negList := ot.Of(lit.Flip())
	negList.Lock()
	touched := append([]ClauseRef(nil), negList.Refs...)
	negList.Unlock()

	for _, ref := range touched {
		c := arena.Get(ref)
		if c == nil {
			continue
		}
		c.Lock()
		if c.Status == Deleted {
			c.Unlock()
			continue
		}
		if clauseHasTrueLiteral(c, trail) {
			c.Unlock()
			continue
		}
		newSize := c.strengthen(lit.Flip())
		switch {
		case newSize == 0:
			c.Unlock()
			return false
		case newSize == 1:
			unit := c.Lits[0]
			c.Unlock()
			trail.Lock()
			ok := enqueueUnit(trail, unit, ref)
			trail.Unlock()
			if !ok {
				return false
			}
			p.mu.Lock()
			p.hasWork.Broadcast()
			p.mu.Unlock()
		case newSize == 2:
			c.Unlock()
			if sink != nil {
				sink.Collect(ref)
			}
		default:
			c.Unlock()
		}
	}

	// Both occurrence lists for lit and its flip are now stale/irrelevant.
	ot.Of(lit).clear()
	ot.Of(lit.Flip()).clear()
	return true
}

// clauseHasTrueLiteral is propClause from spec.md §4.3: detects another
// already-true literal in c before strengthening, so a clause already
// satisfied some other way isn't wrongly shrunk. Caller holds c.Lock().
func clauseHasTrueLiteral(c *Clause, trail *Trail) bool {
	for _, l := range c.Lits {
		if trail.ValueOf(l) == True {
			return true
		}
	}
	return false
}

// enqueueUnit pushes a forced unit at level 0 (inprocessing never operates
// under a decision level) if it is unassigned; reports a conflict if it is
// already false. Caller holds trail.Lock().
func enqueueUnit(trail *Trail, lit Lit, reason ClauseRef) bool {
	switch trail.ValueOf(lit) {
	case True:
		return true
	case False:
		return false
	default:
		return trail.push(lit, 0, reason)
	}
}
