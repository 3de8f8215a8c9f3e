package simp

import (
	"sync"

	"github.com/sasha-s/go-deadlock"
)

// exploreDFS is spec.md §4.6 Phase D/E: seed the queue with literals whose
// children are all already explored (orphans, to start), merge descendant
// sets bottom-up, detect failed literals, and optionally perform
// hyper-binary resolution. Returns true if anything new was discovered
// (an edge added, a literal explored) during this call.
func exploreDFS(pool *Pool, arena *Arena, ot *OccurTable, g *Graph, trail *Trail, state *atomicState, opts *Options) bool {
	n := g.Len()
	remaining := make([]int32, n)
	for lit := 0; lit < n; lit++ {
		node := g.Node(Lit(lit))
		node.RLock()
		remaining[lit] = int32(len(node.Children))
		already := node.has(stExplored)
		node.RUnlock()
		if already {
			remaining[lit] = -1 // sentinel: never enqueue
		}
	}

	var mu deadlock.Mutex
	cond := sync.NewCond(&mu)
	queue := make([]Lit, 0, n)
	for lit := 0; lit < n; lit++ {
		if remaining[lit] == 0 {
			queue = append(queue, Lit(lit))
		}
	}
	enqueued := len(queue)
	done := 0
	grew := enqueued > 0
	hbrBudget := opts.HBRMax

	pop := func() (Lit, bool) {
		mu.Lock()
		defer mu.Unlock()
		for len(queue) == 0 && done < enqueued {
			cond.Wait()
		}
		if len(queue) == 0 {
			return 0, false
		}
		lit := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		return lit, true
	}
	push := func(lit Lit) {
		mu.Lock()
		queue = append(queue, lit)
		enqueued++
		cond.Broadcast()
		mu.Unlock()
	}
	markDone := func() {
		mu.Lock()
		done++
		cond.Broadcast()
		mu.Unlock()
	}

	pool.doWork(func(workerID int) {
		for {
			lit, ok := pop()
			if !ok {
				return
			}
			if state.get() == Unsat {
				markDone()
				continue
			}
			if processLit(arena, ot, g, trail, state, lit, opts, &hbrBudget, push) {
				mu.Lock()
				grew = true
				mu.Unlock()
			}
			markDone()
		}
	})

	return grew
}

// processLit is the body of one Phase D iteration for a single literal.
// push enqueues a parent once all of its children are explored.
func processLit(arena *Arena, ot *OccurTable, g *Graph, trail *Trail, state *atomicState, lit Lit, opts *Options, hbrBudget *int, push func(Lit)) bool {
	// Follow the rewrite chain for reduced nodes, marking each one explored
	// so later calls do not seed it again.
	n := g.Node(lit)
	n.RLock()
	for n.has(stReduced) {
		next := n.reduced
		n.RUnlock()
		n.Lock()
		n.set(stExplored)
		n.Unlock()
		lit = next
		n = g.Node(lit)
		n.RLock()
	}
	if n.has(stExplored) {
		n.RUnlock()
		return false
	}
	children := append([]Edge(nil), n.Children...)
	n.RUnlock()

	var mergedDesc []Lit
	for _, e := range children {
		cn := g.Node(e.Lit)
		cn.RLock()
		mergedDesc = mergeLits(mergedDesc, append([]Lit{e.Lit}, cn.Descendants...))
		cn.RUnlock()
	}

	grew := false
	n.Lock()
	before := len(n.Descendants)
	n.Descendants = mergeLits(n.Descendants, mergedDesc)
	grew = len(n.Descendants) != before
	n.Unlock()

	// Failed-literal check: lit entails its own negation.
	if containsLit(n.Descendants, lit.Flip()) {
		handleFailedLiteral(arena, ot, g, trail, state, lit)
		n.Lock()
		n.set(stExplored)
		n.Children = nil
		n.Unlock()
		notifyParents(g, lit, push)
		return true
	}

	if opts.HBREnabled && *hbrBudget != 0 {
		grew = hyperBinaryResolve(arena, ot, g, trail, lit, n.Descendants, hbrBudget, opts.proofSink()) || grew
	}

	n.Lock()
	n.set(stExplored)
	n.Unlock()
	notifyParents(g, lit, push)
	return grew
}

// notifyParents decrements an implicit "unexplored child" count by simply
// re-checking each parent's children eagerly: since Descendants merges are
// idempotent, a parent can be safely pushed once per child completion and
// will just no-op on a spurious re-visit.
func notifyParents(g *Graph, lit Lit, push func(Lit)) {
	n := g.Node(lit)
	n.RLock()
	parents := append([]Edge(nil), n.Parents...)
	n.RUnlock()
	for _, e := range parents {
		pn := g.Node(e.Lit)
		pn.RLock()
		ready := true
		for _, c := range pn.Children {
			cn := g.Node(c.Lit)
			cn.RLock()
			explored := cn.has(stExplored)
			cn.RUnlock()
			if !explored {
				ready = false
				break
			}
		}
		explored := pn.has(stExplored)
		pn.RUnlock()
		if ready && !explored {
			push(e.Lit)
		}
	}
}

// handleFailedLiteral enqueues flip(lit) and every literal implied by it
// (its descendants, which are already known) as forced assignments.
func handleFailedLiteral(arena *Arena, ot *OccurTable, g *Graph, trail *Trail, state *atomicState, lit Lit) {
	trail.Lock()
	ok := enqueueUnit(trail, lit.Flip(), nilRef)
	trail.Unlock()
	if !ok {
		state.set(Unsat)
		return
	}

	n := g.Node(lit.Flip())
	n.RLock()
	implied := append([]Lit(nil), n.Descendants...)
	n.RUnlock()

	for _, u := range implied {
		trail.Lock()
		ok := enqueueUnit(trail, u, nilRef)
		trail.Unlock()
		if !ok {
			state.set(Unsat)
			return
		}
	}
}

// hyperBinaryResolve computes the propagation closure under {lit} beyond
// its transitive closure (lit ∪ children ∪ descendants) and emits a new
// binary clause for every literal that is unit-implied but not already in
// the transitive closure, per spec.md §4.6 Phase D.
func hyperBinaryResolve(arena *Arena, ot *OccurTable, g *Graph, trail *Trail, lit Lit, transitive []Lit, budget *int, proof ProofSink) bool {
	closure := make(map[Lit]bool, len(transitive)+1)
	closure[lit] = true
	for _, l := range transitive {
		closure[l] = true
	}

	grew := false
	frontier := []Lit{lit}
	for _, l := range transitive {
		frontier = append(frontier, l)
	}

	for len(frontier) > 0 && *budget != 0 {
		cur := frontier[0]
		frontier = frontier[1:]

		ol := ot.Of(cur.Flip())
		ol.Lock()
		refs := append([]ClauseRef(nil), ol.Refs...)
		ol.Unlock()

		for _, ref := range refs {
			c := arena.Get(ref)
			if c == nil {
				continue
			}
			c.Lock()
			lits := append([]Lit(nil), c.Lits...)
			status := c.Status
			c.Unlock()
			if status == Deleted {
				continue
			}

			// cur.Flip() is confirmed false here (cur is in closure). Any
			// other literal already confirmed true (in closure) satisfies
			// the clause outright -- nothing new forced. Any other literal
			// already confirmed false (its flip is in closure) doesn't
			// count against the "all but one" test; it's accounted for,
			// not missing. Only genuinely undetermined literals count as
			// missing, and exactly one of those is what makes the clause
			// unit-implying.
			satisfiedByOther := false
			var missing Lit
			missingCount := 0
			for _, l := range lits {
				if l == cur.Flip() {
					continue
				}
				if closure[l] {
					satisfiedByOther = true
					break
				}
				if closure[l.Flip()] {
					continue
				}
				missingCount++
				missing = l
			}
			if satisfiedByOther || missingCount != 1 {
				continue
			}
			if closure[missing] {
				continue
			}
			closure[missing] = true
			frontier = append(frontier, missing)

			if !containsLit(transitive, missing) {
				emitHyperBinary(arena, ot, g, lit, missing, proof)
				grew = true
				if *budget > 0 {
					*budget--
				}
			}
		}
	}
	return grew
}

// emitHyperBinary adds (¬lit ∨ missing) as a new binary clause and wires
// it into both OT and the implication graph. missing is a member of the
// propagation closure under lit (lit -> missing), so the redundant clause
// is the implication itself, not its resolvent's mirror image.
func emitHyperBinary(arena *Arena, ot *OccurTable, g *Graph, lit, missing Lit, proof ProofSink) {
	c := NewClause([]Lit{lit.Flip(), missing}, Learnt)
	c.Added = true
	ref := arena.AddClause(c)
	ot.Of(lit.Flip()).push(ref)
	ot.Of(missing).push(ref)
	addBinaryEdge(g, lit.Flip(), missing, ref)
	proof.AddClause(c.Lits)
}
