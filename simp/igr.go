package simp

// node_reduce rewrites every edge at lit to instead be an edge at rep,
// per spec.md §4.6 Phase B step 3. It deletes lit's own edges after
// migrating them, and marks lit as reduced-to-rep so dfs.go's rewrite-chain
// walk can follow it. If a migrated edge links rep to its own negation (a
// parent ¬rep means ¬rep implies rep; a child ¬rep means rep implies
// ¬rep), it enqueues the forced literal on the trail under the trail lock
// and stops there; the edges not yet migrated are dropped. It returns
// false only when the forced literal is already false, after setting the
// state to Unsat.
func nodeReduce(g *Graph, trail *Trail, state *atomicState, lit, rep Lit) bool {
	if lit == rep {
		return true
	}
	src := g.Node(lit)
	src.Lock()
	parents := append([]Edge(nil), src.Parents...)
	children := append([]Edge(nil), src.Children...)
	src.Parents = nil
	src.Children = nil
	src.set(stReduced)
	src.reduced = rep
	src.Unlock()

	dst := g.Node(rep)
	dst.Lock()
	for _, e := range parents {
		if e.Lit == rep.Flip() {
			dst.Unlock()
			return deriveContradiction(trail, state, rep.Flip())
		}
		dst.Parents = append(dst.Parents, e)
	}
	for _, e := range children {
		if e.Lit == rep.Flip() {
			dst.Unlock()
			return deriveContradiction(trail, state, rep)
		}
		dst.Children = append(dst.Children, e)
	}
	sortEdges(dst.Parents)
	sortEdges(dst.Children)
	dst.Unlock()
	return true
}

// deriveContradiction enqueues flip(rep) as forced, rep having just been
// shown to imply its own negation (nodeReduce's parent case passes the
// representative's flip). It returns false, and sets the state to Unsat,
// when flip(rep) is already false.
func deriveContradiction(trail *Trail, state *atomicState, rep Lit) bool {
	trail.Lock()
	ok := enqueueUnit(trail, rep.Flip(), nilRef)
	trail.Unlock()
	if !ok {
		state.set(Unsat)
		return false
	}
	return true
}

// collapseSCC is Phase B: repeatedly compute SCCs, enforce scc[flip(l)] =
// flip(scc[l]), and fold every non-trivial component into its
// representative, until no iteration both discovers a new edge and leaves
// the trail unchanged. Returns the set of literals that were reduced this
// call, for Phase C's ancestor reset.
func collapseSCC(pool *Pool, g *Graph, trail *Trail, state *atomicState, algo ComputeSCC) []Lit {
	var allReduced []Lit
	for {
		trailBefore := trail.Len()
		scc := algo.Compute(g)
		// Enforce scc[flip(l)] == flip(scc[l]) for every literal (spec.md
		// §4.6 Phase B step 2), processing each polarity pair once and
		// writing both entries so duality actually holds afterward instead
		// of only ever lowering one side of it.
		for lit := 2; lit+1 < len(scc); lit += 2 {
			pos, negLit := Lit(lit), Lit(lit+1)
			rep := scc[pos]
			negRep := scc[negLit]
			if rep.Flip() == negRep {
				continue
			}
			canonical := rep
			if negRep.Flip() < canonical {
				canonical = negRep.Flip()
			}
			scc[pos] = canonical
			scc[negLit] = canonical.Flip()
		}

		anyEdgeAdded := false
		reducedThisPass := make([]Lit, 0)

		pool.doWorkForEach(0, len(scc), 4096, func(i int) {
			lit := Lit(i)
			rep := scc[i]
			if lit == rep || state.get() == Unsat {
				return
			}
			if !nodeReduce(g, trail, state, lit, rep) {
				return
			}
		})
		if state.get() == Unsat {
			return allReduced
		}
		for i, rep := range scc {
			if Lit(i) != rep {
				reducedThisPass = append(reducedThisPass, Lit(i))
				anyEdgeAdded = true
			}
		}
		allReduced = append(allReduced, reducedThisPass...)

		if !anyEdgeAdded {
			return allReduced
		}
		if trail.Len() != trailBefore {
			// The trail grew: exit the collapse loop and let the caller
			// re-run BCP before attempting another SCC pass.
			return allReduced
		}
	}
}

// resetExploredAncestors is Phase C: BFS over the parent edges of every
// reduced node, clearing the EXPLORED bit so Phase D revisits them.
func resetExploredAncestors(g *Graph, reduced []Lit) {
	seen := make(map[Lit]bool)
	queue := append([]Lit(nil), reduced...)
	for len(queue) > 0 {
		lit := queue[0]
		queue = queue[1:]
		if seen[lit] {
			continue
		}
		seen[lit] = true

		n := g.Node(lit)
		n.Lock()
		n.clearBit(stExplored)
		parents := append([]Edge(nil), n.Parents...)
		n.Unlock()

		for _, e := range parents {
			if !seen[e.Lit] {
				queue = append(queue, e.Lit)
			}
		}
	}
}

// IGR runs the full implication-graph reasoning pass of spec.md §4.6:
// build, SCC-collapse, reset, DFS-explore (failed literal + HBR), until
// Phase E's exit condition (no trail growth and an empty exploration
// queue) holds.
func IGR(pool *Pool, arena *Arena, ot *OccurTable, trail *Trail, state *atomicState, opts *Options) *Graph {
	g := NewGraph(arena.MaxVar)
	BuildIG(pool, arena, g)

	algo := ComputeSCC(TarjanSCC{})
	if opts.SCCAlgorithm == "uf-scc" {
		algo = UFSCC{}
	}

	for {
		if state.get() == Unsat {
			return g
		}
		trailBefore := trail.Len()

		reduced := collapseSCC(pool, g, trail, state, algo)
		if state.get() == Unsat {
			return g
		}
		if opts.IGRRedundantEdges {
			removeRedundantEdges(pool, g)
		}
		resetExploredAncestors(g, reduced)

		grew := exploreDFS(pool, arena, ot, g, trail, state, opts)
		if state.get() == Unsat {
			return g
		}
		if !grew && trail.Len() == trailBefore {
			return g
		}
	}
}

// removeRedundantEdges is the optional pass from SPEC_FULL.md open
// question #2. Of a child edge u->v that appears more than once (and
// whose target is among u's descendants), only the first copy is kept;
// longer transitive paths are not checked. Gated by
// Options.IGRRedundantEdges (default false), matching the source where
// this pass appears commented out in one file and active in another.
func removeRedundantEdges(pool *Pool, g *Graph) {
	pool.doWorkForEach(0, g.Len(), 4096, func(i int) {
		n := &g.nodes[i]
		n.Lock()
		defer n.Unlock()
		if len(n.Descendants) == 0 {
			return
		}
		seen := make(map[Lit]bool, len(n.Children))
		out := n.Children[:0]
		for _, e := range n.Children {
			if seen[e.Lit] && containsLit(n.Descendants, e.Lit) && redundantViaOtherChild(n.Children, e) {
				continue
			}
			seen[e.Lit] = true
			out = append(out, e)
		}
		n.Children = out
	})
}

// redundantViaOtherChild reports whether e.Lit appears more than once
// among children; other children's descendants are not consulted.
func redundantViaOtherChild(children []Edge, e Edge) bool {
	// Conservative: without a second lock acquisition on other children's
	// nodes (forbidden by the no-two-node-locks rule during this pass) we
	// can only use directly duplicated edges as evidence of redundancy.
	count := 0
	for _, c := range children {
		if c.Lit == e.Lit {
			count++
		}
	}
	return count > 1
}
