package simp

// This file implements the Clause-Elimination kernels of spec.md §4.4:
// HSE (subsumption/self-subsumption), BCE (blocked-clause elimination),
// and ERE (equivalence-resolvent elimination), plus the fused CE driver.
//
// All three share the same access pattern: iterate pivot variables from
// PVs via an atomic cursor (one worker per batch), and for each pivot
// inspect OT[+v]/OT[-v] pairwise. Per-clause locks protect mutation;
// occurrence lists are read under their own lock and the returned slice
// is a snapshot, matching the discipline already used in bcp.go/dfs.go.

const maxEREOut = 350 // MAX_ERE_OUT, spec.md §4.4

// runPivots drives body(v) over pvs using pool workers pulling from a
// shared atomic cursor, the same per-pivot parallel pattern BVE's worker
// loop uses (spec.md §4.5 "Workers... iterates pivots via an atomic
// counter").
func runPivots(pool *Pool, pvs []Var, body func(v Var)) {
	var cursor atomicCounter
	pool.doWork(func(workerID int) {
		for {
			i := cursor.next()
			if i >= int64(len(pvs)) {
				return
			}
			body(pvs[i])
		}
	})
}

// subset reports whether every literal of small also appears in big,
// assuming both are sorted ascending. O(|small|+|big|).
func subset(small, big []Lit) bool {
	i, j := 0, 0
	for i < len(small) && j < len(big) {
		if small[i] == big[j] {
			i++
			j++
		} else if big[j] < small[i] {
			j++
		} else {
			return false
		}
	}
	return i == len(small)
}

// subsetModuloOne reports whether small is a subset of big except for
// exactly one literal of small whose flip appears in big instead; that
// literal is returned as the self-subsumption witness. ok is false if no
// such single mismatch exists.
func subsetModuloOne(small, big []Lit) (flipped Lit, ok bool) {
	bigSet := make(map[Lit]bool, len(big))
	for _, l := range big {
		bigSet[l] = true
	}
	mismatches := 0
	for _, l := range small {
		if bigSet[l] {
			continue
		}
		if bigSet[l.Flip()] {
			mismatches++
			flipped = l
			if mismatches > 1 {
				return 0, false
			}
			continue
		}
		return 0, false
	}
	return flipped, mismatches == 1
}

// hseOne runs subsumption/self-subsumption for a single pivot variable v,
// per spec.md §4.4 "HSE". Clauses longer than limit are skipped entirely.
func hseOne(arena *Arena, ot *OccurTable, v Var, limit int) {
	pos, neg := ot.Of(NewLit(v, false)), ot.Of(NewLit(v, true))
	pos.Lock()
	posRefs := append([]ClauseRef(nil), pos.Refs...)
	pos.Unlock()
	neg.Lock()
	negRefs := append([]ClauseRef(nil), neg.Refs...)
	neg.Unlock()

	all := append(posRefs, negRefs...)

	for _, dRef := range all {
		d := arena.Get(dRef)
		if d.IsDeleted() {
			continue
		}
		d.Lock()
		dLits := append([]Lit(nil), d.Lits...)
		dSig := d.Sig
		dStatus := d.Status
		d.Unlock()
		if len(dLits) > limit {
			continue
		}

		for _, cRef := range all {
			if cRef == dRef {
				continue
			}
			c := arena.Get(cRef)
			if c.IsDeleted() {
				continue
			}
			c.Lock()
			if c.Status == Deleted || c.Size() > limit || c.Size() < len(dLits) {
				c.Unlock()
				continue
			}
			cLits := c.Lits

			// Of two equal clauses only the higher ref is deleted, so two
			// workers never delete both copies.
			if dSig&^c.Sig == 0 && (len(dLits) < len(cLits) || dRef < cRef) && subset(dLits, cLits) {
				c.Status = Deleted
				c.Unlock()
				continue
			}
			if flip, ok := subsetModuloOne(dLits, cLits); ok {
				c.strengthen(flip.Flip())
				if dStatus == Original && c.Status == Learnt {
					c.Status = Original
				}
				c.Unlock()
				continue
			}
			c.Unlock()
		}
	}
}

// HSE runs subsumption/self-subsumption over every elected pivot in
// parallel.
func HSE(pool *Pool, arena *Arena, ot *OccurTable, pvs []Var, limit int) {
	runPivots(pool, pvs, func(v Var) { hseOne(arena, ot, v, limit) })
}

// tautologicalResolvent reports whether resolving c and d on v produces a
// tautology, i.e. some literal l (other than the pivot pair) appears in
// one and its flip in the other.
func tautologicalResolvent(cLits, dLits []Lit, pivot Var) bool {
	dSet := make(map[Lit]bool, len(dLits))
	for _, l := range dLits {
		if l.Var() != pivot {
			dSet[l] = true
		}
	}
	for _, l := range cLits {
		if l.Var() == pivot {
			continue
		}
		if dSet[l.Flip()] {
			return true
		}
	}
	return false
}

// bceOne runs blocked-clause detection for pivot v, per spec.md §4.4
// "BCE". For each non-learnt clause c containing l (l.Var()==v), c is
// blocked (and deleted) iff every non-learnt non-deleted clause in
// OT[flip(l)] resolves with c to a tautology on v.
func bceOne(arena *Arena, ot *OccurTable, v Var, limit int) {
	for _, sign := range [2]bool{false, true} {
		l := NewLit(v, sign)
		ol := ot.Of(l)
		ol.Lock()
		refs := append([]ClauseRef(nil), ol.Refs...)
		ol.Unlock()

		other := ot.Of(l.Flip())
		other.Lock()
		otherRefs := append([]ClauseRef(nil), other.Refs...)
		other.Unlock()
		if len(otherRefs) > limit {
			continue
		}

		var otherClauses [][]Lit
		for _, ref := range otherRefs {
			d := arena.Get(ref)
			if d.IsDeleted() {
				continue
			}
			d.Lock()
			if d.Status == Learnt {
				d.Unlock()
				continue
			}
			otherClauses = append(otherClauses, append([]Lit(nil), d.Lits...))
			d.Unlock()
		}

		for _, cRef := range refs {
			c := arena.Get(cRef)
			if c.IsDeleted() {
				continue
			}
			c.Lock()
			if c.Status == Learnt || c.Status == Deleted || c.Size() > limit {
				c.Unlock()
				continue
			}
			cLits := append([]Lit(nil), c.Lits...)
			c.Unlock()

			blocked := true
			for _, dLits := range otherClauses {
				if !tautologicalResolvent(cLits, dLits, v) {
					blocked = false
					break
				}
			}
			if blocked {
				c.Lock()
				c.Status = Deleted
				c.Unlock()
			}
		}
	}
}

// BCE runs blocked-clause elimination over every elected pivot.
func BCE(pool *Pool, arena *Arena, ot *OccurTable, pvs []Var, limit int) {
	runPivots(pool, pvs, func(v Var) { bceOne(arena, ot, v, limit) })
}

// resolveOn builds the non-tautological resolvent of cLits and dLits on
// pivot v, or returns ok=false if the resolvent is a tautology.
func resolveOn(cLits, dLits []Lit, v Var) (res []Lit, ok bool) {
	if tautologicalResolvent(cLits, dLits, v) {
		return nil, false
	}
	seen := make(map[Lit]bool, len(cLits)+len(dLits))
	for _, l := range cLits {
		if l.Var() != v {
			seen[l] = true
		}
	}
	for _, l := range dLits {
		if l.Var() != v {
			seen[l] = true
		}
	}
	res = make([]Lit, 0, len(seen))
	for l := range seen {
		res = append(res, l)
	}
	return res, true
}

// bestLit picks the literal whose occurrence list is shortest, the
// cheapest anchor to scan for an existing equal clause.
func bestLit(ot *OccurTable, lits []Lit) Lit {
	best := lits[0]
	bestLen := -1
	for _, l := range lits {
		ol := ot.Of(l)
		ol.Lock()
		n := len(ol.Refs)
		ol.Unlock()
		if bestLen == -1 || n < bestLen {
			bestLen = n
			best = l
		}
	}
	return best
}

// multisetEqual reports whether two already-sorted literal slices are
// identical.
func multisetEqual(a, b []Lit) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ereOne runs equivalence-resolvent elimination for pivot v, per spec.md
// §4.4 "ERE". Per SPEC_FULL.md open question #3, the bound is
// |OT[+v]| <= limit && |OT[-v]| <= limit, not the source's reused loop
// variable.
func ereOne(arena *Arena, ot *OccurTable, v Var, limit int) {
	pos, neg := ot.Of(NewLit(v, false)), ot.Of(NewLit(v, true))
	pos.Lock()
	posRefs := append([]ClauseRef(nil), pos.Refs...)
	pos.Unlock()
	neg.Lock()
	negRefs := append([]ClauseRef(nil), neg.Refs...)
	neg.Unlock()
	if len(posRefs) > limit || len(negRefs) > limit {
		return
	}

	for _, cpRef := range posRefs {
		cp := arena.Get(cpRef)
		if cp.IsDeleted() {
			continue
		}
		cp.Lock()
		cpLits := append([]Lit(nil), cp.Lits...)
		cp.Unlock()

		for _, cnRef := range negRefs {
			cn := arena.Get(cnRef)
			if cn.IsDeleted() {
				continue
			}
			cn.Lock()
			cnLits := append([]Lit(nil), cn.Lits...)
			cn.Unlock()

			m, ok := resolveOn(cpLits, cnLits, v)
			if !ok || len(m) <= 1 || len(m) > maxEREOut {
				continue
			}
			sortLits(m)
			anchor := bestLit(ot, m)
			var mSig uint32
			for _, l := range m {
				mSig |= l.sigBit()
			}

			al := ot.Of(anchor)
			al.Lock()
			candidates := append([]ClauseRef(nil), al.Refs...)
			al.Unlock()

			for _, ref := range candidates {
				e := arena.Get(ref)
				if e.IsDeleted() {
					continue
				}
				e.Lock()
				if e.Status != Deleted && e.Sig == mSig && multisetEqual(e.Lits, m) {
					e.Status = Deleted
					e.Unlock()
					break
				}
				e.Unlock()
			}
		}
	}
}

func sortLits(lits []Lit) {
	for i := 1; i < len(lits); i++ {
		for j := i; j > 0 && lits[j-1] > lits[j]; j-- {
			lits[j-1], lits[j] = lits[j], lits[j-1]
		}
	}
}

// ERE runs equivalence-resolvent elimination over every elected pivot.
func ERE(pool *Pool, arena *Arena, ot *OccurTable, pvs []Var, limit int) {
	runPivots(pool, pvs, func(v Var) { ereOne(arena, ot, v, limit) })
}

// CE is the fused per-pivot driver of spec.md §4.4 "CE driver": runs HSE
// and, when enabled, BCE in one pass per pivot. It does not update OT:
// deleted clauses stay in their occurrence lists until reduceOT drops
// them, and a strengthened clause stays listed under the literal it lost.
func CE(pool *Pool, arena *Arena, ot *OccurTable, pvs []Var, opts *Options) {
	if !opts.CEEnabled {
		return
	}
	runPivots(pool, pvs, func(v Var) {
		if opts.HSEEnabled {
			hseOne(arena, ot, v, opts.HSELimit)
		}
		if opts.BCEEnabled {
			bceOne(arena, ot, v, opts.BCELimit)
		}
	})
}
