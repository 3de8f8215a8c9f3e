package simp

import (
	"sort"

	"github.com/sasha-s/go-deadlock"
)

// OccList is one literal's occurrence list: every clause reference
// currently believed to contain that literal. Between reduceOT calls it
// may also hold references to clauses that have since been deleted.
type OccList struct {
	deadlock.Mutex
	Refs []ClauseRef
}

func (ol *OccList) push(ref ClauseRef) {
	ol.Lock()
	ol.Refs = append(ol.Refs, ref)
	ol.Unlock()
}

func (ol *OccList) clear() {
	ol.Lock()
	ol.Refs = ol.Refs[:0]
	ol.Unlock()
}

// OccurTable is OT: one OccList per literal, indexed 2..2*maxVar+1.
type OccurTable struct {
	lists []OccList // index by Lit
}

func NewOccurTable(maxVar Var) *OccurTable {
	return &OccurTable{lists: make([]OccList, 2*(int(maxVar)+1))}
}

// Of returns the occurrence list for lit. Callers take the list's own lock
// before mutating Refs.
func (ot *OccurTable) Of(lit Lit) *OccList { return &ot.lists[lit] }

// createOT rebuilds OT from scratch against the given pool. When reset is
// true every list is cleared in parallel first (spec.md §4.2); then every
// non-deleted clause pushes itself onto each of its literals' lists.
func createOT(pool *Pool, arena *Arena, ot *OccurTable, reset bool) {
	if reset {
		pool.doWorkForEach(0, len(ot.lists), 4096, func(i int) {
			ot.lists[i].clear()
		})
	}
	pool.doWorkForEach(0, len(arena.Clauses), 1024, func(i int) {
		c := arena.Clauses[i]
		if c.IsDeleted() {
			return
		}
		ref := ClauseRef(i)
		c.Lock()
		lits := append([]Lit(nil), c.Lits...)
		c.Unlock()
		for _, l := range lits {
			ot.Of(l).push(ref)
		}
	})
}

// reduceOT compacts every list in parallel, removing references to deleted
// clauses while preserving relative order.
func reduceOT(pool *Pool, arena *Arena, ot *OccurTable) {
	pool.doWorkForEach(0, len(ot.lists), 4096, func(i int) {
		ol := &ot.lists[i]
		ol.Lock()
		defer ol.Unlock()
		out := ol.Refs[:0]
		for _, ref := range ol.Refs {
			if c := arena.Get(ref); c != nil && !c.IsDeleted() {
				out = append(out, ref)
			}
		}
		ol.Refs = out
	})
}

// sortOT sorts every relevant list per spec.md §4.2. When partialOnly is
// true, only the lists for the literals of pvs are touched and CNF_CMP_KEY
// is used; otherwise every list is sorted with CNF_CMP_ABS.
func sortOT(pool *Pool, arena *Arena, ot *OccurTable, partialOnly bool, pvs []Var) {
	cmp := clauseCmpAbs
	if partialOnly {
		cmp = clauseCmpKey
	}
	sortOne := func(idx int) {
		ol := &ot.lists[idx]
		ol.Lock()
		defer ol.Unlock()
		sort.Slice(ol.Refs, func(i, j int) bool {
			ci, cj := arena.Get(ol.Refs[i]), arena.Get(ol.Refs[j])
			if ci == nil || cj == nil {
				return ci != nil
			}
			return cmp(ci, cj)
		})
	}
	if !partialOnly {
		pool.doWorkForEach(0, len(ot.lists), 4096, sortOne)
		return
	}
	for _, v := range pvs {
		sortOne(int(NewLit(v, false)))
		sortOne(int(NewLit(v, true)))
	}
}

// remap rewrites every occurrence-list entry through the given old->new
// ClauseRef table (nilRef meaning "dropped"), used by Arena.shrinkSimp.
func (ot *OccurTable) remap(table []ClauseRef) {
	for i := range ot.lists {
		ol := &ot.lists[i]
		out := ol.Refs[:0]
		for _, old := range ol.Refs {
			if int(old) < len(table) && table[old] != nilRef {
				out = append(out, table[old])
			}
		}
		ol.Refs = out
	}
}
