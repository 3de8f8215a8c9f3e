package simp

import "testing"

func TestCreateOTIndexesEveryLiteral(t *testing.T) {
	arena := NewArena(2)
	ref := arena.AddClause(NewClause([]Lit{NewLit(1, false), NewLit(2, true)}, Original))
	ot := NewOccurTable(2)
	pool := NewPool(2)
	defer pool.Close()

	createOT(pool, arena, ot, true)

	for _, l := range []Lit{NewLit(1, false), NewLit(2, true)} {
		ol := ot.Of(l)
		ol.Lock()
		refs := append([]ClauseRef(nil), ol.Refs...)
		ol.Unlock()
		if len(refs) != 1 || refs[0] != ref {
			t.Errorf("OT[%v] = %v, want [%v]", l, refs, ref)
		}
	}
	// The clause's non-member literals must not be indexed.
	for _, l := range []Lit{NewLit(1, true), NewLit(2, false)} {
		ol := ot.Of(l)
		ol.Lock()
		n := len(ol.Refs)
		ol.Unlock()
		if n != 0 {
			t.Errorf("OT[%v] should be empty, has %d entries", l, n)
		}
	}
}

func TestCreateOTResetClearsStaleEntries(t *testing.T) {
	arena := NewArena(1)
	arena.AddClause(NewClause([]Lit{NewLit(1, false)}, Original))
	ot := NewOccurTable(1)
	pool := NewPool(2)
	defer pool.Close()

	createOT(pool, arena, ot, true)
	createOT(pool, arena, ot, true) // second build with reset must not double up

	ol := ot.Of(NewLit(1, false))
	ol.Lock()
	n := len(ol.Refs)
	ol.Unlock()
	if n != 1 {
		t.Errorf("expected exactly 1 entry after a reset rebuild, got %d", n)
	}
}

func TestReduceOTDropsDeletedClauses(t *testing.T) {
	arena := NewArena(2)
	keep := arena.AddClause(NewClause([]Lit{NewLit(1, false)}, Original))
	gone := arena.AddClause(NewClause([]Lit{NewLit(1, false)}, Original))
	arena.Get(gone).Status = Deleted

	ot := NewOccurTable(2)
	ot.Of(NewLit(1, false)).push(keep)
	ot.Of(NewLit(1, false)).push(gone)

	pool := NewPool(2)
	defer pool.Close()
	reduceOT(pool, arena, ot)

	ol := ot.Of(NewLit(1, false))
	ol.Lock()
	refs := append([]ClauseRef(nil), ol.Refs...)
	ol.Unlock()
	if len(refs) != 1 || refs[0] != keep {
		t.Errorf("reduceOT left %v, want only [%v]", refs, keep)
	}
}

func TestOccurTableRemapRewritesReferences(t *testing.T) {
	ot := NewOccurTable(1)
	ot.Of(NewLit(1, false)).push(ClauseRef(5))
	ot.Of(NewLit(1, false)).push(ClauseRef(9))

	table := make([]ClauseRef, 10)
	for i := range table {
		table[i] = nilRef
	}
	table[5] = ClauseRef(0) // 5 survives, remapped to 0; 9 is dropped

	ot.remap(table)

	ol := ot.Of(NewLit(1, false))
	if len(ol.Refs) != 1 || ol.Refs[0] != ClauseRef(0) {
		t.Errorf("remap result = %v, want [0]", ol.Refs)
	}
}
