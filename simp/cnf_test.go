package simp

import "testing"

func TestArenaStateDefaultsToActiveForUnseenVar(t *testing.T) {
	a := NewArena(2)
	if a.State(5) != Active {
		t.Errorf("State for an out-of-range variable should read Active, got %v", a.State(5))
	}
	a.SetState(1, Frozen)
	if a.State(1) != Frozen {
		t.Errorf("State(1) = %v, want Frozen", a.State(1))
	}
}

func TestArenaAddClauseAssignsSequentialRefs(t *testing.T) {
	a := NewArena(2)
	r1 := a.AddClause(NewClause([]Lit{DimacsLit(1)}, Original))
	r2 := a.AddClause(NewClause([]Lit{DimacsLit(2)}, Original))
	if r1 == r2 {
		t.Fatal("expected distinct clause refs")
	}
	if a.Get(r1) == nil || a.Get(r2) == nil {
		t.Error("expected both refs to dereference to non-nil clauses")
	}
}

func TestArenaGetReturnsNilForOutOfRangeRef(t *testing.T) {
	a := NewArena(1)
	if a.Get(ClauseRef(99)) != nil {
		t.Error("expected Get to return nil for an unallocated ref")
	}
	if a.Get(nilRef) != nil {
		t.Error("expected Get to return nil for nilRef")
	}
}

func TestShrinkSimpCompactsDeletedClausesAndRemapsOT(t *testing.T) {
	arena, ot := buildTestArena(2, [][]int{
		{1, 2},
		{-1, 2},
		{1, -2},
	})
	// Delete the middle clause, then shrink.
	survivorRef := ClauseRef(2)
	arena.Clauses[1].Status = Deleted

	arena.shrinkSimp(ot)

	if len(arena.Clauses) != 2 {
		t.Fatalf("expected 2 surviving clauses after shrink, got %d", len(arena.Clauses))
	}
	for _, c := range arena.Clauses {
		if c.IsDeleted() {
			t.Error("no deleted clause should survive shrinkSimp")
		}
	}

	// The occurrence list for literal x1 (positive) held refs to clause 0
	// and clause 2 (the deleted clause 1 only touched ¬x1); after the remap
	// it must no longer contain stale indices into the old slice.
	pos1 := ot.Of(DimacsLit(1))
	for _, ref := range pos1.Refs {
		if int(ref) >= len(arena.Clauses) {
			t.Errorf("stale ref %d survives remap, arena now has %d clauses", ref, len(arena.Clauses))
		}
	}
	_ = survivorRef
}

func TestShrinkSimpHandlesAllDeleted(t *testing.T) {
	arena, ot := buildTestArena(1, [][]int{{1}})
	arena.Clauses[0].Status = Deleted
	arena.shrinkSimp(ot)
	if len(arena.Clauses) != 0 {
		t.Errorf("expected zero surviving clauses, got %d", len(arena.Clauses))
	}
}
