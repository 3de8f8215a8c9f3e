package simp

import "testing"

func TestHandleFailedLiteralForcesFlipAndDescendants(t *testing.T) {
	g := NewGraph(2)
	lit := NewLit(1, false)
	flip := lit.Flip()
	n := g.Node(flip)
	n.Descendants = []Lit{NewLit(2, false)}

	arena := NewArena(2)
	ot := NewOccurTable(2)
	trail := NewTrail(2)
	var state atomicState

	handleFailedLiteral(arena, ot, g, trail, &state, lit)

	if trail.ValueOf(flip) != True {
		t.Errorf("expected %v forced true (the failed literal's negation), got %v", flip, trail.ValueOf(flip))
	}
	if trail.ValueOf(NewLit(2, false)) != True {
		t.Errorf("expected x2 forced true via the descendant set, got %v", trail.ValueOf(NewLit(2, false)))
	}
	if state.get() == Unsat {
		t.Error("did not expect UNSAT from a consistent forced set")
	}
}

func TestHandleFailedLiteralDetectsUnsat(t *testing.T) {
	g := NewGraph(2)
	lit := NewLit(1, false)
	flip := lit.Flip()

	arena := NewArena(2)
	ot := NewOccurTable(2)
	trail := NewTrail(2)
	var state atomicState
	// Pre-force lit itself true, contradicting the forced flip(lit).
	trail.Lock()
	enqueueUnit(trail, lit, nilRef)
	trail.Unlock()

	handleFailedLiteral(arena, ot, g, trail, &state, lit)
	if state.get() != Unsat {
		t.Error("expected UNSAT when the failed literal's flip contradicts an existing assignment")
	}
}

func TestHyperBinaryResolveEmitsMissingImplication(t *testing.T) {
	// Scenario 5 (spec.md §8): binaries (¬a v b), (¬a v c), (¬b v ¬c v d).
	// Under a=x1, propagation derives d=x4 even though the transitive
	// closure only reaches {b,c}: both ¬b and ¬c are confirmed false once
	// b,c are known true, so the third clause's remaining literal d is
	// unit-implied. The emitted clause must be (¬a v d), not (¬a v ¬d) --
	// the latter would delete the model a=b=c=d=true.
	arena, ot := buildTestArena(4, [][]int{
		{-1, 2},
		{-1, 3},
		{-2, -3, 4},
	})
	g := NewGraph(4)
	trail := NewTrail(4)
	budget := -1 // unbounded

	lit := NewLit(1, false)                                      // a
	transitive := []Lit{NewLit(2, false), NewLit(3, false)}       // a's known descendants: b, c

	grew := hyperBinaryResolve(arena, ot, g, trail, lit, transitive, &budget, nullProofSink{})
	if !grew {
		t.Fatal("expected hyperBinaryResolve to derive a new binary clause")
	}

	found := false
	forbidden := false
	for _, c := range arena.Clauses {
		if c == nil || c.IsDeleted() || c.Size() != 2 {
			continue
		}
		if c.Has(NewLit(1, true)) && c.Has(NewLit(4, false)) {
			found = true
		}
		if c.Has(NewLit(1, true)) && c.Has(NewLit(4, true)) {
			forbidden = true
		}
	}
	if !found {
		t.Error("expected the emitted clause (¬a v d) among the arena's clauses")
	}
	if forbidden {
		t.Error("emitted (¬a v ¬d), which is unsound: it would delete the model a=b=c=d=true")
	}
}

func TestHyperBinaryResolveNoOpWhenAllRestAlreadyInClosure(t *testing.T) {
	arena, ot := buildTestArena(2, [][]int{
		{-1, 2}, // already a binary, x2 is already in the transitive closure
	})
	g := NewGraph(2)
	trail := NewTrail(2)
	budget := -1

	lit := NewLit(1, false)
	transitive := []Lit{NewLit(2, false)}
	grew := hyperBinaryResolve(arena, ot, g, trail, lit, transitive, &budget, nullProofSink{})
	if grew {
		t.Error("expected no new clause when the only residual literal is already in the closure")
	}
}
