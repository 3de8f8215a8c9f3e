package simp

import "testing"

func TestTautologicalResolvent(t *testing.T) {
	// (x1 v x2) and (¬x1 v ¬x2): resolving on x1 yields (x2 v ¬x2), a tautology.
	c := []Lit{NewLit(1, false), NewLit(2, false)}
	d := []Lit{NewLit(1, true), NewLit(2, true)}
	if !tautologicalResolvent(c, d, 1) {
		t.Error("expected a tautological resolvent")
	}

	// (x1 v x2) and (¬x1 v x3): resolving on x1 yields (x2 v x3), not a tautology.
	d2 := []Lit{NewLit(1, true), NewLit(3, false)}
	if tautologicalResolvent(c, d2, 1) {
		t.Error("did not expect a tautological resolvent")
	}
}

func TestResolveOn(t *testing.T) {
	c := []Lit{NewLit(1, false), NewLit(2, false)}
	d := []Lit{NewLit(1, true), NewLit(3, false)}
	res, ok := resolveOn(c, d, 1)
	if !ok {
		t.Fatal("expected a non-tautological resolvent")
	}
	sortLits(res)
	want := []Lit{NewLit(2, false), NewLit(3, false)}
	sortLits(want)
	if !multisetEqual(res, want) {
		t.Errorf("resolveOn = %v, want %v", res, want)
	}

	tautC := []Lit{NewLit(1, false), NewLit(2, false)}
	tautD := []Lit{NewLit(1, true), NewLit(2, true)}
	if _, ok := resolveOn(tautC, tautD, 1); ok {
		t.Error("resolveOn should reject a tautological resolvent")
	}
}

func TestMultisetEqual(t *testing.T) {
	a := []Lit{NewLit(1, false), NewLit(2, true)}
	b := []Lit{NewLit(1, false), NewLit(2, true)}
	if !multisetEqual(a, b) {
		t.Error("expected equal sorted slices to compare equal")
	}
	c := []Lit{NewLit(1, false), NewLit(3, true)}
	if multisetEqual(a, c) {
		t.Error("did not expect mismatched slices to compare equal")
	}
	if multisetEqual(a, []Lit{NewLit(1, false)}) {
		t.Error("did not expect different-length slices to compare equal")
	}
}

func TestBestLitPicksShortestOccurrenceList(t *testing.T) {
	_, ot := buildTestArena(3, [][]int{
		{1, 2},
		{1, 3},
		{1, -2},
	})
	// x1 occurs in 3 clauses, x2 in 2 (one positive, one negated var 2
	// still indexes the same Of(lit) bucket separately), x3 occurs in 1.
	lits := []Lit{NewLit(1, false), NewLit(3, false)}
	got := bestLit(ot, lits)
	if got != NewLit(3, false) {
		t.Errorf("bestLit = %v, want x3 (shorter occurrence list)", got)
	}
}

func TestHSESubsumption(t *testing.T) {
	// (x1 v x2) subsumes (x1 v x2 v x3): the longer clause must be deleted.
	arena, ot := buildTestArena(3, [][]int{
		{1, 2},
		{1, 2, 3},
	})
	hseOne(arena, ot, 1, 1000)
	if arena.Clauses[1].IsDeleted() == arena.Clauses[0].IsDeleted() {
		t.Fatalf("expected exactly one of the two clauses to be deleted, got d0=%v d1=%v",
			arena.Clauses[0].IsDeleted(), arena.Clauses[1].IsDeleted())
	}
	if !arena.Clauses[1].IsDeleted() {
		t.Errorf("expected the longer clause (x1 v x2 v x3) to be subsumed and deleted")
	}
}

func TestHSESelfSubsumption(t *testing.T) {
	// (x1 v x2) self-subsumes (¬x1 v x2 v x3) down to (x2 v x3).
	arena, ot := buildTestArena(3, [][]int{
		{1, 2},
		{-1, 2, 3},
	})
	hseOne(arena, ot, 1, 1000)
	c := arena.Clauses[1]
	if c.IsDeleted() {
		t.Fatal("self-subsumed clause should be strengthened, not deleted")
	}
	for _, l := range c.Lits {
		if l.Var() == 1 {
			t.Errorf("expected x1 to be stripped from the self-subsumed clause, got %v", c.Lits)
		}
	}
}

func TestBCEBlockedClause(t *testing.T) {
	// (x1 v x2) is blocked on x1 if every clause containing ¬x1 resolves
	// to a tautology: here the only such clause is (¬x1 v ¬x2).
	arena, ot := buildTestArena(2, [][]int{
		{1, 2},
		{-1, -2},
	})
	bceOne(arena, ot, 1, 1000)
	if !arena.Clauses[0].IsDeleted() {
		t.Error("expected (x1 v x2) to be recognized as blocked and deleted")
	}
}

func TestBCENotBlockedWhenResolventIsNonTautological(t *testing.T) {
	arena, ot := buildTestArena(3, [][]int{
		{1, 2},
		{-1, 3},
	})
	bceOne(arena, ot, 1, 1000)
	if arena.Clauses[0].IsDeleted() {
		t.Error("(x1 v x2) is not blocked: (x1 v x2) resolved with (¬x1 v x3) on x1 yields (x2 v x3), not a tautology")
	}
}
