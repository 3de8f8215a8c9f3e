package simp

import "testing"

// cnfFromInts builds an Input from DIMACS-style signed-integer clauses,
// matching the teacher's table-driven test idiom of describing fixtures
// as plain literal data rather than hand-built structs.
func cnfFromInts(maxVar Var, clauses [][]int) Input {
	in := Input{MaxVar: maxVar}
	for _, cl := range clauses {
		lits := make([]Lit, len(cl))
		for i, d := range cl {
			lits[i] = DimacsLit(d)
		}
		in.Clauses = append(in.Clauses, lits)
	}
	return in
}

func TestSimplifyEmptyCNF(t *testing.T) {
	res, err := Simplify(DefaultOptions(), Input{MaxVar: 0})
	if err != nil {
		t.Fatalf("Simplify: %v", err)
	}
	if res.Exit != ExitSat {
		t.Errorf("empty CNF: got %v, want SAT", res.Exit)
	}
}

func TestSimplifyEmptyClauseIsUnsat(t *testing.T) {
	in := cnfFromInts(1, [][]int{{1}, {-1}})
	res, err := Simplify(DefaultOptions(), in)
	if err != nil {
		t.Fatalf("Simplify: %v", err)
	}
	if res.Exit != ExitUnsat {
		t.Errorf("contradictory units: got %v, want UNSAT", res.Exit)
	}
}

// Scenario 2 (spec.md §8): unit propagation chain.
func TestScenarioUnitPropagationChain(t *testing.T) {
	in := cnfFromInts(3, [][]int{
		{1},
		{-1, 2},
		{-2, 3},
	})
	res, err := Simplify(DefaultOptions(), in)
	if err != nil {
		t.Fatalf("Simplify: %v", err)
	}
	if res.Exit != ExitSat {
		t.Fatalf("chained units: got %v, want SAT", res.Exit)
	}
}

// Scenario 1 (spec.md §8): pure literal elimination leaves an empty CNF.
func TestScenarioPureLiteral(t *testing.T) {
	in := cnfFromInts(2, [][]int{
		{1, 2},
		{1, -2},
	})
	opts := DefaultOptions()
	opts.LCVEMin = 0 // this toy fixture never elects 10 pivots; let BVE run anyway
	res, err := Simplify(opts, in)
	if err != nil {
		t.Fatalf("Simplify: %v", err)
	}
	if res.Exit != ExitSat {
		t.Fatalf("pure literal case: got %v, want SAT", res.Exit)
	}
	if res.Log.Len() == 0 {
		t.Error("expected at least one reconstruction record for the eliminated pure variable")
	}
}

// Scenario 6 (spec.md §8): an equivalence chain collapses to one
// representative and the resulting tautological clauses disappear.
func TestScenarioSCCCollapse(t *testing.T) {
	in := cnfFromInts(3, [][]int{
		{-1, 2},
		{-2, 1},
		{-1, 3},
		{-3, 1},
		{1},
	})
	res, err := Simplify(DefaultOptions(), in)
	if err != nil {
		t.Fatalf("Simplify: %v", err)
	}
	if res.Exit != ExitSat {
		t.Fatalf("equivalence chain with forced unit: got %v, want SAT", res.Exit)
	}
}

// Scenario 3 (spec.md §8): a failed literal forces its flip via IGR.
func TestScenarioFailedLiteral(t *testing.T) {
	in := cnfFromInts(3, [][]int{
		{-1, 2},
		{-2, 3},
		{-3, -1},
		{1, 2, 3}, // keeps x1 from being eliminated as a pure literal first
	})
	opts := DefaultOptions()
	opts.VarElimEnabled = false // isolate IGR's failed-literal detection
	res, err := Simplify(opts, in)
	if err != nil {
		t.Fatalf("Simplify: %v", err)
	}
	if res.Exit == ExitUnsat {
		t.Fatal("formula should remain satisfiable once x1 is forced false")
	}
}

func TestSimplifyNeverReportsUnsatForSatisfiableInput(t *testing.T) {
	in := cnfFromInts(4, [][]int{
		{1, 2},
		{-1, 3},
		{-2, 4},
		{-3, -4},
	})
	res, err := Simplify(DefaultOptions(), in)
	if err != nil {
		t.Fatalf("Simplify: %v", err)
	}
	if res.Exit == ExitUnsat {
		t.Error("this CNF is satisfiable (e.g. x1=T,x2=F,x3=T,x4=F); simplify must not report UNSAT")
	}
}
