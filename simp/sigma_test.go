package simp

import (
	"testing"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"
)

func TestSimplifyLiveReusesSessionAcrossCalls(t *testing.T) {
	in := cnfFromInts(3, [][]int{
		{1},
		{-1, 2},
	})
	s := NewSigma(DefaultOptions(), in)
	defer s.Close()

	first, err := s.SimplifyLive()
	if err != nil {
		t.Fatalf("first SimplifyLive: %v", err)
	}
	if first.Exit == ExitUnsat {
		t.Fatal("expected the first round to remain satisfiable")
	}

	s.AddLearntClause([]Lit{NewLit(2, true), NewLit(3, false)}) // ¬x2 v x3, forces x3 given x2

	second, err := s.SimplifyLive()
	if err != nil {
		t.Fatalf("second SimplifyLive: %v", err)
	}
	if second.Exit == ExitUnsat {
		t.Fatal("expected the session to remain satisfiable after the learnt clause")
	}
}

func TestAddLearntClauseGrowsArena(t *testing.T) {
	in := cnfFromInts(2, [][]int{{1, 2}})
	s := NewSigma(DefaultOptions(), in)
	defer s.Close()

	before := len(s.arena.Clauses)
	s.AddLearntClause([]Lit{NewLit(1, true), NewLit(2, true)})
	if len(s.arena.Clauses) != before+1 {
		t.Errorf("expected exactly one new clause in the arena, had %d now have %d", before, len(s.arena.Clauses))
	}
}

// oracleSolve runs the same CNF through go-air/gini directly, independent
// of this package's own simplification, per SPEC_FULL.md §8: "solved
// twice... the two verdicts must agree."
func oracleSolve(maxVar Var, clauses [][]int) bool {
	g := gini.New()
	for _, cl := range clauses {
		for _, d := range cl {
			g.Add(z.Dimacs2Lit(d))
		}
		g.Add(0)
	}
	return g.Solve() == 1
}

func TestSimplifyAgreesWithGiniOracle(t *testing.T) {
	cases := []struct {
		name    string
		maxVar  Var
		clauses [][]int
	}{
		{"unit chain", 3, [][]int{{1}, {-1, 2}, {-2, 3}}},
		{"pure literal", 2, [][]int{{1, 2}, {1, -2}}},
		{"and gate", 5, [][]int{{-1, 2}, {-1, 3}, {1, -2, -3}, {1, 4}, {-1, 5}}},
		{"contradiction", 1, [][]int{{1}, {-1}}},
		{"equivalence chain", 3, [][]int{{-1, 2}, {-2, 1}, {-1, 3}, {-3, 1}, {1}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wantSat := oracleSolve(tc.maxVar, tc.clauses)

			in := cnfFromInts(tc.maxVar, tc.clauses)
			res, err := Simplify(DefaultOptions(), in)
			if err != nil {
				t.Fatalf("Simplify: %v", err)
			}

			switch res.Exit {
			case ExitUnsat:
				if wantSat {
					t.Errorf("simp reported UNSAT but gini found the formula satisfiable")
				}
			case ExitSat:
				if !wantSat {
					t.Errorf("simp reported SAT but gini found the formula unsatisfiable")
				}
			case ExitUnsolved:
				// Only the verdict is compared: leaving clauses unsolved is
				// consistent only with a satisfiable original. No model is
				// built or extended through the reconstruction log here.
				if !wantSat {
					t.Errorf("simp left clauses unsolved but gini found the original formula unsatisfiable")
				}
			}
		})
	}
}
