package simp

import "testing"

func TestLCVEScoresByOccurrenceCount(t *testing.T) {
	// x1 has 1 occurrence each side, x2 has 2 each side, so x1 must sort first.
	arena, ot := buildTestArena(2, [][]int{
		{1, 2},
		{-1, -2},
		{2},
		{-2},
	})
	opts := DefaultOptions()
	pvs := LCVE(arena, ot, &opts)
	if len(pvs) != 2 {
		t.Fatalf("expected both variables elected, got %v", pvs)
	}
	if pvs[0] != 1 {
		t.Errorf("expected x1 (fewer occurrences) elected first, got order %v", pvs)
	}
}

func TestLCVESkipsFrozenAndMeltedVariables(t *testing.T) {
	arena, ot := buildTestArena(2, [][]int{
		{1, 2},
		{-1, -2},
	})
	arena.SetState(1, Frozen)
	arena.SetState(2, Melted)
	opts := DefaultOptions()
	pvs := LCVE(arena, ot, &opts)
	if len(pvs) != 0 {
		t.Errorf("expected no pivots elected when all variables are frozen/melted, got %v", pvs)
	}
}

func TestLCVESkipsVariablesWithNoOccurrences(t *testing.T) {
	arena, ot := buildTestArena(3, [][]int{
		{1, 2},
	})
	opts := DefaultOptions()
	pvs := LCVE(arena, ot, &opts)
	for _, v := range pvs {
		if v == 3 {
			t.Error("x3 has no occurrences in any clause and should not be elected")
		}
	}
}
