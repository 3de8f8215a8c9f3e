package simp

import "sort"

// LCVE elects the candidate pivot variables (PVs) BVE considers this
// round: every ACTIVE variable with at least one occurrence, scored by
// mu_pos*|OT[+v]| + mu_neg*|OT[-v]|
// and sorted ascending so the cheapest eliminations are attempted first
// (spec.md §6 "mu_pos, mu_neg: multipliers used by LCVE scoring";
// lcve_min gates the driver's stopping test, not this selection — an
// empty election is itself the signal sigma.go's termination test reads).
//
// FROZEN and MELTED variables are never elected: a FROZEN variable is
// deliberately untouchable this pass (e.g. a gate clause bailed out mid
// BVE), and a MELTED one no longer appears in any clause.
func LCVE(arena *Arena, ot *OccurTable, opts *Options) []Var {
	type scored struct {
		v     Var
		score float64
	}
	candidates := make([]scored, 0, arena.MaxVar)
	for v := Var(1); v <= arena.MaxVar; v++ {
		if arena.State(v) != Active {
			continue
		}
		pos := ot.Of(NewLit(v, false))
		neg := ot.Of(NewLit(v, true))
		pos.Lock()
		nPos := len(pos.Refs)
		pos.Unlock()
		neg.Lock()
		nNeg := len(neg.Refs)
		neg.Unlock()
		if nPos == 0 && nNeg == 0 {
			continue
		}
		score := opts.MuPos*float64(nPos) + opts.MuNeg*float64(nNeg)
		candidates = append(candidates, scored{v: v, score: score})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score < candidates[j].score
		}
		return candidates[i].v < candidates[j].v
	})
	pvs := make([]Var, len(candidates))
	for i, c := range candidates {
		pvs[i] = c.v
	}
	return pvs
}
