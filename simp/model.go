package simp

import "github.com/sasha-s/go-deadlock"

// ResolvedRecord is one entry of model.resolved (spec.md §3 "Reconstruction
// log"): either a pure/unit witness, (lit, 1), or an eliminated clause with
// its pivot literal swapped to the head, its remaining literals, its
// length, and the witness literal that should be flipped if the clause
// would otherwise go unsatisfied. Design notes §9 asks for a typed sum
// rather than the source's flat u32 array with sentinel trailers; this is
// that sum type, flattened only by Flatten() for serialization.
type ResolvedRecord struct {
	// Lits holds the clause's other literals (pivot excluded) for a
	// Clause record, or is nil for a Unit record.
	Lits []Lit
	// Witness is the literal to flip in the model if every literal in
	// Lits is falsified. For a unit record it is simply the forced
	// literal.
	Witness Lit
}

// ReconstructionLog is model.resolved: an append-only sequence of
// ResolvedRecords produced during BVE, replayed in reverse at
// model-extension time.
type ReconstructionLog struct {
	mu      deadlock.Mutex
	records []ResolvedRecord
}

// AddUnit appends a unit-witness record, per spec.md §3 "(lit, 1)". Safe
// for concurrent use by BVE's per-pivot workers.
func (l *ReconstructionLog) AddUnit(lit Lit) {
	l.mu.Lock()
	l.records = append(l.records, ResolvedRecord{Witness: lit})
	l.mu.Unlock()
}

// AddClause appends an eliminated-clause record. pivot is moved to the
// front implicitly by the witness field; lits should already exclude the
// pivot literal itself (the spec stores the pivot literal first in the
// flat encoding, then the rest, then size, then the witness and a
// sentinel — here Witness plays the role of "pivot literal" directly,
// since in a typed record there is no need for a trailing size/sentinel).
func (l *ReconstructionLog) AddClause(rest []Lit, witness Lit) {
	l.mu.Lock()
	l.records = append(l.records, ResolvedRecord{
		Lits:    append([]Lit(nil), rest...),
		Witness: witness,
	})
	l.mu.Unlock()
}

// Len reports the number of records, used by Reconstruction coverage tests
// (spec.md §8) to confirm every MELTED variable produced at least one.
func (l *ReconstructionLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Flatten renders the log as the flat literal/size encoding spec.md §9
// describes, for callers that must hand it across a non-Go boundary
// (e.g. a DRAT-adjacent tool). Each record becomes: [lits..., witness,
// size] where size counts every entry including the witness, matching the
// source's "previous k-1 entries... the k-th is the pivot witness".
func (l *ReconstructionLog) Flatten() []int32 {
	var out []int32
	for _, r := range l.records {
		for _, lit := range r.Lits {
			out = append(out, int32(lit))
		}
		out = append(out, int32(r.Witness))
		out = append(out, int32(len(r.Lits)+1))
	}
	return out
}

// Extend implements MODEL::extend (spec.md §6): given the final value
// assignment of the reduced variables, replay resolved in reverse. For
// each record, if every literal in Lits is unsatisfied under the current
// extended model, flip the witness's variable in the output. It takes no
// reduced-to-original variable mapping: the records and model share one
// variable numbering.
//
// model is indexed by variable ID (1..MaxVar) and is mutated in place; it
// must already carry the reduced formula's satisfying values for every
// variable that was never eliminated.
func (l *ReconstructionLog) Extend(model []Value) {
	for i := len(l.records) - 1; i >= 0; i-- {
		r := l.records[i]
		satisfied := false
		for _, lit := range r.Lits {
			if valueOfModel(model, lit) == True {
				satisfied = true
				break
			}
		}
		if !satisfied {
			setModelLit(model, r.Witness)
		} else if valueOfModel(model, r.Witness) == Undef {
			// The saved clause is already satisfied, but a melted
			// variable must still end up assigned: give it the value
			// that leaves the witness unflipped, which satisfies every
			// clause of the side that was not saved. A record for the
			// same variable replayed later (lower index) still flips it
			// if its own clause is unsatisfied.
			setModelLit(model, r.Witness.Flip())
		}
	}
}

func valueOfModel(model []Value, lit Lit) Value {
	v := model[lit.Var()]
	if v == Undef {
		return Undef
	}
	if lit.Signed() {
		return v.Flip()
	}
	return v
}

func setModelLit(model []Value, lit Lit) {
	if lit.Signed() {
		model[lit.Var()] = False
	} else {
		model[lit.Var()] = True
	}
}
