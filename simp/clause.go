package simp

import (
	"sort"

	"github.com/sasha-s/go-deadlock"
)

// Status is the lifecycle state of a clause (spec.md §3).
type Status uint8

const (
	Original Status = iota
	Learnt
	Deleted
)

func (s Status) String() string {
	switch s {
	case Original:
		return "ORIGINAL"
	case Learnt:
		return "LEARNT"
	case Deleted:
		return "DELETED"
	default:
		return "UNKNOWN"
	}
}

// ClauseRef indexes into a ClauseArena. It is the only thing occurrence
// lists, IG edges, and reconstruction records hold onto — per design notes
// §9, graph/clause references are indices, not pointers, so cycles are
// harmless.
type ClauseRef int32

const nilRef ClauseRef = -1

// Clause is SCLAUSE from spec.md §3: an ordered, duplicate-free,
// non-tautological sequence of literals with bookkeeping for BVE/BCP/CE.
//
// Literals are kept sorted ascending; Sig is a 32-bit bloom signature used
// for O(1) subsumption pre-filtering. Lock guards Lits/Size/Sig/Status
// mutation under parallel access from BCP, HSE, and BVE workers.
type Clause struct {
	deadlock.Mutex

	Lits   []Lit
	Status Status
	LBD    int32
	Sig    uint32
	Usage  uint8 // 0-3, clamped

	Molten bool // gate-marked, transient within one BVE pass
	Added  bool // produced as a resolvent this pass
}

// NewClause builds a clause from literals, sorting them and computing the
// initial signature. The caller is responsible for having already screened
// out tautologies (a literal and its flip both present) before calling,
// per spec.md §3's clause invariant.
func NewClause(lits []Lit, status Status) *Clause {
	c := &Clause{
		Lits:   append([]Lit(nil), lits...),
		Status: status,
	}
	sort.Slice(c.Lits, func(i, j int) bool { return c.Lits[i] < c.Lits[j] })
	c.recomputeSig()
	return c
}

// Size returns the clause's current literal count. Zero-value receivers are
// treated as size 0 so a deleted/freed clause reads as empty rather than
// panicking.
func (c *Clause) Size() int {
	if c == nil {
		return 0
	}
	return len(c.Lits)
}

func (c *Clause) IsDeleted() bool { return c == nil || c.Status == Deleted }

// recomputeSig folds the bloom signature over the current literals. Must
// be called with the clause lock held whenever literals change.
func (c *Clause) recomputeSig() {
	var sig uint32
	for _, l := range c.Lits {
		sig |= l.sigBit()
	}
	c.Sig = sig
}

// Has reports whether lit currently appears in the clause. O(size); callers
// doing this in a hot loop should prefer the Sig pre-filter first.
func (c *Clause) Has(lit Lit) bool {
	// Lits is sorted, so binary search would work, but clauses are short
	// (subsumption skips anything over HSE_MAX_CL_SIZE) and a linear scan
	// keeps this branch-predictor friendly.
	for _, l := range c.Lits {
		if l == lit {
			return true
		}
	}
	return false
}

// strengthen removes lit from the clause in place, recomputes Sig, and
// returns the new size. Caller holds c.Lock().
func (c *Clause) strengthen(lit Lit) int {
	out := c.Lits[:0]
	for _, l := range c.Lits {
		if l != lit {
			out = append(out, l)
		}
	}
	c.Lits = out
	c.recomputeSig()
	return len(c.Lits)
}

// bumpUsage increments the saturating 0-3 usage counter, used by clause
// deletion policy heuristics upstream of this package.
func (c *Clause) bumpUsage() {
	if c.Usage < 3 {
		c.Usage++
	}
}

// clauseCmpKey orders shorter clauses first, then lexicographically on
// first two literals and the last literal, with Sig as a final tiebreaker.
// This is CNF_CMP_KEY from spec.md §4.2, used by sortOT's partial mode.
func clauseCmpKey(a, b *Clause) bool {
	if a.Size() != b.Size() {
		return a.Size() < b.Size()
	}
	if a.Size() == 0 {
		return a.Sig < b.Sig
	}
	if a.Lits[0] != b.Lits[0] {
		return a.Lits[0] < b.Lits[0]
	}
	if a.Size() > 1 && b.Size() > 1 && a.Lits[1] != b.Lits[1] {
		return a.Lits[1] < b.Lits[1]
	}
	la, lb := a.Lits[a.Size()-1], b.Lits[b.Size()-1]
	if la != lb {
		return la < lb
	}
	return a.Sig < b.Sig
}

// clauseCmpAbs is CNF_CMP_ABS: size then signed literal order, used by
// sortOT's full mode.
func clauseCmpAbs(a, b *Clause) bool {
	if a.Size() != b.Size() {
		return a.Size() < b.Size()
	}
	for i := 0; i < a.Size(); i++ {
		if a.Lits[i] != b.Lits[i] {
			return a.Lits[i] < b.Lits[i]
		}
	}
	return false
}
