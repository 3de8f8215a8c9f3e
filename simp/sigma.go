package simp

import (
	"github.com/segmentio/ksuid"

	"github.com/xDarkicex/cnfsimp/core"
)

// Input is the CNF database handed in from the search layer (spec.md §6
// "Input: CNF database"): a flat list of clauses over variables
// 1..MaxVar. The sigma driver owns its own Arena/OccurTable built from
// this; it never mutates the caller's slices.
type Input struct {
	MaxVar  Var
	Clauses [][]Lit
}

// Result is what newBeginning hands back to the search layer (spec.md §6
// "Output: reduced CNF + reconstruction log"): the kept clauses plus the
// reconstruction log, replayed separately by (*ReconstructionLog).Extend.
type Result struct {
	Exit    ExitCode
	Clauses [][]Lit
	Log     *ReconstructionLog
}

// Sigma is the outer driver state (spec.md §2 "Sigma driver"). A one-shot
// caller uses the package-level Simplify helper; a caller that wants to
// rerun sigma between search restarts without rebuilding the arena from
// scratch each time (ParaFROST's sigma_live_en) keeps a *Sigma across
// calls and uses SimplifyLive.
type Sigma struct {
	opts  Options
	pool  *Pool
	arena *Arena
	ot    *OccurTable
	trail *Trail
	state *atomicState
	log   *ReconstructionLog
	timer *PhaseTimer

	round int
}

// NewSigma builds a live sigma session from an initial CNF, per
// spec.md §6 "sigma_live_en". Close must be called when done to stop the
// worker pool.
func NewSigma(opts Options, in Input) *Sigma {
	arena := NewArena(in.MaxVar)
	arena.MaxVar = in.MaxVar
	for _, lits := range in.Clauses {
		c := NewClause(lits, Original)
		arena.AddClause(c)
	}
	arena.NOrgCls = len(in.Clauses)
	for _, c := range in.Clauses {
		arena.NOrgLit += len(c)
	}

	s := &Sigma{
		opts:  opts,
		pool:  NewPool(opts.WorkerCount),
		arena: arena,
		ot:    NewOccurTable(in.MaxVar),
		trail: NewTrail(in.MaxVar),
		state: newAtomicState(),
		log:   &ReconstructionLog{},
		timer: NewPhaseTimer(opts.ProfileSimp, opts.logger()),
	}
	return s
}

// Close stops the underlying worker pool. Safe to call once.
func (s *Sigma) Close() { s.pool.Close() }

// Simplify runs a one-shot simplification pass per spec.md §6: builds a
// fresh Sigma, runs Run's outer loop until the termination test fires, and returns
// the reduced CNF plus reconstruction log.
func Simplify(opts Options, in Input) (*Result, error) {
	s := NewSigma(opts, in)
	defer s.Close()
	return s.Run()
}

// SimplifyLive reruns sigma's phases against the session's live arena/OT,
// reusing state across calls instead of rebuilding from scratch
// (SPEC_FULL.md "sigma_live_en"). The caller is responsible for feeding
// any newly learnt clauses into the session via AddLearntClause before
// calling, mirroring ParaFROST's reuse of the live trail between
// search restarts.
func (s *Sigma) SimplifyLive() (*Result, error) {
	return s.Run()
}

// AddLearntClause injects a clause discovered by the outer CDCL search
// into the live session, for SimplifyLive callers (spec.md §6's
// `learnts`, held "as references into the search-layer clause manager").
func (s *Sigma) AddLearntClause(lits []Lit) {
	c := NewClause(lits, Learnt)
	s.arena.AddClause(c)
}

// Run executes the sigma outer loop: createOT -> seed units -> BCP -> IGR
// -> reduceOT -> sortOT (full) -> LCVE -> CE (HSE + BCE) -> sortOT
// (partial) -> BVE -> [BCE alone] -> [ERE] -> shrink every ShrinkRate
// rounds -> count & stop test. There is no separate resize step, CE runs
// over the pivots LCVE elected, and HSE runs only inside CE.
func (s *Sigma) Run() (*Result, error) {
	prop := NewPropagator(s.state)

	for s.round = 0; s.opts.Phases <= 0 || s.round < s.opts.Phases; s.round++ {
		if s.state.get() == Unsat {
			break
		}
		roundID := ksuid.New().String()
		log := s.opts.logger().WithValues("round", s.round, "correlation_id", roundID)

		s.timer.Time("createOT", func() { createOT(s.pool, s.arena, s.ot, true) })

		if !seedUnitClauses(s.trail, s.arena) {
			s.state.set(Unsat)
			break
		}

		var forced int
		s.timer.Time("bcp", func() {
			sink := &binaryCollector{}
			forced = prop.Prop(s.pool, s.arena, s.ot, s.trail, sink)
		})
		if forced < 0 {
			s.state.set(Unsat)
			break
		}
		log.V(1).Info("bcp done", "forced", forced)

		if s.opts.IGREnabled {
			s.timer.Time("igr", func() { IGR(s.pool, s.arena, s.ot, s.trail, s.state, &s.opts) })
			if s.state.get() == Unsat {
				break
			}
		}

		s.timer.Time("reduceOT", func() { reduceOT(s.pool, s.arena, s.ot) })
		s.timer.Time("sortOT.full", func() { sortOT(s.pool, s.arena, s.ot, false, nil) })

		pvs := LCVE(s.arena, s.ot, &s.opts)
		log.V(1).Info("lcve elected pivots", "count", len(pvs))
		if len(pvs) < s.opts.LCVEMin {
			s.timer.Report(s.round)
			break
		}

		if s.opts.CEEnabled {
			s.timer.Time("ce", func() { CE(s.pool, s.arena, s.ot, pvs, &s.opts) })
		}

		s.timer.Time("sortOT.partial", func() { sortOT(s.pool, s.arena, s.ot, true, pvs) })

		var melted int
		if s.opts.VarElimEnabled {
			s.timer.Time("bve", func() { melted = BVE(s.pool, s.arena, s.ot, s.log, pvs, &s.opts, s.state) })
		}
		if s.state.get() == Unsat {
			s.timer.Report(s.round)
			break
		}
		if s.opts.BCEEnabled && !s.opts.CEEnabled {
			// CE already ran BCE fused with HSE when enabled; this covers
			// the case where only BCE was requested standalone.
			s.timer.Time("bce", func() { BCE(s.pool, s.arena, s.ot, pvs, s.opts.BCELimit) })
		}
		if s.opts.EREEnabled {
			s.timer.Time("ere", func() { ERE(s.pool, s.arena, s.ot, pvs, s.opts.ERELimit) })
		}
		log.V(1).Info("bve done", "melted", melted)

		if s.opts.ShrinkRate > 0 && s.round > 0 && s.round%s.opts.ShrinkRate == 0 {
			if err := s.checkMem(); err != nil {
				s.timer.Report(s.round)
				return nil, err
			}
			s.arena.shrinkSimp(s.ot)
		}

		remaining := s.countRemaining()
		s.timer.Report(s.round)
		if remaining <= s.opts.LitsMin || melted == 0 {
			break
		}
	}

	return s.newBeginning()
}

// countRemaining sums the literal count of every non-deleted clause,
// spec.md §6 "lits_min... stopping thresholds".
func (s *Sigma) countRemaining() int {
	total := 0
	for _, c := range s.arena.Clauses {
		if !c.IsDeleted() {
			total += c.Size()
		}
	}
	return total
}

// checkMem is the probe of spec.md §4.2/§5: compares the arena's current
// footprint against Options.MemoryCapBytes. A cap of 0 means unbounded.
func (s *Sigma) checkMem() error {
	if s.opts.MemoryCapBytes <= 0 {
		return nil
	}
	projected := int64(0)
	for _, c := range s.arena.Clauses {
		projected += int64(24 + c.Size()*4) // rough per-clause footprint
	}
	if projected > s.opts.MemoryCapBytes {
		return core.WrapSimpError("sigma", "checkMem", "projected arena size exceeds cap", core.ErrMemoryExceeded)
	}
	return nil
}

// newBeginning is the final handoff of spec.md §2/§6: report UNSAT/SAT
// if conclusive, otherwise materialize every surviving clause (sorted by
// CNF_CMP_KEY for a stable, if arbitrary-within-ties, order) and hand back
// the reconstruction log alongside.
func (s *Sigma) newBeginning() (*Result, error) {
	if s.state.get() == Unsat {
		return &Result{Exit: ExitUnsat, Log: s.log}, nil
	}

	kept := make([]*Clause, 0, len(s.arena.Clauses))
	for _, c := range s.arena.Clauses {
		if !c.IsDeleted() {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		s.state.set(Sat)
		return &Result{Exit: ExitSat, Log: s.log}, nil
	}

	sortClausesStable(kept)
	out := make([][]Lit, len(kept))
	for i, c := range kept {
		out[i] = append([]Lit(nil), c.Lits...)
	}
	return &Result{Exit: ExitUnsolved, Clauses: out, Log: s.log}, nil
}

// seedUnitClauses enqueues every remaining non-deleted unit clause's
// literal onto the trail before BCP runs, per spec.md §8 Scenario 2: a
// unit clause present in the input (or produced by a prior round's
// strengthening but never assigned) must actually force its literal
// instead of leaving Prop to drain an empty trail. Also catches the
// boundary case of an empty clause in the input, which is an immediate
// conflict. Returns false on a derived conflict, which the caller treats
// as UNSAT.
func seedUnitClauses(trail *Trail, arena *Arena) bool {
	trail.Lock()
	defer trail.Unlock()
	for _, c := range arena.Clauses {
		if c.IsDeleted() {
			continue
		}
		switch c.Size() {
		case 0:
			return false
		case 1:
			if !enqueueUnit(trail, c.Lits[0], nilRef) {
				return false
			}
		}
	}
	return true
}

func sortClausesStable(cs []*Clause) {
	// Insertion sort is fine here: this runs once, single-threaded, over
	// the already-mostly-sorted survivor set.
	for i := 1; i < len(cs); i++ {
		for j := i; j > 0 && clauseCmpKey(cs[j], cs[j-1]); j-- {
			cs[j-1], cs[j] = cs[j], cs[j-1]
		}
	}
}
