package simp

import (
	"time"

	"github.com/go-logr/logr"
)

// PhaseTimer accumulates per-phase wall-clock durations when
// Options.ProfileSimp is set (SPEC_FULL.md supplemented feature, from
// ParaFROST's pfsimp.cpp per-kernel timing). Unlike the source, which
// prints a breakdown at the end of the round, this logs through logr per
// the ambient-stack rule (spec.md §1 marks colored/ad-hoc console output
// out of scope for the core).
type PhaseTimer struct {
	enabled bool
	log     logr.Logger
	totals  map[string]time.Duration
	order   []string
}

func NewPhaseTimer(enabled bool, log logr.Logger) *PhaseTimer {
	return &PhaseTimer{enabled: enabled, log: log, totals: make(map[string]time.Duration)}
}

// Time runs fn, attributing its wall-clock duration to name. A no-op
// wrapper when profiling is disabled, so call sites don't need to branch.
func (pt *PhaseTimer) Time(name string, fn func()) {
	if !pt.enabled {
		fn()
		return
	}
	start := time.Now()
	fn()
	elapsed := time.Since(start)
	if _, seen := pt.totals[name]; !seen {
		pt.order = append(pt.order, name)
	}
	pt.totals[name] += elapsed
}

// Report logs the accumulated per-phase totals, in first-seen order, and
// resets the accumulator for the next outer round.
func (pt *PhaseTimer) Report(round int) {
	if !pt.enabled {
		return
	}
	for _, name := range pt.order {
		pt.log.Info("phase timing", "round", round, "phase", name, "elapsed", pt.totals[name].String())
	}
	pt.totals = make(map[string]time.Duration)
	pt.order = nil
}
