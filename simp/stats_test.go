package simp

import (
	"testing"

	"github.com/go-logr/logr"
)

func TestPhaseTimerDisabledRunsWithoutRecording(t *testing.T) {
	pt := NewPhaseTimer(false, logr.Discard())
	ran := false
	pt.Time("phase", func() { ran = true })
	if !ran {
		t.Error("expected the wrapped function to run even when profiling is disabled")
	}
	if len(pt.totals) != 0 {
		t.Error("disabled PhaseTimer should not accumulate any totals")
	}
}

func TestPhaseTimerAccumulatesAndResetsOnReport(t *testing.T) {
	pt := NewPhaseTimer(true, logr.Discard())
	pt.Time("a", func() {})
	pt.Time("b", func() {})
	pt.Time("a", func() {}) // a runs twice; should accumulate under one key

	if len(pt.order) != 2 {
		t.Errorf("expected 2 distinct phase names recorded in order, got %d (%v)", len(pt.order), pt.order)
	}
	if _, ok := pt.totals["a"]; !ok {
		t.Error("expected phase \"a\" to have an accumulated total")
	}

	pt.Report(0)
	if len(pt.totals) != 0 || pt.order != nil {
		t.Error("Report should reset the accumulator for the next round")
	}
}
