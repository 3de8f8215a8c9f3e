package simp

import "github.com/go-logr/logr"

// Options holds every tunable named in spec.md §6 "Configuration". It
// follows the teacher's DefaultInprocessConfig shape: one flat struct of
// Enable* booleans plus grouped limits, constructed through
// DefaultOptions() rather than requiring every caller to fill in zero
// values by hand.
type Options struct {
	// Kernel enable flags (spec.md §6).
	VarElimEnabled    bool // ve_en
	CEEnabled         bool // ce_en
	HSEEnabled        bool // hse_en
	BCEEnabled        bool // bce_en
	EREEnabled        bool // ere_en
	IGREnabled        bool // igr_en
	HBREnabled        bool // hbr_en
	FailedLitEnabled  bool // fle_en
	VEPlus            bool // ve_plus_en, SPEC_FULL.md supplemented feature
	SigmaLiveEnabled  bool // sigma_live_en
	SigmaEnabled      bool // sigma_en
	IGRRedundantEdges bool // SPEC_FULL.md open question #2, default false

	// Per-list size thresholds beyond which a kernel skips a pivot.
	HSELimit int // hse_limit
	BCELimit int // bce_limit
	ERELimit int // ere_limit

	// HBRMax is the maximum hyper-binary resolutions per IGR call; -1 is
	// unlimited (spec.md §6 hbr_max).
	HBRMax int

	// XORMaxArity bounds the XOR gate size BVE's gate detection considers.
	XORMaxArity int

	// Phases is the maximum number of outer sigma iterations.
	Phases int

	// ShrinkRate is the number of outer iterations between arena
	// compactions (SPEC_FULL.md supplemented feature, ParaFROST's
	// shrink_rate).
	ShrinkRate int

	// Stopping thresholds for the sigma driver's termination test.
	LitsMin   int
	LCVEMin   int
	SigmaMin  int
	MuPos     float64 // mu_pos, LCVE scoring multiplier
	MuNeg     float64 // mu_neg, LCVE scoring multiplier

	// WorkerCount sizes the worker pool (spec.md §6 worker_count).
	WorkerCount int

	// ProfileSimp enables per-phase wall-clock timers (SPEC_FULL.md
	// supplemented feature, logged through Logger rather than printed).
	ProfileSimp bool

	// ProofEnabled/ProofPath configure the DRAT-style proof sink
	// (spec.md §6 proof_en/proof_path). Proof is the sink itself; a
	// caller that sets ProofEnabled without supplying one still runs
	// (writes silently go nowhere) rather than panicking, since opening
	// ProofPath is the search layer's concern (spec.md §1, DIMACS/CLI
	// plumbing is out of scope here).
	ProofEnabled bool
	ProofPath    string
	Proof        ProofSink

	// SCCAlgorithm selects ComputeSCC's implementation: "tarjan" (default)
	// or "uf-scc" (design notes §9 "dynamic dispatch on SCC algorithm").
	SCCAlgorithm string

	// MemoryCapBytes is the projected-allocation cap checkMem enforces
	// (spec.md §4.2/§5 "Memory policy"); 0 means unbounded.
	MemoryCapBytes int64

	// Logger receives structured phase-boundary diagnostics. Defaults to
	// a discard logger when left zero-valued; construct one with
	// core.NewLogger for text output.
	Logger logr.Logger
}

// DefaultOptions returns the engine's default configuration, mirroring the
// teacher's DefaultInprocessConfig(): every kernel enabled except the
// optional/expensive ones, conservative limits, mirroring ParaFROST's
// published defaults where the spec names the same knob.
func DefaultOptions() Options {
	return Options{
		VarElimEnabled:   true,
		CEEnabled:        true,
		HSEEnabled:       true,
		BCEEnabled:       true,
		EREEnabled:       false, // expensive, off by default per ParaFROST
		IGREnabled:       true,
		HBREnabled:       true,
		FailedLitEnabled: true,
		VEPlus:           true,
		SigmaLiveEnabled: false,
		SigmaEnabled:     true,

		HSELimit: 1000, // HSE_MAX_CL_SIZE, spec.md §4.4
		BCELimit: 1000,
		ERELimit: 1000,

		HBRMax:      -1,
		XORMaxArity: 8,

		Phases:     5,
		ShrinkRate: 3,

		LitsMin:  100,
		LCVEMin:  10,
		SigmaMin: 0,
		MuPos:    1.0,
		MuNeg:    1.0,

		WorkerCount: 4,
		ProofPath:   "",

		SCCAlgorithm:   "tarjan",
		MemoryCapBytes: 0,

		Logger: logr.Discard(),
	}
}

// logger returns o.Logger, falling back to a discard logger for an
// Options value built as a struct literal rather than via DefaultOptions.
func (o *Options) logger() logr.Logger {
	if o.Logger == (logr.Logger{}) {
		return logr.Discard()
	}
	return o.Logger
}

// proofSink returns o.Proof, falling back to the no-op sink when unset or
// when ProofEnabled is false.
func (o *Options) proofSink() ProofSink {
	if o.Proof == nil || !o.ProofEnabled {
		return nullProofSink{}
	}
	return o.Proof
}
