// Package simp implements the parallel CNF simplifier described by
// spec.md: a work-pool-driven pipeline of bounded unit propagation,
// implication-graph reasoning, clause elimination, and bounded variable
// elimination over a shared clause database with fine-grained locking.
//
// The package-level entry points are Simplify (one-shot) and
// (*Sigma).SimplifyLive (rerun between search restarts, reusing state).
// CLI parsing, DIMACS reading, and the CDCL search loop itself are out of
// scope (spec.md §1); callers hand in an Input and get back a Result plus
// a ReconstructionLog.
package simp
