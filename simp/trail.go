package simp

import "github.com/sasha-s/go-deadlock"

// Value is a variable's truth value (spec.md §3 "Assignment state (SP)").
type Value int8

const (
	Undef Value = iota
	True
	False
)

func (v Value) Flip() Value {
	switch v {
	case True:
		return False
	case False:
		return True
	default:
		return Undef
	}
}

// Trail is SP: per-variable value/level/reason/saved-phase, plus the
// global assignment sequence and its propagated watermark. The coordinator
// lock (embedded Mutex) guards every field; BCP and IGR enqueue through
// Trail.push under it, per spec.md §5 "Atomicity".
type Trail struct {
	deadlock.Mutex

	value  []Value // indexed by Var
	level  []int32
	reason []ClauseRef
	phase  []Value // saved phase for future restarts, not used by simp itself

	lits       []Lit // assignment order
	propagated int   // next untried index
}

func NewTrail(maxVar Var) *Trail {
	n := int(maxVar) + 1
	t := &Trail{
		value:  make([]Value, n),
		level:  make([]int32, n),
		reason: make([]ClauseRef, n),
		phase:  make([]Value, n),
	}
	for i := range t.reason {
		t.reason[i] = nilRef
	}
	return t
}

// ValueOf returns the current truth value of lit given its variable's
// assignment (Undef if unassigned).
func (t *Trail) ValueOf(lit Lit) Value {
	v := t.value[lit.Var()]
	if v == Undef {
		return Undef
	}
	if lit.Signed() {
		return v.Flip()
	}
	return v
}

// push assigns lit true at the given level with the given reason clause,
// appending it to the trail. Caller holds t.Lock(). Returns false if lit's
// variable was already assigned to a conflicting value.
func (t *Trail) push(lit Lit, level int32, reason ClauseRef) bool {
	want := True
	if lit.Signed() {
		want = False
	}
	v := lit.Var()
	if t.value[v] != Undef {
		return t.value[v] == want
	}
	t.value[v] = want
	t.level[v] = level
	t.reason[v] = reason
	t.phase[v] = want
	t.lits = append(t.lits, lit)
	return true
}

// Len reports the number of assigned literals.
func (t *Trail) Len() int { return len(t.lits) }

// Pending reports whether there is work left for prop() to drain.
func (t *Trail) Pending() bool { return t.propagated < len(t.lits) }

// At returns the literal at trail position i.
func (t *Trail) At(i int) Lit { return t.lits[i] }

// Reset clears the trail. The sigma driver does not call it: rounds and
// SimplifyLive calls keep the live assignment.
func (t *Trail) Reset() {
	for i := range t.value {
		t.value[i] = Undef
		t.reason[i] = nilRef
		t.level[i] = 0
	}
	t.lits = t.lits[:0]
	t.propagated = 0
}
