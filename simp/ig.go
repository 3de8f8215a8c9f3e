package simp

import (
	"sort"

	"github.com/sasha-s/go-deadlock"
)

// Edge is a (literal, clauseRef) pair: an IG parent/child entry, per
// design notes §9 "edges holding (literalIndex, clauseIndex) pairs".
type Edge struct {
	Lit Lit
	Ref ClauseRef
}

// nodeStatus bits, spec.md §3 "three status bits VISITED | EXPLORED |
// REDUCED".
type nodeStatus uint8

const (
	stVisited nodeStatus = 1 << iota
	stExplored
	stReduced
)

// IGNode is IG[lit]: one vertex of the binary implication graph. Descendants
// is a sorted set of literals reachable from this node, merged lazily
// during the DFS exploration phase.
//
// Lock is a reader/writer lock: lockRead (shared) while inspecting
// parents/children/descendants/status, lock (exclusive) while mutating
// them. The concurrency discipline in spec.md §4.6 forbids holding two
// node locks in a cycle-producing order; the implemented order is always
// "this node, then each child's read lock in turn, releasing before the
// next" (see dfs.go).
type IGNode struct {
	deadlock.RWMutex

	Parents     []Edge
	Children    []Edge
	Descendants []Lit // sorted, deduplicated

	status nodeStatus

	// reduced holds the SCC representative this node was folded into, so
	// dfs.go's "follow the rewrite chain" step has somewhere to look.
	reduced Lit
}

func (n *IGNode) has(bit nodeStatus) bool   { return n.status&bit != 0 }
func (n *IGNode) set(bit nodeStatus)        { n.status |= bit }
func (n *IGNode) clearBit(bit nodeStatus)   { n.status &^= bit }

// sortEdges sorts a node's edge slices after insertion, per spec.md §4.6
// Phase A "Each node's edge vectors are sorted after insertion."
func sortEdges(edges []Edge) {
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Lit != edges[j].Lit {
			return edges[i].Lit < edges[j].Lit
		}
		return edges[i].Ref < edges[j].Ref
	})
}

// mergeLits merges b into a, keeping the result sorted and deduplicated.
func mergeLits(a []Lit, b []Lit) []Lit {
	if len(b) == 0 {
		return a
	}
	seen := make(map[Lit]struct{}, len(a)+len(b))
	for _, l := range a {
		seen[l] = struct{}{}
	}
	grew := false
	for _, l := range b {
		if _, ok := seen[l]; !ok {
			seen[l] = struct{}{}
			a = append(a, l)
			grew = true
		}
	}
	if grew {
		sort.Slice(a, func(i, j int) bool { return a[i] < a[j] })
	}
	return a
}

func containsLit(sorted []Lit, l Lit) bool {
	i := sort.Search(len(sorted), func(i int) bool { return sorted[i] >= l })
	return i < len(sorted) && sorted[i] == l
}

// Graph is the full binary implication graph, one IGNode per literal.
type Graph struct {
	nodes []IGNode // index by Lit
}

func NewGraph(maxVar Var) *Graph {
	return &Graph{nodes: make([]IGNode, 2*(int(maxVar)+1))}
}

func (g *Graph) Node(lit Lit) *IGNode { return &g.nodes[lit] }

func (g *Graph) Len() int { return len(g.nodes) }

// BuildIG is Phase A (spec.md §4.6): for every non-deleted binary clause
// c=(l1,l2), append (¬l2,c) to IG[l1].parents and (¬l1,c) to IG[l2].parents,
// with symmetric entries in the children of the flipped endpoints.
func BuildIG(pool *Pool, arena *Arena, g *Graph) {
	pool.doWorkForEach(0, len(arena.Clauses), 2048, func(i int) {
		c := arena.Clauses[i]
		if c.IsDeleted() || c.Size() != 2 {
			return
		}
		ref := ClauseRef(i)
		l1, l2 := c.Lits[0], c.Lits[1]
		addBinaryEdge(g, l1, l2, ref)
	})
	pool.doWorkForEach(0, len(g.nodes), 4096, func(i int) {
		n := &g.nodes[i]
		n.Lock()
		sortEdges(n.Parents)
		sortEdges(n.Children)
		n.Unlock()
	})
}

// addBinaryEdge wires one binary clause (l1 v l2) into the graph: ¬l1
// implies l2 and ¬l2 implies l1.
func addBinaryEdge(g *Graph, l1, l2 Lit, ref ClauseRef) {
	n1 := g.Node(l2)
	n1.Lock()
	n1.Parents = append(n1.Parents, Edge{Lit: l1.Flip(), Ref: ref})
	n1.Unlock()

	n2 := g.Node(l1)
	n2.Lock()
	n2.Parents = append(n2.Parents, Edge{Lit: l2.Flip(), Ref: ref})
	n2.Unlock()

	nc1 := g.Node(l1.Flip())
	nc1.Lock()
	nc1.Children = append(nc1.Children, Edge{Lit: l2, Ref: ref})
	nc1.Unlock()

	nc2 := g.Node(l2.Flip())
	nc2.Lock()
	nc2.Children = append(nc2.Children, Edge{Lit: l1, Ref: ref})
	nc2.Unlock()
}
