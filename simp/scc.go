package simp

import (
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// ComputeSCC is the pluggable algorithm of spec.md §4.6 Phase B / design
// notes §9: given the current implication graph, return a representative
// literal for every literal's strongly connected component. Exactly one
// implementation is selected per IGR call (dynamic dispatch on SCC
// algorithm is the one place in this engine design notes call for it).
type ComputeSCC interface {
	Compute(g *Graph) []Lit
	Name() string
}

// TarjanSCC delegates to gonum.org/v1/gonum/graph/topo.TarjanSCC, a real
// third-party graph library present in the retrieval pack (see
// SPEC_FULL.md "domain stack"). Each literal is a gonum graph.Node with
// ID() == int64(lit); edges are the graph's Children lists.
type TarjanSCC struct{}

func (TarjanSCC) Name() string { return "tarjan" }

func (TarjanSCC) Compute(g *Graph) []Lit {
	dg := simple.NewDirectedGraph()
	for lit := Lit(0); int(lit) < g.Len(); lit++ {
		dg.AddNode(simple.Node(int64(lit)))
	}
	for lit := Lit(0); int(lit) < g.Len(); lit++ {
		n := g.Node(lit)
		n.RLock()
		children := append([]Edge(nil), n.Children...)
		n.RUnlock()
		for _, e := range children {
			if !dg.HasEdgeFromTo(int64(lit), int64(e.Lit)) {
				dg.SetEdge(simple.Edge{F: simple.Node(int64(lit)), T: simple.Node(int64(e.Lit))})
			}
		}
	}

	components := topo.TarjanSCC(dg)
	scc := make([]Lit, g.Len())
	for i := range scc {
		scc[i] = Lit(i)
	}
	for _, comp := range components {
		if len(comp) < 2 {
			continue
		}
		rep := repOf(comp)
		for _, node := range comp {
			scc[litOfNode(node)] = rep
		}
	}
	return scc
}

func litOfNode(n graph.Node) Lit { return Lit(n.ID()) }

func repOf(comp []graph.Node) Lit {
	rep := litOfNode(comp[0])
	for _, n := range comp[1:] {
		if l := litOfNode(n); l < rep {
			rep = l
		}
	}
	return rep
}

// UFSCC is a union-find fixed-point approximation tailored to the sparse,
// mostly-small-chain SCCs that arise in CNF binary implication graphs: it
// repeatedly unions any pair of literals connected by edges in both
// directions (u->v and v->u), then re-scans using the updated
// representatives until no new union happens. This converges to the same
// partition as Tarjan only on graphs whose cycles contract to such
// two-way pairs as unions proceed; it is not a general-purpose SCC
// algorithm (a cycle such as a->b->c->a with no pair of edges in both
// directions is never unioned), which is why it stays an optional
// alternative rather than the default.
type UFSCC struct{}

func (UFSCC) Name() string { return "uf-scc" }

func (UFSCC) Compute(g *Graph) []Lit {
	n := g.Len()
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	union := func(a, b int) {
		ra, rb := find(a), find(b)
		if ra == rb {
			return
		}
		if ra < rb {
			parent[rb] = ra
		} else {
			parent[ra] = rb
		}
	}

	adj := make([][]int, n)
	for lit := 0; lit < n; lit++ {
		node := g.Node(Lit(lit))
		node.RLock()
		for _, e := range node.Children {
			adj[lit] = append(adj[lit], int(e.Lit))
		}
		node.RUnlock()
	}

	changed := true
	for changed {
		changed = false
		for u := 0; u < n; u++ {
			for _, v := range adj[u] {
				if find(u) == find(v) {
					continue
				}
				if hasEdge(adj, v, u) {
					union(u, v)
					changed = true
				}
			}
		}
	}

	scc := make([]Lit, n)
	for i := range scc {
		scc[i] = Lit(find(i))
	}
	return scc
}

func hasEdge(adj [][]int, from, to int) bool {
	for _, v := range adj[from] {
		if v == to {
			return true
		}
	}
	return false
}
