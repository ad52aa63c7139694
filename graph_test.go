// Copyright (c) 2026 The mdd Authors
//
// MIT License

package mdd

import (
	"strings"
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
)

// liftedGraphFixture builds the diagram used by the export tests:
// x in [1..5], y in {a, b}, output in [-1, 0, 1], and the formula
// ite(x[0] & y[0], res[1], res[2]).
func liftedGraphFixture(t *testing.T) *DecisionDiagram {
	t.Helper()
	x, _ := ToVar([]int{1, 2, 3, 4, 5}, "x")
	y, _ := ToVar([]string{"a", "b"}, "y")
	out, _ := ToVar([]int{-1, 0, 1}, "res")
	ifc, err := NewInterface([]*Variable{x, y}, out)
	if err != nil {
		t.Fatalf("NewInterface: %s", err)
	}
	m, err := NewManager(ifc)
	if err != nil {
		t.Fatalf("NewManager: %s", err)
	}
	f, err := m.Lift(Ite(And(x.Bit(0), y.Bit(0)), out.Bit(1), out.Bit(2)))
	if err != nil {
		t.Fatalf("Lift: %s", err)
	}
	return f
}

// graphIndex returns the nodes keyed by id and the outgoing edges of each
// node.
func graphIndex(g *Graph) (map[int]GraphNode, map[int][]GraphEdge) {
	nodes := make(map[int]GraphNode)
	for _, n := range g.Nodes {
		nodes[n.ID] = n
	}
	succ := make(map[int][]GraphEdge)
	for _, e := range g.Edges {
		succ[e.From] = append(succ[e.From], e)
	}
	return nodes, succ
}

func TestToGraph(t *testing.T) {
	f := liftedGraphFixture(t)
	g, err := ToGraph(f)
	if err != nil {
		t.Fatalf("ToGraph: %s", err)
	}
	if len(g.Nodes) != 5 {
		t.Fatalf("expected 5 nodes, actual %d", len(g.Nodes))
	}
	if len(g.Edges) != 5 {
		t.Fatalf("expected 5 edges, actual %d", len(g.Edges))
	}

	labels := make(map[any]int)
	for _, n := range g.Nodes {
		labels[n.Label]++
	}
	if labels["x"] != 1 || labels["y"] != 2 || labels[0] != 1 || labels[1] != 1 {
		t.Errorf("unexpected node labels: %v", labels)
	}

	nodes, succ := graphIndex(g)
	root := g.Nodes[0]
	if root.Label != "x" {
		t.Fatalf("root: expected the x decision, actual %v", root.Label)
	}
	if len(succ[root.ID]) != 2 {
		t.Fatalf("root: expected 2 outgoing edges, actual %d", len(succ[root.ID]))
	}
	for _, e := range succ[root.ID] {
		if e.Var != "x" {
			t.Errorf("root edge: expected variable x, actual %s", e.Var)
		}
		if nodes[e.To].Label != "y" {
			t.Errorf("root edge: expected a y destination, actual %v", nodes[e.To].Label)
		}
	}
	for _, n := range g.Nodes {
		if n.Label == 0 || n.Label == 1 {
			if len(succ[n.ID]) != 0 {
				t.Errorf("leaf %v has outgoing edges", n.Label)
			}
		}
	}
}

func TestToGraphSymbolicLabels(t *testing.T) {
	f := liftedGraphFixture(t)
	g, err := ToGraph(f, Symbolic())
	if err != nil {
		t.Fatalf("ToGraph: %s", err)
	}
	_, succ := graphIndex(g)
	root := g.Nodes[0]

	// The x=1 guard is a single minterm and renders exactly.
	found := false
	for _, e := range succ[root.ID] {
		label, ok := e.Label.(string)
		if !ok {
			t.Fatalf("symbolic label: expected a string, actual %T", e.Label)
		}
		if label == "x[0] & !x[1] & !x[2] & !x[3] & !x[4]" {
			found = true
			// that branch of the ite still discriminates on y
			if len(succ[e.To]) != 2 {
				t.Errorf("x=1 destination: expected 2 outgoing edges, actual %d", len(succ[e.To]))
			}
		}
	}
	if !found {
		t.Errorf("missing the x=1 minterm guard on the root edges")
	}
}

func TestToGraphConcreteLabels(t *testing.T) {
	f := liftedGraphFixture(t)
	g, err := ToGraph(f, Concrete())
	if err != nil {
		t.Fatalf("ToGraph: %s", err)
	}
	nodes, succ := graphIndex(g)

	// Every decision node's edge sets partition its domain.
	for _, n := range g.Nodes {
		name, ok := n.Label.(string)
		if !ok {
			continue
		}
		v, err := f.Interface().Var(name)
		if err != nil {
			t.Fatalf("Var(%s): %s", name, err)
		}
		union := mapset.NewSet[any]()
		for _, e := range succ[n.ID] {
			set, ok := e.Label.(mapset.Set[any])
			if !ok {
				t.Fatalf("concrete label: expected a set, actual %T", e.Label)
			}
			if union.Intersect(set).Cardinality() != 0 {
				t.Errorf("edge sets of %s overlap", name)
			}
			union = union.Union(set)
		}
		if !union.Equal(mapset.NewSet(v.Domain()...)) {
			t.Errorf("edge sets of %s do not cover its domain: %v", name, union)
		}
	}

	// The x=1 branch leads to the y decision that still discriminates.
	root := g.Nodes[0]
	for _, e := range succ[root.ID] {
		set := e.Label.(mapset.Set[any])
		dest := nodes[e.To]
		switch {
		case set.Equal(mapset.NewSet[any](1)):
			if len(succ[dest.ID]) != 2 {
				t.Errorf("x=1 destination: expected 2 outgoing edges, actual %d", len(succ[dest.ID]))
			}
			for _, ye := range succ[dest.ID] {
				ys := ye.Label.(mapset.Set[any])
				leaf := nodes[ye.To].Label
				if ys.Equal(mapset.NewSet[any]("a")) && leaf != 0 {
					t.Errorf("x=1, y=a: expected leaf 0, actual %v", leaf)
				}
				if ys.Equal(mapset.NewSet[any]("b")) && leaf != 1 {
					t.Errorf("x=1, y=b: expected leaf 1, actual %v", leaf)
				}
			}
		case set.Equal(mapset.NewSet[any](2, 3, 4, 5)):
			if len(succ[dest.ID]) != 1 {
				t.Errorf("x>1 destination: expected 1 outgoing edge, actual %d", len(succ[dest.ID]))
			}
			for _, ye := range succ[dest.ID] {
				ys := ye.Label.(mapset.Set[any])
				if !ys.Equal(mapset.NewSet[any]("a", "b")) {
					t.Errorf("x>1 branch: expected the full y domain, actual %v", ys)
				}
				if nodes[ye.To].Label != 1 {
					t.Errorf("x>1 branch: expected leaf 1, actual %v", nodes[ye.To].Label)
				}
			}
		default:
			t.Errorf("unexpected root edge set %v", set)
		}
	}
}

func TestToGraphWithOrder(t *testing.T) {
	f := liftedGraphFixture(t)
	g, err := ToGraph(f, WithOrder("y", "x"))
	if err != nil {
		t.Fatalf("ToGraph: %s", err)
	}
	if g.Nodes[0].Label != "y" {
		t.Errorf("root after reordering: expected y, actual %v", g.Nodes[0].Label)
	}
	if len(g.Nodes) != 5 || len(g.Edges) != 5 {
		t.Errorf("expected 5 nodes and 5 edges, actual %d and %d", len(g.Nodes), len(g.Edges))
	}
}

func TestToGraphKeepNodeIDs(t *testing.T) {
	f := liftedGraphFixture(t)
	g, err := ToGraph(f, KeepNodeIDs())
	if err != nil {
		t.Fatalf("ToGraph: %s", err)
	}
	seen := mapset.NewSet[int]()
	for _, n := range g.Nodes {
		if n.ID < 2 {
			t.Errorf("raw id %d collides with a terminal", n.ID)
		}
		if seen.Contains(n.ID) {
			t.Errorf("duplicate raw id %d", n.ID)
		}
		seen.Add(n.ID)
	}
}

func TestGraphDot(t *testing.T) {
	x, _ := ToVar([]int{1, 2}, "x")
	out, _ := ToVar([]int{-1, 0}, "res")
	ifc, _ := NewInterface([]*Variable{x}, out)
	m, _ := NewManager(ifc)
	f, _ := m.Constantly(-1)
	f, err := f.Override(x.Eq(2), 0)
	if err != nil {
		t.Fatalf("Override: %s", err)
	}

	g, err := ToGraph(f, Concrete())
	if err != nil {
		t.Fatalf("ToGraph: %s", err)
	}
	if len(g.Nodes) != 3 || len(g.Edges) != 2 {
		t.Fatalf("expected 3 nodes and 2 edges, actual %d and %d", len(g.Nodes), len(g.Edges))
	}

	dot := g.Dot()
	if !strings.HasPrefix(dot, "digraph mdd {\n") || !strings.HasSuffix(dot, "}\n") {
		t.Errorf("malformed DOT output:\n%s", dot)
	}
	for _, want := range []string{`[label="x"]`, `[label="-1"]`, `[label="0"]`, `[label="{1}"]`, `[label="{2}"]`} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT output missing %s:\n%s", want, dot)
		}
	}

	// The rendition is deterministic across exports.
	g2, err := ToGraph(f, Concrete())
	if err != nil {
		t.Fatalf("ToGraph: %s", err)
	}
	if g2.Dot() != dot {
		t.Errorf("DOT output is not deterministic")
	}
}
