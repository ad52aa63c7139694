// Copyright (c) 2026 The mdd Authors
//
// MIT License

package mdd

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"

	"github.com/dalzilio/rudd"
	mapset "github.com/deckarep/golang-set/v2"
)

// Graph is the variable-level rendition of a DecisionDiagram: nodes are
// decision points labeled with a variable name, or leaves labeled with a
// decoded output value; edges carry a guard over the source variable's bits.
// A Graph is built fresh by ToGraph and never mutated afterwards.
type Graph struct {
	ifc   *Interface
	Nodes []GraphNode
	Edges []GraphEdge
}

// GraphNode is one vertex of the exported graph. Label is the source
// variable's name (string) for decision nodes and the decoded output value
// for leaves.
type GraphNode struct {
	ID    int
	Label any
}

// GraphEdge is one macro-edge of the exported graph, contracted from a run
// of bit-level decisions inside the source variable's block. Guard is the
// substrate node for the guard, conjoined with the source variable's
// validity predicate. Label is the guard rendered for the selected mode: a
// Boolean expression string in symbolic mode, a set of domain values
// (mapset.Set[any]) in concrete mode.
type GraphEdge struct {
	From  int
	To    int
	Var   string
	Guard rudd.Node
	Label any
}

// ************************************************************

// graphconfigs stores the values of the configurable parameters of ToGraph.
type graphconfigs struct {
	concrete bool
	keepids  bool
	order    []string
}

// GraphOption is a configuration option for ToGraph.
type GraphOption func(*graphconfigs)

// Symbolic is a configuration option (function) selecting symbolic edge
// labels: each edge carries its guard as a Boolean expression over the
// source variable's bits. This is the default.
func Symbolic() GraphOption {
	return func(c *graphconfigs) { c.concrete = false }
}

// Concrete is a configuration option (function) selecting concrete edge
// labels: each edge carries the explicit set of source-domain values whose
// encodings satisfy its guard.
func Concrete() GraphOption {
	return func(c *graphconfigs) { c.concrete = true }
}

// WithOrder is a configuration option (function) imposing an explicit
// variable order before the traversal, as in DecisionDiagram.Order.
func WithOrder(names ...string) GraphOption {
	return func(c *graphconfigs) { c.order = names }
}

// KeepNodeIDs is a configuration option (function) that preserves the raw
// substrate node identities in the exported graph instead of remapping them
// to small sequential integers.
func KeepNodeIDs() GraphOption {
	return func(c *graphconfigs) { c.keepids = true }
}

// ************************************************************

// ToGraph contracts a fully specified DecisionDiagram into a variable-level
// labeled graph. The traversal first establishes a canonical bit order (the
// explicit WithOrder one, or the default order unless automatic ordering was
// turned off), then walks the shared DAG depth-first, contracting each run
// of same-variable decisions into one edge per distinct destination; guards
// of paths meeting at the same destination are merged with OR.
func ToGraph(d *DecisionDiagram, opts ...GraphOption) (*Graph, error) {
	cfg := &graphconfigs{}
	for _, opt := range opts {
		opt(cfg)
	}

	var err error
	switch {
	case len(cfg.order) > 0:
		d, err = d.Order(cfg.order...)
	case d.mgr.auto:
		d, err = d.Order()
	}
	if err != nil {
		return nil, err
	}

	m := d.mgr
	root := nodeID(d.node)
	if root == 0 {
		return nil, &InvalidAssignmentError{Reason: "cannot export the unsatisfiable diagram"}
	}
	if root == 1 {
		return nil, &NotFullyEvaluatedError{Nodes: 0}
	}
	snap, err := m.snapshot(d.node)
	if err != nil {
		return nil, err
	}

	g := &Graph{ifc: d.ifc}
	ids := make(map[int]int)
	slot := make(map[int]int) // raw id -> index in g.Nodes
	assign := func(raw int) int {
		if id, ok := ids[raw]; ok {
			return id
		}
		id := len(g.Nodes)
		if cfg.keepids {
			id = raw
		}
		ids[raw] = id
		slot[raw] = len(g.Nodes)
		g.Nodes = append(g.Nodes, GraphNode{ID: id})
		return id
	}

	out := d.ifc.output
	visited := mapset.NewSet[int]()
	stack := []int{root}
	assign(root)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited.Contains(cur) {
			continue
		}
		visited.Add(cur)

		nd, ok := snap[cur]
		if !ok || nd.level < 0 || nd.level >= len(m.bits) {
			return nil, &MalformedNodeNameError{Reason: fmt.Sprintf("node %d has no declared bit", cur)}
		}
		srcbit := m.bits[nd.level]
		v, err := d.ifc.Var(srcbit.name)
		if err != nil {
			return nil, err
		}

		trans, err := transitions(m, snap, v, cur)
		if err != nil {
			return nil, err
		}
		if len(trans) == 0 {
			// No decision leaves this block: the node is a leaf and its own
			// bit selects the output value.
			if srcbit.name != out.name {
				return nil, &MalformedNodeNameError{Bit: srcbit.String(), Reason: "leaf outside the output block"}
			}
			val, err := out.Decode(1 << uint(srcbit.index))
			if err != nil {
				return nil, &MalformedNodeNameError{Bit: srcbit.String(), Reason: err.Error()}
			}
			g.Nodes[slot[cur]].Label = val
			continue
		}
		g.Nodes[slot[cur]].Label = v.Name()

		valid, err := v.Valid().compile(m)
		if err != nil {
			return nil, err
		}
		dests := make([]int, 0, len(trans))
		for dest := range trans {
			dests = append(dests, dest)
		}
		sort.Ints(dests)
		for _, dest := range dests {
			guard := m.bdd.And(trans[dest], valid)
			if m.bdd.Equal(guard, m.bdd.False()) {
				return nil, fmt.Errorf("unsatisfiable guard from %s to node %d: formula not reduced", v.Name(), dest)
			}
			var label any
			if cfg.concrete {
				label, err = guardValues(m, v, guard)
			} else {
				label, err = renderGuard(m, v, guard)
			}
			if err != nil {
				return nil, err
			}
			g.Edges = append(g.Edges, GraphEdge{
				From:  assign(cur),
				To:    assign(dest),
				Var:   v.Name(),
				Guard: guard,
				Label: label,
			})
			stack = append(stack, dest)
		}
	}
	if _LOGLEVEL > 0 {
		log.Printf("exported graph: %d nodes, %d edges\n", len(g.Nodes), len(g.Edges))
	}
	return g, nil
}

// transitions contracts the run of decisions on v's bits starting at root:
// it follows both restrictions of every node while the tested bit still
// belongs to v's block, accumulating the traversed path as a guard, and
// stops at the first node outside the block. The result maps each such
// boundary node to the OR of the guards of every path reaching it.
// Terminals met inside the block are dropped. Implemented with an explicit
// work list so that deep bit blocks cannot exhaust the stack.
func transitions(m *Manager, snap map[int]bnode, v *Variable, root int) (map[int]rudd.Node, error) {
	type item struct {
		id    int
		guard rudd.Node
	}
	acc := make(map[int]rudd.Node)
	stack := []item{{id: root, guard: m.bdd.True()}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if it.id < 2 {
			continue
		}
		nd, ok := snap[it.id]
		if !ok || nd.level < 0 || nd.level >= len(m.bits) {
			return nil, &MalformedNodeNameError{Reason: fmt.Sprintf("node %d has no declared bit", it.id)}
		}
		b := m.bits[nd.level]
		if b.name != v.Name() {
			if g, ok := acc[it.id]; ok {
				acc[it.id] = m.bdd.Or(g, it.guard)
			} else {
				acc[it.id] = it.guard
			}
			continue
		}
		pos, err := m.literal(b, true)
		if err != nil {
			return nil, err
		}
		neg, err := m.literal(b, false)
		if err != nil {
			return nil, err
		}
		stack = append(stack,
			item{id: nd.high, guard: m.bdd.And(it.guard, pos)},
			item{id: nd.low, guard: m.bdd.And(it.guard, neg)})
	}
	return acc, nil
}

// blockLevels returns the current levels of v's bits, in bit-index order.
func blockLevels(m *Manager, v *Variable) ([]int, error) {
	levels := make([]int, v.Size())
	for i, b := range v.bits() {
		lvl, ok := m.level[b]
		if !ok {
			return nil, valerrf("unknown signal bit %s", b)
		}
		levels[i] = lvl
	}
	return levels, nil
}

// renderGuard renders a guard as a disjunction of minterms over v's bits.
func renderGuard(m *Manager, v *Variable, guard rudd.Node) (string, error) {
	levels, err := blockLevels(m, v)
	if err != nil {
		return "", err
	}
	var terms []string
	err = m.bdd.Allsat(func(model []int) error {
		lits := make([]string, 0, len(levels))
		for i, lvl := range levels {
			switch model[lvl] {
			case 1:
				lits = append(lits, bit{v.name, i}.String())
			case 0:
				lits = append(lits, "!"+bit{v.name, i}.String())
			}
		}
		if len(lits) == 0 {
			terms = append(terms, "true")
			return nil
		}
		terms = append(terms, strings.Join(lits, " & "))
		return nil
	}, guard)
	if err != nil {
		return "", err
	}
	return strings.Join(terms, " | "), nil
}

// guardValues resolves a guard to the set of domain values of v whose
// encodings satisfy it. The guard contains v's validity predicate, so every
// model pins the whole block to a one-hot assignment; a bit left undecided
// would mean a non-one-hot model slipped through.
func guardValues(m *Manager, v *Variable, guard rudd.Node) (mapset.Set[any], error) {
	levels, err := blockLevels(m, v)
	if err != nil {
		return nil, err
	}
	vals := mapset.NewSet[any]()
	err = m.bdd.Allsat(func(model []int) error {
		var mask uint
		for i, lvl := range levels {
			switch model[lvl] {
			case 1:
				mask |= 1 << uint(i)
			case -1:
				return fmt.Errorf("undecided bit %s in guard over %s", bit{v.name, i}, v.Name())
			}
		}
		val, err := v.Decode(mask)
		if err != nil {
			return err
		}
		vals.Add(val)
		return nil
	}, guard)
	if err != nil {
		return nil, err
	}
	if vals.Cardinality() == 0 {
		return nil, fmt.Errorf("guard over %s has no model: formula not reduced", v.Name())
	}
	return vals, nil
}

// ************************************************************

// WriteDot writes the graph in GraphViz DOT format. The output is
// deterministic: nodes and edges appear in discovery order, and concrete
// value sets are rendered in domain order.
func (g *Graph) WriteDot(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "digraph mdd {")
	for _, n := range g.Nodes {
		fmt.Fprintf(bw, "%d [label=%q];\n", n.ID, fmt.Sprint(n.Label))
	}
	for _, e := range g.Edges {
		fmt.Fprintf(bw, "%d -> %d [label=%q];\n", e.From, e.To, g.edgeLabel(e))
	}
	fmt.Fprintln(bw, "}")
	return bw.Flush()
}

// Dot returns the DOT rendition of the graph.
func (g *Graph) Dot() string {
	var sb strings.Builder
	g.WriteDot(&sb)
	return sb.String()
}

func (g *Graph) edgeLabel(e GraphEdge) string {
	set, ok := e.Label.(mapset.Set[any])
	if !ok {
		return fmt.Sprint(e.Label)
	}
	v, err := g.ifc.Var(e.Var)
	if err != nil {
		return fmt.Sprint(e.Label)
	}
	parts := make([]string, 0, set.Cardinality())
	for _, val := range v.Domain() {
		if set.Contains(val) {
			parts = append(parts, fmt.Sprint(val))
		}
	}
	return "{" + strings.Join(parts, ",") + "}"
}
