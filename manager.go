// Copyright (c) 2026 The mdd Authors
//
// MIT License

package mdd

import (
	"log"
	"sort"

	"github.com/dalzilio/rudd"
	mapset "github.com/deckarep/golang-set/v2"
)

// Manager owns the shared substrate state for one Interface: the BDD node
// table and the binding between encoding bits and substrate levels. Every
// DecisionDiagram records the Manager it was built against; nodes from
// different managers are never combined. A Manager is not safe for
// concurrent use.
type Manager struct {
	bdd    *rudd.BDD
	ifc    *Interface
	level  map[bit]int // bit -> current substrate level
	bits   []bit       // current substrate level -> bit
	cache  map[string]rudd.Node
	valid  rudd.Node // compiled validity predicate, nil until first use
	auto   bool      // automatic ordering at export time still allowed
	nextid int       // ordering epoch, for debug traces
}

// NewManager allocates a substrate with one Boolean variable per encoding
// bit of the interface. Levels are assigned in declaration order: each
// input's bits form a contiguous block, inputs in declaration order, the
// output block last.
func NewManager(ifc *Interface, opts ...Option) (*Manager, error) {
	cfg := makeconfigs()
	for _, opt := range opts {
		opt(cfg)
	}
	nbits := 0
	for _, v := range ifc.variables() {
		nbits += v.Size()
	}
	bdd, err := rudd.New(nbits, rudd.Nodesize(cfg.nodesize), rudd.Cachesize(cfg.cachesize))
	if err != nil {
		return nil, err
	}
	m := &Manager{
		bdd:   bdd,
		ifc:   ifc,
		level: make(map[bit]int, nbits),
		bits:  make([]bit, 0, nbits),
		cache: make(map[string]rudd.Node),
		auto:  true,
	}
	for _, v := range ifc.variables() {
		for _, b := range v.bits() {
			m.level[b] = len(m.bits)
			m.bits = append(m.bits, b)
		}
	}
	return m, nil
}

// Interface returns the interface this manager was built for.
func (m *Manager) Interface() *Interface { return m.ifc }

// BDD exposes the underlying substrate, for callers that build raw nodes to
// pass through Ref and Lift.
func (m *Manager) BDD() *rudd.BDD { return m.bdd }

// Stats returns information about the substrate node table.
func (m *Manager) Stats() string { return m.bdd.Stats() }

// Levels returns the current bit ordering as a map from "name[index]" bit
// names to substrate levels.
func (m *Manager) Levels() map[string]int {
	res := make(map[string]int, len(m.bits))
	for lvl, b := range m.bits {
		res[b.String()] = lvl
	}
	return res
}

// SetAutoReorder controls whether the manager may still impose the canonical
// default ordering on its own, which happens when a diagram is exported
// without an explicit order. An explicit Order call turns this off; explicit
// calls themselves always remain allowed.
func (m *Manager) SetAutoReorder(on bool) { m.auto = on }

// Bit returns the substrate literal for bit i of the named variable.
func (m *Manager) Bit(name string, i int) (rudd.Node, error) {
	v, err := m.ifc.Var(name)
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= v.Size() {
		return nil, &MalformedNodeNameError{Bit: bit{name, i}.String(), Reason: "index outside bit-width"}
	}
	return m.literal(bit{name: name, index: i}, true)
}

// literal returns the positive or negative substrate literal for a bit.
func (m *Manager) literal(b bit, positive bool) (rudd.Node, error) {
	lvl, ok := m.level[b]
	if !ok {
		return nil, valerrf("unknown signal bit %s", b)
	}
	if positive {
		return m.bdd.Ithvar(lvl), nil
	}
	return m.bdd.NIthvar(lvl), nil
}

// onehot returns the substrate node that is true iff exactly one bit of the
// variable's encoding is set. The node is cached per signal name; the cache
// is dropped on reordering.
func (m *Manager) onehot(v *Variable) (rudd.Node, error) {
	if n, ok := m.cache[v.name]; ok {
		return n, nil
	}
	if _, err := m.ifc.Var(v.name); err != nil {
		return nil, err
	}
	bits := v.bits()
	res := m.bdd.False()
	for i := range bits {
		minterm := m.bdd.True()
		for j := range bits {
			lit, err := m.literal(bits[j], i == j)
			if err != nil {
				return nil, err
			}
			minterm = m.bdd.And(minterm, lit)
		}
		res = m.bdd.Or(res, minterm)
	}
	m.cache[v.name] = res
	return res, nil
}

// validity returns the compiled validity predicate of the interface.
func (m *Manager) validity() (rudd.Node, error) {
	if m.valid != nil {
		return m.valid, nil
	}
	n, err := m.ifc.Valid().compile(m)
	if err != nil {
		return nil, err
	}
	m.valid = n
	return n, nil
}

// restrict computes the simultaneous restriction of a node on the given bit
// assignments: the assigned bits are conjoined as a cube and then quantified
// away.
func (m *Manager) restrict(n rudd.Node, assigns map[bit]bool) (rudd.Node, error) {
	bits := make([]bit, 0, len(assigns))
	for b := range assigns {
		bits = append(bits, b)
	}
	sort.Slice(bits, func(i, j int) bool { return m.level[bits[i]] < m.level[bits[j]] })

	cube := m.bdd.True()
	levels := make([]int, 0, len(bits))
	for _, b := range bits {
		lvl, ok := m.level[b]
		if !ok {
			return nil, valerrf("unknown signal bit %s", b)
		}
		lit, err := m.literal(b, assigns[b])
		if err != nil {
			return nil, err
		}
		cube = m.bdd.And(cube, lit)
		levels = append(levels, lvl)
	}
	return m.bdd.Exist(m.bdd.And(n, cube), m.bdd.Makeset(levels)), nil
}

// bnode is a snapshot of one substrate node.
type bnode struct {
	level int
	low   int
	high  int
}

// nodeID returns the stable integer identity of a substrate node. The
// constants False and True always have ids 0 and 1.
func nodeID(n rudd.Node) int { return *n }

// snapshot collects the DAG reachable from a root into a map keyed by node
// id. Terminals are not recorded.
func (m *Manager) snapshot(root rudd.Node) (map[int]bnode, error) {
	nodes := make(map[int]bnode)
	err := m.bdd.Allnodes(func(id, level, low, high int) error {
		if id > 1 {
			nodes[id] = bnode{level: level, low: low, high: high}
		}
		return nil
	}, root)
	if err != nil {
		return nil, err
	}
	return nodes, nil
}

// support returns the set of "name[index]" bit names with a decision node in
// the DAG rooted at n. For a canonical substrate this is exactly the set of
// bits the function depends on.
func (m *Manager) support(n rudd.Node) (mapset.Set[string], error) {
	res := mapset.NewSet[string]()
	nodes, err := m.snapshot(n)
	if err != nil {
		return nil, err
	}
	for _, nd := range nodes {
		if nd.level >= 0 && nd.level < len(m.bits) {
			res.Add(m.bits[nd.level].String())
		}
	}
	return res, nil
}

// reorder re-levels the manager so that each variable's bits occupy one
// contiguous block, blocks in the order given by names, and returns the
// given root rebuilt under the new level assignment. Other nodes built
// against this manager are expressed in the old levels and must be rebuilt
// by their owners; treat reordering as a one-time configuration step.
func (m *Manager) reorder(names []string, root rudd.Node) (rudd.Node, error) {
	newbits := make([]bit, 0, len(m.bits))
	seen := mapset.NewSet[string]()
	for _, name := range names {
		v, err := m.ifc.Var(name)
		if err != nil {
			return nil, err
		}
		if seen.Contains(name) {
			return nil, valerrf("duplicate variable %q in order", name)
		}
		seen.Add(name)
		newbits = append(newbits, v.bits()...)
	}
	if len(newbits) != len(m.bits) {
		return nil, valerrf("order must mention every variable exactly once")
	}

	perm := make([]int, len(m.bits))
	identity := true
	for newlvl, b := range newbits {
		oldlvl, ok := m.level[b]
		if !ok {
			return nil, valerrf("unknown signal bit %s in order", b)
		}
		perm[oldlvl] = newlvl
		if newlvl != oldlvl {
			identity = false
		}
	}
	if identity {
		m.auto = false
		return root, nil
	}

	rebuilt, err := m.rebuild(perm, root)
	if err != nil {
		return nil, err
	}
	m.bits = newbits
	for lvl, b := range newbits {
		m.level[b] = lvl
	}
	m.cache = make(map[string]rudd.Node)
	m.valid = nil
	m.auto = false
	m.nextid++
	if _LOGLEVEL > 0 {
		log.Printf("reorder #%d: %v\n", m.nextid, names)
	}
	return rebuilt, nil
}

// rebuild re-expresses the function rooted at root with every decision on
// old level l replaced by a decision on perm[l]. The substrate's Ite takes
// care of re-normalizing levels, so the permutation can be arbitrary.
func (m *Manager) rebuild(perm []int, root rudd.Node) (rudd.Node, error) {
	nodes, err := m.snapshot(root)
	if err != nil {
		return nil, err
	}
	memo := map[int]rudd.Node{0: m.bdd.False(), 1: m.bdd.True()}
	var build func(id int) (rudd.Node, error)
	build = func(id int) (rudd.Node, error) {
		if n, ok := memo[id]; ok {
			return n, nil
		}
		nd, ok := nodes[id]
		if !ok {
			return nil, valerrf("node %d missing from snapshot", id)
		}
		if nd.level < 0 || nd.level >= len(perm) {
			return nil, &MalformedNodeNameError{Reason: "level outside the declared bit set"}
		}
		high, err := build(nd.high)
		if err != nil {
			return nil, err
		}
		low, err := build(nd.low)
		if err != nil {
			return nil, err
		}
		res := m.bdd.Ite(m.bdd.Ithvar(perm[nd.level]), high, low)
		memo[id] = res
		return res, nil
	}
	return build(nodeID(root))
}
