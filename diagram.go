// Copyright (c) 2026 The mdd Authors
//
// MIT License

package mdd

import (
	"math/bits"
	"sort"

	"github.com/dalzilio/rudd"
	mapset "github.com/deckarep/golang-set/v2"
)

// DecisionDiagram is a Boolean formula over the bits of an Interface,
// confined to admissible one-hot encodings. Diagrams are immutable values:
// Let, Override and Order return new diagrams. The formula node is only
// meaningful relative to the Manager that produced it.
type DecisionDiagram struct {
	ifc     *Interface
	mgr     *Manager
	node    rudd.Node
	applied mapset.Set[string] // input names already bound by Let
}

// newDiagram checks the free-bit invariant: the formula may only depend on
// bits of un-applied inputs and of the output.
func newDiagram(m *Manager, node rudd.Node, applied mapset.Set[string]) (*DecisionDiagram, error) {
	supp, err := m.support(node)
	if err != nil {
		return nil, err
	}
	extra := supp.Difference(m.ifc.expectedBits(applied))
	if extra.Cardinality() > 0 {
		return nil, &EncodingMismatchError{Extra: extra.ToSlice()}
	}
	return &DecisionDiagram{ifc: m.ifc, mgr: m, node: node, applied: applied}, nil
}

// Constantly returns the diagram that evaluates to value on every input
// satisfying the validity predicate. A value outside the output domain is an
// InvalidAssignmentError.
func (m *Manager) Constantly(value any) (*DecisionDiagram, error) {
	mask, err := m.ifc.output.Encode(value)
	if err != nil {
		return nil, err
	}
	lit, err := m.literal(bit{name: m.ifc.output.name, index: bits.TrailingZeros(mask)}, true)
	if err != nil {
		return nil, err
	}
	valid, err := m.validity()
	if err != nil {
		return nil, err
	}
	return newDiagram(m, m.bdd.And(lit, valid), mapset.NewSet[string]())
}

// Lift wraps an externally built formula as a DecisionDiagram, conjoining it
// with the validity predicate so the result is confined to admissible
// encodings. A symbolic expression must reference exactly the interface's
// signals; any difference is an EncodingMismatchError carrying the mismatched
// bit names. A formula that contradicts the validity predicate outright is
// an InvalidAssignmentError. Optional trailing names impose an initial bit
// order on the result, as in Order.
func (m *Manager) Lift(f Formula, order ...string) (*DecisionDiagram, error) {
	if e, ok := f.(Expr); ok {
		free := e.FreeInputs()
		want := mapset.NewSet(m.ifc.Names()...)
		if !free.Equal(want) {
			mismatch := &EncodingMismatchError{}
			for _, name := range want.Difference(free).ToSlice() {
				mismatch.Missing = append(mismatch.Missing, m.ifc.bitNames(name)...)
			}
			for _, name := range free.Difference(want).ToSlice() {
				mismatch.Extra = append(mismatch.Extra, m.ifc.bitNames(name)...)
			}
			return nil, mismatch
		}
	}
	n, err := f.compile(m)
	if err != nil {
		return nil, err
	}
	valid, err := m.validity()
	if err != nil {
		return nil, err
	}
	node := m.bdd.And(n, valid)
	if m.bdd.Equal(node, m.bdd.False()) {
		return nil, &InvalidAssignmentError{Reason: "lifted formula contradicts the validity predicate"}
	}
	d, err := newDiagram(m, node, mapset.NewSet[string]())
	if err != nil {
		return nil, err
	}
	if len(order) > 0 {
		return d.Order(order...)
	}
	return d, nil
}

// Interface returns the diagram's interface.
func (d *DecisionDiagram) Interface() *Interface { return d.ifc }

// Manager returns the manager the diagram was built against.
func (d *DecisionDiagram) Manager() *Manager { return d.mgr }

// Node returns the underlying substrate node.
func (d *DecisionDiagram) Node() rudd.Node { return d.node }

// Applied returns the sorted names of the inputs already bound by Let.
func (d *DecisionDiagram) Applied() []string {
	res := d.applied.ToSlice()
	sort.Strings(res)
	return res
}

// Let binds some of the inputs to concrete domain values and returns the
// partially evaluated diagram. Each value is encoded, bit-blasted and
// restricted simultaneously. Binding an unknown or already-bound name, a
// value outside its domain, or a combination inconsistent with the validity
// predicate or with earlier bindings is an InvalidAssignmentError. This is
// the only way input names leave the free-bit set.
func (d *DecisionDiagram) Let(assignment map[string]any) (*DecisionDiagram, error) {
	if len(assignment) == 0 {
		return d, nil
	}
	names := make([]string, 0, len(assignment))
	for name := range assignment {
		names = append(names, name)
	}
	sort.Strings(names)

	assigns := make(map[bit]bool)
	applied := d.applied.Clone()
	for _, name := range names {
		v, ok := d.ifc.index[name]
		if !ok {
			return nil, &InvalidAssignmentError{Name: name, Value: assignment[name], Reason: "not a declared input"}
		}
		if applied.Contains(name) {
			return nil, &InvalidAssignmentError{Name: name, Value: assignment[name], Reason: "input already bound"}
		}
		mask, err := v.Encode(assignment[name])
		if err != nil {
			return nil, err
		}
		for i := 0; i < v.Size(); i++ {
			assigns[bit{name: name, index: i}] = mask&(1<<uint(i)) != 0
		}
		applied.Add(name)
	}

	node, err := d.mgr.restrict(d.node, assigns)
	if err != nil {
		return nil, err
	}
	if d.mgr.bdd.Equal(node, d.mgr.bdd.False()) {
		return nil, &InvalidAssignmentError{Reason: "assignment inconsistent with validity or earlier bindings"}
	}
	return newDiagram(d.mgr, node, applied)
}

// Evaluate binds every remaining input and decodes the result. The residual
// formula must reduce to a single decision on one output bit: the positive
// literal out[i], whose decoded value is returned. Anything else is a
// NotFullyEvaluatedError (or a MalformedNodeNameError when the residual
// decision does not resolve to an output bit).
func (d *DecisionDiagram) Evaluate(inputs map[string]any) (any, error) {
	res, err := d.Let(inputs)
	if err != nil {
		return nil, err
	}
	for _, v := range d.ifc.inputs {
		if !res.applied.Contains(v.name) {
			return nil, &InvalidAssignmentError{Name: v.name, Reason: "missing assignment"}
		}
	}

	m := d.mgr
	root := nodeID(res.node)
	if root == 0 {
		return nil, &InvalidAssignmentError{Reason: "assignment inconsistent with validity"}
	}
	if root == 1 {
		return nil, &NotFullyEvaluatedError{Nodes: 0}
	}
	nodes, err := m.snapshot(res.node)
	if err != nil {
		return nil, err
	}
	if len(nodes) != 1 {
		return nil, &NotFullyEvaluatedError{Nodes: len(nodes)}
	}
	nd := nodes[root]
	if nd.low != 0 || nd.high != 1 {
		return nil, &NotFullyEvaluatedError{Nodes: 1}
	}
	if nd.level < 0 || nd.level >= len(m.bits) {
		return nil, &MalformedNodeNameError{Reason: "residual level outside the declared bit set"}
	}
	b := m.bits[nd.level]
	out := d.ifc.output
	if b.name != out.name {
		return nil, &MalformedNodeNameError{Bit: b.String(), Reason: "residual decision is not on the output"}
	}
	if b.index >= out.Size() {
		return nil, &MalformedNodeNameError{Bit: b.String(), Reason: "index outside the output bit-width"}
	}
	return out.Decode(1 << uint(b.index))
}

// Override returns the diagram that agrees with value wherever test holds
// (restricted to admissible encodings) and with d elsewhere, built as
// (!test | value) & (test | d). The test is a Formula (an Expr or a NodeRef)
// and the value is either a *DecisionDiagram or a bare output-domain value
// routed through Constantly. This is the only composition primitive beyond
// lifting.
func (d *DecisionDiagram) Override(test Formula, value any) (*DecisionDiagram, error) {
	var vd *DecisionDiagram
	switch x := value.(type) {
	case *DecisionDiagram:
		if x.mgr != d.mgr {
			return nil, valerrf("override value built against a different manager")
		}
		vd = x
	default:
		var err error
		vd, err = d.mgr.Constantly(value)
		if err != nil {
			return nil, err
		}
	}
	if !vd.applied.Equal(d.applied) {
		return nil, valerrf("override operands have different applied inputs")
	}
	t, err := test.compile(d.mgr)
	if err != nil {
		return nil, err
	}
	b := d.mgr.bdd
	node := b.And(b.Or(b.Not(t), vd.node), b.Or(t, d.node))
	return newDiagram(d.mgr, node, d.applied.Clone())
}

// Order imposes a total order on the underlying bits: one contiguous block
// of levels per variable, blocks in the given name order. With no names the
// canonical order is used: inputs in declaration order, output last; the
// output may also be omitted from an explicit order and is then placed last.
// Order mutates the shared manager's level tables and turns off automatic
// ordering; other diagrams sharing the manager keep their old levels and
// must be re-ordered by their owners before further use.
func (d *DecisionDiagram) Order(names ...string) (*DecisionDiagram, error) {
	if len(names) == 0 {
		names = d.ifc.Names()
	} else {
		out := d.ifc.output.name
		found := false
		for _, name := range names {
			if name == out {
				found = true
				break
			}
		}
		if !found {
			names = append(append([]string{}, names...), out)
		}
	}
	node, err := d.mgr.reorder(names, d.node)
	if err != nil {
		return nil, err
	}
	return newDiagram(d.mgr, node, d.applied.Clone())
}
