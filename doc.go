// Copyright (c) 2026 The mdd Authors
//
// MIT License

/*
Package mdd implements typed, multi-valued decision diagrams (MDD) on top of
a Binary Decision Diagram substrate. It lets you declare named variables with
arbitrary finite domains, encode them as one-hot bit-vectors, build and
compose functions of those variables, evaluate them on concrete inputs, and
export the result as a labeled transition graph.

Basics

A Variable describes one multi-valued domain. Each value is encoded as an
n-bit one-hot vector, where n is the size of the domain; bit i of variable x
is written "x[i]". An Interface groups a set of input Variables with one
output Variable and provides the validity predicate stating that every
encoding is one-hot. A DecisionDiagram is a Boolean formula over the bits of
an Interface, confined to valid encodings; it is built from a constant
(Constantly), from a symbolic expression (Lift), or by pointwise composition
of existing diagrams (Override).

	x, _ := mdd.ToVar([]int{1, 2, 3}, "x")
	out, _ := mdd.ToVar([]int{-1, 0}, "")
	ifc, _ := mdd.NewInterface([]*mdd.Variable{x}, out)
	m, _ := mdd.NewManager(ifc)
	f, _ := m.Constantly(-1)
	f, _ = f.Override(x.Eq(2), 0)
	v, _ := f.Evaluate(map[string]any{"x": 2}) // v == 0

Manager and sharing

All substrate state (the node table and the current bit ordering) is owned by
a Manager. Every diagram records the Manager it was built against, and
formulas from different managers are never combined. Order mutates the
manager's bit ordering, which is visible to every diagram sharing it; treat
reordering as a one-time configuration step. A Manager is not safe for
concurrent use; shard across independent managers for parallelism.

Export

ToGraph contracts the bit-level diagram into a variable-level graph: each run
of decisions inside one variable's bit block becomes a single macro-edge per
distinct destination, labeled either by a Boolean guard over the variable's
bits (symbolic mode) or by the explicit set of domain values satisfying the
guard (concrete mode). The graph can be written in GraphViz DOT format.
*/
package mdd
