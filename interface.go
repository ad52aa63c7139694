// Copyright (c) 2026 The mdd Authors
//
// MIT License

package mdd

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// Interface is the input/output signature of a multi-valued decision
// diagram: a named collection of input Variables plus one output Variable.
// An Interface is an immutable value; diagrams over it are built through a
// Manager.
type Interface struct {
	inputs     []*Variable
	index      map[string]*Variable
	output     *Variable
	constraint Expr // optional extra validity over input signals
}

// InterfaceOption is a configuration option for NewInterface.
type InterfaceOption func(*Interface)

// Constraint is a configuration option (function). Used as a parameter in
// NewInterface it attaches an extra validity constraint conjoined with the
// one-hot predicates; the constraint may only reference declared input
// names.
func Constraint(e Expr) InterfaceOption {
	return func(ifc *Interface) {
		ifc.constraint = e
	}
}

// NewInterface builds an Interface from input Variables, in declaration
// order, and an output Variable. Declaration order is significant: it is the
// canonical default bit ordering. Name collisions among inputs and output
// are a ValidationError.
func NewInterface(inputs []*Variable, output *Variable, opts ...InterfaceOption) (*Interface, error) {
	if output == nil {
		return nil, valerrf("missing output variable")
	}
	ifc := &Interface{
		inputs: append([]*Variable{}, inputs...),
		index:  make(map[string]*Variable, len(inputs)),
		output: output,
	}
	for _, v := range ifc.inputs {
		if v == nil {
			return nil, valerrf("nil input variable")
		}
		if _, dup := ifc.index[v.name]; dup {
			return nil, valerrf("duplicate input name %q", v.name)
		}
		ifc.index[v.name] = v
	}
	if _, dup := ifc.index[output.name]; dup {
		return nil, valerrf("output name %q collides with an input", output.name)
	}
	for _, opt := range opts {
		opt(ifc)
	}
	if ifc.constraint != nil {
		for _, name := range ifc.constraint.FreeInputs().ToSlice() {
			if _, ok := ifc.index[name]; !ok {
				return nil, valerrf("constraint references undeclared input %q", name)
			}
		}
	}
	return ifc, nil
}

// Inputs returns the input variables in declaration order.
func (ifc *Interface) Inputs() []*Variable {
	return append([]*Variable{}, ifc.inputs...)
}

// Output returns the output variable.
func (ifc *Interface) Output() *Variable { return ifc.output }

// Names returns every variable name, inputs in declaration order then the
// output.
func (ifc *Interface) Names() []string {
	res := make([]string, 0, len(ifc.inputs)+1)
	for _, v := range ifc.inputs {
		res = append(res, v.name)
	}
	return append(res, ifc.output.name)
}

// Var resolves a name to its Variable, looking among the inputs first and
// falling back to the output.
func (ifc *Interface) Var(name string) (*Variable, error) {
	if v, ok := ifc.index[name]; ok {
		return v, nil
	}
	if name == ifc.output.name {
		return ifc.output, nil
	}
	return nil, valerrf("no variable named %q", name)
}

// variables returns inputs in declaration order followed by the output.
func (ifc *Interface) variables() []*Variable {
	return append(ifc.Inputs(), ifc.output)
}

// Valid returns the validity predicate: the conjunction of every input's
// one-hot admissibility test and the optional extra constraint. The output's
// bits are not constrained, but they always belong to the expected free-bit
// set of a diagram (see expectedBits).
func (ifc *Interface) Valid() Expr {
	es := make([]Expr, 0, len(ifc.inputs)+1)
	for _, v := range ifc.inputs {
		es = append(es, v.Valid())
	}
	if ifc.constraint != nil {
		es = append(es, ifc.constraint)
	}
	return And(es...)
}

// expectedBits returns the bit names a diagram's formula may depend on once
// the inputs in applied are bound: every bit of every un-applied input, plus
// every bit of the output.
func (ifc *Interface) expectedBits(applied mapset.Set[string]) mapset.Set[string] {
	res := mapset.NewSet[string]()
	for _, v := range ifc.inputs {
		if applied != nil && applied.Contains(v.name) {
			continue
		}
		for _, b := range v.bits() {
			res.Add(b.String())
		}
	}
	for _, b := range ifc.output.bits() {
		res.Add(b.String())
	}
	return res
}

// bitNames expands a variable name into its "name[index]" bit names; a name
// with no declared variable is returned as is.
func (ifc *Interface) bitNames(name string) []string {
	v, err := ifc.Var(name)
	if err != nil {
		return []string{name}
	}
	res := make([]string, 0, v.Size())
	for _, b := range v.bits() {
		res = append(res, b.String())
	}
	return res
}
