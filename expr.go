// Copyright (c) 2026 The mdd Authors
//
// MIT License

package mdd

import (
	"fmt"
	"strings"

	"github.com/dalzilio/rudd"
	mapset "github.com/deckarep/golang-set/v2"
)

// Formula is a value that can be turned into a substrate node for a given
// manager. It is a closed union: either a symbolic expression (Expr) or a
// node already built against a manager (NodeRef).
type Formula interface {
	compile(m *Manager) (rudd.Node, error)
}

// Expr is a Boolean expression over the bits of named multi-bit signals. An
// expression is built from bit literals (Variable.Bit), bit-blasted value
// tests (Variable.Eq, Variable.In), validity predicates (Variable.Valid) and
// the combinators of this package. Expressions are symbolic: they are only
// tied to a substrate when a manager compiles them.
type Expr interface {
	Formula

	// FreeInputs returns the set of signal names the expression references.
	FreeInputs() mapset.Set[string]

	String() string

	// rename rewrites references from one signal name to another; used when
	// a Variable is renamed.
	rename(old, new string) Expr
}

func renameExpr(e Expr, old, new string) Expr { return e.rename(old, new) }

// ************************************************************

type constExpr bool

// TrueExpr is the expression that always holds.
func TrueExpr() Expr { return constExpr(true) }

// FalseExpr is the expression that never holds.
func FalseExpr() Expr { return constExpr(false) }

func (e constExpr) compile(m *Manager) (rudd.Node, error) {
	return m.bdd.From(bool(e)), nil
}

func (e constExpr) FreeInputs() mapset.Set[string] { return mapset.NewSet[string]() }

func (e constExpr) String() string {
	if e {
		return "true"
	}
	return "false"
}

func (e constExpr) rename(old, new string) Expr { return e }

// ************************************************************

type bitExpr struct {
	v     *Variable
	index int
}

// Bit returns the expression selecting bit i of the variable's encoding.
func (v *Variable) Bit(i int) Expr {
	return bitExpr{v: v, index: i}
}

func (e bitExpr) compile(m *Manager) (rudd.Node, error) {
	if e.index < 0 || e.index >= e.v.Size() {
		return nil, &MalformedNodeNameError{Bit: bit{e.v.name, e.index}.String(), Reason: "index outside bit-width"}
	}
	return m.literal(bit{name: e.v.name, index: e.index}, true)
}

func (e bitExpr) FreeInputs() mapset.Set[string] { return mapset.NewSet(e.v.name) }

func (e bitExpr) String() string { return bit{e.v.name, e.index}.String() }

func (e bitExpr) rename(old, new string) Expr {
	if e.v.name != old {
		return e
	}
	return bitExpr{v: e.v.WithName(new), index: e.index}
}

// ************************************************************

type eqExpr struct {
	v     *Variable
	value any
}

// Eq returns the expression testing whether the variable's bit-vector equals
// the one-hot encoding of value. The value is bit-blasted when the
// expression is compiled; a value outside the domain surfaces there as an
// InvalidAssignmentError.
func (v *Variable) Eq(value any) Expr {
	return eqExpr{v: v, value: value}
}

// EqVar returns the expression testing whether the encodings of two signals
// carry the same bit pattern. Signals with different bit-widths are never
// equal.
func (v *Variable) EqVar(w *Variable) Expr {
	if !v.sameShape(w) {
		return FalseExpr()
	}
	es := make([]Expr, v.Size())
	for i := range es {
		es[i] = Not(Xor(v.Bit(i), w.Bit(i)))
	}
	return And(es...)
}

// In returns the disjunction of Eq over the given values.
func (v *Variable) In(values ...any) Expr {
	es := make([]Expr, len(values))
	for i, val := range values {
		es[i] = v.Eq(val)
	}
	return Or(es...)
}

func (e eqExpr) compile(m *Manager) (rudd.Node, error) {
	mask, err := e.v.Encode(e.value)
	if err != nil {
		return nil, err
	}
	res := m.bdd.True()
	for i := 0; i < e.v.Size(); i++ {
		lit, err := m.literal(bit{name: e.v.name, index: i}, mask&(1<<uint(i)) != 0)
		if err != nil {
			return nil, err
		}
		res = m.bdd.And(res, lit)
	}
	return res, nil
}

func (e eqExpr) FreeInputs() mapset.Set[string] { return mapset.NewSet(e.v.name) }

func (e eqExpr) String() string { return fmt.Sprintf("%s == %v", e.v.name, e.value) }

func (e eqExpr) rename(old, new string) Expr {
	if e.v.name != old {
		return e
	}
	return eqExpr{v: e.v.WithName(new), value: e.value}
}

// ************************************************************

type validExpr struct {
	v *Variable
}

// Valid returns the admissibility predicate of the variable: true iff
// exactly one encoding bit is set (the classic v != 0 && v&(v-1) == 0 test),
// conjoined with any extra constraint attached with Constrain.
func (v *Variable) Valid() Expr {
	return validExpr{v: v}
}

func (e validExpr) compile(m *Manager) (rudd.Node, error) {
	res, err := m.onehot(e.v)
	if err != nil {
		return nil, err
	}
	if e.v.extra != nil {
		c, err := e.v.extra.compile(m)
		if err != nil {
			return nil, err
		}
		res = m.bdd.And(res, c)
	}
	return res, nil
}

func (e validExpr) FreeInputs() mapset.Set[string] { return mapset.NewSet(e.v.name) }

func (e validExpr) String() string { return fmt.Sprintf("onehot(%s)", e.v.name) }

func (e validExpr) rename(old, new string) Expr {
	if e.v.name != old {
		return e
	}
	return validExpr{v: e.v.WithName(new)}
}

// ************************************************************

type notExpr struct {
	sub Expr
}

// Not returns the negation of an expression.
func Not(e Expr) Expr { return notExpr{sub: e} }

func (e notExpr) compile(m *Manager) (rudd.Node, error) {
	n, err := e.sub.compile(m)
	if err != nil {
		return nil, err
	}
	return m.bdd.Not(n), nil
}

func (e notExpr) FreeInputs() mapset.Set[string] { return e.sub.FreeInputs() }

func (e notExpr) String() string { return "!" + e.sub.String() }

func (e notExpr) rename(old, new string) Expr { return notExpr{sub: e.sub.rename(old, new)} }

// ************************************************************

type naryOp int

const (
	opAnd naryOp = iota
	opOr
)

type naryExpr struct {
	op   naryOp
	subs []Expr
}

// And returns the conjunction of a sequence of expressions. And() is true.
func And(es ...Expr) Expr {
	if len(es) == 1 {
		return es[0]
	}
	return naryExpr{op: opAnd, subs: es}
}

// Or returns the disjunction of a sequence of expressions. Or() is false.
func Or(es ...Expr) Expr {
	if len(es) == 1 {
		return es[0]
	}
	return naryExpr{op: opOr, subs: es}
}

// Xor returns the exclusive disjunction of two expressions.
func Xor(a, b Expr) Expr {
	return Or(And(a, Not(b)), And(Not(a), b))
}

// Implies returns the implication a => b.
func Implies(a, b Expr) Expr {
	return Or(Not(a), b)
}

func (e naryExpr) compile(m *Manager) (rudd.Node, error) {
	res := m.bdd.From(e.op == opAnd)
	for _, sub := range e.subs {
		n, err := sub.compile(m)
		if err != nil {
			return nil, err
		}
		if e.op == opAnd {
			res = m.bdd.And(res, n)
		} else {
			res = m.bdd.Or(res, n)
		}
	}
	return res, nil
}

func (e naryExpr) FreeInputs() mapset.Set[string] {
	res := mapset.NewSet[string]()
	for _, sub := range e.subs {
		res = res.Union(sub.FreeInputs())
	}
	return res
}

func (e naryExpr) String() string {
	if len(e.subs) == 0 {
		return constExpr(e.op == opAnd).String()
	}
	parts := make([]string, len(e.subs))
	for i, sub := range e.subs {
		parts[i] = sub.String()
	}
	sep := " & "
	if e.op == opOr {
		sep = " | "
	}
	return "(" + strings.Join(parts, sep) + ")"
}

func (e naryExpr) rename(old, new string) Expr {
	subs := make([]Expr, len(e.subs))
	for i, sub := range e.subs {
		subs[i] = sub.rename(old, new)
	}
	return naryExpr{op: e.op, subs: subs}
}

// ************************************************************

type iteExpr struct {
	cond, then, els Expr
}

// Ite returns the if-then-else expression (cond & then) | (!cond & els).
func Ite(cond, then, els Expr) Expr {
	return iteExpr{cond: cond, then: then, els: els}
}

func (e iteExpr) compile(m *Manager) (rudd.Node, error) {
	c, err := e.cond.compile(m)
	if err != nil {
		return nil, err
	}
	t, err := e.then.compile(m)
	if err != nil {
		return nil, err
	}
	f, err := e.els.compile(m)
	if err != nil {
		return nil, err
	}
	return m.bdd.Ite(c, t, f), nil
}

func (e iteExpr) FreeInputs() mapset.Set[string] {
	return e.cond.FreeInputs().Union(e.then.FreeInputs()).Union(e.els.FreeInputs())
}

func (e iteExpr) String() string {
	return fmt.Sprintf("ite(%s, %s, %s)", e.cond, e.then, e.els)
}

func (e iteExpr) rename(old, new string) Expr {
	return iteExpr{
		cond: e.cond.rename(old, new),
		then: e.then.rename(old, new),
		els:  e.els.rename(old, new),
	}
}

// ************************************************************

// NodeRef wraps a substrate node already built against a manager, so that it
// can be passed wherever a Formula is expected. Compiling a NodeRef against
// a different manager is a ValidationError: nodes are only meaningful
// relative to the manager that produced them.
type NodeRef struct {
	mgr *Manager
	n   rudd.Node
}

// Ref wraps a raw substrate node built against this manager.
func (m *Manager) Ref(n rudd.Node) NodeRef {
	return NodeRef{mgr: m, n: n}
}

// Node returns the wrapped substrate node.
func (r NodeRef) Node() rudd.Node { return r.n }

func (r NodeRef) compile(m *Manager) (rudd.Node, error) {
	if r.mgr != m {
		return nil, valerrf("node built against a different manager")
	}
	return r.n, nil
}
