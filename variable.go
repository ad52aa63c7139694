// Copyright (c) 2026 The mdd Authors
//
// MIT License

package mdd

import (
	"fmt"
	"reflect"
	"sync/atomic"
)

// _MAXDOMAIN is the maximal number of values in one domain. Encodings are
// manipulated as uint bitmasks, so one variable cannot span more than 64
// bits.
const _MAXDOMAIN = 64

// _VARID is the counter used to generate fresh variable names.
var _VARID int64

// bit identifies one Boolean bit of a variable's one-hot encoding. Its
// textual form is "name[index]".
type bit struct {
	name  string
	index int
}

func (b bit) String() string {
	return fmt.Sprintf("%s[%d]", b.name, b.index)
}

// Variable describes a multi-valued variable through its one-hot bit
// encoding. A Variable is an immutable value: renaming and constraining
// return new Variables. Domain values are opaque; they are compared with ==
// and the index of a value is the first match in the domain.
type Variable struct {
	name   string
	domain []any
	extra  Expr // optional admissibility constraint over this signal only
}

// ToVar builds a Variable over the given domain. The domain is either a
// slice (of any element type) or an existing *Variable, in which case ToVar
// behaves as a pure rename; renaming to the current name, or with an empty
// name, returns the Variable unchanged. An empty name otherwise generates a
// fresh globally-unique one.
func ToVar(domain any, name string) (*Variable, error) {
	if v, ok := domain.(*Variable); ok {
		if name == "" {
			return v, nil
		}
		return v.WithName(name), nil
	}
	rv := reflect.ValueOf(domain)
	if !rv.IsValid() || rv.Kind() != reflect.Slice {
		return nil, valerrf("domain must be a slice or a *Variable, got %T", domain)
	}
	vals := make([]any, rv.Len())
	for i := range vals {
		vals[i] = rv.Index(i).Interface()
	}
	return newVariable(vals, name)
}

func newVariable(domain []any, name string) (*Variable, error) {
	if len(domain) == 0 {
		return nil, valerrf("empty domain for variable %q", name)
	}
	if len(domain) > _MAXDOMAIN {
		return nil, valerrf("domain of %q has %d values, limit is %d", name, len(domain), _MAXDOMAIN)
	}
	if name == "" {
		name = fmt.Sprintf("var%d", atomic.AddInt64(&_VARID, 1))
	}
	return &Variable{name: name, domain: domain}, nil
}

// Name returns the name of the variable.
func (v *Variable) Name() string { return v.name }

// Size returns the number of values in the domain, which is also the width
// of the one-hot encoding in bits.
func (v *Variable) Size() int { return len(v.domain) }

// Domain returns a copy of the ordered domain.
func (v *Variable) Domain() []any {
	return append([]any{}, v.domain...)
}

// WithName returns a Variable identical to v but bound to a new bit-vector
// name. It returns v itself when the name is unchanged.
func (v *Variable) WithName(name string) *Variable {
	if name == v.name {
		return v
	}
	w := *v
	w.name = name
	if v.extra != nil {
		w.extra = renameExpr(v.extra, v.name, name)
	}
	return &w
}

// Constrain returns a Variable whose admissible encodings are further
// restricted by e, on top of the one-hot validity predicate. The constraint
// must be defined over exactly this variable's signal; anything else is a
// ValidationError.
func (v *Variable) Constrain(e Expr) (*Variable, error) {
	free := e.FreeInputs()
	if free.Cardinality() != 1 || !free.Contains(v.name) {
		return nil, valerrf("validity predicate for %q must be over the single signal %q, got %v",
			v.name, v.name, free.ToSlice())
	}
	w := *v
	if v.extra != nil {
		w.extra = And(v.extra, e)
	} else {
		w.extra = e
	}
	return &w, nil
}

// Encode returns the one-hot bitmask of a domain value: exactly one bit set,
// at the position of the value's first match in the domain.
func (v *Variable) Encode(value any) (uint, error) {
	for i, d := range v.domain {
		if d == value {
			return 1 << uint(i), nil
		}
	}
	return 0, &InvalidAssignmentError{Name: v.name, Value: value, Reason: "value not in domain"}
}

// Decode is the inverse of Encode on one-hot bitmasks. A mask that is not a
// power of two, or whose set bit falls outside the encoding width, is an
// InvalidAssignmentError.
func (v *Variable) Decode(mask uint) (any, error) {
	if mask == 0 || mask&(mask-1) != 0 {
		return nil, &InvalidAssignmentError{Name: v.name, Value: mask, Reason: "bitmask is not one-hot"}
	}
	idx := 0
	for m := mask; m > 1; m >>= 1 {
		idx++
	}
	if idx >= len(v.domain) {
		return nil, &InvalidAssignmentError{Name: v.name, Value: mask, Reason: "bit index outside encoding width"}
	}
	return v.domain[idx], nil
}

// bits returns the bit identities of the encoding, in index order.
func (v *Variable) bits() []bit {
	res := make([]bit, len(v.domain))
	for i := range res {
		res[i] = bit{name: v.name, index: i}
	}
	return res
}

// sameShape reports whether two variables have compatible encodings. We only
// compare widths: domain values are opaque and need not be comparable.
func (v *Variable) sameShape(w *Variable) bool {
	return len(v.domain) == len(w.domain)
}
