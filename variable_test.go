// Copyright (c) 2026 The mdd Authors
//
// MIT License

package mdd

import (
	"errors"
	"testing"
)

func TestToVar(t *testing.T) {
	v, err := ToVar([]string{"x", "y", "z"}, "myvar")
	if err != nil {
		t.Fatalf("ToVar: %s", err)
	}
	if v.Name() != "myvar" {
		t.Errorf("name: expected myvar, actual %s", v.Name())
	}
	if v.Size() != 3 {
		t.Errorf("size: expected 3, actual %d", v.Size())
	}

	var encodeTests = []struct {
		value    string
		expected uint
	}{
		{"x", 0b001},
		{"y", 0b010},
		{"z", 0b100},
	}
	for _, tt := range encodeTests {
		mask, err := v.Encode(tt.value)
		if err != nil {
			t.Fatalf("Encode(%s): %s", tt.value, err)
		}
		if mask != tt.expected {
			t.Errorf("Encode(%s): expected %b, actual %b", tt.value, tt.expected, mask)
		}
		val, err := v.Decode(mask)
		if err != nil {
			t.Fatalf("Decode(%b): %s", mask, err)
		}
		if val != tt.value {
			t.Errorf("Decode(Encode(%s)): expected %s, actual %v", tt.value, tt.value, val)
		}
	}
}

func TestToVarRename(t *testing.T) {
	v, _ := ToVar([]string{"x", "y", "z"}, "myvar")
	w := v.WithName("bar")
	if v.Name() != "myvar" || w.Name() != "bar" {
		t.Errorf("rename: expected myvar/bar, actual %s/%s", v.Name(), w.Name())
	}
	if w.Size() != v.Size() {
		t.Errorf("rename changed the encoding width")
	}
	// Renaming to the current name is the identity.
	if v.WithName("myvar") != v {
		t.Errorf("WithName with an unchanged name should return the receiver")
	}

	// ToVar on an existing variable is a pure rename.
	u, err := ToVar(v, "quux")
	if err != nil {
		t.Fatalf("ToVar(variable): %s", err)
	}
	if u.Name() != "quux" || u.Size() != 3 {
		t.Errorf("ToVar(variable): expected quux/3, actual %s/%d", u.Name(), u.Size())
	}
	same, err := ToVar(v, "")
	if err != nil || same != v {
		t.Errorf("ToVar(variable) without a name should be the identity")
	}
}

func TestToVarFreshNames(t *testing.T) {
	a, _ := ToVar([]int{0, 1}, "")
	b, _ := ToVar([]int{0, 1}, "")
	if a.Name() == "" || b.Name() == "" {
		t.Fatalf("expected generated names")
	}
	if a.Name() == b.Name() {
		t.Errorf("generated names must be unique, got %s twice", a.Name())
	}
}

func TestToVarErrors(t *testing.T) {
	var verr *ValidationError
	if _, err := ToVar([]int{}, "empty"); !errors.As(err, &verr) {
		t.Errorf("empty domain: expected ValidationError, actual %v", err)
	}
	if _, err := ToVar(42, "scalar"); !errors.As(err, &verr) {
		t.Errorf("scalar domain: expected ValidationError, actual %v", err)
	}
}

func TestEncodeDecodeErrors(t *testing.T) {
	v, _ := ToVar([]int{1, 2, 3}, "x")
	var aerr *InvalidAssignmentError
	if _, err := v.Encode(4); !errors.As(err, &aerr) {
		t.Errorf("Encode(4): expected InvalidAssignmentError, actual %v", err)
	}
	for _, mask := range []uint{0, 0b011, 0b111, 1 << 5} {
		if _, err := v.Decode(mask); !errors.As(err, &aerr) {
			t.Errorf("Decode(%b): expected InvalidAssignmentError, actual %v", mask, err)
		}
	}
}

func TestEncodeFirstMatch(t *testing.T) {
	// Deduplication is not assumed: index lookup uses the first match.
	v, _ := ToVar([]int{7, 7, 8}, "dup")
	mask, err := v.Encode(7)
	if err != nil {
		t.Fatalf("Encode(7): %s", err)
	}
	if mask != 0b001 {
		t.Errorf("Encode(7): expected first-match mask 001, actual %b", mask)
	}
}

func TestConstrain(t *testing.T) {
	v, _ := ToVar([]int{1, 2, 3}, "x")
	w, _ := ToVar([]int{4, 5}, "y")

	if _, err := v.Constrain(Not(v.Eq(3))); err != nil {
		t.Errorf("single-signal constraint rejected: %s", err)
	}

	var verr *ValidationError
	if _, err := v.Constrain(w.Bit(0)); !errors.As(err, &verr) {
		t.Errorf("foreign-signal constraint: expected ValidationError, actual %v", err)
	}
	if _, err := v.Constrain(And(v.Bit(0), w.Bit(0))); !errors.As(err, &verr) {
		t.Errorf("two-signal constraint: expected ValidationError, actual %v", err)
	}
}
