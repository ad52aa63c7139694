// Copyright (c) 2026 The mdd Authors
//
// MIT License

package mdd

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError reports an ill-formed declaration: duplicate variable
// names, a validity predicate spanning more than one signal, a constraint
// referencing undeclared inputs, or an attempt to combine formulas from
// different managers.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid declaration: " + e.Reason
}

func valerrf(format string, a ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, a...)}
}

// EncodingMismatchError reports that the free-bit set of a formula differs
// from the bit set an interface expects. Missing and Extra hold the two
// sides of the symmetric difference, as "name[index]" bit names (or bare
// signal names for signals the interface does not declare).
type EncodingMismatchError struct {
	Missing []string
	Extra   []string
}

func (e *EncodingMismatchError) Error() string {
	missing := append([]string{}, e.Missing...)
	extra := append([]string{}, e.Extra...)
	sort.Strings(missing)
	sort.Strings(extra)
	return fmt.Sprintf("encoding mismatch: missing bits [%s], extra bits [%s]",
		strings.Join(missing, " "), strings.Join(extra, " "))
}

// InvalidAssignmentError reports a value outside its variable's domain, a
// bitmask that is not one-hot, or an input assignment inconsistent with the
// validity predicate or with previously applied assignments.
type InvalidAssignmentError struct {
	Name   string // variable name, when known
	Value  any    // offending value or bitmask, when known
	Reason string
}

func (e *InvalidAssignmentError) Error() string {
	if e.Name == "" {
		return "invalid assignment: " + e.Reason
	}
	return fmt.Sprintf("invalid assignment for %s (%v): %s", e.Name, e.Value, e.Reason)
}

// NotFullyEvaluatedError reports that a full evaluation did not reduce the
// formula to a single decision over one output bit. Nodes is the number of
// decision nodes left in the residual formula.
type NotFullyEvaluatedError struct {
	Nodes int
}

func (e *NotFullyEvaluatedError) Error() string {
	return fmt.Sprintf("formula not fully evaluated: %d decision node(s) remain", e.Nodes)
}

// MalformedNodeNameError reports a decision node whose bit does not resolve
// to a declared variable, or whose index falls outside the owning variable's
// bit-width.
type MalformedNodeNameError struct {
	Bit    string // the "name[index]" bit name, when resolvable
	Reason string
}

func (e *MalformedNodeNameError) Error() string {
	if e.Bit == "" {
		return "malformed node name: " + e.Reason
	}
	return fmt.Sprintf("malformed node name %s: %s", e.Bit, e.Reason)
}
