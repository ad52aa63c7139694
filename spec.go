// Copyright (c) 2026 The mdd Authors
//
// MIT License

package mdd

import (
	"io"

	yaml "gopkg.in/yaml.v3"
)

// interfaceSpec mirrors the YAML declaration of an interface:
//
//	inputs:
//	  x: [1, 2, 3]
//	  y: [6, 5]
//	output: [-1, 0]
//
// Input declaration order is significant (it is the canonical bit order), so
// inputs are kept as a raw mapping node rather than decoded into a map. The
// raw node also keeps short names such as "y", "on" or "no" as strings; a
// YAML 1.1 decoder would resolve them to booleans and lose the name.
type interfaceSpec struct {
	Inputs yaml.Node     `yaml:"inputs"`
	Output []interface{} `yaml:"output"`
}

// ParseInterface builds an Interface from a YAML declaration. Input
// variables keep their declaration order; the output variable gets a fresh
// generated name. Ill-formed declarations (non-scalar input names, scalar
// domains, duplicates, empty domains) surface as the same errors as
// programmatic construction.
func ParseInterface(data []byte) (*Interface, error) {
	var s interfaceSpec
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if len(s.Output) == 0 {
		return nil, valerrf("missing or empty output domain")
	}
	var inputs []*Variable
	if s.Inputs.Kind != 0 {
		if s.Inputs.Kind != yaml.MappingNode {
			return nil, valerrf("inputs must be a mapping of names to domains")
		}
		for i := 0; i+1 < len(s.Inputs.Content); i += 2 {
			key, val := s.Inputs.Content[i], s.Inputs.Content[i+1]
			if key.Kind != yaml.ScalarNode {
				return nil, valerrf("input name must be a scalar, got a %v node", key.Tag)
			}
			name := key.Value
			var domain []interface{}
			if err := val.Decode(&domain); err != nil {
				return nil, valerrf("domain of %q must be a sequence", name)
			}
			v, err := newVariable(domain, name)
			if err != nil {
				return nil, err
			}
			inputs = append(inputs, v)
		}
	}
	out, err := newVariable(s.Output, "")
	if err != nil {
		return nil, err
	}
	return NewInterface(inputs, out)
}

// ReadInterface builds an Interface from a YAML declaration read from r.
func ReadInterface(r io.Reader) (*Interface, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseInterface(data)
}
