// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package legacy

import (
	"errors"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ErrBadRegistryFile is returned when a chain type registry file is
// malformed.
var ErrBadRegistryFile = errors.New("invalid chain type registry")

// ChainTypeRegistry is the parsed form of a chain's type registry
// file: a set of global type definitions plus overlays that apply
// only within spec version ranges. Files are YAML:
//
//	global:
//	  types:
//	    Balance: u128
//	    IdentityFields: { display: Data, legal: Data }
//	    RewardDestination: { _enum: [Staked, Stash, Controller] }
//	forSpec:
//	  - range: [0, 1019]
//	    types:
//	      Address: AccountId
//	  - range: [1020, null]
//	    types:
//	      Address: MultiAddress
//
// A scalar value is an alias, a mapping is a struct with named
// fields, and a mapping whose only key is "_enum" is a variant; the
// enum body is either a list of fieldless case names or a mapping
// from case name to a null (fieldless) or a type name (one unnamed
// field).
type ChainTypeRegistry struct {
	global   *TypeRegistry
	overlays []specOverlay
}

type specOverlay struct {
	low  uint64
	high *uint64
	reg  *TypeRegistry
}

// ParseChainTypeRegistry parses a registry file. Definition order
// within a types block is preserved, and later forSpec overlays
// shadow earlier ones when layered by ForSpecVersion.
func ParseChainTypeRegistry(data []byte) (*ChainTypeRegistry, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBadRegistryFile, err)
	}
	out := &ChainTypeRegistry{global: NewTypeRegistry()}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return out, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: top level must be a mapping", ErrBadRegistryFile)
	}

	for i := 0; i < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		switch key.Value {
		case "global":
			if err := parseTypesSection(val, out.global); err != nil {
				return nil, err
			}
		case "forSpec":
			if val.Kind != yaml.SequenceNode {
				return nil, fmt.Errorf("%w: forSpec must be a list", ErrBadRegistryFile)
			}
			for _, entry := range val.Content {
				overlay, err := parseOverlay(entry)
				if err != nil {
					return nil, err
				}
				out.overlays = append(out.overlays, overlay)
			}
		default:
			return nil, fmt.Errorf("%w: unknown top-level key %q", ErrBadRegistryFile, key.Value)
		}
	}
	return out, nil
}

// ForSpecVersion returns the registries applying to one spec version:
// the global registry first, then every overlay whose range contains
// the version, in file order. Layer them on a TypeRegistrySet after
// Basic() and the metadata projection.
func (c *ChainTypeRegistry) ForSpecVersion(v uint64) []*TypeRegistry {
	out := []*TypeRegistry{c.global}
	for _, o := range c.overlays {
		if v < o.low {
			continue
		}
		if o.high != nil && v > *o.high {
			continue
		}
		out = append(out, o.reg)
	}
	return out
}

func parseOverlay(n *yaml.Node) (specOverlay, error) {
	if n.Kind != yaml.MappingNode {
		return specOverlay{}, fmt.Errorf("%w: forSpec entry must be a mapping", ErrBadRegistryFile)
	}
	overlay := specOverlay{reg: NewTypeRegistry()}
	sawRange := false
	for i := 0; i < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		switch key.Value {
		case "range":
			if val.Kind != yaml.SequenceNode || len(val.Content) != 2 {
				return specOverlay{}, fmt.Errorf("%w: range must be [low, high]", ErrBadRegistryFile)
			}
			low, err := strconv.ParseUint(val.Content[0].Value, 10, 64)
			if err != nil {
				return specOverlay{}, fmt.Errorf("%w: range low %q: %s", ErrBadRegistryFile, val.Content[0].Value, err)
			}
			overlay.low = low
			if hi := val.Content[1]; hi.Tag != "!!null" {
				high, err := strconv.ParseUint(hi.Value, 10, 64)
				if err != nil {
					return specOverlay{}, fmt.Errorf("%w: range high %q: %s", ErrBadRegistryFile, hi.Value, err)
				}
				overlay.high = &high
			}
			sawRange = true
		case "types":
			if err := parseTypesSection(wrapTypes(val), overlay.reg); err != nil {
				return specOverlay{}, err
			}
		default:
			return specOverlay{}, fmt.Errorf("%w: unknown forSpec key %q", ErrBadRegistryFile, key.Value)
		}
	}
	if !sawRange {
		return specOverlay{}, fmt.Errorf("%w: forSpec entry without a range", ErrBadRegistryFile)
	}
	return overlay, nil
}

// wrapTypes lets parseTypesSection handle both the global section
// (which nests its mapping under a "types" key) and a forSpec entry's
// already-unwrapped types mapping.
func wrapTypes(types *yaml.Node) *yaml.Node {
	return &yaml.Node{
		Kind:    yaml.MappingNode,
		Content: []*yaml.Node{{Kind: yaml.ScalarNode, Value: "types"}, types},
	}
}

func parseTypesSection(n *yaml.Node, reg *TypeRegistry) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: types section must be a mapping", ErrBadRegistryFile)
	}
	for i := 0; i < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		if key.Value != "types" {
			return fmt.Errorf("%w: unknown key %q in types section", ErrBadRegistryFile, key.Value)
		}
		if val.Kind != yaml.MappingNode {
			return fmt.Errorf("%w: types must be a mapping", ErrBadRegistryFile)
		}
		for j := 0; j < len(val.Content); j += 2 {
			name, body := val.Content[j], val.Content[j+1]
			shape, err := parseShape(body)
			if err != nil {
				return fmt.Errorf("type %q: %w", name.Value, err)
			}
			if err := reg.Insert(name.Value, shape); err != nil {
				return err
			}
		}
	}
	return nil
}

func parseShape(n *yaml.Node) (TypeShape, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		target, err := ParseLookupName(n.Value)
		if err != nil {
			return TypeShape{}, err
		}
		return AliasShape(target), nil

	case yaml.MappingNode:
		if len(n.Content) == 2 && n.Content[0].Value == "_enum" {
			return parseEnumShape(n.Content[1])
		}
		return parseStructShape(n)

	default:
		return TypeShape{}, fmt.Errorf("%w: shape must be a string or mapping", ErrBadRegistryFile)
	}
}

func parseStructShape(n *yaml.Node) (TypeShape, error) {
	var fields []ShapeField
	for i := 0; i < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		if val.Kind != yaml.ScalarNode {
			return TypeShape{}, fmt.Errorf("%w: field %q must name a type; define nested shapes as their own entries", ErrBadRegistryFile, key.Value)
		}
		ty, err := ParseLookupName(val.Value)
		if err != nil {
			return TypeShape{}, err
		}
		fields = append(fields, ShapeField{Name: key.Value, Type: ty})
	}
	return StructShape(fields...), nil
}

func parseEnumShape(n *yaml.Node) (TypeShape, error) {
	switch n.Kind {
	case yaml.SequenceNode:
		var cases []ShapeVariant
		for i, c := range n.Content {
			cases = append(cases, ShapeVariant{Index: uint8(i), Name: c.Value})
		}
		return EnumShape(cases...), nil

	case yaml.MappingNode:
		var cases []ShapeVariant
		for i := 0; i < len(n.Content); i += 2 {
			key, val := n.Content[i], n.Content[i+1]
			if key.Value == "_set" {
				return TypeShape{}, fmt.Errorf("%w: _enum sets are not supported", ErrBadRegistryFile)
			}
			v := ShapeVariant{Index: uint8(i / 2), Name: key.Value}
			if val.Tag != "!!null" {
				if val.Kind != yaml.ScalarNode {
					return TypeShape{}, fmt.Errorf("%w: _enum case %q must be null or a type name", ErrBadRegistryFile, key.Value)
				}
				ty, err := ParseLookupName(val.Value)
				if err != nil {
					return TypeShape{}, err
				}
				v.Tuple = []LookupName{ty}
			}
			cases = append(cases, v)
		}
		return EnumShape(cases...), nil

	default:
		return TypeShape{}, fmt.Errorf("%w: _enum must be a list or mapping", ErrBadRegistryFile)
	}
}
