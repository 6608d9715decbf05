// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package legacy

import (
	"errors"
	"fmt"

	"github.com/ChainSafe/frame-decode/pkg/typedec"
)

// ErrTypeNotFound aliases the typedec sentinel so callers only need
// one errors.Is target.
var ErrTypeNotFound = typedec.ErrTypeNotFound

// ErrAliasDepth is returned when alias resolution does not terminate
// within a reasonable number of steps.
var ErrAliasDepth = errors.New("alias chain too deep")

const maxAliasDepth = 32

type registryKey struct {
	pallet string
	name   string
}

type registryEntry struct {
	params []string
	shape  TypeShape
}

// TypeRegistry maps type names to shapes. Entries registered with
// generic parameters ("Vec<T>") have the parameters bound to the
// call-site arguments at resolution time. Entries may be scoped to a
// pallet, in which case they are only found for names mentioned in
// that pallet and shadow any global entry of the same name.
type TypeRegistry struct {
	types map[registryKey]*registryEntry
}

// NewTypeRegistry returns an empty registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{types: make(map[registryKey]*registryEntry)}
}

// Insert registers a shape under a name. The name must be a plain
// identifier optionally followed by generic parameters, each a plain
// identifier ("Result<T, E>"). Inserting an existing name replaces it.
func (r *TypeRegistry) Insert(name string, shape TypeShape) error {
	return r.insert("", name, shape)
}

// InsertInPallet registers a shape visible only to names mentioned in
// the given pallet.
func (r *TypeRegistry) InsertInPallet(pallet, name string, shape TypeShape) error {
	return r.insert(pallet, name, shape)
}

// MustInsert is Insert for statically known definitions.
func (r *TypeRegistry) MustInsert(name string, shape TypeShape) {
	if err := r.Insert(name, shape); err != nil {
		panic(err)
	}
}

func (r *TypeRegistry) insert(pallet, name string, shape TypeShape) error {
	parsed, err := ParseLookupName(name)
	if err != nil {
		return err
	}
	if parsed.Kind != LookupNamed {
		return fmt.Errorf("cannot register shape under %q: only named types can be registered", name)
	}
	entry := &registryEntry{shape: shape}
	for _, p := range parsed.Params {
		if p.Kind != LookupNamed || len(p.Params) != 0 {
			return fmt.Errorf("cannot register shape under %q: generic parameters must be plain identifiers", name)
		}
		entry.params = append(entry.params, p.Name)
	}
	r.types[registryKey{pallet: pallet, name: parsed.Name}] = entry
	return nil
}

func (r *TypeRegistry) lookup(pallet, name string) *registryEntry {
	if pallet != "" {
		if e, ok := r.types[registryKey{pallet: pallet, name: name}]; ok {
			return e
		}
	}
	return r.types[registryKey{name: name}]
}

// TypeRegistrySet overlays registries on top of one another. Lookups
// search the registries from last to first, so later registries
// shadow earlier ones. The set is what implements the resolver used
// by the structural decoder.
type TypeRegistrySet struct {
	registries []*TypeRegistry
}

var _ typedec.Resolver[LookupName] = (*TypeRegistrySet)(nil)

// NewTypeRegistrySet overlays the given registries, later shadowing
// earlier.
func NewTypeRegistrySet(registries ...*TypeRegistry) *TypeRegistrySet {
	return &TypeRegistrySet{registries: registries}
}

// Push adds a registry on top of the set.
func (s *TypeRegistrySet) Push(r *TypeRegistry) {
	s.registries = append(s.registries, r)
}

func (s *TypeRegistrySet) lookup(pallet, name string) *registryEntry {
	// Pallet-scoped entries shadow global ones across the whole set,
	// so scan the scoped key first.
	if pallet != "" {
		for i := len(s.registries) - 1; i >= 0; i-- {
			if e, ok := s.registries[i].types[registryKey{pallet: pallet, name: name}]; ok {
				return e
			}
		}
	}
	for i := len(s.registries) - 1; i >= 0; i-- {
		if e, ok := s.registries[i].types[registryKey{name: name}]; ok {
			return e
		}
	}
	return nil
}

// ResolveType resolves a parsed name to its structural shape. Every
// type identifier inside the returned shape carries the pallet scope
// of the name it came from, so the decoder can resolve them without
// extra context.
func (s *TypeRegistrySet) ResolveType(n LookupName) (*typedec.Type[LookupName], error) {
	return s.resolve(n, 0)
}

func (s *TypeRegistrySet) resolve(n LookupName, depth int) (*typedec.Type[LookupName], error) {
	if depth > maxAliasDepth {
		return nil, fmt.Errorf("%w resolving %q", ErrAliasDepth, n.String())
	}

	switch n.Kind {
	case LookupTuple:
		elems := make([]LookupName, len(n.Tuple))
		for i, e := range n.Tuple {
			elems[i] = e.InPallet(n.Pallet)
		}
		return typedec.NewTuple(elems...), nil

	case LookupArray:
		return typedec.NewArray(n.Elem.InPallet(n.Pallet), n.Len), nil
	}

	entry := s.lookup(n.Pallet, n.Name)
	if entry == nil {
		return nil, fmt.Errorf("%w: %q", ErrTypeNotFound, n.String())
	}
	if len(entry.params) != len(n.Params) {
		return nil, fmt.Errorf("%q expects %d generic parameters, got %d",
			n.Name, len(entry.params), len(n.Params))
	}

	var bindings map[string]LookupName
	if len(entry.params) > 0 {
		bindings = make(map[string]LookupName, len(entry.params))
		for i, p := range entry.params {
			bindings[p] = subst(n.Params[i], nil, n.Pallet)
		}
	}

	if entry.shape.Kind == ShapeAlias {
		return s.resolve(subst(*entry.shape.Alias, bindings, n.Pallet), depth+1)
	}
	return shapeToType(entry.shape, bindings, n.Pallet), nil
}

// subst rewrites a name from a shape definition for one resolution
// site: bound generic parameters are replaced by their call-site
// arguments (which are already fully scoped), and every other name is
// scoped to the pallet being resolved in.
func subst(n LookupName, bindings map[string]LookupName, pallet string) LookupName {
	switch n.Kind {
	case LookupTuple:
		elems := make([]LookupName, len(n.Tuple))
		for i, e := range n.Tuple {
			elems[i] = subst(e, bindings, pallet)
		}
		return LookupName{Kind: LookupTuple, Tuple: elems, Pallet: pallet}

	case LookupArray:
		elem := subst(*n.Elem, bindings, pallet)
		return LookupName{Kind: LookupArray, Elem: &elem, Len: n.Len, Pallet: pallet}
	}

	if len(n.Params) == 0 {
		if bound, ok := bindings[n.Name]; ok {
			return bound
		}
	}
	out := LookupName{Kind: LookupNamed, Name: n.Name, Pallet: pallet}
	if len(n.Params) > 0 {
		out.Params = make([]LookupName, len(n.Params))
		for i, p := range n.Params {
			out.Params[i] = subst(p, bindings, pallet)
		}
	}
	return out
}

func shapeToType(shape TypeShape, bindings map[string]LookupName, pallet string) *typedec.Type[LookupName] {
	switch shape.Kind {
	case ShapeStruct:
		fields := make([]typedec.Field[LookupName], len(shape.Struct))
		for i, f := range shape.Struct {
			fields[i] = typedec.Field[LookupName]{
				Name: f.Name,
				Type: subst(f.Type, bindings, pallet),
			}
		}
		return typedec.NewComposite(fields...)

	case ShapeEnum:
		cases := make([]typedec.VariantCase[LookupName], len(shape.Enum))
		for i, v := range shape.Enum {
			c := typedec.VariantCase[LookupName]{Name: v.Name, Index: v.Index}
			for _, f := range v.Fields {
				c.Fields = append(c.Fields, typedec.Field[LookupName]{
					Name: f.Name,
					Type: subst(f.Type, bindings, pallet),
				})
			}
			for _, t := range v.Tuple {
				c.Fields = append(c.Fields, typedec.Field[LookupName]{
					Type: subst(t, bindings, pallet),
				})
			}
			cases[i] = c
		}
		return typedec.NewVariant(cases...)

	case ShapeSequence:
		return typedec.NewSequence(subst(*shape.Elem, bindings, pallet))

	case ShapeArray:
		return typedec.NewArray(subst(*shape.Elem, bindings, pallet), shape.Len)

	case ShapeTuple:
		elems := make([]LookupName, len(shape.Tuple))
		for i, e := range shape.Tuple {
			elems[i] = subst(e, bindings, pallet)
		}
		return typedec.NewTuple(elems...)

	case ShapePrimitive:
		return typedec.NewPrimitive[LookupName](shape.Primitive)

	case ShapeCompact:
		return typedec.NewCompact(subst(*shape.Elem, bindings, pallet))

	default: // ShapeBitSequence
		return typedec.NewBitSequence[LookupName](shape.BitStoreWidth)
	}
}
