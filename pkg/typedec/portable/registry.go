// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package portable resolves numeric type ids against the portable
// type registry embedded in modern (v14+) runtime metadata. The
// registry is the SCALE-encoded scale-info v1 form: a sequence of
// (id, type) pairs where each type carries a path, generic
// parameters, a definition and docs.
package portable

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ChainSafe/frame-decode/pkg/scale"
	"github.com/ChainSafe/frame-decode/pkg/typedec"
)

// ErrTypeNotFound aliases the typedec sentinel so callers only need
// one errors.Is target.
var ErrTypeNotFound = typedec.ErrTypeNotFound

// Entry is a single registered type: its path (namespace within the
// runtime's source), generic parameters and structural shape.
type Entry struct {
	ID     uint32
	Path   []string
	Params []Param
	Type   typedec.Type[uint32]
}

// Param is a generic parameter of a registered type. Type is nil when
// the parameter is unbound.
type Param struct {
	Name string
	Type *uint32
}

// Registry holds the decoded portable types of one metadata and
// resolves uint32 type ids to structural shapes.
type Registry struct {
	entries map[uint32]*Entry
}

var _ typedec.Resolver[uint32] = (*Registry)(nil)

// NewRegistry builds a registry from already-decoded entries. Used by
// tests and by callers that assemble registries programmatically; the
// usual path is DecodeRegistry.
func NewRegistry(entries []Entry) *Registry {
	r := &Registry{entries: make(map[uint32]*Entry, len(entries))}
	for i := range entries {
		e := entries[i]
		r.entries[e.ID] = &e
	}
	return r
}

// ResolveType returns the structural shape registered under id.
func (r *Registry) ResolveType(id uint32) (*typedec.Type[uint32], error) {
	e, ok := r.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrTypeNotFound, id)
	}
	return &e.Type, nil
}

// Entry returns the full registry entry for id, including its path
// and generic parameters.
func (r *Registry) Entry(id uint32) (*Entry, error) {
	e, ok := r.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrTypeNotFound, id)
	}
	return e, nil
}

// Len returns the number of registered types.
func (r *Registry) Len() int { return len(r.entries) }

// PathOf returns the "::"-joined path of id, or the empty string if
// the type has no path or is unknown.
func (r *Registry) PathOf(id uint32) string {
	e, ok := r.entries[id]
	if !ok {
		return ""
	}
	return strings.Join(e.Path, "::")
}

// DecodeRegistry consumes a SCALE-encoded portable type registry from
// the cursor.
func DecodeRegistry(cur *scale.Cursor) (*Registry, error) {
	count, err := cur.ReadCompactU32()
	if err != nil {
		return nil, fmt.Errorf("reading type count: %w", err)
	}
	reg := &Registry{entries: make(map[uint32]*Entry, count)}
	for i := uint32(0); i < count; i++ {
		entry, err := decodeEntry(cur)
		if err != nil {
			return nil, fmt.Errorf("decoding type %d of %d: %w", i, count, err)
		}
		reg.entries[entry.ID] = entry
	}
	return reg, nil
}

func decodeEntry(cur *scale.Cursor) (*Entry, error) {
	id, err := cur.ReadCompactU32()
	if err != nil {
		return nil, err
	}
	entry := &Entry{ID: id}

	if entry.Path, err = decodeStrings(cur); err != nil {
		return nil, err
	}

	paramCount, err := cur.ReadCompactU32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < paramCount; i++ {
		var p Param
		if p.Name, err = cur.ReadString(); err != nil {
			return nil, err
		}
		ty, err := decodeOptionalID(cur)
		if err != nil {
			return nil, err
		}
		p.Type = ty
		entry.Params = append(entry.Params, p)
	}

	if err = decodeTypeDef(cur, &entry.Type); err != nil {
		return nil, err
	}

	// Trailing docs.
	if _, err = decodeStrings(cur); err != nil {
		return nil, err
	}
	return entry, nil
}

// Type definition tags of the scale-info v1 encoding.
const (
	defComposite   = 0
	defVariant     = 1
	defSequence    = 2
	defArray       = 3
	defTuple       = 4
	defPrimitive   = 5
	defCompact     = 6
	defBitSequence = 7
)

func decodeTypeDef(cur *scale.Cursor, out *typedec.Type[uint32]) error {
	tag, err := cur.ReadByte()
	if err != nil {
		return err
	}
	switch tag {
	case defComposite:
		out.Kind = typedec.KindComposite
		out.Fields, err = decodeFields(cur)
		return err

	case defVariant:
		out.Kind = typedec.KindVariant
		count, err := cur.ReadCompactU32()
		if err != nil {
			return err
		}
		for i := uint32(0); i < count; i++ {
			var c typedec.VariantCase[uint32]
			if c.Name, err = cur.ReadString(); err != nil {
				return err
			}
			if c.Fields, err = decodeFields(cur); err != nil {
				return err
			}
			if c.Index, err = cur.ReadByte(); err != nil {
				return err
			}
			if _, err = decodeStrings(cur); err != nil { // docs
				return err
			}
			out.Cases = append(out.Cases, c)
		}
		return nil

	case defSequence:
		out.Kind = typedec.KindSequence
		out.Elem, err = cur.ReadCompactU32()
		return err

	case defArray:
		out.Kind = typedec.KindArray
		if out.Len, err = cur.ReadU32(); err != nil {
			return err
		}
		out.Elem, err = cur.ReadCompactU32()
		return err

	case defTuple:
		out.Kind = typedec.KindTuple
		count, err := cur.ReadCompactU32()
		if err != nil {
			return err
		}
		for i := uint32(0); i < count; i++ {
			id, err := cur.ReadCompactU32()
			if err != nil {
				return err
			}
			out.Tuple = append(out.Tuple, id)
		}
		return nil

	case defPrimitive:
		out.Kind = typedec.KindPrimitive
		prim, err := cur.ReadByte()
		if err != nil {
			return err
		}
		if prim > uint8(typedec.I256) {
			return fmt.Errorf("unknown primitive tag %d", prim)
		}
		out.Primitive = typedec.PrimitiveKind(prim)
		return nil

	case defCompact:
		out.Kind = typedec.KindCompact
		out.Elem, err = cur.ReadCompactU32()
		return err

	case defBitSequence:
		out.Kind = typedec.KindBitSequence
		// Store and order type ids. The store width is fixed up once
		// the whole registry is available, via Finish.
		storeID, err := cur.ReadCompactU32()
		if err != nil {
			return err
		}
		if _, err = cur.ReadCompactU32(); err != nil { // order type
			return err
		}
		// Stash the store type id; resolved lazily below.
		out.Elem = storeID
		return nil

	default:
		return fmt.Errorf("unknown type definition tag %d", tag)
	}
}

func decodeFields(cur *scale.Cursor) ([]typedec.Field[uint32], error) {
	count, err := cur.ReadCompactU32()
	if err != nil {
		return nil, err
	}
	var fields []typedec.Field[uint32]
	for i := uint32(0); i < count; i++ {
		var f typedec.Field[uint32]
		name, err := decodeOptionalString(cur)
		if err != nil {
			return nil, err
		}
		f.Name = name
		if f.Type, err = cur.ReadCompactU32(); err != nil {
			return nil, err
		}
		if _, err = decodeOptionalString(cur); err != nil { // type name
			return nil, err
		}
		if _, err = decodeStrings(cur); err != nil { // docs
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

func decodeStrings(cur *scale.Cursor) ([]string, error) {
	count, err := cur.ReadCompactU32()
	if err != nil {
		return nil, err
	}
	var out []string
	for i := uint32(0); i < count; i++ {
		s, err := cur.ReadString()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func decodeOptionalString(cur *scale.Cursor) (string, error) {
	present, err := cur.ReadBool()
	if err != nil || !present {
		return "", err
	}
	return cur.ReadString()
}

func decodeOptionalID(cur *scale.Cursor) (*uint32, error) {
	present, err := cur.ReadBool()
	if err != nil || !present {
		return nil, err
	}
	id, err := cur.ReadCompactU32()
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// Finish resolves bit sequence store widths now that every type of
// the registry is known. DecodeRegistry callers must invoke it once
// decoding is complete.
func (r *Registry) Finish() error {
	for id, e := range r.entries {
		if e.Type.Kind != typedec.KindBitSequence {
			continue
		}
		store, ok := r.entries[e.Type.Elem]
		if !ok {
			return fmt.Errorf("%w: bit sequence store type %d of type %d", ErrTypeNotFound, e.Type.Elem, id)
		}
		if store.Type.Kind != typedec.KindPrimitive || !store.Type.Primitive.IsUnsigned() {
			return errors.New("bit sequence store type must be an unsigned integer")
		}
		switch store.Type.Primitive {
		case typedec.U8:
			e.Type.BitStoreWidth = 8
		case typedec.U16:
			e.Type.BitStoreWidth = 16
		case typedec.U32:
			e.Type.BitStoreWidth = 32
		case typedec.U64:
			e.Type.BitStoreWidth = 64
		default:
			return fmt.Errorf("bit sequence store type %s is too wide", store.Type.Primitive)
		}
		e.Type.Elem = 0
	}
	return nil
}
