// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package legacy

import "github.com/ChainSafe/frame-decode/pkg/typedec"

// ShapeKind discriminates the structural form of a registry entry.
type ShapeKind uint8

// Structural forms a registry entry can take. An alias names another
// type; the remaining forms mirror the structural kinds of the
// typedec data model.
const (
	ShapeAlias ShapeKind = iota
	ShapeStruct
	ShapeEnum
	ShapeSequence
	ShapeArray
	ShapeTuple
	ShapePrimitive
	ShapeCompact
	ShapeBitSequence
)

// ShapeField is a named field of a struct shape.
type ShapeField struct {
	Name string
	Type LookupName
}

// ShapeVariant is one case of an enum shape, selected on the wire by
// Index. Fields and Tuple are mutually exclusive; both empty means a
// fieldless case.
type ShapeVariant struct {
	Index  uint8
	Name   string
	Fields []ShapeField
	Tuple  []LookupName
}

// TypeShape describes the structure of a registered type. Exactly the
// fields relevant to Kind are populated. Shapes are registered against
// a name that may carry generic parameters; any LookupName inside the
// shape whose base name matches a parameter is substituted at
// resolution time.
type TypeShape struct {
	Kind ShapeKind

	// Target of an alias.
	Alias *LookupName

	// Fields of a struct.
	Struct []ShapeField

	// Cases of an enum.
	Enum []ShapeVariant

	// Element of a sequence, array or compact.
	Elem *LookupName
	// Length of an array.
	Len uint32

	// Elements of a tuple.
	Tuple []LookupName

	// The primitive kind.
	Primitive typedec.PrimitiveKind

	// Store unit width of a bit sequence, in bits.
	BitStoreWidth uint8
}

// AliasShape returns a shape that names another type.
func AliasShape(target LookupName) TypeShape {
	return TypeShape{Kind: ShapeAlias, Alias: &target}
}

// StructShape returns a struct shape with the given named fields.
func StructShape(fields ...ShapeField) TypeShape {
	return TypeShape{Kind: ShapeStruct, Struct: fields}
}

// EnumShape returns an enum shape with the given cases.
func EnumShape(cases ...ShapeVariant) TypeShape {
	return TypeShape{Kind: ShapeEnum, Enum: cases}
}

// SequenceShape returns a variable-length sequence shape.
func SequenceShape(elem LookupName) TypeShape {
	return TypeShape{Kind: ShapeSequence, Elem: &elem}
}

// ArrayShape returns a fixed-length array shape.
func ArrayShape(elem LookupName, length uint32) TypeShape {
	return TypeShape{Kind: ShapeArray, Elem: &elem, Len: length}
}

// TupleShape returns a tuple shape.
func TupleShape(elems ...LookupName) TypeShape {
	return TypeShape{Kind: ShapeTuple, Tuple: elems}
}

// PrimitiveShape returns a primitive shape.
func PrimitiveShape(p typedec.PrimitiveKind) TypeShape {
	return TypeShape{Kind: ShapePrimitive, Primitive: p}
}

// CompactShape returns a compact integer shape over the inner type.
func CompactShape(inner LookupName) TypeShape {
	return TypeShape{Kind: ShapeCompact, Elem: &inner}
}

// BitSequenceShape returns a bit sequence shape with the given store
// unit width in bits.
func BitSequenceShape(storeWidth uint8) TypeShape {
	return TypeShape{Kind: ShapeBitSequence, BitStoreWidth: storeWidth}
}
