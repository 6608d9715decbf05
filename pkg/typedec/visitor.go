// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package typedec

import (
	"math/big"

	"github.com/ChainSafe/frame-decode/pkg/scale"
)

// Visitor receives events as the walker consumes an encoded value.
// Every End* and leaf callback carries the byte range the item
// occupied in the input buffer. Returning a non-nil error from any
// callback aborts the walk.
//
// Implementations should embed IgnoreVisitor and override only the
// callbacks they care about.
type Visitor interface {
	// BeginComposite is called before the fields of a composite.
	BeginComposite(numFields int) error
	// Field is called before each field of a composite or variant
	// case. name is empty for unnamed fields.
	Field(index int, name string) error
	// EndComposite is called after the fields of a composite.
	EndComposite(r scale.Range) error

	// BeginVariant is called after the case-selecting index byte of a
	// variant has been consumed.
	BeginVariant(index uint8, name string, numFields int) error
	// EndVariant is called after the fields of the selected case.
	EndVariant(r scale.Range) error

	// BeginSequence is called after the compact length prefix of a
	// sequence has been consumed.
	BeginSequence(length int) error
	// Element is called before each element of a sequence, array or
	// tuple.
	Element(index int) error
	// EndSequence is called after the last element.
	EndSequence(r scale.Range) error

	// BeginArray and EndArray bracket a fixed-length array.
	BeginArray(length int) error
	EndArray(r scale.Range) error

	// BeginTuple and EndTuple bracket a tuple.
	BeginTuple(numElements int) error
	EndTuple(r scale.Range) error

	// Bool, Char and Str report primitive leaves.
	Bool(v bool, r scale.Range) error
	Char(v rune, r scale.Range) error
	Str(v string, r scale.Range) error

	// Uint reports u8 through u64 values; BigUint reports u128 and
	// u256 values.
	Uint(v uint64, kind PrimitiveKind, r scale.Range) error
	BigUint(v *big.Int, kind PrimitiveKind, r scale.Range) error

	// Int reports i8 through i64 values; BigInt reports i128 and
	// i256 values.
	Int(v int64, kind PrimitiveKind, r scale.Range) error
	BigInt(v *big.Int, kind PrimitiveKind, r scale.Range) error

	// Compact reports a compact-encoded integer of any width.
	Compact(v *big.Int, r scale.Range) error

	// BitSequence reports a bit sequence. data borrows the store
	// bytes from the input buffer.
	BitSequence(bitLen uint32, data []byte, r scale.Range) error
}

// IgnoreVisitor implements Visitor with no-ops, consuming a value
// while ignoring its contents. Embed it to implement only a subset of
// the callbacks.
type IgnoreVisitor struct{}

var _ Visitor = IgnoreVisitor{}

func (IgnoreVisitor) BeginComposite(int) error                            { return nil }
func (IgnoreVisitor) Field(int, string) error                             { return nil }
func (IgnoreVisitor) EndComposite(scale.Range) error                      { return nil }
func (IgnoreVisitor) BeginVariant(uint8, string, int) error               { return nil }
func (IgnoreVisitor) EndVariant(scale.Range) error                        { return nil }
func (IgnoreVisitor) BeginSequence(int) error                             { return nil }
func (IgnoreVisitor) Element(int) error                                   { return nil }
func (IgnoreVisitor) EndSequence(scale.Range) error                       { return nil }
func (IgnoreVisitor) BeginArray(int) error                                { return nil }
func (IgnoreVisitor) EndArray(scale.Range) error                          { return nil }
func (IgnoreVisitor) BeginTuple(int) error                                { return nil }
func (IgnoreVisitor) EndTuple(scale.Range) error                          { return nil }
func (IgnoreVisitor) Bool(bool, scale.Range) error                        { return nil }
func (IgnoreVisitor) Char(rune, scale.Range) error                        { return nil }
func (IgnoreVisitor) Str(string, scale.Range) error                       { return nil }
func (IgnoreVisitor) Uint(uint64, PrimitiveKind, scale.Range) error       { return nil }
func (IgnoreVisitor) BigUint(*big.Int, PrimitiveKind, scale.Range) error  { return nil }
func (IgnoreVisitor) Int(int64, PrimitiveKind, scale.Range) error         { return nil }
func (IgnoreVisitor) BigInt(*big.Int, PrimitiveKind, scale.Range) error   { return nil }
func (IgnoreVisitor) Compact(*big.Int, scale.Range) error                 { return nil }
func (IgnoreVisitor) BitSequence(uint32, []byte, scale.Range) error       { return nil }
