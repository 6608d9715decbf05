// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package typedec

import (
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChainSafe/frame-decode/pkg/scale"
)

type mapResolver map[uint32]*Type[uint32]

func (m mapResolver) ResolveType(id uint32) (*Type[uint32], error) {
	t, ok := m[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrTypeNotFound, id)
	}
	return t, nil
}

// eventVisitor records a flat line per leaf and structural event.
type eventVisitor struct {
	IgnoreVisitor
	events []string
}

func (v *eventVisitor) add(format string, args ...interface{}) error {
	v.events = append(v.events, fmt.Sprintf(format, args...))
	return nil
}

func (v *eventVisitor) Field(_ int, name string) error {
	return v.add("field %s", name)
}

func (v *eventVisitor) BeginVariant(index uint8, name string, _ int) error {
	return v.add("variant %d %s", index, name)
}

func (v *eventVisitor) Uint(u uint64, kind PrimitiveKind, r scale.Range) error {
	return v.add("%s %d %s", kind, u, r)
}

func (v *eventVisitor) Str(s string, r scale.Range) error {
	return v.add("str %q %s", s, r)
}

func (v *eventVisitor) Compact(c *big.Int, r scale.Range) error {
	return v.add("compact %s %s", c, r)
}

func (v *eventVisitor) BitSequence(bits uint32, data []byte, r scale.Range) error {
	return v.add("bits %d % x %s", bits, data, r)
}

const (
	tyU8 uint32 = iota
	tyU16
	tyU32
	tyStr
	tyBool
	tyAccount  // composite {nonce: u32, name: str}
	tyEvent    // variant {Created@0(owner: u8), Killed@2}
	tyU16Seq   // sequence of u16
	tyU8Pair   // tuple (u8, u8)
	tyBalance  // composite {[0]: u32}, compact-wrapped below
	tyCompact  // compact of tyBalance
	tyBits     // bit sequence, u8 store
	tyBoolCpt  // compact of bool, malformed
	tyU8Cpt // compact of u8
)

func testResolver() mapResolver {
	return mapResolver{
		tyU8:   NewPrimitive[uint32](U8),
		tyU16:  NewPrimitive[uint32](U16),
		tyU32:  NewPrimitive[uint32](U32),
		tyStr:  NewPrimitive[uint32](Str),
		tyBool: NewPrimitive[uint32](Bool),
		tyAccount: NewComposite[uint32](
			Field[uint32]{Name: "nonce", Type: tyU32},
			Field[uint32]{Name: "name", Type: tyStr},
		),
		tyEvent: NewVariant[uint32](
			VariantCase[uint32]{
				Name:   "Created",
				Index:  0,
				Fields: []Field[uint32]{{Name: "owner", Type: tyU8}},
			},
			VariantCase[uint32]{Name: "Killed", Index: 2},
		),
		tyU16Seq:   NewSequence[uint32](tyU16),
		tyU8Pair:   NewTuple[uint32](tyU8, tyU8),
		tyBalance:  NewComposite[uint32](Field[uint32]{Type: tyU32}),
		tyCompact:  NewCompact[uint32](tyBalance),
		tyBits:     NewBitSequence[uint32](8),
		tyBoolCpt:  NewCompact[uint32](tyBool),
		tyU8Cpt: NewCompact[uint32](tyU8),
	}
}

func TestDecodeComposite(t *testing.T) {
	t.Parallel()

	data := []byte{7, 0, 0, 0, 0x08, 'h', 'i'}
	cur := scale.NewCursor(data)
	vis := &eventVisitor{}
	err := DecodeWithVisitor[uint32](cur, tyAccount, testResolver(), vis)
	require.NoError(t, err)
	assert.Zero(t, cur.Remaining())
	assert.Equal(t, []string{
		"field nonce",
		"u32 7 [0, 4)",
		"field name",
		`str "hi" [4, 7)`,
	}, vis.events)
}

func TestDecodeVariant(t *testing.T) {
	t.Parallel()
	resolver := testResolver()

	vis := &eventVisitor{}
	err := DecodeWithVisitor[uint32](scale.NewCursor([]byte{0, 9}), tyEvent, resolver, vis)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"variant 0 Created",
		"field owner",
		"u8 9 [1, 2)",
	}, vis.events)

	vis = &eventVisitor{}
	err = DecodeWithVisitor[uint32](scale.NewCursor([]byte{2}), tyEvent, resolver, vis)
	require.NoError(t, err)
	assert.Equal(t, []string{"variant 2 Killed"}, vis.events)

	err = DecodeWithVisitor[uint32](scale.NewCursor([]byte{1}), tyEvent, resolver, IgnoreVisitor{})
	assert.ErrorIs(t, err, ErrUnknownVariant)
}

func TestDecodeSequenceAndTuple(t *testing.T) {
	t.Parallel()
	resolver := testResolver()

	vis := &eventVisitor{}
	err := DecodeWithVisitor[uint32](scale.NewCursor([]byte{0x08, 1, 0, 2, 0}), tyU16Seq, resolver, vis)
	require.NoError(t, err)
	assert.Equal(t, []string{"u16 1 [1, 3)", "u16 2 [3, 5)"}, vis.events)

	vis = &eventVisitor{}
	err = DecodeWithVisitor[uint32](scale.NewCursor([]byte{3, 4}), tyU8Pair, resolver, vis)
	require.NoError(t, err)
	assert.Equal(t, []string{"u8 3 [0, 1)", "u8 4 [1, 2)"}, vis.events)
}

func TestDecodeCompact(t *testing.T) {
	t.Parallel()
	resolver := testResolver()

	// Compact wrapped in a single-field composite resolves through it.
	vis := &eventVisitor{}
	err := DecodeWithVisitor[uint32](scale.NewCursor([]byte{0x15, 0x01}), tyCompact, resolver, vis)
	require.NoError(t, err)
	assert.Equal(t, []string{"compact 69 [0, 2)"}, vis.events)

	err = DecodeWithVisitor[uint32](scale.NewCursor([]byte{0}), tyBoolCpt, resolver, IgnoreVisitor{})
	assert.ErrorIs(t, err, ErrNotCompact)

	// Compact u8 larger than a u8.
	err = DecodeWithVisitor[uint32](scale.NewCursor([]byte{0xb1, 0x04}), tyU8Cpt, resolver, IgnoreVisitor{})
	assert.ErrorIs(t, err, scale.ErrInvalidCompact)
}

func TestDecodeBitSequence(t *testing.T) {
	t.Parallel()

	vis := &eventVisitor{}
	err := DecodeWithVisitor[uint32](scale.NewCursor([]byte{0x28, 0xff, 0x03}), tyBits, testResolver(), vis)
	require.NoError(t, err)
	assert.Equal(t, []string{"bits 10 ff 03 [0, 3)"}, vis.events)
}

func TestDecodeWithTracePath(t *testing.T) {
	t.Parallel()

	// name's length prefix says 4 bytes but only 2 follow.
	data := []byte{7, 0, 0, 0, 0x10, 'h', 'i'}
	err := DecodeWithTrace[uint32](scale.NewCursor(data), tyAccount, testResolver(), IgnoreVisitor{})
	require.Error(t, err)
	assert.ErrorIs(t, err, scale.ErrTruncated)

	traceErr := &TraceError{}
	require.ErrorAs(t, err, &traceErr)
	assert.Equal(t, []string{"name"}, traceErr.Path)
	assert.Equal(t, 4, traceErr.Offset)
	assert.Contains(t, traceErr.Error(), "at name (byte 4)")
}

type failingVisitor struct {
	IgnoreVisitor
}

var errBoom = errors.New("boom")

func (failingVisitor) Uint(uint64, PrimitiveKind, scale.Range) error { return errBoom }

func TestVisitorError(t *testing.T) {
	t.Parallel()

	err := DecodeWithVisitor[uint32](scale.NewCursor([]byte{1, 0, 0, 0, 0}), tyAccount,
		testResolver(), failingVisitor{})
	assert.ErrorIs(t, err, ErrVisitor)
}
