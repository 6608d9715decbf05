// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package portable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChainSafe/frame-decode/pkg/scale"
	"github.com/ChainSafe/frame-decode/pkg/typedec"
)

// enc builds SCALE test vectors. Compact values must fit a single
// byte.
type enc struct{ b []byte }

func (e *enc) byte(b byte) *enc { e.b = append(e.b, b); return e }

func (e *enc) raw(b ...byte) *enc { e.b = append(e.b, b...); return e }

func (e *enc) compact(v uint32) *enc {
	if v > 63 {
		panic("compact value too large for test encoder")
	}
	return e.byte(byte(v << 2))
}

func (e *enc) str(s string) *enc {
	e.compact(uint32(len(s)))
	e.b = append(e.b, s...)
	return e
}

func (e *enc) boolean(v bool) *enc {
	if v {
		return e.byte(1)
	}
	return e.byte(0)
}

// encodeTestRegistry builds three types: a u32 primitive, a one-field
// composite with a path and a generic parameter, and a bit sequence
// stored in u32 units.
func encodeTestRegistry() []byte {
	e := &enc{}
	e.compact(3)

	// 0: u32
	e.compact(0)
	e.compact(0)          // path
	e.compact(0)          // params
	e.byte(5).byte(5)     // primitive, u32
	e.compact(0)          // docs

	// 1: sp_core::AccountId32 { id: u32 }
	e.compact(1)
	e.compact(2).str("sp_core").str("AccountId32")
	e.compact(1).str("T").boolean(true).compact(0) // param T = type 0
	e.byte(0)           // composite
	e.compact(1)        // one field
	e.boolean(true).str("id")
	e.compact(0)        // field type
	e.boolean(false)    // no type name
	e.compact(0)        // field docs
	e.compact(0)        // docs

	// 2: bit sequence with u32 store
	e.compact(2)
	e.compact(0) // path
	e.compact(0) // params
	e.byte(7).compact(0).compact(0)
	e.compact(0) // docs

	return e.b
}

func TestDecodeRegistry(t *testing.T) {
	t.Parallel()

	cur := scale.NewCursor(encodeTestRegistry())
	reg, err := DecodeRegistry(cur)
	require.NoError(t, err)
	require.NoError(t, reg.Finish())
	assert.Zero(t, cur.Remaining())
	assert.Equal(t, 3, reg.Len())

	prim, err := reg.ResolveType(0)
	require.NoError(t, err)
	assert.Equal(t, typedec.KindPrimitive, prim.Kind)
	assert.Equal(t, typedec.U32, prim.Primitive)

	account, err := reg.ResolveType(1)
	require.NoError(t, err)
	assert.Equal(t, typedec.KindComposite, account.Kind)
	require.Len(t, account.Fields, 1)
	assert.Equal(t, "id", account.Fields[0].Name)
	assert.Equal(t, uint32(0), account.Fields[0].Type)
	assert.Equal(t, "sp_core::AccountId32", reg.PathOf(1))

	entry, err := reg.Entry(1)
	require.NoError(t, err)
	require.Len(t, entry.Params, 1)
	assert.Equal(t, "T", entry.Params[0].Name)
	require.NotNil(t, entry.Params[0].Type)
	assert.Equal(t, uint32(0), *entry.Params[0].Type)

	bits, err := reg.ResolveType(2)
	require.NoError(t, err)
	assert.Equal(t, typedec.KindBitSequence, bits.Kind)
	assert.Equal(t, uint8(32), bits.BitStoreWidth)

	_, err = reg.ResolveType(9)
	assert.ErrorIs(t, err, ErrTypeNotFound)
	assert.Empty(t, reg.PathOf(9))
}

func TestFinishErrors(t *testing.T) {
	t.Parallel()

	missingStore := NewRegistry([]Entry{
		{ID: 0, Type: *typedec.NewBitSequence[uint32](0)},
	})
	missingStore.entries[0].Type.Elem = 7
	assert.ErrorIs(t, missingStore.Finish(), ErrTypeNotFound)

	badStore := NewRegistry([]Entry{
		{ID: 0, Type: *typedec.NewPrimitive[uint32](typedec.Str)},
		{ID: 1, Type: *typedec.NewBitSequence[uint32](0)},
	})
	badStore.entries[1].Type.Elem = 0
	assert.Error(t, badStore.Finish())
}

func TestDecodeRegistryTruncated(t *testing.T) {
	t.Parallel()

	data := encodeTestRegistry()
	_, err := DecodeRegistry(scale.NewCursor(data[:len(data)-3]))
	assert.ErrorIs(t, err, scale.ErrTruncated)
}
