// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package storage

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChainSafe/frame-decode/metadata"
	"github.com/ChainSafe/frame-decode/pkg/scale"
	"github.com/ChainSafe/frame-decode/pkg/typedec"
	"github.com/ChainSafe/frame-decode/pkg/typedec/portable"
)

// testMetadata carries a pallet with a plain entry, a single-hasher
// map and a double map whose second hasher is Identity.
func testMetadata() *metadata.MetadataV14 {
	m := &metadata.MetadataV14{}
	m.Types = portable.NewRegistry([]portable.Entry{
		{ID: 0, Type: *typedec.NewPrimitive[uint32](typedec.U32)},
		{ID: 1, Type: *typedec.NewTuple[uint32](0, 0)},
	})
	m.Pallets = []metadata.ModernPallet{
		{
			Name: "System",
			Storage: &metadata.ModernStorage{
				Prefix: "System",
				Entries: []metadata.ModernStorageEntry{
					{
						Name:     "Digest",
						Modifier: metadata.ModifierDefault,
						Value:    0,
						Default:  []byte{0, 0, 0, 0},
					},
					{
						Name:    "Account",
						IsMap:   true,
						Hashers: []metadata.StorageHasher{metadata.HasherBlake2_128Concat},
						Key:     0,
						Value:   0,
					},
					{
						Name:  "Pairs",
						IsMap: true,
						Hashers: []metadata.StorageHasher{
							metadata.HasherTwox64Concat, metadata.HasherIdentity,
						},
						Key:   1,
						Value: 0,
					},
				},
			},
		},
	}
	return m
}

func TestEncodeDecodeKeyRoundTrip(t *testing.T) {
	t.Parallel()
	md := testMetadata()

	key, err := EncodeKey[uint32](md, "System", "Account", uint32(5))
	require.NoError(t, err)
	require.Len(t, key, 32+16+4)

	decoded, err := DecodeKey[uint32](key, "System", "Account", md, md.Types)
	require.NoError(t, err)
	assert.Equal(t, scale.Range{Start: 0, End: 16}, decoded.PalletRange)
	assert.Equal(t, scale.Range{Start: 16, End: 32}, decoded.EntryRange)
	require.Len(t, decoded.Parts, 1)

	part := decoded.Parts[0]
	assert.Equal(t, metadata.HasherBlake2_128Concat, part.Hasher)
	assert.True(t, part.HasValue())
	assert.Equal(t, scale.Range{Start: 32, End: 48}, part.HashRange)
	assert.Equal(t, scale.Range{Start: 48, End: 52}, part.ValueRange)
	assert.Equal(t, []byte{5, 0, 0, 0}, key[part.ValueRange.Start:part.ValueRange.End])
}

func TestEncodeDecodeKeyIdentity(t *testing.T) {
	t.Parallel()
	md := testMetadata()

	key, err := EncodeKey[uint32](md, "System", "Pairs", uint32(1), uint32(2))
	require.NoError(t, err)
	require.Len(t, key, 32+(8+4)+(0+4))

	decoded, err := DecodeKey[uint32](key, "System", "Pairs", md, md.Types)
	require.NoError(t, err)
	require.Len(t, decoded.Parts, 2)

	ident := decoded.Parts[1]
	assert.Equal(t, metadata.HasherIdentity, ident.Hasher)
	assert.True(t, ident.HashRange.Empty())
	assert.Equal(t, 4, ident.ValueRange.Len())
	assert.Equal(t, []byte{2, 0, 0, 0}, key[ident.ValueRange.Start:ident.ValueRange.End])
}

func TestDecodeKeyPartial(t *testing.T) {
	t.Parallel()
	md := testMetadata()

	// One of two declared keys provided: a valid iteration prefix.
	key, err := EncodeKey[uint32](md, "System", "Pairs", uint32(1))
	require.NoError(t, err)

	decoded, err := DecodeKey[uint32](key, "System", "Pairs", md, md.Types)
	require.NoError(t, err)
	assert.Len(t, decoded.Parts, 1)

	// The bare prefix decodes to no parts at all.
	prefix, err := EncodePrefix("System", "Pairs")
	require.NoError(t, err)
	decoded, err = DecodeKey[uint32](prefix, "System", "Pairs", md, md.Types)
	require.NoError(t, err)
	assert.Empty(t, decoded.Parts)
}

func TestDecodeKeyErrors(t *testing.T) {
	t.Parallel()
	md := testMetadata()

	key, err := EncodeKey[uint32](md, "System", "Account", uint32(5))
	require.NoError(t, err)

	// A key of one entry does not decode as another.
	_, err = DecodeKey[uint32](key, "System", "Digest", md, md.Types)
	assert.ErrorIs(t, err, ErrWrongPrefix)

	// Truncated inside a part.
	_, err = DecodeKey[uint32](key[:40], "System", "Account", md, md.Types)
	assert.ErrorIs(t, err, scale.ErrTruncated)

	// Truncated before the prefix completes.
	_, err = DecodeKey[uint32](key[:10], "System", "Account", md, md.Types)
	assert.ErrorIs(t, err, scale.ErrTruncated)

	// Bytes beyond the declared parts.
	_, err = DecodeKey[uint32](append(key, 0xff), "System", "Account", md, md.Types)
	assert.ErrorIs(t, err, scale.ErrTrailingBytes)

	_, err = DecodeKey[uint32](key, "System", "Nope", md, md.Types)
	assert.ErrorIs(t, err, metadata.ErrStorageEntryNotFound)
}

func TestEncodeKeyTooManyKeys(t *testing.T) {
	t.Parallel()
	md := testMetadata()

	_, err := EncodeKey[uint32](md, "System", "Account", uint32(1), uint32(2))
	assert.ErrorIs(t, err, ErrTooManyKeys)

	_, err = EncodeKey[uint32](md, "System", "Digest", uint32(1))
	assert.ErrorIs(t, err, ErrTooManyKeys)
}

type uintCollector struct {
	typedec.IgnoreVisitor
	values []uint64
}

func (c *uintCollector) Uint(v uint64, _ typedec.PrimitiveKind, _ scale.Range) error {
	c.values = append(c.values, v)
	return nil
}

func (c *uintCollector) Compact(v *big.Int, _ scale.Range) error {
	c.values = append(c.values, v.Uint64())
	return nil
}

func TestDecodeValue(t *testing.T) {
	t.Parallel()
	md := testMetadata()

	collector := &uintCollector{}
	err := DecodeValue[uint32]([]byte{7, 0, 0, 0}, "System", "Digest", md, md.Types, collector)
	require.NoError(t, err)
	assert.Equal(t, []uint64{7}, collector.values)

	err = DecodeValue[uint32]([]byte{7, 0, 0, 0, 1}, "System", "Digest", md, md.Types, typedec.IgnoreVisitor{})
	assert.ErrorIs(t, err, scale.ErrTrailingBytes)

	err = DecodeValue[uint32]([]byte{7, 0}, "System", "Digest", md, md.Types, typedec.IgnoreVisitor{})
	assert.ErrorIs(t, err, scale.ErrTruncated)
}
