// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package scale

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursor_ReadBytes(t *testing.T) {
	t.Parallel()

	c := NewCursor([]byte{0, 1, 2, 3, 4})
	b, err := c.ReadBytes(3)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 2}, b)
	assert.Equal(t, 3, c.Offset())
	assert.Equal(t, 2, c.Remaining())

	_, err = c.ReadBytes(3)
	assert.ErrorIs(t, err, ErrTruncated)
	assert.Equal(t, 3, c.Offset(), "failed read must not advance")
}

func TestCursor_ReadFixedWidth(t *testing.T) {
	t.Parallel()

	c := NewCursor([]byte{
		0x2a,
		0x34, 0x12,
		0x78, 0x56, 0x34, 0x12,
		0xef, 0xcd, 0xab, 0x89, 0x67, 0x45, 0x23, 0x01,
	})

	u8, err := c.ReadU8()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x2a), u8)

	u16, err := c.ReadU16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), u16)

	u32, err := c.ReadU32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x12345678), u32)

	u64, err := c.ReadU64()
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0123456789abcdef), u64)

	assert.Equal(t, 0, c.Remaining())
}

func TestCursor_ReadBool(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		input      []byte
		value      bool
		errMessage string
	}{
		"false": {input: []byte{0}},
		"true":  {input: []byte{1}, value: true},
		"invalid byte": {
			input:      []byte{2},
			errMessage: "invalid boolean byte 0x02",
		},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			c := NewCursor(testCase.input)
			value, err := c.ReadBool()
			if testCase.errMessage != "" {
				assert.EqualError(t, err, testCase.errMessage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testCase.value, value)
		})
	}
}

func TestCursor_ReadCompactU64(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		input    []byte
		value    uint64
		consumed int
		err      error
	}{
		"single byte zero":  {input: []byte{0x00}, value: 0, consumed: 1},
		"single byte max":   {input: []byte{0xfc}, value: 63, consumed: 1},
		"two byte":          {input: []byte{0x01, 0x01}, value: 64, consumed: 2},
		"two byte max":      {input: []byte{0xfd, 0xff}, value: 16383, consumed: 2},
		"four byte":         {input: []byte{0x02, 0x00, 0x01, 0x00}, value: 16384, consumed: 4},
		"four byte max":     {input: []byte{0xfe, 0xff, 0xff, 0xff}, value: 1073741823, consumed: 4},
		"big four byte":     {input: []byte{0x03, 0x00, 0x00, 0x00, 0x40}, value: 1073741824, consumed: 5},
		"big eight byte":    {input: []byte{0x13, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, value: ^uint64(0), consumed: 9},
		"header all ones":   {input: []byte{0xff}, err: ErrInvalidCompact},
		"truncated payload": {input: []byte{0x02, 0x00}, err: ErrTruncated},
		"empty input":       {input: nil, err: ErrTruncated},
	}

	for name, testCase := range testCases {
		testCase := testCase
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			c := NewCursor(testCase.input)
			value, err := c.ReadCompactU64()
			if testCase.err != nil {
				assert.ErrorIs(t, err, testCase.err)
				assert.Equal(t, 0, c.Offset(), "failed read must not advance")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testCase.value, value)
			assert.Equal(t, testCase.consumed, c.Offset())
		})
	}
}

func TestCursor_ReadCompactU32_Overflow(t *testing.T) {
	t.Parallel()

	c := NewCursor([]byte{0x07, 0x00, 0x00, 0x00, 0x00, 0x01})
	_, err := c.ReadCompactU32()
	assert.ErrorIs(t, err, ErrInvalidCompact)
}

func TestCursor_ReadCompactBig(t *testing.T) {
	t.Parallel()

	input := []byte{0x33, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01}
	c := NewCursor(input)
	value, err := c.ReadCompactBig()
	require.NoError(t, err)

	expected := new(big.Int).Lsh(big.NewInt(1), 120)
	assert.Zero(t, expected.Cmp(value))
	assert.Equal(t, len(input), c.Offset())
}

func TestCursor_ReadString(t *testing.T) {
	t.Parallel()

	c := NewCursor([]byte{0x14, 'h', 'e', 'l', 'l', 'o'})
	s, err := c.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "hello", s)

	c = NewCursor([]byte{0x08, 0xff, 0xfe})
	_, err = c.ReadString()
	assert.ErrorIs(t, err, ErrBadUtf8)
	assert.Equal(t, 0, c.Offset())
}

func TestUint128(t *testing.T) {
	t.Parallel()

	u, err := NewUint128([]byte{1, 0, 0, 0, 0, 0, 0, 0, 2})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), u.Lower)
	assert.Equal(t, uint64(2), u.Upper)

	fromBig, err := NewUint128(u.BigInt())
	require.NoError(t, err)
	assert.Zero(t, u.Compare(fromBig))
	assert.Equal(t, 1, MaxUint128.Compare(u))
}
