// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package scale implements the primitive SCALE reading layer used by
// the decoders in this module. Reads go through a Cursor which tracks
// byte offsets into the original input, so callers can recover the
// exact range every decoded item came from without copying.
package scale

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"unicode/utf8"
)

var (
	// ErrTruncated is returned when the input ends before a read completes.
	ErrTruncated = errors.New("unexpected end of input")
	// ErrInvalidCompact is returned for malformed compact integers.
	ErrInvalidCompact = errors.New("invalid compact encoding")
	// ErrBadUtf8 is returned when a decoded string is not valid UTF-8.
	ErrBadUtf8 = errors.New("string is not valid UTF-8")
	// ErrTrailingBytes is returned when input remains after a complete
	// decode.
	ErrTrailingBytes = errors.New("unexpected trailing bytes")
)

// Range is a half-open byte range [Start, End) into an input buffer.
type Range struct {
	Start int
	End   int
}

// Len returns the number of bytes the range covers.
func (r Range) Len() int { return r.End - r.Start }

// Empty returns true if the range covers no bytes.
func (r Range) Empty() bool { return r.End <= r.Start }

func (r Range) String() string { return fmt.Sprintf("[%d, %d)", r.Start, r.End) }

// Cursor reads SCALE primitives from an immutable byte slice, tracking
// the current offset. Reads either consume exactly the bytes they need
// or fail without advancing.
type Cursor struct {
	data []byte
	pos  int
}

// NewCursor returns a cursor positioned at the start of data. The
// cursor borrows data; callers must not mutate it while decoding.
func NewCursor(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Offset returns the current byte offset.
func (c *Cursor) Offset() int { return c.pos }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.data) - c.pos }

// Data returns the full underlying buffer the cursor reads from.
func (c *Cursor) Data() []byte { return c.data }

// RangeFrom returns the range from start to the current offset.
func (c *Cursor) RangeFrom(start int) Range {
	return Range{Start: start, End: c.pos}
}

// ReadBytes consumes n bytes and returns them as a sub-slice of the
// underlying buffer.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative length %d", ErrInvalidCompact, n)
	}
	if c.Remaining() < n {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrTruncated, n, c.Remaining())
	}
	b := c.data[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// Skip consumes n bytes without returning them.
func (c *Cursor) Skip(n int) error {
	_, err := c.ReadBytes(n)
	return err
}

// ReadByte consumes and returns a single byte.
func (c *Cursor) ReadByte() (byte, error) {
	b, err := c.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// PeekByte returns the next byte without consuming it.
func (c *Cursor) PeekByte() (byte, error) {
	if c.Remaining() < 1 {
		return 0, fmt.Errorf("%w: need 1 byte, have 0", ErrTruncated)
	}
	return c.data[c.pos], nil
}

// ReadBool consumes one byte and interprets it as a SCALE boolean.
func (c *Cursor) ReadBool() (bool, error) {
	b, err := c.ReadByte()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		c.pos--
		return false, fmt.Errorf("invalid boolean byte 0x%02x", b)
	}
}

// ReadU8 consumes one byte.
func (c *Cursor) ReadU8() (uint8, error) {
	return c.ReadByte()
}

// ReadU16 consumes a little-endian uint16.
func (c *Cursor) ReadU16() (uint16, error) {
	b, err := c.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadU32 consumes a little-endian uint32.
func (c *Cursor) ReadU32() (uint32, error) {
	b, err := c.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadU64 consumes a little-endian uint64.
func (c *Cursor) ReadU64() (uint64, error) {
	b, err := c.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadUint128 consumes a little-endian 128 bit unsigned integer.
func (c *Cursor) ReadUint128() (*Uint128, error) {
	b, err := c.ReadBytes(16)
	if err != nil {
		return nil, err
	}
	return NewUint128(b)
}

// ReadBigUint consumes n little-endian bytes as an unsigned big integer.
func (c *Cursor) ReadBigUint(n int) (*big.Int, error) {
	b, err := c.ReadBytes(n)
	if err != nil {
		return nil, err
	}
	rev := make([]byte, n)
	for i, v := range b {
		rev[n-1-i] = v
	}
	return new(big.Int).SetBytes(rev), nil
}

// ReadString consumes a compact length followed by that many bytes of
// UTF-8 text.
func (c *Cursor) ReadString() (string, error) {
	start := c.pos
	n, err := c.ReadCompactU32()
	if err != nil {
		return "", err
	}
	b, err := c.ReadBytes(int(n))
	if err != nil {
		c.pos = start
		return "", err
	}
	if !utf8.Valid(b) {
		c.pos = start
		return "", ErrBadUtf8
	}
	return string(b), nil
}
