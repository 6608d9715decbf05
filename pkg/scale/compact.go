// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package scale

import (
	"fmt"
	"math/big"
)

// ReadCompactU32 consumes a compact-encoded integer that must fit in
// 32 bits.
func (c *Cursor) ReadCompactU32() (uint32, error) {
	start := c.pos
	v, err := c.ReadCompactU64()
	if err != nil {
		return 0, err
	}
	if v > 0xffffffff {
		c.pos = start
		return 0, fmt.Errorf("%w: value %d overflows u32", ErrInvalidCompact, v)
	}
	return uint32(v), nil
}

// ReadCompactU64 consumes a compact-encoded integer that must fit in
// 64 bits.
func (c *Cursor) ReadCompactU64() (uint64, error) {
	start := c.pos
	prefix, err := c.ReadByte()
	if err != nil {
		return 0, err
	}
	switch prefix & 0b11 {
	case 0b00:
		return uint64(prefix >> 2), nil
	case 0b01:
		b, err := c.ReadByte()
		if err != nil {
			c.pos = start
			return 0, err
		}
		return uint64(prefix>>2) | uint64(b)<<6, nil
	case 0b10:
		bs, err := c.ReadBytes(3)
		if err != nil {
			c.pos = start
			return 0, err
		}
		return uint64(prefix>>2) |
			uint64(bs[0])<<6 | uint64(bs[1])<<14 | uint64(bs[2])<<22, nil
	default:
		byteCount := int(prefix>>2) + 4
		if byteCount > 8 {
			c.pos = start
			return 0, fmt.Errorf("%w: %d byte big integer overflows u64", ErrInvalidCompact, byteCount)
		}
		bs, err := c.ReadBytes(byteCount)
		if err != nil {
			c.pos = start
			return 0, err
		}
		var v uint64
		for i := byteCount - 1; i >= 0; i-- {
			v = v<<8 | uint64(bs[i])
		}
		return v, nil
	}
}

// ReadCompactUint128 consumes a compact-encoded integer that must fit
// in 128 bits.
func (c *Cursor) ReadCompactUint128() (*Uint128, error) {
	start := c.pos
	prefix, err := c.PeekByte()
	if err != nil {
		return nil, err
	}
	if prefix&0b11 != 0b11 {
		v, err := c.ReadCompactU64()
		if err != nil {
			return nil, err
		}
		return &Uint128{Lower: v}, nil
	}
	c.pos++
	byteCount := int(prefix>>2) + 4
	if byteCount > 16 {
		c.pos = start
		return nil, fmt.Errorf("%w: %d byte big integer overflows u128", ErrInvalidCompact, byteCount)
	}
	bs, err := c.ReadBytes(byteCount)
	if err != nil {
		c.pos = start
		return nil, err
	}
	return NewUint128(bs)
}

// ReadCompactBig consumes a compact-encoded integer of any width,
// returning it as a big integer.
func (c *Cursor) ReadCompactBig() (*big.Int, error) {
	start := c.pos
	prefix, err := c.PeekByte()
	if err != nil {
		return nil, err
	}
	if prefix&0b11 != 0b11 {
		v, err := c.ReadCompactU64()
		if err != nil {
			return nil, err
		}
		return new(big.Int).SetUint64(v), nil
	}
	c.pos++
	byteCount := int(prefix>>2) + 4
	v, err := c.ReadBigUint(byteCount)
	if err != nil {
		c.pos = start
		return nil, err
	}
	return v, nil
}
