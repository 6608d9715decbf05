// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package scale

import (
	"encoding/binary"
	"fmt"
	"math/big"
)

// Uint128 represents an unsigned 128 bit integer
type Uint128 struct {
	Upper uint64
	Lower uint64
}

// MaxUint128 is the maximum uint128 value
var MaxUint128 = &Uint128{
	Upper: ^uint64(0),
	Lower: ^uint64(0),
}

func padBytes(b []byte, order binary.ByteOrder) []byte {
	for len(b) != 16 {
		switch order {
		case binary.BigEndian:
			b = append([]byte{0}, b...)
		case binary.LittleEndian:
			b = append(b, 0)
		}
	}
	return b
}

// NewUint128 builds a Uint128 from a big.Int or a little-endian byte
// slice of at most 16 bytes.
func NewUint128(in interface{}) (u *Uint128, err error) {
	switch in := in.(type) {
	case *big.Int:
		bytes := in.Bytes()
		if len(bytes) > 16 {
			return nil, fmt.Errorf("big.Int exceeds 128 bits")
		}
		bytes = padBytes(bytes, binary.BigEndian)
		u = &Uint128{
			Upper: binary.BigEndian.Uint64(bytes[:8]),
			Lower: binary.BigEndian.Uint64(bytes[8:]),
		}
	case []byte:
		if len(in) > 16 {
			return nil, fmt.Errorf("byte slice exceeds 16 bytes")
		}
		b := make([]byte, len(in))
		copy(b, in)
		b = padBytes(b, binary.LittleEndian)
		u = &Uint128{
			Upper: binary.LittleEndian.Uint64(b[8:]),
			Lower: binary.LittleEndian.Uint64(b[:8]),
		}
	default:
		err = fmt.Errorf("unsupported type: %T", in)
	}
	return
}

// Bytes returns the Uint128 as 16 little-endian bytes.
func (u *Uint128) Bytes() []byte {
	b := make([]byte, 16)
	binary.LittleEndian.PutUint64(b[:8], u.Lower)
	binary.LittleEndian.PutUint64(b[8:], u.Upper)
	return b
}

// BigInt returns the value as a big integer.
func (u *Uint128) BigInt() *big.Int {
	b := make([]byte, 16)
	binary.BigEndian.PutUint64(b[:8], u.Upper)
	binary.BigEndian.PutUint64(b[8:], u.Lower)
	return new(big.Int).SetBytes(b)
}

// String returns the decimal representation of the value.
func (u *Uint128) String() string {
	return u.BigInt().String()
}

// Compare returns 1 if the receiver is greater than other, 0 if they
// are equal, and -1 otherwise.
func (u *Uint128) Compare(other *Uint128) int {
	switch {
	case u.Upper > other.Upper:
		return 1
	case u.Upper < other.Upper:
		return -1
	case u.Lower > other.Lower:
		return 1
	case u.Lower < other.Lower:
		return -1
	}
	return 0
}
