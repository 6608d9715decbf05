// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package storage encodes and decodes Substrate storage keys and
// values using the type information a decoded metadata provides.
package storage

import (
	"encoding/binary"
	"fmt"

	"github.com/OneOfOne/xxhash"
	"golang.org/x/crypto/blake2b"

	"github.com/ChainSafe/frame-decode/metadata"
)

// Hash applies a storage hasher to input. For the concat hashers the
// output is the hash followed by the input itself, which is what a
// storage key carries; Identity contributes the input alone.
func Hash(hasher metadata.StorageHasher, input []byte) ([]byte, error) {
	var out []byte
	var err error
	switch hasher {
	case metadata.HasherBlake2_128, metadata.HasherBlake2_128Concat:
		out, err = blake2bN(input, 16)
	case metadata.HasherBlake2_256:
		out, err = blake2bN(input, 32)
	case metadata.HasherTwox128:
		out = twoxN(input, 16)
	case metadata.HasherTwox256:
		out = twoxN(input, 32)
	case metadata.HasherTwox64Concat:
		out = twoxN(input, 8)
	case metadata.HasherIdentity:
	default:
		return nil, fmt.Errorf("unknown storage hasher %d", hasher)
	}
	if err != nil {
		return nil, err
	}
	if hasher.IsConcat() {
		out = append(out, input...)
	}
	return out, nil
}

func blake2bN(in []byte, size int) ([]byte, error) {
	h, err := blake2b.New(size, nil)
	if err != nil {
		return nil, err
	}
	if _, err := h.Write(in); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}

// twoxN is xxhash64 run size/8 times with seeds 0, 1, ..., each
// little-endian encoded and concatenated.
func twoxN(in []byte, size int) []byte {
	out := make([]byte, size)
	for i := 0; i < size/8; i++ {
		h := xxhash.NewS64(uint64(i))
		_, _ = h.Write(in)
		binary.LittleEndian.PutUint64(out[i*8:], h.Sum64())
	}
	return out
}
