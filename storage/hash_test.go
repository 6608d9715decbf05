// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package storage

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChainSafe/frame-decode/metadata"
)

func hexMust(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestHash(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		hasher   metadata.StorageHasher
		input    []byte
		expected string
	}{
		"blake2_128 of empty": {
			hasher:   metadata.HasherBlake2_128,
			expected: "cae66941d9efbd404e4d88758ea67670",
		},
		"blake2_128 concat": {
			hasher:   metadata.HasherBlake2_128Concat,
			input:    []byte("static"),
			expected: "440973e4e50902f1d0ec97de357eb2fd" + "737461746963",
		},
		"twox128 of System": {
			hasher:   metadata.HasherTwox128,
			input:    []byte("System"),
			expected: "26aa394eea5630e07c48ae0c9558cef7",
		},
		"identity": {
			hasher:   metadata.HasherIdentity,
			input:    []byte{1, 2, 3},
			expected: "010203",
		},
	}

	for name, tc := range testCases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			out, err := Hash(tc.hasher, tc.input)
			require.NoError(t, err)
			assert.Equal(t, hexMust(t, tc.expected), out)
		})
	}
}

func TestHashWidths(t *testing.T) {
	t.Parallel()

	input := []byte("some key material")
	for _, h := range []metadata.StorageHasher{
		metadata.HasherBlake2_128,
		metadata.HasherBlake2_256,
		metadata.HasherBlake2_128Concat,
		metadata.HasherTwox128,
		metadata.HasherTwox256,
		metadata.HasherTwox64Concat,
		metadata.HasherIdentity,
	} {
		out, err := Hash(h, input)
		require.NoError(t, err)
		want := h.HashWidth()
		if h.IsConcat() {
			want += len(input)
		}
		assert.Len(t, out, want, h.String())
	}
}

func TestEncodePrefix(t *testing.T) {
	t.Parallel()

	prefix, err := EncodePrefix("System", "Account")
	require.NoError(t, err)
	assert.Equal(t, hexMust(t,
		"26aa394eea5630e07c48ae0c9558cef7"+
			"b99d880ec681799c0cf30e8886371da9"), prefix)
}
