// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package legacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLookupName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"u32":                         "u32",
		" u32 ":                       "u32",
		"Vec<u8>":                     "Vec<u8>",
		"Vec< u8 >":                   "Vec<u8>",
		"Option<Vec<(u8, bool)>>":     "Option<Vec<(u8, bool)>>",
		"(u8,bool,str)":               "(u8, bool, str)",
		"()":                          "()",
		"[u8; 32]":                    "[u8; 32]",
		"[ [u8; 4] ;2]":               "[[u8; 4]; 2]",
		"hardcoded::ExtrinsicAddress": "hardcoded::ExtrinsicAddress",
		"BTreeMap<AccountId, u128>":   "BTreeMap<AccountId, u128>",
		"Vec\n<u8>":                   "Vec<u8>",
	}
	for input, want := range cases {
		input, want := input, want
		t.Run(input, func(t *testing.T) {
			t.Parallel()
			n, err := ParseLookupName(input)
			require.NoError(t, err)
			assert.Equal(t, want, n.String())
		})
	}
}

func TestParseLookupNameErrors(t *testing.T) {
	t.Parallel()

	for _, input := range []string{
		"",
		"Vec<",
		"Vec<u8",
		"(u8, bool",
		"[u8; ]",
		"[u8; 32",
		"[u8 32]",
		"u8 extra",
		"<u8>",
	} {
		input := input
		t.Run(input, func(t *testing.T) {
			t.Parallel()
			_, err := ParseLookupName(input)
			assert.ErrorIs(t, err, ErrParse)
		})
	}
}

func TestLookupNameInPallet(t *testing.T) {
	t.Parallel()

	n := MustParseLookupName("Proposal").InPallet("Council")
	assert.Equal(t, "Council", n.Pallet)
	assert.Equal(t, "", MustParseLookupName("Proposal").Pallet)
}
