// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package metadata

import "errors"

var (
	// ErrBadMagic is returned when the input does not start with the
	// "meta" reserved prefix.
	ErrBadMagic = errors.New("metadata does not start with the meta magic")
	// ErrUnsupportedMetadataVersion is returned for version bytes
	// outside v8 through v16.
	ErrUnsupportedMetadataVersion = errors.New("unsupported metadata version")
	// ErrPalletNotFound is returned when no pallet matches a name or
	// index.
	ErrPalletNotFound = errors.New("pallet not found")
	// ErrCallNotFound is returned when a pallet has no call at the
	// given index.
	ErrCallNotFound = errors.New("call not found")
	// ErrStorageEntryNotFound is returned when a pallet has no storage
	// entry of the given name.
	ErrStorageEntryNotFound = errors.New("storage entry not found")
	// ErrConstantNotFound is returned when a pallet has no constant of
	// the given name.
	ErrConstantNotFound = errors.New("constant not found")
	// ErrRuntimeApiNotFound is returned when no runtime API trait or
	// method matches.
	ErrRuntimeApiNotFound = errors.New("runtime API not found")
	// ErrCustomValueNotFound is returned when the metadata carries no
	// custom value under the given name.
	ErrCustomValueNotFound = errors.New("custom value not found")
	// ErrViewFunctionNotFound is returned when a pallet has no view
	// function of the given name.
	ErrViewFunctionNotFound = errors.New("view function not found")
	// ErrHasherKeyMismatch is returned when a storage entry declares a
	// number of hashers that does not line up with its key types.
	ErrHasherKeyMismatch = errors.New("number of hashers and keys does not line up")
	// ErrExtensionVersionNotSupported is returned when an extrinsic
	// declares a transaction extension version the metadata cannot
	// describe.
	ErrExtensionVersionNotSupported = errors.New("transaction extension version not supported")
)
