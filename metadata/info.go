// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package metadata

// Arg is a named, typed value: a call argument, a transaction
// extension, or a runtime API input.
type Arg[ID any] struct {
	Name string
	Type ID
}

// CallInfo describes one call of one pallet: the names identifying it
// plus the type of each argument, in wire order.
type CallInfo[ID any] struct {
	PalletName string
	CallName   string
	Args       []Arg[ID]
}

// SignatureInfo carries the types needed to decode the signature part
// of a signed extrinsic.
type SignatureInfo[ID any] struct {
	AddressType   ID
	SignatureType ID
}

// ExtensionInfo lists the transaction extensions appended to a signed
// or general extrinsic, in wire order.
type ExtensionInfo[ID any] struct {
	Extensions []Arg[ID]
}

// StorageHasher enumerates the hash functions applied to storage map
// keys.
type StorageHasher uint8

// Storage map key hashers.
const (
	HasherBlake2_128 StorageHasher = iota
	HasherBlake2_256
	HasherBlake2_128Concat
	HasherTwox128
	HasherTwox256
	HasherTwox64Concat
	HasherIdentity
)

func (h StorageHasher) String() string {
	switch h {
	case HasherBlake2_128:
		return "Blake2_128"
	case HasherBlake2_256:
		return "Blake2_256"
	case HasherBlake2_128Concat:
		return "Blake2_128Concat"
	case HasherTwox128:
		return "Twox128"
	case HasherTwox256:
		return "Twox256"
	case HasherTwox64Concat:
		return "Twox64Concat"
	case HasherIdentity:
		return "Identity"
	default:
		return "unknown"
	}
}

// HashWidth returns the number of hash bytes the hasher contributes
// to a storage key. Identity contributes none.
func (h StorageHasher) HashWidth() int {
	switch h {
	case HasherBlake2_128, HasherBlake2_128Concat, HasherTwox128:
		return 16
	case HasherBlake2_256, HasherTwox256:
		return 32
	case HasherTwox64Concat:
		return 8
	default:
		return 0
	}
}

// IsConcat reports whether the hashed key value follows the hash
// bytes in the storage key, making the key recoverable.
func (h StorageHasher) IsConcat() bool {
	switch h {
	case HasherBlake2_128Concat, HasherTwox64Concat, HasherIdentity:
		return true
	default:
		return false
	}
}

// StorageKeyInfo is one key of a storage map: how it is hashed and
// the type of the unhashed value.
type StorageKeyInfo[ID any] struct {
	Hasher  StorageHasher
	KeyType ID
}

// StorageInfo describes one storage entry: no keys for a plain entry,
// N keys for an N-map. DefaultValue is nil for optional entries.
type StorageInfo[ID any] struct {
	Keys         []StorageKeyInfo[ID]
	ValueType    ID
	DefaultValue []byte
}

// StorageEntry identifies one storage entry of one pallet.
type StorageEntry struct {
	Pallet string
	Entry  string
}

// ConstantInfo describes one pallet constant: its type and the SCALE
// bytes of its value.
type ConstantInfo[ID any] struct {
	Type  ID
	Value []byte
}

// RuntimeApiMethodInfo describes one method of a runtime API trait.
type RuntimeApiMethodInfo[ID any] struct {
	Inputs []Arg[ID]
	Output ID
}

// CustomValueInfo describes one custom metadata value: its type and
// the SCALE bytes of the value.
type CustomValueInfo[ID any] struct {
	Type  ID
	Value []byte
}

// ViewFunctionInfo describes one pallet view function: the 32-byte
// query id it is addressed by, its inputs and its output type.
type ViewFunctionInfo[ID any] struct {
	QueryID [32]byte
	Inputs  []Arg[ID]
	Output  ID
}

// ExtrinsicTypeInfo is implemented by every metadata dialect and
// yields the type identifiers needed to decode extrinsics.
// ExtrinsicExtensionInfo takes the extension version byte of a
// general extrinsic, or nil when decoding a bare or signed one.
type ExtrinsicTypeInfo[ID any] interface {
	ExtrinsicCallInfo(palletIndex, callIndex uint8) (*CallInfo[ID], error)
	ExtrinsicSignatureInfo() (*SignatureInfo[ID], error)
	ExtrinsicExtensionInfo(extensionVersion *uint8) (*ExtensionInfo[ID], error)
}

// StorageTypeInfo is implemented by every metadata dialect and yields
// the hashers and type identifiers needed to decode storage keys and
// values.
type StorageTypeInfo[ID any] interface {
	StorageInfo(pallet, entry string) (*StorageInfo[ID], error)
	StorageEntries() []StorageEntry
}

// ConstantTypeInfo is implemented by every metadata dialect and
// yields pallet constants.
type ConstantTypeInfo[ID any] interface {
	ConstantInfo(pallet, name string) (*ConstantInfo[ID], error)
}
