// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package metadata

import (
	"fmt"

	"github.com/ChainSafe/frame-decode/pkg/scale"
	"github.com/ChainSafe/frame-decode/pkg/typedec/portable"
)

// Modern metadata (v14..v16) embeds a portable type registry and
// refers to types by numeric id. The three dialects share the pallet
// model here; v15 adds runtime APIs, outer enums and custom values,
// and v16 adds view functions, versioned transaction extensions and
// deprecation markers (which are consumed and dropped).

// ModernStorageEntry is one storage entry of a modern pallet. Key is
// meaningful only for maps; a map's Hashers line up with the key type
// per the tuple rules applied at lookup time.
type ModernStorageEntry struct {
	Name     string
	Modifier StorageModifier
	IsMap    bool
	Hashers  []StorageHasher
	Key      uint32
	Value    uint32
	Default  []byte
}

// ModernStorage is the storage section of a modern pallet.
type ModernStorage struct {
	Prefix  string
	Entries []ModernStorageEntry
}

// ModernConstant is one constant of a modern pallet.
type ModernConstant struct {
	Name  string
	Type  uint32
	Value []byte
}

// ViewFunction is one view function of a v16 pallet, addressed by its
// 32-byte query id.
type ViewFunction struct {
	Name    string
	QueryID [32]byte
	Inputs  []Arg[uint32]
	Output  uint32
}

// ModernPallet is one pallet of modern metadata. CallType, EventType
// and ErrorType are nil when the pallet has no such section.
type ModernPallet struct {
	Name      string
	Storage   *ModernStorage
	CallType  *uint32
	EventType *uint32
	Constants []ModernConstant
	ErrorType *uint32
	// View functions, v16 only.
	ViewFunctions []ViewFunction
	Index         uint8
}

// SignedExtension is one signed extension of v14/v15 metadata.
type SignedExtension struct {
	Identifier       string
	Type             uint32
	AdditionalSigned uint32
}

// TransactionExtension is one transaction extension of v16 metadata.
type TransactionExtension struct {
	Identifier string
	Type       uint32
	Implicit   uint32
}

// ExtrinsicV14 is the extrinsic section of v14 metadata. The address
// and signature types hide inside the generic parameters of Type.
type ExtrinsicV14 struct {
	Type             uint32
	Version          uint8
	SignedExtensions []SignedExtension
}

// ExtrinsicV15 is the extrinsic section of v15 metadata.
type ExtrinsicV15 struct {
	Version          uint8
	AddressType      uint32
	CallType         uint32
	SignatureType    uint32
	ExtraType        uint32
	SignedExtensions []SignedExtension
}

// ExtrinsicV16 is the extrinsic section of v16 metadata.
// ExtensionsByVersion maps an extension version to indices into
// Extensions.
type ExtrinsicV16 struct {
	Versions            []uint8
	AddressType         uint32
	SignatureType       uint32
	ExtensionsByVersion map[uint8][]uint32
	Extensions          []TransactionExtension
}

// RuntimeApiMethod is one method of a runtime API trait.
type RuntimeApiMethod struct {
	Name   string
	Inputs []Arg[uint32]
	Output uint32
}

// RuntimeApi is one runtime API trait of v15/v16 metadata. Version is
// only populated for v16.
type RuntimeApi struct {
	Name    string
	Version uint32
	Methods []RuntimeApiMethod
}

// OuterEnums carries the types of the runtime-wide call, event and
// error enums (v15+).
type OuterEnums struct {
	CallType  uint32
	EventType uint32
	ErrorType uint32
}

// CustomValue is one custom metadata value (v15+).
type CustomValue struct {
	Name  string
	Type  uint32
	Value []byte
}

type modernCore struct {
	Types   *portable.Registry
	Pallets []ModernPallet
}

// MetadataV14 is decoded runtime metadata, dialect v14.
type MetadataV14 struct {
	modernCore
	Extrinsic   ExtrinsicV14
	RuntimeType uint32
}

// MetadataVersion returns 14.
func (m *MetadataV14) MetadataVersion() uint8 { return 14 }

// MetadataV15 is decoded runtime metadata, dialect v15.
type MetadataV15 struct {
	modernCore
	Extrinsic   ExtrinsicV15
	RuntimeType uint32
	Apis        []RuntimeApi
	Enums       OuterEnums
	Custom      []CustomValue
}

// MetadataVersion returns 15.
func (m *MetadataV15) MetadataVersion() uint8 { return 15 }

// MetadataV16 is decoded runtime metadata, dialect v16.
type MetadataV16 struct {
	modernCore
	Extrinsic ExtrinsicV16
	Apis      []RuntimeApi
	Enums     OuterEnums
	Custom    []CustomValue
}

// MetadataVersion returns 16.
func (m *MetadataV16) MetadataVersion() uint8 { return 16 }

// DecodeV14 decodes a v14 metadata container (without magic/version
// framing) from the cursor.
func DecodeV14(cur *scale.Cursor) (*MetadataV14, error) {
	out := &MetadataV14{}
	var err error
	if out.Types, err = decodeTypes(cur); err != nil {
		return nil, err
	}
	if out.Pallets, err = decodeModernPallets(cur, 14); err != nil {
		return nil, err
	}
	if out.Extrinsic.Type, err = cur.ReadCompactU32(); err != nil {
		return nil, err
	}
	if out.Extrinsic.Version, err = cur.ReadByte(); err != nil {
		return nil, err
	}
	if out.Extrinsic.SignedExtensions, err = decodeSignedExtensions(cur); err != nil {
		return nil, err
	}
	if out.RuntimeType, err = cur.ReadCompactU32(); err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeV15 decodes a v15 metadata container from the cursor.
func DecodeV15(cur *scale.Cursor) (*MetadataV15, error) {
	out := &MetadataV15{}
	var err error
	if out.Types, err = decodeTypes(cur); err != nil {
		return nil, err
	}
	if out.Pallets, err = decodeModernPallets(cur, 15); err != nil {
		return nil, err
	}

	ext := &out.Extrinsic
	if ext.Version, err = cur.ReadByte(); err != nil {
		return nil, err
	}
	if ext.AddressType, err = cur.ReadCompactU32(); err != nil {
		return nil, err
	}
	if ext.CallType, err = cur.ReadCompactU32(); err != nil {
		return nil, err
	}
	if ext.SignatureType, err = cur.ReadCompactU32(); err != nil {
		return nil, err
	}
	if ext.ExtraType, err = cur.ReadCompactU32(); err != nil {
		return nil, err
	}
	if ext.SignedExtensions, err = decodeSignedExtensions(cur); err != nil {
		return nil, err
	}

	if out.RuntimeType, err = cur.ReadCompactU32(); err != nil {
		return nil, err
	}
	if out.Apis, err = decodeRuntimeApis(cur, 15); err != nil {
		return nil, err
	}
	if out.Enums, err = decodeOuterEnums(cur); err != nil {
		return nil, err
	}
	if out.Custom, err = decodeCustomValues(cur); err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeV16 decodes a v16 metadata container from the cursor.
func DecodeV16(cur *scale.Cursor) (*MetadataV16, error) {
	out := &MetadataV16{}
	var err error
	if out.Types, err = decodeTypes(cur); err != nil {
		return nil, err
	}
	if out.Pallets, err = decodeModernPallets(cur, 16); err != nil {
		return nil, err
	}

	ext := &out.Extrinsic
	verCount, err := cur.ReadCompactU32()
	if err != nil {
		return nil, err
	}
	if ext.Versions, err = cur.ReadBytes(int(verCount)); err != nil {
		return nil, err
	}
	if ext.AddressType, err = cur.ReadCompactU32(); err != nil {
		return nil, err
	}
	if ext.SignatureType, err = cur.ReadCompactU32(); err != nil {
		return nil, err
	}

	byVerCount, err := cur.ReadCompactU32()
	if err != nil {
		return nil, err
	}
	ext.ExtensionsByVersion = make(map[uint8][]uint32, byVerCount)
	for i := uint32(0); i < byVerCount; i++ {
		ver, err := cur.ReadByte()
		if err != nil {
			return nil, err
		}
		idxCount, err := cur.ReadCompactU32()
		if err != nil {
			return nil, err
		}
		indices := make([]uint32, idxCount)
		for j := range indices {
			if indices[j], err = cur.ReadCompactU32(); err != nil {
				return nil, err
			}
		}
		ext.ExtensionsByVersion[ver] = indices
	}

	extCount, err := cur.ReadCompactU32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < extCount; i++ {
		var te TransactionExtension
		if te.Identifier, err = cur.ReadString(); err != nil {
			return nil, err
		}
		if te.Type, err = cur.ReadCompactU32(); err != nil {
			return nil, err
		}
		if te.Implicit, err = cur.ReadCompactU32(); err != nil {
			return nil, err
		}
		ext.Extensions = append(ext.Extensions, te)
	}

	if out.Apis, err = decodeRuntimeApis(cur, 16); err != nil {
		return nil, err
	}
	if out.Enums, err = decodeOuterEnums(cur); err != nil {
		return nil, err
	}
	if out.Custom, err = decodeCustomValues(cur); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeTypes(cur *scale.Cursor) (*portable.Registry, error) {
	reg, err := portable.DecodeRegistry(cur)
	if err != nil {
		return nil, fmt.Errorf("decoding type registry: %w", err)
	}
	if err := reg.Finish(); err != nil {
		return nil, fmt.Errorf("finishing type registry: %w", err)
	}
	return reg, nil
}

func decodeModernPallets(cur *scale.Cursor, version uint8) ([]ModernPallet, error) {
	count, err := cur.ReadCompactU32()
	if err != nil {
		return nil, err
	}
	pallets := make([]ModernPallet, 0, count)
	for i := uint32(0); i < count; i++ {
		p, err := decodeModernPallet(cur, version)
		if err != nil {
			return nil, fmt.Errorf("decoding pallet %d: %w", i, err)
		}
		pallets = append(pallets, *p)
	}
	return pallets, nil
}

func decodeModernPallet(cur *scale.Cursor, version uint8) (*ModernPallet, error) {
	p := &ModernPallet{}
	var err error
	if p.Name, err = cur.ReadString(); err != nil {
		return nil, err
	}

	hasStorage, err := cur.ReadBool()
	if err != nil {
		return nil, err
	}
	if hasStorage {
		if p.Storage, err = decodeModernStorage(cur, version); err != nil {
			return nil, fmt.Errorf("pallet %s storage: %w", p.Name, err)
		}
	}

	// Calls and event sections each carry a single type id; v16 adds
	// per-variant deprecation info behind it.
	for _, target := range []**uint32{&p.CallType, &p.EventType} {
		id, present, err := decodeOptionalType(cur, version, true)
		if err != nil {
			return nil, err
		}
		if present {
			*target = &id
		}
	}

	constCount, err := cur.ReadCompactU32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < constCount; i++ {
		var c ModernConstant
		if c.Name, err = cur.ReadString(); err != nil {
			return nil, err
		}
		if c.Type, err = cur.ReadCompactU32(); err != nil {
			return nil, err
		}
		valLen, err := cur.ReadCompactU32()
		if err != nil {
			return nil, err
		}
		if c.Value, err = cur.ReadBytes(int(valLen)); err != nil {
			return nil, err
		}
		if _, err = decodeTextVec(cur); err != nil { // docs
			return nil, err
		}
		if version >= 16 {
			if err = skipItemDeprecation(cur); err != nil {
				return nil, err
			}
		}
		p.Constants = append(p.Constants, c)
	}

	id, present, err := decodeOptionalType(cur, version, true)
	if err != nil {
		return nil, err
	}
	if present {
		p.ErrorType = &id
	}

	if version >= 16 {
		// Associated types: consumed, not retained.
		atCount, err := cur.ReadCompactU32()
		if err != nil {
			return nil, err
		}
		for i := uint32(0); i < atCount; i++ {
			if _, err = cur.ReadString(); err != nil {
				return nil, err
			}
			if _, err = cur.ReadCompactU32(); err != nil {
				return nil, err
			}
			if _, err = decodeTextVec(cur); err != nil {
				return nil, err
			}
		}

		vfCount, err := cur.ReadCompactU32()
		if err != nil {
			return nil, err
		}
		for i := uint32(0); i < vfCount; i++ {
			vf, err := decodeViewFunction(cur)
			if err != nil {
				return nil, err
			}
			p.ViewFunctions = append(p.ViewFunctions, *vf)
		}
	}

	if p.Index, err = cur.ReadByte(); err != nil {
		return nil, err
	}
	if version >= 15 {
		if _, err = decodeTextVec(cur); err != nil { // docs
			return nil, err
		}
	}
	if version >= 16 {
		if err = skipItemDeprecation(cur); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// decodeOptionalType reads Option<type id>, consuming the trailing
// enum deprecation info on v16 when deprecated is set.
func decodeOptionalType(cur *scale.Cursor, version uint8, deprecated bool) (uint32, bool, error) {
	present, err := cur.ReadBool()
	if err != nil {
		return 0, false, err
	}
	if !present {
		return 0, false, nil
	}
	id, err := cur.ReadCompactU32()
	if err != nil {
		return 0, false, err
	}
	if version >= 16 && deprecated {
		if err := skipEnumDeprecation(cur); err != nil {
			return 0, false, err
		}
	}
	return id, true, nil
}

func decodeModernStorage(cur *scale.Cursor, version uint8) (*ModernStorage, error) {
	st := &ModernStorage{}
	var err error
	if st.Prefix, err = cur.ReadString(); err != nil {
		return nil, err
	}
	count, err := cur.ReadCompactU32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < count; i++ {
		e := ModernStorageEntry{}
		if e.Name, err = cur.ReadString(); err != nil {
			return nil, err
		}
		mod, err := cur.ReadByte()
		if err != nil {
			return nil, err
		}
		if mod > uint8(ModifierDefault) {
			return nil, fmt.Errorf("unknown storage modifier tag %d", mod)
		}
		e.Modifier = StorageModifier(mod)

		tag, err := cur.ReadByte()
		if err != nil {
			return nil, err
		}
		switch tag {
		case 0: // Plain
			if e.Value, err = cur.ReadCompactU32(); err != nil {
				return nil, err
			}
		case 1: // Map
			hasherCount, err := cur.ReadCompactU32()
			if err != nil {
				return nil, err
			}
			e.IsMap = true
			e.Hashers = make([]StorageHasher, hasherCount)
			for j := range e.Hashers {
				hTag, err := cur.ReadByte()
				if err != nil {
					return nil, err
				}
				if int(hTag) >= len(hasherTagsV12) {
					return nil, fmt.Errorf("unknown storage hasher tag %d", hTag)
				}
				e.Hashers[j] = hasherTagsV12[hTag]
			}
			if e.Key, err = cur.ReadCompactU32(); err != nil {
				return nil, err
			}
			if e.Value, err = cur.ReadCompactU32(); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("unknown storage entry type tag %d", tag)
		}

		defLen, err := cur.ReadCompactU32()
		if err != nil {
			return nil, err
		}
		if e.Default, err = cur.ReadBytes(int(defLen)); err != nil {
			return nil, err
		}
		if _, err = decodeTextVec(cur); err != nil { // docs
			return nil, err
		}
		if version >= 16 {
			if err = skipItemDeprecation(cur); err != nil {
				return nil, err
			}
		}
		st.Entries = append(st.Entries, e)
	}
	return st, nil
}

func decodeViewFunction(cur *scale.Cursor) (*ViewFunction, error) {
	vf := &ViewFunction{}
	var err error
	if vf.Name, err = cur.ReadString(); err != nil {
		return nil, err
	}
	id, err := cur.ReadBytes(32)
	if err != nil {
		return nil, err
	}
	copy(vf.QueryID[:], id)
	if vf.Inputs, err = decodeTypedArgs(cur); err != nil {
		return nil, err
	}
	if vf.Output, err = cur.ReadCompactU32(); err != nil {
		return nil, err
	}
	if _, err = decodeTextVec(cur); err != nil { // docs
		return nil, err
	}
	if err = skipItemDeprecation(cur); err != nil {
		return nil, err
	}
	return vf, nil
}

func decodeSignedExtensions(cur *scale.Cursor) ([]SignedExtension, error) {
	count, err := cur.ReadCompactU32()
	if err != nil {
		return nil, err
	}
	exts := make([]SignedExtension, 0, count)
	for i := uint32(0); i < count; i++ {
		var se SignedExtension
		if se.Identifier, err = cur.ReadString(); err != nil {
			return nil, err
		}
		if se.Type, err = cur.ReadCompactU32(); err != nil {
			return nil, err
		}
		if se.AdditionalSigned, err = cur.ReadCompactU32(); err != nil {
			return nil, err
		}
		exts = append(exts, se)
	}
	return exts, nil
}

func decodeRuntimeApis(cur *scale.Cursor, version uint8) ([]RuntimeApi, error) {
	count, err := cur.ReadCompactU32()
	if err != nil {
		return nil, err
	}
	apis := make([]RuntimeApi, 0, count)
	for i := uint32(0); i < count; i++ {
		var api RuntimeApi
		if api.Name, err = cur.ReadString(); err != nil {
			return nil, err
		}
		methodCount, err := cur.ReadCompactU32()
		if err != nil {
			return nil, err
		}
		for j := uint32(0); j < methodCount; j++ {
			var m RuntimeApiMethod
			if m.Name, err = cur.ReadString(); err != nil {
				return nil, err
			}
			if m.Inputs, err = decodeTypedArgs(cur); err != nil {
				return nil, err
			}
			if m.Output, err = cur.ReadCompactU32(); err != nil {
				return nil, err
			}
			if _, err = decodeTextVec(cur); err != nil { // docs
				return nil, err
			}
			if version >= 16 {
				if err = skipItemDeprecation(cur); err != nil {
					return nil, err
				}
			}
			api.Methods = append(api.Methods, m)
		}
		if _, err = decodeTextVec(cur); err != nil { // docs
			return nil, err
		}
		if version >= 16 {
			if err = skipItemDeprecation(cur); err != nil {
				return nil, err
			}
			if api.Version, err = cur.ReadCompactU32(); err != nil {
				return nil, err
			}
		}
		apis = append(apis, api)
	}
	return apis, nil
}

func decodeTypedArgs(cur *scale.Cursor) ([]Arg[uint32], error) {
	count, err := cur.ReadCompactU32()
	if err != nil {
		return nil, err
	}
	var out []Arg[uint32]
	for i := uint32(0); i < count; i++ {
		var a Arg[uint32]
		if a.Name, err = cur.ReadString(); err != nil {
			return nil, err
		}
		if a.Type, err = cur.ReadCompactU32(); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func decodeOuterEnums(cur *scale.Cursor) (OuterEnums, error) {
	var oe OuterEnums
	var err error
	if oe.CallType, err = cur.ReadCompactU32(); err != nil {
		return oe, err
	}
	if oe.EventType, err = cur.ReadCompactU32(); err != nil {
		return oe, err
	}
	if oe.ErrorType, err = cur.ReadCompactU32(); err != nil {
		return oe, err
	}
	return oe, nil
}

func decodeCustomValues(cur *scale.Cursor) ([]CustomValue, error) {
	count, err := cur.ReadCompactU32()
	if err != nil {
		return nil, err
	}
	values := make([]CustomValue, 0, count)
	for i := uint32(0); i < count; i++ {
		var cv CustomValue
		if cv.Name, err = cur.ReadString(); err != nil {
			return nil, err
		}
		if cv.Type, err = cur.ReadCompactU32(); err != nil {
			return nil, err
		}
		valLen, err := cur.ReadCompactU32()
		if err != nil {
			return nil, err
		}
		if cv.Value, err = cur.ReadBytes(int(valLen)); err != nil {
			return nil, err
		}
		values = append(values, cv)
	}
	return values, nil
}

// Deprecation markers (v16) are consumed and discarded.

func skipItemDeprecation(cur *scale.Cursor) error {
	tag, err := cur.ReadByte()
	if err != nil {
		return err
	}
	switch tag {
	case 0, 1: // NotDeprecated, DeprecatedWithoutNote
		return nil
	case 2: // Deprecated { note, since }
		return skipDeprecationNote(cur)
	default:
		return fmt.Errorf("unknown deprecation tag %d", tag)
	}
}

func skipEnumDeprecation(cur *scale.Cursor) error {
	count, err := cur.ReadCompactU32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < count; i++ {
		if _, err := cur.ReadByte(); err != nil { // variant index
			return err
		}
		tag, err := cur.ReadByte()
		if err != nil {
			return err
		}
		switch tag {
		case 1: // DeprecatedWithoutNote
		case 2: // Deprecated { note, since }
			if err := skipDeprecationNote(cur); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown variant deprecation tag %d", tag)
		}
	}
	return nil
}

func skipDeprecationNote(cur *scale.Cursor) error {
	if _, err := cur.ReadString(); err != nil { // note
		return err
	}
	present, err := cur.ReadBool()
	if err != nil {
		return err
	}
	if present {
		if _, err := cur.ReadString(); err != nil { // since
			return err
		}
	}
	return nil
}
