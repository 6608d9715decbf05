// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package metadata

import (
	"fmt"

	"github.com/ChainSafe/frame-decode/pkg/scale"
)

// Historic metadata (v8..v13) describes modules and their types by
// name. The six dialects share one container here; the per-version
// differences are the storage hasher tag table, the presence of the
// extrinsic section (v11+), the explicit module index (v12+) and the
// NMap storage kind (v13).

// HistoricStorageKind discriminates historic storage entry types.
type HistoricStorageKind uint8

// Historic storage entry kinds.
const (
	StoragePlain HistoricStorageKind = iota
	StorageMap
	StorageDoubleMap
	StorageNMap
)

// StorageModifier says whether a storage entry always has a value.
type StorageModifier uint8

// Storage entry modifiers.
const (
	ModifierOptional StorageModifier = iota
	ModifierDefault
)

// HistoricStorageType is the shape of one historic storage entry.
// Keys and Hashers are empty for a plain entry, hold one element each
// for a map, two for a double map, and arbitrary counts for a v13
// NMap (where they need not line up one to one).
type HistoricStorageType struct {
	Kind    HistoricStorageKind
	Keys    []string
	Hashers []StorageHasher
	Value   string
}

// HistoricStorageEntry is one storage entry of a historic module.
type HistoricStorageEntry struct {
	Name     string
	Modifier StorageModifier
	Type     HistoricStorageType
	Default  []byte
}

// HistoricStorage is the storage section of a historic module.
type HistoricStorage struct {
	Prefix  string
	Entries []HistoricStorageEntry
}

// HistoricCall is one dispatchable call of a historic module.
type HistoricCall struct {
	Name string
	Args []HistoricArg
}

// HistoricArg is a named call argument with a textual type.
type HistoricArg struct {
	Name string
	Type string
}

// HistoricEvent is one event of a historic module; its arguments are
// textual type names without field names.
type HistoricEvent struct {
	Name string
	Args []string
}

// HistoricConstant is one constant of a historic module.
type HistoricConstant struct {
	Name  string
	Type  string
	Value []byte
}

// HistoricModule is one module (pallet) of historic metadata. HasCalls
// and HasEvents track section presence so that a module with an empty
// call list is still counted by implicit pallet indexing.
type HistoricModule struct {
	Name      string
	Storage   *HistoricStorage
	HasCalls  bool
	Calls     []HistoricCall
	HasEvents bool
	Events    []HistoricEvent
	Constants []HistoricConstant
	Errors    []string
	// Explicit module index, v12+ only.
	Index uint8
}

// HistoricExtrinsic is the extrinsic section carried from v11 on.
type HistoricExtrinsic struct {
	Version          uint8
	SignedExtensions []string
}

type historicMetadata struct {
	Modules   []HistoricModule
	Extrinsic *HistoricExtrinsic

	version       uint8
	explicitIndex bool
}

// MetadataVersion returns the dialect version.
func (m *historicMetadata) MetadataVersion() uint8 { return m.version }

// Per-dialect metadata containers. They only differ in the decoding
// rules applied; the decoded content lives in the shared embedded
// container.
type (
	// MetadataV8 is decoded runtime metadata, dialect v8.
	MetadataV8 struct{ historicMetadata }
	// MetadataV9 is decoded runtime metadata, dialect v9.
	MetadataV9 struct{ historicMetadata }
	// MetadataV10 is decoded runtime metadata, dialect v10.
	MetadataV10 struct{ historicMetadata }
	// MetadataV11 is decoded runtime metadata, dialect v11.
	MetadataV11 struct{ historicMetadata }
	// MetadataV12 is decoded runtime metadata, dialect v12.
	MetadataV12 struct{ historicMetadata }
	// MetadataV13 is decoded runtime metadata, dialect v13.
	MetadataV13 struct{ historicMetadata }
)

// Storage hasher tag tables. v8 predates Blake2_128Concat; Identity
// only appears from v12 metadata on.
var (
	hasherTagsV8 = []StorageHasher{
		HasherBlake2_128, HasherBlake2_256,
		HasherTwox128, HasherTwox256, HasherTwox64Concat,
	}
	hasherTagsV9 = []StorageHasher{
		HasherBlake2_128, HasherBlake2_256, HasherBlake2_128Concat,
		HasherTwox128, HasherTwox256, HasherTwox64Concat,
	}
	hasherTagsV12 = []StorageHasher{
		HasherBlake2_128, HasherBlake2_256, HasherBlake2_128Concat,
		HasherTwox128, HasherTwox256, HasherTwox64Concat, HasherIdentity,
	}
)

type historicConfig struct {
	version       uint8
	hasherTags    []StorageHasher
	hasExtrinsic  bool
	explicitIndex bool
	hasNMap       bool
}

// DecodeV8 decodes a v8 metadata container (without magic/version
// framing) from the cursor.
func DecodeV8(cur *scale.Cursor) (*MetadataV8, error) {
	m, err := decodeHistoric(cur, historicConfig{version: 8, hasherTags: hasherTagsV8})
	if err != nil {
		return nil, err
	}
	return &MetadataV8{*m}, nil
}

// DecodeV9 decodes a v9 metadata container from the cursor.
func DecodeV9(cur *scale.Cursor) (*MetadataV9, error) {
	m, err := decodeHistoric(cur, historicConfig{version: 9, hasherTags: hasherTagsV9})
	if err != nil {
		return nil, err
	}
	return &MetadataV9{*m}, nil
}

// DecodeV10 decodes a v10 metadata container from the cursor.
func DecodeV10(cur *scale.Cursor) (*MetadataV10, error) {
	m, err := decodeHistoric(cur, historicConfig{version: 10, hasherTags: hasherTagsV9})
	if err != nil {
		return nil, err
	}
	return &MetadataV10{*m}, nil
}

// DecodeV11 decodes a v11 metadata container from the cursor.
func DecodeV11(cur *scale.Cursor) (*MetadataV11, error) {
	m, err := decodeHistoric(cur, historicConfig{version: 11, hasherTags: hasherTagsV9, hasExtrinsic: true})
	if err != nil {
		return nil, err
	}
	return &MetadataV11{*m}, nil
}

// DecodeV12 decodes a v12 metadata container from the cursor.
func DecodeV12(cur *scale.Cursor) (*MetadataV12, error) {
	m, err := decodeHistoric(cur, historicConfig{
		version: 12, hasherTags: hasherTagsV12, hasExtrinsic: true, explicitIndex: true,
	})
	if err != nil {
		return nil, err
	}
	return &MetadataV12{*m}, nil
}

// DecodeV13 decodes a v13 metadata container from the cursor.
func DecodeV13(cur *scale.Cursor) (*MetadataV13, error) {
	m, err := decodeHistoric(cur, historicConfig{
		version: 13, hasherTags: hasherTagsV12, hasExtrinsic: true, explicitIndex: true, hasNMap: true,
	})
	if err != nil {
		return nil, err
	}
	return &MetadataV13{*m}, nil
}

func decodeHistoric(cur *scale.Cursor, cfg historicConfig) (*historicMetadata, error) {
	out := &historicMetadata{version: cfg.version, explicitIndex: cfg.explicitIndex}

	count, err := cur.ReadCompactU32()
	if err != nil {
		return nil, fmt.Errorf("reading module count: %w", err)
	}
	for i := uint32(0); i < count; i++ {
		mod, err := decodeHistoricModule(cur, cfg)
		if err != nil {
			return nil, fmt.Errorf("decoding module %d: %w", i, err)
		}
		out.Modules = append(out.Modules, *mod)
	}

	if cfg.hasExtrinsic {
		ext := &HistoricExtrinsic{}
		if ext.Version, err = cur.ReadByte(); err != nil {
			return nil, fmt.Errorf("reading extrinsic version: %w", err)
		}
		if ext.SignedExtensions, err = decodeTextVec(cur); err != nil {
			return nil, fmt.Errorf("reading signed extensions: %w", err)
		}
		out.Extrinsic = ext
	}
	return out, nil
}

func decodeHistoricModule(cur *scale.Cursor, cfg historicConfig) (*HistoricModule, error) {
	mod := &HistoricModule{}
	var err error
	if mod.Name, err = cur.ReadString(); err != nil {
		return nil, err
	}

	hasStorage, err := cur.ReadBool()
	if err != nil {
		return nil, err
	}
	if hasStorage {
		if mod.Storage, err = decodeHistoricStorage(cur, cfg); err != nil {
			return nil, fmt.Errorf("module %s storage: %w", mod.Name, err)
		}
	}

	if mod.HasCalls, err = cur.ReadBool(); err != nil {
		return nil, err
	}
	if mod.HasCalls {
		if mod.Calls, err = decodeHistoricCalls(cur); err != nil {
			return nil, fmt.Errorf("module %s calls: %w", mod.Name, err)
		}
	}

	if mod.HasEvents, err = cur.ReadBool(); err != nil {
		return nil, err
	}
	if mod.HasEvents {
		if mod.Events, err = decodeHistoricEvents(cur); err != nil {
			return nil, fmt.Errorf("module %s events: %w", mod.Name, err)
		}
	}

	if mod.Constants, err = decodeHistoricConstants(cur); err != nil {
		return nil, fmt.Errorf("module %s constants: %w", mod.Name, err)
	}

	// Error metadata: name plus docs per entry.
	errCount, err := cur.ReadCompactU32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < errCount; i++ {
		name, err := cur.ReadString()
		if err != nil {
			return nil, err
		}
		if _, err := decodeTextVec(cur); err != nil { // docs
			return nil, err
		}
		mod.Errors = append(mod.Errors, name)
	}

	if cfg.explicitIndex {
		if mod.Index, err = cur.ReadByte(); err != nil {
			return nil, err
		}
	}
	return mod, nil
}

func decodeHistoricStorage(cur *scale.Cursor, cfg historicConfig) (*HistoricStorage, error) {
	st := &HistoricStorage{}
	var err error
	if st.Prefix, err = cur.ReadString(); err != nil {
		return nil, err
	}
	count, err := cur.ReadCompactU32()
	if err != nil {
		return nil, err
	}
	for i := uint32(0); i < count; i++ {
		entry, err := decodeHistoricStorageEntry(cur, cfg)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		st.Entries = append(st.Entries, *entry)
	}
	return st, nil
}

func decodeHistoricStorageEntry(cur *scale.Cursor, cfg historicConfig) (*HistoricStorageEntry, error) {
	e := &HistoricStorageEntry{}
	var err error
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

	if e.Type, err = decodeHistoricStorageType(cur, cfg); err != nil {
		return nil, err
	}

	defCount, err := cur.ReadCompactU32()
	if err != nil {
		return nil, err
	}
	if e.Default, err = cur.ReadBytes(int(defCount)); err != nil {
		return nil, err
	}

	if _, err = decodeTextVec(cur); err != nil { // docs
		return nil, err
	}
	return e, nil
}

func decodeHistoricStorageType(cur *scale.Cursor, cfg historicConfig) (HistoricStorageType, error) {
	tag, err := cur.ReadByte()
	if err != nil {
		return HistoricStorageType{}, err
	}
	switch {
	case tag == 0: // Plain
		value, err := cur.ReadString()
		if err != nil {
			return HistoricStorageType{}, err
		}
		return HistoricStorageType{Kind: StoragePlain, Value: value}, nil

	case tag == 1: // Map
		hasher, err := decodeHasher(cur, cfg)
		if err != nil {
			return HistoricStorageType{}, err
		}
		key, err := cur.ReadString()
		if err != nil {
			return HistoricStorageType{}, err
		}
		value, err := cur.ReadString()
		if err != nil {
			return HistoricStorageType{}, err
		}
		// The linked-map flag, unused since it was introduced.
		if _, err := cur.ReadBool(); err != nil {
			return HistoricStorageType{}, err
		}
		return HistoricStorageType{
			Kind:    StorageMap,
			Keys:    []string{key},
			Hashers: []StorageHasher{hasher},
			Value:   value,
		}, nil

	case tag == 2: // DoubleMap
		hasher1, err := decodeHasher(cur, cfg)
		if err != nil {
			return HistoricStorageType{}, err
		}
		key1, err := cur.ReadString()
		if err != nil {
			return HistoricStorageType{}, err
		}
		key2, err := cur.ReadString()
		if err != nil {
			return HistoricStorageType{}, err
		}
		value, err := cur.ReadString()
		if err != nil {
			return HistoricStorageType{}, err
		}
		hasher2, err := decodeHasher(cur, cfg)
		if err != nil {
			return HistoricStorageType{}, err
		}
		return HistoricStorageType{
			Kind:    StorageDoubleMap,
			Keys:    []string{key1, key2},
			Hashers: []StorageHasher{hasher1, hasher2},
			Value:   value,
		}, nil

	case tag == 3 && cfg.hasNMap: // NMap
		keys, err := decodeTextVec(cur)
		if err != nil {
			return HistoricStorageType{}, err
		}
		hasherCount, err := cur.ReadCompactU32()
		if err != nil {
			return HistoricStorageType{}, err
		}
		hashers := make([]StorageHasher, hasherCount)
		for i := range hashers {
			if hashers[i], err = decodeHasher(cur, cfg); err != nil {
				return HistoricStorageType{}, err
			}
		}
		value, err := cur.ReadString()
		if err != nil {
			return HistoricStorageType{}, err
		}
		return HistoricStorageType{
			Kind:    StorageNMap,
			Keys:    keys,
			Hashers: hashers,
			Value:   value,
		}, nil

	default:
		return HistoricStorageType{}, fmt.Errorf("unknown storage entry type tag %d", tag)
	}
}

func decodeHasher(cur *scale.Cursor, cfg historicConfig) (StorageHasher, error) {
	tag, err := cur.ReadByte()
	if err != nil {
		return 0, err
	}
	if int(tag) >= len(cfg.hasherTags) {
		return 0, fmt.Errorf("unknown storage hasher tag %d in v%d metadata", tag, cfg.version)
	}
	return cfg.hasherTags[tag], nil
}

func decodeHistoricCalls(cur *scale.Cursor) ([]HistoricCall, error) {
	count, err := cur.ReadCompactU32()
	if err != nil {
		return nil, err
	}
	calls := make([]HistoricCall, 0, count)
	for i := uint32(0); i < count; i++ {
		var call HistoricCall
		if call.Name, err = cur.ReadString(); err != nil {
			return nil, err
		}
		argCount, err := cur.ReadCompactU32()
		if err != nil {
			return nil, err
		}
		for j := uint32(0); j < argCount; j++ {
			var arg HistoricArg
			if arg.Name, err = cur.ReadString(); err != nil {
				return nil, err
			}
			if arg.Type, err = cur.ReadString(); err != nil {
				return nil, err
			}
			call.Args = append(call.Args, arg)
		}
		if _, err = decodeTextVec(cur); err != nil { // docs
			return nil, err
		}
		calls = append(calls, call)
	}
	return calls, nil
}

func decodeHistoricEvents(cur *scale.Cursor) ([]HistoricEvent, error) {
	count, err := cur.ReadCompactU32()
	if err != nil {
		return nil, err
	}
	events := make([]HistoricEvent, 0, count)
	for i := uint32(0); i < count; i++ {
		var ev HistoricEvent
		if ev.Name, err = cur.ReadString(); err != nil {
			return nil, err
		}
		if ev.Args, err = decodeTextVec(cur); err != nil {
			return nil, err
		}
		if _, err = decodeTextVec(cur); err != nil { // docs
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

func decodeHistoricConstants(cur *scale.Cursor) ([]HistoricConstant, error) {
	count, err := cur.ReadCompactU32()
	if err != nil {
		return nil, err
	}
	consts := make([]HistoricConstant, 0, count)
	for i := uint32(0); i < count; i++ {
		var c HistoricConstant
		if c.Name, err = cur.ReadString(); err != nil {
			return nil, err
		}
		if c.Type, err = cur.ReadString(); err != nil {
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
		consts = append(consts, c)
	}
	return consts, nil
}

func decodeTextVec(cur *scale.Cursor) ([]string, error) {
	count, err := cur.ReadCompactU32()
	if err != nil {
		return nil, err
	}
	var out []string
	for i := uint32(0); i < count; i++ {
		s, err := cur.ReadString()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
