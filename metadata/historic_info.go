// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package metadata

import (
	"fmt"

	"github.com/ChainSafe/frame-decode/pkg/typedec/legacy"
)

// Hardcoded type names the historic dialects cannot express. Chains
// define them in their type registry files.
const (
	hardcodedAddress          = "hardcoded::ExtrinsicAddress"
	hardcodedSignature        = "hardcoded::ExtrinsicSignature"
	hardcodedSignedExtensions = "hardcoded::ExtrinsicSignedExtensions"
)

var (
	_ ExtrinsicTypeInfo[legacy.LookupName] = (*historicMetadata)(nil)
	_ StorageTypeInfo[legacy.LookupName]   = (*historicMetadata)(nil)
	_ ConstantTypeInfo[legacy.LookupName]  = (*historicMetadata)(nil)
)

// moduleByCallIndex finds the module a call's pallet index byte
// refers to. Before v12 the index counts only modules that have a
// call section; from v12 every module carries an explicit index.
func (m *historicMetadata) moduleByCallIndex(palletIndex uint8) (*HistoricModule, error) {
	if m.explicitIndex {
		for i := range m.Modules {
			if m.Modules[i].Index == palletIndex {
				return &m.Modules[i], nil
			}
		}
		return nil, fmt.Errorf("%w: index %d", ErrPalletNotFound, palletIndex)
	}
	nth := 0
	for i := range m.Modules {
		if !m.Modules[i].HasCalls {
			continue
		}
		if nth == int(palletIndex) {
			return &m.Modules[i], nil
		}
		nth++
	}
	return nil, fmt.Errorf("%w: index %d", ErrPalletNotFound, palletIndex)
}

func (m *historicMetadata) moduleByName(name string) (*HistoricModule, error) {
	for i := range m.Modules {
		if m.Modules[i].Name == name {
			return &m.Modules[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrPalletNotFound, name)
}

// ExtrinsicCallInfo looks up the call selected by the two index bytes
// of an extrinsic's call data.
func (m *historicMetadata) ExtrinsicCallInfo(palletIndex, callIndex uint8) (*CallInfo[legacy.LookupName], error) {
	mod, err := m.moduleByCallIndex(palletIndex)
	if err != nil {
		return nil, err
	}
	if !mod.HasCalls || int(callIndex) >= len(mod.Calls) {
		return nil, fmt.Errorf("%w: call %d in pallet %s (index %d)",
			ErrCallNotFound, callIndex, mod.Name, palletIndex)
	}
	call := &mod.Calls[callIndex]

	info := &CallInfo[legacy.LookupName]{PalletName: mod.Name, CallName: call.Name}
	for _, arg := range call.Args {
		id, err := legacy.ParseLookupName(arg.Type)
		if err != nil {
			return nil, err
		}
		info.Args = append(info.Args, Arg[legacy.LookupName]{
			Name: arg.Name,
			Type: id.InPallet(mod.Name),
		})
	}
	return info, nil
}

// ExtrinsicSignatureInfo returns the hardcoded address and signature
// names; historic metadata says nothing about them, so chains supply
// the shapes through their type registries.
func (m *historicMetadata) ExtrinsicSignatureInfo() (*SignatureInfo[legacy.LookupName], error) {
	return &SignatureInfo[legacy.LookupName]{
		AddressType:   legacy.MustParseLookupName(hardcodedAddress),
		SignatureType: legacy.MustParseLookupName(hardcodedSignature),
	}, nil
}

// ExtrinsicExtensionInfo returns the transaction extension types.
// From v11 the metadata names each signed extension; before that a
// single hardcoded type stands in for all of them.
func (m *historicMetadata) ExtrinsicExtensionInfo(extensionVersion *uint8) (*ExtensionInfo[legacy.LookupName], error) {
	if extensionVersion != nil && *extensionVersion != 0 {
		return nil, fmt.Errorf("%w: version %d in v%d metadata",
			ErrExtensionVersionNotSupported, *extensionVersion, m.version)
	}

	if m.Extrinsic == nil {
		return &ExtensionInfo[legacy.LookupName]{
			Extensions: []Arg[legacy.LookupName]{{
				Name: "ExtrinsicSignedExtensions",
				Type: legacy.MustParseLookupName(hardcodedSignedExtensions),
			}},
		}, nil
	}

	info := &ExtensionInfo[legacy.LookupName]{}
	for _, name := range m.Extrinsic.SignedExtensions {
		id, err := legacy.ParseLookupName(name)
		if err != nil {
			return nil, err
		}
		info.Extensions = append(info.Extensions, Arg[legacy.LookupName]{Name: name, Type: id})
	}
	return info, nil
}

// StorageInfo returns the hashers and types of one storage entry.
func (m *historicMetadata) StorageInfo(pallet, entry string) (*StorageInfo[legacy.LookupName], error) {
	mod, err := m.moduleByName(pallet)
	if err != nil {
		return nil, err
	}
	if mod.Storage == nil {
		return nil, fmt.Errorf("%w: %s in pallet %s", ErrStorageEntryNotFound, entry, pallet)
	}
	var se *HistoricStorageEntry
	for i := range mod.Storage.Entries {
		if mod.Storage.Entries[i].Name == entry {
			se = &mod.Storage.Entries[i]
			break
		}
	}
	if se == nil {
		return nil, fmt.Errorf("%w: %s in pallet %s", ErrStorageEntryNotFound, entry, pallet)
	}

	info := &StorageInfo[legacy.LookupName]{}
	if se.Modifier == ModifierDefault {
		info.DefaultValue = se.Default
	}
	if info.ValueType, err = parseInPallet(se.Type.Value, mod.Name); err != nil {
		return nil, err
	}

	keys, hashers := se.Type.Keys, se.Type.Hashers
	switch {
	case len(keys) == 0:
	case len(hashers) == 1:
		// One hasher hashes every key the same way.
		for _, k := range keys {
			id, err := parseInPallet(k, mod.Name)
			if err != nil {
				return nil, err
			}
			info.Keys = append(info.Keys, StorageKeyInfo[legacy.LookupName]{
				Hasher: hashers[0], KeyType: id,
			})
		}
	case len(hashers) == len(keys):
		for i, k := range keys {
			id, err := parseInPallet(k, mod.Name)
			if err != nil {
				return nil, err
			}
			info.Keys = append(info.Keys, StorageKeyInfo[legacy.LookupName]{
				Hasher: hashers[i], KeyType: id,
			})
		}
	default:
		return nil, fmt.Errorf("%w for %s.%s: %d hashers, %d keys",
			ErrHasherKeyMismatch, pallet, entry, len(hashers), len(keys))
	}
	return info, nil
}

// StorageEntries lists every storage entry of every module.
func (m *historicMetadata) StorageEntries() []StorageEntry {
	var out []StorageEntry
	for i := range m.Modules {
		mod := &m.Modules[i]
		if mod.Storage == nil {
			continue
		}
		for _, e := range mod.Storage.Entries {
			out = append(out, StorageEntry{Pallet: mod.Name, Entry: e.Name})
		}
	}
	return out
}

// ConstantInfo returns the type and raw value of one pallet constant.
func (m *historicMetadata) ConstantInfo(pallet, name string) (*ConstantInfo[legacy.LookupName], error) {
	mod, err := m.moduleByName(pallet)
	if err != nil {
		return nil, err
	}
	for _, c := range mod.Constants {
		if c.Name != name {
			continue
		}
		id, err := parseInPallet(c.Type, mod.Name)
		if err != nil {
			return nil, err
		}
		return &ConstantInfo[legacy.LookupName]{Type: id, Value: c.Value}, nil
	}
	return nil, fmt.Errorf("%w: %s in pallet %s", ErrConstantNotFound, name, pallet)
}

// PalletNames lists the module names in declaration order.
func (m *historicMetadata) PalletNames() []string {
	out := make([]string, len(m.Modules))
	for i := range m.Modules {
		out[i] = m.Modules[i].Name
	}
	return out
}

func parseInPallet(name, pallet string) (legacy.LookupName, error) {
	id, err := legacy.ParseLookupName(name)
	if err != nil {
		return legacy.LookupName{}, err
	}
	return id.InPallet(pallet), nil
}
