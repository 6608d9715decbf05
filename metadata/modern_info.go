// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package metadata

import (
	"fmt"

	"github.com/ChainSafe/frame-decode/pkg/typedec"
)

var (
	_ ExtrinsicTypeInfo[uint32] = (*MetadataV14)(nil)
	_ ExtrinsicTypeInfo[uint32] = (*MetadataV15)(nil)
	_ ExtrinsicTypeInfo[uint32] = (*MetadataV16)(nil)
	_ StorageTypeInfo[uint32]   = (*MetadataV14)(nil)
	_ StorageTypeInfo[uint32]   = (*MetadataV15)(nil)
	_ StorageTypeInfo[uint32]   = (*MetadataV16)(nil)
	_ ConstantTypeInfo[uint32]  = (*MetadataV14)(nil)
	_ ConstantTypeInfo[uint32]  = (*MetadataV15)(nil)
	_ ConstantTypeInfo[uint32]  = (*MetadataV16)(nil)
)

func (c *modernCore) palletByIndex(index uint8) (*ModernPallet, error) {
	for i := range c.Pallets {
		if c.Pallets[i].Index == index {
			return &c.Pallets[i], nil
		}
	}
	return nil, fmt.Errorf("%w: index %d", ErrPalletNotFound, index)
}

func (c *modernCore) palletByName(name string) (*ModernPallet, error) {
	for i := range c.Pallets {
		if c.Pallets[i].Name == name {
			return &c.Pallets[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrPalletNotFound, name)
}

// ExtrinsicCallInfo looks up the call selected by the two index bytes
// of an extrinsic's call data. The pallet's call type must resolve to
// a variant; the variant case with the matching index is the call.
func (c *modernCore) ExtrinsicCallInfo(palletIndex, callIndex uint8) (*CallInfo[uint32], error) {
	pallet, err := c.palletByIndex(palletIndex)
	if err != nil {
		return nil, err
	}
	if pallet.CallType == nil {
		return nil, fmt.Errorf("%w: pallet %s has no calls", ErrCallNotFound, pallet.Name)
	}
	ty, err := c.Types.ResolveType(*pallet.CallType)
	if err != nil {
		return nil, err
	}
	if ty.Kind != typedec.KindVariant {
		return nil, fmt.Errorf("calls type %d of pallet %s is a %s, not a variant",
			*pallet.CallType, pallet.Name, ty.Kind)
	}
	for _, cs := range ty.Cases {
		if cs.Index != callIndex {
			continue
		}
		info := &CallInfo[uint32]{PalletName: pallet.Name, CallName: cs.Name}
		for _, f := range cs.Fields {
			info.Args = append(info.Args, Arg[uint32]{Name: f.Name, Type: f.Type})
		}
		return info, nil
	}
	return nil, fmt.Errorf("%w: call %d in pallet %s (index %d)",
		ErrCallNotFound, callIndex, pallet.Name, palletIndex)
}

// StorageInfo applies the hasher and key matching rules shared by the
// modern dialects: a plain entry has no keys; a map with one hasher
// hashes every key component with it (splitting a tuple key into its
// components); a map with as many hashers as tuple components pairs
// them up positionally.
func (c *modernCore) StorageInfo(pallet, entry string) (*StorageInfo[uint32], error) {
	p, err := c.palletByName(pallet)
	if err != nil {
		return nil, err
	}
	if p.Storage == nil {
		return nil, fmt.Errorf("%w: %s in pallet %s", ErrStorageEntryNotFound, entry, pallet)
	}
	var se *ModernStorageEntry
	for i := range p.Storage.Entries {
		if p.Storage.Entries[i].Name == entry {
			se = &p.Storage.Entries[i]
			break
		}
	}
	if se == nil {
		return nil, fmt.Errorf("%w: %s in pallet %s", ErrStorageEntryNotFound, entry, pallet)
	}

	info := &StorageInfo[uint32]{ValueType: se.Value}
	if se.Modifier == ModifierDefault {
		info.DefaultValue = se.Default
	}
	if !se.IsMap {
		return info, nil
	}

	switch {
	case len(se.Hashers) == 1:
		keyTy, err := c.Types.ResolveType(se.Key)
		if err != nil {
			return nil, err
		}
		if keyTy.Kind == typedec.KindTuple {
			for _, id := range keyTy.Tuple {
				info.Keys = append(info.Keys, StorageKeyInfo[uint32]{
					Hasher: se.Hashers[0], KeyType: id,
				})
			}
		} else {
			info.Keys = append(info.Keys, StorageKeyInfo[uint32]{
				Hasher: se.Hashers[0], KeyType: se.Key,
			})
		}
	default:
		keyTy, err := c.Types.ResolveType(se.Key)
		if err != nil {
			return nil, err
		}
		if keyTy.Kind != typedec.KindTuple || len(keyTy.Tuple) != len(se.Hashers) {
			n := 1
			if keyTy.Kind == typedec.KindTuple {
				n = len(keyTy.Tuple)
			}
			return nil, fmt.Errorf("%w for %s.%s: %d hashers, %d keys",
				ErrHasherKeyMismatch, pallet, entry, len(se.Hashers), n)
		}
		for i, id := range keyTy.Tuple {
			info.Keys = append(info.Keys, StorageKeyInfo[uint32]{
				Hasher: se.Hashers[i], KeyType: id,
			})
		}
	}
	return info, nil
}

// StorageEntries lists every storage entry of every pallet.
func (c *modernCore) StorageEntries() []StorageEntry {
	var out []StorageEntry
	for i := range c.Pallets {
		p := &c.Pallets[i]
		if p.Storage == nil {
			continue
		}
		for _, e := range p.Storage.Entries {
			out = append(out, StorageEntry{Pallet: p.Name, Entry: e.Name})
		}
	}
	return out
}

// ConstantInfo returns the type and raw value of one pallet constant.
func (c *modernCore) ConstantInfo(pallet, name string) (*ConstantInfo[uint32], error) {
	p, err := c.palletByName(pallet)
	if err != nil {
		return nil, err
	}
	for _, ct := range p.Constants {
		if ct.Name == name {
			return &ConstantInfo[uint32]{Type: ct.Type, Value: ct.Value}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s in pallet %s", ErrConstantNotFound, name, pallet)
}

// PalletNames lists the pallet names in declaration order.
func (c *modernCore) PalletNames() []string {
	out := make([]string, len(c.Pallets))
	for i := range c.Pallets {
		out[i] = c.Pallets[i].Name
	}
	return out
}

// ExtrinsicSignatureInfo derives the address and signature types from
// the generic parameters of the extrinsic type; v14 metadata carries
// no explicit fields for them.
func (m *MetadataV14) ExtrinsicSignatureInfo() (*SignatureInfo[uint32], error) {
	entry, err := m.Types.Entry(m.Extrinsic.Type)
	if err != nil {
		return nil, err
	}
	info := &SignatureInfo[uint32]{}
	var haveAddr, haveSig bool
	for _, p := range entry.Params {
		switch p.Name {
		case "Address":
			if p.Type == nil {
				return nil, fmt.Errorf("extrinsic type %d: Address parameter is unbound", entry.ID)
			}
			info.AddressType, haveAddr = *p.Type, true
		case "Signature":
			if p.Type == nil {
				return nil, fmt.Errorf("extrinsic type %d: Signature parameter is unbound", entry.ID)
			}
			info.SignatureType, haveSig = *p.Type, true
		}
	}
	if !haveAddr || !haveSig {
		return nil, fmt.Errorf("extrinsic type %d has no Address/Signature parameters", entry.ID)
	}
	return info, nil
}

// ExtrinsicExtensionInfo returns the signed extensions. Only extension
// version 0 exists in v14 metadata.
func (m *MetadataV14) ExtrinsicExtensionInfo(extensionVersion *uint8) (*ExtensionInfo[uint32], error) {
	if extensionVersion != nil && *extensionVersion != 0 {
		return nil, fmt.Errorf("%w: version %d in v14 metadata",
			ErrExtensionVersionNotSupported, *extensionVersion)
	}
	return signedExtensionInfo(m.Extrinsic.SignedExtensions), nil
}

// ExtrinsicSignatureInfo returns the address and signature types the
// extrinsic section names directly.
func (m *MetadataV15) ExtrinsicSignatureInfo() (*SignatureInfo[uint32], error) {
	return &SignatureInfo[uint32]{
		AddressType:   m.Extrinsic.AddressType,
		SignatureType: m.Extrinsic.SignatureType,
	}, nil
}

// ExtrinsicExtensionInfo returns the signed extensions. Only extension
// version 0 exists in v15 metadata.
func (m *MetadataV15) ExtrinsicExtensionInfo(extensionVersion *uint8) (*ExtensionInfo[uint32], error) {
	if extensionVersion != nil && *extensionVersion != 0 {
		return nil, fmt.Errorf("%w: version %d in v15 metadata",
			ErrExtensionVersionNotSupported, *extensionVersion)
	}
	return signedExtensionInfo(m.Extrinsic.SignedExtensions), nil
}

func signedExtensionInfo(exts []SignedExtension) *ExtensionInfo[uint32] {
	info := &ExtensionInfo[uint32]{}
	for _, se := range exts {
		info.Extensions = append(info.Extensions, Arg[uint32]{
			Name: se.Identifier,
			Type: se.Type,
		})
	}
	return info
}

// RuntimeApiInfo looks up one method of a runtime API trait.
func (m *MetadataV15) RuntimeApiInfo(api, method string) (*RuntimeApiMethodInfo[uint32], error) {
	return runtimeApiInfo(m.Apis, api, method)
}

// CustomValueInfo looks up one custom metadata value by name.
func (m *MetadataV15) CustomValueInfo(name string) (*CustomValueInfo[uint32], error) {
	return customValueInfo(m.Custom, name)
}

// ExtrinsicSignatureInfo returns the address and signature types the
// extrinsic section names directly.
func (m *MetadataV16) ExtrinsicSignatureInfo() (*SignatureInfo[uint32], error) {
	return &SignatureInfo[uint32]{
		AddressType:   m.Extrinsic.AddressType,
		SignatureType: m.Extrinsic.SignatureType,
	}, nil
}

// ExtrinsicExtensionInfo returns the transaction extensions in force
// for the given extension version (0 when nil). v16 metadata keys its
// extension sets by version.
func (m *MetadataV16) ExtrinsicExtensionInfo(extensionVersion *uint8) (*ExtensionInfo[uint32], error) {
	version := uint8(0)
	if extensionVersion != nil {
		version = *extensionVersion
	}
	indices, ok := m.Extrinsic.ExtensionsByVersion[version]
	if !ok {
		return nil, fmt.Errorf("%w: version %d in v16 metadata",
			ErrExtensionVersionNotSupported, version)
	}
	info := &ExtensionInfo[uint32]{}
	for _, idx := range indices {
		if int(idx) >= len(m.Extrinsic.Extensions) {
			return nil, fmt.Errorf("transaction extension index %d out of range (%d extensions)",
				idx, len(m.Extrinsic.Extensions))
		}
		te := m.Extrinsic.Extensions[idx]
		info.Extensions = append(info.Extensions, Arg[uint32]{
			Name: te.Identifier,
			Type: te.Type,
		})
	}
	return info, nil
}

// RuntimeApiInfo looks up one method of a runtime API trait.
func (m *MetadataV16) RuntimeApiInfo(api, method string) (*RuntimeApiMethodInfo[uint32], error) {
	return runtimeApiInfo(m.Apis, api, method)
}

// CustomValueInfo looks up one custom metadata value by name.
func (m *MetadataV16) CustomValueInfo(name string) (*CustomValueInfo[uint32], error) {
	return customValueInfo(m.Custom, name)
}

// ViewFunctionInfo looks up a pallet view function by name.
func (m *MetadataV16) ViewFunctionInfo(pallet, function string) (*ViewFunctionInfo[uint32], error) {
	p, err := m.palletByName(pallet)
	if err != nil {
		return nil, err
	}
	for _, vf := range p.ViewFunctions {
		if vf.Name != function {
			continue
		}
		return &ViewFunctionInfo[uint32]{
			QueryID: vf.QueryID,
			Inputs:  vf.Inputs,
			Output:  vf.Output,
		}, nil
	}
	return nil, fmt.Errorf("%w: %s in pallet %s", ErrViewFunctionNotFound, function, pallet)
}

func runtimeApiInfo(apis []RuntimeApi, api, method string) (*RuntimeApiMethodInfo[uint32], error) {
	for i := range apis {
		if apis[i].Name != api {
			continue
		}
		for _, m := range apis[i].Methods {
			if m.Name == method {
				return &RuntimeApiMethodInfo[uint32]{Inputs: m.Inputs, Output: m.Output}, nil
			}
		}
		return nil, fmt.Errorf("%w: method %s of %s", ErrRuntimeApiNotFound, method, api)
	}
	return nil, fmt.Errorf("%w: %s", ErrRuntimeApiNotFound, api)
}

func customValueInfo(values []CustomValue, name string) (*CustomValueInfo[uint32], error) {
	for _, cv := range values {
		if cv.Name == name {
			return &CustomValueInfo[uint32]{Type: cv.Type, Value: cv.Value}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrCustomValueNotFound, name)
}
