// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package metadata

import (
	"fmt"

	"github.com/ChainSafe/frame-decode/pkg/typedec/legacy"
)

// ListPallets returns the pallet names of decoded metadata, in
// declaration order.
func ListPallets(md Metadata) []string {
	type lister interface{ PalletNames() []string }
	if l, ok := md.(lister); ok {
		return l.PalletNames()
	}
	return nil
}

// ListStorageEntries returns the names of the storage entries of one
// pallet, in declaration order.
func ListStorageEntries(md Metadata, pallet string) ([]string, error) {
	type lister interface {
		PalletNames() []string
		StorageEntries() []StorageEntry
	}
	l, ok := md.(lister)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPalletNotFound, pallet)
	}

	var names []string
	for _, entry := range l.StorageEntries() {
		if entry.Pallet == pallet {
			names = append(names, entry.Entry)
		}
	}
	if names == nil {
		found := false
		for _, name := range l.PalletNames() {
			if name == pallet {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %s", ErrPalletNotFound, pallet)
		}
	}
	return names, nil
}

// TypeRegistryFromMetadata projects the calls and events of historic
// metadata into a legacy type registry, so that encoded calls and
// events can be decoded by name:
//
//   - "builtin::Call" and "builtin::Event" are the outer enums, one
//     case per module that has calls (resp. events);
//   - "builtin::module::call::<Module>" and
//     "builtin::module::event::<Module>" hold the per-module cases.
//
// Before v12 the outer enum indices count only the modules that have
// the relevant section; from v12 the explicit module index is used
// for both. Modern metadata carries this information in its portable
// registry already, so it projects to an empty registry.
func TypeRegistryFromMetadata(md Metadata) (*legacy.TypeRegistry, error) {
	type projector interface {
		projectTypeRegistry() (*legacy.TypeRegistry, error)
	}
	if p, ok := md.(projector); ok {
		return p.projectTypeRegistry()
	}
	return legacy.NewTypeRegistry(), nil
}

func (m *historicMetadata) projectTypeRegistry() (*legacy.TypeRegistry, error) {
	reg := legacy.NewTypeRegistry()

	var callCases, eventCases []legacy.ShapeVariant
	callsIndex, eventsIndex := uint8(0), uint8(0)

	for i := range m.Modules {
		mod := &m.Modules[i]

		// Modules without a section do not advance its counter.
		modCallsIndex, modEventsIndex := callsIndex, eventsIndex
		if mod.HasCalls {
			callsIndex++
		}
		if mod.HasEvents {
			eventsIndex++
		}
		if m.explicitIndex {
			modCallsIndex, modEventsIndex = mod.Index, mod.Index
		}

		if mod.HasCalls {
			var cases []legacy.ShapeVariant
			for ci, call := range mod.Calls {
				v := legacy.ShapeVariant{Index: uint8(ci), Name: call.Name}
				for _, arg := range call.Args {
					id, err := legacy.ParseLookupName(arg.Type)
					if err != nil {
						return nil, err
					}
					v.Fields = append(v.Fields, legacy.ShapeField{
						Name: arg.Name,
						Type: id.InPallet(mod.Name),
					})
				}
				cases = append(cases, v)
			}
			enumName := "builtin::module::call::" + mod.Name
			if err := reg.Insert(enumName, legacy.EnumShape(cases...)); err != nil {
				return nil, err
			}
			callCases = append(callCases, legacy.ShapeVariant{
				Index: modCallsIndex,
				Name:  mod.Name,
				Tuple: []legacy.LookupName{legacy.MustParseLookupName(enumName)},
			})
		}

		if mod.HasEvents {
			var cases []legacy.ShapeVariant
			for ei, ev := range mod.Events {
				v := legacy.ShapeVariant{Index: uint8(ei), Name: ev.Name}
				for _, arg := range ev.Args {
					id, err := legacy.ParseLookupName(arg)
					if err != nil {
						return nil, err
					}
					v.Tuple = append(v.Tuple, id.InPallet(mod.Name))
				}
				cases = append(cases, v)
			}
			enumName := "builtin::module::event::" + mod.Name
			if err := reg.Insert(enumName, legacy.EnumShape(cases...)); err != nil {
				return nil, err
			}
			eventCases = append(eventCases, legacy.ShapeVariant{
				Index: modEventsIndex,
				Name:  mod.Name,
				Tuple: []legacy.LookupName{legacy.MustParseLookupName(enumName)},
			})
		}
	}

	if err := reg.Insert("builtin::Call", legacy.EnumShape(callCases...)); err != nil {
		return nil, err
	}
	if err := reg.Insert("builtin::Event", legacy.EnumShape(eventCases...)); err != nil {
		return nil, err
	}
	return reg, nil
}
