// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package legacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChainSafe/frame-decode/pkg/typedec"
)

func TestResolvePrimitive(t *testing.T) {
	t.Parallel()

	set := NewTypeRegistrySet(Basic())
	ty, err := set.ResolveType(MustParseLookupName("u64"))
	require.NoError(t, err)
	assert.Equal(t, typedec.KindPrimitive, ty.Kind)
	assert.Equal(t, typedec.U64, ty.Primitive)
}

func TestResolveGenericSubstitution(t *testing.T) {
	t.Parallel()

	set := NewTypeRegistrySet(Basic())

	ty, err := set.ResolveType(MustParseLookupName("Vec<u8>"))
	require.NoError(t, err)
	require.Equal(t, typedec.KindSequence, ty.Kind)
	assert.Equal(t, "u8", ty.Elem.String())

	ty, err = set.ResolveType(MustParseLookupName("Option<Vec<bool>>"))
	require.NoError(t, err)
	require.Equal(t, typedec.KindVariant, ty.Kind)
	require.Len(t, ty.Cases, 2)
	assert.Equal(t, "None", ty.Cases[0].Name)
	require.Len(t, ty.Cases[1].Fields, 1)
	assert.Equal(t, "Vec<bool>", ty.Cases[1].Fields[0].Type.String())
}

func TestResolveAliasChain(t *testing.T) {
	t.Parallel()

	set := NewTypeRegistrySet(Basic())

	// Bytes -> Vec<u8>.
	ty, err := set.ResolveType(MustParseLookupName("Bytes"))
	require.NoError(t, err)
	require.Equal(t, typedec.KindSequence, ty.Kind)
	assert.Equal(t, "u8", ty.Elem.String())

	// BTreeMap<K, V> -> Vec<(K, V)> with both parameters bound.
	ty, err = set.ResolveType(MustParseLookupName("BTreeMap<str, u128>"))
	require.NoError(t, err)
	require.Equal(t, typedec.KindSequence, ty.Kind)
	assert.Equal(t, "(str, u128)", ty.Elem.String())

	// Box<T> is transparent.
	ty, err = set.ResolveType(MustParseLookupName("Box<u16>"))
	require.NoError(t, err)
	assert.Equal(t, typedec.U16, ty.Primitive)
}

func TestResolveAliasCycle(t *testing.T) {
	t.Parallel()

	reg := NewTypeRegistry()
	require.NoError(t, reg.Insert("A", AliasShape(MustParseLookupName("B"))))
	require.NoError(t, reg.Insert("B", AliasShape(MustParseLookupName("A"))))

	_, err := NewTypeRegistrySet(reg).ResolveType(MustParseLookupName("A"))
	assert.ErrorIs(t, err, ErrAliasDepth)
}

func TestResolveTupleAndArray(t *testing.T) {
	t.Parallel()

	set := NewTypeRegistrySet(Basic())

	ty, err := set.ResolveType(MustParseLookupName("(u8, u16)"))
	require.NoError(t, err)
	require.Equal(t, typedec.KindTuple, ty.Kind)
	require.Len(t, ty.Tuple, 2)

	ty, err = set.ResolveType(MustParseLookupName("[u8; 32]"))
	require.NoError(t, err)
	require.Equal(t, typedec.KindArray, ty.Kind)
	assert.Equal(t, uint32(32), ty.Len)
}

func TestResolveShadowing(t *testing.T) {
	t.Parallel()

	base := NewTypeRegistry()
	require.NoError(t, base.Insert("Balance", AliasShape(MustParseLookupName("u64"))))
	overlay := NewTypeRegistry()
	require.NoError(t, overlay.Insert("Balance", AliasShape(MustParseLookupName("u128"))))

	set := NewTypeRegistrySet(Basic(), base, overlay)
	ty, err := set.ResolveType(MustParseLookupName("Balance"))
	require.NoError(t, err)
	assert.Equal(t, typedec.U128, ty.Primitive)
}

func TestResolvePalletScope(t *testing.T) {
	t.Parallel()

	reg := NewTypeRegistry()
	require.NoError(t, reg.Insert("Proposal", AliasShape(MustParseLookupName("u8"))))
	require.NoError(t, reg.InsertInPallet("Council", "Proposal", AliasShape(MustParseLookupName("u32"))))

	set := NewTypeRegistrySet(Basic(), reg)

	ty, err := set.ResolveType(MustParseLookupName("Proposal"))
	require.NoError(t, err)
	assert.Equal(t, typedec.U8, ty.Primitive)

	ty, err = set.ResolveType(MustParseLookupName("Proposal").InPallet("Council"))
	require.NoError(t, err)
	assert.Equal(t, typedec.U32, ty.Primitive)

	// Scope propagates into emitted field ids.
	require.NoError(t, reg.InsertInPallet("Council", "Votes", AliasShape(MustParseLookupName("u16"))))
	require.NoError(t, reg.Insert("Wrapper", StructShape(
		ShapeField{Name: "votes", Type: MustParseLookupName("Votes")},
	)))
	wrapped, err := set.ResolveType(MustParseLookupName("Wrapper").InPallet("Council"))
	require.NoError(t, err)
	require.Len(t, wrapped.Fields, 1)
	assert.Equal(t, "Council", wrapped.Fields[0].Type.Pallet)
}

func TestResolveNotFound(t *testing.T) {
	t.Parallel()

	set := NewTypeRegistrySet(Basic())
	_, err := set.ResolveType(MustParseLookupName("NoSuchType"))
	assert.ErrorIs(t, err, ErrTypeNotFound)
}

func TestResolveParamArity(t *testing.T) {
	t.Parallel()

	set := NewTypeRegistrySet(Basic())
	_, err := set.ResolveType(MustParseLookupName("Vec<u8, u16>"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generic parameters")
}

func TestBasicEra(t *testing.T) {
	t.Parallel()

	set := NewTypeRegistrySet(Basic())
	ty, err := set.ResolveType(MustParseLookupName("Era"))
	require.NoError(t, err)
	require.Equal(t, typedec.KindVariant, ty.Kind)
	require.Len(t, ty.Cases, 256)
	assert.Equal(t, "Immortal", ty.Cases[0].Name)
	assert.Empty(t, ty.Cases[0].Fields)
	assert.Equal(t, "Mortal255", ty.Cases[255].Name)
	require.Len(t, ty.Cases[255].Fields, 1)
	assert.Equal(t, "u8", ty.Cases[255].Fields[0].Type.String())
}

func TestBasicMultiAddress(t *testing.T) {
	t.Parallel()

	set := NewTypeRegistrySet(Basic())
	ty, err := set.ResolveType(MustParseLookupName("MultiAddress"))
	require.NoError(t, err)
	require.Equal(t, typedec.KindVariant, ty.Kind)
	require.Len(t, ty.Cases, 5)
	assert.Equal(t, "Id", ty.Cases[0].Name)
	assert.Equal(t, "Address20", ty.Cases[4].Name)
}

func TestInsertRejectsNonNames(t *testing.T) {
	t.Parallel()

	reg := NewTypeRegistry()
	assert.Error(t, reg.Insert("(u8, u8)", TupleShape()))
	assert.Error(t, reg.Insert("Vec<Option<T>>", SequenceShape(MustParseLookupName("T"))))
}
