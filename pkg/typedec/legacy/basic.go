// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package legacy

import (
	"fmt"

	"github.com/ChainSafe/frame-decode/pkg/typedec"
)

// Basic returns a registry of the types every historic chain shares:
// primitives, the standard containers, and the handful of Substrate
// types whose shapes never changed across runtimes. Chain-specific
// types are layered on top of it via a TypeRegistrySet.
func Basic() *TypeRegistry {
	r := NewTypeRegistry()

	prims := map[string]typedec.PrimitiveKind{
		"bool": typedec.Bool,
		"char": typedec.Char,
		"str":  typedec.Str,
		"u8":   typedec.U8,
		"u16":  typedec.U16,
		"u32":  typedec.U32,
		"u64":  typedec.U64,
		"u128": typedec.U128,
		"u256": typedec.U256,
		"i8":   typedec.I8,
		"i16":  typedec.I16,
		"i32":  typedec.I32,
		"i64":  typedec.I64,
		"i128": typedec.I128,
		"i256": typedec.I256,
	}
	for name, kind := range prims {
		r.MustInsert(name, PrimitiveShape(kind))
	}

	aliases := map[string]string{
		"String": "str",
		"Text":   "str",
		// Historic runtimes target 32-bit wasm.
		"usize":       "u32",
		"isize":       "i32",
		"VecDeque<T>": "Vec<T>",
		"Box<T>":      "T",
		"Cow<T>":      "T",
		"Bytes":       "Vec<u8>",
		"BTreeMap<K, V>": "Vec<(K, V)>",
		"BTreeSet<T>":    "Vec<T>",
		"AccountId":      "AccountId32",
		"AccountId32":    "[u8; 32]",
		"H160":           "[u8; 20]",
		"H256":           "[u8; 32]",
		"H512":           "[u8; 64]",
		"Address":        "MultiAddress",
		"Signature":      "MultiSignature",
	}
	for name, target := range aliases {
		r.MustInsert(name, AliasShape(MustParseLookupName(target)))
	}

	r.MustInsert("Vec<T>", SequenceShape(MustParseLookupName("T")))
	r.MustInsert("Compact<T>", CompactShape(MustParseLookupName("T")))
	r.MustInsert("PhantomData", StructShape())
	r.MustInsert("Null", TupleShape())
	r.MustInsert("BitVec", BitSequenceShape(8))

	r.MustInsert("Option<T>", EnumShape(
		ShapeVariant{Index: 0, Name: "None"},
		ShapeVariant{Index: 1, Name: "Some", Tuple: []LookupName{MustParseLookupName("T")}},
	))
	r.MustInsert("Result<T, E>", EnumShape(
		ShapeVariant{Index: 0, Name: "Ok", Tuple: []LookupName{MustParseLookupName("T")}},
		ShapeVariant{Index: 1, Name: "Err", Tuple: []LookupName{MustParseLookupName("E")}},
	))

	r.MustInsert("MultiAddress", EnumShape(
		ShapeVariant{Index: 0, Name: "Id", Tuple: []LookupName{MustParseLookupName("AccountId32")}},
		ShapeVariant{Index: 1, Name: "Index", Tuple: []LookupName{MustParseLookupName("Compact<u32>")}},
		ShapeVariant{Index: 2, Name: "Raw", Tuple: []LookupName{MustParseLookupName("Vec<u8>")}},
		ShapeVariant{Index: 3, Name: "Address32", Tuple: []LookupName{MustParseLookupName("[u8; 32]")}},
		ShapeVariant{Index: 4, Name: "Address20", Tuple: []LookupName{MustParseLookupName("[u8; 20]")}},
	))
	r.MustInsert("MultiSignature", EnumShape(
		ShapeVariant{Index: 0, Name: "Ed25519", Tuple: []LookupName{MustParseLookupName("[u8; 64]")}},
		ShapeVariant{Index: 1, Name: "Sr25519", Tuple: []LookupName{MustParseLookupName("[u8; 64]")}},
		ShapeVariant{Index: 2, Name: "Ecdsa", Tuple: []LookupName{MustParseLookupName("[u8; 65]")}},
	))

	r.MustInsert("Era", eraShape())

	return r
}

// eraShape builds the mortality enum: Immortal at index 0 and one
// Mortal case per period/phase encoding, each carrying the second
// byte of the two-byte mortal form.
func eraShape() TypeShape {
	cases := make([]ShapeVariant, 256)
	cases[0] = ShapeVariant{Index: 0, Name: "Immortal"}
	u8 := MustParseLookupName("u8")
	for i := 1; i < 256; i++ {
		cases[i] = ShapeVariant{
			Index: uint8(i),
			Name:  fmt.Sprintf("Mortal%d", i),
			Tuple: []LookupName{u8},
		}
	}
	return EnumShape(cases...)
}
