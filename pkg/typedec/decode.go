// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package typedec

import (
	"errors"
	"fmt"
	"math/big"
	"unicode/utf8"

	"github.com/ChainSafe/frame-decode/internal/log"
	"github.com/ChainSafe/frame-decode/pkg/scale"
)

var logger = log.NewFromGlobal(log.AddContext("pkg", "typedec"))

// A compact type may be wrapped in single-field composites or tuples;
// unwrapping deeper than this is treated as malformed metadata.
const maxCompactDepth = 10

// DecodeWithVisitor consumes one value of the given type from the
// cursor, invoking the visitor at every structural step. On success
// the cursor stands exactly past the value's last byte.
func DecodeWithVisitor[ID any](cur *scale.Cursor, id ID, resolver Resolver[ID], visitor Visitor) error {
	w := &walker[ID]{cur: cur, res: resolver, vis: visitor}
	return w.walk(id)
}

// DecodeWithTrace behaves like DecodeWithVisitor, but a failure is
// returned as a *TraceError carrying the path of field names and
// indices from the root type to the failure site along with the byte
// offset the cursor stood at.
func DecodeWithTrace[ID any](cur *scale.Cursor, id ID, resolver Resolver[ID], visitor Visitor) error {
	w := &walker[ID]{cur: cur, res: resolver, vis: visitor, trace: true}
	err := w.walk(id)
	if err != nil {
		logger.Tracef("decode failed: %s", err)
	}
	return err
}

type walker[ID any] struct {
	cur   *scale.Cursor
	res   Resolver[ID]
	vis   Visitor
	trace bool
	path  []string
}

// fail attaches the current path and offset to err when tracing is
// enabled. Errors already carrying a trace pass through untouched.
func (w *walker[ID]) fail(err error) error {
	if !w.trace {
		return err
	}
	var te *TraceError
	if errors.As(err, &te) {
		return err
	}
	return &TraceError{
		Path:   append([]string(nil), w.path...),
		Offset: w.cur.Offset(),
		Err:    err,
	}
}

// visit converts a visitor callback error into an ErrVisitor failure.
func (w *walker[ID]) visit(err error) error {
	if err == nil {
		return nil
	}
	return w.fail(fmt.Errorf("%w: %s", ErrVisitor, err))
}

func (w *walker[ID]) push(segment string) {
	if w.trace {
		w.path = append(w.path, segment)
	}
}

func (w *walker[ID]) pop() {
	if w.trace {
		w.path = w.path[:len(w.path)-1]
	}
}

func (w *walker[ID]) walk(id ID) error {
	t, err := w.res.ResolveType(id)
	if err != nil {
		return w.fail(err)
	}
	return w.walkType(t)
}

func (w *walker[ID]) walkType(t *Type[ID]) error {
	start := w.cur.Offset()

	switch t.Kind {
	case KindComposite:
		if err := w.visit(w.vis.BeginComposite(len(t.Fields))); err != nil {
			return err
		}
		if err := w.walkFields(t.Fields); err != nil {
			return err
		}
		return w.visit(w.vis.EndComposite(w.cur.RangeFrom(start)))

	case KindVariant:
		index, err := w.cur.ReadByte()
		if err != nil {
			return w.fail(err)
		}
		var selected *VariantCase[ID]
		for i := range t.Cases {
			if t.Cases[i].Index == index {
				selected = &t.Cases[i]
				break
			}
		}
		if selected == nil {
			return w.fail(fmt.Errorf("%w: %d", ErrUnknownVariant, index))
		}
		w.push(selected.Name)
		if err := w.visit(w.vis.BeginVariant(index, selected.Name, len(selected.Fields))); err != nil {
			return err
		}
		if err := w.walkFields(selected.Fields); err != nil {
			return err
		}
		if err := w.visit(w.vis.EndVariant(w.cur.RangeFrom(start))); err != nil {
			return err
		}
		w.pop()
		return nil

	case KindSequence:
		length, err := w.cur.ReadCompactU32()
		if err != nil {
			return w.fail(err)
		}
		if err := w.visit(w.vis.BeginSequence(int(length))); err != nil {
			return err
		}
		for i := 0; i < int(length); i++ {
			w.push(fmt.Sprintf("[%d]", i))
			if err := w.visit(w.vis.Element(i)); err != nil {
				return err
			}
			if err := w.walk(t.Elem); err != nil {
				return err
			}
			w.pop()
		}
		return w.visit(w.vis.EndSequence(w.cur.RangeFrom(start)))

	case KindArray:
		if err := w.visit(w.vis.BeginArray(int(t.Len))); err != nil {
			return err
		}
		for i := 0; i < int(t.Len); i++ {
			w.push(fmt.Sprintf("[%d]", i))
			if err := w.visit(w.vis.Element(i)); err != nil {
				return err
			}
			if err := w.walk(t.Elem); err != nil {
				return err
			}
			w.pop()
		}
		return w.visit(w.vis.EndArray(w.cur.RangeFrom(start)))

	case KindTuple:
		if err := w.visit(w.vis.BeginTuple(len(t.Tuple))); err != nil {
			return err
		}
		for i, elem := range t.Tuple {
			w.push(fmt.Sprintf("[%d]", i))
			if err := w.visit(w.vis.Element(i)); err != nil {
				return err
			}
			if err := w.walk(elem); err != nil {
				return err
			}
			w.pop()
		}
		return w.visit(w.vis.EndTuple(w.cur.RangeFrom(start)))

	case KindPrimitive:
		return w.walkPrimitive(t.Primitive, start)

	case KindCompact:
		kind, err := w.compactKind(t.Elem)
		if err != nil {
			return w.fail(err)
		}
		v, err := w.readCompact(kind)
		if err != nil {
			return w.fail(err)
		}
		return w.visit(w.vis.Compact(v, w.cur.RangeFrom(start)))

	case KindBitSequence:
		bits, err := w.cur.ReadCompactU32()
		if err != nil {
			return w.fail(err)
		}
		storeWidth := uint32(t.BitStoreWidth)
		if storeWidth == 0 {
			storeWidth = 8
		}
		units := (bits + storeWidth - 1) / storeWidth
		data, err := w.cur.ReadBytes(int(units * storeWidth / 8))
		if err != nil {
			return w.fail(err)
		}
		return w.visit(w.vis.BitSequence(bits, data, w.cur.RangeFrom(start)))

	default:
		return w.fail(fmt.Errorf("unhandled type kind %d", t.Kind))
	}
}

func (w *walker[ID]) walkFields(fields []Field[ID]) error {
	for i, f := range fields {
		segment := f.Name
		if segment == "" {
			segment = fmt.Sprintf("[%d]", i)
		}
		w.push(segment)
		if err := w.visit(w.vis.Field(i, f.Name)); err != nil {
			return err
		}
		if err := w.walk(f.Type); err != nil {
			return err
		}
		w.pop()
	}
	return nil
}

func (w *walker[ID]) walkPrimitive(p PrimitiveKind, start int) error {
	switch p {
	case Bool:
		v, err := w.cur.ReadBool()
		if err != nil {
			return w.fail(err)
		}
		return w.visit(w.vis.Bool(v, w.cur.RangeFrom(start)))
	case Char:
		v, err := w.cur.ReadU32()
		if err != nil {
			return w.fail(err)
		}
		r := rune(v)
		if !utf8.ValidRune(r) {
			return w.fail(fmt.Errorf("invalid char value 0x%x", v))
		}
		return w.visit(w.vis.Char(r, w.cur.RangeFrom(start)))
	case Str:
		v, err := w.cur.ReadString()
		if err != nil {
			return w.fail(err)
		}
		return w.visit(w.vis.Str(v, w.cur.RangeFrom(start)))
	case U8:
		v, err := w.cur.ReadU8()
		if err != nil {
			return w.fail(err)
		}
		return w.visit(w.vis.Uint(uint64(v), p, w.cur.RangeFrom(start)))
	case U16:
		v, err := w.cur.ReadU16()
		if err != nil {
			return w.fail(err)
		}
		return w.visit(w.vis.Uint(uint64(v), p, w.cur.RangeFrom(start)))
	case U32:
		v, err := w.cur.ReadU32()
		if err != nil {
			return w.fail(err)
		}
		return w.visit(w.vis.Uint(uint64(v), p, w.cur.RangeFrom(start)))
	case U64:
		v, err := w.cur.ReadU64()
		if err != nil {
			return w.fail(err)
		}
		return w.visit(w.vis.Uint(v, p, w.cur.RangeFrom(start)))
	case U128:
		v, err := w.cur.ReadUint128()
		if err != nil {
			return w.fail(err)
		}
		return w.visit(w.vis.BigUint(v.BigInt(), p, w.cur.RangeFrom(start)))
	case U256:
		v, err := w.cur.ReadBigUint(32)
		if err != nil {
			return w.fail(err)
		}
		return w.visit(w.vis.BigUint(v, p, w.cur.RangeFrom(start)))
	case I8:
		v, err := w.cur.ReadU8()
		if err != nil {
			return w.fail(err)
		}
		return w.visit(w.vis.Int(int64(int8(v)), p, w.cur.RangeFrom(start)))
	case I16:
		v, err := w.cur.ReadU16()
		if err != nil {
			return w.fail(err)
		}
		return w.visit(w.vis.Int(int64(int16(v)), p, w.cur.RangeFrom(start)))
	case I32:
		v, err := w.cur.ReadU32()
		if err != nil {
			return w.fail(err)
		}
		return w.visit(w.vis.Int(int64(int32(v)), p, w.cur.RangeFrom(start)))
	case I64:
		v, err := w.cur.ReadU64()
		if err != nil {
			return w.fail(err)
		}
		return w.visit(w.vis.Int(int64(v), p, w.cur.RangeFrom(start)))
	case I128:
		b, err := w.cur.ReadBytes(16)
		if err != nil {
			return w.fail(err)
		}
		return w.visit(w.vis.BigInt(signedBigFromLE(b), p, w.cur.RangeFrom(start)))
	case I256:
		b, err := w.cur.ReadBytes(32)
		if err != nil {
			return w.fail(err)
		}
		return w.visit(w.vis.BigInt(signedBigFromLE(b), p, w.cur.RangeFrom(start)))
	default:
		return w.fail(fmt.Errorf("unhandled primitive kind %d", p))
	}
}

// compactKind resolves the inner type of a compact down to an
// unsigned integer primitive, unwrapping single-field composites and
// tuples on the way.
func (w *walker[ID]) compactKind(id ID) (PrimitiveKind, error) {
	for i := 0; i < maxCompactDepth; i++ {
		t, err := w.res.ResolveType(id)
		if err != nil {
			return 0, err
		}
		switch t.Kind {
		case KindPrimitive:
			if !t.Primitive.IsUnsigned() {
				return 0, fmt.Errorf("%w: got %s", ErrNotCompact, t.Primitive)
			}
			return t.Primitive, nil
		case KindComposite:
			if len(t.Fields) != 1 {
				return 0, fmt.Errorf("%w: composite with %d fields", ErrNotCompact, len(t.Fields))
			}
			id = t.Fields[0].Type
		case KindTuple:
			if len(t.Tuple) != 1 {
				return 0, fmt.Errorf("%w: tuple with %d elements", ErrNotCompact, len(t.Tuple))
			}
			id = t.Tuple[0]
		case KindCompact:
			id = t.Elem
		default:
			return 0, fmt.Errorf("%w: got %s", ErrNotCompact, t.Kind)
		}
	}
	return 0, fmt.Errorf("%w: nesting too deep", ErrNotCompact)
}

func (w *walker[ID]) readCompact(kind PrimitiveKind) (*big.Int, error) {
	switch kind {
	case U8, U16, U32:
		max := map[PrimitiveKind]uint32{U8: 0xff, U16: 0xffff, U32: 0xffffffff}[kind]
		v, err := w.cur.ReadCompactU32()
		if err != nil {
			return nil, err
		}
		if v > max {
			return nil, fmt.Errorf("%w: value %d overflows %s", scale.ErrInvalidCompact, v, kind)
		}
		return new(big.Int).SetUint64(uint64(v)), nil
	case U64:
		v, err := w.cur.ReadCompactU64()
		if err != nil {
			return nil, err
		}
		return new(big.Int).SetUint64(v), nil
	case U128:
		v, err := w.cur.ReadCompactUint128()
		if err != nil {
			return nil, err
		}
		return v.BigInt(), nil
	default:
		return w.cur.ReadCompactBig()
	}
}

// signedBigFromLE interprets b as a little-endian two's complement
// signed integer.
func signedBigFromLE(b []byte) *big.Int {
	be := make([]byte, len(b))
	for i, v := range b {
		be[len(b)-1-i] = v
	}
	v := new(big.Int).SetBytes(be)
	if len(be) > 0 && be[0]&0x80 != 0 {
		shift := new(big.Int).Lsh(big.NewInt(1), uint(len(be)*8))
		v.Sub(v, shift)
	}
	return v
}
