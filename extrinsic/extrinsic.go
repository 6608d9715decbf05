// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package extrinsic decodes SCALE-encoded extrinsics into their named
// parts, recording the byte range every part came from so callers can
// re-decode individual pieces with their own visitors.
package extrinsic

import (
	"errors"
	"fmt"

	"github.com/ChainSafe/frame-decode/metadata"
	"github.com/ChainSafe/frame-decode/pkg/scale"
	"github.com/ChainSafe/frame-decode/pkg/typedec"
)

var (
	// ErrVersionNotSupported is returned for extrinsic versions other
	// than 4 and 5.
	ErrVersionNotSupported = errors.New("extrinsic version not supported")
	// ErrKindNotSupported is returned when the version byte carries a
	// type the version does not define, such as a signed v5 extrinsic.
	ErrKindNotSupported = errors.New("extrinsic kind not supported")
	// ErrWrongLength is returned when the compact length prefix does
	// not match the number of bytes that follow it.
	ErrWrongLength = errors.New("extrinsic length prefix does not match body")
)

// Kind is the shape of an extrinsic, taken from the two high bits of
// its version byte.
type Kind uint8

const (
	// KindBare has no signature and no extensions. Inherents are bare.
	KindBare Kind = iota
	// KindSigned carries an address, a signature and extensions. Only
	// version 4 extrinsics are signed.
	KindSigned
	// KindGeneral carries extensions but no dedicated signature. Only
	// version 5 extrinsics are general.
	KindGeneral
)

func (k Kind) String() string {
	switch k {
	case KindBare:
		return "bare"
	case KindSigned:
		return "signed"
	case KindGeneral:
		return "general"
	default:
		return "unknown"
	}
}

// NamedArg is one decoded value within an extrinsic: a call argument
// or a transaction extension. Range covers its bytes in the decoded
// input.
type NamedArg[ID any] struct {
	Name  string
	Range scale.Range
	Type  ID
}

// Signature is the signature part of a signed extrinsic.
type Signature[ID any] struct {
	AddressRange   scale.Range
	SignatureRange scale.Range
	AddressType    ID
	SignatureType  ID
}

// Extensions holds the transaction extensions of a signed or general
// extrinsic, in wire order.
type Extensions[ID any] struct {
	// Version is the extension version byte of a general extrinsic,
	// and 0 for signed ones.
	Version    uint8
	Extensions []NamedArg[ID]
}

// Range returns the byte range covering every extension.
func (e *Extensions[ID]) Range() scale.Range {
	if len(e.Extensions) == 0 {
		return scale.Range{}
	}
	return scale.Range{
		Start: e.Extensions[0].Range.Start,
		End:   e.Extensions[len(e.Extensions)-1].Range.End,
	}
}

// Call is the call part of an extrinsic: which pallet and call the
// two index bytes select, plus each argument with its byte range.
type Call[ID any] struct {
	PalletName  string
	PalletIndex uint8
	CallName    string
	CallIndex   uint8
	Args        []NamedArg[ID]
}

// Extrinsic is a decoded extrinsic. All ranges index into the buffer
// the extrinsic was decoded from, including its compact length prefix.
type Extrinsic[ID any] struct {
	// Version is the low six bits of the version byte.
	Version uint8
	Kind    Kind
	// Signature is set for signed extrinsics only.
	Signature *Signature[ID]
	// Extensions is set for signed and general extrinsics.
	Extensions *Extensions[ID]

	Call[ID]

	callDataRange scale.Range
	argsRange     scale.Range
}

// IsSigned reports whether the extrinsic carries a signature.
func (e *Extrinsic[ID]) IsSigned() bool { return e.Signature != nil }

// CallDataRange returns the range of the call data: the pallet and
// call index bytes followed by the encoded arguments.
func (e *Extrinsic[ID]) CallDataRange() scale.Range { return e.callDataRange }

// CallDataArgsRange returns the range of the encoded call arguments,
// without the two leading index bytes.
func (e *Extrinsic[ID]) CallDataArgsRange() scale.Range { return e.argsRange }

// Decode decodes one full extrinsic: a compact byte length followed by
// exactly that many bytes of body. An extrinsic of length zero decodes
// to a zero Extrinsic whose ranges all sit just past the prefix.
func Decode[ID any](
	data []byte,
	info metadata.ExtrinsicTypeInfo[ID],
	resolver typedec.Resolver[ID],
) (*Extrinsic[ID], error) {
	cur := scale.NewCursor(data)
	length, err := cur.ReadCompactU32()
	if err != nil {
		return nil, fmt.Errorf("reading extrinsic length: %w", err)
	}
	if int(length) != cur.Remaining() {
		return nil, fmt.Errorf("%w: prefix says %d bytes, body has %d",
			ErrWrongLength, length, cur.Remaining())
	}
	if length == 0 {
		off := cur.Offset()
		empty := scale.Range{Start: off, End: off}
		return &Extrinsic[ID]{callDataRange: empty, argsRange: empty}, nil
	}

	vb, err := cur.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("reading extrinsic version: %w", err)
	}
	version := vb & 0b0011_1111
	if version != 4 && version != 5 {
		return nil, fmt.Errorf("%w: version %d", ErrVersionNotSupported, version)
	}
	var kind Kind
	switch ty := vb >> 6; {
	case ty == 0b00:
		kind = KindBare
	case ty == 0b10 && version == 4:
		kind = KindSigned
	case ty == 0b01 && version == 5:
		kind = KindGeneral
	default:
		return nil, fmt.Errorf("%w: type bits 0b%02b on version %d",
			ErrKindNotSupported, vb>>6, version)
	}

	ext := &Extrinsic[ID]{Version: version, Kind: kind}

	if kind == KindSigned {
		si, err := info.ExtrinsicSignatureInfo()
		if err != nil {
			return nil, err
		}
		sig := &Signature[ID]{AddressType: si.AddressType, SignatureType: si.SignatureType}

		start := cur.Offset()
		if err := typedec.DecodeWithTrace(cur, si.AddressType, resolver, typedec.IgnoreVisitor{}); err != nil {
			return nil, fmt.Errorf("decoding extrinsic address: %w", err)
		}
		sig.AddressRange = cur.RangeFrom(start)

		start = cur.Offset()
		if err := typedec.DecodeWithTrace(cur, si.SignatureType, resolver, typedec.IgnoreVisitor{}); err != nil {
			return nil, fmt.Errorf("decoding extrinsic signature: %w", err)
		}
		sig.SignatureRange = cur.RangeFrom(start)
		ext.Signature = sig
	}

	var extensionVersion *uint8
	if kind == KindGeneral {
		v, err := cur.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("reading extension version: %w", err)
		}
		extensionVersion = &v
	}

	if kind == KindSigned || kind == KindGeneral {
		ei, err := info.ExtrinsicExtensionInfo(extensionVersion)
		if err != nil {
			return nil, err
		}
		exts := &Extensions[ID]{}
		if extensionVersion != nil {
			exts.Version = *extensionVersion
		}
		for _, e := range ei.Extensions {
			start := cur.Offset()
			if err := typedec.DecodeWithTrace(cur, e.Type, resolver, typedec.IgnoreVisitor{}); err != nil {
				return nil, fmt.Errorf("decoding extension %s: %w", e.Name, err)
			}
			exts.Extensions = append(exts.Extensions, NamedArg[ID]{
				Name:  e.Name,
				Range: cur.RangeFrom(start),
				Type:  e.Type,
			})
		}
		ext.Extensions = exts
	}

	call, callRange, argsRange, err := decodeCall(cur, info, resolver)
	if err != nil {
		return nil, err
	}
	ext.Call = *call
	ext.callDataRange = callRange
	ext.argsRange = argsRange

	if cur.Remaining() > 0 {
		return nil, fmt.Errorf("%w: %d bytes after %s.%s call",
			scale.ErrTrailingBytes, cur.Remaining(), call.PalletName, call.CallName)
	}
	return ext, nil
}

// DecodeCallData decodes bare call data, with no length or version
// framing: the two index bytes followed by the call arguments. Inner
// calls of utility batches and sudo wrappers take this form.
func DecodeCallData[ID any](
	data []byte,
	info metadata.ExtrinsicTypeInfo[ID],
	resolver typedec.Resolver[ID],
) (*Call[ID], error) {
	cur := scale.NewCursor(data)
	call, _, _, err := decodeCall(cur, info, resolver)
	if err != nil {
		return nil, err
	}
	if cur.Remaining() > 0 {
		return nil, fmt.Errorf("%w: %d bytes after %s.%s call data",
			scale.ErrTrailingBytes, cur.Remaining(), call.PalletName, call.CallName)
	}
	return call, nil
}

// DecodeBlockBody decodes a block body: a compact count of extrinsics
// followed by that many length-prefixed extrinsics. Each returned
// extrinsic carries ranges into its own slice of the body.
func DecodeBlockBody[ID any](
	data []byte,
	info metadata.ExtrinsicTypeInfo[ID],
	resolver typedec.Resolver[ID],
) ([]*Extrinsic[ID], error) {
	cur := scale.NewCursor(data)
	count, err := cur.ReadCompactU32()
	if err != nil {
		return nil, fmt.Errorf("reading extrinsic count: %w", err)
	}

	exts := make([]*Extrinsic[ID], 0, count)
	for i := uint32(0); i < count; i++ {
		start := cur.Offset()
		length, err := cur.ReadCompactU32()
		if err != nil {
			return nil, fmt.Errorf("reading length of extrinsic %d: %w", i, err)
		}
		if err := cur.Skip(int(length)); err != nil {
			return nil, fmt.Errorf("reading extrinsic %d: %w", i, err)
		}
		ext, err := Decode(cur.Data()[start:cur.Offset()], info, resolver)
		if err != nil {
			return nil, fmt.Errorf("decoding extrinsic %d: %w", i, err)
		}
		exts = append(exts, ext)
	}
	if cur.Remaining() > 0 {
		return nil, fmt.Errorf("%w: %d bytes after %d extrinsics",
			scale.ErrTrailingBytes, cur.Remaining(), count)
	}
	return exts, nil
}

func decodeCall[ID any](
	cur *scale.Cursor,
	info metadata.ExtrinsicTypeInfo[ID],
	resolver typedec.Resolver[ID],
) (*Call[ID], scale.Range, scale.Range, error) {
	var none scale.Range
	start := cur.Offset()
	palletIndex, err := cur.ReadByte()
	if err != nil {
		return nil, none, none, fmt.Errorf("reading pallet index: %w", err)
	}
	callIndex, err := cur.ReadByte()
	if err != nil {
		return nil, none, none, fmt.Errorf("reading call index: %w", err)
	}
	ci, err := info.ExtrinsicCallInfo(palletIndex, callIndex)
	if err != nil {
		return nil, none, none, err
	}

	call := &Call[ID]{
		PalletName:  ci.PalletName,
		PalletIndex: palletIndex,
		CallName:    ci.CallName,
		CallIndex:   callIndex,
	}
	for _, arg := range ci.Args {
		argStart := cur.Offset()
		if err := typedec.DecodeWithTrace(cur, arg.Type, resolver, typedec.IgnoreVisitor{}); err != nil {
			return nil, none, none, fmt.Errorf("decoding argument %s of %s.%s: %w",
				arg.Name, ci.PalletName, ci.CallName, err)
		}
		call.Args = append(call.Args, NamedArg[ID]{
			Name:  arg.Name,
			Range: cur.RangeFrom(argStart),
			Type:  arg.Type,
		})
	}
	return call, cur.RangeFrom(start), scale.Range{Start: start + 2, End: cur.Offset()}, nil
}
