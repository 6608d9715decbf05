// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package metadata decodes Substrate runtime metadata, dialects v8
// through v16, and exposes the type information other packages need
// to decode extrinsics, storage keys and storage values.
//
// Historic dialects (v8..v13) describe types by name and yield
// legacy.LookupName identifiers; modern dialects (v14..v16) embed a
// portable type registry and yield uint32 identifiers. The capability
// interfaces in info.go are generic over that difference.
package metadata

import (
	"bytes"
	"fmt"

	"github.com/ChainSafe/frame-decode/internal/log"
	"github.com/ChainSafe/frame-decode/pkg/scale"
)

var logger = log.NewFromGlobal(log.AddContext("pkg", "metadata"))

// The reserved prefix of SCALE-encoded runtime metadata.
var metaMagic = []byte("meta")

// Metadata is implemented by every decoded dialect container. Callers
// type-assert to the concrete *MetadataV8..*MetadataV16, or to the
// capability interfaces, to do useful work.
type Metadata interface {
	MetadataVersion() uint8
}

// Decode reads a complete SCALE-encoded metadata blob: the 4-byte
// "meta" magic, the version byte, and the versioned container.
func Decode(data []byte) (Metadata, error) {
	cur := scale.NewCursor(data)
	magic, err := cur.ReadBytes(4)
	if err != nil {
		return nil, fmt.Errorf("reading magic: %w", err)
	}
	if !bytes.Equal(magic, metaMagic) {
		return nil, fmt.Errorf("%w: got % x", ErrBadMagic, magic)
	}
	version, err := cur.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("reading version: %w", err)
	}
	return decodeVersioned(cur, version)
}

func decodeVersioned(cur *scale.Cursor, version uint8) (Metadata, error) {
	var (
		md  Metadata
		err error
	)
	switch version {
	case 8:
		md, err = DecodeV8(cur)
	case 9:
		md, err = DecodeV9(cur)
	case 10:
		md, err = DecodeV10(cur)
	case 11:
		md, err = DecodeV11(cur)
	case 12:
		md, err = DecodeV12(cur)
	case 13:
		md, err = DecodeV13(cur)
	case 14:
		md, err = DecodeV14(cur)
	case 15:
		md, err = DecodeV15(cur)
	case 16:
		md, err = DecodeV16(cur)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedMetadataVersion, version)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding v%d metadata: %w", version, err)
	}
	logger.Debugf("decoded v%d metadata, %d bytes left", version, cur.Remaining())
	return md, nil
}
