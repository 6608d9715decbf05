// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package storage

import (
	"bytes"
	"errors"
	"fmt"

	cscale "github.com/centrifuge/go-substrate-rpc-client/v4/scale"

	"github.com/ChainSafe/frame-decode/metadata"
	"github.com/ChainSafe/frame-decode/pkg/scale"
	"github.com/ChainSafe/frame-decode/pkg/typedec"
)

var (
	// ErrWrongPrefix is returned when a storage key does not start
	// with the twox128 hashes of the expected pallet and entry.
	ErrWrongPrefix = errors.New("storage key has the wrong prefix")
	// ErrTooManyKeys is returned when more key values are supplied
	// than the storage entry declares.
	ErrTooManyKeys = errors.New("too many keys for storage entry")
)

const prefixLen = 32

// KeyPart is one decoded hasher application within a storage key.
// HashRange covers the hash bytes alone; for the concat hashers
// ValueRange covers the embedded key value, decodable as Type.
type KeyPart[ID any] struct {
	Hasher     metadata.StorageHasher
	HashRange  scale.Range
	ValueRange scale.Range
	Type       ID
}

// HasValue reports whether the part embeds a decodable key value.
func (p KeyPart[ID]) HasValue() bool { return p.Hasher.IsConcat() }

// Key is a decoded storage key: the two-hash prefix plus however many
// key parts the input carried. A map key may be partial, covering only
// the leading subset of the declared hashers.
type Key[ID any] struct {
	PalletRange scale.Range
	EntryRange  scale.Range
	Parts       []KeyPart[ID]
}

// EncodePrefix returns the 32-byte prefix of every key of a storage
// entry: twox128(pallet) followed by twox128(entry).
func EncodePrefix(pallet, entry string) ([]byte, error) {
	p, err := Hash(metadata.HasherTwox128, []byte(pallet))
	if err != nil {
		return nil, err
	}
	e, err := Hash(metadata.HasherTwox128, []byte(entry))
	if err != nil {
		return nil, err
	}
	return append(p, e...), nil
}

// EncodeKey builds a storage key for the entry: the prefix followed by
// each supplied key value, SCALE-encoded and hashed with the entry's
// hasher at that position. Supplying fewer values than the entry
// declares yields a valid key prefix for iteration; supplying more is
// an error.
func EncodeKey[ID any](info metadata.StorageTypeInfo[ID], pallet, entry string, keys ...interface{}) ([]byte, error) {
	si, err := info.StorageInfo(pallet, entry)
	if err != nil {
		return nil, err
	}
	if len(keys) > len(si.Keys) {
		return nil, fmt.Errorf("%w: %d keys for %s.%s, which has %d",
			ErrTooManyKeys, len(keys), pallet, entry, len(si.Keys))
	}

	out, err := EncodePrefix(pallet, entry)
	if err != nil {
		return nil, err
	}
	for i, key := range keys {
		var buf bytes.Buffer
		if err := cscale.NewEncoder(&buf).Encode(key); err != nil {
			return nil, fmt.Errorf("encoding key %d of %s.%s: %w", i, pallet, entry, err)
		}
		hashed, err := Hash(si.Keys[i].Hasher, buf.Bytes())
		if err != nil {
			return nil, err
		}
		out = append(out, hashed...)
	}
	return out, nil
}

// DecodeKey decodes a storage key of the given entry, checking the
// prefix and splitting the remainder into hasher parts. Keys ending on
// a part boundary before all declared hashers are consumed decode as
// partial keys; bytes left over after the last part are an error.
func DecodeKey[ID any](
	data []byte,
	pallet, entry string,
	info metadata.StorageTypeInfo[ID],
	resolver typedec.Resolver[ID],
) (*Key[ID], error) {
	si, err := info.StorageInfo(pallet, entry)
	if err != nil {
		return nil, err
	}

	want, err := EncodePrefix(pallet, entry)
	if err != nil {
		return nil, err
	}
	cur := scale.NewCursor(data)
	got, err := cur.ReadBytes(prefixLen)
	if err != nil {
		return nil, fmt.Errorf("reading prefix of %s.%s: %w", pallet, entry, err)
	}
	if !bytes.Equal(got, want) {
		return nil, fmt.Errorf("%w: key does not belong to %s.%s", ErrWrongPrefix, pallet, entry)
	}

	key := &Key[ID]{
		PalletRange: scale.Range{Start: 0, End: prefixLen / 2},
		EntryRange:  scale.Range{Start: prefixLen / 2, End: prefixLen},
	}
	for _, ki := range si.Keys {
		if cur.Remaining() == 0 {
			break
		}
		part := KeyPart[ID]{Hasher: ki.Hasher, Type: ki.KeyType}

		hashStart := cur.Offset()
		if err := cur.Skip(ki.Hasher.HashWidth()); err != nil {
			return nil, fmt.Errorf("reading %s hash of %s.%s: %w",
				ki.Hasher, pallet, entry, err)
		}
		part.HashRange = cur.RangeFrom(hashStart)

		if ki.Hasher.IsConcat() {
			valStart := cur.Offset()
			if err := typedec.DecodeWithTrace(cur, ki.KeyType, resolver, typedec.IgnoreVisitor{}); err != nil {
				return nil, fmt.Errorf("decoding key value of %s.%s: %w", pallet, entry, err)
			}
			part.ValueRange = cur.RangeFrom(valStart)
		}
		key.Parts = append(key.Parts, part)
	}

	if cur.Remaining() > 0 {
		return nil, fmt.Errorf("%w: %d bytes after storage key of %s.%s",
			scale.ErrTrailingBytes, cur.Remaining(), pallet, entry)
	}
	return key, nil
}
