// Copyright 2022 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package storage

import (
	"fmt"

	"github.com/ChainSafe/frame-decode/metadata"
	"github.com/ChainSafe/frame-decode/pkg/scale"
	"github.com/ChainSafe/frame-decode/pkg/typedec"
)

// DecodeValue decodes a storage value of the given entry, reporting
// its structure to the visitor. The whole input must be consumed.
func DecodeValue[ID any](
	data []byte,
	pallet, entry string,
	info metadata.StorageTypeInfo[ID],
	resolver typedec.Resolver[ID],
	visitor typedec.Visitor,
) error {
	si, err := info.StorageInfo(pallet, entry)
	if err != nil {
		return err
	}
	cur := scale.NewCursor(data)
	if err := typedec.DecodeWithTrace(cur, si.ValueType, resolver, visitor); err != nil {
		return fmt.Errorf("decoding value of %s.%s: %w", pallet, entry, err)
	}
	if cur.Remaining() > 0 {
		return fmt.Errorf("%w: %d bytes after value of %s.%s",
			scale.ErrTrailingBytes, cur.Remaining(), pallet, entry)
	}
	return nil
}
