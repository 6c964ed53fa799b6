/*
 * Copyright (c) 2022 The JaxNetwork developers
 * Use of this source code is governed by an ISC
 * license that can be found in the LICENSE file.
 */

package mmr

import (
	"context"

	"github.com/pkg/errors"
	"gitlab.com/jaxnet/headermmr/database"
)

// ResumeLeaf finds the highest leaf index at or above start whose leaf node
// is stored.  Leaves are appended in order, so the stored leaves form a
// contiguous run starting at start and the search is logarithmic.
//
// found is false when the leaf at start is not stored yet.  Re-appending the
// returned leaf is safe and completes any ancestors a crashed append left out.
func ResumeLeaf(ctx context.Context, store database.NodeStore, start uint64) (leaf uint64, found bool, err error) {
	has := func(leafIndex uint64) (bool, error) {
		_, err := store.GetNode(ctx, LeafIndexToPos(leafIndex))
		if database.IsNotFound(err) {
			return false, nil
		}
		if err != nil {
			return false, errors.Wrapf(err, "unable to read leaf %d", leafIndex)
		}
		return true, nil
	}

	if start > MaxLeafIndex {
		return 0, false, errors.Wrapf(ErrLeafIndexRange, "leaf %d", start)
	}

	ok, err := has(start)
	if err != nil || !ok {
		return start, false, err
	}

	// lo is stored, hi is not (or lies beyond the addressable range).
	lo, hi := start, uint64(MaxLeafIndex)+1
	for step := uint64(1); ; step <<= 1 {
		if step > MaxLeafIndex-lo {
			break
		}
		candidate := lo + step
		ok, err := has(candidate)
		if err != nil {
			return 0, false, err
		}
		if !ok {
			hi = candidate
			break
		}
		lo = candidate
	}

	for hi-lo > 1 {
		mid := lo + (hi-lo)/2
		ok, err := has(mid)
		if err != nil {
			return 0, false, err
		}
		if ok {
			lo = mid
		} else {
			hi = mid
		}
	}

	return lo, true, nil
}
