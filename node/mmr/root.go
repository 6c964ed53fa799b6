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
	"gitlab.com/jaxnet/headermmr/types/chainhash"
)

// PeakHashes loads the peak nodes of the range ending with leafIndex from store.
func PeakHashes(ctx context.Context, store database.NodeStore, leafIndex uint64) ([]database.Node, error) {
	if leafIndex > MaxLeafIndex {
		return nil, errors.Wrapf(ErrLeafIndexRange, "leaf %d", leafIndex)
	}

	positions := PeaksForLeafIndex(leafIndex)
	nodes := make([]database.Node, 0, len(positions))
	for _, pos := range positions {
		hash, err := store.GetNode(ctx, pos)
		if database.IsNotFound(err) {
			return nil, errors.Wrapf(ErrMissingNode, "peak %d", pos)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "unable to read peak %d", pos)
		}
		nodes = append(nodes, database.Node{Position: pos, Hash: hash})
	}
	return nodes, nil
}

// BagPeaks folds the peaks of the range ending with leafIndex into a single
// root, right to left: the two right-most peaks are merged as
// Merge(right, left) until one hash remains.
func BagPeaks(ctx context.Context, store database.NodeStore, hasher Hasher, leafIndex uint64) (chainhash.Hash, error) {
	peaks, err := PeakHashes(ctx, store, leafIndex)
	if err != nil {
		return chainhash.Hash{}, err
	}

	hashes := make([]chainhash.Hash, 0, len(peaks))
	for _, peak := range peaks {
		hashes = append(hashes, peak.Hash)
	}
	return bagHashes(hasher, hashes), nil
}

func bagHashes(hasher Hasher, hashes []chainhash.Hash) chainhash.Hash {
	if len(hashes) == 0 {
		return chainhash.Hash{}
	}
	for len(hashes) > 1 {
		right := hashes[len(hashes)-1]
		left := hashes[len(hashes)-2]
		hashes = append(hashes[:len(hashes)-2], hasher.Merge(right, left))
	}
	return hashes[0]
}
