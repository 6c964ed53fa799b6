/*
 * Copyright (c) 2022 The JaxNetwork developers
 * Use of this source code is governed by an ISC
 * license that can be found in the LICENSE file.
 */

package mmr

import "github.com/pkg/errors"

var (
	// ErrMissingNode is returned when propagation needs a child that is not
	// stored.  The store does not hold the expected prefix of the tree:
	// bootstrap was skipped or an earlier leaf was never appended.
	ErrMissingNode = errors.New("required mmr node is missing")

	// ErrOutOfOrder is returned in strict mode when a leaf index skips ahead
	// or goes back behind the last appended one.
	ErrOutOfOrder = errors.New("leaf index is out of order")

	// ErrPositionConflict is returned when a position already holds a
	// different hash than the one about to be written.
	ErrPositionConflict = errors.New("mmr node already stored with a different hash")

	// ErrLeafIndexRange is returned for leaf indexes above MaxLeafIndex.
	ErrLeafIndexRange = errors.New("leaf index exceeds the 64-bit position range")

	// ErrInvalidBootstrap is returned when a bootstrap peak set does not match
	// the peaks of the range before the starting leaf.
	ErrInvalidBootstrap = errors.New("bootstrap peaks do not match the starting leaf index")
)
