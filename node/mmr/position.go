/*
 * Copyright (c) 2022 The JaxNetwork developers
 * Use of this source code is governed by an ISC
 * license that can be found in the LICENSE file.
 */

package mmr

import "math"

// MaxLeafIndex is the largest leaf index whose mmr size still fits into 64
// bits.  Positions derived from bigger indexes would wrap around.
const MaxLeafIndex = math.MaxUint64>>1 - 1

// LeafIndexToMMRSize returns the number of nodes required to hold the leaves
// [0..leafIndex].  The peak count is the number of ones in the leaf count.
func LeafIndexToMMRSize(leafIndex uint64) uint64 {
	leaves := leafIndex + 1
	peaks := CountOnes(leaves)
	return 2*leaves - peaks
}

// LeafIndexToPos returns the position of the leaf with the given index.
// It is the mmr size minus the height+1 of the last peak, which is exactly
// the number of ancestors the leaf completes.
func LeafIndexToPos(leafIndex uint64) uint64 {
	return LeafIndexToMMRSize(leafIndex) - TrailingZeros(leafIndex+1) - 1
}

// JumpLeft moves the one based position pos to the node at the same height in
// the perfect tree immediately to the left of the largest perfect tree that
// precedes pos.
func JumpLeft(pos uint64) uint64 {
	mostSignificantBits := uint64(1) << (BitLength(pos) - 1)
	return pos - (mostSignificantBits - 1)
}

// PosHeightInTree returns the height of the node at the zero based position
// pos.  Leaves are at height 0.
//
// The position is converted to one based form and repeatedly jumped left
// until it becomes all ones, the height is then the bit length minus one.
// For pos == math.MaxUint64 the one based form is 2^64, which jumps straight
// to 1, so the height is 0.
func PosHeightInTree(pos uint64) uint64 {
	pos++
	if pos == 0 {
		return 0
	}

	for !AllOnes(pos) {
		pos = JumpLeft(pos)
	}

	return BitLength(pos) - 1
}

// ParentOffset is the distance from a parent whose children are at the given
// height back to its left child.
func ParentOffset(height uint64) uint64 {
	return 2 << height
}

// SiblingOffset is the distance between the left and right children at the
// given height.
func SiblingOffset(height uint64) uint64 {
	return (2 << height) - 1
}

// LeftPosForHeight returns the position of the left-most node at height,
// which is also the first peak of that height.
func LeftPosForHeight(height uint64) uint64 {
	return (2 << height) - 2
}

// IsValidMMRSize reports whether size is the size of some mountain range,
// i.e. the next position to be written is a leaf.
func IsValidMMRSize(size uint64) bool {
	return PosHeightInTree(size) == 0
}
