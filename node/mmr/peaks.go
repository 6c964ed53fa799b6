/*
 * Copyright (c) 2022 The JaxNetwork developers
 * Use of this source code is governed by an ISC
 * license that can be found in the LICENSE file.
 */

package mmr

// Peaks returns the positions of all peaks of a mountain range with mmrSize
// nodes.  The peaks are listed left to right, the highest peak first.
// nil is returned for an empty or invalid size.
//
// For 11 leaves (mmrSize 19) the peaks are [14, 17, 18]:
//
//	3              14
//	             /    \
//	2        6            13
//	       /   \        /    \
//	1     2     5      9     12     17
//	     / \   / \    / \   /  \   /  \
//	0   0   1 3   4  7   8 10  11 15  16 18
func Peaks(mmrSize uint64) []uint64 {
	if mmrSize == 0 || !IsValidMMRSize(mmrSize) {
		return nil
	}

	height, pos := highestPeak(mmrSize)
	peaks := []uint64{pos}
	for height > 0 {
		var ok bool
		height, pos, ok = rightPeak(mmrSize, height, pos)
		if !ok {
			break
		}
		peaks = append(peaks, pos)
	}
	return peaks
}

// PeaksForLeafIndex is Peaks for the range ending with leafIndex.
func PeaksForLeafIndex(leafIndex uint64) []uint64 {
	return Peaks(LeafIndexToMMRSize(leafIndex))
}

// highestPeak returns the height and position of the left-most peak.
func highestPeak(mmrSize uint64) (uint64, uint64) {
	height := uint64(0)
	prev := uint64(0)
	pos := LeftPosForHeight(height)
	for pos < mmrSize {
		height++
		prev = pos
		pos = LeftPosForHeight(height)
	}
	return height - 1, prev
}

// rightPeak jumps to the right sibling of the peak at pos and descends along
// left children until it lands inside the range.
func rightPeak(mmrSize, height, pos uint64) (uint64, uint64, bool) {
	pos += SiblingOffset(height)
	for pos > mmrSize-1 {
		if height == 0 {
			return 0, 0, false
		}
		height--
		pos -= ParentOffset(height)
	}
	return height, pos, true
}
