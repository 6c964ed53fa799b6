/*
 * Copyright (c) 2022 The JaxNetwork developers
 * Use of this source code is governed by an ISC
 * license that can be found in the LICENSE file.
 */

package mmr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPeaks(t *testing.T) {
	tests := []struct {
		size uint64
		want []uint64
	}{
		{0, nil},
		{2, nil},
		{1, []uint64{0}},
		{3, []uint64{2}},
		{4, []uint64{2, 3}},
		{7, []uint64{6}},
		{8, []uint64{6, 7}},
		{10, []uint64{6, 9}},
		{11, []uint64{6, 9, 10}},
		{19, []uint64{14, 17, 18}},
		{22, []uint64{14, 21}},
		{31, []uint64{30}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Peaks(tt.size), "size %d", tt.size)
	}

	assert.Equal(t, []uint64{14, 17, 18}, PeaksForLeafIndex(10))
	assert.Equal(t, []uint64{14, 17, 18}, BootstrapPositions(11))
	assert.Empty(t, BootstrapPositions(0))
}

func TestPeaksMatchSimulation(t *testing.T) {
	heights := simulatedHeights(1024)
	for leaf := uint64(0); leaf < 1024; leaf++ {
		size := LeafIndexToMMRSize(leaf)
		peaks := Peaks(size)

		// one peak per set bit of the leaf count, strictly decreasing heights
		assert.Len(t, peaks, int(CountOnes(leaf+1)), "leaf %d", leaf)
		for i := 1; i < len(peaks); i++ {
			assert.True(t, heights[peaks[i-1]] > heights[peaks[i]], "leaf %d", leaf)
		}
		assert.Equal(t, size-1, peaks[len(peaks)-1], "leaf %d", leaf)
	}
}
