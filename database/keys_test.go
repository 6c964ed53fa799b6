// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package database

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeKeyOrder(t *testing.T) {
	positions := []uint64{0, 1, 255, 256, 65535, 1 << 40, math.MaxUint64}
	for i := 1; i < len(positions); i++ {
		prev, next := NodeKey(positions[i-1]), NodeKey(positions[i])
		assert.Equal(t, -1, bytes.Compare(prev, next), "%d vs %d", positions[i-1], positions[i])
	}

	for _, pos := range positions {
		got, ok := PositionFromKey(NodeKey(pos))
		require.True(t, ok)
		assert.Equal(t, pos, got)
	}

	_, ok := PositionFromKey([]byte{0x01, 0, 0, 0, 0, 0, 0, 0, 1})
	assert.False(t, ok)
	_, ok = PositionFromKey(NodeKeyPrefix)
	assert.False(t, ok)
}

func TestDecodeNodeValue(t *testing.T) {
	_, err := DecodeNodeValue(3, []byte{1, 2, 3})
	assert.True(t, IsErrorCode(err, ErrCorruption))

	value := bytes.Repeat([]byte{0x5a}, 32)
	hash, err := DecodeNodeValue(3, value)
	require.NoError(t, err)
	assert.Equal(t, value, hash[:])
}
