// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package dbtest holds the behaviour every node database driver must show.
// Driver packages call Run from their own tests.
package dbtest

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/jaxnet/headermmr/database"
	"gitlab.com/jaxnet/headermmr/types/chainhash"
)

// Factory returns a fresh, empty and open database.  The suite closes it.
type Factory func(t *testing.T) database.DB

// HashOf returns a deterministic test hash for n.
func HashOf(n uint64) chainhash.Hash {
	var h chainhash.Hash
	for i := range h {
		h[i] = byte(n >> (8 * (i % 8)))
	}
	h[31] = 0xAA
	return h
}

// Run executes the conformance suite against the driver built by newDB.
// maxPos is the largest position the driver can hold.
func Run(t *testing.T, newDB Factory, maxPos uint64) {
	tests := []struct {
		name string
		fn   func(t *testing.T, db database.DB)
	}{
		{"NotFound", testNotFound},
		{"SetGet", testSetGet},
		{"Overwrite", testOverwrite},
		{"PutNodes", testPutNodes},
		{"ForEachOrdered", testForEachOrdered},
		{"ForEachStop", testForEachStop},
		{"LargePosition", func(t *testing.T, db database.DB) { testLargePosition(t, db, maxPos) }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			db := newDB(t)
			defer db.Close()
			tt.fn(t, db)
		})
	}

	t.Run("Closed", func(t *testing.T) {
		db := newDB(t)
		require.NoError(t, db.Close())

		_, err := db.GetNode(context.Background(), 1)
		assert.Error(t, err)
		assert.False(t, database.IsNotFound(err))
		assert.Error(t, db.SetNode(context.Background(), 1, HashOf(1)))
	})
}

func testNotFound(t *testing.T, db database.DB) {
	_, err := db.GetNode(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, database.IsNotFound(err), "got %v", err)
}

func testSetGet(t *testing.T, db database.DB) {
	ctx := context.Background()
	for pos := uint64(0); pos < 32; pos++ {
		require.NoError(t, db.SetNode(ctx, pos, HashOf(pos)))
	}
	for pos := uint64(0); pos < 32; pos++ {
		hash, err := db.GetNode(ctx, pos)
		require.NoError(t, err)
		assert.Equal(t, HashOf(pos), hash)
	}
}

func testOverwrite(t *testing.T, db database.DB) {
	ctx := context.Background()
	require.NoError(t, db.SetNode(ctx, 7, HashOf(1)))
	require.NoError(t, db.SetNode(ctx, 7, HashOf(1)))
	require.NoError(t, db.SetNode(ctx, 7, HashOf(2)))

	hash, err := db.GetNode(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, HashOf(2), hash)

	count := 0
	require.NoError(t, db.ForEachNode(ctx, func(database.Node) error {
		count++
		return nil
	}))
	assert.Equal(t, 1, count)
}

func testPutNodes(t *testing.T, db database.DB) {
	ctx := context.Background()
	nodes := []database.Node{
		{Position: 19, Hash: HashOf(19)},
		{Position: 20, Hash: HashOf(20)},
		{Position: 21, Hash: HashOf(21)},
	}
	require.NoError(t, db.PutNodes(ctx, nodes))
	require.NoError(t, db.PutNodes(ctx, nil))

	for _, node := range nodes {
		hash, err := db.GetNode(ctx, node.Position)
		require.NoError(t, err)
		assert.Equal(t, node.Hash, hash)
	}
}

func testForEachOrdered(t *testing.T, db database.DB) {
	ctx := context.Background()
	positions := []uint64{300, 1, 256, 18, 0, 65536, 14}
	for _, pos := range positions {
		require.NoError(t, db.SetNode(ctx, pos, HashOf(pos)))
	}

	var got []uint64
	require.NoError(t, db.ForEachNode(ctx, func(node database.Node) error {
		assert.Equal(t, HashOf(node.Position), node.Hash)
		got = append(got, node.Position)
		return nil
	}))
	assert.Equal(t, []uint64{0, 1, 14, 18, 256, 300, 65536}, got)
}

func testForEachStop(t *testing.T, db database.DB) {
	ctx := context.Background()
	for pos := uint64(0); pos < 5; pos++ {
		require.NoError(t, db.SetNode(ctx, pos, HashOf(pos)))
	}

	stop := errors.New("stop")
	visited := 0
	err := db.ForEachNode(ctx, func(database.Node) error {
		visited++
		if visited == 2 {
			return stop
		}
		return nil
	})
	assert.True(t, errors.Is(err, stop), "got %v", err)
	assert.Equal(t, 2, visited)
}

func testLargePosition(t *testing.T, db database.DB, maxPos uint64) {
	ctx := context.Background()
	require.NoError(t, db.SetNode(ctx, maxPos, HashOf(maxPos)))

	hash, err := db.GetNode(ctx, maxPos)
	require.NoError(t, err)
	assert.Equal(t, HashOf(maxPos), hash)

	if maxPos < math.MaxUint64 {
		assert.Error(t, db.SetNode(ctx, maxPos+1, HashOf(1)))
	}
}
