// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ldb_test

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/jaxnet/headermmr/database"
	_ "gitlab.com/jaxnet/headermmr/database/ldb"
	"gitlab.com/jaxnet/headermmr/database/dbtest"
)

func tempDir(t *testing.T) string {
	dir, err := os.MkdirTemp("", "ldb")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

func TestConformance(t *testing.T) {
	dbtest.Run(t, func(t *testing.T) database.DB {
		db, err := database.Create("leveldb", filepath.Join(tempDir(t), "nodes"))
		require.NoError(t, err)
		return db
	}, math.MaxUint64)
}

func TestCreateOpen(t *testing.T) {
	path := filepath.Join(tempDir(t), "nodes")

	_, err := database.Open("leveldb", path)
	assert.True(t, database.IsErrorCode(err, database.ErrDbDoesNotExist), "got %v", err)

	db, err := database.Create("leveldb", path)
	require.NoError(t, err)
	require.NoError(t, db.SetNode(context.Background(), 18, dbtest.HashOf(18)))
	require.NoError(t, db.Close())

	_, err = database.Create("leveldb", path)
	assert.True(t, database.IsErrorCode(err, database.ErrDbExists), "got %v", err)

	db, err = database.Open("leveldb", path)
	require.NoError(t, err)
	defer db.Close()

	hash, err := db.GetNode(context.Background(), 18)
	require.NoError(t, err)
	assert.Equal(t, dbtest.HashOf(18), hash)
}

func TestInvalidArgs(t *testing.T) {
	_, err := database.Open("leveldb")
	assert.True(t, database.IsErrorCode(err, database.ErrInvalidArgs))

	_, err = database.Create("leveldb", 42)
	assert.True(t, database.IsErrorCode(err, database.ErrInvalidArgs))
}
