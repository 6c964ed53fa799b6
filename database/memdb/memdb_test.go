// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package memdb_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/jaxnet/headermmr/database"
	"gitlab.com/jaxnet/headermmr/database/dbtest"
	"gitlab.com/jaxnet/headermmr/database/memdb"
)

func TestConformance(t *testing.T) {
	dbtest.Run(t, func(t *testing.T) database.DB { return memdb.New() }, math.MaxUint64)
}

func TestRegisteredDriver(t *testing.T) {
	db, err := database.Create("memdb")
	require.NoError(t, err)
	require.Equal(t, "memdb", db.Type())
	require.NoError(t, db.Close())

	_, err = database.Open("memdb", "a", "b")
	require.True(t, database.IsErrorCode(err, database.ErrInvalidArgs))
}
