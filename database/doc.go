// Copyright (c) 2015-2016 The btcsuite developers
// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package database provides the node store used by the mountain range
accumulator.

A node store is a plain position -> hash mapping.  No deletion, range scans or
cross-key transactions are required by the accumulator; every SetNode is
independent and idempotent.  Backends may additionally implement Batcher to
commit a whole append atomically, and every registered driver implements
ForEachNode so operators can export the node table.

Drivers register themselves from an init function, in the same way as
database/sql drivers:

	import (
		"gitlab.com/jaxnet/headermmr/database"
		_ "gitlab.com/jaxnet/headermmr/database/badgerdb"
	)

	db, err := database.Create("badger", "/path/to/nodes")
	if err != nil {
		// Handle error
	}
	defer db.Close()
*/
package database
