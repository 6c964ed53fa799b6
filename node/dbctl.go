// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/jaxnet/headermmr/database"
	_ "gitlab.com/jaxnet/headermmr/database/badgerdb"
	_ "gitlab.com/jaxnet/headermmr/database/ldb"
	_ "gitlab.com/jaxnet/headermmr/database/memdb"
	_ "gitlab.com/jaxnet/headermmr/database/sqlitedb"
)

const (
	// nodeDbNamePrefix is the prefix for the node database name.  The
	// database type is appended to this value to form the full node
	// database name.
	nodeDbNamePrefix = "nodes"
)

type DBCtl struct {
	logger zerolog.Logger
}

func NewDBCtl(logger zerolog.Logger) *DBCtl {
	return &DBCtl{logger: logger}
}

// LoadNodeDB loads (or creates when needed) the node database taking into
// account the selected database backend and returns a handle to it.  It also
// warns the user if there are multiple databases which consume space on the
// file system.
func (ctrl *DBCtl) LoadNodeDB(dataDir, net string, cfg InstanceConfig) (database.DB, error) {
	// The memdb backend does not have a file path associated with it, so
	// handle it uniquely.
	if cfg.DbType == "memdb" {
		ctrl.logger.Info().Msg("Creating node database in memory.")
		return database.Create(cfg.DbType)
	}

	ctrl.warnMultipleDBs(dataDir, net, cfg)

	// The database name is based on the database type.
	dbPath := NodeDbPath(dataDir, net, cfg.DbType)
	ctrl.logger.Info().Str("path", dbPath).Str("type", cfg.DbType).Msg("Loading node database")

	db, err := database.Open(cfg.DbType, dbPath)
	if err != nil {
		// Return the error if it's not because the database doesn't exist.
		if !database.IsErrorCode(err, database.ErrDbDoesNotExist) {
			return nil, err
		}

		// Create the db if it does not exist.
		if err = os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
			return nil, err
		}

		db, err = database.Create(cfg.DbType, dbPath)
		if err != nil {
			return nil, err
		}
	}

	ctrl.logger.Info().Msg("Node database loaded")
	return db, nil
}

// NodeDbPath returns the path to the node database given a database type.
func NodeDbPath(dataDir, net, dbType string) string {
	dbName := nodeDbNamePrefix + "_" + dbType
	if dbType == "sqlite" {
		dbName += ".db"
	}
	return filepath.Join(dataDir, net, dbName)
}

// warnMultipleDBs shows a warning if multiple node database types are
// detected.
func (ctrl *DBCtl) warnMultipleDBs(dataDir, net string, cfg InstanceConfig) {
	var duplicateDbPaths []string
	for _, dbType := range database.SupportedDrivers() {
		if dbType == cfg.DbType || dbType == "memdb" {
			continue
		}

		// Store db path as a duplicate db if it exists.
		dbPath := NodeDbPath(dataDir, net, dbType)
		if fileExists(dbPath) {
			duplicateDbPaths = append(duplicateDbPaths, dbPath)
		}
	}

	// Warn if there are extra databases.
	if len(duplicateDbPaths) > 0 {
		ctrl.logger.Warn().
			Str("current", NodeDbPath(dataDir, net, cfg.DbType)).
			Strs("additional", duplicateDbPaths).
			Msg("There are multiple node databases using different database types. " +
				"You probably don't want to waste disk space by having more than one.")
	}
}
