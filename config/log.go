// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2017 The Decred developers
// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package config

import (
	"github.com/rs/zerolog"
	"gitlab.com/jaxnet/headermmr/corelog"
	"gitlab.com/jaxnet/headermmr/database"
	"gitlab.com/jaxnet/headermmr/node/indexer"
	"gitlab.com/jaxnet/headermmr/node/mmr"
)

const (
	logUnitBCDB = "BCDB"
	logUnitINDX = "INDX"
	logUnitMMRA = "MMRA"
	logUnitSRVR = "SRVR"
)

// Loggers per subsystem.  When adding new subsystems, add the unit here and
// hand its logger to the package in setLoggers.
var (
	// Log is the logger of the daemon itself.
	Log = corelog.New(logUnitSRVR, corelog.DefaultLevel, corelog.Config{}.Default())

	unitLogs = map[string]zerolog.Logger{
		logUnitBCDB: corelog.New(logUnitBCDB, corelog.DefaultLevel, corelog.Config{}.Default()),
		logUnitINDX: corelog.New(logUnitINDX, corelog.DefaultLevel, corelog.Config{}.Default()),
		logUnitMMRA: corelog.New(logUnitMMRA, corelog.DefaultLevel, corelog.Config{}.Default()),
		logUnitSRVR: Log,
	}
)

// setLoggers hands the subsystem loggers to their packages.
func setLoggers() {
	database.UseLogger(unitLogs[logUnitBCDB])
	indexer.UseLogger(unitLogs[logUnitINDX])
	mmr.UseLogger(unitLogs[logUnitMMRA])
	Log = unitLogs[logUnitSRVR]
}

// setLogLevel sets the logging level for provided subsystem.  Invalid
// subsystems are ignored.
func setLogLevel(subsystemID, logLevel string, logConfig corelog.Config) {
	if _, ok := unitLogs[subsystemID]; !ok {
		return
	}

	level, ok := corelog.ParseLevel(logLevel)
	if !ok {
		level = corelog.DefaultLevel
	}
	unitLogs[subsystemID] = corelog.New(subsystemID, level, logConfig)
}

// setLogLevels sets the log level for all subsystem loggers to the passed
// level.
func setLogLevels(logLevel string, logConfig corelog.Config) {
	for subsystemID := range unitLogs {
		setLogLevel(subsystemID, logLevel, logConfig)
	}
}
