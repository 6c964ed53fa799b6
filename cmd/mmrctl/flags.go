// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.
package main

import "github.com/urfave/cli/v2"

const (
	flagDataDir       = "datadir"
	flagDbType        = "dbtype"
	flagNet           = "net"
	flagHasher        = "hasher"
	flagMergeEncoding = "merge-encoding"
	flagLeaf          = "leaf"
	flagCount         = "count"
	flagPos           = "pos"
	flagFrom          = "from"
	flagTo            = "to"
	flagFile          = "file"
	flagName          = "name"
	flagBatch         = "batch"

	defaultImportBatch = 10000
)

var standardFlags = map[string]cli.Flag{
	flagDataDir: &cli.StringFlag{
		Name:    flagDataDir,
		Aliases: []string{"b"},
		Value:   "./data",
		EnvVars: []string{"DATA_DIR"},
		Usage:   "data directory of headermmrd",
	},
	flagDbType: &cli.StringFlag{
		Name:  flagDbType,
		Value: "leveldb",
		Usage: "database backend {badger, leveldb, sqlite}",
	},
	flagNet: &cli.StringFlag{
		Name:  flagNet,
		Value: "pangolin",
		Usage: "checkpoint name the database was built from",
	},
	flagHasher: &cli.StringFlag{
		Name:  flagHasher,
		Value: "blake2b",
		Usage: "merge hash function {blake2b, sha256}",
	},
	flagMergeEncoding: &cli.StringFlag{
		Name:  flagMergeEncoding,
		Value: "raw",
		Usage: "serialization of the child pair before hashing {scale, raw}",
	},
	flagLeaf: &cli.Uint64Flag{
		Name:     flagLeaf,
		Aliases:  []string{"l"},
		Usage:    "leaf index (block number)",
		Required: true,
	},
	flagCount: &cli.Uint64Flag{
		Name:    flagCount,
		Aliases: []string{"n"},
		Value:   1,
		Usage:   "number of consecutive leaves",
	},
	flagPos: &cli.Uint64Flag{
		Name:     flagPos,
		Aliases:  []string{"p"},
		Usage:    "node position",
		Required: true,
	},
	flagFrom: &cli.Uint64Flag{
		Name:  flagFrom,
		Usage: "first position, inclusive",
	},
	flagTo: &cli.Uint64Flag{
		Name:  flagTo,
		Value: ^uint64(0),
		Usage: "last position, inclusive",
	},
	flagFile: &cli.StringFlag{
		Name:     flagFile,
		Aliases:  []string{"f"},
		Usage:    "path to the input/output file",
		Required: true,
	},
	flagBatch: &cli.IntFlag{
		Name:  flagBatch,
		Value: defaultImportBatch,
		Usage: "nodes committed per write batch",
	},
	flagName: &cli.StringFlag{
		Name:  flagName,
		Usage: "name of the new checkpoint, defaults to the file name",
	},
}
