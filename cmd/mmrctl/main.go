// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.
package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"gitlab.com/jaxnet/headermmr/database"
	"gitlab.com/jaxnet/headermmr/node"
	"gitlab.com/jaxnet/headermmr/node/mmr"
)

func main() {
	app := &App{out: os.Stdout}
	if err := app.cliApp().Run(os.Args); err != nil {
		println(err.Error())
		os.Exit(1)
	}
}

func (app *App) cliApp() *cli.App {
	return &cli.App{
		Name:     "mmrctl",
		Usage:    "inspect and maintain a block header mountain range database",
		Flags:    app.InitFlags(),
		Before:   app.InitCfg,
		Commands: app.getCommands(),
		Writer:   app.out,
	}
}

func (app *App) getCommands() cli.Commands {
	return []*cli.Command{
		{
			Name:   "pos",
			Usage:  "print positions, sizes and peaks for leaf indexes",
			Flags:  []cli.Flag{standardFlags[flagLeaf], standardFlags[flagCount]},
			Action: app.PositionsCmd,
		},
		{
			Name:   "get",
			Usage:  "print the hash stored at a position",
			Flags:  []cli.Flag{standardFlags[flagPos]},
			Action: app.GetNodeCmd,
		},
		{
			Name:   "peaks",
			Usage:  "print the peaks of the range ending at a leaf",
			Flags:  []cli.Flag{standardFlags[flagLeaf]},
			Action: app.PeaksCmd,
		},
		{
			Name:   "root",
			Usage:  "bag the peaks of the range ending at a leaf into the root",
			Flags:  []cli.Flag{standardFlags[flagLeaf]},
			Action: app.RootCmd,
		},
		{
			Name:   "dump",
			Usage:  "print stored nodes in position order",
			Flags:  []cli.Flag{standardFlags[flagFrom], standardFlags[flagTo]},
			Action: app.DumpCmd,
		},
		{
			Name:   "export",
			Usage:  "write stored nodes to a CSV file",
			Flags:  []cli.Flag{standardFlags[flagFile], standardFlags[flagFrom], standardFlags[flagTo]},
			Action: app.ExportCmd,
		},
		{
			Name:   "import",
			Usage:  "load nodes from a CSV file, the database is created when missing",
			Flags:  []cli.Flag{standardFlags[flagFile], standardFlags[flagBatch]},
			Action: app.ImportCmd,
		},
		{
			Name:   "checkpoint",
			Usage:  "write a checkpoint file that starts right after a leaf",
			Flags:  []cli.Flag{standardFlags[flagLeaf], standardFlags[flagFile], standardFlags[flagName]},
			Action: app.CheckpointCmd,
		},
	}
}

type App struct {
	out    io.Writer
	config node.InstanceConfig

	dataDir string
	hasher  mmr.Hasher
}

func (app *App) InitFlags() []cli.Flag {
	return []cli.Flag{
		standardFlags[flagDataDir],
		standardFlags[flagDbType],
		standardFlags[flagNet],
		standardFlags[flagHasher],
		standardFlags[flagMergeEncoding],
	}
}

func (app *App) InitCfg(c *cli.Context) error {
	app.dataDir = c.String(flagDataDir)
	app.config = node.InstanceConfig{
		DbType:        c.String(flagDbType),
		Net:           c.String(flagNet),
		Hasher:        c.String(flagHasher),
		MergeEncoding: c.String(flagMergeEncoding),
	}

	var err error
	app.hasher, err = app.config.MerkleHasher()
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	return nil
}

// openDB opens an existing node database.
func (app *App) openDB() (database.DB, error) {
	if app.config.DbType == "memdb" {
		return nil, errors.New("memdb keeps nothing between runs")
	}

	dbPath := node.NodeDbPath(app.dataDir, app.config.Net, app.config.DbType)
	db, err := database.Open(app.config.DbType, dbPath)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open %s", filepath.Clean(dbPath))
	}
	return db, nil
}

// loadDB opens the node database, creating it when needed.
func (app *App) loadDB() (database.DB, error) {
	return node.NewDBCtl(zerolog.Nop()).LoadNodeDB(app.dataDir, app.config.Net, app.config)
}
