// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"gitlab.com/jaxnet/headermmr/database"
	"gitlab.com/jaxnet/headermmr/node/mmr"
	"gitlab.com/jaxnet/headermmr/types/chaincfg"
)

var errStopIteration = errors.New("stop iteration")

func (app *App) table(header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(app.out)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	return table
}

func joinPositions(positions []uint64) string {
	parts := make([]string, 0, len(positions))
	for _, pos := range positions {
		parts = append(parts, strconv.FormatUint(pos, 10))
	}
	return strings.Join(parts, " ")
}

func (app *App) PositionsCmd(c *cli.Context) error {
	leaf := c.Uint64(flagLeaf)
	count := c.Uint64(flagCount)
	if leaf > mmr.MaxLeafIndex {
		return cli.NewExitError(mmr.ErrLeafIndexRange, 1)
	}

	table := app.table("Leaf", "Position", "MMR size", "Peaks", "Bootstrap")
	for i := uint64(0); i < count && leaf+i <= mmr.MaxLeafIndex; i++ {
		idx := leaf + i
		table.Append([]string{
			strconv.FormatUint(idx, 10),
			strconv.FormatUint(mmr.LeafIndexToPos(idx), 10),
			strconv.FormatUint(mmr.LeafIndexToMMRSize(idx), 10),
			joinPositions(mmr.PeaksForLeafIndex(idx)),
			joinPositions(mmr.BootstrapPositions(idx)),
		})
	}
	table.Render()
	return nil
}

func (app *App) GetNodeCmd(c *cli.Context) error {
	pos := c.Uint64(flagPos)

	db, err := app.openDB()
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer db.Close()

	hash, err := db.GetNode(c.Context, pos)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	fmt.Fprintf(app.out, "position: %d\nheight:   %d\nhash:     %s\n", pos, mmr.PosHeightInTree(pos), hash)
	return nil
}

func (app *App) PeaksCmd(c *cli.Context) error {
	leaf := c.Uint64(flagLeaf)

	db, err := app.openDB()
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer db.Close()

	peaks, err := mmr.PeakHashes(c.Context, db, leaf)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	table := app.table("Position", "Height", "Hash")
	for _, peak := range peaks {
		table.Append([]string{
			strconv.FormatUint(peak.Position, 10),
			strconv.FormatUint(mmr.PosHeightInTree(peak.Position), 10),
			peak.Hash.String(),
		})
	}
	table.Render()
	return nil
}

func (app *App) RootCmd(c *cli.Context) error {
	leaf := c.Uint64(flagLeaf)

	db, err := app.openDB()
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer db.Close()

	root, err := mmr.BagPeaks(c.Context, db, app.hasher, leaf)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	fmt.Fprintf(app.out, "leaf:     %d\nmmr size: %d\nroot:     %s\n", leaf, mmr.LeafIndexToMMRSize(leaf), root)
	return nil
}

// collectNodes reads the stored nodes with positions in [from, to].
func (app *App) collectNodes(c *cli.Context, db database.DB) ([]database.Node, error) {
	from, to := c.Uint64(flagFrom), c.Uint64(flagTo)
	if from > to {
		return nil, errors.Errorf("--%s %d is past --%s %d", flagFrom, from, flagTo, to)
	}

	var nodes []database.Node
	err := db.ForEachNode(c.Context, func(node database.Node) error {
		if node.Position > to {
			return errStopIteration
		}
		if node.Position >= from {
			nodes = append(nodes, node)
		}
		return nil
	})
	if err != nil && !errors.Is(err, errStopIteration) {
		return nil, err
	}
	return nodes, nil
}

func (app *App) DumpCmd(c *cli.Context) error {
	db, err := app.openDB()
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer db.Close()

	nodes, err := app.collectNodes(c, db)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	table := app.table("Position", "Height", "Hash")
	for _, node := range nodes {
		table.Append([]string{
			strconv.FormatUint(node.Position, 10),
			strconv.FormatUint(mmr.PosHeightInTree(node.Position), 10),
			node.Hash.String(),
		})
	}
	table.SetFooter([]string{"", "Total", strconv.Itoa(len(nodes))})
	table.Render()
	return nil
}

func (app *App) ExportCmd(c *cli.Context) error {
	db, err := app.openDB()
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer db.Close()

	nodes, err := app.collectNodes(c, db)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	file, err := os.OpenFile(c.String(flagFile), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return cli.NewExitError(errors.Wrap(err, "unable to open out file"), 1)
	}
	defer file.Close()

	if err = gocsv.MarshalFile(&nodes, file); err != nil {
		return cli.NewExitError(errors.Wrap(err, "unable to write nodes"), 1)
	}

	fmt.Fprintf(app.out, "Exported %d nodes to %s\n", len(nodes), c.String(flagFile))
	return nil
}

func (app *App) ImportCmd(c *cli.Context) error {
	file, err := os.Open(c.String(flagFile))
	if err != nil {
		return cli.NewExitError(errors.Wrap(err, "unable to open input file"), 1)
	}
	defer file.Close()

	var nodes []database.Node
	if err = gocsv.UnmarshalFile(file, &nodes); err != nil {
		return cli.NewExitError(errors.Wrap(err, "unable to read nodes"), 1)
	}

	db, err := app.loadDB()
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer db.Close()

	if _, err = putNodes(c.Context, db, nodes, c.Int(flagBatch)); err != nil {
		return cli.NewExitError(err, 1)
	}

	fmt.Fprintf(app.out, "Imported %d nodes from %s\n", len(nodes), c.String(flagFile))
	return nil
}

// putNodes commits nodes in batches of at most size nodes, so a large file
// does not overflow a single transaction.  It returns the number of batches.
func putNodes(ctx context.Context, db database.Batcher, nodes []database.Node, size int) (int, error) {
	if size <= 0 {
		size = defaultImportBatch
	}

	batches := 0
	for from := 0; from < len(nodes); from += size {
		to := from + size
		if to > len(nodes) {
			to = len(nodes)
		}
		if err := db.PutNodes(ctx, nodes[from:to]); err != nil {
			return batches, errors.Wrapf(err, "unable to store nodes %d..%d", nodes[from].Position, nodes[to-1].Position)
		}
		batches++
	}
	return batches, nil
}

func (app *App) CheckpointCmd(c *cli.Context) error {
	leaf := c.Uint64(flagLeaf)
	path := c.String(flagFile)
	if leaf >= mmr.MaxLeafIndex {
		return cli.NewExitError(mmr.ErrLeafIndexRange, 1)
	}

	db, err := app.openDB()
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer db.Close()

	peaks, err := mmr.PeakHashes(c.Context, db, leaf)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	name := c.String(flagName)
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	cp := chaincfg.Checkpoint{
		Name:           name,
		StartLeafIndex: leaf + 1,
		Peaks:          peaks,
	}
	if err = cp.Validate(); err != nil {
		return cli.NewExitError(err, 1)
	}
	if err = chaincfg.WriteCheckpointFile(path, cp); err != nil {
		return cli.NewExitError(err, 1)
	}

	fmt.Fprintf(app.out, "Checkpoint %s starts at leaf %d with %d peaks\n", name, cp.StartLeafIndex, len(peaks))
	return nil
}
