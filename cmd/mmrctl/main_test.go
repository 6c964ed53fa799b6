// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.
package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
	"gitlab.com/jaxnet/headermmr/database"
	"gitlab.com/jaxnet/headermmr/database/dbtest"
	"gitlab.com/jaxnet/headermmr/node"
	"gitlab.com/jaxnet/headermmr/node/mmr"
	"gitlab.com/jaxnet/headermmr/types/chaincfg"
)

// buildDB appends leaves [0..lastLeaf] to a fresh leveldb database in dataDir.
func buildDB(t *testing.T, dataDir string, lastLeaf uint64) {
	cfg := node.InstanceConfig{DbType: "leveldb", Net: "genesis"}
	db, err := node.NewDBCtl(zerolog.Nop()).LoadNodeDB(dataDir, cfg.Net, cfg)
	require.NoError(t, err)
	defer db.Close()

	acc, err := mmr.New(db, chaincfg.GenesisCheckpoint.AccumulatorConfig(nil, true))
	require.NoError(t, err)
	for leaf := uint64(0); leaf <= lastLeaf; leaf++ {
		_, err = acc.Append(context.Background(), leaf, dbtest.HashOf(leaf))
		require.NoError(t, err)
	}
}

func run(t *testing.T, dataDir string, args ...string) (string, error) {
	out := new(bytes.Buffer)
	app := &App{out: out}
	cliApp := app.cliApp()
	cliApp.ExitErrHandler = func(*cli.Context, error) {}

	base := []string{"mmrctl", "--datadir", dataDir, "--net", "genesis"}
	err := cliApp.Run(append(base, args...))
	return out.String(), err
}

func TestPositionsCmd(t *testing.T) {
	out, err := run(t, t.TempDir(), "pos", "--leaf", "11", "--count", "2")
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	var rows []string
	for _, line := range lines {
		if strings.Contains(line, "|") {
			rows = append(rows, strings.Join(strings.Fields(strings.ReplaceAll(line, "|", " ")), " "))
		}
	}
	require.Len(t, rows, 3)
	assert.Equal(t, "11 19 22 14 21 14 17 18", rows[1])
	assert.Equal(t, "12 22 23 14 21 22 14 21", rows[2])
}

func TestInspectCommands(t *testing.T) {
	dataDir := t.TempDir()
	buildDB(t, dataDir, 10)

	out, err := run(t, dataDir, "get", "--pos", "0")
	require.NoError(t, err)
	assert.Contains(t, out, dbtest.HashOf(0).String())

	_, err = run(t, dataDir, "get", "--pos", "100")
	assert.Error(t, err)

	out, err = run(t, dataDir, "peaks", "--leaf", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "14")
	assert.Contains(t, out, "17")
	assert.Contains(t, out, dbtest.HashOf(10).String())

	verify := buildDBHasher(t)
	out, err = run(t, dataDir, "root", "--leaf", "10")
	require.NoError(t, err)
	assert.Contains(t, out, verify(dataDir, 10))

	out, err = run(t, dataDir, "dump", "--from", "16", "--to", "18")
	require.NoError(t, err)
	assert.Contains(t, out, dbtest.HashOf(9).String())
	assert.Contains(t, out, dbtest.HashOf(10).String())
	assert.Contains(t, out, "Total")

	_, err = run(t, dataDir, "dump", "--from", "5", "--to", "4")
	assert.Error(t, err)
}

// buildDBHasher returns a helper that bags the peaks straight from the store.
func buildDBHasher(t *testing.T) func(dataDir string, leaf uint64) string {
	return func(dataDir string, leaf uint64) string {
		db, err := database.Open("leveldb", node.NodeDbPath(dataDir, "genesis", "leveldb"))
		require.NoError(t, err)
		defer db.Close()

		root, err := mmr.BagPeaks(context.Background(), db, mmr.Blake2bHasher{Encoding: mmr.EncodingRaw}, leaf)
		require.NoError(t, err)
		return root.String()
	}
}

func TestExportImport(t *testing.T) {
	dataDir := t.TempDir()
	buildDB(t, dataDir, 6)
	csvFile := filepath.Join(t.TempDir(), "nodes.csv")

	out, err := run(t, dataDir, "export", "--file", csvFile)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 11 nodes")

	out, err = run(t, dataDir, "--dbtype", "sqlite", "import", "--file", csvFile, "--batch", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 11 nodes")

	src, err := database.Open("leveldb", node.NodeDbPath(dataDir, "genesis", "leveldb"))
	require.NoError(t, err)
	defer src.Close()
	dst, err := database.Open("sqlite", node.NodeDbPath(dataDir, "genesis", "sqlite"))
	require.NoError(t, err)
	defer dst.Close()

	for pos := uint64(0); pos < mmr.LeafIndexToMMRSize(6); pos++ {
		want, err := src.GetNode(context.Background(), pos)
		require.NoError(t, err)
		got, err := dst.GetNode(context.Background(), pos)
		require.NoError(t, err)
		assert.Equal(t, want, got, "position %d", pos)
	}
}

type countingBatcher struct {
	sizes []int
}

func (b *countingBatcher) PutNodes(_ context.Context, nodes []database.Node) error {
	b.sizes = append(b.sizes, len(nodes))
	return nil
}

func TestPutNodesBatches(t *testing.T) {
	nodes := make([]database.Node, 25)
	for i := range nodes {
		nodes[i] = database.Node{Position: uint64(i), Hash: dbtest.HashOf(uint64(i))}
	}

	tests := []struct {
		size  int
		sizes []int
	}{
		{size: 10, sizes: []int{10, 10, 5}},
		{size: 25, sizes: []int{25}},
		{size: 0, sizes: []int{25}},
	}
	for _, tt := range tests {
		b := &countingBatcher{}
		batches, err := putNodes(context.Background(), b, nodes, tt.size)
		require.NoError(t, err)
		assert.Equal(t, len(tt.sizes), batches, "size %d", tt.size)
		assert.Equal(t, tt.sizes, b.sizes, "size %d", tt.size)
	}

	batches, err := putNodes(context.Background(), &countingBatcher{}, nil, 10)
	require.NoError(t, err)
	assert.Zero(t, batches)
}

func TestCheckpointCmd(t *testing.T) {
	dataDir := t.TempDir()
	buildDB(t, dataDir, 10)
	cpFile := filepath.Join(t.TempDir(), "local.yaml")

	out, err := run(t, dataDir, "checkpoint", "--leaf", "10", "--file", cpFile)
	require.NoError(t, err)
	assert.Contains(t, out, "starts at leaf 11 with 3 peaks")

	cp, err := chaincfg.LoadCheckpointFile(cpFile)
	require.NoError(t, err)
	assert.Equal(t, "local", cp.Name)
	assert.Equal(t, uint64(11), cp.StartLeafIndex)
	require.Len(t, cp.Peaks, 3)
	assert.Equal(t, []uint64{14, 17, 18}, []uint64{cp.Peaks[0].Position, cp.Peaks[1].Position, cp.Peaks[2].Position})

	_, err = run(t, dataDir, "checkpoint", "--leaf", "20", "--file", cpFile)
	assert.Error(t, err)
}

func TestUnknownHasher(t *testing.T) {
	_, err := run(t, t.TempDir(), "--hasher", "md5", "pos", "--leaf", "1")
	assert.Error(t, err)
}

func TestMissingDatabase(t *testing.T) {
	_, err := run(t, t.TempDir(), "peaks", "--leaf", "1")
	assert.Error(t, err)
}
