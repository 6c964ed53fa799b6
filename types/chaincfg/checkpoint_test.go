/*
 * Copyright (c) 2022 The JaxNetwork developers
 * Use of this source code is governed by an ISC
 * license that can be found in the LICENSE file.
 */

package chaincfg

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/jaxnet/headermmr/database/memdb"
	"gitlab.com/jaxnet/headermmr/node/mmr"
	"gitlab.com/jaxnet/headermmr/types/chainhash"
	"golang.org/x/crypto/blake2b"
)

func TestBuiltinCheckpoints(t *testing.T) {
	for _, name := range CheckpointNames() {
		cp, err := CheckpointByName(name)
		require.NoError(t, err)
		assert.NoError(t, cp.Validate(), name)
	}

	cp, err := CheckpointByName("Pangolin")
	require.NoError(t, err)
	assert.Equal(t, uint64(11), cp.StartLeafIndex)
	assert.Equal(t, mmr.BootstrapPositions(11), []uint64{cp.Peaks[0].Position, cp.Peaks[1].Position, cp.Peaks[2].Position})

	_, err = CheckpointByName("mainnet")
	assert.Error(t, err)
}

// The pangolin peaks are chain values, so the ancestors above them must be
// blake2b-256 over the bare concatenation of the children.
func TestPangolinMerge(t *testing.T) {
	ctx := context.Background()
	db := memdb.New()
	acc, err := mmr.New(db, PangolinCheckpoint.AccumulatorConfig(nil, true))
	require.NoError(t, err)

	leaf := chainhash.MustHash("0x1111111111111111111111111111111111111111111111111111111111111111")
	_, err = acc.Append(ctx, 11, leaf)
	require.NoError(t, err)

	concat := func(l, r chainhash.Hash) chainhash.Hash {
		return blake2b.Sum256(append(l.CloneBytes(), r[:]...))
	}
	n20 := concat(PangolinCheckpoint.Peaks[2].Hash, leaf)
	n21 := concat(PangolinCheckpoint.Peaks[1].Hash, n20)

	got, err := db.GetNode(ctx, 20)
	require.NoError(t, err)
	assert.Equal(t, n20, got)

	got, err = db.GetNode(ctx, 21)
	require.NoError(t, err)
	assert.Equal(t, n21, got)
}

func TestCheckpointByNameReturnsCopy(t *testing.T) {
	cp, err := CheckpointByName("pangolin")
	require.NoError(t, err)
	cp.Peaks[0].Position = 1

	again, err := CheckpointByName("pangolin")
	require.NoError(t, err)
	assert.Equal(t, uint64(14), again.Peaks[0].Position)
}

func TestAccumulatorConfig(t *testing.T) {
	cfg := PangolinCheckpoint.AccumulatorConfig(mmr.SHA256Hasher{}, true)
	assert.Equal(t, uint64(11), cfg.StartLeafIndex)
	assert.Len(t, cfg.BootstrapPeaks, 3)
	assert.True(t, cfg.StrictOrder)
	assert.Equal(t, mmr.SHA256Hasher{}, cfg.Hasher)
}

func TestCheckpointFileRoundTrip(t *testing.T) {
	dir, err := os.MkdirTemp("", "chaincfg")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "pangolin.yaml")
	require.NoError(t, WriteCheckpointFile(path, PangolinCheckpoint))

	cp, err := LoadCheckpointFile(path)
	require.NoError(t, err)
	assert.Equal(t, PangolinCheckpoint, cp)
}

func TestLoadCheckpointFile(t *testing.T) {
	dir, err := os.MkdirTemp("", "chaincfg")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	tests := []struct {
		name    string
		file    string
		body    string
		wantErr bool
	}{
		{
			name: "toml",
			file: "custom.toml",
			body: `name = "custom"
start_leaf_index = 2

[[peaks]]
position = 2
hash = "0x01"
`,
		},
		{
			name: "yaml without name",
			file: "single.yml",
			body: `start_leaf_index: 1
peaks:
  - position: 0
    hash: "0xff"
`,
		},
		{
			name: "wrong peaks",
			file: "wrong.yaml",
			body: `start_leaf_index: 11
peaks:
  - position: 14
    hash: "0x01"
`,
			wantErr: true,
		},
		{
			name: "bad hash",
			file: "bad.yaml",
			body: `start_leaf_index: 1
peaks:
  - position: 0
    hash: "0xzz"
`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0644))

			cp, err := LoadCheckpointFile(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, cp.Name)
			assert.NoError(t, cp.Validate())
		})
	}

	cp, err := LoadCheckpointFile(filepath.Join(dir, "single.yml"))
	require.NoError(t, err)
	assert.Equal(t, "single", cp.Name)
	assert.Equal(t, byte(0xff), cp.Peaks[0].Hash[31])
}
