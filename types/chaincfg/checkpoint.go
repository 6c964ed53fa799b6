/*
 * Copyright (c) 2022 The JaxNetwork developers
 * Use of this source code is governed by an ISC
 * license that can be found in the LICENSE file.
 */

package chaincfg

import (
	"fmt"
	"sort"
	"strings"

	"gitlab.com/jaxnet/headermmr/database"
	"gitlab.com/jaxnet/headermmr/node/mmr"
	"gitlab.com/jaxnet/headermmr/types/chainhash"
)

// Checkpoint describes where an accumulator starts.
type Checkpoint struct {
	Name string

	// StartLeafIndex is the first block number that is appended.
	StartLeafIndex uint64

	// Peaks of the range [0..StartLeafIndex-1], ordered by position.
	Peaks []database.Node
}

// GenesisCheckpoint starts from the very first block, no peaks are needed.
var GenesisCheckpoint = Checkpoint{
	Name:           "genesis",
	StartLeafIndex: 0,
}

// PangolinCheckpoint starts at block 11 of the Pangolin test network.
// The peaks cover blocks 0..10.
var PangolinCheckpoint = Checkpoint{
	Name:           "pangolin",
	StartLeafIndex: 11,
	Peaks: []database.Node{
		{Position: 14, Hash: chainhash.MustHash("0x0fd08918c7f06e049b78c9a7a247786d48529c72ed8ce76f35430c272e4c93f5")},
		{Position: 17, Hash: chainhash.MustHash("0xc21a0937a25282d56ba3801dc3d46ba374e549050463c64e6989800f10cce147")},
		{Position: 18, Hash: chainhash.MustHash("0x5a1c9a86f4009afd9f5945898e3f27722d727df60ac3190c8a924fa46b0d7291")},
	},
}

var checkpoints = map[string]Checkpoint{
	GenesisCheckpoint.Name:  GenesisCheckpoint,
	PangolinCheckpoint.Name: PangolinCheckpoint,
}

// CheckpointByName returns one of the built-in checkpoints.
func CheckpointByName(name string) (Checkpoint, error) {
	cp, ok := checkpoints[strings.ToLower(name)]
	if !ok {
		return Checkpoint{}, fmt.Errorf("unknown checkpoint %q, supported: %s",
			name, strings.Join(CheckpointNames(), ", "))
	}
	return cp.clone(), nil
}

// CheckpointNames lists the built-in checkpoints.
func CheckpointNames() []string {
	names := make([]string, 0, len(checkpoints))
	for name := range checkpoints {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate makes sure the peaks are exactly the peaks of the range before the
// starting leaf.
func (cp Checkpoint) Validate() error {
	if err := mmr.ValidateBootstrap(cp.StartLeafIndex, cp.Peaks); err != nil {
		return fmt.Errorf("checkpoint %q: %w", cp.Name, err)
	}
	return nil
}

// AccumulatorConfig converts the checkpoint into accumulator settings.
func (cp Checkpoint) AccumulatorConfig(hasher mmr.Hasher, strict bool) mmr.Config {
	return mmr.Config{
		StartLeafIndex: cp.StartLeafIndex,
		BootstrapPeaks: cp.clone().Peaks,
		Hasher:         hasher,
		StrictOrder:    strict,
	}
}

func (cp Checkpoint) clone() Checkpoint {
	if cp.Peaks == nil {
		return cp
	}
	peaks := make([]database.Node, len(cp.Peaks))
	copy(peaks, cp.Peaks)
	sort.Slice(peaks, func(i, j int) bool { return peaks[i].Position < peaks[j].Position })
	cp.Peaks = peaks
	return cp
}
