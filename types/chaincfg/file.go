/*
 * Copyright (c) 2022 The JaxNetwork developers
 * Use of this source code is governed by an ISC
 * license that can be found in the LICENSE file.
 */

package chaincfg

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"gitlab.com/jaxnet/headermmr/database"
	"gitlab.com/jaxnet/headermmr/types/chainhash"
	"gopkg.in/yaml.v3"
)

type checkpointFile struct {
	Name           string      `yaml:"name" toml:"name"`
	StartLeafIndex uint64      `yaml:"start_leaf_index" toml:"start_leaf_index"`
	Peaks          []peakEntry `yaml:"peaks" toml:"peaks"`
}

type peakEntry struct {
	Position uint64 `yaml:"position" toml:"position"`
	Hash     string `yaml:"hash" toml:"hash"`
}

// LoadCheckpointFile reads and validates a checkpoint.  Files ending with
// .toml are decoded as TOML, everything else as YAML.
func LoadCheckpointFile(path string) (Checkpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Checkpoint{}, errors.Wrap(err, "unable to read checkpoint file")
	}

	var file checkpointFile
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, &file)
	} else {
		err = yaml.Unmarshal(data, &file)
	}
	if err != nil {
		return Checkpoint{}, errors.Wrapf(err, "unable to decode checkpoint file %s", path)
	}

	cp := Checkpoint{
		Name:           file.Name,
		StartLeafIndex: file.StartLeafIndex,
	}
	if cp.Name == "" {
		cp.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	for _, peak := range file.Peaks {
		var hash chainhash.Hash
		if err := chainhash.Decode(&hash, peak.Hash); err != nil {
			return Checkpoint{}, errors.Wrapf(err, "peak %d", peak.Position)
		}
		cp.Peaks = append(cp.Peaks, database.Node{Position: peak.Position, Hash: hash})
	}

	cp = cp.clone()
	if err := cp.Validate(); err != nil {
		return Checkpoint{}, err
	}
	return cp, nil
}

// WriteCheckpointFile stores cp as YAML.
func WriteCheckpointFile(path string, cp Checkpoint) error {
	file := checkpointFile{
		Name:           cp.Name,
		StartLeafIndex: cp.StartLeafIndex,
	}
	for _, peak := range cp.clone().Peaks {
		file.Peaks = append(file.Peaks, peakEntry{Position: peak.Position, Hash: peak.Hash.String()})
	}

	data, err := yaml.Marshal(&file)
	if err != nil {
		return errors.Wrap(err, "unable to encode checkpoint")
	}
	return errors.Wrap(os.WriteFile(path, data, 0644), "unable to write checkpoint file")
}
