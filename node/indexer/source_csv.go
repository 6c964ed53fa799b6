// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package indexer

import (
	"context"
	"os"
	"sort"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
)

// CSVSource reads blocks from a CSV file with a "number,hash" header.  The
// rows may come in any order, duplicates must agree on the hash.
type CSVSource struct {
	path string
}

func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

func (src *CSVSource) FetchData() ([]Block, error) {
	file, err := os.Open(src.path)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open block file")
	}
	defer file.Close()

	rows := make([]Block, 0)
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return nil, errors.Wrapf(err, "unable to parse %s", src.path)
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Number < rows[j].Number })
	return rows, nil
}

func (src *CSVSource) Blocks(ctx context.Context, from uint64, out chan<- Block) error {
	rows, err := src.FetchData()
	if err != nil {
		return err
	}

	var prev *Block
	for i := range rows {
		row := rows[i]
		if row.Number < from {
			continue
		}
		if prev != nil && prev.Number == row.Number {
			if prev.Hash != row.Hash {
				return errors.Errorf("block %d listed with hashes %s and %s",
					row.Number, prev.Hash, row.Hash)
			}
			continue
		}
		if err := send(ctx, out, row); err != nil {
			return err
		}
		prev = &rows[i]
	}

	log.Debug().Str("file", src.path).Int("rows", len(rows)).Msg("block file exhausted")
	return nil
}

// SaveBlocks writes blocks in the format CSVSource reads.
func SaveBlocks(path string, blocks []Block) error {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Wrap(err, "unable to create block file")
	}
	defer file.Close()

	return gocsv.MarshalFile(blocks, file)
}
