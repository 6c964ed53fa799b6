/*
 * Copyright (c) 2022 The JaxNetwork developers
 * Use of this source code is governed by an ISC
 * license that can be found in the LICENSE file.
 */

package mmr

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"gitlab.com/jaxnet/headermmr/database"
)

// BootstrapPositions returns the peak positions an accumulator starting at
// startLeafIndex must be seeded with.  It is empty for startLeafIndex == 0.
func BootstrapPositions(startLeafIndex uint64) []uint64 {
	if startLeafIndex == 0 {
		return nil
	}
	return PeaksForLeafIndex(startLeafIndex - 1)
}

// ValidateBootstrap checks that peaks covers exactly the peak positions of the
// range [0..startLeafIndex-1].  The order of peaks does not matter.
func ValidateBootstrap(startLeafIndex uint64, peaks []database.Node) error {
	if startLeafIndex > MaxLeafIndex {
		return errors.Wrapf(ErrLeafIndexRange, "starting leaf %d", startLeafIndex)
	}

	expected := BootstrapPositions(startLeafIndex)
	if len(peaks) != len(expected) {
		return errors.Wrapf(ErrInvalidBootstrap, "starting leaf %d needs %d peaks, got %d",
			startLeafIndex, len(expected), len(peaks))
	}

	got := make([]uint64, 0, len(peaks))
	for _, peak := range peaks {
		got = append(got, peak.Position)
	}
	sort.Slice(got, func(i, j int) bool { return got[i] < got[j] })

	for i := range expected {
		if got[i] != expected[i] {
			return errors.Wrapf(ErrInvalidBootstrap, "starting leaf %d expects peaks %v, got %v",
				startLeafIndex, expected, got)
		}
	}
	return nil
}

// stageBootstrap stages the configured peaks.  Peaks that are already stored
// with the same hash are rewritten, a different hash is a conflict.
func (acc *Accumulator) stageBootstrap(ctx context.Context, batch *stagedWrites) error {
	for _, peak := range acc.peaks {
		if err := batch.stageChecked(ctx, peak.Position, peak.Hash); err != nil {
			return errors.Wrap(err, "bootstrap peak")
		}
	}
	return nil
}
