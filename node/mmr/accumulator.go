/*
 * Copyright (c) 2022 The JaxNetwork developers
 * Use of this source code is governed by an ISC
 * license that can be found in the LICENSE file.
 */

package mmr

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"gitlab.com/jaxnet/headermmr/database"
	"gitlab.com/jaxnet/headermmr/types/chainhash"
)

// Config parameterizes an Accumulator.
type Config struct {
	// StartLeafIndex is the first leaf the accumulator processes.  Leaves
	// below it are covered by BootstrapPeaks and are ignored.
	StartLeafIndex uint64

	// BootstrapPeaks is the peak set of the range [0..StartLeafIndex-1].
	// It is written once, together with the leaf at StartLeafIndex.
	BootstrapPeaks []database.Node

	// Hasher merges children into parents.  Defaults to blake2b-256 over
	// the raw encoded pair.
	Hasher Hasher

	// StrictOrder rejects leaf indexes that skip ahead of or fall behind the
	// last appended one.  Repeating the last index is always allowed.
	StrictOrder bool
}

// Accumulator maintains the nodes of a merkle mountain range in a node store
// as leaves are appended one at a time.
//
// Appends must be issued in increasing leaf order by a single writer.  The
// mutex only protects the in-memory state, it does not make concurrent
// producers safe.
type Accumulator struct {
	sync.Mutex
	store  database.NodeStore
	hasher Hasher
	start  uint64
	peaks  []database.Node
	strict bool

	bootstrapped bool
	lastLeaf     uint64
	hasLast      bool
}

// New validates cfg and returns an accumulator writing into store.
func New(store database.NodeStore, cfg Config) (*Accumulator, error) {
	if store == nil {
		return nil, errors.New("node store is required")
	}
	if err := ValidateBootstrap(cfg.StartLeafIndex, cfg.BootstrapPeaks); err != nil {
		return nil, err
	}

	hasher := cfg.Hasher
	if hasher == nil {
		hasher = Blake2bHasher{Encoding: EncodingRaw}
	}

	peaks := make([]database.Node, len(cfg.BootstrapPeaks))
	copy(peaks, cfg.BootstrapPeaks)

	return &Accumulator{
		store:  store,
		hasher: hasher,
		start:  cfg.StartLeafIndex,
		peaks:  peaks,
		strict: cfg.StrictOrder,
	}, nil
}

// StartLeafIndex returns the first leaf index processed by the accumulator.
func (acc *Accumulator) StartLeafIndex() uint64 { return acc.start }

// Hasher returns the merge function in use.
func (acc *Accumulator) Hasher() Hasher { return acc.hasher }

// Bootstrapped reports whether this instance has written the bootstrap peaks.
func (acc *Accumulator) Bootstrapped() bool {
	acc.Lock()
	defer acc.Unlock()
	return acc.bootstrapped
}

// LastLeafIndex returns the last leaf index appended by this instance.
func (acc *Accumulator) LastLeafIndex() (uint64, bool) {
	acc.Lock()
	defer acc.Unlock()
	return acc.lastLeaf, acc.hasLast
}

// Append inserts the leaf for leafIndex and every ancestor the leaf
// completes.  It returns the nodes written, bootstrap peaks included.
//
//   - leaves below the starting index are ignored;
//   - the leaf at the starting index first seeds the bootstrap peaks;
//   - all nodes are staged and committed only once every merge succeeded,
//     so a missing child leaves the store untouched.
//
// Every write is idempotent, so a failed append can be retried with the same
// arguments.
func (acc *Accumulator) Append(ctx context.Context, leafIndex uint64, hash chainhash.Hash) ([]database.Node, error) {
	acc.Lock()
	defer acc.Unlock()

	if leafIndex < acc.start {
		log.Trace().Uint64("leaf", leafIndex).Uint64("start", acc.start).Msg("leaf below starting index, skipped")
		return nil, nil
	}
	if leafIndex > MaxLeafIndex {
		return nil, errors.Wrapf(ErrLeafIndexRange, "leaf %d", leafIndex)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := acc.checkOrder(ctx, leafIndex); err != nil {
		return nil, err
	}

	batch := newStagedWrites(acc.store)

	if leafIndex == acc.start {
		if err := acc.stageBootstrap(ctx, batch); err != nil {
			return nil, err
		}
	}

	pos := LeafIndexToPos(leafIndex)
	if err := batch.stageChecked(ctx, pos, hash); err != nil {
		return nil, errors.Wrapf(err, "leaf %d", leafIndex)
	}

	if err := acc.propagate(ctx, batch, pos); err != nil {
		return nil, errors.Wrapf(err, "leaf %d", leafIndex)
	}

	if err := batch.commit(ctx); err != nil {
		return nil, errors.Wrapf(err, "leaf %d", leafIndex)
	}

	if leafIndex == acc.start && !acc.bootstrapped {
		acc.bootstrapped = true
		log.Info().
			Uint64("start", acc.start).
			Int("peaks", len(acc.peaks)).
			Msg("mountain range bootstrapped")
	}
	acc.lastLeaf, acc.hasLast = leafIndex, true

	written := batch.written()
	log.Trace().
		Uint64("leaf", leafIndex).
		Uint64("pos", pos).
		Str("hash", hash.String()).
		Int("nodes", len(written)).
		Msg("leaf appended")
	return written, nil
}

// Root bags the peaks of the range ending with leafIndex into a single hash.
func (acc *Accumulator) Root(ctx context.Context, leafIndex uint64) (chainhash.Hash, error) {
	acc.Lock()
	defer acc.Unlock()
	return BagPeaks(ctx, acc.store, acc.hasher, leafIndex)
}

// checkOrder accepts, in strict mode, a repeat of the last leaf or its
// successor.  The first leaf of an instance must be the starting leaf or
// follow a leaf that is already stored.
func (acc *Accumulator) checkOrder(ctx context.Context, leafIndex uint64) error {
	if !acc.strict {
		return nil
	}
	if acc.hasLast {
		if leafIndex == acc.lastLeaf || leafIndex == acc.lastLeaf+1 {
			return nil
		}
		return errors.Wrapf(ErrOutOfOrder, "got leaf %d after %d", leafIndex, acc.lastLeaf)
	}

	if leafIndex == acc.start {
		return nil
	}
	prev := LeafIndexToPos(leafIndex - 1)
	_, err := acc.store.GetNode(ctx, prev)
	switch {
	case database.IsNotFound(err):
		return errors.Wrapf(ErrOutOfOrder, "leaf %d is not stored, cannot continue with %d", leafIndex-1, leafIndex)
	case err != nil:
		return errors.Wrapf(err, "unable to read node %d", prev)
	}
	return nil
}

// propagate walks up from the freshly staged leaf at pos and stages every
// ancestor whose right subtree is now complete.
func (acc *Accumulator) propagate(ctx context.Context, batch *stagedWrites, pos uint64) error {
	height := uint64(0)
	for PosHeightInTree(pos+1) > height {
		pos++

		leftPos := pos - ParentOffset(height)
		rightPos := leftPos + SiblingOffset(height)

		left, err := batch.get(ctx, leftPos)
		if err != nil {
			return err
		}
		right, err := batch.get(ctx, rightPos)
		if err != nil {
			return err
		}

		merged := acc.hasher.Merge(left, right)
		if err := batch.stageChecked(ctx, pos, merged); err != nil {
			return err
		}

		log.Debug().
			Uint64("pos", pos).
			Uint64("height", height+1).
			Uint64("left", leftPos).
			Uint64("right", rightPos).
			Msg("ancestor merged")

		height++
	}
	return nil
}
