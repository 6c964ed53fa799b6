// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package indexer drives an accumulator with blocks from a BlockSource.
//
// A producer goroutine streams blocks into a buffered channel and a single
// consumer appends them in order, so the accumulator always sees one writer.
package indexer

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"gitlab.com/jaxnet/headermmr/database"
	"gitlab.com/jaxnet/headermmr/node/mmr"
	"golang.org/x/sync/errgroup"
)

const (
	defaultBufferSize       = 256
	defaultRetryDelay       = time.Second
	defaultProgressInterval = 1000
)

// Config holds the collaborators and tuning knobs of an Indexer.
type Config struct {
	Source      BlockSource
	Accumulator *mmr.Accumulator
	Store       database.NodeStore

	// Retries is how many times a failed append is repeated before the
	// indexer gives up.  ErrOutOfOrder, ErrPositionConflict and
	// ErrMissingNode are never retried.
	Retries    int
	RetryDelay time.Duration

	// ProgressInterval is the number of leaves between two progress log
	// lines.
	ProgressInterval uint64

	BufferSize int
}

// Stats is a snapshot of the indexer progress.
type Stats struct {
	LastLeaf     uint64
	HasLeaf      bool
	MMRSize      uint64
	NodesWritten uint64
	AppendErrors uint64
}

type Indexer struct {
	cfg Config

	mtx   sync.RWMutex
	stats Stats
}

func New(cfg Config) (*Indexer, error) {
	if cfg.Source == nil || cfg.Accumulator == nil || cfg.Store == nil {
		return nil, errors.New("indexer needs a block source, an accumulator and a node store")
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	if cfg.ProgressInterval == 0 {
		cfg.ProgressInterval = defaultProgressInterval
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = defaultBufferSize
	}
	return &Indexer{cfg: cfg}, nil
}

// Stats returns the current progress.
func (ix *Indexer) Stats() Stats {
	ix.mtx.RLock()
	defer ix.mtx.RUnlock()
	return ix.stats
}

// Run resumes from the last stored leaf and appends blocks until the source
// is exhausted or ctx is canceled.  Cancellation is not an error.
func (ix *Indexer) Run(ctx context.Context) error {
	start := ix.cfg.Accumulator.StartLeafIndex()
	from, found, err := mmr.ResumeLeaf(ctx, ix.cfg.Store, start)
	if err != nil {
		return errors.Wrap(err, "unable to find resume point")
	}
	if found {
		log.Info().Uint64("leaf", from).Msg("resuming from stored leaf")
	} else {
		log.Info().Uint64("leaf", from).Msg("starting from checkpoint")
	}

	blocks := make(chan Block, ix.cfg.BufferSize)
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		defer close(blocks)
		return ix.cfg.Source.Blocks(groupCtx, from, blocks)
	})

	group.Go(func() error {
		next := from
		for block := range blocks {
			if block.Number != next {
				ix.countError()
				return errors.Wrapf(mmr.ErrOutOfOrder, "block source sent %d, expected %d", block.Number, next)
			}
			if err := ix.append(groupCtx, block); err != nil {
				return err
			}
			next++
		}
		return nil
	})

	err = group.Wait()
	if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		log.Info().Msg("indexer stopped")
		return nil
	}
	if err == nil {
		stats := ix.Stats()
		log.Info().Uint64("leaf", stats.LastLeaf).Uint64("mmr_size", stats.MMRSize).Msg("block source exhausted")
	}
	return err
}

func (ix *Indexer) append(ctx context.Context, block Block) error {
	var (
		written []database.Node
		err     error
	)

	for attempt := 0; ; attempt++ {
		written, err = ix.cfg.Accumulator.Append(ctx, block.Number, block.Hash)
		if err == nil {
			break
		}

		ix.countError()

		if !retryable(err) || attempt >= ix.cfg.Retries {
			return errors.Wrapf(err, "unable to append block %d", block.Number)
		}

		log.Warn().Err(err).
			Uint64("number", block.Number).
			Int("attempt", attempt+1).
			Msg("append failed, retrying")

		select {
		case <-time.After(ix.cfg.RetryDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if block.Number < ix.cfg.Accumulator.StartLeafIndex() {
		return nil
	}

	ix.mtx.Lock()
	ix.stats.LastLeaf = block.Number
	ix.stats.HasLeaf = true
	ix.stats.MMRSize = mmr.LeafIndexToMMRSize(block.Number)
	ix.stats.NodesWritten += uint64(len(written))
	ix.mtx.Unlock()

	if block.Number%ix.cfg.ProgressInterval == 0 {
		log.Info().
			Uint64("number", block.Number).
			Str("hash", block.Hash.String()).
			Uint64("mmr_size", mmr.LeafIndexToMMRSize(block.Number)).
			Msg("indexed block")
	}
	return nil
}

func (ix *Indexer) countError() {
	ix.mtx.Lock()
	ix.stats.AppendErrors++
	ix.mtx.Unlock()
}

// retryable reports whether err may go away on its own.  A missing node
// means the store does not hold the prefix of the range, which no retry
// fixes.
func retryable(err error) bool {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, mmr.ErrOutOfOrder), errors.Is(err, mmr.ErrPositionConflict),
		errors.Is(err, mmr.ErrLeafIndexRange), errors.Is(err, mmr.ErrMissingNode):
		return false
	}
	return true
}
