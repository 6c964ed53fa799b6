// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package indexer

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/jaxnet/headermmr/database"
	"gitlab.com/jaxnet/headermmr/database/dbtest"
	"gitlab.com/jaxnet/headermmr/database/memdb"
	"gitlab.com/jaxnet/headermmr/node/mmr"
	"gitlab.com/jaxnet/headermmr/types/chainhash"
)

type sliceSource struct {
	blocks []Block
	froms  []uint64
}

func (s *sliceSource) Blocks(ctx context.Context, from uint64, out chan<- Block) error {
	s.froms = append(s.froms, from)
	for _, block := range s.blocks {
		if block.Number < from {
			continue
		}
		if err := send(ctx, out, block); err != nil {
			return err
		}
	}
	return nil
}

// blockingSource emits its blocks and then waits for cancellation.
type blockingSource struct {
	sliceSource
	sent chan struct{}
}

func (s *blockingSource) Blocks(ctx context.Context, from uint64, out chan<- Block) error {
	if err := s.sliceSource.Blocks(ctx, from, out); err != nil {
		return err
	}
	close(s.sent)
	<-ctx.Done()
	return ctx.Err()
}

// hidingStore pretends the nodes at hidden positions were never written.
type hidingStore struct {
	database.DB
	hidden map[uint64]bool
}

func (s *hidingStore) GetNode(ctx context.Context, pos uint64) (chainhash.Hash, error) {
	if s.hidden[pos] {
		return chainhash.Hash{}, database.NotFound(pos)
	}
	return s.DB.GetNode(ctx, pos)
}

type flakyStore struct {
	database.DB
	failures int
}

func (s *flakyStore) PutNodes(ctx context.Context, nodes []database.Node) error {
	if s.failures > 0 {
		s.failures--
		return errors.New("disk on fire")
	}
	return s.DB.PutNodes(ctx, nodes)
}

func chain(from, to uint64) []Block {
	var blocks []Block
	for n := from; n <= to; n++ {
		blocks = append(blocks, Block{Number: n, Hash: dbtest.HashOf(n)})
	}
	return blocks
}

func newIndexer(t *testing.T, store database.DB, src BlockSource, retries int) (*Indexer, *mmr.Accumulator) {
	acc, err := mmr.New(store, mmr.Config{StrictOrder: true})
	require.NoError(t, err)

	ix, err := New(Config{
		Source:      src,
		Accumulator: acc,
		Store:       store,
		Retries:     retries,
		RetryDelay:  time.Millisecond,
	})
	require.NoError(t, err)
	return ix, acc
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	db := memdb.New()
	src := &sliceSource{blocks: chain(0, 99)}
	ix, acc := newIndexer(t, db, src, 0)

	require.NoError(t, ix.Run(ctx))

	stats := ix.Stats()
	assert.True(t, stats.HasLeaf)
	assert.Equal(t, uint64(99), stats.LastLeaf)
	assert.Equal(t, mmr.LeafIndexToMMRSize(99), stats.MMRSize)
	assert.Equal(t, mmr.LeafIndexToMMRSize(99), stats.NodesWritten)
	assert.Equal(t, []uint64{0}, src.froms)

	_, err := acc.Root(ctx, 99)
	assert.NoError(t, err)
}

func TestRunResumes(t *testing.T) {
	ctx := context.Background()
	db := memdb.New()

	first, _ := newIndexer(t, db, &sliceSource{blocks: chain(0, 40)}, 0)
	require.NoError(t, first.Run(ctx))

	src := &sliceSource{blocks: chain(0, 60)}
	second, acc := newIndexer(t, db, src, 0)
	require.NoError(t, second.Run(ctx))

	assert.Equal(t, []uint64{40}, src.froms)
	assert.Equal(t, uint64(60), second.Stats().LastLeaf)

	last, ok := acc.LastLeafIndex()
	assert.True(t, ok)
	assert.Equal(t, uint64(60), last)

	for pos := uint64(0); pos < mmr.LeafIndexToMMRSize(60); pos++ {
		_, err := db.GetNode(ctx, pos)
		require.NoError(t, err, "pos %d", pos)
	}
}

func TestRunFromCheckpoint(t *testing.T) {
	ctx := context.Background()
	db := memdb.New()
	acc, err := mmr.New(db, mmr.Config{
		StartLeafIndex: 11,
		BootstrapPeaks: []database.Node{
			{Position: 14, Hash: dbtest.HashOf(14)},
			{Position: 17, Hash: dbtest.HashOf(17)},
			{Position: 18, Hash: dbtest.HashOf(18)},
		},
	})
	require.NoError(t, err)

	src := &sliceSource{blocks: chain(0, 20)}
	ix, err := New(Config{Source: src, Accumulator: acc, Store: db})
	require.NoError(t, err)
	require.NoError(t, ix.Run(ctx))

	assert.Equal(t, []uint64{11}, src.froms)
	stats := ix.Stats()
	assert.Equal(t, uint64(20), stats.LastLeaf)
	assert.Equal(t, mmr.LeafIndexToMMRSize(20)-mmr.LeafIndexToPos(11)+3, stats.NodesWritten)
}

func TestRunRetries(t *testing.T) {
	db := &flakyStore{DB: memdb.New(), failures: 2}
	ix, _ := newIndexer(t, db, &sliceSource{blocks: chain(0, 5)}, 2)

	require.NoError(t, ix.Run(context.Background()))
	stats := ix.Stats()
	assert.Equal(t, uint64(5), stats.LastLeaf)
	assert.Equal(t, uint64(2), stats.AppendErrors)
}

func TestRunGivesUp(t *testing.T) {
	db := &flakyStore{DB: memdb.New(), failures: 5}
	ix, _ := newIndexer(t, db, &sliceSource{blocks: chain(0, 5)}, 1)

	err := ix.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")
	assert.False(t, ix.Stats().HasLeaf)
}

func TestRunOutOfOrder(t *testing.T) {
	blocks := append(chain(0, 3), Block{Number: 7, Hash: dbtest.HashOf(7)})
	ix, _ := newIndexer(t, memdb.New(), &sliceSource{blocks: blocks}, 3)

	err := ix.Run(context.Background())
	assert.True(t, errors.Is(err, mmr.ErrOutOfOrder), "got %v", err)
	assert.Equal(t, uint64(1), ix.Stats().AppendErrors)
}

func TestRunGapAtStart(t *testing.T) {
	db := memdb.New()
	acc, err := mmr.New(db, mmr.Config{
		StartLeafIndex: 11,
		BootstrapPeaks: []database.Node{
			{Position: 14, Hash: dbtest.HashOf(14)},
			{Position: 17, Hash: dbtest.HashOf(17)},
			{Position: 18, Hash: dbtest.HashOf(18)},
		},
	})
	require.NoError(t, err)

	src := &sliceSource{blocks: chain(12, 12)}
	ix, err := New(Config{Source: src, Accumulator: acc, Store: db})
	require.NoError(t, err)

	err = ix.Run(context.Background())
	assert.True(t, errors.Is(err, mmr.ErrOutOfOrder), "got %v", err)
	assert.False(t, ix.Stats().HasLeaf)
	assert.False(t, acc.Bootstrapped())

	for _, pos := range []uint64{14, 17, 18, 22} {
		_, err := db.GetNode(context.Background(), pos)
		assert.True(t, database.IsNotFound(err), "pos %d", pos)
	}
}

func TestRunMissingNodeIsFatal(t *testing.T) {
	ctx := context.Background()
	db := memdb.New()
	first, _ := newIndexer(t, db, &sliceSource{blocks: chain(0, 2)}, 0)
	require.NoError(t, first.Run(ctx))

	// leaf 3 completes position 6, which needs the hidden node 2
	store := &hidingStore{DB: db, hidden: map[uint64]bool{2: true}}
	ix, _ := newIndexer(t, store, &sliceSource{blocks: chain(0, 3)}, 3)

	err := ix.Run(ctx)
	assert.True(t, errors.Is(err, mmr.ErrMissingNode), "got %v", err)
	assert.Equal(t, uint64(1), ix.Stats().AppendErrors)
	assert.Equal(t, uint64(2), ix.Stats().LastLeaf)
}

func TestRunCanceled(t *testing.T) {
	src := &blockingSource{sliceSource: sliceSource{blocks: chain(0, 9)}, sent: make(chan struct{})}
	ix, _ := newIndexer(t, memdb.New(), src, 0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ix.Run(ctx) }()

	<-src.sent
	require.Eventually(t, func() bool { return ix.Stats().LastLeaf == 9 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("indexer did not stop")
	}
}

func TestNewValidation(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}
