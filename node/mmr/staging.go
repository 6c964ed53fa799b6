/*
 * Copyright (c) 2022 The JaxNetwork developers
 * Use of this source code is governed by an ISC
 * license that can be found in the LICENSE file.
 */

package mmr

import (
	"context"

	"github.com/pkg/errors"
	"gitlab.com/jaxnet/headermmr/database"
	"gitlab.com/jaxnet/headermmr/types/chainhash"
)

// stagedWrites collects the nodes of a single append.  Reads see staged nodes
// first, so propagation can use ancestors written earlier in the same append.
// Nothing reaches the store before commit.
type stagedWrites struct {
	store database.NodeStore
	index map[uint64]int
	nodes []database.Node
}

func newStagedWrites(store database.NodeStore) *stagedWrites {
	return &stagedWrites{
		store: store,
		index: make(map[uint64]int),
	}
}

func (s *stagedWrites) get(ctx context.Context, pos uint64) (chainhash.Hash, error) {
	if i, ok := s.index[pos]; ok {
		return s.nodes[i].Hash, nil
	}

	hash, err := s.store.GetNode(ctx, pos)
	if database.IsNotFound(err) {
		return chainhash.Hash{}, errors.Wrapf(ErrMissingNode, "position %d", pos)
	}
	if err != nil {
		return chainhash.Hash{}, errors.Wrapf(err, "unable to read node %d", pos)
	}
	return hash, nil
}

func (s *stagedWrites) stage(pos uint64, hash chainhash.Hash) {
	if i, ok := s.index[pos]; ok {
		s.nodes[i].Hash = hash
		return
	}
	s.index[pos] = len(s.nodes)
	s.nodes = append(s.nodes, database.Node{Position: pos, Hash: hash})
}

// stageChecked stages the node after making sure the store does not already
// hold a different hash at pos.
func (s *stagedWrites) stageChecked(ctx context.Context, pos uint64, hash chainhash.Hash) error {
	stored, err := s.store.GetNode(ctx, pos)
	switch {
	case database.IsNotFound(err):
	case err != nil:
		return errors.Wrapf(err, "unable to read node %d", pos)
	case stored != hash:
		return errors.Wrapf(ErrPositionConflict, "position %d holds %s, got %s", pos, stored, hash)
	}

	s.stage(pos, hash)
	return nil
}

func (s *stagedWrites) commit(ctx context.Context) error {
	if len(s.nodes) == 0 {
		return nil
	}

	if batcher, ok := s.store.(database.Batcher); ok {
		return errors.Wrap(batcher.PutNodes(ctx, s.nodes), "unable to commit nodes")
	}

	for _, node := range s.nodes {
		if err := s.store.SetNode(ctx, node.Position, node.Hash); err != nil {
			return errors.Wrapf(err, "unable to write node %d", node.Position)
		}
	}
	return nil
}

func (s *stagedWrites) written() []database.Node {
	out := make([]database.Node, len(s.nodes))
	copy(out, s.nodes)
	return out
}
