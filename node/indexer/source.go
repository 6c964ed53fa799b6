// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package indexer

import (
	"context"

	"gitlab.com/jaxnet/headermmr/types/chainhash"
)

// Block is a finalized block reference.  Number doubles as the leaf index.
type Block struct {
	Number uint64         `csv:"number" json:"number"`
	Hash   chainhash.Hash `csv:"hash" json:"hash"`
}

// BlockSource feeds blocks into the indexer.
//
// Blocks sends every block with Number >= from in ascending order to out and
// returns nil once the source is exhausted.  It must stop and return the
// context error when ctx is done, and must not close out.
type BlockSource interface {
	Blocks(ctx context.Context, from uint64, out chan<- Block) error
}

// send delivers block unless ctx is done first.
func send(ctx context.Context, out chan<- Block, block Block) error {
	select {
	case out <- block:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
