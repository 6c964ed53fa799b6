// Copyright (c) 2015-2016 The btcsuite developers
// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package database

import (
	"context"

	"gitlab.com/jaxnet/headermmr/types/chainhash"
)

// Node is the persisted record of a single mountain range node.  Position is
// the stable key.
type Node struct {
	Position uint64         `csv:"position" json:"position"`
	Hash     chainhash.Hash `csv:"hash" json:"hash"`
}

// NodeStore is the contract the accumulator requires from persistence.
//
// GetNode returns an Error with ErrNodeNotFound when nothing is stored at the
// position.  SetNode must be idempotent: storing the same hash twice has no
// further effect.
type NodeStore interface {
	GetNode(ctx context.Context, pos uint64) (chainhash.Hash, error)
	SetNode(ctx context.Context, pos uint64, hash chainhash.Hash) error
}

// Batcher is implemented by stores that can commit several nodes atomically.
// Either every node is stored or none is.
type Batcher interface {
	PutNodes(ctx context.Context, nodes []Node) error
}

// Iterator is implemented by stores that can enumerate their nodes.  Nodes are
// visited in ascending position order.  Returning an error from fn stops the
// iteration and the error is returned to the caller.
type Iterator interface {
	ForEachNode(ctx context.Context, fn func(node Node) error) error
}

// DB is the full interface every registered driver provides.
type DB interface {
	NodeStore
	Batcher
	Iterator

	// Type returns the database driver type the current database instance
	// was created with.
	Type() string

	// Close cleanly shuts down the database and syncs all data.
	Close() error
}
