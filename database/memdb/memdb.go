// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package memdb implements a volatile node database.  It is used by tests and
// by one-shot runs that only need the resulting peaks or root.
package memdb

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/jaxnet/headermmr/corelog"
	"gitlab.com/jaxnet/headermmr/database"
	"gitlab.com/jaxnet/headermmr/types/chainhash"
)

const dbType = "memdb"

var log = corelog.Disabled

type nodeDB struct {
	sync.RWMutex
	nodes  map[uint64]chainhash.Hash
	closed bool
}

// New returns an empty in-memory node database.
func New() database.DB {
	return &nodeDB{nodes: make(map[uint64]chainhash.Hash)}
}

func (db *nodeDB) Type() string { return dbType }

func (db *nodeDB) GetNode(ctx context.Context, pos uint64) (chainhash.Hash, error) {
	db.RLock()
	defer db.RUnlock()

	if db.closed {
		return chainhash.Hash{}, errClosed()
	}
	hash, ok := db.nodes[pos]
	if !ok {
		return chainhash.Hash{}, database.NotFound(pos)
	}
	return hash, nil
}

func (db *nodeDB) SetNode(ctx context.Context, pos uint64, hash chainhash.Hash) error {
	return db.PutNodes(ctx, []database.Node{{Position: pos, Hash: hash}})
}

func (db *nodeDB) PutNodes(ctx context.Context, nodes []database.Node) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	db.Lock()
	defer db.Unlock()

	if db.closed {
		return errClosed()
	}
	for _, node := range nodes {
		db.nodes[node.Position] = node.Hash
	}
	return nil
}

func (db *nodeDB) ForEachNode(ctx context.Context, fn func(node database.Node) error) error {
	db.RLock()
	if db.closed {
		db.RUnlock()
		return errClosed()
	}
	nodes := make([]database.Node, 0, len(db.nodes))
	for pos, hash := range db.nodes {
		nodes = append(nodes, database.Node{Position: pos, Hash: hash})
	}
	db.RUnlock()

	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Position < nodes[j].Position })
	for _, node := range nodes {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(node); err != nil {
			return err
		}
	}
	return nil
}

func (db *nodeDB) Close() error {
	db.Lock()
	defer db.Unlock()

	if db.closed {
		return errClosed()
	}
	db.closed = true
	log.Debug().Int("nodes", len(db.nodes)).Msg("memory node database closed")
	db.nodes = nil
	return nil
}

func errClosed() error {
	return database.MakeError(database.ErrDbNotOpen, "database is not open", nil)
}

func openDBDriver(args ...interface{}) (database.DB, error) {
	if len(args) > 1 {
		return nil, database.MakeError(database.ErrInvalidArgs,
			fmt.Sprintf("invalid arguments to %s.Open -- expected at most a path", dbType), nil)
	}
	return New(), nil
}

func useLogger(logger zerolog.Logger) {
	log = logger
}

func init() {
	driver := database.Driver{
		DbType:    dbType,
		Create:    openDBDriver,
		Open:      openDBDriver,
		UseLogger: useLogger,
	}
	if err := database.RegisterDriver(driver); err != nil {
		panic(fmt.Sprintf("Failed to regiser database driver '%s': %v",
			dbType, err))
	}
}
