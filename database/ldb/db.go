// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ldb implements the node database on top of leveldb.
//
// Keys are database.NodeKey, values the raw 32 byte hash.  Multi-node writes
// go through a single leveldb batch.
package ldb

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/btcsuite/goleveldb/leveldb"
	"github.com/btcsuite/goleveldb/leveldb/opt"
	"github.com/btcsuite/goleveldb/leveldb/util"
	"gitlab.com/jaxnet/headermmr/database"
	"gitlab.com/jaxnet/headermmr/types/chainhash"
)

// currentFile names the manifest pointer leveldb keeps in every database.
const currentFile = "CURRENT"

type nodeDB struct {
	mtx    sync.RWMutex
	ldb    *leveldb.DB
	closed bool
}

func openDB(dbPath string, create bool) (database.DB, error) {
	_, err := os.Stat(filepath.Join(dbPath, currentFile))
	exists := err == nil

	switch {
	case create && exists:
		str := fmt.Sprintf("database %q already exists", dbPath)
		return nil, database.MakeError(database.ErrDbExists, str, nil)
	case !create && !exists:
		str := fmt.Sprintf("database %q does not exist", dbPath)
		return nil, database.MakeError(database.ErrDbDoesNotExist, str, nil)
	}

	opts := opt.Options{
		ErrorIfExist:   create,
		ErrorIfMissing: !create,
		Strict:         opt.DefaultStrict,
		Compression:    opt.NoCompression,
	}
	ldb, err := leveldb.OpenFile(dbPath, &opts)
	if err != nil {
		return nil, convertErr("unable to open leveldb database", err)
	}

	log.Debug().Str("path", dbPath).Bool("created", create).Msg("leveldb node database opened")
	return &nodeDB{ldb: ldb}, nil
}

func (ndb *nodeDB) Type() string { return dbType }

func (ndb *nodeDB) GetNode(ctx context.Context, pos uint64) (chainhash.Hash, error) {
	ndb.mtx.RLock()
	defer ndb.mtx.RUnlock()
	if ndb.closed {
		return chainhash.Hash{}, errClosed()
	}

	value, err := ndb.ldb.Get(database.NodeKey(pos), nil)
	if err == leveldb.ErrNotFound {
		return chainhash.Hash{}, database.NotFound(pos)
	}
	if err != nil {
		return chainhash.Hash{}, convertErr("unable to read node", err)
	}
	return database.DecodeNodeValue(pos, value)
}

func (ndb *nodeDB) SetNode(ctx context.Context, pos uint64, hash chainhash.Hash) error {
	return ndb.PutNodes(ctx, []database.Node{{Position: pos, Hash: hash}})
}

// PutNodes writes all nodes with one leveldb batch.
func (ndb *nodeDB) PutNodes(ctx context.Context, nodes []database.Node) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ndb.mtx.RLock()
	defer ndb.mtx.RUnlock()
	if ndb.closed {
		return errClosed()
	}
	if len(nodes) == 0 {
		return nil
	}

	batch := new(leveldb.Batch)
	for _, node := range nodes {
		batch.Put(database.NodeKey(node.Position), node.Hash.CloneBytes())
	}
	return convertErr("unable to write nodes", ndb.ldb.Write(batch, nil))
}

func (ndb *nodeDB) ForEachNode(ctx context.Context, fn func(node database.Node) error) error {
	ndb.mtx.RLock()
	defer ndb.mtx.RUnlock()
	if ndb.closed {
		return errClosed()
	}

	iter := ndb.ldb.NewIterator(util.BytesPrefix(database.NodeKeyPrefix), nil)
	defer iter.Release()

	for iter.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}

		pos, ok := database.PositionFromKey(iter.Key())
		if !ok {
			continue
		}
		hash, err := database.DecodeNodeValue(pos, iter.Value())
		if err != nil {
			return err
		}
		if err := fn(database.Node{Position: pos, Hash: hash}); err != nil {
			return err
		}
	}
	return convertErr("unable to iterate nodes", iter.Error())
}

func (ndb *nodeDB) Close() error {
	ndb.mtx.Lock()
	defer ndb.mtx.Unlock()
	if ndb.closed {
		return errClosed()
	}
	ndb.closed = true
	return convertErr("unable to close leveldb database", ndb.ldb.Close())
}

func errClosed() error {
	return database.MakeError(database.ErrDbNotOpen, "database is not open", nil)
}

func convertErr(desc string, err error) error {
	if err == nil {
		return nil
	}
	return database.MakeError(database.ErrDriverSpecific, desc, err)
}
