// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package badgerdb implements the node database on top of badger.
//
// Nodes are stored under database.NodeKey with the raw 32 byte hash as value.
package badgerdb

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dgraph-io/badger"
	"gitlab.com/jaxnet/headermmr/database"
	"gitlab.com/jaxnet/headermmr/types/chainhash"
)

// manifestFile is written by badger into every initialized directory.
const manifestFile = "MANIFEST"

type nodeDB struct {
	mtx    sync.RWMutex
	db     *badger.DB
	closed bool
}

func openDB(dbPath string, create bool) (database.DB, error) {
	_, err := os.Stat(filepath.Join(dbPath, manifestFile))
	exists := err == nil

	switch {
	case create && exists:
		str := fmt.Sprintf("database %q already exists", dbPath)
		return nil, database.MakeError(database.ErrDbExists, str, nil)
	case !create && !exists:
		str := fmt.Sprintf("database %q does not exist", dbPath)
		return nil, database.MakeError(database.ErrDbDoesNotExist, str, nil)
	}

	if create {
		if err := os.MkdirAll(dbPath, 0700); err != nil {
			return nil, convertErr("unable to create database directory", err)
		}
	}

	opts := badger.DefaultOptions(dbPath)
	opts.Logger = badgerLogger{}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, convertErr("unable to open badger database", err)
	}

	log.Debug().Str("path", dbPath).Bool("created", create).Msg("badger node database opened")
	return &nodeDB{db: db}, nil
}

func (ndb *nodeDB) Type() string { return dbType }

func (ndb *nodeDB) GetNode(ctx context.Context, pos uint64) (chainhash.Hash, error) {
	ndb.mtx.RLock()
	defer ndb.mtx.RUnlock()
	if ndb.closed {
		return chainhash.Hash{}, errClosed()
	}

	var hash chainhash.Hash
	err := ndb.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(database.NodeKey(pos))
		if err == badger.ErrKeyNotFound {
			return database.NotFound(pos)
		}
		if err != nil {
			return convertErr("unable to read node", err)
		}

		value, err := item.ValueCopy(nil)
		if err != nil {
			return convertErr("unable to read node value", err)
		}
		hash, err = database.DecodeNodeValue(pos, value)
		return err
	})
	return hash, err
}

func (ndb *nodeDB) SetNode(ctx context.Context, pos uint64, hash chainhash.Hash) error {
	return ndb.PutNodes(ctx, []database.Node{{Position: pos, Hash: hash}})
}

// PutNodes writes all nodes in a single badger transaction.
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

	err := ndb.db.Update(func(txn *badger.Txn) error {
		for _, node := range nodes {
			if err := txn.Set(database.NodeKey(node.Position), node.Hash.CloneBytes()); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return convertErr("unable to write nodes", err)
	}
	return nil
}

func (ndb *nodeDB) ForEachNode(ctx context.Context, fn func(node database.Node) error) error {
	ndb.mtx.RLock()
	defer ndb.mtx.RUnlock()
	if ndb.closed {
		return errClosed()
	}

	return ndb.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchSize = 100
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := database.NodeKeyPrefix
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			item := it.Item()
			pos, ok := database.PositionFromKey(item.Key())
			if !ok {
				continue
			}
			value, err := item.ValueCopy(nil)
			if err != nil {
				return convertErr("unable to read node value", err)
			}
			hash, err := database.DecodeNodeValue(pos, value)
			if err != nil {
				return err
			}
			if err := fn(database.Node{Position: pos, Hash: hash}); err != nil {
				return err
			}
		}
		return nil
	})
}

func (ndb *nodeDB) Close() error {
	ndb.mtx.Lock()
	defer ndb.mtx.Unlock()
	if ndb.closed {
		return errClosed()
	}
	ndb.closed = true
	return convertErr("unable to close badger database", ndb.db.Close())
}

func errClosed() error {
	return database.MakeError(database.ErrDbNotOpen, "database is not open", nil)
}

// convertErr wraps a badger error as a driver specific database error.
func convertErr(desc string, err error) error {
	if err == nil {
		return nil
	}
	return database.MakeError(database.ErrDriverSpecific, desc, err)
}

// badgerLogger routes badger's internal messages into the package logger.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...interface{}) {
	log.Error().Msgf(format, args...)
}

func (badgerLogger) Warningf(format string, args ...interface{}) {
	log.Warn().Msgf(format, args...)
}

func (badgerLogger) Infof(format string, args ...interface{}) {
	log.Debug().Msgf(format, args...)
}

func (badgerLogger) Debugf(format string, args ...interface{}) {
	log.Trace().Msgf(format, args...)
}
