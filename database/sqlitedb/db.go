// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package sqlitedb stores nodes in a relational node_entities table:
//
// 	id       TEXT PRIMARY KEY   decimal position
// 	position INTEGER UNIQUE
// 	hash     TEXT               0x prefixed hex
//
// so the data can be inspected and queried with plain SQL.  SQLite integers
// are signed, positions above math.MaxInt64 are rejected.
package sqlitedb

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"os"
	"strconv"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"gitlab.com/jaxnet/headermmr/database"
	"gitlab.com/jaxnet/headermmr/types/chainhash"
)

const (
	schema = `CREATE TABLE IF NOT EXISTS node_entities(
		id       TEXT PRIMARY KEY,
		position INTEGER NOT NULL UNIQUE,
		hash     TEXT NOT NULL
	)`

	upsertNode = `INSERT INTO node_entities (id, position, hash) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET hash = excluded.hash`

	selectNode = `SELECT hash FROM node_entities WHERE position = ?`

	selectNodes = `SELECT position, hash FROM node_entities ORDER BY position`
)

type nodeDB struct {
	mtx    sync.RWMutex
	db     *sql.DB
	closed bool
}

func openDB(dbPath string, create bool) (database.DB, error) {
	_, err := os.Stat(dbPath)
	exists := err == nil

	switch {
	case create && exists:
		str := fmt.Sprintf("database %q already exists", dbPath)
		return nil, database.MakeError(database.ErrDbExists, str, nil)
	case !create && !exists:
		str := fmt.Sprintf("database %q does not exist", dbPath)
		return nil, database.MakeError(database.ErrDbDoesNotExist, str, nil)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, convertErr("unable to open sqlite database", err)
	}
	// One connection serializes writers, sqlite allows a single one anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, convertErr("unable to create node table", err)
	}

	log.Debug().Str("path", dbPath).Bool("created", create).Msg("sqlite node database opened")
	return &nodeDB{db: db}, nil
}

func (ndb *nodeDB) Type() string { return dbType }

func (ndb *nodeDB) GetNode(ctx context.Context, pos uint64) (chainhash.Hash, error) {
	ndb.mtx.RLock()
	defer ndb.mtx.RUnlock()
	if ndb.closed {
		return chainhash.Hash{}, errClosed()
	}
	if pos > math.MaxInt64 {
		return chainhash.Hash{}, database.NotFound(pos)
	}

	var text string
	err := ndb.db.QueryRowContext(ctx, selectNode, int64(pos)).Scan(&text)
	if err == sql.ErrNoRows {
		return chainhash.Hash{}, database.NotFound(pos)
	}
	if err != nil {
		return chainhash.Hash{}, convertErr("unable to read node", err)
	}
	return decodeHash(pos, text)
}

func (ndb *nodeDB) SetNode(ctx context.Context, pos uint64, hash chainhash.Hash) error {
	return ndb.PutNodes(ctx, []database.Node{{Position: pos, Hash: hash}})
}

// PutNodes upserts all nodes inside one transaction.
func (ndb *nodeDB) PutNodes(ctx context.Context, nodes []database.Node) error {
	ndb.mtx.RLock()
	defer ndb.mtx.RUnlock()
	if ndb.closed {
		return errClosed()
	}

	for _, node := range nodes {
		if node.Position > math.MaxInt64 {
			str := fmt.Sprintf("position %d does not fit into a sqlite integer", node.Position)
			return database.MakeError(database.ErrInvalidArgs, str, nil)
		}
	}
	if len(nodes) == 0 {
		return nil
	}

	tx, err := ndb.db.BeginTx(ctx, nil)
	if err != nil {
		return convertErr("unable to begin transaction", err)
	}

	stmt, err := tx.PrepareContext(ctx, upsertNode)
	if err != nil {
		tx.Rollback()
		return convertErr("unable to prepare upsert", err)
	}
	defer stmt.Close()

	for _, node := range nodes {
		id := strconv.FormatUint(node.Position, 10)
		if _, err := stmt.ExecContext(ctx, id, int64(node.Position), node.Hash.String()); err != nil {
			tx.Rollback()
			return convertErr("unable to write node "+id, err)
		}
	}

	return convertErr("unable to commit nodes", tx.Commit())
}

func (ndb *nodeDB) ForEachNode(ctx context.Context, fn func(node database.Node) error) error {
	ndb.mtx.RLock()
	defer ndb.mtx.RUnlock()
	if ndb.closed {
		return errClosed()
	}

	rows, err := ndb.db.QueryContext(ctx, selectNodes)
	if err != nil {
		return convertErr("unable to list nodes", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			pos  int64
			text string
		)
		if err := rows.Scan(&pos, &text); err != nil {
			return convertErr("unable to scan node", err)
		}
		hash, err := decodeHash(uint64(pos), text)
		if err != nil {
			return err
		}
		if err := fn(database.Node{Position: uint64(pos), Hash: hash}); err != nil {
			return err
		}
	}
	return convertErr("unable to list nodes", rows.Err())
}

func (ndb *nodeDB) Close() error {
	ndb.mtx.Lock()
	defer ndb.mtx.Unlock()
	if ndb.closed {
		return errClosed()
	}
	ndb.closed = true
	return convertErr("unable to close sqlite database", ndb.db.Close())
}

func decodeHash(pos uint64, text string) (chainhash.Hash, error) {
	var hash chainhash.Hash
	if err := chainhash.Decode(&hash, text); err != nil {
		str := fmt.Sprintf("node %d holds malformed hash %q", pos, text)
		return hash, database.MakeError(database.ErrCorruption, str, err)
	}
	return hash, nil
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
