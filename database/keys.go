// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package database

import (
	"encoding/binary"
	"fmt"

	"gitlab.com/jaxnet/headermmr/types/chainhash"
)

// nodeKeyID prefixes the keys of mountain range nodes in key-value drivers.
const nodeKeyID = 0x02

// NodeKeyPrefix is the common prefix of every node key.
var NodeKeyPrefix = []byte{nodeKeyID}

// NodeKeyLen is the length of a node key: the prefix and a big endian
// position, so byte order equals position order.
const NodeKeyLen = 9

// NodeKey returns the key-value store key for pos.
func NodeKey(pos uint64) []byte {
	key := make([]byte, NodeKeyLen)
	key[0] = nodeKeyID
	binary.BigEndian.PutUint64(key[1:], pos)
	return key
}

// PositionFromKey is the inverse of NodeKey.
func PositionFromKey(key []byte) (uint64, bool) {
	if len(key) != NodeKeyLen || key[0] != nodeKeyID {
		return 0, false
	}
	return binary.BigEndian.Uint64(key[1:]), true
}

// DecodeNodeValue checks and converts a stored value back into a hash.
func DecodeNodeValue(pos uint64, value []byte) (chainhash.Hash, error) {
	var hash chainhash.Hash
	if len(value) != chainhash.HashSize {
		str := fmt.Sprintf("node %d has a %d byte value, want %d", pos,
			len(value), chainhash.HashSize)
		return hash, makeError(ErrCorruption, str, nil)
	}
	copy(hash[:], value)
	return hash, nil
}
