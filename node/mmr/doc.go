/*
 * Copyright (c) 2022 The JaxNetwork developers
 * Use of this source code is governed by an ISC
 * license that can be found in the LICENSE file.
 */

// Package mmr maintains an append-only Merkle Mountain Range over block
// hashes inside a persistent node store.
//
// Nodes are addressed by zero based positions in post-order.  A leaf is
// written at its position and every ancestor it completes is written right
// after it, so the position of the next leaf is always the current size:
//
// 	3              14
// 	             /    \
// 	2        6            13
// 	       /   \        /    \
// 	1     2     5      9     12     17
// 	     / \   / \    / \   /  \   /  \
// 	0   0   1 3   4  7   8 10  11 15  16 18
//
// Parents are computed with a Hasher:
//
// 	parent = HASH( encode(left, right) )
//
// where encode is the SCALE encoding of the pair, either as two fixed size
// hashes (the default) or as two length prefixed byte strings, see
// MergeEncoding.
//
// An Accumulator may start from an arbitrary leaf index instead of genesis.
// In that case the peaks of the range before the starting leaf must be
// supplied; they are written together with the first leaf and history below
// the starting leaf is never visited.
package mmr
