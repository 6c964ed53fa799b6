// Copyright (c) 2020 The JaxNetwork developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chainhash provides the fixed-size hash type shared by the block
// feed, the node stores and the mountain range accumulator.
//
// Unlike bitcoin-style hashes, the string form is the natural byte order
// with a "0x" prefix, which is how substrate nodes print block hashes.
package chainhash
