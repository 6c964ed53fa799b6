/*
 * Copyright (c) 2022 The JaxNetwork developers
 * Use of this source code is governed by an ISC
 * license that can be found in the LICENSE file.
 */

package mmr

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
	"github.com/minio/sha256-simd"
	"gitlab.com/jaxnet/headermmr/types/chainhash"
	"golang.org/x/crypto/blake2b"
)

// Hasher merges two child hashes into their parent.  Implementations must be
// deterministic and order sensitive.
type Hasher interface {
	Merge(left, right chainhash.Hash) chainhash.Hash
}

// MergeEncoding selects how the two child hashes are serialized before they
// are hashed.
type MergeEncoding int

const (
	// EncodingRaw is the SCALE encoding of a (H256, H256) tuple: the bare
	// 32 byte children back to back.  This is what the chain hashes.
	EncodingRaw MergeEncoding = iota

	// EncodingScale encodes each child as a SCALE byte string: the compact
	// encoded length followed by the bytes.  For a 32 byte hash the prefix is
	// the single byte 0x80.
	EncodingScale
)

func (e MergeEncoding) String() string {
	switch e {
	case EncodingScale:
		return "scale"
	case EncodingRaw:
		return "raw"
	}
	return fmt.Sprintf("MergeEncoding(%d)", int(e))
}

// ParseMergeEncoding is the inverse of MergeEncoding.String.
func ParseMergeEncoding(name string) (MergeEncoding, error) {
	switch strings.ToLower(name) {
	case "", "raw":
		return EncodingRaw, nil
	case "scale":
		return EncodingScale, nil
	}
	return 0, fmt.Errorf("unknown merge encoding %q", name)
}

type rawTuple struct {
	Left, Right chainhash.Hash
}

type bytesTuple struct {
	Left, Right []byte
}

// EncodeTuple serializes the (left, right) pair with the chosen encoding.
func EncodeTuple(enc MergeEncoding, left, right chainhash.Hash) ([]byte, error) {
	var tuple interface{} = rawTuple{Left: left, Right: right}
	if enc == EncodingScale {
		tuple = bytesTuple{Left: left[:], Right: right[:]}
	}

	var buf bytes.Buffer
	if err := scale.NewEncoder(&buf).Encode(tuple); err != nil {
		return nil, fmt.Errorf("unable to encode %s tuple: %w", enc, err)
	}
	return buf.Bytes(), nil
}

// mustEncodeTuple panics when the pair cannot be encoded, which only happens
// for an unknown tuple shape.
func mustEncodeTuple(enc MergeEncoding, left, right chainhash.Hash) []byte {
	data, err := EncodeTuple(enc, left, right)
	if err != nil {
		panic(err)
	}
	return data
}

// Blake2bHasher hashes the encoded pair with blake2b-256.
type Blake2bHasher struct {
	Encoding MergeEncoding
}

func (h Blake2bHasher) Merge(left, right chainhash.Hash) chainhash.Hash {
	return blake2b.Sum256(mustEncodeTuple(h.Encoding, left, right))
}

// SHA256Hasher hashes the encoded pair with sha256.
type SHA256Hasher struct {
	Encoding MergeEncoding
}

func (h SHA256Hasher) Merge(left, right chainhash.Hash) chainhash.Hash {
	return sha256.Sum256(mustEncodeTuple(h.Encoding, left, right))
}

// HasherByName builds the hasher selected in the configuration.
func HasherByName(name string, enc MergeEncoding) (Hasher, error) {
	switch strings.ToLower(name) {
	case "", "blake2b", "blake2b-256":
		return Blake2bHasher{Encoding: enc}, nil
	case "sha256":
		return SHA256Hasher{Encoding: enc}, nil
	}
	return nil, fmt.Errorf("unknown hasher %q", name)
}
