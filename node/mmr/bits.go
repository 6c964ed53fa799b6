/*
 * Copyright (c) 2022 The JaxNetwork developers
 * Use of this source code is governed by an ISC
 * license that can be found in the LICENSE file.
 */

package mmr

import "math/bits"

// All bit helpers work on the full 64-bit width.  Nothing here may truncate
// to 32 bits, the position arithmetic depends on exact bit lengths.

// CountOnes returns the number of set bits of x.
func CountOnes(x uint64) uint64 { return uint64(bits.OnesCount64(x)) }

// CountZeros returns the number of unset bits of x, leading zeros included.
func CountZeros(x uint64) uint64 { return uint64(bits.OnesCount64(^x)) }

// TrailingZeros returns the number of trailing zero bits of x; 64 for x == 0.
func TrailingZeros(x uint64) uint64 { return uint64(bits.TrailingZeros64(x)) }

// LeadingZeros returns the number of leading zero bits of x; 64 for x == 0.
func LeadingZeros(x uint64) uint64 { return uint64(bits.LeadingZeros64(x)) }

// BitLength returns the minimal number of bits needed to represent x.
func BitLength(x uint64) uint64 { return uint64(bits.Len64(x)) }

// AllOnes reports whether the binary form of x is a non-empty run of ones,
// i.e. x == 2^k - 1 for some k > 0.  A position with this form (counting from
// one) is the root of a perfect tree.
func AllOnes(x uint64) bool {
	return x != 0 && CountZeros(x) == LeadingZeros(x)
}
