/*
 * Copyright (c) 2022 The JaxNetwork developers
 * Use of this source code is governed by an ISC
 * license that can be found in the LICENSE file.
 */

// Package chaincfg defines the checkpoints a node database can be started
// from.
//
// A checkpoint pins the starting leaf index of the accumulator and the peaks
// of the mountain range built over all earlier blocks.  The built-in
// checkpoints can be selected by name, custom ones are loaded from a YAML or
// TOML file:
//
// 	name: custom
// 	start_leaf_index: 11
// 	peaks:
// 	  - position: 14
// 	    hash: "0x0fd0..."
// 	  - position: 17
// 	    hash: "0xc21a..."
// 	  - position: 18
// 	    hash: "0x5a1c..."
package chaincfg
