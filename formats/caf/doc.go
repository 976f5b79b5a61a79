// SPDX-License-Identifier: EPL-2.0

// Package caf reads and writes Core Audio Format files carrying integer
// linear PCM.
//
// The encoder emits a desc chunk with the little-endian flag set and a data
// chunk whose size starts as -1 and is patched on Close, so an interrupted
// write still leaves a file that readers treat as running to EOF. The decoder
// honors either byte order and skips chunks it does not know.
package caf
