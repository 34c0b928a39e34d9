// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package atomics collects the small layout and arithmetic helpers every
// lock-free structure in this module shares: cache-line padding types and
// power-of-two rounding. It does not wrap code.hybscloud.com/atomix itself —
// callers use atomix.Uint64/atomix.Bool/atomix.Pointer directly, the same
// way the teacher package does.
package atomics

import "unsafe"

// PtrSize is the size of a pointer in bytes on the target platform.
const PtrSize = int(unsafe.Sizeof(uintptr(0)))

// Pad is cache line padding, placed between hot fields that are written by
// different goroutines to prevent false sharing.
type Pad [64]byte

// PadShort pads out a cache line after an 8-byte field.
type PadShort [64 - 8]byte

// PadPtr pads out a cache line after a single pointer-sized field.
type PadPtr [64 - PtrSize]byte

// RoundToPow2 rounds n up to the next power of 2, with a floor of 2.
func RoundToPow2(n int) int {
	if n < 2 {
		return 2
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}
