// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package deque implements the Chase–Lev work-stealing deque that backs
// the work-stealing-deque scheduler variant: each worker owns one deque,
// pushes and pops its own bottom end without synchronization against other
// workers, and an idle peer steals from the top end with a single CAS.
//
// Ported from original_source/include/work_stealing_deque.h and
// src/work_stealing_deque.c, which themselves follow Chase & Lev's 2005
// paper; the teacher pack carries no deque of its own.
package deque

import (
	"code.hybscloud.com/atomix"
)

// Deque is a single-owner, multi-stealer growable ring buffer of *T.
// PushBottom/PopBottom are only safe to call from the owning worker's
// goroutine; Steal is safe from any goroutine.
type Deque[T any] struct {
	bottom atomix.Int64
	top    atomix.Int64
	buf    atomix.Pointer[ringBuffer[T]]
}

type ringBuffer[T any] struct {
	mask  int64
	slots []atomix.Pointer[T]
}

func newRingBuffer[T any](capLog2 uint) *ringBuffer[T] {
	size := int64(1) << capLog2
	return &ringBuffer[T]{mask: size - 1, slots: make([]atomix.Pointer[T], size)}
}

func (r *ringBuffer[T]) get(i int64) *T {
	return r.slots[i&r.mask].LoadAcquire()
}

func (r *ringBuffer[T]) put(i int64, v *T) {
	r.slots[i&r.mask].StoreRelease(v)
}

func (r *ringBuffer[T]) grow(bottom, top int64) *ringBuffer[T] {
	next := newRingBuffer[T](log2(len(r.slots)*2))
	for i := top; i < bottom; i++ {
		next.put(i, r.get(i))
	}
	return next
}

func log2(n int) uint {
	var l uint
	for (1 << l) < n {
		l++
	}
	return l
}

// New creates an empty deque with an initial capacity of minCapacity,
// rounded up to the next power of 2 (minimum 32, matching the original's
// default initial size).
func New[T any](minCapacity int) *Deque[T] {
	if minCapacity < 32 {
		minCapacity = 32
	}
	d := &Deque[T]{}
	d.buf.StoreRelaxed(newRingBuffer[T](log2(minCapacity)))
	return d
}

// PushBottom adds v to the bottom of the deque. Owner-only.
func (d *Deque[T]) PushBottom(v *T) {
	bottom := d.bottom.LoadRelaxed()
	top := d.top.LoadAcquire()
	buf := d.buf.LoadRelaxed()

	if bottom-top >= int64(len(buf.slots)) {
		buf = buf.grow(bottom, top)
		d.buf.StoreRelease(buf)
	}

	buf.put(bottom, v)
	d.bottom.StoreRelease(bottom + 1)
}

// PopBottom removes and returns the item at the bottom of the deque.
// Owner-only. Returns (nil, false) if the deque was empty.
//
// A pop racing a concurrent steal for the last remaining item resolves via
// a CAS on top exactly as original_source's implementation does: losing
// that race means a thief already took the item, and PopBottom reports
// empty rather than double-handing it out.
func (d *Deque[T]) PopBottom() (*T, bool) {
	bottom := d.bottom.LoadRelaxed() - 1
	buf := d.buf.LoadRelaxed()
	d.bottom.StoreRelease(bottom)
	top := d.top.LoadAcquire()

	if top > bottom {
		// Already empty; restore bottom.
		d.bottom.StoreRelease(bottom + 1)
		return nil, false
	}

	v := buf.get(bottom)
	if top == bottom {
		// Last element: race the stealers for it.
		if !d.top.CompareAndSwap(top, top+1) {
			v = nil
		}
		d.bottom.StoreRelease(bottom + 1)
		if v == nil {
			return nil, false
		}
		return v, true
	}

	return v, true
}

// Steal removes and returns the item at the top of the deque. Safe for any
// number of concurrent stealers and the owner. Returns (nil, false) if the
// deque appeared empty or another stealer won the race for the top item.
func (d *Deque[T]) Steal() (*T, bool) {
	top := d.top.LoadAcquire()
	bottom := d.bottom.LoadAcquire()
	if top >= bottom {
		return nil, false
	}

	buf := d.buf.LoadAcquire()
	v := buf.get(top)
	if !d.top.CompareAndSwap(top, top+1) {
		return nil, false
	}
	return v, true
}

// Len reports the number of items currently in the deque. Racy against
// concurrent Push/Pop/Steal; intended for load-balancing heuristics and
// stats, not correctness.
func (d *Deque[T]) Len() int {
	bottom := d.bottom.LoadAcquire()
	top := d.top.LoadAcquire()
	if bottom <= top {
		return 0
	}
	return int(bottom - top)
}
