// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package queue

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/fiber/fibererr"
	"code.hybscloud.com/fiber/hazard"
	"code.hybscloud.com/spin"
)

// MPMCFifo is an unbounded multi-producer multi-consumer FIFO, for the
// cases a bounded ring genuinely cannot serve (a channel with no fixed
// capacity). Ported from original_source/include/mpmc_fifo.h's lock-free
// design (Ladan-Mozes & Shavit build an optimistic doubly-linked variant
// over the same base; this module keeps the classic Michael & Scott
// singly-linked queue, which needs only a single forward CAS per hand-off
// and is what the hazard-pointer domain's Protect/Retire pair already
// exists to make ABA-safe — see DESIGN.md's Open Question resolution on
// this substitution).
type MPMCFifo[T any] struct {
	head atomix.Pointer[fifoNode[T]]
	tail atomix.Pointer[fifoNode[T]]
	dom  *hazard.Domain[fifoNode[T]]
}

type fifoNode[T any] struct {
	next atomix.Pointer[fifoNode[T]]
	data T
}

// NewMPMCFifo creates an empty unbounded MPMC FIFO.
func NewMPMCFifo[T any]() *MPMCFifo[T] {
	dummy := &fifoNode[T]{}
	q := &MPMCFifo[T]{
		dom: hazard.NewDomain[fifoNode[T]](func(*fifoNode[T]) {}),
	}
	q.head.StoreRelaxed(dummy)
	q.tail.StoreRelaxed(dummy)
	return q
}

// Enqueue appends elem. Safe for any number of concurrent producers.
func (q *MPMCFifo[T]) Enqueue(elem *T) error {
	n := &fifoNode[T]{data: *elem}
	rec := q.dom.Acquire()
	defer rec.Release()

	var sw spin.Wait
	for {
		tail := q.tail.LoadAcquire()
		rec.Protect(0, tail)
		if tail != q.tail.LoadAcquire() {
			sw.Once()
			continue
		}

		next := tail.next.LoadAcquire()
		if next != nil {
			// Tail lags the actual end of the list; help it catch up.
			q.tail.CompareAndSwap(tail, next)
			sw.Once()
			continue
		}

		if tail.next.CompareAndSwap(nil, n) {
			q.tail.CompareAndSwap(tail, n)
			return nil
		}
		sw.Once()
	}
}

// Dequeue removes and returns the oldest element, or
// (zero-value, fibererr.ErrWouldBlock) if the queue is empty.
func (q *MPMCFifo[T]) Dequeue() (T, error) {
	rec := q.dom.Acquire()
	defer rec.Release()

	var sw spin.Wait
	for {
		head := q.head.LoadAcquire()
		rec.Protect(0, head)
		if head != q.head.LoadAcquire() {
			sw.Once()
			continue
		}

		tail := q.tail.LoadAcquire()
		next := head.next.LoadAcquire()
		rec.Protect(1, next)
		if head != q.head.LoadAcquire() {
			sw.Once()
			continue
		}

		if next == nil {
			var zero T
			return zero, fibererr.ErrWouldBlock
		}

		if head == tail {
			// Tail lags; help it forward and retry.
			q.tail.CompareAndSwap(tail, next)
			sw.Once()
			continue
		}

		elem := next.data
		if q.head.CompareAndSwap(head, next) {
			rec.Clear(0)
			rec.Clear(1)
			rec.Retire(head)
			return elem, nil
		}
		sw.Once()
	}
}
