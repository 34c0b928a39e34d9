// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package queue

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/fiber/fibererr"
)

// LinkedSPSC is an unbounded single-producer single-consumer FIFO: a
// dummy-node linked list, ported from original_source/include/spsc_fifo.h.
// It never returns fibererr.ErrWouldBlock on Enqueue (growth is the
// allocator's problem, not the queue's); Dequeue still reports an empty
// queue the same way the bounded queues do.
type LinkedSPSC[T any] struct {
	_    [64]byte
	head atomix.Pointer[linkedNode[T]] // consumer-owned
	_    [64]byte
	tail atomix.Pointer[linkedNode[T]] // producer-owned
}

type linkedNode[T any] struct {
	next atomix.Pointer[linkedNode[T]]
	data T
}

// NewLinkedSPSC creates an empty unbounded SPSC FIFO.
func NewLinkedSPSC[T any]() *LinkedSPSC[T] {
	dummy := &linkedNode[T]{}
	q := &LinkedSPSC[T]{}
	q.head.StoreRelaxed(dummy)
	q.tail.StoreRelaxed(dummy)
	return q
}

// Enqueue appends elem. Single-producer only.
func (q *LinkedSPSC[T]) Enqueue(elem *T) error {
	n := &linkedNode[T]{data: *elem}
	tail := q.tail.LoadRelaxed()
	tail.next.StoreRelease(n)
	q.tail.StoreRelease(n)
	return nil
}

// Dequeue removes and returns the oldest element. Single-consumer only.
// Returns (zero-value, fibererr.ErrWouldBlock) if empty.
func (q *LinkedSPSC[T]) Dequeue() (T, error) {
	head := q.head.LoadRelaxed()
	next := head.next.LoadAcquire()
	if next == nil {
		var zero T
		return zero, fibererr.ErrWouldBlock
	}
	elem := next.data
	var zero T
	next.data = zero
	q.head.StoreRelease(next)
	return elem, nil
}

// LinkedMPSC is an unbounded multi-producer single-consumer FIFO: the
// queue behind channel.WorkQueue, where any goroutine may push but only one
// consumer drains it.
// Ported from original_source/include/mpsc_fifo.h (Dmitry Vyukov's
// intrusive MPSC design): producers race on an atomic exchange of tail,
// then stitch the previous tail's next pointer — a consumer that observes
// tail having moved past head but head's next still nil is witnessing a
// producer between those two steps, not an empty queue, and must retry.
type LinkedMPSC[T any] struct {
	_    [64]byte
	head atomix.Pointer[linkedNode[T]] // consumer-owned
	_    [64]byte
	tail atomix.Pointer[linkedNode[T]] // producers race here via Swap
}

// NewLinkedMPSC creates an empty unbounded MPSC FIFO.
func NewLinkedMPSC[T any]() *LinkedMPSC[T] {
	dummy := &linkedNode[T]{}
	q := &LinkedMPSC[T]{}
	q.head.StoreRelaxed(dummy)
	q.tail.StoreRelaxed(dummy)
	return q
}

// Enqueue appends elem. Safe for any number of concurrent producers.
func (q *LinkedMPSC[T]) Enqueue(elem *T) error {
	n := &linkedNode[T]{data: *elem}
	prev := q.tail.SwapAcqRel(n)
	prev.next.StoreRelease(n)
	return nil
}

// Dequeue removes and returns the oldest element. Single-consumer only.
// Returns (zero-value, fibererr.ErrWouldBlock) if the queue is empty, or if
// a producer is mid-Enqueue and the stitch has not yet become visible — the
// caller retries exactly as it would for a genuinely empty queue; the
// distinction is internal bookkeeping, never a failure surfaced to callers
// (spec's "internal soft failures are always retried locally").
func (q *LinkedMPSC[T]) Dequeue() (T, error) {
	head := q.head.LoadRelaxed()
	next := head.next.LoadAcquire()
	if next == nil {
		var zero T
		return zero, fibererr.ErrWouldBlock
	}
	elem := next.data
	var zero T
	next.data = zero
	q.head.StoreRelease(next)
	return elem, nil
}
