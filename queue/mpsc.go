// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package queue

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/fiber/fibererr"
	"code.hybscloud.com/fiber/internal/atomics"
	"code.hybscloud.com/spin"
)

// MPSC is an FAA-based multi-producer single-consumer bounded queue: many
// worker goroutines can hand a fiber to one distinguished consumer (the
// maintenance fiber collecting completion notices, for instance) without a
// lock.
//
// Producers use FAA to blindly claim positions (SCQ-style), requiring 2n
// physical slots for capacity n.
type MPSC[T any] struct {
	_        atomics.Pad
	head     atomix.Uint64 // consumer index (single consumer writes, but producers read)
	_        atomics.Pad
	tail     atomix.Uint64 // producer index (FAA)
	_        atomics.Pad
	draining atomix.Bool // drain mode: no more enqueues
	_        atomics.Pad
	buffer   []mpscSlot[T]
	capacity uint64 // n (usable capacity)
	size     uint64 // 2n (physical slots)
	mask     uint64 // 2n - 1
}

type mpscSlot[T any] struct {
	cycle atomix.Uint64 // round number
	data  T
	_     atomics.PadShort
}

// NewMPSC creates a new FAA-based MPSC queue. Capacity rounds up to the
// next power of 2.
func NewMPSC[T any](capacity int) *MPSC[T] {
	if capacity < 2 {
		panic("queue: capacity must be >= 2")
	}

	n := uint64(atomics.RoundToPow2(capacity))
	size := n * 2

	q := &MPSC[T]{
		buffer:   make([]mpscSlot[T], size),
		capacity: n,
		size:     size,
		mask:     size - 1,
	}
	for i := uint64(0); i < size; i++ {
		q.buffer[i].cycle.StoreRelaxed(i / n)
	}
	return q
}

// Drain signals that no more enqueues will occur. This is a hint for
// graceful shutdown — the caller ensures no further enqueues will be
// attempted after calling Drain.
func (q *MPSC[T]) Drain() {
	q.draining.StoreRelease(true)
}

// Enqueue adds an element to the queue (multiple producers safe). Returns
// fibererr.ErrWouldBlock if the queue is full.
//
// A producer that loses the race between its FAA-claimed slot becoming
// visible and the slot's previous occupant being dequeued observes a cycle
// mismatch rather than garbage data — the spin loop below is that retry,
// the same "stitch not yet visible" pattern the unbounded MPSC in
// linked.go reports from Dequeue as ErrWouldBlock instead, leaving the
// retry to its caller.
func (q *MPSC[T]) Enqueue(elem *T) error {
	sw := spin.Wait{}
	for {
		tail := q.tail.LoadAcquire()
		head := q.head.LoadRelaxed()
		if tail >= head+q.capacity {
			return fibererr.ErrWouldBlock
		}

		myTail := q.tail.AddAcqRel(1) - 1

		slot := &q.buffer[myTail&q.mask]
		expectedCycle := myTail / q.capacity

		slotCycle := slot.cycle.LoadAcquire()

		if slotCycle == expectedCycle {
			slot.data = *elem
			slot.cycle.StoreRelease(expectedCycle + 1)
			return nil
		}

		if int64(slotCycle) < int64(expectedCycle) {
			return fibererr.ErrWouldBlock // queue full
		}
		sw.Once()
	}
}

// Dequeue removes and returns an element (single consumer only).
func (q *MPSC[T]) Dequeue() (T, error) {
	head := q.head.LoadRelaxed()
	cycle := head / q.capacity
	slot := &q.buffer[head&q.mask]

	slotCycle := slot.cycle.LoadAcquire()

	if slotCycle != cycle+1 {
		var zero T
		return zero, fibererr.ErrWouldBlock
	}

	elem := slot.data
	var zero T
	slot.data = zero
	nextEnqCycle := (head + q.size) / q.capacity
	slot.cycle.StoreRelease(nextEnqCycle)
	q.head.StoreRelaxed(head + 1)

	return elem, nil
}

// Cap returns the queue capacity.
func (q *MPSC[T]) Cap() int {
	return int(q.capacity)
}
