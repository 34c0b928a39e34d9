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

// MPMC is an FAA-based multi-producer multi-consumer bounded ring: a
// channel.Bounded's buffer is this type with T fixed to the channel's
// element type. (The distributed-FIFO scheduler variant runs on the
// unbounded MPMCFifo instead.)
//
// Based on the SCQ (Scalable Circular Queue) algorithm by Nikolaev (DISC
// 2019). Uses fetch-and-add to blindly increment position counters,
// requiring 2n physical slots for capacity n — this scales better under
// contention than a CAS-retry ring.
//
// Cycle-based slot validation provides ABA safety: each slot tracks which
// "cycle" (round) it belongs to via cycle = position / capacity.
type MPMC[T any] struct {
	_         atomics.Pad
	tail      atomix.Uint64 // producer index (FAA)
	_         atomics.Pad
	head      atomix.Uint64 // consumer index (FAA)
	_         atomics.Pad
	threshold atomix.Int64 // livelock prevention for dequeue
	_         atomics.Pad
	draining  atomix.Bool // drain mode: skip threshold check
	_         atomics.Pad
	buffer    []mpmcSlot[T]
	capacity  uint64 // n (usable capacity)
	size      uint64 // 2n (physical slots)
	mask      uint64 // 2n - 1
}

type mpmcSlot[T any] struct {
	cycle atomix.Uint64 // round number for this slot
	data  T
	_     atomics.PadShort
}

// NewMPMC creates a new FAA-based MPMC queue. Capacity rounds up to the
// next power of 2; physical slot count is 2n for capacity n (SCQ
// requirement).
func NewMPMC[T any](capacity int) *MPMC[T] {
	if capacity < 2 {
		panic("queue: capacity must be >= 2")
	}

	n := uint64(atomics.RoundToPow2(capacity))
	size := n * 2

	q := &MPMC[T]{
		buffer:   make([]mpmcSlot[T], size),
		capacity: n,
		size:     size,
		mask:     size - 1,
	}
	q.threshold.StoreRelaxed(3*int64(n) - 1)
	for i := uint64(0); i < size; i++ {
		q.buffer[i].cycle.StoreRelaxed(i / n)
	}
	return q
}

// Enqueue adds an element to the queue. Returns fibererr.ErrWouldBlock if
// the queue is full.
func (q *MPMC[T]) Enqueue(elem *T) error {
	sw := spin.Wait{}
	for {
		tail := q.tail.LoadAcquire()
		head := q.head.LoadAcquire()
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
			q.threshold.StoreRelaxed(3*int64(q.capacity) - 1)
			return nil
		}

		if int64(slotCycle) < int64(expectedCycle) {
			return fibererr.ErrWouldBlock // queue full
		}

		sw.Once()
	}
}

// Drain signals that no more enqueues will occur. After Drain is called,
// Dequeue skips the threshold check so consumers can drain all remaining
// items without producer pressure.
func (q *MPMC[T]) Drain() {
	q.draining.StoreRelease(true)
}

// Dequeue removes and returns an element from the queue.
func (q *MPMC[T]) Dequeue() (T, error) {
	if !q.draining.LoadAcquire() && q.threshold.LoadRelaxed() < 0 {
		var zero T
		return zero, fibererr.ErrWouldBlock
	}

	sw := spin.Wait{}
	for {
		myHead := q.head.AddAcqRel(1) - 1

		slot := &q.buffer[myHead&q.mask]
		expectedCycle := myHead/q.capacity + 1
		slotCycle := slot.cycle.LoadAcquire()

		if slotCycle == expectedCycle {
			elem := slot.data
			var zero T
			slot.data = zero
			nextEnqCycle := (myHead + q.size) / q.capacity
			slot.cycle.StoreRelease(nextEnqCycle)
			return elem, nil
		}

		if int64(slotCycle) < int64(expectedCycle) {
			// SCQ slot repair: advance the stale slot for future enqueuers.
			nextEnqCycle := (myHead + q.size) / q.capacity
			slot.cycle.CompareAndSwapAcqRel(slotCycle, nextEnqCycle)

			tail := q.tail.LoadAcquire()
			if tail <= myHead+1 {
				q.catchup(tail, myHead+1)
				q.threshold.AddAcqRel(-1)
				var zero T
				return zero, fibererr.ErrWouldBlock
			}
			if q.threshold.AddAcqRel(-1) <= 0 && !q.draining.LoadAcquire() {
				var zero T
				return zero, fibererr.ErrWouldBlock
			}
		}
		sw.Once()
	}
}

func (q *MPMC[T]) catchup(tail, head uint64) {
	for tail < head {
		if q.tail.CompareAndSwapRelaxed(tail, head) {
			break
		}
		tail = q.tail.LoadRelaxed()
		head = q.head.LoadRelaxed()
	}
}

// Cap returns the queue capacity.
func (q *MPMC[T]) Cap() int {
	return int(q.capacity)
}
