// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package queue

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/fiber/fibererr"
	"code.hybscloud.com/fiber/internal/atomics"
)

// SPSC is a single-producer single-consumer bounded queue: Lamport's ring
// buffer with cached index optimization. The producer caches the consumer's
// dequeue index, and vice versa, reducing cross-core cache line traffic.
// It suits strictly single-writer/single-reader handoffs; no other package
// in this module uses it.
type SPSC[T any] struct {
	_          atomics.Pad
	head       atomix.Uint64 // consumer reads from here
	_          atomics.Pad
	cachedTail uint64 // consumer's cached view of tail
	_          atomics.Pad
	tail       atomix.Uint64 // producer writes here
	_          atomics.Pad
	cachedHead uint64 // producer's cached view of head
	_          atomics.Pad
	buffer     []T
	mask       uint64
}

// NewSPSC creates a new SPSC queue. Capacity rounds up to the next power
// of 2.
func NewSPSC[T any](capacity int) *SPSC[T] {
	if capacity < 2 {
		panic("queue: capacity must be >= 2")
	}
	n := uint64(atomics.RoundToPow2(capacity))
	return &SPSC[T]{
		buffer: make([]T, n),
		mask:   n - 1,
	}
}

// Enqueue adds an element to the queue (producer only).
func (q *SPSC[T]) Enqueue(elem *T) error {
	tail := q.tail.LoadRelaxed()
	if tail-q.cachedHead > q.mask {
		q.cachedHead = q.head.LoadAcquire()
		if tail-q.cachedHead > q.mask {
			return fibererr.ErrWouldBlock
		}
	}
	q.buffer[tail&q.mask] = *elem
	q.tail.StoreRelease(tail + 1)
	return nil
}

// Dequeue removes and returns an element (consumer only).
func (q *SPSC[T]) Dequeue() (T, error) {
	head := q.head.LoadRelaxed()
	if head >= q.cachedTail {
		q.cachedTail = q.tail.LoadAcquire()
		if head >= q.cachedTail {
			var zero T
			return zero, fibererr.ErrWouldBlock
		}
	}
	elem := q.buffer[head&q.mask]
	var zero T
	q.buffer[head&q.mask] = zero
	q.head.StoreRelease(head + 1)
	return elem, nil
}

// Cap returns the queue capacity.
func (q *SPSC[T]) Cap() int {
	return int(q.mask + 1)
}

