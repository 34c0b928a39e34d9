// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package queue

import "unsafe"

// Queue is the combined producer-consumer interface for a bounded FIFO.
//
// Queue provides non-blocking Enqueue and Dequeue operations. Both return
// fibererr.ErrWouldBlock when they cannot proceed (queue full or empty).
//
// The interface intentionally excludes length because accurate counts in
// lock-free algorithms require expensive cross-core synchronization.
type Queue[T any] interface {
	Producer[T]
	Consumer[T]
	Cap() int
}

// Producer is the interface for enqueueing elements.
//
// The element is passed by pointer to avoid copying large structs; the
// queue stores a copy of the pointed-to value, so the original can be
// modified after Enqueue returns.
type Producer[T any] interface {
	// Enqueue adds an element to the queue (non-blocking).
	// Returns nil on success, fibererr.ErrWouldBlock if the queue is full.
	Enqueue(elem *T) error
}

// Consumer is the interface for dequeueing elements.
//
// The element is returned by value. The original slot is cleared so any
// referenced object can be garbage collected.
type Consumer[T any] interface {
	// Dequeue removes and returns an element (non-blocking).
	// Returns (zero-value, fibererr.ErrWouldBlock) if the queue is empty.
	Dequeue() (T, error)
}

// UnboundedProducer is the interface for queues with no fixed capacity: the
// wake-queues package manager and channel build on never reject an
// enqueue; their Enqueue always returns nil.
type UnboundedProducer[T any] interface {
	Enqueue(elem *T) error
}

// QueuePtr is the combined interface for unsafe.Pointer queues: zero-copy
// transfer of an object between goroutines. The producer transfers
// ownership to the consumer; after Enqueue succeeds the producer must not
// access the pointee again.
type QueuePtr interface {
	ProducerPtr
	ConsumerPtr
	Cap() int
}

// ProducerPtr enqueues unsafe.Pointer values (non-blocking).
type ProducerPtr interface {
	Enqueue(elem unsafe.Pointer) error
}

// ConsumerPtr dequeues unsafe.Pointer values (non-blocking).
type ConsumerPtr interface {
	Dequeue() (unsafe.Pointer, error)
}

// Drainer signals that no more enqueues will occur.
//
// FAA-based queues (MPSC, MPMC) implement this interface. SPSC queues do
// not, as they have no threshold mechanism to relax.
type Drainer interface {
	// Drain is a hint — the caller must ensure no further Enqueue calls
	// will be made after calling Drain. Once called, Dequeue skips
	// threshold checks so consumers can drain whatever remains.
	Drain()
}
