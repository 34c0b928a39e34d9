// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package channel implements the fiber-to-fiber message channels of
// spec.md §4.9, ported from original_source/include/fiber_channel.h and
// fiber_multi_channel.h. Every channel here is built on top of the
// bounded/unbounded queues in package queue rather than reimplementing
// the original's buffer-plus-index arithmetic, and wakes a blocked
// receiver through an fsync.Signal instead of the original's
// spin-until-scratch-ready handoff.
package channel

import (
	"code.hybscloud.com/fiber/fiber"
	"code.hybscloud.com/fiber/manager"
	"code.hybscloud.com/fiber/queue"
	fsync "code.hybscloud.com/fiber/sync"
)

// Bounded is a fixed-capacity channel with many senders but exactly one
// receiver, matching fiber_bounded_channel_t. A nil signal makes Receive
// spin-yield instead of parking, matching the original's NULL-signal spin
// mode; Send spin-yields while the channel is full with or without a
// signal.
type Bounded[T any] struct {
	q      *queue.MPMC[T]
	signal *fsync.Signal
}

// NewBounded creates a Bounded channel holding up to capacity messages
// (rounded up to a power of two). signal may be nil.
func NewBounded[T any](capacity int, signal *fsync.Signal) *Bounded[T] {
	return &Bounded[T]{q: queue.NewMPMC[T](capacity), signal: signal}
}

// Send enqueues msg, spin-yielding f while the channel is full. Reports
// whether a parked receiver was woken.
func (c *Bounded[T]) Send(f *fiber.Fiber, sched manager.Scheduler, msg T) bool {
	for {
		if err := c.q.Enqueue(&msg); err == nil {
			if c.signal != nil {
				return c.signal.Raise(sched)
			}
			return false
		}
		f.Yield()
	}
}

// Receive blocks until a message is available. Must only be called from
// the single designated receiver fiber.
func (c *Bounded[T]) Receive(f *fiber.Fiber, sched manager.Scheduler) T {
	for {
		if v, err := c.q.Dequeue(); err == nil {
			return v
		}
		if c.signal != nil {
			c.signal.Wait(f, sched)
		} else {
			f.Yield()
		}
	}
}

// TryReceive returns immediately, reporting whether a message was
// available.
func (c *Bounded[T]) TryReceive() (T, bool) {
	v, err := c.q.Dequeue()
	return v, err == nil
}
