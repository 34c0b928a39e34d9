// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package channel

import (
	"code.hybscloud.com/fiber/fiber"
	"code.hybscloud.com/fiber/manager"
	"code.hybscloud.com/fiber/queue"
	fsync "code.hybscloud.com/fiber/sync"
)

// SPUnbounded is an unbounded channel with exactly one sender and exactly
// one receiver, matching fiber_unbounded_sp_channel_t. Backed by the
// wait-free SPSC linked queue, the cheapest of the three unbounded shapes.
type SPUnbounded[T any] struct {
	q      *queue.LinkedSPSC[T]
	signal *fsync.Signal
}

// NewSPUnbounded creates an empty SPUnbounded channel. signal may be nil,
// in which case Receive spin-yields instead of parking.
func NewSPUnbounded[T any](signal *fsync.Signal) *SPUnbounded[T] {
	return &SPUnbounded[T]{q: queue.NewLinkedSPSC[T](), signal: signal}
}

// Send enqueues msg. Reports whether the parked receiver was woken.
func (c *SPUnbounded[T]) Send(sched manager.Scheduler, msg T) bool {
	_ = c.q.Enqueue(&msg)
	if c.signal != nil {
		return c.signal.Raise(sched)
	}
	return false
}

// Receive blocks until a message is available.
func (c *SPUnbounded[T]) Receive(f *fiber.Fiber, sched manager.Scheduler) T {
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
func (c *SPUnbounded[T]) TryReceive() (T, bool) {
	v, err := c.q.Dequeue()
	return v, err == nil
}
