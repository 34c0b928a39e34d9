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

// Unbounded is an unbounded channel with many senders but exactly one
// receiver, matching fiber_unbounded_channel_t. Backed by the
// hazard-protected MPMC FIFO since an MPSC-specific unbounded queue isn't
// needed here: Send never contends with Receive for the consumer side.
type Unbounded[T any] struct {
	q      *queue.MPMCFifo[T]
	signal *fsync.Signal
}

// NewUnbounded creates an empty Unbounded channel. signal may be nil, in
// which case Receive spin-yields instead of parking.
func NewUnbounded[T any](signal *fsync.Signal) *Unbounded[T] {
	return &Unbounded[T]{q: queue.NewMPMCFifo[T](), signal: signal}
}

// Send enqueues msg. Reports whether a parked receiver was woken.
func (c *Unbounded[T]) Send(sched manager.Scheduler, msg T) bool {
	_ = c.q.Enqueue(&msg)
	if c.signal != nil {
		return c.signal.Raise(sched)
	}
	return false
}

// Receive blocks until a message is available. Must only be called from
// the single designated receiver fiber.
func (c *Unbounded[T]) Receive(f *fiber.Fiber, sched manager.Scheduler) T {
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
func (c *Unbounded[T]) TryReceive() (T, bool) {
	v, err := c.q.Dequeue()
	return v, err == nil
}
