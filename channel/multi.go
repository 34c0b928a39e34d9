// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package channel

import (
	"code.hybscloud.com/fiber/fiber"
	"code.hybscloud.com/fiber/internal/atomics"
	"code.hybscloud.com/fiber/manager"
	"code.hybscloud.com/fiber/queue"
	fsync "code.hybscloud.com/fiber/sync"
)

// Multi is a bounded channel with many senders and many receivers,
// matching fiber_multi_channel_t. Unlike Bounded it has no lock-free fast
// path: every send and receive holds the same Mutex, and a blocked caller
// parks on a single shared wait list that the next successful send or
// receive wakes one fiber from, exactly as the original's
// channel->waiters intrusive list does.
type Multi[T any] struct {
	mu      *fsync.Mutex
	buf     []T
	mask    uint64
	high    uint64
	low     uint64
	waiters *queue.MPMCFifo[*fiber.Fiber]
}

// NewMulti creates a Multi channel holding up to capacity messages
// (rounded up to a power of two).
func NewMulti[T any](capacity int) *Multi[T] {
	capacity = atomics.RoundToPow2(capacity)
	return &Multi[T]{
		mu:      fsync.NewMutex(),
		buf:     make([]T, capacity),
		mask:    uint64(capacity - 1),
		waiters: queue.NewMPMCFifo[*fiber.Fiber](),
	}
}

// Send blocks until there is room, then enqueues msg.
func (c *Multi[T]) Send(f *fiber.Fiber, sched manager.Scheduler, msg T) {
	for {
		c.mu.Lock(f, sched)
		if c.high-c.low < uint64(len(c.buf)) {
			break
		}
		c.park(f, sched)
	}
	c.buf[c.high&c.mask] = msg
	c.high++
	c.wakeOneLocked(sched)
	c.mu.Unlock(sched)
}

// Receive blocks until a message is available, then dequeues it.
func (c *Multi[T]) Receive(f *fiber.Fiber, sched manager.Scheduler) T {
	for {
		c.mu.Lock(f, sched)
		if c.high > c.low {
			break
		}
		c.park(f, sched)
	}
	idx := c.low & c.mask
	v := c.buf[idx]
	var zero T
	c.buf[idx] = zero
	c.low++
	c.wakeOneLocked(sched)
	c.mu.Unlock(sched)
	return v
}

// park enqueues f on the shared wait list and atomically releases mu
// while parking, reacquiring it (via the Send/Receive retry loop) once
// woken.
func (c *Multi[T]) park(f *fiber.Fiber, sched manager.Scheduler) {
	_ = c.waiters.Enqueue(&f)
	f.BeginWait(&manager.DeferredAction{
		CommitWait: true,
		Unlock:     c.mu.UnlockFunc(sched),
	})
}

// TryReceive returns immediately, reporting whether a message was
// available, without parking if the mutex is contended.
func (c *Multi[T]) TryReceive(sched manager.Scheduler) (T, bool) {
	var zero T
	if !c.mu.TryLock() {
		return zero, false
	}
	if c.high <= c.low {
		c.mu.Unlock(sched)
		return zero, false
	}
	idx := c.low & c.mask
	v := c.buf[idx]
	c.buf[idx] = zero
	c.low++
	c.wakeOneLocked(sched)
	c.mu.Unlock(sched)
	return v, true
}

// wakeOneLocked wakes one parked fiber, regardless of whether it was
// waiting to send or to receive, matching the original's single
// undifferentiated waiter list — a woken fiber that finds its condition
// still unmet simply re-parks.
func (c *Multi[T]) wakeOneLocked(sched manager.Scheduler) {
	if w, err := c.waiters.Dequeue(); err == nil {
		w.Wake()
		sched.Schedule(w)
	}
}
