// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fsync

import (
	"code.hybscloud.com/fiber/fiber"
	"code.hybscloud.com/fiber/manager"
	"code.hybscloud.com/fiber/queue"
)

// Cond is a fiber-aware condition variable, always used together with a
// Mutex the caller already holds. Ported from
// original_source/include/fiber_cond.h.
type Cond struct {
	waiters *queue.MPMCFifo[*fiber.Fiber]
}

// NewCond creates an empty Cond.
func NewCond() *Cond {
	return &Cond{waiters: queue.NewMPMCFifo[*fiber.Fiber]()}
}

// Wait atomically releases m and parks f, reacquiring m before returning.
// The caller must hold m. The enqueue onto c.waiters is deferred to
// post-swap maintenance (DeferredAction.Push, slot 4), which runs before
// the Unlock slot (5) — so by the time m is actually released, f is
// already published and a concurrent Signal/Broadcast can find it, while
// nothing can wake f before it has actually parked.
func (c *Cond) Wait(f *fiber.Fiber, m *Mutex, sched manager.Scheduler) {
	f.BeginWait(&manager.DeferredAction{
		CommitWait: true,
		Push:       func() { _ = c.waiters.Enqueue(&f) },
		Unlock:     m.UnlockFunc(sched),
	})
	m.Lock(f, sched)
}

// Signal wakes one waiting fiber, if any.
func (c *Cond) Signal(sched manager.Scheduler) {
	if w, err := c.waiters.Dequeue(); err == nil {
		w.Wake()
		sched.Schedule(w)
	}
}

// Broadcast wakes every waiting fiber.
func (c *Cond) Broadcast(sched manager.Scheduler) {
	for {
		w, err := c.waiters.Dequeue()
		if err != nil {
			return
		}
		w.Wake()
		sched.Schedule(w)
	}
}
