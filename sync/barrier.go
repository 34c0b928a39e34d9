// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fsync

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/fiber/fiber"
	"code.hybscloud.com/fiber/manager"
	"code.hybscloud.com/fiber/queue"
)

// Barrier makes count fibers rendezvous before any of them proceeds, then
// resets for the next cycle. Ported from
// original_source/src/fiber_barrier.c.
type Barrier struct {
	count   uint64
	counter atomix.Uint64
	waiters *queue.MPMCFifo[*fiber.Fiber]
}

// NewBarrier creates a Barrier requiring count arrivals per cycle. Panics
// if count is zero.
func NewBarrier(count uint64) *Barrier {
	if count == 0 {
		panic("fsync: barrier count must be positive")
	}
	return &Barrier{count: count, waiters: queue.NewMPMCFifo[*fiber.Fiber]()}
}

// Wait arrives at the barrier, parking f until the count-th fiber arrives
// in this cycle. Reports true for exactly one caller per cycle, the one
// that releases the rest, matching pthread_barrier_wait's
// PTHREAD_BARRIER_SERIAL_THREAD convention. The enqueue onto b.waiters is
// deferred to post-swap maintenance (DeferredAction.Push, slot 4) rather
// than done eagerly, so the serial fiber below can never observe and wake
// an arrival before it has actually parked.
func (b *Barrier) Wait(f *fiber.Fiber, sched manager.Scheduler) bool {
	n := b.counter.AddAcqRel(1)
	if n%b.count == 0 {
		// Arrival is just an atomic increment, not ordered with the other
		// count-1 fibers' own Enqueue (now further delayed until their
		// BeginWait's deferred Push runs), so a failed Dequeue here means
		// "not yet visible", not "nobody else is coming". Retry instead of
		// giving up, yielding between attempts exactly as
		// original_source/src/fiber_manager.c's
		// fiber_manager_wake_from_mpsc_queue does (its wake_count < count
		// loop, calling fiber_manager_yield on a failed pop).
		for woken := uint64(0); woken < b.count-1; {
			w, err := b.waiters.Dequeue()
			if err != nil {
				f.Yield()
				continue
			}
			w.Wake()
			sched.Schedule(w)
			woken++
		}
		return true
	}
	f.BeginWait(&manager.DeferredAction{
		CommitWait: true,
		Push:       func() { _ = b.waiters.Enqueue(&f) },
	})
	return false
}
