// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fsync

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/fiber/fiber"
	"code.hybscloud.com/fiber/manager"
	"code.hybscloud.com/fiber/queue"
	"code.hybscloud.com/spin"
)

// Mutex is a fiber-aware mutual exclusion lock, implemented as a binary
// semaphore exactly like original_source/src/fiber_mutex.c: counter starts
// at 1, Lock is P (fetch-sub), Unlock is V (fetch-add). The fetch-sub/
// fetch-add pair is what tells Unlock whether a waiter genuinely exists —
// a single missed Dequeue there is never "nobody is waiting", only "not
// published yet", so Unlock retries instead of giving up.
type Mutex struct {
	counter atomix.Int32
	waiters *queue.MPMCFifo[*fiber.Fiber]
}

// NewMutex creates an unlocked Mutex.
func NewMutex() *Mutex {
	m := &Mutex{waiters: queue.NewMPMCFifo[*fiber.Fiber]()}
	m.counter.StoreRelease(1)
	return m
}

// Lock acquires m, parking the calling fiber f (rescheduled via sched once
// woken) if it is already held. The enqueue onto m.waiters is deferred to
// post-swap maintenance (DeferredAction.Push, slot 4) rather than done
// eagerly here: doing it before BeginWait would publish f into m.waiters
// while it is still StateRunning, letting a concurrent Unlock on another
// worker dequeue and Resume it before it has actually parked. A fiber
// woken out of m.waiters owns the lock outright — Unlock only ever wakes
// one waiter per surplus unit of contention, so there's nothing left to
// recheck after resuming.
func (m *Mutex) Lock(f *fiber.Fiber, sched manager.Scheduler) {
	if m.counter.AddAcqRel(-1) == 0 {
		return
	}
	f.BeginWait(&manager.DeferredAction{
		CommitWait: true,
		Push:       func() { _ = m.waiters.Enqueue(&f) },
	})
}

// TryLock attempts to acquire m without blocking.
func (m *Mutex) TryLock() bool {
	return m.counter.CompareAndSwap(1, 0)
}

// Unlock releases m and, if Lock's fetch-sub reported contention, wakes the
// waiter responsible for it. That waiter's own enqueue may still be in
// flight (deferred to its owning worker's post-swap maintenance), so a
// Dequeue finding the queue empty here means "not published yet", not
// "nobody is waiting" — Unlock spins until it lands, exactly as
// fiber_manager_wake_from_mpsc_queue's wake_count < count loop does.
func (m *Mutex) Unlock(sched manager.Scheduler) {
	if m.counter.AddAcqRel(1) == 1 {
		return
	}
	var sw spin.Wait
	for {
		if w, err := m.waiters.Dequeue(); err == nil {
			w.Wake()
			sched.Schedule(w)
			return
		}
		sw.Once()
	}
}

// UnlockFunc builds a DeferredAction.Unlock closure releasing m and waking
// one waiter onto sched, for primitives built on top of Mutex (Cond.Wait's
// atomic release-and-park, channel.Multi's blocking send/receive) that need
// to hand the release off to the post-swap maintenance protocol instead of
// calling Unlock directly.
func (m *Mutex) UnlockFunc(sched manager.Scheduler) func() {
	return func() { m.Unlock(sched) }
}
