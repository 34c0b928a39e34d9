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

// Semaphore is a counting semaphore whose Wait parks the calling fiber
// instead of blocking the OS thread when the count is exhausted. Ported
// from original_source/src/fiber_semaphore.c.
type Semaphore struct {
	counter atomix.Int32
	waiters *queue.MPMCFifo[*fiber.Fiber]
}

// NewSemaphore creates a Semaphore with the given initial value.
func NewSemaphore(value int32) *Semaphore {
	s := &Semaphore{waiters: queue.NewMPMCFifo[*fiber.Fiber]()}
	s.counter.StoreRelease(value)
	return s
}

// Wait decrements the count, parking f if it goes negative. The enqueue
// onto s.waiters is deferred to post-swap maintenance (DeferredAction.Push,
// slot 4) rather than done eagerly here, so a concurrent Post can never
// dequeue and wake f before it has actually parked; Post's own retry loop
// spins briefly in that case until the deferred enqueue has landed.
func (s *Semaphore) Wait(f *fiber.Fiber, sched manager.Scheduler) {
	if s.counter.AddAcqRel(-1) >= 0 {
		// we got in without contention
		return
	}
	f.BeginWait(&manager.DeferredAction{
		CommitWait: true,
		Push:       func() { _ = s.waiters.Enqueue(&f) },
	})
}

// TryWait decrements the count only if it is currently positive.
func (s *Semaphore) TryWait() bool {
	for {
		cur := s.counter.LoadAcquire()
		if cur <= 0 {
			return false
		}
		if s.counter.CompareAndSwap(cur, cur-1) {
			return true
		}
	}
}

// Post increments the count, waking a waiting fiber if one is parked.
// Reports whether a fiber was woken.
func (s *Semaphore) Post(sched manager.Scheduler) bool {
	for {
		prev := s.counter.LoadAcquire()
		if prev < 0 {
			if w, err := s.waiters.Dequeue(); err == nil {
				s.counter.AddAcqRel(1)
				w.Wake()
				sched.Schedule(w)
				return true
			}
			continue
		}
		if s.counter.CompareAndSwap(prev, prev+1) {
			return false
		}
	}
}

// Value returns the current count, which may be negative while fibers are
// waiting.
func (s *Semaphore) Value() int32 {
	return s.counter.LoadAcquire()
}
