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

// raisedMarker is a sentinel *fiber.Fiber value meaning "raised, no
// waiter attached", distinguishing that state from nil ("no waiter, not
// raised") without a separate flag word.
var raisedMarker = &fiber.Fiber{}

// Signal can be waited on by exactly one fiber at a time; any number of
// threads may raise it. Ported from
// original_source/include/fiber_signal.h, with the spin-until-scratch-
// ready handoff replaced by Fiber's own BeginWait/Wake rendezvous.
type Signal struct {
	waiter atomix.Pointer[fiber.Fiber]
}

// NewSignal creates an unraised Signal.
func NewSignal() *Signal {
	return &Signal{}
}

// Wait parks f until the signal is raised, or returns immediately if it
// is already raised. Publishing f into s.waiter is deferred to post-swap
// maintenance (DeferredAction.Push, slot 4): CAS-ing it in eagerly, before
// BeginWait, would let a concurrent Raise observe and wake f while it is
// still StateRunning, before it has actually parked.
func (s *Signal) Wait(f *fiber.Fiber, sched manager.Scheduler) {
	for {
		cur := s.waiter.LoadAcquire()
		if cur == raisedMarker {
			if s.waiter.CompareAndSwapAcqRel(cur, nil) {
				return
			}
			continue
		}
		f.BeginWait(&manager.DeferredAction{
			CommitWait: true,
			Push: func() {
				if !s.waiter.CompareAndSwapAcqRel(nil, f) {
					// A Raise landed between BeginWait and this deferred
					// publish and found no waiter to wake; it left the
					// signal in the raised state. Consume that directly
					// and wake ourselves rather than publishing into a
					// slot the raise already passed by.
					s.waiter.StoreRelease(nil)
					f.Wake()
					sched.Schedule(f)
				}
			},
		})
		return
	}
}

// Raise wakes the waiting fiber, if any, leaving the signal in the raised
// state otherwise so the next Wait returns immediately. Reports whether a
// fiber was woken.
func (s *Signal) Raise(sched manager.Scheduler) bool {
	for {
		old := s.waiter.LoadAcquire()
		switch {
		case old == raisedMarker:
			return false
		case old == nil:
			if s.waiter.CompareAndSwapAcqRel(nil, raisedMarker) {
				return false
			}
		default:
			// The wake consumes this raise: clear the slot instead of
			// leaving it raised for the next Wait.
			if s.waiter.CompareAndSwapAcqRel(old, nil) {
				old.Wake()
				sched.Schedule(old)
				return true
			}
		}
	}
}

// multiSignalRaised is the sentinel state value meaning "raised, no
// waiter pending". Any non-negative value is instead a live count of
// fibers that have claimed a parking slot but may not have published into
// waiters yet. The two meanings share one word so that "is it raised" and
// "is there a pending waiter" are resolved by a single CAS — checking one
// and then separately updating the other (what an earlier version of this
// type did with two independent atomics) leaves a window where a Raise
// and a Wait can each act on stale information and the signal latches
// raised while a waiter is left parked with nothing left to wake it.
const multiSignalRaised = -1

// MultiSignal allows any number of fibers to wait and any number of
// threads to raise. Ported from the fiber_multi_signal_t half of
// original_source/include/fiber_signal.h, with its CAS2-on-a-packed-union
// list replaced by the hazard-protected MPMCFifo already used for every
// other wait list in this package. The original publishes a waiter into
// that packed list and transitions it to FIBER_STATE_WAITING in the same
// CAS2, so a raiser that finds the list non-empty is guaranteed a node is
// really there; here the enqueue onto s.waiters is deferred to post-swap
// maintenance instead (DeferredAction.Push, slot 4), so s.state's pending
// count takes over that guarantee — it is claimed by the raiser under the
// same CAS that would have observed the list.
type MultiSignal struct {
	state   atomix.Int64 // multiSignalRaised, or a count of pending waiters
	waiters *queue.MPMCFifo[*fiber.Fiber]
}

// NewMultiSignal creates an unraised MultiSignal.
func NewMultiSignal() *MultiSignal {
	return &MultiSignal{waiters: queue.NewMPMCFifo[*fiber.Fiber]()}
}

// Wait parks f until raised, consuming a pending raise in the same CAS
// that would otherwise have claimed a parking slot, so there is never a
// window between "checking raised" and "becoming pending" for a Raise to
// act on stale state. The enqueue onto s.waiters is itself deferred to
// post-swap maintenance (DeferredAction.Push, slot 4) rather than done
// eagerly here.
func (s *MultiSignal) Wait(f *fiber.Fiber, sched manager.Scheduler) {
	for {
		n := s.state.LoadAcquire()
		if n == multiSignalRaised {
			if s.state.CompareAndSwap(multiSignalRaised, 0) {
				return
			}
			continue
		}
		if s.state.CompareAndSwap(n, n+1) {
			break
		}
	}
	f.BeginWait(&manager.DeferredAction{
		CommitWait: true,
		Push:       func() { _ = s.waiters.Enqueue(&f) },
	})
}

// Raise wakes one waiting fiber if any have claimed a pending slot,
// otherwise leaves the signal raised for the next Wait. Reports whether a
// fiber was woken.
func (s *MultiSignal) Raise(sched manager.Scheduler) bool {
	for {
		n := s.state.LoadAcquire()
		switch {
		case n == multiSignalRaised:
			return false
		case n == 0:
			if s.state.CompareAndSwap(0, multiSignalRaised) {
				return false
			}
		default:
			if s.state.CompareAndSwap(n, n-1) {
				s.wakeOne(sched)
				return true
			}
		}
	}
}

// RaiseStrict wakes exactly one waiting fiber and never latches a raised
// state, unlike Raise. Reports whether a fiber was woken.
func (s *MultiSignal) RaiseStrict(sched manager.Scheduler) bool {
	for {
		n := s.state.LoadAcquire()
		if n <= 0 {
			return false
		}
		if s.state.CompareAndSwap(n, n-1) {
			s.wakeOne(sched)
			return true
		}
	}
}

// wakeOne dequeues and wakes the fiber a successful pending-slot claim in
// Raise/RaiseStrict promised. Its enqueue may still be in flight, so an
// empty Dequeue here means "not published yet", not "nobody is waiting" —
// retry until found, exactly as fiber_manager_wake_from_mpsc_queue's
// wake_count < count loop does.
func (s *MultiSignal) wakeOne(sched manager.Scheduler) {
	var sw spin.Wait
	for {
		w, err := s.waiters.Dequeue()
		if err == nil {
			w.Wake()
			sched.Schedule(w)
			return
		}
		sw.Once()
	}
}
