// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package manager

import "code.hybscloud.com/fiber/fiber"

// DeferredAction is the set of actions a fiber may request be applied only
// after the swap that parks it has fully completed — never from inside the
// fiber's own Func, which would race the very state it's trying to change.
// A sync primitive that parks a fiber (fsync.Mutex.Lock finding the lock
// held, a channel Send finding no ready receiver) builds one of these and
// passes it to Fiber.BeginWait; the owning worker applies it from
// doMaintenance once the swap back to the worker's driver goroutine
// returns.
//
// Only the slots a given wait actually needs are set; doMaintenance skips
// nil/zero slots. The seven-slot list and its order are ported from
// original_source/include/fiber_manager.h's deferred-action union and
// fiber_manager.c's post-swap maintenance routine.
type DeferredAction struct {
	// CommitWait, if true, transitions the parked fiber from
	// StateSavingStateToWait to StateWaiting (slot 1).
	CommitWait bool

	// Schedule, if non-nil, is a fiber to make runnable again — typically
	// a joiner waiting on this fiber's completion (slot 3).
	Schedule *fiber.Fiber
	// ScheduleOn is the Scheduler to enqueue Schedule onto, resolved by
	// the caller (often the waking fiber's own owning worker).
	ScheduleOn Scheduler

	// Push, if non-nil, performs a single enqueue onto a queue the waiting
	// fiber is coordinating through — e.g. posting a value into a channel
	// buffer right as the sender parks (slot 4).
	Push func()

	// Unlock, if non-nil, releases a mutex the parking fiber held (slot 5).
	Unlock func()

	// SpinRelease, if non-nil, releases a spinlock the parking fiber held
	// (slot 6).
	SpinRelease func()

	// SetWait, if non-nil, writes a value into a location a waiter is
	// polling (a signal's payload, a future's result) only once the parked
	// fiber can no longer observe or race the write (slot 7).
	SetWait func()
}

// Scheduler is the subset of scheduler.Scheduler that sync primitives and
// channels need to re-enqueue a woken fiber; Runtime.Scheduler hands out a
// worker's scheduler through it.
type Scheduler interface {
	Schedule(f *fiber.Fiber)
}

// apply runs slots 3-7 present in a, in the fixed order fiber_manager.c
// uses. Slot 1 (CommitWait) is applied by doMaintenance before apply is
// called, and slot 2, "destroy done_fiber", is driven by the fiber reaching
// StateDone rather than a DeferredAction field, since completion is
// unconditional and never racing a BeginWait.
func (a *DeferredAction) apply() {
	if a == nil {
		return
	}
	// Slot 3: schedule.
	if a.Schedule != nil && a.ScheduleOn != nil {
		a.ScheduleOn.Schedule(a.Schedule)
	}
	// Slot 4: queue push.
	if a.Push != nil {
		a.Push()
	}
	// Slot 5: mutex unlock.
	if a.Unlock != nil {
		a.Unlock()
	}
	// Slot 6: spinlock release.
	if a.SpinRelease != nil {
		a.SpinRelease()
	}
	// Slot 7: write set-wait value.
	if a.SetWait != nil {
		a.SetWait()
	}
}
