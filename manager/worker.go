// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package manager

import (
	"runtime"
	"time"

	"code.hybscloud.com/fiber/fiber"
	schedpkg "code.hybscloud.com/fiber/scheduler"
	"code.hybscloud.com/fiber/stats"
)

// Worker drives one OS thread's worth of fibers. Per SPEC_FULL.md §0/§1,
// "OS thread" is realized as a goroutine pinned with runtime.LockOSThread,
// the same commitment the original's pthread-per-worker model makes,
// translated to what Go actually exposes.
type Worker struct {
	ID    int
	rt    *Runtime
	Sched schedpkg.Scheduler
	Stats stats.Worker

	// maint is this worker's own maintenance fiber: the one that runs the
	// load-balance/poll-events loop when nothing else is runnable.
	maint *fiber.Fiber
}

func newWorker(id int, rt *Runtime, sched schedpkg.Scheduler) *Worker {
	w := &Worker{ID: id, rt: rt, Sched: sched}
	return w
}

// run is the OS-thread-pinned driver loop: repeatedly take the next
// runnable fiber (local queue, then load-balance from peers, then the
// maintenance fiber itself) and resume it, then apply any deferred action
// it left behind.
func (w *Worker) run() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	w.maint = fiber.Create(w.maintenanceLoop)
	w.Sched.Schedule(w.maint)

	for !w.rt.shuttingDown() {
		f, ok := w.Sched.Next()
		if !ok {
			w.Stats.StealsAttempted.AddAcqRel(1)
			if moved := w.Sched.LoadBalance(w.rt.schedulers); moved > 0 {
				w.Stats.StealsSucceeded.AddAcqRel(uint64(moved))
			}
			f, ok = w.Sched.Next()
			if !ok {
				// Nothing anywhere, including this worker's own
				// maintenance fiber — only possible during startup
				// before it's first scheduled, or shutdown teardown.
				continue
			}
		}
		w.runOne(f)
	}
}

// runOne resumes f exactly once (one swap in, one swap out) and applies
// whatever deferred action it left behind, in the order doMaintenance
// documents.
func (w *Worker) runOne(f *fiber.Fiber) {
	f.SetWorker(uint64(w.ID))
	f.Resume()
	w.doMaintenance(f)
}

// doMaintenance is the post-swap maintenance protocol (spec.md §4.4):
// applied strictly in slot order once the swap that parked f has fully
// completed, so none of it races f's own goroutine (which is blocked on
// f.resumeCh the entire time doMaintenance runs).
func (w *Worker) doMaintenance(f *fiber.Fiber) {
	switch f.State() {
	case fiber.StateDone:
		w.Stats.FibersCompleted.AddAcqRel(1)
		// Slot 2: destroy done_fiber. A fiber with no pending joiner is
		// eligible for immediate recycling into the free-fiber pool; a
		// fiber being joined is left for Fiber.Join to observe via
		// Done() and the pool reclaims it lazily on the next Create.
		w.rt.release(f)
		return
	case fiber.StateSavingStateToWait:
		action, _ := f.Scratch().(*DeferredAction)
		// Slot 1: commit the wait.
		f.CommitWait()
		// Slots 3-7.
		action.apply()
		w.Stats.ParkEvents.AddAcqRel(1)
	case fiber.StateReady:
		// A plain Yield: re-schedule locally.
		w.Sched.Schedule(f)
	}
}

// maintenanceLoop is this worker's maintenance fiber body: it runs whenever
// the worker has nothing else runnable, load-balancing and polling the
// event bridge for a bounded time before yielding back so the driver loop
// can re-check for newly-runnable fibers.
func (w *Worker) maintenanceLoop(f *fiber.Fiber) any {
	for !w.rt.shuttingDown() {
		w.Stats.StealsAttempted.AddAcqRel(1)
		if moved := w.Sched.LoadBalance(w.rt.schedulers); moved > 0 {
			w.Stats.StealsSucceeded.AddAcqRel(uint64(moved))
			f.Yield()
			continue
		}
		if w.rt.bridge != nil {
			woken := w.rt.bridge.PollEvents()
			if woken == 0 {
				woken = w.rt.bridge.PollEventsBlocking(w.rt.tick)
			}
			w.Stats.EventsPolled.AddAcqRel(uint64(woken))
		} else {
			time.Sleep(w.rt.tick)
		}
		f.Yield()
	}
	return nil
}
