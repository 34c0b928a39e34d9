// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package manager

import (
	"sync"
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/fiber/event"
	"code.hybscloud.com/fiber/fiber"
	"code.hybscloud.com/fiber/queue"
	schedpkg "code.hybscloud.com/fiber/scheduler"
	"code.hybscloud.com/fiber/stats"
)

// Runtime is the process-wide handle bundling everything spec.md §9 calls
// "process-wide state": the scheduler set, the free-fiber pool, the event
// bridge, and the logger. Grounded on original_source/include/
// fiber_manager.h's single global fiber_manager_t array plus its
// accompanying process-wide fields.
type Runtime struct {
	cfg        Config
	workers    []*Worker
	schedulers []schedpkg.Scheduler
	freeFibers *queue.MPMCLifo[*fiber.Fiber]
	bridge     event.Bridge
	logger     Logger
	tick       time.Duration

	shutdown atomix.Bool
	wg       sync.WaitGroup
}

// New constructs and starts a Runtime: it spawns cfg.Workers OS-thread-
// pinned worker goroutines, each running its own scheduler and
// maintenance fiber, and returns without waiting for them to start.
func New(opts ...Option) *Runtime {
	cfg := NewConfig(opts...)

	rt := &Runtime{
		cfg:        cfg,
		freeFibers: queue.NewMPMCLifo[*fiber.Fiber](),
		logger:     cfg.Logger,
		tick:       cfg.TickResolution,
	}

	bridge, err := newDefaultBridge()
	if err == nil {
		rt.bridge = bridge
	}

	rt.schedulers = make([]schedpkg.Scheduler, cfg.Workers)
	rt.workers = make([]*Worker, cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		var sched schedpkg.Scheduler
		if cfg.Scheduler == SchedulerDistributedFIFO {
			sched = schedpkg.NewDist(i)
		} else {
			sched = schedpkg.NewDeque(i, 256)
		}
		rt.schedulers[i] = sched
		rt.workers[i] = newWorker(i, rt, sched)
	}

	rt.wg.Add(cfg.Workers)
	for _, w := range rt.workers {
		w := w
		go func() {
			defer rt.wg.Done()
			w.run()
		}()
	}

	return rt
}

// Spawn creates a new fiber running fn and schedules it onto the
// least-numbered worker (a simple, deterministic placement; LoadBalance
// redistributes from there). Reuses a recycled Fiber from the free-fiber
// pool when one is available, per spec.md's free-fiber-LIFO reuse design.
func (rt *Runtime) Spawn(fn fiber.Func, opts ...fiber.Option) *fiber.Fiber {
	rt.workers[0].Stats.FibersCreated.AddAcqRel(1)
	if f, err := rt.freeFibers.Pop(); err == nil {
		fiber.Recycle(f, fn)
		rt.schedulers[0].Schedule(f)
		return f
	}
	f := fiber.Create(fn, opts...)
	rt.schedulers[0].Schedule(f)
	return f
}

// release returns a finished, already-detached-or-joined fiber to the
// free-fiber pool. A fiber still awaiting Join is left alone — Join itself
// never returns it, since a second Join (or a racing TryJoin) must still
// be able to observe Done(); the pool only ever receives fibers nobody
// can meaningfully reference again, i.e. after Detach or after Join has
// completed.
func (rt *Runtime) release(f *fiber.Fiber) {
	if f.State() != fiber.StateDone {
		return
	}
	_ = rt.freeFibers.Push(&f)
}

// Shutdown cooperatively stops every worker: sets the shutdown flag (each
// maintenance fiber and driver loop observes it and exits its loop) and
// blocks until all worker goroutines have returned.
func (rt *Runtime) Shutdown() {
	rt.shutdown.StoreRelease(true)
	rt.wg.Wait()
	if rt.bridge != nil {
		_ = rt.bridge.Close()
	}
}

func (rt *Runtime) shuttingDown() bool {
	return rt.shutdown.LoadAcquire()
}

// Stats aggregates every worker's counters.
func (rt *Runtime) Stats() stats.All {
	ws := make([]*stats.Worker, len(rt.workers))
	for i, w := range rt.workers {
		ws[i] = &w.Stats
	}
	return stats.Aggregate(ws)
}

// Bridge returns the runtime's event bridge, or nil if none is available
// on this platform.
func (rt *Runtime) Bridge() event.Bridge { return rt.bridge }

// Logger returns the runtime's structured logger, possibly nil.
func (rt *Runtime) Logger() Logger { return rt.logger }

// WorkerCount returns the number of workers this runtime drives.
func (rt *Runtime) WorkerCount() int { return len(rt.workers) }

// Scheduler returns the Scheduler belonging to the worker currently
// driving f, the handle a synchronization primitive's Lock/Wait call
// needs to re-enqueue f once it's woken. Fiber bodies running under this
// Runtime obtain it this way rather than threading a scheduler reference
// through every Spawn call site.
func (rt *Runtime) Scheduler(f *fiber.Fiber) Scheduler {
	return rt.schedulers[int(f.Worker())]
}
