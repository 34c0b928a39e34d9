// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package scheduler implements the two scheduler variants named in
// spec.md §4.3: a work-stealing deque (Variant A, a pair of Chase–Lev
// deques per worker, thieves steal from the top) and a distributed FIFO (Variant B,
// one lock-free MPMC FIFO per worker, thieves dequeue from a peer's FIFO
// directly since it tolerates concurrent consumers). Both are grounded on
// original_source/src/fiber_scheduler_wsd.c and fiber_scheduler_dist.c.
package scheduler

import (
	"code.hybscloud.com/fiber/deque"
	"code.hybscloud.com/fiber/fiber"
	"code.hybscloud.com/fiber/queue"
	"code.hybscloud.com/spin"
)

// maxStealPerCall bounds how many fibers a single LoadBalance call moves
// from one peer, so one worker's idle pass can't starve a busy peer in one
// shot. original_source uses a similarly small fixed batch.
const maxStealPerCall = 32

// maxSavingStateRetries bounds Dist.Next's push-back-and-retry loop; see
// its doc comment.
const maxSavingStateRetries = 32

// Scheduler is the per-worker scheduling handle. A manager.Worker owns
// exactly one and never touches a peer's Scheduler except through
// LoadBalance, which takes from peers only by their thief-side operations.
type Scheduler interface {
	// Schedule makes f runnable on this scheduler. Safe from any goroutine
	// (a worker re-scheduling its own fiber, or another worker waking a
	// fiber it doesn't own).
	Schedule(f *fiber.Fiber)
	// Next returns the next fiber this scheduler's own worker should run,
	// or (nil, false) if none is currently available locally.
	Next() (*fiber.Fiber, bool)
	// LoadBalance is called by an idle worker with the full peer set; it
	// attempts to steal work into this scheduler and returns the number of
	// fibers moved.
	LoadBalance(peers []Scheduler) int
}

// Deque is the work-stealing-deque scheduler variant. Per
// original_source/src/fiber_scheduler_wsd.c, each worker actually owns a
// pair of deques: it pushes/pops the one currently in the "schedule from"
// role and, whenever that one pops a fiber still StateSavingStateToWait
// (its wait has not yet been committed by post-swap maintenance), stashes
// it in the other one rather than handing it to the caller. The two roles
// swap once "schedule from" runs dry, so a fiber stashed this cycle is only
// retried next cycle instead of being spun on immediately. Peers steal from
// both of a worker's deques, since either may hold runnable work.
type Deque struct {
	id                    int
	queueOne, queueTwo    *deque.Deque[fiber.Fiber]
	scheduleFrom, storeTo *deque.Deque[fiber.Fiber] // owner-goroutine-only
}

// NewDeque creates a WSD scheduler for worker id.
func NewDeque(id int, initialCapacity int) *Deque {
	d := &Deque{
		id:       id,
		queueOne: deque.New[fiber.Fiber](initialCapacity),
		queueTwo: deque.New[fiber.Fiber](initialCapacity),
	}
	d.scheduleFrom = d.queueOne
	d.storeTo = d.queueTwo
	return d
}

// Schedule pushes f onto the owner's current "schedule from" bottom.
func (d *Deque) Schedule(f *fiber.Fiber) {
	d.scheduleFrom.PushBottom(f)
}

// Next pops from the owner's bottom, swapping the schedule/store roles once
// the current "schedule from" deque runs dry. A fiber popped while still
// StateSavingStateToWait (spec.md §4.3's wake-before-save race: its wait
// hasn't been committed by post-swap maintenance yet) is stashed into the
// other deque instead of being returned, so the caller never resumes a
// fiber mid-park.
func (d *Deque) Next() (*fiber.Fiber, bool) {
	if d.scheduleFrom.Len() == 0 {
		d.scheduleFrom, d.storeTo = d.storeTo, d.scheduleFrom
	}
	for d.scheduleFrom.Len() > 0 {
		f, ok := d.scheduleFrom.PopBottom()
		if !ok {
			break
		}
		if f.State() == fiber.StateSavingStateToWait {
			d.storeTo.PushBottom(f)
			continue
		}
		return f, true
	}
	return nil, false
}

// LoadBalance steals up to maxStealPerCall fibers from peers' deques
// (both of them, per peer), starting with the worker immediately after
// this one (round-robin), pushing each onto this scheduler's own deque.
func (d *Deque) LoadBalance(peers []Scheduler) int {
	moved := 0
	n := len(peers)
	if n == 0 {
		return 0
	}
	for i := 1; i < n && moved < maxStealPerCall; i++ {
		peer, ok := peers[(d.id+i)%n].(*Deque)
		if !ok || peer == d {
			continue
		}
		for _, q := range [...]*deque.Deque[fiber.Fiber]{peer.queueOne, peer.queueTwo} {
			for moved < maxStealPerCall {
				f, ok := q.Steal()
				if !ok {
					break
				}
				d.Schedule(f)
				moved++
			}
		}
	}
	return moved
}

// Dist is the distributed-FIFO scheduler variant: each worker owns an
// unbounded MPMC FIFO that tolerates being drained by a peer directly,
// so LoadBalance dequeues straight from a peer's queue instead of needing
// a separate steal operation.
type Dist struct {
	id int
	q  *queue.MPMCFifo[*fiber.Fiber]
}

// NewDist creates a distributed-FIFO scheduler for worker id.
func NewDist(id int) *Dist {
	return &Dist{id: id, q: queue.NewMPMCFifo[*fiber.Fiber]()}
}

// Schedule enqueues f. Safe from any worker.
func (d *Dist) Schedule(f *fiber.Fiber) {
	_ = d.q.Enqueue(&f)
}

// Next dequeues the oldest locally-queued fiber. Per
// original_source/src/fiber_scheduler_dist.c's fiber_scheduler_next, a
// fiber dequeued while still StateSavingStateToWait (spec.md §4.3's
// wake-before-save race: its wait hasn't been committed by post-swap
// maintenance yet) is pushed straight back onto the queue and the next
// entry is tried, rather than being handed to the caller. Unlike
// Deque.Next, which is naturally bounded to one pass over its deque's
// current length (a stashed fiber moves to the other deque rather than
// being retried), Dist has only the one FIFO to push back onto, so a
// queue holding nothing else would have this retry forever against the
// same fiber. Next bounds the retry to maxSavingStateRetries attempts,
// backing off with spin.Wait between them, and gives up with (nil, false)
// past that so the caller can still attempt LoadBalance or notice
// shutdown instead of being stuck here until a peer's maintenance pass
// catches up.
func (d *Dist) Next() (*fiber.Fiber, bool) {
	var sw spin.Wait
	for attempt := 0; attempt < maxSavingStateRetries; attempt++ {
		f, err := d.q.Dequeue()
		if err != nil {
			return nil, false
		}
		if f.State() == fiber.StateSavingStateToWait {
			_ = d.q.Enqueue(&f)
			sw.Once()
			continue
		}
		return f, true
	}
	return nil, false
}

// LoadBalance dequeues up to maxStealPerCall fibers directly from peer
// FIFOs (round-robin starting just after this worker) and reschedules them
// locally.
func (d *Dist) LoadBalance(peers []Scheduler) int {
	moved := 0
	n := len(peers)
	if n == 0 {
		return 0
	}
	for i := 1; i < n && moved < maxStealPerCall; i++ {
		peer, ok := peers[(d.id+i)%n].(*Dist)
		if !ok || peer == d {
			continue
		}
		for moved < maxStealPerCall {
			f, err := peer.q.Dequeue()
			if err != nil {
				break
			}
			d.Schedule(f)
			moved++
		}
	}
	return moved
}
