// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package fiber implements the Fiber object: a unit of cooperatively
// scheduled work realized as a goroutine that only ever runs while holding
// a baton handed to it by its owning worker. See SPEC_FULL.md §0 for why a
// goroutine-per-fiber rendezvous stands in for a literal register/stack
// swap, and original_source/include/fiber.h for the state machine this
// ports.
package fiber

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/fiber/fibererr"
)

// State is a Fiber's position in its lifecycle.
type State int32

const (
	// StateReady means the fiber is runnable but not currently scheduled
	// on any worker.
	StateReady State = iota
	// StateRunning means the fiber currently holds the baton.
	StateRunning
	// StateSavingStateToWait means the fiber has asked to wait but the
	// wait has not yet been committed by post-swap maintenance (§4.4).
	StateSavingStateToWait
	// StateWaiting means the fiber is parked pending an external wake.
	StateWaiting
	// StateDone means the fiber's function has returned.
	StateDone
)

// DetachState tracks the join/detach protocol between a fiber and (at
// most one) joiner, per original_source/include/fiber.h.
type DetachState int32

const (
	DetachStateNone DetachState = iota
	DetachStateWaitForJoiner
	DetachStateWaitToJoin
	DetachStateDetached
)

// Func is the body a fiber runs. It receives the fiber itself so it can
// call Yield or inspect its own state, and returns a result that becomes
// retrievable through Join/TryJoin — the "result slot: one pointer"
// attribute of §3's Fiber data model, realized here as an any rather than
// an unsafe raw pointer.
type Func func(f *Fiber) any

// Fiber is a single cooperatively-scheduled unit of work.
type Fiber struct {
	id         uint64
	generation uint64
	state      atomix.Int32 // State
	detach     atomix.Int32 // DetachState
	worker     atomix.Uint64 // owning worker id, set by the scheduler

	stackSizeHint int

	fn       Func
	result   any           // fn's return value, readable once doneCh is closed
	resumeCh chan struct{} // worker -> fiber: "you have the baton"
	parkCh   chan struct{} // fiber -> worker: "I've yielded, waited, or finished"
	doneCh   chan struct{} // closed when the fiber's function returns
	joinCh   chan struct{} // closed once a joiner has been served

	// scratch is the single deferred-action slot a fiber's own goroutine
	// writes into just before parking, and the maintenance protocol reads
	// after the swap completes — e.g. "this is the mutex to unlock", "this
	// is the signal location to post to". See package manager.
	scratch any
}

// Option configures a Fiber at creation.
type Option func(*Fiber)

// WithStackSize records an informational stack-size hint (§0: the Go
// runtime manages the actual stack; the hint is only stored on the fiber
// and read back through StackSizeHint).
func WithStackSize(n int) Option {
	return func(f *Fiber) { f.stackSizeHint = n }
}

var nextID atomix.Uint64

// Create allocates a new fiber running fn, not yet scheduled. The caller
// (normally package scheduler, via manager) is responsible for making it
// runnable.
func Create(fn Func, opts ...Option) *Fiber {
	if fn == nil {
		panic("fiber: nil Func")
	}
	f := &Fiber{
		id:       nextID.AddAcqRel(1),
		resumeCh: make(chan struct{}),
		parkCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
		joinCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.state.StoreRelease(int32(StateReady))
	go f.loop()
	return f
}

// ID returns the fiber's identity. IDs are never reused; a freed fiber slot
// reused by the free-fiber pool gets a fresh ID (Generation distinguishes
// reused *Fiber values, ID distinguishes logical fibers).
func (f *Fiber) ID() uint64 { return f.id }

// Generation returns the fiber's current generation, bumped each time a
// freed Fiber value is recycled by the free-fiber pool so that a stale
// reference from before the recycle can be detected.
func (f *Fiber) Generation() uint64 { return f.generation }

// State returns the fiber's current lifecycle state.
func (f *Fiber) State() State { return State(f.state.LoadAcquire()) }

// StackSizeHint returns the informational stack-size hint passed at
// creation, or 0 if none was given.
func (f *Fiber) StackSizeHint() int { return f.stackSizeHint }

// loop is the fiber's dedicated goroutine: it blocks for the first baton,
// runs fn to completion, and parks exactly once more to hand the final
// swap back to whichever worker is driving it.
func (f *Fiber) loop() {
	<-f.resumeCh
	f.state.StoreRelease(int32(StateRunning))
	f.result = f.fn(f)
	f.state.StoreRelease(int32(StateDone))
	close(f.doneCh)
	f.parkCh <- struct{}{}
}

// Resume hands the baton to f and blocks until f parks again (by yielding,
// waiting, or finishing). This is the worker-side half of swap(); only a
// worker's driver goroutine calls Resume.
func (f *Fiber) Resume() {
	f.resumeCh <- struct{}{}
	<-f.parkCh
}

// Yield parks the calling fiber cooperatively, returning it to Ready so the
// scheduler can run something else, then blocks until it is resumed again.
// Must be called from within the fiber's own Func.
func (f *Fiber) Yield() {
	f.state.StoreRelease(int32(StateReady))
	f.parkCh <- struct{}{}
	<-f.resumeCh
	f.state.StoreRelease(int32(StateRunning))
}

// BeginWait transitions the fiber to StateSavingStateToWait and parks it.
// Package manager's post-swap maintenance then transitions the fiber to
// StateWaiting and applies the slot's deferred action, in that order —
// see §4.4. Must be called from within the fiber's own Func.
func (f *Fiber) BeginWait(slot any) {
	f.scratch = slot
	f.state.StoreRelease(int32(StateSavingStateToWait))
	f.parkCh <- struct{}{}
	<-f.resumeCh
	f.state.StoreRelease(int32(StateRunning))
}

// Scratch returns and clears the deferred-action slot a fiber wrote via
// BeginWait. Called by the maintenance protocol exactly once per park.
func (f *Fiber) Scratch() any {
	s := f.scratch
	f.scratch = nil
	return s
}

// CommitWait transitions a fiber parked via BeginWait from
// StateSavingStateToWait to StateWaiting. Called by post-swap maintenance
// before the deferred action is applied.
func (f *Fiber) CommitWait() {
	f.state.StoreRelease(int32(StateWaiting))
}

// Wake transitions a Waiting fiber back to Ready, making it eligible to be
// scheduled again. It does not itself enqueue the fiber onto a run queue —
// the caller (a sync primitive's unlock path, a channel send) does that.
func (f *Fiber) Wake() {
	f.state.StoreRelease(int32(StateReady))
}

// Done reports whether the fiber's function has returned.
func (f *Fiber) Done() <-chan struct{} { return f.doneCh }

// Join blocks until f's function returns, then marks f detached-and-joined
// and returns the value f's Func returned. Returns fibererr.ErrInvalidState
// if f has already been joined or detached by another caller.
func (f *Fiber) Join() (any, error) {
	if !f.detach.CompareAndSwap(int32(DetachStateNone), int32(DetachStateWaitToJoin)) {
		return nil, fibererr.ErrInvalidState
	}
	<-f.doneCh
	f.detach.StoreRelease(int32(DetachStateDetached))
	close(f.joinCh)
	return f.result, nil
}

// TryJoin reports whether f has finished without blocking. If it has, it
// completes the join exactly as Join would and returns f's result.
func (f *Fiber) TryJoin() (result any, finished bool, err error) {
	select {
	case <-f.doneCh:
	default:
		return nil, false, nil
	}
	result, err = f.Join()
	return result, true, err
}

// Detach marks the fiber as never to be joined, allowing its resources to
// be reclaimed as soon as it finishes without a Join call. Returns
// fibererr.ErrInvalidState if a Join is already in progress or the fiber is
// already detached.
func (f *Fiber) Detach() error {
	if !f.detach.CompareAndSwap(int32(DetachStateNone), int32(DetachStateDetached)) {
		return fibererr.ErrInvalidState
	}
	return nil
}

// Worker returns the id of the worker currently (or most recently) driving
// this fiber.
func (f *Fiber) Worker() uint64 { return f.worker.LoadAcquire() }

// SetWorker records which worker is driving this fiber. Called by
// package scheduler/manager, never by the fiber's own Func.
func (f *Fiber) SetWorker(id uint64) { f.worker.StoreRelease(id) }

// recycle resets a finished fiber for reuse by the free-fiber pool,
// bumping its generation so stale references from before the recycle can
// be detected by comparing Generation().
func (f *Fiber) recycle(fn Func) {
	f.id = nextID.AddAcqRel(1)
	f.generation++
	f.fn = fn
	f.state.StoreRelease(int32(StateReady))
	f.detach.StoreRelease(int32(DetachStateNone))
	f.doneCh = make(chan struct{})
	f.joinCh = make(chan struct{})
	go f.loop()
}

// Recycle reinitializes a finished, already-joined-or-detached fiber to run
// fn, for the manager's free-fiber pool. Panics if f has not finished.
func Recycle(f *Fiber, fn Func) {
	select {
	case <-f.doneCh:
	default:
		panic("fiber: Recycle called on a fiber that has not finished")
	}
	f.recycle(fn)
}
