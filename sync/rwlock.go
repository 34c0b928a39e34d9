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

// RWLock packs writer-locked flag, reader count, and two waiter counts
// into a single 64-bit word, CAS'd atomically, per
// original_source/include/fiber_rwlock.h's layout:
//
//	bit 63           write_locked
//	bits 62..42       reader_count      (21 bits)
//	bits 41..21       waiting_readers   (21 bits)
//	bits 20..0        waiting_writers   (21 bits)
type RWLock struct {
	word          atomix.Uint64
	readerWaiters *queue.MPMCFifo[*fiber.Fiber]
	writerWaiters *queue.MPMCFifo[*fiber.Fiber]
}

const (
	rwlockWriteBit    = uint64(1) << 63
	rwlockReaderMask  = uint64(0x1FFFFF) << 42
	rwlockReaderShift = 42
	rwlockWRMask      = uint64(0x1FFFFF) << 21
	rwlockWRShift     = 21
	rwlockWWMask      = uint64(0x1FFFFF)
)

// NewRWLock creates an unlocked RWLock.
func NewRWLock() *RWLock {
	return &RWLock{
		readerWaiters: queue.NewMPMCFifo[*fiber.Fiber](),
		writerWaiters: queue.NewMPMCFifo[*fiber.Fiber](),
	}
}

func rwlockReaders(w uint64) uint64 { return (w & rwlockReaderMask) >> rwlockReaderShift }

// RLock acquires a read lock, parking f if a writer holds the lock, a
// writer is waiting for it (writer preference, matching the original's
// starvation avoidance for writers), or readers are already queued behind
// a writer. Parking itself CASes f's own waiting_readers unit into the
// word, exactly as original_source/src/fiber_rwlock.c's fiber_rwlock_rdlock
// does, so RUnlock/Unlock always know precisely how many readers are
// waiting instead of having to infer it from queue contents. The enqueue
// onto l.readerWaiters is deferred to post-swap maintenance
// (DeferredAction.Push, slot 4) rather than done eagerly here, so a
// concurrent unlock can never dequeue and wake f while it is still
// StateRunning, before it has actually parked.
func (l *RWLock) RLock(f *fiber.Fiber, sched manager.Scheduler) {
	for {
		w := l.word.LoadAcquire()
		if w&rwlockWriteBit == 0 && (w&rwlockWWMask) == 0 && (w&rwlockWRMask) == 0 {
			if l.word.CompareAndSwap(w, w+(1<<rwlockReaderShift)) {
				return
			}
			continue
		}
		if !l.word.CompareAndSwap(w, w+(1<<rwlockWRShift)) {
			continue
		}
		f.BeginWait(&manager.DeferredAction{
			CommitWait: true,
			Push:       func() { _ = l.readerWaiters.Enqueue(&f) },
		})
		return
	}
}

// RUnlock releases a read lock. If this was the last reader, it hands the
// lock to a waiting writer if one is queued, else promotes every waiting
// reader to holder in the same CAS, matching
// original_source/src/fiber_rwlock.c's fiber_rwlock_rdunlock.
func (l *RWLock) RUnlock(sched manager.Scheduler) {
	var sw spin.Wait
	for {
		w := l.word.LoadAcquire()
		next := w - (uint64(1) << rwlockReaderShift)
		if rwlockReaders(w) != 1 {
			if l.word.CompareAndSwap(w, next) {
				return
			}
			sw.Once()
			continue
		}
		if waitingWriters := next & rwlockWWMask; waitingWriters != 0 {
			next = (next &^ rwlockWWMask) | rwlockWriteBit | (waitingWriters - 1)
			if l.word.CompareAndSwap(w, next) {
				l.wakeWriters(sched, 1)
				return
			}
			sw.Once()
			continue
		}
		if waitingReaders := (next & rwlockWRMask) >> rwlockWRShift; waitingReaders != 0 {
			next = (next &^ rwlockWRMask) | (waitingReaders << rwlockReaderShift)
			if l.word.CompareAndSwap(w, next) {
				l.wakeReaders(sched, waitingReaders)
				return
			}
			sw.Once()
			continue
		}
		if l.word.CompareAndSwap(w, next) {
			return
		}
		sw.Once()
	}
}

// Lock acquires a write lock, parking f until no readers or writer hold
// it. Parking CASes f's own waiting_writers unit into the word, the same
// technique RLock uses for waiting_readers. The enqueue onto
// l.writerWaiters is deferred to post-swap maintenance
// (DeferredAction.Push, slot 4) for the same reason as RLock.
func (l *RWLock) Lock(f *fiber.Fiber, sched manager.Scheduler) {
	for {
		w := l.word.LoadAcquire()
		if w == 0 {
			if l.word.CompareAndSwap(w, w|rwlockWriteBit) {
				return
			}
			continue
		}
		if !l.word.CompareAndSwap(w, w+1) {
			continue
		}
		f.BeginWait(&manager.DeferredAction{
			CommitWait: true,
			Push:       func() { _ = l.writerWaiters.Enqueue(&f) },
		})
		return
	}
}

// Unlock releases a write lock, preferring to wake a single waiting writer
// before promoting all waiting readers, matching the original's writer-
// preference policy in fiber_rwlock_wrunlock.
func (l *RWLock) Unlock(sched manager.Scheduler) {
	var sw spin.Wait
	for {
		w := l.word.LoadAcquire()
		next := w &^ rwlockWriteBit
		if waitingWriters := next & rwlockWWMask; waitingWriters != 0 {
			next = (next &^ rwlockWWMask) | rwlockWriteBit | (waitingWriters - 1)
			if l.word.CompareAndSwap(w, next) {
				l.wakeWriters(sched, 1)
				return
			}
			sw.Once()
			continue
		}
		if waitingReaders := (next & rwlockWRMask) >> rwlockWRShift; waitingReaders != 0 {
			next = (next &^ rwlockWRMask) | (waitingReaders << rwlockReaderShift)
			if l.word.CompareAndSwap(w, next) {
				l.wakeReaders(sched, waitingReaders)
				return
			}
			sw.Once()
			continue
		}
		if l.word.CompareAndSwap(w, next) {
			return
		}
		sw.Once()
	}
}

// wakeWriters wakes exactly count writers out of l.writerWaiters. The CAS
// that shrank waiting_writers by count is the caller's proof that count
// waiters genuinely exist; their own deferred enqueue may simply not have
// landed yet, so an empty Dequeue here means "not published yet", not
// "nobody is waiting" — retry until found, exactly as
// fiber_manager_wake_from_mpsc_queue's wake_count < count loop does.
func (l *RWLock) wakeWriters(sched manager.Scheduler, count uint64) {
	var sw spin.Wait
	for woken := uint64(0); woken < count; {
		w, err := l.writerWaiters.Dequeue()
		if err != nil {
			sw.Once()
			continue
		}
		w.Wake()
		sched.Schedule(w)
		woken++
	}
}

// wakeReaders is wakeWriters' counterpart for l.readerWaiters.
func (l *RWLock) wakeReaders(sched manager.Scheduler, count uint64) {
	var sw spin.Wait
	for woken := uint64(0); woken < count; {
		w, err := l.readerWaiters.Dequeue()
		if err != nil {
			sw.Once()
			continue
		}
		w.Wake()
		sched.Schedule(w)
		woken++
	}
}
