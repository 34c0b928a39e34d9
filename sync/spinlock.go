// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fsync

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// Spinlock is a ticket lock: fair FIFO ordering under contention, busy-wait
// only (no park/reschedule), for critical sections short enough that
// parking a fiber would cost more than spinning. Ported from
// original_source/include/fiber_spinlock.h.
type Spinlock struct {
	nextTicket atomix.Uint64
	nowServing atomix.Uint64
}

// Lock busy-waits until the caller's ticket is being served.
func (s *Spinlock) Lock() {
	ticket := s.nextTicket.AddAcqRel(1) - 1
	var sw spin.Wait
	for s.nowServing.LoadAcquire() != ticket {
		sw.Once()
	}
}

// Unlock advances service to the next ticket.
func (s *Spinlock) Unlock() {
	s.nowServing.AddAcqRel(1)
}

// TryLock attempts to acquire the lock only if it is uncontended
// (nowServing == nextTicket) at the moment of the call.
func (s *Spinlock) TryLock() bool {
	serving := s.nowServing.LoadAcquire()
	return s.nextTicket.CompareAndSwap(serving, serving+1)
}
