// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package channel

import (
	"code.hybscloud.com/fiber/fiber"
	"code.hybscloud.com/fiber/manager"
)

// Receiver is satisfied by Bounded, Unbounded and SPUnbounded via a
// TryReceiveAny wrapper, letting Select poll channels of differing
// element types. There is no equivalent in
// original_source/include/fiber_channel.h: the original always commits a
// fiber to one channel's ready_signal. Select instead polls every case
// and yields between rounds, the same cooperative-yield fallback the
// original itself uses whenever a channel has no signal attached.
// Multi has no TryReceiveAny: its TryReceive takes a Scheduler so it can
// wake a blocked peer sender on success, which doesn't fit this
// no-argument shape, so Multi channels aren't selectable.
type Receiver interface {
	TryReceiveAny() (any, bool)
}

// TryReceiveAny implements Receiver for Bounded.
func (c *Bounded[T]) TryReceiveAny() (any, bool) {
	v, ok := c.TryReceive()
	return v, ok
}

// TryReceiveAny implements Receiver for Unbounded.
func (c *Unbounded[T]) TryReceiveAny() (any, bool) {
	v, ok := c.TryReceive()
	return v, ok
}

// TryReceiveAny implements Receiver for SPUnbounded.
func (c *SPUnbounded[T]) TryReceiveAny() (any, bool) {
	v, ok := c.TryReceive()
	return v, ok
}

// Select polls cases in round-robin order, returning the index and value
// of the first ready case. It parks the calling fiber via Yield between
// rounds if nothing is ready, so Select never busy-spins a whole OS
// thread.
func Select(f *fiber.Fiber, sched manager.Scheduler, cases ...Receiver) (int, any) {
	for {
		for i, c := range cases {
			if v, ok := c.TryReceiveAny(); ok {
				return i, v
			}
		}
		f.Yield()
	}
}
