// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package channel_test

import (
	"testing"

	"code.hybscloud.com/fiber/channel"
	"code.hybscloud.com/fiber/fiber"
	"code.hybscloud.com/fiber/manager"
)

func TestSelectReturnsFirstReadyCase(t *testing.T) {
	rt := manager.New(manager.WithWorkers(2))
	defer rt.Shutdown()

	a := channel.NewBounded[int](2, nil)
	b := channel.NewBounded[int](2, nil)

	done := make(chan struct{})
	rt.Spawn(func(f *fiber.Fiber) any {
		sched := rt.Scheduler(f)
		b.Send(f, sched, 42)
		idx, v := channel.Select(f, sched, a, b)
		if idx != 1 {
			t.Errorf("idx: got %d, want 1", idx)
		}
		if v.(int) != 42 {
			t.Errorf("v: got %v, want 42", v)
		}
		close(done)
		return nil
	})
	<-done
}

func TestSelectParksUntilReady(t *testing.T) {
	rt := manager.New(manager.WithWorkers(2))
	defer rt.Shutdown()

	a := channel.NewBounded[string](2, nil)

	waiterDone := make(chan struct{})
	rt.Spawn(func(f *fiber.Fiber) any {
		sched := rt.Scheduler(f)
		idx, v := channel.Select(f, sched, a)
		if idx != 0 || v.(string) != "ready" {
			t.Errorf("got (%d, %v), want (0, ready)", idx, v)
		}
		close(waiterDone)
		return nil
	})

	senderDone := make(chan struct{})
	rt.Spawn(func(f *fiber.Fiber) any {
		sched := rt.Scheduler(f)
		f.Yield()
		f.Yield()
		f.Yield()
		a.Send(f, sched, "ready")
		close(senderDone)
		return nil
	})

	<-waiterDone
	<-senderDone
}
