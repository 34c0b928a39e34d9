// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package channel_test

import (
	"sync/atomic"
	"testing"

	"code.hybscloud.com/fiber/channel"
	"code.hybscloud.com/fiber/fiber"
	"code.hybscloud.com/fiber/manager"
	fsync "code.hybscloud.com/fiber/sync"
)

func TestBoundedSpinModeSendReceive(t *testing.T) {
	c := channel.NewBounded[int](4, nil)
	rt := manager.New(manager.WithWorkers(2))
	defer rt.Shutdown()

	const total = 500
	var sum atomic.Int64

	senderDone := make(chan struct{})
	rt.Spawn(func(f *fiber.Fiber) any {
		sched := rt.Scheduler(f)
		for i := 1; i <= total; i++ {
			c.Send(f, sched, i)
		}
		close(senderDone)
		return nil
	})

	receiverDone := make(chan struct{})
	rt.Spawn(func(f *fiber.Fiber) any {
		sched := rt.Scheduler(f)
		for i := 0; i < total; i++ {
			sum.Add(int64(c.Receive(f, sched)))
		}
		close(receiverDone)
		return nil
	})

	<-senderDone
	<-receiverDone

	want := int64(total * (total + 1) / 2)
	if got := sum.Load(); got != want {
		t.Fatalf("sum: got %d, want %d", got, want)
	}
}

func TestBoundedSignalModeParksReceiver(t *testing.T) {
	rt := manager.New(manager.WithWorkers(2))
	defer rt.Shutdown()

	sig := fsync.NewSignal()
	c := channel.NewBounded[string](2, sig)

	received := make(chan string, 1)
	rt.Spawn(func(f *fiber.Fiber) any {
		sched := rt.Scheduler(f)
		received <- c.Receive(f, sched)
		return nil
	})

	senderDone := make(chan struct{})
	rt.Spawn(func(f *fiber.Fiber) any {
		sched := rt.Scheduler(f)
		f.Yield()
		c.Send(f, sched, "hello")
		close(senderDone)
		return nil
	})

	<-senderDone
	if got := <-received; got != "hello" {
		t.Fatalf("received: got %q, want %q", got, "hello")
	}
}
