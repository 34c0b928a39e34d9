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

func TestUnboundedManySendersOneReceiver(t *testing.T) {
	rt := manager.New(manager.WithWorkers(4))
	defer rt.Shutdown()

	sig := fsync.NewSignal()
	c := channel.NewUnbounded[int](sig)

	const senders = 8
	const perSender = 200
	var sum atomic.Int64

	sendersDone := make(chan struct{}, senders)
	for i := 0; i < senders; i++ {
		rt.Spawn(func(f *fiber.Fiber) any {
			sched := rt.Scheduler(f)
			for j := 0; j < perSender; j++ {
				c.Send(sched, 1)
			}
			sendersDone <- struct{}{}
			return nil
		})
	}

	receiverDone := make(chan struct{})
	rt.Spawn(func(f *fiber.Fiber) any {
		sched := rt.Scheduler(f)
		for i := 0; i < senders*perSender; i++ {
			sum.Add(int64(c.Receive(f, sched)))
		}
		close(receiverDone)
		return nil
	})

	for i := 0; i < senders; i++ {
		<-sendersDone
	}
	<-receiverDone

	if got := sum.Load(); got != senders*perSender {
		t.Fatalf("sum: got %d, want %d", got, senders*perSender)
	}
}

func TestSPUnboundedPreservesOrder(t *testing.T) {
	rt := manager.New(manager.WithWorkers(2))
	defer rt.Shutdown()

	sig := fsync.NewSignal()
	c := channel.NewSPUnbounded[int](sig)

	const total = 1000
	senderDone := make(chan struct{})
	rt.Spawn(func(f *fiber.Fiber) any {
		sched := rt.Scheduler(f)
		for i := 0; i < total; i++ {
			c.Send(sched, i)
		}
		close(senderDone)
		return nil
	})

	mismatch := make(chan int, 1)
	receiverDone := make(chan struct{})
	rt.Spawn(func(f *fiber.Fiber) any {
		sched := rt.Scheduler(f)
		for i := 0; i < total; i++ {
			if got := c.Receive(f, sched); got != i {
				select {
				case mismatch <- got:
				default:
				}
			}
		}
		close(receiverDone)
		return nil
	})

	<-senderDone
	<-receiverDone
	select {
	case got := <-mismatch:
		t.Fatalf("order violated, saw %d out of sequence", got)
	default:
	}
}
