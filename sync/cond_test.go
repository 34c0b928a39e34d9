// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fsync_test

import (
	"sync/atomic"
	"testing"

	"code.hybscloud.com/fiber/fiber"
	"code.hybscloud.com/fiber/manager"
	fsync "code.hybscloud.com/fiber/sync"
)

// boundedBuffer is the textbook two-condition-variable producer/consumer
// ring, guarded by a single Mutex.
type boundedBuffer struct {
	mu       *fsync.Mutex
	notEmpty *fsync.Cond
	notFull  *fsync.Cond
	items    []int
	cap      int
}

func newBoundedBuffer(capacity int) *boundedBuffer {
	return &boundedBuffer{
		mu:       fsync.NewMutex(),
		notEmpty: fsync.NewCond(),
		notFull:  fsync.NewCond(),
		cap:      capacity,
	}
}

func (b *boundedBuffer) put(f *fiber.Fiber, sched manager.Scheduler, v int) {
	b.mu.Lock(f, sched)
	for len(b.items) == b.cap {
		b.notFull.Wait(f, b.mu, sched)
	}
	b.items = append(b.items, v)
	b.notEmpty.Signal(sched)
	b.mu.Unlock(sched)
}

func (b *boundedBuffer) take(f *fiber.Fiber, sched manager.Scheduler) int {
	b.mu.Lock(f, sched)
	for len(b.items) == 0 {
		b.notEmpty.Wait(f, b.mu, sched)
	}
	v := b.items[0]
	b.items = b.items[1:]
	b.notFull.Signal(sched)
	b.mu.Unlock(sched)
	return v
}

func TestCondProducerConsumer(t *testing.T) {
	rt := manager.New(manager.WithWorkers(4))
	defer rt.Shutdown()

	const total = 2000
	buf := newBoundedBuffer(5)
	var sum atomic.Int64

	producerDone := make(chan struct{})
	rt.Spawn(func(f *fiber.Fiber) any {
		sched := rt.Scheduler(f)
		for i := 1; i <= total; i++ {
			buf.put(f, sched, i)
		}
		close(producerDone)
		return nil
	})

	consumerDone := make(chan struct{})
	rt.Spawn(func(f *fiber.Fiber) any {
		sched := rt.Scheduler(f)
		for i := 0; i < total; i++ {
			sum.Add(int64(buf.take(f, sched)))
		}
		close(consumerDone)
		return nil
	})

	<-producerDone
	<-consumerDone

	want := int64(total * (total + 1) / 2)
	if got := sum.Load(); got != want {
		t.Fatalf("sum: got %d, want %d", got, want)
	}
}

func TestCondBroadcastWakesAllWaiters(t *testing.T) {
	rt := manager.New(manager.WithWorkers(4))
	defer rt.Shutdown()

	m := fsync.NewMutex()
	cond := fsync.NewCond()
	var ready bool
	var woken atomic.Int64
	const waiters = 10

	done := make(chan struct{}, waiters)
	for i := 0; i < waiters; i++ {
		rt.Spawn(func(f *fiber.Fiber) any {
			sched := rt.Scheduler(f)
			m.Lock(f, sched)
			for !ready {
				cond.Wait(f, m, sched)
			}
			m.Unlock(sched)
			woken.Add(1)
			done <- struct{}{}
			return nil
		})
	}

	rt.Spawn(func(f *fiber.Fiber) any {
		sched := rt.Scheduler(f)
		f.Yield()
		f.Yield()
		m.Lock(f, sched)
		ready = true
		cond.Broadcast(sched)
		m.Unlock(sched)
		return nil
	})

	for i := 0; i < waiters; i++ {
		<-done
	}

	if got := woken.Load(); got != waiters {
		t.Fatalf("woken: got %d, want %d", got, waiters)
	}
}
