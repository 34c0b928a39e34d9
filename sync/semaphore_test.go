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

func TestSemaphoreBoundsConcurrency(t *testing.T) {
	rt := manager.New(manager.WithWorkers(4))
	defer rt.Shutdown()

	const permits = 3
	sem := fsync.NewSemaphore(permits)

	var inside atomic.Int64
	var maxInside atomic.Int64
	const fibers = 30

	done := make(chan struct{}, fibers)
	for i := 0; i < fibers; i++ {
		rt.Spawn(func(f *fiber.Fiber) any {
			sched := rt.Scheduler(f)
			sem.Wait(f, sched)
			n := inside.Add(1)
			for {
				m := maxInside.Load()
				if n <= m || maxInside.CompareAndSwap(m, n) {
					break
				}
			}
			f.Yield()
			inside.Add(-1)
			sem.Post(sched)
			done <- struct{}{}
			return nil
		})
	}

	for i := 0; i < fibers; i++ {
		<-done
	}

	if got := maxInside.Load(); got > permits {
		t.Fatalf("observed %d fibers inside the critical section, want <= %d", got, permits)
	}
}

func TestSemaphoreTryWait(t *testing.T) {
	sem := fsync.NewSemaphore(1)
	if !sem.TryWait() {
		t.Fatalf("TryWait on a permit should succeed")
	}
	if sem.TryWait() {
		t.Fatalf("TryWait with no permits should fail")
	}
	if got := sem.Value(); got != 0 {
		t.Fatalf("Value: got %d, want 0", got)
	}
}
