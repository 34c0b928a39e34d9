// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package deque_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"code.hybscloud.com/fiber/deque"
)

func TestPushPopLIFO(t *testing.T) {
	d := deque.New[int](32)
	for i := 0; i < 10; i++ {
		v := i
		d.PushBottom(&v)
	}
	for i := 9; i >= 0; i-- {
		v, ok := d.PopBottom()
		if !ok {
			t.Fatalf("PopBottom: empty too early at %d", i)
		}
		if *v != i {
			t.Fatalf("PopBottom: got %d, want %d", *v, i)
		}
	}
	if _, ok := d.PopBottom(); ok {
		t.Fatalf("PopBottom on empty deque should report false")
	}
}

func TestGrowBeyondInitialCapacity(t *testing.T) {
	d := deque.New[int](32)
	const n = 1000
	for i := 0; i < n; i++ {
		v := i
		d.PushBottom(&v)
	}
	if got := d.Len(); got != n {
		t.Fatalf("Len: got %d, want %d", got, n)
	}
	for i := n - 1; i >= 0; i-- {
		v, ok := d.PopBottom()
		if !ok || *v != i {
			t.Fatalf("PopBottom(%d): got %v,%v", i, v, ok)
		}
	}
}

func TestStealConcurrentWithOwner(t *testing.T) {
	const total = 5_000_000
	const stealers = 3

	d := deque.New[int](1024)
	var produced int64
	done := make(chan struct{})

	go func() {
		for i := 0; i < total; i++ {
			v := i
			d.PushBottom(&v)
			atomic.AddInt64(&produced, 1)
		}
		close(done)
	}()

	var collected int64
	var wg sync.WaitGroup
	wg.Add(stealers)
	for s := 0; s < stealers; s++ {
		go func() {
			defer wg.Done()
			for {
				if _, ok := d.Steal(); ok {
					atomic.AddInt64(&collected, 1)
				}
				select {
				case <-done:
					if atomic.LoadInt64(&collected) >= atomic.LoadInt64(&produced) {
						return
					}
				default:
				}
			}
		}()
	}

	<-done
	for {
		if _, ok := d.PopBottom(); ok {
			atomic.AddInt64(&collected, 1)
			continue
		}
		break
	}
	wg.Wait()

	// Every pushed item is accounted for exactly once between Steal and
	// PopBottom; double-counting would mean the last-element CAS race in
	// PopBottom/Steal is broken.
	if got := atomic.LoadInt64(&collected); got != total {
		t.Fatalf("collected %d items, want exactly the %d pushed", got, total)
	}
}
