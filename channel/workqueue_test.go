// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package channel_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"code.hybscloud.com/fiber/channel"
)

func TestWorkQueueFirstPusherDrainsAll(t *testing.T) {
	wq := channel.NewWorkQueue[int]()

	var wg sync.WaitGroup
	var starters atomic.Int64
	const pushers = 16

	wg.Add(pushers)
	for i := 0; i < pushers; i++ {
		go func() {
			defer wg.Done()
			if wq.Push(1) {
				starters.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := starters.Load(); got != 1 {
		t.Fatalf("exactly one pusher should be told to start working, got %d", got)
	}

	var drained int64
	for {
		_, ok := wq.GetWork()
		if !ok {
			break
		}
		drained++
	}
	if drained != pushers {
		t.Fatalf("drained: got %d, want %d", drained, pushers)
	}
}

func TestWorkQueueSecondWaveAfterDrain(t *testing.T) {
	wq := channel.NewWorkQueue[int]()

	if !wq.Push(1) {
		t.Fatalf("first push into an idle queue must start working")
	}
	if _, ok := wq.GetWork(); !ok {
		t.Fatalf("expected one item of work")
	}
	if _, ok := wq.GetWork(); ok {
		t.Fatalf("queue should be drained")
	}

	if !wq.Push(2) {
		t.Fatalf("push into a freshly drained queue must start working again")
	}
	v, ok := wq.GetWork()
	if !ok || v != 2 {
		t.Fatalf("GetWork: got (%d, %v), want (2, true)", v, ok)
	}
}
