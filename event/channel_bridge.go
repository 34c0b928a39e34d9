// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package event

import (
	"container/heap"
	"sync"
	"time"
)

// ChannelBridge is the portable fallback Bridge for platforms without an
// epoll-equivalent wired up: it supports Sleep and deadline-based waits
// exactly, but Register/WaitForEvent on an fd only ever wake on Deadline —
// there is no readiness polling. This is enough to keep the runtime
// correct (timers, PollEventsBlocking's tick) wherever EpollBridge isn't
// available, at the cost of not actually doing I/O readiness multiplexing.
type ChannelBridge struct {
	mu      sync.Mutex
	timers  timerHeap
	closed  map[int]bool
}

// NewChannelBridge creates a portable timer-only Bridge.
func NewChannelBridge() *ChannelBridge {
	return &ChannelBridge{closed: make(map[int]bool)}
}

type timerEntry struct {
	deadline time.Time
	waiter   *Waiter
}

type timerHeap []*timerEntry

func (h timerHeap) Len() int            { return len(h) }
func (h timerHeap) Less(i, j int) bool  { return h[i].deadline.Before(h[j].deadline) }
func (h timerHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *timerHeap) Push(x any)         { *h = append(*h, x.(*timerEntry)) }
func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

func (b *ChannelBridge) Register(fd int, events IOEvents) error { return nil }

func (b *ChannelBridge) Deregister(fd int) error { return nil }

func (b *ChannelBridge) PollEvents() int {
	return b.drainDue(time.Now())
}

func (b *ChannelBridge) PollEventsBlocking(timeout time.Duration) int {
	deadline := time.Now().Add(timeout)
	if woken := b.drainDue(time.Now()); woken > 0 {
		return woken
	}
	time.Sleep(time.Until(deadline))
	return b.drainDue(time.Now())
}

func (b *ChannelBridge) drainDue(now time.Time) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	woken := 0
	for len(b.timers) > 0 && !b.timers[0].deadline.After(now) {
		e := heap.Pop(&b.timers).(*timerEntry)
		e.waiter.Ready <- 0
		woken++
	}
	return woken
}

func (b *ChannelBridge) WaitForEvent(w *Waiter) {
	if w.Deadline.IsZero() {
		w.Deadline = time.Now().Add(24 * time.Hour)
	}
	b.mu.Lock()
	heap.Push(&b.timers, &timerEntry{deadline: w.Deadline, waiter: w})
	b.mu.Unlock()
}

func (b *ChannelBridge) Sleep(d time.Duration) { time.Sleep(d) }

func (b *ChannelBridge) FDClosed(fd int) {
	b.mu.Lock()
	b.closed[fd] = true
	b.mu.Unlock()
}

func (b *ChannelBridge) Close() error { return nil }
