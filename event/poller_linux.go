// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package event

import (
	"container/heap"
	"sync"
	"time"

	"code.hybscloud.com/fiber/fibererr"
	"golang.org/x/sys/unix"
)

// maxFDs bounds the direct-indexed fd table, matching
// eventloop/poller_linux.go's fixed-array-over-map choice: a worker's
// event bridge is on the hot path of every blocking wait, and a direct
// index beats a map lookup.
const maxFDs = 65536

type fdInfo struct {
	registered bool
	waiter     *Waiter
}

// EpollBridge is the Linux implementation of Bridge, built on
// golang.org/x/sys/unix's epoll wrappers, grounded on
// eventloop/poller_linux.go's FastPoller.
type EpollBridge struct {
	epfd int

	mu     sync.Mutex
	fds    [maxFDs]fdInfo
	timers timerHeap
}

// NewEpollBridge creates an epoll-backed Bridge.
func NewEpollBridge() (*EpollBridge, error) {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	return &EpollBridge{epfd: fd}, nil
}

func toEpollEvents(events IOEvents) uint32 {
	var e uint32
	if events&EventRead != 0 {
		e |= unix.EPOLLIN
	}
	if events&EventWrite != 0 {
		e |= unix.EPOLLOUT
	}
	return e
}

func fromEpollEvents(e uint32) IOEvents {
	var events IOEvents
	if e&unix.EPOLLIN != 0 {
		events |= EventRead
	}
	if e&unix.EPOLLOUT != 0 {
		events |= EventWrite
	}
	if e&unix.EPOLLERR != 0 {
		events |= EventError
	}
	if e&unix.EPOLLHUP != 0 {
		events |= EventHangup
	}
	return events
}

// Register adds fd to the epoll set.
func (b *EpollBridge) Register(fd int, events IOEvents) error {
	if fd < 0 || fd >= maxFDs {
		return fibererr.ErrInvalidArgument
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fds[fd].registered {
		return fibererr.ErrInvalidState
	}
	ev := &unix.EpollEvent{Events: toEpollEvents(events) | unix.EPOLLONESHOT, Fd: int32(fd)}
	if err := unix.EpollCtl(b.epfd, unix.EPOLL_CTL_ADD, fd, ev); err != nil {
		return err
	}
	b.fds[fd].registered = true
	return nil
}

// Deregister removes fd from the epoll set.
func (b *EpollBridge) Deregister(fd int) error {
	if fd < 0 || fd >= maxFDs {
		return fibererr.ErrInvalidArgument
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.fds[fd].registered {
		return fibererr.ErrDescriptorClosed
	}
	_ = unix.EpollCtl(b.epfd, unix.EPOLL_CTL_DEL, fd, nil)
	b.fds[fd] = fdInfo{}
	return nil
}

// PollEvents performs one non-blocking epoll_wait pass plus due timers.
func (b *EpollBridge) PollEvents() int {
	return b.poll(0) + b.drainDue(time.Now())
}

// PollEventsBlocking blocks for up to timeout in epoll_wait, woken early
// by any ready fd.
func (b *EpollBridge) PollEventsBlocking(timeout time.Duration) int {
	ms := int(timeout / time.Millisecond)
	if ms <= 0 {
		ms = 1
	}
	woken := b.poll(ms)
	return woken + b.drainDue(time.Now())
}

func (b *EpollBridge) poll(timeoutMS int) int {
	var events [128]unix.EpollEvent
	n, err := unix.EpollWait(b.epfd, events[:], timeoutMS)
	if err != nil || n <= 0 {
		return 0
	}
	woken := 0
	b.mu.Lock()
	for i := 0; i < n; i++ {
		fd := int(events[i].Fd)
		if fd < 0 || fd >= maxFDs || !b.fds[fd].registered {
			continue
		}
		info := b.fds[fd]
		b.fds[fd] = fdInfo{}
		if info.waiter != nil {
			info.waiter.Ready <- fromEpollEvents(events[i].Events)
			woken++
		}
	}
	b.mu.Unlock()
	return woken
}

func (b *EpollBridge) drainDue(now time.Time) int {
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

// WaitForEvent registers w (by fd, or purely as a timer if w.FD < 0) and
// relies on a future PollEvents/PollEventsBlocking call to deliver
// readiness on w.Ready.
func (b *EpollBridge) WaitForEvent(w *Waiter) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if w.FD >= 0 && w.FD < maxFDs {
		b.fds[w.FD].waiter = w
	}
	if !w.Deadline.IsZero() {
		heap.Push(&b.timers, &timerEntry{deadline: w.Deadline, waiter: w})
	}
}

// Sleep blocks the calling goroutine for d.
func (b *EpollBridge) Sleep(d time.Duration) { time.Sleep(d) }

// FDClosed force-wakes any waiter on fd with EventHangup and deregisters
// it.
func (b *EpollBridge) FDClosed(fd int) {
	if fd < 0 || fd >= maxFDs {
		return
	}
	b.mu.Lock()
	info := b.fds[fd]
	b.fds[fd] = fdInfo{}
	b.mu.Unlock()
	if info.waiter != nil {
		info.waiter.Ready <- EventHangup
	}
	_ = unix.EpollCtl(b.epfd, unix.EPOLL_CTL_DEL, fd, nil)
}

// Close releases the epoll fd.
func (b *EpollBridge) Close() error {
	return unix.Close(b.epfd)
}
