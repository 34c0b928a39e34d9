// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package event implements the poll/timer bridge contract (spec.md §4.5):
// the interface every maintenance fiber polls when it has no runnable
// fiber, plus a Linux epoll-backed implementation and a portable
// channel/timer fallback for platforms without epoll.
package event

import "time"

// IOEvents is a bitmask of readiness conditions, mirroring
// eventloop/poller_linux.go's IOEvents.
type IOEvents uint32

const (
	EventRead IOEvents = 1 << iota
	EventWrite
	EventError
	EventHangup
)

// Waiter is notified when a registered fd becomes ready, or a sleep
// deadline elapses.
type Waiter struct {
	FD       int
	Events   IOEvents
	Deadline time.Time // zero means "no timeout, fd readiness only"
	Ready    chan IOEvents
}

// Bridge is the poll/timer contract a manager.Worker's maintenance fiber
// drives. Every idle worker's maintenance fiber calls PollEvents and then
// PollEventsBlocking with the runtime's tick; nothing limits how many
// workers are blocked inside PollEventsBlocking at the same time.
type Bridge interface {
	// Register adds fd to the watched set for the given event mask.
	Register(fd int, events IOEvents) error
	// Deregister removes fd from the watched set.
	Deregister(fd int) error
	// PollEvents performs one non-blocking pass over ready descriptors and
	// timers, waking any waiters that are ready, and returns how many it
	// woke.
	PollEvents() int
	// PollEventsBlocking is like PollEvents but blocks up to timeout if
	// nothing is immediately ready.
	PollEventsBlocking(timeout time.Duration) int
	// WaitForEvent registers w and returns without blocking. A later
	// PollEvents/PollEventsBlocking call delivers the ready events on
	// w.Ready once w.FD becomes ready, or 0 once w.Deadline elapses. The
	// caller does its own waiting (a fiber parks itself via
	// fiber.BeginWait); this method never blocks.
	WaitForEvent(w *Waiter)
	// Sleep blocks the calling goroutine for d, independent of any fd.
	Sleep(d time.Duration)
	// FDClosed forces any waiter registered on fd to wake immediately with
	// EventHangup, then deregisters it — used when a descriptor is closed
	// out from under a pending wait.
	FDClosed(fd int)
	// Close releases the bridge's own resources (the epoll fd, for
	// EpollBridge).
	Close() error
}
