// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ioshim specifies the contract a blocking-I/O interception layer
// would have to satisfy to make accept/read/write/connect fiber-aware,
// the way original_source/src/fiber_io.c's libc wrapper shims do by
// intercepting socket calls with dlsym(RTLD_NEXT, ...) and rerouting them
// through fiber_manager_wait_on_event. Implementing that interception is
// explicitly out of scope: this package only specifies the collaborator
// contract (FDTable, Hook) that the manager and event bridge are written
// against, so a future interception layer has somewhere to plug in.
package ioshim

import (
	"context"

	"code.hybscloud.com/fiber/event"
	"code.hybscloud.com/fiber/fibererr"
)

// FDTable tracks which file descriptors have been marked non-blocking and
// registered with an event.Bridge, mirroring fiber_io.c's per-fd
// bookkeeping (its fd_info array) without the libc call interception
// around it.
type FDTable interface {
	// MarkNonBlocking records that fd has been switched to non-blocking
	// mode and is safe to register with a Bridge.
	MarkNonBlocking(fd int) error
	// IsNonBlocking reports whether fd was previously marked.
	IsNonBlocking(fd int) bool
	// Forget drops fd's bookkeeping, called once the descriptor is
	// closed.
	Forget(fd int)
}

// Hook is the seam a libc-interception layer would call into: having
// already issued the underlying syscall and found it would block, it
// hands the fd to WaitReadable/WaitWritable and retries once the bridge
// reports readiness or ctx is done.
type Hook interface {
	WaitReadable(ctx context.Context, fd int) error
	WaitWritable(ctx context.Context, fd int) error
}

// BridgeHook implements Hook directly against an event.Bridge.
type BridgeHook struct {
	Bridge event.Bridge
}

// WaitReadable blocks until the bridge reports fd readable (from a later
// PollEvents/PollEventsBlocking call) or ctx is done. It returns
// fibererr.ErrInvalidState immediately only when Bridge is nil. A
// ChannelBridge has no fd readiness, so with one the wait ends through
// ctx or the 24-hour default deadline ChannelBridge assigns.
func (h *BridgeHook) WaitReadable(ctx context.Context, fd int) error {
	return h.wait(ctx, fd, event.EventRead)
}

// WaitWritable blocks until fd is writable or ctx is done.
func (h *BridgeHook) WaitWritable(ctx context.Context, fd int) error {
	return h.wait(ctx, fd, event.EventWrite)
}

func (h *BridgeHook) wait(ctx context.Context, fd int, events event.IOEvents) error {
	if h.Bridge == nil {
		return fibererr.ErrInvalidState
	}
	ready := make(chan event.IOEvents, 1)
	w := &event.Waiter{FD: fd, Events: events, Ready: ready}
	h.Bridge.WaitForEvent(w)
	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
