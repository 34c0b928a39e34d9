// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package fibererr collects the sentinel errors shared across this module,
// in the same spirit as the teacher package's errors.go: thin aliases over
// code.hybscloud.com/iox so that callers of any fiber, queue, sync, or
// channel operation can classify an error with one set of predicates
// regardless of which package returned it.
package fibererr

import (
	"errors"

	"code.hybscloud.com/iox"
)

// ErrWouldBlock indicates a non-blocking operation could not proceed: a
// queue is full or empty, a mutex is held, a channel has no ready peer. It
// is a control flow signal, not a failure — callers retry, spin, or park
// rather than propagating it as an error. Alias of [iox.ErrWouldBlock] for
// ecosystem consistency.
var ErrWouldBlock = iox.ErrWouldBlock

// ErrInvalidArgument is returned when a caller-supplied parameter (an fd
// outside the event bridge's table) can never succeed regardless of retry.
var ErrInvalidArgument = errors.New("fiber: invalid argument")

// ErrOutOfMemory reports that an allocation could not be satisfied. No
// operation in this module returns it: the free-fiber LIFO and the linked
// queues grow without bound, and a full bounded queue reports
// ErrWouldBlock.
var ErrOutOfMemory = errors.New("fiber: out of memory")

// ErrDescriptorClosed is returned by the event bridge when an operation is
// attempted against a file descriptor that has already been deregistered or
// closed.
var ErrDescriptorClosed = errors.New("fiber: descriptor closed")

// ErrInvalidState is returned when an operation is attempted against an
// object in a state that does not support it: joining a detached fiber,
// registering an fd the event bridge already watches, using a pthread-façade
// entry point this module only stubs.
var ErrInvalidState = errors.New("fiber: invalid state")

// IsWouldBlock reports whether err indicates the operation would block.
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsSemantic reports whether err is a control flow signal rather than a
// failure. Delegates to [iox.IsSemantic].
func IsSemantic(err error) bool {
	return iox.IsSemantic(err)
}

// IsNonFailure reports whether err represents a non-failure condition
// (nil or a semantic signal such as ErrWouldBlock). Delegates to
// [iox.IsNonFailure].
func IsNonFailure(err error) bool {
	return iox.IsNonFailure(err)
}
