// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package fsync implements the fiber-aware synchronization primitives of
// spec.md §4.7/§4.8: Signal, MultiSignal, Mutex, RWLock, Cond, Semaphore,
// Barrier, and Spinlock. Every blocking operation takes the calling fiber
// and the scheduler to re-enqueue it on, the same explicit-manager-argument
// shape original_source's fiber_mutex_lock(manager, mutex) style API uses —
// a fiber here has no ambient "current fiber" the way a pthread does, so
// the caller (always running from inside its own fiber.Func) supplies both.
//
// A fiber that must wait calls Fiber.BeginWait with a *manager.DeferredAction
// describing what to do once the park is safely committed — release the
// lock it held, push itself onto a wait list, or both — so the release and
// the park are atomic with respect to a racing waker.
package fsync
