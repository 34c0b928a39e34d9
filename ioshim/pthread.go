// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ioshim

import (
	"sync"

	"code.hybscloud.com/fiber/fibererr"
)

// PthreadFacade stubs the handful of pthread entry points
// original_source/src/fiber_pthread.c overrides to interoperate with
// code that was written against pthreads. Everything here is a
// documented stub, not a working façade: only Once behaves exactly like
// its pthread counterpart, since that much needed no fiber awareness at
// all. Every other method returns fibererr.ErrInvalidState, matching the
// original's own TODO-and-return-0 stubs for pthread_key_create/
// pthread_setspecific/pthread_getspecific, except we refuse to pretend
// those succeeded.
type PthreadFacade struct {
	once sync.Once
}

// Once runs fn exactly once across the lifetime of the facade, matching
// pthread_once's contract.
func (p *PthreadFacade) Once(fn func()) {
	p.once.Do(fn)
}

// Key is an opaque handle for the unsupported thread-local-storage stubs
// below.
type Key uint64

// KeyCreate always fails: fiber-local storage belongs on fiber.Fiber's
// own Scratch field, not a pthread_key_t indirection.
func (p *PthreadFacade) KeyCreate(destructor func(any)) (Key, error) {
	return 0, fibererr.ErrInvalidState
}

// KeyDelete always fails; see KeyCreate.
func (p *PthreadFacade) KeyDelete(key Key) error {
	return fibererr.ErrInvalidState
}

// SetSpecific always fails; see KeyCreate.
func (p *PthreadFacade) SetSpecific(key Key, value any) error {
	return fibererr.ErrInvalidState
}

// GetSpecific always fails; see KeyCreate.
func (p *PthreadFacade) GetSpecific(key Key) (any, error) {
	return nil, fibererr.ErrInvalidState
}
