// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package queue

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/fiber/fibererr"
	"code.hybscloud.com/fiber/hazard"
	"code.hybscloud.com/spin"
)

// MPMCLifo is an unbounded multi-producer multi-consumer LIFO stack: the
// manager's free-fiber pool, where a just-finished fiber's slot becomes the
// next one handed out for reuse (LIFO keeps the most recently retired slot
// hot in cache for the next Create call).
//
// Ported from original_source/include/mpmc_lifo.h's Treiber stack. The
// original protects against the ABA problem with a counter packed into a
// double-word CAS on head; this module has no portable double-word CAS in
// Go, so it substitutes hazard-pointer protection of head across the pop's
// CAS instead — spec.md's own design notes sanction exactly this
// substitution, and the hazard domain already exists for MPMCFifo.
type MPMCLifo[T any] struct {
	head atomix.Pointer[lifoNode[T]]
	dom  *hazard.Domain[lifoNode[T]]
}

type lifoNode[T any] struct {
	next atomix.Pointer[lifoNode[T]]
	data T
}

// NewMPMCLifo creates an empty unbounded MPMC LIFO.
func NewMPMCLifo[T any]() *MPMCLifo[T] {
	return &MPMCLifo[T]{
		dom: hazard.NewDomain[lifoNode[T]](func(*lifoNode[T]) {}),
	}
}

// Push adds elem to the top of the stack.
func (s *MPMCLifo[T]) Push(elem *T) error {
	n := &lifoNode[T]{data: *elem}
	var sw spin.Wait
	for {
		head := s.head.LoadAcquire()
		n.next.StoreRelaxed(head)
		if s.head.CompareAndSwap(head, n) {
			return nil
		}
		sw.Once()
	}
}

// Pop removes and returns the top element, or
// (zero-value, fibererr.ErrWouldBlock) if the stack is empty.
func (s *MPMCLifo[T]) Pop() (T, error) {
	rec := s.dom.Acquire()
	defer rec.Release()

	var sw spin.Wait
	for {
		head := s.head.LoadAcquire()
		if head == nil {
			var zero T
			return zero, fibererr.ErrWouldBlock
		}
		rec.Protect(0, head)
		if head != s.head.LoadAcquire() {
			sw.Once()
			continue
		}

		next := head.next.LoadAcquire()
		if s.head.CompareAndSwap(head, next) {
			elem := head.data
			rec.Clear(0)
			rec.Retire(head)
			return elem, nil
		}
		sw.Once()
	}
}
