// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package hazard implements hazard-pointer-protected memory reclamation for
// the lock-free structures in package queue: the unbounded MPMC FIFO and the
// MPMC LIFO both hand a node to hazard.Domain instead of freeing it directly,
// so a thread that is mid-traversal of a node never has it reclaimed out from
// under it.
//
// This is a direct port of the scheme in original_source/include/hazard_pointer.h
// (Hart/McKenney-style hazard pointers, as used by brianwatling/libfiber's
// lock-free FIFO and LIFO), generalized with Go generics in place of void*.
package hazard

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// slotsPerRecord is K in the retire-threshold formula R = 2*N*K: the number
// of hazard pointer slots each participating goroutine gets. Two slots cover
// every algorithm wired into this module (a FIFO traversal never needs to
// protect more than "current" and "next" at once).
const slotsPerRecord = 2

// Domain owns the set of per-goroutine records for one family of nodes (one
// Domain per queue instance, not one global domain, matching the original's
// per-queue hazard pointer lists).
type Domain[T any] struct {
	records atomix.Pointer[record[T]] // head of the lock-free record list
	count   atomix.Uint64             // number of joined records, for the retire threshold
	reclaim func(*T)
}

// NewDomain creates a hazard-pointer domain that reclaims retired nodes with
// reclaim once no announced hazard pointer protects them.
func NewDomain[T any](reclaim func(*T)) *Domain[T] {
	if reclaim == nil {
		reclaim = func(*T) {}
	}
	return &Domain[T]{reclaim: reclaim}
}

type record[T any] struct {
	next    atomix.Pointer[record[T]]
	active  atomix.Bool
	hazards [slotsPerRecord]atomix.Pointer[T]
	retired []*T
}

// Record is a goroutine's handle into a Domain. The queues in package
// queue acquire a Record at the start of each Enqueue/Dequeue/Pop that
// traverses nodes and release it on return; Acquire reuses an inactive
// record before linking a new one, so the list grows only with the peak
// number of concurrent holders.
type Record[T any] struct {
	dom *Domain[T]
	rec *record[T]
}

// Acquire finds a free (inactive) record to reuse, or links in a new one,
// then marks it active. This mirrors hazard_pointer.h's allocate_hazard_record:
// reuse before growth keeps the list from growing unbounded across worker
// churn.
func (d *Domain[T]) Acquire() *Record[T] {
	for cur := d.records.LoadAcquire(); cur != nil; cur = cur.next.LoadAcquire() {
		if cur.active.LoadAcquire() {
			continue
		}
		if cur.active.CompareAndSwap(false, true) {
			return &Record[T]{dom: d, rec: cur}
		}
	}

	rec := &record[T]{}
	rec.active.StoreRelaxed(true)
	for {
		head := d.records.LoadAcquire()
		rec.next.StoreRelaxed(head)
		if d.records.CompareAndSwap(head, rec) {
			break
		}
	}
	d.count.AddAcqRel(1)
	return &Record[T]{dom: d, rec: rec}
}

// Release marks the record inactive, making it eligible for reuse by a
// future Acquire, and drops its hazard pointers. It does not unlink the
// record: the list is append-only, matching the original's design (unlinking
// under concurrent traversal is the harder, unneeded problem).
func (r *Record[T]) Release() {
	for i := range r.rec.hazards {
		r.rec.hazards[i].StoreRelease(nil)
	}
	r.rec.active.StoreRelease(false)
}

// Protect announces that ptr must not be reclaimed while slot holds it.
// Callers re-validate the protected pointer after calling Protect (the
// standard hazard-pointer publish-then-validate pattern): the point isn't
// that Protect prevents ptr from changing, only that it prevents the node it
// already points to from being freed.
func (r *Record[T]) Protect(slot int, ptr *T) {
	r.rec.hazards[slot].StoreRelease(ptr)
}

// Clear un-announces slot.
func (r *Record[T]) Clear(slot int) {
	r.rec.hazards[slot].StoreRelease(nil)
}

// Retire queues ptr for reclamation once no hazard pointer protects it. Once
// the local retire list crosses the threshold, Retire scans and reclaims
// everything it safely can.
func (r *Record[T]) Retire(ptr *T) {
	r.rec.retired = append(r.rec.retired, ptr)
	threshold := int(2 * r.dom.count.LoadAcquire() * slotsPerRecord)
	if threshold < 1 {
		threshold = 1
	}
	if len(r.rec.retired) >= threshold {
		r.scan()
	}
}

// scan is original_source's hazard_pointer_scan: collect every currently
// announced hazard pointer across all active records, then reclaim any
// locally retired node that isn't among them.
func (r *Record[T]) scan() {
	protected := make(map[*T]struct{}, int(r.dom.count.LoadAcquire())*slotsPerRecord)
	var sw spin.Wait
	for cur := r.dom.records.LoadAcquire(); cur != nil; cur = cur.next.LoadAcquire() {
		for i := range cur.hazards {
			if p := cur.hazards[i].LoadAcquire(); p != nil {
				protected[p] = struct{}{}
			}
		}
		sw.Once()
	}

	kept := r.rec.retired[:0]
	for _, p := range r.rec.retired {
		if _, still := protected[p]; still {
			kept = append(kept, p)
			continue
		}
		r.dom.reclaim(p)
	}
	r.rec.retired = kept
}
