// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package queue implements the lock-free FIFO and LIFO structures the fiber
// runtime is built from: the distributed-FIFO scheduler's run queue, a
// worker's wake queue, the free-fiber slot pool, and a channel's buffer.
//
// Bounded variants (SPSC, MPSC, MPMC) are direct Lamport/SCQ algorithms —
// fixed backing array, Enqueue/Dequeue never allocate, and Enqueue reports
// fibererr.ErrWouldBlock instead of growing. Unbounded variants (LinkedSPSC,
// LinkedMPSC, MPMCFifo, MPMCLifo) allocate one node per element and rely on
// package hazard for safe reclamation where more than one goroutine may be
// traversing the list.
//
// Producer/Consumer thread-safety is part of each type's contract, not
// enforced at runtime: using an SPSC queue from two producer goroutines
// corrupts it exactly as it would in the original.
//
// Dependencies: code.hybscloud.com/atomix for every atomic field,
// code.hybscloud.com/spin for backoff inside CAS retry loops, and
// code.hybscloud.com/fiber/hazard for the unbounded MPMC structures.
package queue
