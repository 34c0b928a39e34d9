// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package channel

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/fiber/queue"
)

// WorkQueue is an MPSC work-distribution queue where the first pusher
// into an empty queue is told to become the worker, matching
// original_source/src/work_queue.c's in_count/out_count handoff. Every
// other pusher is told its item is already being handled.
type WorkQueue[T any] struct {
	q        *queue.LinkedMPSC[T]
	inCount  atomix.Int64
	outCount atomix.Int64
}

// NewWorkQueue creates an empty WorkQueue.
func NewWorkQueue[T any]() *WorkQueue[T] {
	return &WorkQueue[T]{q: queue.NewLinkedMPSC[T]()}
}

// Push enqueues item. It reports true (WORK_QUEUE_START_WORKING) if the
// caller is the first to push into an idle queue and must now drain it
// via GetWork; false (WORK_QUEUE_QUEUED) means another fiber is already
// draining it.
func (wq *WorkQueue[T]) Push(item T) bool {
	n := wq.inCount.AddAcqRel(1)
	_ = wq.q.Enqueue(&item)
	return n == 1
}

// GetWork returns the next item, or reports false once the queue is
// confirmed drained — the caller must stop calling GetWork at that point,
// since a racing Push may already have designated a different fiber as
// the new worker.
func (wq *WorkQueue[T]) GetWork() (T, bool) {
	for {
		if v, err := wq.q.Dequeue(); err == nil {
			wq.outCount.AddAcqRel(1)
			return v, true
		}
		if wq.outCount.LoadAcquire() == wq.inCount.LoadAcquire() {
			old := wq.outCount.SwapAcqRel(0)
			if wq.inCount.AddAcqRel(-old) == 0 {
				var zero T
				return zero, false
			}
		}
	}
}
