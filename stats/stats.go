// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package stats collects the per-worker counters spec.md §6 exposes
// externally, ported from original_source/include/fiber_manager.h's
// fiber_manager_stats_t.
package stats

import "code.hybscloud.com/atomix"

// Worker holds one worker's lock-free counters. Every field is safe to
// read and add to concurrently; a Worker is never copied after its first
// use (copying would duplicate the atomics, not share them).
type Worker struct {
	FibersCreated   atomix.Uint64
	FibersCompleted atomix.Uint64
	ParkEvents      atomix.Uint64
	StealsAttempted atomix.Uint64
	StealsSucceeded atomix.Uint64
	EventsPolled    atomix.Uint64
}

// Snapshot is a point-in-time, non-atomic copy of Worker for reporting.
type Snapshot struct {
	FibersCreated   uint64
	FibersCompleted uint64
	ParkEvents      uint64
	StealsAttempted uint64
	StealsSucceeded uint64
	EventsPolled    uint64
}

// Snapshot reads w's counters into a plain struct.
func (w *Worker) Snapshot() Snapshot {
	return Snapshot{
		FibersCreated:   w.FibersCreated.LoadAcquire(),
		FibersCompleted: w.FibersCompleted.LoadAcquire(),
		ParkEvents:      w.ParkEvents.LoadAcquire(),
		StealsAttempted: w.StealsAttempted.LoadAcquire(),
		StealsSucceeded: w.StealsSucceeded.LoadAcquire(),
		EventsPolled:    w.EventsPolled.LoadAcquire(),
	}
}

// All aggregates every worker's Snapshot, plus the sum across all workers,
// matching the original's all_stats accumulation semantics.
type All struct {
	Workers []Snapshot
	Total   Snapshot
}

// Aggregate builds an All from a set of workers.
func Aggregate(workers []*Worker) All {
	all := All{Workers: make([]Snapshot, len(workers))}
	for i, w := range workers {
		s := w.Snapshot()
		all.Workers[i] = s
		all.Total.FibersCreated += s.FibersCreated
		all.Total.FibersCompleted += s.FibersCompleted
		all.Total.ParkEvents += s.ParkEvents
		all.Total.StealsAttempted += s.StealsAttempted
		all.Total.StealsSucceeded += s.StealsSucceeded
		all.Total.EventsPolled += s.EventsPolled
	}
	return all
}
