// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package stats_test

import (
	"testing"

	"code.hybscloud.com/fiber/stats"
)

func TestAggregateSumsAcrossWorkers(t *testing.T) {
	w1 := &stats.Worker{}
	w2 := &stats.Worker{}

	w1.FibersCreated.StoreRelease(3)
	w1.FibersCompleted.StoreRelease(2)
	w2.FibersCreated.StoreRelease(5)
	w2.StealsSucceeded.StoreRelease(7)

	all := stats.Aggregate([]*stats.Worker{w1, w2})

	if len(all.Workers) != 2 {
		t.Fatalf("Workers: got %d entries, want 2", len(all.Workers))
	}
	if all.Workers[0].FibersCreated != 3 || all.Workers[1].FibersCreated != 5 {
		t.Fatalf("per-worker snapshots not preserved: %+v", all.Workers)
	}
	if all.Total.FibersCreated != 8 {
		t.Fatalf("Total.FibersCreated: got %d, want 8", all.Total.FibersCreated)
	}
	if all.Total.FibersCompleted != 2 {
		t.Fatalf("Total.FibersCompleted: got %d, want 2", all.Total.FibersCompleted)
	}
	if all.Total.StealsSucceeded != 7 {
		t.Fatalf("Total.StealsSucceeded: got %d, want 7", all.Total.StealsSucceeded)
	}
}

func TestAggregateEmpty(t *testing.T) {
	all := stats.Aggregate(nil)
	if len(all.Workers) != 0 {
		t.Fatalf("Workers: got %d entries, want 0", len(all.Workers))
	}
	if all.Total != (stats.Snapshot{}) {
		t.Fatalf("Total: got %+v, want zero value", all.Total)
	}
}
