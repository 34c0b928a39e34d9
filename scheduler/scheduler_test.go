// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package scheduler_test

import (
	"testing"

	"code.hybscloud.com/fiber/fiber"
	"code.hybscloud.com/fiber/scheduler"
)

func TestDequeScheduleAndNext(t *testing.T) {
	d := scheduler.NewDeque(0, 8)
	const n = 10
	fibers := make([]*fiber.Fiber, n)
	for i := range fibers {
		fibers[i] = fiber.Create(func(*fiber.Fiber) any { return nil })
		d.Schedule(fibers[i])
	}

	seen := 0
	for {
		f, ok := d.Next()
		if !ok {
			break
		}
		_ = f
		seen++
	}
	if seen != n {
		t.Fatalf("seen: got %d, want %d", seen, n)
	}
}

func TestDequeLoadBalanceStealsFromPeer(t *testing.T) {
	a := scheduler.NewDeque(0, 8)
	b := scheduler.NewDeque(1, 8)
	peers := []scheduler.Scheduler{a, b}

	const n = 20
	for i := 0; i < n; i++ {
		b.Schedule(fiber.Create(func(*fiber.Fiber) any { return nil }))
	}

	moved := a.LoadBalance(peers)
	if moved == 0 {
		t.Fatalf("expected LoadBalance to steal at least one fiber from a busy peer")
	}

	total := 0
	for {
		if _, ok := a.Next(); !ok {
			break
		}
		total++
	}
	remaining := 0
	for {
		if _, ok := b.Next(); !ok {
			break
		}
		remaining++
	}
	if total+remaining != n {
		t.Fatalf("total+remaining: got %d, want %d", total+remaining, n)
	}
	if total != moved {
		t.Fatalf("fibers found on thief: got %d, want %d (moved)", total, moved)
	}
}

func TestDistScheduleAndNext(t *testing.T) {
	d := scheduler.NewDist(0)
	const n = 10
	for i := 0; i < n; i++ {
		d.Schedule(fiber.Create(func(*fiber.Fiber) any { return nil }))
	}
	seen := 0
	for {
		if _, ok := d.Next(); !ok {
			break
		}
		seen++
	}
	if seen != n {
		t.Fatalf("seen: got %d, want %d", seen, n)
	}
}

func TestDistLoadBalanceDrainsPeerDirectly(t *testing.T) {
	a := scheduler.NewDist(0)
	b := scheduler.NewDist(1)
	peers := []scheduler.Scheduler{a, b}

	const n = 20
	for i := 0; i < n; i++ {
		b.Schedule(fiber.Create(func(*fiber.Fiber) any { return nil }))
	}

	moved := a.LoadBalance(peers)
	if moved == 0 {
		t.Fatalf("expected LoadBalance to dequeue at least one fiber from a busy peer")
	}

	total := 0
	for {
		if _, ok := a.Next(); !ok {
			break
		}
		total++
	}
	if total != moved {
		t.Fatalf("fibers found on thief: got %d, want %d (moved)", total, moved)
	}
}
