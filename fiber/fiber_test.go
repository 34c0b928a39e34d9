// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber_test

import (
	"errors"
	"testing"

	"code.hybscloud.com/fiber/fiber"
	"code.hybscloud.com/fiber/fibererr"
)

func TestCreateRunToCompletion(t *testing.T) {
	ran := false
	f := fiber.Create(func(f *fiber.Fiber) any {
		ran = true
		return nil
	})
	if f.State() != fiber.StateReady {
		t.Fatalf("new fiber state: got %v, want StateReady", f.State())
	}

	f.Resume()

	if !ran {
		t.Fatalf("fiber function did not run")
	}
	if f.State() != fiber.StateDone {
		t.Fatalf("finished fiber state: got %v, want StateDone", f.State())
	}
	select {
	case <-f.Done():
	default:
		t.Fatalf("Done channel not closed after completion")
	}
}

func TestYieldReturnsControlAndResumes(t *testing.T) {
	var steps []int
	f := fiber.Create(func(f *fiber.Fiber) any {
		steps = append(steps, 1)
		f.Yield()
		steps = append(steps, 2)
		f.Yield()
		steps = append(steps, 3)
		return nil
	})

	f.Resume()
	if f.State() != fiber.StateReady {
		t.Fatalf("after first yield: got %v, want StateReady", f.State())
	}
	f.Resume()
	if f.State() != fiber.StateReady {
		t.Fatalf("after second yield: got %v, want StateReady", f.State())
	}
	f.Resume()
	if f.State() != fiber.StateDone {
		t.Fatalf("after completion: got %v, want StateDone", f.State())
	}

	if len(steps) != 3 || steps[0] != 1 || steps[1] != 2 || steps[2] != 3 {
		t.Fatalf("steps out of order: %v", steps)
	}
}

func TestJoinBlocksUntilDone(t *testing.T) {
	f := fiber.Create(func(f *fiber.Fiber) any {
		f.Yield()
		return 7
	})

	type joined struct {
		result any
		err    error
	}
	joinRes := make(chan joined, 1)
	go func() {
		result, err := f.Join()
		joinRes <- joined{result, err}
	}()

	f.Resume() // runs until the Yield
	f.Resume() // runs to completion

	got := <-joinRes
	if got.err != nil {
		t.Fatalf("Join: %v", got.err)
	}
	if got.result != 7 {
		t.Fatalf("Join result: got %v, want 7", got.result)
	}
}

func TestSecondJoinFails(t *testing.T) {
	f := fiber.Create(func(f *fiber.Fiber) any { return nil })
	f.Resume()
	if _, err := f.Join(); err != nil {
		t.Fatalf("first Join: %v", err)
	}
	if _, err := f.Join(); !errors.Is(err, fibererr.ErrInvalidState) {
		t.Fatalf("second Join: got %v, want ErrInvalidState", err)
	}
}

func TestDetachThenJoinFails(t *testing.T) {
	f := fiber.Create(func(f *fiber.Fiber) any { return nil })
	if err := f.Detach(); err != nil {
		t.Fatalf("Detach: %v", err)
	}
	f.Resume()
	if _, err := f.Join(); !errors.Is(err, fibererr.ErrInvalidState) {
		t.Fatalf("Join after Detach: got %v, want ErrInvalidState", err)
	}
}

func TestRecycleResetsState(t *testing.T) {
	f := fiber.Create(func(f *fiber.Fiber) any { return nil })
	f.Resume()
	if err := f.Detach(); err != nil {
		t.Fatalf("Detach: %v", err)
	}

	gen := f.Generation()
	ran := false
	fiber.Recycle(f, func(f *fiber.Fiber) any { ran = true; return nil })

	if f.Generation() != gen+1 {
		t.Fatalf("Generation: got %d, want %d", f.Generation(), gen+1)
	}
	if f.State() != fiber.StateReady {
		t.Fatalf("recycled state: got %v, want StateReady", f.State())
	}

	f.Resume()
	if !ran {
		t.Fatalf("recycled fiber did not run its new function")
	}
}

func TestBeginWaitCommitWaitWake(t *testing.T) {
	type waitSlot struct{ marker int }
	var gotSlot *waitSlot
	f := fiber.Create(func(f *fiber.Fiber) any {
		f.BeginWait(&waitSlot{marker: 42})
		return nil
	})

	f.Resume()
	if f.State() != fiber.StateSavingStateToWait {
		t.Fatalf("after BeginWait: got %v, want StateSavingStateToWait", f.State())
	}
	slot, _ := f.Scratch().(*waitSlot)
	gotSlot = slot
	if gotSlot == nil || gotSlot.marker != 42 {
		t.Fatalf("Scratch: got %+v, want marker 42", gotSlot)
	}
	if f.Scratch() != nil {
		t.Fatalf("Scratch should clear after being read once")
	}

	f.CommitWait()
	if f.State() != fiber.StateWaiting {
		t.Fatalf("after CommitWait: got %v, want StateWaiting", f.State())
	}

	f.Wake()
	if f.State() != fiber.StateReady {
		t.Fatalf("after Wake: got %v, want StateReady", f.State())
	}

	f.Resume()
	if f.State() != fiber.StateDone {
		t.Fatalf("after resuming past the wait: got %v, want StateDone", f.State())
	}
}
