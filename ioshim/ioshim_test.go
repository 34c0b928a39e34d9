// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ioshim_test

import (
	"context"
	"testing"
	"time"

	"code.hybscloud.com/fiber/event"
	"code.hybscloud.com/fiber/fibererr"
	"code.hybscloud.com/fiber/ioshim"
)

func TestBridgeHookWaitReadableBlocksWithoutReadiness(t *testing.T) {
	b := event.NewChannelBridge()
	defer b.Close()
	h := &ioshim.BridgeHook{Bridge: b}

	// ChannelBridge has no fd readiness and nothing polls it here, so
	// WaitReadable must still be waiting after 10ms.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- h.WaitReadable(ctx, 3) }()

	select {
	case err := <-errCh:
		t.Fatalf("WaitReadable returned before any readiness or deadline: %v", err)
	case <-time.After(10 * time.Millisecond):
	}
}

func TestBridgeHookWaitReadableRespectsContextCancellation(t *testing.T) {
	b := event.NewChannelBridge()
	defer b.Close()
	h := &ioshim.BridgeHook{Bridge: b}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- h.WaitWritable(ctx, 4) }()

	cancel()
	select {
	case err := <-errCh:
		if err != context.Canceled {
			t.Fatalf("WaitWritable: got %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("WaitWritable never observed context cancellation")
	}
}

func TestBridgeHookNilBridgeFails(t *testing.T) {
	h := &ioshim.BridgeHook{}
	if err := h.WaitReadable(context.Background(), 0); err != fibererr.ErrInvalidState {
		t.Fatalf("WaitReadable with nil Bridge: got %v, want ErrInvalidState", err)
	}
}

func TestPthreadFacadeOnceRunsExactlyOnce(t *testing.T) {
	var p ioshim.PthreadFacade
	count := 0
	for i := 0; i < 5; i++ {
		p.Once(func() { count++ })
	}
	if count != 1 {
		t.Fatalf("Once ran %d times, want 1", count)
	}
}

func TestPthreadFacadeStubsReturnInvalidState(t *testing.T) {
	var p ioshim.PthreadFacade
	if _, err := p.KeyCreate(nil); err != fibererr.ErrInvalidState {
		t.Fatalf("KeyCreate: got %v, want ErrInvalidState", err)
	}
	if err := p.KeyDelete(0); err != fibererr.ErrInvalidState {
		t.Fatalf("KeyDelete: got %v, want ErrInvalidState", err)
	}
	if err := p.SetSpecific(0, 1); err != fibererr.ErrInvalidState {
		t.Fatalf("SetSpecific: got %v, want ErrInvalidState", err)
	}
	if _, err := p.GetSpecific(0); err != fibererr.ErrInvalidState {
		t.Fatalf("GetSpecific: got %v, want ErrInvalidState", err)
	}
}
