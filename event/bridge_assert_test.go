// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package event_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"code.hybscloud.com/fiber/event"
)

func TestChannelBridgeRegisterDeregisterAreNoops(t *testing.T) {
	b := event.NewChannelBridge()
	defer b.Close()

	require.NoError(t, b.Register(5, event.EventRead))
	require.NoError(t, b.Deregister(5))
}

func TestChannelBridgeImplementsBridge(t *testing.T) {
	var b event.Bridge = event.NewChannelBridge()
	defer b.Close()
	assert.NotNil(t, b)
}

func TestChannelBridgeFDClosedDoesNotPanic(t *testing.T) {
	b := event.NewChannelBridge()
	defer b.Close()
	assert.NotPanics(t, func() { b.FDClosed(7) })
}

func TestChannelBridgeMultipleTimersFireInDeadlineOrder(t *testing.T) {
	b := event.NewChannelBridge()
	defer b.Close()

	now := time.Now()
	var order []int
	waiters := []*event.Waiter{
		{Deadline: now.Add(30 * time.Millisecond), Ready: make(chan event.IOEvents, 1)},
		{Deadline: now.Add(10 * time.Millisecond), Ready: make(chan event.IOEvents, 1)},
		{Deadline: now.Add(20 * time.Millisecond), Ready: make(chan event.IOEvents, 1)},
	}
	for _, w := range waiters {
		b.WaitForEvent(w)
	}

	// Timers fire only from a poll; poll in short steps so that the
	// timers, 10ms apart, come due in separate polls.
	deadline := time.After(time.Second)
	for len(order) < len(waiters) {
		b.PollEventsBlocking(time.Millisecond)
		select {
		case <-waiters[0].Ready:
			order = append(order, 0)
		case <-waiters[1].Ready:
			order = append(order, 1)
		case <-waiters[2].Ready:
			order = append(order, 2)
		case <-deadline:
			t.Fatalf("timer %d never fired", len(order))
		default:
		}
	}
	require.Equal(t, []int{1, 2, 0}, order)
}
