package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/united-manufacturing-hub/network-observer/cmd/network-observer/shared"
)

func newTestBroadcaster(interval time.Duration) *Broadcaster {
	return NewBroadcaster(NewAggregator(NewRequestTracker(), staticStatuses{}), interval)
}

func TestBroadcaster_InitialPushIsImmediate(t *testing.T) {
	// A long interval guarantees the first event cannot come from a tick.
	broadcaster := newTestBroadcaster(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := make(chan shared.Snapshot, 1)
	done := make(chan error, 1)
	go func() {
		done <- broadcaster.Subscribe(ctx, func(snapshot shared.Snapshot) error {
			events <- snapshot
			return nil
		})
	}()

	select {
	case <-events:
	case <-time.After(time.Second):
		t.Fatal("no initial snapshot within one second of subscribing")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("subscriber loop did not stop after cancellation")
	}
}

func TestBroadcaster_PushesPerTick(t *testing.T) {
	const interval = 50 * time.Millisecond
	broadcaster := newTestBroadcaster(interval)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	arrivals := make(chan time.Time, 16)
	go func() {
		_ = broadcaster.Subscribe(ctx, func(shared.Snapshot) error {
			arrivals <- time.Now()
			return nil
		})
	}()

	var times []time.Time
	for len(times) < 4 {
		select {
		case arrived := <-arrivals:
			times = append(times, arrived)
		case <-time.After(time.Second):
			t.Fatalf("only %d events arrived within one second", len(times))
		}
	}
	cancel()

	// tick spacing after the initial event, with generous scheduler slack
	for i := 2; i < len(times); i++ {
		gap := times[i].Sub(times[i-1])
		assert.Greater(t, gap, interval/4)
		assert.Less(t, gap, 4*interval)
	}
}

func TestBroadcaster_NoEventsAfterCancellation(t *testing.T) {
	const interval = 30 * time.Millisecond
	broadcaster := newTestBroadcaster(interval)

	ctx, cancel := context.WithCancel(context.Background())

	events := make(chan shared.Snapshot, 16)
	done := make(chan error, 1)
	go func() {
		done <- broadcaster.Subscribe(ctx, func(snapshot shared.Snapshot) error {
			events <- snapshot
			return nil
		})
	}()

	// let a few ticks happen, then disconnect
	time.Sleep(4 * interval)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * interval):
		t.Fatal("subscriber loop not released within one tick of cancellation")
	}

	delivered := len(events)
	time.Sleep(4 * interval)
	assert.Equal(t, delivered, len(events), "events produced after cancellation")
}

func TestBroadcaster_PushFailureEndsOnlyThatSubscriber(t *testing.T) {
	const interval = 30 * time.Millisecond
	broadcaster := newTestBroadcaster(interval)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	brokenPipe := errors.New("broken pipe")
	failing := make(chan error, 1)
	go func() {
		delivered := 0
		failing <- broadcaster.Subscribe(ctx, func(shared.Snapshot) error {
			delivered++
			if delivered > 1 {
				return brokenPipe
			}
			return nil
		})
	}()

	healthyEvents := make(chan shared.Snapshot, 32)
	go func() {
		_ = broadcaster.Subscribe(ctx, func(snapshot shared.Snapshot) error {
			healthyEvents <- snapshot
			return nil
		})
	}()

	select {
	case err := <-failing:
		assert.ErrorIs(t, err, brokenPipe)
	case <-time.After(time.Second):
		t.Fatal("failing subscriber was not terminated")
	}

	// the healthy subscriber keeps receiving fresh events
	for {
		select {
		case <-healthyEvents:
			continue
		default:
		}
		break
	}
	select {
	case <-healthyEvents:
	case <-time.After(time.Second):
		t.Fatal("healthy subscriber stopped receiving after the other one failed")
	}
}

func TestBroadcaster_DefaultInterval(t *testing.T) {
	broadcaster := newTestBroadcaster(0)
	assert.Equal(t, time.Second, broadcaster.Interval())
}
