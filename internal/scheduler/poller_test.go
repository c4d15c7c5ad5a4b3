package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// go test -v --run TestPollerTicks
func TestPollerTicks(t *testing.T) {
	var calls atomic.Int32
	p := &Poller{Interval: 10 * time.Millisecond}
	p.Start(context.Background(), func(context.Context) { calls.Add(1) })
	defer p.Stop()

	assert.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	assert.True(t, p.Running())
}

// go test -v --run TestPollerImmediate
func TestPollerImmediate(t *testing.T) {
	ran := make(chan struct{}, 1)
	p := &Poller{Interval: time.Hour, Immediate: true}
	p.Start(context.Background(), func(context.Context) {
		select {
		case ran <- struct{}{}:
		default:
		}
	})
	defer p.Stop()

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("immediate run did not happen")
	}
}

// go test -v --run TestPollerStop
func TestPollerStop(t *testing.T) {
	var calls atomic.Int32
	p := &Poller{Interval: 5 * time.Millisecond}
	p.Start(context.Background(), func(context.Context) { calls.Add(1) })
	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, time.Second, time.Millisecond)

	p.Stop()
	assert.False(t, p.Running())
	after := calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, calls.Load(), "no ticks after Stop")

	p.Stop() // idempotent
}

// go test -v --run TestPollerRestartReplacesLoop
func TestPollerRestartReplacesLoop(t *testing.T) {
	var first, second atomic.Int32
	p := &Poller{Interval: 5 * time.Millisecond}

	p.Start(context.Background(), func(context.Context) { first.Add(1) })
	assert.Eventually(t, func() bool { return first.Load() >= 1 }, time.Second, time.Millisecond)

	p.Start(context.Background(), func(context.Context) { second.Add(1) })
	defer p.Stop()
	frozen := first.Load()

	assert.Eventually(t, func() bool { return second.Load() >= 2 }, time.Second, time.Millisecond)
	assert.Equal(t, frozen, first.Load())
}

// go test -v --run TestPollerParentContext
func TestPollerParentContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Poller{Interval: 5 * time.Millisecond}
	p.Start(ctx, func(context.Context) {})

	cancel()
	assert.Eventually(t, func() bool { return !p.Running() }, time.Second, time.Millisecond)
}
