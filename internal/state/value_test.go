package state

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recv[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "channel closed")
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for value")
	}
	var zero T
	return zero
}

// go test -v --run TestValueGetSetUpdate
func TestValueGetSetUpdate(t *testing.T) {
	v := NewValue(1)
	assert.Equal(t, 1, v.Get())

	v.Set(5)
	assert.Equal(t, 5, v.Get())

	got := v.Update(func(n int) int { return n * 2 })
	assert.Equal(t, 10, got)
	assert.Equal(t, 10, v.Get())
}

// go test -v --run TestValueSubscribe
func TestValueSubscribe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	v := NewValue("a")
	ch := v.Subscribe(ctx)
	assert.Equal(t, "a", recv(t, ch))

	v.Set("b")
	assert.Equal(t, "b", recv(t, ch))
}

// go test -v --run TestValueConflates
func TestValueConflates(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	v := NewValue(0)
	ch := v.Subscribe(ctx)

	// Set never blocks on an idle subscriber.
	for i := 1; i <= 100; i++ {
		v.Set(i)
	}
	assert.Equal(t, 100, recv(t, ch))

	select {
	case extra := <-ch:
		t.Fatalf("unexpected stale value %d", extra)
	default:
	}
}

// go test -v --run TestValueUnsubscribe
func TestValueUnsubscribe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	v := NewValue(0)
	ch := v.Subscribe(ctx)
	recv(t, ch)

	cancel()
	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-ch:
			return !ok
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)

	v.Set(1)
	assert.Equal(t, 1, v.Get())
}
