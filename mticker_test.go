package main

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receiveTick(t *testing.T, sub *subscriber) time.Time {
	t.Helper()
	select {
	case tick, ok := <-sub.tick:
		require.True(t, ok, "tick channel closed")
		return tick
	case <-time.After(time.Second):
		t.Fatal("no tick received")
	}
	return time.Time{}
}

func TestMTickerSubscribe(t *testing.T) {
	ticker := newMTicker(clockwork.NewFakeClock(), 2*time.Second)
	defer ticker.stop()
	require.Equal(t, 0, ticker.len())

	ticker.subscribe()
	assert.Equal(t, 1, ticker.len())
}

func TestMTickerUnsubscribe(t *testing.T) {
	ticker := newMTicker(clockwork.NewFakeClock(), 2*time.Second)
	defer ticker.stop()
	sub := ticker.subscribe()
	require.Equal(t, 1, ticker.len())

	ticker.unsubscribe(sub)
	assert.Equal(t, 0, ticker.len())

	_, ok := <-sub.tick
	assert.False(t, ok, "tick channel should be closed")

	ticker.unsubscribe(sub)
}

func TestMTickerTick(t *testing.T) {
	clock := clockwork.NewFakeClock()
	ticker := newMTicker(clock, 2*time.Second)
	defer ticker.stop()
	sub1 := ticker.subscribe()
	sub2 := ticker.subscribe()
	sub3 := ticker.subscribe()

	clock.Advance(2 * time.Second)

	// All subscribers see the same tick.
	t1 := receiveTick(t, sub1)
	t2 := receiveTick(t, sub2)
	t3 := receiveTick(t, sub3)
	assert.Equal(t, t1, t2)
	assert.Equal(t, t1, t3)
}

func TestMTickerDropsUnreadTicks(t *testing.T) {
	clock := clockwork.NewFakeClock()
	ticker := newMTicker(clock, time.Second)
	defer ticker.stop()
	ticker.subscribe() // never read

	assert.Eventually(t, func() bool {
		clock.Advance(time.Second)
		ticker.mux.Lock()
		defer ticker.mux.Unlock()
		return ticker.dropped > 0
	}, time.Second, 10*time.Millisecond)
}

func TestMTickerStop(t *testing.T) {
	ticker := newMTicker(clockwork.NewFakeClock(), 2*time.Second)
	sub1 := ticker.subscribe()
	sub2 := ticker.subscribe()

	ticker.stop()

	_, ok1 := <-sub1.tick
	_, ok2 := <-sub2.tick
	assert.False(t, ok1 || ok2, "all tick channels should be closed")

	// Subscribing after stop yields a closed channel.
	_, ok := <-ticker.subscribe().tick
	assert.False(t, ok)

	// Unsubscribing an already closed subscriber and stopping twice are no-ops.
	ticker.unsubscribe(sub1)
	ticker.stop()
}
