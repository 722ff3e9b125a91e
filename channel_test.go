package main

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelSubscribe(t *testing.T) {
	c := newChannel("monkey", 10, time.Now)
	require.Equal(t, 0, c.subscribers())

	c.subscribe()
	c.subscribe()
	assert.Equal(t, 2, c.subscribers())
}

func TestChannelPublish(t *testing.T) {
	c := newChannel("monkey", 10, time.Now)
	sub1 := c.subscribe()
	sub2 := c.subscribe()

	for _, text := range []string{"banana 1", "banana 2", "banana 3"} {
		assert.Equal(t, 2, c.publish(text))
	}

	// Every subscriber reads everything, in publish order.
	for _, sub := range []*subscription{sub1, sub2} {
		assert.Equal(t, "banana 1", <-sub.send)
		assert.Equal(t, "banana 2", <-sub.send)
		assert.Equal(t, "banana 3", <-sub.send)
	}
}

func TestChannelPublishWithoutSubscribers(t *testing.T) {
	c := newChannel("monkey", 10, time.Now)
	assert.Equal(t, 0, c.publish("nobody home"))

	sub := c.subscribe()
	c.unsubscribe(sub)
	assert.Equal(t, 0, c.publish("still nobody"))
}

func TestChannelDropsOldestWhenFull(t *testing.T) {
	before := count("drops")
	c := newChannel("monkey", 3, time.Now)
	slow := c.subscribe()
	fast := c.subscribe()

	got := []string{}
	for _, text := range []string{"1", "2", "3", "4", "5"} {
		c.publish(text)
		got = append(got, <-fast.send)
	}

	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, got)
	assert.Len(t, slow.send, 3)
	assert.Equal(t, "3", <-slow.send)
	assert.Equal(t, "4", <-slow.send)
	assert.Equal(t, "5", <-slow.send)
	assert.Equal(t, 2, slow.dropped)
	assert.Equal(t, 0, fast.dropped)
	assert.Equal(t, int64(2), count("drops")-before)
}

func TestChannelUnsubscribe(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := newChannel("monkey", 10, clock.Now)
	sub := c.subscribe()

	_, idle := c.idleFor(clock.Now())
	require.False(t, idle)

	clock.Advance(time.Minute)
	c.unsubscribe(sub)
	assert.Equal(t, 0, c.subscribers())

	_, ok := <-sub.send
	assert.False(t, ok, "subscription channel should be closed")

	// A second unsubscribe must not panic on the closed channel.
	c.unsubscribe(sub)

	clock.Advance(5 * time.Minute)
	d, idle := c.idleFor(clock.Now())
	assert.True(t, idle)
	assert.Equal(t, 5*time.Minute, d)
}
