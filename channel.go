package main

import (
	"sync"
	"time"
)

// channel is the broadcast bus for one token. Each subscription owns a
// bounded queue, so a slow reader only ever loses its own oldest messages.
type channel struct {
	token    string
	capacity int

	mu        sync.Mutex // Protects subs and idleSince
	subs      map[*subscription]struct{}
	idleSince time.Time
	now       func() time.Time
}

type subscription struct {
	send    chan string
	dropped int
}

func newChannel(token string, capacity int, now func() time.Time) *channel {
	return &channel{
		token:     token,
		capacity:  capacity,
		subs:      make(map[*subscription]struct{}),
		idleSince: now(),
		now:       now,
	}
}

func (c *channel) subscribe() *subscription {
	c.mu.Lock()
	defer c.mu.Unlock()

	sub := &subscription{send: make(chan string, c.capacity)}
	c.subs[sub] = struct{}{}
	return sub
}

// unsubscribe closes sub.send. Calling it twice is harmless.
func (c *channel) unsubscribe(sub *subscription) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.subs[sub]; !ok {
		return
	}
	delete(c.subs, sub)
	close(sub.send)
	if len(c.subs) == 0 {
		c.idleSince = c.now()
	}
}

// publish queues text for every subscriber and returns how many there were.
// It never blocks: a full queue loses its oldest message instead.
func (c *channel) publish(text string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	for sub := range c.subs {
		sub.push(text)
	}
	return len(c.subs)
}

func (c *channel) subscribers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

// idleFor reports how long the channel has had no subscribers, or false
// while anyone is subscribed.
func (c *channel) idleFor(now time.Time) (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.subs) > 0 {
		return 0, false
	}
	return now.Sub(c.idleSince), true
}

// push must be called with the owning channel's lock held.
func (s *subscription) push(text string) {
	for {
		select {
		case s.send <- text:
			return
		default:
		}
		select {
		case <-s.send:
			s.dropped++
			incr("drops", 1)
		default:
		}
	}
}
