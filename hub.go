package main

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

const defaultChannelCapacity = 100

// hub maps tokens to channels. Nothing done under the lock touches the
// network: channel publish only queues into buffered subscriber queues.
type hub struct {
	mu       sync.Mutex
	channels channels

	capacity int
	clock    clockwork.Clock
	log      *zap.Logger
}

type channels map[string]*channel

func newHub(capacity int, clock clockwork.Clock, log *zap.Logger) *hub {
	if capacity < 1 {
		capacity = defaultChannelCapacity
	}
	return &hub{
		channels: make(channels),
		capacity: capacity,
		clock:    clock,
		log:      log,
	}
}

func (h *hub) getOrCreate(token string) *channel {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.getOrCreateLocked(token)
}

func (h *hub) getOrCreateLocked(token string) *channel {
	if c, ok := h.channels[token]; ok {
		return c
	}
	c := newChannel(token, h.capacity, h.clock.Now)
	h.channels[token] = c
	incr("channels", 1)
	return c
}

// lookup never creates a channel, so a token nobody has connected to
// stays unknown to publishers.
func (h *hub) lookup(token string) (*channel, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.channels[token]
	return c, ok
}

// subscribe attaches a new subscriber to token's channel, creating the
// channel if needed. Both steps happen under the hub lock so an eviction
// pass cannot drop the channel in between.
func (h *hub) subscribe(token string) (*channel, *subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c := h.getOrCreateLocked(token)
	return c, c.subscribe()
}

// publish delivers text to token's channel if the token is known. The
// lookup and the fan-out share the hub lock, so an eviction pass cannot
// strand the message on a channel that has just been dropped.
func (h *hub) publish(token, text string) (int, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.channels[token]
	if !ok {
		return 0, false
	}
	return c.publish(text), true
}

func (h *hub) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.channels)
}

// evictIdle forgets channels that have had no subscribers for at least idle
// and returns how many were removed.
func (h *hub) evictIdle(idle time.Duration) int {
	now := h.clock.Now()

	h.mu.Lock()
	defer h.mu.Unlock()

	removed := 0
	for token, c := range h.channels {
		if d, ok := c.idleFor(now); ok && d >= idle {
			delete(h.channels, token)
			removed++
			h.log.Debug("channel evicted", zap.String("token", token), zap.Duration("idle", d))
		}
	}
	decr("channels", int64(removed))
	return removed
}

// runEvictor calls evictIdle every interval until ctx is done.
func (h *hub) runEvictor(ctx context.Context, interval, idle time.Duration) {
	ticker := h.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			h.evictIdle(idle)
		}
	}
}
