package main

import (
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const connectedText = "connected"

type frame struct {
	messageType int
	data        []byte
}

// connection is one websocket session. It is owned by the goroutine that
// calls run and ends for good when run returns.
type connection struct {
	id    string
	token string
	w     websocketManager
	h     *hub
	beat  *mTicker
	log   *zap.Logger

	frames chan frame
	done   chan struct{}
}

func newConnection(w websocketManager, h *hub, beat *mTicker, token string, log *zap.Logger) *connection {
	id := uuid.NewString()
	return &connection{
		id:     id,
		token:  token,
		w:      w,
		h:      h,
		beat:   beat,
		log:    log.With(zap.String("token", token), zap.String("conn", id)),
		frames: make(chan frame),
		done:   make(chan struct{}),
	}
}

// run subscribes to the token's channel and serves the client until it
// disconnects or a write fails.
func (c *connection) run() {
	ch, sub := c.h.subscribe(c.token)
	hb := c.beat.subscribe()
	incr("websockets", 1)
	defer func() {
		close(c.done)
		ch.unsubscribe(sub)
		c.beat.unsubscribe(hb)
		c.w.wsClose()
		for range c.frames {
		}
		decr("websockets", 1)
		c.log.Info("client disconnected")
	}()

	c.w.wsSetReadLimit()
	go c.reader()

	if err := c.write(websocket.TextMessage, []byte(connectedText)); err != nil {
		c.log.Debug("write failed", zap.Error(err))
		return
	}

	for {
		select {
		case f, ok := <-c.frames:
			if !ok {
				return
			}
			c.handleFrame(f)
		case msg, ok := <-sub.send:
			if !ok {
				return
			}
			if err := c.write(websocket.TextMessage, []byte(msg)); err != nil {
				c.log.Debug("write failed", zap.Error(err))
				return
			}
			incr("conn.send", 1)
			c.log.Info("sent to client", zap.String("msg", msg))
		case _, ok := <-hb.tick:
			if !ok {
				return
			}
			if err := c.write(websocket.PingMessage, nil); err != nil {
				c.log.Debug("ping failed", zap.Error(err))
				return
			}
			incr("conn.ping", 1)
		}
	}
}

// reader forwards inbound frames to c.frames and closes it on the first
// read error, which includes the peer's close frame.
func (c *connection) reader() {
	defer close(c.frames)
	for {
		messageType, data, err := c.w.wsReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Debug("client closed connection", zap.Error(err))
			} else {
				c.log.Debug("read failed", zap.Error(err))
			}
			return
		}
		select {
		case c.frames <- frame{messageType: messageType, data: data}:
		case <-c.done:
			return
		}
	}
}

func (c *connection) handleFrame(f frame) {
	if f.messageType != websocket.TextMessage {
		return
	}
	incr("conn.recv", 1)
	c.log.Info("received from client", zap.ByteString("text", f.data))
}

func (c *connection) write(messageType int, payload []byte) error {
	c.w.wsSetWriteDeadline()
	return c.w.wsWriteMessage(messageType, payload)
}
