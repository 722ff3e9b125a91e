package main

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type wsHandler struct {
	hub      *hub
	beat     *mTicker
	sessions *sync.WaitGroup
	upgrader *websocket.Upgrader
	log      *zap.Logger
}

// newWsHandler accepts any Origin when origin is empty. Every running
// session is counted in sessions.
func newWsHandler(h *hub, beat *mTicker, sessions *sync.WaitGroup, origin string, log *zap.Logger) wsHandler {
	upgrader := &websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024}
	upgrader.CheckOrigin = func(r *http.Request) bool {
		return origin == "" || r.Header.Get("Origin") == origin
	}
	return wsHandler{hub: h, beat: beat, sessions: sessions, upgrader: upgrader, log: log}
}

func (wsh wsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if strings.TrimSpace(token) == "" {
		sendBadRequestError(w, "Query parameter token must not be empty.")
		return
	}

	ws, err := wsh.upgrader.Upgrade(w, r, nil)
	if err != nil {
		wsh.log.Debug("upgrade failed", zap.String("token", token), zap.Error(err))
		return
	}
	wsh.log.Info("client connected", zap.String("token", token))

	wsh.sessions.Add(1)
	defer wsh.sessions.Done()
	c := newConnection(websocketInteractor{ws: ws}, wsh.hub, wsh.beat, token, wsh.log)
	c.run()
}

type pushHandler struct {
	hub *hub
	log *zap.Logger
}

func (ph pushHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tokens, ok := r.URL.Query()["token"]
	if !ok {
		incr("push.badrequest", 1)
		sendBadRequestError(w, "Query parameter token is required.")
		return
	}
	token := tokens[0]

	if err := r.ParseForm(); err != nil {
		incr("push.badrequest", 1)
		sendBadRequestError(w, "Unable to read POST body.")
		return
	}
	payload, err := newPushPayload(r.Form)
	if err != nil {
		incr("push.badrequest", 1)
		sendBadRequestError(w, "Field msg must not be empty.")
		return
	}

	text, err := payload.encode()
	if err != nil {
		ph.log.Error("encode payload", zap.String("token", token), zap.Error(err))
		http.Error(w, "Error: internal server error.", http.StatusInternalServerError)
		return
	}
	n, ok := ph.hub.publish(token, text)
	if !ok {
		incr("push.notfound", 1)
		http.Error(w, "Error: not found. No client has connected with this token.", http.StatusNotFound)
		return
	}
	incr("push.ok", 1)
	ph.log.Info("push request",
		zap.String("pushed_to", token),
		zap.String("payload", text),
		zap.Int("subscribers", n))
	w.Write([]byte("OK\n"))
}

type getHandler struct{}

func (getHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	webTemplate.Execute(w, templateArgs{Token: r.URL.Query().Get("token")})
}

func sendBadRequestError(w http.ResponseWriter, str string) {
	http.Error(w,
		fmt.Sprintf("Error: bad request. %s", str),
		http.StatusBadRequest)
}
