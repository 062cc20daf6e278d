package controllers

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"bus_tracker/internal/broker"
)

// upgrader configures the WebSocket connection.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all for development (restrict in production!)
	},
}

// LiveFeedHub fans ingested position events out to connected websocket
// viewers. Best effort: a client that cannot keep up is dropped.
type LiveFeedHub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]bool
}

func NewLiveFeedHub() *LiveFeedHub {
	return &LiveFeedHub{conns: make(map[*websocket.Conn]bool)}
}

// Handle upgrades the request and keeps the connection registered until the
// client goes away.
func (h *LiveFeedHub) Handle(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Error("WebSocket upgrade failed")
		return
	}

	h.mu.Lock()
	h.conns[conn] = true
	h.mu.Unlock()
	logrus.WithField("remote", conn.RemoteAddr().String()).Info("Live feed client connected")

	// Drain inbound frames to detect disconnects; the feed is one-way.
	go func() {
		defer h.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Broadcast sends one position event to every connected client.
func (h *LiveFeedHub) Broadcast(event broker.PositionMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		if err := conn.WriteJSON(event); err != nil {
			logrus.WithError(err).Debug("Dropping live feed client")
			conn.Close()
			delete(h.conns, conn)
		}
	}
}

func (h *LiveFeedHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[conn] {
		conn.Close()
		delete(h.conns, conn)
	}
}
