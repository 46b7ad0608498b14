// Package ws streams completed feature rows to WebSocket subscribers.
package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"TopoPull/internal/domain/models"
	applogger "TopoPull/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// HubOption configures Hub.
type HubOption func(*Hub)

// WithSendBuffer sets the per-client outgoing buffer size. A client that
// falls behind by more than the buffer is disconnected.
func WithSendBuffer(n int) HubOption {
	return func(h *Hub) {
		if n > 0 {
			h.sendBuf = n
		}
	}
}

// Hub fans completed feature rows out to connected WebSocket clients.
type Hub struct {
	l        *applogger.Logger
	upgrader websocket.Upgrader
	sendBuf  int

	mu      sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan []models.FeatureRow
}

// NewHub creates a stream hub.
func NewHub(l *applogger.Logger, opts ...HubOption) *Hub {
	h := &Hub{
		l:       l,
		sendBuf: 64,
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle upgrades the connection and registers the subscriber.
func (h *Hub) Handle(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	cl := &client{conn: conn, send: make(chan []models.FeatureRow, h.sendBuf)}
	h.mu.Lock()
	h.clients[cl] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	h.l.Info("stream client connected", applogger.Int("clients", n))
	go h.writeLoop(cl)
	go h.readLoop(cl)
	return nil
}

// Broadcast queues rows for every connected client. Slow clients are
// dropped rather than blocking the pipeline.
func (h *Hub) Broadcast(rows []models.FeatureRow) {
	if len(rows) == 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for cl := range h.clients {
		select {
		case cl.send <- rows:
		default:
			delete(h.clients, cl)
			close(cl.send)
			h.l.Warn("stream client too slow, dropping")
		}
	}
}

// Close disconnects all clients.
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for cl := range h.clients {
		delete(h.clients, cl)
		close(cl.send)
	}
	return nil
}

func (h *Hub) writeLoop(cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = cl.conn.Close()
	}()

	for {
		select {
		case rows, ok := <-cl.send:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = cl.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := cl.conn.WriteJSON(rows); err != nil {
				h.remove(cl)
				return
			}
		case <-ticker.C:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(cl)
				return
			}
		}
	}
}

// readLoop drains incoming frames so pings and close messages are
// processed; subscribers never send payloads we care about.
func (h *Hub) readLoop(cl *client) {
	cl.conn.SetReadLimit(512)
	for {
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			h.remove(cl)
			return
		}
	}
}

func (h *Hub) remove(cl *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[cl]; ok {
		delete(h.clients, cl)
		close(cl.send)
	}
}
