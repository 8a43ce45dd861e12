package web

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/noahxzhu/hydrate/internal/notify"
)

const (
	writeWait  = 5 * time.Second
	sendBuffer = 16
)

// Event is one frame on the live feed.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// client is one dashboard connection. Only its writer goroutine touches conn
// for writing; everyone else goes through send.
type client struct {
	conn *websocket.Conn
	send chan Event
}

// Hub fans state snapshots and notifications out to connected dashboards.
// Broadcast never waits on a socket: a client whose queue is full loses the
// frame.
type Hub struct {
	mu       sync.Mutex
	clients  map[*client]bool
	upgrader websocket.Upgrader
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*client]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Broadcast queues an event for every client.
func (h *Hub) Broadcast(eventType string, payload any) {
	ev := Event{Type: eventType, Payload: payload}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- ev:
		default:
			slog.Warn("Live client too slow, dropping frame", "type", eventType)
		}
	}
}

func (h *Hub) Name() string { return "live" }

// Send lets the hub act as a notification channel.
func (h *Hub) Send(_ context.Context, msg notify.Message) error {
	h.Broadcast("notification", msg)
	return nil
}

// serve upgrades the request and keeps the connection registered until the
// client goes away. initial is the first frame the client sees.
func (h *Hub) serve(w http.ResponseWriter, r *http.Request, initial any) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("WebSocket upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan Event, sendBuffer)}
	c.send <- Event{Type: "state", Payload: initial}

	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()

	go c.writeLoop()

	defer func() {
		h.mu.Lock()
		delete(h.clients, c)
		close(c.send)
		h.mu.Unlock()
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writeLoop() {
	for ev := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(ev); err != nil {
			// Closing unblocks the read loop, which unregisters the client.
			c.conn.Close()
			for range c.send {
			}
			return
		}
	}
}
