// server/internal/socket/hub.go
package socket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Change events pushed after every mutation. Clients refetch the named
// collection wholesale when they receive one.
const (
	EventAssetsChanged = "assets.changed"
	EventConfigChanged = "config.changed"
	EventUsersChanged  = "users.changed"
	EventLogsChanged   = "logs.changed"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 25 * time.Second
	sendBuffer = 16
)

// Event is the message written to subscribers.
type Event struct {
	Event      string    `json:"event"`
	Collection string    `json:"collection"`
	Timestamp  time.Time `json:"timestamp"`
}

// adminOnly lists events that only administrators may observe.
var adminOnly = map[string]bool{
	EventUsersChanged: true,
	EventLogsChanged:  true,
}

// Client is one websocket subscriber.
type Client struct {
	ID     string
	UserID string
	Admin  bool
	conn   *websocket.Conn
	send   chan []byte
}

func NewClient(userID string, admin bool, conn *websocket.Conn) *Client {
	return &Client{
		ID:     uuid.NewString(),
		UserID: userID,
		Admin:  admin,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
	}
}

// WritePump drains queued events to the connection and keeps it alive with
// pings. It returns when the hub closes the client or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Hub tracks connected clients and fans out change events.
type Hub struct {
	clients map[string]*Client
	mu      sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
	}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.ID] = c
	slog.Debug("websocket client registered", "client", c.ID, "user", c.UserID)
}

// Unregister removes the client and closes its queue. Safe to call twice.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c.ID]; ok {
		delete(h.clients, c.ID)
		close(c.send)
		slog.Debug("websocket client unregistered", "client", c.ID, "user", c.UserID)
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues the event for every eligible client. Clients whose queue
// is full are dropped; they resync on reconnect.
func (h *Hub) Broadcast(event, collection string) {
	data, err := json.Marshal(Event{Event: event, Collection: collection, Timestamp: time.Now().UTC()})
	if err != nil {
		slog.Error("failed to marshal websocket event", "event", event, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		if adminOnly[event] && !c.Admin {
			continue
		}
		select {
		case c.send <- data:
		default:
			close(c.send)
			delete(h.clients, id)
			slog.Warn("websocket client too slow, dropped", "client", id, "user", c.UserID)
		}
	}
}
