package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Message is a payload broadcast to watchers of a tour
type Message struct {
	Type    string          `json:"type"`
	TourID  string          `json:"tour_id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Client is a single websocket connection watching tours
type Client struct {
	ID     string
	TourID string

	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	log  *zap.Logger
}

// NewClient creates a client bound to a tour
func NewClient(id, tourID string, conn *websocket.Conn, hub *Hub, log *zap.Logger) *Client {
	return &Client{
		ID:     id,
		TourID: tourID,
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 64),
		log:    log,
	}
}

// Hub routes tour updates to connected watchers
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	tours   map[string]map[*Client]bool

	Register   chan *Client
	Unregister chan *Client
	Broadcast  chan Message
}

// NewHub creates a new hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		tours:      make(map[string]map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Broadcast:  make(chan Message, 256),
	}
}

// Run processes register/unregister/broadcast events until the process exits
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.addClient(client)
		case client := <-h.Unregister:
			h.removeClient(client)
		case msg := <-h.Broadcast:
			h.broadcast(msg)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Replace a stale connection with the same ID
	if existing, ok := h.clients[client.ID]; ok {
		h.detachLocked(existing)
		close(existing.send)
	}

	h.clients[client.ID] = client
	if client.TourID != "" {
		if h.tours[client.TourID] == nil {
			h.tours[client.TourID] = make(map[*Client]bool)
		}
		h.tours[client.TourID][client] = true
	}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, ok := h.clients[client.ID]; ok && current == client {
		h.detachLocked(client)
		close(client.send)
	}
}

func (h *Hub) detachLocked(client *Client) {
	delete(h.clients, client.ID)
	if subs, ok := h.tours[client.TourID]; ok {
		delete(subs, client)
		if len(subs) == 0 {
			delete(h.tours, client.TourID)
		}
	}
}

func (h *Hub) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.tours[msg.TourID] {
		select {
		case client.send <- data:
		default:
			// Slow consumer, drop the update rather than block the hub
		}
	}
}

// GetClient returns a connected client by ID
func (h *Hub) GetClient(id string) (*Client, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	client, ok := h.clients[id]
	return client, ok
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// WritePump pushes hub messages out on the connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ReadPump drains inbound frames and unregisters on disconnect.
// Watchers are read-only; inbound payloads are ignored.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("websocket closed unexpectedly", zap.String("client_id", c.ID), zap.Error(err))
			}
			return
		}
	}
}
