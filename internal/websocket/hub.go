package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/tahcohcat/calmkid/internal/logger"
	"github.com/tahcohcat/calmkid/internal/services"
)

const (
	sendBuffer = 16
	writeWait  = 10 * time.Second
)

// UserResolver identifies the user behind an upgrade request.
type UserResolver interface {
	CurrentUserID(r *http.Request) (string, bool)
}

// Hub fans notifications out to every connection of a user. It implements
// services.Notifier; a client whose buffer is full misses the message.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]map[*Client]bool
	closed   bool
	upgrader websocket.Upgrader
	log      *logger.Log
}

type Client struct {
	hub    *Hub
	userID string
	conn   *websocket.Conn
	send   chan []byte
}

// NewHub accepts upgrades from the given origins; none means any origin.
func NewHub(allowedOrigins []string) *Hub {
	h := &Hub{
		clients: make(map[string]map[*Client]bool),
		log:     logger.New(),
	}
	h.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, o := range allowedOrigins {
				if o == "*" || o == origin {
					return true
				}
			}
			return false
		},
	}
	return h
}

// Notify never blocks.
func (h *Hub) Notify(userID string, event services.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.log.WithError(err).Warn("failed to encode notification")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[userID] {
		select {
		case c.send <- payload:
		default:
			h.log.WithUser(userID).Warn("client too slow, notification dropped")
		}
	}
}

// Connected counts the user's open connections.
func (h *Hub) Connected(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *Hub) register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	if h.clients[c.userID] == nil {
		h.clients[c.userID] = make(map[*Client]bool)
	}
	h.clients[c.userID][c] = true
	h.log.WithUser(c.userID).Debug("client connected")
	return true
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.clients[c.userID]; ok && set[c] {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.userID)
		}
		close(c.send)
		h.log.WithUser(c.userID).Debug("client disconnected")
	}
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for userID, set := range h.clients {
		for c := range set {
			close(c.send)
		}
		delete(h.clients, userID)
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.WithError(err).Warn("websocket read failed")
			}
			return
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			c.hub.log.WithError(err).Warn("websocket write failed")
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// Handler upgrades authenticated requests.
func (h *Hub) Handler(users UserResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := users.CurrentUserID(r)
		if !ok {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.log.WithError(err).Warn("websocket upgrade failed")
			return
		}

		client := &Client{hub: h, userID: userID, conn: conn, send: make(chan []byte, sendBuffer)}
		if !h.register(client) {
			conn.Close()
			return
		}

		go client.writePump()
		go client.readPump()
	}
}

func (h *Hub) RegisterRoutes(r *mux.Router, users UserResolver) {
	r.HandleFunc("/ws", h.Handler(users))
}
