package websocket

import (
	"log"
	"sync"
)

// Hub maintains the set of connected clients and pushes notifications to
// them by user ID. A user may hold several connections (tabs, devices).
type Hub struct {
	// Registered clients by user ID
	clients map[string]map[*Client]bool

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	mu sync.RWMutex
}

// Message represents a WebSocket message
type Message struct {
	Type    string                 `json:"type"`
	Payload map[string]interface{} `json:"payload"`
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.UserID] == nil {
				h.clients[client.UserID] = make(map[*Client]bool)
			}
			h.clients[client.UserID][client] = true
			count := len(h.clients[client.UserID])
			h.mu.Unlock()
			log.Printf("WebSocket client registered: user=%s connections=%d", client.UserID, count)

		case client := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.clients[client.UserID]; ok {
				if _, ok := conns[client]; ok {
					delete(conns, client)
					close(client.send)
					if len(conns) == 0 {
						delete(h.clients, client.UserID)
					}
				}
			}
			h.mu.Unlock()
			log.Printf("WebSocket client unregistered: user=%s", client.UserID)
		}
	}
}

// BroadcastToUser sends a notification payload to every connection a user
// has open. Users without open connections are silently skipped; they will
// see the persisted notification on next load.
func (h *Hub) BroadcastToUser(userID string, payload map[string]interface{}) {
	h.mu.RLock()
	conns := h.clients[userID]
	targets := make([]*Client, 0, len(conns))
	for client := range conns {
		targets = append(targets, client)
	}
	h.mu.RUnlock()

	msg := &Message{Type: "notification", Payload: payload}
	for _, client := range targets {
		select {
		case client.send <- msg:
		default:
			// Slow consumer, drop the message rather than block the hub
			log.Printf("WebSocket send buffer full for user %s, dropping message", userID)
		}
	}
}
