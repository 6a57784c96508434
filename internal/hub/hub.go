package hub

import (
	"encoding/json"
	"sync"
)

// Event represents a real-time event to be sent to clients.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Client represents a single client connection (one open event stream for a user).
// It's essentially a channel that the SSE handler will listen to.
type Client chan []byte

// Hub manages all connected users and their event streams. A user may have several
// streams open at once (multiple devices); every stream receives every event.
type Hub struct {
	users map[uint]map[Client]bool
	mu    sync.RWMutex
}

// GlobalHub is the singleton instance of our Hub.
var GlobalHub = NewHub()

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		users: make(map[uint]map[Client]bool),
	}
}

// Subscribe adds a new client stream for a user.
func (h *Hub) Subscribe(userID uint, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.users[userID]; !ok {
		h.users[userID] = make(map[Client]bool)
	}
	h.users[userID][client] = true
}

// Unsubscribe removes a client stream for a user.
func (h *Hub) Unsubscribe(userID uint, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.users[userID]; ok {
		delete(clients, client)
		close(client)
		if len(clients) == 0 {
			delete(h.users, userID)
		}
	}
}

// Publish sends an event to all open streams of one user. A slow or full stream is
// skipped rather than blocking the publisher.
func (h *Hub) Publish(userID uint, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.users[userID]
	if !ok {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return
	}

	for client := range clients {
		select {
		case client <- payload:
		default:
		}
	}
}
