package realtime

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"
)

// Client represents a single websocket client connection.
type Client interface {
	Send(message []byte) bool
	Close()
}

// Hub maintains active user connections and broadcasts events to them.
type Hub struct {
	mu              sync.RWMutex
	userIDToClients map[string]map[Client]struct{}
	log             zerolog.Logger
}

// NewHub returns an empty hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		userIDToClients: make(map[string]map[Client]struct{}),
		log:             log,
	}
}

// Register adds a client under a user ID.
func (h *Hub) Register(userID string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.userIDToClients[userID]; !ok {
		h.userIDToClients[userID] = make(map[Client]struct{})
	}
	h.userIDToClients[userID][client] = struct{}{}
}

// Unregister removes a client; if user has no more clients, cleans up map.
func (h *Hub) Unregister(userID string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.userIDToClients[userID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.userIDToClients, userID)
		}
	}
}

// Connected returns the number of open connections for userID.
func (h *Hub) Connected(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.userIDToClients[userID])
}

// Broadcast sends a message to all clients of a user. A failed write is left
// to the connection's own reader loop to clean up.
func (h *Hub) Broadcast(userID string, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.userIDToClients[userID] {
		if !c.Send(message) {
			h.log.Debug().Str("user_id", userID).Msg("websocket send failed")
		}
	}
}

// Publish sends evt once to each distinct non-empty recipient.
func (h *Hub) Publish(evt Event, recipients ...string) {
	if evt.Version == 0 {
		evt.Version = 1
	}
	msg, err := json.Marshal(evt)
	if err != nil {
		h.log.Error().Err(err).Str("type", string(evt.Type)).Msg("encode event")
		return
	}
	seen := make(map[string]struct{}, len(recipients))
	for _, id := range recipients {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		h.Broadcast(id, msg)
	}
}

// Close drops every connection.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, clients := range h.userIDToClients {
		for c := range clients {
			c.Close()
		}
		delete(h.userIDToClients, userID)
	}
}
