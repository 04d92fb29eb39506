package sessions

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
)

// Hub tracks open connections and which encounter each one is watching.
type Hub struct {
	mu          sync.RWMutex
	connections map[*Connection]bool
	// encounterID -> connections watching that encounter
	encounterConns map[string][]*Connection
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		connections:    make(map[*Connection]bool),
		encounterConns: make(map[string][]*Connection),
	}
}

// Register adds a connection to the hub.
func (h *Hub) Register(c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[c] = true
}

// Unregister removes a connection and detaches it from its encounter.
func (h *Hub) Unregister(c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.connections, c)
	h.detach(c)
}

// Join attaches a connection to an encounter's broadcast group, leaving any
// previous one.
func (h *Hub) Join(c *Connection, encounterID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.detach(c)
	c.encounterID = encounterID
	h.encounterConns[encounterID] = append(h.encounterConns[encounterID], c)
}

// Leave detaches a connection from its encounter.
func (h *Hub) Leave(c *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.detach(c)
	c.encounterID = ""
}

// detach removes c from its encounter group. Callers must hold the lock.
func (h *Hub) detach(c *Connection) {
	if c.encounterID == "" {
		return
	}
	conns := h.encounterConns[c.encounterID]
	for i, conn := range conns {
		if conn == c {
			h.encounterConns[c.encounterID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	if len(h.encounterConns[c.encounterID]) == 0 {
		delete(h.encounterConns, c.encounterID)
	}
}

// Broadcast sends an event to every connection watching the encounter.
func (h *Hub) Broadcast(encounterID string, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("Failed to marshal event", "type", event.Type, "error", err)
		return
	}

	h.mu.RLock()
	conns := make([]*Connection, len(h.encounterConns[encounterID]))
	copy(conns, h.encounterConns[encounterID])
	h.mu.RUnlock()

	for _, c := range conns {
		if err := c.write(websocket.TextMessage, data); err != nil {
			slog.Warn("Failed to broadcast to connection",
				"encounter_id", encounterID,
				"error", err,
			)
		}
	}
}

// Watchers returns how many connections are watching an encounter.
func (h *Hub) Watchers(encounterID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.encounterConns[encounterID])
}
