package server

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Hub is the set of connected WebSocket clients. All writes go through
// Broadcast, which holds the lock for the whole fanout; a client whose
// write fails is closed and dropped on the spot.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]struct{})}
}

// Attach adds a client to the fanout set. After this point the hub owns
// writes to the connection; the caller must not write to it anymore.
func (h *Hub) Attach(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	log.Printf("[Server] WebSocket client connected (%d active)", n)
}

// Detach removes and closes a client. Safe to call for connections that
// were already dropped by a failed broadcast.
func (h *Hub) Detach(conn *websocket.Conn) {
	h.mu.Lock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
		log.Println("[Server] WebSocket client disconnected")
	}
	h.mu.Unlock()
}

// Broadcast sends msg to every attached client.
func (h *Hub) Broadcast(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		if err := conn.WriteJSON(msg); err != nil {
			log.Printf("[Server] Dropping client after write error: %v", err)
			conn.Close()
			delete(h.clients, conn)
		}
	}
}
