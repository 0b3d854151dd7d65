package websockets

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"
)

type session struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// Hub is a Sender for connections held by this process, used when the
// server runs without API Gateway.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

// NewHub creates an empty Hub.
func NewHub() *Hub { return &Hub{sessions: make(map[string]*session)} }

var _ Sender = (*Hub)(nil)

// Register starts routing messages for connectionID to conn.
func (h *Hub) Register(connectionID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[connectionID] = &session{conn: conn}
}

// Unregister stops routing messages to connectionID.
func (h *Hub) Unregister(connectionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, connectionID)
}

// WriteJSON writes v to a registered connection, serialized with other writes to it.
func (h *Hub) WriteJSON(connectionID string, v any) error {
	s, ok := h.session(connectionID)
	if !ok {
		return ErrGone
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(v)
}

func (h *Hub) Send(ctx context.Context, connectionID string, data []byte) error {
	s, ok := h.session(connectionID)
	if !ok {
		return ErrGone
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

func (h *Hub) session(connectionID string) (*session, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.sessions[connectionID]
	return s, ok
}
