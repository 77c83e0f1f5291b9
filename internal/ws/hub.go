package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"sns-backend/internal/models"
	"sns-backend/internal/observability"
)

// Registry is the directed-send surface the message pipeline needs.
type Registry interface {
	SendTo(userID int64, payload models.MessagePayload)
}

// Hub is the in-process registry of live websocket connections, keyed by user
// id. A user may hold several connections (devices, tabs); the entry is
// removed when the last one goes away. It is the single shared mutable
// structure touched by every active session.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[*websocket.Conn]ConnInfo
	logger  *zap.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[int64]map[*websocket.Conn]ConnInfo),
		logger:  logger,
	}
}

// Register adds a connection under the user id. The caller must have accepted
// the handshake first; a failed handshake never reaches the hub.
func (h *Hub) Register(userID int64, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[userID]; !ok {
		h.clients[userID] = make(map[*websocket.Conn]ConnInfo)
	}
	h.clients[userID][conn] = info
}

// Unregister removes a connection. Removing the last connection removes the
// user entry entirely. Unknown connections are a no-op, so double
// unregistration is safe.
func (h *Hub) Unregister(userID int64, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.clients[userID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.clients, userID)
		}
	}
}

// SendTo delivers the payload to every live connection of the user,
// independently. A failed write closes and unregisters that connection only;
// the rest still get the payload. No registry entry means the recipient is
// offline and the payload is dropped.
func (h *Hub) SendTo(userID int64, payload models.MessagePayload) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients[userID]))
	for conn := range h.clients[userID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	body, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("marshal outbound payload", zap.Error(err))
		return
	}

	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, body); err != nil {
			h.logger.Warn("websocket write failed, dropping connection",
				zap.Int64("user_id", userID), zap.Error(err))
			conn.Close()
			h.Unregister(userID, conn)
			observability.IncWSEvent("send_error")
		}
	}
}

// connectionCount reports the number of live connections for a user.
func (h *Hub) connectionCount(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
