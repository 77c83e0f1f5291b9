package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"sns-backend/internal/auth"
	"sns-backend/internal/observability"
	"sns-backend/internal/repositories"
)

// ChatSessionHandler owns the websocket session lifecycle: handshake,
// registration, the per-session pipeline loop, and teardown.
type ChatSessionHandler struct {
	hub      *Hub
	pipeline *Pipeline
	users    repositories.UserRepository
	tokens   *auth.TokenManager
	logger   *zap.Logger
}

// NewChatSessionHandler constructs a ChatSessionHandler.
func NewChatSessionHandler(hub *Hub, pipeline *Pipeline, users repositories.UserRepository, tokens *auth.TokenManager, logger *zap.Logger) *ChatSessionHandler {
	return &ChatSessionHandler{hub: hub, pipeline: pipeline, users: users, tokens: tokens, logger: logger}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle authenticates the handshake, upgrades the connection, registers it
// and runs the session loop. Any handshake failure refuses the connection
// before anything is registered.
func (h *ChatSessionHandler) Handle(c *gin.Context) {
	friendID, err := strconv.ParseInt(c.Param("friend_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid friend id"})
		return
	}

	ctx, span := otel.Tracer("sns-backend/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := bearerToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	userID, err := h.tokens.Validate(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	for _, id := range []int64{userID, friendID} {
		exists, err := h.users.Exists(ctx, id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify identity"})
			return
		}
		if !exists {
			c.JSON(http.StatusForbidden, gin.H{"error": "unknown identity"})
			return
		}
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      userID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}
	h.hub.Register(userID, conn, info)

	observability.IncWSActive()
	observability.IncWSEvent("ws_connect")
	h.publishSessionEvent(ctx, "ws_connect", info, friendID, "")

	go h.runSession(conn, info, userID, friendID)
}

// runSession blocks on the connection, feeding each inbound frame through the
// pipeline and echoing the persisted payload back to this connection. The
// session ends on disconnect or transport error; in both cases the connection
// is unregistered and no further work is accepted on it.
func (h *ChatSessionHandler) runSession(conn *websocket.Conn, info ConnInfo, userID, friendID int64) {
	ctx := context.Background()
	var closeReason string

	defer func() {
		h.hub.Unregister(userID, conn)
		conn.Close()
		observability.DecWSActive()
		observability.IncWSEvent("ws_disconnect")
		h.publishSessionEvent(ctx, "ws_disconnect", info, friendID, closeReason)
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			closeReason = err.Error()
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				observability.IncWSEvent("ws_error")
			}
			return
		}

		payload, err := h.pipeline.Handle(ctx, userID, friendID, raw)
		if err != nil {
			h.logger.Error("message pipeline failed",
				zap.Int64("sender_id", userID),
				zap.Int64("receiver_id", friendID),
				zap.Error(err))
			h.writeError(conn, "failed to store message")
			continue
		}
		if payload == nil {
			// Blank frame, silently discarded.
			continue
		}

		// Echo to the sender's own channel as the acknowledgment.
		body, _ := json.Marshal(payload)
		if err := conn.WriteMessage(websocket.TextMessage, body); err != nil {
			closeReason = err.Error()
			return
		}
	}
}

func (h *ChatSessionHandler) writeError(conn *websocket.Conn, msg string) {
	body, _ := json.Marshal(map[string]string{"error": msg})
	_ = conn.WriteMessage(websocket.TextMessage, body)
}

func (h *ChatSessionHandler) publishSessionEvent(ctx context.Context, event string, info ConnInfo, friendID int64, reason string) {
	_ = observability.PublishEvent(ctx, "ws_events.chat", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: event,
		Payload: map[string]interface{}{
			"ws": map[string]interface{}{
				"event":       event,
				"conn_id":     info.ConnID,
				"peer_id":     friendID,
				"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
				"reason":      reason,
			},
			"identity": map[string]interface{}{
				"user_id":   info.UserID,
				"device_id": info.DeviceID,
				"ip":        info.IP,
			},
		},
	}, observability.BuildHeaders(info.RequestID, info.TraceID))
}

func bearerToken(c *gin.Context) string {
	if token := c.Query("token"); token != "" {
		return token
	}
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	if len(header) > 7 && (header[:7] == "Bearer " || header[:7] == "bearer ") {
		return header[7:]
	}
	return ""
}
