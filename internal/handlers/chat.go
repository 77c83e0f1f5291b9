package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sns-backend/internal/models"
	"sns-backend/internal/repositories"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// ChatHandler serves conversation history and read-state endpoints.
type ChatHandler struct {
	messages repositories.MessageRepository
	users    repositories.UserRepository
}

// NewChatHandler builds a ChatHandler.
func NewChatHandler(messages repositories.MessageRepository, users repositories.UserRepository) *ChatHandler {
	return &ChatHandler{messages: messages, users: users}
}

func (h *ChatHandler) knownFriend(c *gin.Context) (int64, bool) {
	friendID, ok := friendIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid friend id"})
		return 0, false
	}

	exists, err := h.users.Exists(c.Request.Context(), friendID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify user"})
		return 0, false
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return 0, false
	}
	return friendID, true
}

// History returns a page of the conversation with a friend, oldest first.
func (h *ChatHandler) History(c *gin.Context) {
	friendID, ok := h.knownFriend(c)
	if !ok {
		return
	}

	skip := queryInt(c, "skip", 0)
	if skip < 0 {
		skip = 0
	}
	limit := queryInt(c, "limit", defaultHistoryLimit)
	if limit <= 0 || limit > maxHistoryLimit {
		limit = defaultHistoryLimit
	}

	msgs, err := h.messages.ListConversation(c.Request.Context(), userIDFromContext(c), friendID, skip, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	payloads := make([]models.MessagePayload, 0, len(msgs))
	for _, msg := range msgs {
		payloads = append(payloads, msg.Payload())
	}
	c.JSON(http.StatusOK, gin.H{"messages": payloads})
}

// MarkRead marks every unread message from the friend as read.
func (h *ChatHandler) MarkRead(c *gin.Context) {
	friendID, ok := h.knownFriend(c)
	if !ok {
		return
	}

	count, err := h.messages.MarkConversationRead(c.Request.Context(), userIDFromContext(c), friendID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"marked_as_read": count})
}

// Unread counts unread messages from the friend.
func (h *ChatHandler) Unread(c *gin.Context) {
	friendID, ok := h.knownFriend(c)
	if !ok {
		return
	}

	count, err := h.messages.CountUnread(c.Request.Context(), userIDFromContext(c), friendID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread_count": count})
}
