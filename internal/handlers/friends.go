package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"sns-backend/internal/models"
	"sns-backend/internal/repositories"
)

// FriendsHandler manages the friendship endpoints.
type FriendsHandler struct {
	friendships repositories.FriendshipRepository
	users       repositories.UserRepository
}

// NewFriendsHandler builds a FriendsHandler.
func NewFriendsHandler(friendships repositories.FriendshipRepository, users repositories.UserRepository) *FriendsHandler {
	return &FriendsHandler{friendships: friendships, users: users}
}

// List returns the authenticated user's friends across both row orderings.
func (h *FriendsHandler) List(c *gin.Context) {
	friends, err := h.friendships.ListFriends(c.Request.Context(), userIDFromContext(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load friends"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"friends": friends})
}

// Add creates a pending friendship with another user.
func (h *FriendsHandler) Add(c *gin.Context) {
	var req struct {
		FriendID int64 `json:"friend_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := userIDFromContext(c)
	if req.FriendID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot add yourself"})
		return
	}

	ctx := c.Request.Context()
	exists, err := h.users.Exists(ctx, req.FriendID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify user"})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	fs, err := h.friendships.Create(ctx, userID, req.FriendID)
	if errors.Is(err, repositories.ErrFriendshipExists) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "friendship already exists"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create friendship"})
		return
	}
	c.JSON(http.StatusCreated, fs)
}

// UpdateStatus changes the status of an existing friendship.
func (h *FriendsHandler) UpdateStatus(c *gin.Context) {
	friendID, ok := friendIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid friend id"})
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.ValidStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	fs, err := h.friendships.UpdateStatus(c.Request.Context(), userIDFromContext(c), friendID, req.Status)
	if errors.Is(err, repositories.ErrFriendshipNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "friendship not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update friendship"})
		return
	}
	c.JSON(http.StatusOK, fs)
}

// Remove deletes the friendship with another user.
func (h *FriendsHandler) Remove(c *gin.Context) {
	friendID, ok := friendIDParam(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid friend id"})
		return
	}

	err := h.friendships.Delete(c.Request.Context(), userIDFromContext(c), friendID)
	if errors.Is(err, repositories.ErrFriendshipNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "friendship not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete friendship"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
