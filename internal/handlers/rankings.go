package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sns-backend/internal/rankings"
)

const (
	maxRankingLimit  = 1000
	defaultTrendDays = 7
	maxTrendDays     = 30
)

// RankingsHandler serves the top-friends leaderboard.
type RankingsHandler struct {
	aggregator *rankings.Aggregator
}

// NewRankingsHandler builds a RankingsHandler.
func NewRankingsHandler(aggregator *rankings.Aggregator) *RankingsHandler {
	return &RankingsHandler{aggregator: aggregator}
}

// TopFriends ranks the user's friends by intimacy with recent trends.
// limit 0 means unlimited.
func (h *RankingsHandler) TopFriends(c *gin.Context) {
	limit := queryInt(c, "limit", 0)
	if limit < 0 || limit > maxRankingLimit {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 0 and 1000"})
		return
	}
	days := queryInt(c, "days", defaultTrendDays)
	if days < 1 || days > maxTrendDays {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days must be between 1 and 30"})
		return
	}

	result, err := h.aggregator.TopFriends(c.Request.Context(), userIDFromContext(c), limit, days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build rankings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rankings": result})
}
