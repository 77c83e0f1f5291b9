package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"sns-backend/internal/scoring"
	"sns-backend/internal/sentiment"
)

// AnalysisHandler exposes the analytics primitives directly: one-off sentiment
// scoring, word-frequency aggregation and the four-factor intimacy score.
// These endpoints have no fallback state and fail loudly.
type AnalysisHandler struct {
	analyzer sentiment.Analyzer
}

// NewAnalysisHandler builds an AnalysisHandler.
func NewAnalysisHandler(analyzer sentiment.Analyzer) *AnalysisHandler {
	return &AnalysisHandler{analyzer: analyzer}
}

// Sentiment scores a single piece of text with the external analyzer.
func (h *AnalysisHandler) Sentiment(c *gin.Context) {
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	scores, err := h.analyzer.Analyze(c.Request.Context(), req.Text)
	if errors.Is(err, sentiment.ErrNotConfigured) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sentiment analysis is not configured"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sentiment analysis failed"})
		return
	}
	c.JSON(http.StatusOK, scores)
}

// WordCloud aggregates word frequencies over the supplied messages.
func (h *AnalysisHandler) WordCloud(c *gin.Context) {
	var req struct {
		Messages []string `json:"messages" binding:"required"`
		TopN     int      `json:"top_n"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"words": scoring.WordCloud(req.Messages, req.TopN)})
}

// Intimacy computes the four-factor intimacy score with its breakdown.
func (h *AnalysisHandler) Intimacy(c *gin.Context) {
	var req struct {
		SentimentScores   []float64      `json:"sentiment_scores"`
		MessageCount      int64          `json:"message_count"`
		LastSenderID      int64          `json:"last_sender_id"`
		CurrentUserID     int64          `json:"current_user_id" binding:"required"`
		ConsecutiveCounts map[string]int `json:"consecutive_counts"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	consecutive := make(map[int64]int, len(req.ConsecutiveCounts))
	for key, run := range req.ConsecutiveCounts {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "consecutive_counts keys must be user ids"})
			return
		}
		consecutive[id] = run
	}

	breakdown := scoring.Intimacy(req.SentimentScores, req.MessageCount, req.LastSenderID, req.CurrentUserID, consecutive)
	c.JSON(http.StatusOK, breakdown)
}
