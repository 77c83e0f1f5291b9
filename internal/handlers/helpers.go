package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"sns-backend/internal/middleware"
)

func userIDFromContext(c *gin.Context) int64 {
	return c.GetInt64(middleware.UserIDKey)
}

// friendIDParam parses the :friend_id path segment.
func friendIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("friend_id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// queryInt reads an integer query parameter, falling back to def when absent
// or malformed.
func queryInt(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
