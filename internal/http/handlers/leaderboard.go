package handlers

import (
	"net/http"

	"timeguesser/internal/service"

	"github.com/gin-gonic/gin"
)

// GetLeaderboard returns ranked players: ?type=top_score|best_accuracy&limit=N (max 50).
func (h *Handler) GetLeaderboard(c *gin.Context) {
	typ := service.ParseLeaderboardType(c.Query("type"))
	limit := service.ClampLeaderboardLimit(c.Query("limit"))

	entries, err := h.Leaderboard.Get(c.Request.Context(), typ, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}
