package handlers

import (
	"net/http"

	"timeguesser/internal/service"

	"github.com/gin-gonic/gin"
)

// SubmitScore verifies a mint transaction and records the game.
func (h *Handler) SubmitScore(c *gin.Context) {
	var req service.ScoreSubmission
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	if err := h.Verifier.Submit(c.Request.Context(), req); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
