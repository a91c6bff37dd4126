package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type signScoreRequest struct {
	GameID any `json:"gameId"`
	Score  any `json:"score"`
	Player any `json:"player"`
}

// SignScore returns a validator signature for {gameId, score, player}.
func (h *Handler) SignScore(c *gin.Context) {
	var req signScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	sig, err := h.Signer.Sign(req.GameID, req.Score, req.Player)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, sig)
}
