package handlers

import (
	"errors"
	"net/http"

	"timeguesser/internal/repository"

	"github.com/gin-gonic/gin"
)

// MintStatus reports whether gameId was consumed on-chain and, when the
// database is available, the stored mint status.
func (h *Handler) MintStatus(c *gin.Context) {
	gameID := c.Param("gameId")
	if gameID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "gameId required"})
		return
	}
	if h.Contract == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "score contract not configured"})
		return
	}

	ctx := c.Request.Context()
	used, err := h.Contract.GameIDUsed(ctx, gameID)
	if err != nil {
		if isCanceled(err) {
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to query score contract"})
		return
	}

	resp := gin.H{"gameId": gameID, "used": used}
	if h.Mints != nil {
		m, err := h.Mints.GetByGameID(ctx, gameID)
		switch {
		case err == nil:
			resp["status"] = m.Status
			resp["txHash"] = m.TxHash
		case !errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load mint"})
			return
		}
	}

	c.JSON(http.StatusOK, resp)
}
