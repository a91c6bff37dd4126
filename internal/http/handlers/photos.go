package handlers

import (
	"net/http"

	"timeguesser/internal/service"

	"github.com/gin-gonic/gin"
)

// ListPhotos returns the photo set rounds are drawn from.
func (h *Handler) ListPhotos(c *gin.Context) {
	photos, err := h.Photos.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"photos": photos})
}

// NewGame issues a fresh gameId for a play session.
func (h *Handler) NewGame(c *gin.Context) {
	c.JSON(http.StatusCreated, gin.H{"gameId": service.NewGameID()})
}
