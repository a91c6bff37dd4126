package handlers

import (
	"net/http"
	"strconv"

	"timeguesser/internal/domain"

	"github.com/gin-gonic/gin"
)

// AdminListMints lists mints by ?status= (default unverified).
func (h *Handler) AdminListMints(c *gin.Context) {
	if h.Mints == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "persistence store not configured"})
		return
	}

	status := domain.MintStatus(c.DefaultQuery("status", string(domain.MintUnverified)))
	if !status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be success, unverified or failed"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit <= 0 {
		limit = 100
	}

	mints, err := h.Mints.ListByStatus(c.Request.Context(), status, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list mints"})
		return
	}
	if mints == nil {
		mints = []*domain.Mint{}
	}

	c.JSON(http.StatusOK, gin.H{"status": status, "mints": mints})
}

// AdminReconcile runs one reconciliation batch immediately.
func (h *Handler) AdminReconcile(c *gin.Context) {
	res, err := h.Reconciler.Run(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// AdminPhotoReport returns photo counts per decade and year range.
func (h *Handler) AdminPhotoReport(c *gin.Context) {
	report, err := h.Photos.Report(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
