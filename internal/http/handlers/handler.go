package handlers

import (
	"context"
	"errors"
	"net/http"

	"timeguesser/internal/domain"
	"timeguesser/internal/logger"
	"timeguesser/internal/service"

	"github.com/gin-gonic/gin"
)

// MintReader lists and looks up stored mints.
type MintReader interface {
	GetByGameID(ctx context.Context, gameID string) (*domain.Mint, error)
	ListByStatus(ctx context.Context, status domain.MintStatus, limit int) ([]*domain.Mint, error)
}

// ContractReader queries the score contract's views.
type ContractReader interface {
	GameIDUsed(ctx context.Context, gameID string) (bool, error)
}

type Handler struct {
	Signer      *service.ScoreSigner
	Verifier    *service.MintVerifier
	Leaderboard *service.LeaderboardService
	Photos      *service.PhotoService
	Reconciler  *service.Reconciler

	// optional; nil when the database or RPC endpoint is not configured
	Mints    MintReader
	Contract ContractReader
}

// statusFor maps an error kind to its HTTP status.
func statusFor(err error) int {
	switch service.Kind(err) {
	case service.ErrInvalidInput, service.ErrMissingFields, service.ErrInvalidAddress, service.ErrTransactionMismatch:
		return http.StatusBadRequest
	case service.ErrUnauthorized:
		return http.StatusUnauthorized
	case service.ErrCanceled:
		return http.StatusRequestTimeout
	case service.ErrDuplicateGame:
		return http.StatusConflict
	case service.ErrReceiptUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeError responds {"error": message}. Only the caller-safe message is
// returned; server errors are logged with their cause.
func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.WithContext(c.Request.Context()).Error("request failed",
			"path", c.FullPath(), "status", status, "error", err)
	}
	c.JSON(status, gin.H{"error": service.PublicMessage(err)})
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
