package http

import (
	"time"

	"timeguesser/internal/http/handlers"
	"timeguesser/internal/http/middleware"
	"timeguesser/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Limits are the per-IP request budgets.
type Limits struct {
	API        int
	APIWindow  time.Duration
	Sign       int
	SignWindow time.Duration
}

// Deps is everything the router needs. Handler fields may be partially
// configured; the affected endpoints answer NotConfigured.
type Deps struct {
	Handler       *handlers.Handler
	Health        *handlers.HealthHandler
	Limiter       *middleware.RateLimiter
	Limits        Limits
	AdminTokens   middleware.TokenParser
	Hub           *ws.Hub
	AllowedOrigin string
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.Use(middleware.RequestID(), middleware.AccessLog(), middleware.Metrics())

	// Health checks (no rate limiting)
	r.GET("/health", d.Health.Health)
	r.GET("/healthz", d.Health.Liveness)
	r.GET("/readyz", d.Health.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := d.Handler

	v1 := r.Group("/api/v1")
	v1.Use(d.Limiter.Limit("api", d.Limits.API, d.Limits.APIWindow))
	{
		v1.POST("/sign-score", d.Limiter.Limit("sign", d.Limits.Sign, d.Limits.SignWindow), h.SignScore)
		v1.POST("/score", h.SubmitScore)
		v1.GET("/leaderboard", h.GetLeaderboard)
		v1.GET("/photos", h.ListPhotos)
		v1.POST("/games", h.NewGame)
		v1.GET("/mint/:gameId", h.MintStatus)
	}

	admin := v1.Group("/admin")
	admin.Use(middleware.AdminJWT(d.AdminTokens))
	{
		admin.GET("/mints", h.AdminListMints)
		admin.POST("/reconcile", h.AdminReconcile)
		admin.GET("/photos/report", h.AdminPhotoReport)
	}

	// Mini app lifecycle events
	r.POST("/api/webhook", h.Webhook)
	r.GET("/api/webhook", h.WebhookHealth)

	// Live feed of persisted scores
	r.GET("/ws/scores", ws.HandleWS(d.Hub, d.AllowedOrigin))
}
